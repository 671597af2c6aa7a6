package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

const (
	DefaultTopCustomers = 5
	DefaultTopBooks     = 10
	DefaultReportMonths = 3
	dashboardListSize   = 5
)

// Dashboard is the admin landing summary.
type Dashboard struct {
	Books                  int64           `json:"books"`
	Customers              int64           `json:"customers"`
	Orders                 int64           `json:"orders"`
	Revenue                decimal.Decimal `json:"revenue"`
	OrdersToday            int64           `json:"orders_today"`
	PendingPublisherOrders int64           `json:"pending_publisher_orders"`
	LowStock               int64           `json:"low_stock"`
	RecentOrders           []models.Order  `json:"recent_orders"`
	LowStockBooks          []models.Book   `json:"low_stock_books"`
}

// SalesReport covers completed orders placed in [From, To).
type SalesReport struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	repositories.SalesTotal
}

// ReportService is read-only; it never locks or mutates rows.
type ReportService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	SalesBetween(ctx context.Context, from, to time.Time) (*SalesReport, error)
	SalesPreviousMonth(ctx context.Context, now time.Time) (*SalesReport, error)
	SalesForDate(ctx context.Context, day time.Time) (*SalesReport, error)
	TopCustomers(ctx context.Context, months, limit int) ([]repositories.CustomerSales, error)
	TopSellingBooks(ctx context.Context, months, limit int) ([]repositories.BookSales, error)
	LowStockBooks(ctx context.Context) ([]models.Book, error)
	PublisherOrderCount(ctx context.Context, isbn string) (int64, error)
}

type reportService struct {
	db         *gorm.DB
	reportRepo repositories.ReportRepository
	now        func() time.Time
}

func NewReportService(db *gorm.DB, reportRepo repositories.ReportRepository) ReportService {
	return &reportService{
		db:         db,
		reportRepo: reportRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	var (
		d   Dashboard
		err error
	)
	if d.Books, err = s.reportRepo.CountBooks(db); err != nil {
		return nil, err
	}
	if d.Customers, err = s.reportRepo.CountCustomers(db); err != nil {
		return nil, err
	}
	if d.Orders, err = s.reportRepo.CountOrders(db); err != nil {
		return nil, err
	}
	if d.Revenue, err = s.reportRepo.CompletedRevenue(db); err != nil {
		return nil, err
	}
	today := startOfDay(s.now())
	if d.OrdersToday, err = s.reportRepo.CountOrdersBetween(db, today, today.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	if d.PendingPublisherOrders, err = s.reportRepo.CountPendingPublisherOrders(db); err != nil {
		return nil, err
	}
	if d.LowStock, err = s.reportRepo.CountLowStock(db); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = s.reportRepo.RecentOrders(db, dashboardListSize); err != nil {
		return nil, err
	}
	lowStock, err := s.reportRepo.LowStockBooks(db)
	if err != nil {
		return nil, err
	}
	d.LowStockBooks = lowStock[:min(len(lowStock), dashboardListSize)]
	return &d, nil
}

func (s *reportService) SalesBetween(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	from, to = from.UTC(), to.UTC()
	if !from.Before(to) {
		return nil, validationErrorf("Report start must be before its end")
	}
	total, err := s.reportRepo.SalesBetween(s.db.WithContext(ctx), from, to)
	if err != nil {
		return nil, err
	}
	return &SalesReport{From: from, To: to, SalesTotal: total}, nil
}

// SalesPreviousMonth reports the calendar month before the one containing now.
func (s *reportService) SalesPreviousMonth(ctx context.Context, now time.Time) (*SalesReport, error) {
	now = now.UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.SalesBetween(ctx, thisMonth.AddDate(0, -1, 0), thisMonth)
}

func (s *reportService) SalesForDate(ctx context.Context, day time.Time) (*SalesReport, error) {
	start := startOfDay(day)
	return s.SalesBetween(ctx, start, start.AddDate(0, 0, 1))
}

func (s *reportService) TopCustomers(ctx context.Context, months, limit int) ([]repositories.CustomerSales, error) {
	if months <= 0 {
		months = DefaultReportMonths
	}
	if limit <= 0 {
		limit = DefaultTopCustomers
	}
	since := s.now().AddDate(0, -months, 0)
	return s.reportRepo.TopCustomers(s.db.WithContext(ctx), since, limit)
}

func (s *reportService) TopSellingBooks(ctx context.Context, months, limit int) ([]repositories.BookSales, error) {
	if months <= 0 {
		months = DefaultReportMonths
	}
	if limit <= 0 {
		limit = DefaultTopBooks
	}
	since := s.now().AddDate(0, -months, 0)
	return s.reportRepo.TopSellingBooks(s.db.WithContext(ctx), since, limit)
}

func (s *reportService) LowStockBooks(ctx context.Context) ([]models.Book, error) {
	return s.reportRepo.LowStockBooks(s.db.WithContext(ctx))
}

// PublisherOrderCount counts replenishment orders of every status for a book.
func (s *reportService) PublisherOrderCount(ctx context.Context, isbn string) (int64, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return 0, validationErrorf("Please select a book")
	}
	return s.reportRepo.CountPublisherOrders(s.db.WithContext(ctx), isbn)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
