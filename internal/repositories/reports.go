package repositories

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bookstore/internal/models"
)

type SalesTotal struct {
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type CustomerSales struct {
	CustomerID uint            `json:"customer_id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	OrderCount int64           `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

type BookSales struct {
	ISBN       string          `json:"isbn"`
	Title      string          `json:"title"`
	CopiesSold int64           `json:"copies_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type ReportRepository interface {
	CountBooks(db *gorm.DB) (int64, error)
	CountCustomers(db *gorm.DB) (int64, error)
	CountOrders(db *gorm.DB) (int64, error)
	CountOrdersBetween(db *gorm.DB, from, to time.Time) (int64, error)
	CompletedRevenue(db *gorm.DB) (decimal.Decimal, error)
	RecentOrders(db *gorm.DB, limit int) ([]models.Order, error)
	CountPendingPublisherOrders(db *gorm.DB) (int64, error)
	CountPublisherOrders(db *gorm.DB, isbn string) (int64, error)
	CountLowStock(db *gorm.DB) (int64, error)
	LowStockBooks(db *gorm.DB) ([]models.Book, error)
	SalesBetween(db *gorm.DB, from, to time.Time) (SalesTotal, error)
	TopCustomers(db *gorm.DB, since time.Time, limit int) ([]CustomerSales, error)
	TopSellingBooks(db *gorm.DB, since time.Time, limit int) ([]BookSales, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CountBooks(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Book{}).Count(&n).Error
	return n, err
}

func (r *reportRepository) CountCustomers(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Customer{}).Count(&n).Error
	return n, err
}

func (r *reportRepository) CountOrders(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Order{}).Count(&n).Error
	return n, err
}

// CountOrdersBetween counts orders of any status placed in [from, to).
func (r *reportRepository) CountOrdersBetween(db *gorm.DB, from, to time.Time) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Order{}).
		Where("order_date >= ? AND order_date < ?", from, to).
		Count(&n).Error
	return n, err
}

func (r *reportRepository) CompletedRevenue(db *gorm.DB) (decimal.Decimal, error) {
	if db == nil {
		db = r.db
	}
	var out SalesTotal
	err := db.Model(&models.Order{}).
		Select("COUNT(id) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("status = ?", models.OrderStatusCompleted).
		Scan(&out).Error
	return out.Revenue, err
}

func (r *reportRepository) RecentOrders(db *gorm.DB, limit int) ([]models.Order, error) {
	if db == nil {
		db = r.db
	}
	var orders []models.Order
	if err := db.Order("order_date DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *reportRepository) CountPendingPublisherOrders(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.PublisherOrder{}).
		Where("status = ?", models.PublisherOrderPending).
		Count(&n).Error
	return n, err
}

func (r *reportRepository) CountPublisherOrders(db *gorm.DB, isbn string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.PublisherOrder{}).Where("isbn = ?", isbn).Count(&n).Error
	return n, err
}

func (r *reportRepository) CountLowStock(db *gorm.DB) (int64, error) {
	if db == nil {
		db = r.db
	}
	var n int64
	err := db.Model(&models.Book{}).
		Where("quantity_in_stock < minimum_threshold").
		Count(&n).Error
	return n, err
}

func (r *reportRepository) LowStockBooks(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Preload("Publisher").
		Where("quantity_in_stock < minimum_threshold").
		Order("quantity_in_stock ASC, title ASC").
		Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// SalesBetween sums completed orders placed in [from, to).
func (r *reportRepository) SalesBetween(db *gorm.DB, from, to time.Time) (SalesTotal, error) {
	if db == nil {
		db = r.db
	}
	var out SalesTotal
	err := db.Model(&models.Order{}).
		Select("COUNT(id) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("status = ? AND order_date >= ? AND order_date < ?", models.OrderStatusCompleted, from, to).
		Scan(&out).Error
	return out, err
}

func (r *reportRepository) TopCustomers(db *gorm.DB, since time.Time, limit int) ([]CustomerSales, error) {
	if db == nil {
		db = r.db
	}
	var rows []CustomerSales
	err := db.Table("orders").
		Select(`customers.id AS customer_id, customers.first_name, customers.last_name, customers.email,
			COUNT(orders.id) AS order_count, COALESCE(SUM(orders.total_amount), 0) AS total_spent`).
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Where("orders.status = ? AND orders.order_date >= ?", models.OrderStatusCompleted, since).
		Group("customers.id, customers.first_name, customers.last_name, customers.email").
		Order("total_spent DESC, customers.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) TopSellingBooks(db *gorm.DB, since time.Time, limit int) ([]BookSales, error) {
	if db == nil {
		db = r.db
	}
	var rows []BookSales
	err := db.Table("order_items").
		Select(`order_items.isbn, books.title,
			COALESCE(SUM(order_items.quantity), 0) AS copies_sold,
			COALESCE(SUM(order_items.quantity * order_items.unit_price), 0) AS revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN books ON books.isbn = order_items.isbn").
		Where("orders.status = ? AND orders.order_date >= ?", models.OrderStatusCompleted, since).
		Group("order_items.isbn, books.title").
		Order("copies_sold DESC, order_items.isbn ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
