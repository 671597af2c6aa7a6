package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// newTestDB opens a private in-memory database. A single connection
// serializes transactions the way row locks do on PostgreSQL. Extra DSN
// parameters such as "_foreign_keys=1" are appended as given.
func newTestDB(t *testing.T, params ...string) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	for _, p := range params {
		dsn += "&" + p
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, m := range models.All() {
		require.NoError(t, db.AutoMigrate(m))
	}
	return db
}

type fixture struct {
	db              *gorm.DB
	catalog         CatalogService
	carts           CartService
	orders          OrderService
	profiles        ProfileService
	publisherOrders PublisherOrderService
	reports         ReportService
	publisher       models.Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	bookRepo := repositories.NewBookRepository(db)
	authorRepo := repositories.NewAuthorRepository(db)
	publisherRepo := repositories.NewPublisherRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	publisherOrderRepo := repositories.NewPublisherOrderRepository(db)
	addressRepo := repositories.NewAddressRepository(db)
	paymentRepo := repositories.NewPaymentMethodRepository(db)

	f := &fixture{
		db: db,
		catalog: NewCatalogService(db, bookRepo, authorRepo, publisherRepo,
			cartRepo, orderRepo, publisherOrderRepo, DefaultReorderQuantity),
		carts: NewCartService(db, bookRepo, cartRepo),
		orders: NewOrderService(db, bookRepo, cartRepo, orderRepo,
			addressRepo, paymentRepo, publisherOrderRepo, DefaultReorderQuantity),
		profiles: NewProfileService(db, repositories.NewCustomerRepository(db), repositories.NewPhoneRepository(db),
			addressRepo, paymentRepo, orderRepo),
		publisherOrders: NewPublisherOrderService(db, bookRepo, publisherOrderRepo),
		reports:         NewReportService(db, repositories.NewReportRepository(db)),
	}

	f.publisher = models.Publisher{Name: "Penguin Books"}
	require.NoError(t, db.Create(&f.publisher).Error)
	return f
}

// addBook creates a book with one author. threshold 0 keeps replenishment
// out of the way unless a test asks for it.
func (f *fixture) addBook(t *testing.T, isbn, title, price string, stock, threshold int) *models.Book {
	t.Helper()
	book, err := f.catalog.CreateBook(context.Background(), BookInput{
		ISBN:             isbn,
		Title:            title,
		PublisherID:      f.publisher.ID,
		PublicationYear:  2020,
		SellingPrice:     decimal.RequireFromString(price),
		Category:         models.CategoryScience,
		QuantityInStock:  stock,
		MinimumThreshold: &threshold,
	}, []AuthorRef{NewAuthor("Test Author")})
	require.NoError(t, err)
	return book
}

func (f *fixture) addCustomer(t *testing.T, username string) models.Customer {
	t.Helper()
	c := models.Customer{
		Username:  username,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Tester",
		Email:     username + "@example.com",
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) addAddress(t *testing.T, customerID uint, isDefault bool) *models.Address {
	t.Helper()
	address, err := f.profiles.AddAddress(context.Background(), customerID, AddressInput{
		Line1:     "1 Nile Corniche",
		City:      "Cairo",
		IsDefault: isDefault,
	})
	require.NoError(t, err)
	return address
}

func (f *fixture) stockOf(t *testing.T, isbn string) int {
	t.Helper()
	var book models.Book
	require.NoError(t, f.db.First(&book, "isbn = ?", isbn).Error)
	return book.QuantityInStock
}

func (f *fixture) cartLines(t *testing.T, customerID uint) map[string]int {
	t.Helper()
	view, err := f.carts.GetCart(context.Background(), customerID)
	require.NoError(t, err)
	lines := map[string]int{}
	for _, item := range view.Items {
		lines[item.ISBN] = item.Quantity
	}
	return lines
}

func (f *fixture) setOrderClock(now time.Time) {
	f.orders.(*orderService).now = func() time.Time { return now }
}

func visaCard() *NewCard {
	return &NewCard{
		Number:      "4111 1111 1111 1111",
		HolderName:  "Amira Hassan",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 3,
		CardType:    "Visa",
	}
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind, "got %v", err)
}
