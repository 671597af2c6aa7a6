package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Category string

const (
	CategoryScience   Category = "Science"
	CategoryArt       Category = "Art"
	CategoryReligion  Category = "Religion"
	CategoryHistory   Category = "History"
	CategoryGeography Category = "Geography"
)

// Categories lists the fixed set of book categories in display order.
var Categories = []Category{
	CategoryScience,
	CategoryArt,
	CategoryReligion,
	CategoryHistory,
	CategoryGeography,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

type PublisherOrderStatus string

const (
	PublisherOrderPending   PublisherOrderStatus = "Pending"
	PublisherOrderConfirmed PublisherOrderStatus = "Confirmed"
	PublisherOrderCancelled PublisherOrderStatus = "Cancelled"
)

// DefaultBookImage is shown when a book has no stored image reference.
const DefaultBookImage = "default-book.png"

type Publisher struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Address string `gorm:"size:255" json:"address,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
}

type Book struct {
	ISBN             string          `gorm:"primaryKey;size:20" json:"isbn"`
	Title            string          `gorm:"size:255;not null;index" json:"title"`
	PublisherID      uint            `gorm:"not null;index" json:"publisher_id"`
	Publisher        Publisher       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"publisher"`
	PublicationYear  int             `json:"publication_year"`
	SellingPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"selling_price"`
	Category         Category        `gorm:"size:20;not null;index" json:"category"`
	ImageURL         *string         `gorm:"size:255" json:"image_url"`
	QuantityInStock  int             `gorm:"not null;check:chk_books_stock_non_negative,quantity_in_stock >= 0" json:"quantity_in_stock"`
	MinimumThreshold int             `gorm:"not null;check:chk_books_threshold_non_negative,minimum_threshold >= 0" json:"minimum_threshold"`
	Authors          []BookAuthor    `gorm:"foreignKey:ISBN;references:ISBN" json:"authors,omitempty"`
}

// Image returns the stored image reference or the default display asset.
func (b Book) Image() string {
	if b.ImageURL == nil || *b.ImageURL == "" {
		return DefaultBookImage
	}
	return *b.ImageURL
}

// AuthorNames returns the display names of preloaded author links.
func (b Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, link := range b.Authors {
		names = append(names, link.Author.Name)
	}
	return names
}

type Author struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

type BookAuthor struct {
	ISBN     string `gorm:"primaryKey;size:20" json:"isbn"`
	AuthorID uint   `gorm:"primaryKey" json:"author_id"`
	Author   Author `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"author"`
}

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Address struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CustomerID uint   `gorm:"not null;index" json:"customer_id"`
	Line1      string `gorm:"size:255;not null" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2,omitempty"`
	City       string `gorm:"size:100;not null" json:"city"`
	State      string `gorm:"size:100" json:"state,omitempty"`
	Country    string `gorm:"size:100;not null" json:"country"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Type       string `gorm:"size:20;not null" json:"type"`
	IsDefault  bool   `gorm:"not null" json:"is_default"`
}

// PaymentMethod is a card the customer chose to keep. Only the last four
// digits of the card number are stored.
type PaymentMethod struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CustomerID     uint           `gorm:"not null;index" json:"customer_id"`
	CardLast4      string         `gorm:"size:4;not null" json:"card_last4"`
	CardHolderName string         `gorm:"size:255;not null" json:"card_holder_name"`
	ExpiryDate     datatypes.Date `gorm:"not null" json:"expiry_date"`
	CardType       string         `gorm:"size:20;not null" json:"card_type"`
	IsDefault      bool           `gorm:"not null" json:"is_default"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CustomerPhone is a contact number; at most one per customer is primary.
type CustomerPhone struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Customer   Customer  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Number     string    `gorm:"size:30;not null" json:"number"`
	Type       string    `gorm:"size:20;not null" json:"type"`
	IsPrimary  bool      `gorm:"not null" json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID uint       `gorm:"not null;uniqueIndex" json:"customer_id"`
	Customer   Customer   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
}

type CartItem struct {
	CartID   uint   `gorm:"primaryKey" json:"cart_id"`
	ISBN     string `gorm:"primaryKey;size:20" json:"isbn"`
	Book     Book   `gorm:"foreignKey:ISBN;references:ISBN;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"book"`
	Quantity int    `gorm:"not null" json:"quantity"`
}

type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Reference         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"reference"`
	CustomerID        uint            `gorm:"not null;index" json:"customer_id"`
	PaymentMethodID   *uint           `gorm:"index" json:"payment_method_id"`
	PaymentReference  string          `gorm:"size:64;not null" json:"payment_reference"`
	ShippingAddressID uint            `gorm:"not null" json:"shipping_address_id"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status            OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	OrderDate         time.Time       `gorm:"not null;index" json:"order_date"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ISBN      string          `gorm:"size:20;not null;index" json:"isbn"`
	Book      Book            `gorm:"foreignKey:ISBN;references:ISBN;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// PublisherOrder is a replenishment request sent to a book's publisher.
type PublisherOrder struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	ISBN        string               `gorm:"size:20;not null;index" json:"isbn"`
	Book        Book                 `gorm:"foreignKey:ISBN;references:ISBN;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Quantity    int                  `gorm:"not null" json:"quantity"`
	Status      PublisherOrderStatus `gorm:"size:20;not null;index" json:"status"`
	OrderDate   time.Time            `gorm:"not null" json:"order_date"`
	ConfirmedAt *time.Time           `json:"confirmed_at"`
}

// All returns every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Publisher{},
		&Author{},
		&Book{},
		&BookAuthor{},
		&Customer{},
		&CustomerPhone{},
		&Address{},
		&PaymentMethod{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&PublisherOrder{},
	}
}
