package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore/internal/models"
)

type CartRepository interface {
	GetByCustomer(db *gorm.DB, customerID uint) (*models.Cart, error)
	Create(db *gorm.DB, cart *models.Cart) error
	ListItems(db *gorm.DB, cartID uint) ([]models.CartItem, error)
	GetItem(db *gorm.DB, cartID uint, isbn string) (*models.CartItem, error)
	CreateItem(db *gorm.DB, item *models.CartItem) error
	UpdateItemQuantity(db *gorm.DB, cartID uint, isbn string, qty int) error
	DeleteItem(db *gorm.DB, cartID uint, isbn string) error
	ClearItems(db *gorm.DB, cartID uint) error
	DeleteItemsByISBN(db *gorm.DB, isbn string) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetByCustomer(db *gorm.DB, customerID uint) (*models.Cart, error) {
	if db == nil {
		db = r.db
	}
	var cart models.Cart
	if err := db.Where("customer_id = ?", customerID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Create(db *gorm.DB, cart *models.Cart) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(cart).Error
}

// ListItems returns the cart lines with their books, ordered by ISBN.
func (r *cartRepository) ListItems(db *gorm.DB, cartID uint) ([]models.CartItem, error) {
	if db == nil {
		db = r.db
	}
	var items []models.CartItem
	if err := db.Preload("Book").
		Where("cart_id = ?", cartID).
		Order("isbn").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) GetItem(db *gorm.DB, cartID uint, isbn string) (*models.CartItem, error) {
	if db == nil {
		db = r.db
	}
	var item models.CartItem
	if err := db.Where("cart_id = ? AND isbn = ?", cartID, isbn).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(db *gorm.DB, item *models.CartItem) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(item).Error
}

func (r *cartRepository) UpdateItemQuantity(db *gorm.DB, cartID uint, isbn string, qty int) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.CartItem{}).
		Where("cart_id = ? AND isbn = ?", cartID, isbn).
		UpdateColumn("quantity", qty).
		Error
}

func (r *cartRepository) DeleteItem(db *gorm.DB, cartID uint, isbn string) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.CartItem{}, "cart_id = ? AND isbn = ?", cartID, isbn).Error
}

func (r *cartRepository) ClearItems(db *gorm.DB, cartID uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}

func (r *cartRepository) DeleteItemsByISBN(db *gorm.DB, isbn string) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.CartItem{}, "isbn = ?", isbn).Error
}
