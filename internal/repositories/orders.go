package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore/internal/models"
)

type OrderRepository interface {
	Create(db *gorm.DB, order *models.Order) error
	CreateItem(db *gorm.DB, item *models.OrderItem) error
	GetByID(db *gorm.DB, id uint) (*models.Order, error)
	ListByCustomer(db *gorm.DB, customerID uint) ([]models.Order, error)
	UpdateStatus(db *gorm.DB, id uint, status models.OrderStatus) (int64, error)
	CountItemsByISBN(db *gorm.DB, isbn string) (int64, error)
	CountByShippingAddress(db *gorm.DB, addressID uint) (int64, error)
	DetachPaymentMethod(db *gorm.DB, paymentMethodID uint) error
}

type PublisherOrderRepository interface {
	Create(db *gorm.DB, order *models.PublisherOrder) error
	GetByIDForUpdate(db *gorm.DB, id uint) (*models.PublisherOrder, error)
	HasPending(db *gorm.DB, isbn string) (bool, error)
	MarkConfirmed(db *gorm.DB, id uint, at time.Time) error
	MarkCancelled(db *gorm.DB, id uint) error
	List(db *gorm.DB, status models.PublisherOrderStatus) ([]models.PublisherOrder, error)
	DeleteByISBN(db *gorm.DB, isbn string) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(db *gorm.DB, order *models.Order) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(order).Error
}

func (r *orderRepository) CreateItem(db *gorm.DB, item *models.OrderItem) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(item).Error
}

func (r *orderRepository) GetByID(db *gorm.DB, id uint) (*models.Order, error) {
	if db == nil {
		db = r.db
	}
	var order models.Order
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByCustomer(db *gorm.DB, customerID uint) ([]models.Order, error) {
	if db == nil {
		db = r.db
	}
	var orders []models.Order
	if err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("customer_id = ?", customerID).
		Order("order_date DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(db *gorm.DB, id uint, status models.OrderStatus) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	return res.RowsAffected, res.Error
}

func (r *orderRepository) CountItemsByISBN(db *gorm.DB, isbn string) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.OrderItem{}).Where("isbn = ?", isbn).Count(&count).Error
	return count, err
}

func (r *orderRepository) CountByShippingAddress(db *gorm.DB, addressID uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Order{}).Where("shipping_address_id = ?", addressID).Count(&count).Error
	return count, err
}

// DetachPaymentMethod clears the saved-method link on past orders. Their
// masked payment reference stays.
func (r *orderRepository) DetachPaymentMethod(db *gorm.DB, paymentMethodID uint) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Order{}).
		Where("payment_method_id = ?", paymentMethodID).
		UpdateColumn("payment_method_id", nil).Error
}

type publisherOrderRepository struct {
	db *gorm.DB
}

func NewPublisherOrderRepository(db *gorm.DB) PublisherOrderRepository {
	return &publisherOrderRepository{db: db}
}

func (r *publisherOrderRepository) Create(db *gorm.DB, order *models.PublisherOrder) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(order).Error
}

func (r *publisherOrderRepository) GetByIDForUpdate(db *gorm.DB, id uint) (*models.PublisherOrder, error) {
	if db == nil {
		db = r.db
	}
	var order models.PublisherOrder
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *publisherOrderRepository) HasPending(db *gorm.DB, isbn string) (bool, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.PublisherOrder{}).
		Where("isbn = ? AND status = ?", isbn, models.PublisherOrderPending).
		Count(&count).Error
	return count > 0, err
}

func (r *publisherOrderRepository) MarkConfirmed(db *gorm.DB, id uint, at time.Time) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.PublisherOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.PublisherOrderConfirmed,
			"confirmed_at": at,
		}).Error
}

func (r *publisherOrderRepository) MarkCancelled(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.PublisherOrder{}).
		Where("id = ?", id).
		Update("status", models.PublisherOrderCancelled).
		Error
}

// List returns publisher orders newest first; an empty status lists all.
func (r *publisherOrderRepository) List(db *gorm.DB, status models.PublisherOrderStatus) ([]models.PublisherOrder, error) {
	if db == nil {
		db = r.db
	}
	q := db.Model(&models.PublisherOrder{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []models.PublisherOrder
	if err := q.Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *publisherOrderRepository) DeleteByISBN(db *gorm.DB, isbn string) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.PublisherOrder{}, "isbn = ?", isbn).Error
}
