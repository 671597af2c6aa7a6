package repositories

import (
	"gorm.io/gorm"

	"bookstore/internal/models"
)

type CustomerRepository interface {
	Get(db *gorm.DB, id uint) (*models.Customer, error)
	UpdateDetails(db *gorm.DB, customer *models.Customer) error
}

type PhoneRepository interface {
	Create(db *gorm.DB, phone *models.CustomerPhone) error
	GetOwned(db *gorm.DB, customerID, id uint) (*models.CustomerPhone, error)
	ListByCustomer(db *gorm.DB, customerID uint) ([]models.CustomerPhone, error)
	Delete(db *gorm.DB, customerID, id uint) (int64, error)
	SetPrimary(db *gorm.DB, customerID, id uint) error
}

type AddressRepository interface {
	Create(db *gorm.DB, address *models.Address) error
	GetOwned(db *gorm.DB, customerID, id uint) (*models.Address, error)
	FirstForCustomer(db *gorm.DB, customerID uint) (*models.Address, error)
	ListByCustomer(db *gorm.DB, customerID uint) ([]models.Address, error)
	Delete(db *gorm.DB, customerID, id uint) (int64, error)
	SetDefault(db *gorm.DB, customerID, id uint) error
}

type PaymentMethodRepository interface {
	Create(db *gorm.DB, method *models.PaymentMethod) error
	GetOwned(db *gorm.DB, customerID, id uint) (*models.PaymentMethod, error)
	ListByCustomer(db *gorm.DB, customerID uint) ([]models.PaymentMethod, error)
	Delete(db *gorm.DB, customerID, id uint) (int64, error)
	SetDefault(db *gorm.DB, customerID, id uint) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Get(db *gorm.DB, id uint) (*models.Customer, error) {
	if db == nil {
		db = r.db
	}
	var customer models.Customer
	if err := db.First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateDetails writes the editable name and email columns only.
func (r *customerRepository) UpdateDetails(db *gorm.DB, customer *models.Customer) error {
	if db == nil {
		db = r.db
	}
	return db.Model(customer).
		Updates(map[string]interface{}{
			"first_name": customer.FirstName,
			"last_name":  customer.LastName,
			"email":      customer.Email,
		}).Error
}

type phoneRepository struct {
	db *gorm.DB
}

func NewPhoneRepository(db *gorm.DB) PhoneRepository {
	return &phoneRepository{db: db}
}

func (r *phoneRepository) Create(db *gorm.DB, phone *models.CustomerPhone) error {
	if db == nil {
		db = r.db
	}
	return db.Create(phone).Error
}

func (r *phoneRepository) GetOwned(db *gorm.DB, customerID, id uint) (*models.CustomerPhone, error) {
	if db == nil {
		db = r.db
	}
	var phone models.CustomerPhone
	if err := db.Where("id = ? AND customer_id = ?", id, customerID).First(&phone).Error; err != nil {
		return nil, err
	}
	return &phone, nil
}

func (r *phoneRepository) ListByCustomer(db *gorm.DB, customerID uint) ([]models.CustomerPhone, error) {
	if db == nil {
		db = r.db
	}
	var phones []models.CustomerPhone
	if err := db.Where("customer_id = ?", customerID).
		Order("is_primary DESC, id ASC").
		Find(&phones).Error; err != nil {
		return nil, err
	}
	return phones, nil
}

func (r *phoneRepository) Delete(db *gorm.DB, customerID, id uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Delete(&models.CustomerPhone{}, "id = ? AND customer_id = ?", id, customerID)
	return res.RowsAffected, res.Error
}

// SetPrimary clears the flag first so the one-primary index never sees two.
func (r *phoneRepository) SetPrimary(db *gorm.DB, customerID, id uint) error {
	if db == nil {
		db = r.db
	}
	if err := db.Model(&models.CustomerPhone{}).
		Where("customer_id = ?", customerID).
		UpdateColumn("is_primary", false).Error; err != nil {
		return err
	}
	return db.Model(&models.CustomerPhone{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		UpdateColumn("is_primary", true).Error
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(db *gorm.DB, address *models.Address) error {
	if db == nil {
		db = r.db
	}
	return db.Create(address).Error
}

func (r *addressRepository) GetOwned(db *gorm.DB, customerID, id uint) (*models.Address, error) {
	if db == nil {
		db = r.db
	}
	var address models.Address
	if err := db.Where("id = ? AND customer_id = ?", id, customerID).First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// FirstForCustomer returns the default address, or the oldest one when none
// is flagged as default.
func (r *addressRepository) FirstForCustomer(db *gorm.DB, customerID uint) (*models.Address, error) {
	if db == nil {
		db = r.db
	}
	var address models.Address
	err := db.Where("customer_id = ?", customerID).
		Order("is_default DESC, id ASC").
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) ListByCustomer(db *gorm.DB, customerID uint) ([]models.Address, error) {
	if db == nil {
		db = r.db
	}
	var addresses []models.Address
	if err := db.Where("customer_id = ?", customerID).
		Order("is_default DESC, id ASC").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *addressRepository) Delete(db *gorm.DB, customerID, id uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Delete(&models.Address{}, "id = ? AND customer_id = ?", id, customerID)
	return res.RowsAffected, res.Error
}

func (r *addressRepository) SetDefault(db *gorm.DB, customerID, id uint) error {
	if db == nil {
		db = r.db
	}
	if err := db.Model(&models.Address{}).
		Where("customer_id = ?", customerID).
		UpdateColumn("is_default", false).Error; err != nil {
		return err
	}
	return db.Model(&models.Address{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		UpdateColumn("is_default", true).Error
}

type paymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) Create(db *gorm.DB, method *models.PaymentMethod) error {
	if db == nil {
		db = r.db
	}
	return db.Create(method).Error
}

func (r *paymentMethodRepository) GetOwned(db *gorm.DB, customerID, id uint) (*models.PaymentMethod, error) {
	if db == nil {
		db = r.db
	}
	var method models.PaymentMethod
	if err := db.Where("id = ? AND customer_id = ?", id, customerID).First(&method).Error; err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *paymentMethodRepository) ListByCustomer(db *gorm.DB, customerID uint) ([]models.PaymentMethod, error) {
	if db == nil {
		db = r.db
	}
	var methods []models.PaymentMethod
	if err := db.Where("customer_id = ?", customerID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *paymentMethodRepository) Delete(db *gorm.DB, customerID, id uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Delete(&models.PaymentMethod{}, "id = ? AND customer_id = ?", id, customerID)
	return res.RowsAffected, res.Error
}

func (r *paymentMethodRepository) SetDefault(db *gorm.DB, customerID, id uint) error {
	if db == nil {
		db = r.db
	}
	if err := db.Model(&models.PaymentMethod{}).
		Where("customer_id = ?", customerID).
		UpdateColumn("is_default", false).Error; err != nil {
		return err
	}
	return db.Model(&models.PaymentMethod{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		UpdateColumn("is_default", true).Error
}
