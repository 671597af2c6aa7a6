package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// Address types offered by the profile form.
var addressTypes = map[string]bool{
	"Home":     true,
	"Work":     true,
	"Shipping": true,
	"Billing":  true,
}

// Phone types offered by the profile form.
var phoneTypes = map[string]bool{
	"Mobile": true,
	"Home":   true,
	"Work":   true,
}

const (
	defaultAddressType = "Home"
	defaultCountry     = "Egypt"
	defaultPhoneType   = "Mobile"
)

var validate = validator.New()

type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

type PhoneInput struct {
	Number string
	Type   string
}

type AddressInput struct {
	Line1      string
	Line2      string
	City       string
	State      string
	Country    string
	PostalCode string
	Type       string
	IsDefault  bool
}

// ProfileService manages the customer's own details and contact numbers,
// plus the saved addresses and payment methods offered at checkout.
type ProfileService interface {
	GetProfile(ctx context.Context, customerID uint) (*models.Customer, error)
	UpdateProfile(ctx context.Context, customerID uint, in ProfileInput) (*models.Customer, error)

	ListPhones(ctx context.Context, customerID uint) ([]models.CustomerPhone, error)
	AddPhone(ctx context.Context, customerID uint, in PhoneInput) (*models.CustomerPhone, error)
	DeletePhone(ctx context.Context, customerID, phoneID uint) error
	SetPrimaryPhone(ctx context.Context, customerID, phoneID uint) error

	ListAddresses(ctx context.Context, customerID uint) ([]models.Address, error)
	AddAddress(ctx context.Context, customerID uint, in AddressInput) (*models.Address, error)
	DeleteAddress(ctx context.Context, customerID, addressID uint) error
	SetDefaultAddress(ctx context.Context, customerID, addressID uint) error

	ListPaymentMethods(ctx context.Context, customerID uint) ([]models.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, customerID, paymentID uint) error
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentID uint) error
}

type profileService struct {
	db           *gorm.DB
	customerRepo repositories.CustomerRepository
	phoneRepo    repositories.PhoneRepository
	addressRepo  repositories.AddressRepository
	paymentRepo  repositories.PaymentMethodRepository
	orderRepo    repositories.OrderRepository
}

func NewProfileService(
	db *gorm.DB,
	customerRepo repositories.CustomerRepository,
	phoneRepo repositories.PhoneRepository,
	addressRepo repositories.AddressRepository,
	paymentRepo repositories.PaymentMethodRepository,
	orderRepo repositories.OrderRepository,
) ProfileService {
	return &profileService{
		db:           db,
		customerRepo: customerRepo,
		phoneRepo:    phoneRepo,
		addressRepo:  addressRepo,
		paymentRepo:  paymentRepo,
		orderRepo:    orderRepo,
	}
}

// ─── Customer Details ─────────────────────────────────────────────────────────

func (s *profileService) GetProfile(ctx context.Context, customerID uint) (*models.Customer, error) {
	customer, err := s.customerRepo.Get(s.db.WithContext(ctx), customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrorf("Customer not found")
		}
		return nil, err
	}
	return customer, nil
}

// UpdateProfile replaces the customer's name and email. The username is
// fixed at registration.
func (s *profileService) UpdateProfile(ctx context.Context, customerID uint, in ProfileInput) (*models.Customer, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	email := strings.TrimSpace(in.Email)
	if first == "" || last == "" || email == "" {
		return nil, validationErrorf("Please fill in all required fields")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, validationErrorf("Invalid email address")
	}

	var customer *models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		customer, err = s.customerRepo.Get(tx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrorf("Customer not found")
			}
			return err
		}
		customer.FirstName, customer.LastName, customer.Email = first, last, email
		if err := s.customerRepo.UpdateDetails(tx, customer); err != nil {
			if isUniqueViolation(err) {
				return conflictErrorf("Email %s is already in use", email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] UpdateProfile: customer %d: %v", customerID, err)
		return nil, err
	}
	log.Printf("[INFO] UpdateProfile: customer %d updated", customerID)
	return customer, nil
}

// ─── Phones ───────────────────────────────────────────────────────────────────

func (s *profileService) ListPhones(ctx context.Context, customerID uint) ([]models.CustomerPhone, error) {
	return s.phoneRepo.ListByCustomer(s.db.WithContext(ctx), customerID)
}

// AddPhone stores a contact number. The first number of a customer becomes
// the primary one.
func (s *profileService) AddPhone(ctx context.Context, customerID uint, in PhoneInput) (*models.CustomerPhone, error) {
	phone := &models.CustomerPhone{
		CustomerID: customerID,
		Number:     strings.TrimSpace(in.Number),
		Type:       strings.TrimSpace(in.Type),
	}
	if phone.Number == "" {
		return nil, validationErrorf("Phone number is required")
	}
	if err := validate.Var(phone.Number, "max=30"); err != nil {
		return nil, validationErrorf("Phone number is too long")
	}
	if phone.Type == "" {
		phone.Type = defaultPhoneType
	}
	if !phoneTypes[phone.Type] {
		return nil, validationErrorf("Unknown phone type %q", phone.Type)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.phoneRepo.ListByCustomer(tx, customerID)
		if err != nil {
			return err
		}
		if err := s.phoneRepo.Create(tx, phone); err != nil {
			if isForeignKeyViolation(err) {
				return notFoundErrorf("Customer not found")
			}
			return err
		}
		if len(existing) == 0 {
			if err := s.phoneRepo.SetPrimary(tx, customerID, phone.ID); err != nil {
				return err
			}
			phone.IsPrimary = true
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] AddPhone: customer %d: %v", customerID, err)
		return nil, err
	}
	log.Printf("[INFO] AddPhone: phone %d added for customer %d", phone.ID, customerID)
	return phone, nil
}

func (s *profileService) DeletePhone(ctx context.Context, customerID, phoneID uint) error {
	n, err := s.phoneRepo.Delete(s.db.WithContext(ctx), customerID, phoneID)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundErrorf("Phone not found")
	}
	log.Printf("[INFO] DeletePhone: phone %d of customer %d deleted", phoneID, customerID)
	return nil
}

func (s *profileService) SetPrimaryPhone(ctx context.Context, customerID, phoneID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.phoneRepo.GetOwned(tx, customerID, phoneID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrorf("Phone not found")
			}
			return err
		}
		return s.phoneRepo.SetPrimary(tx, customerID, phoneID)
	})
}

// ─── Addresses ────────────────────────────────────────────────────────────────

func (s *profileService) ListAddresses(ctx context.Context, customerID uint) ([]models.Address, error) {
	return s.addressRepo.ListByCustomer(s.db.WithContext(ctx), customerID)
}

// AddAddress stores a new address. The first address of a customer becomes
// the default.
func (s *profileService) AddAddress(ctx context.Context, customerID uint, in AddressInput) (*models.Address, error) {
	address := &models.Address{
		CustomerID: customerID,
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Country:    strings.TrimSpace(in.Country),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Type:       strings.TrimSpace(in.Type),
	}
	if address.Line1 == "" || address.City == "" {
		return nil, validationErrorf("Address line and city are required")
	}
	if address.Country == "" {
		address.Country = defaultCountry
	}
	if address.Type == "" {
		address.Type = defaultAddressType
	}
	if !addressTypes[address.Type] {
		return nil, validationErrorf("Unknown address type %q", address.Type)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.addressRepo.ListByCustomer(tx, customerID)
		if err != nil {
			return err
		}
		if err := s.addressRepo.Create(tx, address); err != nil {
			return err
		}
		if in.IsDefault || len(existing) == 0 {
			if err := s.addressRepo.SetDefault(tx, customerID, address.ID); err != nil {
				return err
			}
			address.IsDefault = true
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] AddAddress: customer %d: %v", customerID, err)
		return nil, err
	}
	log.Printf("[INFO] AddAddress: address %d added for customer %d", address.ID, customerID)
	return address, nil
}

// DeleteAddress removes an address that no order was shipped to.
func (s *profileService) DeleteAddress(ctx context.Context, customerID, addressID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.addressRepo.GetOwned(tx, customerID, addressID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrorf("Address not found")
			}
			return err
		}
		used, err := s.orderRepo.CountByShippingAddress(tx, addressID)
		if err != nil {
			return err
		}
		if used > 0 {
			return integrityErrorf("Cannot delete this address because %d order(s) were shipped to it.", used)
		}
		n, err := s.addressRepo.Delete(tx, customerID, addressID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return integrityErrorf("Cannot delete this address because orders were shipped to it.")
			}
			return err
		}
		if n == 0 {
			return notFoundErrorf("Address not found")
		}
		log.Printf("[INFO] DeleteAddress: address %d of customer %d deleted", addressID, customerID)
		return nil
	})
}

func (s *profileService) SetDefaultAddress(ctx context.Context, customerID, addressID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.addressRepo.GetOwned(tx, customerID, addressID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrorf("Address not found")
			}
			return err
		}
		return s.addressRepo.SetDefault(tx, customerID, addressID)
	})
}

// ─── Payment Methods ──────────────────────────────────────────────────────────

func (s *profileService) ListPaymentMethods(ctx context.Context, customerID uint) ([]models.PaymentMethod, error) {
	return s.paymentRepo.ListByCustomer(s.db.WithContext(ctx), customerID)
}

// DeletePaymentMethod forgets a saved card. Orders paid with it keep their
// masked payment reference.
func (s *profileService) DeletePaymentMethod(ctx context.Context, customerID, paymentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.paymentRepo.GetOwned(tx, customerID, paymentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrorf("Payment method not found")
			}
			return err
		}
		if err := s.orderRepo.DetachPaymentMethod(tx, paymentID); err != nil {
			return err
		}
		if _, err := s.paymentRepo.Delete(tx, customerID, paymentID); err != nil {
			return err
		}
		log.Printf("[INFO] DeletePaymentMethod: payment method %d of customer %d deleted", paymentID, customerID)
		return nil
	})
}

func (s *profileService) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.paymentRepo.GetOwned(tx, customerID, paymentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrorf("Payment method not found")
			}
			return err
		}
		return s.paymentRepo.SetDefault(tx, customerID, paymentID)
	})
}
