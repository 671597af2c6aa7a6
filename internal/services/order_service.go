package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// PaymentChoice selects a saved payment method by ID, or carries a new card.
// A positive SavedPaymentID wins over NewCard.
type PaymentChoice struct {
	SavedPaymentID uint
	NewCard        *NewCard
}

// AddressChoice selects a saved address by ID; zero falls back to the
// customer's default address.
type AddressChoice struct {
	SavedAddressID uint
}

type CheckoutRequest struct {
	Payment PaymentChoice
	Address AddressChoice
}

// OrderService places orders from carts and serves order history.
type OrderService interface {
	Checkout(ctx context.Context, customerID uint, req CheckoutRequest) (*models.Order, error)
	ListOrders(ctx context.Context, customerID uint) ([]models.Order, error)
	GetOrder(ctx context.Context, customerID, orderID uint) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	db          *gorm.DB
	bookRepo    repositories.BookRepository
	cartRepo    repositories.CartRepository
	orderRepo   repositories.OrderRepository
	addressRepo repositories.AddressRepository
	paymentRepo repositories.PaymentMethodRepository
	restock     *restocker
	now         func() time.Time
}

// NewOrderService wires up all dependencies and returns an OrderService.
func NewOrderService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	cartRepo repositories.CartRepository,
	orderRepo repositories.OrderRepository,
	addressRepo repositories.AddressRepository,
	paymentRepo repositories.PaymentMethodRepository,
	publisherOrderRepo repositories.PublisherOrderRepository,
	reorderQuantity int,
) OrderService {
	return &orderService{
		db:          db,
		bookRepo:    bookRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		paymentRepo: paymentRepo,
		restock:     newRestocker(publisherOrderRepo, reorderQuantity),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ─── Checkout ─────────────────────────────────────────────────────────────────

// paymentRef is the payment side of an order.
type paymentRef struct {
	methodID  *uint
	reference string
}

// Checkout turns the customer's cart into an order.
//
// Steps (all in one transaction):
//  1. Resolve the payment: a saved method owned by the customer, or a
//     validated new card.
//  2. Resolve the shipping address: the chosen one, else the default.
//  3. Lock every book in the cart (FOR UPDATE) and re-check stock.
//  4. Insert the order with the total at current prices, status Completed.
//  5. Insert one item per line with the unit price snapshot and take the
//     copies out of stock.
//  6. Clear the cart.
//
// Any failure rolls back every step and leaves the cart untouched.
func (s *orderService) Checkout(ctx context.Context, customerID uint, req CheckoutRequest) (*models.Order, error) {
	var placed *models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.GetByCustomer(tx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationErrorf("Your cart is empty")
			}
			return err
		}
		lines, err := s.cartRepo.ListItems(tx, cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return validationErrorf("Your cart is empty")
		}

		// 1. Payment.
		payment, err := s.resolvePayment(tx, customerID, req.Payment)
		if err != nil {
			return err
		}

		// 2. Shipping address.
		address, err := s.resolveAddress(tx, customerID, req.Address)
		if err != nil {
			return err
		}

		// 3. Lock books and re-check stock.
		books, err := s.lockStock(tx, lines)
		if err != nil {
			return err
		}

		// 4. Order row.
		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(lineTotal(books[line.ISBN].SellingPrice, line.Quantity))
		}
		order := &models.Order{
			Reference:         uuid.New(),
			CustomerID:        customerID,
			PaymentMethodID:   payment.methodID,
			PaymentReference:  payment.reference,
			ShippingAddressID: address.ID,
			TotalAmount:       total,
			Status:            models.OrderStatusCompleted,
			OrderDate:         s.now(),
		}
		if err := s.orderRepo.Create(tx, order); err != nil {
			log.Printf("[ERROR] Checkout: failed to create order for customer %d: %v", customerID, err)
			return err
		}

		// 5. Items and stock.
		for _, line := range lines {
			book := books[line.ISBN]
			item := &models.OrderItem{
				OrderID:   order.ID,
				ISBN:      line.ISBN,
				Quantity:  line.Quantity,
				UnitPrice: book.SellingPrice,
			}
			if err := s.orderRepo.CreateItem(tx, item); err != nil {
				log.Printf("[ERROR] Checkout: failed to add %s to order %d: %v", line.ISBN, order.ID, err)
				return err
			}
			n, err := s.bookRepo.DecrementStock(tx, line.ISBN, line.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				return conflictErrorf("Insufficient stock for: %s. Only %d available.", book.Title, book.QuantityInStock)
			}
			book.QuantityInStock -= line.Quantity
			if err := s.restock.check(tx, book); err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
		}

		// 6. Clear cart.
		if err := s.cartRepo.ClearItems(tx, cart.ID); err != nil {
			log.Printf("[ERROR] Checkout: failed to clear cart %d: %v", cart.ID, err)
			return err
		}

		placed = order
		return nil
	})
	if err != nil {
		log.Printf("[WARN] Checkout: customer %d order rejected: %v", customerID, err)
		return nil, err
	}
	log.Printf("[INFO] Checkout: order %d (ref=%s) placed by customer %d, %d item(s), total=%s",
		placed.ID, placed.Reference, customerID, len(placed.Items), placed.TotalAmount.StringFixed(2))
	return placed, nil
}

func (s *orderService) resolvePayment(tx *gorm.DB, customerID uint, choice PaymentChoice) (paymentRef, error) {
	if choice.SavedPaymentID > 0 {
		method, err := s.paymentRepo.GetOwned(tx, customerID, choice.SavedPaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return paymentRef{}, notFoundErrorf("Invalid payment method")
			}
			return paymentRef{}, err
		}
		return paymentRef{
			methodID:  &method.ID,
			reference: fmt.Sprintf("%s ****%s", method.CardType, method.CardLast4),
		}, nil
	}
	if choice.NewCard == nil {
		return paymentRef{}, validationErrorf("Please choose a payment method")
	}

	card, err := validateCard(*choice.NewCard, s.now())
	if err != nil {
		return paymentRef{}, err
	}
	ref := paymentRef{reference: card.reference()}
	if !card.save {
		return ref, nil
	}

	method := &models.PaymentMethod{
		CustomerID:     customerID,
		CardLast4:      card.last4,
		CardHolderName: card.holder,
		ExpiryDate:     card.expiryDate(),
		CardType:       card.cardType,
		CreatedAt:      s.now(),
	}
	if err := s.paymentRepo.Create(tx, method); err != nil {
		log.Printf("[ERROR] Checkout: failed to save card for customer %d: %v", customerID, err)
		return paymentRef{}, err
	}
	if err := s.paymentRepo.SetDefault(tx, customerID, method.ID); err != nil {
		return paymentRef{}, err
	}
	ref.methodID = &method.ID
	return ref, nil
}

func (s *orderService) resolveAddress(tx *gorm.DB, customerID uint, choice AddressChoice) (*models.Address, error) {
	if choice.SavedAddressID > 0 {
		address, err := s.addressRepo.GetOwned(tx, customerID, choice.SavedAddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFoundErrorf("Invalid shipping address")
			}
			return nil, err
		}
		return address, nil
	}
	address, err := s.addressRepo.FirstForCustomer(tx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationErrorf("No shipping address available. Please add an address in your profile.")
		}
		return nil, err
	}
	return address, nil
}

// lockStock locks the books of every cart line and fails with one message
// listing each line that asks for more copies than are in stock.
func (s *orderService) lockStock(tx *gorm.DB, lines []models.CartItem) (map[string]*models.Book, error) {
	isbns := lo.Map(lines, func(line models.CartItem, _ int) string { return line.ISBN })
	locked, err := s.bookRepo.LockByISBNs(tx, isbns)
	if err != nil {
		return nil, err
	}
	books := make(map[string]*models.Book, len(locked))
	for i := range locked {
		books[locked[i].ISBN] = &locked[i]
	}

	var shortages []string
	for _, line := range lines {
		book, ok := books[line.ISBN]
		if !ok {
			return nil, notFoundErrorf("Book %s is no longer available", line.ISBN)
		}
		if book.QuantityInStock < line.Quantity {
			shortages = append(shortages, fmt.Sprintf("Insufficient stock for: %s. Only %d available.", book.Title, book.QuantityInStock))
		}
	}
	if len(shortages) > 0 {
		return nil, conflictErrorf("%s", strings.Join(shortages, " "))
	}
	return books, nil
}

// ─── Order History ────────────────────────────────────────────────────────────

func (s *orderService) ListOrders(ctx context.Context, customerID uint) ([]models.Order, error) {
	return s.orderRepo.ListByCustomer(s.db.WithContext(ctx), customerID)
}

// GetOrder returns an order only to the customer who placed it.
func (s *orderService) GetOrder(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(s.db.WithContext(ctx), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrorf("Order %d not found", orderID)
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, notFoundErrorf("Order %d not found", orderID)
	}
	return order, nil
}

// UpdateOrderStatus is the admin action on an existing order; nothing else
// about the order changes.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, validationErrorf("Unknown order status %q", status)
	}
	db := s.db.WithContext(ctx)
	n, err := s.orderRepo.UpdateStatus(db, orderID, status)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, notFoundErrorf("Order %d not found", orderID)
	}
	log.Printf("[INFO] UpdateOrderStatus: order %d is now %s", orderID, status)
	return s.orderRepo.GetByID(db, orderID)
}
