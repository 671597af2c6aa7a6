package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// CartSummary is returned by every cart mutation.
type CartSummary struct {
	Count int    `json:"cart_count"`
	Total string `json:"cart_total"`
}

// CartView is the full cart with its lines.
type CartView struct {
	CartSummary
	Items []models.CartItem `json:"items"`
}

// CartService maintains the single cart of each customer.
type CartService interface {
	GetCart(ctx context.Context, customerID uint) (*CartView, error)
	AddItem(ctx context.Context, customerID uint, isbn string, qty int) (*CartSummary, error)
	UpdateQuantity(ctx context.Context, customerID uint, isbn string, qty int) (*CartSummary, error)
	RemoveItem(ctx context.Context, customerID uint, isbn string) (*CartSummary, error)
}

type cartService struct {
	db       *gorm.DB
	bookRepo repositories.BookRepository
	cartRepo repositories.CartRepository
}

func NewCartService(db *gorm.DB, bookRepo repositories.BookRepository, cartRepo repositories.CartRepository) CartService {
	return &cartService{db: db, bookRepo: bookRepo, cartRepo: cartRepo}
}

func (s *cartService) GetCart(ctx context.Context, customerID uint) (*CartView, error) {
	var view *CartView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := getOrCreateCart(tx, s.cartRepo, customerID)
		if err != nil {
			return err
		}
		items, err := s.cartRepo.ListItems(tx, cart.ID)
		if err != nil {
			return err
		}
		view = &CartView{CartSummary: summarize(items), Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddItem puts qty copies in the cart. A line already in the cart grows by
// qty, capped at the copies in stock.
func (s *cartService) AddItem(ctx context.Context, customerID uint, isbn string, qty int) (*CartSummary, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, validationErrorf("Invalid ISBN")
	}
	if qty < 1 {
		return nil, validationErrorf("Quantity must be at least 1")
	}

	var summary CartSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := s.lookupBook(tx, isbn)
		if err != nil {
			return err
		}
		if book.QuantityInStock < qty {
			return conflictErrorf("Insufficient stock for: %s. Only %d available.", book.Title, book.QuantityInStock)
		}
		cart, err := getOrCreateCart(tx, s.cartRepo, customerID)
		if err != nil {
			return err
		}

		existing, err := s.cartRepo.GetItem(tx, cart.ID, isbn)
		switch {
		case err == nil:
			newQty := min(existing.Quantity+qty, book.QuantityInStock)
			if err := s.cartRepo.UpdateItemQuantity(tx, cart.ID, isbn, newQty); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.CartItem{CartID: cart.ID, ISBN: isbn, Quantity: qty}
			if err := s.cartRepo.CreateItem(tx, item); err != nil {
				return err
			}
		default:
			return err
		}

		summary, err = s.summary(tx, cart.ID)
		return err
	})
	if err != nil {
		log.Printf("[WARN] AddItem: customer %d could not add %s: %v", customerID, isbn, err)
		return nil, err
	}
	return &summary, nil
}

// UpdateQuantity sets a line to qty copies, capped at the copies in stock.
// A line whose book has run out of stock is dropped.
func (s *cartService) UpdateQuantity(ctx context.Context, customerID uint, isbn string, qty int) (*CartSummary, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" || qty < 1 {
		return nil, validationErrorf("Invalid parameters")
	}

	var summary CartSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := s.lookupBook(tx, isbn)
		if err != nil {
			return err
		}
		cart, err := getOrCreateCart(tx, s.cartRepo, customerID)
		if err != nil {
			return err
		}
		if _, err := s.cartRepo.GetItem(tx, cart.ID, isbn); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrorf("%s is not in your cart", book.Title)
			}
			return err
		}

		qty = min(qty, book.QuantityInStock)
		if qty == 0 {
			err = s.cartRepo.DeleteItem(tx, cart.ID, isbn)
		} else {
			err = s.cartRepo.UpdateItemQuantity(tx, cart.ID, isbn, qty)
		}
		if err != nil {
			return err
		}

		summary, err = s.summary(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// RemoveItem drops a line from the cart; removing an absent line is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, customerID uint, isbn string) (*CartSummary, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, validationErrorf("Invalid ISBN")
	}

	var summary CartSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := getOrCreateCart(tx, s.cartRepo, customerID)
		if err != nil {
			return err
		}
		if err := s.cartRepo.DeleteItem(tx, cart.ID, isbn); err != nil {
			return err
		}
		summary, err = s.summary(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ─── Internal Helpers ─────────────────────────────────────────────────────────

func (s *cartService) lookupBook(tx *gorm.DB, isbn string) (*models.Book, error) {
	book, err := s.bookRepo.GetByISBN(tx, isbn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrorf("Book not found")
		}
		return nil, err
	}
	return book, nil
}

// getOrCreateCart returns the customer's cart, creating it on first use. A
// concurrent first access can make the insert hit the unique index on
// customer_id; the cart created by the other request is used then. An ID with
// no customer row fails the foreign key and is reported as not found.
func getOrCreateCart(tx *gorm.DB, repo repositories.CartRepository, customerID uint) (*models.Cart, error) {
	cart, err := repo.GetByCustomer(tx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cart = &models.Cart{CustomerID: customerID}
	err = tx.Transaction(func(sp *gorm.DB) error {
		return repo.Create(sp, cart)
	})
	if err == nil {
		return cart, nil
	}
	if isForeignKeyViolation(err) {
		return nil, notFoundErrorf("Customer not found")
	}
	if !isUniqueViolation(err) {
		return nil, err
	}
	return repo.GetByCustomer(tx, customerID)
}

func (s *cartService) summary(tx *gorm.DB, cartID uint) (CartSummary, error) {
	items, err := s.cartRepo.ListItems(tx, cartID)
	if err != nil {
		return CartSummary{}, err
	}
	return summarize(items), nil
}

// summarize counts copies and prices the lines at the current selling price.
func summarize(items []models.CartItem) CartSummary {
	count := lo.SumBy(items, func(item models.CartItem) int { return item.Quantity })
	total := lo.Reduce(items, func(acc decimal.Decimal, item models.CartItem, _ int) decimal.Decimal {
		return acc.Add(lineTotal(item.Book.SellingPrice, item.Quantity))
	}, decimal.Zero)
	return CartSummary{Count: count, Total: total.StringFixed(2)}
}

func lineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
