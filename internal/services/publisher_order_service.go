package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// DefaultReorderQuantity is the number of copies requested from a publisher
// when a book drops below its minimum threshold.
const DefaultReorderQuantity = 50

// restocker places replenishment orders for books running low. It only ever
// runs inside the caller's transaction.
type restocker struct {
	publisherOrderRepo repositories.PublisherOrderRepository
	quantity           int
	now                func() time.Time
}

func newRestocker(repo repositories.PublisherOrderRepository, quantity int) *restocker {
	if quantity <= 0 {
		quantity = DefaultReorderQuantity
	}
	return &restocker{
		publisherOrderRepo: repo,
		quantity:           quantity,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// check creates a pending publisher order when the book's stock is below its
// threshold and no pending order exists for it yet.
func (r *restocker) check(tx *gorm.DB, book *models.Book) error {
	if book.QuantityInStock >= book.MinimumThreshold {
		return nil
	}
	pending, err := r.publisherOrderRepo.HasPending(tx, book.ISBN)
	if err != nil {
		return err
	}
	if pending {
		return nil
	}
	order := &models.PublisherOrder{
		ISBN:      book.ISBN,
		Quantity:  r.quantity,
		Status:    models.PublisherOrderPending,
		OrderDate: r.now(),
	}
	if err := r.publisherOrderRepo.Create(tx, order); err != nil {
		log.Printf("[ERROR] restock: failed to place publisher order for %s: %v", book.ISBN, err)
		return err
	}
	log.Printf("[INFO] restock: publisher order %d placed for %s (%d copies, stock=%d, threshold=%d)",
		order.ID, book.ISBN, order.Quantity, book.QuantityInStock, book.MinimumThreshold)
	return nil
}

// PublisherOrderService lets admins act on replenishment orders.
type PublisherOrderService interface {
	List(ctx context.Context, status models.PublisherOrderStatus) ([]models.PublisherOrder, error)
	Confirm(ctx context.Context, id uint) (*models.PublisherOrder, error)
	Cancel(ctx context.Context, id uint) (*models.PublisherOrder, error)
}

type publisherOrderService struct {
	db                 *gorm.DB
	bookRepo           repositories.BookRepository
	publisherOrderRepo repositories.PublisherOrderRepository
	now                func() time.Time
}

func NewPublisherOrderService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	publisherOrderRepo repositories.PublisherOrderRepository,
) PublisherOrderService {
	return &publisherOrderService{
		db:                 db,
		bookRepo:           bookRepo,
		publisherOrderRepo: publisherOrderRepo,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

func (s *publisherOrderService) List(ctx context.Context, status models.PublisherOrderStatus) ([]models.PublisherOrder, error) {
	switch status {
	case "", models.PublisherOrderPending, models.PublisherOrderConfirmed, models.PublisherOrderCancelled:
	default:
		return nil, validationErrorf("Unknown publisher order status %q", status)
	}
	return s.publisherOrderRepo.List(s.db.WithContext(ctx), status)
}

// Confirm marks a pending order as received and adds its copies to stock.
func (s *publisherOrderService) Confirm(ctx context.Context, id uint) (*models.PublisherOrder, error) {
	var out *models.PublisherOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockPending(tx, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := s.publisherOrderRepo.MarkConfirmed(tx, order.ID, now); err != nil {
			return err
		}
		if err := s.bookRepo.IncrementStock(tx, order.ISBN, order.Quantity); err != nil {
			log.Printf("[ERROR] ConfirmPublisherOrder: failed to add %d copies to %s: %v", order.Quantity, order.ISBN, err)
			return err
		}
		order.Status = models.PublisherOrderConfirmed
		order.ConfirmedAt = &now
		out = order
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] ConfirmPublisherOrder: transaction failed for order %d: %v", id, err)
		return nil, err
	}
	log.Printf("[INFO] ConfirmPublisherOrder: order %d confirmed, %d copies added to %s", id, out.Quantity, out.ISBN)
	return out, nil
}

func (s *publisherOrderService) Cancel(ctx context.Context, id uint) (*models.PublisherOrder, error) {
	var out *models.PublisherOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockPending(tx, id)
		if err != nil {
			return err
		}
		if err := s.publisherOrderRepo.MarkCancelled(tx, order.ID); err != nil {
			return err
		}
		order.Status = models.PublisherOrderCancelled
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] CancelPublisherOrder: order %d cancelled", id)
	return out, nil
}

func (s *publisherOrderService) lockPending(tx *gorm.DB, id uint) (*models.PublisherOrder, error) {
	order, err := s.publisherOrderRepo.GetByIDForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrorf("Publisher order %d not found", id)
		}
		return nil, err
	}
	if order.Status != models.PublisherOrderPending {
		return nil, validationErrorf("Publisher order %d is already %s", id, order.Status)
	}
	return order, nil
}
