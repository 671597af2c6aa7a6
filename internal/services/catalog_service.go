package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

// DefaultMinimumThreshold applies when the editor leaves the threshold empty.
const DefaultMinimumThreshold = 10

// BookInput carries the editable fields of a book.
type BookInput struct {
	ISBN             string
	Title            string
	PublisherID      uint
	PublicationYear  int
	SellingPrice     decimal.Decimal
	Category         models.Category
	ImageURL         *string // nil keeps the current image on edit
	QuantityInStock  int
	MinimumThreshold *int
}

// CatalogService covers the storefront catalog and the admin book editor.
type CatalogService interface {
	SearchBooks(ctx context.Context, filter repositories.BookFilter) ([]models.Book, error)
	GetBook(ctx context.Context, isbn string) (*models.Book, error)

	CreateBook(ctx context.Context, in BookInput, authors []AuthorRef) (*models.Book, error)
	UpdateBook(ctx context.Context, isbn string, in BookInput, authors []AuthorRef) (*models.Book, error)
	DeleteBook(ctx context.Context, isbn string) error
	UpdateStock(ctx context.Context, isbn string, qty int) (*models.Book, error)

	ListAuthors(ctx context.Context) ([]models.Author, error)
	ListPublishers(ctx context.Context) ([]models.Publisher, error)
	CreatePublisher(ctx context.Context, name, address, phone string) (*models.Publisher, error)
}

type catalogService struct {
	db                 *gorm.DB
	bookRepo           repositories.BookRepository
	authorRepo         repositories.AuthorRepository
	publisherRepo      repositories.PublisherRepository
	cartRepo           repositories.CartRepository
	orderRepo          repositories.OrderRepository
	publisherOrderRepo repositories.PublisherOrderRepository
	authors            *authorReconciler
	restock            *restocker
}

// NewCatalogService wires up all dependencies and returns a CatalogService.
func NewCatalogService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	authorRepo repositories.AuthorRepository,
	publisherRepo repositories.PublisherRepository,
	cartRepo repositories.CartRepository,
	orderRepo repositories.OrderRepository,
	publisherOrderRepo repositories.PublisherOrderRepository,
	reorderQuantity int,
) CatalogService {
	return &catalogService{
		db:                 db,
		bookRepo:           bookRepo,
		authorRepo:         authorRepo,
		publisherRepo:      publisherRepo,
		cartRepo:           cartRepo,
		orderRepo:          orderRepo,
		publisherOrderRepo: publisherOrderRepo,
		authors:            &authorReconciler{authorRepo: authorRepo},
		restock:            newRestocker(publisherOrderRepo, reorderQuantity),
	}
}

// ─── Storefront ───────────────────────────────────────────────────────────────

func (s *catalogService) SearchBooks(ctx context.Context, filter repositories.BookFilter) ([]models.Book, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, validationErrorf("Unknown category %q", filter.Category)
	}
	return s.bookRepo.Search(s.db.WithContext(ctx), filter)
}

func (s *catalogService) GetBook(ctx context.Context, isbn string) (*models.Book, error) {
	book, err := s.bookRepo.GetByISBN(s.db.WithContext(ctx), strings.TrimSpace(isbn))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrorf("Book %s not found", isbn)
		}
		return nil, err
	}
	return book, nil
}

// ─── Book Editor ──────────────────────────────────────────────────────────────

// CreateBook inserts the book and links its authors in one transaction.
// Author links are added incrementally.
func (s *catalogService) CreateBook(ctx context.Context, in BookInput, authors []AuthorRef) (*models.Book, error) {
	book, err := s.buildBook(in)
	if err != nil {
		return nil, err
	}
	if len(normalizeAuthorRefs(authors)) == 0 {
		return nil, validationErrorf("Please add at least one author")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensurePublisher(tx, book.PublisherID); err != nil {
			return err
		}
		if _, err := s.bookRepo.GetByISBN(tx, book.ISBN); err == nil {
			return conflictErrorf("A book with ISBN %s already exists", book.ISBN)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.bookRepo.Create(tx, book); err != nil {
			if isUniqueViolation(err) {
				return conflictErrorf("A book with ISBN %s already exists", book.ISBN)
			}
			log.Printf("[ERROR] CreateBook: failed to insert book %s: %v", book.ISBN, err)
			return err
		}
		if _, err := s.authors.reconcile(tx, book.ISBN, authors, false); err != nil {
			return err
		}
		return s.restock.check(tx, book)
	})
	if err != nil {
		log.Printf("[ERROR] CreateBook: transaction failed for %s: %v", book.ISBN, err)
		return nil, err
	}
	log.Printf("[INFO] CreateBook: created book %q (isbn=%s)", book.Title, book.ISBN)
	return s.GetBook(ctx, book.ISBN)
}

// UpdateBook rewrites the book fields and replaces its author set in one
// transaction.
func (s *catalogService) UpdateBook(ctx context.Context, isbn string, in BookInput, authors []AuthorRef) (*models.Book, error) {
	in.ISBN = isbn
	book, err := s.buildBook(in)
	if err != nil {
		return nil, err
	}
	if len(normalizeAuthorRefs(authors)) == 0 {
		return nil, validationErrorf("Please add at least one author")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.bookRepo.GetByISBN(tx, book.ISBN); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrorf("Book %s not found", book.ISBN)
			}
			return err
		}
		if err := s.ensurePublisher(tx, book.PublisherID); err != nil {
			return err
		}
		if err := s.bookRepo.Update(tx, book, in.ImageURL != nil); err != nil {
			log.Printf("[ERROR] UpdateBook: failed to update book %s: %v", book.ISBN, err)
			return err
		}
		if _, err := s.authors.reconcile(tx, book.ISBN, authors, true); err != nil {
			return err
		}
		return s.restock.check(tx, book)
	})
	if err != nil {
		log.Printf("[ERROR] UpdateBook: transaction failed for %s: %v", book.ISBN, err)
		return nil, err
	}
	log.Printf("[INFO] UpdateBook: updated book %s", book.ISBN)
	return s.GetBook(ctx, book.ISBN)
}

// DeleteBook removes a book that has never been ordered, together with its
// cart lines, publisher orders and author links.
func (s *catalogService) DeleteBook(ctx context.Context, isbn string) error {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return validationErrorf("No ISBN provided for deletion")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ordered, err := s.orderRepo.CountItemsByISBN(tx, isbn)
		if err != nil {
			return err
		}
		if ordered > 0 {
			return integrityErrorf("Cannot delete this book because it has been ordered %d time(s). You can set stock to 0 instead to make it unavailable.", ordered)
		}
		if err := s.cartRepo.DeleteItemsByISBN(tx, isbn); err != nil {
			return err
		}
		if err := s.publisherOrderRepo.DeleteByISBN(tx, isbn); err != nil {
			return err
		}
		if err := s.authorRepo.UnlinkAll(tx, isbn); err != nil {
			return err
		}
		n, err := s.bookRepo.Delete(tx, isbn)
		if err != nil {
			if isForeignKeyViolation(err) {
				return integrityErrorf("Cannot delete this book because it is still referenced. You can set stock to 0 instead to make it unavailable.")
			}
			return err
		}
		if n == 0 {
			return notFoundErrorf("Book not found or already deleted")
		}
		return nil
	})
	if err != nil {
		log.Printf("[WARN] DeleteBook: %s not deleted: %v", isbn, err)
		return err
	}
	log.Printf("[INFO] DeleteBook: deleted book %s", isbn)
	return nil
}

// UpdateStock sets the stock level of a book; dropping below the threshold
// places a replenishment order.
func (s *catalogService) UpdateStock(ctx context.Context, isbn string, qty int) (*models.Book, error) {
	if qty < 0 {
		return nil, validationErrorf("Stock quantity cannot be negative")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.bookRepo.SetStock(tx, isbn, qty)
		if err != nil {
			return err
		}
		if n == 0 {
			return notFoundErrorf("Book %s not found", isbn)
		}
		book, err := s.bookRepo.GetByISBN(tx, isbn)
		if err != nil {
			return err
		}
		return s.restock.check(tx, book)
	})
	if err != nil {
		log.Printf("[ERROR] UpdateStock: failed for %s: %v", isbn, err)
		return nil, err
	}
	log.Printf("[INFO] UpdateStock: stock of %s set to %d", isbn, qty)
	return s.GetBook(ctx, isbn)
}

// ─── Reference Data ───────────────────────────────────────────────────────────

func (s *catalogService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return s.authorRepo.List(s.db.WithContext(ctx))
}

func (s *catalogService) ListPublishers(ctx context.Context) ([]models.Publisher, error) {
	return s.publisherRepo.List(s.db.WithContext(ctx))
}

func (s *catalogService) CreatePublisher(ctx context.Context, name, address, phone string) (*models.Publisher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErrorf("Publisher name is required")
	}
	publisher := &models.Publisher{
		Name:    name,
		Address: strings.TrimSpace(address),
		Phone:   strings.TrimSpace(phone),
	}
	if err := s.publisherRepo.Create(s.db.WithContext(ctx), publisher); err != nil {
		if isUniqueViolation(err) {
			return nil, conflictErrorf("Publisher %q already exists", name)
		}
		return nil, err
	}
	log.Printf("[INFO] CreatePublisher: created publisher %q (id=%d)", publisher.Name, publisher.ID)
	return publisher, nil
}

// ─── Internal Helpers ─────────────────────────────────────────────────────────

func (s *catalogService) buildBook(in BookInput) (*models.Book, error) {
	isbn := strings.TrimSpace(in.ISBN)
	title := strings.TrimSpace(in.Title)
	if isbn == "" || title == "" || in.PublisherID == 0 || in.Category == "" {
		return nil, validationErrorf("Please fill in all required fields")
	}
	if len(isbn) > 20 {
		return nil, validationErrorf("ISBN must be at most 20 characters")
	}
	if !in.Category.Valid() {
		return nil, validationErrorf("Unknown category %q", in.Category)
	}
	if in.SellingPrice.IsNegative() {
		return nil, validationErrorf("Selling price cannot be negative")
	}
	if in.QuantityInStock < 0 {
		return nil, validationErrorf("Stock quantity cannot be negative")
	}
	threshold := DefaultMinimumThreshold
	if in.MinimumThreshold != nil {
		threshold = *in.MinimumThreshold
	}
	if threshold < 0 {
		return nil, validationErrorf("Minimum threshold cannot be negative")
	}
	var image *string
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != "" {
		ref := strings.TrimSpace(*in.ImageURL)
		image = &ref
	}
	return &models.Book{
		ISBN:             isbn,
		Title:            title,
		PublisherID:      in.PublisherID,
		PublicationYear:  in.PublicationYear,
		SellingPrice:     in.SellingPrice.Round(2),
		Category:         in.Category,
		ImageURL:         image,
		QuantityInStock:  in.QuantityInStock,
		MinimumThreshold: threshold,
	}, nil
}

func (s *catalogService) ensurePublisher(tx *gorm.DB, id uint) error {
	if _, err := s.publisherRepo.GetByID(tx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErrorf("Publisher %d not found", id)
		}
		return err
	}
	return nil
}
