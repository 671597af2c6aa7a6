package repositories

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore/internal/models"
)

// BookFilter narrows a catalog search. Empty fields are ignored.
type BookFilter struct {
	Search   string
	Category models.Category
	Author   string
}

type BookRepository interface {
	Create(db *gorm.DB, book *models.Book) error
	Update(db *gorm.DB, book *models.Book, withImage bool) error
	GetByISBN(db *gorm.DB, isbn string) (*models.Book, error)
	LockByISBNs(db *gorm.DB, isbns []string) ([]models.Book, error)
	Search(db *gorm.DB, filter BookFilter) ([]models.Book, error)
	Delete(db *gorm.DB, isbn string) (int64, error)
	DecrementStock(db *gorm.DB, isbn string, qty int) (int64, error)
	IncrementStock(db *gorm.DB, isbn string, qty int) error
	SetStock(db *gorm.DB, isbn string, qty int) (int64, error)
}

type AuthorRepository interface {
	GetByID(db *gorm.DB, id uint) (*models.Author, error)
	FindByName(db *gorm.DB, name string) (*models.Author, error)
	Create(db *gorm.DB, author *models.Author) error
	List(db *gorm.DB) ([]models.Author, error)
	LinkExists(db *gorm.DB, isbn string, authorID uint) (bool, error)
	Link(db *gorm.DB, isbn string, authorID uint) error
	UnlinkAll(db *gorm.DB, isbn string) error
	ListLinks(db *gorm.DB, isbn string) ([]models.BookAuthor, error)
}

type PublisherRepository interface {
	Create(db *gorm.DB, publisher *models.Publisher) error
	GetByID(db *gorm.DB, id uint) (*models.Publisher, error)
	List(db *gorm.DB) ([]models.Publisher, error)
}

// concrete implementations

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(book).Error
}

// Update writes the editable columns of a book. The image reference is only
// replaced when withImage is set, so edits without a new upload keep it.
func (r *bookRepository) Update(db *gorm.DB, book *models.Book, withImage bool) error {
	if db == nil {
		db = r.db
	}
	cols := []string{
		"title", "publisher_id", "publication_year", "selling_price",
		"category", "quantity_in_stock", "minimum_threshold",
	}
	if withImage {
		cols = append(cols, "image_url")
	}
	return db.Model(&models.Book{ISBN: book.ISBN}).
		Select(cols).
		Omit(clause.Associations).
		Updates(book).Error
}

func (r *bookRepository) GetByISBN(db *gorm.DB, isbn string) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	err := db.
		Preload("Publisher").
		Preload("Authors.Author").
		First(&book, "isbn = ?", isbn).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// LockByISBNs reads the given books with FOR UPDATE, ordered by ISBN so that
// concurrent checkouts always lock rows in the same order.
func (r *bookRepository) LockByISBNs(db *gorm.DB, isbns []string) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("isbn IN ?", isbns).
		Order("isbn").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) Search(db *gorm.DB, filter BookFilter) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	q := db.Model(&models.Book{}).
		Preload("Publisher").
		Preload("Authors.Author")
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := containsPattern(s)
		q = q.Where(`(LOWER(books.title) LIKE ? ESCAPE '\' OR LOWER(books.isbn) LIKE ? ESCAPE '\')`, like, like)
	}
	if filter.Category != "" {
		q = q.Where("books.category = ?", filter.Category)
	}
	if a := strings.TrimSpace(filter.Author); a != "" {
		like := containsPattern(a)
		q = q.Where("books.isbn IN (?)",
			db.Table("book_authors").
				Select("book_authors.isbn").
				Joins("JOIN authors ON authors.id = book_authors.author_id").
				Where(`LOWER(authors.name) LIKE ? ESCAPE '\'`, like),
		)
	}
	var books []models.Book
	if err := q.Order("books.title").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a case-insensitive substring pattern for s.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func (r *bookRepository) Delete(db *gorm.DB, isbn string) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Delete(&models.Book{}, "isbn = ?", isbn)
	return res.RowsAffected, res.Error
}

// DecrementStock removes qty units only when enough stock is left; the
// returned row count is zero otherwise.
func (r *bookRepository) DecrementStock(db *gorm.DB, isbn string, qty int) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Book{}).
		Where("isbn = ? AND quantity_in_stock >= ?", isbn, qty).
		UpdateColumn("quantity_in_stock", gorm.Expr("quantity_in_stock - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *bookRepository) IncrementStock(db *gorm.DB, isbn string, qty int) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Book{}).
		Where("isbn = ?", isbn).
		UpdateColumn("quantity_in_stock", gorm.Expr("quantity_in_stock + ?", qty)).
		Error
}

func (r *bookRepository) SetStock(db *gorm.DB, isbn string, qty int) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Book{}).
		Where("isbn = ?", isbn).
		UpdateColumn("quantity_in_stock", qty)
	return res.RowsAffected, res.Error
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) GetByID(db *gorm.DB, id uint) (*models.Author, error) {
	if db == nil {
		db = r.db
	}
	var author models.Author
	if err := db.First(&author, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) FindByName(db *gorm.DB, name string) (*models.Author, error) {
	if db == nil {
		db = r.db
	}
	var author models.Author
	if err := db.Where("name = ?", name).First(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) Create(db *gorm.DB, author *models.Author) error {
	if db == nil {
		db = r.db
	}
	return db.Create(author).Error
}

func (r *authorRepository) List(db *gorm.DB) ([]models.Author, error) {
	if db == nil {
		db = r.db
	}
	var authors []models.Author
	if err := db.Order("name").Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *authorRepository) LinkExists(db *gorm.DB, isbn string, authorID uint) (bool, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.BookAuthor{}).
		Where("isbn = ? AND author_id = ?", isbn, authorID).
		Count(&count).Error
	return count > 0, err
}

func (r *authorRepository) Link(db *gorm.DB, isbn string, authorID uint) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(&models.BookAuthor{ISBN: isbn, AuthorID: authorID}).Error
}

func (r *authorRepository) UnlinkAll(db *gorm.DB, isbn string) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.BookAuthor{}, "isbn = ?", isbn).Error
}

func (r *authorRepository) ListLinks(db *gorm.DB, isbn string) ([]models.BookAuthor, error) {
	if db == nil {
		db = r.db
	}
	var links []models.BookAuthor
	if err := db.Preload("Author").
		Where("isbn = ?", isbn).
		Order("author_id").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

type publisherRepository struct {
	db *gorm.DB
}

func NewPublisherRepository(db *gorm.DB) PublisherRepository {
	return &publisherRepository{db: db}
}

func (r *publisherRepository) Create(db *gorm.DB, publisher *models.Publisher) error {
	if db == nil {
		db = r.db
	}
	return db.Create(publisher).Error
}

func (r *publisherRepository) GetByID(db *gorm.DB, id uint) (*models.Publisher, error) {
	if db == nil {
		db = r.db
	}
	var publisher models.Publisher
	if err := db.First(&publisher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &publisher, nil
}

func (r *publisherRepository) List(db *gorm.DB) ([]models.Publisher, error) {
	if db == nil {
		db = r.db
	}
	var publishers []models.Publisher
	if err := db.Order("name").Find(&publishers).Error; err != nil {
		return nil, err
	}
	return publishers, nil
}
