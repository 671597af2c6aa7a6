package db

import (
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore/internal/models"
)

type seedBook struct {
	isbn      string
	title     string
	publisher string
	year      int
	price     string
	category  models.Category
	stock     int
	authors   []string
}

var seedPublishers = []models.Publisher{
	{Name: "Dar El Shorouk", Address: "8 Sibawayh El Masry St, Cairo", Phone: "+20 2 2402 3399"},
	{Name: "Penguin Books", Address: "80 Strand, London", Phone: "+44 20 7139 3000"},
}

var seedBooks = []seedBook{
	{"978-0-14-044913-6", "The Histories", "Penguin Books", 2003, "14.99", models.CategoryHistory, 25, []string{"Herodotus"}},
	{"978-0-14-118776-1", "A Brief History of Time", "Penguin Books", 2011, "12.50", models.CategoryScience, 8, []string{"Stephen Hawking"}},
	{"978-977-09-3411-2", "Atlas of Egypt", "Dar El Shorouk", 2015, "30.00", models.CategoryGeography, 12, []string{"Gamal Hamdan"}},
	{"978-0-14-303943-3", "The Story of Art", "Penguin Books", 2006, "45.00", models.CategoryArt, 5, []string{"E. H. Gombrich"}},
}

// Seed inserts demo publishers, authors, books and a customer. It is safe to
// run repeatedly.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		publisherIDs := map[string]uint{}
		for _, p := range seedPublishers {
			p := p
			if err := tx.Where(models.Publisher{Name: p.Name}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
			publisherIDs[p.Name] = p.ID
		}

		for _, sb := range seedBooks {
			book := models.Book{
				ISBN:             sb.isbn,
				Title:            sb.title,
				PublisherID:      publisherIDs[sb.publisher],
				PublicationYear:  sb.year,
				SellingPrice:     decimal.RequireFromString(sb.price),
				Category:         sb.category,
				QuantityInStock:  sb.stock,
				MinimumThreshold: 10,
			}
			if err := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&book).Error; err != nil {
				return err
			}
			for _, name := range sb.authors {
				author := models.Author{Name: name}
				if err := tx.Where(models.Author{Name: name}).FirstOrCreate(&author).Error; err != nil {
					return err
				}
				link := models.BookAuthor{ISBN: sb.isbn, AuthorID: author.ID}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&link).Error; err != nil {
					return err
				}
			}
		}

		customer := models.Customer{Username: "demo", FirstName: "Demo", LastName: "Customer", Email: "demo@example.com"}
		if err := tx.Where(models.Customer{Username: customer.Username}).FirstOrCreate(&customer).Error; err != nil {
			return err
		}
		var addresses int64
		if err := tx.Model(&models.Address{}).Where("customer_id = ?", customer.ID).Count(&addresses).Error; err != nil {
			return err
		}
		if addresses == 0 {
			address := models.Address{
				CustomerID: customer.ID,
				Line1:      "12 Tahrir Square",
				City:       "Cairo",
				Country:    "Egypt",
				Type:       "Home",
				IsDefault:  true,
			}
			if err := tx.Create(&address).Error; err != nil {
				return err
			}
		}
		log.Printf("[INFO] seed: %d publishers, %d books, demo customer id=%d", len(seedPublishers), len(seedBooks), customer.ID)
		return nil
	})
}
