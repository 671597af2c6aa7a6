package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bookstore/internal/models"
	"bookstore/internal/services"
)

const dateLayout = "2006-01-02"

// ─── Books ────────────────────────────────────────────────────────────────────

type bookRequest struct {
	ISBN             string           `json:"isbn" binding:"required,bookisbn"`
	Title            string           `json:"title" binding:"required"`
	PublisherID      uint             `json:"publisher_id" binding:"required"`
	PublicationYear  int              `json:"publication_year" binding:"omitempty,min=1000,max=9999"`
	SellingPrice     *decimal.Decimal `json:"selling_price" binding:"required"`
	Category         models.Category  `json:"category" binding:"required,bookcategory"`
	ImageURL         *string          `json:"image_url"`
	QuantityInStock  int              `json:"quantity_in_stock" binding:"min=0"`
	MinimumThreshold *int             `json:"minimum_threshold" binding:"omitempty,min=0"`
	AuthorIDs        []uint           `json:"author_ids"`
	NewAuthors       []string         `json:"new_authors"`
}

func (r bookRequest) input() (services.BookInput, []services.AuthorRef) {
	return services.BookInput{
		ISBN:             r.ISBN,
		Title:            r.Title,
		PublisherID:      r.PublisherID,
		PublicationYear:  r.PublicationYear,
		SellingPrice:     *r.SellingPrice,
		Category:         r.Category,
		ImageURL:         r.ImageURL,
		QuantityInStock:  r.QuantityInStock,
		MinimumThreshold: r.MinimumThreshold,
	}, services.AuthorRefs(r.AuthorIDs, r.NewAuthors)
}

func (h *AdminHandler) createBook(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}
	in, authors := req.input()
	book, err := h.svc.Catalog.CreateBook(c.Request.Context(), in, authors)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookView(*book))
}

// updateBook takes the ISBN from the path; the body ISBN must match it.
func (h *AdminHandler) updateBook(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}
	isbn := c.Param("isbn")
	if req.ISBN != isbn {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ISBN cannot be changed"})
		return
	}
	in, authors := req.input()
	book, err := h.svc.Catalog.UpdateBook(c.Request.Context(), isbn, in, authors)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookView(*book))
}

func (h *AdminHandler) deleteBook(c *gin.Context) {
	if err := h.svc.Catalog.DeleteBook(c.Request.Context(), c.Param("isbn")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type stockRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

func (h *AdminHandler) updateStock(c *gin.Context) {
	var req stockRequest
	if !bindJSON(c, &req) {
		return
	}
	book, err := h.svc.Catalog.UpdateStock(c.Request.Context(), c.Param("isbn"), *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookView(*book))
}

// ─── Authors & Publishers ─────────────────────────────────────────────────────

func (h *AdminHandler) listAuthors(c *gin.Context) {
	authors, err := h.svc.Catalog.ListAuthors(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, authors)
}

func (h *AdminHandler) listPublishers(c *gin.Context) {
	publishers, err := h.svc.Catalog.ListPublishers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, publishers)
}

type publisherRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (h *AdminHandler) createPublisher(c *gin.Context) {
	var req publisherRequest
	if !bindJSON(c, &req) {
		return
	}
	publisher, err := h.svc.Catalog.CreatePublisher(c.Request.Context(), req.Name, req.Address, req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, publisher)
}

// ─── Orders ───────────────────────────────────────────────────────────────────

func (h *AdminHandler) listPublisherOrders(c *gin.Context) {
	status := models.PublisherOrderStatus(c.Query("status"))
	orders, err := h.svc.PublisherOrders.List(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) confirmPublisherOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.PublisherOrders.Confirm(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) cancelPublisherOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.PublisherOrders.Cancel(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (h *AdminHandler) updateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req orderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.svc.Orders.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ─── Reports ──────────────────────────────────────────────────────────────────

func (h *AdminHandler) dashboard(c *gin.Context) {
	d, err := h.svc.Reports.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// salesReport serves three report shapes:
//
//	?period=previous_month
//	?date=2024-03-15
//	?from=2024-03-01&to=2024-04-01
func (h *AdminHandler) salesReport(c *gin.Context) {
	var (
		report *services.SalesReport
		err    error
	)
	ctx := c.Request.Context()
	switch {
	case c.Query("period") == "previous_month":
		report, err = h.svc.Reports.SalesPreviousMonth(ctx, time.Now().UTC())
	case c.Query("date") != "":
		day, perr := time.Parse(dateLayout, c.Query("date"))
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		report, err = h.svc.Reports.SalesForDate(ctx, day)
	default:
		from, ferr := time.Parse(dateLayout, c.Query("from"))
		to, terr := time.Parse(dateLayout, c.Query("to"))
		if ferr != nil || terr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from/to, expected YYYY-MM-DD"})
			return
		}
		report, err = h.svc.Reports.SalesBetween(ctx, from, to)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) topCustomers(c *gin.Context) {
	months, ok := intQuery(c, "months")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	rows, err := h.svc.Reports.TopCustomers(c.Request.Context(), months, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AdminHandler) topBooks(c *gin.Context) {
	months, ok := intQuery(c, "months")
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	rows, err := h.svc.Reports.TopSellingBooks(c.Request.Context(), months, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AdminHandler) lowStock(c *gin.Context) {
	books, err := h.svc.Reports.LowStockBooks(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *AdminHandler) publisherOrderCount(c *gin.Context) {
	isbn := c.Param("isbn")
	n, err := h.svc.Reports.PublisherOrderCount(c.Request.Context(), isbn)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isbn": isbn, "publisher_orders": n})
}
