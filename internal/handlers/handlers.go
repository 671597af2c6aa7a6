package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookstore/internal/services"
)

const (
	headerRequestID  = "X-Request-ID"
	headerCustomerID = "X-Customer-ID"
	headerAdminID    = "X-Admin-ID"

	ctxRequestID  = "requestID"
	ctxCustomerID = "customerID"
	ctxAdminID    = "adminID"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Catalog         services.CatalogService
	Carts           services.CartService
	Orders          services.OrderService
	Profiles        services.ProfileService
	PublisherOrders services.PublisherOrderService
	Reports         services.ReportService
}

type StoreHandler struct {
	svc Services
}

type AdminHandler struct {
	svc Services
}

func RegisterRoutes(r *gin.Engine, svc Services) {
	registerValidators()
	r.Use(requestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	store := &StoreHandler{svc: svc}

	// Catalog
	r.GET("/books", store.searchBooks)
	r.GET("/books/:isbn", store.getBook)

	// Customer endpoints
	customer := r.Group("/", requireIdentity(headerCustomerID, ctxCustomerID))
	customer.GET("/cart", store.getCart)
	customer.POST("/cart/items", store.addToCart)
	customer.PUT("/cart/items/:isbn", store.updateCartItem)
	customer.DELETE("/cart/items/:isbn", store.removeCartItem)
	customer.POST("/checkout", store.checkout)
	customer.GET("/orders", store.listOrders)
	customer.GET("/orders/:id", store.getOrder)
	customer.GET("/profile", store.getProfile)
	customer.PUT("/profile", store.updateProfile)
	customer.GET("/profile/phones", store.listPhones)
	customer.POST("/profile/phones", store.addPhone)
	customer.DELETE("/profile/phones/:id", store.deletePhone)
	customer.POST("/profile/phones/:id/primary", store.setPrimaryPhone)
	customer.GET("/profile/addresses", store.listAddresses)
	customer.POST("/profile/addresses", store.addAddress)
	customer.DELETE("/profile/addresses/:id", store.deleteAddress)
	customer.POST("/profile/addresses/:id/default", store.setDefaultAddress)
	customer.GET("/profile/payment-methods", store.listPaymentMethods)
	customer.DELETE("/profile/payment-methods/:id", store.deletePaymentMethod)
	customer.POST("/profile/payment-methods/:id/default", store.setDefaultPaymentMethod)

	// Admin endpoints
	admin := &AdminHandler{svc: svc}
	a := r.Group("/admin", requireIdentity(headerAdminID, ctxAdminID))
	a.POST("/books", admin.createBook)
	a.PUT("/books/:isbn", admin.updateBook)
	a.DELETE("/books/:isbn", admin.deleteBook)
	a.PUT("/books/:isbn/stock", admin.updateStock)
	a.GET("/authors", admin.listAuthors)
	a.GET("/publishers", admin.listPublishers)
	a.POST("/publishers", admin.createPublisher)
	a.GET("/publisher-orders", admin.listPublisherOrders)
	a.POST("/publisher-orders/:id/confirm", admin.confirmPublisherOrder)
	a.POST("/publisher-orders/:id/cancel", admin.cancelPublisherOrder)
	a.PUT("/orders/:id/status", admin.updateOrderStatus)
	a.GET("/reports/dashboard", admin.dashboard)
	a.GET("/reports/sales", admin.salesReport)
	a.GET("/reports/top-customers", admin.topCustomers)
	a.GET("/reports/top-books", admin.topBooks)
	a.GET("/reports/low-stock", admin.lowStock)
	a.GET("/reports/books/:isbn/publisher-orders", admin.publisherOrderCount)
}

// ─── Middleware ───────────────────────────────────────────────────────────────

// requestID echoes the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// requireIdentity reads the numeric ID set by the session layer in front of
// this service.
func requireIdentity(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(strings.TrimSpace(c.GetHeader(header)), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please log in"})
			return
		}
		c.Set(key, uint(id))
		c.Next()
	}
}

func customerID(c *gin.Context) uint {
	return c.GetUint(ctxCustomerID)
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// writeError maps service error kinds to HTTP statuses. Unexpected errors are
// logged and hidden from the client.
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrIntegrity):
		status = http.StatusConflict
	default:
		log.Printf("[ERROR] %s %s (request %s): %v", c.Request.Method, c.Request.URL.Path, c.GetString(ctxRequestID), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return false
	}
	return true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}
