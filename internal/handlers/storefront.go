package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
)

// bookView adds the display fields the storefront shows next to each book.
type bookView struct {
	models.Book
	Image       string   `json:"image"`
	AuthorNames []string `json:"author_names"`
}

func newBookView(b models.Book) bookView {
	return bookView{Book: b, Image: b.Image(), AuthorNames: b.AuthorNames()}
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

type searchBooksQuery struct {
	Search   string          `form:"q"`
	Category models.Category `form:"category" binding:"omitempty,bookcategory"`
	Author   string          `form:"author"`
}

func (h *StoreHandler) searchBooks(c *gin.Context) {
	var q searchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	books, err := h.svc.Catalog.SearchBooks(c.Request.Context(), repositories.BookFilter{
		Search:   q.Search,
		Category: q.Category,
		Author:   q.Author,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]bookView, len(books))
	for i, b := range books {
		views[i] = newBookView(b)
	}
	c.JSON(http.StatusOK, views)
}

func (h *StoreHandler) getBook(c *gin.Context) {
	book, err := h.svc.Catalog.GetBook(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookView(*book))
}

// ─── Cart ─────────────────────────────────────────────────────────────────────

type addToCartRequest struct {
	ISBN     string `json:"isbn" binding:"required,bookisbn"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (h *StoreHandler) getCart(c *gin.Context) {
	cart, err := h.svc.Carts.GetCart(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *StoreHandler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	summary, err := h.svc.Carts.AddItem(c.Request.Context(), customerID(c), req.ISBN, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *StoreHandler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	summary, err := h.svc.Carts.UpdateQuantity(c.Request.Context(), customerID(c), c.Param("isbn"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *StoreHandler) removeCartItem(c *gin.Context) {
	summary, err := h.svc.Carts.RemoveItem(c.Request.Context(), customerID(c), c.Param("isbn"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ─── Checkout & Orders ────────────────────────────────────────────────────────

type newCardRequest struct {
	Number      string `json:"number" binding:"required"`
	HolderName  string `json:"holder_name" binding:"required"`
	ExpiryMonth int    `json:"expiry_month" binding:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" binding:"required"`
	CardType    string `json:"card_type"`
	Save        bool   `json:"save"`
}

type checkoutRequest struct {
	SavedPaymentID uint            `json:"saved_payment_id"`
	NewCard        *newCardRequest `json:"new_card"`
	SavedAddressID uint            `json:"saved_address_id"`
}

func (h *StoreHandler) checkout(c *gin.Context) {
	var req checkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	in := services.CheckoutRequest{
		Payment: services.PaymentChoice{SavedPaymentID: req.SavedPaymentID},
		Address: services.AddressChoice{SavedAddressID: req.SavedAddressID},
	}
	if req.NewCard != nil {
		in.Payment.NewCard = &services.NewCard{
			Number:      req.NewCard.Number,
			HolderName:  req.NewCard.HolderName,
			ExpiryMonth: req.NewCard.ExpiryMonth,
			ExpiryYear:  req.NewCard.ExpiryYear,
			CardType:    req.NewCard.CardType,
			Save:        req.NewCard.Save,
		}
	}

	order, err := h.svc.Orders.Checkout(c.Request.Context(), customerID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"order_id":  order.ID,
		"reference": order.Reference,
		"total":     order.TotalAmount.StringFixed(2),
	})
}

func (h *StoreHandler) listOrders(c *gin.Context) {
	orders, err := h.svc.Orders.ListOrders(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *StoreHandler) getOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), customerID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ─── Profile ──────────────────────────────────────────────────────────────────

type profileRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

type phoneRequest struct {
	Number string `json:"number" binding:"required,max=30"`
	Type   string `json:"type" binding:"omitempty,oneof=Mobile Home Work"`
}

func (h *StoreHandler) getProfile(c *gin.Context) {
	customer, err := h.svc.Profiles.GetProfile(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *StoreHandler) updateProfile(c *gin.Context) {
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.svc.Profiles.UpdateProfile(c.Request.Context(), customerID(c), services.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *StoreHandler) listPhones(c *gin.Context) {
	phones, err := h.svc.Profiles.ListPhones(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, phones)
}

func (h *StoreHandler) addPhone(c *gin.Context) {
	var req phoneRequest
	if !bindJSON(c, &req) {
		return
	}
	phone, err := h.svc.Profiles.AddPhone(c.Request.Context(), customerID(c), services.PhoneInput{
		Number: req.Number,
		Type:   req.Type,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, phone)
}

func (h *StoreHandler) deletePhone(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Profiles.DeletePhone(c.Request.Context(), customerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoreHandler) setPrimaryPhone(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Profiles.SetPrimaryPhone(c.Request.Context(), customerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addressRequest struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
	Type       string `json:"type" binding:"omitempty,oneof=Home Work Shipping Billing"`
	IsDefault  bool   `json:"is_default"`
}

func (h *StoreHandler) listAddresses(c *gin.Context) {
	addresses, err := h.svc.Profiles.ListAddresses(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *StoreHandler) addAddress(c *gin.Context) {
	var req addressRequest
	if !bindJSON(c, &req) {
		return
	}
	address, err := h.svc.Profiles.AddAddress(c.Request.Context(), customerID(c), services.AddressInput{
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		Type:       req.Type,
		IsDefault:  req.IsDefault,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (h *StoreHandler) deleteAddress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Profiles.DeleteAddress(c.Request.Context(), customerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoreHandler) setDefaultAddress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Profiles.SetDefaultAddress(c.Request.Context(), customerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoreHandler) listPaymentMethods(c *gin.Context) {
	methods, err := h.svc.Profiles.ListPaymentMethods(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, methods)
}

func (h *StoreHandler) deletePaymentMethod(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Profiles.DeletePaymentMethod(c.Request.Context(), customerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoreHandler) setDefaultPaymentMethod(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Profiles.SetDefaultPaymentMethod(c.Request.Context(), customerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
