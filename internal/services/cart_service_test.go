package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
)

func TestAddItem_MergesAndClampsToStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Five Copies", "10.00", 5, 0)
	customer := f.addCustomer(t, "amira")

	summary, err := f.carts.AddItem(ctx, customer.ID, "111", 3)
	require.NoError(t, err)
	require.Equal(t, CartSummary{Count: 3, Total: "30.00"}, *summary)

	summary, err = f.carts.AddItem(ctx, customer.ID, "111", 4)
	require.NoError(t, err)
	require.Equal(t, CartSummary{Count: 5, Total: "50.00"}, *summary)
	require.Equal(t, map[string]int{"111": 5}, f.cartLines(t, customer.ID))
}

func TestAddItem_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Scarce", "10.00", 2, 0)
	customer := f.addCustomer(t, "amira")

	_, err := f.carts.AddItem(ctx, customer.ID, "111", 0)
	requireKind(t, err, ErrValidation)

	_, err = f.carts.AddItem(ctx, customer.ID, "999", 1)
	requireKind(t, err, ErrNotFound)
	require.Equal(t, "Book not found", err.Error())

	_, err = f.carts.AddItem(ctx, customer.ID, "111", 3)
	requireKind(t, err, ErrConflict)
	require.Equal(t, "Insufficient stock for: Scarce. Only 2 available.", err.Error())

	require.Empty(t, f.cartLines(t, customer.ID))
}

func TestCartTotals_TwoDecimals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Cheap", "12.50", 10, 0)
	f.addBook(t, "222", "Cheaper", "3.00", 10, 0)
	customer := f.addCustomer(t, "amira")

	_, err := f.carts.AddItem(ctx, customer.ID, "111", 2)
	require.NoError(t, err)
	summary, err := f.carts.AddItem(ctx, customer.ID, "222", 1)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Count)
	require.Equal(t, "28.00", summary.Total)

	view, err := f.carts.GetCart(ctx, customer.ID)
	require.NoError(t, err)
	require.Equal(t, *summary, view.CartSummary)
	require.Len(t, view.Items, 2)
	require.Equal(t, "111", view.Items[0].ISBN)
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Five Copies", "10.00", 5, 0)
	f.addBook(t, "222", "Elsewhere", "10.00", 5, 0)
	customer := f.addCustomer(t, "amira")
	_, err := f.carts.AddItem(ctx, customer.ID, "111", 1)
	require.NoError(t, err)

	summary, err := f.carts.UpdateQuantity(ctx, customer.ID, "111", 3)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Count)

	summary, err = f.carts.UpdateQuantity(ctx, customer.ID, "111", 50)
	require.NoError(t, err)
	require.Equal(t, 5, summary.Count)

	_, err = f.carts.UpdateQuantity(ctx, customer.ID, "111", 0)
	requireKind(t, err, ErrValidation)

	_, err = f.carts.UpdateQuantity(ctx, customer.ID, "222", 1)
	requireKind(t, err, ErrNotFound)
}

func TestUpdateQuantity_DropsSoldOutLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Going Fast", "10.00", 5, 0)
	customer := f.addCustomer(t, "amira")
	_, err := f.carts.AddItem(ctx, customer.ID, "111", 2)
	require.NoError(t, err)

	_, err = f.catalog.UpdateStock(ctx, "111", 0)
	require.NoError(t, err)

	summary, err := f.carts.UpdateQuantity(ctx, customer.ID, "111", 1)
	require.NoError(t, err)
	require.Equal(t, CartSummary{Count: 0, Total: "0.00"}, *summary)
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Removable", "10.00", 5, 0)
	customer := f.addCustomer(t, "amira")
	_, err := f.carts.AddItem(ctx, customer.ID, "111", 2)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		summary, err := f.carts.RemoveItem(ctx, customer.ID, "111")
		require.NoError(t, err)
		require.Equal(t, CartSummary{Count: 0, Total: "0.00"}, *summary)
	}
}

func TestCart_OnePerCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Shared", "10.00", 5, 0)
	amira := f.addCustomer(t, "amira")
	omar := f.addCustomer(t, "omar")

	_, err := f.carts.AddItem(ctx, amira.ID, "111", 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, omar.ID, "111", 1)
	require.NoError(t, err)

	require.Equal(t, map[string]int{"111": 2}, f.cartLines(t, amira.ID))
	require.Equal(t, map[string]int{"111": 1}, f.cartLines(t, omar.ID))
}

func TestCart_UnknownCustomer(t *testing.T) {
	db := newTestDB(t, "_foreign_keys=1")
	carts := NewCartService(db, repositories.NewBookRepository(db), repositories.NewCartRepository(db))
	ctx := context.Background()

	_, err := carts.GetCart(ctx, 9999)
	requireKind(t, err, ErrNotFound)
	require.Equal(t, "Customer not found", err.Error())

	var n int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&n).Error)
	require.Zero(t, n)

	customer := models.Customer{Username: "amira", FirstName: "Amira", LastName: "Tester", Email: "amira@example.com"}
	require.NoError(t, db.Create(&customer).Error)
	view, err := carts.GetCart(ctx, customer.ID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}
