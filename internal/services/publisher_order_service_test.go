package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bookstore/internal/models"
)

func pendingOrderFor(t *testing.T, f *fixture, isbn string) models.PublisherOrder {
	t.Helper()
	pending, err := f.publisherOrders.List(context.Background(), models.PublisherOrderPending)
	require.NoError(t, err)
	for _, o := range pending {
		if o.ISBN == isbn {
			return o
		}
	}
	t.Fatalf("no pending publisher order for %s", isbn)
	return models.PublisherOrder{}
}

func TestConfirmPublisherOrder_AddsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Low", "5.00", 3, 10)
	pending := pendingOrderFor(t, f, "111")

	confirmed, err := f.publisherOrders.Confirm(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.PublisherOrderConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	require.Equal(t, 3+DefaultReorderQuantity, f.stockOf(t, "111"))

	var stored models.PublisherOrder
	require.NoError(t, f.db.First(&stored, pending.ID).Error)
	require.Equal(t, models.PublisherOrderConfirmed, stored.Status)
	require.NotNil(t, stored.ConfirmedAt)

	_, err = f.publisherOrders.Confirm(ctx, pending.ID)
	requireKind(t, err, ErrValidation)
	require.Equal(t, 3+DefaultReorderQuantity, f.stockOf(t, "111"))
}

func TestCancelPublisherOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addBook(t, "111", "Low", "5.00", 3, 10)
	pending := pendingOrderFor(t, f, "111")

	cancelled, err := f.publisherOrders.Cancel(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.PublisherOrderCancelled, cancelled.Status)
	require.Equal(t, 3, f.stockOf(t, "111"))

	_, err = f.publisherOrders.Confirm(ctx, pending.ID)
	requireKind(t, err, ErrValidation)

	// With the pending order gone, the next low stock update places a new one.
	_, err = f.catalog.UpdateStock(ctx, "111", 2)
	require.NoError(t, err)
	pendingOrderFor(t, f, "111")

	all, err := f.publisherOrders.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestPublisherOrders_UnknownAndBadStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.publisherOrders.Confirm(ctx, 42)
	requireKind(t, err, ErrNotFound)
	_, err = f.publisherOrders.Cancel(ctx, 42)
	requireKind(t, err, ErrNotFound)

	_, err = f.publisherOrders.List(ctx, "Lost")
	requireKind(t, err, ErrValidation)
}
