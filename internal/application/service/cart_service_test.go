package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/inventario/pkg/apperror"
)

func newCartFixture(t *testing.T) (*salesFixture, *CartService) {
	t.Helper()
	f := newSalesFixture(t)
	return f, NewCartService(f.inv, f.sales, nullLogger())
}

func TestCart_AddMergesAndPrices(t *testing.T) {
	f, carts := newCartFixture(t)
	ctx := context.Background()
	cart := carts.CreateCart(ctx)

	_, err := carts.AddItem(ctx, cart.ID, f.a.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, cart.ID, f.b.ID, 1)
	require.NoError(t, err)
	view, err := carts.AddItem(ctx, cart.ID, f.a.ID, 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 6, view.Units)
	assert.True(t, view.Total.Equal(dec("53")), view.Total.String())
}

func TestCart_AddChecksCumulativeStock(t *testing.T) {
	f, carts := newCartFixture(t)
	ctx := context.Background()
	cart := carts.CreateCart(ctx)

	_, err := carts.AddItem(ctx, cart.ID, f.b.ID, 3)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, cart.ID, f.b.ID, 2)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	_, err = carts.AddItem(ctx, cart.ID, f.b.ID, math.MaxInt)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	_, err = carts.AddItem(ctx, cart.ID, f.b.ID, 0)
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)

	_, err = carts.AddItem(ctx, cart.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	_, err = carts.AddItem(ctx, uuid.New(), f.a.ID, 1)
	assert.ErrorIs(t, err, apperror.ErrCartNotFound)

	view, err := carts.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Units)
}

func TestCart_Remove(t *testing.T) {
	f, carts := newCartFixture(t)
	ctx := context.Background()
	cart := carts.CreateCart(ctx)
	_, err := carts.AddItem(ctx, cart.ID, f.a.ID, 1)
	require.NoError(t, err)

	view, err := carts.RemoveItem(ctx, cart.ID, f.a.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = carts.RemoveItem(ctx, cart.ID, f.a.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestCart_Checkout(t *testing.T) {
	f, carts := newCartFixture(t)
	ctx := context.Background()
	cart := carts.CreateCart(ctx)
	_, err := carts.AddItem(ctx, cart.ID, f.a.ID, 2)
	require.NoError(t, err)

	sale, err := carts.Checkout(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, sale.TotalRevenue.Equal(dec("20")))
	assert.Equal(t, 18, f.stock(t, f.a.ID))

	view, err := carts.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = carts.Checkout(ctx, cart.ID)
	assert.ErrorIs(t, err, apperror.ErrEmptySale)
}

func TestCart_FailedCheckoutKeepsCart(t *testing.T) {
	f, carts := newCartFixture(t)
	ctx := context.Background()
	cart := carts.CreateCart(ctx)
	_, err := carts.AddItem(ctx, cart.ID, f.b.ID, 4)
	require.NoError(t, err)

	_, err = f.inv.DecrementStock(ctx, f.b.ID, 1)
	require.NoError(t, err)

	_, err = carts.Checkout(ctx, cart.ID)
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	view, err := carts.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Units)
}

func TestCart_MissingProductAndDiscard(t *testing.T) {
	f, carts := newCartFixture(t)
	ctx := context.Background()
	cart := carts.CreateCart(ctx)
	_, err := carts.AddItem(ctx, cart.ID, f.a.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.inv.DeleteProduct(ctx, f.a.ID))

	view, err := carts.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Items[0].Missing)
	assert.True(t, view.Total.IsZero())

	require.NoError(t, carts.DiscardCart(ctx, cart.ID))
	_, err = carts.GetCart(ctx, cart.ID)
	assert.ErrorIs(t, err, apperror.ErrCartNotFound)
}
