package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

func TestCart_Mutations(t *testing.T) {
	c := &services.Cart{}
	c.Add("a")
	c.Add("a")
	c.Add("b")
	assert.Equal(t, 2, c.Qty("a"))
	assert.Equal(t, 1, c.Qty("b"))
	assert.EqualValues(t, 3, c.Revision)

	c.Update("a", "abc")
	assert.Equal(t, 1, c.Qty("a"), "non-numeric quantity falls back to 1")

	c.Update("b", "7")
	assert.Equal(t, 7, c.Qty("b"))

	c.Update("b", "0")
	assert.Equal(t, 0, c.Qty("b"))
	assert.Equal(t, 1, c.Len())

	c.Update("a", "-4")
	assert.Equal(t, 0, c.Len(), "negative quantity removes the entry")

	rev := c.Revision
	c.Remove("nope")
	assert.Equal(t, rev, c.Revision, "removing an unknown id is a no-op")
}

func TestCart_UpdateWithOversizedIntegers(t *testing.T) {
	c := &services.Cart{}
	c.Add("p1")
	c.Update("p1", "99999999999999999999")
	assert.Equal(t, validate.MaxCartQty, c.Qty("p1"), "overflowing quantity is clamped, not reset to 1")

	c.Update("p1", "-99999999999999999999")
	assert.Equal(t, 0, c.Len(), "overflowing negative quantity removes the entry")
}

func TestCart_SessionRoundTrip(t *testing.T) {
	s := memSession{}
	assert.Equal(t, 0, services.LoadCart(s, "cart").Len(), "missing cart loads empty")

	c := &services.Cart{}
	c.Add("p1")
	c.Update("p2", "3")
	require.NoError(t, services.SaveCart(s, "cart", c))

	got := services.LoadCart(s, "cart")
	assert.Equal(t, c.Entries, got.Entries)
	assert.Equal(t, c.Revision, got.Revision)

	s["cart"] = "{not json"
	assert.Equal(t, 0, services.LoadCart(s, "cart").Len())
}

func TestCartService_Snapshot(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a := addProduct(t, db, "p-a", "Alpha", "10.00", "u-alice")
	b := addProduct(t, db, "p-b", "Beta", "0.10", "u-bob")
	svc := services.NewCartService(repos.NewProductRepo(db))

	c := &services.Cart{}
	require.NoError(t, svc.Add(ctx, c, a.ID))
	require.NoError(t, svc.Add(ctx, c, a.ID))
	c.Update(b.ID, "3")

	snap, err := svc.Snapshot(ctx, c)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "Alpha", snap.Lines[0].Product.Name)
	assert.True(t, snap.Lines[0].Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, snap.Lines[1].Subtotal.Equal(decimal.RequireFromString("0.30")))
	assert.Equal(t, "20.30", snap.Total.StringFixed(2))
	assert.Equal(t, c.Revision, snap.Revision)

	sum := decimal.Zero
	for _, l := range snap.Lines {
		sum = sum.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	assert.True(t, snap.Total.Equal(sum))
}

func TestCartService_AddUnknownProduct(t *testing.T) {
	db := testDB(t)
	svc := services.NewCartService(repos.NewProductRepo(db))
	c := &services.Cart{}

	err := svc.Add(context.Background(), c, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, c.Len())
}

func TestCartService_SnapshotDropsDeletedProducts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a := addProduct(t, db, "p-a", "Alpha", "4.00", "u-alice")
	gone := addProduct(t, db, "p-gone", "Gone", "1.00", "u-alice")
	svc := services.NewCartService(repos.NewProductRepo(db))

	c := &services.Cart{}
	c.Add(a.ID)
	c.Add(gone.ID)
	require.NoError(t, repos.NewProductRepo(db).Delete(ctx, gone.ID))

	snap, err := svc.Snapshot(ctx, c)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, []string{gone.ID}, snap.Missing)
	assert.Equal(t, "4.00", snap.Total.StringFixed(2))
	assert.Equal(t, 0, c.Qty(gone.ID), "stale entry is pruned")
}

func TestCartService_SnapshotEmpty(t *testing.T) {
	svc := services.NewCartService(repos.NewProductRepo(testDB(t)))
	snap, err := svc.Snapshot(context.Background(), &services.Cart{})
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.True(t, snap.Total.IsZero())
}
