package repos

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func memDB(t *testing.T) *ProductRepo {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProductRepo(db)
}

func TestSeedAndGetMany(t *testing.T) {
	prods := memDB(t)
	ctx := context.Background()

	all, err := prods.List(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Notebook A5", all[0].Name, "newest first")

	ids := []string{all[0].ID, all[1].ID, "ghost"}
	got, err := prods.GetMany(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotContains(t, got, "ghost")

	empty, err := prods.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOpenDBIsIdempotent(t *testing.T) {
	prods := memDB(t)
	require.NoError(t, ensureSchema(prods.db))
	require.NoError(t, seedIfEmpty(prods.db))

	var n int
	require.NoError(t, prods.db.Get(&n, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 3, n)
}

func TestOrderInsertDuplicateKey(t *testing.T) {
	prods := memDB(t)
	orders := NewOrderRepo(prods.db)
	ctx := context.Background()

	mk := func(id string) domain.Order {
		return domain.Order{
			ID: id, UserID: "u-alice", CreatedAt: time.Now().UTC(),
			Total: domain.MustMoney("1.00"), Status: domain.StatusPending,
			Shipping: domain.Shipping{FullName: "A", Address: "B"},
		}
	}
	require.NoError(t, WithTx(ctx, prods.db, func(tx *sqlx.Tx) error {
		return orders.Insert(ctx, tx, mk("o-1"), "sess:1")
	}))
	err := WithTx(ctx, prods.db, func(tx *sqlx.Tx) error {
		return orders.Insert(ctx, tx, mk("o-2"), "sess:1")
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCheckout)

	_, err = orders.Get(ctx, "o-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderItemsSurviveProductDelete(t *testing.T) {
	prods := memDB(t)
	orders := NewOrderRepo(prods.db)
	ctx := context.Background()
	all, err := prods.List(ctx, domain.ProductFilter{Q: "mug"})
	require.NoError(t, err)
	mug := all[0]

	o := domain.Order{ID: "o-1", UserID: "u-bob", CreatedAt: time.Now().UTC(), Total: mug.Price, Status: domain.StatusPending,
		Shipping: domain.Shipping{FullName: "Bob", Address: "Here"}}
	require.NoError(t, WithTx(ctx, prods.db, func(tx *sqlx.Tx) error {
		if err := orders.Insert(ctx, tx, o, "k"); err != nil {
			return err
		}
		return orders.InsertItem(ctx, tx, domain.OrderItem{
			OrderID: o.ID, ProductID: sql.NullString{String: mug.ID, Valid: true},
			ProductName: mug.Name, Quantity: 1, Price: mug.Price,
		})
	}))

	require.NoError(t, prods.Delete(ctx, mug.ID))
	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.False(t, got.Items[0].ProductID.Valid)
	assert.Equal(t, "9.50", got.Items[0].Price.StringFixed(2))
}

func TestUserCreateRace(t *testing.T) {
	prods := memDB(t)
	users := NewUserRepo(prods.db)
	ctx := context.Background()

	err := users.Create(ctx, domain.User{ID: "u-x", Username: "ALICE", Email: "x@shop.test", Hash: "h", Role: domain.RoleUser, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	err = users.Create(ctx, domain.User{ID: "u-y", Username: "yan", Email: "Bob@Storefront.test", Hash: "h", Role: domain.RoleUser, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	assert.ErrorIs(t, users.SetActive(ctx, "u-none"), domain.ErrNotFound)
}
