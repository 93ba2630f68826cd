package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// testDB opens a fresh seeded in-memory database.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func addProduct(t *testing.T, db *sqlx.DB, id, name, price, owner string) domain.Product {
	t.Helper()
	p := domain.Product{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Category:    "Test",
		Price:       domain.MustMoney(price),
		OwnerID:     owner,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repos.NewProductRepo(db).Create(context.Background(), p))
	return p
}

func userByID(t *testing.T, db *sqlx.DB, id string) *domain.User {
	t.Helper()
	u, err := repos.NewUserRepo(db).ByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

// memSession stands in for a fiber session.
type memSession map[string]any

func (m memSession) Get(key string) any       { return m[key] }
func (m memSession) Set(key string, val any) { m[key] = val }
