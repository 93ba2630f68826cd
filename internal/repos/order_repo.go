package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, user_id, full_name, address, phone, note, total, status, created_at`

// ---------- Writes (always inside the caller's transaction) ----------

// Insert writes the order header. checkoutKey is unique per cart revision, so
// replaying the same checkout fails with ErrDuplicateCheckout.
func (r *OrderRepo) Insert(ctx context.Context, tx sqlx.ExtContext, o domain.Order, checkoutKey string) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
	  INSERT INTO orders
	    (id, user_id, checkout_key, full_name, address, phone, note, total, status, created_at)
	  VALUES
	    (?,  ?,       ?,            ?,         ?,       ?,     ?,    ?,     ?,      ?)
	`), o.ID, o.UserID, checkoutKey, o.FullName, o.Address, o.Phone, o.Note,
		o.Total.StringFixed(2), string(o.Status), o.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateCheckout
	}
	return err
}

// InsertItem writes a single line with its frozen unit price.
func (r *OrderRepo) InsertItem(ctx context.Context, tx sqlx.ExtContext, it domain.OrderItem) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
	  INSERT INTO order_items(order_id, product_id, product_name, quantity, price)
	  VALUES(?, ?, ?, ?, ?)
	`), it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.Price.StringFixed(2))
	return err
}

// ---------- Reads ----------

func (r *OrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = []domain.OrderItem{}
	if err := r.db.SelectContext(ctx, &o.Items, r.db.Rebind(`
		SELECT id, order_id, product_id, product_name, quantity, price
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`), orderID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// ListByUser returns the user's orders newest first, without items.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+orderCols+`
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
	`), userID)
	return out, err
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+orderCols+`
		FROM orders
		ORDER BY created_at DESC
		LIMIT ?
	`), limit)
	return out, err
}

// UpdateStatus moves an order from one status to the next; it fails with
// ErrStatusTransition if the order was changed concurrently.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE orders SET status = ? WHERE id = ? AND status = ?`),
		string(to), id, string(from))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrStatusTransition
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
