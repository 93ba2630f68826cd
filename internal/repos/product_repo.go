package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, category, price, rating, owner_id,
    is_worthy_pick, on_sale, image, created_at`

func (r *ProductRepo) list(ctx context.Context, where string, args ...any) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY created_at DESC`
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

// List applies the storefront filter: category "All" or "" means any
// category, q matches name or description case-insensitively.
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	var conds []string
	var args []any
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, "All") {
		conds = append(conds, `LOWER(category) = LOWER(?)`)
		args = append(args, c)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Q)); q != "" {
		conds = append(conds, `(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`)
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	return r.list(ctx, strings.Join(conds, " AND "), args...)
}

func (r *ProductRepo) ListWorthy(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `is_worthy_pick = ?`, true)
}

func (r *ProductRepo) ListOnSale(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `on_sale = ?`, true)
}

func (r *ProductRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error) {
	return r.list(ctx, `owner_id = ?`, ownerID)
}

func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT category FROM products ORDER BY category`)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

// GetMany resolves ids in one query; unknown ids are simply absent from the map.
func (r *ProductRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+productCols+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO products(`+productCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`),
		p.ID, p.Name, p.Description, p.Category, p.Price.StringFixed(2), p.Rating, p.OwnerID,
		p.IsWorthyPick, p.OnSale, p.Image, p.CreatedAt)
	return err
}

// Update rewrites the seller-editable fields. Owner and flags are untouched.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products
		SET name = ?, description = ?, category = ?, price = ?, rating = ?, image = ?
		WHERE id = ?`),
		p.Name, p.Description, p.Category, p.Price.StringFixed(2), p.Rating, p.Image, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the product and detaches it from historical order items in
// the same transaction; the items keep their frozen price and name.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE order_items SET product_id = NULL WHERE product_id = ?`), id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM products WHERE id = ?`), id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
