package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, username, email, password_hash, role, is_active, last_login, created_at`

func (r *UserRepo) one(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE `+where), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, `LOWER(email) = LOWER(?)`, email)
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.one(ctx, `LOWER(username) = LOWER(?)`, username)
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	return r.one(ctx, `id = ?`, id)
}

// ByLogin accepts either a username or an email address.
func (r *UserRepo) ByLogin(ctx context.Context, login string) (*domain.User, error) {
	if strings.Contains(login, "@") {
		return r.ByEmail(ctx, login)
	}
	return r.ByUsername(ctx, login)
}

// Create inserts a new user. A racing duplicate surfaces as ErrEmailTaken or
// ErrUsernameTaken depending on the index that fired.
func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO users(id, username, email, password_hash, role, is_active, created_at)
		VALUES(?,?,?,?,?,?,?)`),
		u.ID, u.Username, u.Email, u.Hash, u.Role, u.IsActive, u.CreatedAt)
	if isUniqueViolation(err) {
		if strings.Contains(err.Error(), "username") {
			return domain.ErrUsernameTaken
		}
		return domain.ErrEmailTaken
	}
	return err
}

func (r *UserRepo) SetActive(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE users SET is_active = ? WHERE id = ?`), true, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`), at, id)
	return err
}
