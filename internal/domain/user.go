package domain

import (
	"database/sql"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        string       `db:"id" json:"id"`
	Username  string       `db:"username" json:"username"`
	Email     string       `db:"email" json:"email"`
	Hash      string       `db:"password_hash" json:"-"`
	Role      string       `db:"role" json:"role"`
	IsActive  bool         `db:"is_active" json:"is_active"`
	LastLogin sql.NullTime `db:"last_login" json:"-"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
