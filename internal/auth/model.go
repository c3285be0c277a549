package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"
)

// User represents an application user.
type User struct {
	ID           uint64
	Username     string
	PasswordHash string
	Role         string
	TOTPSecret   string
	TOTPEnabled  bool
}

// UserRepo provides access to the users table.
type UserRepo struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

func (r *UserRepo) table() string {
	if r.TablePrefix == "" {
		return "bo_users"
	}
	return r.TablePrefix + "users"
}

type userRow struct {
	ID           uint64         `db:"id"`
	Username     string         `db:"username"`
	PasswordHash string         `db:"password_hash"`
	Role         string         `db:"role"`
	TOTPSecret   sql.NullString `db:"totp_secret"`
	TOTPEnabled  bool           `db:"totp_enabled"`
}

func (r *UserRepo) getBy(ctx context.Context, col string, val any) (*User, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Select("id", "username", "password_hash", "role", "totp_secret", "totp_enabled").
		Where(col, val).
		WithContext(ctx)
	var row userRow
	if err := q.First(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		TOTPSecret:   row.TOTPSecret.String,
		TOTPEnabled:  row.TOTPEnabled,
	}, nil
}

// GetByUsername returns a user by name, or nil when absent.
func (r *UserRepo) GetByUsername(ctx context.Context, name string) (*User, error) {
	return r.getBy(ctx, "username", name)
}

// GetByID returns a user by id, or nil when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*User, error) {
	return r.getBy(ctx, "id", id)
}

// EnableTOTP persists the verified secret and marks two-factor as active.
func (r *UserRepo) EnableTOTP(ctx context.Context, id uint64, secret string) error {
	var stmt string
	switch r.Dialect.(type) {
	case ormdriver.PostgresDialect, *ormdriver.PostgresDialect:
		stmt = fmt.Sprintf("UPDATE %s SET totp_secret=$1, totp_enabled=TRUE WHERE id=$2", r.table())
	default:
		stmt = fmt.Sprintf("UPDATE %s SET totp_secret=?, totp_enabled=TRUE WHERE id=?", r.table())
	}
	_, err := r.DB.ExecContext(ctx, stmt, secret, id)
	return err
}

// Create inserts a user with the given bcrypt hash and role.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash, role string) error {
	var stmt string
	switch r.Dialect.(type) {
	case ormdriver.PostgresDialect, *ormdriver.PostgresDialect:
		stmt = fmt.Sprintf("INSERT INTO %s (username, password_hash, role, totp_enabled) VALUES ($1,$2,$3,FALSE)", r.table())
	default:
		stmt = fmt.Sprintf("INSERT INTO %s (username, password_hash, role, totp_enabled) VALUES (?,?,?,FALSE)", r.table())
	}
	_, err := r.DB.ExecContext(ctx, stmt, username, passwordHash, role)
	return err
}
