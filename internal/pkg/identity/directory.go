package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MavisVermie/TBR3-sub000/pkg/apperrors"
)

// User is the minimal profile the messaging core needs for display.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

var ErrUserNotFound = apperrors.NotFound("user not found")

// Directory resolves user IDs to display profiles. The users table is
// owned by the main platform; this service only reads it.
type Directory interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// PgDirectory reads display names straight from the shared users table.
type PgDirectory struct {
	pool *pgxpool.Pool
}

var _ Directory = (*PgDirectory)(nil)

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

func (d *PgDirectory) GetUser(ctx context.Context, id string) (User, error) {
	if d == nil || d.pool == nil {
		return User{}, errors.New("PgDirectory: nil pool")
	}
	var u User
	err := d.pool.QueryRow(ctx,
		"SELECT id::text, username FROM users WHERE id = $1::uuid", id,
	).Scan(&u.ID, &u.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
