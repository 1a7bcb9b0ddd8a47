// Package user persists principal identities referenced by every financial
// entity.
package user

import (
	"context"
	"time"

	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
)

// User is a principal identity row
type User struct {
	ID            int64
	Email         string
	Phone         string
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
}

// Insert stores a new user, surfacing ErrDuplicateKey on email or phone
// collision
func Insert(ctx context.Context, exec repository.Executor, u *User) (int64, error) {
	return repository.InsertReturningID(ctx, exec,
		`INSERT INTO users (email, phone, email_verified, phone_verified) VALUES (?, ?, ?, ?)`,
		u.Email, u.Phone, u.EmailVerified, u.PhoneVerified)
}

// One returns a user by id
func One(ctx context.Context, exec repository.Executor, id int64) (*User, error) {
	row := exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT id, email, phone, email_verified, phone_verified, created_at
		 FROM users WHERE id = ?`), id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.EmailVerified,
		&u.PhoneVerified, &u.CreatedAt)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &u, nil
}

// Exists reports whether the user id is present
func Exists(ctx context.Context, exec repository.Executor, id int64) (bool, error) {
	row := exec.QueryRowContext(ctx, repository.Rebind(
		`SELECT COUNT(1) FROM users WHERE id = ?`), id)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, database.TranslateError(err)
	}
	return n > 0, nil
}
