package insighthub

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email has no account.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("insighthub-dummy"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash stored for admin accounts.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", invalid("password", "password is required")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EnsureAdmin creates the admin account or replaces its password hash.
func (s *Store) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO admins (email, password_hash, created_at) VALUES (?, ?, ?)
ON CONFLICT(email) DO UPDATE SET password_hash = excluded.password_hash`,
		normalizeEmail(email), passwordHash, s.now())
	return storeErr("ensure admin", err)
}

// AdminByEmail looks up an admin account.
func (s *Store) AdminByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	err := s.db.GetContext(ctx, &a,
		`SELECT email, password_hash, created_at FROM admins WHERE email = ?`, normalizeEmail(email))
	if err != nil {
		return Admin{}, storeErr("admin by email", err)
	}
	return a, nil
}

// Authenticate reports whether password matches the admin account for email.
func (s *Store) Authenticate(ctx context.Context, email, password string) (bool, error) {
	a, err := s.AdminByEmail(ctx, email)
	if IsNotFound(err) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
