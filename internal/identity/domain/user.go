package domain

import (
	"net/mail"
	"strings"
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string // normalized, unique
	PasswordHash string // argon2id PHC encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPage is one page of a user listing.
type UserPage struct {
	Total int
	Page  int
	Limit int
	Users []User
}

// UserUpdate carries the optional fields of a self-service update. Nil fields
// are left unchanged.
type UserUpdate struct {
	Name  *string
	Email *string
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Every email is normalized before it is stored or looked up, so uniqueness
// is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email, once normalized, is a bare address with
// no display name or comments.
func ValidEmail(email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
