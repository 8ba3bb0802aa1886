package domain

import "time"

// IssuedToken is a freshly signed token together with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Identity is what a verified session token asserts.
type Identity struct {
	Email     string
	ExpiresAt time.Time
}

// ResetRequest is handed to a notifier for out-of-band delivery.
type ResetRequest struct {
	User      User
	Token     string
	Link      string
	ExpiresAt time.Time
}
