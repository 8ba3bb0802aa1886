package identitysdk

import "time"

// ============================================================================
// User Types
// ============================================================================

// RegisterRequest is the body of POST /v1/users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the public view of an account. Password hashes never leave the server.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is one row of a user listing.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListUsersResponse is the body of GET /v1/users.
type ListUsersResponse struct {
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Users []UserSummary `json:"users"`
}

// UpdateUserRequest is the body of PUT /v1/users. Email names the account
// being changed; nil fields are left alone.
type UpdateUserRequest struct {
	Email    string  `json:"email"`
	Name     *string `json:"name,omitempty"`
	NewEmail *string `json:"new_email,omitempty"`
}

// DeleteUserRequest is the body of DELETE /v1/users.
type DeleteUserRequest struct {
	Email string `json:"email"`
}

// ============================================================================
// Auth Types
// ============================================================================

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetRequest is the body of POST /v1/auth/reset_password.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetResponse acknowledges a reset request. Link is only populated when the
// server is configured to expose it.
type ResetResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	Link      string    `json:"link,omitempty"`
}

// ResetConfirmRequest is the body of POST /v1/auth/reset_password/{token}.
type ResetConfirmRequest struct {
	NewPassword string `json:"new_password"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}
