package identitysdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/users", "", req)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusCreated); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// RequestPasswordReset asks the service to send a reset link for email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*ResetResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/reset_password", "", ResetRequest{Email: email})
	if err != nil {
		return nil, err
	}

	var out ResetResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPasswordReset sets a new password using a reset token.
func (c *Client) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	path := "/v1/auth/reset_password/" + url.PathEscape(resetToken)
	resp, err := c.doRequest(ctx, http.MethodPost, path, "", ResetConfirmRequest{NewPassword: newPassword})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
