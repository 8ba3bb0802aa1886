package identitysdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to the passage identity service. Unauthenticated calls live
// on Client; calls that need a session token live on Session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Authenticate logs in and returns a Session bound to the issued token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.NewSession(tok.Token, tok.ExpiresAt), nil
}

// NewSession wraps an existing session token. Sessions are not refreshed;
// once ExpiresAt passes the caller must log in again.
func (c *Client) NewSession(token string, expiresAt time.Time) *Session {
	return &Session{client: c, token: token, expiresAt: expiresAt}
}
