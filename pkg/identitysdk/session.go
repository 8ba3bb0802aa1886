package identitysdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Session performs calls authenticated with a session token.
type Session struct {
	client    *Client
	token     string
	expiresAt time.Time
}

// Token returns the raw session token.
func (s *Session) Token() string { return s.token }

// ExpiresAt reports when the server will stop accepting the token.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// ListUsers returns one page of accounts. Zero page or limit lets the server
// pick its defaults.
func (s *Session) ListUsers(ctx context.Context, page, limit int) (*ListUsersResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.client.doRequest(ctx, http.MethodGet, path, s.token, nil)
	if err != nil {
		return nil, err
	}

	var out ListUsersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches an account by id.
func (s *Session) GetUser(ctx context.Context, id string) (*User, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), s.token, nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches an account by email address.
func (s *Session) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	q := url.Values{"email": {email}}
	resp, err := s.client.doRequest(ctx, http.MethodGet, "/v1/users/lookup?"+q.Encode(), s.token, nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser changes the caller's own account.
func (s *Session) UpdateUser(ctx context.Context, req UpdateUserRequest) (*User, error) {
	resp, err := s.client.doRequest(ctx, http.MethodPut, "/v1/users", s.token, req)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes the caller's own account.
func (s *Session) DeleteUser(ctx context.Context, email string) error {
	resp, err := s.client.doRequest(ctx, http.MethodDelete, "/v1/users", s.token, DeleteUserRequest{Email: email})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
