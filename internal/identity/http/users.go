package http

import (
	"net/http"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/internal/identity/service"
	"github.com/aussiebroadwan/passage/internal/identity/validate"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/identitysdk"
	"github.com/aussiebroadwan/passage/pkg/idx"
)

func toUser(u domain.User) identitysdk.User {
	return identitysdk.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type RegisterHandler struct {
	UserService *service.UserService
	Validator   *validate.Validator
}

// ServeHTTP handles account registration
//
//	@Summary		Register a user
//	@Description	Creates an account. The email is normalized to lower case and must be unused.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		identitysdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	identitysdk.User
//	@Failure		400		{object}	identitysdk.APIError	"Malformed body or invalid fields"
//	@Failure		409		{object}	identitysdk.APIError	"Email already registered"
//	@Failure		500		{object}	identitysdk.APIError
//	@Router			/v1/users [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.RegisterRequest
	if !decodeValid(w, r, h.Validator, validate.Register, &req) {
		return
	}

	u, err := h.UserService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

type ListUsersHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles the user listing
//
//	@Summary		List users
//	@Description	Returns one page of accounts ordered by creation. Requires a session token.
//	@Tags			Users
//	@Produce		json
//	@Param			page	query		int	false	"Page number (default 1)"
//	@Param			limit	query		int	false	"Page size (default 10, max 100)"
//	@Success		200		{object}	identitysdk.ListUsersResponse
//	@Failure		401		{object}	identitysdk.APIError	"Missing or invalid token"
//	@Failure		500		{object}	identitysdk.APIError
//	@Security		BearerAuth
//	@Router			/v1/users [get].
func (h *ListUsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, err := h.UserService.ListUsers(r.Context(),
		httpx.QueryInt(r, "page", service.DefaultPage),
		httpx.QueryInt(r, "limit", service.DefaultLimit),
	)
	if err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return
	}

	resp := identitysdk.ListUsersResponse{
		Total: int64(page.Total),
		Page:  page.Page,
		Limit: page.Limit,
		Users: make([]identitysdk.UserSummary, len(page.Users)),
	}
	for i, u := range page.Users {
		resp.Users[i] = identitysdk.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

type GetUserHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles fetching a single user
//
//	@Summary		Get a user
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	identitysdk.User
//	@Failure		401	{object}	identitysdk.APIError	"Missing or invalid token"
//	@Failure		404	{object}	identitysdk.APIError	"No such user"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [get].
func (h *GetUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// A malformed id cannot name an account.
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		identitysdk.ErrNotFound.WriteError(w)
		return
	}

	u, err := h.UserService.GetUser(r.Context(), id.String())
	if err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

type LookupUserHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles fetching a user by email
//
//	@Summary		Look up a user by email
//	@Description	The address is normalized before the lookup.
//	@Tags			Users
//	@Produce		json
//	@Param			email	query		string	true	"Account email"
//	@Success		200		{object}	identitysdk.User
//	@Failure		400		{object}	identitysdk.APIError	"Missing or malformed email"
//	@Failure		401		{object}	identitysdk.APIError	"Missing or invalid token"
//	@Failure		404		{object}	identitysdk.APIError	"No such user"
//	@Security		BearerAuth
//	@Router			/v1/users/lookup [get].
func (h *LookupUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUserByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// authenticate checks the bearer token before the body is read, so a caller
// without a valid session learns nothing about the request shape.
func authenticate(w http.ResponseWriter, r *http.Request, guard *service.Guard) (string, bool) {
	token, _ := httpx.BearerToken(r)
	if _, err := guard.Authenticate(token); err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return "", false
	}
	return token, true
}

type UpdateUserHandler struct {
	UserService *service.UserService
	Validator   *validate.Validator
}

// ServeHTTP handles self-service account updates
//
//	@Summary		Update own account
//	@Description	Changes the name and/or email of the account named by "email". The session token must belong to that account.
//	@Description	After an email change the old token no longer matches; log in again.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		identitysdk.UpdateUserRequest	true	"Target account and changes"
//	@Success		200		{object}	identitysdk.User
//	@Failure		400		{object}	identitysdk.APIError	"Malformed body or invalid fields"
//	@Failure		401		{object}	identitysdk.APIError	"Missing, invalid or expired token"
//	@Failure		403		{object}	identitysdk.APIError	"Token belongs to another account"
//	@Failure		404		{object}	identitysdk.APIError	"No such user"
//	@Failure		409		{object}	identitysdk.APIError	"New email already registered"
//	@Security		BearerAuth
//	@Router			/v1/users [put].
func (h *UpdateUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := authenticate(w, r, h.UserService.Guard)
	if !ok {
		return
	}

	var req identitysdk.UpdateUserRequest
	if !decodeValid(w, r, h.Validator, validate.UpdateUser, &req) {
		return
	}

	u, err := h.UserService.UpdateUser(r.Context(), token, req.Email, domain.UserUpdate{
		Name:  req.Name,
		Email: req.NewEmail,
	})
	if err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

type DeleteUserHandler struct {
	UserService *service.UserService
	Validator   *validate.Validator
}

// ServeHTTP handles self-service account deletion
//
//	@Summary		Delete own account
//	@Tags			Users
//	@Accept			json
//	@Param			body	body	identitysdk.DeleteUserRequest	true	"Target account"
//	@Success		204
//	@Failure		401	{object}	identitysdk.APIError	"Missing, invalid or expired token"
//	@Failure		403	{object}	identitysdk.APIError	"Token belongs to another account"
//	@Failure		404	{object}	identitysdk.APIError	"No such user"
//	@Security		BearerAuth
//	@Router			/v1/users [delete].
func (h *DeleteUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := authenticate(w, r, h.UserService.Guard)
	if !ok {
		return
	}

	var req identitysdk.DeleteUserRequest
	if !decodeValid(w, r, h.Validator, validate.DeleteUser, &req) {
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), token, req.Email); err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
