package http

import (
	"net/http"

	"github.com/aussiebroadwan/passage/internal/identity/service"
	"github.com/aussiebroadwan/passage/internal/identity/validate"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/identitysdk"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Validator   *validate.Validator
}

// ServeHTTP handles password login
//
//	@Summary		Log in
//	@Description	Exchanges an email and password for a session token. Unknown emails and wrong passwords are indistinguishable.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		identitysdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	identitysdk.TokenResponse
//	@Failure		400		{object}	identitysdk.APIError	"Malformed body or invalid fields"
//	@Failure		401		{object}	identitysdk.APIError	"Invalid credentials"
//	@Failure		500		{object}	identitysdk.APIError
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.LoginRequest
	if !decodeValid(w, r, h.Validator, validate.Login, &req) {
		return
	}

	tok, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.TokenResponse{
		Token:     tok.Token,
		TokenType: "Bearer",
		ExpiresAt: tok.ExpiresAt,
	})
}
