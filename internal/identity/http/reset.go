package http

import (
	"net/http"

	"github.com/aussiebroadwan/passage/internal/identity/service"
	"github.com/aussiebroadwan/passage/internal/identity/validate"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/identitysdk"
)

type ResetRequestHandler struct {
	ResetService *service.ResetService
	Validator    *validate.Validator
	ExposeLink   bool
}

// ServeHTTP handles password reset requests
//
//	@Summary		Request a password reset
//	@Description	Mints a reset token for the account and delivers the link out of band.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		identitysdk.ResetRequest	true	"Account email"
//	@Success		200		{object}	identitysdk.ResetResponse
//	@Failure		400		{object}	identitysdk.APIError	"Malformed body or invalid fields"
//	@Failure		404		{object}	identitysdk.APIError	"No such user"
//	@Failure		500		{object}	identitysdk.APIError
//	@Router			/v1/auth/reset_password [post].
func (h *ResetRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.ResetRequest
	if !decodeValid(w, r, h.Validator, validate.ResetRequest, &req) {
		return
	}

	out, err := h.ResetService.RequestReset(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err, identitysdk.ErrResetExpired)
		return
	}

	resp := identitysdk.ResetResponse{
		Message:   "reset link sent",
		ExpiresAt: out.ExpiresAt,
	}
	if h.ExposeLink {
		resp.Link = out.Link
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type ResetConfirmHandler struct {
	ResetService *service.ResetService
	Validator    *validate.Validator
}

// ServeHTTP handles password reset confirmation
//
//	@Summary		Confirm a password reset
//	@Description	Sets a new password using the token from the reset link.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string							true	"Reset token"
//	@Param			body	body		identitysdk.ResetConfirmRequest	true	"New password"
//	@Success		200		{object}	identitysdk.MessageResponse
//	@Failure		400		{object}	identitysdk.APIError	"Invalid fields or expired token"
//	@Failure		401		{object}	identitysdk.APIError	"Invalid or already used token"
//	@Failure		404		{object}	identitysdk.APIError	"Account no longer exists"
//	@Router			/v1/auth/reset_password/{token} [post].
func (h *ResetConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.ResetConfirmRequest
	if !decodeValid(w, r, h.Validator, validate.ResetConfirm, &req) {
		return
	}

	if err := h.ResetService.ConfirmReset(r.Context(), r.PathValue("token"), req.NewPassword); err != nil {
		writeError(w, r, err, identitysdk.ErrResetExpired)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.MessageResponse{Message: "password updated"})
}
