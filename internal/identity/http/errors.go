package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/internal/identity/validate"
	"github.com/aussiebroadwan/passage/pkg/httpx"
	"github.com/aussiebroadwan/passage/pkg/identitysdk"
	"github.com/aussiebroadwan/passage/pkg/slogx"
)

// writeError maps a service error onto its API error. expired is used for
// domain.ErrTokenExpired since a stale session and a stale reset link answer
// differently.
func writeError(w http.ResponseWriter, r *http.Request, err error, expired *identitysdk.APIError) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		identitysdk.ErrValidation.WithFields(toFieldErrors(verr.Fields)).WriteError(w)
	case errors.Is(err, domain.ErrTokenExpired):
		expired.WriteError(w)
	case errors.Is(err, domain.ErrTokenInvalid):
		identitysdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, domain.ErrInvalidCredentials):
		identitysdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, domain.ErrForbidden):
		identitysdk.ErrForbidden.WriteError(w)
	case errors.Is(err, domain.ErrUserNotFound):
		identitysdk.ErrNotFound.WriteError(w)
	case errors.Is(err, domain.ErrEmailConflict):
		identitysdk.ErrConflict.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		identitysdk.ErrServerError.WriteError(w)
	}
}

func toFieldErrors(in []domain.FieldError) []identitysdk.FieldError {
	out := make([]identitysdk.FieldError, len(in))
	for i, f := range in {
		out[i] = identitysdk.FieldError{Field: f.Field, Message: f.Message}
	}
	return out
}

// decodeValid reads the body, checks it against schema and binds it into
// dst. On failure the response has been written and false is returned.
func decodeValid(w http.ResponseWriter, r *http.Request, v *validate.Validator, schema string, dst any) bool {
	doc, err := httpx.DecodeJSON(w, r)
	if err != nil {
		identitysdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	if err := v.Validate(schema, doc); err != nil {
		writeError(w, r, err, identitysdk.ErrSessionExpired)
		return false
	}
	if err := httpx.Bind(doc, dst); err != nil {
		identitysdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}
