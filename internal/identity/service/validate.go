package service

import (
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
)

// MinPasswordLength is the shortest password accepted at registration and reset.
const MinPasswordLength = 6

func validateName(name string) *domain.ValidationError {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	return nil
}

func validateEmail(email string) *domain.ValidationError {
	if email == "" {
		return domain.NewValidationError("email", "is required")
	}
	if !domain.ValidEmail(email) {
		return domain.NewValidationError("email", "is not a valid address")
	}
	return nil
}

func validatePassword(password string) *domain.ValidationError {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return domain.NewValidationError("password", "must be at least 6 characters")
	}
	return nil
}

// collect merges field errors, returning nil when there are none.
func collect(errs ...*domain.ValidationError) error {
	var out *domain.ValidationError
	for _, e := range errs {
		if e == nil {
			continue
		}
		if out == nil {
			out = &domain.ValidationError{}
		}
		out.Fields = append(out.Fields, e.Fields...)
	}
	if out == nil {
		return nil
	}
	return out
}
