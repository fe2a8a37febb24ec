package services

import (
	"errors"
	"fmt"

	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/repositories"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNoProfile          = errors.New("no advertiser profile")
	ErrNotApproved        = errors.New("advertiser profile is not approved")
)

// wrap maps repository and validation errors onto the service sentinels,
// keeping the original message.
func wrap(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	case errors.Is(err, repositories.ErrReferenced):
		return fmt.Errorf("%s references a missing record: %w", what, ErrInvalidInput)
	case errors.Is(err, models.ErrInvalid):
		return fmt.Errorf("%w: %s", ErrInvalidInput, stripInvalid(err))
	}
	return fmt.Errorf("%s: %w", what, err)
}

func stripInvalid(err error) string {
	msg := err.Error()
	prefix := models.ErrInvalid.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
