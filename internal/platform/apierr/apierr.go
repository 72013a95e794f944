package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeStore        = "store_error"
	CodeInternal     = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code so errors.Is(err, apierr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Code != "" && e.Code == t.Code
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var (
	ErrValidation   = &Error{Status: http.StatusBadRequest, Code: CodeValidation}
	ErrUnauthorized = &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized}
	ErrForbidden    = &Error{Status: http.StatusForbidden, Code: CodeForbidden}
	ErrNotFound     = &Error{Status: http.StatusNotFound, Code: CodeNotFound}
	ErrStore        = &Error{Status: http.StatusServiceUnavailable, Code: CodeStore}
)

func Validation(msg string) *Error {
	return New(http.StatusBadRequest, CodeValidation, errors.New(msg))
}

func Validationf(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

// Unauthenticated is the authorization failure for a missing identity.
func Unauthenticated(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

// Forbidden is the authorization failure for a known identity lacking a role
// or ownership.
func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

func Store(err error) *Error {
	if err == nil {
		err = errors.New("store unavailable")
	}
	return New(http.StatusServiceUnavailable, CodeStore, err)
}

// FromStore maps an error returned by the store layer into the taxonomy.
// Existing *Error values pass through unchanged.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(http.StatusNotFound, CodeNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return New(http.StatusBadRequest, CodeValidation, fmt.Errorf("already exists: %w", err))
		case "23503": // foreign_key_violation
			return New(http.StatusNotFound, CodeNotFound, err)
		}
	}
	return Store(err)
}

func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsStore(err error) bool         { return errors.Is(err, ErrStore) }
func IsAuthorization(err error) bool { return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) }

// StatusOf returns the HTTP status and code for err; unknown errors are 500.
func StatusOf(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	return http.StatusInternalServerError, CodeInternal
}

// PublicMessage is the message safe to show a client. Store and internal
// failures are opaque.
func PublicMessage(err error) string {
	status, code := StatusOf(err)
	switch {
	case code == CodeStore:
		return "storage temporarily unavailable"
	case status >= 500:
		return "internal error"
	case err == nil:
		return "unknown error"
	default:
		return err.Error()
	}
}
