package invitation

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("invitation not found")
	ErrAlreadyAttended  = errors.New("invitation already attended")
	ErrDuplicateToken   = errors.New("duplicate qr code value")
	ErrMissingReference = errors.New("campus or inviter does not exist")
)

// Kind classifies failures the way users see them.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindValidation   Kind = "validation"
	KindPersistence  Kind = "persistence"
	KindRender       Kind = "render"
	KindAccessDenied Kind = "access_denied"
	KindNotFound     Kind = "not_found"
	KindTimeout      Kind = "timeout"
)

// Retryable reports whether trying the same action again may succeed.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindPersistence, KindRender:
		return true
	}
	return false
}

// Error carries a Kind through wrapping.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error.
func E(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf classifies err. The outermost *Error wins over sentinel matching.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	}
	return KindUnknown
}
