// Package common defines shared constants and sentinel errors used across
// the server and client layers of credauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrConcurrentUpdate = errors.New("concurrent update")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Registration errors.
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	ErrEmailExists      = errors.New("email already registered")

	// Login errors. Unknown emails are reported as ErrIncorrectCredentials too.
	ErrIncorrectCredentials = errors.New("incorrect email or password")
	ErrAccountLocked        = errors.New("account locked")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
)
