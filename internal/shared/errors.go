package shared

import "errors"

var (
	// ErrValidation indicates malformed input the caller can correct.
	ErrValidation = errors.New("validation failed")
	// ErrEmailTaken indicates a registration attempt with an existing email.
	ErrEmailTaken = errors.New("user already exists")
	// ErrInvalidCredentials indicates login failure. The message is shared by
	// the unknown-email and wrong-password paths so callers cannot tell which
	// field was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
