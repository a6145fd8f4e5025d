package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrInvalidRequest    = errors.New("domain: invalid request")
	ErrMissingCredential = errors.New("domain: missing upstream credential")
)
