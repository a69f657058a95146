package model

import "errors"

// Error kinds for the messaging layer. Callers classify with errors.Is;
// causes are attached by wrapping.
var (
	// ErrUnauthorized - missing, malformed or expired credential.
	ErrUnauthorized = errors.New("authentication error")

	// ErrValidation - empty content, missing receiver, self-addressed
	// message. Rejected before any side effect.
	ErrValidation = errors.New("validation error")

	// ErrNotFound - the referenced counterpart user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStore - persistence or query failure. The whole operation fails;
	// nothing is broadcast for a failed send.
	ErrStore = errors.New("store failure")
)
