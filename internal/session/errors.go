package session

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrLoginInProgress    = errors.New("login already in progress")
	// ErrCorruptState is wrapped by Store implementations when persisted
	// session data cannot be decoded.
	ErrCorruptState = errors.New("corrupt session state")
)
