package types

import "errors"

var (
	ErrDriverNotFound = errors.New("driver not found")
	ErrOwnerNotFound  = errors.New("parking owner not found")
	ErrAccountExists  = errors.New("account with this email already exists")

	ErrSessionNotFound = errors.New("parking session not found")
	// Returned when an insert loses the race on the one-active-session-per-driver
	// constraint. The caller retries as a lookup of the existing session.
	ErrDuplicateSession = errors.New("active parking session already exists")

	ErrNoPaymentPolicy = errors.New("parking owner has no payment policy")
	ErrSessionNotEnded = errors.New("parking session is still active")

	ErrNotFound = errors.New("requested item not found")
)
