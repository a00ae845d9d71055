package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrSessionUnavailable is returned when no browser session slot can be
	// leased (pool exhausted or page launch failed).
	ErrSessionUnavailable = errors.New("session unavailable")
	// ErrAccountLocked is returned when an account is locked out of
	// automation and needs manual intervention before new tasks can be
	// enqueued.
	ErrAccountLocked = errors.New("account locked")
)
