package app

import "errors"

// Sentinel kinds for session manager errors.
var (
	// ErrNoSession signals that no active session exists for the subject.
	ErrNoSession = errors.New("no active session")
	// ErrEmployeeNotFound signals an unknown employee id within an
	// existing session.
	ErrEmployeeNotFound = errors.New("employee not found")
)
