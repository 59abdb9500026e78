// Package common provides shared constants, types, and utilities
// used across WG Sentinel.
package common

import "errors"

// Sentinel errors for supervision and provisioning.
// These can be checked with errors.Is() for proper error handling.
var (
	// Supervision errors.
	ErrInterfaceMissing = errors.New("tunnel interface not found")
	ErrNoHandshake      = errors.New("no handshake recorded for interface")
	ErrProbeFailed      = errors.New("connectivity probe failed")
	ErrReloadFailed     = errors.New("interface reload failed")

	// Provisioning errors.
	ErrToolSync      = errors.New("credential tool sync failed")
	ErrToolRun       = errors.New("credential tool run failed")
	ErrConfigTimeout = errors.New("timed out waiting for tool config file")
	ErrFieldMissing  = errors.New("required field missing from tool config")
	ErrInvalidKey    = errors.New("invalid key material")

	// Configuration errors.
	ErrConfigLoad    = errors.New("failed to load configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Journal errors.
	ErrJournalClosed = errors.New("journal is closed")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
