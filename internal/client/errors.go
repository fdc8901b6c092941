// Package client defines the error taxonomy shared by the session
// manager, the submission client, and the verification reader. Every
// failure a submission can surface is one of these types, so callers
// branch with errors.As instead of string matching.
package client

import "errors"

// ValidationError means the input failed local pre-flight checks.
// Nothing was sent anywhere; the user corrects the input and retries.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

// AuthError means the backend rejected a registration or login.
type AuthError struct {
	// Op is "register" or "login".
	Op  string
	Msg string
}

func (e *AuthError) Error() string { return e.Op + ": " + e.Msg }

// ChainWriteError means the on-chain write was attempted and failed:
// wallet rejection, revert, or confirmation timeout. No partial write
// exists; the backend write was never attempted.
type ChainWriteError struct {
	Op  string
	Err error
}

func (e *ChainWriteError) Error() string { return "chain write failed (" + e.Op + "): " + e.Err.Error() }
func (e *ChainWriteError) Unwrap() error { return e.Err }

// PersistenceError means the backend write failed after the chain write
// (if any) already succeeded. TxHash carries the confirmed transaction
// so a retry can reconcile the stores; it is empty when no chain write
// happened.
type PersistenceError struct {
	Op     string
	TxHash string
	Status int
	Msg    string
}

func (e *PersistenceError) Error() string {
	if e.TxHash != "" {
		return "backend write failed (" + e.Op + ", chain tx " + e.TxHash + " confirmed): " + e.Msg
	}
	return "backend write failed (" + e.Op + "): " + e.Msg
}

// NotFoundError is a valid outcome, not a failure: the looked-up record
// does not exist.
type NotFoundError struct {
	// Kind is what was looked up ("user", "batch").
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return e.Kind + " " + e.ID + " not found" }

// ErrSubmissionInFlight rejects a second submission while one is
// outstanding, mirroring the disabled submit control in the UI.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// ErrLocationTimeout distinguishes a GPS acquisition timeout from a
// denied or failed capture.
var ErrLocationTimeout = errors.New("location acquisition timed out")
