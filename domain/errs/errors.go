package errs

import "errors"

// Sentinel errors shared across usecases and infrastructure. Callers classify
// with errors.Is; wrapping sites add context with fmt.Errorf("...: %w", err).
var (
	// ErrConfiguration covers a missing/malformed vault key or absent workspace
	// app credentials. Fatal for the operation, never retried automatically.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication covers revoked/expired platform tokens. Surfaced to the
	// user as a reconnect prompt.
	ErrAuthentication = errors.New("authentication error")

	// ErrTransientPlatform covers timeouts and rate limits. Recorded per item
	// or account and left to an external retry policy.
	ErrTransientPlatform = errors.New("transient platform error")

	// ErrDataIntegrity is returned when an authentication tag check fails on
	// decrypt. The corrupted plaintext is never returned.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrStateInvalid is returned when an OAuth state token does not match the
	// workspace/platform of the current request.
	ErrStateInvalid = errors.New("oauth state invalid")

	// ErrStateExpired is returned when an OAuth state token is older than the
	// freshness window.
	ErrStateExpired = errors.New("oauth state expired")

	// ErrAlreadyInProgress is returned when a sync is triggered while another
	// run holds the per-account lock.
	ErrAlreadyInProgress = errors.New("sync already in progress")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
)
