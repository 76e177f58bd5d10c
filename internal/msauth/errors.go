package msauth

import (
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by CacheStore.Load when no cache blob has been
// persisted yet. This is an expected outcome on first run, not a failure.
var ErrCacheMiss = errors.New("token cache not found")

// ErrNoSession indicates an operation that requires an authenticated session
// was called without one.
var ErrNoSession = errors.New("no active session")

// ErrLoginInProgress is returned when an interactive login is started while
// another one is still in flight. Concurrent interactive logins are not
// supported: both would contend for the fixed local callback port.
var ErrLoginInProgress = errors.New("interactive login already in progress")

// AcquisitionError indicates that a token acquisition attempt failed.
// Mode records which path failed: "silent" or "interactive".
type AcquisitionError struct {
	Mode string
	Err  error
}

// Error implements the error interface.
func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("%s token acquisition failed: %v", e.Mode, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As inspection.
func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// InteractiveTimeoutError indicates that no authorization callback arrived
// within the interactive login timeout. The attempt is terminal; the caller
// must restart the whole Authenticate call to retry.
type InteractiveTimeoutError struct {
	Timeout time.Duration
}

// Error implements the error interface.
func (e *InteractiveTimeoutError) Error() string {
	return fmt.Sprintf("no authorization callback received within %s", e.Timeout)
}
