package classifier

import "errors"

// Classifier errors.
//
// Design decision: We use package-level sentinel errors so callers can use
// errors.Is() to distinguish transient exhaustion from a permanent denial.
// The engine treats both the same way (fall back to the heuristic) but the
// remote adapter stops issuing network calls entirely after a permanent error.
var (
	// ErrRemoteUnavailable is returned when a batch still fails after all
	// retries for transient reasons (timeouts, throttling, 5xx responses).
	// Subsequent batches will be attempted again.
	ErrRemoteUnavailable = errors.New("remote classifier unavailable")

	// ErrRemoteDenied is returned when the service rejects the request for
	// a non-retryable reason (authentication failure, malformed request).
	// The adapter latches into degraded mode and skips the network for the
	// rest of the run.
	ErrRemoteDenied = errors.New("remote classifier denied request")

	// ErrEmptyBatch is returned when DetectBatch is called with no texts.
	ErrEmptyBatch = errors.New("empty classification batch")
)
