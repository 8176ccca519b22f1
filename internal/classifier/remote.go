package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/locascan/locascan/internal/model"
)

// Remote classifies batches of text snippets using an HTTP language
// detection service. It retries transient failures with exponential
// backoff, supports partial responses, and degrades permanently after an
// unrecoverable service error so the rest of the run skips the network.
//
// The wire format is a JSON batch detection request:
//
//	POST {endpoint}  {"texts": ["Save changes", ...]}
//
// and a per-text response keyed by index:
//
//	{"results": [{"index": 0, "language": "en", "score": 0.92}, ...]}
//
// Texts missing from the response simply have no verdict; the caller
// falls those items back to the heuristic classifier individually.
type Remote struct {
	// endpoint is the full URL of the batch detection endpoint.
	endpoint string

	// apiKey is sent as a bearer token when non-empty.
	apiKey string

	// client is the HTTP client used for all requests.
	client *http.Client

	// maxRetries is the number of retries after the initial attempt.
	maxRetries int

	// backoffBase is the delay before the first retry. Each subsequent
	// retry doubles it, up to backoffMax.
	backoffBase time.Duration
	backoffMax  time.Duration

	// degraded is set after a permanent failure. Once set, DetectBatch
	// returns ErrRemoteDenied without touching the network.
	degraded atomic.Bool

	// logger for structured logging.
	logger *slog.Logger
}

// RemoteOption configures a Remote classifier.
type RemoteOption func(*Remote)

// WithHTTPClient sets the HTTP client used for detection requests.
// Tests use this to point the adapter at a mock transport.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *Remote) {
		r.client = client
	}
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) RemoteOption {
	return func(r *Remote) {
		r.apiKey = key
	}
}

// WithMaxRetries sets the number of retries for transient failures.
func WithMaxRetries(n int) RemoteOption {
	return func(r *Remote) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithBackoff sets the base and maximum delay for exponential backoff.
func WithBackoff(base, maxDelay time.Duration) RemoteOption {
	return func(r *Remote) {
		if base > 0 {
			r.backoffBase = base
		}
		if maxDelay > 0 {
			r.backoffMax = maxDelay
		}
	}
}

// WithRemoteLogger sets a custom logger for the remote classifier.
func WithRemoteLogger(logger *slog.Logger) RemoteOption {
	return func(r *Remote) {
		r.logger = logger
	}
}

// NewRemote creates a remote classifier for the given detection endpoint.
func NewRemote(endpoint string, opts ...RemoteOption) *Remote {
	r := &Remote{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		backoffBase: 500 * time.Millisecond,
		backoffMax:  10 * time.Second,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Degraded reports whether the adapter has latched into degraded mode
// after a permanent service error.
func (r *Remote) Degraded() bool {
	return r.degraded.Load()
}

// detectRequest is the JSON request body for batch detection.
type detectRequest struct {
	Texts []string `json:"texts"`
}

// detectResult is one per-text result in the service response.
type detectResult struct {
	Index    int     `json:"index"`
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// detectResponse is the JSON response body for batch detection.
type detectResponse struct {
	Results []detectResult `json:"results"`
}

// DetectBatch classifies all texts in one remote call.
//
// The returned slice always has len(texts) entries. Entries for texts the
// service did not classify are zero-valued (empty Language); callers must
// check Valid() and fall back per item. The error is non-nil only when the
// whole batch failed: ErrRemoteUnavailable after exhausted retries on
// transient failures, or ErrRemoteDenied for permanent ones. Either way
// the caller recovers by classifying the batch heuristically; this method
// never returns an error the pipeline cannot absorb.
func (r *Remote) DetectBatch(ctx context.Context, texts []string) ([]model.LanguageVerdict, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}

	if r.degraded.Load() {
		return nil, ErrRemoteDenied
	}

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			if err := r.sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		verdicts, err := r.detectOnce(ctx, texts)
		if err == nil {
			return verdicts, nil
		}

		if permanent, ok := err.(*permanentError); ok {
			// Log once; every later batch short-circuits on the flag.
			if r.degraded.CompareAndSwap(false, true) {
				r.logger.Error("remote classifier permanently degraded, switching to heuristic mode",
					"status", permanent.status,
					"error", permanent.Error(),
				)
			}
			return nil, fmt.Errorf("%w: %s", ErrRemoteDenied, permanent.Error())
		}

		lastErr = err
		r.logger.Warn("remote classification attempt failed",
			"attempt", attempt+1,
			"max_attempts", r.maxRetries+1,
			"error", err,
		)

		// Context cancellation is not worth retrying.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, lastErr)
}

// detectOnce performs a single detection request.
// Permanent failures are returned as *permanentError so the retry loop
// can distinguish them from transient ones.
func (r *Remote) detectOnce(ctx context.Context, texts []string) ([]model.LanguageVerdict, error) {
	body, err := json.Marshal(detectRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to encode detection request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &permanentError{status: 0, msg: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		// Network errors and timeouts are transient.
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decoding.
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("detection service returned status %d", resp.StatusCode)
	default:
		// 4xx other than throttling means the request itself is bad
		// (auth failure, malformed payload). Retrying cannot help.
		return nil, &permanentError{
			status: resp.StatusCode,
			msg:    fmt.Sprintf("detection service returned status %d", resp.StatusCode),
		}
	}

	var decoded detectResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode detection response: %w", err)
	}

	verdicts := make([]model.LanguageVerdict, len(texts))
	for _, result := range decoded.Results {
		if result.Index < 0 || result.Index >= len(texts) {
			r.logger.Warn("detection result index out of range", "index", result.Index)
			continue
		}
		verdicts[result.Index] = model.LanguageVerdict{
			Language:   result.Language,
			Confidence: clampConfidence(result.Score),
			Source:     model.SourceRemote,
		}
	}

	return verdicts, nil
}

// sleepBackoff waits before retry number attempt (1-based).
// The delay doubles per attempt with up to 25% random jitter to avoid
// synchronized retries across concurrent batches.
func (r *Remote) sleepBackoff(ctx context.Context, attempt int) error {
	delay := r.backoffBase << (attempt - 1)
	if delay > r.backoffMax {
		delay = r.backoffMax
	}
	delay += time.Duration(rand.Int63n(int64(delay)/4 + 1)) //nolint:gosec // jitter does not need crypto randomness

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// clampConfidence forces a score into [0, 1].
// Some services report scores marginally above 1 due to rounding.
func clampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	status int
	msg    string
}

// Error returns the failure description.
func (e *permanentError) Error() string {
	return e.msg
}
