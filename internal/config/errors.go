package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than
// fmt.Errorf() because we don't need dynamic values in these messages.
var (
	// ErrInvalidTargetLanguage is returned when the target language is
	// empty or not a valid BCP 47 language code.
	ErrInvalidTargetLanguage = errors.New("invalid target language: must be a valid language code such as \"fr\"")

	// ErrInvalidForeignLanguage is returned when the foreign language is
	// empty or not a valid BCP 47 language code.
	ErrInvalidForeignLanguage = errors.New("invalid foreign language: must be a valid language code such as \"en\"")

	// ErrSameLanguages is returned when the target and foreign languages
	// are identical. Such a scan would report every snippet on the page.
	ErrSameLanguages = errors.New("target and foreign languages must differ")

	// ErrInvalidRemoteThreshold is returned when the remote confidence
	// threshold is outside (0, 1].
	ErrInvalidRemoteThreshold = errors.New("invalid remote threshold: must be greater than 0 and at most 1")

	// ErrInvalidHeuristicThreshold is returned when the heuristic
	// confidence threshold is outside (0, 1].
	ErrInvalidHeuristicThreshold = errors.New("invalid heuristic threshold: must be greater than 0 and at most 1")

	// ErrInvalidBatchLimit is returned when a batch limit is not
	// positive. Zero items or characters per batch would stall the scan.
	ErrInvalidBatchLimit = errors.New("invalid batch limit: items and characters must be positive")

	// ErrInvalidConcurrency is returned when the batch concurrency is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	// Use 0 to disable retries.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrNoPages is returned when the configuration names no pages to
	// scan. Run "locascan init" to generate a starter configuration.
	ErrNoPages = errors.New("no pages configured: add at least one page to the configuration file")

	// ErrInvalidPage is returned when a page entry is missing its name
	// or URL.
	ErrInvalidPage = errors.New("invalid page: name and url are required")

	// ErrInvalidModal is returned when a modal entry is missing its name
	// or trigger selector.
	ErrInvalidModal = errors.New("invalid modal: name and trigger are required")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a
	// time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
