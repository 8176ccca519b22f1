package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"
)

// Default configuration values.
// The detection defaults mirror the behavior of managed language
// detection services and are deliberately conservative: fewer false
// alarms beats catching every marginal snippet.
const (
	// DefaultRemoteThreshold is the minimum confidence a remote verdict
	// needs before a foreign-language snippet is reported as a gap.
	// Remote classifiers are well calibrated, so 0.8 keeps recall high
	// without flooding reports with uncertain findings.
	DefaultRemoteThreshold = 0.8

	// DefaultHeuristicThreshold is the gap threshold for locally
	// classified snippets. The heuristic classifier is noisier than the
	// remote service, so its bar is intentionally higher.
	DefaultHeuristicThreshold = 0.85

	// DefaultBatchItems is the number of snippets per remote detection
	// request. 25 matches the batch limit of the major managed
	// detection APIs.
	DefaultBatchItems = 25

	// DefaultBatchChars caps the total characters per batch so a page
	// of long paragraphs cannot produce oversized requests.
	DefaultBatchChars = 4000

	// DefaultConcurrency is the number of detection batches in flight
	// at once. Remote latency would otherwise serialize the scan.
	DefaultConcurrency = 4

	// DefaultMaxRetries is the number of attempts per remote batch
	// before the scan degrades that batch to the heuristic classifier.
	DefaultMaxRetries = 3

	// DefaultNavigationTimeout bounds a single browser page navigation.
	// Client-rendered applications can take a while to hydrate, so this
	// is generous.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultMinSnippetLength is the minimum snippet length in runes.
	// One- and two-glyph fragments carry no language signal.
	DefaultMinSnippetLength = 2

	// DefaultTargetLanguage is the language the UI under scan is
	// expected to display.
	DefaultTargetLanguage = "fr"

	// DefaultForeignLanguage is the leak language to detect. English is
	// the overwhelmingly common source language of untranslated UI text.
	DefaultForeignLanguage = "en"

	// DefaultAPIKeyEnv is the environment variable consulted for the
	// remote detection API key. Keys never appear in config files or
	// CLI flags, so they cannot leak through shell history or VCS.
	DefaultAPIKeyEnv = "LOCASCAN_API_KEY"

	// AppName is the application name used for XDG directory paths.
	AppName = "locascan"
)

// Config holds all configuration options for a scan session.
// This struct is designed to be populated from the configuration file
// and CLI flags, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., DetectionConfig, BrowserConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// TargetLanguage is the ISO 639-1 code of the language the UI is
	// expected to display. Snippets in this language are never gaps.
	TargetLanguage string

	// ForeignLanguage is the ISO 639-1 code of the leak language.
	// Snippets confidently detected in this language are reported.
	ForeignLanguage string

	// Endpoint is the URL of the remote language detection service.
	// When empty the scan runs offline on the heuristic classifier.
	Endpoint string

	// APIKeyEnv names the environment variable holding the detection
	// API key. The key itself is read lazily at client construction.
	APIKeyEnv string

	// RemoteThreshold is the gap confidence threshold for remote
	// verdicts. Must be in (0, 1].
	RemoteThreshold float64

	// HeuristicThreshold is the gap confidence threshold for heuristic
	// verdicts. Must be in (0, 1] and should exceed RemoteThreshold.
	HeuristicThreshold float64

	// BatchItems is the maximum number of snippets per detection batch.
	BatchItems int

	// BatchChars is the maximum total characters per detection batch.
	BatchChars int

	// Concurrency is the number of detection batches in flight at once.
	Concurrency int

	// MaxRetries is the number of attempts per remote batch before
	// falling back to the heuristic classifier.
	MaxRetries int

	// MinSnippetLength is the minimum snippet length in runes; shorter
	// fragments are dropped before classification.
	MinSnippetLength int

	// IgnoreList contains exact strings to skip during normalization,
	// matched case-insensitively. Brand names and product terms that
	// legitimately stay untranslated belong here.
	IgnoreList []string

	// LoginURL, when set, is opened first so the user can authenticate
	// manually before the scan starts. The scan proceeds in the same
	// browser session.
	LoginURL string

	// NoLoginWait skips the manual login prompt even when LoginURL is
	// set. Useful once the browser profile already holds a session.
	NoLoginWait bool

	// Pages lists the pages of the product UI to scan, in order.
	Pages []PageConfig

	// Headless hides the browser window. Forced off when LoginURL is
	// set, since manual login needs a visible window.
	Headless bool

	// ProfileDir is the browser profile directory, preserving login
	// sessions between scans. Defaults to the XDG cache directory.
	ProfileDir string

	// NavigationTimeout bounds a single browser page navigation.
	NavigationTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport prints the report as JSON instead of the default
	// human-readable summary. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the report as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportDir is the directory where the HTML and CSV report files
	// are written. When empty, no report files are produced.
	ReportDir string

	// DBDir is the directory for the SQLite session database.
	// When set, finished sessions are saved for historical comparison.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist the session report.
	SaveToDB bool

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .locascan in the current directory and then
	// in the user's home directory.
	ConfigFilePath string
}

// PageConfig describes one page of the product UI to scan.
type PageConfig struct {
	// Name labels the page in gap reports.
	Name string `yaml:"name"`

	// URL is the address to navigate to.
	URL string `yaml:"url"`

	// Modals are dialogs reachable from this page to scan as well.
	Modals []ModalConfig `yaml:"modals,omitempty"`
}

// ModalConfig describes a dialog opened from a page.
type ModalConfig struct {
	// Name labels the modal; gap locations read "Page > Modal".
	Name string `yaml:"name"`

	// Trigger is the CSS selector of the element opening the modal.
	Trigger string `yaml:"trigger"`
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (thresholds, batch
// limits). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		TargetLanguage:     DefaultTargetLanguage,
		ForeignLanguage:    DefaultForeignLanguage,
		APIKeyEnv:          DefaultAPIKeyEnv,
		RemoteThreshold:    DefaultRemoteThreshold,
		HeuristicThreshold: DefaultHeuristicThreshold,
		BatchItems:         DefaultBatchItems,
		BatchChars:         DefaultBatchChars,
		Concurrency:        DefaultConcurrency,
		MaxRetries:         DefaultMaxRetries,
		MinSnippetLength:   DefaultMinSnippetLength,
		NavigationTimeout:  DefaultNavigationTimeout,
		Headless:           true,
		ProfileDir:         filepath.Join(XDGCacheDir(), "browser-profile"),
		DBDir:              XDGDataDir(),
	}
}

// APIKey returns the remote detection API key from the environment,
// or empty when unset. An empty key is valid for services that
// authenticate by network origin.
func (c *Config) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// XDGDataDir returns the XDG data directory for locascan.
// On Linux: ~/.local/share/locascan
// On macOS: ~/Library/Application Support/locascan
// On Windows: %LOCALAPPDATA%\locascan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for locascan.
// On Linux: ~/.config/locascan
// On macOS: ~/Library/Application Support/locascan
// On Windows: %APPDATA%\locascan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for locascan.
// On Linux: ~/.cache/locascan
// On macOS: ~/Library/Caches/locascan
// On Windows: %LOCALAPPDATA%\locascan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before the browser launches.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.TargetLanguage); err != nil || c.TargetLanguage == "" {
		return ErrInvalidTargetLanguage
	}
	if _, err := language.Parse(c.ForeignLanguage); err != nil || c.ForeignLanguage == "" {
		return ErrInvalidForeignLanguage
	}

	// Scanning for the displayed language would flag everything.
	if c.TargetLanguage == c.ForeignLanguage {
		return ErrSameLanguages
	}

	if c.RemoteThreshold <= 0 || c.RemoteThreshold > 1 {
		return ErrInvalidRemoteThreshold
	}
	if c.HeuristicThreshold <= 0 || c.HeuristicThreshold > 1 {
		return ErrInvalidHeuristicThreshold
	}

	if c.BatchItems <= 0 || c.BatchChars <= 0 {
		return ErrInvalidBatchLimit
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	if len(c.Pages) == 0 {
		return ErrNoPages
	}
	for _, page := range c.Pages {
		if page.Name == "" || page.URL == "" {
			return ErrInvalidPage
		}
		for _, modal := range page.Modals {
			if modal.Name == "" || modal.Trigger == "" {
				return ErrInvalidModal
			}
		}
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
