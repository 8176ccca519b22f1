package config

// File represents the structure of the .locascan configuration file.
// Everything is optional; absent values keep the built-in defaults.
type File struct {
	// TargetLanguage is the language the UI is expected to display.
	TargetLanguage string `yaml:"target_language,omitempty"`

	// ForeignLanguage is the leak language to detect.
	ForeignLanguage string `yaml:"foreign_language,omitempty"`

	// LoginURL is opened first for manual authentication.
	LoginURL string `yaml:"login_url,omitempty"`

	// Pages lists the pages to scan, in order.
	Pages []PageConfig `yaml:"pages,omitempty"`

	// Detection tunes the language classification pipeline.
	Detection DetectionFile `yaml:"detection,omitempty"`

	// Ignore contains exact strings to skip during normalization.
	Ignore []string `yaml:"ignore,omitempty"`
}

// DetectionFile holds the detection section of the configuration file.
type DetectionFile struct {
	// Endpoint is the remote detection service URL. Empty means the
	// scan runs offline on the heuristic classifier.
	Endpoint string `yaml:"endpoint,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// RemoteThreshold overrides the remote gap confidence threshold.
	RemoteThreshold float64 `yaml:"remote_threshold,omitempty"`

	// HeuristicThreshold overrides the heuristic gap threshold.
	HeuristicThreshold float64 `yaml:"heuristic_threshold,omitempty"`

	// BatchItems overrides the snippets-per-batch limit.
	BatchItems int `yaml:"batch_items,omitempty"`

	// BatchChars overrides the characters-per-batch limit.
	BatchChars int `yaml:"batch_chars,omitempty"`

	// Concurrency overrides the number of in-flight batches.
	Concurrency int `yaml:"concurrency,omitempty"`

	// MaxRetries overrides the per-batch retry count.
	MaxRetries int `yaml:"max_retries,omitempty"`
}

// Apply merges the file's values into a Config.
// Only values actually present in the file override the config; zero
// values are treated as absent, so a file cannot accidentally reset a
// threshold to zero.
func (f *File) Apply(c *Config) {
	if f.TargetLanguage != "" {
		c.TargetLanguage = f.TargetLanguage
	}
	if f.ForeignLanguage != "" {
		c.ForeignLanguage = f.ForeignLanguage
	}
	if f.LoginURL != "" {
		c.LoginURL = f.LoginURL
	}
	if len(f.Pages) > 0 {
		c.Pages = f.Pages
	}
	if len(f.Ignore) > 0 {
		c.IgnoreList = f.Ignore
	}

	if f.Detection.Endpoint != "" {
		c.Endpoint = f.Detection.Endpoint
	}
	if f.Detection.APIKeyEnv != "" {
		c.APIKeyEnv = f.Detection.APIKeyEnv
	}
	if f.Detection.RemoteThreshold != 0 {
		c.RemoteThreshold = f.Detection.RemoteThreshold
	}
	if f.Detection.HeuristicThreshold != 0 {
		c.HeuristicThreshold = f.Detection.HeuristicThreshold
	}
	if f.Detection.BatchItems != 0 {
		c.BatchItems = f.Detection.BatchItems
	}
	if f.Detection.BatchChars != 0 {
		c.BatchChars = f.Detection.BatchChars
	}
	if f.Detection.Concurrency != 0 {
		c.Concurrency = f.Detection.Concurrency
	}
	if f.Detection.MaxRetries != 0 {
		c.MaxRetries = f.Detection.MaxRetries
	}
}
