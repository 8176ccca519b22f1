package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	// Verify each default value explicitly
	// This serves as living documentation of the defaults
	t.Run("default TargetLanguage is fr", func(t *testing.T) {
		t.Parallel()
		if cfg.TargetLanguage != "fr" {
			t.Errorf("expected TargetLanguage to be 'fr', got '%s'", cfg.TargetLanguage)
		}
	})

	t.Run("default ForeignLanguage is en", func(t *testing.T) {
		t.Parallel()
		if cfg.ForeignLanguage != "en" {
			t.Errorf("expected ForeignLanguage to be 'en', got '%s'", cfg.ForeignLanguage)
		}
	})

	t.Run("default RemoteThreshold is 0.8", func(t *testing.T) {
		t.Parallel()
		if cfg.RemoteThreshold != 0.8 {
			t.Errorf("expected RemoteThreshold to be 0.8, got %v", cfg.RemoteThreshold)
		}
	})

	t.Run("default HeuristicThreshold is 0.85", func(t *testing.T) {
		t.Parallel()
		if cfg.HeuristicThreshold != 0.85 {
			t.Errorf("expected HeuristicThreshold to be 0.85, got %v", cfg.HeuristicThreshold)
		}
	})

	t.Run("heuristic threshold is stricter than remote", func(t *testing.T) {
		t.Parallel()
		if cfg.HeuristicThreshold <= cfg.RemoteThreshold {
			t.Errorf("expected HeuristicThreshold (%v) to exceed RemoteThreshold (%v)",
				cfg.HeuristicThreshold, cfg.RemoteThreshold)
		}
	})

	t.Run("default BatchItems is 25", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchItems != 25 {
			t.Errorf("expected BatchItems to be 25, got %d", cfg.BatchItems)
		}
	})

	t.Run("default BatchChars is 4000", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchChars != 4000 {
			t.Errorf("expected BatchChars to be 4000, got %d", cfg.BatchChars)
		}
	})

	t.Run("default Concurrency is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 4 {
			t.Errorf("expected Concurrency to be 4, got %d", cfg.Concurrency)
		}
	})

	t.Run("default NavigationTimeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.NavigationTimeout != 30*time.Second {
			t.Errorf("expected NavigationTimeout to be 30s, got %v", cfg.NavigationTimeout)
		}
	})

	t.Run("default APIKeyEnv is LOCASCAN_API_KEY", func(t *testing.T) {
		t.Parallel()
		if cfg.APIKeyEnv != "LOCASCAN_API_KEY" {
			t.Errorf("expected APIKeyEnv to be 'LOCASCAN_API_KEY', got '%s'", cfg.APIKeyEnv)
		}
	})

	t.Run("default Headless is true", func(t *testing.T) {
		t.Parallel()
		if !cfg.Headless {
			t.Error("expected Headless to be true")
		}
	})

	t.Run("default DBDir is XDG data directory", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir to be '%s', got '%s'", XDGDataDir(), cfg.DBDir)
		}
	})
}

// validConfig returns a Config that passes validation, for tests that
// break one field at a time.
func validConfig() *Config {
	cfg := NewConfig()
	cfg.Pages = []PageConfig{
		{Name: "Dashboard", URL: "https://app.example.com/"},
	}
	return cfg
}

// TestConfigValidate tests validation of configuration values.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid configuration",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "empty target language",
			mutate:  func(c *Config) { c.TargetLanguage = "" },
			wantErr: ErrInvalidTargetLanguage,
		},
		{
			name:    "malformed target language",
			mutate:  func(c *Config) { c.TargetLanguage = "not a language" },
			wantErr: ErrInvalidTargetLanguage,
		},
		{
			name:    "malformed foreign language",
			mutate:  func(c *Config) { c.ForeignLanguage = "!!" },
			wantErr: ErrInvalidForeignLanguage,
		},
		{
			name:    "identical languages",
			mutate:  func(c *Config) { c.ForeignLanguage = c.TargetLanguage },
			wantErr: ErrSameLanguages,
		},
		{
			name:    "zero remote threshold",
			mutate:  func(c *Config) { c.RemoteThreshold = 0 },
			wantErr: ErrInvalidRemoteThreshold,
		},
		{
			name:    "remote threshold above one",
			mutate:  func(c *Config) { c.RemoteThreshold = 1.2 },
			wantErr: ErrInvalidRemoteThreshold,
		},
		{
			name:    "negative heuristic threshold",
			mutate:  func(c *Config) { c.HeuristicThreshold = -0.1 },
			wantErr: ErrInvalidHeuristicThreshold,
		},
		{
			name:    "threshold of exactly one is accepted",
			mutate:  func(c *Config) { c.RemoteThreshold = 1.0 },
			wantErr: nil,
		},
		{
			name:    "zero batch items",
			mutate:  func(c *Config) { c.BatchItems = 0 },
			wantErr: ErrInvalidBatchLimit,
		},
		{
			name:    "zero batch chars",
			mutate:  func(c *Config) { c.BatchChars = 0 },
			wantErr: ErrInvalidBatchLimit,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative max retries",
			mutate:  func(c *Config) { c.MaxRetries = -1 },
			wantErr: ErrInvalidMaxRetries,
		},
		{
			name:    "zero max retries is accepted",
			mutate:  func(c *Config) { c.MaxRetries = 0 },
			wantErr: nil,
		},
		{
			name:    "no pages",
			mutate:  func(c *Config) { c.Pages = nil },
			wantErr: ErrNoPages,
		},
		{
			name:    "page without URL",
			mutate:  func(c *Config) { c.Pages = []PageConfig{{Name: "Dashboard"}} },
			wantErr: ErrInvalidPage,
		},
		{
			name: "modal without trigger",
			mutate: func(c *Config) {
				c.Pages = []PageConfig{{
					Name:   "Dashboard",
					URL:    "https://app.example.com/",
					Modals: []ModalConfig{{Name: "Export"}},
				}}
			},
			wantErr: ErrInvalidModal,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestFileApply tests merging a configuration file into a Config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		file := &File{
			TargetLanguage:  "de",
			ForeignLanguage: "en",
			LoginURL:        "https://app.example.com/login",
			Pages: []PageConfig{
				{Name: "Dashboard", URL: "https://app.example.com/"},
			},
			Detection: DetectionFile{
				Endpoint:           "https://detect.example.com/v1/batch",
				RemoteThreshold:    0.9,
				HeuristicThreshold: 0.95,
				BatchItems:         10,
			},
			Ignore: []string{"OK", "API"},
		}
		file.Apply(cfg)

		if cfg.TargetLanguage != "de" {
			t.Errorf("TargetLanguage = %q, want de", cfg.TargetLanguage)
		}
		if cfg.LoginURL != "https://app.example.com/login" {
			t.Errorf("LoginURL = %q", cfg.LoginURL)
		}
		if cfg.Endpoint != "https://detect.example.com/v1/batch" {
			t.Errorf("Endpoint = %q", cfg.Endpoint)
		}
		if cfg.RemoteThreshold != 0.9 || cfg.HeuristicThreshold != 0.95 {
			t.Errorf("thresholds = %v/%v, want 0.9/0.95", cfg.RemoteThreshold, cfg.HeuristicThreshold)
		}
		if cfg.BatchItems != 10 {
			t.Errorf("BatchItems = %d, want 10", cfg.BatchItems)
		}
		if len(cfg.IgnoreList) != 2 {
			t.Errorf("IgnoreList = %v, want 2 entries", cfg.IgnoreList)
		}
	})

	t.Run("absent values keep defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		file := &File{TargetLanguage: "de"}
		file.Apply(cfg)

		if cfg.ForeignLanguage != DefaultForeignLanguage {
			t.Errorf("ForeignLanguage = %q, want default %q", cfg.ForeignLanguage, DefaultForeignLanguage)
		}
		if cfg.RemoteThreshold != DefaultRemoteThreshold {
			t.Errorf("RemoteThreshold = %v, want default %v", cfg.RemoteThreshold, DefaultRemoteThreshold)
		}
		if cfg.BatchChars != DefaultBatchChars {
			t.Errorf("BatchChars = %d, want default %d", cfg.BatchChars, DefaultBatchChars)
		}
	})
}

// TestAPIKey tests reading the detection API key from the environment.
func TestAPIKey(t *testing.T) {
	t.Run("reads key from configured variable", func(t *testing.T) {
		cfg := NewConfig()
		cfg.APIKeyEnv = "LOCASCAN_TEST_API_KEY"
		t.Setenv("LOCASCAN_TEST_API_KEY", "secret-value")

		if got := cfg.APIKey(); got != "secret-value" {
			t.Errorf("APIKey() = %q, want 'secret-value'", got)
		}
	})

	t.Run("empty variable name yields empty key", func(t *testing.T) {
		cfg := NewConfig()
		cfg.APIKeyEnv = ""

		if got := cfg.APIKey(); got != "" {
			t.Errorf("APIKey() = %q, want empty", got)
		}
	})
}

// TestLoadConfigFile tests loading the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads a complete configuration", func(t *testing.T) {
		t.Parallel()

		content := `target_language: fr
foreign_language: en
login_url: https://app.example.com/login
pages:
  - name: Dashboard
    url: https://app.example.com/
    modals:
      - name: Export
        trigger: ".export-button"
  - name: Settings
    url: https://app.example.com/settings
detection:
  endpoint: https://detect.example.com/v1/batch
  api_key_env: MY_DETECT_KEY
  remote_threshold: 0.75
ignore:
  - OK
  - SaaS
`
		path := filepath.Join(t.TempDir(), ".locascan")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		file, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if file.TargetLanguage != "fr" || file.ForeignLanguage != "en" {
			t.Errorf("languages = %q/%q, want fr/en", file.TargetLanguage, file.ForeignLanguage)
		}
		if len(file.Pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(file.Pages))
		}
		if len(file.Pages[0].Modals) != 1 || file.Pages[0].Modals[0].Trigger != ".export-button" {
			t.Errorf("unexpected modals: %+v", file.Pages[0].Modals)
		}
		if file.Detection.Endpoint != "https://detect.example.com/v1/batch" {
			t.Errorf("endpoint = %q", file.Detection.Endpoint)
		}
		if file.Detection.APIKeyEnv != "MY_DETECT_KEY" {
			t.Errorf("api key env = %q", file.Detection.APIKeyEnv)
		}
		if file.Detection.RemoteThreshold != 0.75 {
			t.Errorf("remote threshold = %v", file.Detection.RemoteThreshold)
		}
		if len(file.Ignore) != 2 {
			t.Errorf("ignore = %v", file.Ignore)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed YAML returns an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".locascan")
		if err := os.WriteFile(path, []byte("pages: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected an error for malformed YAML")
		}
	})
}

// TestFindConfigFile tests the configuration file search order.
func TestFindConfigFile(t *testing.T) {
	t.Run("explicit existing path wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path yields empty", func(t *testing.T) {
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Chdir(dir)

		got := FindConfigFile("")
		if filepath.Base(got) != DefaultConfigFile {
			t.Errorf("FindConfigFile() = %q, want a %s path", got, DefaultConfigFile)
		}
	})
}
