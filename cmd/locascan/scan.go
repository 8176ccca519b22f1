package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/locascan/locascan/internal/classifier"
	"github.com/locascan/locascan/internal/collector"
	"github.com/locascan/locascan/internal/config"
	"github.com/locascan/locascan/internal/database"
	"github.com/locascan/locascan/internal/engine"
	locaslog "github.com/locascan/locascan/internal/log"
	"github.com/locascan/locascan/internal/model"
	"github.com/locascan/locascan/internal/report"
)

// Report file names written into the output directory.
const (
	htmlReportName = "locascan-report.html"
	csvReportName  = "locascan-report.csv"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the configured product UI for localization gaps",
		Long: `Scan drives a browser across the pages listed in the configuration file,
extracts every visible text snippet, classifies each snippet's language,
and reports snippets that leaked through in the foreign language.

Pages behind authentication are supported: set login_url in the
configuration file, log in manually in the opened browser window, and
press Enter to start the scan. The browser profile keeps the session,
so subsequent scans usually skip login.

Examples:
  # Scan using .locascan from the current or home directory
  locascan scan

  # Use a specific configuration file
  locascan scan -c myconfig.yaml

  # Scan a French UI for German leaks instead of English
  locascan scan -t fr -f de

  # Output JSON report
  locascan scan --json

  # Write HTML and CSV report files alongside the console summary
  locascan scan -o ./reports

Configuration file (.locascan) example:
  target_language: fr
  foreign_language: en
  pages:
    - name: Dashboard
      url: https://app.example.com/dashboard
    - name: Settings
      url: https://app.example.com/settings
      modals:
        - name: Delete Account
          trigger: "#delete-account-button"`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	// Language flags
	cmd.Flags().StringP("target-language", "t", config.DefaultTargetLanguage,
		"ISO 639-1 code of the language the UI is expected to display")
	cmd.Flags().StringP("foreign-language", "f", config.DefaultForeignLanguage,
		"ISO 639-1 code of the leak language to detect")

	// Detection flags
	cmd.Flags().StringP("endpoint", "e", "",
		"Remote language detection service URL (empty runs offline)")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of detection batches in flight at once")
	cmd.Flags().IntP("max-retries", "r", config.DefaultMaxRetries,
		"Attempts per remote batch before falling back to the local classifier")

	// Browser flags
	cmd.Flags().Bool("headed", false,
		"Show the browser window (implied by login_url)")
	cmd.Flags().Bool("no-login-wait", false,
		"Skip the manual login prompt (the browser profile must already hold a session)")
	cmd.Flags().DurationP("timeout", "T", config.DefaultNavigationTimeout,
		"Timeout for each page navigation")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .locascan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory for HTML and CSV report files (created if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	// Build config from file and flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with secret masking
	logger := locaslog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown.
	// Interrupting a scan still produces a partial report.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the configuration file and cobra flags.
// Precedence: flags the user actually set > configuration file > defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	// Load the configuration file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently continue on defaults if no file found.
	explicitConfigPath := configPath != ""
	foundPath := config.FindConfigFile(configPath)

	if foundPath != "" {
		file, err := config.LoadConfigFile(foundPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", foundPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	// Flags override the file only when actually set, so a file value is
	// not clobbered by a flag default.
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.NoLoginWait, err = cmd.Flags().GetBool("no-login-wait"); err != nil {
		return nil, err
	}

	// Manual login needs a visible browser window.
	if cfg.LoginURL != "" && !cfg.NoLoginWait {
		cfg.Headless = false
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// applyFlags copies flag values the user explicitly set onto the config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("target-language") {
		if cfg.TargetLanguage, err = flags.GetString("target-language"); err != nil {
			return err
		}
	}
	if flags.Changed("foreign-language") {
		if cfg.ForeignLanguage, err = flags.GetString("foreign-language"); err != nil {
			return err
		}
	}
	if flags.Changed("endpoint") {
		if cfg.Endpoint, err = flags.GetString("endpoint"); err != nil {
			return err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("max-retries") {
		if cfg.MaxRetries, err = flags.GetInt("max-retries"); err != nil {
			return err
		}
	}
	if flags.Changed("headed") {
		headed, err := flags.GetBool("headed")
		if err != nil {
			return err
		}
		cfg.Headless = !headed
	}
	if flags.Changed("timeout") {
		if cfg.NavigationTimeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportDir, err = flags.GetString("output-dir"); err != nil {
		return err
	}

	return nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targetLanguage", cfg.TargetLanguage,
		"foreignLanguage", cfg.ForeignLanguage,
		"pages", len(cfg.Pages),
		"offline", cfg.Endpoint == "",
	)

	// Open database connection if saving is enabled
	var db *database.SessionDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Launch the browser over the configured pages
	browser := collector.NewBrowser(pageSpecs(cfg.Pages),
		collector.WithHeadless(cfg.Headless),
		collector.WithProfileDir(cfg.ProfileDir),
		collector.WithNavigationTimeout(cfg.NavigationTimeout),
		collector.WithBrowserLogger(logger),
	)
	if err := browser.Connect(ctx); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			logger.Error("failed to close browser", "error", err)
		}
	}()

	// Manual login flow: open the login page in the visible window and
	// wait for the user. The session lives in the browser profile, so
	// --no-login-wait skips the prompt on later scans.
	if cfg.LoginURL != "" {
		if err := browser.Navigate(ctx, cfg.LoginURL); err != nil {
			return fmt.Errorf("failed to open login page: %w", err)
		}
		if !cfg.NoLoginWait {
			if err := waitForLogin(ctx, cfg.LoginURL); err != nil {
				return err
			}
		}
	}

	eng := buildEngine(cfg, logger)

	fmt.Printf("Scanning %d pages for %s leaks in a %s UI...\n",
		len(cfg.Pages), cfg.ForeignLanguage, cfg.TargetLanguage)
	startTime := time.Now()

	sessionReport, runErr := eng.Run(ctx, browser.Source())

	elapsed := time.Since(startTime)
	switch {
	case sessionReport.Cancelled:
		fmt.Printf("Scan interrupted after %s, partial report follows\n\n",
			elapsed.Round(time.Millisecond))
	default:
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))
	}

	// The report is always non-nil and finalized, even on a failed or
	// interrupted run, so output and persistence still happen.
	if err := outputReport(cfg, sessionReport); err != nil {
		logger.Error("report output failed", "error", err)
	}

	// Saving must survive a cancelled scan context; interrupted partial
	// reports are still history.
	if err := saveSessionReport(context.WithoutCancel(ctx), db, sessionReport, logger); err != nil {
		logger.Error("failed to save session report", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("scan failed: %w", runErr)
	}
	return nil
}

// waitForLogin blocks until the user confirms they are logged in.
func waitForLogin(ctx context.Context, loginURL string) error {
	fmt.Printf("Log in at %s in the opened browser window.\n", loginURL)
	fmt.Print("Press Enter when you are done to start the scan... ")

	done := make(chan struct{})
	go func() {
		reader := bufio.NewReader(os.Stdin)
		_, _ = reader.ReadString('\n') //nolint:errcheck // Any input or EOF proceeds
		close(done)
	}()

	select {
	case <-done:
		fmt.Println()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buildEngine wires the classifiers and the detection engine from config.
func buildEngine(cfg *config.Config, logger *slog.Logger) *engine.Engine {
	fallback := classifier.NewHeuristic(cfg.TargetLanguage, cfg.ForeignLanguage)

	opts := []engine.Option{
		engine.WithThresholds(cfg.RemoteThreshold, cfg.HeuristicThreshold),
		engine.WithBatchLimits(cfg.BatchItems, cfg.BatchChars),
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithLogger(logger),
		engine.WithNormalizer(engine.NewNormalizer(
			engine.WithMinLength(cfg.MinSnippetLength),
			engine.WithIgnoreList(cfg.IgnoreList),
		)),
	}

	// No endpoint means a fully offline scan on the heuristic classifier.
	if cfg.Endpoint != "" {
		remote := classifier.NewRemote(cfg.Endpoint,
			classifier.WithAPIKey(cfg.APIKey()),
			classifier.WithMaxRetries(cfg.MaxRetries),
			classifier.WithRemoteLogger(logger),
		)
		opts = append(opts, engine.WithRemote(remote))
	}

	return engine.New(cfg.TargetLanguage, cfg.ForeignLanguage, fallback, opts...)
}

// pageSpecs converts configured pages into collector page specs.
func pageSpecs(pages []config.PageConfig) []collector.PageSpec {
	specs := make([]collector.PageSpec, 0, len(pages))
	for _, page := range pages {
		spec := collector.PageSpec{
			Name: page.Name,
			URL:  page.URL,
		}
		for _, modal := range page.Modals {
			spec.Modals = append(spec.Modals, collector.ModalSpec{
				Name:    modal.Name,
				Trigger: modal.Trigger,
			})
		}
		specs = append(specs, spec)
	}
	return specs
}

// outputReport writes the session report in the requested formats.
// The console always gets one report; HTML and CSV files are written
// when an output directory is configured.
func outputReport(cfg *config.Config, sessionReport *model.SessionReport) error {
	if err := writeConsoleReport(cfg, sessionReport); err != nil {
		return err
	}
	if cfg.ReportDir == "" {
		return nil
	}
	return writeReportFiles(cfg, sessionReport)
}

// writeConsoleReport prints the report to stdout in the chosen format.
func writeConsoleReport(cfg *config.Config, sessionReport *model.SessionReport) error {
	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(os.Stdout)
	default:
		writer = report.NewSimpleWriter(os.Stdout, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(sessionReport)
	return err
}

// writeReportFiles writes the HTML and CSV reports into the output
// directory.
func writeReportFiles(cfg *config.Config, sessionReport *model.SessionReport) error {
	if err := os.MkdirAll(cfg.ReportDir, 0750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	files := []struct {
		name    string
		newFunc func(f *os.File) report.Writer
	}{
		{htmlReportName, func(f *os.File) report.Writer { return report.NewHTMLWriter(f) }},
		{csvReportName, func(f *os.File) report.Writer { return report.NewCSVWriter(f) }},
	}

	for _, file := range files {
		path := filepath.Join(cfg.ReportDir, file.name)

		// Reports may contain application text from behind authentication,
		// so keep them owner-readable only.
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}

		if _, err := file.newFunc(f).Write(sessionReport); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", file.name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", file.name, err)
		}

		fmt.Printf("Report written to %s\n", path)
	}

	return nil
}

// saveSessionReport saves the session report to the database if enabled.
// If db is nil, this function is a no-op.
func saveSessionReport(ctx context.Context, db *database.SessionDB, sessionReport *model.SessionReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveSession(ctx, sessionReport)
	if err != nil {
		return fmt.Errorf("failed to save session report: %w", err)
	}

	logger.Info("session report saved to database", "sessionID", id)
	return nil
}
