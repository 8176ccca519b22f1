package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/locascan/locascan/internal/model"
)

// Default timing for browser interaction. Generous enough for heavy
// single-page applications, short enough that a dead page fails fast.
const (
	defaultNavTimeout  = 30 * time.Second
	defaultSettleTime  = 5 * time.Second
	defaultTriggerWait = 3 * time.Second

	requestIdleWindow = 300 * time.Millisecond
)

// Browser drives a headless browser across the configured pages and
// yields every visible text node it finds.
//
// Design decision: We render pages in a real browser via go-rod rather
// than fetching HTML over plain HTTP because most product UIs are
// client-rendered; the text a user sees simply does not exist in the
// served document. The browser also carries the login session, so pages
// behind authentication are scanned in their real state.
type Browser struct {
	pages []PageSpec

	headless   bool
	profileDir string
	navTimeout time.Duration
	settleTime time.Duration
	logger     *slog.Logger

	launch  *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithHeadless controls whether the browser window is shown.
// A visible window is required for the manual login flow.
func WithHeadless(headless bool) BrowserOption {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithProfileDir sets the browser profile directory, preserving cookies
// and sessions between scans.
func WithProfileDir(dir string) BrowserOption {
	return func(b *Browser) {
		b.profileDir = dir
	}
}

// WithNavigationTimeout bounds a single page navigation.
func WithNavigationTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) {
		if d > 0 {
			b.navTimeout = d
		}
	}
}

// WithBrowserLogger sets a custom logger.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(b *Browser) {
		b.logger = logger
	}
}

// NewBrowser creates a browser collector for the given pages.
// Connect must be called before Source.
func NewBrowser(pages []PageSpec, opts ...BrowserOption) *Browser {
	b := &Browser{
		pages:      pages,
		headless:   true,
		navTimeout: defaultNavTimeout,
		settleTime: defaultSettleTime,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Connect launches the browser process and opens a blank page.
func (b *Browser) Connect(ctx context.Context) error {
	path, _ := launcher.LookPath()
	b.launch = launcher.New().Bin(path).Headless(b.headless)
	if b.profileDir != "" {
		b.launch = b.launch.UserDataDir(b.profileDir)
	}

	controlURL, err := b.launch.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	b.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	b.page = page

	return nil
}

// Navigate opens a URL and waits for it to settle. Used to present the
// login page before a scan; the session survives in the same browser.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	if b.page == nil {
		return fmt.Errorf("browser is not connected")
	}
	page := b.page.Context(ctx).Timeout(b.navTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	b.waitSettled(page)
	return nil
}

// Source returns the lazy traversal over the configured pages.
func (b *Browser) Source() *PageSource {
	return newPageSource(b, b.pages)
}

// Close shuts the browser down and cleans up the launcher.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launch != nil {
		b.launch.Cleanup()
	}
	return err
}

// load collects all text nodes of one page, modal surfaces included.
func (b *Browser) load(ctx context.Context, spec PageSpec) ([]model.TextNode, error) {
	page := b.page.Context(ctx).Timeout(b.navTimeout)

	if err := page.Navigate(spec.URL); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", spec.URL, err)
	}
	b.waitSettled(page)

	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", spec.Name, err)
	}
	nodes, err := ExtractTextNodes(strings.NewReader(content), model.Location{Page: spec.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", spec.Name, err)
	}
	b.logger.Debug("page collected", "page", spec.Name, "nodes", len(nodes))

	for _, modal := range spec.Modals {
		modalNodes, err := b.loadModal(ctx, spec, modal, nodes)
		if err != nil {
			// A broken modal trigger should not sink the whole page.
			b.logger.Warn("skipping modal",
				"page", spec.Name,
				"modal", modal.Name,
				"error", err,
			)
			continue
		}
		nodes = append(nodes, modalNodes...)
	}

	return nodes, nil
}

// loadModal opens one modal, snapshots it, and dismisses it again.
// Only text absent from the base page is attributed to the modal, since
// the snapshot still contains everything rendered behind the dialog.
func (b *Browser) loadModal(ctx context.Context, spec PageSpec, modal ModalSpec, base []model.TextNode) ([]model.TextNode, error) {
	page := b.page.Context(ctx)

	trigger, err := page.Timeout(defaultTriggerWait).Element(modal.Trigger)
	if err != nil {
		return nil, fmt.Errorf("trigger %s not found: %w", modal.Trigger, err)
	}
	if err := trigger.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("failed to click %s: %w", modal.Trigger, err)
	}
	b.waitSettled(page)

	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read modal: %w", err)
	}
	nodes, err := ExtractTextNodes(strings.NewReader(content), model.Location{
		Page:  spec.Name,
		Modal: modal.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse modal: %w", err)
	}
	nodes = newTextOnly(base, nodes)
	b.logger.Debug("modal collected", "page", spec.Name, "modal", modal.Name, "nodes", len(nodes))

	// Escape is the dismissal convention dialogs overwhelmingly honor.
	// If the modal stays open the next navigation clears it anyway.
	if err := page.Keyboard.Press(input.Escape); err != nil {
		b.logger.Debug("failed to dismiss modal", "modal", modal.Name, "error", err)
	}

	return nodes, nil
}

// waitSettled waits for page load and a quiet network. The request idle
// wait is bounded so pages holding persistent connections open, such as
// websockets or polling, cannot stall the scan.
func (b *Browser) waitSettled(page *rod.Page) {
	if err := page.WaitLoad(); err != nil {
		b.logger.Debug("wait for page load failed", "error", err)
		return
	}
	page.Timeout(b.settleTime).WaitRequestIdle(requestIdleWindow, nil, nil, nil)()
}

// newTextOnly filters candidate nodes down to those whose text does not
// already appear in the base snapshot.
func newTextOnly(base, candidates []model.TextNode) []model.TextNode {
	seen := make(map[string]bool, len(base))
	for _, n := range base {
		seen[strings.ToLower(strings.TrimSpace(n.Text))] = true
	}

	var fresh []model.TextNode
	for _, n := range candidates {
		if !seen[strings.ToLower(strings.TrimSpace(n.Text))] {
			fresh = append(fresh, n)
		}
	}
	return fresh
}
