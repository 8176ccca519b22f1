package engine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/locascan/locascan/internal/model"
)

// sliceSource feeds a fixed list of text nodes, in order.
type sliceSource struct {
	nodes []model.TextNode
	pos   int
}

func (s *sliceSource) Next(_ context.Context) (model.TextNode, bool, error) {
	if s.pos >= len(s.nodes) {
		return model.TextNode{}, false, nil
	}
	node := s.nodes[s.pos]
	s.pos++
	return node, true, nil
}

// mapClassifier resolves verdicts from a fixed text-to-language table.
type mapClassifier struct {
	languages   map[string]string
	confidence  float64
	batchCalls  atomic.Int32
	failAlways  bool
	failOnBatch int32
}

func (c *mapClassifier) DetectBatch(_ context.Context, texts []string) ([]model.LanguageVerdict, error) {
	call := c.batchCalls.Add(1)
	if c.failAlways || (c.failOnBatch > 0 && call == c.failOnBatch) {
		return nil, ErrClassifierDown
	}
	verdicts := make([]model.LanguageVerdict, len(texts))
	for i, text := range texts {
		lang, ok := c.languages[text]
		if !ok {
			continue // zero verdict, engine falls back per item
		}
		verdicts[i] = model.LanguageVerdict{
			Language:   lang,
			Confidence: c.confidence,
			Source:     model.SourceRemote,
		}
	}
	return verdicts, nil
}

// ErrClassifierDown simulates a remote outage in tests.
var ErrClassifierDown = errors.New("classification service unavailable")

// constFallback always yields the same verdict.
type constFallback struct {
	language   string
	confidence float64
}

func (f constFallback) Detect(_ string) model.LanguageVerdict {
	return model.LanguageVerdict{
		Language:   f.language,
		Confidence: f.confidence,
		Source:     model.SourceHeuristic,
	}
}

func node(page, element, text string) model.TextNode {
	return model.TextNode{
		Text:     text,
		Location: model.Location{Page: page, Element: element},
	}
}

// TestEngineRunDetectsGaps tests the end-to-end happy path: an English
// leak on a French UI is reported as a gap with its remote verdict.
func TestEngineRunDetectsGaps(t *testing.T) {
	t.Parallel()

	source := &sliceSource{nodes: []model.TextNode{
		node("Dashboard", ".save-button", "Save changes"),
		node("Dashboard", ".title", "Tableau de bord"),
		node("Settings", ".cancel", "Annuler"),
	}}
	remote := &mapClassifier{
		languages: map[string]string{
			"Save changes":    "en",
			"Tableau de bord": "fr",
			"Annuler":         "fr",
		},
		confidence: 0.92,
	}

	engine := New("fr", "en", constFallback{language: "fr", confidence: 0.6},
		WithRemote(remote),
	)

	report, err := engine.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalGaps() != 1 {
		t.Fatalf("expected 1 gap, got %d", report.TotalGaps())
	}
	gap := report.Gaps[0]
	if gap.Text != "Save changes" {
		t.Errorf("gap text = %q, want %q", gap.Text, "Save changes")
	}
	if gap.Location.Page != "Dashboard" || gap.Location.Element != ".save-button" {
		t.Errorf("unexpected gap location: %+v", gap.Location)
	}
	if gap.Confidence != 0.92 || gap.Source != model.SourceRemote {
		t.Errorf("gap verdict = %v/%v, want 0.92/remote", gap.Confidence, gap.Source)
	}
	if report.SnippetsScanned != 3 {
		t.Errorf("SnippetsScanned = %d, want 3", report.SnippetsScanned)
	}
	if report.RemoteVerdicts != 3 {
		t.Errorf("RemoteVerdicts = %d, want 3", report.RemoteVerdicts)
	}
	if report.Cancelled {
		t.Error("unexpected cancelled flag")
	}
}

// TestEngineRunOffline tests that without a remote classifier every
// snippet is classified heuristically and the run still completes.
func TestEngineRunOffline(t *testing.T) {
	t.Parallel()

	source := &sliceSource{nodes: []model.TextNode{
		node("Dashboard", ".save-button", "Save changes"),
		node("Dashboard", ".title", "Tableau de bord"),
	}}

	engine := New("fr", "en", constFallback{language: "en", confidence: 0.9})

	report, err := engine.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.HeuristicVerdicts != 2 || report.RemoteVerdicts != 0 {
		t.Errorf("verdict counts = %d heuristic / %d remote, want 2/0",
			report.HeuristicVerdicts, report.RemoteVerdicts)
	}
	// Heuristic 0.9 exceeds the default heuristic threshold, so both
	// snippets gap.
	if report.TotalGaps() != 2 {
		t.Errorf("expected 2 gaps, got %d", report.TotalGaps())
	}
	for _, gap := range report.Gaps {
		if gap.Source != model.SourceHeuristic {
			t.Errorf("gap %q source = %v, want heuristic", gap.Text, gap.Source)
		}
	}
}

// TestEngineRunFallbackCompleteness tests that a total remote outage
// still yields one verdict per snippet, all heuristic, all carrying a
// fallback reason.
func TestEngineRunFallbackCompleteness(t *testing.T) {
	t.Parallel()

	nodes := make([]model.TextNode, 0, 60)
	for i := range 60 {
		nodes = append(nodes, node("Dashboard", ".item", "Snippet number "+strings.Repeat("x", i+1)))
	}
	source := &sliceSource{nodes: nodes}
	remote := &mapClassifier{failAlways: true}

	engine := New("fr", "en", constFallback{language: "fr", confidence: 0.6},
		WithRemote(remote),
	)

	report, err := engine.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.SnippetsScanned != 60 {
		t.Errorf("SnippetsScanned = %d, want 60", report.SnippetsScanned)
	}
	if report.HeuristicVerdicts != 60 {
		t.Errorf("HeuristicVerdicts = %d, want 60", report.HeuristicVerdicts)
	}
	if report.RemoteVerdicts != 0 {
		t.Errorf("RemoteVerdicts = %d, want 0", report.RemoteVerdicts)
	}
	if calls := remote.batchCalls.Load(); calls < 3 {
		t.Errorf("expected at least 3 batch attempts for 60 snippets, got %d", calls)
	}
}

// TestEngineRunPartialBatchFailure tests per-batch degradation: one
// failing batch falls back while the others keep their remote verdicts.
func TestEngineRunPartialBatchFailure(t *testing.T) {
	t.Parallel()

	languages := make(map[string]string, 50)
	nodes := make([]model.TextNode, 0, 50)
	for i := range 50 {
		text := "Item label " + strings.Repeat("y", i+1)
		languages[text] = "fr"
		nodes = append(nodes, node("Catalog", ".row", text))
	}
	source := &sliceSource{nodes: nodes}
	remote := &mapClassifier{
		languages:   languages,
		confidence:  0.95,
		failOnBatch: 1,
	}

	engine := New("fr", "en", constFallback{language: "fr", confidence: 0.6},
		WithRemote(remote),
		WithConcurrency(1),
	)

	report, err := engine.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.SnippetsScanned != 50 {
		t.Fatalf("SnippetsScanned = %d, want 50", report.SnippetsScanned)
	}
	if report.RemoteVerdicts == 0 || report.HeuristicVerdicts == 0 {
		t.Errorf("expected a mix of verdict sources, got %d remote / %d heuristic",
			report.RemoteVerdicts, report.HeuristicVerdicts)
	}
	if report.RemoteVerdicts+report.HeuristicVerdicts != 50 {
		t.Errorf("verdicts do not cover all snippets: %d + %d != 50",
			report.RemoteVerdicts, report.HeuristicVerdicts)
	}
}

// TestEngineRunCancellation tests that cancelling mid-run still produces
// a finalized partial report.
func TestEngineRunCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	nodes := make([]model.TextNode, 0, 100)
	for i := range 100 {
		nodes = append(nodes, node("Dashboard", ".item", "Entry "+strings.Repeat("z", i+1)))
	}
	// Cancel after the source has yielded a few nodes.
	source := &cancellingSource{inner: &sliceSource{nodes: nodes}, cancelAfter: 30, cancel: cancel}

	engine := New("fr", "en", constFallback{language: "en", confidence: 0.9})

	report, err := engine.Run(ctx, source)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatal("expected a partial report")
	}
	if !report.Cancelled {
		t.Error("expected cancelled flag on partial report")
	}
	if report.SnippetsScanned == 0 {
		t.Error("expected some snippets classified before cancellation")
	}
	if report.SnippetsScanned >= 100 {
		t.Errorf("expected a partial scan, got %d snippets", report.SnippetsScanned)
	}
}

type cancellingSource struct {
	inner       *sliceSource
	cancelAfter int
	served      int
	cancel      context.CancelFunc
}

func (s *cancellingSource) Next(ctx context.Context) (model.TextNode, bool, error) {
	if s.served == s.cancelAfter {
		s.cancel()
	}
	s.served++
	return s.inner.Next(ctx)
}

// TestEngineRunSourceError tests that a failing traversal source aborts
// the run but keeps the partial report.
func TestEngineRunSourceError(t *testing.T) {
	t.Parallel()

	sourceErr := errors.New("browser session lost")
	source := &failingSource{
		inner:     &sliceSource{nodes: []model.TextNode{node("Dashboard", ".a", "Save changes")}},
		failAfter: 1,
		err:       sourceErr,
	}

	engine := New("fr", "en", constFallback{language: "en", confidence: 0.9})

	report, err := engine.Run(context.Background(), source)
	if !errors.Is(err, sourceErr) {
		t.Fatalf("expected source error, got %v", err)
	}
	if report == nil {
		t.Fatal("expected a partial report")
	}
	if report.SnippetsScanned != 1 {
		t.Errorf("SnippetsScanned = %d, want 1", report.SnippetsScanned)
	}
}

type failingSource struct {
	inner     *sliceSource
	failAfter int
	served    int
	err       error
}

func (s *failingSource) Next(ctx context.Context) (model.TextNode, bool, error) {
	if s.served == s.failAfter {
		return model.TextNode{}, false, s.err
	}
	s.served++
	return s.inner.Next(ctx)
}

// TestEngineRunDedup tests that the same leak on the same location is
// reported once, keeping the highest confidence seen.
func TestEngineRunDedup(t *testing.T) {
	t.Parallel()

	source := &sliceSource{nodes: []model.TextNode{
		node("Dashboard", ".save-button", "Save changes"),
		node("Dashboard", ".save-button", "Save changes"),
		node("Dashboard", ".save-button", "save   changes"),
	}}
	remote := &mapClassifier{
		languages: map[string]string{
			"Save changes": "en",
			"save changes": "en",
		},
		confidence: 0.92,
	}

	engine := New("fr", "en", constFallback{language: "fr", confidence: 0.6},
		WithRemote(remote),
	)

	report, err := engine.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalGaps() != 1 {
		t.Fatalf("expected 1 deduplicated gap, got %d", report.TotalGaps())
	}
	if report.SnippetsScanned != 3 {
		t.Errorf("SnippetsScanned = %d, want 3", report.SnippetsScanned)
	}
	if report.Gaps[0].Seq != 0 {
		t.Errorf("expected first-seen seq 0, got %d", report.Gaps[0].Seq)
	}
}

// TestEngineRunDroppedNodes tests that discarded nodes are counted but
// never classified.
func TestEngineRunDroppedNodes(t *testing.T) {
	t.Parallel()

	source := &sliceSource{nodes: []model.TextNode{
		node("Dashboard", ".spacer", "   "),
		node("Dashboard", ".count", "42"),
		node("Dashboard", ".title", "Tableau de bord"),
		{Text: "orphan text"}, // no location
	}}
	remote := &mapClassifier{
		languages:  map[string]string{"Tableau de bord": "fr"},
		confidence: 0.95,
	}

	engine := New("fr", "en", constFallback{language: "fr", confidence: 0.6},
		WithRemote(remote),
	)

	report, err := engine.Run(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.SnippetsDropped != 3 {
		t.Errorf("SnippetsDropped = %d, want 3", report.SnippetsDropped)
	}
	if report.SnippetsScanned != 1 {
		t.Errorf("SnippetsScanned = %d, want 1", report.SnippetsScanned)
	}
	if report.TotalGaps() != 0 {
		t.Errorf("expected no gaps, got %d", report.TotalGaps())
	}
}

// TestEngineRunThresholds tests that per-source thresholds gate gap
// recording on the inclusive boundary.
func TestEngineRunThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		confidence float64
		wantGaps   int
	}{
		{name: "above threshold", confidence: 0.85, wantGaps: 1},
		{name: "exactly at threshold", confidence: 0.8, wantGaps: 1},
		{name: "below threshold", confidence: 0.79, wantGaps: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := &sliceSource{nodes: []model.TextNode{
				node("Dashboard", ".save-button", "Save changes"),
			}}
			remote := &mapClassifier{
				languages:  map[string]string{"Save changes": "en"},
				confidence: tt.confidence,
			}

			engine := New("fr", "en", constFallback{language: "fr", confidence: 0.6},
				WithRemote(remote),
				WithThresholds(0.8, 0.85),
			)

			report, err := engine.Run(context.Background(), source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.TotalGaps() != tt.wantGaps {
				t.Errorf("gaps = %d, want %d", report.TotalGaps(), tt.wantGaps)
			}
		})
	}
}
