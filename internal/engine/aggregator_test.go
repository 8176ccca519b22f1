package engine

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/locascan/locascan/internal/model"
)

func testGap(page, element, text string, confidence float64, seq int) model.Gap {
	return model.Gap{
		Location:   model.Location{Page: page, Element: element},
		Text:       text,
		Language:   "en",
		Confidence: confidence,
		Source:     model.SourceRemote,
		Bucket:     model.BucketFor(confidence),
		Seq:        seq,
	}
}

// TestAggregatorRecordDeduplicates tests that duplicates merge into one
// entry with the maximum confidence.
func TestAggregatorRecordDeduplicates(t *testing.T) {
	t.Parallel()

	agg := NewAggregator("fr", "en")

	if err := agg.Record(testGap("Page A", ".btn1", "Submit", 0.85, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := agg.Record(testGap("Page A", ".btn1", "Submit", 0.91, 5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same text, different case: still a duplicate.
	if err := agg.Record(testGap("Page A", ".btn1", "SUBMIT", 0.8, 9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := agg.Finalize()
	if report.TotalGaps() != 1 {
		t.Fatalf("expected 1 unique gap, got %d", report.TotalGaps())
	}
	if report.Gaps[0].Confidence != 0.91 {
		t.Errorf("expected max confidence 0.91, got %v", report.Gaps[0].Confidence)
	}
	if report.Gaps[0].Seq != 1 {
		t.Errorf("expected first-seen seq 1, got %d", report.Gaps[0].Seq)
	}
}

// TestAggregatorRecordAfterFinalize tests the invalid state guard.
func TestAggregatorRecordAfterFinalize(t *testing.T) {
	t.Parallel()

	agg := NewAggregator("fr", "en")
	_ = agg.Finalize()

	if err := agg.Record(testGap("Page A", ".btn1", "Submit", 0.9, 1)); !errors.Is(err, ErrAggregatorFinalized) {
		t.Errorf("expected ErrAggregatorFinalized, got %v", err)
	}
	if err := agg.ObserveVerdict(model.LanguageVerdict{Language: "en", Confidence: 0.9, Source: model.SourceRemote}); !errors.Is(err, ErrAggregatorFinalized) {
		t.Errorf("expected ErrAggregatorFinalized, got %v", err)
	}
}

// TestAggregatorFinalizeIdempotent tests that repeated Finalize calls
// return the same frozen report.
func TestAggregatorFinalizeIdempotent(t *testing.T) {
	t.Parallel()

	agg := NewAggregator("fr", "en")
	_ = agg.Record(testGap("Page A", ".btn1", "Submit", 0.9, 1))

	first := agg.Finalize()
	second := agg.Finalize()
	if first != second {
		t.Error("expected Finalize to return the same report instance")
	}
}

// TestAggregatorSummaryStatistics tests the derived summary fields.
func TestAggregatorSummaryStatistics(t *testing.T) {
	t.Parallel()

	agg := NewAggregator("fr", "en")

	verdicts := []model.LanguageVerdict{
		{Language: "en", Confidence: 0.9, Source: model.SourceRemote},
		{Language: "fr", Confidence: 0.95, Source: model.SourceRemote},
		{Language: "fr", Confidence: 0.7, Source: model.SourceHeuristic},
		{Language: "de", Confidence: 0.8, Source: model.SourceRemote},
	}
	for _, v := range verdicts {
		if err := agg.ObserveVerdict(v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	agg.ObserveDropped()
	agg.ObserveDropped()

	_ = agg.Record(testGap("Page A", ".btn1", "Submit", 0.9, 1))
	_ = agg.Record(testGap("Page B", ".btn2", "Cancel", 0.8, 2))

	report := agg.Finalize()

	if report.SnippetsScanned != 4 {
		t.Errorf("SnippetsScanned = %d, want 4", report.SnippetsScanned)
	}
	if report.SnippetsDropped != 2 {
		t.Errorf("SnippetsDropped = %d, want 2", report.SnippetsDropped)
	}
	if report.RemoteVerdicts != 3 || report.HeuristicVerdicts != 1 {
		t.Errorf("verdict counts = %d remote / %d heuristic, want 3/1",
			report.RemoteVerdicts, report.HeuristicVerdicts)
	}
	if report.TargetLanguageCount != 2 {
		t.Errorf("TargetLanguageCount = %d, want 2", report.TargetLanguageCount)
	}
	if report.OtherLanguageCount != 1 {
		t.Errorf("OtherLanguageCount = %d, want 1", report.OtherLanguageCount)
	}
	if report.GapRate != 0.5 {
		t.Errorf("GapRate = %v, want 0.5", report.GapRate)
	}
	if report.GapsByPage["Page A"] != 1 || report.GapsByPage["Page B"] != 1 {
		t.Errorf("unexpected GapsByPage: %v", report.GapsByPage)
	}
	want := (0.9 + 0.8) / 2
	if report.AverageConfidence != want {
		t.Errorf("AverageConfidence = %v, want %v", report.AverageConfidence, want)
	}
}

// TestAggregatorOrderIndependence tests that shuffling completion order
// changes neither the gap set nor the first-seen resolution.
func TestAggregatorOrderIndependence(t *testing.T) {
	t.Parallel()

	gaps := []model.Gap{
		testGap("Page A", ".btn1", "Submit", 0.85, 4),
		testGap("Page A", ".btn1", "Submit", 0.91, 1),
		testGap("Page B", ".save", "Save", 0.8, 2),
		testGap("Page B", ".save", "Save", 0.8, 7),
		testGap("Page C", ".del", "Delete", 0.95, 3),
	}

	var reference *model.SessionReport
	for trial := range 5 {
		shuffled := make([]model.Gap, len(gaps))
		copy(shuffled, gaps)
		rand.New(rand.NewSource(int64(trial))).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		agg := NewAggregator("fr", "en")
		for _, g := range shuffled {
			if err := agg.Record(g); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		report := agg.Finalize()

		if reference == nil {
			reference = report
			continue
		}
		if len(report.Gaps) != len(reference.Gaps) {
			t.Fatalf("trial %d: gap count %d != %d", trial, len(report.Gaps), len(reference.Gaps))
		}
		for i := range report.Gaps {
			if report.Gaps[i].DedupKey() != reference.Gaps[i].DedupKey() ||
				report.Gaps[i].Seq != reference.Gaps[i].Seq ||
				report.Gaps[i].Confidence != reference.Gaps[i].Confidence {
				t.Errorf("trial %d: gap %d differs: %+v vs %+v",
					trial, i, report.Gaps[i], reference.Gaps[i])
			}
		}
	}
}

// TestAggregatorConcurrentRecord tests that concurrent record calls are
// serialized safely.
func TestAggregatorConcurrentRecord(t *testing.T) {
	t.Parallel()

	agg := NewAggregator("fr", "en")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = agg.Record(testGap("Page A", ".btn1", "Submit", 0.9, i))
			_ = agg.ObserveVerdict(model.LanguageVerdict{Language: "en", Confidence: 0.9, Source: model.SourceRemote})
		}()
	}
	wg.Wait()

	report := agg.Finalize()
	if report.TotalGaps() != 1 {
		t.Errorf("expected 1 unique gap after concurrent records, got %d", report.TotalGaps())
	}
	if report.Gaps[0].Seq != 0 {
		t.Errorf("expected first-seen seq 0, got %d", report.Gaps[0].Seq)
	}
	if report.SnippetsScanned != 50 {
		t.Errorf("expected 50 scanned, got %d", report.SnippetsScanned)
	}
}

// TestAggregatorCancelled tests that a cancelled session still finalizes
// with everything recorded so far.
func TestAggregatorCancelled(t *testing.T) {
	t.Parallel()

	agg := NewAggregator("fr", "en")
	_ = agg.Record(testGap("Page A", ".btn1", "Submit", 0.9, 1))
	agg.MarkCancelled()

	report := agg.Finalize()
	if !report.Cancelled {
		t.Error("expected cancelled flag")
	}
	if report.TotalGaps() != 1 {
		t.Errorf("expected partial results preserved, got %d gaps", report.TotalGaps())
	}
}
