package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/locascan/locascan/internal/model"
)

// Aggregator collects gaps and verdict statistics across a scan session
// and produces the final, frozen session report.
//
// It is the only component with state spanning the whole run and the only
// mutable state shared between concurrently completing batches, so all
// mutation happens under one mutex. Duplicate gaps (same location, same
// normalized text) are merged, never appended; first occurrence is
// resolved by traversal sequence index, not completion order, so reports
// are reproducible regardless of batch scheduling.
type Aggregator struct {
	mu sync.Mutex

	// target and foreign are the session's language configuration,
	// carried into the report.
	target  string
	foreign string

	// gaps holds unique findings keyed by dedup key.
	gaps map[string]*model.Gap

	// Running counters for summary statistics.
	scanned   int
	dropped   int
	remote    int
	heuristic int
	inTarget  int
	inOther   int

	startedAt time.Time
	cancelled bool

	// final is set by Finalize. Once set, the aggregator rejects further
	// mutation and repeated Finalize calls return the same frozen report.
	final *model.SessionReport
}

// NewAggregator creates an aggregator for one scan session.
func NewAggregator(target, foreign string) *Aggregator {
	return &Aggregator{
		target:    target,
		foreign:   foreign,
		gaps:      make(map[string]*model.Gap),
		startedAt: time.Now(),
	}
}

// Record adds a gap to the session, merging duplicates.
// Returns ErrAggregatorFinalized if called after Finalize.
func (a *Aggregator) Record(gap model.Gap) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.final != nil {
		return ErrAggregatorFinalized
	}

	key := gap.DedupKey()
	if existing, ok := a.gaps[key]; ok {
		existing.Merge(gap)
		return nil
	}
	a.gaps[key] = &gap
	return nil
}

// ObserveVerdict records one classified snippet in the summary counters.
// Every snippet that enters classification is observed exactly once.
func (a *Aggregator) ObserveVerdict(v model.LanguageVerdict) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.final != nil {
		return ErrAggregatorFinalized
	}

	a.scanned++
	switch v.Source {
	case model.SourceRemote:
		a.remote++
	case model.SourceHeuristic:
		a.heuristic++
	}

	switch v.Language {
	case a.target:
		a.inTarget++
	case a.foreign:
		// Counted implicitly via scanned; gaps track the interesting subset.
	default:
		a.inOther++
	}
	return nil
}

// ObserveDropped records text nodes discarded by the normalizer.
func (a *Aggregator) ObserveDropped() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.final != nil {
		return
	}
	a.dropped++
}

// MarkCancelled flags the session as aborted before completion.
// The report produced by Finalize still contains everything recorded so
// far.
func (a *Aggregator) MarkCancelled() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.final != nil {
		return
	}
	a.cancelled = true
}

// Finalize freezes the session and returns the report.
// Subsequent calls return the same report; subsequent Record calls fail
// with ErrAggregatorFinalized.
func (a *Aggregator) Finalize() *model.SessionReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.final != nil {
		return a.final
	}

	gaps := make([]model.Gap, 0, len(a.gaps))
	for _, g := range a.gaps {
		gaps = append(gaps, *g)
	}
	// Report order is first-seen traversal order for readability.
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].Seq < gaps[j].Seq })

	byPage := make(map[string]int)
	var confidenceSum float64
	for _, g := range gaps {
		byPage[g.Location.Label()]++
		confidenceSum += g.Confidence
	}

	report := &model.SessionReport{
		TargetLanguage:      a.target,
		ForeignLanguage:     a.foreign,
		StartedAt:           a.startedAt,
		FinishedAt:          time.Now(),
		Gaps:                gaps,
		SnippetsScanned:     a.scanned,
		SnippetsDropped:     a.dropped,
		RemoteVerdicts:      a.remote,
		HeuristicVerdicts:   a.heuristic,
		TargetLanguageCount: a.inTarget,
		OtherLanguageCount:  a.inOther,
		Cancelled:           a.cancelled,
	}
	if len(byPage) > 0 {
		report.GapsByPage = byPage
	}
	if a.scanned > 0 {
		report.GapRate = float64(len(gaps)) / float64(a.scanned)
	}
	if len(gaps) > 0 {
		report.AverageConfidence = confidenceSum / float64(len(gaps))
	}

	a.final = report
	return report
}
