package engine

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/locascan/locascan/internal/model"
)

// DefaultConcurrency is the default number of in-flight classification
// batches. Remote call latency would otherwise serialize the run; a small
// bounded pool keeps throughput up without hammering the service.
const DefaultConcurrency = 4

// Source is a traversal source: a lazy, finite, non-restartable sequence
// of raw text nodes in navigation order. The engine consumes it
// incrementally and never assumes it can be replayed mid-run.
type Source interface {
	// Next returns the next text node. The second return is false when
	// the traversal is exhausted. Errors other than context cancellation
	// abort the run but still produce a partial report.
	Next(ctx context.Context) (model.TextNode, bool, error)
}

// BatchClassifier classifies a batch of texts in one call.
// The returned slice has one entry per input text; entries the classifier
// could not produce are zero-valued. Implemented by classifier.Remote.
type BatchClassifier interface {
	DetectBatch(ctx context.Context, texts []string) ([]model.LanguageVerdict, error)
}

// FallbackClassifier classifies a single text locally and never fails.
// Implemented by classifier.Heuristic.
type FallbackClassifier interface {
	Detect(text string) model.LanguageVerdict
}

// Engine drives the gap detection pipeline for one scan session.
type Engine struct {
	// remote is the primary classifier. Nil means offline mode: every
	// snippet is classified heuristically.
	remote BatchClassifier

	// fallback classifies snippets the remote path could not.
	fallback FallbackClassifier

	// target and foreign are the session language configuration.
	target  string
	foreign string

	normalizer *Normalizer
	evaluator  *Evaluator

	maxItems    int
	maxChars    int
	concurrency int

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRemote sets the remote batch classifier. Without one the engine
// runs fully offline on the fallback classifier.
func WithRemote(remote BatchClassifier) Option {
	return func(e *Engine) {
		e.remote = remote
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(e *Engine) {
		e.normalizer = n
	}
}

// WithThresholds sets the remote and heuristic gap confidence thresholds.
func WithThresholds(remote, heuristic float64) Option {
	return func(e *Engine) {
		e.evaluator = NewEvaluator(e.foreign, remote, heuristic)
	}
}

// WithBatchLimits sets the maximum items and characters per batch.
func WithBatchLimits(maxItems, maxChars int) Option {
	return func(e *Engine) {
		e.maxItems = maxItems
		e.maxChars = maxChars
	}
}

// WithConcurrency sets the maximum number of in-flight batches.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine scanning for foreign-language leaks in a UI
// expected to display the target language.
func New(target, foreign string, fallback FallbackClassifier, opts ...Option) *Engine {
	e := &Engine{
		fallback:    fallback,
		target:      target,
		foreign:     foreign,
		maxItems:    DefaultBatchItems,
		maxChars:    DefaultBatchChars,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.normalizer == nil {
		e.normalizer = NewNormalizer()
	}
	if e.evaluator == nil {
		e.evaluator = NewEvaluator(e.foreign, DefaultRemoteThreshold, DefaultHeuristicThreshold)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Run consumes the traversal source to exhaustion and returns the
// finalized session report.
//
// Cancellation: a cancelled context stops consuming the source, lets
// in-flight batches drain, and still finalizes a partial report. The
// returned error is the context error in that case; the report is always
// non-nil and well-formed.
func (e *Engine) Run(ctx context.Context, source Source) (*model.SessionReport, error) {
	agg := NewAggregator(e.target, e.foreign)
	batcher := NewBatcher(e.maxItems, e.maxChars)

	// Batches are independent once formed, so classification may overlap.
	// A plain errgroup (not WithContext) is used because batch workers
	// never return errors: every classification failure degrades to the
	// fallback classifier instead of aborting sibling batches.
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	dispatch := func(batch Batch) {
		g.Go(func() error {
			e.processBatch(ctx, batch, agg)
			return nil
		})
	}

	var runErr error
	seq := 0

consume:
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break consume
		default:
		}

		node, ok, err := source.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				runErr = err
				break consume
			}
			e.logger.Error("traversal source failed", "error", err)
			runErr = err
			break consume
		}
		if !ok {
			break consume
		}

		snippet, err := e.normalizer.Normalize(node, seq)
		if err != nil {
			e.logger.Warn("dropping invalid text node",
				"page", node.Location.Page,
				"error", err,
			)
			agg.ObserveDropped()
			continue
		}
		if snippet == nil {
			agg.ObserveDropped()
			continue
		}
		seq++

		if batch, full := batcher.Add(snippet); full {
			dispatch(batch)
		}
	}

	if batch, ok := batcher.Flush(); ok {
		dispatch(batch)
	}

	// In-flight batches finish against the (possibly cancelled) context;
	// cancelled remote calls degrade to the local fallback, so draining
	// is bounded and the aggregator stays consistent.
	_ = g.Wait()

	if runErr != nil {
		agg.MarkCancelled()
	}
	return agg.Finalize(), runErr
}

// processBatch classifies one batch and records the results.
// Remote classification failures, total or partial, degrade per item to
// the fallback classifier; this method never fails.
func (e *Engine) processBatch(ctx context.Context, batch Batch, agg *Aggregator) {
	texts := batch.Texts()

	var verdicts []model.LanguageVerdict
	var fallbackReason string

	if e.remote != nil {
		var err error
		verdicts, err = e.remote.DetectBatch(ctx, texts)
		if err != nil {
			fallbackReason = err.Error()
			e.logger.Warn("remote classification failed for batch, using heuristic fallback",
				"batch_size", batch.Len(),
				"error", err,
			)
		}
	} else {
		fallbackReason = "remote classifier not configured"
	}
	if verdicts == nil {
		verdicts = make([]model.LanguageVerdict, batch.Len())
	}

	for i, snippet := range batch.Snippets {
		verdict := verdicts[i]
		if !verdict.Valid() {
			verdict = e.fallback.Detect(snippet.Text)
			if fallbackReason != "" {
				verdict.FallbackReason = fallbackReason
			}
		}

		if err := agg.ObserveVerdict(verdict); err != nil {
			e.logger.Error("failed to record verdict", "error", err)
			return
		}

		if gap, ok := e.evaluator.Evaluate(snippet, verdict); ok {
			if err := agg.Record(gap); err != nil {
				e.logger.Error("failed to record gap", "error", err)
				return
			}
			e.logger.Debug("gap recorded",
				"page", gap.Location.Label(),
				"text", gap.Text,
				"confidence", gap.Confidence,
				"source", gap.Source,
			)
		}
	}
}
