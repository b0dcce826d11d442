package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/index"
	"github.com/poiesic/recall/storage"
)

const (
	// DefaultLimit caps result counts when the caller does not pick one.
	DefaultLimit = 10

	// DefaultMaxSnippets caps the excerpts attached to a single result.
	DefaultMaxSnippets = 3

	// DefaultRecentDays is the lookback window for Recent when the caller
	// does not pick one.
	DefaultRecentDays = 7

	rangePreviewChars  = 500
	recentPreviewChars = 300
)

// Source supplies corpus content for index builds. Implementations report
// missing inputs as empty content, not errors, so an engine over an absent
// workspace still answers queries.
type Source interface {
	ScanDocuments(ctx context.Context) ([]core.Document, error)
	LoadFacts(ctx context.Context) (core.FactSet, error)
	Fingerprint(ctx context.Context) (string, error)
}

// SearchOptions holds optional parameters for Search.
type SearchOptions struct {
	Limit         int  // maximum results to return; <= 0 means DefaultLimit
	DocumentsOnly bool // leave facts out of the result set
}

// Engine answers queries from an immutable index snapshot and rebuilds that
// snapshot from a corpus source on demand. Queries and rebuilds may run
// concurrently: readers keep whichever snapshot they acquired at call start
// while Rebuild swaps in the replacement atomically.
type Engine struct {
	source    Source
	store     storage.SnapshotStore
	current   atomic.Pointer[index.Snapshot]
	weights   Weights
	window    int
	snippets  int
	scorer    *Scorer
	extractor *Extractor
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithSnapshotStore attaches a snapshot cache. Rebuilds consult it before
// scanning and persist fresh builds into it. Without a store every rebuild
// scans the corpus.
func WithSnapshotStore(store storage.SnapshotStore) Option {
	return func(e *Engine) error {
		e.store = store
		return nil
	}
}

// WithWeights overrides the scoring weights.
// Default is DefaultWeights().
func WithWeights(weights Weights) Option {
	return func(e *Engine) error {
		e.weights = weights
		return nil
	}
}

// WithSnippetWindow sets the context captured on each side of a snippet
// match. Values below 1 fall back to DefaultSnippetWindow.
func WithSnippetWindow(window int) Option {
	return func(e *Engine) error {
		if window < 1 {
			window = DefaultSnippetWindow
		}
		e.window = window
		return nil
	}
}

// WithMaxSnippets sets how many excerpts a single result may carry. Values
// below 1 fall back to DefaultMaxSnippets.
func WithMaxSnippets(max int) Option {
	return func(e *Engine) error {
		if max < 1 {
			max = DefaultMaxSnippets
		}
		e.snippets = max
		return nil
	}
}

// WithClock overrides the time source used for recency cutoffs and build
// stamps. Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now == nil {
			now = time.Now
		}
		e.now = now
		return nil
	}
}

// NewEngine creates a query engine over the given corpus source. The engine
// serves the canonical empty snapshot until the first Rebuild.
func NewEngine(source Source, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	e := &Engine{
		source:   source,
		weights:  DefaultWeights(),
		window:   DefaultSnippetWindow,
		snippets: DefaultMaxSnippets,
		now:      time.Now,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	// Create scorer and extractor after options are applied (so they get
	// final config)
	e.scorer = NewScorer(e.weights)
	e.extractor = NewExtractor(e.window, DefaultMaxPerToken)

	return e, nil
}

// Snapshot returns the snapshot currently being served. Before the first
// Rebuild this is the canonical empty snapshot.
func (e *Engine) Snapshot() *index.Snapshot {
	if snap := e.current.Load(); snap != nil {
		return snap
	}
	return index.Empty()
}

// Rebuild refreshes the served snapshot from the corpus source. When a
// snapshot store is attached and already holds an index for the current
// corpus fingerprint, the cached snapshot is served without rescanning.
// Source and cache failures degrade, with a log entry, to whatever can
// still be built; queries keep working no matter what state the workspace
// is in.
func (e *Engine) Rebuild(ctx context.Context) error {
	// 1. Fingerprint the corpus and try the cache.
	fingerprint := ""
	if fp, err := e.source.Fingerprint(ctx); err != nil {
		e.logger.Warn("corpus fingerprint unavailable", "err", err)
	} else {
		fingerprint = fp
	}

	if e.store != nil && fingerprint != "" {
		snap, err := e.store.Load(ctx, fingerprint)
		if err != nil {
			e.logger.Warn("snapshot cache read failed", "fingerprint", fingerprint, "err", err)
		} else if snap != nil {
			e.current.Store(snap)
			e.logger.Debug("reusing cached snapshot",
				"fingerprint", fingerprint, "buildID", snap.BuildID())
			return nil
		}
	}

	// 2. Scan the corpus. Failures index whatever remains.
	docs, err := e.source.ScanDocuments(ctx)
	if err != nil {
		e.logger.Error("document scan failed, indexing an empty corpus", "err", err)
		docs = nil
	}
	facts, err := e.source.LoadFacts(ctx)
	if err != nil {
		e.logger.Error("fact store load failed, indexing without facts", "err", err)
		facts = core.FactSet{}
	}

	// 3. Build in isolation, then swap.
	snap, err := index.Build(docs, facts,
		index.WithFingerprint(fingerprint),
		index.WithClock(e.now),
		index.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}

	if e.store != nil && fingerprint != "" {
		if err := e.store.Save(ctx, snap); err != nil {
			e.logger.Warn("snapshot cache write failed", "fingerprint", fingerprint, "err", err)
		}
	}

	e.current.Store(snap)
	e.logger.Info("index rebuilt",
		"documents", snap.DocumentCount(),
		"terms", snap.TermCount(),
		"facts", snap.FactCount(),
		"buildID", snap.BuildID())
	return nil
}

// Search returns results ranked by relevance for a free-text query.
// Queries with no extractable tokens return no results.
func (e *Engine) Search(ctx context.Context, query string, opts *SearchOptions) ([]core.QueryResult, error) {
	return e.SearchWithMonitor(ctx, query, opts, nil)
}

// SearchWithMonitor runs Search with monitoring. The monitor receives
// callbacks at each stage of the search process.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, opts *SearchOptions, monitor SearchMonitor) ([]core.QueryResult, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	results := []core.QueryResult{}

	// 1. Prepare the query once for every candidate.
	queryLower := strings.ToLower(query)
	tokens := uniqueTokens(queryLower)
	if len(tokens) == 0 {
		monitor.Finish(results)
		return results, nil
	}

	// 2. Select candidates through the term dictionaries. Anything the
	// dictionaries cannot relate to the query scores zero anyway.
	snap := e.Snapshot()
	docIDs := snap.DocumentCandidates(tokens)
	var factRefs []index.FactRef
	if !opts.DocumentsOnly {
		factRefs = snap.FactCandidates(tokens)
	}
	monitor.AfterCandidateSelection(docIDs, factRefs)

	// 3. Score candidate documents.
	for _, id := range docIDs {
		doc := snap.Document(id)
		if doc == nil {
			continue
		}
		contentLower := strings.ToLower(doc.Content)
		score := e.scorer.score(contentLower, queryLower, tokens)
		if score <= 0 {
			continue
		}
		monitor.DocumentHit(id, score)
		results = append(results, core.QueryResult{
			Kind:      core.SourceDocument,
			Key:       id,
			Score:     score,
			Snippets:  e.clip(e.extractor.extract(contentLower, tokens)),
			WordCount: doc.WordCount,
		})
	}

	// 4. Score candidate facts.
	for _, ref := range factRefs {
		fact := snap.Fact(ref)
		if fact == nil {
			continue
		}
		contentLower := strings.ToLower(fact.Content)
		score := e.scorer.score(contentLower, queryLower, tokens)
		if score <= 0 {
			continue
		}
		monitor.FactHit(ref.Category, score)
		results = append(results, core.QueryResult{
			Kind:          core.SourceFact,
			Key:           ref.Category.String(),
			Score:         score,
			Snippets:      e.clip(e.extractor.extract(contentLower, tokens)),
			DateExtracted: fact.DateExtracted,
		})
	}

	// 5. Rank and truncate.
	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)

	return results, nil
}

// SearchByDateRange lists dated documents whose identifier falls in the
// inclusive [start, end] range, oldest first. Identifiers are zero-padded
// ISO dates, so plain string comparison is date comparison. Documents whose
// identifier is not a date never appear in date-scoped listings.
func (e *Engine) SearchByDateRange(ctx context.Context, start, end string) ([]core.QueryResult, error) {
	snap := e.Snapshot()

	results := []core.QueryResult{}
	for doc := range snap.Documents() {
		if !doc.Dated() || doc.ID < start || doc.ID > end {
			continue
		}
		results = append(results, core.QueryResult{
			Kind:      core.SourceDocument,
			Key:       doc.ID,
			Snippets:  []string{preview(doc.Content, rangePreviewChars)},
			WordCount: doc.WordCount,
		})
	}

	// Registry order is newest first; range listings read oldest first.
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// Recent lists dated documents from the trailing window of days, newest
// first, capped at limit.
func (e *Engine) Recent(ctx context.Context, days, limit int) ([]core.QueryResult, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	cutoff := e.now().AddDate(0, 0, -days).Format(core.DateIDLayout)

	snap := e.Snapshot()
	results := []core.QueryResult{}
	for doc := range snap.Documents() {
		if len(results) == limit {
			break
		}
		if !doc.Dated() || doc.ID < cutoff {
			continue
		}
		results = append(results, core.QueryResult{
			Kind:      core.SourceDocument,
			Key:       doc.ID,
			Snippets:  []string{preview(doc.Content, recentPreviewChars)},
			WordCount: doc.WordCount,
		})
	}
	return results, nil
}

// Stats reports the totals of the snapshot currently being served.
func (e *Engine) Stats(ctx context.Context) (core.Stats, error) {
	return e.Snapshot().Stats(), nil
}

// clip caps the snippets attached to one result.
func (e *Engine) clip(snippets []string) []string {
	if len(snippets) > e.snippets {
		return snippets[:e.snippets]
	}
	return snippets
}

// sortResults orders by score descending, breaking ties by descending sort
// key and then descending result key so the most recent entry wins. The
// stable sort keeps candidate order as the final word on full ties, which
// keeps rankings reproducible across runs.
func sortResults(results []core.QueryResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ak, bk := a.SortKey(), b.SortKey(); ak != bk {
			return ak > bk
		}
		return a.Key > b.Key
	})
}

// preview returns the leading chars of content without an ellipsis, sliced
// on a rune boundary, for the compact range and recency listings.
func preview(content string, chars int) string {
	if len(content) <= chars {
		return content
	}
	return trimToRune(content, chars)
}
