package index

import (
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recall/core"
)

// builder collects the configuration for one Build call.
type builder struct {
	fingerprint string
	poolSize    int
	now         func() time.Time
	logger      *slog.Logger
}

// BuildOption configures a single Build call.
type BuildOption func(*builder) error

// WithFingerprint stamps the snapshot with the corpus digest it was built
// from, letting the cache layer associate the two.
func WithFingerprint(fingerprint string) BuildOption {
	return func(b *builder) error {
		b.fingerprint = fingerprint
		return nil
	}
}

// WithPoolSize sets the tokenizer worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BuildOption {
	return func(b *builder) error {
		if size < 1 {
			size = 1
		}
		b.poolSize = size
		return nil
	}
}

// WithClock overrides the build timestamp source.
// Default is time.Now.
func WithClock(now func() time.Time) BuildOption {
	return func(b *builder) error {
		if now == nil {
			now = time.Now
		}
		b.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuildOption {
	return func(b *builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// Build constructs an immutable snapshot over the given documents and
// facts. Duplicate document identifiers keep the last occurrence; invalid
// documents and facts are skipped with a warning rather than failing the
// build, so one bad record never takes the index down. Identical inputs
// always produce snapshots that are indistinguishable under query.
func Build(documents []core.Document, facts core.FactSet, opts ...BuildOption) (*Snapshot, error) {
	// Defaults
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	b := &builder{
		poolSize: poolSize,
		now:      time.Now,
		logger:   slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	// Registry: last write wins on duplicate identifiers.
	byID := make(map[string]core.Document, len(documents))
	for _, doc := range documents {
		if err := core.ValidateDocument(&doc); err != nil {
			b.logger.Warn("skipping invalid document", "err", err)
			continue
		}
		if _, ok := byID[doc.ID]; ok {
			b.logger.Warn("duplicate document identifier, keeping latest", "id", doc.ID)
		}
		if doc.Date.IsZero() {
			doc.Date = core.ParseDateID(doc.ID)
		}
		byID[doc.ID] = doc
	}

	ids := slices.Sorted(maps.Keys(byID))
	slices.Reverse(ids)

	s := &Snapshot{
		buildID:     uuid.NewString(),
		builtAt:     b.now(),
		fingerprint: b.fingerprint,
		docs:        make(map[string]*core.Document, len(ids)),
		docIDs:      ids,
		postings:    make(map[string][]Posting),
		facts:       make(map[core.FactCategory][]core.Fact),
		factRefs:    make(map[string][]FactRef),
		lastUpdated: facts.LastUpdated,
	}
	for _, id := range ids {
		doc := byID[id]
		s.docs[id] = &doc
	}

	// Tokenize concurrently into per-document slots, then merge in registry
	// order so every posting list comes out identical across builds.
	counts := make([]map[string]int, len(ids))
	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, id := range ids {
		content := s.docs[id].Content
		wg.Add(1)
		task := func() {
			defer wg.Done()
			counts[i] = termCounts(content)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	for i, id := range ids {
		for term, n := range counts[i] {
			s.postings[term] = append(s.postings[term], Posting{DocID: id, Count: n})
		}
	}
	s.terms = slices.Sorted(maps.Keys(s.postings))

	// Facts: same tokenizer, indexed apart from documents. Ordinals address
	// positions in the kept lists, so skipped entries leave no holes.
	for _, cat := range core.Categories() {
		for _, fact := range facts.Facts[cat] {
			if err := core.ValidateFact(&fact); err != nil {
				b.logger.Warn("skipping invalid fact", "category", cat.String(), "err", err)
				continue
			}
			if fact.Hash == "" {
				fact.Hash = core.ShortHash(fact.Content)
			}
			ord := len(s.facts[cat])
			s.facts[cat] = append(s.facts[cat], fact)
			s.factsTotal++
			for term := range termCounts(fact.Content) {
				s.factRefs[term] = append(s.factRefs[term], FactRef{Category: cat, Ordinal: ord})
			}
		}
	}
	s.factTerms = slices.Sorted(maps.Keys(s.factRefs))

	return s, nil
}

// termCounts tallies token occurrences in one text.
func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}
