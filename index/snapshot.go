// Package index builds and serves the in-memory search index.
//
// A Snapshot is assembled once, by Build or Restore, and never mutated
// afterwards, so any number of readers may share one snapshot without
// locking. The query engine swaps whole snapshots atomically when the
// corpus changes.
package index

import (
	"iter"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/recall/core"
)

// Posting records how often a term occurs in one document.
type Posting struct {
	DocID string
	Count int
}

// FactRef addresses a single fact inside a snapshot: the category it is
// filed under and its position within that category's list.
type FactRef struct {
	Category core.FactCategory
	Ordinal  int
}

// Snapshot is an immutable index over one corpus state. All fields are
// populated at construction and accessors never mutate, so a snapshot is
// safe for concurrent readers. The zero value is a valid empty snapshot.
type Snapshot struct {
	buildID     string
	builtAt     time.Time
	fingerprint string

	docs   map[string]*core.Document
	docIDs []string // descending identifier order

	postings map[string][]Posting
	terms    []string // sorted ascending

	facts       map[core.FactCategory][]core.Fact
	factRefs    map[string][]FactRef
	factTerms   []string // sorted ascending
	factsTotal  int
	lastUpdated time.Time // fact store stamp
}

var emptySnapshot = &Snapshot{}

// Empty returns the canonical empty snapshot. Engines that have not built
// yet serve queries from it: every lookup misses and every query returns no
// results.
func Empty() *Snapshot { return emptySnapshot }

// BuildID identifies this particular build. Two builds over identical input
// carry different build IDs but are indistinguishable under query.
func (s *Snapshot) BuildID() string { return s.buildID }

// BuiltAt returns the time the snapshot was constructed.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Fingerprint returns the corpus state digest the snapshot was built from,
// or the empty string when none was supplied.
func (s *Snapshot) Fingerprint() string { return s.fingerprint }

// DocumentCount returns the number of indexed documents.
func (s *Snapshot) DocumentCount() int { return len(s.docIDs) }

// TermCount returns the number of distinct document terms.
func (s *Snapshot) TermCount() int { return len(s.terms) }

// FactCount returns the number of indexed facts across all categories.
func (s *Snapshot) FactCount() int { return s.factsTotal }

// FactLastUpdated returns the fact store's own last_updated stamp, or the
// zero time when no store was present.
func (s *Snapshot) FactLastUpdated() time.Time { return s.lastUpdated }

// Document returns the document with the given identifier, or nil when it
// is not indexed. Callers must not modify the returned document.
func (s *Snapshot) Document(id string) *core.Document {
	return s.docs[id]
}

// Documents iterates all documents in descending identifier order, which
// for dated notes means most recent first.
func (s *Snapshot) Documents() iter.Seq[*core.Document] {
	return func(yield func(*core.Document) bool) {
		for _, id := range s.docIDs {
			if !yield(s.docs[id]) {
				return
			}
		}
	}
}

// Terms returns the sorted document term dictionary. Callers must not
// modify the returned slice.
func (s *Snapshot) Terms() []string { return s.terms }

// Postings returns the posting list for a term in descending document
// identifier order, or nil for an unknown term. Callers must not modify the
// returned slice.
func (s *Snapshot) Postings(term string) []Posting {
	return s.postings[term]
}

// FactTerms returns the sorted fact term dictionary. Callers must not
// modify the returned slice.
func (s *Snapshot) FactTerms() []string { return s.factTerms }

// FactRefs returns the fact references for a term in category then ordinal
// order, or nil for an unknown term. Callers must not modify the returned
// slice.
func (s *Snapshot) FactRefs(term string) []FactRef {
	return s.factRefs[term]
}

// Facts returns the facts filed under one category in store order. Callers
// must not modify the returned slice.
func (s *Snapshot) Facts(category core.FactCategory) []core.Fact {
	return s.facts[category]
}

// Fact resolves a reference, or returns nil when it points outside the
// snapshot.
func (s *Snapshot) Fact(ref FactRef) *core.Fact {
	list := s.facts[ref.Category]
	if ref.Ordinal < 0 || ref.Ordinal >= len(list) {
		return nil
	}
	return &list[ref.Ordinal]
}

// Stats summarizes the snapshot for status reporting.
func (s *Snapshot) Stats() core.Stats {
	counts := make(map[core.FactCategory]int, len(core.Categories()))
	for _, cat := range core.Categories() {
		counts[cat] = len(s.facts[cat])
	}
	return core.Stats{
		Documents:   len(s.docIDs),
		Terms:       len(s.terms),
		Facts:       s.factsTotal,
		FactCounts:  counts,
		LastBuild:   s.builtAt,
		BuildID:     s.buildID,
		LastUpdated: s.lastUpdated,
	}
}

// DocumentCandidates returns, in descending identifier order, every
// document that can score above zero for the given query tokens: a document
// qualifies when at least one of its terms contains or is contained in a
// query token. Scoring only the candidates is observably identical to
// scoring the whole registry.
func (s *Snapshot) DocumentCandidates(tokens []string) []string {
	matched := matchTerms(s.terms, tokens)
	if len(matched) == 0 {
		return nil
	}

	hit := make(map[string]struct{})
	for _, term := range matched {
		for _, p := range s.postings[term] {
			hit[p.DocID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(hit))
	for _, id := range s.docIDs {
		if _, ok := hit[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// FactCandidates returns every fact that can score above zero for the given
// query tokens, in category then ordinal order.
func (s *Snapshot) FactCandidates(tokens []string) []FactRef {
	matched := matchTerms(s.factTerms, tokens)
	if len(matched) == 0 {
		return nil
	}

	hit := make(map[FactRef]struct{})
	for _, term := range matched {
		for _, ref := range s.factRefs[term] {
			hit[ref] = struct{}{}
		}
	}

	refs := make([]FactRef, 0, len(hit))
	for _, cat := range core.Categories() {
		for ord := range s.facts[cat] {
			ref := FactRef{Category: cat, Ordinal: ord}
			if _, ok := hit[ref]; ok {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// matchTerms scans a dictionary for terms related to any query token, where
// related means one string contains the other. Equal strings contain each
// other, so exact matches are covered too.
func matchTerms(dict, tokens []string) []string {
	if len(dict) == 0 || len(tokens) == 0 {
		return nil
	}
	var matched []string
	for _, term := range dict {
		for _, tok := range tokens {
			if strings.Contains(term, tok) || strings.Contains(tok, term) {
				matched = append(matched, term)
				break
			}
		}
	}
	return matched
}

// TermPostings pairs a term with its posting list for transport between a
// snapshot and its serialized form.
type TermPostings struct {
	Term     string
	Postings []Posting
}

// TermFactRefs pairs a fact term with its references.
type TermFactRefs struct {
	Term string
	Refs []FactRef
}

// SnapshotData is the portable form of a snapshot used by the cache layer.
// Slice ordering is not significant; Restore re-establishes the snapshot's
// internal ordering invariants.
type SnapshotData struct {
	BuildID     string
	BuiltAt     time.Time
	Fingerprint string
	LastUpdated time.Time
	Documents   []core.Document
	Postings    []TermPostings
	Facts       map[core.FactCategory][]core.Fact
	FactRefs    []TermFactRefs
}

// Restore reassembles a snapshot from its portable form. Document dates are
// recomputed from identifiers, posting lists are re-sorted into registry
// order and the term dictionaries are rebuilt, so a restored snapshot
// behaves exactly like the one originally built.
func Restore(data SnapshotData) *Snapshot {
	s := &Snapshot{
		buildID:     data.BuildID,
		builtAt:     data.BuiltAt,
		fingerprint: data.Fingerprint,
		lastUpdated: data.LastUpdated,
		docs:        make(map[string]*core.Document, len(data.Documents)),
		postings:    make(map[string][]Posting, len(data.Postings)),
		facts:       make(map[core.FactCategory][]core.Fact, len(data.Facts)),
		factRefs:    make(map[string][]FactRef, len(data.FactRefs)),
	}

	for i := range data.Documents {
		doc := data.Documents[i]
		doc.Date = core.ParseDateID(doc.ID)
		s.docs[doc.ID] = &doc
	}
	s.docIDs = slices.Sorted(maps.Keys(s.docs))
	slices.Reverse(s.docIDs)

	order := make(map[string]int, len(s.docIDs))
	for i, id := range s.docIDs {
		order[id] = i
	}
	for _, tp := range data.Postings {
		list := slices.Clone(tp.Postings)
		slices.SortFunc(list, func(a, b Posting) int {
			return order[a.DocID] - order[b.DocID]
		})
		s.postings[tp.Term] = list
	}
	s.terms = slices.Sorted(maps.Keys(s.postings))

	for cat, list := range data.Facts {
		s.facts[cat] = slices.Clone(list)
		s.factsTotal += len(list)
	}
	for _, tr := range data.FactRefs {
		list := slices.Clone(tr.Refs)
		slices.SortFunc(list, func(a, b FactRef) int {
			if a.Category != b.Category {
				return int(a.Category) - int(b.Category)
			}
			return a.Ordinal - b.Ordinal
		})
		s.factRefs[tr.Term] = list
	}
	s.factTerms = slices.Sorted(maps.Keys(s.factRefs))

	return s
}
