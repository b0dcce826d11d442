package core

import (
	"encoding/hex"
	"regexp"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DateIDLayout is the identifier layout of dated documents.
const DateIDLayout = "2006-01-02"

// dateIDPattern matches zero-padded ISO date identifiers. Plain string
// comparison of matching identifiers is date order.
var dateIDPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ShortHash returns a short deterministic digest of text content using
// BLAKE2b hashing. Identical content produces identical digests.
func ShortHash(text string) string {
	h, _ := blake2b.New(4, nil) // 4 bytes = 8 hex chars
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ParseDateID interprets a document identifier as a calendar date.
// Returns the zero time when the identifier is not a zero-padded ISO
// date; such documents are excluded from date-based queries.
func ParseDateID(id string) time.Time {
	if !dateIDPattern.MatchString(id) {
		return time.Time{}
	}
	t, err := time.Parse(DateIDLayout, id)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Document is a single text record from the memory corpus.
type Document struct {
	ID        string // file stem: an ISO date for daily notes, a plain name otherwise
	Content   string
	WordCount int       // whitespace-separated field count of Content
	Date      time.Time // parsed from ID; zero when ID is not a date
}

// Dated reports whether the document carries a date identifier.
func (d *Document) Dated() bool {
	return !d.Date.IsZero()
}

// FactCategory identifies the kind of a long-term fact. Categories form
// a closed set; the fact store may not introduce new ones.
type FactCategory int

// Fact categories, in reporting order.
const (
	CategoryDecisions FactCategory = iota + 1
	CategoryPreferences
	CategoryGoals
	CategoryConstraints
	CategoryLearnings
	CategoryContacts
	CategoryProjects
	CategoryHabits
	CategoryOther
)

var categoryNames = [...]string{
	CategoryDecisions:   "decisions",
	CategoryPreferences: "preferences",
	CategoryGoals:       "goals",
	CategoryConstraints: "constraints",
	CategoryLearnings:   "learnings",
	CategoryContacts:    "contacts",
	CategoryProjects:    "projects",
	CategoryHabits:      "habits",
	CategoryOther:       "other",
}

func (c FactCategory) String() string {
	if c < CategoryDecisions || c > CategoryOther {
		return "unknown"
	}
	return categoryNames[c]
}

// Categories returns all fact categories in reporting order.
func Categories() []FactCategory {
	cats := make([]FactCategory, 0, len(categoryNames)-1)
	for c := CategoryDecisions; c <= CategoryOther; c++ {
		cats = append(cats, c)
	}
	return cats
}

// Fact is a single long-term fact extracted from conversation history.
type Fact struct {
	Content       string
	DateExtracted string    // ISO date the fact was extracted on
	Hash          string    // short content digest, see ShortHash
	Timestamp     time.Time // when the fact was recorded
}

// FactSet holds facts grouped by category, as loaded from the fact
// store. The zero value is a valid empty set.
type FactSet struct {
	Facts       map[FactCategory][]Fact
	LastUpdated time.Time // the store's own last_updated stamp
}

// Total returns the number of facts across all categories.
func (s FactSet) Total() int {
	total := 0
	for _, facts := range s.Facts {
		total += len(facts)
	}
	return total
}

// Counts returns per-category fact counts, including zero counts.
func (s FactSet) Counts() map[FactCategory]int {
	counts := make(map[FactCategory]int, len(categoryNames)-1)
	for _, c := range Categories() {
		counts[c] = len(s.Facts[c])
	}
	return counts
}

// SourceKind identifies where a query result came from.
type SourceKind int

const (
	// SourceDocument is a result drawn from the scanned corpus.
	SourceDocument SourceKind = iota + 1
	// SourceFact is a result drawn from the long-term fact store.
	SourceFact
)

func (k SourceKind) String() string {
	switch k {
	case SourceDocument:
		return "memory"
	case SourceFact:
		return "fact"
	}
	return "unknown"
}

// QueryResult is a single ranked hit returned by the query engine.
// WordCount is populated for documents, DateExtracted for facts.
type QueryResult struct {
	Kind          SourceKind
	Key           string // document identifier, or category name for facts
	Score         float64
	Snippets      []string
	WordCount     int
	DateExtracted string
}

// SortKey returns the identifier used to break score ties: the document
// identifier for documents, the extraction date for facts.
func (r QueryResult) SortKey() string {
	if r.Kind == SourceFact {
		return r.DateExtracted
	}
	return r.Key
}

// Stats summarizes the currently served index snapshot.
type Stats struct {
	Documents   int
	Terms       int // distinct indexed terms across documents
	Facts       int
	FactCounts  map[FactCategory]int
	LastBuild   time.Time
	BuildID     string
	LastUpdated time.Time // fact store stamp, zero when no store was found
}
