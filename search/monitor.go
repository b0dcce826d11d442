package search

import (
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/index"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterCandidateSelection(docIDs []string, facts []index.FactRef)
	DocumentHit(id string, score float64)
	FactHit(category core.FactCategory, score float64)
	Finish(results []core.QueryResult)
}

// noopMonitor is a SearchMonitor that does nothing.
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                        {}
func (n *noopMonitor) AfterCandidateSelection(_ []string, _ []index.FactRef) {}
func (n *noopMonitor) DocumentHit(_ string, _ float64)                       {}
func (n *noopMonitor) FactHit(_ core.FactCategory, _ float64)                {}
func (n *noopMonitor) Finish(_ []core.QueryResult)                           {}
