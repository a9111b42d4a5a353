// Package analytics exposes the graph-algorithm adapters of the investment
// universe facade. Every algorithm's numerics run inside the engine's graph
// data science extension; each adapter only chooses projection contents,
// streaming vs. persisting mode, output shape, and limit/ordering policy,
// and negotiates fallbacks for procedures missing from the engine build.
package analytics

import (
	"sync"

	"github.com/ngudow/SMP-graph/internal/types"
)

// Analytics error codes
const (
	ErrCodeAlgorithmFailed      types.ErrorCode = "ANALYTICS_ALGORITHM_FAILED"
	ErrCodeInvalidArgument      types.ErrorCode = "ANALYTICS_INVALID_ARGUMENT"
	ErrCodeInvalidRelationship  types.ErrorCode = "ANALYTICS_INVALID_RELATIONSHIP"
	ErrCodeProcedureUnavailable types.ErrorCode = "ANALYTICS_PROCEDURE_UNAVAILABLE"
)

// ScoredNode is one per-node result row from a scoring algorithm.
type ScoredNode struct {
	Ticker string
	Labels []string
	Score  float64
}

// WriteSummary reports a persist-mode invocation: how many iterations the
// algorithm ran and how many node properties it wrote back. Persist mode
// never returns per-node rows.
type WriteSummary struct {
	RanIterations     int64
	PropertiesWritten int64
}

// CommunityAssignment maps one instrument to the community the engine placed
// it in. Community ids carry no meaning across separate invocations.
type CommunityAssignment struct {
	Ticker      string
	CommunityID int64
}

// LouvainSummary reports a persist-mode Louvain run.
type LouvainSummary struct {
	CommunityCount int64
	RanIterations  int64
}

// Neighbor is one multi-hop expansion result: a distinct Stock node reached
// from the start ticker together with its hop distance.
type Neighbor struct {
	Ticker   string
	Labels   []string
	Distance int64
}

// Capabilities caches which procedure variants the engine supports. The
// first "procedure not found" failure marks the procedure unavailable for
// the rest of the process lifetime, so later calls go straight to their
// fallback instead of re-probing on every invocation.
type Capabilities struct {
	mu          sync.RWMutex
	unavailable map[string]bool
}

// NewCapabilities creates an empty capability cache.
func NewCapabilities() *Capabilities {
	return &Capabilities{unavailable: make(map[string]bool)}
}

// MarkUnavailable records that the engine does not provide the procedure.
func (c *Capabilities) MarkUnavailable(procedure string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unavailable[procedure] = true
}

// Unavailable reports whether the procedure was previously found missing.
func (c *Capabilities) Unavailable(procedure string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unavailable[procedure]
}
