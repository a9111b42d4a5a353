package analytics

import (
	"context"
	"fmt"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/projection"
	"github.com/ngudow/SMP-graph/internal/types"
	"github.com/ngudow/SMP-graph/internal/universe"
)

// centralityGraphName is the logical name of the projection centrality
// algorithms run on.
const centralityGraphName = "gds_investment_graph_centrality"

// DefaultTopN caps centrality result sets when the caller passes zero.
const DefaultTopN = 50

// Closeness procedure variants. The alpha-tier procedure is preferred; engine
// builds without it serve the same algorithm under the product-tier name.
const (
	procClosenessAlpha = "gds.alpha.closeness.stream"
	procCloseness      = "gds.closeness.stream"
)

// Centrality computes betweenness and closeness centrality over the derived
// relationship structure (correlation and influence edges, natural direction).
type Centrality struct {
	client      graph.Client
	projections *projection.Manager
	caps        *Capabilities
}

// NewCentrality creates a Centrality adapter sharing the given capability cache.
func NewCentrality(client graph.Client, projections *projection.Manager, caps *Capabilities) *Centrality {
	return &Centrality{client: client, projections: projections, caps: caps}
}

func (c *Centrality) spec() projection.Spec {
	return projection.Spec{
		Name:       centralityGraphName,
		NodeLabels: []string{universe.LabelStock, universe.LabelFactor},
		Relationships: []projection.Relationship{
			{Type: universe.RelCorrelatesWith, Orientation: projection.OrientationNatural},
			{Type: universe.RelAffectedBy, Orientation: projection.OrientationNatural},
		},
	}
}

// Betweenness streams betweenness centrality scores, highest first, capped
// at topN. topN is a hint: the engine may return fewer matches.
func (c *Centrality) Betweenness(ctx context.Context, topN int) ([]ScoredNode, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	handle, err := c.projections.Acquire(ctx, c.spec(), false)
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	cypher := `
		CALL gds.betweenness.stream($graph)
		YIELD nodeId, score
		RETURN gds.util.asNode(nodeId).ticker AS ticker,
		       labels(gds.util.asNode(nodeId)) AS labels,
		       score
		ORDER BY score DESC
		LIMIT $top_n
	`

	result, err := c.client.Query(ctx, cypher, map[string]any{
		"graph": handle.Name(),
		"top_n": topN,
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeAlgorithmFailed, "betweenness stream failed", err)
	}

	return scoredNodes(result, "score"), nil
}

// Closeness streams closeness centrality scores, highest first, capped at
// topN. The alpha-tier procedure is attempted first; when the engine build
// does not provide it, the adapter retries once under the product-tier name
// and caches that decision for the rest of the process. Callers cannot
// distinguish fallback from primary success.
func (c *Centrality) Closeness(ctx context.Context, topN int) ([]ScoredNode, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	handle, err := c.projections.Acquire(ctx, c.spec(), false)
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	params := map[string]any{
		"graph": handle.Name(),
		"top_n": topN,
	}

	result, err := c.streamCloseness(ctx, params)
	if err != nil {
		return nil, err
	}

	return scoredNodes(result, "centrality"), nil
}

func (c *Centrality) streamCloseness(ctx context.Context, params map[string]any) (graph.QueryResult, error) {
	template := `
		CALL %s($graph)
		YIELD nodeId, centrality
		RETURN gds.util.asNode(nodeId).ticker AS ticker,
		       labels(gds.util.asNode(nodeId)) AS labels,
		       centrality
		ORDER BY centrality DESC
		LIMIT $top_n
	`

	if !c.caps.Unavailable(procClosenessAlpha) {
		result, err := c.client.Query(ctx, fmt.Sprintf(template, procClosenessAlpha), params)
		if err == nil {
			return result, nil
		}
		if !graph.IsProcedureNotFound(err) {
			return graph.QueryResult{}, types.WrapError(ErrCodeAlgorithmFailed,
				"closeness stream failed", err)
		}
		c.caps.MarkUnavailable(procClosenessAlpha)
	}

	result, err := c.client.Query(ctx, fmt.Sprintf(template, procCloseness), params)
	if err != nil {
		if graph.IsProcedureNotFound(err) {
			return graph.QueryResult{}, types.WrapError(ErrCodeProcedureUnavailable,
				"no closeness procedure available on this engine build", err)
		}
		return graph.QueryResult{}, types.WrapError(ErrCodeAlgorithmFailed,
			"closeness stream failed", err)
	}
	return result, nil
}

// scoredNodes reshapes centrality/pagerank rows, reading the score from the
// given column.
func scoredNodes(result graph.QueryResult, scoreColumn string) []ScoredNode {
	nodes := make([]ScoredNode, 0, len(result.Records))
	for _, record := range result.Records {
		score, _ := toFloat64(record[scoreColumn])
		nodes = append(nodes, ScoredNode{
			Ticker: toString(record["ticker"]),
			Labels: toLabels(record["labels"]),
			Score:  score,
		})
	}
	return nodes
}
