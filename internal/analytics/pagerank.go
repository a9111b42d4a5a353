package analytics

import (
	"context"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/projection"
	"github.com/ngudow/SMP-graph/internal/types"
	"github.com/ngudow/SMP-graph/internal/universe"
)

// pageRankGraphName is the logical name of the projection PageRank runs on.
const pageRankGraphName = "gds_investment_graph"

// Default PageRank parameters, applied when the caller leaves them zero.
// Non-zero values are passed through to the engine verbatim.
const (
	DefaultMaxIterations = 20
	DefaultDampingFactor = 0.85
)

// PageRank ranks instruments and factors by structural influence across the
// full investment graph. All relationship types participate, undirected.
type PageRank struct {
	client      graph.Client
	projections *projection.Manager
}

// NewPageRank creates a PageRank adapter.
func NewPageRank(client graph.Client, projections *projection.Manager) *PageRank {
	return &PageRank{client: client, projections: projections}
}

// spec returns the projection this adapter runs against.
func (p *PageRank) spec() projection.Spec {
	return projection.Spec{
		Name:       pageRankGraphName,
		NodeLabels: []string{universe.LabelStock, universe.LabelFactor},
		Relationships: []projection.Relationship{
			{Type: universe.RelHasPrice, Orientation: projection.OrientationUndirected},
			{Type: universe.RelCorrelatesWith, Orientation: projection.OrientationUndirected},
			{Type: universe.RelAffectedBy, Orientation: projection.OrientationUndirected},
			{Type: universe.RelMade, Orientation: projection.OrientationUndirected},
			{Type: universe.RelRelatesTo, Orientation: projection.OrientationUndirected},
		},
	}
}

// Stream runs PageRank and returns per-node scores ordered descending.
// maxIterations and damping default to 20 and 0.85 when zero.
func (p *PageRank) Stream(ctx context.Context, maxIterations int, damping float64) ([]ScoredNode, error) {
	if maxIterations == 0 {
		maxIterations = DefaultMaxIterations
	}
	if damping == 0 {
		damping = DefaultDampingFactor
	}

	handle, err := p.projections.Acquire(ctx, p.spec(), false)
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	cypher := `
		CALL gds.pageRank.stream($graph, {maxIterations: $max_iterations, dampingFactor: $damping})
		YIELD nodeId, score
		RETURN gds.util.asNode(nodeId).ticker AS ticker,
		       labels(gds.util.asNode(nodeId)) AS labels,
		       score
		ORDER BY score DESC
	`

	params := map[string]any{
		"graph":          handle.Name(),
		"max_iterations": maxIterations,
		"damping":        damping,
	}

	result, err := p.client.Query(ctx, cypher, params)
	if err != nil {
		return nil, types.WrapError(ErrCodeAlgorithmFailed, "pagerank stream failed", err)
	}

	nodes := make([]ScoredNode, 0, len(result.Records))
	for _, record := range result.Records {
		score, _ := toFloat64(record["score"])
		nodes = append(nodes, ScoredNode{
			Ticker: toString(record["ticker"]),
			Labels: toLabels(record["labels"]),
			Score:  score,
		})
	}

	return nodes, nil
}

// Write runs PageRank in persist mode, writing each node's score back onto
// the graph under property. Returns iteration and write counts only, never
// per-node rows.
func (p *PageRank) Write(ctx context.Context, maxIterations int, damping float64, property string) (WriteSummary, error) {
	if maxIterations == 0 {
		maxIterations = DefaultMaxIterations
	}
	if damping == 0 {
		damping = DefaultDampingFactor
	}
	if property == "" {
		property = "pagerank"
	}

	handle, err := p.projections.Acquire(ctx, p.spec(), false)
	if err != nil {
		return WriteSummary{}, err
	}
	defer handle.Release(ctx)

	cypher := `
		CALL gds.pageRank.write($graph, {maxIterations: $max_iterations, dampingFactor: $damping, writeProperty: $property})
		YIELD nodePropertiesWritten, ranIterations
		RETURN nodePropertiesWritten, ranIterations
	`

	params := map[string]any{
		"graph":          handle.Name(),
		"max_iterations": maxIterations,
		"damping":        damping,
		"property":       property,
	}

	result, err := p.client.Execute(ctx, cypher, params)
	if err != nil {
		return WriteSummary{}, types.WrapError(ErrCodeAlgorithmFailed, "pagerank write failed", err)
	}
	if len(result.Records) == 0 {
		return WriteSummary{}, types.NewError(ErrCodeAlgorithmFailed,
			"pagerank write returned no summary")
	}

	record := result.Records[0]
	written, _ := toInt64(record["nodePropertiesWritten"])
	iterations, _ := toInt64(record["ranIterations"])

	return WriteSummary{
		RanIterations:     iterations,
		PropertiesWritten: written,
	}, nil
}
