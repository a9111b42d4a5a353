package analytics

import (
	"context"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/projection"
	"github.com/ngudow/SMP-graph/internal/types"
	"github.com/ngudow/SMP-graph/internal/universe"
)

// communityGraphName is the logical name of the projection community
// detection runs on.
const communityGraphName = "gds_investment_graph_comm"

// Community groups instruments into clusters over the undirected correlation
// and influence structure. Community ids are engine-assigned and carry no
// meaning between separate invocations.
type Community struct {
	client      graph.Client
	projections *projection.Manager
}

// NewCommunity creates a community detection adapter.
func NewCommunity(client graph.Client, projections *projection.Manager) *Community {
	return &Community{client: client, projections: projections}
}

// spec returns the projection community algorithms require: Stock nodes only,
// correlation and influence edges undirected.
func (c *Community) spec() projection.Spec {
	return projection.Spec{
		Name:       communityGraphName,
		NodeLabels: []string{universe.LabelStock},
		Relationships: []projection.Relationship{
			{Type: universe.RelCorrelatesWith, Orientation: projection.OrientationUndirected},
			{Type: universe.RelAffectedBy, Orientation: projection.OrientationUndirected},
		},
	}
}

// Louvain streams Louvain community assignments ordered by community id.
func (c *Community) Louvain(ctx context.Context) ([]CommunityAssignment, error) {
	handle, err := c.projections.Acquire(ctx, c.spec(), false)
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	cypher := `
		CALL gds.louvain.stream($graph)
		YIELD nodeId, communityId
		RETURN gds.util.asNode(nodeId).ticker AS ticker,
		       communityId
		ORDER BY communityId
	`

	result, err := c.client.Query(ctx, cypher, map[string]any{"graph": handle.Name()})
	if err != nil {
		return nil, types.WrapError(ErrCodeAlgorithmFailed, "louvain stream failed", err)
	}

	return assignments(result, "communityId"), nil
}

// LouvainWrite runs Louvain in persist mode, writing each node's community id
// back under property. Returns community and iteration counts only.
func (c *Community) LouvainWrite(ctx context.Context, property string) (LouvainSummary, error) {
	if property == "" {
		property = "louvain_community"
	}

	handle, err := c.projections.Acquire(ctx, c.spec(), false)
	if err != nil {
		return LouvainSummary{}, err
	}
	defer handle.Release(ctx)

	cypher := `
		CALL gds.louvain.write($graph, {writeProperty: $property})
		YIELD communityCount, ranIterations
		RETURN communityCount, ranIterations
	`

	result, err := c.client.Execute(ctx, cypher, map[string]any{
		"graph":    handle.Name(),
		"property": property,
	})
	if err != nil {
		return LouvainSummary{}, types.WrapError(ErrCodeAlgorithmFailed, "louvain write failed", err)
	}
	if len(result.Records) == 0 {
		return LouvainSummary{}, types.NewError(ErrCodeAlgorithmFailed,
			"louvain write returned no summary")
	}

	record := result.Records[0]
	count, _ := toInt64(record["communityCount"])
	iterations, _ := toInt64(record["ranIterations"])

	return LouvainSummary{
		CommunityCount: count,
		RanIterations:  iterations,
	}, nil
}

// LabelPropagation streams label propagation assignments ordered by label.
func (c *Community) LabelPropagation(ctx context.Context) ([]CommunityAssignment, error) {
	handle, err := c.projections.Acquire(ctx, c.spec(), false)
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	cypher := `
		CALL gds.labelPropagation.stream($graph)
		YIELD nodeId, label
		RETURN gds.util.asNode(nodeId).ticker AS ticker,
		       label
		ORDER BY label
	`

	result, err := c.client.Query(ctx, cypher, map[string]any{"graph": handle.Name()})
	if err != nil {
		return nil, types.WrapError(ErrCodeAlgorithmFailed, "label propagation stream failed", err)
	}

	return assignments(result, "label"), nil
}

// assignments reshapes community rows, reading the community id from the
// given column.
func assignments(result graph.QueryResult, idColumn string) []CommunityAssignment {
	out := make([]CommunityAssignment, 0, len(result.Records))
	for _, record := range result.Records {
		id, _ := toInt64(record[idColumn])
		out = append(out, CommunityAssignment{
			Ticker:      toString(record["ticker"]),
			CommunityID: id,
		})
	}
	return out
}
