package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngudow/SMP-graph/internal/graph"
)

// TestCommunity_Louvain tests streaming Louvain assignments.
func TestCommunity_Louvain(t *testing.T) {
	mock, projections := newAnalyticsFixture(t)
	cd := NewCommunity(mock, projections)

	mock.AddError(noProjectionYet())
	mock.AddResult(projectionCreated("gds_investment_graph_comm"))
	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{
			{"ticker": "AAPL", "communityId": int64(0)},
			{"ticker": "MSFT", "communityId": int64(0)},
			{"ticker": "XOM", "communityId": int64(3)},
		},
	})

	assignments, err := cd.Louvain(context.Background())
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	assert.Equal(t, CommunityAssignment{Ticker: "AAPL", CommunityID: 0}, assignments[0])
	assert.Equal(t, int64(3), assignments[2].CommunityID)

	streams := mock.CallsContaining("gds.louvain.stream")
	require.Len(t, streams, 1)
	assert.Contains(t, streams[0].Cypher, "ORDER BY communityId")
}

// TestCommunity_LouvainWrite tests persist mode: summary counts only.
func TestCommunity_LouvainWrite(t *testing.T) {
	mock, projections := newAnalyticsFixture(t)
	cd := NewCommunity(mock, projections)

	mock.AddError(noProjectionYet())
	mock.AddResult(projectionCreated("gds_investment_graph_comm"))
	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{{"communityCount": int64(7), "ranIterations": int64(4)}},
	})

	summary, err := cd.LouvainWrite(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), summary.CommunityCount)
	assert.Equal(t, int64(4), summary.RanIterations)

	writes := mock.CallsContaining("gds.louvain.write")
	require.Len(t, writes, 1)
	assert.Equal(t, "Execute", writes[0].Method)
	assert.Equal(t, "louvain_community", writes[0].Params["property"])
}

// TestCommunity_LabelPropagation tests streaming label propagation.
func TestCommunity_LabelPropagation(t *testing.T) {
	mock, projections := newAnalyticsFixture(t)
	cd := NewCommunity(mock, projections)

	mock.AddError(noProjectionYet())
	mock.AddResult(projectionCreated("gds_investment_graph_comm"))
	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{
			{"ticker": "AAPL", "label": int64(2)},
		},
	})

	assignments, err := cd.LabelPropagation(context.Background())
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, int64(2), assignments[0].CommunityID)

	streams := mock.CallsContaining("gds.labelPropagation.stream")
	require.Len(t, streams, 1)
	assert.Contains(t, streams[0].Cypher, "ORDER BY label")
}

// TestCommunity_ProjectionContents tests the undirected Stock-only projection
// community detection requires.
func TestCommunity_ProjectionContents(t *testing.T) {
	mock, projections := newAnalyticsFixture(t)
	cd := NewCommunity(mock, projections)

	mock.AddError(noProjectionYet())
	mock.AddResult(projectionCreated("gds_investment_graph_comm"))
	mock.AddResult(graph.QueryResult{})

	_, err := cd.Louvain(context.Background())
	require.NoError(t, err)

	projects := mock.CallsContaining("gds.graph.project")
	require.Len(t, projects, 1)
	assert.Equal(t, "gds_investment_graph_comm", projects[0].Params["name"])
	assert.Equal(t, []string{"Stock"}, projects[0].Params["labels"])

	rels := projects[0].Params["relationships"].(map[string]any)
	require.Len(t, rels, 2)
	for relType, raw := range rels {
		cfg := raw.(map[string]any)
		assert.Equal(t, "UNDIRECTED", cfg["orientation"], "relationship %s", relType)
	}
}
