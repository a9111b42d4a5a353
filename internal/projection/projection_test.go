package projection

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/types"
)

func testSpec() Spec {
	return Spec{
		Name:       "test_projection",
		NodeLabels: []string{"Stock", "Factor"},
		Relationships: []Relationship{
			{Type: "CORRELATES_WITH", Orientation: OrientationUndirected},
			{Type: "AFFECTED_BY", Orientation: OrientationNatural},
		},
	}
}

func graphNotFound() *neo4j.Neo4jError {
	return &neo4j.Neo4jError{
		Code: "Neo.ClientError.Procedure.ProcedureCallFailed",
		Msg:  "Graph with name `test_projection` does not exist on database `neo4j`",
	}
}

func newManagerFixture(t *testing.T) (*Manager, *graph.MockClient) {
	t.Helper()
	mock := graph.NewMockClient()
	require.NoError(t, mock.Connect(context.Background()))
	return NewManager(mock), mock
}

// TestSpec_Validate tests projection spec validation.
func TestSpec_Validate(t *testing.T) {
	require.NoError(t, testSpec().Validate())

	noName := testSpec()
	noName.Name = ""
	require.Error(t, noName.Validate())

	noLabels := testSpec()
	noLabels.NodeLabels = nil
	require.Error(t, noLabels.Validate())

	badOrientation := testSpec()
	badOrientation.Relationships[0].Orientation = "SIDEWAYS"
	err := badOrientation.Validate()
	require.Error(t, err)
	assert.True(t, types.IsCode(err, ErrCodeInvalidSpec))
}

// TestManager_Acquire tests the drop-then-create sequence and the projection
// parameters.
func TestManager_Acquire(t *testing.T) {
	m, mock := newManagerFixture(t)
	ctx := context.Background()

	mock.AddError(graphNotFound()) // drop: nothing to tear down
	mock.AddResult(graph.QueryResult{
		Records: []map[string]any{{"graphName": "test_projection", "nodeCount": int64(10), "relationshipCount": int64(20)}},
	})

	handle, err := m.Acquire(ctx, testSpec(), false)
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, "test_projection", handle.Name())

	drops := mock.CallsContaining("gds.graph.drop")
	projects := mock.CallsContaining("gds.graph.project")
	require.Len(t, drops, 1)
	require.Len(t, projects, 1)

	assert.Equal(t, "test_projection", projects[0].Params["name"])
	assert.Equal(t, []string{"Stock", "Factor"}, projects[0].Params["labels"])

	rels, ok := projects[0].Params["relationships"].(map[string]any)
	require.True(t, ok)
	correlates, ok := rels["CORRELATES_WITH"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "UNDIRECTED", correlates["orientation"])
	affected := rels["AFFECTED_BY"].(map[string]any)
	assert.Equal(t, "NATURAL", affected["orientation"])

	require.NoError(t, handle.Release(ctx))
}

// TestManager_Acquire_Twice tests that back-to-back acquires each replace the
// projection: one drop before every create, never a second live projection.
func TestManager_Acquire_Twice(t *testing.T) {
	m, mock := newManagerFixture(t)
	ctx := context.Background()

	// First acquire: no prior projection.
	mock.AddError(graphNotFound())
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})

	handle, err := m.Acquire(ctx, testSpec(), false)
	require.NoError(t, err)
	require.NoError(t, handle.Release(ctx)) // release drops (default outcome: success)

	// Second acquire: drop succeeds (idempotent even if already gone), then create.
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})

	handle2, err := m.Acquire(ctx, testSpec(), false)
	require.NoError(t, err)
	require.NoError(t, handle2.Release(ctx))

	assert.Len(t, mock.CallsContaining("gds.graph.project"), 2)
	// Two ensure drops plus two release drops.
	assert.Len(t, mock.CallsContaining("gds.graph.drop"), 4)
}

// TestManager_Acquire_DropFailsLoudly tests that a drop failure other than
// "does not exist" aborts the acquire instead of creating over stale state.
func TestManager_Acquire_DropFailsLoudly(t *testing.T) {
	m, mock := newManagerFixture(t)
	ctx := context.Background()

	mock.AddError(&neo4j.Neo4jError{
		Code: "Neo.ClientError.Security.Forbidden",
		Msg:  "Permission denied",
	})

	_, err := m.Acquire(ctx, testSpec(), false)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, ErrCodeDropFailed))
	assert.Empty(t, mock.CallsContaining("gds.graph.project"))

	// The per-name lock was released on the failure path: a retry proceeds.
	mock.AddError(graphNotFound())
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})

	handle, err := m.Acquire(ctx, testSpec(), false)
	require.NoError(t, err)
	require.NoError(t, handle.Release(ctx))
}

// TestManager_Acquire_CreateFails tests create-failure surfacing.
func TestManager_Acquire_CreateFails(t *testing.T) {
	m, mock := newManagerFixture(t)

	mock.AddError(graphNotFound())
	mock.AddError(&neo4j.Neo4jError{
		Code: "Neo.ClientError.Procedure.ProcedureCallFailed",
		Msg:  "Node label `Stock` not found",
	})

	_, err := m.Acquire(context.Background(), testSpec(), false)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, ErrCodeCreateFailed))
}

// TestHandle_Release_Cacheable tests that cacheable handles retain the
// projection on release.
func TestHandle_Release_Cacheable(t *testing.T) {
	m, mock := newManagerFixture(t)
	ctx := context.Background()

	mock.AddError(graphNotFound())
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})

	handle, err := m.Acquire(ctx, testSpec(), true)
	require.NoError(t, err)
	require.NoError(t, handle.Release(ctx))

	// Only the ensure drop ran; release did not tear down.
	assert.Len(t, mock.CallsContaining("gds.graph.drop"), 1)

	// Release is idempotent.
	require.NoError(t, handle.Release(ctx))
	assert.Len(t, mock.CallsContaining("gds.graph.drop"), 1)
}

// TestHandle_Release_DropFailure tests that a failed teardown surfaces and
// still frees the per-name lock.
func TestHandle_Release_DropFailure(t *testing.T) {
	m, mock := newManagerFixture(t)
	ctx := context.Background()

	mock.AddError(graphNotFound())
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})

	handle, err := m.Acquire(ctx, testSpec(), false)
	require.NoError(t, err)

	mock.AddError(&neo4j.Neo4jError{
		Code: "Neo.TransientError.General.DatabaseUnavailable",
		Msg:  "Database is unavailable",
	})

	err = handle.Release(ctx)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, ErrCodeDropFailed))

	// The lock was freed despite the failure: a fresh acquire proceeds.
	mock.AddError(graphNotFound())
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})

	handle2, err := m.Acquire(ctx, testSpec(), false)
	require.NoError(t, err)
	require.NoError(t, handle2.Release(ctx))
}

// TestHandle_SerializesSameName tests that a second acquire on the same name
// blocks until the first handle is released.
func TestHandle_SerializesSameName(t *testing.T) {
	m, mock := newManagerFixture(t)
	ctx := context.Background()

	mock.AddError(graphNotFound())
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})

	handle, err := m.Acquire(ctx, testSpec(), false)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		h2, err := m.Acquire(ctx, testSpec(), false)
		if err == nil {
			h2.Release(ctx)
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire proceeded while first handle was held")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, handle.Release(ctx))

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second acquire never proceeded after release")
	}
}

// TestManager_Exists tests the existence probe.
func TestManager_Exists(t *testing.T) {
	m, mock := newManagerFixture(t)

	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"exists": true}}})
	exists, err := m.Exists(context.Background(), "test_projection")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"exists": false}}})
	exists, err = m.Exists(context.Background(), "test_projection")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestManager_Drop tests idempotent teardown.
func TestManager_Drop(t *testing.T) {
	m, mock := newManagerFixture(t)
	ctx := context.Background()

	// Existing projection: plain success.
	mock.AddResult(graph.QueryResult{Records: []map[string]any{{"graphName": "test_projection"}}})
	require.NoError(t, m.Drop(ctx, "test_projection"))

	// Missing projection: not-found is success.
	mock.AddError(graphNotFound())
	require.NoError(t, m.Drop(ctx, "test_projection"))
}
