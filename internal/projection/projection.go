// Package projection manages named in-memory graph projections, the required
// input to every algorithm call. A projection is an ephemeral engine-global
// resource addressed by a logical name; the manager guarantees at most one
// live projection per name and guards each name with a mutex held for the
// full acquire+use window, so concurrent callers sharing a name cannot race
// the drop/create sequence against an in-flight algorithm call.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ngudow/SMP-graph/internal/graph"
	"github.com/ngudow/SMP-graph/internal/types"
)

// Projection error codes
const (
	ErrCodeInvalidSpec  types.ErrorCode = "PROJECTION_INVALID_SPEC"
	ErrCodeDropFailed   types.ErrorCode = "PROJECTION_DROP_FAILED"
	ErrCodeCreateFailed types.ErrorCode = "PROJECTION_CREATE_FAILED"
	ErrCodeExistsFailed types.ErrorCode = "PROJECTION_EXISTS_FAILED"
)

// Orientation controls whether a relationship type is treated as directed or
// undirected within a projection. Community detection requires UNDIRECTED;
// centrality runs on the natural direction.
type Orientation string

const (
	OrientationNatural    Orientation = "NATURAL"
	OrientationUndirected Orientation = "UNDIRECTED"
	OrientationReverse    Orientation = "REVERSE"
)

// IsValid checks if the Orientation is a valid value.
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationNatural, OrientationUndirected, OrientationReverse:
		return true
	default:
		return false
	}
}

// Relationship names one relationship type included in a projection together
// with its orientation.
type Relationship struct {
	Type        string
	Orientation Orientation
}

// Spec describes a named projection: which node labels and relationship types
// it materializes. Two specs with the same Name address the same engine-side
// resource.
type Spec struct {
	Name          string
	NodeLabels    []string
	Relationships []Relationship
}

// Validate checks that the spec is complete and its orientations are valid.
func (s Spec) Validate() error {
	if s.Name == "" {
		return types.NewError(ErrCodeInvalidSpec, "projection name cannot be empty")
	}
	if len(s.NodeLabels) == 0 {
		return types.NewError(ErrCodeInvalidSpec, "projection requires at least one node label")
	}
	if len(s.Relationships) == 0 {
		return types.NewError(ErrCodeInvalidSpec, "projection requires at least one relationship type")
	}
	for _, rel := range s.Relationships {
		if rel.Type == "" {
			return types.NewError(ErrCodeInvalidSpec, "relationship type cannot be empty")
		}
		if !rel.Orientation.IsValid() {
			return types.NewError(ErrCodeInvalidSpec,
				fmt.Sprintf("invalid orientation %q for relationship %s", rel.Orientation, rel.Type))
		}
	}
	return nil
}

// relationshipProjection builds the GDS relationship projection parameter:
// a map from relationship type to its configuration.
func (s Spec) relationshipProjection() map[string]any {
	rels := make(map[string]any, len(s.Relationships))
	for _, rel := range s.Relationships {
		rels[rel.Type] = map[string]any{
			"type":        rel.Type,
			"orientation": string(rel.Orientation),
		}
	}
	return rels
}

// Manager owns the lifecycle of named projections. All methods are safe for
// concurrent use; operations on the same projection name are serialized.
type Manager struct {
	client graph.Client
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a projection Manager over the given graph client.
func NewManager(client graph.Client) *Manager {
	return &Manager{
		client: client,
		logger: slog.Default().With("component", "projection"),
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding the given projection name.
func (m *Manager) lockFor(name string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[name] = lock
	}
	return lock
}

// Acquire materializes the projection described by spec and returns a Handle
// holding the per-name lock. The caller must Release the handle when its
// algorithm call completes; until then no other caller can touch the name.
//
// Any existing projection under the name is dropped first. Only the engine's
// "graph does not exist" signal is treated as success during that teardown;
// every other drop failure aborts the acquire rather than risking an
// algorithm run against stale projection contents.
func (m *Manager) Acquire(ctx context.Context, spec Spec, cacheable bool) (*Handle, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	lock := m.lockFor(spec.Name)
	lock.Lock()

	if err := m.drop(ctx, spec.Name); err != nil {
		lock.Unlock()
		return nil, err
	}

	cypher := `
		CALL gds.graph.project($name, $labels, $relationships)
		YIELD graphName, nodeCount, relationshipCount
		RETURN graphName, nodeCount, relationshipCount
	`

	params := map[string]any{
		"name":          spec.Name,
		"labels":        spec.NodeLabels,
		"relationships": spec.relationshipProjection(),
	}

	result, err := m.client.Execute(ctx, cypher, params)
	if err != nil {
		lock.Unlock()
		return nil, types.WrapError(ErrCodeCreateFailed,
			fmt.Sprintf("failed to create projection %s", spec.Name), err)
	}

	if len(result.Records) > 0 {
		m.logger.Debug("projection created",
			"name", spec.Name,
			"nodes", result.Records[0]["nodeCount"],
			"relationships", result.Records[0]["relationshipCount"])
	}

	return &Handle{
		name:      spec.Name,
		manager:   m,
		lock:      lock,
		cacheable: cacheable,
	}, nil
}

// Exists reports whether a projection with the given name currently exists.
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	cypher := `CALL gds.graph.exists($name) YIELD exists RETURN exists`

	record, found, err := m.client.QuerySingle(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return false, types.WrapError(ErrCodeExistsFailed,
			fmt.Sprintf("failed to check projection %s", name), err)
	}
	if !found {
		return false, nil
	}

	exists, _ := record["exists"].(bool)
	return exists, nil
}

// Drop removes the named projection if it exists. Safe to call for a name
// that was never projected; serialized against Acquire on the same name.
func (m *Manager) Drop(ctx context.Context, name string) error {
	lock := m.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	return m.drop(ctx, name)
}

// drop tears down the projection, treating "does not exist" as success.
// Callers must hold the per-name lock.
func (m *Manager) drop(ctx context.Context, name string) error {
	cypher := `CALL gds.graph.drop($name) YIELD graphName RETURN graphName`

	_, err := m.client.Execute(ctx, cypher, map[string]any{"name": name})
	if err == nil {
		return nil
	}
	if graph.IsGraphNotFound(err) {
		return nil
	}

	return types.WrapError(ErrCodeDropFailed,
		fmt.Sprintf("failed to drop projection %s", name), err)
}

// Handle is a guarded reference to a live projection. It holds the per-name
// lock from Acquire until Release.
type Handle struct {
	name      string
	manager   *Manager
	lock      *sync.Mutex
	cacheable bool
	released  bool
}

// Name returns the projection's logical name.
func (h *Handle) Name() string {
	return h.name
}

// Release ends the caller's exclusive use of the projection name. Unless the
// handle was acquired cacheable, the projection itself is dropped; a
// cacheable handle retains it for reuse by a later Acquire. Release is
// idempotent; only the first call has effect.
func (h *Handle) Release(ctx context.Context) error {
	if h.released {
		return nil
	}
	h.released = true
	defer h.lock.Unlock()

	if h.cacheable {
		return nil
	}
	if err := h.manager.drop(ctx, h.name); err != nil {
		// Adapters release in a defer and discard the result; log here so a
		// failed teardown is never silent.
		h.manager.logger.Warn("projection teardown failed",
			"name", h.name,
			"error", err)
		return err
	}
	return nil
}
