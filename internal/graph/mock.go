package graph

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ngudow/SMP-graph/internal/types"
)

// MockCall represents a recorded method call on the mock graph client.
type MockCall struct {
	Method    string
	Cypher    string
	Params    map[string]any
	Timestamp time.Time
}

// mockOutcome is a scripted response for one Query/Execute call.
type mockOutcome struct {
	result QueryResult
	err    error
}

// MockClient is a mock implementation of Client for testing.
// Responses are scripted as a FIFO queue of outcomes, one consumed per
// Query/Execute call, so tests can make an early call fail and a later
// call succeed (e.g. to exercise procedure fallbacks). All method calls
// are recorded for verification.
type MockClient struct {
	mu sync.RWMutex

	connected    bool
	healthStatus types.HealthStatus
	calls        []MockCall

	outcomes     []mockOutcome
	connectError error
	closeError   error
}

// NewMockClient creates a new mock graph client for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		healthStatus: types.Healthy("mock graph client"),
		calls:        make([]MockCall, 0),
		outcomes:     make([]mockOutcome, 0),
	}
}

// Connect records the call and simulates connection.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Connect", "", nil)

	if m.connectError != nil {
		return m.connectError
	}

	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Close", "", nil)

	if m.closeError != nil {
		return m.closeError
	}

	m.connected = false
	return nil
}

// Health records the call and returns the configured health status.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Health", "", nil)

	if !m.connected {
		return types.Unhealthy("not connected")
	}

	return m.healthStatus
}

// Query records the call and consumes the next scripted outcome.
func (m *MockClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return m.consume("Query", cypher, params)
}

// Execute records the call and consumes the next scripted outcome.
func (m *MockClient) Execute(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return m.consume("Execute", cypher, params)
}

// QuerySingle records the call and returns the first record of the next
// scripted outcome, mirroring the real client's zero-rows-is-not-an-error
// contract.
func (m *MockClient) QuerySingle(ctx context.Context, cypher string, params map[string]any) (map[string]any, bool, error) {
	result, err := m.consume("QuerySingle", cypher, params)
	if err != nil {
		return nil, false, err
	}
	if len(result.Records) == 0 {
		return nil, false, nil
	}
	return result.Records[0], true, nil
}

func (m *MockClient) consume(method, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(method, cypher, params)

	if !m.connected {
		return QueryResult{}, types.NewError(ErrCodeConnectionClosed, "not connected")
	}

	if len(m.outcomes) > 0 {
		outcome := m.outcomes[0]
		m.outcomes = m.outcomes[1:]
		if outcome.err != nil {
			return QueryResult{}, types.WrapError(ErrCodeQueryFailed,
				"query execution failed", outcome.err)
		}
		return outcome.result, nil
	}

	// Default: empty-but-successful result.
	return QueryResult{
		Records: []map[string]any{},
		Columns: []string{},
		Summary: QuerySummary{},
	}, nil
}

func (m *MockClient) record(method, cypher string, params map[string]any) {
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Cypher:    cypher,
		Params:    params,
		Timestamp: time.Now(),
	})
}

// AddResult appends a successful outcome to the response queue.
func (m *MockClient) AddResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, mockOutcome{result: result})
}

// AddError appends a failing outcome to the response queue. The error is
// wrapped the same way the real client wraps engine failures, so callers
// can unwrap it to the original cause.
func (m *MockClient) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, mockOutcome{err: err})
}

// SetHealthStatus configures what Health() should return.
func (m *MockClient) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// SetConnectError configures Connect() to return an error.
func (m *MockClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetCloseError configures Close() to return an error.
func (m *MockClient) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeError = err
}

// Calls returns all recorded method calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallsContaining returns all recorded Query/Execute calls whose Cypher text
// contains the given substring.
func (m *MockClient) CallsContaining(substr string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, 0)
	for _, call := range m.calls {
		if strings.Contains(call.Cypher, substr) {
			calls = append(calls, call)
		}
	}
	return calls
}

// CallCount returns the total number of method calls.
func (m *MockClient) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// IsConnected returns whether the mock is in connected state.
func (m *MockClient) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}
