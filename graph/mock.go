package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/kgraph-ai/kgraph/model"
)

// MockClient is an in-memory Client for tests. Behaviour is scripted through
// the exported function fields; executed query text is recorded.
type MockClient struct {
	mu sync.Mutex

	// QueryFunc handles Query and QueryLimited calls when set
	QueryFunc func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error)

	// ExecuteFunc handles Execute calls when set
	ExecuteFunc func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error)

	// Snapshot is returned by Introspect; IntrospectErr takes precedence
	Snapshot      *model.SchemaSnapshot
	IntrospectErr error

	// Recorded calls
	Queries []string
	Writes  []string

	// IntrospectCalls counts schema reads
	IntrospectCalls int

	closed bool
}

// NewMockClient creates a mock backed by the given snapshot
func NewMockClient(snapshot *model.SchemaSnapshot) *MockClient {
	return &MockClient{Snapshot: snapshot}
}

func (m *MockClient) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock client closed")
	}
	return nil
}

func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockClient) Query(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	rows, _, err := m.QueryLimited(ctx, cypher, params, 0)
	return rows, err
}

func (m *MockClient) QueryLimited(ctx context.Context, cypher string, params map[string]interface{}, maxRows int) ([]map[string]interface{}, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	m.Queries = append(m.Queries, cypher)
	queryFunc := m.QueryFunc
	m.mu.Unlock()

	if queryFunc == nil {
		return nil, false, nil
	}

	rows, err := queryFunc(cypher, params)
	if err != nil {
		return nil, false, err
	}
	if maxRows > 0 && len(rows) > maxRows {
		return rows[:maxRows], true, nil
	}
	return rows, false, nil
}

func (m *MockClient) Execute(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Writes = append(m.Writes, cypher)
	executeFunc := m.ExecuteFunc
	m.mu.Unlock()

	if executeFunc == nil {
		return nil, nil
	}
	return executeFunc(cypher, params)
}

func (m *MockClient) Introspect(ctx context.Context) (*model.SchemaSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IntrospectCalls++
	if m.IntrospectErr != nil {
		return nil, m.IntrospectErr
	}
	if m.Snapshot == nil {
		return nil, fmt.Errorf("no snapshot configured")
	}
	return m.Snapshot, nil
}

// SetSnapshot swaps the snapshot returned by subsequent Introspect calls
func (m *MockClient) SetSnapshot(snapshot *model.SchemaSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshot = snapshot
}
