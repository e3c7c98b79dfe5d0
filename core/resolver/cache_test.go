package resolver

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/kgraph-ai/kgraph/graph"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return helper.NewLogger(os.Stdout, slog.LevelError)
}

func companySnapshot() *model.SchemaSnapshot {
	return &model.SchemaSnapshot{
		Labels: []model.NodeLabel{
			{Name: "Employee", Count: 40, Properties: []string{"name", "title", "department"}},
			{Name: "Project", Count: 12, Properties: []string{"name", "status"}},
			{Name: "Contract", Count: 5, Properties: []string{"title", "client_name", "value"}},
		},
		Relationships: []model.RelationshipType{
			{Name: "WORKS_ON", Count: 60},
			{Name: "FOR_CLIENT", Count: 5},
		},
	}
}

func TestSchemaCache(t *testing.T) {
	t.Run("Get introspects once and caches", func(t *testing.T) {
		mock := graph.NewMockClient(companySnapshot())
		cache := NewSchemaCache(mock, testLogger())

		first, err := cache.Get(context.Background())
		require.NoError(t, err)
		second, err := cache.Get(context.Background())
		require.NoError(t, err)

		assert.Same(t, first, second, "Expected cached snapshot to be reused")
		assert.Equal(t, 1, mock.IntrospectCalls, "Expected exactly one introspection")
	})

	t.Run("Invalidate forces re-introspection", func(t *testing.T) {
		mock := graph.NewMockClient(companySnapshot())
		cache := NewSchemaCache(mock, testLogger())

		_, err := cache.Get(context.Background())
		require.NoError(t, err)

		cache.Invalidate()

		refreshed := companySnapshot()
		refreshed.Labels = append(refreshed.Labels, model.NodeLabel{Name: "Policy", Count: 3, Properties: []string{"title"}})
		mock.SetSnapshot(refreshed)

		snapshot, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.True(t, snapshot.HasLabel("Policy"), "Expected refreshed vocabulary after invalidation")
		assert.Equal(t, 2, mock.IntrospectCalls)
	})

	t.Run("Introspection failure is SchemaUnavailable", func(t *testing.T) {
		mock := graph.NewMockClient(nil)
		mock.IntrospectErr = errors.New("connection refused")
		cache := NewSchemaCache(mock, testLogger())

		_, err := cache.Get(context.Background())
		require.Error(t, err)

		var unavailable *SchemaUnavailable
		assert.ErrorAs(t, err, &unavailable)
		assert.Contains(t, err.Error(), "schema unavailable")
	})

	t.Run("Failure is not cached", func(t *testing.T) {
		mock := graph.NewMockClient(companySnapshot())
		mock.IntrospectErr = errors.New("connection refused")
		cache := NewSchemaCache(mock, testLogger())

		_, err := cache.Get(context.Background())
		require.Error(t, err)

		mock.IntrospectErr = nil
		snapshot, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.True(t, snapshot.HasLabel("Employee"))
	})
}
