package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kgraph-ai/kgraph/graph"
	"github.com/kgraph-ai/kgraph/llm"
	"github.com/kgraph-ai/kgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCypherResolver(t *testing.T) {
	snapshot := companySnapshot()
	mock := graph.NewMockClient(snapshot)
	generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
		return "MATCH (e:Employee) RETURN e.name", nil
	})

	t.Run("Valid call NewCypherResolver", func(t *testing.T) {
		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		assert.NoError(t, err)
		require.NotNil(t, r)
		assert.Same(t, snapshot, r.Snapshot())
	})

	t.Run("Invalid call NewCypherResolver with nil snapshot", func(t *testing.T) {
		_, err := NewCypherResolver(nil, generator, mock, 0, 0, testLogger())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "schema snapshot is nil")
	})

	t.Run("Invalid call NewCypherResolver with nil generator", func(t *testing.T) {
		_, err := NewCypherResolver(snapshot, nil, mock, 0, 0, testLogger())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "generator is nil")
	})

	t.Run("Invalid call NewCypherResolver with nil graph client", func(t *testing.T) {
		_, err := NewCypherResolver(snapshot, generator, nil, 0, 0, testLogger())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "graph client is nil")
	})
}

func TestResolverResolve(t *testing.T) {
	snapshot := companySnapshot()

	t.Run("Valid question resolves to rows", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		mock.QueryFunc = func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
			return []map[string]interface{}{
				{"name": "Alice Johnson", "title": "Full Stack Developer"},
				{"name": "Bob Smith", "title": "Data Engineer"},
			}, nil
		}
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "```cypher\nMATCH (e:Employee) RETURN e.name, e.title\n```", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 5*time.Second, 50, testLogger())
		require.NoError(t, err)

		result, query, err := r.Resolve(context.Background(), "list employees", nil)
		require.NoError(t, err)
		assert.Equal(t, "MATCH (e:Employee) RETURN e.name, e.title", query, "Expected fences stripped")
		require.Len(t, result.Rows, 2)
		assert.Equal(t, []string{"name", "title"}, result.Columns)
		assert.False(t, result.Truncated)
		assert.Equal(t, []string{"MATCH (e:Employee) RETURN e.name, e.title"}, mock.Queries)
	})

	t.Run("Model failure is a generation error", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("rate limited")
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		require.NoError(t, err)

		_, _, err = r.Resolve(context.Background(), "list employees", nil)
		var genErr *QueryGenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, "list employees", genErr.Question)
	})

	t.Run("Empty model output is a generation error", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "```\n```", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		require.NoError(t, err)

		_, _, err = r.Resolve(context.Background(), "list employees", nil)
		var genErr *QueryGenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Contains(t, err.Error(), "no query")
	})

	t.Run("Validation failure never executes", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "MATCH (n:Employee) DETACH DELETE n", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		require.NoError(t, err)

		_, query, err := r.Resolve(context.Background(), "delete everyone", nil)
		var valErr *QueryValidationError
		require.ErrorAs(t, err, &valErr)
		assert.NotEmpty(t, query, "Rejected query text is still returned for diagnostics")
		assert.Empty(t, mock.Queries, "Expected no execution after failed validation")
	})

	t.Run("Off-schema query never executes", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "MATCH (d:Department) RETURN d.name", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		require.NoError(t, err)

		_, _, err = r.Resolve(context.Background(), "list departments", nil)
		var genErr *QueryGenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Empty(t, mock.Queries)
	})

	t.Run("Store failure is an execution error with question and query", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		mock.QueryFunc = func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
			return nil, errors.New("transient outage")
		}
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "MATCH (e:Employee) RETURN e.name", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		require.NoError(t, err)

		_, _, err = r.Resolve(context.Background(), "list employees", nil)
		var execErr *QueryExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, "list employees", execErr.Question)
		assert.Equal(t, "MATCH (e:Employee) RETURN e.name", execErr.Query)
	})

	t.Run("Rows beyond the cap are truncated and flagged", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		mock.QueryFunc = func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
			rows := make([]map[string]interface{}, 10)
			for i := range rows {
				rows[i] = map[string]interface{}{"name": "Employee"}
			}
			return rows, nil
		}
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "MATCH (e:Employee) RETURN e.name", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 3, testLogger())
		require.NoError(t, err)

		result, _, err := r.Resolve(context.Background(), "list employees", nil)
		require.NoError(t, err)
		assert.Len(t, result.Rows, 3)
		assert.True(t, result.Truncated, "Truncation is a flag, not an error")
	})

	t.Run("Per-call row cap above the configured default is honored", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		mock.QueryFunc = func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
			rows := make([]map[string]interface{}, 80)
			for i := range rows {
				rows[i] = map[string]interface{}{"name": "Employee"}
			}
			return rows, nil
		}
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "MATCH (e:Employee) RETURN e.name", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		require.NoError(t, err)

		result, _, err := r.ResolveBounded(context.Background(), "list employees", nil, 0, 100)
		require.NoError(t, err)
		assert.Len(t, result.Rows, 80, "A cap above the default must not clip the result")
		assert.False(t, result.Truncated)
	})

	t.Run("Non-positive per-call bounds fall back to the configured cap", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		mock.QueryFunc = func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
			rows := make([]map[string]interface{}, 10)
			for i := range rows {
				rows[i] = map[string]interface{}{"name": "Employee"}
			}
			return rows, nil
		}
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "MATCH (e:Employee) RETURN e.name", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 3, testLogger())
		require.NoError(t, err)

		result, _, err := r.ResolveBounded(context.Background(), "list employees", nil, 0, 0)
		require.NoError(t, err)
		assert.Len(t, result.Rows, 3)
		assert.True(t, result.Truncated)
	})

	t.Run("Hints appear in prompt but never in the query", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		mock.QueryFunc = func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
			return nil, nil
		}

		var seenPrompt string
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			seenPrompt = prompt
			return "MATCH (c:Contract) RETURN c.title", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		require.NoError(t, err)

		hints := []*model.Passage{
			{Source: "Acme NDA", Content: "The Acme contract covers consulting services."},
		}
		_, query, err := r.Resolve(context.Background(), "what contracts do we have with acme", hints)
		require.NoError(t, err)

		assert.Contains(t, seenPrompt, "Acme NDA", "Hint source should be in the prompt")
		assert.Contains(t, seenPrompt, "consulting services", "Hint content should be in the prompt")
		assert.NotContains(t, query, "consulting services", "Hints never reach the query text")
	})

	t.Run("Same question yields same query at temperature zero", func(t *testing.T) {
		mock := graph.NewMockClient(snapshot)
		mock.QueryFunc = func(cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
			return nil, nil
		}
		generator := llm.GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
			return "MATCH (p:Project) WHERE p.status = 'active' RETURN p.name", nil
		})

		r, err := NewCypherResolver(snapshot, generator, mock, 0, 0, testLogger())
		require.NoError(t, err)

		_, first, err := r.Resolve(context.Background(), "show active projects", nil)
		require.NoError(t, err)
		_, second, err := r.Resolve(context.Background(), "show active projects", nil)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
