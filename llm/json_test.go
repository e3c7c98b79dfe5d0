package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("JSON in tagged code block", func(t *testing.T) {
		response := "Here is the extraction:\n```json\n{\"title\": \"NDA\"}\n```\nDone."
		got, err := ExtractJSON(response)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title": "NDA"}`, got)
	})

	t.Run("JSON in untagged code block", func(t *testing.T) {
		response := "```\n{\"a\": 1}\n```"
		got, err := ExtractJSON(response)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a": 1}`, got)
	})

	t.Run("Raw JSON object in prose", func(t *testing.T) {
		response := `The result is {"title": "Service Agreement", "value": 50000} as requested.`
		got, err := ExtractJSON(response)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title": "Service Agreement", "value": 50000}`, got)
	})

	t.Run("Nested objects and strings with braces", func(t *testing.T) {
		response := `{"a": {"b": "contains } brace"}, "c": [1, 2]}`
		got, err := ExtractJSON(response)
		require.NoError(t, err)
		assert.JSONEq(t, response, got)
	})

	t.Run("Array response", func(t *testing.T) {
		response := `[{"name": "HR"}, {"name": "Engineering"}]`
		got, err := ExtractJSON(response)
		require.NoError(t, err)
		assert.JSONEq(t, response, got)
	})

	t.Run("No JSON is an error", func(t *testing.T) {
		_, err := ExtractJSON("I could not extract any fields from this document.")
		assert.Error(t, err)
	})

	t.Run("Unbalanced braces are an error", func(t *testing.T) {
		_, err := ExtractJSON(`{"title": "broken"`)
		assert.Error(t, err)
	})

	t.Run("Skips non-json code blocks", func(t *testing.T) {
		response := "```python\nprint('hi')\n```\n{\"ok\": true}"
		got, err := ExtractJSON(response)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok": true}`, got)
	})
}

func TestExtractJSONAs(t *testing.T) {
	type record struct {
		Title string  `json:"title"`
		Value float64 `json:"value"`
	}

	t.Run("Unmarshals into typed record", func(t *testing.T) {
		got, err := ExtractJSONAs[record]("```json\n{\"title\": \"SOW\", \"value\": 1200.5}\n```")
		require.NoError(t, err)
		assert.Equal(t, "SOW", got.Title)
		assert.Equal(t, 1200.5, got.Value)
	})

	t.Run("Type mismatch is an error", func(t *testing.T) {
		_, err := ExtractJSONAs[record](`{"title": "SOW", "value": "not a number"}`)
		assert.Error(t, err)
	})
}

func TestGenerateFunc(t *testing.T) {
	fake := GenerateFunc(func(ctx context.Context, prompt string) (string, error) {
		return "answer", nil
	})

	got, err := fake.Generate(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Equal(t, "test", fake.Provider())
	assert.Equal(t, "test-model", fake.Model())
}

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "groq-direct"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}
