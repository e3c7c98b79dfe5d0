package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// existingModel creates a fake local model directory so PrepareModel
// resolves it without touching the network.
func existingModel(t *testing.T, sanitizedName string) string {
	t.Helper()
	modelPath := filepath.Join("./models", sanitizedName)
	require.NoError(t, os.MkdirAll(modelPath, 0750), "Expected directory creation to succeed")
	t.Cleanup(func() { os.RemoveAll(modelPath) })
	return modelPath
}

func TestPrepareModel(t *testing.T) {
	t.Run("Return existing model path without downloading", func(t *testing.T) {
		modelPath := existingModel(t, "sentence-transformers_all-MiniLM-L6-v2")

		path, err := PrepareModel("sentence-transformers/all-MiniLM-L6-v2", "")

		assert.NoError(t, err, "Expected PrepareModel to not return an error for existing model")
		assert.Equal(t, modelPath, path, "Expected returned path to match existing model path")
	})

	t.Run("Sanitize model name with slash", func(t *testing.T) {
		expectedPath := existingModel(t, "kgraph-ai_passage-embedder")

		path, err := PrepareModel("kgraph-ai/passage-embedder", "")

		assert.NoError(t, err, "Expected PrepareModel to not return an error")
		assert.Equal(t, expectedPath, path, "Expected path to use sanitized name")
	})

	t.Run("Keep model name without slash", func(t *testing.T) {
		expectedPath := existingModel(t, "local-embedder")

		path, err := PrepareModel("local-embedder", "")

		assert.NoError(t, err, "Expected PrepareModel to not return an error")
		assert.Equal(t, expectedPath, path, "Expected path to use model name directly")
	})

	t.Run("Ignore onnx file path for existing model", func(t *testing.T) {
		modelPath := existingModel(t, "kgraph-ai_onnx-embedder")

		path, err := PrepareModel("kgraph-ai/onnx-embedder", "onnx/model.onnx")

		assert.NoError(t, err, "Expected PrepareModel with onnx path to not return an error")
		assert.Equal(t, modelPath, path, "Expected existing model to short-circuit the download")
	})
}
