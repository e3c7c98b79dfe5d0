package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kgraph-ai/kgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmbedding(seed float32) []float32 {
	embedding := make([]float32, 384)
	for i := range embedding {
		embedding[i] = seed + float32(i)/384.0
	}
	return embedding
}

func TestPassagesNewPassagesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewPassagesDBHandler", func(t *testing.T) {
		passagesDbHandler, err := NewPassagesDBHandler(database, 384, true)
		assert.NoError(t, err, "Expected NewPassagesDBHandler to not return an error")
		require.NotNil(t, passagesDbHandler, "Expected NewPassagesDBHandler to return a non-nil instance")
		require.NotNil(t, passagesDbHandler.db, "Expected NewPassagesDBHandler to have a non-nil database instance")
		require.NotNil(t, passagesDbHandler.db.Instance, "Expected NewPassagesDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewPassagesDBHandler with nil database", func(t *testing.T) {
		_, err := NewPassagesDBHandler(nil, 384, false)
		assert.Error(t, err, "Expected error when creating PassagesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestPassagesInsert(t *testing.T) {
	database := initDB(t)

	passagesDbHandler, err := NewPassagesDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPassagesDBHandler to not return an error")

	t.Run("Insert passage with embedding", func(t *testing.T) {
		passage := &model.Passage{
			Label:     "Document",
			Source:    "Remote Work Policy",
			Content:   "Employees may work remotely up to three days per week.",
			Embedding: testEmbedding(0),
			Metadata:  map[string]interface{}{"chunk_index": 0},
		}

		err := passagesDbHandler.InsertPassage(passage)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.NotEqual(t, uuid.Nil, passage.ID, "Expected inserted passage to have an ID")
		assert.Equal(t, 384, len(passage.Embedding), "Expected embedding to be preserved")
		assert.WithinDuration(t, passage.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")
	})

	// Cleanup
	_, err = passagesDbHandler.DeletePassagesByLabel("Document")
	require.NoError(t, err)
}

func TestPassagesGet(t *testing.T) {
	database := initDB(t)

	passagesDbHandler, err := NewPassagesDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPassagesDBHandler to not return an error")

	passage := &model.Passage{
		Label:     "Document",
		Source:    "Expense Policy",
		Content:   "Expenses above 500 euros require manager approval.",
		Embedding: testEmbedding(0.5),
		Metadata:  map[string]interface{}{"chunk_index": 0},
	}
	err = passagesDbHandler.InsertPassage(passage)
	require.NoError(t, err)

	t.Run("Select passage by ID", func(t *testing.T) {
		got, err := passagesDbHandler.SelectPassage(passage.ID)
		assert.NoError(t, err, "Expected SelectPassage to not return an error")
		require.NotNil(t, got)
		assert.Equal(t, passage.ID, got.ID)
		assert.Equal(t, passage.Source, got.Source)
		assert.Equal(t, passage.Content, got.Content)
		assert.Equal(t, 384, len(got.Embedding))
	})

	t.Run("Select passage with unknown ID", func(t *testing.T) {
		_, err := passagesDbHandler.SelectPassage(uuid.New())
		assert.Error(t, err, "Expected error for unknown passage ID")
	})

	// Cleanup
	_, err = passagesDbHandler.DeletePassagesByLabel("Document")
	require.NoError(t, err)
}

func TestPassagesSelectByLabel(t *testing.T) {
	database := initDB(t)

	passagesDbHandler, err := NewPassagesDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPassagesDBHandler to not return an error")

	for i := 0; i < 3; i++ {
		passage := &model.Passage{
			Label:     "Policy",
			Source:    "Travel Policy",
			Content:   "Travel policy section content.",
			Embedding: testEmbedding(float32(i)),
			Metadata:  map[string]interface{}{"chunk_index": i},
		}
		err = passagesDbHandler.InsertPassage(passage)
		require.NoError(t, err)
	}

	t.Run("Select all passages under label", func(t *testing.T) {
		passages, err := passagesDbHandler.SelectPassagesByLabel("Policy")
		assert.NoError(t, err)
		assert.Len(t, passages, 3)
	})

	t.Run("Select passages under unknown label", func(t *testing.T) {
		passages, err := passagesDbHandler.SelectPassagesByLabel("Unknown")
		assert.NoError(t, err)
		assert.Empty(t, passages)
	})

	// Cleanup
	_, err = passagesDbHandler.DeletePassagesByLabel("Policy")
	require.NoError(t, err)
}

func TestPassagesSimilarity(t *testing.T) {
	database := initDB(t)

	passagesDbHandler, err := NewPassagesDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPassagesDBHandler to not return an error")

	// Query vector aligned with the first axis
	queryEmbedding := make([]float32, 384)
	queryEmbedding[0] = 1.0

	// Close passage shares the direction of the query
	closeEmbedding := make([]float32, 384)
	closeEmbedding[0] = 0.9
	closeEmbedding[1] = 0.1

	// Far passage points along a different axis
	farEmbedding := make([]float32, 384)
	farEmbedding[383] = 1.0

	closePassage := &model.Passage{
		Label:     "Document",
		Source:    "Remote Work Policy",
		Content:   "Employees may work remotely up to three days per week.",
		Embedding: closeEmbedding,
	}
	farPassage := &model.Passage{
		Label:     "Document",
		Source:    "Office Map",
		Content:   "The cafeteria is on the second floor.",
		Embedding: farEmbedding,
	}
	require.NoError(t, passagesDbHandler.InsertPassage(closePassage))
	require.NoError(t, passagesDbHandler.InsertPassage(farPassage))

	t.Run("Similarity search orders by distance", func(t *testing.T) {
		results, err := passagesDbHandler.SelectPassagesBySimilarity(queryEmbedding, 10, "Document")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, closePassage.ID, results[0].ID, "Expected closest passage first")
		assert.Greater(t, results[0].Similarity, results[1].Similarity)
	})

	t.Run("Similarity search respects limit", func(t *testing.T) {
		results, err := passagesDbHandler.SelectPassagesBySimilarity(queryEmbedding, 1, "Document")
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("Similarity search scoped to label", func(t *testing.T) {
		results, err := passagesDbHandler.SelectPassagesBySimilarity(queryEmbedding, 10, "Contract")
		require.NoError(t, err)
		assert.Empty(t, results, "Expected no results for a label with no passages")
	})

	// Cleanup
	_, err = passagesDbHandler.DeletePassagesByLabel("Document")
	require.NoError(t, err)
}

func TestPassagesDeleteAndCount(t *testing.T) {
	database := initDB(t)

	passagesDbHandler, err := NewPassagesDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewPassagesDBHandler to not return an error")

	for i := 0; i < 2; i++ {
		passage := &model.Passage{
			Label:     "Contract",
			Source:    "Acme NDA",
			Content:   "Confidentiality obligations survive termination.",
			Embedding: testEmbedding(float32(i)),
		}
		require.NoError(t, passagesDbHandler.InsertPassage(passage))
	}

	t.Run("Count passages under label", func(t *testing.T) {
		total, err := passagesDbHandler.CountPassages("Contract")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("Delete passages by label returns count", func(t *testing.T) {
		deleted, err := passagesDbHandler.DeletePassagesByLabel("Contract")
		assert.NoError(t, err)
		assert.Equal(t, 2, deleted)

		total, err := passagesDbHandler.CountPassages("Contract")
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("Delete passages under unknown label is a no-op", func(t *testing.T) {
		deleted, err := passagesDbHandler.DeletePassagesByLabel("Unknown")
		assert.NoError(t, err)
		assert.Equal(t, 0, deleted)
	})
}
