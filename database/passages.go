package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/model"
	loadSql "github.com/kgraph-ai/kgraph/sql"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PassagesDBHandlerFunctions defines the interface for passage database operations.
type PassagesDBHandlerFunctions interface {
	InsertPassage(passage *model.Passage) error
	SelectPassage(id uuid.UUID) (*model.Passage, error)
	SelectPassagesByLabel(label string) ([]*model.Passage, error)
	SelectPassagesBySimilarity(embedding []float32, limit int, label string) ([]*model.Passage, error)
	DeletePassagesByLabel(label string) (int, error)
	CountPassages(label string) (int64, error)
}

// PassagesDBHandler handles passage-related database operations
type PassagesDBHandler struct {
	db *helper.Database
}

// NewPassagesDBHandler creates a new passages database handler.
// It initializes the database connection and loads passage-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewPassagesDBHandler(db *helper.Database, embeddingDim int, force bool) (*PassagesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	passagesDbHandler := &PassagesDBHandler{
		db: db,
	}

	err := loadSql.LoadPassagesSql(passagesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load passages sql", err)
	}

	err = passagesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized PassagesDBHandler")

	return passagesDbHandler, nil
}

// CreateTable creates the 'passages' table in the database.
// If the table already exists, it does not create it again.
// It also creates the label and vector indexes.
func (h *PassagesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init_passages() function to create the table and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_passages($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing passages table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table passages")

	return nil
}

// InsertPassage inserts a new passage
func (h *PassagesDBHandler) InsertPassage(passage *model.Passage) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_passage($1, $2, $3, $4, $5)`,
		passage.Label,
		passage.Source,
		passage.Content,
		pq.Array(passage.Embedding),
		passage.Metadata,
	)

	var embedding pgvector.Vector
	err := row.Scan(
		&passage.ID,
		&passage.Label,
		&passage.Source,
		&passage.Content,
		&embedding,
		&passage.Metadata,
		&passage.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	passage.Embedding = embedding.Slice()

	return nil
}

// SelectPassage retrieves a passage by ID
func (h *PassagesDBHandler) SelectPassage(id uuid.UUID) (*model.Passage, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_passage($1)`,
		id,
	)

	passage := &model.Passage{}
	var embedding pgvector.Vector
	err := row.Scan(
		&passage.ID,
		&passage.Label,
		&passage.Source,
		&passage.Content,
		&embedding,
		&passage.Metadata,
		&passage.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	passage.Embedding = embedding.Slice()

	return passage, nil
}

// SelectPassagesByLabel retrieves all passages indexed under a label
func (h *PassagesDBHandler) SelectPassagesByLabel(label string) ([]*model.Passage, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_passages_by_label($1)`,
		label,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var passages []*model.Passage
	for rows.Next() {
		passage := &model.Passage{}
		var embedding pgvector.Vector
		err := rows.Scan(
			&passage.ID,
			&passage.Label,
			&passage.Source,
			&passage.Content,
			&embedding,
			&passage.Metadata,
			&passage.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		passage.Embedding = embedding.Slice()
		passages = append(passages, passage)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return passages, nil
}

// SelectPassagesBySimilarity performs vector similarity search under a label.
// Results are ordered by cosine distance and carry the similarity score.
func (h *PassagesDBHandler) SelectPassagesBySimilarity(embedding []float32, limit int, label string) ([]*model.Passage, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_passages_by_similarity($1, $2, $3)`,
		pq.Array(embedding),
		limit,
		label,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.Passage
	for rows.Next() {
		passage := &model.Passage{}
		err := rows.Scan(
			&passage.ID,
			&passage.Label,
			&passage.Source,
			&passage.Content,
			&passage.Metadata,
			&passage.CreatedAt,
			&passage.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, passage)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// DeletePassagesByLabel removes all passages under a label and returns
// the number of deleted rows. Used before a rebuild of the label.
func (h *PassagesDBHandler) DeletePassagesByLabel(label string) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRow(
		`SELECT delete_passages_by_label($1)`,
		label,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}

// CountPassages counts passages under a label
func (h *PassagesDBHandler) CountPassages(label string) (int64, error) {
	var total int64
	err := h.db.Instance.QueryRow(
		`SELECT count_passages($1)`,
		label,
	).Scan(&total)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return total, nil
}
