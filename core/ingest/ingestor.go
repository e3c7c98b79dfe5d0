package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kgraph-ai/kgraph/graph"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/llm"
	"github.com/kgraph-ai/kgraph/model"
)

// Ingestor classifies document text and extracts it into the graph with a
// category-specific shape: contracts and policies become typed nodes linked
// to existing entities, anything else goes through open entity extraction.
type Ingestor struct {
	graph     graph.Client
	generator llm.Generator
	log       *slog.Logger
}

// NewIngestor creates a new ingestor
func NewIngestor(graphClient graph.Client, generator llm.Generator, logger *slog.Logger) (*Ingestor, error) {
	if graphClient == nil {
		return nil, helper.NewError("ingestor validation", fmt.Errorf("graph client is nil"))
	}
	if generator == nil {
		return nil, helper.NewError("ingestor validation", fmt.Errorf("generator is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{graph: graphClient, generator: generator, log: logger}, nil
}

// Classify determines the document category from a bounded excerpt.
// Classification never fails: an unreachable model or an answer outside the
// closed set resolves to the general category.
func (i *Ingestor) Classify(ctx context.Context, text string) model.Category {
	response, err := i.generator.Generate(ctx, classificationPrompt(text))
	if err != nil {
		i.log.Warn("Document classification failed, treating as general",
			slog.String("error", err.Error()),
		)
		return model.CategoryGeneral
	}

	category := model.ParseCategory(strings.ToLower(strings.TrimSpace(response)))
	i.log.Info("Document classified", slog.String("category", string(category)))
	return category
}

// Ingest extracts the document into the graph. The category from hints skips
// classification. Extraction failures on the contract and policy paths fall
// back to a minimal record built from hints; graph write failures are fatal.
func (i *Ingestor) Ingest(ctx context.Context, docText string, hints *model.DocumentHints) (*model.IngestResult, error) {
	if hints == nil {
		hints = &model.DocumentHints{}
	}

	category := hints.Category
	if category == "" {
		category = i.Classify(ctx, docText)
	}

	switch category {
	case model.CategoryContract:
		return i.ingestContract(ctx, docText, hints)
	case model.CategoryPolicy:
		return i.ingestPolicy(ctx, docText, hints)
	default:
		return i.ingestGeneral(ctx, docText)
	}
}

const createContractQuery = `
CREATE (c:Contract {
	id: $id,
	title: $title,
	type: $type,
	start_date: date($start_date),
	end_date: date($end_date),
	value: $value,
	status: 'active',
	terms: $terms,
	text: $text,
	created_at: datetime()
})
RETURN c`

const linkContractQuery = `
MATCH (c:Contract {id: $contract_id})
MATCH (cl:Client)
WHERE toLower(cl.name) CONTAINS toLower($client_name)
MERGE (c)-[:FOR_CLIENT]->(cl)
RETURN cl.name AS linked_client`

func (i *Ingestor) ingestContract(ctx context.Context, docText string, hints *model.DocumentHints) (*model.IngestResult, error) {
	record, fallback := i.extractContract(ctx, docText, hints)

	id := uuid.New()
	_, err := i.graph.Execute(ctx, createContractQuery, map[string]interface{}{
		"id":         id.String(),
		"title":      withDefault(record.Title, "Untitled Contract"),
		"type":       withDefault(record.ContractType, "General"),
		"start_date": withDefault(record.StartDate, "2024-01-01"),
		"end_date":   withDefault(record.EndDate, "2025-01-01"),
		"value":      record.Value,
		"terms":      record.KeyTerms,
		"text":       truncate(docText, excerptLimit),
	})
	if err != nil {
		return nil, helper.NewError("create contract node", err)
	}

	result := &model.IngestResult{
		Category:           model.CategoryContract,
		RecordID:           id,
		Title:              withDefault(record.Title, "Untitled Contract"),
		LinkedEntities:     []string{},
		ExtractionFallback: fallback,
	}

	clientName := record.ClientName
	if clientName == "" {
		clientName = hints.ClientName
	}
	if clientName != "" {
		rows, err := i.graph.Execute(ctx, linkContractQuery, map[string]interface{}{
			"contract_id": id.String(),
			"client_name": clientName,
		})
		if err != nil {
			return nil, helper.NewError("link contract to client", err)
		}
		for _, row := range rows {
			if name, ok := row["linked_client"].(string); ok {
				result.LinkedEntities = append(result.LinkedEntities, name)
			}
		}
		if len(result.LinkedEntities) == 0 {
			i.log.Warn("Client not found in graph, contract created unlinked",
				slog.String("client_name", clientName),
			)
		}
	}

	i.log.Info("Contract ingested",
		slog.String("id", id.String()),
		slog.String("title", result.Title),
		slog.Bool("fallback", fallback),
	)
	return result, nil
}

// extractContract prompts for a structured contract record. An unparsable
// response degrades to a minimal record from hints, reported as fallback.
func (i *Ingestor) extractContract(ctx context.Context, docText string, hints *model.DocumentHints) (model.ContractRecord, bool) {
	response, err := i.generator.Generate(ctx, contractExtractionPrompt(docText))
	if err == nil {
		record, parseErr := llm.ExtractJSONAs[model.ContractRecord](response)
		if parseErr == nil {
			return record, false
		}
		err = parseErr
	}

	i.log.Warn("Contract extraction failed, building record from hints",
		slog.String("error", err.Error()),
	)
	return model.ContractRecord{
		Title:        withDefault(hints.Filename, "Untitled Contract"),
		ClientName:   hints.ClientName,
		ContractType: "General",
		KeyTerms:     "Extraction failed",
	}, true
}

const createPolicyQuery = `
CREATE (p:Policy {
	id: $id,
	title: $title,
	type: $type,
	effective_date: date($effective_date),
	version: '1.0',
	status: 'active',
	text: $text,
	created_at: datetime()
})
RETURN p`

const linkPolicyQuery = `
MATCH (p:Policy {id: $policy_id})
MATCH (d:Department)
WHERE toLower(d.name) CONTAINS toLower($department)
MERGE (p)-[:APPLIES_TO]->(d)
RETURN d.name AS linked_department`

func (i *Ingestor) ingestPolicy(ctx context.Context, docText string, hints *model.DocumentHints) (*model.IngestResult, error) {
	record, fallback := i.extractPolicy(ctx, docText, hints)

	id := uuid.New()
	_, err := i.graph.Execute(ctx, createPolicyQuery, map[string]interface{}{
		"id":             id.String(),
		"title":          withDefault(record.Title, "Untitled Policy"),
		"type":           withDefault(record.PolicyType, "General"),
		"effective_date": withDefault(record.EffectiveDate, "2024-01-01"),
		"text":           truncate(docText, excerptLimit),
	})
	if err != nil {
		return nil, helper.NewError("create policy node", err)
	}

	result := &model.IngestResult{
		Category:           model.CategoryPolicy,
		RecordID:           id,
		Title:              withDefault(record.Title, "Untitled Policy"),
		LinkedEntities:     []string{},
		ExtractionFallback: fallback,
	}

	departments := record.Departments
	if len(departments) == 0 {
		departments = hints.Departments
	}
	for _, department := range departments {
		rows, err := i.graph.Execute(ctx, linkPolicyQuery, map[string]interface{}{
			"policy_id":  id.String(),
			"department": department,
		})
		if err != nil {
			return nil, helper.NewError("link policy to department", err)
		}
		linked := false
		for _, row := range rows {
			if name, ok := row["linked_department"].(string); ok {
				result.LinkedEntities = append(result.LinkedEntities, name)
				linked = true
			}
		}
		if !linked {
			i.log.Warn("Department not found in graph",
				slog.String("department", department),
			)
		}
	}

	i.log.Info("Policy ingested",
		slog.String("id", id.String()),
		slog.String("title", result.Title),
		slog.Int("linked_departments", len(result.LinkedEntities)),
		slog.Bool("fallback", fallback),
	)
	return result, nil
}

func (i *Ingestor) extractPolicy(ctx context.Context, docText string, hints *model.DocumentHints) (model.PolicyRecord, bool) {
	response, err := i.generator.Generate(ctx, policyExtractionPrompt(docText))
	if err == nil {
		record, parseErr := llm.ExtractJSONAs[model.PolicyRecord](response)
		if parseErr == nil {
			return record, false
		}
		err = parseErr
	}

	i.log.Warn("Policy extraction failed, building record from hints",
		slog.String("error", err.Error()),
	)
	return model.PolicyRecord{
		Title:       withDefault(hints.Filename, "Untitled Policy"),
		PolicyType:  "General",
		Departments: hints.Departments,
	}, true
}

// openExtraction is the JSON shape of the open entity extraction response
type openExtraction struct {
	Nodes []model.GraphNode `json:"nodes"`
	Edges []model.GraphEdge `json:"edges"`
}

// ingestGeneral runs open entity/relationship extraction. New labels may be
// introduced, so the result carries the schema-stale flag; callers refresh
// the schema cache afterwards.
func (i *Ingestor) ingestGeneral(ctx context.Context, docText string) (*model.IngestResult, error) {
	response, err := i.generator.Generate(ctx, generalExtractionPrompt(docText))
	if err != nil {
		return nil, helper.NewError("general extraction", err)
	}

	extraction, err := llm.ExtractJSONAs[openExtraction](response)
	if err != nil {
		return nil, helper.NewError("general extraction", err)
	}

	nodesCreated := 0
	for _, node := range extraction.Nodes {
		if node.Name == "" {
			continue
		}
		err := graph.CreateNode(ctx, i.graph, sanitizeLabel(node.Label), node.Name, sanitizeProperties(node.Properties))
		if err != nil {
			return nil, helper.NewError("create extracted node", err)
		}
		nodesCreated++
	}

	relationshipsCreated := 0
	for _, edge := range extraction.Edges {
		if edge.SourceName == "" || edge.TargetName == "" {
			continue
		}
		err := graph.CreateRelationship(ctx, i.graph, edge.SourceName, edge.TargetName, sanitizeRelationType(edge.Type), sanitizeProperties(edge.Properties))
		if err != nil {
			return nil, helper.NewError("create extracted relationship", err)
		}
		relationshipsCreated++
	}

	i.log.Info("General document ingested",
		slog.Int("nodes", nodesCreated),
		slog.Int("relationships", relationshipsCreated),
	)

	return &model.IngestResult{
		Category:             model.CategoryGeneral,
		LinkedEntities:       []string{},
		NodesCreated:         nodesCreated,
		RelationshipsCreated: relationshipsCreated,
		SchemaStale:          true,
	}, nil
}

func sanitizeProperties(properties model.Metadata) map[string]interface{} {
	props := map[string]interface{}{}
	for key, value := range properties {
		props[sanitizeProperty(key)] = value
	}
	return props
}

func withDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
