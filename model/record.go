package model

import "github.com/google/uuid"

// Category is the closed set of document classes the ingestion path recognises
type Category string

const (
	CategoryContract Category = "contract"
	CategoryPolicy   Category = "policy"
	CategoryGeneral  Category = "general"
)

// ParseCategory maps free-form classifier output onto the closed set.
// Anything unrecognised resolves to CategoryGeneral.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryContract:
		return CategoryContract
	case CategoryPolicy:
		return CategoryPolicy
	default:
		return CategoryGeneral
	}
}

// ContractRecord is the structured extraction from a contract document
type ContractRecord struct {
	Title        string   `json:"title"`
	ClientName   string   `json:"client_name"`
	ContractType string   `json:"contract_type"`
	StartDate    string   `json:"start_date"` // YYYY-MM-DD, empty when not found
	EndDate      string   `json:"end_date"`
	Value        float64  `json:"value"`
	KeyTerms     string   `json:"key_terms"`
	Signatories  []string `json:"signatories"`
}

// PolicyRecord is the structured extraction from a policy document
type PolicyRecord struct {
	Title         string   `json:"title"`
	PolicyType    string   `json:"policy_type"` // e.g. HR, IT, Compliance, Financial
	Departments   []string `json:"departments"`
	EffectiveDate string   `json:"effective_date"`
	KeyRules      []string `json:"key_rules"`
}

// GraphNode is a node produced by the open-ended general extraction path
type GraphNode struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Properties Metadata `json:"properties,omitempty"`
}

// GraphEdge is a relationship produced by the open-ended general extraction path
type GraphEdge struct {
	SourceName string   `json:"source"`
	TargetName string   `json:"target"`
	Type       string   `json:"type"`
	Properties Metadata `json:"properties,omitempty"`
}

// DocumentHints carries caller-supplied metadata used when extraction cannot
// recover a field, and to pre-select a category
type DocumentHints struct {
	Filename    string   `json:"filename,omitempty"`
	Category    Category `json:"category,omitempty"` // Skips classification when set
	ClientName  string   `json:"client_name,omitempty"`
	Departments []string `json:"departments,omitempty"`
}

// IngestResult reports what the classifier/extractor committed to the graph
type IngestResult struct {
	Category Category  `json:"category"`
	RecordID uuid.UUID `json:"record_id,omitempty"`
	Title    string    `json:"title,omitempty"`

	// LinkedEntities names the graph entities the record was attached to.
	// Empty when no match was found; that is reported, not an error.
	LinkedEntities []string `json:"linked_entities"`

	// General path counters
	NodesCreated         int `json:"nodes_created,omitempty"`
	RelationshipsCreated int `json:"relationships_created,omitempty"`

	// ExtractionFallback is set when the structured extraction was unparsable
	// and the record was built from caller-supplied hints instead
	ExtractionFallback bool `json:"extraction_fallback,omitempty"`

	// SchemaStale is set when ingestion may have introduced labels absent
	// from the current schema snapshot; callers should refresh the schema
	SchemaStale bool `json:"schema_stale,omitempty"`
}
