package ingest

import "fmt"

const (
	// classificationLimit bounds the excerpt sent to the classifier
	classificationLimit = 2000
	// extractionLimit bounds the document text sent to the extractors
	extractionLimit = 4000
	// excerptLimit bounds the raw text stored on created nodes
	excerptLimit = 1000
)

func classificationPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following document excerpt and classify it into ONE of these categories:
- "contract": Legal agreements, service agreements, NDAs, SOWs
- "policy": Company policies, procedural documents, guidelines
- "general": Any other document type

Document excerpt:
%s

Respond with ONLY the category name (contract, policy, or general).`, truncate(text, classificationLimit))
}

func contractExtractionPrompt(text string) string {
	return fmt.Sprintf(`Extract the following information from this contract document:

%s

Return a JSON object with these fields:
- title: Contract title/name
- client_name: Name of the client/customer (if mentioned)
- contract_type: Type of contract (e.g., "Service Agreement", "NDA", "SOW")
- start_date: Start date in YYYY-MM-DD format (if mentioned)
- end_date: End date in YYYY-MM-DD format (if mentioned)
- value: Contract value as a number (if mentioned)
- key_terms: Brief summary of key terms (2-3 sentences)
- signatories: List of people who signed (employee names if mentioned)

If any field is not found, use null. Ensure valid JSON format.`, truncate(text, extractionLimit))
}

func policyExtractionPrompt(text string) string {
	return fmt.Sprintf(`Extract the following information from this policy document:

%s

Return a JSON object with these fields:
- title: Policy title/name
- policy_type: Type (e.g., "HR", "IT", "Compliance", "Financial")
- departments: List of department names this policy applies to
- effective_date: Effective date in YYYY-MM-DD format (if mentioned)
- key_rules: List of 3-5 main rules or points from the policy

If any field is not found, use null or empty list. Ensure valid JSON format.`, truncate(text, extractionLimit))
}

func generalExtractionPrompt(text string) string {
	return fmt.Sprintf(`Extract entities and relationships from the following document.

%s

Return a JSON object with these fields:
- nodes: list of objects with "name", "label" (entity type, e.g. "Person", "Technology") and optional "properties"
- edges: list of objects with "source" (node name), "target" (node name), "type" (relationship verb, e.g. "USES", "WORKS_WITH") and optional "properties"

Only include entities and relationships stated in the document. Ensure valid JSON format.`, truncate(text, extractionLimit))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
