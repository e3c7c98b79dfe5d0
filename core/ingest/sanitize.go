package ingest

import (
	"strings"
)

// The open extraction path builds label and relationship identifiers into
// query text, so they are reduced to safe identifier characters first.

// sanitizeLabel normalises a model-produced entity type into a node label:
// identifier characters only, starting with a letter, first letter
// capitalised. The result always satisfies the write-primitive identifier
// check.
func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range label {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return "Entity"
	}
	if cleaned[0] >= '0' && cleaned[0] <= '9' {
		cleaned = "Entity_" + cleaned
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}

// sanitizeRelationType normalises a model-produced relationship verb:
// uppercase with underscores.
func sanitizeRelationType(relType string) string {
	relType = strings.ToUpper(relType)
	var b strings.Builder
	for _, r := range relType {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return "RELATED_TO"
	}
	return cleaned
}

// sanitizeProperty normalises a property key: lowercase with underscores
func sanitizeProperty(property string) string {
	property = strings.ToLower(property)
	var b strings.Builder
	for _, r := range property {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		return "value"
	}
	return cleaned
}
