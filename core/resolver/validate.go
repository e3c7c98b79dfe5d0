package resolver

import (
	"regexp"
	"strings"

	"github.com/kgraph-ai/kgraph/model"
)

var (
	// (n:Label) or (:Label)
	nodeLabelPattern = regexp.MustCompile(`\(\s*\w*\s*:\s*` + "`?" + `([A-Za-z_][A-Za-z0-9_]*)` + "`?")
	// [r:TYPE], [:TYPE*1..2] or alternations like [:A|B] and [:A|:B]
	relTypePattern = regexp.MustCompile(`\[\s*\w*\s*:\s*` + "(`?" + `[A-Za-z_][A-Za-z0-9_]*` + "`?" + `(?:\s*\|\s*:?` + "`?" + `[A-Za-z_][A-Za-z0-9_]*` + "`?" + `)*)`)
	// n.property
	propertyPattern = regexp.MustCompile(`\w\.\s*([A-Za-z_][A-Za-z0-9_]*)`)

	writeClausePattern = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP)\b`)
)

// builtinIdentifiers are property-pattern matches that are actually function
// or keyword usage, not property access
var builtinIdentifiers = map[string]bool{
	"toLower": true, "toUpper": true, "toString": true,
	"count": true, "collect": true, "distinct": true,
}

// stripFences removes markdown code fences from a model response
func stripFences(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		var kept []string
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		response = strings.Join(kept, "\n")
	}
	return strings.TrimSpace(response)
}

// validateQuery checks a generated query against the bound snapshot.
// Unknown vocabulary means generation went off-schema; write clauses are a
// validation failure. The query is never executed past a failure here.
func validateQuery(question string, query string, snapshot *model.SchemaSnapshot) error {
	if match := writeClausePattern.FindString(query); match != "" {
		return &QueryValidationError{
			Question: question,
			Query:    query,
			Reason:   "generated query contains write clause " + strings.ToUpper(match),
		}
	}

	for _, match := range nodeLabelPattern.FindAllStringSubmatch(query, -1) {
		label := match[1]
		if !snapshot.HasLabel(label) {
			return &QueryGenerationError{
				Question: question,
				Reason:   "generated query references unknown label " + label,
			}
		}
	}

	for _, match := range relTypePattern.FindAllStringSubmatch(query, -1) {
		// Every branch of an alternation is checked
		for _, relType := range strings.Split(match[1], "|") {
			relType = strings.Trim(strings.TrimSpace(relType), "`:")
			if relType == "" {
				continue
			}
			if !snapshot.HasRelationship(relType) {
				return &QueryGenerationError{
					Question: question,
					Reason:   "generated query references unknown relationship type " + relType,
				}
			}
		}
	}

	for _, match := range propertyPattern.FindAllStringSubmatch(query, -1) {
		property := match[1]
		if builtinIdentifiers[property] {
			continue
		}
		if !snapshot.HasProperty(property) {
			return &QueryGenerationError{
				Question: question,
				Reason:   "generated query references unknown property " + property,
			}
		}
	}

	return nil
}
