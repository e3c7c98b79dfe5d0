package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// NodeLabel describes one node label present in the graph
type NodeLabel struct {
	Name       string   `json:"name"`
	Count      int64    `json:"count"`
	Properties []string `json:"properties,omitempty"`
}

// RelationshipType describes one relationship type present in the graph
type RelationshipType struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// SchemaSnapshot is the enumerated vocabulary of the graph at capture time.
// It is immutable once built; schema refresh replaces the whole snapshot.
type SchemaSnapshot struct {
	Labels        []NodeLabel        `json:"labels"`
	Relationships []RelationshipType `json:"relationships"`
	CapturedAt    time.Time          `json:"captured_at"`
}

// HasLabel reports whether the snapshot contains the given node label
func (s *SchemaSnapshot) HasLabel(name string) bool {
	for _, l := range s.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// HasRelationship reports whether the snapshot contains the given relationship type
func (s *SchemaSnapshot) HasRelationship(name string) bool {
	for _, r := range s.Relationships {
		if r.Name == name {
			return true
		}
	}
	return false
}

// HasProperty reports whether any label in the snapshot carries the given property
func (s *SchemaSnapshot) HasProperty(name string) bool {
	for _, l := range s.Labels {
		for _, p := range l.Properties {
			if p == name {
				return true
			}
		}
	}
	return false
}

// TotalNodes returns the node count summed over all labels
func (s *SchemaSnapshot) TotalNodes() int64 {
	var total int64
	for _, l := range s.Labels {
		total += l.Count
	}
	return total
}

// TotalRelationships returns the relationship count summed over all types
func (s *SchemaSnapshot) TotalRelationships() int64 {
	var total int64
	for _, r := range s.Relationships {
		total += r.Count
	}
	return total
}

// String renders the snapshot as the vocabulary block used in generation prompts
func (s *SchemaSnapshot) String() string {
	var b strings.Builder

	labels := make([]NodeLabel, len(s.Labels))
	copy(labels, s.Labels)
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })

	b.WriteString("Node labels:\n")
	for _, l := range labels {
		if len(l.Properties) > 0 {
			props := make([]string, len(l.Properties))
			copy(props, l.Properties)
			sort.Strings(props)
			b.WriteString(fmt.Sprintf("  %s {%s}\n", l.Name, strings.Join(props, ", ")))
		} else {
			b.WriteString(fmt.Sprintf("  %s\n", l.Name))
		}
	}

	rels := make([]RelationshipType, len(s.Relationships))
	copy(rels, s.Relationships)
	sort.Slice(rels, func(i, j int) bool { return rels[i].Name < rels[j].Name })

	b.WriteString("Relationship types:\n")
	for _, r := range rels {
		b.WriteString(fmt.Sprintf("  %s\n", r.Name))
	}

	return b.String()
}
