package model

import "time"

// AskOptions configures one question-processing cycle
type AskOptions struct {
	// IncludeQuery adds the generated query text to the response
	IncludeQuery bool `json:"include_query"`

	// TopK is the number of passages requested from the semantic retriever.
	// Zero requests no passages (valid, not an error); negative values are
	// treated as zero.
	TopK int `json:"top_k"`

	// PassageLabel selects the collection to search
	PassageLabel string `json:"passage_label,omitempty"`

	// QueryTimeout bounds structured query execution; fatal on expiry
	QueryTimeout time.Duration `json:"-"`

	// RetrievalTimeout bounds semantic retrieval; degrades on expiry
	RetrievalTimeout time.Duration `json:"-"`

	// MaxRows caps the structured result; rows beyond it are truncated
	// with a flag, not an error
	MaxRows int `json:"max_rows,omitempty"`
}

// DefaultAskOptions returns the defaults used when the caller passes nil
func DefaultAskOptions() AskOptions {
	return AskOptions{
		IncludeQuery:     false,
		TopK:             3,
		PassageLabel:     DefaultPassageLabel,
		QueryTimeout:     30 * time.Second,
		RetrievalTimeout: 15 * time.Second,
		MaxRows:          50,
	}
}
