package resolver

import "fmt"

// SchemaUnavailable indicates no schema snapshot could be obtained from
// the structured store. Nothing downstream can run without one.
type SchemaUnavailable struct {
	Err error
}

func (e *SchemaUnavailable) Error() string {
	return fmt.Sprintf("schema unavailable: %v", e.Err)
}

func (e *SchemaUnavailable) Unwrap() error {
	return e.Err
}

// QueryGenerationError indicates the model produced no usable query for the
// question, or a query referencing vocabulary outside the bound snapshot.
type QueryGenerationError struct {
	Question string
	Reason   string
	Err      error
}

func (e *QueryGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("query generation failed for %q: %s: %v", e.Question, e.Reason, e.Err)
	}
	return fmt.Sprintf("query generation failed for %q: %s", e.Question, e.Reason)
}

func (e *QueryGenerationError) Unwrap() error {
	return e.Err
}

// QueryValidationError indicates the generated query violated a safety rule.
// The query is never executed.
type QueryValidationError struct {
	Question string
	Query    string
	Reason   string
}

func (e *QueryValidationError) Error() string {
	return fmt.Sprintf("query validation failed for %q: %s (query: %s)", e.Question, e.Reason, e.Query)
}

// QueryExecutionError indicates the structured store rejected or timed out
// on a validated query. Carries both question and query for reproduction.
type QueryExecutionError struct {
	Question string
	Query    string
	Err      error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed for %q: %v (query: %s)", e.Question, e.Err, e.Query)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}
