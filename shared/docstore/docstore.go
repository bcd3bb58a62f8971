package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Filter operators supported by every Store implementation.
const (
	OpEq        = "eq"
	OpGreaterEq = "greater_eq"
	OpLessEq    = "less_eq"
	OpLess      = "less"
	OpIn        = "in"
)

var (
	// ErrNotFound is returned by Get and Update when no document has the given id,
	// and by Query when the StartAfter anchor no longer exists.
	ErrNotFound = errors.New("document not found")
)

// Filter is a single (field, operator, value) predicate over top-level document
// fields. Values are normalized to their JSON representation before matching,
// so time values encoded with Time compare correctly.
type Filter struct {
	Field    string
	Operator string
	Value    any
}

// Order sorts results by a single top-level field. Ties are broken by document
// id so pagination cursors are stable.
type Order struct {
	Field string
	Desc  bool
}

// Query describes a filtered, ordered, paginated read. StartAfter is the id of
// the last document of the previous page; the page starts strictly after it in
// the requested order.
type Query struct {
	Filters    []Filter
	Order      Order
	Limit      int
	StartAfter string
}

// Record is a raw document together with its store-assigned id.
type Record struct {
	ID  string
	Doc map[string]any
}

// Store is a schemaless document store addressed by collection name and id.
// Update performs a partial merge; keys may be dot paths addressing nested
// fields ("paymentInfo.status"). Implementations serialize individual writes
// but offer no cross-call transactional guarantees.
type Store interface {
	Create(ctx context.Context, collection string, doc map[string]any) (string, error)
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	Query(ctx context.Context, collection string, q Query) ([]Record, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
}

// Normalize round-trips a value through JSON so that values of arbitrary Go
// types end up in the shape documents are stored in: strings, float64 numbers,
// bools, []any and map[string]any.
func Normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}

	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}

	return normalized, nil
}
