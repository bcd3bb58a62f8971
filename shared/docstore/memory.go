package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with the same semantics as the Postgres
// implementation. It backs tests and local runs.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	order       map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: map[string]map[string]map[string]any{},
		order:       map[string][]string{},
	}
}

func (s *MemoryStore) Create(_ context.Context, collection string, doc map[string]any) (string, error) {
	normalized, err := Normalize(doc)
	if err != nil {
		return "", err
	}

	copied, ok := normalized.(map[string]any)
	if !ok {
		return "", fmt.Errorf("document must be an object, got %T", normalized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = map[string]map[string]any{}
	}

	id := uuid.NewString()
	s.collections[collection][id] = copied
	s.order[collection] = append(s.order[collection], id)

	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	return copyDoc(doc)
}

func (s *MemoryStore) Query(_ context.Context, collection string, q Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Record

	for _, id := range s.order[collection] {
		doc := s.collections[collection][id]

		ok, err := matchesAll(doc, q.Filters)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		copied, err := copyDoc(doc)
		if err != nil {
			return nil, err
		}

		matched = append(matched, Record{ID: id, Doc: copied})
	}

	if q.Order.Field != "" {
		sortRecords(matched, q.Order)
	}

	if q.StartAfter != "" {
		anchorDoc, ok := s.collections[collection][q.StartAfter]
		if !ok {
			return nil, fmt.Errorf("cursor %s: %w", q.StartAfter, ErrNotFound)
		}

		anchorValue := anchorDoc[q.Order.Field]

		var kept []Record

		for _, record := range matched {
			cmp := compareValues(record.Doc[q.Order.Field], anchorValue)
			if cmp == 0 {
				cmp = strings.Compare(record.ID, q.StartAfter)
			}

			if (q.Order.Desc && cmp < 0) || (!q.Order.Desc && cmp > 0) {
				kept = append(kept, record)
			}
		}

		matched = kept
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	return matched, nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}

	for path, value := range fields {
		normalized, err := Normalize(value)
		if err != nil {
			return err
		}

		setPath(doc, strings.Split(path, "."), normalized)
	}

	return nil
}

// setPath writes value at the dot path, creating intermediate objects as
// needed. Non-object intermediates are replaced, matching jsonb_set behavior
// with create-missing enabled.
func setPath(doc map[string]any, path []string, value any) {
	if len(path) == 1 {
		doc[path[0]] = value

		return
	}

	child, ok := doc[path[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		doc[path[0]] = child
	}

	setPath(child, path[1:], value)
}

func matchesAll(doc map[string]any, filters []Filter) (bool, error) {
	for _, filter := range filters {
		ok, err := matches(doc, filter)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func matches(doc map[string]any, filter Filter) (bool, error) {
	value, ok := doc[filter.Field]
	if !ok || value == nil {
		return false, nil
	}

	want, err := Normalize(filter.Value)
	if err != nil {
		return false, err
	}

	if filter.Operator == OpIn {
		members, ok := want.([]any)
		if !ok {
			return false, fmt.Errorf("in filter on %s requires a slice value, got %T", filter.Field, filter.Value)
		}

		for _, member := range members {
			if compareValues(value, member) == 0 {
				return true, nil
			}
		}

		return false, nil
	}

	cmp := compareValues(value, want)

	switch filter.Operator {
	case OpEq:
		return cmp == 0, nil
	case OpGreaterEq:
		return cmp >= 0, nil
	case OpLessEq:
		return cmp <= 0, nil
	case OpLess:
		return cmp < 0, nil
	default:
		return false, fmt.Errorf("unsupported filter operator: %s", filter.Operator)
	}
}

func sortRecords(records []Record, order Order) {
	sort.SliceStable(records, func(i, j int) bool {
		cmp := compareValues(records[i].Doc[order.Field], records[j].Doc[order.Field])
		if cmp == 0 {
			cmp = strings.Compare(records[i].ID, records[j].ID)
		}

		if order.Desc {
			return cmp > 0
		}

		return cmp < 0
	})
}

// compareValues orders normalized JSON scalars. Timestamps encoded with
// TimeLayout compare correctly as strings.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case bv:
				return -1
			default:
				return 1
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func copyDoc(doc map[string]any) (map[string]any, error) {
	normalized, err := Normalize(doc)
	if err != nil {
		return nil, err
	}

	copied, ok := normalized.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document must be an object, got %T", normalized)
	}

	return copied, nil
}
