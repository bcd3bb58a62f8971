package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Item is a typed document together with its store-assigned id.
type Item[T any] struct {
	ID  string
	Doc T
}

// Collection is a typed view over a Store collection: models are round-tripped
// through JSON on the way in and out, so their json tags define the document
// field names.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](store Store, name string) Collection[T] {
	return Collection[T]{
		store: store,
		name:  name,
	}
}

func (c Collection[T]) Create(ctx context.Context, model T) (string, error) {
	doc, err := toDoc(model)
	if err != nil {
		return "", err
	}

	id, err := c.store.Create(ctx, c.name, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create document (%s): %w", c.name, err)
	}

	return id, nil
}

func (c Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var model T

	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return model, fmt.Errorf("failed to get document (%s): %w", c.name, err)
	}

	return fromDoc[T](doc)
}

func (c Collection[T]) Query(ctx context.Context, q Query) ([]Item[T], error) {
	records, err := c.store.Query(ctx, c.name, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents (%s): %w", c.name, err)
	}

	items := make([]Item[T], len(records))

	for i, record := range records {
		model, err := fromDoc[T](record.Doc)
		if err != nil {
			return nil, err
		}

		items[i] = Item[T]{ID: record.ID, Doc: model}
	}

	return items, nil
}

func (c Collection[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := c.store.Update(ctx, c.name, id, fields); err != nil {
		return fmt.Errorf("failed to update document (%s): %w", c.name, err)
	}

	return nil
}

func toDoc[T any](model T) (map[string]any, error) {
	raw, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	return doc, nil
}

func fromDoc[T any](doc map[string]any) (T, error) {
	var model T

	raw, err := json.Marshal(doc)
	if err != nil {
		return model, fmt.Errorf("failed to decode document: %w", err)
	}

	if err := json.Unmarshal(raw, &model); err != nil {
		return model, fmt.Errorf("failed to decode document: %w", err)
	}

	return model, nil
}
