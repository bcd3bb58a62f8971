package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"stayhub/infras/otel"
	"stayhub/infras/postgres"
	"stayhub/shared/constant"
	"stayhub/shared/logger"
)

const documentsTable = "documents"

var errInvalidField = errors.New("invalid document field name")

type documentRow struct {
	ID  string `db:"id"`
	Doc []byte `db:"doc"`
}

// PostgresStore keeps every collection in a single jsonb table. Filter and
// order fields are read with ->> so they compare as text; timestamp fields use
// the fixed-width Time encoding and therefore order correctly.
type PostgresStore struct {
	db   *postgres.Connection
	otel otel.Otel
}

func NewPostgresStore(db *postgres.Connection, otl otel.Otel) *PostgresStore {
	return &PostgresStore{
		db:   db,
		otel: otl,
	}
}

func (s *PostgresStore) Create(ctx context.Context, collection string, doc map[string]any) (string, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".Create")
	defer scope.End()

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document (%s): %w", collection, err)
	}

	id := uuid.NewString()
	query := fmt.Sprintf("INSERT INTO %s (collection, id, doc) VALUES (:collection, :id, CAST(:doc AS jsonb))", documentsTable)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	args := map[string]any{
		"collection": collection,
		"id":         id,
		"doc":        string(raw),
	}

	_, err = s.db.Write.NamedExecContext(ctx, query, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return "", fmt.Errorf("failed to insert document (%s): %w", collection, err)
	}

	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".Get")
	defer scope.End()

	query := fmt.Sprintf("SELECT doc FROM %s WHERE collection = :collection AND id = :id", documentsTable)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := s.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", collection, err)
	}
	defer prepare.Close()

	var raw []byte

	err = prepare.GetContext(ctx, &raw, map[string]any{"collection": collection, "id": id})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get document (%s): %w", collection, err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to decode document (%s): %w", collection, err)
	}

	return doc, nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q Query) ([]Record, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".Query")
	defer scope.End()

	conditions := []string{"collection = :collection"}
	args := map[string]any{"collection": collection}

	for i, filter := range q.Filters {
		condition, err := buildCondition(filter, i, args)
		if err != nil {
			scope.TraceError(err)

			return nil, err
		}

		conditions = append(conditions, condition)
	}

	ordering, err := buildOrdering(q.Order)
	if err != nil {
		scope.TraceError(err)

		return nil, err
	}

	if q.StartAfter != "" {
		condition, err := s.buildCursorCondition(ctx, collection, q, args)
		if err != nil {
			scope.TraceIfError(err)

			return nil, err
		}

		conditions = append(conditions, condition)
	}

	pagination := ""
	if q.Limit > 0 {
		args["limit"] = q.Limit
		pagination = "LIMIT :limit"
	}

	query := fmt.Sprintf(
		"SELECT id, doc FROM %s WHERE %s %s %s",
		documentsTable, strings.Join(conditions, " AND "), ordering, pagination,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := s.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to prepare statement (%s): %w", collection, err)
	}
	defer prepare.Close()

	var rows []documentRow

	err = prepare.SelectContext(ctx, &rows, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to query documents (%s): %w", collection, err)
	}

	records := make([]Record, len(rows))

	for i, row := range rows {
		doc := map[string]any{}
		if err := json.Unmarshal(row.Doc, &doc); err != nil {
			logger.ErrorWithStack(err)
			scope.TraceError(err)

			return nil, fmt.Errorf("failed to decode document (%s): %w", collection, err)
		}

		records[i] = Record{ID: row.ID, Doc: doc}
	}

	return records, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelStoreScopeName, constant.OtelStoreScopeName+".Update")
	defer scope.End()

	expr := "doc"
	args := map[string]any{"collection": collection, "id": id}
	index := 0

	for path, value := range fields {
		segments := strings.Split(path, ".")

		for _, segment := range segments {
			if !validFieldName(segment) {
				return fmt.Errorf("%w: %s", errInvalidField, path)
			}
		}

		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %s (%s): %w", path, collection, err)
		}

		arg := fmt.Sprintf("v%d", index)
		expr = fmt.Sprintf("jsonb_set(%s, '{%s}', CAST(:%s AS jsonb), true)", expr, strings.Join(segments, ","), arg)
		args[arg] = string(raw)
		index++
	}

	query := fmt.Sprintf(
		"UPDATE %s SET doc = %s, updated_at = now() WHERE collection = :collection AND id = :id",
		documentsTable, expr,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := s.db.Write.NamedExecContext(ctx, query, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to update document (%s): %w", collection, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to update document (%s): %w", collection, err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// buildCursorCondition resolves the StartAfter anchor to its order-field value
// and constrains the page to rows strictly past it, with the document id
// breaking ties.
func (s *PostgresStore) buildCursorCondition(ctx context.Context, collection string, q Query, args map[string]any) (string, error) {
	if !validFieldName(q.Order.Field) {
		return "", fmt.Errorf("%w: %s", errInvalidField, q.Order.Field)
	}

	anchorQuery := fmt.Sprintf(
		"SELECT doc->>:anchor_field FROM %s WHERE collection = :collection AND id = :anchor_id",
		documentsTable,
	)

	prepare, err := s.db.Read.PrepareNamedContext(ctx, anchorQuery)
	if err != nil {
		logger.ErrorWithStack(err)

		return "", fmt.Errorf("failed to prepare statement (%s): %w", collection, err)
	}
	defer prepare.Close()

	var anchorValue sql.NullString

	err = prepare.GetContext(ctx, &anchorValue, map[string]any{
		"collection":   collection,
		"anchor_id":    q.StartAfter,
		"anchor_field": q.Order.Field,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("cursor %s: %w", q.StartAfter, ErrNotFound)
	}

	if err != nil {
		logger.ErrorWithStack(err)

		return "", fmt.Errorf("failed to resolve cursor (%s): %w", collection, err)
	}

	args["anchor_value"] = anchorValue.String
	args["anchor_id_text"] = q.StartAfter

	operator := ">"
	if q.Order.Desc {
		operator = "<"
	}

	return fmt.Sprintf("(doc->>'%s', id::text) %s (:anchor_value, :anchor_id_text)", q.Order.Field, operator), nil
}

func buildCondition(filter Filter, index int, args map[string]any) (string, error) {
	if !validFieldName(filter.Field) {
		return "", fmt.Errorf("%w: %s", errInvalidField, filter.Field)
	}

	normalized, err := Normalize(filter.Value)
	if err != nil {
		return "", err
	}

	arg := fmt.Sprintf("v%d", index)
	field := fmt.Sprintf("doc->>'%s'", filter.Field)

	if filter.Operator == OpIn {
		members, ok := normalized.([]any)
		if !ok {
			return "", fmt.Errorf("in filter on %s requires a slice value, got %T", filter.Field, filter.Value)
		}

		values := pq.StringArray{}

		for _, member := range members {
			value, ok := member.(string)
			if !ok {
				return "", fmt.Errorf("in filter on %s supports string members, got %T", filter.Field, member)
			}

			values = append(values, value)
		}

		args[arg] = values

		return fmt.Sprintf("%s = ANY(:%s)", field, arg), nil
	}

	var sqlOperator string

	switch filter.Operator {
	case OpEq:
		sqlOperator = "="
	case OpGreaterEq:
		sqlOperator = ">="
	case OpLessEq:
		sqlOperator = "<="
	case OpLess:
		sqlOperator = "<"
	default:
		return "", fmt.Errorf("unsupported filter operator: %s", filter.Operator)
	}

	switch value := normalized.(type) {
	case string:
		args[arg] = value

		return fmt.Sprintf("%s %s :%s", field, sqlOperator, arg), nil
	case float64:
		args[arg] = value

		return fmt.Sprintf("(%s)::numeric %s :%s", field, sqlOperator, arg), nil
	case bool:
		args[arg] = value

		return fmt.Sprintf("(%s)::boolean %s :%s", field, sqlOperator, arg), nil
	default:
		return "", fmt.Errorf("unsupported filter value for %s: %T", filter.Field, filter.Value)
	}
}

func buildOrdering(order Order) (string, error) {
	if order.Field == "" {
		return "ORDER BY id::text ASC", nil
	}

	if !validFieldName(order.Field) {
		return "", fmt.Errorf("%w: %s", errInvalidField, order.Field)
	}

	direction := "ASC"
	if order.Desc {
		direction = "DESC"
	}

	return fmt.Sprintf("ORDER BY doc->>'%s' %s, id::text %s", order.Field, direction, direction), nil
}

// validFieldName guards field names interpolated into queries. Fields come
// from model constants, never from request input.
func validFieldName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}

	return true
}
