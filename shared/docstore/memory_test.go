package docstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"stayhub/shared/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "bookings", map[string]any{
		"status": "pending",
		"guests": 2,
		"guestInfo": map[string]any{
			"firstName": "Ada",
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.Get(ctx, "bookings", id)
	require.NoError(t, err)

	assert.Equal(t, "pending", doc["status"])
	assert.Equal(t, float64(2), doc["guests"])

	nested, ok := doc["guestInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", nested["firstName"])
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	store := docstore.NewMemoryStore()

	_, err := store.Get(context.Background(), "bookings", "missing-id")

	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestMemoryStore_Get_ReturnsCopy(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "bookings", map[string]any{"status": "pending"})
	require.NoError(t, err)

	first, err := store.Get(ctx, "bookings", id)
	require.NoError(t, err)

	first["status"] = "mutated"

	second, err := store.Get(ctx, "bookings", id)
	require.NoError(t, err)

	assert.Equal(t, "pending", second["status"])
}

func TestMemoryStore_Update(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "bookings", map[string]any{
		"status": "pending",
		"paymentInfo": map[string]any{
			"method": "card",
			"status": "pending",
		},
	})
	require.NoError(t, err)

	err = store.Update(ctx, "bookings", id, map[string]any{
		"status":                  "confirmed",
		"paymentInfo.status":      "completed",
		"paymentInfo.paymentDate": "2026-09-10T15:00:00.000000000Z",
	})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "bookings", id)
	require.NoError(t, err)

	assert.Equal(t, "confirmed", doc["status"])

	payment, ok := doc["paymentInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "completed", payment["status"])
	assert.Equal(t, "card", payment["method"])
	assert.Equal(t, "2026-09-10T15:00:00.000000000Z", payment["paymentDate"])
}

func TestMemoryStore_Update_CreatesMissingPath(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "bookings", map[string]any{"status": "pending"})
	require.NoError(t, err)

	err = store.Update(ctx, "bookings", id, map[string]any{
		"policies.canCancel": false,
	})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "bookings", id)
	require.NoError(t, err)

	policies, ok := doc["policies"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, policies["canCancel"])
}

func TestMemoryStore_Update_NotFound(t *testing.T) {
	store := docstore.NewMemoryStore()

	err := store.Update(context.Background(), "bookings", "missing-id", map[string]any{"status": "confirmed"})

	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestMemoryStore_Query_Filters(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	seed := []map[string]any{
		{"userId": "u1", "status": "pending", "checkIn": "2026-09-01T00:00:00.000000000Z"},
		{"userId": "u1", "status": "confirmed", "checkIn": "2026-09-05T00:00:00.000000000Z"},
		{"userId": "u1", "status": "cancelled", "checkIn": "2026-09-09T00:00:00.000000000Z"},
		{"userId": "u2", "status": "confirmed", "checkIn": "2026-09-05T00:00:00.000000000Z"},
	}
	for _, doc := range seed {
		_, err := store.Create(ctx, "bookings", doc)
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		filters []docstore.Filter
		want    int
	}{
		{
			name: "eq on userId",
			filters: []docstore.Filter{
				{Field: "userId", Operator: docstore.OpEq, Value: "u1"},
			},
			want: 3,
		},
		{
			name: "eq combined",
			filters: []docstore.Filter{
				{Field: "userId", Operator: docstore.OpEq, Value: "u1"},
				{Field: "status", Operator: docstore.OpEq, Value: "confirmed"},
			},
			want: 1,
		},
		{
			name: "greater_eq on timestamp",
			filters: []docstore.Filter{
				{Field: "checkIn", Operator: docstore.OpGreaterEq, Value: "2026-09-05T00:00:00.000000000Z"},
			},
			want: 3,
		},
		{
			name: "less_eq on timestamp",
			filters: []docstore.Filter{
				{Field: "checkIn", Operator: docstore.OpLessEq, Value: "2026-09-05T00:00:00.000000000Z"},
			},
			want: 3,
		},
		{
			name: "less on timestamp",
			filters: []docstore.Filter{
				{Field: "checkIn", Operator: docstore.OpLess, Value: "2026-09-05T00:00:00.000000000Z"},
			},
			want: 1,
		},
		{
			name: "in on status",
			filters: []docstore.Filter{
				{Field: "status", Operator: docstore.OpIn, Value: []string{"pending", "confirmed"}},
			},
			want: 3,
		},
		{
			name: "missing field never matches",
			filters: []docstore.Filter{
				{Field: "cancellationReason", Operator: docstore.OpEq, Value: "weather"},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := store.Query(ctx, "bookings", docstore.Query{Filters: tt.filters})
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestMemoryStore_Query_UnsupportedOperator(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "bookings", map[string]any{"status": "pending"})
	require.NoError(t, err)

	_, err = store.Query(ctx, "bookings", docstore.Query{
		Filters: []docstore.Filter{{Field: "status", Operator: "like", Value: "pend"}},
	})

	assert.Error(t, err)
}

func TestMemoryStore_Query_Ordering(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	for _, createdAt := range []string{
		"2026-09-03T00:00:00.000000000Z",
		"2026-09-01T00:00:00.000000000Z",
		"2026-09-02T00:00:00.000000000Z",
	} {
		_, err := store.Create(ctx, "bookings", map[string]any{"createdAt": createdAt})
		require.NoError(t, err)
	}

	asc, err := store.Query(ctx, "bookings", docstore.Query{
		Order: docstore.Order{Field: "createdAt"},
	})
	require.NoError(t, err)
	require.Len(t, asc, 3)

	for i := 1; i < len(asc); i++ {
		assert.Less(t, asc[i-1].Doc["createdAt"], asc[i].Doc["createdAt"])
	}

	desc, err := store.Query(ctx, "bookings", docstore.Query{
		Order: docstore.Order{Field: "createdAt", Desc: true},
	})
	require.NoError(t, err)
	require.Len(t, desc, 3)

	for i := 1; i < len(desc); i++ {
		assert.Greater(t, desc[i-1].Doc["createdAt"], desc[i].Doc["createdAt"])
	}
}

func TestMemoryStore_Query_Limit(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Create(ctx, "bookings", map[string]any{"seq": i})
		require.NoError(t, err)
	}

	records, err := store.Query(ctx, "bookings", docstore.Query{Limit: 2})
	require.NoError(t, err)

	assert.Len(t, records, 2)
}

func TestMemoryStore_Query_CursorPagination(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := store.Create(ctx, "bookings", map[string]any{
			"createdAt": fmt.Sprintf("2026-09-0%dT00:00:00.000000000Z", i),
		})
		require.NoError(t, err)
	}

	query := docstore.Query{
		Order: docstore.Order{Field: "createdAt", Desc: true},
		Limit: 2,
	}

	var seen []string

	for {
		records, err := store.Query(ctx, "bookings", query)
		require.NoError(t, err)

		if len(records) == 0 {
			break
		}

		for _, record := range records {
			seen = append(seen, record.Doc["createdAt"].(string))
		}

		query.StartAfter = records[len(records)-1].ID
	}

	require.Len(t, seen, 5)

	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i-1], seen[i], "pages must continue in order without overlap")
	}
}

func TestMemoryStore_Query_CursorNotFound(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "bookings", map[string]any{"createdAt": "2026-09-01T00:00:00.000000000Z"})
	require.NoError(t, err)

	_, err = store.Query(ctx, "bookings", docstore.Query{
		Order:      docstore.Order{Field: "createdAt", Desc: true},
		StartAfter: "missing-anchor",
	})

	assert.True(t, errors.Is(err, docstore.ErrNotFound))
}
