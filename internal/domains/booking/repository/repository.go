package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"stayhub/infras/otel"
	"stayhub/internal/domains/booking/model"
	"stayhub/shared/constant"
	"stayhub/shared/docstore"
)

type Bookings interface {
	Create(ctx context.Context, booking model.Booking) (model.Booking, error)
	Get(ctx context.Context, id string) (model.Booking, error)
	GetByConfirmationCode(ctx context.Context, code string) (model.Booking, error)
	Query(ctx context.Context, query docstore.Query) ([]model.Booking, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

type repositoryImpl struct {
	col  docstore.Collection[model.Booking]
	otel otel.Otel
}

func New(store docstore.Store, otl otel.Otel) Bookings {
	return &repositoryImpl{
		col:  docstore.NewCollection[model.Booking](store, model.CollectionName),
		otel: otl,
	}
}

func (repo *repositoryImpl) Create(ctx context.Context, booking model.Booking) (model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Create", constant.OtelRepositoryScopeName, model.EntityName))
	defer scope.End()

	id, err := repo.col.Create(ctx, booking)
	if err != nil {
		scope.TraceError(err)

		return model.Booking{}, fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = id

	return booking, nil
}

func (repo *repositoryImpl) Get(ctx context.Context, id string) (model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Get", constant.OtelRepositoryScopeName, model.EntityName))
	defer scope.End()

	booking, err := repo.col.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)

		return model.Booking{}, err
	}

	booking.ID = id

	return booking, nil
}

func (repo *repositoryImpl) GetByConfirmationCode(ctx context.Context, code string) (model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.GetByConfirmationCode", constant.OtelRepositoryScopeName, model.EntityName))
	defer scope.End()

	items, err := repo.col.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{
			{Field: model.FieldConfirmationCode, Operator: docstore.OpEq, Value: code},
		},
		Limit: 1,
	})
	if err != nil {
		scope.TraceError(err)

		return model.Booking{}, err
	}

	if len(items) == 0 {
		return model.Booking{}, docstore.ErrNotFound
	}

	booking := items[0].Doc
	booking.ID = items[0].ID

	return booking, nil
}

func (repo *repositoryImpl) Query(ctx context.Context, query docstore.Query) ([]model.Booking, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Query", constant.OtelRepositoryScopeName, model.EntityName))
	defer scope.End()

	items, err := repo.col.Query(ctx, query)
	if err != nil {
		scope.TraceError(err)

		return nil, err
	}

	bookings := make([]model.Booking, len(items))

	for i, item := range items {
		bookings[i] = item.Doc
		bookings[i].ID = item.ID
	}

	return bookings, nil
}

func (repo *repositoryImpl) Update(ctx context.Context, id string, fields map[string]any) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Update", constant.OtelRepositoryScopeName, model.EntityName))
	defer scope.End()

	if err := repo.col.Update(ctx, id, fields); err != nil {
		scope.TraceError(err)

		return err
	}

	return nil
}
