package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stayhub/config"
	"stayhub/infras/kafka"
	"stayhub/infras/otel"
	"stayhub/internal/domains/booking/model"
	"stayhub/internal/domains/booking/model/dto"
	"stayhub/internal/domains/booking/repository"
	"stayhub/shared"
	"stayhub/shared/cache"
	"stayhub/shared/clock"
	"stayhub/shared/constant"
	"stayhub/shared/docstore"
	"stayhub/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking = "booking:get"

	msgBookingNotFound   = "booking not found"
	msgCannotCancel      = "booking cannot be cancelled"
	msgPastDeadline      = "cancellation deadline has passed"
	msgInvalidDateFormat = "invalid date format: %v"
	msgInvalidCursor     = "invalid pagination cursor"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetByConfirmationCode(ctx context.Context, code string) (dto.BookingResponse, error)
	GetUserBookings(ctx context.Context, filters dto.BookingFilters, options dto.PageOptions) (dto.BookingPage, error)
	Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	CheckIn(ctx context.Context, id string) (dto.BookingResponse, error)
	CheckOut(ctx context.Context, id string) (dto.BookingResponse, error)
	Upcoming(ctx context.Context, limit int) ([]dto.BookingResponse, error)
	History(ctx context.Context, limit int) ([]dto.BookingResponse, error)
}

type serviceImpl struct {
	repo   repository.Bookings
	cfg    *config.Config
	cache  cache.RedisCache
	events kafka.Client
	clock  clock.Clock
	otel   otel.Otel
}

func New(repo repository.Bookings, cfg *config.Config, cache cache.RedisCache, events kafka.Client, clk clock.Clock, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:   repo,
		cfg:    cfg,
		cache:  cache,
		events: events,
		clock:  clk,
		otel:   otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := s.clock.Now()

	booking, err := req.ToModel(userID, model.NewConfirmationCode(), now)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return res, failure.BadRequestFromString(fmt.Sprintf(msgInvalidDateFormat, err)) // nolint:wrapcheck
	}

	created, err := s.repo.Create(ctx, booking)
	if err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	res.FromModel(created)
	s.publish(ctx, model.EventBookingCreated, created)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return res, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	res.FromModel(booking)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save booking to cache")
	}

	return res, nil
}

func (s *serviceImpl) GetByConfirmationCode(ctx context.Context, code string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByConfirmationCode")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.GetByConfirmationCode(ctx, code)
	if errors.Is(err, docstore.ErrNotFound) {
		return res, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to get booking by confirmation code")

		return res, fmt.Errorf("failed to get booking by confirmation code: %w", err)
	}

	res.FromModel(booking)

	return res, nil
}

// GetUserBookings pages through the caller's bookings newest-first. The text
// search and the filter limit apply to the fetched page only, after hasMore
// and the cursor are derived from the raw page.
func (s *serviceImpl) GetUserBookings(ctx context.Context, filters dto.BookingFilters, options dto.PageOptions) (res dto.BookingPage, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetUserBookings")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	pageSize := options.Limit
	if pageSize <= 0 {
		pageSize = constant.DefaultValuePageSize
	}

	query := docstore.Query{
		Filters: []docstore.Filter{
			{Field: model.FieldUserID, Operator: docstore.OpEq, Value: userID},
		},
		Order:      docstore.Order{Field: model.FieldCreatedAt, Desc: true},
		Limit:      pageSize,
		StartAfter: options.StartAfter,
	}

	if filters.Status != constant.Empty {
		query.Filters = append(query.Filters, docstore.Filter{
			Field: model.FieldStatus, Operator: docstore.OpEq, Value: filters.Status,
		})
	}

	if filters.From != nil {
		query.Filters = append(query.Filters, docstore.Filter{
			Field: model.FieldCheckIn, Operator: docstore.OpGreaterEq, Value: docstore.NewTime(*filters.From),
		})
	}

	if filters.To != nil {
		query.Filters = append(query.Filters, docstore.Filter{
			Field: model.FieldCheckIn, Operator: docstore.OpLessEq, Value: docstore.NewTime(*filters.To),
		})
	}

	bookings, err := s.repo.Query(ctx, query)
	if errors.Is(err, docstore.ErrNotFound) {
		return res, failure.BadRequestFromString(msgInvalidCursor) // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	// hasMore approximates "next page non-empty" by a full fetched page.
	res.HasMore = len(bookings) == pageSize
	if len(bookings) > 0 {
		res.LastID = bookings[len(bookings)-1].ID
	}

	if filters.Search != constant.Empty {
		term := strings.ToLower(filters.Search)
		matched := make([]model.Booking, 0, len(bookings))

		for _, booking := range bookings {
			if strings.Contains(strings.ToLower(booking.HotelName), term) ||
				strings.Contains(strings.ToLower(booking.ConfirmationCode), term) ||
				strings.Contains(strings.ToLower(booking.HotelLocation), term) {
				matched = append(matched, booking)
			}
		}

		bookings = matched
	}

	if filters.Limit > 0 && len(bookings) > filters.Limit {
		bookings = bookings[:filters.Limit]
	}

	res.Bookings = make([]dto.BookingResponse, len(bookings))
	for i, booking := range bookings {
		res.Bookings[i].FromModel(booking)
	}

	res.Total = len(res.Bookings)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	now := s.clock.Now()

	fields, err := req.Fields(now)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking patch")

		return res, failure.BadRequestFromString(fmt.Sprintf(msgInvalidDateFormat, err)) // nolint:wrapcheck
	}

	err = s.repo.Update(ctx, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return res, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return res, fmt.Errorf("failed to update booking: %w", err)
	}

	// Read-after-write, not transactional: a concurrent writer may interleave.
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to read booking back")

		return res, fmt.Errorf("failed to read booking back: %w", err)
	}

	res.FromModel(booking)
	s.invalidate(ctx, id)

	if req.PaymentStatus != nil && *req.PaymentStatus == model.PaymentStatusCompleted {
		s.publish(ctx, model.EventBookingConfirmed, booking)
	}

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return res, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if !booking.Policies.CanCancel {
		return res, failure.CannotCancel(msgCannotCancel) // nolint:wrapcheck
	}

	now := s.clock.Now()
	if now.After(booking.Policies.CancellationDeadline.Time) {
		return res, failure.PastDeadline(msgPastDeadline) // nolint:wrapcheck
	}

	fields := map[string]any{
		model.FieldStatus:        model.StatusCancelled,
		model.FieldPaymentStatus: model.PaymentStatusRefunded,
		model.FieldUpdatedAt:     docstore.NewTime(now),
	}
	if req.Reason != constant.Empty {
		fields[model.FieldCancellationReason] = req.Reason
	}

	if err = s.repo.Update(ctx, id, fields); err != nil {
		log.Error().Err(err).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to read booking back")

		return res, fmt.Errorf("failed to read booking back: %w", err)
	}

	res.FromModel(updated)
	s.invalidate(ctx, id)
	s.publish(ctx, model.EventBookingCancelled, updated)

	return res, nil
}

func (s *serviceImpl) CheckIn(ctx context.Context, id string) (dto.BookingResponse, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckIn")
	defer scope.End()

	return s.stamp(ctx, id, model.StatusCheckedIn, model.FieldCheckedInAt)
}

func (s *serviceImpl) CheckOut(ctx context.Context, id string) (dto.BookingResponse, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckOut")
	defer scope.End()

	return s.stamp(ctx, id, model.StatusCheckedOut, model.FieldCheckedOutAt)
}

// stamp writes the status and its timestamp unconditionally; there is no
// precondition on the current status.
func (s *serviceImpl) stamp(ctx context.Context, id, status, stampField string) (res dto.BookingResponse, err error) {
	now := s.clock.Now()

	fields := map[string]any{
		model.FieldStatus:    status,
		model.FieldUpdatedAt: docstore.NewTime(now),
		stampField:           docstore.NewTime(now),
	}

	err = s.repo.Update(ctx, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return res, failure.NotFound(msgBookingNotFound) // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Str("status", status).Msg("failed to stamp booking status")

		return res, fmt.Errorf("failed to stamp booking status: %w", err)
	}

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to read booking back")

		return res, fmt.Errorf("failed to read booking back: %w", err)
	}

	res.FromModel(booking)
	s.invalidate(ctx, id)

	return res, nil
}

func (s *serviceImpl) Upcoming(ctx context.Context, limit int) (res []dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Upcoming")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if limit <= 0 {
		limit = constant.DefaultUpcomingLimit
	}

	bookings, err := s.repo.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{
			{Field: model.FieldUserID, Operator: docstore.OpEq, Value: userID},
			{Field: model.FieldCheckIn, Operator: docstore.OpGreaterEq, Value: docstore.NewTime(s.clock.Now())},
			{Field: model.FieldStatus, Operator: docstore.OpIn, Value: []string{model.StatusConfirmed, model.StatusPending}},
		},
		Order: docstore.Order{Field: model.FieldCheckIn},
		Limit: limit,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to get upcoming bookings")

		return res, fmt.Errorf("failed to get upcoming bookings: %w", err)
	}

	return toResponses(bookings), nil
}

func (s *serviceImpl) History(ctx context.Context, limit int) (res []dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".History")
	defer scope.End()
	defer scope.TraceIfError(err)

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if limit <= 0 {
		limit = constant.DefaultHistoryLimit
	}

	bookings, err := s.repo.Query(ctx, docstore.Query{
		Filters: []docstore.Filter{
			{Field: model.FieldUserID, Operator: docstore.OpEq, Value: userID},
			{Field: model.FieldCheckOut, Operator: docstore.OpLess, Value: docstore.NewTime(s.clock.Now())},
		},
		Order: docstore.Order{Field: model.FieldCheckOut, Desc: true},
		Limit: limit,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking history")

		return res, fmt.Errorf("failed to get booking history: %w", err)
	}

	return toResponses(bookings), nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking from cache")
	}
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, booking model.Booking) {
	event := model.Event{
		Type:             eventType,
		BookingID:        booking.ID,
		UserID:           booking.UserID,
		ConfirmationCode: booking.ConfirmationCode,
		Status:           booking.Status,
		OccurredAt:       docstore.NewTime(s.clock.Now()),
	}

	err := s.events.SendMessages(ctx, s.cfg.Kafka.Topics.BookingEvents, kafka.Message{
		Key:   booking.ID,
		Value: event,
	})
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("failed to publish booking event")
	}
}

func toResponses(bookings []model.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))

	for i, booking := range bookings {
		responses[i].FromModel(booking)
	}

	return responses
}
