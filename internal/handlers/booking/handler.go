package booking

import (
	"net/http"
	"strconv"
	"time"

	"stayhub/infras/otel"
	"stayhub/internal/domains/booking/model/dto"
	"stayhub/internal/domains/booking/service"
	"stayhub/shared/constant"
	"stayhub/shared/failure"
	"stayhub/shared/validator"
	"stayhub/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetUserBookings)
		routerGroup.Get("/upcoming", handler.GetUpcomingBookings)
		routerGroup.Get("/history", handler.GetBookingHistory)
		routerGroup.Get("/code/{code}", handler.GetBookingByConfirmationCode)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Patch("/{id}", handler.UpdateBooking)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
		routerGroup.Post("/{id}/checkin", handler.CheckInBooking)
		routerGroup.Post("/{id}/checkout", handler.CheckOutBooking)
	})
}

// CreateBooking handles the creation of a new booking.
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking created successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, booking)
}

// GetBookingByID retrieves a booking by its ID.
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking retrieved successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// GetBookingByConfirmationCode retrieves a booking by its confirmation code.
func (handler *Handler) GetBookingByConfirmationCode(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByConfirmationCode")
	defer scope.End()

	code := chi.URLParam(r, constant.RequestParamCode)

	booking, err := handler.service.GetByConfirmationCode(ctx, code)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by confirmation code")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking retrieved successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// GetUserBookings retrieves the authenticated user's bookings with optional
// status, check-in range and text-search filters plus cursor pagination.
func (handler *Handler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUserBookings")
	defer scope.End()

	userID, ok := ctx.Value(constant.ContextKeyUserID).(string)
	if !ok || userID == "" {
		err := failure.Unauthorized("unauthorized")
		scope.TraceError(err)
		log.Error().Msg("failed to get user ID from context")
		response.WithError(w, err)

		return
	}

	filters, options, err := parseListParams(r)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse query parameters")

		response.WithError(w, err)

		return
	}

	page, err := handler.service.GetUserBookings(ctx, filters, options)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user bookings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User bookings retrieved successfully for user " + userID)

	response.WithJSON(w, http.StatusOK, page)
}

// UpdateBooking applies a partial update to an existing booking.
func (handler *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateBookingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	booking, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update booking")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking updated successfully by user " + user)

	response.WithJSON(w, http.StatusOK, booking)
}

// CancelBooking cancels a booking subject to the cancellation policy.
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.CancelBookingRequest{}
	if r.ContentLength > 0 {
		if err := validator.Validate(r.Body, &req); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to validate request body")

			response.WithError(w, err)

			return
		}
	}

	booking, err := handler.service.Cancel(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking cancelled successfully by user " + user)

	response.WithJSON(w, http.StatusOK, booking)
}

// CheckInBooking stamps a booking as checked-in.
func (handler *Handler) CheckInBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckInBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.CheckIn(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check in booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking checked in successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// CheckOutBooking stamps a booking as checked-out.
func (handler *Handler) CheckOutBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckOutBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.CheckOut(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check out booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking checked out successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// GetUpcomingBookings retrieves the user's next confirmed or pending stays.
func (handler *Handler) GetUpcomingBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUpcomingBookings")
	defer scope.End()

	limit, err := parseLimit(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.Upcoming(ctx, limit)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get upcoming bookings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Upcoming bookings retrieved successfully")

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingHistory retrieves the user's completed stays.
func (handler *Handler) GetBookingHistory(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingHistory")
	defer scope.End()

	limit, err := parseLimit(r)
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.History(ctx, limit)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking history")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking history retrieved successfully")

	response.WithJSON(w, http.StatusOK, bookings)
}

func parseListParams(r *http.Request) (dto.BookingFilters, dto.PageOptions, error) {
	filters := dto.BookingFilters{}
	options := dto.PageOptions{}
	query := r.URL.Query()

	filters.Status = query.Get(constant.RequestParamStatus)
	filters.Search = query.Get(constant.RequestParamSearch)
	options.StartAfter = query.Get(constant.RequestParamStartAfter)

	if raw := query.Get(constant.RequestParamFrom); raw != "" {
		from, err := time.Parse(constant.DateFormat, raw)
		if err != nil {
			return filters, options, failure.BadRequestFromString("from must be a valid timestamp") // nolint:wrapcheck
		}

		filters.From = &from
	}

	if raw := query.Get(constant.RequestParamTo); raw != "" {
		to, err := time.Parse(constant.DateFormat, raw)
		if err != nil {
			return filters, options, failure.BadRequestFromString("to must be a valid timestamp") // nolint:wrapcheck
		}

		filters.To = &to
	}

	if raw := query.Get(constant.RequestParamLimit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filters, options, failure.BadRequestFromString("limit must be a positive integer") // nolint:wrapcheck
		}

		options.Limit = limit
	}

	if raw := query.Get(constant.RequestParamCount); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil || count < 1 {
			return filters, options, failure.BadRequestFromString("count must be a positive integer") // nolint:wrapcheck
		}

		filters.Limit = count
	}

	return filters, options, nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get(constant.RequestParamLimit)
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, failure.BadRequestFromString("limit must be a positive integer") // nolint:wrapcheck
	}

	return limit, nil
}
