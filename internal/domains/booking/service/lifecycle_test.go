package service_test

import (
	"errors"
	"testing"
	"time"

	"stayhub/config"
	kafkaMocks "stayhub/infras/kafka/mocks"
	"stayhub/infras/otel/mocks"
	"stayhub/internal/domains/booking/model"
	"stayhub/internal/domains/booking/model/dto"
	"stayhub/internal/domains/booking/repository"
	"stayhub/internal/domains/booking/service"
	cacheMocks "stayhub/shared/cache/mocks"
	"stayhub/shared/docstore"
	"stayhub/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stepClock is a mutable clock shared between the test and the service.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	return c.now
}

// newLifecycleService wires the real repository over the in-memory store, with
// cache and event publishing stubbed out.
func newLifecycleService(t *testing.T, clk *stepClock) service.Booking {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	mockEvents := kafkaMocks.NewMockClient(ctrl)
	mockEvents.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Kafka.Topics.BookingEvents = "booking-events"

	otl := mocks.NewOtel()
	repo := repository.New(docstore.NewMemoryStore(), otl)

	return service.New(repo, cfg, mockCache, mockEvents, clk, otl)
}

func lifecycleRequest(checkIn, checkOut time.Time) dto.CreateBookingRequest {
	req := createRequest()
	req.CheckIn = checkIn.Format(time.RFC3339)
	req.CheckOut = checkOut.Format(time.RFC3339)

	return req
}

func TestBookingLifecycle_CancelBeforeDeadline(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)
	created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2)))
	require.NoError(t, err)

	deadline := checkIn.Add(-24 * time.Hour)
	assert.True(t, deadline.Equal(created.Policies.CancellationDeadline.Time))

	// Two days before the deadline.
	clk.now = base.AddDate(0, 0, 8)

	cancelled, err := svc.Cancel(ctx, created.ID, dto.CancelBookingRequest{Reason: "change of plans"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, model.PaymentStatusRefunded, cancelled.PaymentInfo.Status)
	assert.Equal(t, "change of plans", cancelled.CancellationReason)

	// There is no terminal-state guard: a second cancel goes through again.
	again, err := svc.Cancel(ctx, created.ID, dto.CancelBookingRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, again.Status)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, fetched.Status)
}

func TestBookingLifecycle_CancelAfterDeadline(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)
	created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2)))
	require.NoError(t, err)

	// Twelve hours before check-in, past the 24-hour notice.
	clk.now = checkIn.Add(-12 * time.Hour)

	_, err = svc.Cancel(ctx, created.ID, dto.CancelBookingRequest{})

	require.Error(t, err)
	assert.Equal(t, failure.CodePastDeadline, failure.CodeOf(err))

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, fetched.Status, "a rejected cancel leaves the booking untouched")
}

func TestBookingLifecycle_PaymentCompletionConfirms(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)
	created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2)))
	require.NoError(t, err)

	clk.now = base.Add(time.Hour)

	completed := model.PaymentStatusCompleted
	updated, err := svc.Update(ctx, created.ID, dto.UpdateBookingRequest{PaymentStatus: &completed})
	require.NoError(t, err)

	assert.Equal(t, model.StatusConfirmed, updated.Status)
	assert.Equal(t, model.PaymentStatusCompleted, updated.PaymentInfo.Status)
	require.NotNil(t, updated.PaymentInfo.PaymentDate)
	assert.True(t, clk.now.Equal(updated.PaymentInfo.PaymentDate.Time))
	assert.True(t, clk.now.Equal(updated.UpdatedAt.Time))
}

func TestBookingLifecycle_DeadlineFixedAfterCheckInChange(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)
	created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2)))
	require.NoError(t, err)

	originalDeadline := created.Policies.CancellationDeadline.Time

	newCheckIn := checkIn.AddDate(0, 0, 5).Format(time.RFC3339)
	updated, err := svc.Update(ctx, created.ID, dto.UpdateBookingRequest{CheckIn: &newCheckIn})
	require.NoError(t, err)

	assert.True(t, checkIn.AddDate(0, 0, 5).Equal(updated.CheckIn.Time))
	assert.True(t, originalDeadline.Equal(updated.Policies.CancellationDeadline.Time),
		"the deadline keeps its value from creation")
}

func TestBookingLifecycle_CheckInStampsLatest(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)
	created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2)))
	require.NoError(t, err)

	clk.now = checkIn.Add(time.Hour)

	first, err := svc.CheckIn(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, first.CheckedInAt)
	assert.True(t, clk.now.Equal(first.CheckedInAt.Time))

	clk.now = checkIn.Add(3 * time.Hour)

	second, err := svc.CheckIn(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, second.CheckedInAt)
	assert.Equal(t, model.StatusCheckedIn, second.Status)
	assert.True(t, clk.now.Equal(second.CheckedInAt.Time), "the stamp is overwritten on repeat check-in")

	clk.now = checkIn.Add(48 * time.Hour)

	out, err := svc.CheckOut(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, out.CheckedOutAt)
	assert.Equal(t, model.StatusCheckedOut, out.Status)
	assert.True(t, clk.now.Equal(out.CheckedOutAt.Time))
}

func TestBookingLifecycle_UpcomingAndHistory(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 2)
	checkOut := base.AddDate(0, 0, 4)

	created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkOut))
	require.NoError(t, err)

	upcoming, err := svc.Upcoming(ctx, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, created.ID, upcoming[0].ID)

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	// Past the stay entirely.
	clk.now = base.AddDate(0, 0, 5)

	upcoming, err = svc.Upcoming(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	history, err = svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, created.ID, history[0].ID)
}

func TestBookingLifecycle_UpcomingExcludesCancelled(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)
	created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2)))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, created.ID, dto.CancelBookingRequest{})
	require.NoError(t, err)

	upcoming, err := svc.Upcoming(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}

func TestBookingLifecycle_Pagination(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)

	ids := make([]string, 5)
	for i := range ids {
		clk.now = base.Add(time.Duration(i) * time.Hour)

		created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2)))
		require.NoError(t, err)

		ids[i] = created.ID
	}

	page1, err := svc.GetUserBookings(ctx, dto.BookingFilters{}, dto.PageOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Bookings, 2)
	assert.True(t, page1.HasMore)
	assert.Equal(t, ids[4], page1.Bookings[0].ID, "newest booking comes first")
	assert.Equal(t, ids[3], page1.Bookings[1].ID)
	assert.Equal(t, ids[3], page1.LastID)

	page2, err := svc.GetUserBookings(ctx, dto.BookingFilters{}, dto.PageOptions{Limit: 2, StartAfter: page1.LastID})
	require.NoError(t, err)
	require.Len(t, page2.Bookings, 2)
	assert.True(t, page2.HasMore)
	assert.Equal(t, ids[2], page2.Bookings[0].ID)
	assert.Equal(t, ids[1], page2.Bookings[1].ID)

	page3, err := svc.GetUserBookings(ctx, dto.BookingFilters{}, dto.PageOptions{Limit: 2, StartAfter: page2.LastID})
	require.NoError(t, err)
	require.Len(t, page3.Bookings, 1)
	assert.False(t, page3.HasMore)
	assert.Equal(t, ids[0], page3.Bookings[0].ID)

	_, err = svc.GetUserBookings(ctx, dto.BookingFilters{}, dto.PageOptions{Limit: 2, StartAfter: "stale-cursor"})
	require.Error(t, err)
	assert.Equal(t, failure.CodeBadRequest, failure.CodeOf(err))
}

func TestBookingLifecycle_PageScopedSearch(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)
	names := []string{"Alpine Lodge", "Seaside Resort", "Grand Plaza"}

	for i, name := range names {
		clk.now = base.Add(time.Duration(i) * time.Hour)

		req := lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2))
		req.HotelName = name

		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	// The only match is the oldest booking, outside the fetched page of two.
	res, err := svc.GetUserBookings(ctx, dto.BookingFilters{Search: "alpine"}, dto.PageOptions{Limit: 2})
	require.NoError(t, err)

	assert.Empty(t, res.Bookings)
	assert.Zero(t, res.Total)
	assert.True(t, res.HasMore)
	assert.NotEmpty(t, res.LastID)
}

func TestBookingLifecycle_GetByConfirmationCode(t *testing.T) {
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	clk := &stepClock{now: base}
	svc := newLifecycleService(t, clk)
	ctx := userContext()

	checkIn := base.AddDate(0, 0, 10)
	created, err := svc.Create(ctx, lifecycleRequest(checkIn, checkIn.AddDate(0, 0, 2)))
	require.NoError(t, err)

	found, err := svc.GetByConfirmationCode(ctx, created.ConfirmationCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByConfirmationCode(ctx, "NOPE0000")
	require.Error(t, err)
	assert.Equal(t, failure.CodeNotFound, failure.CodeOf(err))
}
