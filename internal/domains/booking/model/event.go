package model

import (
	"stayhub/shared/docstore"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// Event is published on lifecycle transitions. Refund execution and guest
// notifications are handled by downstream consumers.
type Event struct {
	Type             string        `json:"type"`
	BookingID        string        `json:"bookingId"`
	UserID           string        `json:"userId"`
	ConfirmationCode string        `json:"confirmationCode"`
	Status           string        `json:"status"`
	OccurredAt       docstore.Time `json:"occurredAt"`
}
