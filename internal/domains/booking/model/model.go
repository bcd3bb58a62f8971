package model

import (
	"math/rand/v2"
	"time"

	"stayhub/shared/docstore"
)

const (
	CollectionName = "bookings"
	EntityName     = "booking"

	FieldConfirmationCode   = "confirmationCode"
	FieldUserID             = "userId"
	FieldStatus             = "status"
	FieldCheckIn            = "checkIn"
	FieldCheckOut           = "checkOut"
	FieldGuests             = "guests"
	FieldRooms              = "rooms"
	FieldCreatedAt          = "createdAt"
	FieldUpdatedAt          = "updatedAt"
	FieldCheckedInAt        = "checkedInAt"
	FieldCheckedOutAt       = "checkedOutAt"
	FieldCancellationReason = "cancellationReason"
	FieldPaymentStatus      = "paymentInfo.status"
	FieldPaymentDate        = "paymentInfo.paymentDate"
	FieldGuestInfo          = "guestInfo"
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
	StatusCancelled  = "cancelled"

	// StatusNoShow is part of the domain vocabulary but no operation assigns
	// it yet. TODO: add a markNoShow operation once the desk workflow that
	// should trigger it is decided.
	StatusNoShow = "no-show"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"

	PaymentMethodCard   = "card"
	PaymentMethodPaypal = "paypal"
	PaymentMethodBank   = "bank"
)

const (
	ConfirmationCodeLength   = 8
	confirmationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	cancellationNotice = 24 * time.Hour
)

type GuestInfo struct {
	Title           string `json:"title"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Country         string `json:"country"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}

// Pricing is snapshotted at creation and never recomputed afterwards.
type Pricing struct {
	RoomRate   float64 `json:"roomRate"`
	Taxes      float64 `json:"taxes"`
	ServiceFee float64 `json:"serviceFee"`
	Total      float64 `json:"total"`
	Currency   string  `json:"currency"`
}

type PaymentInfo struct {
	Method        string         `json:"method"`
	Status        string         `json:"status"`
	TransactionID string         `json:"transactionId,omitempty"`
	PaymentDate   *docstore.Time `json:"paymentDate,omitempty"`
}

type Policies struct {
	CancellationDeadline docstore.Time `json:"cancellationDeadline"`
	CanModify            bool          `json:"canModify"`
	CanCancel            bool          `json:"canCancel"`
}

// Booking is stored as a document; json tags define the field names used by
// queries and partial updates. The id lives outside the document.
type Booking struct {
	ID                 string         `json:"-"`
	ConfirmationCode   string         `json:"confirmationCode"`
	UserID             string         `json:"userId"`
	HotelID            string         `json:"hotelId"`
	HotelName          string         `json:"hotelName"`
	HotelLocation      string         `json:"hotelLocation"`
	HotelImage         string         `json:"hotelImage"`
	RoomID             string         `json:"roomId"`
	RoomName           string         `json:"roomName"`
	CheckIn            docstore.Time  `json:"checkIn"`
	CheckOut           docstore.Time  `json:"checkOut"`
	Guests             int            `json:"guests"`
	Rooms              int            `json:"rooms"`
	GuestInfo          GuestInfo      `json:"guestInfo"`
	Pricing            Pricing        `json:"pricing"`
	PaymentInfo        PaymentInfo    `json:"paymentInfo"`
	Status             string         `json:"status"`
	Policies           Policies       `json:"policies"`
	CancellationReason string         `json:"cancellationReason,omitempty"`
	CheckedInAt        *docstore.Time `json:"checkedInAt,omitempty"`
	CheckedOutAt       *docstore.Time `json:"checkedOutAt,omitempty"`
	CreatedAt          docstore.Time  `json:"createdAt"`
	UpdatedAt          docstore.Time  `json:"updatedAt"`
}

// NewConfirmationCode draws 8 characters uniformly from A-Z0-9. The 36^8
// space makes collisions negligible; uniqueness is not enforced.
func NewConfirmationCode() string {
	code := make([]byte, ConfirmationCodeLength)

	for i := range code {
		code[i] = confirmationCodeAlphabet[rand.IntN(len(confirmationCodeAlphabet))]
	}

	return string(code)
}

// CancellationDeadline is fixed at creation: 24 hours before check-in. It is
// not recomputed when the check-in date is later changed.
func CancellationDeadline(checkIn time.Time) time.Time {
	return checkIn.Add(-cancellationNotice)
}
