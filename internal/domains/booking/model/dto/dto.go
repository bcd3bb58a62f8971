package dto

import (
	"time"

	"stayhub/internal/domains/booking/model"
	"stayhub/shared/constant"
	"stayhub/shared/docstore"
)

type GuestInfoRequest struct {
	Title           string `json:"title"           validate:"omitempty,max=20"`
	FirstName       string `json:"firstName"       validate:"required,max=100"`
	LastName        string `json:"lastName"        validate:"required,max=100"`
	Email           string `json:"email"           validate:"required,email,max=100"`
	Phone           string `json:"phone"           validate:"required,max=20"`
	Country         string `json:"country"         validate:"required,max=100"`
	SpecialRequests string `json:"specialRequests" validate:"omitempty,max=500"`
}

type PricingRequest struct {
	RoomRate   float64 `json:"roomRate"   validate:"gte=0"`
	Taxes      float64 `json:"taxes"      validate:"gte=0"`
	ServiceFee float64 `json:"serviceFee" validate:"gte=0"`
	Total      float64 `json:"total"      validate:"gte=0"`
	Currency   string  `json:"currency"   validate:"required,max=10"`
}

type CreateBookingRequest struct {
	HotelID       string           `json:"hotelId"       validate:"required"`
	HotelName     string           `json:"hotelName"     validate:"required,max=200"`
	HotelLocation string           `json:"hotelLocation" validate:"omitempty,max=200"`
	HotelImage    string           `json:"hotelImage"    validate:"omitempty,max=500"`
	RoomID        string           `json:"roomId"        validate:"required"`
	RoomName      string           `json:"roomName"      validate:"omitempty,max=200"`
	CheckIn       string           `json:"checkIn"       validate:"required"`
	CheckOut      string           `json:"checkOut"      validate:"required"`
	Guests        int              `json:"guests"        validate:"required,min=1"`
	Rooms         int              `json:"rooms"         validate:"required,min=1"`
	GuestInfo     GuestInfoRequest `json:"guestInfo"     validate:"required"`
	Pricing       PricingRequest   `json:"pricing"       validate:"required"`
	PaymentMethod string           `json:"paymentMethod" validate:"omitempty,oneof=card paypal bank"`
}

// ToModel builds the initial record. Check-out is not validated against
// check-in; dates are taken as given.
func (c *CreateBookingRequest) ToModel(userID, confirmationCode string, now time.Time) (model.Booking, error) {
	checkIn, err := time.Parse(constant.DateFormat, c.CheckIn)
	if err != nil {
		return model.Booking{}, err
	}

	checkOut, err := time.Parse(constant.DateFormat, c.CheckOut)
	if err != nil {
		return model.Booking{}, err
	}

	method := c.PaymentMethod
	if method == constant.Empty {
		method = model.PaymentMethodCard
	}

	return model.Booking{
		ConfirmationCode: confirmationCode,
		UserID:           userID,
		HotelID:          c.HotelID,
		HotelName:        c.HotelName,
		HotelLocation:    c.HotelLocation,
		HotelImage:       c.HotelImage,
		RoomID:           c.RoomID,
		RoomName:         c.RoomName,
		CheckIn:          docstore.NewTime(checkIn),
		CheckOut:         docstore.NewTime(checkOut),
		Guests:           c.Guests,
		Rooms:            c.Rooms,
		GuestInfo: model.GuestInfo{
			Title:           c.GuestInfo.Title,
			FirstName:       c.GuestInfo.FirstName,
			LastName:        c.GuestInfo.LastName,
			Email:           c.GuestInfo.Email,
			Phone:           c.GuestInfo.Phone,
			Country:         c.GuestInfo.Country,
			SpecialRequests: c.GuestInfo.SpecialRequests,
		},
		Pricing: model.Pricing{
			RoomRate:   c.Pricing.RoomRate,
			Taxes:      c.Pricing.Taxes,
			ServiceFee: c.Pricing.ServiceFee,
			Total:      c.Pricing.Total,
			Currency:   c.Pricing.Currency,
		},
		PaymentInfo: model.PaymentInfo{
			Method: method,
			Status: model.PaymentStatusPending,
		},
		Status: model.StatusPending,
		Policies: model.Policies{
			CancellationDeadline: docstore.NewTime(model.CancellationDeadline(checkIn)),
			CanModify:            true,
			CanCancel:            true,
		},
		CreatedAt: docstore.NewTime(now),
		UpdatedAt: docstore.NewTime(now),
	}, nil
}

type GuestInfoPatch struct {
	Title           *string `json:"title"           validate:"omitempty,max=20"`
	FirstName       *string `json:"firstName"       validate:"omitempty,max=100"`
	LastName        *string `json:"lastName"        validate:"omitempty,max=100"`
	Email           *string `json:"email"           validate:"omitempty,email,max=100"`
	Phone           *string `json:"phone"           validate:"omitempty,max=20"`
	Country         *string `json:"country"         validate:"omitempty,max=100"`
	SpecialRequests *string `json:"specialRequests" validate:"omitempty,max=500"`
}

type UpdateBookingRequest struct {
	CheckIn       *string         `json:"checkIn"       validate:"omitempty"`
	CheckOut      *string         `json:"checkOut"      validate:"omitempty"`
	Guests        *int            `json:"guests"        validate:"omitempty,min=1"`
	Rooms         *int            `json:"rooms"         validate:"omitempty,min=1"`
	GuestInfo     *GuestInfoPatch `json:"guestInfo"     validate:"omitempty"`
	Status        *string         `json:"status"        validate:"omitempty,oneof=pending confirmed checked-in checked-out cancelled no-show"`
	PaymentStatus *string         `json:"paymentStatus" validate:"omitempty,oneof=pending completed failed refunded"`
}

func (u *UpdateBookingRequest) IsEmpty() bool {
	return u.CheckIn == nil && u.CheckOut == nil && u.Guests == nil && u.Rooms == nil &&
		u.GuestInfo == nil && u.Status == nil && u.PaymentStatus == nil
}

// Fields flattens the patch into dot-path document fields. A completed
// payment status additionally stamps the payment date and forces the booking
// to confirmed in the same write; the cancellation deadline is never touched
// here, even when the check-in date changes.
func (u *UpdateBookingRequest) Fields(now time.Time) (map[string]any, error) {
	fields := map[string]any{
		model.FieldUpdatedAt: docstore.NewTime(now),
	}

	if u.CheckIn != nil {
		checkIn, err := time.Parse(constant.DateFormat, *u.CheckIn)
		if err != nil {
			return nil, err
		}

		fields[model.FieldCheckIn] = docstore.NewTime(checkIn)
	}

	if u.CheckOut != nil {
		checkOut, err := time.Parse(constant.DateFormat, *u.CheckOut)
		if err != nil {
			return nil, err
		}

		fields[model.FieldCheckOut] = docstore.NewTime(checkOut)
	}

	if u.Guests != nil {
		fields[model.FieldGuests] = *u.Guests
	}

	if u.Rooms != nil {
		fields[model.FieldRooms] = *u.Rooms
	}

	if u.GuestInfo != nil {
		guestFields := map[string]*string{
			"title":           u.GuestInfo.Title,
			"firstName":       u.GuestInfo.FirstName,
			"lastName":        u.GuestInfo.LastName,
			"email":           u.GuestInfo.Email,
			"phone":           u.GuestInfo.Phone,
			"country":         u.GuestInfo.Country,
			"specialRequests": u.GuestInfo.SpecialRequests,
		}

		for name, value := range guestFields {
			if value != nil {
				fields[model.FieldGuestInfo+"."+name] = *value
			}
		}
	}

	if u.Status != nil {
		fields[model.FieldStatus] = *u.Status
	}

	if u.PaymentStatus != nil {
		fields[model.FieldPaymentStatus] = *u.PaymentStatus

		if *u.PaymentStatus == model.PaymentStatusCompleted {
			fields[model.FieldPaymentDate] = docstore.NewTime(now)
			fields[model.FieldStatus] = model.StatusConfirmed
		}
	}

	return fields, nil
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type BookingFilters struct {
	Status string
	From   *time.Time
	To     *time.Time
	Search string
	Limit  int
}

type PageOptions struct {
	Limit      int
	StartAfter string
}

type BookingResponse struct {
	ID string `json:"id"`
	model.Booking
}

func (r *BookingResponse) FromModel(mod model.Booking) {
	r.ID = mod.ID
	r.Booking = mod
}

type BookingPage struct {
	Bookings []BookingResponse `json:"bookings"`
	HasMore  bool              `json:"hasMore"`
	LastID   string            `json:"lastId,omitempty"`
	Total    int               `json:"total"`
}
