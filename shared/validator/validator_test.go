package validator_test

import (
	"stayhub/shared/validator"
	"strings"
	"testing"
)

type bookingTestStruct struct {
	HotelName string `validate:"required,max=200"      json:"hotelName"`
	Email     string `validate:"required,email"        json:"email"`
	Guests    int    `validate:"gte=1,lte=10"          json:"guests"`
	Status    string `validate:"oneof=pending confirmed cancelled" json:"status"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		data        *bookingTestStruct
		expectError bool
	}{
		{
			name: "valid struct",
			data: &bookingTestStruct{
				HotelName: "Grand Plaza",
				Email:     "ada@example.com",
				Guests:    2,
				Status:    "pending",
			},
			expectError: false,
		},
		{
			name: "missing required field",
			data: &bookingTestStruct{
				Email:  "ada@example.com",
				Guests: 2,
				Status: "pending",
			},
			expectError: true,
		},
		{
			name: "invalid email",
			data: &bookingTestStruct{
				HotelName: "Grand Plaza",
				Email:     "invalid-email",
				Guests:    2,
				Status:    "pending",
			},
			expectError: true,
		},
		{
			name: "guests out of range",
			data: &bookingTestStruct{
				HotelName: "Grand Plaza",
				Email:     "ada@example.com",
				Guests:    15,
				Status:    "pending",
			},
			expectError: true,
		},
		{
			name: "invalid status",
			data: &bookingTestStruct{
				HotelName: "Grand Plaza",
				Email:     "ada@example.com",
				Guests:    2,
				Status:    "unknown",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(tt.data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name        string
		field       interface{}
		tag         string
		expectError bool
	}{
		{
			name:        "valid required string",
			field:       "test",
			tag:         "required",
			expectError: false,
		},
		{
			name:        "empty required string",
			field:       "",
			tag:         "required",
			expectError: true,
		},
		{
			name:        "valid email",
			field:       "test@example.com",
			tag:         "email",
			expectError: false,
		},
		{
			name:        "invalid email",
			field:       "invalid-email",
			tag:         "email",
			expectError: true,
		},
		{
			name:        "valid rfc3339 datetime",
			field:       "2026-09-10T15:00:00Z",
			tag:         "datetime=2006-01-02T15:04:05Z07:00",
			expectError: false,
		},
		{
			name:        "invalid rfc3339 datetime",
			field:       "10-09-2026",
			tag:         "datetime=2006-01-02T15:04:05Z07:00",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestValidate_FromReader(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name:        "valid body",
			body:        `{"hotelName":"Grand Plaza","email":"ada@example.com","guests":2,"status":"pending"}`,
			expectError: false,
		},
		{
			name:        "malformed json",
			body:        `{"hotelName":`,
			expectError: true,
		},
		{
			name:        "valid json failing validation",
			body:        `{"hotelName":"","email":"ada@example.com","guests":2,"status":"pending"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data bookingTestStruct
			err := validator.Validate(strings.NewReader(tt.body), &data)

			if tt.expectError && err == nil {
				t.Error("expected validation error, got nil")
			}

			if !tt.expectError && err != nil {
				t.Errorf("expected no validation error, got: %v", err)
			}
		})
	}
}
