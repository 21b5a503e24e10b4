/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Field-shape validation (required fields, email shape, date format) lives
  here via validator struct tags and runs in the handlers. The engine
  re-asserts the arrival < departure invariant itself - the API layer is
  not trusted with domain correctness.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/island/booking-engine/booking"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// BookingDTO represents a reservation in API responses.
type BookingDTO struct {
	ID         string `json:"id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	Arrival    string `json:"arrival"`
	Departure  string `json:"departure"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// CreateBookingRequest is the request to create a booking.
type CreateBookingRequest struct {
	GuestName  string `json:"guest_name" validate:"required"`
	GuestEmail string `json:"guest_email" validate:"required,email"`
	Arrival    string `json:"arrival" validate:"required"`
	Departure  string `json:"departure" validate:"required"`
}

// UpdateBookingRequest is the request to update a booking.
// Omitted guest fields are left unchanged; the dates are mandatory.
type UpdateBookingRequest struct {
	GuestName  *string `json:"guest_name,omitempty" validate:"omitempty,min=1"`
	GuestEmail *string `json:"guest_email,omitempty" validate:"omitempty,email"`
	Arrival    string  `json:"arrival" validate:"required"`
	Departure  string  `json:"departure" validate:"required"`
}

// AvailabilityDTO is the response to an availability query.
type AvailabilityDTO struct {
	From          string   `json:"from"`
	To            string   `json:"to"`
	AvailableDays []string `json:"available_days"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toBookingDTO(r *booking.Reservation) BookingDTO {
	return BookingDTO{
		ID:         string(r.ID),
		GuestName:  r.GuestName,
		GuestEmail: r.GuestEmail,
		Arrival:    r.Arrival.String(),
		Departure:  r.Departure.String(),
		Status:     r.Status.String(),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
}

func toDayStrings(days []booking.Day) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}
