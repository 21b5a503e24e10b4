/*
handlers.go - HTTP API handlers for the booking engine

PURPOSE:
  Exposes the reservation engine via REST API. Handles HTTP
  request/response, JSON serialization and field-shape validation, and
  delegates everything else to the domain logic.

ENDPOINTS:
  Bookings:
    POST   /api/bookings        Create a booking
    GET    /api/bookings/{id}   Get a booking
    PUT    /api/bookings/{id}   Update dates and optionally guest fields
    DELETE /api/bookings/{id}   Cancel (bookings are never deleted)

  Availability:
    GET    /api/availability    Free days in a window (?from=&to=,
                                defaults to today .. today+1 month)

ERROR HANDLING:
  Domain outcomes map to HTTP status codes:
  - 400: Validation errors, invalid input
  - 404: Reservation not found
  - 409: Date conflict, mutation of a cancelled reservation
  - 500: Store/internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/island/booking-engine/booking"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Bookings     *booking.Service
	Availability *booking.Availability

	validate *validator.Validate
}

// NewHandler creates a new handler over the given store.
func NewHandler(store booking.TxStore) *Handler {
	return &Handler{
		Bookings:     booking.NewService(store),
		Availability: booking.NewAvailability(store),
		validate:     validator.New(),
	}
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// CreateBooking creates a new booking.
// POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking request", err)
		return
	}

	arrival, departure, ok := h.parseStay(w, req.Arrival, req.Departure)
	if !ok {
		return
	}

	created, err := h.Bookings.Create(r.Context(), req.GuestName, req.GuestEmail, arrival, departure)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingDTO(created))
}

// GetBooking returns a single booking.
// GET /api/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := booking.ReservationID(chi.URLParam(r, "id"))

	res, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingDTO(res))
}

// UpdateBooking moves a booking to new dates and optionally updates guest
// fields. Omitted guest fields are left unchanged.
// PUT /api/bookings/{id}
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id := booking.ReservationID(chi.URLParam(r, "id"))

	var req UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking request", err)
		return
	}

	arrival, departure, ok := h.parseStay(w, req.Arrival, req.Departure)
	if !ok {
		return
	}

	updated, err := h.Bookings.Update(r.Context(), id, booking.UpdateParams{
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		Arrival:    arrival,
		Departure:  departure,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingDTO(updated))
}

// CancelBooking cancels a booking and frees its days. The record itself
// is kept.
// DELETE /api/bookings/{id}
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := booking.ReservationID(chi.URLParam(r, "id"))

	cancelled, err := h.Bookings.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingDTO(cancelled))
}

// =============================================================================
// AVAILABILITY HANDLER
// =============================================================================

// GetAvailability returns the free days in an inclusive window.
// GET /api/availability?from=YYYY-MM-DD&to=YYYY-MM-DD
// Defaults to the next month starting today when the window is omitted.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	from := booking.Today()
	to := from.AddDays(30)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := booking.ParseDay(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'from' date (use YYYY-MM-DD)", err)
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := booking.ParseDay(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'to' date (use YYYY-MM-DD)", err)
			return
		}
		to = parsed
	}

	free, err := h.Availability.AvailableDays(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityDTO{
		From:          from.String(),
		To:            to.String(),
		AvailableDays: toDayStrings(free),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) parseStay(w http.ResponseWriter, arrivalStr, departureStr string) (booking.Day, booking.Day, bool) {
	arrival, err := booking.ParseDay(arrivalStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid arrival date (use YYYY-MM-DD)", err)
		return booking.Day{}, booking.Day{}, false
	}
	departure, err := booking.ParseDay(departureStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid departure date (use YYYY-MM-DD)", err)
		return booking.Day{}, booking.Day{}, false
	}
	return arrival, departure, true
}

// writeDomainError maps engine outcomes to HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	var unavailable *booking.UnavailableDaysError
	switch {
	case errors.As(err, &unavailable):
		resp := ErrorResponse{
			Error:   unavailable.Error(),
			Code:    "days_unavailable",
			Details: toDayStrings(unavailable.Days),
		}
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, booking.ErrReservationNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, booking.ErrReservationCancelled):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "cancelled"})
	case booking.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_request"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error", Details: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
