package response

import (
	"time"

	"event-booking/internal/data/entity"
)

// Prices are fixed-point strings with two fractional digits.
type BookingResponse struct {
	ID          string               `json:"id"`
	Reference   string               `json:"reference"`
	EventID     string               `json:"event_id"`
	UserID      string               `json:"user_id"`
	TicketCount int                  `json:"ticket_count"`
	UnitPrice   string               `json:"unit_price"`
	TotalPrice  string               `json:"total_price"`
	Status      entity.BookingStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ReservationResponse is returned by reserve; Replayed marks an idempotent repeat.
type ReservationResponse struct {
	BookingResponse
	Remaining int  `json:"remaining"`
	Replayed  bool `json:"replayed,omitempty"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID.String(),
		Reference:   booking.Reference,
		EventID:     booking.EventID.String(),
		UserID:      booking.UserID.String(),
		TicketCount: booking.TicketCount,
		UnitPrice:   booking.UnitPrice.StringFixed(2),
		TotalPrice:  booking.TotalPrice.StringFixed(2),
		Status:      booking.Status,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, booking := range bookings {
		out[i] = BookingToResponse(booking)
	}
	return out
}
