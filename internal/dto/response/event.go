package response

import (
	"time"

	"event-booking/internal/data/entity"
)

type EventResponse struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	StartsAt  time.Time          `json:"starts_at"`
	Capacity  int                `json:"capacity"`
	UnitPrice string             `json:"unit_price"`
	Status    entity.EventStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AvailabilityResponse is a point-in-time view; it can be stale by the time
// a reservation runs.
type AvailabilityResponse struct {
	EventID   string `json:"event_id"`
	Capacity  int    `json:"capacity"`
	Confirmed int    `json:"confirmed"`
	Remaining int    `json:"remaining"`
	UnitPrice string `json:"unit_price"`
	Bookable  bool   `json:"bookable"`
}

func EventToResponse(event *entity.Event) EventResponse {
	return EventResponse{
		ID:        event.ID.String(),
		Title:     event.Title,
		StartsAt:  event.StartsAt,
		Capacity:  event.Capacity,
		UnitPrice: event.UnitPrice.StringFixed(2),
		Status:    event.Status,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}
