package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking. Confirmed is the only
// initial state and Cancelled is terminal.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled
}

// Booking rows are never deleted; cancellation is a status transition.
// TicketCount, UnitPrice and TotalPrice are fixed at creation.
type Booking struct {
	BaseNoDelete
	Reference   string          `db:"reference"`
	EventID     uuid.UUID       `db:"event_id"`
	UserID      uuid.UUID       `db:"user_id"`
	TicketCount int             `db:"ticket_count"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price"`
	Status      BookingStatus   `db:"status"`
}

// IsConfirmed reports whether the booking still holds capacity.
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// OwnedBy reports whether userID made the booking.
func (b *Booking) OwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// Cancel performs the confirmed -> cancelled transition. It reports false and
// leaves the booking untouched when it is already cancelled.
func (b *Booking) Cancel(at time.Time) bool {
	if b.Status == BookingStatusCancelled {
		return false
	}
	b.Status = BookingStatusCancelled
	b.UpdatedAt = at
	return true
}
