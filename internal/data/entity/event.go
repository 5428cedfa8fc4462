package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is the catalog's view of a bookable occurrence. Only capacity,
// price and bookability matter to reservations.
type Event struct {
	Base
	Title     string          `db:"title"`
	StartsAt  time.Time       `db:"starts_at"`
	Capacity  int             `db:"capacity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Status    EventStatus     `db:"status"`
}

// IsBookable: published, not deleted and not yet started.
func (e *Event) IsBookable(now time.Time) bool {
	return e.Status == EventStatusPublished && !e.IsDeleted() && e.StartsAt.After(now)
}
