package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitPrice accepts a JSON number or string and is checked by the service.
type CreateEventRequest struct {
	Title     string          `json:"title" validate:"required,min=3,max=200"`
	StartsAt  time.Time       `json:"starts_at" validate:"required"`
	Capacity  int             `json:"capacity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Status    string          `json:"status" validate:"omitempty,oneof=draft published"`
}

type UpdatePriceRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type UpdateCapacityRequest struct {
	Capacity int `json:"capacity" validate:"required,min=1"`
}

type UpdateEventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published cancelled"`
}
