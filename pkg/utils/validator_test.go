package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	EventID     string `json:"event_id" validate:"required,uuid4"`
	TicketCount int    `json:"ticket_count" validate:"required,min=1"`
	Status      string `json:"status" validate:"omitempty,oneof=draft published"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(sample{EventID: "7b1d0f3a-5c1e-4b7a-9c2d-1e2f3a4b5c6d", TicketCount: 2}))

	errs := ValidateStruct(sample{EventID: "nope", TicketCount: -1, Status: "live"})
	assert.Equal(t, map[string]string{
		"event_id":     "Must be a valid UUID",
		"ticket_count": "Must be at least 1",
		"status":       "Must be one of: draft, published",
	}, errs)

	errs = ValidateStruct(sample{})
	assert.Equal(t, "This field is required", errs["event_id"])
	assert.Equal(t, "This field is required", errs["ticket_count"])
}

func TestFormatValidationErrors(t *testing.T) {
	got := FormatValidationErrors(map[string]string{"b": "two", "a": "one"})
	assert.Equal(t, "a: one; b: two", got)
}
