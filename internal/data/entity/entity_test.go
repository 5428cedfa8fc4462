package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBookingCancel(t *testing.T) {
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	booking := &Booking{
		BaseNoDelete: BaseNoDelete{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		Status:       BookingStatusConfirmed,
	}

	first := created.Add(time.Hour)
	assert.True(t, booking.Cancel(first))
	assert.Equal(t, BookingStatusCancelled, booking.Status)
	assert.Equal(t, first, booking.UpdatedAt)
	assert.False(t, booking.IsConfirmed())

	// second cancel is a no-op
	assert.False(t, booking.Cancel(first.Add(time.Hour)))
	assert.Equal(t, BookingStatusCancelled, booking.Status)
	assert.Equal(t, first, booking.UpdatedAt)
}

func TestBookingOwnedBy(t *testing.T) {
	owner := uuid.New()
	booking := &Booking{UserID: owner}

	assert.True(t, booking.OwnedBy(owner))
	assert.False(t, booking.OwnedBy(uuid.New()))
}

func TestBookingStatusValid(t *testing.T) {
	assert.True(t, BookingStatusConfirmed.Valid())
	assert.True(t, BookingStatusCancelled.Valid())
	assert.False(t, BookingStatus("pending").Valid())
}

func TestEventIsBookable(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	deleted := now.Add(-time.Hour)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"published future", Event{Status: EventStatusPublished, StartsAt: now.Add(time.Hour)}, true},
		{"draft", Event{Status: EventStatusDraft, StartsAt: now.Add(time.Hour)}, false},
		{"cancelled", Event{Status: EventStatusCancelled, StartsAt: now.Add(time.Hour)}, false},
		{"already started", Event{Status: EventStatusPublished, StartsAt: now}, false},
		{"past", Event{Status: EventStatusPublished, StartsAt: now.Add(-time.Hour)}, false},
		{"deleted", Event{Base: Base{DeletedAt: &deleted}, Status: EventStatusPublished, StartsAt: now.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.IsBookable(now))
		})
	}
}

func TestSessionIsActive(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	assert.True(t, (&Session{ExpiresAt: now.Add(time.Hour)}).IsActive(now))
	assert.False(t, (&Session{ExpiresAt: now}).IsActive(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}).IsActive(now))
}

func TestBaseIsDeleted(t *testing.T) {
	deleted := time.Now()

	assert.False(t, Base{}.IsDeleted())
	assert.True(t, Base{DeletedAt: &deleted}.IsDeleted())
}
