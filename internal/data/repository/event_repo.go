package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventRepository is the event capacity provider. Capacity changes go through
// BookingRepository.LockEvent so they serialize with reservations.
type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal, at time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.EventStatus, at time.Time) error
}

const eventColumns = `id, title, starts_at, capacity, unit_price, status, created_at, updated_at, deleted_at`

type eventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEventRepository(db database.PgxIface, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (id, title, starts_at, capacity, unit_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.Title,
		event.StartsAt,
		event.Capacity,
		event.UnitPrice,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("title", event.Title),
		)
		return fmt.Errorf("create event %s: %w", event.Title, err)
	}

	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND deleted_at IS NULL`

	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("find event by ID %s: %w", id.String(), err)
	}

	return event, nil
}

func (r *eventRepository) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal, at time.Time) error {
	query := `UPDATE events SET unit_price = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, price, at)
	if err != nil {
		r.log.Error("Failed to update event price",
			zap.Error(err),
			zap.String("event_id", id.String()),
			zap.String("price", price.StringFixed(2)),
		)
		return fmt.Errorf("update price of event %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.EventStatus, at time.Time) error {
	query := `UPDATE events SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, status, at)
	if err != nil {
		r.log.Error("Failed to update event status",
			zap.Error(err),
			zap.String("event_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update event %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func scanEvent(row rowScanner) (*entity.Event, error) {
	var event entity.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.StartsAt,
		&event.Capacity,
		&event.UnitPrice,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &event, nil
}
