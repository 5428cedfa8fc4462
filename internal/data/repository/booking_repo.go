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
	"go.uber.org/zap"
)

// EventLedger is one event's capacity accounting. It is only valid inside the
// callback passed to LockEvent, while the event row lock is held.
type EventLedger interface {
	Event() *entity.Event
	ConfirmedTickets(ctx context.Context) (int, error)
	InsertBooking(ctx context.Context, booking *entity.Booking) error
	SetCapacity(ctx context.Context, capacity int, at time.Time) error
}

// BookingLedger exposes one locked booking row inside LockBooking.
type BookingLedger interface {
	Booking() *entity.Booking
	SaveStatus(ctx context.Context) error
}

type BookingRepository interface {
	// LockEvent runs fn in a transaction holding an exclusive lock on the
	// event row. Writes made through the ledger commit only if fn returns nil.
	LockEvent(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context, ledger EventLedger) error) error
	LockBooking(ctx context.Context, bookingID uuid.UUID, fn func(ctx context.Context, ledger BookingLedger) error) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*entity.Booking, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Booking, error)

	// SumConfirmedByEventID is an unlocked read, fine for display only.
	SumConfirmedByEventID(ctx context.Context, eventID uuid.UUID) (int, error)
}

const bookingColumns = `id, reference, event_id, user_id, ticket_count, unit_price, total_price, status, created_at, updated_at`

type bookingRepository struct {
	db          database.PgxIface
	lockTimeout time.Duration
	log         *zap.Logger
}

func NewBookingRepository(db database.PgxIface, lockTimeout time.Duration, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:          db,
		lockTimeout: lockTimeout,
		log:         log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) LockEvent(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context, ledger EventLedger) error) error {
	return r.inTx(ctx, "lock event", func(tx pgx.Tx) error {
		query := `
			SELECT ` + eventColumns + `
			FROM events
			WHERE id = $1 AND deleted_at IS NULL
			FOR UPDATE
		`

		event, err := scanEvent(tx.QueryRow(ctx, query, eventID))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
		}
		if err != nil {
			return classify(fmt.Sprintf("lock event %s", eventID), err)
		}

		return fn(ctx, &eventLedger{tx: tx, event: event})
	})
}

func (r *bookingRepository) LockBooking(ctx context.Context, bookingID uuid.UUID, fn func(ctx context.Context, ledger BookingLedger) error) error {
	return r.inTx(ctx, "lock booking", func(tx pgx.Tx) error {
		query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

		booking, err := scanBooking(tx.QueryRow(ctx, query, bookingID))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		if err != nil {
			return classify(fmt.Sprintf("lock booking %s", bookingID), err)
		}

		return fn(ctx, &bookingLedger{tx: tx, booking: booking})
	})
}

// inTx bounds lock waits with lock_timeout and rolls back on any error,
// including a cancelled context, so no partial booking is ever committed.
func (r *bookingRepository) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return classify("begin "+op, err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Warn("Rollback failed", zap.String("operation", op), zap.Error(rbErr))
		}
	}()

	if r.lockTimeout > 0 {
		// SET cannot take bind parameters; the value is an integer we control.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())
		if _, err = tx.Exec(ctx, stmt); err != nil {
			return classify("set lock timeout", err)
		}
	}

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return classify("commit "+op, err)
	}

	return nil
}

type eventLedger struct {
	tx    pgx.Tx
	event *entity.Event
}

func (l *eventLedger) Event() *entity.Event {
	return l.event
}

func (l *eventLedger) ConfirmedTickets(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(SUM(ticket_count), 0)
		FROM bookings
		WHERE event_id = $1 AND status = 'confirmed'
	`

	var total int
	if err := l.tx.QueryRow(ctx, query, l.event.ID).Scan(&total); err != nil {
		return 0, classify(fmt.Sprintf("sum confirmed tickets for event %s", l.event.ID), err)
	}

	return total, nil
}

func (l *eventLedger) InsertBooking(ctx context.Context, booking *entity.Booking) error {
	if booking.EventID != l.event.ID {
		return fmt.Errorf("booking %s belongs to event %s, ledger holds %s", booking.ID, booking.EventID, l.event.ID)
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := l.tx.Exec(ctx, query,
		booking.ID,
		booking.Reference,
		booking.EventID,
		booking.UserID,
		booking.TicketCount,
		booking.UnitPrice,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return classify(fmt.Sprintf("insert booking %s", booking.Reference), err)
	}

	return nil
}

func (l *eventLedger) SetCapacity(ctx context.Context, capacity int, at time.Time) error {
	query := `UPDATE events SET capacity = $2, updated_at = $3 WHERE id = $1`

	if _, err := l.tx.Exec(ctx, query, l.event.ID, capacity, at); err != nil {
		return classify(fmt.Sprintf("update capacity of event %s", l.event.ID), err)
	}

	l.event.Capacity = capacity
	l.event.UpdatedAt = at
	return nil
}

type bookingLedger struct {
	tx      pgx.Tx
	booking *entity.Booking
}

func (l *bookingLedger) Booking() *entity.Booking {
	return l.booking
}

func (l *bookingLedger) SaveStatus(ctx context.Context) error {
	query := `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`

	if _, err := l.tx.Exec(ctx, query, l.booking.ID, l.booking.Status, l.booking.UpdatedAt); err != nil {
		return classify(fmt.Sprintf("update booking %s status to %s", l.booking.ID, l.booking.Status), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	bookings, err := r.queryBookings(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at
	`

	bookings, err := r.queryBookings(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find bookings by event ID",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("find bookings by event ID %s: %w", eventID.String(), err)
	}

	return bookings, nil
}

func (r *bookingRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
	`

	bookings, err := r.queryBookings(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to find bookings by date range",
			zap.Error(err),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, fmt.Errorf("find bookings between %s and %s: %w", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}

	return bookings, nil
}

func (r *bookingRepository) SumConfirmedByEventID(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(ticket_count), 0)
		FROM bookings
		WHERE event_id = $1 AND status = 'confirmed'
	`

	var total int
	if err := r.db.QueryRow(ctx, query, eventID).Scan(&total); err != nil {
		r.log.Error("Failed to sum confirmed tickets",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("sum confirmed tickets for event %s: %w", eventID.String(), err)
	}

	return total, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.EventID,
		&booking.UserID,
		&booking.TicketCount,
		&booking.UnitPrice,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}
