package repository

import (
	"event-booking/pkg/database"
	"event-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Event   EventRepository
	Booking BookingRepository

	// Idempotency is nil when Redis is not configured.
	Idempotency IdempotencyRepository
}

func NewRepository(db database.PgxIface, rdb *redis.Client, config utils.BookingConfig, log *zap.Logger) *Repository {
	repo := &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		Event:   NewEventRepository(db, log),
		Booking: NewBookingRepository(db, config.LockTimeout, log),
	}

	if rdb != nil {
		repo.Idempotency = NewIdempotencyRepository(rdb, config.IdempotencyTTL, log)
	}

	return repo
}
