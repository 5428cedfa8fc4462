package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrKeyInFlight means another request with the same idempotency key has
// claimed it and not finished yet.
var ErrKeyInFlight = errors.New("idempotency key in use by a request still in flight")

const idempotencyPending = "pending"

// IdempotencyRepository remembers which booking a client-supplied key produced.
// Keys are scoped per user.
type IdempotencyRepository interface {
	// Claim returns claimed=true when the caller now owns the key. Otherwise it
	// returns the booking the key already produced, or ErrKeyInFlight.
	Claim(ctx context.Context, userID uuid.UUID, key string) (bookingID uuid.UUID, claimed bool, err error)
	Complete(ctx context.Context, userID uuid.UUID, key string, bookingID uuid.UUID) error
	Release(ctx context.Context, userID uuid.UUID, key string) error
}

type idempotencyRepository struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewIdempotencyRepository(rdb *redis.Client, ttl time.Duration, log *zap.Logger) IdempotencyRepository {
	return &idempotencyRepository{
		rdb: rdb,
		ttl: ttl,
		log: log.With(zap.String("repository", "idempotency")),
	}
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("idem:booking:%s:%s", userID, key)
}

func (r *idempotencyRepository) Claim(ctx context.Context, userID uuid.UUID, key string) (uuid.UUID, bool, error) {
	redisKey := idempotencyKey(userID, key)

	ok, err := r.rdb.SetNX(ctx, redisKey, idempotencyPending, r.ttl).Result()
	if err != nil {
		r.log.Error("Failed to claim idempotency key", zap.Error(err), zap.String("key", redisKey))
		return uuid.Nil, false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return uuid.Nil, true, nil
	}

	value, err := r.rdb.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return uuid.Nil, false, ErrKeyInFlight
	}
	if err != nil {
		r.log.Error("Failed to read idempotency key", zap.Error(err), zap.String("key", redisKey))
		return uuid.Nil, false, fmt.Errorf("read idempotency key: %w", err)
	}

	if value == idempotencyPending {
		return uuid.Nil, false, ErrKeyInFlight
	}

	bookingID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt idempotency value %q: %w", value, err)
	}

	return bookingID, false, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, userID uuid.UUID, key string, bookingID uuid.UUID) error {
	redisKey := idempotencyKey(userID, key)

	if err := r.rdb.Set(ctx, redisKey, bookingID.String(), r.ttl).Err(); err != nil {
		r.log.Error("Failed to complete idempotency key", zap.Error(err), zap.String("key", redisKey))
		return fmt.Errorf("complete idempotency key: %w", err)
	}

	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, userID uuid.UUID, key string) error {
	redisKey := idempotencyKey(userID, key)

	if err := r.rdb.Del(ctx, redisKey).Err(); err != nil {
		r.log.Error("Failed to release idempotency key", zap.Error(err), zap.String("key", redisKey))
		return fmt.Errorf("release idempotency key: %w", err)
	}

	return nil
}
