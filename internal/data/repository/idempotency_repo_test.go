package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTTL = time.Hour

func setupIdempotency() (IdempotencyRepository, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewIdempotencyRepository(db, testTTL, zap.NewNop()), mock
}

func TestIdempotencyClaim_FreshKey(t *testing.T) {
	repo, mock := setupIdempotency()
	userID := uuid.New()

	mock.ExpectSetNX(idempotencyKey(userID, "k1"), idempotencyPending, testTTL).SetVal(true)

	bookingID, claimed, err := repo.Claim(context.Background(), userID, "k1")

	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, uuid.Nil, bookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyClaim_CompletedKeyReturnsBooking(t *testing.T) {
	repo, mock := setupIdempotency()
	userID := uuid.New()
	existing := uuid.New()
	key := idempotencyKey(userID, "k1")

	mock.ExpectSetNX(key, idempotencyPending, testTTL).SetVal(false)
	mock.ExpectGet(key).SetVal(existing.String())

	bookingID, claimed, err := repo.Claim(context.Background(), userID, "k1")

	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, existing, bookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyClaim_PendingKeyIsInFlight(t *testing.T) {
	repo, mock := setupIdempotency()
	userID := uuid.New()
	key := idempotencyKey(userID, "k1")

	mock.ExpectSetNX(key, idempotencyPending, testTTL).SetVal(false)
	mock.ExpectGet(key).SetVal(idempotencyPending)

	_, claimed, err := repo.Claim(context.Background(), userID, "k1")

	assert.ErrorIs(t, err, ErrKeyInFlight)
	assert.False(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyClaim_ExpiredBetweenCalls(t *testing.T) {
	repo, mock := setupIdempotency()
	userID := uuid.New()
	key := idempotencyKey(userID, "k1")

	mock.ExpectSetNX(key, idempotencyPending, testTTL).SetVal(false)
	mock.ExpectGet(key).RedisNil()

	_, _, err := repo.Claim(context.Background(), userID, "k1")

	assert.ErrorIs(t, err, ErrKeyInFlight)
}

func TestIdempotencyClaim_RedisDown(t *testing.T) {
	repo, mock := setupIdempotency()
	userID := uuid.New()

	mock.ExpectSetNX(idempotencyKey(userID, "k1"), idempotencyPending, testTTL).SetErr(errors.New("connection refused"))

	_, claimed, err := repo.Claim(context.Background(), userID, "k1")

	assert.Error(t, err)
	assert.False(t, claimed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIdempotencyComplete(t *testing.T) {
	repo, mock := setupIdempotency()
	userID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectSet(idempotencyKey(userID, "k1"), bookingID.String(), testTTL).SetVal("OK")

	err := repo.Complete(context.Background(), userID, "k1", bookingID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyRelease(t *testing.T) {
	repo, mock := setupIdempotency()
	userID := uuid.New()

	mock.ExpectDel(idempotencyKey(userID, "k1")).SetVal(1)

	err := repo.Release(context.Background(), userID, "k1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.NotEqual(t, idempotencyKey(a, "same"), idempotencyKey(b, "same"))
}
