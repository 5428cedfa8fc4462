package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBookingReference(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000000")
	at := time.Date(2026, 5, 9, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "BOOK-20260509-3F2A9C1E", GenerateBookingReference(at, id))
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2026-05-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC), day)

	ts, err := ParseDate("2026-05-09T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())

	_, err = ParseDate("09/05/2026")
	assert.Error(t, err)
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 4, ParseInt("4", 1))
	assert.Equal(t, 1, ParseInt("", 1))
	assert.Equal(t, 1, ParseInt("abc", 1))
	assert.Equal(t, 10, ParseInt("-3", 10))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("secret124", hash))
}
