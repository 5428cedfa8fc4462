package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_WritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := InitLogger(dir, false)
	require.NoError(t, err)

	logger.Info("booking confirmed")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "event-booking.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"booking confirmed"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestInitLogger_DebugLevel(t *testing.T) {
	logger, err := InitLogger(t.TempDir(), true)
	require.NoError(t, err)

	assert.NotNil(t, logger.Check(-1, "debug"))
}
