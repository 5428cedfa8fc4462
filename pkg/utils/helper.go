package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// GenerateBookingReference creates a human-readable booking reference
// derived from the booking ID so it stays unique under concurrent inserts.
// Format: BOOK-YYYYMMDD-XXXXXXXX
func GenerateBookingReference(now time.Time, id uuid.UUID) string {
	datePart := now.UTC().Format("20060102")
	idPart := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])

	return fmt.Sprintf("BOOK-%s-%s", datePart, idPart)
}

// ParseDate accepts either RFC3339 or a plain YYYY-MM-DD date (UTC midnight).
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
