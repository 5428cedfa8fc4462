package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by the locking paths when the row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTransient marks a failure caused by contention (lock wait exceeded,
	// serialization failure, deadlock). The operation had no effect and may be retried.
	ErrTransient = errors.New("transient storage conflict")
)

// Postgres SQLSTATE codes that mean "nothing was written, try again".
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// classify wraps contention errors with ErrTransient and leaves others as they are.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
			return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
