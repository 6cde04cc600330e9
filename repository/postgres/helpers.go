package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/taskpulse/domain"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// storeErr maps driver errors to domain errors, keeping not-found distinct.
func storeErr(message string, err error, notFound *domain.Error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return domain.StoreError(message, err)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
