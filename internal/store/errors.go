package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrForeignKey is returned when a write references a row that does
// not exist, e.g. a claim owned by an unknown user.
var ErrForeignKey = errors.New("referenced record does not exist")

const pqForeignKeyViolation = "23503"

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return ErrForeignKey
	}
	return err
}
