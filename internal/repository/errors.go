package repository

import (
	"errors"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/acumbamail-sync/internal/errors"
)

const uniqueViolation = "23505"

// mapWriteError turns a unique-key violation into appErrors.ErrDuplicate.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errors.Join(appErrors.ErrDuplicate, err)
	}
	return err
}
