package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/rekk2/event-registration/internal/domain"
)

const (
	pqUniqueViolation = "23505"
	pqInvalidTextForm = "22P02"
)

// mapNotFound turns sql.ErrNoRows and malformed uuid input into a NotFoundError,
// everything else into a StorageError.
func mapNotFound(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || isPQCode(err, pqInvalidTextForm) {
		return domain.NewNotFoundError(kind, id)
	}
	return domain.NewStorageError(op, err)
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

// requireAffected returns NotFoundError when a statement touched no rows.
func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("rows affected", err)
	}
	if n == 0 {
		return domain.NewNotFoundError(kind, id)
	}
	return nil
}

func doorConflict(label string) error {
	return &domain.ConflictError{Message: fmt.Sprintf("door %q already exists", label)}
}
