// Package pgerr translates postgres driver errors into domain errors.
package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/ticinfraestructura/sigah-sub000/internal/pkg/errs"
)

// SQLSTATE codes that mean another transaction won.
const (
	UniqueViolation      = "23505"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
)

// Translate returns *errs.ConflictError for unique violations, serialization
// failures and deadlocks on the object paramName/id. Other errors are returned
// unchanged.
func Translate(err error, paramName string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewConflictErrorWithCause(paramName, id, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case UniqueViolation, SerializationFailure, DeadlockDetected:
			return errs.NewConflictErrorWithCause(paramName, id, err)
		}
	}
	return err
}
