package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"taskboard/internal/repository"
)

// ValidationError reports bad or missing input. Nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NotFoundError reports a board, column or task that does not exist. Nothing was written.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// TransactionError reports a storage failure during a write. The transaction
// was rolled back, so the operation did not apply.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// Postgres SQLSTATE codes that mean another transaction got in the way.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Retryable reports whether running the same operation again may succeed.
func (e *TransactionError) Retryable() bool {
	if errors.Is(e.Err, repository.ErrMoveConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation, sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return true
		}
	}
	return false
}

// translate maps repository sentinels onto the service error taxonomy.
func translate(op, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrBoardNotFound):
		return &NotFoundError{Resource: "board", ID: id}
	case errors.Is(err, repository.ErrColumnNotFound):
		return &NotFoundError{Resource: "column", ID: id}
	case errors.Is(err, repository.ErrTaskNotFound):
		return &NotFoundError{Resource: "task", ID: id}
	case errors.Is(err, repository.ErrInvalidPosition):
		return &ValidationError{Field: "position", Message: err.Error()}
	case errors.Is(err, repository.ErrCrossBoardMove):
		return &ValidationError{Field: "column_id", Message: err.Error()}
	default:
		return &TransactionError{Op: op, Err: err}
	}
}
