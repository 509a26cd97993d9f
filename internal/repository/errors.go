package repository

import "errors"

// Common repository errors
var (
	// ErrBoardNotFound is returned when a board is not found
	ErrBoardNotFound = errors.New("board not found")

	// ErrColumnNotFound is returned when a column is not found
	ErrColumnNotFound = errors.New("column not found")

	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidPosition is returned for a negative target position
	ErrInvalidPosition = errors.New("position must not be negative")

	// ErrCrossBoardMove is returned when the target column lives on another board
	ErrCrossBoardMove = errors.New("cannot move task to a column from another board")

	// ErrMoveConflict is returned when the task changed column while its move was waiting for locks
	ErrMoveConflict = errors.New("task was moved concurrently")
)
