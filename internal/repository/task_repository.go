package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create appends the task to the end of its column. The column row stays
// locked until commit so concurrent creates cannot claim the same position.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var column model.Column
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&column, "id = ?", task.ColumnID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrColumnNotFound
			}
			return fmt.Errorf("failed to lock column: %w", err)
		}

		position, err := nextPosition(tx, task.ColumnID)
		if err != nil {
			return fmt.Errorf("failed to determine task position: %w", err)
		}
		task.Position = position

		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetByColumnID retrieves all tasks in a specific column
func (r *TaskRepository) GetByColumnID(ctx context.Context, columnID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).Where("column_id = ?", columnID).Order("position").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// MoveTask places a task at position inside columnID and renumbers the source
// and target columns so both keep positions 0..n-1. Positions past the last
// landing slot are clamped to it.
//
// Every writer of a column's positions locks the column row first, so two
// moves sharing a column run one after the other. Columns are locked in id
// order.
func (r *TaskRepository) MoveTask(ctx context.Context, taskID, columnID uuid.UUID, position int) (*model.Task, error) {
	if position < 0 {
		return nil, ErrInvalidPosition
	}

	var moved model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to load task: %w", err)
		}
		sourceID := task.ColumnID

		source, target, err := lockColumns(tx, sourceID, columnID)
		if err != nil {
			return err
		}
		if source.BoardID != target.BoardID {
			return ErrCrossBoardMove
		}

		// Re-read under the column locks; the unlocked read above may be stale.
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to reload task: %w", err)
		}
		if task.ColumnID != sourceID {
			return ErrMoveConflict
		}

		var count int64
		if err := tx.Model(&model.Task{}).Where("column_id = ?", columnID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count target tasks: %w", err)
		}

		sameColumn := sourceID == columnID
		last := int(count)
		if sameColumn {
			last = int(count) - 1
		}
		if position > last {
			position = last
		}

		from := task.Position
		if sameColumn && from == position {
			moved = task
			return nil
		}

		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).
			Update("position", model.DetachedPosition).Error; err != nil {
			return fmt.Errorf("failed to detach task: %w", err)
		}

		if sameColumn {
			if position > from {
				err = shiftPositions(tx, -1, "column_id = ? AND position > ? AND position <= ?", columnID, from, position)
			} else {
				err = shiftPositions(tx, 1, "column_id = ? AND position >= ? AND position < ?", columnID, position, from)
			}
			if err != nil {
				return err
			}
		} else {
			if err := shiftPositions(tx, -1, "column_id = ? AND position > ?", sourceID, from); err != nil {
				return err
			}
			if err := shiftPositions(tx, 1, "column_id = ? AND position >= ?", columnID, position); err != nil {
				return err
			}
		}

		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).
			Updates(map[string]interface{}{"column_id": columnID, "position": position}).Error; err != nil {
			return fmt.Errorf("failed to place task: %w", err)
		}

		task.ColumnID = columnID
		task.Position = position
		moved = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}

// lockColumns takes row locks on the source and target columns in ascending
// id order, matching the byte order Postgres sorts uuid values in.
func lockColumns(tx *gorm.DB, sourceID, targetID uuid.UUID) (*model.Column, *model.Column, error) {
	ids := []uuid.UUID{sourceID}
	if targetID != sourceID {
		ids = append(ids, targetID)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	var columns []model.Column
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&columns).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to lock columns: %w", err)
	}

	var source, target *model.Column
	for i := range columns {
		if columns[i].ID == sourceID {
			source = &columns[i]
		}
		if columns[i].ID == targetID {
			target = &columns[i]
		}
	}
	if source == nil || target == nil {
		return nil, nil, ErrColumnNotFound
	}
	return source, target, nil
}

func shiftPositions(tx *gorm.DB, delta int, query string, args ...interface{}) error {
	err := tx.Model(&model.Task{}).
		Where(query, args...).
		Update("position", gorm.Expr("position + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to shift positions: %w", err)
	}
	return nil
}

func nextPosition(tx *gorm.DB, columnID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := tx.Model(&model.Task{}).
		Select("COALESCE(MAX(position), -1) as max").
		Where("column_id = ?", columnID).
		Scan(&maxPosition).Error

	return maxPosition.Max + 1, err
}
