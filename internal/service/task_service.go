package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type taskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetByColumnID(ctx context.Context, columnID uuid.UUID) ([]model.Task, error)
	MoveTask(ctx context.Context, taskID, columnID uuid.UUID, position int) (*model.Task, error)
}

type columnStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Column, error)
}

// BoardInvalidator drops any cached read model of a board.
type BoardInvalidator interface {
	Invalidate(ctx context.Context, boardID uuid.UUID)
}

type CreateTaskInput struct {
	ColumnID    string `json:"column_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Priority    string `json:"priority" validate:"omitempty,priority"`
	DueDate     string `json:"due_date"`
}

type TaskService struct {
	tasks   taskStore
	columns columnStore
	boards  BoardInvalidator
	logger  *log.Logger
}

func NewTaskService(tasks taskStore, columns columnStore, boards BoardInvalidator, logger *log.Logger) *TaskService {
	return &TaskService{tasks: tasks, columns: columns, boards: boards, logger: logger}
}

// CreateTask validates the input and appends a new task to the end of its column.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (task *model.Task, err error) {
	ctx, span := startSpan(ctx, "TaskService.CreateTask")
	defer func() { endSpan(span, err) }()

	input.Title = strings.TrimSpace(input.Title)
	input.ColumnID = strings.TrimSpace(input.ColumnID)
	if err := check(input); err != nil {
		return nil, err
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	columnID := uuid.MustParse(input.ColumnID)
	column, err := s.columns.GetByID(ctx, columnID)
	if err != nil {
		return nil, translate("create task", input.ColumnID, err)
	}

	priority := model.PriorityMedium
	if input.Priority != "" {
		priority = model.Priority(input.Priority)
	}
	task = &model.Task{
		ColumnID:    columnID,
		Title:       input.Title,
		Description: optionalText(input.Description),
		Priority:    priority,
		DueDate:     dueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.WithError(err).WithField("column_id", columnID).Error("failed to create task")
		return nil, translate("create task", input.ColumnID, err)
	}

	s.boards.Invalidate(ctx, column.BoardID)
	span.SetAttributes(attribute.String("task.id", task.ID.String()))
	s.logger.WithFields(log.Fields{
		"task_id":   task.ID,
		"column_id": columnID,
		"position":  task.Position,
	}).Info("task created")
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get task", id.String(), err)
	}
	return task, nil
}

// ListColumnTasks returns the column's tasks ordered by position.
func (s *TaskService) ListColumnTasks(ctx context.Context, columnID uuid.UUID) ([]model.Task, error) {
	if _, err := s.columns.GetByID(ctx, columnID); err != nil {
		return nil, translate("list tasks", columnID.String(), err)
	}
	tasks, err := s.tasks.GetByColumnID(ctx, columnID)
	if err != nil {
		return nil, translate("list tasks", columnID.String(), err)
	}
	return tasks, nil
}

// MoveTask lands the task at position inside the target column. Both affected
// columns are renumbered in a single transaction and the board's cached view
// is dropped once it commits.
func (s *TaskService) MoveTask(ctx context.Context, taskID, columnID uuid.UUID, position int) (task *model.Task, err error) {
	ctx, span := startSpan(ctx, "TaskService.MoveTask",
		attribute.String("task.id", taskID.String()),
		attribute.String("column.id", columnID.String()),
		attribute.Int("position", position),
	)
	defer func() { endSpan(span, err) }()

	if position < 0 {
		return nil, &ValidationError{Field: "position", Message: "must not be negative"}
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, translate("move task", taskID.String(), err)
	}
	column, err := s.columns.GetByID(ctx, columnID)
	if err != nil {
		return nil, translate("move task", columnID.String(), err)
	}

	task, err = s.tasks.MoveTask(ctx, taskID, columnID, position)
	if err != nil {
		id := taskID.String()
		if errors.Is(err, repository.ErrColumnNotFound) {
			id = columnID.String()
		}
		err = translate("move task", id, err)
		s.logger.WithError(err).WithFields(log.Fields{
			"task_id":   taskID,
			"column_id": columnID,
			"position":  position,
		}).Warn("task move rejected")
		return nil, err
	}

	s.boards.Invalidate(ctx, column.BoardID)
	s.logger.WithFields(log.Fields{
		"task_id":   task.ID,
		"column_id": task.ColumnID,
		"position":  task.Position,
		"board_id":  column.BoardID,
	}).Info("task moved")
	return task, nil
}
