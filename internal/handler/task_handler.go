package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type taskService interface {
	CreateTask(ctx context.Context, input service.CreateTaskInput) (*model.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListColumnTasks(ctx context.Context, columnID uuid.UUID) ([]model.Task, error)
	MoveTask(ctx context.Context, taskID, columnID uuid.UUID, position int) (*model.Task, error)
}

type TaskHandler struct {
	tasks taskService
}

func NewTaskHandler(tasks taskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// TaskRequest is the body of a task creation. Priority defaults to MEDIUM.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority" enums:"LOW,MEDIUM,HIGH,URGENT"`
	DueDate     string `json:"due_date" example:"2025-03-31"`
	ColumnID    string `json:"column_id"`
}

// TaskMoveRequest places a task at a zero-based position in a column.
type TaskMoveRequest struct {
	ColumnID string `json:"column_id" binding:"required,uuid"`
	Position *int   `json:"position" binding:"required"`
}

// Create godoc
// @Summary      Create a task
// @Description  Appends a task to the end of its column
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      TaskRequest  true  "Task"
// @Success      201   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), service.CreateTaskInput{
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

// GetByID godoc
// @Summary   Get a task
// @Tags      Tasks
// @Produce   json
// @Param     id   path      string  true  "Task ID"
// @Success   200  {object}  TaskResponse
// @Failure   400  {object}  ErrorResponse
// @Failure   404  {object}  ErrorResponse
// @Security  BearerAuth
// @Router    /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid task ID format"})
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// MoveTask godoc
// @Summary      Move a task
// @Description  Moves a task to a position in the same or another column of its board.
// @Description  Both columns are renumbered atomically. Positions past the end are clamped.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Task ID"
// @Param        move  body      TaskMoveRequest  true  "Target column and position"
// @Success      200   {object}  TaskResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id}/move [post]
func (h *TaskHandler) MoveTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid task ID format"})
		return
	}

	var req TaskMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request: column_id and position are required"})
		return
	}

	task, err := h.tasks.MoveTask(c.Request.Context(), taskID, uuid.MustParse(req.ColumnID), *req.Position)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}
