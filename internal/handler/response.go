package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type BoardResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	CreatedAt   string           `json:"created_at"`
	Columns     []ColumnResponse `json:"columns,omitempty"`
}

type ColumnResponse struct {
	ID       string         `json:"id"`
	BoardID  string         `json:"board_id"`
	Title    string         `json:"title"`
	Position int            `json:"position"`
	Color    string         `json:"color"`
	Tasks    []TaskResponse `json:"tasks,omitempty"`
}

type TaskResponse struct {
	ID          string  `json:"id"`
	ColumnID    string  `json:"column_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date,omitempty"`
	Completed   bool    `json:"completed"`
	Position    int     `json:"position"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func newBoardResponse(b *model.Board) BoardResponse {
	resp := BoardResponse{
		ID:        b.ID.String(),
		Title:     b.Title,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if b.Description != nil {
		resp.Description = *b.Description
	}
	for i := range b.Columns {
		resp.Columns = append(resp.Columns, newColumnResponse(&b.Columns[i]))
	}
	return resp
}

func newColumnResponse(c *model.Column) ColumnResponse {
	resp := ColumnResponse{
		ID:       c.ID.String(),
		BoardID:  c.BoardID.String(),
		Title:    c.Title,
		Position: c.Position,
		Color:    c.Color,
	}
	for i := range c.Tasks {
		resp.Tasks = append(resp.Tasks, newTaskResponse(&c.Tasks[i]))
	}
	return resp
}

func newTaskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:        t.ID.String(),
		ColumnID:  t.ColumnID.String(),
		Title:     t.Title,
		Priority:  t.Priority.String(),
		Completed: t.Completed,
		Position:  t.Position,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
	if t.Description != nil {
		resp.Description = *t.Description
	}
	if t.DueDate != nil {
		dueDate := t.DueDate.Format(time.RFC3339)
		resp.DueDate = &dueDate
	}
	return resp
}

func newTaskResponses(tasks []model.Task) []TaskResponse {
	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, newTaskResponse(&tasks[i]))
	}
	return resp
}

// respondError maps the service error taxonomy onto status codes.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		txErr         *service.TransactionError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundErr.Error()})
	case errors.As(err, &txErr):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to " + txErr.Op})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
