package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ColumnHandler serves column-scoped reads.
type ColumnHandler struct {
	boards boardService
	tasks  taskService
}

func NewColumnHandler(boards boardService, tasks taskService) *ColumnHandler {
	return &ColumnHandler{boards: boards, tasks: tasks}
}

// GetAll godoc
// @Summary   List a board's columns
// @Tags      Columns
// @Produce   json
// @Param     id   path      string  true  "Board ID"
// @Success   200  {array}   ColumnResponse
// @Failure   400  {object}  ErrorResponse
// @Failure   404  {object}  ErrorResponse
// @Security  BearerAuth
// @Router    /boards/{id}/columns [get]
func (h *ColumnHandler) GetAll(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid board ID format"})
		return
	}

	columns, err := h.boards.ListColumns(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]ColumnResponse, 0, len(columns))
	for i := range columns {
		resp = append(resp, newColumnResponse(&columns[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetTasks godoc
// @Summary   List a column's tasks
// @Tags      Columns
// @Produce   json
// @Param     id   path      string  true  "Column ID"
// @Success   200  {array}   TaskResponse
// @Failure   400  {object}  ErrorResponse
// @Failure   404  {object}  ErrorResponse
// @Security  BearerAuth
// @Router    /columns/{id}/tasks [get]
func (h *ColumnHandler) GetTasks(c *gin.Context) {
	columnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid column ID format"})
		return
	}

	tasks, err := h.tasks.ListColumnTasks(c.Request.Context(), columnID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponses(tasks))
}
