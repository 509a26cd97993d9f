package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type boardService interface {
	CreateBoard(ctx context.Context, input service.CreateBoardInput) (*model.Board, error)
	ListBoards(ctx context.Context) ([]model.Board, error)
	GetBoard(ctx context.Context, id uuid.UUID) (*model.Board, error)
	ListColumns(ctx context.Context, boardID uuid.UUID) ([]model.Column, error)
}

type BoardHandler struct {
	boards boardService
}

func NewBoardHandler(boards boardService) *BoardHandler {
	return &BoardHandler{boards: boards}
}

type CreateBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create godoc
// @Summary      Create a board
// @Description  Creates a board seeded with the To Do, In Progress and Done columns
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Param        board  body      CreateBoardRequest  true  "Board"
// @Success      201    {object}  BoardResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	board, err := h.boards.CreateBoard(c.Request.Context(), service.CreateBoardInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBoardResponse(board))
}

// GetAll godoc
// @Summary   List boards
// @Tags      Boards
// @Produce   json
// @Success   200  {array}   BoardResponse
// @Failure   500  {object}  ErrorResponse
// @Security  BearerAuth
// @Router    /boards [get]
func (h *BoardHandler) GetAll(c *gin.Context) {
	boards, err := h.boards.ListBoards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]BoardResponse, 0, len(boards))
	for i := range boards {
		resp = append(resp, newBoardResponse(&boards[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary      Get a board
// @Description  Returns the board with its columns and tasks ordered by position
// @Tags         Boards
// @Produce      json
// @Param        id   path      string  true  "Board ID"
// @Success      200  {object}  BoardResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /boards/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid board ID format"})
		return
	}

	board, err := h.boards.GetBoard(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBoardResponse(board))
}
