package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"taskboard/internal/model"
)

type boardStore interface {
	Create(ctx context.Context, board *model.Board) error
	List(ctx context.Context) ([]model.Board, error)
}

type columnLister interface {
	GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Column, error)
}

// BoardReader loads a board with ordered columns and tasks.
type BoardReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

type CreateBoardInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

type BoardService struct {
	boards  boardStore
	reader  BoardReader
	columns columnLister
	logger  *log.Logger
}

func NewBoardService(boards boardStore, reader BoardReader, columns columnLister, logger *log.Logger) *BoardService {
	return &BoardService{boards: boards, reader: reader, columns: columns, logger: logger}
}

// CreateBoard creates a board seeded with the default columns.
func (s *BoardService) CreateBoard(ctx context.Context, input CreateBoardInput) (board *model.Board, err error) {
	ctx, span := startSpan(ctx, "BoardService.CreateBoard")
	defer func() { endSpan(span, err) }()

	input.Title = strings.TrimSpace(input.Title)
	if err := check(input); err != nil {
		return nil, err
	}

	board = &model.Board{
		Title:       input.Title,
		Description: optionalText(input.Description),
	}
	if err := s.boards.Create(ctx, board); err != nil {
		s.logger.WithError(err).Error("failed to create board")
		return nil, &TransactionError{Op: "create board", Err: err}
	}

	span.SetAttributes(attribute.String("board.id", board.ID.String()))
	s.logger.WithField("board_id", board.ID).Info("board created")
	return board, nil
}

func (s *BoardService) ListBoards(ctx context.Context) ([]model.Board, error) {
	return s.boards.List(ctx)
}

// GetBoard returns the board with columns and tasks ordered by position.
func (s *BoardService) GetBoard(ctx context.Context, id uuid.UUID) (board *model.Board, err error) {
	ctx, span := startSpan(ctx, "BoardService.GetBoard", attribute.String("board.id", id.String()))
	defer func() { endSpan(span, err) }()

	board, err = s.reader.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get board", id.String(), err)
	}
	return board, nil
}

// ListColumns returns the board's columns ordered by position.
func (s *BoardService) ListColumns(ctx context.Context, boardID uuid.UUID) ([]model.Column, error) {
	if _, err := s.reader.GetByID(ctx, boardID); err != nil {
		return nil, translate("list columns", boardID.String(), err)
	}
	return s.columns.GetByBoardID(ctx, boardID)
}
