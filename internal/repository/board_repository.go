package repository

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// Create inserts the board together with its default columns.
func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(board).Error; err != nil {
			return fmt.Errorf("failed to create board: %w", err)
		}

		columns := make([]model.Column, len(model.DefaultColumns))
		for i, def := range model.DefaultColumns {
			columns[i] = model.Column{
				BoardID:  board.ID,
				Title:    def.Title,
				Position: i,
				Color:    def.Color,
			}
		}
		if err := tx.Create(&columns).Error; err != nil {
			return fmt.Errorf("failed to create columns: %w", err)
		}

		board.Columns = columns
		return nil
	})
}

// List returns all boards, newest first, without their columns.
func (r *BoardRepository) List(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&boards).Error
	return boards, err
}

// GetByID loads a board with its columns and tasks, both ordered by position.
func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Columns.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&board, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}
