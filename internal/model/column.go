package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Column struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"not null"`
	Position  int       `gorm:"not null"`
	Color     string    `gorm:"type:varchar(7);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tasks []Task `gorm:"foreignKey:ColumnID"`
}

func (c *Column) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DefaultColumn describes one of the lanes every new board starts with.
type DefaultColumn struct {
	Title string
	Color string
}

// DefaultColumns are seeded in this order, so their index is their position.
var DefaultColumns = []DefaultColumn{
	{Title: "To Do", Color: "#ef4444"},
	{Title: "In Progress", Color: "#f59e0b"},
	{Title: "Done", Color: "#10b981"},
}
