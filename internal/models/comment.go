package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a reader comment on a post
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"not null"`
	Published time.Time `json:"published"`
	User      string    `json:"user,omitempty"`
	PostID    string    `json:"post" gorm:"column:post_id;index;not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate assigns a UUID and a publication date when missing
func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Published.IsZero() {
		c.Published = time.Now().UTC()
	}
	return nil
}
