package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Author represents a post author
type Author struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	FirstName string    `json:"firstName" gorm:"not null"`
	LastName  string    `json:"lastName" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Author Model
func (Author) TableName() string {
	return "authors"
}

// BeforeCreate assigns a UUID when none was set
func (a *Author) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
