package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a blog post
type Post struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"not null"`
	Subtitle  string     `json:"subtitle,omitempty"`
	Permalink string     `json:"permalink" gorm:"uniqueIndex;not null"`
	Content   string     `json:"content" gorm:"not null"`
	Published time.Time  `json:"published"`
	Updated   *time.Time `json:"updated,omitempty"`
	Authors   []Author   `json:"authors" gorm:"many2many:post_authors;constraint:OnDelete:CASCADE"`
	Comments  []Comment  `json:"comments" gorm:"foreignKey:PostID"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

// TableName specifies the table name for Post Model
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns a UUID and a publication date when missing
func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Published.IsZero() {
		p.Published = time.Now().UTC()
	}
	return nil
}
