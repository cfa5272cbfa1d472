package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentLength is the longest comment body accepted.
const MaxCommentLength = 1000

// Comment is a user comment attached to a post. Blogs and events do not
// support comments.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	UserID    uint           `gorm:"not null" json:"user_id"`
	Author    *User          `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Content   string         `gorm:"not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
