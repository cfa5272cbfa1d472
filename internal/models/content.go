package models

import (
	"time"

	"gorm.io/gorm"
)

// ContentBase carries the columns shared by all three content kinds.
// Slug is unique among non-deleted rows of the same kind; Tags is a
// space-joined token string.
type ContentBase struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Author    *User          `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Title     string         `gorm:"not null" json:"title"`
	Slug      string         `gorm:"index" json:"slug"`
	Tags      string         `json:"tags"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Content is the read-side view shared by Post, Blog and Event. All
// kind-polymorphic code (repositories, search, resources) goes through it.
type Content interface {
	GetID() uint
	GetUserID() uint
	GetAuthor() *User
	GetTitle() string
	GetSlug() string
	GetTags() string
	GetCreatedAt() time.Time
	IsDeleted() bool
	SetOwner(u *User)
	SetSlug(slug string)
	// SearchText is the free-text blob the search index stores for this row.
	SearchText() string
}

func (b *ContentBase) GetID() uint             { return b.ID }
func (b *ContentBase) GetUserID() uint         { return b.UserID }
func (b *ContentBase) GetAuthor() *User        { return b.Author }
func (b *ContentBase) GetTitle() string        { return b.Title }
func (b *ContentBase) GetSlug() string         { return b.Slug }
func (b *ContentBase) GetTags() string         { return b.Tags }
func (b *ContentBase) GetCreatedAt() time.Time { return b.CreatedAt }
func (b *ContentBase) IsDeleted() bool         { return b.DeletedAt.Valid }

func (b *ContentBase) SetOwner(u *User) {
	b.UserID = u.ID
	b.Author = u
}

func (b *ContentBase) SetSlug(slug string) { b.Slug = slug }

// Post is a feed post with a body, a derived excerpt and optional uploaded
// thumbnails. Comments attach to posts only.
type Post struct {
	ContentBase
	Content    string      `gorm:"not null" json:"content"`
	Excerpt    string      `json:"excerpt"`
	Thumbnails []Thumbnail `gorm:"foreignKey:PostID" json:"-"`
	Comments   []Comment   `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

func (p *Post) SearchText() string { return p.Title + " " + p.Content + " " + p.Tags }

// Blog is a long-form piece: body plus derived excerpt, no uploads.
type Blog struct {
	ContentBase
	Content string `gorm:"not null" json:"content"`
	Excerpt string `json:"excerpt"`
}

func (b *Blog) SearchText() string { return b.Title + " " + b.Content + " " + b.Tags }

// Event has a time-of-day range and a location URL instead of a body.
type Event struct {
	ContentBase
	From     string `gorm:"not null" json:"from"`
	To       string `gorm:"not null" json:"to"`
	Location string `gorm:"not null" json:"location"`
}

func (e *Event) SearchText() string { return e.Title + " " + e.Location + " " + e.Tags }

// Thumbnail is one stored upload belonging to a post. The rows are kept
// ordered by Position; the API joins the paths with commas for
// compatibility with existing clients.
type Thumbnail struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Path     string `gorm:"not null" json:"path"`
	Position int    `gorm:"not null;default:0" json:"position"`
}

// ThumbnailString joins thumbnail paths into the comma-separated wire form.
func (p *Post) ThumbnailString() string {
	if len(p.Thumbnails) == 0 {
		return ""
	}
	out := p.Thumbnails[0].Path
	for _, t := range p.Thumbnails[1:] {
		out += "," + t.Path
	}
	return out
}
