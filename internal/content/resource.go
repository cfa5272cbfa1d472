package content

import (
	"incognitor/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// AuthorResource is the public projection of a user.
type AuthorResource struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// CommentResource is a comment with its author attached.
type CommentResource struct {
	ID        uint            `json:"id"`
	Content   string          `json:"content"`
	Author    *AuthorResource `json:"author,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// MapAuthor shapes a user for embedding in content responses.
func MapAuthor(u *models.User) *AuthorResource {
	if u == nil {
		return nil
	}
	return &AuthorResource{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// MapUser shapes a standalone user row (people listing, search results).
func MapUser(u *models.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"avatar":     u.Avatar,
		"created_at": u.CreatedAt.Format(timeLayout),
	}
}

// MapComment shapes a single stored comment.
func MapComment(c *models.Comment) *CommentResource {
	return &CommentResource{
		ID:        c.ID,
		Content:   c.Content,
		Author:    MapAuthor(c.Author),
		CreatedAt: c.CreatedAt.Format(timeLayout),
	}
}

func mapComments(comments []models.Comment) []CommentResource {
	out := make([]CommentResource, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentResource{
			ID:        c.ID,
			Content:   c.Content,
			Author:    MapAuthor(c.Author),
			CreatedAt: c.CreatedAt.Format(timeLayout),
		})
	}
	return out
}

// MapResource shapes a content item for the wire. Thumbnails stay a
// comma-joined string for compatibility with existing clients; timestamps
// use the date-time string format the previous API emitted.
func MapResource(item models.Content) map[string]any {
	base := map[string]any{
		"id":         item.GetID(),
		"title":      SanitizeTitle(item.GetTitle()),
		"slug":       item.GetSlug(),
		"tags":       item.GetTags(),
		"author":     MapAuthor(item.GetAuthor()),
		"created_at": item.GetCreatedAt().Format(timeLayout),
	}

	switch it := item.(type) {
	case *models.Post:
		base["content"] = it.Content
		base["excerpt"] = it.Excerpt
		base["thumbnail"] = it.ThumbnailString()
		base["comments"] = mapComments(it.Comments)
	case *models.Blog:
		base["content"] = it.Content
		base["excerpt"] = it.Excerpt
	case *models.Event:
		base["from"] = it.From
		base["to"] = it.To
		base["location"] = it.Location
	}

	return base
}

// MapResources shapes a result list.
func MapResources(items []models.Content) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, MapResource(item))
	}
	return out
}
