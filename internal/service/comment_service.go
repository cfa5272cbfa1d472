package service

import (
	"context"

	"incognitor/internal/content"
	"incognitor/internal/models"
	"incognitor/internal/repository"
)

// CommentService attaches comments to posts.
type CommentService struct {
	comments repository.CommentRepository
	contents repository.ContentRepository
}

type AddCommentInput struct {
	PostID  uint
	UserID  uint
	Content string
}

func NewCommentService(comments repository.CommentRepository, contents repository.ContentRepository) *CommentService {
	return &CommentService{comments: comments, contents: contents}
}

// AddComment validates the body, checks the post is live and stores the
// comment. The stored row comes back with its author attached.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*content.CommentResource, error) {
	if in.Content == "" {
		return nil, models.NewFieldValidationError("Validation failed", map[string]string{
			"content": "The content field is required.",
		})
	}
	if len(in.Content) > models.MaxCommentLength {
		return nil, models.NewFieldValidationError("Validation failed", map[string]string{
			"content": "The content may not be greater than 1000 characters.",
		})
	}

	post, err := s.contents.GetAnyByID(ctx, content.KindPost, in.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.IsDeleted() {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		UserID:  in.UserID,
		Content: in.Content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	stored, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	return content.MapComment(stored), nil
}
