package service

import (
	"context"
	"strings"

	"incognitor/internal/content"
	"incognitor/internal/models"
	"incognitor/internal/repository"
	"incognitor/internal/summarize"
)

// SummaryCounts reports how many items fed the summary.
type SummaryCounts struct {
	Posts int `json:"posts"`
}

type Summary struct {
	Counts  SummaryCounts `json:"counts"`
	Summary string        `json:"summary"`
}

// SummaryService concatenates the caller's post titles and bodies and
// forwards them to the summarizer. Any upstream failure surfaces as a
// generic error; there is no retry.
type SummaryService struct {
	contents   repository.ContentRepository
	summarizer summarize.Summarizer
}

func NewSummaryService(contents repository.ContentRepository, summarizer summarize.Summarizer) *SummaryService {
	return &SummaryService{contents: contents, summarizer: summarizer}
}

func (s *SummaryService) MyPostsSummary(ctx context.Context, userID uint) (*Summary, error) {
	posts, err := s.contents.ListOwned(ctx, content.KindPost, userID)
	if err != nil {
		return nil, err
	}

	var parts []string
	for _, item := range posts {
		post, ok := item.(*models.Post)
		if !ok {
			continue
		}
		if post.Title != "" {
			parts = append(parts, post.Title)
		}
		if post.Content != "" {
			parts = append(parts, post.Content)
		}
	}

	text, err := s.summarizer.Summarize(ctx, strings.Join(parts, "\n\n"))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Summary{
		Counts:  SummaryCounts{Posts: len(posts)},
		Summary: text,
	}, nil
}
