package service

import (
	"context"
	"time"

	"incognitor/internal/content"
	"incognitor/internal/models"
	"incognitor/internal/observability"
	"incognitor/internal/repository"
	"incognitor/internal/search"
)

const searchResultLimit = 50

// SearchResults carries the four parallel result lists of a global search.
type SearchResults struct {
	Posts  []map[string]any `json:"posts"`
	Blogs  []map[string]any `json:"blogs"`
	Events []map[string]any `json:"events"`
	Users  []map[string]any `json:"users"`
}

// SearchService answers free-text queries from the derived index. Hits
// are re-read from the database before shaping, so rows the index has not
// caught up with yet never leak into responses.
type SearchService struct {
	index    search.Index
	contents repository.ContentRepository
	users    repository.UserRepository
}

func NewSearchService(index search.Index, contents repository.ContentRepository, users repository.UserRepository) *SearchService {
	return &SearchService{index: index, contents: contents, users: users}
}

func (s *SearchService) Search(ctx context.Context, query string) (*SearchResults, error) {
	if query == "" {
		return nil, models.NewBadRequestError("Search query cannot be empty")
	}

	results := &SearchResults{
		Posts:  []map[string]any{},
		Blogs:  []map[string]any{},
		Events: []map[string]any{},
		Users:  []map[string]any{},
	}

	for _, kind := range content.Kinds() {
		items, err := s.searchKind(ctx, kind, query)
		if err != nil {
			return nil, err
		}
		switch kind {
		case content.KindPost:
			results.Posts = items
		case content.KindBlog:
			results.Blogs = items
		case content.KindEvent:
			results.Events = items
		}
	}

	users, err := s.searchUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	results.Users = users

	return results, nil
}

func (s *SearchService) searchKind(ctx context.Context, kind content.Kind, query string) ([]map[string]any, error) {
	start := time.Now()
	defer func() {
		observability.SearchQueryLatency.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()

	ids, err := s.index.Search(ctx, kind, query)
	if err != nil || len(ids) == 0 {
		if err != nil {
			// Fall back to a LIKE scan when the index is unreachable.
			items, lerr := s.contents.SearchLike(ctx, kind, query, searchResultLimit)
			if lerr != nil {
				return nil, lerr
			}
			return content.MapResources(items), nil
		}
		return []map[string]any{}, nil
	}

	// Authoritative re-read drops rows deleted since they were indexed.
	items, err := s.contents.GetManyByIDs(ctx, kind, ids)
	if err != nil {
		return nil, err
	}
	return content.MapResources(items), nil
}

func (s *SearchService) searchUsers(ctx context.Context, query string) ([]map[string]any, error) {
	ids, err := s.index.Search(ctx, search.KindUser, query)
	if err != nil {
		// Fall back to a LIKE scan when the index is unreachable.
		users, lerr := s.users.SearchLike(ctx, query, searchResultLimit)
		if lerr != nil {
			return nil, lerr
		}
		return mapUsers(users), nil
	}
	users, err := s.users.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return mapUsers(users), nil
}

func mapUsers(users []models.User) []map[string]any {
	out := make([]map[string]any, 0, len(users))
	for i := range users {
		out = append(out, content.MapUser(&users[i]))
	}
	return out
}
