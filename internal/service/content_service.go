package service

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"

	"incognitor/internal/cache"
	"incognitor/internal/content"
	"incognitor/internal/models"
	"incognitor/internal/observability"
	"incognitor/internal/repository"
	"incognitor/internal/search"
	"incognitor/internal/storage"

	"gorm.io/gorm"
)

const contentPageSize = 5

// PageMeta mirrors the pagination envelope the previous API emitted.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	Total       int64 `json:"total"`
}

// ContentService implements the polymorphic CRUD over posts, blogs and
// events. Mutations run in a transaction; the search index is updated
// asynchronously through the event bus.
type ContentService struct {
	db       *gorm.DB
	contents repository.ContentRepository
	users    repository.UserRepository
	store    *storage.LocalStore
	events   *search.Publisher
}

func NewContentService(db *gorm.DB, contents repository.ContentRepository, users repository.UserRepository, store *storage.LocalStore, events *search.Publisher) *ContentService {
	return &ContentService{db: db, contents: contents, users: users, store: store, events: events}
}

// List returns one feed page of a kind, newest first. Pages are served
// cache-aside with a short TTL; mutation paths invalidate the kind.
func (s *ContentService) List(ctx context.Context, kind content.Kind, page int) ([]map[string]any, PageMeta, error) {
	if page < 1 {
		page = 1
	}

	type cached struct {
		Data []map[string]any `json:"data"`
		Meta PageMeta         `json:"meta"`
	}
	var out cached
	err := cache.CacheAside(ctx, cache.FeedPageKey(string(kind), page), &out, cache.FeedTTL, func() error {
		items, total, err := s.contents.ListPage(ctx, kind, page, contentPageSize)
		if err != nil {
			return err
		}
		out.Data = content.MapResources(items)
		out.Meta = pageMeta(page, contentPageSize, total)
		return nil
	})
	if err != nil {
		return nil, PageMeta{}, err
	}
	return out.Data, out.Meta, nil
}

// Get returns one non-deleted item by slug with its author attached.
func (s *ContentService) Get(ctx context.Context, kind content.Kind, slug string) (map[string]any, error) {
	item, err := s.contents.GetBySlug(ctx, kind, slug)
	if err != nil {
		return nil, err
	}
	return content.MapResource(item), nil
}

// Create validates, derives slug and excerpt, stores uploads and persists
// the new item in one transaction. Index and cache updates happen after
// commit and are best-effort.
func (s *ContentService) Create(ctx context.Context, kind content.Kind, userID uint, in content.Input, uploads []*multipart.FileHeader) (map[string]any, error) {
	n, err := content.Validate(kind, in)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := content.Lookup(kind).New()
	content.Apply(item, n)
	item.SetOwner(owner)

	paths, err := s.saveUploads(kind, uploads)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.contents.WithTx(tx)

		slug, err := repo.NextSlug(ctx, kind, n.SlugBase, 0)
		if err != nil {
			return err
		}
		item.SetSlug(slug)

		if err := repo.Create(ctx, item); err != nil {
			return err
		}
		if len(paths) > 0 {
			return repo.ReplaceThumbnails(ctx, item.GetID(), paths)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ContentMutations.WithLabelValues(string(kind), "create").Inc()
	s.afterWrite(ctx, kind, item.GetID())

	created, err := s.contents.GetBySlug(ctx, kind, item.GetSlug())
	if err != nil {
		return nil, err
	}
	return content.MapResource(created), nil
}

// Update applies the same validation and derivation as Create to the item
// found by slug. It deliberately is not ownership-scoped, while Delete is;
// existing clients rely on that asymmetry.
func (s *ContentService) Update(ctx context.Context, kind content.Kind, slug string, in content.Input, uploads []*multipart.FileHeader) (map[string]any, error) {
	n, err := content.Validate(kind, in)
	if err != nil {
		return nil, err
	}

	item, err := s.contents.GetBySlug(ctx, kind, slug)
	if err != nil {
		return nil, err
	}

	paths, err := s.saveUploads(kind, uploads)
	if err != nil {
		return nil, err
	}

	content.Apply(item, n)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.contents.WithTx(tx)

		newSlug, err := repo.NextSlug(ctx, kind, n.SlugBase, item.GetID())
		if err != nil {
			return err
		}
		item.SetSlug(newSlug)

		if err := repo.Update(ctx, item); err != nil {
			return err
		}
		if len(paths) > 0 {
			return repo.ReplaceThumbnails(ctx, item.GetID(), paths)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ContentMutations.WithLabelValues(string(kind), "update").Inc()
	s.afterWrite(ctx, kind, item.GetID())

	updated, err := s.contents.GetBySlug(ctx, kind, item.GetSlug())
	if err != nil {
		return nil, err
	}
	return content.MapResource(updated), nil
}

// Delete soft-deletes the caller's own item. A slug owned by someone else
// matches zero rows and reports not found, same as a missing slug.
func (s *ContentService) Delete(ctx context.Context, kind content.Kind, slug string, userID uint) error {
	item, err := s.contents.GetBySlug(ctx, kind, slug)
	if err != nil {
		return err
	}

	deleted, err := s.contents.SoftDeleteOwned(ctx, kind, slug, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNotFoundError("Content", slug)
	}

	observability.ContentMutations.WithLabelValues(string(kind), "delete").Inc()
	cache.InvalidateFeed(ctx, string(kind))
	cache.InvalidateTags(ctx)
	s.events.Publish(search.Event{Action: search.ActionRemove, Kind: kind, ID: item.GetID()})
	return nil
}

// MyContent lists the caller's own non-deleted items, newest first.
func (s *ContentService) MyContent(ctx context.Context, kind content.Kind, userID uint) ([]map[string]any, error) {
	items, err := s.contents.ListOwned(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	return content.MapResources(items), nil
}

// Tags aggregates the tag tokens of all kinds into a sorted, de-duplicated
// flat list. Soft-deleted rows contribute their tags too.
func (s *ContentService) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	err := cache.CacheAside(ctx, cache.TagsKey, &tags, cache.TagsTTL, func() error {
		raw, err := s.contents.AllTags(ctx)
		if err != nil {
			return err
		}
		seen := map[string]bool{}
		tags = []string{}
		for _, field := range raw {
			for _, tag := range content.SplitTags(field) {
				if !seen[tag] {
					seen[tag] = true
					tags = append(tags, tag)
				}
			}
		}
		sort.Strings(tags)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *ContentService) saveUploads(kind content.Kind, uploads []*multipart.FileHeader) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if !content.Lookup(kind).HasUploads {
		return nil, nil
	}
	if s.store == nil {
		return nil, models.NewInternalError(errors.New("upload storage not configured"))
	}

	paths := make([]string, 0, len(uploads))
	for _, file := range uploads {
		path, err := s.store.SaveUpload(file)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *ContentService) afterWrite(ctx context.Context, kind content.Kind, id uint) {
	cache.InvalidateFeed(ctx, string(kind))
	cache.InvalidateTags(ctx)
	s.events.Publish(search.Event{Action: search.ActionPut, Kind: kind, ID: id})
}

func pageMeta(page, perPage int, total int64) PageMeta {
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return PageMeta{CurrentPage: page, LastPage: last, Total: total}
}
