// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"

	"incognitor/internal/content"
	"incognitor/internal/models"

	"gorm.io/gorm"
)

// ContentRepository defines kind-polymorphic data operations over posts,
// blogs and events. Soft-deleted rows are excluded everywhere except where
// noted (tag aggregation, any-state lookups for the search projector).
type ContentRepository interface {
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) ContentRepository

	ListPage(ctx context.Context, kind content.Kind, page, perPage int) ([]models.Content, int64, error)
	ListOwned(ctx context.Context, kind content.Kind, userID uint) ([]models.Content, error)
	GetBySlug(ctx context.Context, kind content.Kind, slug string) (models.Content, error)
	GetManyByIDs(ctx context.Context, kind content.Kind, ids []uint) ([]models.Content, error)
	// GetAnyByID also returns soft-deleted rows; the search projector uses it
	// to decide between indexing and removal.
	GetAnyByID(ctx context.Context, kind content.Kind, id uint) (models.Content, error)

	Create(ctx context.Context, item models.Content) error
	Update(ctx context.Context, item models.Content) error
	// SoftDeleteOwned marks the row matching slug and owner deleted. Returns
	// false when no live row matched (wrong owner, wrong slug, or already
	// deleted).
	SoftDeleteOwned(ctx context.Context, kind content.Kind, slug string, userID uint) (bool, error)

	// NextSlug resolves a unique slug for the kind from the given base,
	// ignoring the row with excludeID (0 for creates).
	NextSlug(ctx context.Context, kind content.Kind, base string, excludeID uint) (string, error)
	// ReplaceThumbnails swaps a post's stored upload paths, keeping order.
	ReplaceThumbnails(ctx context.Context, postID uint, paths []string) error
	// AllTags returns the raw tag strings of every row of every kind,
	// soft-deleted rows included.
	AllTags(ctx context.Context) ([]string, error)
	// SearchLike is the authoritative-store fallback used when the derived
	// index is unavailable.
	SearchLike(ctx context.Context, kind content.Kind, term string, limit int) ([]models.Content, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) WithTx(tx *gorm.DB) ContentRepository {
	return &contentRepository{db: tx}
}

// listPreloads returns the eager-load chain for list views of a kind.
// Posts carry comments (with their authors) and thumbnails.
func listPreloads(kind content.Kind) []string {
	if kind == content.KindPost {
		return []string{"Author", "Comments", "Comments.Author", "Thumbnails"}
	}
	return []string{"Author"}
}

func applyPreloads(db *gorm.DB, preloads []string) *gorm.DB {
	for _, p := range preloads {
		db = db.Preload(p)
	}
	return db
}

// findPage is the kind-generic page query. PT constrains T's pointer type to
// the Content interface so results can be returned polymorphically.
func findPage[T any, PT interface {
	*T
	models.Content
}](db *gorm.DB, preloads []string, where func(*gorm.DB) *gorm.DB, page, perPage int) ([]models.Content, int64, error) {
	scoped := func() *gorm.DB {
		q := db.Model(PT(new(T)))
		if where != nil {
			q = where(q)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*T
	q := applyPreloads(scoped(), preloads).Order("created_at DESC")
	if perPage > 0 {
		q = q.Limit(perPage).Offset((page - 1) * perPage)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Content, 0, len(rows))
	for _, row := range rows {
		items = append(items, PT(row))
	}
	return items, total, nil
}

func findOne[T any, PT interface {
	*T
	models.Content
}](db *gorm.DB, preloads []string, where func(*gorm.DB) *gorm.DB) (models.Content, error) {
	var row T
	q := applyPreloads(db, preloads)
	if where != nil {
		q = where(q)
	}
	if err := q.First(&row).Error; err != nil {
		return nil, err
	}
	return PT(&row), nil
}

// errUnhandledKind guards the default switch branches; kinds are parsed at
// the boundary, so it indicates a registry/dispatch mismatch.
func errUnhandledKind(kind content.Kind, op string) error {
	return fmt.Errorf("unhandled content kind %q in %s", kind, op)
}

func (r *contentRepository) ListPage(ctx context.Context, kind content.Kind, page, perPage int) ([]models.Content, int64, error) {
	db := r.db.WithContext(ctx)
	preloads := listPreloads(kind)
	switch kind {
	case content.KindPost:
		return findPage[models.Post](db, preloads, nil, page, perPage)
	case content.KindBlog:
		return findPage[models.Blog](db, preloads, nil, page, perPage)
	case content.KindEvent:
		return findPage[models.Event](db, preloads, nil, page, perPage)
	}
	return nil, 0, errUnhandledKind(kind, "ListPage")
}

func (r *contentRepository) ListOwned(ctx context.Context, kind content.Kind, userID uint) ([]models.Content, error) {
	db := r.db.WithContext(ctx)
	owned := func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", userID) }
	var (
		items []models.Content
		err   error
	)
	switch kind {
	case content.KindPost:
		items, _, err = findPage[models.Post](db, listPreloads(kind), owned, 1, 0)
	case content.KindBlog:
		items, _, err = findPage[models.Blog](db, listPreloads(kind), owned, 1, 0)
	case content.KindEvent:
		items, _, err = findPage[models.Event](db, listPreloads(kind), owned, 1, 0)
	default:
		return nil, errUnhandledKind(kind, "ListOwned")
	}
	return items, err
}

func (r *contentRepository) GetBySlug(ctx context.Context, kind content.Kind, slug string) (models.Content, error) {
	db := r.db.WithContext(ctx)
	bySlug := func(q *gorm.DB) *gorm.DB { return q.Where("slug = ?", slug) }
	preloads := listPreloads(kind)

	var (
		item models.Content
		err  error
	)
	switch kind {
	case content.KindPost:
		item, err = findOne[models.Post](db, preloads, bySlug)
	case content.KindBlog:
		item, err = findOne[models.Blog](db, preloads, bySlug)
	case content.KindEvent:
		item, err = findOne[models.Event](db, preloads, bySlug)
	default:
		return nil, errUnhandledKind(kind, "GetBySlug")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError(content.Lookup(kind).Label, slug)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return item, nil
}

func (r *contentRepository) GetManyByIDs(ctx context.Context, kind content.Kind, ids []uint) ([]models.Content, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.db.WithContext(ctx)
	byIDs := func(q *gorm.DB) *gorm.DB { return q.Where("id IN ?", ids) }
	var (
		items []models.Content
		err   error
	)
	switch kind {
	case content.KindPost:
		items, _, err = findPage[models.Post](db, []string{"Author"}, byIDs, 1, 0)
	case content.KindBlog:
		items, _, err = findPage[models.Blog](db, []string{"Author"}, byIDs, 1, 0)
	case content.KindEvent:
		items, _, err = findPage[models.Event](db, []string{"Author"}, byIDs, 1, 0)
	default:
		return nil, errUnhandledKind(kind, "GetManyByIDs")
	}
	return items, err
}

func (r *contentRepository) GetAnyByID(ctx context.Context, kind content.Kind, id uint) (models.Content, error) {
	db := r.db.WithContext(ctx).Unscoped()
	byID := func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", id) }
	switch kind {
	case content.KindPost:
		return findOne[models.Post](db, nil, byID)
	case content.KindBlog:
		return findOne[models.Blog](db, nil, byID)
	case content.KindEvent:
		return findOne[models.Event](db, nil, byID)
	}
	return nil, errUnhandledKind(kind, "GetAnyByID")
}

func (r *contentRepository) Create(ctx context.Context, item models.Content) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) Update(ctx context.Context, item models.Content) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) SoftDeleteOwned(ctx context.Context, kind content.Kind, slug string, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("slug = ? AND user_id = ?", slug, userID).
		Delete(content.Lookup(kind).New())
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *contentRepository) NextSlug(ctx context.Context, kind content.Kind, base string, excludeID uint) (string, error) {
	var existing []string
	q := r.db.WithContext(ctx).
		Model(content.Lookup(kind).New()).
		Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("slug", &existing).Error; err != nil {
		return "", models.NewInternalError(err)
	}

	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[s] = true
	}
	if !taken[base] {
		return base, nil
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !taken[candidate] {
			return candidate, nil
		}
	}
}

func (r *contentRepository) ReplaceThumbnails(ctx context.Context, postID uint, paths []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Unscoped().Where("post_id = ?", postID).Delete(&models.Thumbnail{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	for i, p := range paths {
		t := models.Thumbnail{PostID: postID, Path: p, Position: i}
		if err := db.Create(&t).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	return nil
}

func (r *contentRepository) AllTags(ctx context.Context) ([]string, error) {
	var out []string
	// Soft-deleted rows are intentionally included: tags remain visible
	// after a delete, matching long-standing behavior clients rely on.
	for _, kind := range content.Kinds() {
		var tags []string
		err := r.db.WithContext(ctx).Unscoped().
			Model(content.Lookup(kind).New()).
			Where("tags IS NOT NULL AND tags <> ''").
			Pluck("tags", &tags).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		out = append(out, tags...)
	}
	return out, nil
}

func (r *contentRepository) SearchLike(ctx context.Context, kind content.Kind, term string, limit int) ([]models.Content, error) {
	db := r.db.WithContext(ctx)
	pattern := "%" + term + "%"
	match := func(q *gorm.DB) *gorm.DB {
		if content.Lookup(kind).HasBody {
			return q.Where("title LIKE ? OR content LIKE ? OR tags LIKE ?", pattern, pattern, pattern)
		}
		return q.Where("title LIKE ? OR location LIKE ? OR tags LIKE ?", pattern, pattern, pattern)
	}

	var (
		items []models.Content
		err   error
	)
	switch kind {
	case content.KindPost:
		items, _, err = findPage[models.Post](db, []string{"Author"}, match, 1, limit)
	case content.KindBlog:
		items, _, err = findPage[models.Blog](db, []string{"Author"}, match, 1, limit)
	case content.KindEvent:
		items, _, err = findPage[models.Event](db, []string{"Author"}, match, 1, limit)
	default:
		return nil, errUnhandledKind(kind, "SearchLike")
	}
	return items, err
}
