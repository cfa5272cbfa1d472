package search

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"incognitor/internal/content"
	"incognitor/internal/models"
	"incognitor/internal/observability"

	"github.com/redis/go-redis/v9"
)

// KindUser indexes user records alongside the content kinds. It exists
// only in the index; the content registry does not know it.
const KindUser content.Kind = "user"

// Document is the denormalized record kept in the index. The index is a
// lookup accelerator only; hits are always re-read from the database
// before they reach a response.
type Document struct {
	Kind   content.Kind `json:"kind"`
	ID     uint         `json:"id"`
	UserID uint         `json:"user_id"`
	Title  string       `json:"title"`
	Slug   string       `json:"slug"`
	Tags   string       `json:"tags"`
	Text   string       `json:"text"`
}

// Index stores and queries search documents.
type Index interface {
	Put(ctx context.Context, doc Document) error
	Remove(ctx context.Context, kind content.Kind, id uint) error
	// Search returns the IDs of matching documents for a kind.
	Search(ctx context.Context, kind content.Kind, term string) ([]uint, error)
}

// RedisIndex keeps one hash per kind, field = item ID, value = JSON document.
type RedisIndex struct {
	client *redis.Client
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

func key(kind content.Kind) string {
	return "search:" + string(kind)
}

func (i *RedisIndex) Put(ctx context.Context, doc Document) error {
	if i.client == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := i.client.HSet(ctx, key(doc.Kind), strconv.FormatUint(uint64(doc.ID), 10), b).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("hset").Inc()
		return err
	}
	return nil
}

func (i *RedisIndex) Remove(ctx context.Context, kind content.Kind, id uint) error {
	if i.client == nil {
		return nil
	}
	if err := i.client.HDel(ctx, key(kind), strconv.FormatUint(uint64(id), 10)).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("hdel").Inc()
		return err
	}
	return nil
}

func (i *RedisIndex) Search(ctx context.Context, kind content.Kind, term string) ([]uint, error) {
	if i.client == nil {
		return nil, nil
	}
	entries, err := i.client.HGetAll(ctx, key(kind)).Result()
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("hgetall").Inc()
		return nil, err
	}

	needle := strings.ToLower(term)
	var ids []uint
	for field, raw := range entries {
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			// A corrupt entry should not sink the whole query.
			observability.LogAsyncOperationError(ctx, "search_decode", err, map[string]interface{}{"field": field})
			continue
		}
		if strings.Contains(strings.ToLower(doc.Text), needle) {
			ids = append(ids, doc.ID)
		}
	}
	return ids, nil
}

// DocumentFor builds the index document for a content item.
func DocumentFor(kind content.Kind, item models.Content) Document {
	return Document{
		Kind:   kind,
		ID:     item.GetID(),
		UserID: item.GetUserID(),
		Title:  item.GetTitle(),
		Slug:   item.GetSlug(),
		Tags:   item.GetTags(),
		Text:   item.SearchText(),
	}
}

// DocumentForUser builds the index document for a user record.
func DocumentForUser(u *models.User) Document {
	return Document{
		Kind:   KindUser,
		ID:     u.ID,
		UserID: u.ID,
		Title:  u.Username,
		Text:   u.Username + " " + u.Email,
	}
}
