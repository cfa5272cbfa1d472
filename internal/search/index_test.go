package search

import (
	"context"
	"testing"

	"incognitor/internal/content"
	"incognitor/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIndex(t *testing.T) *RedisIndex {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisIndex(rdb)
}

func TestRedisIndexPutSearchRemove(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Put(ctx, Document{
		Kind: content.KindPost, ID: 1, Title: "Gopher news", Text: "Gopher news all about Go",
	}))
	require.NoError(t, idx.Put(ctx, Document{
		Kind: content.KindPost, ID: 2, Title: "Unrelated", Text: "Cooking with cast iron",
	}))

	ids, err := idx.Search(ctx, content.KindPost, "gopher")
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)

	// Case-insensitive substring match.
	ids, err = idx.Search(ctx, content.KindPost, "CAST IRON")
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids)

	require.NoError(t, idx.Remove(ctx, content.KindPost, 1))
	ids, err = idx.Search(ctx, content.KindPost, "gopher")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisIndexKindsAreIsolated(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Put(ctx, Document{Kind: content.KindPost, ID: 1, Text: "shared term"}))
	require.NoError(t, idx.Put(ctx, Document{Kind: content.KindBlog, ID: 7, Text: "shared term"}))

	ids, err := idx.Search(ctx, content.KindBlog, "shared")
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, ids)
}

func TestRedisIndexNilClient(t *testing.T) {
	idx := NewRedisIndex(nil)
	ctx := context.Background()

	assert.NoError(t, idx.Put(ctx, Document{Kind: content.KindPost, ID: 1}))
	assert.NoError(t, idx.Remove(ctx, content.KindPost, 1))
	ids, err := idx.Search(ctx, content.KindPost, "x")
	assert.NoError(t, err)
	assert.Nil(t, ids)
}

func TestRedisIndexSkipsCorruptEntries(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	idx := NewRedisIndex(rdb)
	ctx := context.Background()

	require.NoError(t, idx.Put(ctx, Document{Kind: content.KindPost, ID: 1, Text: "good entry"}))
	mr.HSet("search:post", "2", "{not json")

	ids, err := idx.Search(ctx, content.KindPost, "good")
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
}

func TestDocumentFor(t *testing.T) {
	post := &models.Post{
		ContentBase: models.ContentBase{ID: 3, UserID: 9, Title: "Title", Slug: "title", Tags: "#go"},
		Content:     "Body",
	}
	doc := DocumentFor(content.KindPost, post)
	assert.Equal(t, content.KindPost, doc.Kind)
	assert.Equal(t, uint(3), doc.ID)
	assert.Equal(t, "Title Body #go", doc.Text)

	user := &models.User{Username: "alice", Email: "alice@example.com"}
	user.ID = 4
	udoc := DocumentForUser(user)
	assert.Equal(t, KindUser, udoc.Kind)
	assert.Equal(t, "alice alice@example.com", udoc.Text)
}
