package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	FeedPageKeyPrefix = "feed:%s:page:%d"
	TagsKey           = "tags"
)

const (
	FeedTTL = 1 * time.Minute
	TagsTTL = 5 * time.Minute
)

func FeedPageKey(kind string, page int) string {
	return fmt.Sprintf(FeedPageKeyPrefix, kind, page)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateFeed drops every cached feed page for a kind. Pages are
// bounded by a scan over the key pattern.
func InvalidateFeed(ctx context.Context, kind string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, fmt.Sprintf("feed:%s:page:*", kind), 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagsKey)
}
