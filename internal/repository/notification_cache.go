package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NinjaGame428/church-management-sub001/internal/domain"
)

const (
	feedKeyPrefix = "notifications:feed:"
	feedMaxLen    = 50
	feedTTL       = 24 * time.Hour
)

// NotificationFeedCache keeps a per-user list of recent notifications in
// Redis so the feed endpoint avoids a Postgres round trip. The cache is
// an optimization only; callers fall back to the repository on any miss
// or error.
type NotificationFeedCache struct {
	client *redis.Client
}

// NewNotificationFeedCache builds the cache around a go-redis client.
func NewNotificationFeedCache(client *redis.Client) *NotificationFeedCache {
	return &NotificationFeedCache{client: client}
}

// Push prepends a notification to the user's feed, trimming to the
// retention cap.
func (c *NotificationFeedCache) Push(ctx context.Context, notification *domain.Notification) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	key := feedKeyPrefix + notification.UserID
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, feedMaxLen-1)
	pipe.Expire(ctx, key, feedTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns up to limit cached notifications, newest first. A nil
// slice with nil error means cache miss.
func (c *NotificationFeedCache) Recent(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	if limit <= 0 || limit > feedMaxLen {
		limit = feedMaxLen
	}
	entries, err := c.client.LRange(ctx, feedKeyPrefix+userID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	result := make([]domain.Notification, 0, len(entries))
	for _, entry := range entries {
		var notification domain.Notification
		if err := json.Unmarshal([]byte(entry), &notification); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, nil
}

// Invalidate drops the user's cached feed. Called after mark-read so the
// cache never serves a stale read flag.
func (c *NotificationFeedCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, feedKeyPrefix+userID).Err()
}
