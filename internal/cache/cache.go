// Package cache keeps the most recent published token summary in redis so
// API frontends can serve reads without touching the analytics store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zigchain/dex-analytics/pkg/types"
)

type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func summaryKey(tokenID int64) string {
	return fmt.Sprintf("summary:%d", tokenID)
}

func (c *SummaryCache) Set(ctx context.Context, summary types.TokenSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary %d: %w", summary.TokenID, err)
	}
	if err := c.client.Set(ctx, summaryKey(summary.TokenID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache summary %d: %w", summary.TokenID, err)
	}
	return nil
}

func (c *SummaryCache) Get(ctx context.Context, tokenID int64) (types.TokenSummary, bool, error) {
	payload, err := c.client.Get(ctx, summaryKey(tokenID)).Bytes()
	if err == redis.Nil {
		return types.TokenSummary{}, false, nil
	}
	if err != nil {
		return types.TokenSummary{}, false, fmt.Errorf("read summary %d: %w", tokenID, err)
	}
	var summary types.TokenSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return types.TokenSummary{}, false, fmt.Errorf("decode summary %d: %w", tokenID, err)
	}
	return summary, true, nil
}

func (c *SummaryCache) Close() error {
	return c.client.Close()
}
