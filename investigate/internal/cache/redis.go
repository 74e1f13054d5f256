// Package cache provides a Redis-backed cache for rendered reports.
// Report synthesis walks the full event set, so repeated retrievals of an
// unchanged case are served from here instead.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

const reportKeyPrefix = "casetrace:report:"

// ReportCache caches the latest rendered report per case.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a report cache. A nil client disables caching;
// all operations become no-ops reporting a miss.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ReportCache{client: client, ttl: ttl}
}

// Get returns the cached report for a case, with a hit indicator.
func (c *ReportCache) Get(ctx context.Context, caseID string) (*models.ReportRecord, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, reportKey(caseID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached report: %w", err)
	}

	var rec models.ReportRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	return &rec, true, nil
}

// Set stores the report for a case, replacing any previous entry.
func (c *ReportCache) Set(ctx context.Context, caseID string, rec *models.ReportRecord) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, reportKey(caseID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	return nil
}

// Invalidate drops the cached report for a case. Called when case fields
// change, since the report embeds case metadata.
func (c *ReportCache) Invalidate(ctx context.Context, caseID string) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, reportKey(caseID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached report: %w", err)
	}

	return nil
}

func reportKey(caseID string) string {
	return reportKeyPrefix + caseID
}
