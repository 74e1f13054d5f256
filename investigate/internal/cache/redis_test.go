package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casetrace-systems/casetrace/investigate/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func sampleRecord() *models.ReportRecord {
	return &models.ReportRecord{
		ID:          "rep-1",
		CaseID:      "case-1",
		Format:      models.FormatLegal,
		Content:     "# FORENSIC INVESTIGATION REPORT",
		Signature:   "sig",
		GeneratedAt: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestReportCache_SetAndGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewReportCache(client, time.Minute)
	ctx := context.Background()

	rec := sampleRecord()
	require.NoError(t, c.Set(ctx, rec.CaseID, rec))

	cached, hit, err := c.Get(ctx, rec.CaseID)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, rec, cached)
}

func TestReportCache_Miss(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewReportCache(client, time.Minute)

	cached, hit, err := c.Get(context.Background(), "unknown-case")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, cached)
}

func TestReportCache_Invalidate(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewReportCache(client, time.Minute)
	ctx := context.Background()

	rec := sampleRecord()
	require.NoError(t, c.Set(ctx, rec.CaseID, rec))
	require.NoError(t, c.Invalidate(ctx, rec.CaseID))

	_, hit, err := c.Get(ctx, rec.CaseID)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestReportCache_Expiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	c := NewReportCache(client, time.Minute)
	ctx := context.Background()

	rec := sampleRecord()
	require.NoError(t, c.Set(ctx, rec.CaseID, rec))

	mr.FastForward(2 * time.Minute)

	_, hit, err := c.Get(ctx, rec.CaseID)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestReportCache_NilClientIsNoop(t *testing.T) {
	c := NewReportCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "case-1", sampleRecord()))
	require.NoError(t, c.Invalidate(ctx, "case-1"))

	cached, hit, err := c.Get(ctx, "case-1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, cached)
}
