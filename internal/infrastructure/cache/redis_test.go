package cache

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeytrap-lab/pkg/logger"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		keyPrefix: "honeytrap:",
		logger:    logger.NewDefault().WithComponent("redis"),
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSetGetJSON(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.SetJSON(ctx, "k1", payload{Name: "x", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.GetJSON(ctx, "k1", &got))
	assert.Equal(t, payload{Name: "x", Count: 3}, got)

	err := c.GetJSON(ctx, "missing", &got)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestKeysAreNamespaced(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "plain", "v", 0))
	assert.True(t, mr.Exists("honeytrap:plain"))
}

func TestAnalysisKeyIsStable(t *testing.T) {
	k1 := AnalysisKey("share your otp now")
	k2 := AnalysisKey("share your otp now")
	k3 := AnalysisKey("a different message")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, KeyAnalysisPrefix)
}

func TestAnalysisCacheRoundtrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	type verdict struct {
		IsScam     bool    `json:"is_scam"`
		Confidence float64 `json:"confidence"`
	}

	text := "your account will be blocked, pay now"
	require.NoError(t, c.CacheAnalysis(ctx, text, verdict{IsScam: true, Confidence: 0.82}, time.Minute))

	var got verdict
	require.NoError(t, c.GetCachedAnalysis(ctx, text, &got))
	assert.True(t, got.IsScam)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)

	// Expired entries are misses
	mr.FastForward(2 * time.Minute)
	err := c.GetCachedAnalysis(ctx, text, &got)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestArchiveSession(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type snapshot struct {
		SessionID string `json:"sessionId"`
		TurnCount int    `json:"turnCount"`
	}

	require.NoError(t, c.ArchiveSession(ctx, "s-1", snapshot{SessionID: "s-1", TurnCount: 7}, time.Hour))
	require.NoError(t, c.ArchiveSession(ctx, "s-2", snapshot{SessionID: "s-2", TurnCount: 2}, time.Hour))

	var got snapshot
	require.NoError(t, c.GetArchivedSession(ctx, "s-1", &got))
	assert.Equal(t, 7, got.TurnCount)

	ids, err := c.RecentArchivedSessions(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-2", "s-1"}, ids)
}

func TestArchiveIndexIsBounded(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < archiveListMax+20; i++ {
		id := "s-" + strconv.Itoa(i)
		require.NoError(t, c.ArchiveSession(ctx, id, map[string]string{"sessionId": id}, time.Hour))
	}

	ids, err := c.RecentArchivedSessions(ctx, archiveListMax*2)
	require.NoError(t, err)
	assert.Len(t, ids, archiveListMax)
	// Newest first
	assert.Equal(t, fmt.Sprintf("s-%d", archiveListMax+19), ids[0])
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var lastRemaining int64
	for i := int64(1); i <= 3; i++ {
		allowed, remaining, _, err := c.CheckRateLimit(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		lastRemaining = remaining
	}
	assert.Equal(t, int64(0), lastRemaining)

	allowed, remaining, resetTime, err := c.CheckRateLimit(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(0), remaining)
	assert.False(t, resetTime.IsZero())

	// Separate clients do not share a counter
	allowed, _, _, err = c.CheckRateLimit(ctx, "client-b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestIncrAndDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	n, err := c.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = c.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, c.Delete(ctx, "counter"))
	exists, err := c.Exists(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}
