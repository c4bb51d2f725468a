package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meetingops/taskbridge/internal/domain/entities"
)

// AnalysisCache memoizes extraction results by transcript content so a
// re-submitted transcript skips the model round trip. Cache failures are
// logged and swallowed: a cold or broken cache only costs latency.
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewAnalysisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *AnalysisCache {
	return &AnalysisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Key derives the cache key from everything that influences the analysis:
// the routing context and the transcript text itself.
func (c *AnalysisCache) Key(transcript string, mctx entities.MeetingContext) string {
	h := sha256.New()
	h.Write([]byte(mctx.Category))
	h.Write([]byte{0})
	h.Write([]byte(mctx.SubjectName))
	h.Write([]byte{0})
	h.Write([]byte(mctx.Department))
	h.Write([]byte{0})
	h.Write([]byte(mctx.Project))
	h.Write([]byte{0})
	h.Write([]byte(transcript))
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached analysis or nil on miss or any cache error.
func (c *AnalysisCache) Get(ctx context.Context, key string) *entities.TranscriptAnalysis {
	if c.client == nil {
		return nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.Warn("⚠️ Analysis cache read failed", zap.Error(err))
		}
		return nil
	}
	var analysis entities.TranscriptAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		if c.logger != nil {
			c.logger.Warn("⚠️ Corrupt analysis cache entry, ignoring", zap.String("key", key))
		}
		return nil
	}
	return &analysis
}

// Set stores the analysis. Degraded analyses are never cached so a model
// outage does not pin error results for the TTL.
func (c *AnalysisCache) Set(ctx context.Context, key string, analysis *entities.TranscriptAnalysis) {
	if c.client == nil || analysis == nil || analysis.IsDegraded() {
		return
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("⚠️ Analysis cache write failed", zap.Error(err))
	}
}
