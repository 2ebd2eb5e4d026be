package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/utils"
)

// resultCache serves recent scan results from redis and collapses concurrent
// scans of the same URL+options into one upstream scan via singleflight.
// A nil *resultCache is valid and means every request scans.
type resultCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger interfaces.Logger
}

func newResultCache(client *redis.Client, ttl time.Duration, logger interfaces.Logger) *resultCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &resultCache{
		client: client,
		ttl:    ttl,
		logger: logger.With(interfaces.Field{Key: "component", Value: "cache"}),
	}
}

// cacheKey combines the URL, the options that change scan output, and the
// fingerprint of the fetched content, so differently-configured scans never
// share an entry and entries self-invalidate when the page changes
// materially.
func cacheKey(url string, opts *model.ScanOptions, contentFingerprint string) string {
	payload, _ := json.Marshal(struct {
		URL     string             `json:"url"`
		Opts    *model.ScanOptions `json:"opts"`
		Content string             `json:"content"`
	}{URL: url, Opts: opts, Content: contentFingerprint})
	return "agentlens:scan:" + utils.Fingerprint(payload)
}

// GetOrScan returns the cached result for key, or runs scan exactly once per
// key across concurrent callers and caches its output. The boolean reports a
// cache hit.
func (c *resultCache) GetOrScan(ctx context.Context, key string, scan func() (*model.ScanResult, error)) (*model.ScanResult, bool, error) {
	if c == nil {
		result, err := scan()
		return result, false, err
	}

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached model.ScanResult
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			return &cached, true, nil
		}
		// Unreadable entry; fall through and overwrite it.
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed",
			interfaces.Field{Key: "error", Value: err.Error()})
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		result, err := scan()
		if err != nil {
			return nil, err
		}
		if raw, jerr := json.Marshal(result); jerr == nil {
			if serr := c.client.Set(ctx, key, raw, c.ttl).Err(); serr != nil {
				c.logger.Warn("cache write failed",
					interfaces.Field{Key: "error", Value: serr.Error()})
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*model.ScanResult), false, nil
}
