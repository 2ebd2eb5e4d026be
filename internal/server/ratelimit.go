package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/agentlens/agentlens/internal/interfaces"
)

// rateLimiter is a redis-backed sliding-window limiter keyed by client IP.
// A nil *rateLimiter allows everything.
type rateLimiter struct {
	client    *redis.Client
	perMinute int
	logger    interfaces.Logger
}

func newRateLimiter(client *redis.Client, perMinute int, logger interfaces.Logger) *rateLimiter {
	if client == nil || perMinute <= 0 {
		return nil
	}
	return &rateLimiter{
		client:    client,
		perMinute: perMinute,
		logger:    logger.With(interfaces.Field{Key: "component", Value: "ratelimit"}),
	}
}

// Allow records one request for the client and reports whether it fits in
// the window. Redis failures fail open: a broken limiter never blocks scans.
func (l *rateLimiter) Allow(ctx context.Context, clientIP string) bool {
	if l == nil {
		return true
	}

	key := "agentlens:ratelimit:" + clientIP
	now := time.Now().UnixNano()
	windowStart := now - int64(time.Minute)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	pipe.ZAdd(ctx, key, &redis.Z{Score: float64(now), Member: now})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("rate limit check failed, allowing request",
			interfaces.Field{Key: "error", Value: err.Error()})
		return true
	}
	return count.Val() <= int64(l.perMinute)
}

// middleware rejects over-limit scan requests with 429.
func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r.Context(), clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
