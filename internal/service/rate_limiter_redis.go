package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ExtractionRateLimiter limita cuantas extracciones puede disparar una misma
// clave (IP del cliente) por ventana. Es control de costo del LLM, no auth.
type ExtractionRateLimiter interface {
	Allow(key string) bool
}

const redisExtractAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisExtractionRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisExtractionRateLimiter(client *redis.Client, window time.Duration, max int) ExtractionRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisExtractionRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "extract:rl:",
	}
}

// Allow falla abierto: sin Redis o con Redis caido preferimos atender la
// extraccion antes que rechazarla.
func (l *redisExtractionRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + normalizedKey
	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisExtractAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
