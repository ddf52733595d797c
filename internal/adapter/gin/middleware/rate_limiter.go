package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-form-service/pkg/logger"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
}

// tokenBucket refills rate tokens per second up to capacity and takes one per request.
// Bucket state: {last_refill, tokens}. Returns 1 when the request is allowed.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local requested = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= requested then
		tokens = tokens - requested
		allowed = 1
	end

	redis.call('HMSET', key, 'last_refill', now, 'tokens', tokens)
	redis.call('EXPIRE', key, 60)
	return allowed
`)

// RateLimiter limits requests per client with a Redis token bucket.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
}

// NewRateLimiter creates a new rate limiter middleware.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
	}
}

// Handler returns the Gin middleware. Redis errors let the request through (fail open).
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, c.FullPath(), clientIP)

		// Redis server time keeps replicas on one clock.
		now, err := rl.client.Time(ctx).Result()
		if err != nil {
			rl.failOpen(c, clientIP, err)
			return
		}

		allowed, err := tokenBucket.Run(ctx, rl.client, []string{key},
			rl.config.RequestsPerSecond,
			rl.config.BurstCapacity,
			float64(now.UnixMicro())/1e6,
			1,
		).Int64()
		if err != nil {
			rl.failOpen(c, clientIP, err)
			return
		}

		if allowed == 0 {
			logger.WithContext(ctx, rl.log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)", rl.config.RequestsPerSecond, rl.config.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) failOpen(c *gin.Context, clientIP string, err error) {
	logger.WithContext(c.Request.Context(), rl.log).Warn("rate limiter redis error, allowing request",
		zap.String("client_ip", clientIP),
		zap.Error(err),
	)
	c.Next()
}
