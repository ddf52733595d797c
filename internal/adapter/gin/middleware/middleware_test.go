package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"user-form-service/pkg/logger"
)

func setupRateLimited(t *testing.T, cfg RateLimiterConfig) (*gin.Engine, *miniredis.Miniredis) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.POST("/submit", NewRateLimiter(client, cfg, zaptest.NewLogger(t)).Handler(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r, mr
}

func doRequest(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	t.Run("Rejects When Bucket Is Empty", func(t *testing.T) {
		r, mr := setupRateLimited(t, RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 2})

		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/submit", nil).Code)
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/submit", nil).Code)

		w := doRequest(r, http.MethodPost, "/submit", nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

		keys := mr.Keys()
		require.Len(t, keys, 1)
		assert.Equal(t, "ratelimit:tb:POST:/submit:192.0.2.1", keys[0])
	})

	t.Run("Buckets Are Per Client", func(t *testing.T) {
		r, _ := setupRateLimited(t, RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 1})

		first := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "198.51.100.7:5000"
		r.ServeHTTP(first, req)

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/submit", nil).Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(r, http.MethodPost, "/submit", nil).Code)
	})

	t.Run("Fails Open When Redis Is Down", func(t *testing.T) {
		r, mr := setupRateLimited(t, RateLimiterConfig{RequestsPerSecond: 0.001, BurstCapacity: 1})
		mr.Close()

		for j := 0; j < 3; j++ {
			assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/submit", nil).Code)
		}
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})

	t.Run("Generated", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/", nil)

		id := w.Header().Get(logger.RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("Reused From Header", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/", http.Header{logger.RequestIDHeader: {"req-123"}})

		assert.Equal(t, "req-123", w.Header().Get(logger.RequestIDHeader))
		assert.Equal(t, "req-123", w.Body.String())
	})
}

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	doRequest(r, http.MethodGet, "/ok", http.Header{logger.RequestIDHeader: {"req-1"}})
	doRequest(r, http.MethodGet, "/fail", nil)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "req-1", fields["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := doRequest(r, http.MethodGet, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
