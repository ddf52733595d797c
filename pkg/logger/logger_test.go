package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	l, err := NewWithConfig(Config{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		ServiceName:    "user-form-service",
		ServiceVersion: "test",
		Environment:    "test",
	})
	require.NoError(t, err)

	l.Debug("dropped below level")
	l.Info("submission stored", zap.Int64("id", 7))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"submission stored"`)
	assert.Contains(t, string(data), `"service":"user-form-service"`)
	assert.NotContains(t, string(data), "dropped below level")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("nonsense"))
}

func TestWithContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	WithContext(ctx, base).Info("hello")
	WithContext(context.Background(), base).Info("no id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), 0.05, "debug")

	sql := func() (string, int64) { return "INSERT INTO `users` (`name`,`email`) VALUES (?,?)", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	l.Trace(context.Background(), time.Now(), sql, errors.New("database is locked"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "gorm query", entries[0].Message)
	assert.Equal(t, "gorm slow query", entries[1].Message)
	assert.Equal(t, "gorm query error", entries[2].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestGormLogger_SilentAndFilter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), 0.2, "warn").LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	assert.Zero(t, logs.Len())

	sql, vars := NewGormLogger(zap.NewNop(), 0, "info").ParamsFilter(context.Background(), "INSERT ?", "Alice")
	assert.Equal(t, "INSERT ?", sql)
	assert.Nil(t, vars)
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	capture := func(ctx context.Context, _ any) (any, error) {
		return GetRequestID(ctx), nil
	}

	t.Run("reuses inbound id", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc"))

		got, err := interceptor(ctx, nil, info, capture)
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("generates id", func(t *testing.T) {
		got, err := interceptor(context.Background(), nil, info, capture)
		require.NoError(t, err)
		assert.NotEmpty(t, got)
	})
}
