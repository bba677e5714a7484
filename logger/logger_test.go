// logger_test.go
package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level LogLevel) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLogger(zap.New(core), level), logs
}

func TestParseLogLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"LogLevelDebug", LogLevelDebug},
		{"debug", LogLevelDebug},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"LogLevelError", LogLevelError},
		{"fatal", LogLevelFatal},
		{"verbose", LogLevelNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevelFromString(tt.in))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	log, logs := newObservedLogger(LogLevelWarn)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)

	log.SetLevel(LogLevelDebug)
	log.Debug("now shown")
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, LogLevelDebug, log.GetLogLevel())
}

func TestErrorReturnsError(t *testing.T) {
	log, logs := newObservedLogger(LogLevelInfo)

	err := log.Error("boom", zap.String("k", "v"))

	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])
}

func TestNoneLevelSilencesErrors(t *testing.T) {
	log, logs := newObservedLogger(LogLevelNone)

	err := log.Error("quiet")

	assert.Error(t, err)
	assert.Zero(t, logs.Len())
}

func TestWithCarriesFields(t *testing.T) {
	log, logs := newObservedLogger(LogLevelInfo)

	log.With(zap.String("request_id", "abc")).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc", logs.All()[0].ContextMap()["request_id"])
}

func TestLogRetryAttempt(t *testing.T) {
	log, logs := newObservedLogger(LogLevelDebug)

	log.LogRetryAttempt("retry", "POST", "https://api.example.com/message/send", 1, "errcode 42001", 500*time.Millisecond)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Retrying with refreshed access token.", entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, int64(1), entry.ContextMap()["attempt"])
	assert.Equal(t, "errcode 42001", entry.ContextMap()["reason"])
}

func TestLogTokenRefresh(t *testing.T) {
	log, logs := newObservedLogger(LogLevelDebug)

	log.LogTokenRefresh("token_refresh", time.Millisecond, nil)
	log.LogTokenRefresh("token_refresh", time.Millisecond, errors.New("upstream down"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
	assert.Equal(t, "upstream down", logs.All()[1].ContextMap()["error"])
}

func TestLogRequestOnlyAtDebug(t *testing.T) {
	log, logs := newObservedLogger(LogLevelInfo)

	log.LogRequest("request", "GET", "https://api.example.com/", 200, time.Millisecond)
	assert.Zero(t, logs.Len())

	log.SetLevel(LogLevelDebug)
	log.LogRequest("request", "GET", "https://api.example.com/", 200, time.Millisecond)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(200), logs.All()[0].ContextMap()["status_code"])
}

func TestCustomCoreMovesRequestIDLast(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	zl := zap.New(&customCore{inner})

	zl.Info("ordered", zap.String("request_id", "r1"), zap.String("method", "GET"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].Context
	require.Len(t, fields, 2)
	assert.Equal(t, "method", fields[0].Key)
	assert.Equal(t, "request_id", fields[1].Key)
}
