// mocklogger/mocklogger.go
// Package mocklogger provides a testify mock of logger.Logger for tests that assert on log calls.
package mocklogger

import (
	"time"

	"github.com/fossabot/wechat-1/logger"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockLogger is a mock type for the Logger interface.
type MockLogger struct {
	mock.Mock
	logLevel logger.LogLevel
}

// NewMockLogger creates a new instance of MockLogger at debug level.
func NewMockLogger() *MockLogger {
	return &MockLogger{logLevel: logger.LogLevelDebug}
}

var _ logger.Logger = (*MockLogger)(nil)

// GetLogLevel returns the level set through SetLevel; it is not recorded as a call.
func (m *MockLogger) GetLogLevel() logger.LogLevel {
	return m.logLevel
}

// SetLevel sets the logging level of the MockLogger without recording a call.
func (m *MockLogger) SetLevel(level logger.LogLevel) {
	m.logLevel = level
}

// With returns the receiver so that calls made on the derived logger are recorded on the same mock.
func (m *MockLogger) With(fields ...zap.Field) logger.Logger {
	return m
}

// Debug logs a message at the Debug level.
func (m *MockLogger) Debug(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Info logs a message at the Info level.
func (m *MockLogger) Info(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Warn logs a message at the Warn level.
func (m *MockLogger) Warn(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Error logs a message at the Error level and returns the error configured on the expectation.
func (m *MockLogger) Error(msg string, fields ...zap.Field) error {
	return m.Called(msg, fields).Error(0)
}

// Panic logs a message at the Panic level.
func (m *MockLogger) Panic(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Fatal logs a message at the Fatal level.
func (m *MockLogger) Fatal(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// LogRequest records a completed request.
func (m *MockLogger) LogRequest(event string, method string, url string, statusCode int, duration time.Duration) {
	m.Called(event, method, url, statusCode, duration)
}

// LogError records a failed request.
func (m *MockLogger) LogError(event string, method string, url string, statusCode int, err error, rawResponse string) {
	m.Called(event, method, url, statusCode, err, rawResponse)
}

// LogRetryAttempt records a retry attempt.
func (m *MockLogger) LogRetryAttempt(event string, method string, url string, attempt int, reason string, waitDuration time.Duration) {
	m.Called(event, method, url, attempt, reason, waitDuration)
}

// LogTokenRefresh records a token refresh.
func (m *MockLogger) LogTokenRefresh(event string, duration time.Duration, err error) {
	m.Called(event, duration, err)
}
