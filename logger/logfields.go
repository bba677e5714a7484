// logfields.go
package logger

import (
	"time"

	"go.uber.org/zap"
)

// LogRequest logs the completion of an HTTP request, including the HTTP method, URL, status code, and duration.
func (d *defaultLogger) LogRequest(event string, method string, url string, statusCode int, duration time.Duration) {
	if d.logLevel <= LogLevelDebug {
		d.logger.Debug("HTTP request completed",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
		)
	}
}

// LogError logs an error that occurs during the processing of an HTTP request.
func (d *defaultLogger) LogError(event string, method string, url string, statusCode int, err error, rawResponse string) {
	if d.logLevel <= LogLevelError {
		errorMessage := ""
		if err != nil {
			errorMessage = err.Error()
		}
		d.logger.Error("Error during HTTP request",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.String("error_message", errorMessage),
			zap.String("raw_response", rawResponse),
		)
	}
}

// LogRetryAttempt logs a retry attempt for an HTTP request, including the attempt number, the reason
// and how long the client waits before re-issuing it.
func (d *defaultLogger) LogRetryAttempt(event string, method string, url string, attempt int, reason string, waitDuration time.Duration) {
	if d.logLevel <= LogLevelWarn {
		d.logger.Warn("Retrying with refreshed access token.",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.String("reason", reason),
			zap.Duration("wait_duration", waitDuration),
		)
	}
}

// LogTokenRefresh logs the outcome of an access token refresh.
func (d *defaultLogger) LogTokenRefresh(event string, duration time.Duration, err error) {
	if err != nil {
		if d.logLevel <= LogLevelError {
			d.logger.Error("Failed to refresh access token",
				zap.String("event", event),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		}
		return
	}
	if d.logLevel <= LogLevelInfo {
		d.logger.Info("Access token refreshed",
			zap.String("event", event),
			zap.Duration("duration", duration),
		)
	}
}
