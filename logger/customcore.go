package logger

import (
	"go.uber.org/zap/zapcore"
)

// trailingKeys are moved behind every other field so the message-specific fields stay readable.
var trailingKeys = []string{"request_id", "application"}

type customCore struct {
	zapcore.Core
}

// With adds structured context to the Core.
func (c *customCore) With(fields []zapcore.Field) zapcore.Core {
	return &customCore{c.Core.With(fields)}
}

// Write reorders the fields so that request_id and application come last, then delegates.
func (c *customCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	ordered := make([]zapcore.Field, 0, len(fields))
	trailing := make([]zapcore.Field, 0, len(trailingKeys))

	for _, field := range fields {
		if isTrailingKey(field.Key) {
			trailing = append(trailing, field)
			continue
		}
		ordered = append(ordered, field)
	}

	return c.Core.Write(entry, append(ordered, trailing...))
}

// Check determines whether the supplied Entry should be logged.
// The customCore itself is registered so that Write goes through the reordering above.
func (c *customCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, c)
	}
	return checkedEntry
}

// Sync flushes buffered logs (if any).
func (c *customCore) Sync() error {
	return c.Core.Sync()
}

func isTrailingKey(key string) bool {
	for _, k := range trailingKeys {
		if k == key {
			return true
		}
	}
	return false
}
