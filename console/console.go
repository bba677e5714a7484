// console.go
// Package console prints levelled status lines for command-line front-ends.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fossabot/wechat-1/logger"
	"go.uber.org/zap"
)

// Level tags a console line.
type Level string

const (
	INFO    Level = "INFO"
	WARNING Level = "WARNING"
	ERROR   Level = "ERROR"
	MESSAGE Level = "MESSAGE"
)

// LogLevel maps a console level onto the logger level used when the line is also logged.
// MESSAGE lines are payload output and are not logged.
func (l Level) LogLevel() logger.LogLevel {
	switch l {
	case INFO:
		return logger.LogLevelInfo
	case WARNING:
		return logger.LogLevelWarn
	case ERROR:
		return logger.LogLevelError
	default:
		return logger.LogLevelNone
	}
}

// Printer writes levelled lines to out and mirrors them to the logger.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	log logger.Logger
}

// NewPrinter creates a Printer. A nil logger disables mirroring.
func NewPrinter(out io.Writer, log logger.Logger) *Printer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Printer{out: out, log: log}
}

// Print writes one line. MESSAGE lines are written verbatim; other levels are prefixed with the level.
func (p *Printer) Print(level Level, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	p.mu.Lock()
	var err error
	if level == MESSAGE {
		_, err = fmt.Fprintln(p.out, msg)
	} else {
		_, err = fmt.Fprintf(p.out, "[%s] %s\n", level, msg)
	}
	p.mu.Unlock()

	switch level.LogLevel() {
	case logger.LogLevelInfo:
		p.log.Info(msg, zap.String("console_level", string(level)))
	case logger.LogLevelWarn:
		p.log.Warn(msg, zap.String("console_level", string(level)))
	case logger.LogLevelError:
		_ = p.log.Error(msg, zap.String("console_level", string(level)))
	}
	return err
}

// Info prints an INFO line.
func (p *Printer) Info(format string, args ...any) error { return p.Print(INFO, format, args...) }

// Warning prints a WARNING line.
func (p *Printer) Warning(format string, args ...any) error { return p.Print(WARNING, format, args...) }

// Error prints an ERROR line.
func (p *Printer) Error(format string, args ...any) error { return p.Print(ERROR, format, args...) }

// Message prints a payload line.
func (p *Printer) Message(format string, args ...any) error { return p.Print(MESSAGE, format, args...) }
