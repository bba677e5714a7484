// loggerconfig.go
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogOutputJSON          = "json"
	LogOutputHumanReadable = "console"
)

// BuildLogger creates and returns a new zap-backed Logger.
// encoding is either "json" or "console"; consoleSeparator only applies to the console encoder.
// When exportPath is non-empty, log lines are also appended to that file.
func BuildLogger(logLevel LogLevel, encoding string, consoleSeparator string, exportPath string) (Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderCfg.EncodeDuration = zapcore.StringDurationEncoder
	encoderCfg.MessageKey = "msg"
	encoderCfg.LevelKey = "level"

	if encoding == LogOutputHumanReadable {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if consoleSeparator != "" {
			encoderCfg.ConsoleSeparator = consoleSeparator
		}
	} else {
		encoding = LogOutputJSON
	}

	outputPaths := []string{"stdout"}
	if exportPath != "" {
		path, err := EnsureLogFilePath(exportPath)
		if err != nil {
			return nil, err
		}
		outputPaths = append(outputPaths, path)
	}

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(convertToZapLevel(logLevel)),
		Development:       false,
		Encoding:          encoding,
		DisableCaller:     true,
		DisableStacktrace: true,
		EncoderConfig:     encoderCfg,
		OutputPaths:       outputPaths,
		// Zap's internal errors only, not the ones logged by the client.
		ErrorOutputPaths: []string{"stderr"},
	}

	zl, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &defaultLogger{
		logger:   zap.New(&customCore{zl.Core()}),
		logLevel: logLevel,
	}, nil
}

// convertToZapLevel converts the custom LogLevel to a zapcore.Level
func convertToZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zap.DebugLevel
	case LogLevelInfo:
		return zap.InfoLevel
	case LogLevelWarn:
		return zap.WarnLevel
	case LogLevelError:
		return zap.ErrorLevel
	case LogLevelDPanic:
		return zap.DPanicLevel
	case LogLevelPanic:
		return zap.PanicLevel
	case LogLevelFatal, LogLevelNone:
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}
