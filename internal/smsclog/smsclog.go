// Package smsclog provides this SMSC's structured logger, built the
// same way mellowdrifter-rpkirtr2's protocol server builds its own:
// a zap.Config with console encoding, ISO8601 timestamps and a
// colored level, exposed as a *zap.SugaredLogger so call sites can
// scope per-connection fields with .With.
package smsclog

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the default logger for this SMSC at the given level
// ("debug", "info", "warn", "error"; case-insensitive, defaults to
// info).
func New(level string) *zap.SugaredLogger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zap.DebugLevel
	case "warn":
		zapLevel = zap.WarnLevel
	case "error":
		zapLevel = zap.ErrorLevel
	default:
		zapLevel = zap.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}

	logger, err := config.Build()
	if err != nil {
		panic("smsclog: cannot initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

// Nop returns a logger that discards everything, for tests that don't
// want console noise.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// ForConnection scopes base with the fields every Connection- and
// Session-level log line carries, mirroring rpkirtr2's
// NewClient(conn, baseLogger, ...).With("client", remote) pattern.
func ForConnection(base *zap.SugaredLogger, remoteAddr string, sessionID uint64) *zap.SugaredLogger {
	return base.With("remote_addr", remoteAddr, "session_id", sessionID)
}
