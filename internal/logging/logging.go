// Package logging builds the zap logger used by icstool.
//
// Console output goes to stderr, so that command output on stdout stays
// clean. Development mode uses a colored console encoder at debug level;
// otherwise entries are JSON at the configured level. An optional log file is
// rotated by lumberjack and always receives JSON.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the log file.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

// Options configures New.
type Options struct {
	Level       string // debug, info, warn or error
	Development bool
	File        string // empty disables the log file

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Console receives console output; nil means stderr.
	Console io.Writer
}

// ParseLevel maps a level name onto a zap level, falling back to def for
// unknown names.
func ParseLevel(s string, def zapcore.Level) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return def
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := encoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05.000"))
	}
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

// FileWriter returns a rotating writer for path.
func FileWriter(path string, o Options) zapcore.WriteSyncer {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
		Compress:   o.Compress,
	}
	if lj.MaxSize == 0 {
		lj.MaxSize = DefaultMaxSizeMB
	}
	if lj.MaxBackups == 0 {
		lj.MaxBackups = DefaultMaxBackups
	}
	if lj.MaxAge == 0 {
		lj.MaxAge = DefaultMaxAgeDays
	}
	return zapcore.AddSync(lj)
}

// New builds a logger from o.
func New(o Options) *zap.Logger {
	def := zapcore.InfoLevel
	if o.Development {
		def = zapcore.DebugLevel
	}
	level := ParseLevel(o.Level, def)

	console := o.Console
	if console == nil {
		console = os.Stderr
	}
	var enc zapcore.Encoder
	if o.Development {
		enc = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	} else {
		enc = zapcore.NewJSONEncoder(encoderConfig())
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(console), level)}

	if o.File != "" {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), FileWriter(o.File, o), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
