package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger

// Init initializes the global logger. level is one of debug/info/warn/error;
// anything else (including "") means info. Init may be called again by tests
// to swap the level.
func Init(level string) {
	lv := zapcore.InfoLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = zapcore.DebugLevel
	case "warn", "warning":
		lv = zapcore.WarnLevel
	case "error":
		lv = zapcore.ErrorLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(os.Stdout), lv)
	Log = zap.New(core)
}

// Sync flushes buffered log entries; safe to call on shutdown.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func Debug(msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	Log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	Log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	Log.Error(msg, fields...)
}
