package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	InfoFile  = "uptime.log"
	ErrorFile = "error.log"
)

type Options struct {
	Dir           string
	Level         string // zap level name; empty means info
	RetentionDays int    // lumberjack MaxAge; <=0 keeps 14
	Console       bool   // tee a human-readable encoder to stderr
}

// NewLogger writes JSON to Dir/uptime.log at Level and above, and to
// Dir/error.log at error and above. Both files rotate.
func NewLogger(o Options) (*zap.Logger, error) {
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return nil, err
	}
	level := zapcore.InfoLevel
	if o.Level != "" {
		l, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", o.Level, err)
		}
		level = l
	}
	maxAge := o.RetentionDays
	if maxAge <= 0 {
		maxAge = 14
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(cfg)

	cores := []zapcore.Core{
		zapcore.NewCore(enc, rotating(o.Dir, InfoFile, maxAge), level),
		zapcore.NewCore(enc.Clone(), rotating(o.Dir, ErrorFile, maxAge), zapcore.ErrorLevel),
	}
	if o.Console {
		cc := zap.NewDevelopmentEncoderConfig()
		cc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cc), zapcore.Lock(os.Stderr), level))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

func rotating(dir, name string, maxAge int) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     maxAge, // days
		Compress:   true,
	})
}
