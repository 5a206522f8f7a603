// Package logger builds the zap logger used by the job digest: progress on stdout, warnings and
// errors on stderr.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger writing to the process's stdout and stderr.
func New(level string) (*zap.Logger, error) {
	return NewWithWriters(level, os.Stdout, os.Stderr)
}

// NewWithWriters creates a logger that sends entries below warn to out and the rest to errOut.
// An empty level means info.
func NewWithWriters(level string, out, errOut io.Writer) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	min, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	enc := zapcore.NewConsoleEncoder(encCfg)

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= min && l < zapcore.WarnLevel })
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= min && l >= zapcore.WarnLevel })

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), low),
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(errOut)), high),
	)
	return zap.New(core), nil
}
