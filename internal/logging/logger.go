package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the rotated log file inside the log directory.
const FileName = "monitor.log"

// NewLogger returns a JSON logger writing to a rotated file under logDir.
// Nothing is written to stdout, which carries the availability report.
// An unknown level falls back to info.
func NewLogger(logDir, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})

	lvl := new(zapcore.Level)
	if err := lvl.Set(level); err != nil {
		*lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, zap.NewAtomicLevelAt(*lvl))
	return zap.New(core, zap.Fields(zap.String("service", "endpointmonitor"))), nil
}
