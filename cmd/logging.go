package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/warpdl/warpscreen/pkg/logger"
)

// newLogger builds the runtime logger: console output in the configured
// format, plus a plain-text log file when one is configured.
func newLogger(cfg *Config) (logger.Logger, error) {
	var console logger.Logger
	switch cfg.LogFormat {
	case "json":
		zl, err := logger.NewProductionZapLogger()
		if err != nil {
			return nil, fmt.Errorf("init zap logger: %w", err)
		}
		console = zl
	default:
		console = logger.NewStandardLogger(log.New(os.Stderr, "warpscreen: ", log.LstdFlags))
	}
	if cfg.LogFile == "" {
		return console, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	file := &fileLogger{
		StandardLogger: logger.NewStandardLogger(log.New(f, "", log.LstdFlags)),
		f:              f,
	}
	return logger.NewMultiLogger(console, file), nil
}

// fileLogger closes its file with the logger.
type fileLogger struct {
	*logger.StandardLogger
	f *os.File
}

func (l *fileLogger) Close() error {
	return l.f.Close()
}
