// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/naveenspark/rulekeeper/internal/config"
)

// New returns a console logger at cfg.Level writing to stderr, or to
// cfg.File when set. The returned func flushes and closes the output.
func New(cfg config.LogConfig) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}

	sink := "stderr"
	if cfg.File != "" {
		sink = cfg.File
	}
	out, closeOut, err := zap.Open(sink)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", sink, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.File == "" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), out, level)

	logger := zap.New(core, zap.AddCaller()).Named("rulekeeper")
	cleanup := func() {
		_ = logger.Sync()
		closeOut()
	}
	return logger, cleanup, nil
}
