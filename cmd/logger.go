package cmd

import (
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/starsandeep/sfsync/config"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (ectologger.Logger, func(), error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	zapLogger, err := zapConfig.Build(zap.Fields(zap.String("app", cfg.AppName)))
	if err != nil {
		return nil, nil, err
	}

	flush := func() { _ = zapLogger.Sync() }
	return zapadapter.NewZapEctoLogger(zapLogger, nil), flush, nil
}
