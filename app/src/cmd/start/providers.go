package main

import (
	"fmt"
	"io"

	httpapi "dfd-gps-service/app/src/api/http"
	"dfd-gps-service/app/src/core"
	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/infra"
)

func provideConfig() (infra.Config, error) {
	cfg := infra.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return infra.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func provideLogger(out io.Writer, cfg infra.Config) (*infra.Logger, func()) {
	logger := infra.NewLeveledLogger(out, cfg.ServiceName, cfg.LogLevel)
	return logger, func() { _ = logger.Sync() }
}

func provideEngine(cfg infra.Config) (*core.Engine, error) {
	engine, err := core.NewEngineByName(cfg.TroposphereModel, cfg.MappingFunction)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return engine, nil
}

func provideCorrectionService(engine *core.Engine, logger *infra.Logger) domain.CorrectionService {
	return core.NewCorrector(engine, logger)
}

func provideHTTPOptions(cfg infra.Config) httpapi.Options {
	return httpapi.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		StaticDir:      cfg.StaticDir,
	}
}
