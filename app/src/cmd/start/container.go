package main

import (
	httpapi "dfd-gps-service/app/src/api/http"
	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/infra"
)

type application struct {
	Config      infra.Config
	Logger      *infra.Logger
	Service     domain.CorrectionService
	HTTPOptions httpapi.Options
}

func newApplication(cfg infra.Config, logger *infra.Logger, service domain.CorrectionService, httpOpts httpapi.Options) *application {
	return &application{
		Config:      cfg,
		Logger:      logger,
		Service:     service,
		HTTPOptions: httpOpts,
	}
}
