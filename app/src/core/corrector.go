package core

import (
	"context"
	"errors"

	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/infra"
)

// Corrector exposes the engine to the transports and records each outcome.
type Corrector struct {
	engine Calculator
	logger Logger
}

func NewCorrector(engine Calculator, logger Logger) *Corrector {
	return &Corrector{engine: engine, logger: logger}
}

func (c *Corrector) Correct(ctx context.Context, req domain.MeasurementRequest) (domain.CorrectionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.CorrectionResult{}, err
	}

	res, err := c.engine.Compute(req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			infra.RecordCorrection(infra.OutcomeInvalid, 0)
			c.log(ctx, "corrector: rejected measurement: %v", err)
		} else {
			infra.RecordCorrection(infra.OutcomeError, 0)
			c.log(ctx, "corrector: correction failed: %v", err)
		}
		return domain.CorrectionResult{}, err
	}

	infra.RecordCorrection(infra.OutcomeOK, res.RangeCorrectionM)
	c.log(ctx, "corrector: range_bias_m=%.4f elev_deg=%.2f model=%s/%s",
		res.RangeCorrectionM, req.ElevDeg, res.TroposphereModel, res.MappingFunction)
	return res, nil
}

func (c *Corrector) log(ctx context.Context, format string, v ...any) {
	if c.logger != nil {
		c.logger.Printf(ctx, format, v...)
	}
}

var _ domain.CorrectionService = (*Corrector)(nil)
