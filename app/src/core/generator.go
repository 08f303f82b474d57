package core

import (
	"context"
	"math"
	"time"

	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/infra"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

type GeneratorConfig struct {
	Scenario Scenario
	// Interval throttles batch emission; zero emits as fast as workers accept.
	Interval   time.Duration
	RandSource rand.Source
}

// Generator draws synthetic measurements from the scenario distributions.
// Draw order is fixed per sample so a seed fully determines the set.
type Generator struct {
	cfg    GeneratorConfig
	logger Logger

	temp     distuv.Normal
	pressure distuv.Normal
	rh       distuv.Uniform
	elev     distuv.Uniform
	noise    distuv.Normal
}

func NewGenerator(cfg GeneratorConfig, logger Logger) *Generator {
	if cfg.Scenario.BatchSize <= 0 {
		cfg.Scenario.BatchSize = 1
	}

	source := cfg.RandSource
	if source == nil {
		source = rand.NewSource(cfg.Scenario.Seed)
	}
	cfg.RandSource = source

	s := cfg.Scenario
	return &Generator{
		cfg:      cfg,
		logger:   logger,
		temp:     distuv.Normal{Mu: s.TempMeanK, Sigma: s.TempStdK, Src: source},
		pressure: distuv.Normal{Mu: s.PressureMeanPa, Sigma: s.PressureStdPa, Src: source},
		rh:       distuv.Uniform{Min: s.RHMin, Max: s.RHMax, Src: source},
		elev:     distuv.Uniform{Min: s.ElevMinDeg, Max: s.ElevMaxDeg, Src: source},
		noise:    distuv.Normal{Mu: 0, Sigma: s.NoiseStdM, Src: source},
	}
}

// Run emits Scenario.Samples samples in batches and closes out when done or
// when ctx is cancelled.
func (g *Generator) Run(ctx context.Context, out chan<- domain.SampleBatch) {
	defer close(out)

	var tick <-chan time.Time
	if g.cfg.Interval > 0 {
		ticker := time.NewTicker(g.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for next := 0; next < g.cfg.Scenario.Samples; {
		if tick != nil {
			select {
			case <-ctx.Done():
				g.log(ctx, "generator: stopped (context cancelled): %v", ctx.Err())
				return
			case <-tick:
			}
		}

		batch := g.generateBatch(next)
		next += len(batch.Samples)
		infra.IncGeneratorBatches()

		if !g.sendBatch(ctx, out, batch) {
			return
		}
	}
	g.log(ctx, "generator: emitted %d samples", g.cfg.Scenario.Samples)
}

func (g *Generator) generateBatch(start int) domain.SampleBatch {
	size := g.cfg.Scenario.BatchSize
	if remaining := g.cfg.Scenario.Samples - start; remaining < size {
		size = remaining
	}

	samples := make([]domain.Sample, size)
	for i := range samples {
		samples[i] = g.drawSample(start + i)
	}
	return domain.SampleBatch{ID: uuid.NewString(), Samples: samples}
}

func (g *Generator) drawSample(index int) domain.Sample {
	s := g.cfg.Scenario
	req := domain.MeasurementRequest{
		LatDeg:     s.LatDeg,
		LonDeg:     s.LonDeg,
		HeightM:    s.HeightM,
		TempK:      g.temp.Rand(),
		PressurePa: g.pressure.Rand(),
		RHFrac:     math.Max(0, math.Min(1, g.rh.Rand())),
		ElevDeg:    g.elev.Rand(),
		RangeM:     s.TrueRangeM,
	}
	return domain.Sample{
		Index:      index,
		Request:    req,
		TrueRangeM: s.TrueRangeM,
		NoiseM:     g.noise.Rand(),
	}
}

func (g *Generator) sendBatch(ctx context.Context, out chan<- domain.SampleBatch, batch domain.SampleBatch) bool {
	select {
	case <-ctx.Done():
		g.log(ctx, "generator: stopping before batch %s: %v", batch.ID, ctx.Err())
		return false
	case out <- batch:
		return true
	}
}

func (g *Generator) log(ctx context.Context, format string, v ...any) {
	if g.logger != nil {
		g.logger.Printf(ctx, format, v...)
	}
}

var _ domain.SampleGenerator = (*Generator)(nil)
