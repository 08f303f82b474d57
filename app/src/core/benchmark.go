package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"dfd-gps-service/app/src/domain"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoAcceptedSamples = errors.New("benchmark: no sample passed validation")

// ErrorStats summarises a set of range errors in metres.
type ErrorStats struct {
	Mean   float64 `json:"mean_m"`
	Median float64 `json:"median_m"`
	RMSE   float64 `json:"rmse_m"`
}

type BenchmarkSummary struct {
	Samples          int        `json:"samples"`
	Rejected         int        `json:"rejected"`
	Seed             uint64     `json:"seed"`
	TroposphereModel string     `json:"tropo_model"`
	MappingFunction  string     `json:"mapping_function"`
	Naive            ErrorStats `json:"naive"`
	Corrected        ErrorStats `json:"dfd_corrected"`
	RMSENaiveM       float64    `json:"RMSE_naive_m"`
	RMSECorrectedM   float64    `json:"RMSE_DFD_corrected_m"`
	ImprovementPct   float64    `json:"relative_improvement_percent"`
	MeanRangeBiasM   float64    `json:"mean_range_bias_m"`
	Elapsed          string     `json:"elapsed"`
}

type BenchmarkResult struct {
	Scenario Scenario
	// Outcomes are ordered by sample index; rejected samples carry Err.
	Outcomes []domain.SampleOutcome
	Summary  BenchmarkSummary
}

// Accepted returns the outcomes that produced a correction.
func (r *BenchmarkResult) Accepted() []domain.SampleOutcome {
	accepted := make([]domain.SampleOutcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Err == nil {
			accepted = append(accepted, o)
		}
	}
	return accepted
}

type Benchmark struct {
	scenario Scenario
	engine   *Engine
	logger   Logger
}

func NewBenchmark(scenario Scenario, logger Logger) (*Benchmark, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	engine, err := NewEngineByName(scenario.TroposphereModel, scenario.MappingFunction)
	if err != nil {
		return nil, err
	}
	return &Benchmark{scenario: scenario, engine: engine, logger: logger}, nil
}

// Run generates the scenario samples, corrects them on the worker pool and
// aggregates error statistics.
func (b *Benchmark) Run(ctx context.Context) (*BenchmarkResult, error) {
	start := time.Now()

	batches := make(chan domain.SampleBatch, b.scenario.Workers)
	outcomes := make(chan domain.SampleOutcome, b.scenario.BatchSize)

	gen := NewGenerator(GeneratorConfig{Scenario: b.scenario}, b.logger)
	pool := NewWorkerPool(b.scenario.Workers, b.engine, b.logger)

	go gen.Run(ctx, batches)
	go func() {
		pool.Run(ctx, batches, outcomes)
		close(outcomes)
	}()

	collected := make([]domain.SampleOutcome, 0, b.scenario.Samples)
	for o := range outcomes {
		collected = append(collected, o)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("benchmark interrupted after %d samples: %w", len(collected), err)
	}

	slices.SortFunc(collected, func(a, b domain.SampleOutcome) int {
		return a.Sample.Index - b.Sample.Index
	})

	summary, err := Summarize(collected)
	if err != nil {
		return nil, err
	}
	summary.Seed = b.scenario.Seed
	summary.TroposphereModel = b.engine.TroposphereModel()
	summary.MappingFunction = b.engine.MappingFunction()
	summary.Elapsed = time.Since(start).Round(time.Millisecond).String()

	b.log(ctx, "benchmark: samples=%d rejected=%d RMSE naive=%.3f m corrected=%.3f m improvement=%.1f%%",
		summary.Samples, summary.Rejected, summary.RMSENaiveM, summary.RMSECorrectedM, summary.ImprovementPct)

	return &BenchmarkResult{Scenario: b.scenario, Outcomes: collected, Summary: summary}, nil
}

// Summarize computes error statistics over accepted outcomes.
func Summarize(outcomes []domain.SampleOutcome) (BenchmarkSummary, error) {
	var naive, corrected, bias []float64
	rejected := 0
	for _, o := range outcomes {
		if o.Err != nil {
			rejected++
			continue
		}
		naive = append(naive, o.ErrMeasured())
		corrected = append(corrected, o.ErrCorrected())
		bias = append(bias, o.Result.RangeCorrectionM)
	}
	if len(naive) == 0 {
		return BenchmarkSummary{}, ErrNoAcceptedSamples
	}

	s := BenchmarkSummary{
		Samples:        len(outcomes),
		Rejected:       rejected,
		Naive:          errorStats(naive),
		Corrected:      errorStats(corrected),
		MeanRangeBiasM: stat.Mean(bias, nil),
	}
	s.RMSENaiveM = s.Naive.RMSE
	s.RMSECorrectedM = s.Corrected.RMSE
	if s.RMSENaiveM > 0 {
		s.ImprovementPct = (s.RMSENaiveM - s.RMSECorrectedM) / s.RMSENaiveM * 100
	}
	return s, nil
}

func errorStats(errs []float64) ErrorStats {
	return ErrorStats{
		Mean:   stat.Mean(errs, nil),
		Median: median(errs),
		RMSE:   floats.Norm(errs, 2) / math.Sqrt(float64(len(errs))),
	}
}

// median averages the two middle values for even lengths.
func median(x []float64) float64 {
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func (b *Benchmark) log(ctx context.Context, format string, v ...any) {
	if b.logger != nil {
		b.logger.Printf(ctx, format, v...)
	}
}
