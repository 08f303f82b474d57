package core

import (
	"context"
	"sync"

	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/infra"
)

// Calculator is the part of Engine the worker pool depends on.
type Calculator interface {
	Compute(req domain.MeasurementRequest) (domain.CorrectionResult, error)
}

type WorkerPool struct {
	calc        Calculator
	workerCount int
	logger      Logger
}

func NewWorkerPool(workerCount int, calc Calculator, logger Logger) *WorkerPool {
	if workerCount < 0 {
		workerCount = 0
	}
	return &WorkerPool{calc: calc, workerCount: workerCount, logger: logger}
}

// Run blocks until batches is closed or ctx is cancelled. It does not close out.
func (p *WorkerPool) Run(ctx context.Context, batches <-chan domain.SampleBatch, out chan<- domain.SampleOutcome) {
	if p.workerCount == 0 {
		p.drainUntilClosed(ctx, batches)
		return
	}

	var wg sync.WaitGroup
	wg.Add(p.workerCount)

	for i := 0; i < p.workerCount; i++ {
		go func() {
			infra.WorkerStarted()
			defer wg.Done()
			defer infra.WorkerFinished()
			p.workerLoop(ctx, batches, out)
		}()
	}
	wg.Wait()
}

func (p *WorkerPool) workerLoop(ctx context.Context, batches <-chan domain.SampleBatch, out chan<- domain.SampleOutcome) {
	for {
		select {
		case <-ctx.Done():
			p.log(ctx, "worker: context cancelled: %v", ctx.Err())
			return
		case batch, ok := <-batches:
			if !ok {
				return
			}
			if !p.processBatch(ctx, batch, out) {
				return
			}
		}
	}
}

func (p *WorkerPool) processBatch(ctx context.Context, batch domain.SampleBatch, out chan<- domain.SampleOutcome) bool {
	for _, sample := range batch.Samples {
		if ctx.Err() != nil {
			p.log(ctx, "worker: aborting batch %s due to context: %v", batch.ID, ctx.Err())
			return false
		}

		outcome := p.correctSample(sample)
		if outcome.Err != nil {
			p.log(ctx, "worker: sample %d in batch %s rejected: %v", sample.Index, batch.ID, outcome.Err)
		}

		select {
		case <-ctx.Done():
			return false
		case out <- outcome:
		}
	}
	infra.AddBenchmarkSamples(len(batch.Samples))
	return true
}

// correctSample simulates a receiver that sees the modelled bias plus noise,
// then removes the bias the engine predicts.
func (p *WorkerPool) correctSample(sample domain.Sample) domain.SampleOutcome {
	outcome := domain.SampleOutcome{Sample: sample}

	res, err := p.calc.Compute(sample.Request)
	if err != nil {
		outcome.Err = err
		outcome.MeasuredM = sample.TrueRangeM + sample.NoiseM
		outcome.CorrectedM = outcome.MeasuredM
		return outcome
	}

	outcome.Result = res
	outcome.MeasuredM = sample.TrueRangeM + res.RangeCorrectionM + sample.NoiseM
	outcome.CorrectedM = outcome.MeasuredM - res.RangeCorrectionM
	return outcome
}

func (p *WorkerPool) drainUntilClosed(ctx context.Context, batches <-chan domain.SampleBatch) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-batches:
			if !ok {
				return
			}
		}
	}
}

func (p *WorkerPool) log(ctx context.Context, format string, v ...any) {
	if p.logger != nil {
		p.logger.Printf(ctx, format, v...)
	}
}

var _ domain.WorkerPool = (*WorkerPool)(nil)
