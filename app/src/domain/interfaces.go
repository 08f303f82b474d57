package domain

import "context"

// CorrectionService describes the behaviour exposed to transport layers.
type CorrectionService interface {
	Correct(ctx context.Context, req MeasurementRequest) (CorrectionResult, error)
}

// SampleGenerator produces batches of synthetic samples for the benchmark.
type SampleGenerator interface {
	Run(ctx context.Context, out chan<- SampleBatch)
}

// WorkerPool consumes sample batches and emits their corrected outcomes.
type WorkerPool interface {
	Run(ctx context.Context, batches <-chan SampleBatch, out chan<- SampleOutcome)
}
