package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"dfd-gps-service/app/src/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(workers int, logger *stubLogger) *WorkerPool {
	return NewWorkerPool(workers, NewEngine(), logger)
}

func testBatch(id string, n int) domain.SampleBatch {
	samples := make([]domain.Sample, n)
	for i := range samples {
		req := validRequest()
		req.ElevDeg = 10 + float64(i)
		samples[i] = domain.Sample{Index: i, Request: req, TrueRangeM: req.RangeM, NoiseM: 0.25}
	}
	return domain.SampleBatch{ID: id, Samples: samples}
}

// ------------------
// Тесты
// ------------------

func TestNewWorkerPoolNormalizesWorkerCount(t *testing.T) {
	engine := NewEngine()
	pool := NewWorkerPool(-1, engine, &stubLogger{})

	assert.Equal(t, 0, pool.workerCount)
	assert.Equal(t, engine, pool.calc)
}

func TestWorkerPoolRunWithZeroWorkersDrainsChannel(t *testing.T) {
	pool := newTestPool(0, &stubLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan domain.SampleBatch, 2)
	batches <- testBatch("one", 1)
	batches <- testBatch("two", 1)
	close(batches)
	out := make(chan domain.SampleOutcome, 4)

	done := make(chan struct{})
	go func() {
		pool.Run(ctx, batches, out)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("worker pool did not finish")
	}

	assert.Empty(t, out)
}

func TestWorkerPoolRunCorrectsEverySample(t *testing.T) {
	pool := newTestPool(3, &stubLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan domain.SampleBatch)
	out := make(chan domain.SampleOutcome, 16)
	done := make(chan struct{})
	go func() {
		pool.Run(ctx, batches, out)
		close(done)
	}()

	batches <- testBatch("a", 4)
	batches <- testBatch("b", 4)
	close(batches)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker pool did not finish")
	}
	close(out)

	count := 0
	for o := range out {
		count++
		require.NoError(t, o.Err)
		assert.Greater(t, o.Result.RangeCorrectionM, 0.0)
		assert.InDelta(t, 0.25, o.ErrCorrected(), 1e-6)
		assert.InDelta(t, o.Result.RangeCorrectionM+0.25, o.ErrMeasured(), 1e-6)
	}
	assert.Equal(t, 8, count)
}

func TestCorrectSampleRecordsEngineError(t *testing.T) {
	expected := errors.New("rejected")
	pool := NewWorkerPool(1, &stubCalculator{err: expected}, nil)
	sample := testBatch("x", 1).Samples[0]

	outcome := pool.correctSample(sample)

	assert.ErrorIs(t, outcome.Err, expected)
	assert.Equal(t, sample.TrueRangeM+sample.NoiseM, outcome.MeasuredM)
	assert.Equal(t, outcome.MeasuredM, outcome.CorrectedM)
}

func TestProcessBatchStopsOnContextError(t *testing.T) {
	logger := &stubLogger{}
	pool := newTestPool(1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan domain.SampleOutcome, 4)
	ok := pool.processBatch(ctx, testBatch("batch", 3), out)

	assert.False(t, ok)
	assert.Empty(t, out)
	assert.NotEmpty(t, logger.messages())
}

func TestProcessBatchLogsRejectedSamples(t *testing.T) {
	logger := &stubLogger{}
	pool := newTestPool(1, logger)
	batch := testBatch("batch", 1)
	batch.Samples[0].Request.ElevDeg = 120

	out := make(chan domain.SampleOutcome, 1)
	require.True(t, pool.processBatch(context.Background(), batch, out))

	outcome := <-out
	assert.ErrorIs(t, outcome.Err, domain.ErrInvalidInput)
	assert.Contains(t, logger.messages()[0], "rejected")
}

func TestWorkerLoopHandlesClosedChannel(t *testing.T) {
	pool := newTestPool(1, &stubLogger{})

	batches := make(chan domain.SampleBatch)
	close(batches)

	pool.workerLoop(context.Background(), batches, make(chan domain.SampleOutcome))
}

func TestWorkerLoopLogsOnContextCancel(t *testing.T) {
	logger := &stubLogger{}
	pool := newTestPool(1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool.workerLoop(ctx, make(chan domain.SampleBatch), make(chan domain.SampleOutcome))

	assert.NotEmpty(t, logger.messages())
}

func TestDrainUntilClosed(t *testing.T) {
	pool := newTestPool(0, &stubLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan domain.SampleBatch, 2)
	batches <- domain.SampleBatch{ID: "a"}
	close(batches)

	pool.drainUntilClosed(ctx, batches)
}

func TestWorkerPoolLog(t *testing.T) {
	logger := &stubLogger{}
	pool := newTestPool(1, logger)

	pool.log(context.Background(), "message %d", 1)

	assert.Contains(t, logger.messages()[0], "message 1")
}

func TestWorkerPoolLogNilLogger(t *testing.T) {
	pool := &WorkerPool{}
	assert.NotPanics(t, func() {
		pool.log(context.Background(), "ignored")
	})
}
