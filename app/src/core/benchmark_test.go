package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"dfd-gps-service/app/src/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchmarkRunImprovesRMSE(t *testing.T) {
	t.Log("Шаг 1: запускаем эталонный сценарий")
	bench, err := NewBenchmark(DefaultScenario(), &stubLogger{})
	require.NoError(t, err)

	result, err := bench.Run(context.Background())
	require.NoError(t, err)

	t.Log("Шаг 2: проверяем упорядоченность и статистику")
	require.Len(t, result.Outcomes, 500)
	for i, o := range result.Outcomes {
		assert.Equal(t, i, o.Sample.Index)
	}

	s := result.Summary
	assert.Equal(t, 500, s.Samples)
	assert.Zero(t, s.Rejected)
	assert.Equal(t, uint64(42), s.Seed)
	assert.LessOrEqual(t, s.RMSECorrectedM, s.RMSENaiveM)
	assert.Greater(t, s.ImprovementPct, 50.0)
	assert.InDelta(t, 0.5, s.RMSECorrectedM, 0.1)
	assert.InDelta(t, 0, s.Corrected.Mean, 0.1)
	assert.InDelta(t, s.MeanRangeBiasM, s.Naive.Mean, 0.1)
	assert.Greater(t, s.MeanRangeBiasM, 2.3)
}

func TestBenchmarkRunIsDeterministic(t *testing.T) {
	scenario := smallScenario(40, 7)
	run := func() BenchmarkSummary {
		bench, err := NewBenchmark(scenario, nil)
		require.NoError(t, err)
		result, err := bench.Run(context.Background())
		require.NoError(t, err)
		s := result.Summary
		s.Elapsed = ""
		return s
	}

	assert.Equal(t, run(), run())
}

func TestBenchmarkRunHonoursCancellation(t *testing.T) {
	bench, err := NewBenchmark(smallScenario(10_000, 10), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := bench.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestNewBenchmarkRejectsInvalidScenario(t *testing.T) {
	scenario := DefaultScenario()
	scenario.Samples = 0

	_, err := NewBenchmark(scenario, nil)

	assert.ErrorContains(t, err, "samples")
}

func TestSummarizeSkipsRejectedOutcomes(t *testing.T) {
	outcomes := []domain.SampleOutcome{
		{Sample: domain.Sample{TrueRangeM: 100}, MeasuredM: 103, CorrectedM: 101, Result: domain.CorrectionResult{RangeCorrectionM: 2}},
		{Sample: domain.Sample{TrueRangeM: 100}, MeasuredM: 101, CorrectedM: 99, Result: domain.CorrectionResult{RangeCorrectionM: 2}},
		{Sample: domain.Sample{TrueRangeM: 100}, MeasuredM: 500, CorrectedM: 500, Err: errors.New("bad")},
	}

	s, err := Summarize(outcomes)

	require.NoError(t, err)
	assert.Equal(t, 3, s.Samples)
	assert.Equal(t, 1, s.Rejected)
	assert.InDelta(t, 2, s.Naive.Mean, 1e-12)
	assert.InDelta(t, 2, s.Naive.Median, 1e-12)
	assert.InDelta(t, math.Sqrt(5), s.RMSENaiveM, 1e-12)
	assert.InDelta(t, 0, s.Corrected.Mean, 1e-12)
	assert.InDelta(t, 1, s.RMSECorrectedM, 1e-12)
	assert.InDelta(t, (math.Sqrt(5)-1)/math.Sqrt(5)*100, s.ImprovementPct, 1e-9)
	assert.InDelta(t, 2, s.MeanRangeBiasM, 1e-12)
}

func TestSummarizeWithoutAcceptedSamples(t *testing.T) {
	_, err := Summarize([]domain.SampleOutcome{{Err: errors.New("bad")}})
	assert.ErrorIs(t, err, ErrNoAcceptedSamples)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))

	x := []float64{3, 1, 2}
	median(x)
	assert.Equal(t, []float64{3, 1, 2}, x)
}

func TestBenchmarkResultAccepted(t *testing.T) {
	r := &BenchmarkResult{Outcomes: []domain.SampleOutcome{{}, {Err: errors.New("bad")}, {}}}
	assert.Len(t, r.Accepted(), 2)
}
