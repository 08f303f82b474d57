package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dfd-gps-service/app/src/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type stubLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *stubLogger) Printf(_ context.Context, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf(format, v...))
}

func (l *stubLogger) Println(_ context.Context, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintln(v...))
}

func (l *stubLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func smallScenario(samples, batch int) Scenario {
	s := DefaultScenario()
	s.Samples = samples
	s.BatchSize = batch
	return s
}

func collectBatches(t *testing.T, gen *Generator) []domain.SampleBatch {
	t.Helper()
	out := make(chan domain.SampleBatch)
	go gen.Run(context.Background(), out)

	var batches []domain.SampleBatch
	timeout := time.After(time.Second)
	for {
		select {
		case b, ok := <-out:
			if !ok {
				return batches
			}
			batches = append(batches, b)
		case <-timeout:
			t.Fatal("генератор не закрыл канал вовремя")
		}
	}
}

// Тесты
func TestNewGeneratorAppliesDefaults(t *testing.T) {
	logger := &stubLogger{}
	gen := NewGenerator(GeneratorConfig{}, logger)

	assert.Equal(t, 1, gen.cfg.Scenario.BatchSize)
	assert.Zero(t, gen.cfg.Interval)
	assert.NotNil(t, gen.cfg.RandSource)
	assert.Equal(t, logger, gen.logger)
}

func TestNewGeneratorUsesProvidedConfig(t *testing.T) {
	source := rand.NewSource(1)
	cfg := GeneratorConfig{
		Scenario:   smallScenario(10, 3),
		Interval:   5 * time.Millisecond,
		RandSource: source,
	}

	gen := NewGenerator(cfg, nil)

	assert.Equal(t, cfg.Interval, gen.cfg.Interval)
	assert.Equal(t, 3, gen.cfg.Scenario.BatchSize)
	assert.Equal(t, source, gen.cfg.RandSource)
}

func TestGeneratorRunEmitsAllSamplesInBatches(t *testing.T) {
	t.Log("Шаг 1: генерируем 23 выборки пачками по 5")
	gen := NewGenerator(GeneratorConfig{Scenario: smallScenario(23, 5)}, &stubLogger{})

	batches := collectBatches(t, gen)

	t.Log("Шаг 2: проверяем размеры пачек и сквозную нумерацию")
	require.Len(t, batches, 5)
	assert.Len(t, batches[4].Samples, 3)

	next := 0
	s := DefaultScenario()
	for _, b := range batches {
		assert.NotEmpty(t, b.ID)
		for _, sample := range b.Samples {
			assert.Equal(t, next, sample.Index)
			next++

			req := sample.Request
			assert.Equal(t, s.TrueRangeM, sample.TrueRangeM)
			assert.Equal(t, s.HeightM, req.HeightM)
			assert.GreaterOrEqual(t, req.RHFrac, s.RHMin)
			assert.LessOrEqual(t, req.RHFrac, s.RHMax)
			assert.GreaterOrEqual(t, req.ElevDeg, s.ElevMinDeg)
			assert.LessOrEqual(t, req.ElevDeg, s.ElevMaxDeg)
		}
	}
	assert.Equal(t, 23, next)
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	draw := func() []domain.Sample {
		var samples []domain.Sample
		for _, b := range collectBatches(t, NewGenerator(GeneratorConfig{Scenario: smallScenario(12, 4)}, nil)) {
			samples = append(samples, b.Samples...)
		}
		return samples
	}

	assert.Equal(t, draw(), draw())
}

func TestGeneratorStopsOnCancel(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{Scenario: smallScenario(1000, 1), Interval: time.Millisecond}, &stubLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan domain.SampleBatch)
	done := make(chan struct{})
	go func() {
		gen.Run(ctx, out)
		close(done)
	}()

	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("не получили пачку за отведённое время")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("генератор не остановился после отмены контекста")
	}
	_, ok := <-out
	assert.False(t, ok)
}

func TestGeneratorLog(t *testing.T) {
	logger := &stubLogger{}
	gen := NewGenerator(GeneratorConfig{}, logger)

	gen.log(context.Background(), "hello %s", "world")

	assert.Len(t, logger.messages(), 1)
	assert.Contains(t, logger.messages()[0], "hello world")
}

func TestGeneratorLogWithNilLogger(t *testing.T) {
	gen := &Generator{}
	assert.NotPanics(t, func() {
		gen.log(context.Background(), "ignored")
	})
}
