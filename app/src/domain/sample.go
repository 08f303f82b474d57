package domain

// Sample is one synthetic measurement used by the benchmark.
type Sample struct {
	Index      int
	Request    MeasurementRequest
	TrueRangeM float64
	// NoiseM is the receiver noise added on top of the modelled bias.
	NoiseM float64
}

// SampleBatch groups samples handed to a single worker.
type SampleBatch struct {
	ID      string
	Samples []Sample
}

// SampleOutcome is the result of running a sample through the engine.
type SampleOutcome struct {
	Sample     Sample
	Result     CorrectionResult
	MeasuredM  float64
	CorrectedM float64
	Err        error
}

// ErrMeasured returns the uncorrected range error.
func (o SampleOutcome) ErrMeasured() float64 {
	return o.MeasuredM - o.Sample.TrueRangeM
}

// ErrCorrected returns the range error left after correction.
func (o SampleOutcome) ErrCorrected() float64 {
	return o.CorrectedM - o.Sample.TrueRangeM
}
