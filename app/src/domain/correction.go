package domain

// CorrectionResult is derived entirely from a MeasurementRequest.
type CorrectionResult struct {
	// Estimate term.
	PsiSurface     float64
	DeltaPhiOverC2 float64
	EstimateRangeM float64

	// Refractivity term.
	ZenithHydrostaticM float64
	ZenithWetM         float64
	ZenithDelayM       float64
	MappingFactor      float64
	RefractivityDryN   float64
	RefractivityWetN   float64
	RefractivityDelayM float64

	// Combined corrections. TimingCorrectionS is always RangeCorrectionM / C.
	RangeCorrectionM  float64
	TimingCorrectionS float64
	CorrectedRangeM   float64

	// Set only when the request carried receiver and satellite positions.
	LOSUnit          *Vec3
	CorrectionVector *Vec3

	TroposphereModel string
	MappingFunction  string
	QualityFlag      string
}

// TimingBiasNS returns the timing correction in nanoseconds.
func (r CorrectionResult) TimingBiasNS() float64 {
	return r.TimingCorrectionS * 1e9
}
