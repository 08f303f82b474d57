package domain

import "math"

// Vec3 is a Cartesian position or direction in metres.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Slice returns the components as a 3-element slice.
func (v Vec3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// IsFinite reports whether all components are finite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// MeasurementRequest carries a single range/timing measurement together with
// the geometry and ambient atmosphere it was taken in. Defaults (humidity,
// elevation, derived range) are resolved before the request reaches the engine.
type MeasurementRequest struct {
	// Receiver and Satellite are optional; when both are set the correction
	// is projected onto the line of sight between them.
	Receiver  *Vec3
	Satellite *Vec3

	LatDeg  float64
	LonDeg  float64
	HeightM float64

	PressurePa float64
	TempK      float64
	RHFrac     float64
	ElevDeg    float64

	RangeM float64
}

// HasGeometry reports whether both positions are present.
func (r MeasurementRequest) HasGeometry() bool {
	return r.Receiver != nil && r.Satellite != nil
}

// LineOfSight returns the vector from receiver to satellite.
func (r MeasurementRequest) LineOfSight() (Vec3, bool) {
	if !r.HasGeometry() {
		return Vec3{}, false
	}
	return r.Satellite.Sub(*r.Receiver), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
