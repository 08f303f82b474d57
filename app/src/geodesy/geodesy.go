// Package geodesy converts between WGS-84 ECEF, geodetic and local ENU frames
// and derives line-of-sight geometry between a receiver and a satellite.
package geodesy

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/shared/constants"
)

// ErrDegenerateGeometry is returned for a zero-length vector, e.g. coincident
// receiver and satellite.
var ErrDegenerateGeometry = errors.New("geodesy: zero-length vector")

// ErrNonFiniteGeometry is returned when a vector length overflows.
var ErrNonFiniteGeometry = errors.New("geodesy: vector length is not finite")

// LLH is a geodetic position. Latitude and longitude are in radians.
type LLH struct {
	Lat    float64
	Lon    float64
	Height float64
}

func ToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func ToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func eccentricitySq() float64 {
	f := constants.EarthFlattening
	return f * (2 - f)
}

// ToLLH converts an ECEF position to geodetic coordinates (Bowring's method).
func ToLLH(p domain.Vec3) LLH {
	a := constants.EarthSemiMajorM
	if p.X == 0 && p.Y == 0 && p.Z == 0 {
		return LLH{Height: -a}
	}
	b := a * (1 - constants.EarthFlattening)
	e2 := eccentricitySq()

	h := a*a - b*b
	r := math.Hypot(p.X, p.Y)
	t := math.Atan2(p.Z*a, r*b)
	sint, cost := math.Sincos(t)

	lat := math.Atan2(p.Z+h/b*sint*sint*sint, r-h/a*cost*cost*cost)
	lon := math.Atan2(p.Y, p.X)
	sinLat := math.Sin(lat)
	n := a / math.Sqrt(1-e2*sinLat*sinLat)
	return LLH{Lat: lat, Lon: lon, Height: r/math.Cos(lat) - n}
}

// ToECEF converts geodetic coordinates to an ECEF position.
func ToECEF(l LLH) domain.Vec3 {
	a := constants.EarthSemiMajorM
	e2 := eccentricitySq()
	sinLat, cosLat := math.Sincos(l.Lat)
	sinLon, cosLon := math.Sincos(l.Lon)
	n := a / math.Sqrt(1-e2*sinLat*sinLat)
	return domain.Vec3{
		X: (n + l.Height) * cosLat * cosLon,
		Y: (n + l.Height) * cosLat * sinLon,
		Z: (n*(1-e2) + l.Height) * sinLat,
	}
}

// enuRotation returns the ECEF -> ENU rotation at the given geodetic position.
func enuRotation(l LLH) *mat.Dense {
	sinLon, cosLon := math.Sincos(l.Lon)
	sinLat, cosLat := math.Sincos(l.Lat)
	return mat.NewDense(3, 3, []float64{
		-sinLon, cosLon, 0,
		-cosLon * sinLat, -sinLon * sinLat, cosLat,
		cosLon * cosLat, sinLon * cosLat, sinLat,
	})
}

// ToENU expresses p relative to base in base's local east/north/up frame.
// The result is returned as Vec3{X: east, Y: north, Z: up}.
func ToENU(p, base domain.Vec3) domain.Vec3 {
	rel := mat.NewVecDense(3, p.Sub(base).Slice())
	var enu mat.VecDense
	enu.MulVec(enuRotation(ToLLH(base)), rel)
	return domain.Vec3{X: enu.AtVec(0), Y: enu.AtVec(1), Z: enu.AtVec(2)}
}

// Elevation returns the elevation angle in radians of sat seen from rcv.
func Elevation(rcv, sat domain.Vec3) float64 {
	enu := ToENU(sat, rcv)
	return math.Atan2(enu.Z, math.Hypot(enu.X, enu.Y))
}

// Unit returns v scaled to unit length together with its original length.
func Unit(v domain.Vec3) (domain.Vec3, float64, error) {
	d := v.Slice()
	length := floats.Norm(d, 2)
	if length == 0 {
		return domain.Vec3{}, 0, ErrDegenerateGeometry
	}
	if math.IsInf(length, 0) || math.IsNaN(length) {
		return domain.Vec3{}, 0, ErrNonFiniteGeometry
	}
	floats.Scale(1/length, d)
	return domain.Vec3{X: d[0], Y: d[1], Z: d[2]}, length, nil
}

// NearSurface reports whether p lies within tolM metres of the ellipsoid.
func NearSurface(p domain.Vec3, tolM float64) bool {
	return math.Abs(ToLLH(p).Height) <= tolM
}
