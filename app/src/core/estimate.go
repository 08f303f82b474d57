package core

import "dfd-gps-service/app/src/shared/constants"

// Estimate is the gravitational-potential term of the correction.
type Estimate struct {
	// DeltaPhiOverC2 is g0*h/c^2, the fractional clock-rate offset at height h
	// relative to sea level.
	DeltaPhiOverC2 float64
	// Psi is -2*DeltaPhiOverC2.
	Psi float64
	// RangeM is the offset accumulated over the signal flight time, in metres.
	RangeM float64
}

// PotentialEstimate evaluates the estimate term for a receiver height and range.
func PotentialEstimate(heightM, rangeM float64) Estimate {
	dphi := constants.StandardGravity * heightM / constants.SpeedOfLightSq
	return Estimate{
		DeltaPhiOverC2: dphi,
		Psi:            -2.0 * dphi,
		RangeM:         dphi * rangeM,
	}
}
