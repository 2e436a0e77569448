package common

import "math"

const (
	feetPerMeter   = 3.28084
	mphPerMeterSec = 2.236936
	roundingFactor = 100.0
)

// MetersToFeet converts a length in meters to feet.
func MetersToFeet(m float64) float64 {
	return m * feetPerMeter
}

// MetersPerSecondToMph converts a speed in m/s to mph.
func MetersPerSecondToMph(ms float64) float64 {
	return ms * mphPerMeterSec
}

// Round2 rounds to two decimals, matching the precision providers report.
func Round2(v float64) float64 {
	return math.Round(v*roundingFactor) / roundingFactor
}

// FiniteOrZero replaces NaN and infinities with 0.
func FiniteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
