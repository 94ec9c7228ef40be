package orbit

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSemiMajorAxis indicates a non-positive semi-major axis.
	ErrSemiMajorAxis = errors.New("semi-major axis must be positive")
	// ErrEccentricity indicates an eccentricity outside [0, 1).
	ErrEccentricity = errors.New("eccentricity must be in [0, 1)")
	// ErrNoSunSync indicates no inclination yields a sun-synchronous orbit.
	ErrNoSunSync = errors.New("no sun-synchronous inclination for orbit")
)

// MeanMotion returns the two-body mean motion of an orbit with semi-major
// axis sma (metres) in revolutions per day.
func MeanMotion(sma float64) float64 {
	return MeanMotionRadians(sma) * SecondsPerDay / (2 * math.Pi)
}

// MeanMotionDegrees returns the mean motion in degrees per second.
func MeanMotionDegrees(sma float64) float64 {
	return MeanMotionRadians(sma) * rad2deg
}

// MeanMotionRadians returns the mean motion in radians per second.
func MeanMotionRadians(sma float64) float64 {
	return math.Sqrt(GMEarth / (sma * sma * sma))
}

// SunSynchronousInclination returns the inclination in degrees at which
// J2 nodal precession matches the Sun's apparent motion.
func SunSynchronousInclination(sma, ecc float64) (float64, error) {
	if sma <= 0 || math.IsNaN(sma) {
		return 0, ErrSemiMajorAxis
	}
	if ecc < 0 || ecc >= 1 {
		return 0, ErrEccentricity
	}
	p := 1 - ecc*ecc
	cosI := -2 * math.Pow(sma, 3.5) * SunSyncRate * p * p /
		(3 * EarthRadius * EarthRadius * J2Earth * math.Sqrt(GMEarth))
	if cosI < -1 || cosI > 1 {
		return 0, fmt.Errorf("%w: a=%.0f m e=%g (cos i = %.4f)", ErrNoSunSync, sma, ecc, cosI)
	}
	return math.Acos(cosI) * rad2deg, nil
}
