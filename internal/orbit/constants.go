// Package orbit provides the orbital-mechanics helpers the dataset
// generator depends on: Earth constants, mean motion, sun-synchronous
// inclination, two-line element encoding and Cartesian state conversion.
package orbit

import (
	"math"

	"github.com/duncaneddy/SATPLAN/core"
)

const (
	// EarthRadius is the equatorial radius in metres.
	EarthRadius = core.EarthRadius
	// GMEarth is Earth's gravitational parameter in m^3/s^2.
	GMEarth = 3.986004415e14
	// J2Earth is Earth's second zonal harmonic.
	J2Earth = 0.0010826358191967
	// SecondsPerDay is the length of a solar day.
	SecondsPerDay = 86400.0
	// TropicalYearDays is the length of the tropical year in days.
	TropicalYearDays = 365.2421897
)

// SunSyncRate is the nodal precession rate (rad/s) matching Earth's mean
// motion around the Sun.
var SunSyncRate = 2 * math.Pi / TropicalYearDays / SecondsPerDay

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)
