package orbit

import (
	"time"

	"github.com/duncaneddy/SATPLAN/core"
	"github.com/duncaneddy/SATPLAN/model"
)

// Toolkit bundles the package functions behind a value that can be
// injected wherever orbital mechanics is needed.
type Toolkit struct{}

// NewToolkit returns the default orbital-mechanics toolkit.
func NewToolkit() Toolkit { return Toolkit{} }

// EarthRadius returns the equatorial radius in metres.
func (Toolkit) EarthRadius() float64 { return EarthRadius }

// MeanMotion returns revolutions per day for a semi-major axis in metres.
func (Toolkit) MeanMotion(sma float64) float64 { return MeanMotion(sma) }

// SunSynchronousInclination returns the sun-synchronous inclination in degrees.
func (Toolkit) SunSynchronousInclination(sma, ecc float64) (float64, error) {
	return SunSynchronousInclination(sma, ecc)
}

// EncodeTLE renders a two-line element set.
func (Toolkit) EncodeTLE(epoch time.Time, el TLEElements, catalogID int) (string, string, error) {
	return EncodeTLE(epoch, el, catalogID)
}

// StateVector converts elements to an inertial position and velocity.
func (Toolkit) StateVector(el model.OrbitalElements) (core.Vec3, core.Vec3, error) {
	return StateFromElements(el)
}

// VerifyTLE propagates an element set to epoch and sanity-checks it.
func (Toolkit) VerifyTLE(line1, line2 string, epoch time.Time) (core.Vec3, error) {
	return VerifyTLE(line1, line2, epoch)
}
