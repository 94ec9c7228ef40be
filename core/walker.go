package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/duncaneddy/SATPLAN/model"
)

var (
	// ErrNotDivisible indicates the satellite count does not split evenly across planes.
	ErrNotDivisible = errors.New("total satellite count not divisible by plane count")
	// ErrInvalidLattice indicates a non-positive satellite or plane count.
	ErrInvalidLattice = errors.New("invalid lattice dimensions")
)

// ConfigurationError reports a Walker configuration that cannot be laid out.
type ConfigurationError struct {
	Total   int
	Planes  int
	Phasing int
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("walker %d/%d/%d: %v", e.Total, e.Planes, e.Phasing, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Shell carries the elements every satellite of a run shares besides the
// inclination.
type Shell struct {
	SemiMajorAxis float64 // metres
	Eccentricity  float64
	ArgOfPerigee  float64 // degrees
}

// GenerateLattice lays out totalSats satellites over numPlanes equally
// spaced planes using the Walker Delta phasing factor. Slots are returned in
// plane-major order with IDs 1..totalSats.
//
// Only the plane divisibility is validated; inclination and phasing are
// taken as given.
func GenerateLattice(inclinationDeg float64, totalSats, numPlanes, phasing int, shell Shell) ([]model.Slot, error) {
	if totalSats < 1 || numPlanes < 1 {
		return nil, &ConfigurationError{Total: totalSats, Planes: numPlanes, Phasing: phasing, Err: ErrInvalidLattice}
	}
	if totalSats%numPlanes != 0 {
		return nil, &ConfigurationError{Total: totalSats, Planes: numPlanes, Phasing: phasing, Err: ErrNotDivisible}
	}

	satsPerPlane := totalSats / numPlanes
	raanSpacing := 360.0 / float64(numPlanes)
	maSpacing := 360.0 / float64(satsPerPlane)
	phaseOffset := float64(phasing) * 360.0 / float64(totalSats)

	slots := make([]model.Slot, 0, totalSats)
	id := 1
	for plane := 0; plane < numPlanes; plane++ {
		raan := float64(plane) * raanSpacing
		baseOffset := float64(plane) * phaseOffset

		for idx := 0; idx < satsPerPlane; idx++ {
			slots = append(slots, model.Slot{
				ID:    id,
				Plane: plane,
				Index: idx,
				Elements: model.OrbitalElements{
					SemiMajorAxis: shell.SemiMajorAxis,
					Eccentricity:  shell.Eccentricity,
					Inclination:   inclinationDeg,
					RAAN:          raan,
					ArgOfPerigee:  shell.ArgOfPerigee,
					MeanAnomaly:   WrapDegrees(float64(idx)*maSpacing + baseOffset),
				},
			})
			id++
		}
	}
	return slots, nil
}

// GenerateWalker is GenerateLattice driven by a Walker code.
func GenerateWalker(inclinationDeg float64, cfg model.WalkerConfig, shell Shell) ([]model.Slot, error) {
	return GenerateLattice(inclinationDeg, cfg.Total, cfg.Planes, cfg.Phasing, shell)
}

// WrapDegrees reduces an angle into [0, 360).
func WrapDegrees(deg float64) float64 {
	w := math.Mod(deg, 360.0)
	if w < 0 {
		w += 360.0
	}
	// tiny negative remainders round up to exactly 360
	if w >= 360.0 {
		w = 0
	}
	return w
}
