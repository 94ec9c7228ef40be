package orbit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/duncaneddy/SATPLAN/core"
	"github.com/duncaneddy/SATPLAN/model"
)

const (
	keplerTolerance = 1e-12
	keplerMaxIter   = 50
)

// EccentricAnomaly solves Kepler's equation M = E - e sin E for E (radians)
// by Newton iteration.
func EccentricAnomaly(meanAnomaly, ecc float64) (float64, error) {
	if ecc < 0 || ecc >= 1 {
		return 0, ErrEccentricity
	}
	m := math.Mod(meanAnomaly, 2*math.Pi)
	e := m
	if ecc > 0.8 {
		e = math.Pi
	}
	for i := 0; i < keplerMaxIter; i++ {
		f := e - ecc*math.Sin(e) - m
		step := f / (1 - ecc*math.Cos(e))
		e -= step
		if math.Abs(step) < keplerTolerance {
			return e, nil
		}
	}
	return 0, fmt.Errorf("kepler solve did not converge for M=%g e=%g", meanAnomaly, ecc)
}

// StateFromElements converts osculating elements to an inertial position
// (metres) and velocity (m/s) under two-body motion.
func StateFromElements(el model.OrbitalElements) (core.Vec3, core.Vec3, error) {
	if el.SemiMajorAxis <= 0 {
		return core.Vec3{}, core.Vec3{}, ErrSemiMajorAxis
	}
	E, err := EccentricAnomaly(el.MeanAnomaly*deg2rad, el.Eccentricity)
	if err != nil {
		return core.Vec3{}, core.Vec3{}, err
	}

	a, e := el.SemiMajorAxis, el.Eccentricity
	sinE, cosE := math.Sincos(E)
	root := math.Sqrt(1 - e*e)
	r := a * (1 - e*cosE)
	vScale := math.Sqrt(GMEarth*a) / r

	posPQW := mat.NewVecDense(3, []float64{a * (cosE - e), a * root * sinE, 0})
	velPQW := mat.NewVecDense(3, []float64{-vScale * sinE, vScale * root * cosE, 0})

	rot := perifocalToInertial(el.RAAN*deg2rad, el.Inclination*deg2rad, el.ArgOfPerigee*deg2rad)
	var pos, vel mat.VecDense
	pos.MulVec(rot, posPQW)
	vel.MulVec(rot, velPQW)

	return vecFrom(&pos), vecFrom(&vel), nil
}

// perifocalToInertial builds R3(-Ω) R1(-i) R3(-ω).
func perifocalToInertial(raan, inc, argp float64) *mat.Dense {
	sO, cO := math.Sincos(raan)
	si, ci := math.Sincos(inc)
	sw, cw := math.Sincos(argp)
	return mat.NewDense(3, 3, []float64{
		cO*cw - sO*sw*ci, -cO*sw - sO*cw*ci, sO * si,
		sO*cw + cO*sw*ci, -sO*sw + cO*cw*ci, -cO * si,
		sw * si, cw * si, ci,
	})
}

func vecFrom(v *mat.VecDense) core.Vec3 {
	return core.Vec3{X: v.AtVec(0), Y: v.AtVec(1), Z: v.AtVec(2)}
}
