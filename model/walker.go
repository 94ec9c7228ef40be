package model

import (
	"fmt"
	"strings"
)

// WalkerConfig is a Walker Delta code t/p/f.
type WalkerConfig struct {
	Total   int // t
	Planes  int // p
	Phasing int // f
}

// SatsPerPlane returns t/p. Callers are expected to have checked divisibility.
func (w WalkerConfig) SatsPerPlane() int {
	if w.Planes == 0 {
		return 0
	}
	return w.Total / w.Planes
}

// Code returns the (t, p, f) triple.
func (w WalkerConfig) Code() [3]int {
	return [3]int{w.Total, w.Planes, w.Phasing}
}

func (w WalkerConfig) String() string {
	return fmt.Sprintf("%d/%d/%d", w.Total, w.Planes, w.Phasing)
}

// InclinationFamily groups constellations sharing one inclination.
// Sun-synchronous families have their inclination computed from the
// altitude shell rather than taken from Inclination.
type InclinationFamily struct {
	Name           string
	Inclination    float64 // degrees
	SunSynchronous bool
}

// Slug is the lower-cased family name used in output paths.
func (f InclinationFamily) Slug() string {
	return strings.ToLower(f.Name)
}
