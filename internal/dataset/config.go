// Package dataset assembles Walker Delta constellations into benchmark
// records and writes them to disk.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/duncaneddy/SATPLAN/model"
)

// DefaultEpoch is the reference epoch of every generated element set.
var DefaultEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// ErrInvalidConfig wraps every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid dataset config")

// Config is the benchmark matrix: which inclination families and sizes to
// generate, how each size maps to a Walker code, and the shared shell.
// Assemblers take a private copy, so later changes to a Config value do not
// affect them.
type Config struct {
	Families []model.InclinationFamily
	Sizes    []int
	Walker   map[int]model.WalkerConfig

	AltitudeKm   float64
	Eccentricity float64
	ArgOfPerigee float64 // degrees
	Epoch        time.Time
}

// DefaultConfig returns the standard benchmark matrix.
func DefaultConfig() Config {
	return Config{
		Families: []model.InclinationFamily{
			{Name: "MIO", Inclination: 53.0},
			{Name: "SSO", SunSynchronous: true},
		},
		Sizes: []int{1, 2, 5, 10, 20, 50, 100},
		Walker: map[int]model.WalkerConfig{
			1:   {Total: 1, Planes: 1, Phasing: 0},
			2:   {Total: 2, Planes: 2, Phasing: 0},
			5:   {Total: 5, Planes: 5, Phasing: 0},
			10:  {Total: 10, Planes: 5, Phasing: 0},
			20:  {Total: 20, Planes: 5, Phasing: 0},
			50:  {Total: 50, Planes: 10, Phasing: 0},
			100: {Total: 100, Planes: 25, Phasing: 0},
		},
		AltitudeKm:   550.0,
		Eccentricity: 0.001,
		ArgOfPerigee: 0.0,
		Epoch:        DefaultEpoch,
	}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	out.Families = append([]model.InclinationFamily(nil), c.Families...)
	out.Sizes = append([]int(nil), c.Sizes...)
	out.Walker = make(map[int]model.WalkerConfig, len(c.Walker))
	for k, v := range c.Walker {
		out.Walker[k] = v
	}
	return out
}

// WalkerFor returns the Walker code registered for a constellation size.
func (c Config) WalkerFor(size int) (model.WalkerConfig, bool) {
	w, ok := c.Walker[size]
	return w, ok
}

// SemiMajorAxis returns the shell radius in metres for the given Earth radius.
func (c Config) SemiMajorAxis(earthRadius float64) float64 {
	return c.AltitudeKm*1e3 + earthRadius
}

// Pair is one (family, size) cell of the matrix.
type Pair struct {
	Family model.InclinationFamily
	Size   int
}

// Pairs enumerates the matrix family-major, in configuration order.
func (c Config) Pairs() []Pair {
	pairs := make([]Pair, 0, len(c.Families)*len(c.Sizes))
	for _, f := range c.Families {
		for _, s := range c.Sizes {
			pairs = append(pairs, Pair{Family: f, Size: s})
		}
	}
	return pairs
}

// WalkerSizes returns the sizes with a registered Walker code, ascending.
func (c Config) WalkerSizes() []int {
	sizes := make([]int, 0, len(c.Walker))
	for s := range c.Walker {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	return sizes
}

// Validate checks the matrix is usable. Walker codes themselves are not
// checked here; the lattice generator reports those per size.
func (c Config) Validate() error {
	if len(c.Families) == 0 {
		return fmt.Errorf("%w: no inclination families", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Families))
	for _, f := range c.Families {
		if f.Name == "" {
			return fmt.Errorf("%w: inclination family with empty name", ErrInvalidConfig)
		}
		if seen[f.Slug()] {
			return fmt.Errorf("%w: duplicate inclination family %q", ErrInvalidConfig, f.Name)
		}
		seen[f.Slug()] = true
	}
	if len(c.Sizes) == 0 {
		return fmt.Errorf("%w: no constellation sizes", ErrInvalidConfig)
	}
	for _, s := range c.Sizes {
		if s < 1 {
			return fmt.Errorf("%w: constellation size %d", ErrInvalidConfig, s)
		}
	}
	if c.AltitudeKm <= 0 {
		return fmt.Errorf("%w: altitude %g km", ErrInvalidConfig, c.AltitudeKm)
	}
	if c.Eccentricity < 0 || c.Eccentricity >= 1 {
		return fmt.Errorf("%w: eccentricity %g", ErrInvalidConfig, c.Eccentricity)
	}
	if c.Epoch.IsZero() {
		return fmt.Errorf("%w: missing epoch", ErrInvalidConfig)
	}
	return nil
}
