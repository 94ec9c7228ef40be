package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/duncaneddy/SATPLAN/core"
	"github.com/duncaneddy/SATPLAN/internal/logging"
	"github.com/duncaneddy/SATPLAN/internal/orbit"
	"github.com/duncaneddy/SATPLAN/model"
)

// ErrMissingWalkerConfig marks a size without a registered Walker code.
// It is a soft failure: callers skip the size and carry on.
var ErrMissingWalkerConfig = errors.New("no walker configuration for constellation size")

// Mechanics is the orbital-mechanics collaborator the assembler relies on.
// orbit.Toolkit satisfies it.
type Mechanics interface {
	EarthRadius() float64
	MeanMotion(sma float64) float64
	SunSynchronousInclination(sma, ecc float64) (float64, error)
	EncodeTLE(epoch time.Time, el orbit.TLEElements, catalogID int) (string, string, error)
}

// TLEVerifier checks an encoded element set end to end.
type TLEVerifier interface {
	VerifyTLE(line1, line2 string, epoch time.Time) (core.Vec3, error)
}

// Assembler turns (family, size) pairs into constellation records.
type Assembler struct {
	cfg      Config
	mech     Mechanics
	verifier TLEVerifier
	log      logging.Logger

	mu           sync.Mutex
	inclinations map[string]float64
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the assembler's logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.log = l
		}
	}
}

// WithVerifier propagates every encoded element set through v before it
// is accepted.
func WithVerifier(v TLEVerifier) Option {
	return func(a *Assembler) { a.verifier = v }
}

// NewAssembler builds an assembler over a private copy of cfg.
func NewAssembler(cfg Config, mech Mechanics, opts ...Option) (*Assembler, error) {
	if mech == nil {
		return nil, errors.New("dataset: nil mechanics")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Assembler{
		cfg:          cfg.Clone(),
		mech:         mech,
		log:          logging.Noop(),
		inclinations: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns a copy of the assembler's configuration.
func (a *Assembler) Config() Config {
	return a.cfg.Clone()
}

// SemiMajorAxis returns the shared shell radius in metres.
func (a *Assembler) SemiMajorAxis() float64 {
	return a.cfg.SemiMajorAxis(a.mech.EarthRadius())
}

// ResolveInclination returns the inclination for a family in degrees.
// Sun-synchronous families are computed once and cached.
func (a *Assembler) ResolveInclination(family model.InclinationFamily) (float64, error) {
	if !family.SunSynchronous {
		return family.Inclination, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if inc, ok := a.inclinations[family.Slug()]; ok {
		return inc, nil
	}
	inc, err := a.mech.SunSynchronousInclination(a.SemiMajorAxis(), a.cfg.Eccentricity)
	if err != nil {
		return 0, fmt.Errorf("sun-synchronous inclination for %s: %w", family.Name, err)
	}
	a.inclinations[family.Slug()] = inc
	return inc, nil
}

// Assemble builds the record for one family and size. It returns
// ErrMissingWalkerConfig when the size has no Walker code, a wrapped
// *core.ConfigurationError when the code cannot be laid out, and any
// collaborator failure unchanged in the chain. A record is only returned
// when every satellite was encoded.
func (a *Assembler) Assemble(ctx context.Context, family model.InclinationFamily, size int) (*model.ConstellationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	walker, ok := a.cfg.WalkerFor(size)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMissingWalkerConfig, size)
	}
	inclination, err := a.ResolveInclination(family)
	if err != nil {
		return nil, err
	}

	sma := a.SemiMajorAxis()
	slots, err := core.GenerateWalker(inclination, walker, core.Shell{
		SemiMajorAxis: sma,
		Eccentricity:  a.cfg.Eccentricity,
		ArgOfPerigee:  a.cfg.ArgOfPerigee,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble %s/%d: %w", family.Name, size, err)
	}

	meanMotion := a.mech.MeanMotion(sma)
	spacecraft := make([]model.SatelliteRecord, 0, len(slots))
	for _, slot := range slots {
		el := slot.Elements
		line1, line2, err := a.mech.EncodeTLE(a.cfg.Epoch, orbit.TLEElements{
			MeanMotion:   meanMotion,
			Eccentricity: el.Eccentricity,
			Inclination:  el.Inclination,
			RAAN:         el.RAAN,
			ArgOfPerigee: el.ArgOfPerigee,
			MeanAnomaly:  el.MeanAnomaly,
		}, slot.ID)
		if err != nil {
			return nil, fmt.Errorf("assemble %s/%d: encode satellite %d: %w", family.Name, size, slot.ID, err)
		}
		if a.verifier != nil {
			if _, err := a.verifier.VerifyTLE(line1, line2, a.cfg.Epoch); err != nil {
				return nil, fmt.Errorf("assemble %s/%d: verify satellite %d: %w", family.Name, size, slot.ID, err)
			}
		}

		spacecraft = append(spacecraft, model.SatelliteRecord{
			ID:             slot.ID,
			Name:           model.SatelliteName(slot.ID),
			TLELine1:       line1,
			TLELine2:       line2,
			SemiMajorAxis:  el.SemiMajorAxis,
			Eccentricity:   el.Eccentricity,
			InclinationDeg: el.Inclination,
			RAANDeg:        el.RAAN,
			ArgPerigeeDeg:  el.ArgOfPerigee,
			MeanAnomalyDeg: el.MeanAnomaly,
		})
	}

	a.log.Debug(ctx, "assembled constellation",
		logging.String("family", family.Name),
		logging.Int("size", size),
		logging.String("walker", walker.String()),
		logging.Float("inclination_deg", inclination),
	)

	return &model.ConstellationRecord{
		NumSatellites: size,
		NumPlanes:     walker.Planes,
		PlanePhasing:  walker.Phasing,
		WalkerConfig:  walker.Code(),
		Inclination:   family.Name,
		AltitudeKm:    a.cfg.AltitudeKm,
		Eccentricity:  a.cfg.Eccentricity,
		ArgPerigee:    a.cfg.ArgOfPerigee,
		Spacecraft:    spacecraft,
	}, nil
}

// Result is the outcome of assembling one matrix cell.
type Result struct {
	Pair
	Record  *model.ConstellationRecord
	Err     error
	Skipped bool
}

// AssembleAll assembles every pair of the matrix sequentially, in order.
// Missing Walker codes are reported as skipped results, other failures in
// Err; neither stops the remaining pairs. The returned error is only set
// when ctx is cancelled, alongside the results gathered so far.
func (a *Assembler) AssembleAll(ctx context.Context) ([]Result, error) {
	pairs := a.cfg.Pairs()
	results := make([]Result, 0, len(pairs))
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		rec, err := a.Assemble(ctx, p.Family, p.Size)
		results = append(results, Result{
			Pair:    p,
			Record:  rec,
			Err:     err,
			Skipped: errors.Is(err, ErrMissingWalkerConfig),
		})
	}
	return results, nil
}
