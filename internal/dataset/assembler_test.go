package dataset

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/duncaneddy/SATPLAN/core"
	"github.com/duncaneddy/SATPLAN/internal/orbit"
	"github.com/duncaneddy/SATPLAN/model"
)

var (
	mio = model.InclinationFamily{Name: "MIO", Inclination: 53.0}
	sso = model.InclinationFamily{Name: "SSO", SunSynchronous: true}
)

// countingMechanics wraps the real toolkit and can fail selected calls.
type countingMechanics struct {
	orbit.Toolkit

	mu        sync.Mutex
	ssoCalls  int
	encodes   int
	failAfter int // EncodeTLE fails once this many calls succeeded; 0 disables
}

func (m *countingMechanics) SunSynchronousInclination(sma, ecc float64) (float64, error) {
	m.mu.Lock()
	m.ssoCalls++
	m.mu.Unlock()
	return m.Toolkit.SunSynchronousInclination(sma, ecc)
}

var errEncode = errors.New("encode failed")

func (m *countingMechanics) EncodeTLE(epoch time.Time, el orbit.TLEElements, id int) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter > 0 && m.encodes >= m.failAfter {
		return "", "", errEncode
	}
	m.encodes++
	return m.Toolkit.EncodeTLE(epoch, el, id)
}

type rejectingVerifier struct{}

var errVerify = errors.New("propagation rejected")

func (rejectingVerifier) VerifyTLE(string, string, time.Time) (core.Vec3, error) {
	return core.Vec3{}, errVerify
}

func newTestAssembler(t *testing.T, cfg Config, mech Mechanics, opts ...Option) *Assembler {
	t.Helper()
	asm, err := NewAssembler(cfg, mech, opts...)
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	return asm
}

func TestAssembleMIO(t *testing.T) {
	asm := newTestAssembler(t, DefaultConfig(), orbit.NewToolkit(), WithVerifier(orbit.NewToolkit()))

	rec, err := asm.Assemble(context.Background(), mio, 10)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if rec.NumSatellites != 10 || rec.NumPlanes != 5 || rec.PlanePhasing != 0 {
		t.Fatalf("unexpected header: %+v", rec)
	}
	if rec.WalkerConfig != [3]int{10, 5, 0} {
		t.Fatalf("walker_config = %v", rec.WalkerConfig)
	}
	if rec.Inclination != "MIO" || rec.AltitudeKm != 550 || rec.Eccentricity != 0.001 || rec.ArgPerigee != 0 {
		t.Fatalf("unexpected shell fields: %+v", rec)
	}
	if len(rec.Spacecraft) != 10 {
		t.Fatalf("got %d spacecraft, want 10", len(rec.Spacecraft))
	}

	wantSMA := 550e3 + orbit.EarthRadius
	for i, sc := range rec.Spacecraft {
		if sc.ID != i+1 {
			t.Fatalf("spacecraft %d has id %d", i, sc.ID)
		}
		if sc.Name != model.SatelliteName(i+1) {
			t.Fatalf("spacecraft %d name = %q", i, sc.Name)
		}
		if len(sc.TLELine1) != orbit.TLELineLength || len(sc.TLELine2) != orbit.TLELineLength {
			t.Fatalf("spacecraft %d TLE lengths %d/%d", sc.ID, len(sc.TLELine1), len(sc.TLELine2))
		}
		if err := orbit.ValidateTLE(sc.TLELine1, sc.TLELine2); err != nil {
			t.Fatalf("spacecraft %d TLE invalid: %v", sc.ID, err)
		}
		if sc.InclinationDeg != 53.0 {
			t.Fatalf("spacecraft %d inclination = %v", sc.ID, sc.InclinationDeg)
		}
		if !scalar.EqualWithinAbs(sc.SemiMajorAxis, wantSMA, 1e-6) {
			t.Fatalf("spacecraft %d sma = %v, want %v", sc.ID, sc.SemiMajorAxis, wantSMA)
		}
		wantRAAN := float64(i/2) * 72.0
		wantMA := float64(i%2) * 180.0
		if !scalar.EqualWithinAbs(sc.RAANDeg, wantRAAN, 1e-9) || !scalar.EqualWithinAbs(sc.MeanAnomalyDeg, wantMA, 1e-9) {
			t.Fatalf("spacecraft %d raan/ma = %v/%v, want %v/%v", sc.ID, sc.RAANDeg, sc.MeanAnomalyDeg, wantRAAN, wantMA)
		}
	}
}

func TestAssembleSSOResolvesOnce(t *testing.T) {
	mech := &countingMechanics{}
	asm := newTestAssembler(t, DefaultConfig(), mech)

	for _, size := range []int{1, 5, 20} {
		rec, err := asm.Assemble(context.Background(), sso, size)
		if err != nil {
			t.Fatalf("Assemble(%d): %v", size, err)
		}
		for _, sc := range rec.Spacecraft {
			if math.Abs(sc.InclinationDeg-97.59) > 0.05 {
				t.Fatalf("SSO inclination = %v, want ~97.59", sc.InclinationDeg)
			}
		}
	}
	if mech.ssoCalls != 1 {
		t.Fatalf("sun-synchronous inclination computed %d times, want 1", mech.ssoCalls)
	}

	inc, err := asm.ResolveInclination(mio)
	if err != nil || inc != 53.0 {
		t.Fatalf("ResolveInclination(MIO) = %v, %v", inc, err)
	}
}

func TestAssembleMissingWalkerConfig(t *testing.T) {
	asm := newTestAssembler(t, DefaultConfig(), orbit.NewToolkit())

	rec, err := asm.Assemble(context.Background(), mio, 7)
	if !errors.Is(err, ErrMissingWalkerConfig) {
		t.Fatalf("error = %v, want ErrMissingWalkerConfig", err)
	}
	if rec != nil {
		t.Fatalf("expected no record for a skipped size")
	}
}

func TestAssembleConfigurationError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Walker[10] = model.WalkerConfig{Total: 10, Planes: 3, Phasing: 0}
	asm := newTestAssembler(t, cfg, orbit.NewToolkit())

	rec, err := asm.Assemble(context.Background(), mio, 10)
	if rec != nil {
		t.Fatalf("expected no record on configuration error")
	}
	var cfgErr *core.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *core.ConfigurationError", err)
	}
	if cfgErr.Total != 10 || cfgErr.Planes != 3 || !errors.Is(err, core.ErrNotDivisible) {
		t.Fatalf("unexpected configuration error: %+v", cfgErr)
	}
}

func TestAssembleNoPartialRecordOnEncodeFailure(t *testing.T) {
	mech := &countingMechanics{failAfter: 3}
	asm := newTestAssembler(t, DefaultConfig(), mech)

	rec, err := asm.Assemble(context.Background(), mio, 10)
	if !errors.Is(err, errEncode) {
		t.Fatalf("error = %v, want errEncode in chain", err)
	}
	if rec != nil {
		t.Fatalf("expected no partial record")
	}
}

func TestAssembleVerifierRejects(t *testing.T) {
	asm := newTestAssembler(t, DefaultConfig(), orbit.NewToolkit(), WithVerifier(rejectingVerifier{}))

	if _, err := asm.Assemble(context.Background(), mio, 1); !errors.Is(err, errVerify) {
		t.Fatalf("error = %v, want errVerify", err)
	}
}

func TestAssembleRejectsUnencodableInclination(t *testing.T) {
	asm := newTestAssembler(t, DefaultConfig(), orbit.NewToolkit(), WithVerifier(orbit.NewToolkit()))

	for _, inc := range []float64{-10, 200} {
		family := model.InclinationFamily{Name: "ODD", Inclination: inc}
		rec, err := asm.Assemble(context.Background(), family, 1)
		if !errors.Is(err, orbit.ErrInclination) {
			t.Fatalf("inclination %v: error = %v, want orbit.ErrInclination", inc, err)
		}
		if rec != nil {
			t.Fatalf("inclination %v: expected no record", inc)
		}
	}
}

func TestAssembleCancelledContext(t *testing.T) {
	asm := newTestAssembler(t, DefaultConfig(), orbit.NewToolkit())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := asm.Assemble(ctx, mio, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	results, err := asm.AssembleAll(ctx)
	if !errors.Is(err, context.Canceled) || len(results) != 0 {
		t.Fatalf("AssembleAll = %d results, %v", len(results), err)
	}
}

func TestAssembleAllMatrixOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{1, 7, 10}
	asm := newTestAssembler(t, cfg, orbit.NewToolkit())

	results, err := asm.AssembleAll(context.Background())
	if err != nil {
		t.Fatalf("AssembleAll: %v", err)
	}
	want := []struct {
		family  string
		size    int
		skipped bool
	}{
		{"MIO", 1, false}, {"MIO", 7, true}, {"MIO", 10, false},
		{"SSO", 1, false}, {"SSO", 7, true}, {"SSO", 10, false},
	}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, w := range want {
		r := results[i]
		if r.Family.Name != w.family || r.Size != w.size || r.Skipped != w.skipped {
			t.Fatalf("result %d = %s/%d skipped=%v, want %+v", i, r.Family.Name, r.Size, r.Skipped, w)
		}
		if !w.skipped && (r.Err != nil || r.Record == nil || r.Record.NumSatellites != w.size) {
			t.Fatalf("result %d: record=%v err=%v", i, r.Record, r.Err)
		}
	}
}

func TestNewAssemblerCopiesConfig(t *testing.T) {
	cfg := DefaultConfig()
	asm := newTestAssembler(t, cfg, orbit.NewToolkit())
	cfg.Walker[10] = model.WalkerConfig{Total: 10, Planes: 3}
	cfg.Families[0].Inclination = 10

	rec, err := asm.Assemble(context.Background(), mio, 10)
	if err != nil {
		t.Fatalf("Assemble after caller mutation: %v", err)
	}
	if rec.NumPlanes != 5 {
		t.Fatalf("assembler picked up caller mutation: %+v", rec.WalkerConfig)
	}
	if got := asm.Config().Families[0].Inclination; got != 53.0 {
		t.Fatalf("Config() inclination = %v", got)
	}
}

func TestNewAssemblerRejects(t *testing.T) {
	if _, err := NewAssembler(DefaultConfig(), nil); err == nil {
		t.Fatalf("expected error for nil mechanics")
	}
	cfg := DefaultConfig()
	cfg.Families = nil
	if _, err := NewAssembler(cfg, orbit.NewToolkit()); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}
