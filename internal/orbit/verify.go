package orbit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/duncaneddy/SATPLAN/core"
)

// Plausible geocentric radii for a propagated element set, metres.
const (
	minVerifiedRadius = 6200e3
	maxVerifiedRadius = 50000e3
)

// VerifyTLE checks an element set end to end: layout and checksums, then
// SGP4 initialisation and propagation to epoch. It returns the TEME position
// at epoch in metres.
func VerifyTLE(line1, line2 string, epoch time.Time) (core.Vec3, error) {
	if err := ValidateTLE(line1, line2); err != nil {
		return core.Vec3{}, err
	}
	// go-satellite aborts the process on unparsable numeric fields.
	if err := precheckFields(line1, line2); err != nil {
		return core.Vec3{}, err
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)

	epoch = epoch.UTC()
	year, month, day := epoch.Date()
	hour, min, sec := epoch.Clock()
	posTEME, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)

	const kmToM = 1000.0
	pos := core.Vec3{X: posTEME.X * kmToM, Y: posTEME.Y * kmToM, Z: posTEME.Z * kmToM}
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return core.Vec3{}, fmt.Errorf("sgp4 propagation for catalog %s produced NaN/Inf", strings.TrimSpace(line1[2:7]))
	}
	if r := pos.Norm(); r < minVerifiedRadius || r > maxVerifiedRadius {
		return core.Vec3{}, fmt.Errorf("sgp4 propagation for catalog %s: unreasonable radius %.1f km", strings.TrimSpace(line1[2:7]), r/kmToM)
	}
	return pos, nil
}

// precheckFields parses the numeric columns the SGP4 reader consumes.
func precheckFields(line1, line2 string) error {
	fields := []struct {
		name string
		raw  string
	}{
		{"catalog", strings.TrimSpace(line1[2:7])},
		{"epoch year", line1[18:20]},
		{"epoch day", line1[20:32]},
		{"first derivative", strings.TrimSpace(line1[33:43])},
		{"second derivative", strings.TrimSpace(line1[44:45]+"."+line1[45:50]+"e"+line1[50:52])},
		{"bstar", strings.TrimSpace(line1[53:54]+"."+line1[54:59]+"e"+line1[59:61])},
		{"inclination", strings.TrimSpace(line2[8:16])},
		{"raan", strings.TrimSpace(line2[17:25])},
		{"eccentricity", "." + line2[26:33]},
		{"arg of perigee", strings.TrimSpace(line2[34:42])},
		{"mean anomaly", strings.TrimSpace(line2[43:51])},
		{"mean motion", strings.TrimSpace(line2[52:63])},
	}
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f.raw, 64); err != nil {
			return fmt.Errorf("%w: %s field %q", ErrMalformedTLE, f.name, f.raw)
		}
	}
	return nil
}
