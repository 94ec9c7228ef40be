package orbit

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

var benchmarkEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestEncodeTLE_Golden(t *testing.T) {
	el := TLEElements{
		MeanMotion:   MeanMotion(shell550),
		Eccentricity: 0.001,
		Inclination:  53,
		RAAN:         72,
		ArgOfPerigee: 0,
		MeanAnomaly:  180,
	}
	line1, line2, err := EncodeTLE(benchmarkEpoch, el, 1)
	if err != nil {
		t.Fatalf("EncodeTLE error: %v", err)
	}

	want1 := "1 00001U          25001.00000000  .00000000  00000-0  00000-0 0  9999"
	want2 := "2 00001  53.0000  72.0000 0010000   0.0000 180.0000 15.05490874    03"
	if line1 != want1 {
		t.Fatalf("line1\n got %q\nwant %q", line1, want1)
	}
	if line2 != want2 {
		t.Fatalf("line2\n got %q\nwant %q", line2, want2)
	}
	if err := ValidateTLE(line1, line2); err != nil {
		t.Fatalf("encoded TLE fails validation: %v", err)
	}
}

func TestEncodeTLE_EpochFraction(t *testing.T) {
	epoch := time.Date(2024, time.December, 31, 12, 0, 0, 0, time.UTC)
	line1, _, err := EncodeTLE(epoch, TLEElements{MeanMotion: 15, Eccentricity: 0}, 42)
	if err != nil {
		t.Fatalf("EncodeTLE error: %v", err)
	}
	// 2024 is a leap year: Dec 31 is day 366.
	if got := line1[18:32]; got != "24366.50000000" {
		t.Fatalf("epoch field = %q, want 24366.50000000", got)
	}
	if got := line1[2:7]; got != "00042" {
		t.Fatalf("catalog field = %q, want 00042", got)
	}
}

func TestEncodeTLE_WrapsAngles(t *testing.T) {
	_, line2, err := EncodeTLE(benchmarkEpoch, TLEElements{
		MeanMotion:  15,
		RAAN:        359.99999,
		MeanAnomaly: -90,
	}, 7)
	if err != nil {
		t.Fatalf("EncodeTLE error: %v", err)
	}
	if raan := strings.TrimSpace(line2[17:25]); raan != "0.0000" {
		t.Fatalf("RAAN field = %q, want 0.0000", raan)
	}
	if ma := strings.TrimSpace(line2[43:51]); ma != "270.0000" {
		t.Fatalf("mean anomaly field = %q, want 270.0000", ma)
	}
}

func TestEncodeTLE_Rejects(t *testing.T) {
	good := TLEElements{MeanMotion: 15, Eccentricity: 0.001}

	if _, _, err := EncodeTLE(benchmarkEpoch, good, 0); !errors.Is(err, ErrCatalogID) {
		t.Fatalf("catalog 0: expected ErrCatalogID, got %v", err)
	}
	if _, _, err := EncodeTLE(benchmarkEpoch, good, MaxCatalogID+1); !errors.Is(err, ErrCatalogID) {
		t.Fatalf("catalog 100000: expected ErrCatalogID, got %v", err)
	}

	bad := good
	bad.Eccentricity = 1
	if _, _, err := EncodeTLE(benchmarkEpoch, bad, 1); !errors.Is(err, ErrEccentricity) {
		t.Fatalf("e=1: expected ErrEccentricity, got %v", err)
	}

	bad = good
	bad.MeanMotion = 0
	if _, _, err := EncodeTLE(benchmarkEpoch, bad, 1); !errors.Is(err, ErrMeanMotion) {
		t.Fatalf("n=0: expected ErrMeanMotion, got %v", err)
	}

	for _, inc := range []float64{-10, -0.0001, 180.0001, 200, math.NaN()} {
		bad = good
		bad.Inclination = inc
		if _, _, err := EncodeTLE(benchmarkEpoch, bad, 1); !errors.Is(err, ErrInclination) {
			t.Fatalf("i=%v: expected ErrInclination, got %v", inc, err)
		}
	}
	for _, inc := range []float64{0, 180} {
		ok := good
		ok.Inclination = inc
		_, line2, err := EncodeTLE(benchmarkEpoch, ok, 1)
		if err != nil {
			t.Fatalf("i=%v: unexpected error %v", inc, err)
		}
		if got, want := strings.TrimSpace(line2[8:16]), fmt.Sprintf("%.4f", inc); got != want {
			t.Fatalf("i=%v: inclination field = %q, want %q", inc, got, want)
		}
	}

	if _, _, err := EncodeTLE(time.Date(2060, 1, 1, 0, 0, 0, 0, time.UTC), good, 1); !errors.Is(err, ErrEpoch) {
		t.Fatalf("2060 epoch: expected ErrEpoch, got %v", err)
	}
}

func TestChecksum(t *testing.T) {
	if got := Checksum("1 -1-"); got != 4 {
		t.Fatalf("Checksum = %d, want 4", got)
	}
	// the checksum column itself is ignored
	line := "2 00001  53.0000  72.0000 0010000   0.0000 180.0000 15.05490874    09"
	if got := Checksum(line); got != 3 {
		t.Fatalf("Checksum = %d, want 3", got)
	}
}

func TestValidateTLE(t *testing.T) {
	line1, line2, err := EncodeTLE(benchmarkEpoch, TLEElements{MeanMotion: 15, Eccentricity: 0.001, Inclination: 53}, 12)
	if err != nil {
		t.Fatalf("EncodeTLE error: %v", err)
	}

	corrupt := line2[:68] + "0"
	if corrupt == line2 {
		corrupt = line2[:68] + "1"
	}
	if err := ValidateTLE(line1, corrupt); !errors.Is(err, ErrMalformedTLE) {
		t.Fatalf("bad checksum: expected ErrMalformedTLE, got %v", err)
	}
	if err := ValidateTLE(line1[:60], line2); !errors.Is(err, ErrMalformedTLE) {
		t.Fatalf("short line: expected ErrMalformedTLE, got %v", err)
	}
	if err := ValidateTLE(line2, line1); !errors.Is(err, ErrMalformedTLE) {
		t.Fatalf("swapped lines: expected ErrMalformedTLE, got %v", err)
	}

	other1, _, err := EncodeTLE(benchmarkEpoch, TLEElements{MeanMotion: 15}, 13)
	if err != nil {
		t.Fatalf("EncodeTLE error: %v", err)
	}
	if err := ValidateTLE(other1, line2); !errors.Is(err, ErrMalformedTLE) {
		t.Fatalf("mismatched catalog: expected ErrMalformedTLE, got %v", err)
	}
}
