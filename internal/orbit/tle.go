package orbit

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// TLELineLength is the fixed width of both element lines.
	TLELineLength = 69
	// MaxCatalogID is the largest catalog number the numeric format holds.
	MaxCatalogID = 99999

	elementSetNumber = 999
	zeroDerivative   = " .00000000"
	zeroExponential  = " 00000-0"
)

var (
	// ErrCatalogID indicates a catalog number outside 1..99999.
	ErrCatalogID = errors.New("catalog id out of range")
	// ErrEpoch indicates an epoch the two-digit TLE year cannot represent.
	ErrEpoch = errors.New("epoch outside 1957-2056")
	// ErrInclination indicates an inclination outside [0, 180] degrees.
	ErrInclination = errors.New("inclination out of range")
	// ErrMeanMotion indicates a mean motion that does not fit the element field.
	ErrMeanMotion = errors.New("mean motion out of range")
	// ErrMalformedTLE indicates a line that fails layout or checksum checks.
	ErrMalformedTLE = errors.New("malformed two-line element")
)

// TLEElements are the mean elements written to line 2.
type TLEElements struct {
	MeanMotion   float64 // revolutions per day
	Eccentricity float64
	Inclination  float64 // degrees
	RAAN         float64 // degrees
	ArgOfPerigee float64 // degrees
	MeanAnomaly  float64 // degrees
}

// EncodeTLE renders elements at epoch as a NORAD two-line element set with
// unclassified designation, zero drag terms and valid checksums.
func EncodeTLE(epoch time.Time, el TLEElements, catalogID int) (string, string, error) {
	if catalogID < 1 || catalogID > MaxCatalogID {
		return "", "", fmt.Errorf("%w: %d", ErrCatalogID, catalogID)
	}
	if el.Eccentricity < 0 || el.Eccentricity >= 1 || math.IsNaN(el.Eccentricity) {
		return "", "", fmt.Errorf("%w: %g", ErrEccentricity, el.Eccentricity)
	}
	if !(el.Inclination >= 0 && el.Inclination <= 180) {
		return "", "", fmt.Errorf("%w: %g deg", ErrInclination, el.Inclination)
	}
	if !(el.MeanMotion > 0 && el.MeanMotion < 100) {
		return "", "", fmt.Errorf("%w: %g rev/day", ErrMeanMotion, el.MeanMotion)
	}
	ecc := int(math.Round(el.Eccentricity * 1e7))
	if ecc > 9999999 {
		return "", "", fmt.Errorf("%w: %g", ErrEccentricity, el.Eccentricity)
	}

	year, day, err := epochFields(epoch)
	if err != nil {
		return "", "", err
	}

	line1 := fmt.Sprintf("1 %05dU %-8s %02d%012.8f %s %s %s 0 %4d",
		catalogID, "", year, day, zeroDerivative, zeroExponential, zeroExponential, elementSetNumber)
	line2 := fmt.Sprintf("2 %05d %8.4f %8.4f %07d %8.4f %8.4f %11.8f%5d",
		catalogID,
		el.Inclination,
		fieldAngle(el.RAAN),
		ecc,
		fieldAngle(el.ArgOfPerigee),
		fieldAngle(el.MeanAnomaly),
		el.MeanMotion,
		0,
	)
	line1 += fmt.Sprint(Checksum(line1))
	line2 += fmt.Sprint(Checksum(line2))
	return line1, line2, nil
}

// Checksum returns the modulo-10 checksum over the first 68 columns of a
// TLE line: digits count their value, minus signs count one.
func Checksum(line string) int {
	if len(line) > TLELineLength-1 {
		line = line[:TLELineLength-1]
	}
	sum := 0
	for _, c := range line {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// ValidateTLE checks line widths, line numbers, matching catalog numbers
// and checksums.
func ValidateTLE(line1, line2 string) error {
	for i, line := range []string{line1, line2} {
		if len(line) != TLELineLength {
			return fmt.Errorf("%w: line %d length %d, expected %d", ErrMalformedTLE, i+1, len(line), TLELineLength)
		}
		if line[0] != byte('1'+i) || line[1] != ' ' {
			return fmt.Errorf("%w: line %d must start with %q", ErrMalformedTLE, i+1, fmt.Sprintf("%d ", i+1))
		}
		want := int(line[TLELineLength-1] - '0')
		if got := Checksum(line); got != want {
			return fmt.Errorf("%w: line %d checksum %d, expected %d", ErrMalformedTLE, i+1, want, got)
		}
	}
	if line1[2:7] != line2[2:7] {
		return fmt.Errorf("%w: catalog numbers %q and %q differ", ErrMalformedTLE, strings.TrimSpace(line1[2:7]), strings.TrimSpace(line2[2:7]))
	}
	return nil
}

// epochFields splits an epoch into the two-digit year and the fractional
// day of year (1-based) used in line 1.
func epochFields(epoch time.Time) (int, float64, error) {
	epoch = epoch.UTC()
	if epoch.Year() < 1957 || epoch.Year() > 2056 {
		return 0, 0, fmt.Errorf("%w: %s", ErrEpoch, epoch.Format(time.RFC3339))
	}
	yearStart := time.Date(epoch.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	day := julian.TimeToJD(epoch) - julian.TimeToJD(yearStart) + 1
	// keep eight decimals representable without rolling into the next field
	day = math.Round(day*1e8) / 1e8
	return epoch.Year() % 100, day, nil
}

// fieldAngle wraps an angle into [0, 360) after rounding to the four
// decimals the element field holds.
func fieldAngle(deg float64) float64 {
	a := math.Round(math.Mod(deg, 360)*1e4) / 1e4
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}
