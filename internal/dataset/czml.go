package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/duncaneddy/SATPLAN/core"
	"github.com/duncaneddy/SATPLAN/model"
)

// StateConverter turns orbital elements into an inertial state in metres.
// orbit.Toolkit satisfies it.
type StateConverter interface {
	StateVector(el model.OrbitalElements) (core.Vec3, core.Vec3, error)
}

// CZMLPacket is the subset of the Cesium CZML packet schema the export uses.
type CZMLPacket struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Version  string     `json:"version,omitempty"`
	Clock    *czmlClock `json:"clock,omitempty"`
	Position *czmlPos   `json:"position,omitempty"`
	Point    *czmlPoint `json:"point,omitempty"`
	Label    *czmlLabel `json:"label,omitempty"`
}

type czmlClock struct {
	Interval    string `json:"interval"`
	CurrentTime string `json:"currentTime"`
}

type czmlPos struct {
	ReferenceFrame string     `json:"referenceFrame"`
	Epoch          string     `json:"epoch"`
	Cartesian      [4]float64 `json:"cartesian"`
}

type czmlPoint struct {
	PixelSize int       `json:"pixelSize"`
	Color     czmlColor `json:"color"`
}

type czmlColor struct {
	RGBA [4]int `json:"rgba"`
}

type czmlLabel struct {
	Text string `json:"text"`
	Show bool   `json:"show"`
}

var planePalette = [][4]int{
	{31, 119, 180, 255},
	{255, 127, 14, 255},
	{44, 160, 44, 255},
	{214, 39, 40, 255},
	{148, 103, 189, 255},
	{140, 86, 75, 255},
	{227, 119, 194, 255},
	{127, 127, 127, 255},
	{188, 189, 34, 255},
	{23, 190, 207, 255},
}

// PlaneColor returns the display colour for a 0-based plane index.
func PlaneColor(plane int) [4]int {
	if plane < 0 {
		plane = -plane
	}
	return planePalette[plane%len(planePalette)]
}

// BuildCZML renders a static snapshot of rec at epoch: a document packet
// followed by one packet per satellite in record order.
func BuildCZML(rec *model.ConstellationRecord, epoch time.Time, conv StateConverter) ([]CZMLPacket, error) {
	if rec == nil {
		return nil, errors.New("dataset: nil constellation record")
	}
	if conv == nil {
		return nil, errors.New("dataset: nil state converter")
	}
	stamp := epoch.UTC().Format(time.RFC3339)
	packets := make([]CZMLPacket, 0, len(rec.Spacecraft)+1)
	packets = append(packets, CZMLPacket{
		ID:      "document",
		Name:    fmt.Sprintf("%s %d (%d/%d/%d)", rec.Inclination, rec.NumSatellites, rec.WalkerConfig[0], rec.WalkerConfig[1], rec.WalkerConfig[2]),
		Version: "1.0",
		Clock:   &czmlClock{Interval: stamp + "/" + stamp, CurrentTime: stamp},
	})

	// Walker total, not the requested size: a size may map to a different t.
	perPlane := 1
	if total, planes := rec.WalkerConfig[0], rec.WalkerConfig[1]; planes > 0 && total >= planes {
		perPlane = total / planes
	}
	for _, sc := range rec.Spacecraft {
		pos, _, err := conv.StateVector(sc.Elements())
		if err != nil {
			return nil, fmt.Errorf("state for satellite %d: %w", sc.ID, err)
		}
		packets = append(packets, CZMLPacket{
			ID:   fmt.Sprintf("satellite-%d", sc.ID),
			Name: sc.Name,
			Position: &czmlPos{
				ReferenceFrame: "INERTIAL",
				Epoch:          stamp,
				Cartesian:      [4]float64{0, pos.X, pos.Y, pos.Z},
			},
			Point: &czmlPoint{PixelSize: 6, Color: czmlColor{RGBA: PlaneColor((sc.ID - 1) / perPlane)}},
			Label: &czmlLabel{Text: sc.Name},
		})
	}
	return packets, nil
}

// WriteCZML builds the snapshot for rec and writes it next to the JSON file.
func (w *Writer) WriteCZML(rec *model.ConstellationRecord, epoch time.Time, conv StateConverter) (string, error) {
	packets, err := BuildCZML(rec, epoch, conv)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(packets, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode czml: %w", err)
	}
	path := w.CZMLPath(rec.Inclination, rec.NumSatellites)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}
