package model

import "strconv"

// SatelliteRecord is one spacecraft entry of a serialized constellation.
type SatelliteRecord struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	TLELine1       string  `json:"tle_line1"`
	TLELine2       string  `json:"tle_line2"`
	SemiMajorAxis  float64 `json:"semimajor_axis"`
	Eccentricity   float64 `json:"eccentricity"`
	InclinationDeg float64 `json:"inclination_deg"`
	RAANDeg        float64 `json:"raan_deg"`
	ArgPerigeeDeg  float64 `json:"arg_perigee_deg"`
	MeanAnomalyDeg float64 `json:"mean_anomaly_deg"`
}

// Elements returns the orbital elements spelled out in the record.
func (s SatelliteRecord) Elements() OrbitalElements {
	return OrbitalElements{
		SemiMajorAxis: s.SemiMajorAxis,
		Eccentricity:  s.Eccentricity,
		Inclination:   s.InclinationDeg,
		RAAN:          s.RAANDeg,
		ArgOfPerigee:  s.ArgPerigeeDeg,
		MeanAnomaly:   s.MeanAnomalyDeg,
	}
}

// ConstellationRecord is the serializable dataset for one
// (inclination family, constellation size) pair.
type ConstellationRecord struct {
	NumSatellites int               `json:"num_satellites"`
	NumPlanes     int               `json:"num_planes"`
	PlanePhasing  int               `json:"plane_phasing"`
	WalkerConfig  [3]int            `json:"walker_config"`
	Inclination   string            `json:"inclination"`
	AltitudeKm    float64           `json:"altitude_km"`
	Eccentricity  float64           `json:"eccentricity"`
	ArgPerigee    float64           `json:"arg_perigee"`
	Spacecraft    []SatelliteRecord `json:"spacecraft"`
}

// SatelliteName derives the display name for a slot id.
func SatelliteName(id int) string {
	return "Satellite " + strconv.Itoa(id)
}
