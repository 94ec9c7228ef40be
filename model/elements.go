package model

// OrbitalElements is one satellite's osculating Keplerian state.
// Angles are in degrees, the semi-major axis in metres.
type OrbitalElements struct {
	SemiMajorAxis float64
	Eccentricity  float64
	Inclination   float64
	RAAN          float64 // [0, 360)
	ArgOfPerigee  float64
	MeanAnomaly   float64 // [0, 360)
}

// Slot is a single position in a Walker lattice.
type Slot struct {
	// ID is 1-based and assigned in plane-major traversal order.
	ID int
	// Plane and Index are the 0-based plane and in-plane positions.
	Plane int
	Index int

	Elements OrbitalElements
}
