package thermal

import "time"

// GeoTag holds the WGS84 position recorded by the drone at capture time.
type GeoTag struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// FrameMetadata carries the capture-time attributes of a radiometric frame.
// It is sourced from the input file and passed through unmodified to outputs
// that need geometric or geospatial fidelity.
type FrameMetadata struct {
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	SensorModel string    `json:"sensor_model"`
	CapturedAt  time.Time `json:"captured_at"`
	Geo         *GeoTag   `json:"geo,omitempty"`
	SourcePath  string    `json:"source_path"`
}

// MatchesGeometry reports whether the metadata dimensions agree with the
// given matrix.
func (md *FrameMetadata) MatchesGeometry(m *Matrix) bool {
	return md.Width == m.Width() && md.Height == m.Height()
}
