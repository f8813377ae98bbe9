package decoder

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/termoscan/thermal-analyzer/internal/utils"
	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// readMetadata extracts capture-time attributes from the frame's container
// tags. Metadata is best-effort: a frame with stripped tags still decodes,
// it just carries less provenance. Geometry is filled in by the caller from
// the decoded matrix.
func readMetadata(path string) *thermal.FrameMetadata {
	md := &thermal.FrameMetadata{
		SensorModel: "unknown sensor",
		SourcePath:  path,
	}

	// DJI names carry the capture timestamp; used when EXIF is absent.
	if t, ok := utils.ParseCaptureTime(path); ok {
		md.CapturedAt = t
	}

	f, err := os.Open(path)
	if err != nil {
		return md
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return md
	}

	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil && model != "" {
			md.SensorModel = model
		}
	}

	if t, err := x.DateTime(); err == nil {
		md.CapturedAt = t
	}

	if lat, lon, err := x.LatLong(); err == nil {
		geo := &thermal.GeoTag{Latitude: lat, Longitude: lon}
		if tag, err := x.Get(exif.GPSAltitude); err == nil {
			if rat, err := tag.Rat(0); err == nil {
				geo.Altitude, _ = rat.Float64()
			}
		}
		md.Geo = geo
	}

	return md
}
