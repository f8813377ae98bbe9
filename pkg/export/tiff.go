// Package export serializes temperature matrices as single-band 32-bit
// floating-point TIFF rasters for photogrammetric reassembly.
//
// Unlike the annotated visualizations, the exported raster carries the exact
// per-pixel temperatures: every stored sample is the IEEE-754 float32
// rounding of the decoded value, with no color mapping in between, so an
// orthomosaic tool can stitch and re-measure the output. Frame geometry is
// preserved exactly and the capture's GPS position is propagated as a WGS84
// GeoTIFF tiepoint.
//
// The raster is a plain baseline TIFF (little-endian, single strip,
// uncompressed, SampleFormat IEEE FP) readable by GDAL and the usual
// photogrammetry pipelines.
package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// IOError reports a failed export write.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// TIFF field types used by the writer.
const (
	typeASCII  = 2
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12
)

// Tag IDs, in the ascending order baseline TIFF requires.
const (
	tagImageWidth       = 256
	tagImageLength      = 257
	tagBitsPerSample    = 258
	tagCompression      = 259
	tagPhotometric      = 262
	tagImageDescription = 270
	tagModel            = 272
	tagStripOffsets     = 273
	tagSamplesPerPixel  = 277
	tagRowsPerStrip     = 278
	tagStripByteCounts  = 279
	tagDateTime         = 306
	tagSampleFormat     = 339
	tagModelTiepoint    = 33922
	tagGeoKeyDirectory  = 34735
)

const (
	compressionNone    = 1
	photometricMinZero = 1
	sampleFormatFloat  = 3
)

// WriteGeoTIFF serializes the matrix to path. Metadata must describe the same
// geometry as the matrix; its GPS tag, sensor model and capture time are
// embedded when present.
func WriteGeoTIFF(m *thermal.Matrix, md *thermal.FrameMetadata, path string) error {
	if m == nil || m.Len() == 0 {
		return &thermal.InvalidInputError{Reason: "cannot export an empty matrix"}
	}
	if md != nil && (md.Width != 0 || md.Height != 0) && !md.MatchesGeometry(m) {
		return &thermal.InvalidInputError{
			Reason: fmt.Sprintf("metadata geometry %dx%d does not match matrix %dx%d",
				md.Width, md.Height, m.Width(), m.Height()),
		}
	}

	data := encode(m, md)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

type ifdEntry struct {
	tag     uint16
	typ     uint16
	count   uint32
	inline  uint32 // used when the payload fits in four bytes
	payload []byte // external payload otherwise
}

func encode(m *thermal.Matrix, md *thermal.FrameMetadata) []byte {
	w, h := m.Width(), m.Height()

	pix := make([]byte, 4*len(m.Values()))
	for i, v := range m.Values() {
		binary.LittleEndian.PutUint32(pix[i*4:], math.Float32bits(float32(v)))
	}

	entries := []ifdEntry{
		{tag: tagImageWidth, typ: typeLong, count: 1, inline: uint32(w)},
		{tag: tagImageLength, typ: typeLong, count: 1, inline: uint32(h)},
		{tag: tagBitsPerSample, typ: typeShort, count: 1, inline: 32},
		{tag: tagCompression, typ: typeShort, count: 1, inline: compressionNone},
		{tag: tagPhotometric, typ: typeShort, count: 1, inline: photometricMinZero},
	}

	if md != nil {
		if desc := describe(md); desc != "" {
			entries = append(entries, asciiEntry(tagImageDescription, desc))
		}
		if md.SensorModel != "" {
			entries = append(entries, asciiEntry(tagModel, md.SensorModel))
		}
	}

	entries = append(entries,
		ifdEntry{tag: tagStripOffsets, typ: typeLong, count: 1, inline: 8},
		ifdEntry{tag: tagSamplesPerPixel, typ: typeShort, count: 1, inline: 1},
		ifdEntry{tag: tagRowsPerStrip, typ: typeLong, count: 1, inline: uint32(h)},
		ifdEntry{tag: tagStripByteCounts, typ: typeLong, count: 1, inline: uint32(len(pix))},
	)

	if md != nil && !md.CapturedAt.IsZero() {
		entries = append(entries, asciiEntry(tagDateTime, md.CapturedAt.Format("2006:01:02 15:04:05")))
	}

	entries = append(entries, ifdEntry{tag: tagSampleFormat, typ: typeShort, count: 1, inline: sampleFormatFloat})

	if md != nil && md.Geo != nil {
		entries = append(entries, tiepointEntry(md.Geo), geoKeyEntry())
	}

	// Layout: header, pixel strip, IFD, external tag payloads.
	ifdOffset := 8 + len(pix)
	if ifdOffset%2 == 1 {
		pix = append(pix, 0)
		ifdOffset++
	}
	payloadOffset := ifdOffset + 2 + 12*len(entries) + 4

	var buf bytes.Buffer
	buf.WriteString("II")
	le := binary.LittleEndian
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, uint32(ifdOffset))
	buf.Write(pix)

	var payloads bytes.Buffer
	binary.Write(&buf, le, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&buf, le, e.tag)
		binary.Write(&buf, le, e.typ)
		binary.Write(&buf, le, e.count)
		if e.payload == nil {
			value := e.inline
			if e.typ == typeShort {
				// Short values sit in the low two bytes of the field.
				binary.Write(&buf, le, uint16(value))
				binary.Write(&buf, le, uint16(0))
				continue
			}
			binary.Write(&buf, le, value)
			continue
		}
		binary.Write(&buf, le, uint32(payloadOffset+payloads.Len()))
		payloads.Write(e.payload)
		if payloads.Len()%2 == 1 {
			payloads.WriteByte(0)
		}
	}
	binary.Write(&buf, le, uint32(0)) // no next IFD
	buf.Write(payloads.Bytes())

	return buf.Bytes()
}

func describe(md *thermal.FrameMetadata) string {
	if md.Geo == nil {
		return "thermal-analyzer temperature raster, degC"
	}
	return fmt.Sprintf("thermal-analyzer temperature raster, degC; lat=%.7f lon=%.7f alt=%.2f",
		md.Geo.Latitude, md.Geo.Longitude, md.Geo.Altitude)
}

func asciiEntry(tag uint16, s string) ifdEntry {
	payload := append([]byte(s), 0)
	e := ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(payload))}
	if len(payload) <= 4 {
		var inline [4]byte
		copy(inline[:], payload)
		e.inline = binary.LittleEndian.Uint32(inline[:])
		return e
	}
	e.payload = payload
	return e
}

// tiepointEntry anchors raster origin (0,0,0) at the capture position in
// WGS84 coordinates: the GeoTIFF tiepoint order is lon, lat, alt.
func tiepointEntry(geo *thermal.GeoTag) ifdEntry {
	values := []float64{0, 0, 0, geo.Longitude, geo.Latitude, geo.Altitude}
	payload := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(v))
	}
	return ifdEntry{tag: tagModelTiepoint, typ: typeDouble, count: uint32(len(values)), payload: payload}
}

// geoKeyEntry declares the coordinate system of the tiepoint: geographic
// model, EPSG 4326.
func geoKeyEntry() ifdEntry {
	keys := []uint16{
		1, 1, 0, 2, // key directory version, revision, minor, key count
		1024, 0, 1, 2, // GTModelTypeGeoKey = geographic
		2048, 0, 1, 4326, // GeographicTypeGeoKey = WGS84
	}
	payload := make([]byte, 2*len(keys))
	for i, k := range keys {
		binary.LittleEndian.PutUint16(payload[i*2:], k)
	}
	return ifdEntry{tag: tagGeoKeyDirectory, typ: typeShort, count: uint32(len(keys)), payload: payload}
}
