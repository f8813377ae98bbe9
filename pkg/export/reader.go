package export

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// ReadGeoTIFF loads a single-band float32 TIFF back into a matrix, together
// with the embedded tiepoint position when one is present. It is a generic
// baseline-TIFF reader, independent of the writer's layout choices, and is
// what the round-trip guarantees of this package are verified against.
func ReadGeoTIFF(path string) (*thermal.Matrix, *thermal.GeoTag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &IOError{Path: path, Err: err}
	}

	m, geo, err := decode(data)
	if err != nil {
		return nil, nil, &IOError{Path: path, Err: err}
	}
	return m, geo, nil
}

type rawField struct {
	typ   uint16
	count uint32
	raw   []byte // resolved payload bytes
}

func decode(data []byte) (*thermal.Matrix, *thermal.GeoTag, error) {
	if len(data) < 8 {
		return nil, nil, fmt.Errorf("not a TIFF: truncated header")
	}

	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, nil, fmt.Errorf("not a TIFF: bad byte-order mark")
	}
	if order.Uint16(data[2:]) != 42 {
		return nil, nil, fmt.Errorf("not a TIFF: bad magic")
	}

	fields, err := parseIFD(data, order, order.Uint32(data[4:]))
	if err != nil {
		return nil, nil, err
	}

	width := int(fieldInt(fields, order, tagImageWidth, 0))
	height := int(fieldInt(fields, order, tagImageLength, 0))
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("missing image dimensions")
	}
	if v := fieldInt(fields, order, tagBitsPerSample, 0); v != 32 {
		return nil, nil, fmt.Errorf("unsupported bits per sample %d, want 32", v)
	}
	if v := fieldInt(fields, order, tagSampleFormat, 0); v != sampleFormatFloat {
		return nil, nil, fmt.Errorf("unsupported sample format %d, want IEEE float", v)
	}
	if v := fieldInt(fields, order, tagCompression, compressionNone); v != compressionNone {
		return nil, nil, fmt.Errorf("unsupported compression %d", v)
	}

	strip, err := stripData(data, order, fields, width*height*4)
	if err != nil {
		return nil, nil, err
	}

	pix := make([]float64, width*height)
	for i := range pix {
		pix[i] = float64(math.Float32frombits(order.Uint32(strip[i*4:])))
	}

	m, err := thermal.NewMatrix(width, height, pix)
	if err != nil {
		return nil, nil, err
	}
	return m, readTiepoint(fields, order), nil
}

func parseIFD(data []byte, order binary.ByteOrder, offset uint32) (map[uint16]rawField, error) {
	if int(offset)+2 > len(data) {
		return nil, fmt.Errorf("IFD offset out of range")
	}
	n := int(order.Uint16(data[offset:]))
	fields := make(map[uint16]rawField, n)

	for i := 0; i < n; i++ {
		pos := int(offset) + 2 + i*12
		if pos+12 > len(data) {
			return nil, fmt.Errorf("IFD entry out of range")
		}
		tag := order.Uint16(data[pos:])
		typ := order.Uint16(data[pos+2:])
		count := order.Uint32(data[pos+4:])

		size := typeSize(typ) * int(count)
		var raw []byte
		if size <= 4 {
			raw = data[pos+8 : pos+8+max(size, 0)]
		} else {
			start := int(order.Uint32(data[pos+8:]))
			if start+size > len(data) {
				return nil, fmt.Errorf("tag %d payload out of range", tag)
			}
			raw = data[start : start+size]
		}
		fields[tag] = rawField{typ: typ, count: count, raw: raw}
	}
	return fields, nil
}

func typeSize(typ uint16) int {
	switch typ {
	case 1, typeASCII, 6, 7: // byte-sized types
		return 1
	case typeShort, 8:
		return 2
	case typeLong, 9, 11:
		return 4
	case 5, 10, typeDouble:
		return 8
	}
	return 0
}

// fieldInt reads the first integer value of a SHORT or LONG field.
func fieldInt(fields map[uint16]rawField, order binary.ByteOrder, tag uint16, def int64) int64 {
	f, ok := fields[tag]
	if !ok || len(f.raw) == 0 {
		return def
	}
	return fieldIntAt(f, order, 0, def)
}

func fieldIntAt(f rawField, order binary.ByteOrder, idx int, def int64) int64 {
	switch f.typ {
	case typeShort:
		if (idx+1)*2 > len(f.raw) {
			return def
		}
		return int64(order.Uint16(f.raw[idx*2:]))
	case typeLong:
		if (idx+1)*4 > len(f.raw) {
			return def
		}
		return int64(order.Uint32(f.raw[idx*4:]))
	}
	return def
}

// stripData concatenates the pixel strips into one contiguous buffer.
func stripData(data []byte, order binary.ByteOrder, fields map[uint16]rawField, want int) ([]byte, error) {
	offsets, ok := fields[tagStripOffsets]
	if !ok {
		return nil, fmt.Errorf("missing strip offsets")
	}
	counts, ok := fields[tagStripByteCounts]
	if !ok {
		return nil, fmt.Errorf("missing strip byte counts")
	}
	if offsets.count != counts.count {
		return nil, fmt.Errorf("strip offset/count mismatch")
	}

	out := make([]byte, 0, want)
	for i := 0; i < int(offsets.count); i++ {
		start := int(fieldIntAt(offsets, order, i, -1))
		size := int(fieldIntAt(counts, order, i, -1))
		if start < 0 || size < 0 || start+size > len(data) {
			return nil, fmt.Errorf("strip %d out of range", i)
		}
		out = append(out, data[start:start+size]...)
	}
	if len(out) < want {
		return nil, fmt.Errorf("pixel data truncated: have %d bytes, want %d", len(out), want)
	}
	return out[:want], nil
}

// readTiepoint recovers the capture position from a GeoTIFF tiepoint
// (raster 0,0,0 anchored at lon, lat, alt).
func readTiepoint(fields map[uint16]rawField, order binary.ByteOrder) *thermal.GeoTag {
	f, ok := fields[tagModelTiepoint]
	if !ok || f.typ != typeDouble || f.count < 6 || len(f.raw) < 48 {
		return nil
	}
	at := func(i int) float64 {
		return math.Float64frombits(order.Uint64(f.raw[i*8:]))
	}
	return &thermal.GeoTag{
		Longitude: at(3),
		Latitude:  at(4),
		Altitude:  at(5),
	}
}
