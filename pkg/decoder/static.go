package decoder

import (
	"context"

	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// StaticFrame is a canned decode result served by StaticDecoder.
type StaticFrame struct {
	Matrix   *thermal.Matrix
	Metadata *thermal.FrameMetadata
	Err      error
}

// StaticDecoder serves pre-built frames keyed by path. It stands in for the
// vendor SDK in tests and examples, and doubles as a template for wiring an
// alternative radiometric backend.
type StaticDecoder struct {
	Frames map[string]StaticFrame
}

// NewStaticDecoder creates an empty static decoder.
func NewStaticDecoder() *StaticDecoder {
	return &StaticDecoder{Frames: make(map[string]StaticFrame)}
}

// Add registers a successful decode result for path.
func (d *StaticDecoder) Add(path string, m *thermal.Matrix, md *thermal.FrameMetadata) {
	d.Frames[path] = StaticFrame{Matrix: m, Metadata: md}
}

// AddFailure registers a decode failure for path.
func (d *StaticDecoder) AddFailure(path string, err error) {
	d.Frames[path] = StaticFrame{Err: err}
}

// Decode returns the canned result for path.
func (d *StaticDecoder) Decode(ctx context.Context, path string) (*thermal.Matrix, *thermal.FrameMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	frame, ok := d.Frames[path]
	if !ok {
		return nil, nil, &DecodeError{Path: path, Reason: "no such frame"}
	}
	if frame.Err != nil {
		return nil, nil, frame.Err
	}
	return frame.Matrix, frame.Metadata, nil
}
