// Package decoder turns captured radiometric frame files into dense
// temperature matrices.
//
// The actual radiometric decode (calibrated temperature-per-pixel from raw
// sensor bytes) is performed by the vendor SDK, which this package treats as
// an opaque, injected capability behind the Decoder interface. That keeps the
// SDK swappable: newer calibration libraries supporting sensors the shipped
// SDK predates can be substituted without touching the analysis pipeline.
package decoder

import (
	"context"
	"fmt"

	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// Decoder produces a temperature matrix and capture metadata for one frame.
// A Decode call either fully succeeds or fails; no partial matrix is ever
// returned.
type Decoder interface {
	Decode(ctx context.Context, path string) (*thermal.Matrix, *thermal.FrameMetadata, error)
}

// DecodeError reports an unreadable or unsupported frame, missing or
// incompatible calibration libraries, or a failure inside the external
// decode call itself.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }
