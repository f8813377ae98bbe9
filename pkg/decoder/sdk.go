package decoder

import (
	"context"
	"encoding/binary"
	"image"
	_ "image/jpeg"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// sdkTool is the vendor measurement tool expected inside the decode-library
// directory. It emits the per-pixel temperature field as raw little-endian
// float32 values.
const sdkTool = "dji_irp"

// SDKDecoder invokes the DJI thermal SDK through its measurement tool. The
// library directory is configurable so a newer calibration library lineup can
// be pointed at without rebuilding anything.
//
// The vendor tool is not documented as safe to run reentrantly against the
// same library directory, so calls are serialized; everything downstream of
// the decode is pure and parallelizes freely.
type SDKDecoder struct {
	libPath string
	mu      sync.Mutex
}

// NewSDKDecoder creates a decoder backed by the vendor libraries in libPath.
// The directory must contain the measurement tool and its radiometric decode
// libraries.
func NewSDKDecoder(libPath string) (*SDKDecoder, error) {
	tool := filepath.Join(libPath, sdkTool)
	if _, err := os.Stat(tool); err != nil {
		return nil, &DecodeError{Path: tool, Reason: "measurement tool not found in decode-library path", Err: err}
	}
	return &SDKDecoder{libPath: libPath}, nil
}

// Decode runs the vendor tool on one captured frame and returns the dense
// temperature matrix in degrees Celsius together with the frame metadata.
func (d *SDKDecoder) Decode(ctx context.Context, path string) (*thermal.Matrix, *thermal.FrameMetadata, error) {
	width, height, err := frameDimensions(path)
	if err != nil {
		return nil, nil, &DecodeError{Path: path, Reason: "not a recognized radiometric frame", Err: err}
	}

	raw, err := d.measure(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) != width*height*4 {
		return nil, nil, &DecodeError{
			Path:   path,
			Reason: "measurement output does not match frame geometry; calibration libraries likely incompatible with this sensor",
		}
	}

	pix := make([]float64, width*height)
	for i := range pix {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		pix[i] = float64(math.Float32frombits(bits))
	}

	matrix, err := thermal.NewMatrix(width, height, pix)
	if err != nil {
		return nil, nil, &DecodeError{Path: path, Reason: "decoded matrix is malformed", Err: err}
	}

	md := readMetadata(path)
	md.Width = width
	md.Height = height

	return matrix, md, nil
}

// measure runs the vendor tool with the decode-library directory on the
// loader path and returns its raw float32 output. Calls are serialized.
func (d *SDKDecoder) measure(ctx context.Context, path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out, err := os.CreateTemp("", "thermal-measure-*.raw")
	if err != nil {
		return nil, &DecodeError{Path: path, Reason: "cannot create measurement scratch file", Err: err}
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, filepath.Join(d.libPath, sdkTool),
		"-s", path,
		"-a", "measure",
		"-o", outPath,
		"--measurefmt", "float32",
	)
	cmd.Env = append(os.Environ(), "LD_LIBRARY_PATH="+d.libPath)

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, &DecodeError{Path: path, Reason: "vendor decode failed: " + string(output), Err: err}
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &DecodeError{Path: path, Reason: "cannot read measurement output", Err: err}
	}
	return raw, nil
}

// frameDimensions reads the pixel geometry from the frame's embedded preview
// without decoding the full image.
func frameDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
