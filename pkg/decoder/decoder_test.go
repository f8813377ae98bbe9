package decoder

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

func TestNewSDKDecoderMissingTool(t *testing.T) {
	_, err := NewSDKDecoder(t.TempDir())
	if err == nil {
		t.Fatal("Expected error for a library path without the measurement tool")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected DecodeError, got %T", err)
	}
}

func TestStaticDecoder(t *testing.T) {
	m, err := thermal.FromRows([][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatal(err)
	}

	dec := NewStaticDecoder()
	dec.Add("ok_T.JPG", m, &thermal.FrameMetadata{Width: 2, Height: 2})
	dec.AddFailure("bad_T.JPG", &DecodeError{Path: "bad_T.JPG", Reason: "bad calibration"})

	got, md, err := dec.Decode(context.Background(), "ok_T.JPG")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != m || md.Width != 2 {
		t.Error("Expected the registered matrix and metadata back")
	}

	if _, _, err := dec.Decode(context.Background(), "bad_T.JPG"); err == nil {
		t.Error("Expected registered failure")
	}
	if _, _, err := dec.Decode(context.Background(), "unknown_T.JPG"); err == nil {
		t.Error("Expected error for unregistered frame")
	}
}

func TestStaticDecoderHonorsCancellation(t *testing.T) {
	dec := NewStaticDecoder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := dec.Decode(ctx, "any_T.JPG"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFrameDimensions(t *testing.T) {
	path := writeTestJPEG(t, 32, 24)

	w, h, err := frameDimensions(path)
	if err != nil {
		t.Fatalf("frameDimensions failed: %v", err)
	}
	if w != 32 || h != 24 {
		t.Errorf("Expected 32x24, got %dx%d", w, h)
	}

	if _, _, err := frameDimensions(filepath.Join(t.TempDir(), "absent.jpg")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestReadMetadataFallbacks(t *testing.T) {
	// A frame without EXIF still yields metadata: capture time from the
	// filename, placeholder sensor model.
	dir := t.TempDir()
	src := writeTestJPEG(t, 8, 8)
	path := filepath.Join(dir, "DJI_20240612093045_0001_T.JPG")
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	md := readMetadata(path)
	if md.SensorModel != "unknown sensor" {
		t.Errorf("Expected placeholder sensor model, got %q", md.SensorModel)
	}
	want := time.Date(2024, 6, 12, 9, 30, 45, 0, time.Local)
	if !md.CapturedAt.Equal(want) {
		t.Errorf("Expected capture time %v from filename, got %v", want, md.CapturedAt)
	}
	if md.Geo != nil {
		t.Errorf("Expected no geotag, got %+v", md.Geo)
	}
}

func writeTestJPEG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 8), 128, 255})
		}
	}

	path := filepath.Join(t.TempDir(), "frame.jpg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return path
}
