package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/termoscan/thermal-analyzer/pkg/decoder"
	"github.com/termoscan/thermal-analyzer/pkg/export"
	"github.com/termoscan/thermal-analyzer/pkg/render"
	"github.com/termoscan/thermal-analyzer/pkg/stats"
	"github.com/termoscan/thermal-analyzer/pkg/thermal"
)

// newTestDecoder builds a static decoder serving n synthetic frames named
// frame_000_T.JPG and so on.
func newTestDecoder(t *testing.T, n int) (*decoder.StaticDecoder, []string) {
	t.Helper()
	dec := decoder.NewStaticDecoder()
	frames := make([]string, n)

	for i := 0; i < n; i++ {
		pix := make([]float64, 12*10)
		for j := range pix {
			pix[j] = float64(i*10 + j%30)
		}
		m, err := thermal.NewMatrix(12, 10, pix)
		if err != nil {
			t.Fatal(err)
		}
		path := fmt.Sprintf("frame_%03d_T.JPG", i)
		dec.Add(path, m, &thermal.FrameMetadata{
			Width:       12,
			Height:      10,
			SensorModel: "M3T",
			SourcePath:  path,
		})
		frames[i] = path
	}

	return dec, frames
}

func newTestRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Config{Palette: "grayscale"})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRunBasicMode(t *testing.T) {
	dec, frames := newTestDecoder(t, 3)
	outDir := t.TempDir()

	p, err := New(dec, stats.New(), newTestRenderer(t), Options{
		Mode:      ModeBasic,
		OutputDir: outDir,
		Format:    "png",
	})
	if err != nil {
		t.Fatal(err)
	}

	batch := p.Run(context.Background(), frames)
	if !batch.OK() {
		t.Fatalf("Expected clean batch, %d failed", batch.Failed())
	}

	for _, res := range batch.Results {
		if res.Output == "" {
			t.Fatalf("Frame %s produced no output path", res.Frame)
		}
		if _, err := os.Stat(res.Output); err != nil {
			t.Errorf("Output %s not written: %v", res.Output, err)
		}
		if filepath.Ext(res.Output) != ".png" {
			t.Errorf("Expected .png output, got %s", res.Output)
		}
	}
}

func TestRunBatchContinuesPastFailure(t *testing.T) {
	// One bad frame in a five-frame batch must not stop the other four.
	dec, frames := newTestDecoder(t, 4)
	bad := "frame_bad_T.JPG"
	dec.AddFailure(bad, &decoder.DecodeError{Path: bad, Reason: "unsupported sensor"})
	frames = append(frames[:2], append([]string{bad}, frames[2:]...)...)

	outDir := t.TempDir()
	p, err := New(dec, stats.New(), newTestRenderer(t), Options{
		Mode:      ModeBasic,
		OutputDir: outDir,
		Format:    "png",
		Workers:   2,
	})
	if err != nil {
		t.Fatal(err)
	}

	batch := p.Run(context.Background(), frames)

	if batch.Succeeded() != 4 {
		t.Errorf("Expected 4 successes, got %d", batch.Succeeded())
	}
	if batch.Failed() != 1 {
		t.Errorf("Expected 1 failure, got %d", batch.Failed())
	}
	if batch.OK() {
		t.Error("Expected batch to report failure")
	}

	for _, res := range batch.Results {
		if res.Frame == bad {
			if res.ErrorKind() != "decode" {
				t.Errorf("Expected decode error kind, got %q", res.ErrorKind())
			}
			if res.Output != "" {
				t.Errorf("Failed frame must not report an output, got %s", res.Output)
			}
			continue
		}
		if res.Err != nil {
			t.Errorf("Frame %s unexpectedly failed: %v", res.Frame, res.Err)
		}
		if _, err := os.Stat(res.Output); err != nil {
			t.Errorf("Output %s not written: %v", res.Output, err)
		}
	}
}

func TestRunZonesMode(t *testing.T) {
	dec, frames := newTestDecoder(t, 2)
	outDir := t.TempDir()

	p, err := New(dec, stats.New(), newTestRenderer(t), Options{
		Mode:       ModeZones,
		OutputDir:  outDir,
		Format:     "jpg",
		LowOffset:  5,
		HighOffset: 5,
	})
	if err != nil {
		t.Fatal(err)
	}

	batch := p.Run(context.Background(), frames)
	if !batch.OK() {
		t.Fatalf("Expected clean batch, %d failed", batch.Failed())
	}

	for _, res := range batch.Results {
		if want := "_zones.jpg"; !strings.HasSuffix(res.Output, want) {
			t.Errorf("Expected output with %s suffix, got %s", want, res.Output)
		}
	}
}

func TestRunOrthoMode(t *testing.T) {
	// Ortho mode needs no renderer and must produce numerically faithful
	// rasters.
	dec, frames := newTestDecoder(t, 2)
	outDir := t.TempDir()

	p, err := New(dec, stats.New(), nil, Options{
		Mode:      ModeOrtho,
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatal(err)
	}

	batch := p.Run(context.Background(), frames)
	if !batch.OK() {
		t.Fatalf("Expected clean batch, %d failed", batch.Failed())
	}

	for _, res := range batch.Results {
		m, _, err := export.ReadGeoTIFF(res.Output)
		if err != nil {
			t.Fatalf("Re-reading export %s: %v", res.Output, err)
		}
		original, _, err := dec.Decode(context.Background(), res.Frame)
		if err != nil {
			t.Fatal(err)
		}
		for i, want := range original.Values() {
			if have := m.Values()[i]; have != float64(float32(want)) {
				t.Fatalf("%s pixel %d: expected %v, got %v", res.Frame, i, want, have)
			}
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	dec, frames := newTestDecoder(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := New(dec, stats.New(), newTestRenderer(t), Options{
		Mode:      ModeBasic,
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	batch := p.Run(ctx, frames)
	if batch.OK() {
		t.Error("Expected cancelled batch to report failures")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, nil, nil, Options{Mode: ModeOrtho}); err == nil {
		t.Error("Expected error without decoder")
	}

	dec := decoder.NewStaticDecoder()
	if _, err := New(dec, nil, nil, Options{Mode: ModeBasic}); err == nil {
		t.Error("Expected error for visual mode without renderer")
	}
	if _, err := New(dec, nil, nil, Options{Mode: ModeOrtho}); err != nil {
		t.Errorf("Ortho mode must not require a renderer: %v", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"basic", ModeBasic, false},
		{"zones", ModeZones, false},
		{"ortho", ModeOrtho, false},
		{"", ModeBasic, false},
		{"strefa", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
