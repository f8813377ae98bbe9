// Package pipeline sequences the per-frame processing chain: decode,
// statistics, then classification, rendering or numeric export depending on
// the selected mode.
//
// Frames are independent, so the batch runs on a worker pool with no shared
// mutable state; the decode call is the only entry into uncontrolled external
// code and is serialized inside the SDK decoder itself. A failing frame is
// reported and skipped, never aborting the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/termoscan/thermal-analyzer/internal/log"
	"github.com/termoscan/thermal-analyzer/internal/utils"
	"github.com/termoscan/thermal-analyzer/pkg/decoder"
	"github.com/termoscan/thermal-analyzer/pkg/export"
	"github.com/termoscan/thermal-analyzer/pkg/render"
	"github.com/termoscan/thermal-analyzer/pkg/stats"
	"github.com/termoscan/thermal-analyzer/pkg/thermal"
	"github.com/termoscan/thermal-analyzer/pkg/zones"
)

// Mode selects which outputs a batch run produces.
type Mode string

const (
	// ModeBasic produces the annotated temperature view.
	ModeBasic Mode = "basic"
	// ModeZones produces the annotated zone-classification view.
	ModeZones Mode = "zones"
	// ModeOrtho produces the geometry-preserving numeric raster for
	// orthomosaic stitching.
	ModeOrtho Mode = "ortho"
)

// ParseMode resolves a mode name from configuration or the command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBasic, ModeZones, ModeOrtho:
		return Mode(s), nil
	case "":
		return ModeBasic, nil
	}
	return "", fmt.Errorf("unknown mode %q (use basic, zones or ortho)", s)
}

// Options holds the batch-wide processing settings, supplied once per run and
// applied uniformly to all frames.
type Options struct {
	Mode       Mode
	OutputDir  string
	Format     string
	Quality    int
	LowOffset  float64
	HighOffset float64
	// Workers bounds the number of frames in flight. Values below one mean
	// sequential processing.
	Workers int
}

// FrameResult is the outcome of processing a single frame.
type FrameResult struct {
	Frame  string
	Output string
	Stats  stats.Frame
	Err    error
}

// ErrorKind names the failure category for reporting.
func (r FrameResult) ErrorKind() string {
	if r.Err == nil {
		return ""
	}
	var decodeErr *decoder.DecodeError
	var inputErr *thermal.InvalidInputError
	var renderErr *render.RenderError
	var ioErr *export.IOError
	switch {
	case errors.As(r.Err, &decodeErr):
		return "decode"
	case errors.As(r.Err, &inputErr):
		return "invalid-input"
	case errors.As(r.Err, &renderErr):
		return "render"
	case errors.As(r.Err, &ioErr):
		return "io"
	}
	return "error"
}

// BatchResult collects the per-frame outcomes of one run.
type BatchResult struct {
	Results []FrameResult
}

// Failed returns the number of frames that produced no output.
func (b *BatchResult) Failed() int {
	n := 0
	for _, r := range b.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Succeeded returns the number of frames whose outputs were written.
func (b *BatchResult) Succeeded() int {
	return len(b.Results) - b.Failed()
}

// OK reports whether every frame in the batch succeeded.
func (b *BatchResult) OK() bool {
	return b.Failed() == 0
}

// Pipeline wires the decoder, statistics engine and output writers together.
// All components are injected at construction; the pipeline itself holds no
// cross-frame state.
type Pipeline struct {
	decoder  decoder.Decoder
	engine   *stats.Engine
	renderer *render.Renderer
	opts     Options
}

// New creates a pipeline. The renderer may be nil for ModeOrtho, which never
// renders.
func New(dec decoder.Decoder, engine *stats.Engine, renderer *render.Renderer, opts Options) (*Pipeline, error) {
	if dec == nil {
		return nil, fmt.Errorf("pipeline requires a decoder")
	}
	if engine == nil {
		engine = stats.New()
	}
	if opts.Mode != ModeOrtho && renderer == nil {
		return nil, fmt.Errorf("mode %s requires a renderer", opts.Mode)
	}
	if opts.Format == "" {
		opts.Format = "jpg"
	}
	if opts.Quality <= 0 {
		opts.Quality = 90
	}
	return &Pipeline{decoder: dec, engine: engine, renderer: renderer, opts: opts}, nil
}

// Run processes every frame in the batch. Per-frame failures are recorded
// and logged, not propagated; cancelling ctx stops scheduling new frames.
func (p *Pipeline) Run(ctx context.Context, frames []string) *BatchResult {
	batch := &BatchResult{Results: make([]FrameResult, len(frames))}

	g, ctx := errgroup.WithContext(ctx)
	workers := p.opts.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, frame := range frames {
		i, frame := i, frame
		if ctx.Err() != nil {
			batch.Results[i] = FrameResult{Frame: frame, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			batch.Results[i] = p.processFrame(ctx, frame)
			if res := batch.Results[i]; res.Err != nil {
				log.Errorw("frame failed", "frame", res.Frame, "kind", res.ErrorKind(), "error", res.Err)
			} else {
				log.Infow("frame processed", "frame", res.Frame, "output", res.Output,
					"min", res.Stats.Min, "max", res.Stats.Max, "median", res.Stats.Median)
			}
			return nil
		})
	}
	g.Wait()

	return batch
}

// processFrame runs the full chain for one frame. The matrix produced by the
// decode is owned by this call and never escapes it.
func (p *Pipeline) processFrame(ctx context.Context, frame string) FrameResult {
	result := FrameResult{Frame: frame}

	matrix, md, err := p.decoder.Decode(ctx, frame)
	if err != nil {
		result.Err = err
		return result
	}

	st, err := p.engine.Compute(matrix)
	if err != nil {
		result.Err = err
		return result
	}
	result.Stats = st

	switch p.opts.Mode {
	case ModeZones:
		zm, err := zones.Classify(matrix, st, p.opts.LowOffset, p.opts.HighOffset)
		if err != nil {
			result.Err = err
			return result
		}
		img, err := p.renderer.RenderZones(matrix, st, zm, md, p.opts.LowOffset, p.opts.HighOffset)
		if err != nil {
			result.Err = err
			return result
		}
		result.Output = utils.OutputName(frame, p.opts.OutputDir, "_zones", p.opts.Format)
		result.Err = saveRaster(img, result.Output, p.opts.Format, p.opts.Quality)

	case ModeOrtho:
		result.Output = utils.OutputName(frame, p.opts.OutputDir, "", "tif")
		result.Err = export.WriteGeoTIFF(matrix, md, result.Output)

	default: // ModeBasic
		img, err := p.renderer.RenderTemperature(matrix, st, md)
		if err != nil {
			result.Err = err
			return result
		}
		result.Output = utils.OutputName(frame, p.opts.OutputDir, "_basic", p.opts.Format)
		result.Err = saveRaster(img, result.Output, p.opts.Format, p.opts.Quality)
	}

	if result.Err != nil {
		result.Output = ""
	}
	return result
}

// saveRaster writes an annotated raster, folding write failures into the io
// error kind so visualization and export failures report alike.
func saveRaster(img image.Image, path, format string, quality int) error {
	if err := render.Save(img, path, format, quality); err != nil {
		return &export.IOError{Path: path, Err: err}
	}
	return nil
}
