// Package thermalanalyzer converts drone-captured radiometric thermal frames
// into per-pixel temperature data and derived analysis products.
//
// A captured frame is decoded into a dense temperature matrix by an injected
// radiometric decoder (the vendor SDK, or any substitute implementing
// decoder.Decoder). From that single immutable matrix the package derives
// per-frame statistics, a median-relative zone classification, an annotated
// visualization, and a numerically faithful GeoTIFF export for
// photogrammetric stitching.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		thermalanalyzer "github.com/termoscan/thermal-analyzer"
//		"github.com/termoscan/thermal-analyzer/pkg/decoder"
//		"github.com/termoscan/thermal-analyzer/pkg/render"
//	)
//
//	func main() {
//		dec, err := decoder.NewSDKDecoder("./dji_libs")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		analyzer, err := thermalanalyzer.New(dec, render.Config{Palette: "inferno", ShowLegend: true})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := analyzer.AnalyzeFrame(context.Background(), "DJI_20240612093045_0001_T.JPG", 5, 5)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("median %.1f degC, %d pixels above band\n",
//			result.Stats.Median, result.ZoneCounts["above"])
//	}
//
// The package consists of five main components:
//
// 1. Decoder (pkg/decoder): radiometric decode behind a swappable interface
// 2. Stats (pkg/stats): exact order-statistic summary of a frame
// 3. Zones (pkg/zones): median-relative zone classification
// 4. Render (pkg/render): deterministic annotated visualizations
// 5. Export (pkg/export): lossless single-band float32 GeoTIFF output
//
// Batch processing over whole capture directories, including the worker pool
// and per-frame failure reporting, lives in pkg/pipeline and is what the CLI
// under cmd/thermal-analyzer drives.
package thermalanalyzer

import (
	"context"
	"fmt"
	"image"

	"github.com/termoscan/thermal-analyzer/pkg/decoder"
	"github.com/termoscan/thermal-analyzer/pkg/export"
	"github.com/termoscan/thermal-analyzer/pkg/render"
	"github.com/termoscan/thermal-analyzer/pkg/stats"
	"github.com/termoscan/thermal-analyzer/pkg/thermal"
	"github.com/termoscan/thermal-analyzer/pkg/zones"
)

// Version of the thermal analyzer library
const Version = "1.0.0"

// Analyzer provides a high-level interface over the per-frame processing
// chain for callers that do not need the batch pipeline.
type Analyzer struct {
	decoder  decoder.Decoder
	engine   *stats.Engine
	renderer *render.Renderer
}

// New creates an Analyzer around the given radiometric decoder and render
// configuration.
func New(dec decoder.Decoder, renderCfg render.Config) (*Analyzer, error) {
	if dec == nil {
		return nil, fmt.Errorf("analyzer requires a decoder")
	}
	renderer, err := render.New(renderCfg)
	if err != nil {
		return nil, err
	}
	return &Analyzer{decoder: dec, engine: stats.New(), renderer: renderer}, nil
}

// NewWithPercentiles creates an Analyzer whose statistics additionally report
// the given percentile bands.
func NewWithPercentiles(dec decoder.Decoder, renderCfg render.Config, bands []float64) (*Analyzer, error) {
	a, err := New(dec, renderCfg)
	if err != nil {
		return nil, err
	}
	engine, err := stats.NewWithBands(bands)
	if err != nil {
		return nil, err
	}
	a.engine = engine
	return a, nil
}

// FrameAnalysis bundles everything derived from a single frame.
type FrameAnalysis struct {
	Metadata   *thermal.FrameMetadata `json:"metadata"`
	Stats      stats.Frame            `json:"stats"`
	ZoneCounts map[string]int         `json:"zone_counts"`
}

// AnalyzeFrame decodes one frame and derives its statistics and zone
// distribution for the band [median-lowOffset, median+highOffset].
func (a *Analyzer) AnalyzeFrame(ctx context.Context, path string, lowOffset, highOffset float64) (*FrameAnalysis, error) {
	matrix, md, err := a.decoder.Decode(ctx, path)
	if err != nil {
		return nil, err
	}

	st, err := a.engine.Compute(matrix)
	if err != nil {
		return nil, err
	}

	zm, err := zones.Classify(matrix, st, lowOffset, highOffset)
	if err != nil {
		return nil, err
	}

	return &FrameAnalysis{
		Metadata: md,
		Stats:    st,
		ZoneCounts: map[string]int{
			zones.Below.String():   zm.Count(zones.Below),
			zones.InRange.String(): zm.Count(zones.InRange),
			zones.Above.String():   zm.Count(zones.Above),
		},
	}, nil
}

// RenderFrame decodes one frame and produces its annotated temperature view.
func (a *Analyzer) RenderFrame(ctx context.Context, path string) (image.Image, error) {
	matrix, md, err := a.decoder.Decode(ctx, path)
	if err != nil {
		return nil, err
	}
	st, err := a.engine.Compute(matrix)
	if err != nil {
		return nil, err
	}
	return a.renderer.RenderTemperature(matrix, st, md)
}

// RenderZoneFrame decodes one frame and produces its annotated zone view.
func (a *Analyzer) RenderZoneFrame(ctx context.Context, path string, lowOffset, highOffset float64) (image.Image, error) {
	matrix, md, err := a.decoder.Decode(ctx, path)
	if err != nil {
		return nil, err
	}
	st, err := a.engine.Compute(matrix)
	if err != nil {
		return nil, err
	}
	zm, err := zones.Classify(matrix, st, lowOffset, highOffset)
	if err != nil {
		return nil, err
	}
	return a.renderer.RenderZones(matrix, st, zm, md, lowOffset, highOffset)
}

// ExportFrame decodes one frame and writes its numeric GeoTIFF to outPath.
func (a *Analyzer) ExportFrame(ctx context.Context, path, outPath string) error {
	matrix, md, err := a.decoder.Decode(ctx, path)
	if err != nil {
		return err
	}
	return export.WriteGeoTIFF(matrix, md, outPath)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
