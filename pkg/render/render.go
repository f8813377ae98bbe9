// Package render produces annotated, human-viewable rasters from temperature
// matrices and zone classifications.
//
// Rendering is deterministic: the palette is a fixed piecewise-linear ramp,
// overlay placement is computed from integer geometry only, and no randomness
// or time-dependent input is involved, so two renders of the same matrix and
// configuration are byte-identical.
package render

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/termoscan/thermal-analyzer/pkg/stats"
	"github.com/termoscan/thermal-analyzer/pkg/thermal"
	"github.com/termoscan/thermal-analyzer/pkg/zones"
)

// Footer and legend geometry, in pixels.
const (
	footerHeight  = 78
	legendWidth   = 12
	legendMargin  = 16
	crossSize     = 7
	crossStroke   = 2
	zoneTintAlpha = 0.45
)

// Zone overlay colors: colder than the band tints blue, hotter tints red,
// in-range pixels keep the underlying palette color.
var (
	zoneBelowTint = color.NRGBA{0, 90, 255, 255}
	zoneAboveTint = color.NRGBA{255, 40, 0, 255}
)

// RenderError reports a missing overlay resource or an unusable render
// configuration.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render: %s: %v", e.Reason, e.Err)
	}
	return "render: " + e.Reason
}

func (e *RenderError) Unwrap() error { return e.Err }

// Config holds the visual options applied uniformly to every frame in a
// batch.
type Config struct {
	Palette string
	// UseFixedBounds maps temperatures against [FixedMin, FixedMax] instead
	// of the per-frame [min, max].
	UseFixedBounds bool
	FixedMin       float64
	FixedMax       float64
	LogoPath       string
	LogoSize       int
	OrgName        string
	ShowLegend     bool
}

// Renderer turns matrices into annotated rasters. It is immutable after
// construction and safe for concurrent use.
type Renderer struct {
	cfg     Config
	palette Palette
	logo    *image.NRGBA
}

// New creates a Renderer, resolving the palette and loading the logo once up
// front so a broken configuration fails before any frame is processed.
func New(cfg Config) (*Renderer, error) {
	palette, err := LookupPalette(cfg.Palette)
	if err != nil {
		return nil, err
	}

	r := &Renderer{cfg: cfg, palette: palette}

	if cfg.LogoPath != "" {
		size := cfg.LogoSize
		if size <= 0 {
			size = 96
		}
		logo, err := loadLogo(cfg.LogoPath, size)
		if err != nil {
			return nil, &RenderError{Reason: "logo resource unreadable: " + cfg.LogoPath, Err: err}
		}
		r.logo = logo
	}

	return r, nil
}

// RenderTemperature renders the continuous temperature view: every pixel is
// mapped through the palette, then the legend, markers, logo and footer are
// composited on top.
func (r *Renderer) RenderTemperature(m *thermal.Matrix, st stats.Frame, md *thermal.FrameMetadata) (*image.NRGBA, error) {
	if m == nil || m.Len() == 0 {
		return nil, &thermal.InvalidInputError{Reason: "cannot render an empty matrix"}
	}

	lo, hi := r.bounds(st)
	canvas := r.newCanvas(m.Width(), m.Height())
	r.paintHeatmap(canvas, m, lo, hi)

	if r.cfg.ShowLegend {
		r.drawColorbar(canvas, m.Width(), m.Height(), lo, hi)
	}
	r.drawExtremeMarkers(canvas, m, st)
	r.drawLogo(canvas, m.Width())
	r.drawFooter(canvas, m, st, md, "")

	return canvas, nil
}

// RenderZones renders the zone-classification view: the continuous base with
// below/above tints composited over it, a discrete zone legend, and the zone
// band noted in the footer.
func (r *Renderer) RenderZones(m *thermal.Matrix, st stats.Frame, zm *zones.Map, md *thermal.FrameMetadata, lowOffset, highOffset float64) (*image.NRGBA, error) {
	if m == nil || m.Len() == 0 {
		return nil, &thermal.InvalidInputError{Reason: "cannot render an empty matrix"}
	}
	if zm == nil || zm.Width() != m.Width() || zm.Height() != m.Height() {
		return nil, &thermal.InvalidInputError{Reason: "zone map dimensions do not match the matrix"}
	}

	lo, hi := r.bounds(st)
	canvas := r.newCanvas(m.Width(), m.Height())
	r.paintHeatmap(canvas, m, lo, hi)
	r.tintZones(canvas, zm)

	if r.cfg.ShowLegend {
		r.drawZoneLegend(canvas)
	}
	r.drawExtremeMarkers(canvas, m, st)
	r.drawLogo(canvas, m.Width())

	band := fmt.Sprintf("Zone band: %.1f to %.1f degC (median %.1f -%.1f/+%.1f)",
		st.Median-lowOffset, st.Median+highOffset, st.Median, lowOffset, highOffset)
	r.drawFooter(canvas, m, st, md, band)

	return canvas, nil
}

// bounds picks the palette mapping range: configured fixed bounds when set,
// otherwise the per-frame extremes.
func (r *Renderer) bounds(st stats.Frame) (float64, float64) {
	if r.cfg.UseFixedBounds {
		return r.cfg.FixedMin, r.cfg.FixedMax
	}
	return st.Min, st.Max
}

// newCanvas allocates the output raster: the frame area plus a white footer
// band below it.
func (r *Renderer) newCanvas(w, h int) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h+footerHeight))
	white := color.NRGBA{255, 255, 255, 255}
	for y := h; y < h+footerHeight; y++ {
		drawHLine(canvas, y, 0, w, white)
	}
	return canvas
}

// paintHeatmap maps every temperature through the palette. Degenerate bounds
// (lo == hi, a perfectly flat frame) fall back to the mid-palette color for
// the whole frame instead of dividing by zero.
func (r *Renderer) paintHeatmap(canvas *image.NRGBA, m *thermal.Matrix, lo, hi float64) {
	values := m.Values()
	w := m.Width()

	if hi <= lo {
		flat := r.palette.Map(0.5)
		for i := range values {
			setPix(canvas, i%w, i/w, flat)
		}
		return
	}

	span := hi - lo
	for i, v := range values {
		setPix(canvas, i%w, i/w, r.palette.Map((v-lo)/span))
	}
}

// tintZones composites the discrete zone colors over the base. In-range
// pixels stay untouched.
func (r *Renderer) tintZones(canvas *image.NRGBA, zm *zones.Map) {
	w := zm.Width()
	for i, z := range zm.Cells() {
		switch z {
		case zones.Below:
			blendPix(canvas, i%w, i/w, zoneBelowTint, zoneTintAlpha)
		case zones.Above:
			blendPix(canvas, i%w, i/w, zoneAboveTint, zoneTintAlpha)
		}
	}
}

// drawExtremeMarkers puts crosshairs with value labels on the hottest and
// coldest pixels. Ties resolve to the first occurrence in row-major order so
// the markers are stable across renders.
func (r *Renderer) drawExtremeMarkers(canvas *image.NRGBA, m *thermal.Matrix, st stats.Frame) {
	minIdx, maxIdx := 0, 0
	values := m.Values()
	for i, v := range values {
		if v < values[minIdx] {
			minIdx = i
		}
		if v > values[maxIdx] {
			maxIdx = i
		}
	}

	w := m.Width()
	red := color.NRGBA{255, 0, 0, 255}
	cyan := color.NRGBA{0, 255, 255, 255}

	drawCross(canvas, maxIdx%w, maxIdx/w, red, crossSize, crossStroke)
	drawLabel(canvas, maxIdx%w, maxIdx/w-crossSize-4, fmt.Sprintf("%.1f degC", st.Max), red)

	drawCross(canvas, minIdx%w, minIdx/w, cyan, crossSize, crossStroke)
	drawLabel(canvas, minIdx%w, minIdx/w+crossSize+12, fmt.Sprintf("%.1f degC", st.Min), cyan)
}

// drawColorbar draws the vertical palette-to-temperature legend along the
// right edge of the frame area. Hot is at the top.
func (r *Renderer) drawColorbar(canvas *image.NRGBA, w, h int, lo, hi float64) {
	barH := h - 2*legendMargin
	if barH < 2*legendWidth || w < 6*legendWidth {
		return
	}
	x0 := w - legendMargin - legendWidth

	for dy := 0; dy < barH; dy++ {
		t := 1 - float64(dy)/float64(barH-1)
		c := r.palette.Map(t)
		if hi <= lo {
			c = r.palette.Map(0.5)
		}
		drawHLine(canvas, legendMargin+dy, x0, x0+legendWidth, c)
	}

	border := color.NRGBA{255, 255, 255, 255}
	drawHLine(canvas, legendMargin-1, x0-1, x0+legendWidth+1, border)
	drawHLine(canvas, legendMargin+barH, x0-1, x0+legendWidth+1, border)
	drawVLine(canvas, x0-1, legendMargin-1, legendMargin+barH+1, border)
	drawVLine(canvas, x0+legendWidth, legendMargin-1, legendMargin+barH+1, border)

	drawLabel(canvas, x0-2, legendMargin+9, fmt.Sprintf("%.1f", hi), border)
	drawLabel(canvas, x0-2, legendMargin+barH-2, fmt.Sprintf("%.1f", lo), border)
}

// drawZoneLegend stacks the three discrete zone swatches with labels in the
// top-left corner of the frame area.
func (r *Renderer) drawZoneLegend(canvas *image.NRGBA) {
	entries := []struct {
		label string
		c     color.NRGBA
	}{
		{zones.Above.String(), zoneAboveTint},
		{zones.InRange.String(), color.NRGBA{200, 200, 200, 255}},
		{zones.Below.String(), zoneBelowTint},
	}

	for i, e := range entries {
		y := legendMargin + i*18
		for dy := 0; dy < 12; dy++ {
			drawHLine(canvas, y+dy, legendMargin, legendMargin+12, e.c)
		}
		drawText(canvas, legendMargin+18, y+10, e.label, color.NRGBA{255, 255, 255, 255})
	}
}

// drawLogo composites the logo into the top-right corner of the frame area.
func (r *Renderer) drawLogo(canvas *image.NRGBA, frameWidth int) {
	if r.logo == nil {
		return
	}
	x0 := frameWidth - r.logo.Bounds().Dx() - 8
	if x0 < 0 {
		x0 = 0
	}
	compositeOver(canvas, r.logo, x0, 8)
}

// drawFooter writes the organization name, capture provenance, and the
// per-frame measurement summary into the white band below the frame.
func (r *Renderer) drawFooter(canvas *image.NRGBA, m *thermal.Matrix, st stats.Frame, md *thermal.FrameMetadata, zoneInfo string) {
	h := m.Height()
	black := color.NRGBA{0, 0, 0, 255}

	drawHLine(canvas, h+4, 4, m.Width()-4, black)

	y := h + 24
	if r.cfg.OrgName != "" {
		// Double strike for a faux-bold title.
		drawText(canvas, 8, y, r.cfg.OrgName, black)
		drawText(canvas, 9, y, r.cfg.OrgName, black)
	}

	sensor := "unknown sensor"
	captured := "unknown date"
	if md != nil {
		if md.SensorModel != "" {
			sensor = md.SensorModel
		}
		if !md.CapturedAt.IsZero() {
			captured = md.CapturedAt.Format("02.01.2006 15:04:05")
		}
	}
	info := fmt.Sprintf("Sensor: %s (%dx%d)  |  Date: %s", sensor, m.Width(), m.Height(), captured)
	if zoneInfo != "" {
		info += "  |  " + zoneInfo
	}
	drawText(canvas, 8, y+18, info, black)

	summary := fmt.Sprintf("MIN: %.1f degC  |  MAX: %.1f degC  |  Mean: %.1f degC  |  Median: %.1f degC",
		st.Min, st.Max, st.Mean, st.Median)
	drawText(canvas, 8, y+36, summary, black)
}

// loadLogo opens and resizes the configured logo. WebP logos that the
// registered decoders miss get an explicit fallback decode.
func loadLogo(path string, size int) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, err
		}
		defer f.Close()
		img, err = webp.Decode(f)
		if err != nil {
			return nil, err
		}
	}
	return imaging.Resize(img, size, size, imaging.Lanczos), nil
}

// Save writes an annotated raster with the requested format and quality.
func Save(img image.Image, path, format string, quality int) error {
	switch format {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Quality: float32(quality)})
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}
