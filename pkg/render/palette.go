package render

import (
	"fmt"
	"image/color"
)

// Palette maps a normalized temperature position t in [0,1] to a color.
// Mapping is piecewise-linear interpolation between fixed sRGB stops, so two
// renders of the same input are always pixel-identical.
type Palette struct {
	Name  string
	stops []paletteStop
}

type paletteStop struct {
	pos float64
	c   color.NRGBA
}

// inferno approximates the matplotlib palette of the same name with eight
// fixed stops. Dark purple for cold through orange to pale yellow for hot.
var inferno = Palette{
	Name: "inferno",
	stops: []paletteStop{
		{0.00, color.NRGBA{0, 0, 4, 255}},
		{0.14, color.NRGBA{40, 11, 84, 255}},
		{0.29, color.NRGBA{101, 21, 110, 255}},
		{0.43, color.NRGBA{159, 42, 99, 255}},
		{0.57, color.NRGBA{212, 72, 66, 255}},
		{0.71, color.NRGBA{245, 125, 21, 255}},
		{0.86, color.NRGBA{250, 193, 39, 255}},
		{1.00, color.NRGBA{252, 255, 164, 255}},
	},
}

var grayscale = Palette{
	Name: "grayscale",
	stops: []paletteStop{
		{0.00, color.NRGBA{0, 0, 0, 255}},
		{1.00, color.NRGBA{255, 255, 255, 255}},
	},
}

// LookupPalette resolves a configured palette name.
func LookupPalette(name string) (Palette, error) {
	switch name {
	case "", "inferno":
		return inferno, nil
	case "grayscale":
		return grayscale, nil
	}
	return Palette{}, &RenderError{Reason: fmt.Sprintf("unknown palette %q", name)}
}

// Map returns the color for a normalized position. Positions outside [0,1]
// clamp to the palette ends.
func (p Palette) Map(t float64) color.NRGBA {
	if t <= p.stops[0].pos {
		return p.stops[0].c
	}
	last := p.stops[len(p.stops)-1]
	if t >= last.pos {
		return last.c
	}
	for i := 1; i < len(p.stops); i++ {
		if t > p.stops[i].pos {
			continue
		}
		a, b := p.stops[i-1], p.stops[i]
		f := (t - a.pos) / (b.pos - a.pos)
		return color.NRGBA{
			R: lerp(a.c.R, b.c.R, f),
			G: lerp(a.c.G, b.c.G, f),
			B: lerp(a.c.B, b.c.B, f),
			A: 255,
		}
	}
	return last.c
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + f*(float64(b)-float64(a)) + 0.5)
}
