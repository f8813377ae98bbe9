package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Low-level drawing helpers. All writes clip against the canvas bounds so
// overlay placement near edges stays safe on small frames.

func setPix(img *image.NRGBA, x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= img.Bounds().Dx() || y >= img.Bounds().Dy() {
		return
	}
	i := y*img.Stride + x*4
	img.Pix[i+0] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}

// blendPix mixes c into the existing pixel with the given opacity using
// integer-rounded arithmetic, keeping the composite deterministic.
func blendPix(img *image.NRGBA, x, y int, c color.NRGBA, alpha float64) {
	if x < 0 || y < 0 || x >= img.Bounds().Dx() || y >= img.Bounds().Dy() {
		return
	}
	i := y*img.Stride + x*4
	mix := func(base, tint uint8) uint8 {
		return uint8(float64(base)*(1-alpha) + float64(tint)*alpha + 0.5)
	}
	img.Pix[i+0] = mix(img.Pix[i+0], c.R)
	img.Pix[i+1] = mix(img.Pix[i+1], c.G)
	img.Pix[i+2] = mix(img.Pix[i+2], c.B)
	img.Pix[i+3] = 255
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

// drawCross draws a plus-shaped marker centered on (x, y).
func drawCross(img *image.NRGBA, x, y int, c color.NRGBA, size, stroke int) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, y-stroke/2+s, x-size, x+size+1, c)
		drawVLine(img, x-stroke/2+s, y-size, y+size+1, c)
	}
}

// drawText writes a string with its baseline at (x, y) using the fixed
// bitmap face, so text rendering carries no font-rasterization variance.
func drawText(img *image.NRGBA, x, y int, s string, c color.NRGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawLabel centers a value label horizontally on x with a one-pixel dark
// shadow for readability over arbitrary palette colors.
func drawLabel(img *image.NRGBA, x, y int, s string, c color.NRGBA) {
	w := font.MeasureString(basicfont.Face7x13, s).Ceil()
	x -= w / 2
	drawText(img, x+1, y+1, s, color.NRGBA{0, 0, 0, 255})
	drawText(img, x, y, s, c)
}

// compositeOver alpha-composites src onto dst with its top-left corner at
// (x, y).
func compositeOver(dst *image.NRGBA, src image.Image, x, y int) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(image.Pt(x, y))
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}
