package chart

import (
	"image/color"

	"gonum.org/v1/plot/vg/draw"
)

// seriesColors is the colorblind-safe cycle (Okabe-Ito) every chart
// assigns by series position, wrapping past the end.
var seriesColors = []color.Color{
	color.RGBA{R: 0xe6, G: 0x9f, B: 0x00, A: 0xff}, // orange
	color.RGBA{R: 0x56, G: 0xb4, B: 0xe9, A: 0xff}, // sky blue
	color.RGBA{R: 0x00, G: 0x9e, B: 0x73, A: 0xff}, // bluish green
	color.RGBA{R: 0xd5, G: 0x5e, B: 0x00, A: 0xff}, // vermillion
	color.RGBA{R: 0xcc, G: 0x79, B: 0xa7, A: 0xff}, // reddish purple
	color.RGBA{R: 0x00, G: 0x72, B: 0xb2, A: 0xff}, // blue
	color.RGBA{R: 0xf0, G: 0xe4, B: 0x42, A: 0xff}, // yellow
	color.RGBA{R: 0xd5, G: 0x5e, B: 0x00, A: 0xff}, // vermillion
	color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}, // black
}

// seriesGlyphs is the marker shape cycle for charts drawn with point
// shapes, assigned by position like the colors.
var seriesGlyphs = []draw.GlyphDrawer{
	draw.CircleGlyph{},
	draw.SquareGlyph{},
	draw.TriangleGlyph{},
	draw.PlusGlyph{},
	draw.CrossGlyph{},
	draw.RingGlyph{},
	draw.PyramidGlyph{},
	draw.BoxGlyph{},
}

func seriesColor(i int) color.Color { return seriesColors[i%len(seriesColors)] }

func seriesGlyph(i int) draw.GlyphDrawer { return seriesGlyphs[i%len(seriesGlyphs)] }

// bandColor is the series color turned translucent for spread bands.
func bandColor(i int) color.Color {
	r, g, b, _ := seriesColor(i).RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0x30}
}
