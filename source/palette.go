package source

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"

	"crtscan/config"
	"crtscan/crt"
)

// TeletextPalette is the fixed set of colours a teletext display can show.
var TeletextPalette = color.Palette{
	color.RGBA{0, 0, 0, 255},
	color.RGBA{255, 0, 0, 255},
	color.RGBA{0, 255, 0, 255},
	color.RGBA{255, 255, 0, 255},
	color.RGBA{0, 0, 255, 255},
	color.RGBA{255, 0, 255, 255},
	color.RGBA{0, 255, 255, 255},
	color.RGBA{255, 255, 255, 255},
}

// Reduce builds a palette of at most n colours for img, snapped to the levels
// a raw sample can carry, and dithers img into it.
func Reduce(img image.Image, n int) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, n), img)

	snapped := make(color.Palette, 0, len(p))
	for _, c := range p {
		s := sampleColour(c)
		snapped = append(snapped, color.RGBA{level(s.R), level(s.G), level(s.B), 255})
	}
	if len(snapped) == 0 {
		snapped = append(snapped, color.RGBA{0, 0, 0, 255})
	}

	return Dither(img, snapped)
}

// Dither draws img into a paletted image using Floyd-Steinberg error
// diffusion.
func Dither(img image.Image, p color.Palette) *image.Paletted {
	dst := image.NewPaletted(img.Bounds(), p)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, img.Bounds().Min)
	return dst
}

// sampleColour truncates a colour to the raw sample depth.
func sampleColour(c color.Color) crt.Colour {
	r, g, b, _ := c.RGBA()
	const shift = 16 - config.SampleBits
	return crt.Colour{R: uint8(r >> shift), G: uint8(g >> shift), B: uint8(b >> shift)}
}

// level is the 8-bit intensity shown for a raw sample channel.
func level(v uint8) uint8 {
	return uint8(uint(v) * 255 / config.SampleMax)
}
