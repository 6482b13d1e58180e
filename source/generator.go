package source

import (
	"image"
	"sync"

	"golang.org/x/image/draw"

	"crtscan/config"
	"crtscan/crt"
)

// pixels per sample unit in the native resolution of each format
func unitPixels(f crt.Format) int {
	if f == crt.WideBitmap {
		return config.UnitTexels
	}
	return crt.NarrowSamples
}

// Generator produces the sample unit stream of a video chip displaying a
// still image. The image can be replaced at any time by another goroutine.
type Generator struct {
	timing    config.Timing
	format    crt.Format
	interlace bool

	// number of fields emitted
	field int

	// the loaded image at the native resolution of the format: one row per
	// line for the bitmap formats, two rows per line for teletext
	screen      []crt.Colour
	width       int
	height      int
	screenMutex sync.RWMutex
}

// NewGenerator creates a generator for the timing and format. The screen is
// black until an image is loaded.
func NewGenerator(timing config.Timing, format crt.Format) *Generator {
	g := &Generator{
		timing: timing,
		format: format,
	}
	g.width = timing.ActiveUnits * unitPixels(format)
	g.height = timing.FieldLines
	if format == crt.Teletext {
		g.height *= 2
	}
	g.screen = make([]crt.Colour, g.width*g.height)
	return g
}

// Format of the units produced by the generator.
func (g *Generator) Format() crt.Format {
	return g.format
}

// Bounds of the native resolution.
func (g *Generator) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.width, g.height)
}

// SetInterlace makes every odd field end half way along a line.
func (g *Generator) SetInterlace(interlace bool) {
	g.interlace = interlace
}

// Load scales img to the native resolution, reduces it to the colours the
// format can show and makes it the displayed image.
func (g *Generator) Load(img image.Image) {
	scaled := image.NewRGBA(g.Bounds())
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	var reduced *image.Paletted
	switch g.format {
	case crt.Teletext:
		reduced = Dither(scaled, TeletextPalette)
	case crt.NarrowBitmap:
		reduced = Reduce(scaled, 4)
	default:
		reduced = Reduce(scaled, 16)
	}

	g.screenMutex.Lock()
	defer g.screenMutex.Unlock()
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			g.screen[y*g.width+x] = sampleColour(reduced.At(x, y))
		}
	}
}

// LoadRGB24 loads a packed rgb24 frame of the given size.
func (g *Generator) LoadRGB24(buf []byte, width, height int) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height && i*3+2 < len(buf); i++ {
		img.Pix[i*4] = buf[i*3]
		img.Pix[i*4+1] = buf[i*3+1]
		img.Pix[i*4+2] = buf[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	g.Load(img)
}

// Field emits the units of one field: the visible lines, then vsync and the
// vertical blank. The display is expected to be drawing the first line when
// the field starts.
func (g *Generator) Field(emit func(u *crt.SampleUnit)) {
	g.screenMutex.RLock()
	defer g.screenMutex.RUnlock()

	var u crt.SampleUnit

	for line := 0; line < g.timing.FieldLines; line++ {
		for k := 0; k < g.timing.LineUnits; k++ {
			if k < g.timing.ActiveUnits {
				g.unit(&u, line, k)
			} else {
				g.blank(&u)
				u.HSync = k < g.timing.ActiveUnits+g.timing.HorizontalRetraceUnits
			}
			emit(&u)
		}
	}

	// odd interlaced fields run half a line longer so that vsync arrives in
	// the second half of the line
	if g.interlace && g.field%2 == 1 {
		g.blank(&u)
		for k := 0; k < g.timing.ActiveUnits/2; k++ {
			emit(&u)
		}
	}

	g.blank(&u)
	u.VSync = true
	emit(&u)

	g.blank(&u)
	for k := 0; k < 1+g.timing.VerticalBlankLines*g.timing.LineUnits; k++ {
		emit(&u)
	}

	g.field++
}

// Fields returns the number of fields emitted so far.
func (g *Generator) Fields() int {
	return g.field
}

func (g *Generator) blank(u *crt.SampleUnit) {
	*u = crt.SampleUnit{Format: g.format}
}

func (g *Generator) unit(u *crt.SampleUnit, line, k int) {
	*u = crt.SampleUnit{Format: g.format}

	switch g.format {
	case crt.Teletext:
		upper := g.screen[(line*2)*g.width+k*crt.NarrowSamples:]
		lower := g.screen[(line*2+1)*g.width+k*crt.NarrowSamples:]
		encodeTeletext(u, upper[:crt.NarrowSamples], lower[:crt.NarrowSamples])
	default:
		n := unitPixels(g.format)
		copy(u.Pixels[:n], g.screen[line*g.width+k*n:])
	}
}

// encodeTeletext picks the two most common colours of the twelve pixels as
// the colour registers. Pixels of any other colour are shown in the
// background colour.
func encodeTeletext(u *crt.SampleUnit, upper, lower []crt.Colour) {
	var counts [2]int
	var regs [2]crt.Colour
	var seen [crt.NarrowSamples * 2]crt.Colour
	var seenCount [crt.NarrowSamples * 2]int
	n := 0

	for _, row := range [][]crt.Colour{upper, lower} {
		for _, c := range row {
			i := 0
			for ; i < n; i++ {
				if seen[i] == c {
					break
				}
			}
			if i == n {
				seen[n] = c
				n++
			}
			seenCount[i]++
		}
	}

	for i := 0; i < n; i++ {
		switch {
		case seenCount[i] > counts[0]:
			counts[1], regs[1] = counts[0], regs[0]
			counts[0], regs[0] = seenCount[i], seen[i]
		case seenCount[i] > counts[1]:
			counts[1], regs[1] = seenCount[i], seen[i]
		}
	}
	if counts[1] == 0 {
		regs[1] = regs[0]
	}

	u.Colours = regs
	for i := 0; i < crt.NarrowSamples; i++ {
		if upper[i] == regs[1] && regs[1] != regs[0] {
			u.Rows[0] |= 1 << i
		}
		if lower[i] == regs[1] && regs[1] != regs[0] {
			u.Rows[1] |= 1 << i
		}
	}
}
