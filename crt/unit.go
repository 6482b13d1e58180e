package crt

import (
	"fmt"
	"strings"

	"crtscan/config"
)

// Format identifies how the pixel data in a SampleUnit is encoded.
type Format uint8

const (
	// WideBitmap carries eight samples, one per output texel.
	WideBitmap Format = iota
	// NarrowBitmap carries six samples spread over eight output texels.
	NarrowBitmap
	// Teletext carries two colour registers and six index bits for each of
	// two interleaved sub-rows.
	Teletext
)

func (f Format) String() string {
	switch f {
	case WideBitmap:
		return "wide"
	case NarrowBitmap:
		return "narrow"
	case Teletext:
		return "teletext"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseFormat is the inverse of Format.String().
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "wide":
		return WideBitmap, nil
	case "narrow":
		return NarrowBitmap, nil
	case "teletext":
		return Teletext, nil
	}
	return 0, fmt.Errorf("unknown sample format: %s", s)
}

// NarrowSamples is the number of samples used by the six-sample formats.
const NarrowSamples = 6

// Colour is a raw colour sample. Each channel is config.SampleBits deep.
type Colour struct {
	R, G, B uint8
}

// Clamp limits each channel to the raw sample range.
func (c Colour) Clamp() Colour {
	if c.R > config.SampleMax {
		c.R = config.SampleMax
	}
	if c.G > config.SampleMax {
		c.G = config.SampleMax
	}
	if c.B > config.SampleMax {
		c.B = config.SampleMax
	}
	return c
}

// SampleUnit is one pixel-clock tick of video output.
//
// For Teletext the Rows masks select, bit 0 first, between Colours[0] (bit
// clear) and Colours[1] (bit set). Rows[0] is drawn on the upper raster row
// and Rows[1] on the lower one.
type SampleUnit struct {
	Format Format
	Pixels [config.UnitTexels]Colour

	Colours [2]Colour
	Rows    [2]uint8

	HSync bool
	VSync bool
}

func (u SampleUnit) String() string {
	s := strings.Builder{}
	s.WriteString(u.Format.String())
	if u.HSync {
		s.WriteString(" HSYNC")
	}
	if u.VSync {
		s.WriteString(" VSYNC")
	}
	return s.String()
}
