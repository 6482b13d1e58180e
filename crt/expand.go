package crt

import "crtscan/config"

// texelRun is the output of a single sample unit on one raster row.
type texelRun [config.UnitTexels]Texel

// narrowSpan describes how one of the eight output texels of a six-sample
// unit is formed. Texels that fall wholly inside a sample copy it. Texels that
// straddle a sample boundary blend the two samples.
//
// sample:  0     1     2     3     4     5
// texel:   0  1  2  3  4  5  6  7
type narrowSpan struct {
	a, b  int
	blend bool
}

var narrowTopology = [config.UnitTexels]narrowSpan{
	{a: 0},
	{a: 0, b: 1, blend: true},
	{a: 1, b: 2, blend: true},
	{a: 2},
	{a: 3},
	{a: 3, b: 4, blend: true},
	{a: 4, b: 5, blend: true},
	{a: 5},
}

// expandUnit converts the pixel data of u into the texels for the upper and
// lower raster rows covered by the unit. Bitmap formats produce identical
// rows. The result depends only on u and the blend table.
func expandUnit(u *SampleUnit, bt *BlendTable) (upper, lower texelRun) {
	switch u.Format {
	case NarrowBitmap:
		var samples [NarrowSamples]Colour
		copy(samples[:], u.Pixels[:NarrowSamples])
		upper = expandNarrow(&samples, bt)
		lower = upper
	case Teletext:
		upper = expandNarrow(resolveTeletext(u, 0), bt)
		lower = expandNarrow(resolveTeletext(u, 1), bt)
	default:
		upper = expandWide(u)
		lower = upper
	}
	return upper, lower
}

func expandWide(u *SampleUnit) (run texelRun) {
	for i, c := range u.Pixels {
		run[i] = PackTexel(replicate8(c.R), replicate8(c.G), replicate8(c.B))
	}
	return run
}

// resolveTeletext picks a colour register for each of the six positions of
// the sub-row.
func resolveTeletext(u *SampleUnit, row int) *[NarrowSamples]Colour {
	var samples [NarrowSamples]Colour
	mask := u.Rows[row]
	for i := range samples {
		samples[i] = u.Colours[(mask>>i)&1]
	}
	return &samples
}

func expandNarrow(samples *[NarrowSamples]Colour, bt *BlendTable) (run texelRun) {
	var r, g, b [NarrowSamples]uint8
	for i, c := range samples {
		r[i] = widen4(c.R)
		g[i] = widen4(c.G)
		b[i] = widen4(c.B)
	}

	for i, span := range narrowTopology {
		if span.blend {
			run[i] = PackTexel(
				bt.Blend(r[span.a], r[span.b]),
				bt.Blend(g[span.a], g[span.b]),
				bt.Blend(b[span.a], b[span.b]),
			)
		} else {
			run[i] = PackTexel(expand4(r[span.a]), expand4(g[span.a]), expand4(b[span.a]))
		}
	}
	return run
}

// plot writes a run at (x, y) in a raster of the given width. Texels that fall
// outside the raster are dropped.
func plot(raster []Texel, width int, x, y int, run *texelRun) {
	if y < 0 || x >= width {
		return
	}
	row := y * width
	if row+x >= len(raster) {
		return
	}
	for i, t := range run {
		if x+i < 0 {
			continue
		}
		if x+i >= width {
			break
		}
		raster[row+x+i] = t
	}
}
