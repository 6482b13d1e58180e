package crt

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"crtscan/config"
)

// Display turns a stream of sample units into a raster image and hands
// completed fields to a consumer.
//
// Advance(), SetGamma(), SetInterlace() and the beam queries belong to the
// producer goroutine. Version(), Acquire(), View() and CopySnapshot() may be
// called from any goroutine.
type Display struct {
	width  int
	height int

	// raster is written only by the producer
	raster []Texel

	// snapshot of the most recently completed field
	snapshot      []Texel
	snapshotMutex sync.Mutex

	// incremented once per completed field, while snapshotMutex is held
	version atomic.Uint64

	scanner scanner
	state   ScanState
	blend   *BlendTable

	forcedHRetrace atomic.Uint64
	forcedVRetrace atomic.Uint64
}

// Stats counts the fields completed by a Display and the retraces that had to
// be forced because the source did not supply sync.
type Stats struct {
	Fields         uint64
	ForcedHRetrace uint64
	ForcedVRetrace uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("fields: %d, forced hretrace: %d, forced vretrace: %d", s.Fields, s.ForcedHRetrace, s.ForcedVRetrace)
}

// New creates a Display for the timing. The raster starts black and the
// scan starts at the top left of the raster in Scanout.
func New(timing config.Timing) (*Display, error) {
	if err := timing.Validate(); err != nil {
		return nil, fmt.Errorf("crt: %w", err)
	}

	d := &Display{
		width:  timing.RasterWidth(),
		height: timing.RasterHeight(),
		scanner: scanner{
			timing: timing,
		},
		blend: NewBlendTable(config.DefaultGamma),
	}

	// the extra row absorbs the lower half of a unit drawn on the last line
	// of a late interlaced field
	d.raster = make([]Texel, d.width*(d.height+1))
	d.snapshot = make([]Texel, len(d.raster))
	for i := range d.raster {
		d.raster[i] = Black
		d.snapshot[i] = Black
	}

	log.Printf("Display initialized: %dx%d raster, %d units per line, gamma %.2f", d.width, d.height, timing.LineUnits, d.blend.Gamma())

	return d, nil
}

// Width of the raster in texels.
func (d *Display) Width() int {
	return d.width
}

// Height of the visible raster in rows. Snapshots carry one extra row.
func (d *Display) Height() int {
	return d.height
}

// Timing returns the timing the Display was created with.
func (d *Display) Timing() config.Timing {
	return d.scanner.timing
}

// Advance consumes one sample unit. Units must be supplied in order, one per
// pixel clock tick.
func (d *Display) Advance(u *SampleUnit) {
	next, fx := d.scanner.step(d.state, u)

	if fx&effectCapture != 0 {
		d.capture()
	}
	if fx&effectExpand != 0 {
		upper, lower := expandUnit(u, d.blend)
		plot(d.raster, d.width, d.state.X, d.state.Y, &upper)
		plot(d.raster, d.width, d.state.X, d.state.Y+1, &lower)
	}
	if fx&effectForcedHRetrace != 0 {
		d.forcedHRetrace.Add(1)
	}
	if fx&effectForcedVRetrace != 0 {
		d.forcedVRetrace.Add(1)
	}

	d.state = next
}

// SetGamma rebuilds the blend table if gamma has changed. Gamma values that
// are not finite and positive are ignored.
func (d *Display) SetGamma(gamma float64) {
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		log.Printf("crt: ignoring invalid gamma %v", gamma)
		return
	}
	if gamma == d.blend.Gamma() {
		return
	}
	d.blend.Rebuild(gamma)
}

// Gamma returns the gamma of the current blend table.
func (d *Display) Gamma() float64 {
	return d.blend.Gamma()
}

// SetInterlace changes how the late field is placed. It takes effect at the
// next vertical retrace.
func (d *Display) SetInterlace(interlace bool) {
	d.scanner.interlace = interlace
}

// Interlace returns the current interlace setting.
func (d *Display) Interlace() bool {
	return d.scanner.interlace
}

// State returns a copy of the scan state.
func (d *Display) State() ScanState {
	return d.state
}

// InVerticalBlank returns true while the beam is in vertical retrace.
func (d *Display) InVerticalBlank() bool {
	return d.state.Mode == VerticalRetrace || d.state.Mode == VerticalRetraceWait
}

// BeamPosition returns the raster position the next pixel unit will be drawn
// at. The ok value is false if the beam is not drawing or is outside the
// raster.
func (d *Display) BeamPosition() (x, y int, ok bool) {
	if d.state.Mode != Scanout {
		return 0, 0, false
	}
	if d.state.X >= d.width || d.state.Y > d.height {
		return 0, 0, false
	}
	return d.state.X, d.state.Y, true
}

// Stats returns the field and forced retrace counters. Safe to call from any
// goroutine.
func (d *Display) Stats() Stats {
	return Stats{
		Fields:         d.version.Load(),
		ForcedHRetrace: d.forcedHRetrace.Load(),
		ForcedVRetrace: d.forcedVRetrace.Load(),
	}
}
