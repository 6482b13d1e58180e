package crt

// Frame is a locked view of the most recent field snapshot. Texels is only
// valid until Release() is called and must not be retained after that.
type Frame struct {
	Texels  []Texel
	Version uint64

	// Width and Height of the visible raster. Texels holds Height+1 rows.
	Width  int
	Height int

	d *Display
}

// Release unlocks the snapshot. Calling Release more than once is harmless.
func (f *Frame) Release() {
	if f.d == nil {
		return
	}
	d := f.d
	f.d = nil
	f.Texels = nil
	d.snapshotMutex.Unlock()
}

// At returns the texel at (x, y) of the frame.
func (f *Frame) At(x, y int) Texel {
	return f.Texels[y*f.Width+x]
}

// capture copies the raster into the snapshot. Only called by the producer
// at the start of vertical retrace, before the raster is touched again.
func (d *Display) capture() {
	d.snapshotMutex.Lock()
	defer d.snapshotMutex.Unlock()
	copy(d.snapshot, d.raster)
	d.version.Add(1)
}

// Version returns the number of fields completed so far. It does not take the
// snapshot lock and is only useful to decide whether a newer snapshot exists.
func (d *Display) Version() uint64 {
	return d.version.Load()
}

// Acquire locks the snapshot and returns a view of it. The producer will
// block at its next vertical retrace until Release() is called, so callers
// should hold the frame briefly.
//
//	f := d.Acquire()
//	defer f.Release()
func (d *Display) Acquire() *Frame {
	d.snapshotMutex.Lock()
	return &Frame{
		Texels:  d.snapshot,
		Version: d.version.Load(),
		Width:   d.width,
		Height:  d.height,
		d:       d,
	}
}

// View calls fn with the snapshot locked. The lock is released when fn
// returns or panics.
func (d *Display) View(fn func(f *Frame)) {
	f := d.Acquire()
	defer f.Release()
	fn(f)
}

// CopySnapshot copies the snapshot into dst and returns its version. The
// copy is made under the snapshot lock so that dst always holds a single
// complete field. dst should be SnapshotLen() texels long; a shorter dst
// receives a truncated copy.
func (d *Display) CopySnapshot(dst []Texel) uint64 {
	d.snapshotMutex.Lock()
	defer d.snapshotMutex.Unlock()
	copy(dst, d.snapshot)
	return d.version.Load()
}

// SnapshotLen is the number of texels in a snapshot.
func (d *Display) SnapshotLen() int {
	return len(d.snapshot)
}
