package source

import (
	"testing"

	"crtscan/config"
	"crtscan/crt"
)

// iqSignal builds unsigned 8-bit I/Q samples with the given magnitudes.
type iqSignal []byte

func (s *iqSignal) add(mag, n int) {
	for i := 0; i < n; i++ {
		*s = append(*s, byte(127+mag), 127)
	}
}

func TestOffAirSlicesLines(t *testing.T) {
	g := NewGenerator(config.DefaultTiming(), crt.WideBitmap)
	o := NewOffAir(2_000_000, false, g)

	const (
		syncTip = 100
		white   = 30
		lines   = 40
	)

	var sig iqSignal
	for line := 0; line < lines; line++ {
		sig.add(syncTip, o.pulseWidth)
		sig.add(white, o.lineLength-o.pulseWidth)
	}
	// broad pulses then an ordinary one end the frame
	for i := 0; i < 3; i++ {
		sig.add(syncTip, o.pulseWidth*3)
		sig.add(white, o.pulseWidth)
	}
	sig.add(syncTip, o.pulseWidth)
	sig.add(white, 4)

	o.ProcessIQ(sig)

	if o.Frames() != 1 {
		t.Fatalf("frames: got %d, want 1", o.Frames())
	}
	if o.y != 0 {
		t.Errorf("line counter not reset: %d", o.y)
	}

	mid := (1*config.FrameWidth + config.FrameWidth/2) * 3
	if o.frame[mid] < 250 {
		t.Errorf("active video on line 1: got %d, want white", o.frame[mid])
	}
	below := ((lines+4)*config.FrameWidth + config.FrameWidth/2) * 3
	if o.frame[below] != 0 {
		t.Errorf("undrawn line: got %d, want 0", o.frame[below])
	}

	lit := false
	for _, c := range g.screen[:g.width*4] {
		if c != (crt.Colour{}) {
			lit = true
			break
		}
	}
	if !lit {
		t.Errorf("decoded frame was not loaded into the generator")
	}
}

func TestOffAirIgnoresEmptyBuffer(t *testing.T) {
	g := NewGenerator(config.DefaultTiming(), crt.WideBitmap)
	o := NewOffAir(2_000_000, true, g)
	o.ProcessIQ(nil)
	if o.levelsValid || o.Frames() != 0 {
		t.Errorf("empty buffer changed the decoder")
	}
}
