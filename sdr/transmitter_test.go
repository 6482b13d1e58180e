package sdr

import (
	"math"
	"testing"

	"crtscan/composite"
)

func TestLowPassFilterTaps(t *testing.T) {
	taps := NewLowPassFilterTaps(15, 1_600_000, 2_000_000)

	var sum float64
	for i, tap := range taps {
		sum += tap
		if j := len(taps) - 1 - i; math.Abs(tap-taps[j]) > 1e-12 {
			t.Errorf("taps %d and %d differ: %v %v", i, j, tap, taps[j])
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("DC gain: got %v, want 1", sum)
	}
}

func TestModulatorLoopsOverFrame(t *testing.T) {
	enc := composite.New(composite.NTSC, 2_000_000)
	enc.GenerateFullFrame()
	m := NewModulator(enc, nil)

	n := len(enc.FrameBuffer())
	buf := make([]byte, (n+10)*2)
	m.Fill(buf)
	if m.pos != 10 {
		t.Errorf("position after wrapping: got %d, want 10", m.pos)
	}

	// the first sample of the frame is a sync tip at full carrier
	if got := int8(buf[0]); got != 127 {
		t.Errorf("sync tip sample: got %d, want 127", got)
	}
	for i := 1; i < len(buf); i += 2 {
		if buf[i] != 0 {
			t.Fatalf("Q sample %d is %d", i/2, buf[i])
		}
	}
}

func TestModulatorFilterSettles(t *testing.T) {
	enc := composite.New(composite.PAL, 2_000_000)
	enc.GenerateFullFrame()
	taps := NewLowPassFilterTaps(15, 1_600_000, 2_000_000)
	m := NewModulator(enc, taps)

	// blanking follows the short equalising pulse at the start of the frame
	// and lasts long enough for the filter to settle on it
	buf := make([]byte, 40*2)
	m.Fill(buf)
	want := int8(enc.IreToAmplitude(composite.PAL.LevelBlanking) * 127.0)
	if got := int8(buf[len(buf)-2]); got < want-1 || got > want+1 {
		t.Errorf("settled blanking level: got %d, want %d", got, want)
	}
}
