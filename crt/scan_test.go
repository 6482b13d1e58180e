package crt

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"crtscan/config"
)

func testScanner(interlace bool) *scanner {
	return &scanner{timing: config.DefaultTiming(), interlace: interlace}
}

var (
	plainUnit = &SampleUnit{Format: WideBitmap}
	hsyncUnit = &SampleUnit{Format: WideBitmap, HSync: true}
	vsyncUnit = &SampleUnit{Format: WideBitmap, VSync: true}
	bothUnit  = &SampleUnit{Format: WideBitmap, HSync: true, VSync: true}
)

func TestScanoutDraws(t *testing.T) {
	sc := testScanner(false)
	s, fx := sc.step(ScanState{Mode: Scanout, X: 16, Y: 4, Timer: 2}, plainUnit)
	want := ScanState{Mode: Scanout, X: 24, Y: 4, Timer: 3}
	if s != want || fx != effectExpand {
		t.Errorf("got %v (effect %b), want %v (effect %b)", s, fx, want, effectExpand)
	}
}

func TestScanoutSyncPrecedence(t *testing.T) {
	sc := testScanner(false)
	start := ScanState{Mode: Scanout, X: 40, Y: 10, Timer: 5}

	s, fx := sc.step(start, hsyncUnit)
	if s.Mode != HorizontalRetrace || fx != 0 {
		t.Errorf("hsync: got %v (effect %b)", s, fx)
	}

	s, fx = sc.step(start, vsyncUnit)
	if s.Mode != VerticalRetrace || fx != 0 {
		t.Errorf("vsync: got %v (effect %b)", s, fx)
	}

	// vsync wins and the horizontal position survives for the parity test
	s, _ = sc.step(start, bothUnit)
	if s.Mode != VerticalRetrace || s.X != 40 {
		t.Errorf("hsync+vsync: got %v", s)
	}
}

func TestScanoutForcedRetrace(t *testing.T) {
	sc := testScanner(false)
	s := ScanState{Mode: Scanout}
	var fx effect
	for i := 0; i < sc.timing.ScanoutUnits; i++ {
		if s.Mode != Scanout {
			t.Fatalf("left scanout after %d units: %v", i, s)
		}
		s, fx = sc.step(s, plainUnit)
	}
	if s.Mode != HorizontalRetrace {
		t.Fatalf("no forced retrace after %d units: %v", sc.timing.ScanoutUnits, s)
	}
	if fx&effectExpand == 0 || fx&effectForcedHRetrace == 0 {
		t.Errorf("last unit should be drawn and flagged as forced: effect %b", fx)
	}
}

func TestHorizontalRetrace(t *testing.T) {
	sc := testScanner(false)
	s, fx := sc.step(ScanState{Mode: HorizontalRetrace, X: 200, Y: 6}, vsyncUnit)
	want := ScanState{Mode: HorizontalRetraceWait, X: 0, Y: 8, Timer: sc.timing.HorizontalRetraceUnits}
	if s != want || fx != 0 {
		t.Errorf("got %v (effect %b), want %v", s, fx, want)
	}
}

func TestHorizontalRetraceRunaway(t *testing.T) {
	sc := testScanner(false)
	s, fx := sc.step(ScanState{Mode: HorizontalRetrace, Y: 2*sc.timing.MaxLines - 2}, plainUnit)
	if s.Mode != VerticalRetrace || fx != effectForcedVRetrace {
		t.Errorf("runaway field not ended: %v (effect %b)", s, fx)
	}
	if s.X != 0 {
		t.Errorf("runaway field should start the early field, x=%d", s.X)
	}
}

func TestRetraceWaitDurations(t *testing.T) {
	sc := testScanner(false)

	s := ScanState{Mode: HorizontalRetraceWait, Timer: sc.timing.HorizontalRetraceUnits}
	for i := 0; i < sc.timing.HorizontalRetraceUnits; i++ {
		if s.Mode != HorizontalRetraceWait {
			t.Fatalf("horizontal retrace ended after %d units", i)
		}
		// sync is ignored while waiting
		s, _ = sc.step(s, bothUnit)
	}
	if s.Mode != BackPorch || s.Timer != sc.timing.BackPorchUnits {
		t.Fatalf("expected back porch, got %v", s)
	}

	for i := 0; i < sc.timing.BackPorchUnits; i++ {
		if s.Mode != BackPorch {
			t.Fatalf("back porch ended after %d units", i)
		}
		s, _ = sc.step(s, hsyncUnit)
	}
	if s.Mode != Scanout || s.Timer != 0 {
		t.Fatalf("expected scanout, got %v", s)
	}
}

func TestVerticalRetraceParity(t *testing.T) {
	width := config.DefaultTiming().RasterWidth()

	tests := []struct {
		x         int
		interlace bool
		y         int
	}{
		{x: 0, interlace: false, y: 0},
		{x: width/2 - 8, interlace: false, y: 0},
		{x: width / 2, interlace: false, y: 2},
		{x: width - 8, interlace: false, y: 2},
		{x: 0, interlace: true, y: 0},
		{x: width/2 - 8, interlace: true, y: 0},
		{x: width / 2, interlace: true, y: 1},
		{x: width - 8, interlace: true, y: 1},
	}

	for _, tc := range tests {
		sc := testScanner(tc.interlace)
		s, fx := sc.step(ScanState{Mode: VerticalRetrace, X: tc.x, Y: 300}, plainUnit)
		want := ScanState{
			Mode:  VerticalRetraceWait,
			X:     0,
			Y:     tc.y,
			Timer: sc.timing.VerticalBlankLines * sc.timing.LineUnits,
		}
		if s != want || fx != effectCapture {
			t.Errorf("x=%d interlace=%v: got %v (effect %b), want %v", tc.x, tc.interlace, s, fx, want)
		}
	}
}

func TestVerticalRetraceWait(t *testing.T) {
	sc := testScanner(false)
	n := sc.timing.VerticalBlankLines * sc.timing.LineUnits
	s := ScanState{Mode: VerticalRetraceWait, Y: 2, Timer: n}
	for i := 0; i < n; i++ {
		if s.Mode != VerticalRetraceWait {
			t.Fatalf("vertical retrace ended after %d units: %s", i, spew.Sdump(s))
		}
		s, _ = sc.step(s, hsyncUnit)
	}
	if s.Mode != Scanout || s.Y != 2 {
		t.Errorf("expected scanout on row 2, got %v", s)
	}
}

func TestInvalidModeRecovers(t *testing.T) {
	sc := testScanner(false)
	s, _ := sc.step(ScanState{Mode: Mode(99)}, plainUnit)
	if s.Mode != VerticalRetrace {
		t.Errorf("invalid mode should recover through vertical retrace, got %v", s)
	}
}
