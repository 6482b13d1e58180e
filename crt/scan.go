package crt

import (
	"fmt"

	"crtscan/config"
)

// Mode is the state of the simulated beam.
type Mode int

// List of valid modes.
const (
	Scanout Mode = iota
	HorizontalRetrace
	HorizontalRetraceWait
	BackPorch
	VerticalRetrace
	VerticalRetraceWait
	numModes
)

func (m Mode) String() string {
	switch m {
	case Scanout:
		return "scanout"
	case HorizontalRetrace:
		return "horizontal retrace"
	case HorizontalRetraceWait:
		return "horizontal retrace wait"
	case BackPorch:
		return "back porch"
	case VerticalRetrace:
		return "vertical retrace"
	case VerticalRetraceWait:
		return "vertical retrace wait"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ScanState is the position of the beam and the countdown of the current
// mode. X and Y are in texels and raster rows.
type ScanState struct {
	Mode  Mode
	X, Y  int
	Timer int
}

func (s ScanState) String() string {
	return fmt.Sprintf("%s x=%d y=%d timer=%d", s.Mode, s.X, s.Y, s.Timer)
}

// effect is the work a transition asks the Display to perform.
type effect uint8

const (
	// expand the unit at the position of the state before the transition
	effectExpand effect = 1 << iota

	// copy the raster into the field snapshot
	effectCapture

	// the transition was forced by a missing sync signal
	effectForcedHRetrace
	effectForcedVRetrace
)

// scanner carries the parameters the transition functions depend on. It is
// never mutated by a transition.
type scanner struct {
	timing    config.Timing
	interlace bool
}

type transition func(sc *scanner, s ScanState, u *SampleUnit) (ScanState, effect)

var transitions = [numModes]transition{
	Scanout:               scanout,
	HorizontalRetrace:     horizontalRetrace,
	HorizontalRetraceWait: horizontalRetraceWait,
	BackPorch:             backPorch,
	VerticalRetrace:       verticalRetrace,
	VerticalRetraceWait:   verticalRetraceWait,
}

// step consumes one sample unit and returns the next state.
func (sc *scanner) step(s ScanState, u *SampleUnit) (ScanState, effect) {
	if s.Mode < 0 || s.Mode >= numModes {
		return ScanState{Mode: VerticalRetrace}, 0
	}
	return transitions[s.Mode](sc, s, u)
}

func scanout(sc *scanner, s ScanState, u *SampleUnit) (ScanState, effect) {
	// X is left alone so that the vertical retrace can work out which half of
	// the line vsync arrived in
	if u.VSync {
		s.Mode = VerticalRetrace
		s.Timer = 0
		return s, 0
	}

	if u.HSync {
		s.Mode = HorizontalRetrace
		s.Timer = 0
		return s, 0
	}

	fx := effectExpand
	s.X += config.UnitTexels
	s.Timer++
	if s.Timer >= sc.timing.ScanoutUnits {
		s.Mode = HorizontalRetrace
		s.Timer = 0
		fx |= effectForcedHRetrace
	}
	return s, fx
}

func horizontalRetrace(sc *scanner, s ScanState, _ *SampleUnit) (ScanState, effect) {
	s.X = 0
	s.Y += 2

	if s.Y >= 2*sc.timing.MaxLines {
		s.Mode = VerticalRetrace
		s.Timer = 0
		return s, effectForcedVRetrace
	}

	s.Mode = HorizontalRetraceWait
	s.Timer = sc.timing.HorizontalRetraceUnits
	return s, 0
}

func horizontalRetraceWait(sc *scanner, s ScanState, _ *SampleUnit) (ScanState, effect) {
	s.Timer--
	if s.Timer <= 0 {
		s.Mode = BackPorch
		s.Timer = sc.timing.BackPorchUnits
	}
	return s, 0
}

func backPorch(_ *scanner, s ScanState, _ *SampleUnit) (ScanState, effect) {
	s.Timer--
	if s.Timer <= 0 {
		s.Mode = Scanout
		s.Timer = 0
	}
	return s, 0
}

func verticalRetrace(sc *scanner, s ScanState, _ *SampleUnit) (ScanState, effect) {
	// vsync in the second half of a line starts the late field
	late := s.X >= sc.timing.RasterWidth()/2

	s.Y = 0
	if late {
		if sc.interlace {
			s.Y = 1
		} else {
			s.Y = 2
		}
	}
	s.X = 0

	s.Mode = VerticalRetraceWait
	s.Timer = sc.timing.VerticalBlankLines * sc.timing.LineUnits
	return s, effectCapture
}

func verticalRetraceWait(_ *scanner, s ScanState, _ *SampleUnit) (ScanState, effect) {
	s.Timer--
	if s.Timer <= 0 {
		s.Mode = Scanout
		s.Timer = 0
	}
	return s, 0
}
