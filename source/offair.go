package source

import (
	"context"
	"fmt"
	"log"
	"math"

	rtl "github.com/jpoirier/gortlsdr"

	"crtscan/config"
)

// Line timing of the received signal in microseconds.
const (
	hsyncMicroseconds       = 4.7
	backPorchMicroseconds   = 1.5
	activeVideoMicroseconds = 52.6
)

// OffAir slices an amplitude modulated video signal received by an RTL-SDR
// into greyscale frames and loads each completed frame into a generator.
//
// Sync is the strongest carrier level and peak white the weakest.
type OffAir struct {
	g *Generator

	frame []byte

	// position in the received signal, in samples and lines
	x, y int

	lineLength  int
	pulseWidth  int
	activeStart int
	activeEnd   int

	pulse       int
	serrations  int
	syncLevel   float64
	whiteLevel  float64
	levelsValid bool

	mag    []float64
	frames int
}

// NewOffAir creates a line slicer for the sample rate and line standard.
func NewOffAir(sampleRate float64, pal bool, g *Generator) *OffAir {
	lineRate := 30000.0 / 1001.0 * 525
	if pal {
		lineRate = 25.0 * 625
	}

	o := &OffAir{
		g:          g,
		frame:      make([]byte, config.FrameWidth*config.FrameHeight*3),
		lineLength: int(sampleRate / lineRate),
		pulseWidth: int(hsyncMicroseconds * 1e-6 * sampleRate),
	}
	o.activeStart = int((hsyncMicroseconds + backPorchMicroseconds) * 1e-6 * sampleRate)
	o.activeEnd = o.activeStart + int(activeVideoMicroseconds*1e-6*sampleRate)

	log.Printf("Off-air decoder initialized: %d samples/line, hsync ~%d samples", o.lineLength, o.pulseWidth)
	return o
}

// Frames returns the number of frames loaded into the generator.
func (o *OffAir) Frames() int {
	return o.frames
}

// ProcessIQ demodulates a buffer of interleaved unsigned 8-bit I/Q samples.
func (o *OffAir) ProcessIQ(iq []byte) {
	n := len(iq) / 2
	if cap(o.mag) < n {
		o.mag = make([]float64, n)
	}
	o.mag = o.mag[:n]

	peak, floor := 0.0, math.MaxFloat64
	for i := range o.mag {
		re := float64(int(iq[i*2]) - 127)
		im := float64(int(iq[i*2+1]) - 127)
		m := math.Sqrt(re*re + im*im)
		o.mag[i] = m
		peak = math.Max(peak, m)
		floor = math.Min(floor, m)
	}
	if n == 0 {
		return
	}

	if o.levelsValid {
		o.syncLevel = o.syncLevel*0.95 + peak*0.05
		o.whiteLevel = o.whiteLevel*0.95 + floor*0.05
	} else {
		o.syncLevel, o.whiteLevel = peak, floor
		o.levelsValid = true
	}

	syncThreshold := o.syncLevel * 0.75
	blackLevel := o.syncLevel * 0.65
	scale := 255.0 / (blackLevel - o.whiteLevel + 1e-6)

	for _, m := range o.mag {
		if m >= syncThreshold {
			o.pulse++
		} else if o.pulse > 0 {
			width := o.pulse
			o.pulse = 0
			if width > o.pulseWidth/2 {
				o.endPulse(width)
				continue
			}
		}

		o.draw(m, blackLevel, scale)

		o.x++
		if o.x >= o.lineLength+o.pulseWidth {
			o.x = 0
			o.y++
		}
	}
}

// endPulse handles a sync pulse that has just ended. A run of broad pulses
// followed by an ordinary one ends the frame.
func (o *OffAir) endPulse(width int) {
	if width > o.pulseWidth*2 {
		o.serrations++
		return
	}
	if o.serrations >= 3 {
		o.publish()
		o.x, o.y = 0, 0
		o.serrations = 0
		return
	}
	o.serrations = 0
	o.x = 0
	o.y++
}

func (o *OffAir) draw(m, blackLevel, scale float64) {
	if o.y >= config.FrameHeight || o.x < o.activeStart || o.x >= o.activeEnd {
		return
	}
	px := (o.x - o.activeStart) * config.FrameWidth / (o.activeEnd - o.activeStart)
	v := (blackLevel - m) * scale
	v = math.Max(0, math.Min(255, v))
	i := (o.y*config.FrameWidth + px) * 3
	o.frame[i] = byte(v)
	o.frame[i+1] = byte(v)
	o.frame[i+2] = byte(v)
}

func (o *OffAir) publish() {
	o.g.LoadRGB24(o.frame, config.FrameWidth, config.FrameHeight)
	o.frames++
}

// OpenReceiver initializes and configures the RTL-SDR device.
func OpenReceiver(cfg *config.AppConfig) (*rtl.Context, error) {
	devCount := rtl.GetDeviceCount()
	if devCount == 0 {
		return nil, fmt.Errorf("no RTL-SDR devices found")
	}
	log.Printf("Found %d RTL-SDR device(s). Using device 0.", devCount)

	dongle, err := rtl.Open(0)
	if err != nil {
		return nil, fmt.Errorf("error opening RTL-SDR device: %w", err)
	}

	freq := int(cfg.Frequency * 1_000_000)
	if err := dongle.SetCenterFreq(freq); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetCenterFreq failed: %w", err)
	}
	log.Printf("Tuned to frequency: %.3f MHz", cfg.Frequency)

	if err := dongle.SetSampleRate(int(cfg.SampleRate)); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetSampleRate failed: %w", err)
	}
	log.Printf("Sample rate set to: %.3f MHz", cfg.SampleRate/1e6)

	if err := dongle.SetTunerGainMode(true); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetTunerGainMode failed: %w", err)
	}
	if err := dongle.SetTunerGain(cfg.Gain); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("SetTunerGain failed: %w", err)
	}
	log.Printf("Tuner gain set to MANUAL: %.1f dB", float64(cfg.Gain)/10.0)

	if err := dongle.ResetBuffer(); err != nil {
		dongle.Close()
		return nil, fmt.Errorf("ResetBuffer failed: %w", err)
	}

	return dongle, nil
}

// Run reads from the receiver until ctx is cancelled or a read fails.
func (o *OffAir) Run(ctx context.Context, dongle *rtl.Context) error {
	buf := make([]byte, rtl.DefaultBufLength)
	for ctx.Err() == nil {
		n, err := dongle.ReadSync(buf, len(buf))
		if err != nil {
			return fmt.Errorf("ReadSync failed: %w", err)
		}
		if n != len(buf) {
			log.Printf("Warning: short read (%d / %d bytes)", n, len(buf))
			continue
		}
		o.ProcessIQ(buf)
	}
	return nil
}
