package sdr

import (
	"log"
	"math"

	"github.com/samuel/go-hackrf/hackrf"

	"crtscan/composite"
	"crtscan/config"
)

// NewLowPassFilterTaps creates the coefficients (taps) for a FIR low-pass filter.
// A Blackman window is used for good performance.
func NewLowPassFilterTaps(numTaps int, bandwidth, sampleRate float64) []float64 {
	taps := make([]float64, numTaps)
	cutoffFreq := bandwidth / 2.0
	normalizedCutoff := cutoffFreq / sampleRate

	M := float64(numTaps - 1)
	var sum float64
	for i := 0; i < numTaps; i++ {
		n := float64(i)
		window := 0.42 - 0.5*math.Cos(2*math.Pi*n/M) + 0.08*math.Cos(4*math.Pi*n/M)

		var sinc float64
		if n == M/2 {
			sinc = 2 * math.Pi * normalizedCutoff
		} else {
			sinc = math.Sin(2*math.Pi*normalizedCutoff*(n-M/2)) / (n - M/2)
		}

		taps[i] = sinc * window
		sum += taps[i]
	}

	// Normalize the taps to have a gain of 1 at DC (0 Hz)
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}

// Modulator converts an encoded frame into signed 8-bit I/Q samples, looping
// over the frame forever.
type Modulator struct {
	enc *composite.Encoder
	pos int

	taps    []float64
	history []float64
	head    int
}

// NewModulator creates a modulator for the encoder. When taps is not empty
// the amplitude is low-pass filtered with it.
func NewModulator(enc *composite.Encoder, taps []float64) *Modulator {
	return &Modulator{
		enc:     enc,
		taps:    taps,
		history: make([]float64, len(taps)),
	}
}

// Fill writes len(buf)/2 I/Q samples to buf.
func (m *Modulator) Fill(buf []byte) {
	m.enc.RLockFrame()
	defer m.enc.RUnlockFrame()

	frameBuf := m.enc.FrameBuffer()
	for i := 0; i < len(buf)/2; i++ {
		amplitude := m.filter(m.enc.IreToAmplitude(frameBuf[m.pos]))

		buf[i*2] = byte(int8(amplitude * 127.0))
		buf[i*2+1] = 0

		m.pos++
		if m.pos >= len(frameBuf) {
			m.pos = 0
		}
	}
}

func (m *Modulator) filter(v float64) float64 {
	if len(m.taps) == 0 {
		return v
	}
	m.history[m.head] = v
	var acc float64
	j := m.head
	for _, t := range m.taps {
		acc += t * m.history[j]
		j--
		if j < 0 {
			j = len(m.history) - 1
		}
	}
	m.head++
	if m.head == len(m.history) {
		m.head = 0
	}
	return acc
}

// Transmit configures an open HackRF device and starts the transmission stream.
func Transmit(dev *hackrf.Device, cfg *config.AppConfig, enc *composite.Encoder) error {
	txFrequencyHz := uint64(cfg.Frequency * 1_000_000)

	if err := dev.SetFreq(txFrequencyHz); err != nil {
		return err
	}
	if err := dev.SetSampleRate(cfg.SampleRate); err != nil {
		return err
	}
	if err := dev.SetTXVGAGain(cfg.Gain); err != nil {
		return err
	}
	if err := dev.SetAmpEnable(false); err != nil {
		return err
	}

	log.Printf("Starting %s transmission on %.3f MHz (Sample Rate: %.1f Msps)...",
		enc.Standard().Name, float64(txFrequencyHz)/1e6, cfg.SampleRate/1e6)

	// video bandwidth is limited to a little under the Nyquist rate
	m := NewModulator(enc, NewLowPassFilterTaps(15, cfg.SampleRate*0.8, cfg.SampleRate))

	// StartTX is non-blocking and returns immediately.
	return dev.StartTX(func(buf []byte) error {
		m.Fill(buf)
		return nil
	})
}
