package composite

import (
	"image"
	"log"
	"math"
	"sync"

	"golang.org/x/image/draw"

	"crtscan/config"
)

// Encoder turns a still image into one frame of composite video, sampled
// at a fixed rate. The image and the encoded frame have separate locks so
// that a transmitter can read the frame while a new image is loaded.
type Encoder struct {
	std        Standard
	sampleRate float64

	lineSamples   int
	hSyncSamples  int
	broadSamples  int
	eqSamples     int
	burstStart    int
	burstEnd      int
	activeStart   int
	activeSamples int

	img      *image.RGBA
	imgMutex sync.RWMutex

	frame      []float64
	frameMutex sync.RWMutex
}

// New creates an encoder for the standard at the sample rate. The image
// starts black.
func New(std Standard, sampleRate float64) *Encoder {
	e := &Encoder{
		std:        std,
		sampleRate: sampleRate,
		img:        image.NewRGBA(image.Rect(0, 0, config.FrameWidth, config.FrameHeight)),
	}
	lineDuration := 1.0 / (std.FrameRate * float64(std.LinesPerFrame))
	e.lineSamples = int(lineDuration * sampleRate)
	e.hSyncSamples = int(std.HSync * sampleRate)
	e.broadSamples = int(std.BroadPulse * sampleRate)
	e.eqSamples = int(std.EqPulse * sampleRate)
	e.burstStart = int(std.BurstStart * sampleRate)
	e.burstEnd = e.burstStart + int(std.BurstLen*sampleRate)
	e.activeStart = int(std.ActiveStart * sampleRate)
	e.activeSamples = int(std.ActiveLen * sampleRate)
	e.frame = make([]float64, e.lineSamples*std.LinesPerFrame)

	log.Printf("%s encoder initialized: %d samples/line at %.1f Msps", std.Name, e.lineSamples, sampleRate/1e6)
	return e
}

// Standard returns the standard the encoder was created with.
func (e *Encoder) Standard() Standard {
	return e.std
}

// Load scales img to the encoder's frame size. The change is not visible in
// the encoded frame until GenerateFullFrame() is called.
func (e *Encoder) Load(img image.Image) {
	e.imgMutex.Lock()
	defer e.imgMutex.Unlock()
	draw.ApproxBiLinear.Scale(e.img, e.img.Bounds(), img, img.Bounds(), draw.Src, nil)
}

// GenerateFullFrame encodes the current image.
func (e *Encoder) GenerateFullFrame() {
	e.imgMutex.RLock()
	defer e.imgMutex.RUnlock()
	e.frameMutex.Lock()
	defer e.frameMutex.Unlock()

	phase := 0.0
	phaseIncrement := 2.0 * math.Pi * e.std.Subcarrier / e.sampleRate
	burstPhase := e.std.BurstPhase * math.Pi / 180.0
	vSign := 1.0

	for line := 0; line < e.std.LinesPerFrame; line++ {
		buf := e.frame[line*e.lineSamples : (line+1)*e.lineSamples]
		row, picture := e.lineSync(buf, line)

		if !picture {
			phase += phaseIncrement * float64(e.lineSamples)
			vSign = -vSign
			continue
		}

		bp := burstPhase
		if e.std.PAL && line%2 == 1 {
			bp = -burstPhase
		}

		for s := range buf {
			switch {
			case s >= e.burstStart && s < e.burstEnd:
				buf[s] += e.std.BurstAmplitude * math.Sin(phase+bp)
			case s >= e.activeStart && s < e.activeStart+e.activeSamples:
				y, c1, c2 := e.pixel(row, s-e.activeStart)
				buf[s] = y
				if e.std.PAL {
					buf[s] += c1*math.Sin(phase) + c2*vSign*math.Cos(phase)
				} else {
					buf[s] += c1*math.Cos(phase) + c2*math.Sin(phase)
				}
			}
			phase += phaseIncrement
		}
		vSign = -vSign
	}
}

// lineSync writes blanking and the sync pulses of a line. It returns the
// image row shown on the line and whether the line carries a picture.
func (e *Encoder) lineSync(buf []float64, line int) (int, bool) {
	for s := range buf {
		buf[s] = e.std.LevelBlanking
	}

	half := e.std.LinesPerFrame / 2
	field := 0
	inField := line
	if line >= half {
		field = 1
		inField = line - half
	}

	pulse := func(n int) {
		for s := 0; s < n; s++ {
			buf[s] = e.std.LevelSync
			buf[len(buf)/2+s] = e.std.LevelSync
		}
	}

	switch {
	case inField < 3, inField >= 6 && inField < 9:
		pulse(e.eqSamples)
		return 0, false
	case inField < 6:
		pulse(e.broadSamples)
		return 0, false
	}

	for s := 0; s < e.hSyncSamples; s++ {
		buf[s] = e.std.LevelSync
	}
	if inField < e.std.BlankLines {
		return 0, false
	}

	videoLine := (inField-e.std.BlankLines)*2 + field
	if videoLine >= e.std.ActiveLines {
		return 0, false
	}
	return videoLine * config.FrameHeight / e.std.ActiveLines, true
}

// pixel returns the luma and the two colour difference components, in IRE,
// of the image at row and active sample s.
func (e *Encoder) pixel(row, s int) (y, c1, c2 float64) {
	x := s * config.FrameWidth / e.activeSamples
	i := e.img.PixOffset(x, row)
	r := float64(e.img.Pix[i])
	g := float64(e.img.Pix[i+1])
	b := float64(e.img.Pix[i+2])

	span := e.std.LevelWhite - e.std.LevelBlack
	y = e.std.LevelBlack + (0.299*r+0.587*g+0.114*b)/255.0*span
	if e.std.PAL {
		c1 = (-0.147*r - 0.289*g + 0.436*b) / 255.0 * span * 0.493
		c2 = (0.615*r - 0.515*g - 0.100*b) / 255.0 * span * 0.877
	} else {
		c1 = (0.596*r - 0.274*g - 0.322*b) / 255.0 * span
		c2 = (0.211*r - 0.523*g + 0.312*b) / 255.0 * span
	}
	return y, c1, c2
}

// IreToAmplitude maps a level to carrier amplitude with negative modulation:
// sync tip is full carrier and peak white is 12.5%.
func (e *Encoder) IreToAmplitude(ire float64) float64 {
	return ((ire-100.0)/-140.0)*(1.0-0.125) + 0.125
}

func (e *Encoder) RLockFrame()   { e.frameMutex.RLock() }
func (e *Encoder) RUnlockFrame() { e.frameMutex.RUnlock() }

// FrameBuffer returns the encoded frame. Hold RLockFrame() while reading it.
func (e *Encoder) FrameBuffer() []float64 { return e.frame }

// LineSamples is the number of samples in each line of the encoded frame.
func (e *Encoder) LineSamples() int { return e.lineSamples }
