package config

import (
	"flag"
	"fmt"
)

// Raster constants shared by the core and its collaborators.
const (
	// UnitTexels is the number of output texels produced by one sample unit.
	UnitTexels = 8

	// SampleBits is the depth of each raw colour channel in a sample unit.
	SampleBits = 3
	SampleMax  = 1<<SampleBits - 1

	DefaultGamma = 2.2

	// DefaultStatsAddress is where runtime statistics are served.
	DefaultStatsAddress = "localhost:12600"

	// FieldRate is the number of fields per second produced by the sources.
	FieldRate = 50
)

// Frame size of the images exchanged with capture devices and encoders.
const (
	FrameWidth  = 540
	FrameHeight = 480
)

// Timing describes the clocked video signal, in sample units and lines.
type Timing struct {
	// LineUnits is the nominal length of a scan line.
	LineUnits int

	// ActiveUnits is the number of pixel units in a nominal line. The raster
	// is exactly this wide.
	ActiveUnits int

	// ScanoutUnits is the longest run of pixel units before a horizontal
	// retrace is forced without hsync.
	ScanoutUnits int

	HorizontalRetraceUnits int
	BackPorchUnits         int

	// FieldLines is the expected number of visible lines in a field. Each
	// line covers two raster rows.
	FieldLines int

	// MaxLines is the runaway ceiling. A field that reaches it without vsync
	// is ended by a forced vertical retrace.
	MaxLines int

	// VerticalBlankLines is the length of the vertical retrace in lines.
	VerticalBlankLines int
}

// DefaultTiming returns a 64us line, 50Hz field timing.
func DefaultTiming() Timing {
	return Timing{
		LineUnits:              64,
		ActiveUnits:            52,
		ScanoutUnits:           54,
		HorizontalRetraceUnits: 4,
		BackPorchUnits:         6,
		FieldLines:             288,
		MaxLines:               312,
		VerticalBlankLines:     23,
	}
}

// RasterWidth is the width of the raster buffer in texels.
func (t Timing) RasterWidth() int {
	return t.ActiveUnits * UnitTexels
}

// RasterHeight is the number of visible raster rows. The raster buffer
// carries one extra row below this.
func (t Timing) RasterHeight() int {
	return t.FieldLines * 2
}

// FieldUnits is the number of sample units in one non-interlaced field as
// produced by a well-behaved source.
func (t Timing) FieldUnits() int {
	return 2 + t.VerticalBlankLines*t.LineUnits + t.FieldLines*t.LineUnits
}

// Validate checks that the timing describes a usable signal.
func (t Timing) Validate() error {
	switch {
	case t.ActiveUnits <= 0:
		return fmt.Errorf("timing: active units must be positive (%d)", t.ActiveUnits)
	case t.ScanoutUnits < t.ActiveUnits:
		return fmt.Errorf("timing: scanout units (%d) shorter than active units (%d)", t.ScanoutUnits, t.ActiveUnits)
	case t.HorizontalRetraceUnits <= 0:
		return fmt.Errorf("timing: horizontal retrace units must be positive (%d)", t.HorizontalRetraceUnits)
	case t.BackPorchUnits <= 0:
		return fmt.Errorf("timing: back porch units must be positive (%d)", t.BackPorchUnits)
	case t.ActiveUnits+2+t.HorizontalRetraceUnits+t.BackPorchUnits > t.LineUnits:
		return fmt.Errorf("timing: line of %d units cannot hold %d active units and retrace", t.LineUnits, t.ActiveUnits)
	case t.FieldLines <= 0:
		return fmt.Errorf("timing: field lines must be positive (%d)", t.FieldLines)
	case t.MaxLines <= t.FieldLines:
		return fmt.Errorf("timing: max lines (%d) must exceed field lines (%d)", t.MaxLines, t.FieldLines)
	case t.VerticalBlankLines <= 0:
		return fmt.Errorf("timing: vertical blank lines must be positive (%d)", t.VerticalBlankLines)
	}
	return nil
}

// AppConfig holds the application's entire configuration.
type AppConfig struct {
	Timing Timing

	Source    string
	Format    string
	Gamma     float64
	Interlace bool

	Sink string

	// capture and RF settings
	Device     string
	Frequency  float64
	Bandwidth  float64
	SampleRate float64
	Gain       int
	PAL        bool

	StatsView bool
	StatsAddr string
}

// New creates and returns a new AppConfig populated from command-line flags.
func New() *AppConfig {
	cfg := &AppConfig{Timing: DefaultTiming()}
	flag.StringVar(&cfg.Source, "source", "bars", "video source: bars, teletext, ffmpeg or offair")
	flag.StringVar(&cfg.Format, "format", "wide", "sample format: wide, narrow or teletext")
	flag.Float64Var(&cfg.Gamma, "gamma", DefaultGamma, "gamma used when blending adjacent samples")
	flag.BoolVar(&cfg.Interlace, "interlace", false, "interlaced field placement")
	flag.StringVar(&cfg.Sink, "sink", "tui", "raster consumer: tui, ffplay or hackrf")
	flag.StringVar(&cfg.Device, "device", "", "video device name or index (OS-dependent)")
	flag.Float64Var(&cfg.Frequency, "freq", 1280, "RF frequency in MHz (hackrf sink and offair source)")
	flag.Float64Var(&cfg.Bandwidth, "bw", 2, "RF sample rate in MHz")
	flag.IntVar(&cfg.Gain, "gain", 30, "TX VGA gain (0-47) or tuner gain in tenths of a dB")
	flag.BoolVar(&cfg.PAL, "pal", false, "use PAL instead of NTSC for RF")
	flag.BoolVar(&cfg.StatsView, "statsview", false, "serve runtime statistics over HTTP")
	flag.StringVar(&cfg.StatsAddr, "statsaddr", DefaultStatsAddress, "host:port for -statsview")
	flag.Parse()

	cfg.SampleRate = cfg.Bandwidth * 1_000_000

	return cfg
}
