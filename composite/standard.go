package composite

// Standard holds the line structure and levels of an analogue colour
// television standard. Durations are in seconds, levels in IRE.
type Standard struct {
	Name string

	FrameRate     float64
	LinesPerFrame int

	// ActiveLines is the number of picture lines in a frame
	ActiveLines int

	// BlankLines is the number of lines at the start of each field that
	// carry no picture
	BlankLines int

	Subcarrier float64

	HSync      float64
	BroadPulse float64
	EqPulse    float64
	BurstStart float64
	BurstLen   float64
	// BurstPhase is the phase of the colour burst relative to the
	// subcarrier. PAL swings it by the sign on alternate lines.
	BurstPhase  float64
	ActiveStart float64
	ActiveLen   float64

	LevelSync      float64
	LevelBlanking  float64
	LevelBlack     float64
	LevelWhite     float64
	BurstAmplitude float64

	// PAL alternates the phase of the V component on every line
	PAL bool
}

// NTSC is the 525 line, 59.94Hz standard.
var NTSC = Standard{
	Name:           "NTSC",
	FrameRate:      30000.0 / 1001.0,
	LinesPerFrame:  525,
	ActiveLines:    480,
	BlankLines:     21,
	Subcarrier:     3579545.4545,
	HSync:          4.7e-6,
	BroadPulse:     27.1e-6,
	EqPulse:        2.3e-6,
	BurstStart:     5.6e-6,
	BurstLen:       2.5e-6,
	BurstPhase:     180,
	ActiveStart:    10.7e-6,
	ActiveLen:      52.6e-6,
	LevelSync:      -40.0,
	LevelBlanking:  0.0,
	LevelBlack:     7.5,
	LevelWhite:     100.0,
	BurstAmplitude: 20.0,
}

// PAL is the 625 line, 50Hz standard.
var PAL = Standard{
	Name:           "PAL",
	FrameRate:      25.0,
	LinesPerFrame:  625,
	ActiveLines:    576,
	BlankLines:     23,
	Subcarrier:     4433618.75,
	HSync:          4.7e-6,
	BroadPulse:     27.3e-6,
	EqPulse:        2.35e-6,
	BurstStart:     5.6e-6,
	BurstLen:       2.25e-6,
	BurstPhase:     135,
	ActiveStart:    10.5e-6,
	ActiveLen:      52.0e-6,
	LevelSync:      -40.0,
	LevelBlanking:  0.0,
	LevelBlack:     0.0,
	LevelWhite:     100.0,
	BurstAmplitude: 20.0,
	PAL:            true,
}
