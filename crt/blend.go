package crt

import "math"

// BlendLevels is the number of channel intensities indexed by a BlendTable.
const BlendLevels = 16

// BlendTable holds the gamma-correct average of every pair of 4-bit channel
// intensities. Both contributors are weighted equally so that the table is
// symmetric. The table is owned by a Display and is read-only between calls
// to Rebuild().
type BlendTable struct {
	gamma  float64
	values [BlendLevels][BlendLevels]uint8
}

// NewBlendTable returns a table built for gamma.
func NewBlendTable(gamma float64) *BlendTable {
	bt := &BlendTable{}
	bt.Rebuild(gamma)
	return bt
}

// Rebuild recomputes every entry for gamma. Values <= 0 are not meaningful
// exponents and the caller is expected to filter them out.
func (bt *BlendTable) Rebuild(gamma float64) {
	bt.gamma = gamma

	const top = BlendLevels - 1

	var linear [BlendLevels]float64
	for i := range linear {
		linear[i] = math.Pow(float64(i)/top, gamma)
	}

	for i := 0; i < BlendLevels; i++ {
		for j := i; j < BlendLevels; j++ {
			avg := (linear[i] + linear[j]) / 2
			v := uint8(math.Round(math.Pow(avg, 1/gamma) * 255))
			bt.values[i][j] = v
			bt.values[j][i] = v
		}
	}
}

// Gamma returns the exponent the table was last built for.
func (bt *BlendTable) Gamma() float64 {
	return bt.gamma
}

// Blend returns the 8-bit blend of two 4-bit intensities.
func (bt *BlendTable) Blend(i, j uint8) uint8 {
	return bt.values[i&0x0f][j&0x0f]
}
