package crt

// Texel is a packed 0xAARRGGBB colour. Alpha is always opaque.
type Texel uint32

// Black is the texel of an unlit raster.
const Black Texel = 0xff000000

// PackTexel packs 8-bit channels.
func PackTexel(r, g, b uint8) Texel {
	return Texel(0xff000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGB unpacks the 8-bit channels.
func (t Texel) RGB() (r, g, b uint8) {
	return uint8(t >> 16), uint8(t >> 8), uint8(t)
}

// replicate8 widens a 3-bit channel to 8 bits: abc -> abcabcab.
func replicate8(v uint8) uint8 {
	v &= 0x07
	return v<<5 | v<<2 | v>>1
}

// widen4 widens a 3-bit channel to the 4-bit blend table index: abc -> abca.
func widen4(v uint8) uint8 {
	v &= 0x07
	return v<<1 | v>>2
}

// expand4 widens a 4-bit blend table index to 8 bits.
func expand4(v uint8) uint8 {
	v &= 0x0f
	return v<<4 | v
}
