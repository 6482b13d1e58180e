package video

import (
	"image"

	"crtscan/crt"
)

// ToRGB24 packs the visible rows of a frame into dst as rgb24. dst must hold
// at least Width*Height*3 bytes.
func ToRGB24(f *crt.Frame, dst []byte) {
	n := f.Width * f.Height
	for i, tx := range f.Texels[:n] {
		r, g, b := tx.RGB()
		dst[i*3] = r
		dst[i*3+1] = g
		dst[i*3+2] = b
	}
}

// ToImage converts the visible rows of a texel buffer to an image.
func ToImage(texels []crt.Texel, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, tx := range texels[:width*height] {
		r, g, b := tx.RGB()
		img.Pix[i*4] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// Latest copies the most recent field of d into buf and converts it to an
// image once the snapshot lock has been released. buf must hold
// d.SnapshotLen() texels.
func Latest(d *crt.Display, buf []crt.Texel) (*image.RGBA, uint64) {
	v := d.CopySnapshot(buf)
	return ToImage(buf, d.Width(), d.Height()), v
}
