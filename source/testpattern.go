package source

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"crtscan/config"
)

// NewFrame returns a black frame of the size exchanged with capture devices.
func NewFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, config.FrameWidth, config.FrameHeight))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return img
}

// FillColorBars fills img with a standard SMPTE color bars pattern.
func FillColorBars(img *image.RGBA) {
	// SMPTE color bars: 7 vertical stripes
	barColors := [7]color.RGBA{
		{192, 192, 192, 255}, // Gray
		{192, 192, 0, 255},   // Yellow
		{0, 192, 192, 255},   // Cyan
		{0, 192, 0, 255},     // Green
		{192, 0, 192, 255},   // Magenta
		{192, 0, 0, 255},     // Red
		{0, 0, 192, 255},     // Blue
	}
	b := img.Bounds()
	barWidth := b.Dx() / 7
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			barIdx := (x - b.Min.X) / barWidth
			if barIdx >= 7 {
				barIdx = 6
			}
			img.SetRGBA(x, y, barColors[barIdx])
		}
	}
}

// FillTeletextPattern fills img with horizontal bands of the teletext colours
// and a caption in each band.
func FillTeletextPattern(img *image.RGBA, caption string) {
	b := img.Bounds()
	bandHeight := b.Dy() / len(TeletextPalette)

	for i, c := range TeletextPalette {
		band := image.Rect(b.Min.X, b.Min.Y+i*bandHeight, b.Max.X, b.Min.Y+(i+1)*bandHeight)
		if i == len(TeletextPalette)-1 {
			band.Max.Y = b.Max.Y
		}
		draw.Draw(img, band, image.NewUniform(c), image.Point{}, draw.Src)

		// caption in the complementary colour so it stays legible
		r, g, bl, _ := c.RGBA()
		ink := color.RGBA{uint8(^r >> 8), uint8(^g >> 8), uint8(^bl >> 8), 255}
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(ink),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(band.Min.X+16, band.Min.Y+(band.Dy()+basicfont.Face7x13.Ascent)/2),
		}
		d.DrawString(caption)
	}
}
