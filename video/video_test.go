package video

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-test/deep"

	"crtscan/config"
	"crtscan/crt"
)

func TestToRGB24(t *testing.T) {
	f := &crt.Frame{
		Texels: []crt.Texel{
			crt.PackTexel(1, 2, 3), crt.PackTexel(4, 5, 6),
			crt.PackTexel(7, 8, 9), crt.PackTexel(10, 11, 12),
			crt.Black, crt.Black,
		},
		Width:  2,
		Height: 2,
	}
	dst := make([]byte, 12)
	ToRGB24(f, dst)
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if diff := deep.Equal(dst, want); diff != nil {
		t.Error(diff)
	}
}

func TestToImage(t *testing.T) {
	texels := []crt.Texel{crt.PackTexel(255, 0, 0), crt.PackTexel(0, 0, 255), crt.Black, crt.Black}
	img := ToImage(texels, 2, 1)
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Fatalf("bounds: %v", img.Bounds())
	}
	if c := img.RGBAAt(1, 0); c.B != 255 || c.R != 0 || c.A != 255 {
		t.Errorf("pixel (1,0): %v", c)
	}
}

func TestLatestConvertsCopiedField(t *testing.T) {
	tm := config.DefaultTiming()
	d, err := crt.New(tm)
	if err != nil {
		t.Fatal(err)
	}
	feedField(d, crt.Colour{R: 7})

	buf := make([]crt.Texel, d.SnapshotLen())
	img, v := Latest(d, buf)
	if v != 1 {
		t.Errorf("version: got %d, want 1", v)
	}
	if img.Bounds().Dx() != d.Width() || img.Bounds().Dy() != d.Height() {
		t.Errorf("bounds: %v", img.Bounds())
	}
	if c := img.RGBAAt(d.Width()/2, d.Height()/2); c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("centre pixel: %v", c)
	}

	// the lock is free once Latest returns
	locked := make(chan struct{})
	go func() {
		d.View(func(*crt.Frame) {})
		close(locked)
	}()
	select {
	case <-locked:
	case <-time.After(time.Second):
		t.Fatal("snapshot lock still held after Latest")
	}
}

// feedField sends one complete field of colour c.
func feedField(d *crt.Display, c crt.Colour) {
	tm := d.Timing()
	u := crt.SampleUnit{Format: crt.WideBitmap}
	for i := range u.Pixels {
		u.Pixels[i] = c
	}
	for i := 0; i < tm.FieldLines*tm.LineUnits; i++ {
		u.HSync = i%tm.LineUnits == tm.ActiveUnits
		d.Advance(&u)
	}
	d.Advance(&crt.SampleUnit{VSync: true})
	d.Advance(&crt.SampleUnit{})
}

func TestFFplayArgs(t *testing.T) {
	args := ffplayArgs(416, 576, 50)
	want := map[string]string{
		"-pixel_format": "rgb24",
		"-video_size":   "416x576",
		"-framerate":    "50",
		"-i":            "-",
	}
	for i := 0; i < len(args)-1; i++ {
		if v, ok := want[args[i]]; ok {
			if args[i+1] != v {
				t.Errorf("%s: got %q, want %q", args[i], args[i+1], v)
			}
			delete(want, args[i])
		}
	}
	if len(want) != 0 {
		t.Errorf("missing arguments: %v", want)
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestPumpWritesNewFields(t *testing.T) {
	tm := config.DefaultTiming()
	d, err := crt.New(tm)
	if err != nil {
		t.Fatal(err)
	}

	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- Pump(ctx, d, &out, time.Millisecond)
	}()

	// nothing is written until a field completes
	time.Sleep(10 * time.Millisecond)
	if out.Len() != 0 {
		t.Fatalf("wrote %d bytes before the first field", out.Len())
	}

	feedField(d, crt.Colour{})

	frameSize := d.Width() * d.Height() * 3
	deadline := time.Now().Add(5 * time.Second)
	for out.Len() < frameSize && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Pump: %v", err)
	}
	if out.Len() != frameSize {
		t.Errorf("wrote %d bytes, want one field of %d", out.Len(), frameSize)
	}
}
