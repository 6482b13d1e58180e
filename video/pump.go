package video

import (
	"context"
	"fmt"
	"io"
	"time"

	"crtscan/crt"
)

// Pump polls the display every period and writes each new field to w as
// rgb24. Fields completed between two polls are skipped. It returns when ctx
// is cancelled or a write fails.
func Pump(ctx context.Context, d *crt.Display, w io.Writer, period time.Duration) error {
	frame := make([]byte, d.Width()*d.Height()*3)
	last := d.Version()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if d.Version() == last {
			continue
		}
		d.View(func(f *crt.Frame) {
			last = f.Version
			ToRGB24(f, frame)
		})

		if _, err := w.Write(frame); err != nil {
			return fmt.Errorf("writing field %d: %w", last, err)
		}
	}
}
