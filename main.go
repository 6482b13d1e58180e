package main

import (
	"context"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samuel/go-hackrf/hackrf"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"crtscan/composite"
	"crtscan/config"
	"crtscan/crt"
	"crtscan/sdr"
	"crtscan/source"
	"crtscan/statsview"
	"crtscan/tui"
	"crtscan/video"
)

const fieldPeriod = time.Second / config.FieldRate

func main() {
	cfg := config.New()

	format, err := crt.ParseFormat(cfg.Format)
	if err != nil {
		log.Fatalf("Invalid format: %v", err)
	}

	if cfg.Sink == "tui" && !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatalf("The tui sink needs a terminal; use -sink ffplay instead")
	}

	// 1. The display and the source that drives it
	display, err := crt.New(cfg.Timing)
	if err != nil {
		log.Fatalf("Failed to create display: %v", err)
	}
	display.SetGamma(cfg.Gamma)
	display.SetInterlace(cfg.Interlace)

	gen := source.NewGenerator(cfg.Timing, format)
	gen.SetInterlace(cfg.Interlace)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	switch cfg.Source {
	case "bars":
		log.Println("Test mode: SMPTE color bars will be displayed.")
		img := source.NewFrame()
		source.FillColorBars(img)
		gen.Load(img)
	case "teletext":
		img := source.NewFrame()
		source.FillTeletextPattern(img, "CRTSCAN")
		gen.Load(img)
	case "ffmpeg":
		ffmpegCmd, err := source.StartFFmpegCapture(cfg, gen)
		if err != nil {
			log.Fatalf("Failed to start video source: %v", err)
		}
		defer func() {
			if ffmpegCmd.Process != nil {
				_ = ffmpegCmd.Process.Kill()
			}
		}()
	case "offair":
		dongle, err := source.OpenReceiver(cfg)
		if err != nil {
			log.Fatalf("Failed to open receiver: %v", err)
		}
		defer dongle.Close()
		offair := source.NewOffAir(cfg.SampleRate, cfg.PAL, gen)
		g.Go(func() error {
			return offair.Run(ctx, dongle)
		})
	default:
		log.Fatalf("Unknown source: %s", cfg.Source)
	}

	if cfg.StatsView {
		stats, err := statsview.Start(cfg.StatsAddr)
		if err != nil {
			log.Fatalf("Failed to start statsview: %v", err)
		}
		defer stats.Stop()
	}

	// 2. The producer: one field per period
	g.Go(func() error {
		ticker := time.NewTicker(fieldPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				gen.Field(display.Advance)
			}
		}
	})

	// 3. The consumer
	logOutput := log.Writer()
	switch cfg.Sink {
	case "tui":
		// log lines would corrupt the picture
		log.SetOutput(io.Discard)
		g.Go(func() error {
			defer stop()
			return tui.Run(ctx, display)
		})
	case "ffplay":
		player, err := video.Start(display.Width(), display.Height(), config.FieldRate)
		if err != nil {
			log.Fatalf("Failed to start ffplay: %v", err)
		}
		defer player.Stop()
		g.Go(func() error {
			defer stop()
			return video.Pump(ctx, display, player.Pipe, fieldPeriod)
		})
	case "hackrf":
		if err := transmit(ctx, g, cfg, display); err != nil {
			log.Fatalf("Transmission failed: %v", err)
		}
		log.Println("Transmission is live. Press Ctrl+C to stop.")
	default:
		log.Fatalf("Unknown sink: %s", cfg.Sink)
	}

	err = g.Wait()
	log.SetOutput(logOutput)
	if err != nil {
		log.Fatalf("Stopped: %v", err)
	}
	log.Printf("Shutting down... %s", display.Stats())
}

// transmit re-encodes every new field as composite video and sends it with a
// HackRF until ctx is cancelled.
func transmit(ctx context.Context, g *errgroup.Group, cfg *config.AppConfig, display *crt.Display) error {
	std := composite.NTSC
	if cfg.PAL {
		std = composite.PAL
	}
	enc := composite.New(std, cfg.SampleRate)
	enc.GenerateFullFrame()

	if err := hackrf.Init(); err != nil {
		return err
	}
	dev, err := hackrf.Open()
	if err != nil {
		hackrf.Exit()
		return err
	}
	if err := sdr.Transmit(dev, cfg, enc); err != nil {
		dev.Close()
		hackrf.Exit()
		return err
	}

	g.Go(func() error {
		defer hackrf.Exit()
		defer dev.Close()
		defer dev.StopTX()

		ticker := time.NewTicker(time.Duration(float64(time.Second) / std.FrameRate))
		defer ticker.Stop()

		texels := make([]crt.Texel, display.SnapshotLen())
		var last uint64
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			if display.Version() == last {
				continue
			}
			var img *image.RGBA
			img, last = video.Latest(display, texels)
			enc.Load(img)
			enc.GenerateFullFrame()
		}
	})
	return nil
}
