package source

import (
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"

	"crtscan/config"
)

// StartFFmpegCapture starts an FFmpeg process to capture video. Every frame
// read from it is loaded into the generator.
func StartFFmpegCapture(cfg *config.AppConfig, g *Generator) (*exec.Cmd, error) {
	var ffmpegArgs []string

	switch runtime.GOOS {
	case "linux":
		dev := cfg.Device
		if dev == "" {
			dev = "/dev/video0"
		}
		ffmpegArgs = []string{"-f", "v4l2", "-i", dev}
	case "darwin":
		dev := cfg.Device
		if dev == "" {
			dev = "0"
		}
		ffmpegArgs = []string{"-f", "avfoundation", "-i", dev}
	case "windows":
		dev := cfg.Device
		if dev == "" {
			dev = "Integrated Webcam"
		}
		ffmpegArgs = []string{"-f", "dshow", "-i", "video=" + dev}
	default:
		return nil, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	// one captured frame per field pair
	vfArg := fmt.Sprintf("scale=%d:%d,fps=25", config.FrameWidth, config.FrameHeight)

	commonArgs := []string{
		"-hide_banner", "-loglevel", "error",
		"-fflags", "nobuffer", "-flags", "low_delay",
		"-probesize", "32", "-analyzeduration", "0",
		"-threads", "1", "-f", "rawvideo",
		"-pix_fmt", "rgb24", "-vf", vfArg, "-",
	}

	ffmpegArgs = append(ffmpegArgs, commonArgs...)
	ffmpegCmd := exec.Command("ffmpeg", ffmpegArgs...)

	ffmpegStdout, err := ffmpegCmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get FFmpeg stdout pipe: %w", err)
	}
	if err := ffmpegCmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start FFmpeg: %w", err)
	}
	log.Println("FFmpeg process started to capture webcam...")

	go func() {
		if err := ReadFrames(ffmpegStdout, g); err != nil {
			log.Printf("Error reading from FFmpeg: %v", err)
		}
	}()

	return ffmpegCmd, nil
}

// ReadFrames loads consecutive rgb24 frames from r into the generator until r
// is exhausted. A clean end of stream is not an error.
func ReadFrames(r io.Reader, g *Generator) error {
	buf := make([]byte, config.FrameWidth*config.FrameHeight*3)
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		g.LoadRGB24(buf, config.FrameWidth, config.FrameHeight)
	}
}
