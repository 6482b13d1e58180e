package video

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
)

// FFplay is a running ffplay window fed raw rgb24 fields through Pipe.
type FFplay struct {
	Pipe io.WriteCloser
	Cmd  *exec.Cmd
}

func ffplayArgs(width, height int, rate float64) []string {
	return []string{
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%g", rate),
		"-i", "-",
		"-window_title", "crtscan",
		"-fflags", "nobuffer",
		"-flags", "low_delay",
	}
}

// Start launches ffplay for fields of the given size arriving at rate per
// second.
func Start(width, height int, rate float64) (*FFplay, error) {
	path, err := exec.LookPath("ffplay")
	if err != nil {
		return nil, fmt.Errorf("ffplay sink: %w", err)
	}

	cmd := exec.Command(path, ffplayArgs(width, height, rate)...)
	pipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffplay stdin: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffplay: %w", err)
	}

	log.Printf("ffplay started for a %dx%d raster", width, height)
	return &FFplay{Pipe: pipe, Cmd: cmd}, nil
}

// Stop closes the pipe and kills the process.
func (f *FFplay) Stop() {
	f.Pipe.Close()
	f.Cmd.Process.Kill()
}
