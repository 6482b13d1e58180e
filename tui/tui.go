package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crtscan/crt"
)

// polling period of the display
const tickPeriod = time.Second / 50

// terminal size assumed until the first resize message
const (
	defaultWidth  = 80
	defaultHeight = 25
)

var statusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c0c0c0"))

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickPeriod, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model shows the most recent field of a display in the terminal. Each
// character cell is an upper half block, so a cell shows two samples of the
// raster.
type Model struct {
	d       *crt.Display
	texels  []crt.Texel
	version uint64

	width  int
	height int

	picture string
}

// New creates a viewer of d.
func New(d *crt.Display) *Model {
	m := &Model{
		d:      d,
		texels: make([]crt.Texel, d.SnapshotLen()),
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.render()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.render()

	case tickMsg:
		if m.d.Version() != m.version {
			m.version = m.d.CopySnapshot(m.texels)
			m.render()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) View() string {
	return m.picture + "\n" + statusStyle.Render(fmt.Sprintf("%s  (q to quit)", m.d.Stats()))
}

// render downsamples the copied snapshot to the terminal size.
func (m *Model) render() {
	cols := m.width
	rows := m.height - 1
	if cols < 1 || rows < 1 {
		m.picture = ""
		return
	}

	w, h := m.d.Width(), m.d.Height()
	sample := func(col, row int) lipgloss.Color {
		x := col * w / cols
		y := row * h / (rows * 2)
		r, g, b := m.texels[y*w+x].RGB()
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
	}

	var s strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			s.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			cell := lipgloss.NewStyle().
				Foreground(sample(col, row*2)).
				Background(sample(col, row*2+1))
			s.WriteString(cell.Render("▀"))
		}
	}
	m.picture = s.String()
}

// Run shows the viewer until the user quits or ctx is cancelled.
func Run(ctx context.Context, d *crt.Display) error {
	p := tea.NewProgram(New(d), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal viewer: %w", err)
	}
	return nil
}
