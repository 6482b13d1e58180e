package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"crtscan/config"
	"crtscan/crt"
)

func newTestDisplay(t *testing.T) *crt.Display {
	t.Helper()
	d, err := crt.New(config.DefaultTiming())
	if err != nil {
		t.Fatalf("crt.New: %v", err)
	}
	return d
}

func feedField(d *crt.Display) {
	tm := d.Timing()
	u := crt.SampleUnit{Format: crt.WideBitmap}
	for i := range u.Pixels {
		u.Pixels[i] = crt.Colour{R: 7, G: 7, B: 7}
	}
	for i := 0; i < tm.FieldLines*tm.LineUnits; i++ {
		v := u
		v.HSync = i%tm.LineUnits == tm.ActiveUnits
		d.Advance(&v)
	}
	d.Advance(&crt.SampleUnit{VSync: true})
	d.Advance(&crt.SampleUnit{})
}

func TestViewSize(t *testing.T) {
	m := New(newTestDisplay(t))
	m.Update(tea.WindowSizeMsg{Width: 12, Height: 6})

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 6 {
		t.Fatalf("view has %d lines, want 6", len(lines))
	}
	if n := strings.Count(lines[0], "▀"); n != 12 {
		t.Errorf("first row has %d cells, want 12", n)
	}
	if !strings.Contains(lines[5], "fields: 0") {
		t.Errorf("status line: %q", lines[5])
	}
}

func TestTickCopiesNewField(t *testing.T) {
	d := newTestDisplay(t)
	m := New(d)

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatalf("tick did not schedule another tick")
	}
	if m.version != 0 {
		t.Fatalf("version changed without a field: %d", m.version)
	}

	feedField(d)
	m.Update(tickMsg(time.Now()))
	if m.version != 1 {
		t.Errorf("version after a field: got %d, want 1", m.version)
	}
	if m.texels[0] != 0xffffffff {
		t.Errorf("snapshot not copied: %08x", uint32(m.texels[0]))
	}
	if !strings.Contains(m.View(), "fields: 1") {
		t.Errorf("status not updated")
	}
}

func TestQuitKeys(t *testing.T) {
	m := New(newTestDisplay(t))
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%v: no command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: expected quit", key)
		}
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}); cmd != nil {
		t.Errorf("other keys should be ignored")
	}
}
