package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type ClearMode uint8

const (
	ClearDown ClearMode = iota
	ClearAll
)

func (m ClearMode) String() string {
	if m == ClearAll {
		return "all"
	}
	return "down"
}

// Renderer moves the terminal cursor around printed windows.
type Renderer interface {
	HideCursor() error
	ShowCursor() error
	MoveUp(n int) error
	Clear(mode ClearMode) error
}

// ANSI writes VT100 control sequences.
type ANSI struct {
	W io.Writer
}

func NewANSI(w io.Writer) *ANSI {
	return &ANSI{W: w}
}

func (a *ANSI) HideCursor() error {
	return a.write("\x1b[?25l")
}

func (a *ANSI) ShowCursor() error {
	return a.write("\x1b[?25h")
}

// MoveUp moves the cursor n lines up to column one.
func (a *ANSI) MoveUp(n int) error {
	if n <= 0 {
		return a.write("\r")
	}
	return a.write(fmt.Sprintf("\x1b[%dF", n))
}

func (a *ANSI) Clear(mode ClearMode) error {
	if mode == ClearAll {
		return a.write("\x1b[2J\x1b[H")
	}
	return a.write("\x1b[2K\x1b[J")
}

func (a *ANSI) write(seq string) error {
	if _, err := io.WriteString(a.W, seq); err != nil {
		return fmt.Errorf("render: terminal write: %w", err)
	}
	return nil
}

// Nop is used when output is not an interactive terminal.
type Nop struct{}

func (Nop) HideCursor() error { return nil }
func (Nop) ShowCursor() error { return nil }
func (Nop) MoveUp(int) error { return nil }
func (Nop) Clear(ClearMode) error { return nil }

// Recorder keeps every operation as text, e.g. "up 7" or "clear down".
type Recorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *Recorder) HideCursor() error {
	r.add("hide")
	return nil
}

func (r *Recorder) ShowCursor() error {
	r.add("show")
	return nil
}

func (r *Recorder) MoveUp(n int) error {
	r.add(fmt.Sprintf("up %d", n))
	return nil
}

func (r *Recorder) Clear(mode ClearMode) error {
	r.add("clear " + mode.String())
	return nil
}

func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func (r *Recorder) String() string {
	return strings.Join(r.Ops(), ",")
}

func (r *Recorder) add(op string) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Redraw tracks the height of the last printed window and rewinds over it
// before the next one.
type Redraw struct {
	R       Renderer
	Enabled bool
	Mode    ClearMode

	prev  int
	drawn bool
}

// Begin prepares the terminal for a window. The first window is printed
// without any cursor movement.
func (d *Redraw) Begin() error {
	if err := d.R.HideCursor(); err != nil {
		return err
	}
	if !d.Enabled || !d.drawn {
		return nil
	}
	if d.Mode == ClearAll {
		return d.R.Clear(ClearAll)
	}
	if err := d.R.MoveUp(d.prev); err != nil {
		return err
	}
	return d.R.Clear(ClearDown)
}

// End records the number of lines the window just printed.
func (d *Redraw) End(lines int) {
	d.prev = lines
	d.drawn = true
}

// Close restores the cursor.
func (d *Redraw) Close() error {
	return d.R.ShowCursor()
}
