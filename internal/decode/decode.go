package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/mview/internal/bits"
	"github.com/danmuck/mview/internal/logging"
	"github.com/danmuck/mview/internal/schema"
)

// InsufficientData replaces the value of a field that runs past the window.
const InsufficientData = "values size is bigger than what is left of that data chunk"

// TooWide replaces the value of an arbitrary-width integer above 128 bits.
const TooWide = "arbitrary integer is wider than 128 bit"

var ErrTooWide = errors.New("decode: arbitrary integer wider than 128 bit")

type Options struct {
	LittleEndian   bool
	FilterNewlines bool
}

type Status uint8

const (
	StatusOK Status = iota
	StatusShort
	StatusUnknown
	StatusTooWide
)

func (s Status) String() string {
	switch s {
	case StatusShort:
		return "short"
	case StatusUnknown:
		return "unknown_kind"
	case StatusTooWide:
		return "too_wide"
	default:
		return "ok"
	}
}

// Result is one decoded field. Bits is how far the cursor advances.
type Result struct {
	Text   string
	Bits   int
	Status Status
}

// Rendered reports whether the field produces an output line.
func (r Result) Rendered() bool {
	return r.Status != StatusUnknown
}

type Decoder struct {
	opts Options
}

func New(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

func (d *Decoder) Options() Options {
	return d.opts
}

// Decode renders field f read from window at bit cursor. It never reads
// outside the window and is a pure function of its inputs.
func (d *Decoder) Decode(f schema.Field, window []byte, cursor int) Result {
	fn := lookup(f.Kind)
	if fn == nil {
		logging.Errf("decode.Decode unknown type field=%q type=%q", f.Name, f.Token)
		return Result{Status: StatusUnknown}
	}

	width := f.Width()
	if !bits.Fits(len(window), cursor, width) {
		return Result{Text: InsufficientData, Bits: width, Status: StatusShort}
	}

	text, err := fn(d, f, span{window: window, start: cursor, width: width})
	switch {
	case errors.Is(err, ErrTooWide):
		return Result{Text: TooWide, Bits: width, Status: StatusTooWide}
	case err != nil:
		logging.Errf("decode.Decode field=%q cursor=%d: %v", f.Name, cursor, err)
		return Result{Text: InsufficientData, Bits: width, Status: StatusShort}
	}
	return Result{Text: text, Bits: width}
}

// Flusher is implemented by sinks that buffer output.
type Flusher interface {
	Flush() error
}

// WriteField decodes f, writes "name: value" to w, flushes w, and advances
// cursor. Unknown kinds write nothing and leave cursor unchanged.
func (d *Decoder) WriteField(w io.Writer, f schema.Field, window []byte, cursor *int) (Result, error) {
	res := d.Decode(f, window, *cursor)
	*cursor += res.Bits
	if !res.Rendered() {
		return res, nil
	}
	if _, err := fmt.Fprintf(w, "%s: %s\n", f.Name, res.Text); err != nil {
		return res, fmt.Errorf("decode: write field %q: %w", f.Name, err)
	}
	if fl, ok := w.(Flusher); ok {
		if err := fl.Flush(); err != nil {
			return res, fmt.Errorf("decode: flush field %q: %w", f.Name, err)
		}
	}
	return res, nil
}

// Window decodes every field of s against one window, strictly in order,
// and returns the results with the final cursor.
func (d *Decoder) Window(s schema.Schema, window []byte, start int) ([]Result, int) {
	cursor := start
	out := make([]Result, 0, len(s))
	for _, f := range s {
		res := d.Decode(f, window, cursor)
		cursor += res.Bits
		out = append(out, res)
	}
	return out, cursor
}
