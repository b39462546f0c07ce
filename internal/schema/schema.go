package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/mview/internal/logging"
)

const CommentMarker = "#"

var ErrMissingSeparator = errors.New("schema: could not find ':' in line")

// SyntaxError reports a schema line that cannot be compiled.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("schema: %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("schema: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Field is one compiled schema entry.
type Field struct {
	Name   string
	Kind   Kind
	Token  string // kind token as written, kept for diagnostics
	Length int
	Format Format
}

func (f Field) Width() int {
	return f.Kind.Width(f.Length)
}

// Schema is the ordered field list applied to every window.
type Schema []Field

// DeclaredBits sums the field widths. The sum need not be a multiple of 8.
func (s Schema) DeclaredBits() int {
	total := 0
	for _, f := range s {
		total += f.Width()
	}
	return total
}

// Rendered counts fields that produce an output line.
func (s Schema) Rendered() int {
	n := 0
	for _, f := range s {
		if f.Kind.Known() {
			n++
		}
	}
	return n
}

// Clean drops a trailing comment and reduces the line to the content before
// its first whitespace.
func Clean(line string) string {
	if i := strings.Index(line, CommentMarker); i >= 0 {
		line = line[:i]
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// ParseLine compiles one cleaned line of the form name:kind or
// name:kind:param.
func ParseLine(line string) (Field, error) {
	name, rest, ok := strings.Cut(line, ":")
	if !ok {
		return Field{}, &SyntaxError{Text: line, Err: ErrMissingSeparator}
	}
	token, param, hasParam := strings.Cut(rest, ":")
	if !hasParam {
		param = "0"
	}

	f := Field{
		Name:   name,
		Kind:   ParseKind(token),
		Token:  token,
		Format: ParseFormat(param),
	}
	if n, err := strconv.ParseUint(strings.TrimSpace(param), 10, 31); err == nil {
		f.Length = int(n)
	}
	return f, nil
}

// Compile parses schema lines in order. Blank and comment-only lines are
// skipped; unknown kinds are kept with zero width and reported once each.
func Compile(lines []string) (Schema, error) {
	out := make(Schema, 0, len(lines))
	for i, raw := range lines {
		line := Clean(raw)
		if line == "" {
			continue
		}
		f, err := ParseLine(line)
		if err != nil {
			var se *SyntaxError
			if errors.As(err, &se) {
				se.Line = i + 1
				return nil, se
			}
			return nil, err
		}
		if !f.Kind.Known() {
			logging.Warnf("schema.Compile unknown type line=%d field=%q type=%q", i+1, f.Name, f.Token)
		}
		out = append(out, f)
	}
	logging.Debugf("schema.Compile fields=%d declared_bits=%d", len(out), out.DeclaredBits())
	return out, nil
}

// DeclaredBits is the width-table sum over a schema.
func DeclaredBits(s Schema) int {
	return s.DeclaredBits()
}
