package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/danmuck/mview/internal/logging"
)

// OpenInput opens path for reading. An empty path reads standard input and a
// .zst suffix is decompressed on the fly.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return os.Stdin, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: open input: %w", err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pipeline: open zstd input %s: %w", path, err)
	}
	return &zstdInput{dec: dec, f: f}, nil
}

type zstdInput struct {
	dec  *zstd.Decoder
	f    *os.File
	once sync.Once
	err  error
}

func (z *zstdInput) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdInput) Close() error {
	z.once.Do(func() {
		z.err = z.f.Close()
		z.dec.Close()
	})
	return z.err
}

// CloseOnCancel closes c once ctx is cancelled so that a Read blocked on an
// input that produces nothing returns. The returned func disarms it.
func CloseOnCancel(ctx context.Context, c io.Closer) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		if err := c.Close(); err != nil {
			logging.Debugf("pipeline.CloseOnCancel close input: %v", err)
		}
	})
}

// StdinInteractive reports whether standard input is a terminal.
func StdinInteractive() bool {
	return isTerminal(os.Stdin)
}

// Output is where windows are printed.
type Output struct {
	W           io.Writer
	Interactive bool
	closer      io.Closer
}

func (o Output) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// OpenOutput creates path for writing. An empty path writes standard output,
// which is interactive when it is a terminal.
func OpenOutput(path string) (Output, error) {
	if path == "" {
		return Output{
			W:           colorable.NewColorableStdout(),
			Interactive: isTerminal(os.Stdout),
		}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return Output{}, fmt.Errorf("pipeline: create output: %w", err)
	}
	return Output{W: f, closer: f}, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
