package pipeline

import (
	"fmt"
	"io"

	"github.com/danmuck/mview/internal/capture"
	"github.com/danmuck/mview/internal/chunk"
	"github.com/danmuck/mview/internal/config"
	"github.com/danmuck/mview/internal/decode"
	"github.com/danmuck/mview/internal/render"
	"github.com/danmuck/mview/internal/schema"
)

// Build assembles the Source and Sink for one run. followInput forces follow
// mode for inputs that never end, such as an interactive terminal.
func Build(opts config.Options, s schema.Schema, in io.Reader, out Output, followInput bool) (*Source, *Sink, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	slicer, err := chunk.NewSlicer(opts.ChunkSize, s.DeclaredBits(), opts.ByteOffset, opts.BitOffset)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: %w", err)
	}

	flags := render.Flags{
		RawHex:    opts.RawHex,
		RawBin:    opts.RawBin,
		RawASCII:  opts.RawASCII,
		Timestamp: opts.Timestamp,
		Stats:     opts.Stats,
		BitPos:    opts.BitPos,
	}
	var renderer render.Renderer = render.Nop{}
	if out.Interactive {
		renderer = render.NewANSI(out.W)
	}
	mode := render.ClearDown
	if opts.Clear {
		mode = render.ClearAll
	}
	redraw := &render.Redraw{R: renderer, Enabled: out.Interactive && opts.Redraw(), Mode: mode}

	dec := decode.New(decode.Options{LittleEndian: opts.LittleEndian, FilterNewlines: opts.FilterNewlines})
	sink := NewSink(out.W, s, dec, slicer, flags, redraw)
	sink.Pause = opts.Pause

	src := &Source{
		In:           in,
		Capture:      opts.Capture,
		Limits:       capture.Limits{MaxRecordBytes: opts.MaxRecordBytes},
		Cell:         sink.Cell,
		Head:         opts.Head,
		Follow:       opts.Follow || followInput,
		PollInterval: opts.PollInterval,
	}
	return src, sink, nil
}
