package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/danmuck/mview/internal/chunk"
	"github.com/danmuck/mview/internal/decode"
	"github.com/danmuck/mview/internal/logging"
	"github.com/danmuck/mview/internal/observability"
	"github.com/danmuck/mview/internal/render"
	"github.com/danmuck/mview/internal/schema"
)

// Sink decodes every window of every message and prints it.
type Sink struct {
	Schema  schema.Schema
	Decoder *decode.Decoder
	Slicer  *chunk.Slicer
	Flags   render.Flags
	Redraw  *render.Redraw
	Pause   time.Duration
	Stats   *Stats
	Cell    *ResolutionCell
	Now     func() time.Time

	w *bufio.Writer
}

func NewSink(w io.Writer, s schema.Schema, d *decode.Decoder, slicer *chunk.Slicer, flags render.Flags, redraw *render.Redraw) *Sink {
	if redraw == nil {
		redraw = &render.Redraw{R: render.Nop{}}
	}
	return &Sink{
		Schema:  s,
		Decoder: d,
		Slicer:  slicer,
		Flags:   flags,
		Redraw:  redraw,
		Stats:   &Stats{},
		Cell:    &ResolutionCell{},
		Now:     time.Now,
		w:       bufio.NewWriter(w),
	}
}

// Run consumes the queue until the end-of-stream sentinel or cancellation.
func (s *Sink) Run(ctx context.Context, q *Queue) error {
	defer q.Close()
	defer func() {
		if err := s.Redraw.Close(); err != nil {
			logging.Debugf("pipeline.Sink restore cursor: %v", err)
		}
	}()

	for {
		m, ok := q.Receive(ctx)
		if !ok {
			return nil
		}
		observability.SetQueueDepth(q.Len())
		if m.Sentinel() {
			logging.Debugf("pipeline.Sink end of stream messages=%d", s.Stats.Snapshot().MessageCount)
			return nil
		}
		if err := s.Handle(ctx, m); err != nil {
			return err
		}
	}
}

// Handle renders every window of one message.
func (s *Sink) Handle(ctx context.Context, m Message) error {
	s.Stats.BeginMessage(len(m.Payload))
	observability.RecordMessage(len(m.Payload))

	for _, win := range s.Slicer.Split(m.Payload) {
		s.Stats.BeginWindow(win.Start)
		if err := s.window(m, win); err != nil {
			return err
		}
		observability.RecordWindow()
		if !s.pause(ctx) {
			return nil
		}
	}
	return nil
}

func (s *Sink) window(m Message, win chunk.Window) error {
	if err := s.Redraw.Begin(); err != nil {
		return fmt.Errorf("pipeline: redraw: %w", err)
	}

	header := render.Header{
		Flags:    s.Flags,
		Time:     s.timestamp(m),
		Counters: s.Stats.Counters(len(win.Data)),
		Data:     win.Data,
	}
	if err := render.WriteHeader(s.w, header); err != nil {
		return fmt.Errorf("pipeline: write header: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("pipeline: flush header: %w", err)
	}

	cursor := s.Slicer.StartCursor()
	for _, f := range s.Schema {
		if s.Flags.BitPos && f.Kind.Known() {
			if err := render.WriteBitPos(s.w, cursor); err != nil {
				return fmt.Errorf("pipeline: write bit position: %w", err)
			}
		}
		res, err := s.Decoder.WriteField(s.w, f, win.Data, &cursor)
		if err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		if res.Status != decode.StatusOK {
			s.Stats.AddAnomaly()
			observability.RecordAnomaly(res.Status.String())
		}
	}

	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("pipeline: write window end: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("pipeline: flush window: %w", err)
	}
	s.Redraw.End(render.WindowLines(s.Schema.Rendered(), s.Flags, len(win.Data)))
	return nil
}

func (s *Sink) timestamp(m Message) time.Time {
	if m.Captured && s.Cell != nil {
		if res := s.Cell.Load(); res != 0 {
			return m.Time(res)
		}
	}
	return s.Now()
}

// pause waits between windows. It reports false when ctx was cancelled.
func (s *Sink) pause(ctx context.Context) bool {
	if s.Pause <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(s.Pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
