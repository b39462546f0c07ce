package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/danmuck/mview/internal/capture"
	"github.com/danmuck/mview/internal/logging"
	"github.com/danmuck/mview/internal/observability"
)

// Source reads the input and feeds the queue.
type Source struct {
	In      io.Reader
	Capture bool
	Limits  capture.Limits
	Cell    *ResolutionCell

	// Head sends only the first Head bytes (or the first record payload cut
	// to Head bytes) and stops.
	Head int

	// Follow treats end of input as "no data yet" and polls until cancelled.
	Follow       bool
	PollInterval time.Duration
}

// Run reads until end of input, cancellation, or the sink going away, then
// sends the end-of-stream sentinel.
func (s *Source) Run(ctx context.Context, q *Queue) (err error) {
	defer func() {
		if ferr := q.Finish(); ferr != nil {
			logging.Debugf("pipeline.Source sentinel not delivered: %v", ferr)
		}
	}()

	in := s.In
	if s.Follow {
		in = &followReader{ctx: ctx, r: s.In, poll: s.PollInterval}
	}
	if s.Capture {
		err = s.runCapture(ctx, q, in)
	} else {
		err = s.runRaw(ctx, q, in)
	}
	if err != nil && (errors.Is(err, ErrSinkGone) || ctx.Err() != nil) {
		// includes reads failing because the input was closed on cancel
		logging.Debugf("pipeline.Source stopped: %v", err)
		return nil
	}
	return err
}

func (s *Source) send(ctx context.Context, q *Queue, m Message) error {
	if err := q.Send(ctx, m); err != nil {
		return err
	}
	observability.SetQueueDepth(q.Len())
	return nil
}

func (s *Source) runRaw(ctx context.Context, q *Queue, in io.Reader) error {
	if s.Head > 0 {
		buf := make([]byte, s.Head)
		n, err := io.ReadFull(in, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("pipeline: read input: %w", err)
		}
		if n == 0 {
			return nil
		}
		return s.send(ctx, q, Message{Payload: buf[:n]})
	}

	buf := make([]byte, MaxReadSize)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			payload := make([]byte, n)
			copy(payload, buf[:n])
			if serr := s.send(ctx, q, Message{Payload: payload}); serr != nil {
				return serr
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("pipeline: read input: %w", err)
		}
		if n == 0 && !s.Follow {
			// a reader that makes no progress is treated as finished
			return nil
		}
	}
}

func (s *Source) runCapture(ctx context.Context, q *Queue, in io.Reader) error {
	rd, err := capture.NewReader(in, s.Limits)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if s.Cell != nil && s.Cell.Publish(rd.Resolution()) {
		logging.Debugf("pipeline.Source capture resolution=%s link_type=%d snaplen=%d", rd.Resolution(), rd.LinkType(), rd.SnapLen())
	}

	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}
		if len(rec.Payload) == 0 {
			continue
		}
		payload := rec.Payload
		if s.Head > 0 && len(payload) > s.Head {
			payload = payload[:s.Head]
		}
		m := Message{
			Payload:  payload,
			Seconds:  rec.Seconds,
			Fraction: rec.Fraction,
			Captured: true,
		}
		if err := s.send(ctx, q, m); err != nil {
			return err
		}
		if s.Head > 0 {
			return nil
		}
	}
}

// followReader turns end of input into a wait for more data.
type followReader struct {
	ctx  context.Context
	r    io.Reader
	poll time.Duration
}

func (f *followReader) Read(p []byte) (int, error) {
	poll := f.poll
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	for {
		n, err := f.r.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		select {
		case <-f.ctx.Done():
			return 0, f.ctx.Err()
		case <-time.After(poll):
		}
	}
}
