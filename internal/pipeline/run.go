package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/danmuck/mview/internal/logging"
)

// Run starts the Source and the Sink, waits for both, and returns the first
// error either of them produced. Panics in a stage are returned as errors.
// Once the sink has stopped after cancellation or an error, Run returns
// without waiting for a source that is still blocked reading.
func Run(ctx context.Context, src *Source, sink *Sink) error {
	q := NewQueue(QueueCapacity)
	if src.Cell == nil {
		src.Cell = sink.Cell
	}

	sourceErr := make(chan error, 1)
	sinkErr := make(chan error, 1)
	go func() {
		sourceErr <- stage("source", func() error { return src.Run(ctx, q) })
	}()
	go func() {
		sinkErr <- stage("sink", func() error { return sink.Run(ctx, q) })
	}()

	var first error
	sourceDone, sinkDone := false, false
	for !sourceDone || !sinkDone {
		var err error
		select {
		case err = <-sourceErr:
			sourceDone = true
		case err = <-sinkErr:
			sinkDone = true
		}
		if err != nil && first == nil {
			first = err
		}
		if sinkDone && !sourceDone && (ctx.Err() != nil || first != nil) {
			// a source blocked in Read on a quiet input never returns on its own
			logging.Debugf("pipeline.Run sink stopped, not waiting for source err=%v", first)
			return first
		}
	}
	logging.Debugf("pipeline.Run joined err=%v", first)
	return first
}

func stage(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errf("pipeline.%s panic: %v\n%s", name, r, debug.Stack())
			err = fmt.Errorf("pipeline: %s panicked: %v", name, r)
		}
	}()
	return fn()
}
