package pipeline

import (
	"sync/atomic"

	"github.com/danmuck/mview/internal/capture"
)

// ResolutionCell holds the capture timestamp resolution. It is written at
// most once by the Source and read by the Sink.
type ResolutionCell struct {
	v atomic.Uint32
}

// Publish stores r if nothing was published yet.
func (c *ResolutionCell) Publish(r capture.Resolution) bool {
	if r == capture.ResolutionUnknown {
		return false
	}
	return c.v.CompareAndSwap(0, uint32(r))
}

func (c *ResolutionCell) Load() capture.Resolution {
	return capture.Resolution(c.v.Load())
}
