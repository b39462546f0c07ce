package pipeline

import (
	"time"

	"github.com/danmuck/mview/internal/capture"
)

const (
	MaxReadSize   = 16 * 1024
	QueueCapacity = 1000
)

// Message is one unit of input. The receiver owns Payload.
type Message struct {
	Payload  []byte
	Seconds  uint32
	Fraction uint32
	Captured bool
}

// Sentinel reports whether m marks the end of the stream.
func (m Message) Sentinel() bool {
	return len(m.Payload) == 0
}

// Time returns the capture timestamp of a captured message.
func (m Message) Time(res capture.Resolution) time.Time {
	return time.Unix(int64(m.Seconds), res.Nanos(m.Fraction))
}
