// Package chunk maps variable-length messages onto fixed-size decode windows.
package chunk

import (
	"errors"
	"sync"

	"github.com/danmuck/mview/internal/logging"
)

var (
	ErrZeroWindow     = errors.New("chunk: window size resolves to zero")
	ErrNegativeSize   = errors.New("chunk: negative window size")
	ErrNegativeOffset = errors.New("chunk: negative offset")
)

// EffectiveSize returns explicit when it is set, otherwise the whole bytes
// covered by the declared schema bits.
func EffectiveSize(explicit, declaredBits int) (int, error) {
	if explicit < 0 {
		return 0, ErrNegativeSize
	}
	size := explicit
	if size == 0 {
		size = declaredBits / 8
	}
	if size == 0 {
		return 0, ErrZeroWindow
	}
	return size, nil
}

// TrailingBits reports how many declared bits do not fill a whole byte.
func TrailingBits(declaredBits int) int {
	return declaredBits % 8
}

// Window is one slice of a message. Start is its byte offset in the message.
type Window struct {
	Start int
	Data  []byte
}

type Slicer struct {
	Size       int
	ByteOffset int
	BitOffset  int

	warnOnce sync.Once
}

// NewSlicer validates the window geometry and warns once when the schema
// leaves trailing bits unused.
func NewSlicer(explicit, declaredBits, byteOffset, bitOffset int) (*Slicer, error) {
	if byteOffset < 0 || bitOffset < 0 {
		return nil, ErrNegativeOffset
	}
	size, err := EffectiveSize(explicit, declaredBits)
	if err != nil {
		return nil, err
	}
	s := &Slicer{Size: size, ByteOffset: byteOffset, BitOffset: bitOffset}
	if trailing := TrailingBits(declaredBits); trailing != 0 {
		s.warnOnce.Do(func() {
			logging.Warnf("chunk.NewSlicer schema ends with %d unused trailing bits per window", trailing)
		})
	}
	logging.Debugf("chunk.NewSlicer size=%d byte_offset=%d bit_offset=%d", size, byteOffset, bitOffset)
	return s, nil
}

// StartCursor is the bit cursor every window starts at.
func (s *Slicer) StartCursor() int {
	return s.BitOffset + s.ByteOffset*8
}

// Split cuts msg into consecutive windows of Size bytes. The final window may
// be shorter. Windows share memory with msg.
func (s *Slicer) Split(msg []byte) []Window {
	if len(msg) == 0 || s.Size <= 0 {
		return nil
	}
	out := make([]Window, 0, (len(msg)+s.Size-1)/s.Size)
	for start := 0; start < len(msg); start += s.Size {
		end := min(start+s.Size, len(msg))
		out = append(out, Window{Start: start, Data: msg[start:end]})
	}
	return out
}

// Count returns the number of windows Split would yield for n bytes.
func (s *Slicer) Count(n int) int {
	if n <= 0 || s.Size <= 0 {
		return 0
	}
	return (n + s.Size - 1) / s.Size
}
