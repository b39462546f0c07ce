package bits

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/icza/bitio"
)

var ErrOutOfRange = errors.New("bits: range exceeds window")

// Fits reports whether n bits starting at start lie inside a window of
// windowLen bytes.
func Fits(windowLen, start, n int) bool {
	return start >= 0 && n >= 0 && start+n <= windowLen*8
}

// Extract copies n bits of window, starting at bit start (MSB-first
// numbering), into a fresh left-aligned buffer of ceil(n/8) bytes. Bits past n
// in the last byte are zero.
func Extract(window []byte, start, n int) ([]byte, error) {
	if !Fits(len(window), start, n) {
		return nil, fmt.Errorf("%w: start=%d bits=%d window=%d bytes", ErrOutOfRange, start, n, len(window))
	}
	if n == 0 {
		return []byte{}, nil
	}

	r := bitio.NewReader(bytes.NewReader(window[start/8:]))
	if skip := uint8(start % 8); skip > 0 {
		if _, err := r.ReadBits(skip); err != nil {
			return nil, fmt.Errorf("bits: skip %d: %w", skip, err)
		}
	}

	var out bytes.Buffer
	out.Grow((n + 7) / 8)
	w := bitio.NewWriter(&out)
	for left := n; left > 0; {
		k := left
		if k > 64 {
			k = 64
		}
		v, err := r.ReadBits(uint8(k))
		if err != nil {
			return nil, fmt.Errorf("bits: read %d: %w", k, err)
		}
		if err := w.WriteBits(v, uint8(k)); err != nil {
			return nil, fmt.Errorf("bits: write %d: %w", k, err)
		}
		left -= k
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("bits: flush: %w", err)
	}
	return out.Bytes(), nil
}

// BitAt returns bit i of a left-aligned buffer.
func BitAt(buf []byte, i int) bool {
	return buf[i/8]&(0x80>>uint(i%8)) != 0
}
