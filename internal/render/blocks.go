package render

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TimestampLayout renders wall clock and capture times.
const TimestampLayout = "2006-01-02 15:04:05.000000000 -07:00"

// WriteHex prints 16 bytes per row as "[FF, 0F, ...]".
func WriteHex(w io.Writer, data []byte) error {
	for start := 0; start < len(data); start += HexRowBytes {
		row := data[start:min(start+HexRowBytes, len(data))]
		parts := make([]string, len(row))
		for i, b := range row {
			parts[i] = fmt.Sprintf("%02X", b)
		}
		if _, err := fmt.Fprintf(w, "[%s]\n", strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteBin prints 8 bytes per row, each as eight binary digits and a space.
func WriteBin(w io.Writer, data []byte) error {
	for start := 0; start < len(data); start += BinRowBytes {
		var b strings.Builder
		for _, c := range data[start:min(start+BinRowBytes, len(data))] {
			fmt.Fprintf(&b, "%08b ", c)
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteASCII prints 16 characters per row with '.' for non-printables.
func WriteASCII(w io.Writer, data []byte) error {
	for start := 0; start < len(data); start += HexRowBytes {
		row := data[start:min(start+HexRowBytes, len(data))]
		out := make([]byte, 0, len(row)+1)
		for _, c := range row {
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			out = append(out, c)
		}
		out = append(out, '\n')
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

func WriteTimestamp(w io.Writer, ts time.Time) error {
	_, err := fmt.Fprintf(w, "%s\n", ts.Format(TimestampLayout))
	return err
}

// Counters are the statistics printed with a window.
type Counters struct {
	MessageCount uint64
	MessageLen   int
	ChunkCount   int
	ChunkStart   int
	ChunkLen     int
}

// WriteStats prints StatsLines lines.
func WriteStats(w io.Writer, c Counters) error {
	_, err := fmt.Fprintf(w,
		"Message no: %d\nMessage length: %d bytes\nCurrent chunk in this message: %d\nChunk start: byte %d\nChunk length: %d bytes\n",
		c.MessageCount, c.MessageLen, c.ChunkCount, c.ChunkStart, c.ChunkLen)
	return err
}

// WriteBitPos prints the position of a bit cursor.
func WriteBitPos(w io.Writer, cursor int) error {
	_, err := fmt.Fprintf(w, "byte %d, bit %d\n", cursor/8, cursor%8)
	return err
}

// Header describes the block printed above a window's fields.
type Header struct {
	Flags    Flags
	Time     time.Time
	Counters Counters
	Data     []byte
}

// WriteHeader prints the enabled blocks followed by one separator line.
func WriteHeader(w io.Writer, h Header) error {
	f := h.Flags
	if f.Timestamp {
		if err := WriteTimestamp(w, h.Time); err != nil {
			return err
		}
	}
	if f.Stats {
		if err := WriteStats(w, h.Counters); err != nil {
			return err
		}
	}
	if f.RawHex {
		if err := WriteHex(w, h.Data); err != nil {
			return err
		}
	}
	if f.RawASCII {
		if err := WriteASCII(w, h.Data); err != nil {
			return err
		}
	}
	if f.RawBin {
		if err := WriteBin(w, h.Data); err != nil {
			return err
		}
	}
	if f.Header() {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
