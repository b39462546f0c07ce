// Package pcaptest builds little-endian pcap captures for tests.
package pcaptest

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

type Record struct {
	Time    time.Time
	Payload []byte
}

// Capture returns a capture file holding records. nanos selects nanosecond
// timestamps.
func Capture(t testing.TB, nanos bool, records ...Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	if nanos {
		w = pcapgo.NewWriterNanos(&buf)
	}
	if err := w.WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("write capture header: %v", err)
	}
	for _, r := range records {
		ci := gopacket.CaptureInfo{
			Timestamp:     r.Time,
			CaptureLength: len(r.Payload),
			Length:        len(r.Payload),
		}
		if err := w.WritePacket(ci, r.Payload); err != nil {
			t.Fatalf("write capture record: %v", err)
		}
	}
	return buf.Bytes()
}
