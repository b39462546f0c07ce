package render

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLineCountRawBin(t *testing.T) {
	// 25 bytes span four binary rows
	if got := WindowLines(2, Flags{RawBin: true}, 25); got != 8 {
		t.Fatalf("unexpected line count: %d", got)
	}
}

func TestLineCountRawHex(t *testing.T) {
	if got := WindowLines(2, Flags{RawHex: true}, 58); got != 8 {
		t.Fatalf("unexpected line count: %d", got)
	}
}

func TestLineCountBitPos(t *testing.T) {
	if got := WindowLines(2, Flags{BitPos: true}, 2); got != 5 {
		t.Fatalf("unexpected line count: %d", got)
	}
}

func TestLineCountTimestampAndStats(t *testing.T) {
	if got := WindowLines(2, Flags{Timestamp: true}, 2); got != 5 {
		t.Fatalf("unexpected timestamp line count: %d", got)
	}
	if got := WindowLines(2, Flags{Timestamp: true, Stats: true}, 2); got != 10 {
		t.Fatalf("unexpected timestamp+stats line count: %d", got)
	}
}

func TestLineCountASCIIHasNoSeparator(t *testing.T) {
	if got := LineCount(3, Flags{RawASCII: true}, 2, 4); got != 6 {
		t.Fatalf("unexpected line count: %d", got)
	}
}

func TestLineCountMatchesWrittenHeader(t *testing.T) {
	data := bytes.Repeat([]byte{0x41, 0x00, 0xFF}, 11)
	for _, flags := range []Flags{
		{},
		{RawHex: true},
		{RawBin: true, RawASCII: true},
		{Timestamp: true, Stats: true, RawHex: true, RawBin: true, RawASCII: true},
	} {
		var out bytes.Buffer
		if err := WriteHeader(&out, Header{Flags: flags, Time: time.Unix(0, 0), Data: data}); err != nil {
			t.Fatalf("write header: %v", err)
		}
		const fields = 4
		written := strings.Count(out.String(), "\n") + fields + 1
		if want := WindowLines(fields, flags, len(data)); written != want {
			t.Fatalf("flags=%+v: written=%d accounted=%d", flags, written, want)
		}
	}
}

func TestWriteHexRows(t *testing.T) {
	data := make([]byte, 18)
	data[0], data[1], data[17] = 0xFF, 0x0F, 0xA0
	var out bytes.Buffer
	if err := WriteHex(&out, data); err != nil {
		t.Fatalf("write hex: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected rows: %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "[FF, 0F, 00,") || lines[1] != "[00, A0]" {
		t.Fatalf("unexpected hex rows: %q", lines)
	}
}

func TestWriteBinRows(t *testing.T) {
	var out bytes.Buffer
	if err := WriteBin(&out, []byte{0x05, 0xF0}); err != nil {
		t.Fatalf("write bin: %v", err)
	}
	if out.String() != "00000101 11110000 \n" {
		t.Fatalf("unexpected bin row: %q", out.String())
	}
}

func TestWriteASCIIReplacesNonPrintable(t *testing.T) {
	var out bytes.Buffer
	if err := WriteASCII(&out, []byte("ok\n\x00~\x7f")); err != nil {
		t.Fatalf("write ascii: %v", err)
	}
	if out.String() != "ok..~.\n" {
		t.Fatalf("unexpected ascii row: %q", out.String())
	}
}

func TestWriteStatsAndBitPos(t *testing.T) {
	var out bytes.Buffer
	if err := WriteStats(&out, Counters{MessageCount: 3, MessageLen: 40, ChunkCount: 2, ChunkStart: 16, ChunkLen: 8}); err != nil {
		t.Fatalf("write stats: %v", err)
	}
	if strings.Count(out.String(), "\n") != StatsLines {
		t.Fatalf("unexpected stats block: %q", out.String())
	}
	if !strings.Contains(out.String(), "Message length: 40 bytes") {
		t.Fatalf("missing message length: %q", out.String())
	}
	out.Reset()
	if err := WriteBitPos(&out, 19); err != nil {
		t.Fatalf("write bitpos: %v", err)
	}
	if out.String() != "byte 2, bit 3\n" {
		t.Fatalf("unexpected bitpos: %q", out.String())
	}
}

func TestRedrawSkipsFirstWindow(t *testing.T) {
	rec := &Recorder{}
	d := &Redraw{R: rec, Enabled: true}
	for _, lines := range []int{7, 9, 4} {
		if err := d.Begin(); err != nil {
			t.Fatalf("begin: %v", err)
		}
		d.End(lines)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	want := "hide,hide,up 7,clear down,hide,up 9,clear down,show"
	if rec.String() != want {
		t.Fatalf("unexpected ops: got=%q want=%q", rec.String(), want)
	}
}

func TestRedrawClearAllAndDisabled(t *testing.T) {
	rec := &Recorder{}
	d := &Redraw{R: rec, Enabled: true, Mode: ClearAll}
	d.Begin()
	d.End(3)
	d.Begin()
	if rec.String() != "hide,hide,clear all" {
		t.Fatalf("unexpected clear-all ops: %q", rec.String())
	}

	rec = &Recorder{}
	d = &Redraw{R: rec}
	d.Begin()
	d.End(3)
	d.Begin()
	if rec.String() != "hide,hide" {
		t.Fatalf("disabled redraw moved the cursor: %q", rec.String())
	}
}

func TestANSISequences(t *testing.T) {
	var out bytes.Buffer
	a := NewANSI(&out)
	a.MoveUp(3)
	a.Clear(ClearDown)
	if out.String() != "\x1b[3F\x1b[2K\x1b[J" {
		t.Fatalf("unexpected sequences: %q", out.String())
	}
}
