package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/mview/internal/capture"
	"github.com/danmuck/mview/internal/chunk"
	"github.com/danmuck/mview/internal/config"
	"github.com/danmuck/mview/internal/decode"
	"github.com/danmuck/mview/internal/render"
	"github.com/danmuck/mview/internal/schema"
	"github.com/danmuck/mview/internal/testutil/pcaptest"
	"github.com/danmuck/mview/internal/testutil/testlog"
	"github.com/klauspost/compress/zstd"
)

func compile(t *testing.T, lines ...string) schema.Schema {
	t.Helper()
	s, err := schema.Compile(lines)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return s
}

func newSink(t *testing.T, w io.Writer, s schema.Schema, flags render.Flags, redraw *render.Redraw) *Sink {
	t.Helper()
	slicer, err := chunk.NewSlicer(0, s.DeclaredBits(), 0, 0)
	if err != nil {
		t.Fatalf("new slicer: %v", err)
	}
	return NewSink(w, s, decode.New(decode.Options{}), slicer, flags, redraw)
}

func TestRunRendersEveryWindowAndStopsOnSentinel(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	sink := newSink(t, &out, compile(t, "a:u8", "b:u8:hex"), render.Flags{}, nil)
	src := &Source{In: bytes.NewReader([]byte{1, 255, 2, 16})}

	if err := Run(context.Background(), src, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "a: 1\nb: 0xFF\n\na: 2\nb: 0x10\n\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
	snap := sink.Stats.Snapshot()
	if snap.MessageCount != 1 || snap.ChunkCount != 2 || snap.Windows != 2 || snap.Bytes != 4 {
		t.Fatalf("unexpected stats: %+v", snap)
	}
}

func TestRunShortLastWindowUsesDiagnostic(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	sink := newSink(t, &out, compile(t, "a:u16"), render.Flags{}, nil)
	src := &Source{In: bytes.NewReader([]byte{0, 1, 2})}

	if err := Run(context.Background(), src, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "a: 1\n\na: " + decode.InsufficientData + "\n\n"
	if out.String() != want {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if sink.Stats.Snapshot().Anomalies != 1 {
		t.Fatalf("expected one anomaly")
	}
}

func TestRunHeadSendsOneMessage(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	sink := newSink(t, &out, compile(t, "a:u8"), render.Flags{}, nil)
	src := &Source{In: bytes.NewReader(bytes.Repeat([]byte{7}, 100)), Head: 10}

	if err := Run(context.Background(), src, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := sink.Stats.Snapshot()
	if snap.MessageCount != 1 || snap.Bytes != 10 || snap.Windows != 10 {
		t.Fatalf("unexpected stats: %+v", snap)
	}
}

type endlessReader struct {
	mu    sync.Mutex
	reads int
}

func (r *endlessReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	for i := range p {
		p[i] = 0xAB
	}
	return len(p), nil
}

func (r *endlessReader) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func TestSourceBlocksOnFullQueue(t *testing.T) {
	testlog.Start(t)
	q := NewQueue(4)
	in := &endlessReader{}
	src := &Source{In: in}

	done := make(chan error, 1)
	go func() { done <- src.Run(context.Background(), q) }()

	deadline := time.Now().Add(2 * time.Second)
	for q.Len() < q.Cap() {
		if time.Now().After(deadline) {
			t.Fatalf("queue never filled: len=%d", q.Len())
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if q.Len() > q.Cap() || in.Reads() > q.Cap()+1 {
		t.Fatalf("source was not held back: len=%d reads=%d", q.Len(), in.Reads())
	}

	q.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("source returned error after sink left: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("source did not stop after sink left")
	}
}

type growingReader struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (g *growingReader) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buf.Read(p)
}

func (g *growingReader) Append(b []byte) {
	g.mu.Lock()
	g.buf.Write(b)
	g.mu.Unlock()
}

func TestFollowRetriesUntilCancelled(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	sink := newSink(t, &out, compile(t, "a:u8"), render.Flags{}, nil)
	in := &growingReader{}
	src := &Source{In: in, Follow: true, PollInterval: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Run(ctx, src, sink) }()

	time.Sleep(10 * time.Millisecond)
	in.Append([]byte{42})

	deadline := time.Now().Add(2 * time.Second)
	for sink.Stats.Snapshot().MessageCount == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("appended data was never read")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
	if out.String() != "a: 42\n\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunCaptureUsesRecordPayloadsAndResolution(t *testing.T) {
	testlog.Start(t)
	file := pcaptest.Capture(t, false,
		pcaptest.Record{Time: time.Unix(10, 5000), Payload: []byte{0x01, 0x02}},
		pcaptest.Record{Time: time.Unix(11, 5000), Payload: []byte{0x03, 0x04, 0x05, 0x06}},
	)

	var out bytes.Buffer
	sink := newSink(t, &out, compile(t, "v:u16"), render.Flags{Timestamp: true}, nil)
	src := &Source{In: bytes.NewReader(file), Capture: true}
	if err := Run(context.Background(), src, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sink.Cell.Load() != capture.ResolutionMicro {
		t.Fatalf("resolution not published: %s", sink.Cell.Load())
	}
	stamp := time.Unix(10, 5000).Format(render.TimestampLayout)
	if !strings.HasPrefix(out.String(), stamp+"\n\nv: 258\n\n") {
		t.Fatalf("unexpected first window: %q", out.String())
	}
	if snap := sink.Stats.Snapshot(); snap.MessageCount != 2 || snap.Windows != 3 {
		t.Fatalf("unexpected stats: %+v", snap)
	}
}

func TestRunRedrawsFromSecondWindow(t *testing.T) {
	testlog.Start(t)
	rec := &render.Recorder{}
	var out bytes.Buffer
	sink := newSink(t, &out, compile(t, "a:u8", "skip:float", "b:u8"), render.Flags{RawHex: true},
		&render.Redraw{R: rec, Enabled: true})
	src := &Source{In: bytes.NewReader([]byte{1, 2, 3, 4})}

	if err := Run(context.Background(), src, sink); err != nil {
		t.Fatalf("run: %v", err)
	}
	// two rendered fields, the blank line, one hex row and the separator
	if rec.String() != "hide,hide,up 5,clear down,show" {
		t.Fatalf("unexpected redraw ops: %q", rec.String())
	}
	if got := strings.Count(out.String(), "\n"); got != 10 {
		t.Fatalf("unexpected line count %d in %q", got, out.String())
	}
}

func TestRunReturnsAfterCancelWhileSourceBlocked(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	sink := newSink(t, &out, compile(t, "a:u8"), render.Flags{}, nil)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Run(ctx, &Source{In: pr}, sink) }()
	go pw.Write([]byte{7})

	deadline := time.Now().Add(2 * time.Second)
	for sink.Stats.Snapshot().MessageCount == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first byte was never rendered")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run still blocked after cancel; output so far %q", out.String())
	}
	if out.String() != "a: 7\n\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestCloseOnCancelUnblocksRead(t *testing.T) {
	testlog.Start(t)
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	CloseOnCancel(ctx, r)
	q := NewQueue(1)
	done := make(chan error, 1)
	go func() { done <- (&Source{In: r}).Run(ctx, q) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("source returned error after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("read was not interrupted by cancel")
	}
	if m, ok := q.Receive(context.Background()); !ok || !m.Sentinel() {
		t.Fatalf("expected sentinel after cancel, got %+v", m)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk gone")
}

func TestRunReturnsSourceError(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	sink := newSink(t, &out, compile(t, "a:u8"), render.Flags{}, nil)
	err := Run(context.Background(), &Source{In: failingReader{}}, sink)
	if err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestRunRecoversSinkPanic(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	sink := NewSink(&out, compile(t, "a:u8"), decode.New(decode.Options{}), nil, render.Flags{}, nil)
	err := Run(context.Background(), &Source{In: bytes.NewReader([]byte{1, 2, 3})}, sink)
	if err == nil || !strings.Contains(err.Error(), "sink panicked") {
		t.Fatalf("expected recovered panic, got %v", err)
	}
}

func TestResolutionCellPublishesOnce(t *testing.T) {
	var c ResolutionCell
	if c.Publish(capture.ResolutionUnknown) {
		t.Fatalf("unknown resolution must not be published")
	}
	if !c.Publish(capture.ResolutionNano) || c.Publish(capture.ResolutionMicro) {
		t.Fatalf("cell must accept exactly one publish")
	}
	if c.Load() != capture.ResolutionNano {
		t.Fatalf("unexpected resolution: %s", c.Load())
	}
}

func TestOpenInputDecompressesZstd(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "frames.bin.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := enc.Write([]byte("payload")); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	f.Close()

	in, err := OpenInput(path)
	if err != nil {
		t.Fatalf("open input: %v", err)
	}
	defer in.Close()
	data, err := io.ReadAll(in)
	if err != nil || string(data) != "payload" {
		t.Fatalf("unexpected data %q err=%v", data, err)
	}
}

func TestBuildRejectsZeroWindow(t *testing.T) {
	testlog.Start(t)
	opts := config.DefaultOptions()
	opts.Schema = "frame.conf"
	_, _, err := Build(opts, compile(t, "a:bool1"), bytes.NewReader(nil), Output{W: io.Discard}, false)
	if !errors.Is(err, chunk.ErrZeroWindow) {
		t.Fatalf("expected ErrZeroWindow, got %v", err)
	}
}

func TestBuildWiresOptions(t *testing.T) {
	testlog.Start(t)
	opts := config.DefaultOptions()
	opts.Schema = "frame.conf"
	opts.ChunkSize = 4
	opts.ByteOffset = 1
	opts.Head = 3
	opts.Stats = true
	src, sink, err := Build(opts, compile(t, "a:u8"), bytes.NewReader(nil), Output{W: io.Discard}, true)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !src.Follow || src.Head != 3 || src.Cell != sink.Cell {
		t.Fatalf("unexpected source: %+v", src)
	}
	if sink.Slicer.Size != 4 || sink.Slicer.StartCursor() != 8 || !sink.Flags.Stats || sink.Redraw.Enabled {
		t.Fatalf("unexpected sink wiring: %+v", sink)
	}
}
