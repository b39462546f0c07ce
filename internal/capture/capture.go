// Package capture reads legacy pcap captures: one global header followed by
// record headers and payloads, in either byte order and with micro- or
// nanosecond timestamps.
package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/gopacket/pcapgo"
)

var (
	ErrShortRecordHeader = errors.New("capture: short record header")
	ErrRecordTooLarge    = errors.New("capture: record too large")
	ErrShortPayload      = errors.New("capture: short record payload")
)

// Resolution is the unit of the record timestamp fraction.
type Resolution uint8

const (
	ResolutionUnknown Resolution = iota
	ResolutionMicro
	ResolutionNano
)

func (r Resolution) String() string {
	switch r {
	case ResolutionMicro:
		return "us"
	case ResolutionNano:
		return "ns"
	default:
		return "unknown"
	}
}

// Nanos converts a timestamp fraction to nanoseconds.
func (r Resolution) Nanos(fraction uint32) int64 {
	if r == ResolutionMicro {
		return int64(fraction) * int64(time.Microsecond)
	}
	return int64(fraction)
}

// Record is one captured packet. Fraction is in the unit of the capture's
// Resolution.
type Record struct {
	Seconds  uint32
	Fraction uint32
	OrigLen  int
	Payload  []byte
}

// Time returns the record timestamp.
func (r Record) Time(res Resolution) time.Time {
	return time.Unix(int64(r.Seconds), res.Nanos(r.Fraction))
}

// Limits constrains record decode memory use.
type Limits struct {
	MaxRecordBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxRecordBytes: 256 * 1024}
}

// Reader yields the records of one capture.
type Reader struct {
	r        *pcapgo.Reader
	res      Resolution
	snapLen  uint32
	linkType uint32
	limits   Limits
}

// NewReader reads the global header from in. Records larger than
// limits.MaxRecordBytes are rejected before their payload is allocated.
func NewReader(in io.Reader, limits Limits) (*Reader, error) {
	if limits.MaxRecordBytes == 0 {
		limits = DefaultLimits()
	}
	pr, err := pcapgo.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("capture: read global header: %w", err)
	}
	rd := &Reader{
		r:        pr,
		res:      resolutionOf(pr.Resolution().Exponent),
		snapLen:  pr.Snaplen(),
		linkType: uint32(pr.LinkType()),
		limits:   limits,
	}
	pr.SetSnaplen(limits.MaxRecordBytes)
	return rd, nil
}

func resolutionOf(exponent int) Resolution {
	if exponent == -9 {
		return ResolutionNano
	}
	return ResolutionMicro
}

func (r *Reader) Resolution() Resolution {
	return r.res
}

// SnapLen is the snapshot length declared by the file.
func (r *Reader) SnapLen() uint32 {
	return r.snapLen
}

func (r *Reader) LinkType() uint32 {
	return r.linkType
}

// Next reads the next record. A clean end of file returns io.EOF.
func (r *Reader) Next() (Record, error) {
	data, ci, err := r.r.ReadPacketData()
	if err != nil {
		switch {
		case ci.CaptureLength > int(r.limits.MaxRecordBytes):
			return Record{}, fmt.Errorf("%w: %d > %d", ErrRecordTooLarge, ci.CaptureLength, r.limits.MaxRecordBytes)
		case ci.CaptureLength > 0 && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)):
			return Record{}, ErrShortPayload
		case errors.Is(err, io.EOF):
			return Record{}, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return Record{}, ErrShortRecordHeader
		default:
			return Record{}, fmt.Errorf("capture: read record: %w", err)
		}
	}

	ts := ci.Timestamp
	fraction := uint32(ts.Nanosecond())
	if r.res == ResolutionMicro {
		fraction /= uint32(time.Microsecond)
	}
	return Record{
		Seconds:  uint32(ts.Unix()),
		Fraction: fraction,
		OrigLen:  ci.Length,
		Payload:  data,
	}, nil
}
