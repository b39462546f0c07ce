package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultStatusAddr   = ""
)

var ErrInvalidOptions = errors.New("config: invalid options")

// Options is the full set of run options consumed by the viewer.
type Options struct {
	Input  string // empty reads standard input
	Output string // empty writes standard output
	Schema string

	Capture    bool
	ChunkSize  int
	ByteOffset int
	BitOffset  int

	RawHex   bool
	RawBin   bool
	RawASCII bool

	Pause          time.Duration
	LittleEndian   bool
	Timestamp      bool
	Head           int
	Stats          bool
	BitPos         bool
	NoJump         bool
	Clear          bool
	FilterNewlines bool
	Follow         bool
	PollInterval   time.Duration

	MaxRecordBytes uint32

	StatusAddr  string
	CorsOrigins []string
}

func DefaultOptions() Options {
	return Options{
		PollInterval:   DefaultPollInterval,
		MaxRecordBytes: 256 * 1024,
		StatusAddr:     DefaultStatusAddr,
		CorsOrigins:    []string{"http://localhost:3000"},
	}
}

// ValidationError names the first option that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidOptions
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (o Options) Validate() error {
	if strings.TrimSpace(o.Schema) == "" {
		return invalid("config", "is required")
	}
	if o.ChunkSize < 0 {
		return invalid("chunksize", "must not be negative")
	}
	if o.ByteOffset < 0 {
		return invalid("byteoffset", "must not be negative")
	}
	if o.BitOffset < 0 {
		return invalid("bitoffset", "must not be negative")
	}
	if o.Head < 0 {
		return invalid("head", "must not be negative")
	}
	if o.Pause < 0 {
		return invalid("pause", "must not be negative")
	}
	if o.PollInterval <= 0 {
		return invalid("poll_interval", "must be positive")
	}
	if o.Capture && o.MaxRecordBytes == 0 {
		return invalid("max_record_bytes", "must be positive in capture mode")
	}
	if o.NoJump && o.Clear {
		return invalid("clear", "cannot be combined with nojump")
	}
	return nil
}

// Redraw reports whether windows are redrawn in place.
func (o Options) Redraw() bool {
	return !o.NoJump
}
