package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/danmuck/mview/internal/config"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	opts         config.Options
	pauseMS      int
	profile      string
	writeProfile string
	version      bool

	// set holds the canonical names of flags given on the command line.
	set map[string]bool
}

// aliases maps every accepted flag name to its canonical name.
var aliases = map[string]string{
	"i":               "infile",
	"infile":          "infile",
	"o":               "outfile",
	"w":               "outfile",
	"outfile":         "outfile",
	"c":               "config",
	"config":          "config",
	"pcap":            "pcap",
	"s":               "chunksize",
	"chunksize":       "chunksize",
	"offset":          "byteoffset",
	"byteoffset":      "byteoffset",
	"bitoffset":       "bitoffset",
	"r":               "rawhex",
	"rawhex":          "rawhex",
	"rawbin":          "rawbin",
	"rawascii":        "rawascii",
	"p":               "pause",
	"pause":           "pause",
	"little-endian":   "little_endian",
	"le":              "little_endian",
	"t":               "timestamp",
	"timestamp":       "timestamp",
	"head":            "head",
	"stats":           "stats",
	"bitpos":          "bitpos",
	"nojump":          "nojump",
	"clear":           "clear",
	"filter-newlines": "filter_newlines",
	"follow":          "follow",
	"poll-interval":   "poll_interval",
	"max-record":      "max_record_bytes",
	"status-addr":     "status_addr",
	"profile":         "profile",
	"write-profile":   "write_profile",
	"version":         "version",
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	cli := cliFlags{opts: config.DefaultOptions(), set: map[string]bool{}}
	o := &cli.opts
	var maxRecord uint

	fs := flag.NewFlagSet("mview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	str := func(p *string, usage string, names ...string) {
		for _, n := range names {
			fs.StringVar(p, n, *p, usage)
		}
	}
	boolean := func(p *bool, usage string, names ...string) {
		for _, n := range names {
			fs.BoolVar(p, n, *p, usage)
		}
	}
	integer := func(p *int, usage string, names ...string) {
		for _, n := range names {
			fs.IntVar(p, n, *p, usage)
		}
	}

	str(&o.Input, "read from a file instead of stdin (.zst is decompressed)", "i", "infile")
	str(&o.Output, "write output to a file instead of stdout", "o", "w", "outfile")
	str(&o.Schema, "schema describing the fields of a chunk (required)", "c", "config")
	boolean(&o.Capture, "read a pcap formatted file or stream", "pcap")
	integer(&o.ChunkSize, "restart matching after n bytes (0 derives it from the schema)", "s", "chunksize")
	integer(&o.ByteOffset, "offset in bytes at the start of a chunk", "offset", "byteoffset")
	integer(&o.BitOffset, "offset in bits at the start of a chunk, added to --offset", "bitoffset")
	boolean(&o.RawHex, "print a raw hexdump of the chunk above the fields", "r", "rawhex")
	boolean(&o.RawBin, "print a raw bindump of the chunk above the fields", "rawbin")
	boolean(&o.RawASCII, "print the chunk as ascii above the fields", "rawascii")
	integer(&cli.pauseMS, "pause in ms between chunks", "p", "pause")
	boolean(&o.LittleEndian, "interpret integers as little endian", "little-endian", "le")
	boolean(&o.Timestamp, "print a timestamp with each chunk", "t", "timestamp")
	integer(&o.Head, "read only the first n bytes, print them and exit", "head")
	boolean(&o.Stats, "print message and chunk statistics", "stats")
	boolean(&o.BitPos, "print the bit position before each field", "bitpos")
	boolean(&o.NoJump, "do not redraw chunks in place", "nojump")
	boolean(&o.Clear, "clear the whole terminal before each chunk", "clear")
	boolean(&o.FilterNewlines, "drop newline characters from string fields", "filter-newlines")
	boolean(&o.Follow, "keep waiting for data at end of input", "follow")
	fs.DurationVar(&o.PollInterval, "poll-interval", o.PollInterval, "wait between reads in follow mode")
	fs.UintVar(&maxRecord, "max-record", uint(o.MaxRecordBytes), "largest accepted pcap record in bytes")
	str(&o.StatusAddr, "serve /health, /stats and /metrics on this address", "status-addr")
	str(&cli.profile, "TOML run profile", "profile")
	str(&cli.writeProfile, "write an example run profile to this path and exit", "write-profile")
	boolean(&cli.version, "print the version and exit", "version")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		if o.Input != "" || fs.NArg() > 1 {
			return cliFlags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
		}
		o.Input = fs.Arg(0)
		cli.set["infile"] = true
	}
	fs.Visit(func(f *flag.Flag) {
		cli.set[aliases[f.Name]] = true
	})
	o.Pause = time.Duration(cli.pauseMS) * time.Millisecond
	o.MaxRecordBytes = uint32(maxRecord)
	return cli, nil
}

// overlay copies every option set on the command line from src into dst.
func (c cliFlags) overlay(dst *config.Options) {
	src := c.opts
	for name := range c.set {
		switch name {
		case "infile":
			dst.Input = src.Input
		case "outfile":
			dst.Output = src.Output
		case "config":
			dst.Schema = src.Schema
		case "pcap":
			dst.Capture = src.Capture
		case "chunksize":
			dst.ChunkSize = src.ChunkSize
		case "byteoffset":
			dst.ByteOffset = src.ByteOffset
		case "bitoffset":
			dst.BitOffset = src.BitOffset
		case "rawhex":
			dst.RawHex = src.RawHex
		case "rawbin":
			dst.RawBin = src.RawBin
		case "rawascii":
			dst.RawASCII = src.RawASCII
		case "pause":
			dst.Pause = src.Pause
		case "little_endian":
			dst.LittleEndian = src.LittleEndian
		case "timestamp":
			dst.Timestamp = src.Timestamp
		case "head":
			dst.Head = src.Head
		case "stats":
			dst.Stats = src.Stats
		case "bitpos":
			dst.BitPos = src.BitPos
		case "nojump":
			dst.NoJump = src.NoJump
		case "clear":
			dst.Clear = src.Clear
		case "filter_newlines":
			dst.FilterNewlines = src.FilterNewlines
		case "follow":
			dst.Follow = src.Follow
		case "poll_interval":
			dst.PollInterval = src.PollInterval
		case "max_record_bytes":
			dst.MaxRecordBytes = src.MaxRecordBytes
		case "status_addr":
			dst.StatusAddr = src.StatusAddr
		}
	}
}
