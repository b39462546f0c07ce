package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/mview/internal/config"
)

type fileConfig struct {
	Config         string   `toml:"config"`
	Infile         string   `toml:"infile"`
	Outfile        string   `toml:"outfile"`
	Pcap           bool     `toml:"pcap"`
	ChunkSize      int      `toml:"chunksize"`
	ByteOffset     int      `toml:"byteoffset"`
	BitOffset      int      `toml:"bitoffset"`
	RawHex         bool     `toml:"rawhex"`
	RawBin         bool     `toml:"rawbin"`
	RawASCII       bool     `toml:"rawascii"`
	PauseMS        int64    `toml:"pause_ms"`
	LittleEndian   bool     `toml:"little_endian"`
	Timestamp      bool     `toml:"timestamp"`
	Head           int      `toml:"head"`
	Stats          bool     `toml:"stats"`
	BitPos         bool     `toml:"bitpos"`
	NoJump         bool     `toml:"nojump"`
	Clear          bool     `toml:"clear"`
	FilterNewlines bool     `toml:"filter_newlines"`
	Follow         bool     `toml:"follow"`
	PollInterval   string   `toml:"poll_interval"`
	MaxRecordBytes uint32   `toml:"max_record_bytes"`
	StatusAddr     string   `toml:"status_addr"`
	CorsOrigins    []string `toml:"cors_origins"`
}

// loadProfile applies the keys present in a TOML run profile on top of cfg.
func loadProfile(path string, cfg config.Options) (config.Options, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.Options{}, fmt.Errorf("load profile: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config.Options{}, fmt.Errorf("load profile: unknown keys %v", undecoded)
	}

	if meta.IsDefined("config") {
		cfg.Schema = strings.TrimSpace(raw.Config)
	}
	if meta.IsDefined("infile") {
		cfg.Input = strings.TrimSpace(raw.Infile)
	}
	if meta.IsDefined("outfile") {
		cfg.Output = strings.TrimSpace(raw.Outfile)
	}
	if meta.IsDefined("pcap") {
		cfg.Capture = raw.Pcap
	}
	if meta.IsDefined("chunksize") {
		cfg.ChunkSize = raw.ChunkSize
	}
	if meta.IsDefined("byteoffset") {
		cfg.ByteOffset = raw.ByteOffset
	}
	if meta.IsDefined("bitoffset") {
		cfg.BitOffset = raw.BitOffset
	}
	if meta.IsDefined("rawhex") {
		cfg.RawHex = raw.RawHex
	}
	if meta.IsDefined("rawbin") {
		cfg.RawBin = raw.RawBin
	}
	if meta.IsDefined("rawascii") {
		cfg.RawASCII = raw.RawASCII
	}
	if meta.IsDefined("pause_ms") {
		cfg.Pause = time.Duration(raw.PauseMS) * time.Millisecond
	}
	if meta.IsDefined("little_endian") {
		cfg.LittleEndian = raw.LittleEndian
	}
	if meta.IsDefined("timestamp") {
		cfg.Timestamp = raw.Timestamp
	}
	if meta.IsDefined("head") {
		cfg.Head = raw.Head
	}
	if meta.IsDefined("stats") {
		cfg.Stats = raw.Stats
	}
	if meta.IsDefined("bitpos") {
		cfg.BitPos = raw.BitPos
	}
	if meta.IsDefined("nojump") {
		cfg.NoJump = raw.NoJump
	}
	if meta.IsDefined("clear") {
		cfg.Clear = raw.Clear
	}
	if meta.IsDefined("filter_newlines") {
		cfg.FilterNewlines = raw.FilterNewlines
	}
	if meta.IsDefined("follow") {
		cfg.Follow = raw.Follow
	}
	if meta.IsDefined("poll_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PollInterval))
		if err != nil {
			return config.Options{}, fmt.Errorf("parse poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if meta.IsDefined("max_record_bytes") {
		cfg.MaxRecordBytes = raw.MaxRecordBytes
	}
	if meta.IsDefined("status_addr") {
		cfg.StatusAddr = strings.TrimSpace(raw.StatusAddr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}
	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		if v := strings.TrimSpace(origin); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// resolveOptions builds the run options: defaults, then the profile, then
// flags given on the command line.
func resolveOptions(cli cliFlags) (config.Options, error) {
	opts := config.DefaultOptions()
	if cli.profile != "" {
		var err error
		if opts, err = loadProfile(cli.profile, opts); err != nil {
			return config.Options{}, err
		}
	}
	cli.overlay(&opts)
	return opts, nil
}
