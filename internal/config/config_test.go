package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultOptionsNeedSchema(t *testing.T) {
	err := DefaultOptions().Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "config" {
		t.Fatalf("expected config validation error, got %v", err)
	}
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions")
	}
}

func TestValidateRejectsNegativeValues(t *testing.T) {
	cases := map[string]func(*Options){
		"chunksize":  func(o *Options) { o.ChunkSize = -1 },
		"byteoffset": func(o *Options) { o.ByteOffset = -1 },
		"bitoffset":  func(o *Options) { o.BitOffset = -3 },
		"head":       func(o *Options) { o.Head = -1 },
		"pause":      func(o *Options) { o.Pause = -1 },
	}
	for field, mutate := range cases {
		o := DefaultOptions()
		o.Schema = "frame.conf"
		mutate(&o)
		var ve *ValidationError
		if err := o.Validate(); !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("%s: unexpected error %v", field, err)
		}
	}
}

func TestValidateAcceptsDefaultsWithSchema(t *testing.T) {
	o := DefaultOptions()
	o.Schema = "frame.conf"
	if err := o.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !o.Redraw() {
		t.Fatalf("redraw must be enabled by default")
	}
}

func TestValidateRejectsClearWithNoJump(t *testing.T) {
	o := DefaultOptions()
	o.Schema = "frame.conf"
	o.NoJump, o.Clear = true, true
	if err := o.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestWriteProfileTemplateRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	if err := WriteProfileTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), "little_endian") {
		t.Fatalf("unexpected template: %q err=%v", data, err)
	}
	if err := WriteProfileTemplate(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if err := WriteProfileTemplate(path, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
}
