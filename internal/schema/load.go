package schema

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// document is the structured schema form accepted from YAML and TOML files.
type document struct {
	Fields []documentField `yaml:"fields" toml:"fields"`
}

type documentField struct {
	Name  string `yaml:"name" toml:"name"`
	Kind  string `yaml:"kind" toml:"kind"`
	Param any    `yaml:"param" toml:"param"`
}

// Load reads and compiles a schema file. .yaml/.yml and .toml files are read
// as documents; every other file uses the line format.
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema load failed (%s): %w", path, err)
	}

	var lines []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("schema parse failed (%s): %w", path, err)
		}
		lines = doc.lines()
	case ".toml":
		var doc document
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("schema parse failed (%s): %w", path, err)
		}
		lines = doc.lines()
	default:
		lines, err = splitLines(data)
		if err != nil {
			return nil, fmt.Errorf("schema read failed (%s): %w", path, err)
		}
	}

	s, err := Compile(lines)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed (%s): %w", path, err)
	}
	return s, nil
}

func (d document) lines() []string {
	out := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		line := strings.TrimSpace(f.Name) + ":" + strings.TrimSpace(f.Kind)
		if f.Param != nil {
			if p := strings.TrimSpace(fmt.Sprint(f.Param)); p != "" {
				line += ":" + p
			}
		}
		out = append(out, line)
	}
	return out
}

func splitLines(data []byte) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}
