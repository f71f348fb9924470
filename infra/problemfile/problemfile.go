// Package problemfile loads VRPTW instances from JSON or YAML documents.
//
// A document mirrors model.Problem:
//
//	vehicle_count: 2
//	vehicles:
//	  - working_time_budget: 480
//	customers:
//	  - {id: 0, window_latest: 600}
//	  - {id: 1, service_time: 10, window_earliest: 30, window_latest: 90, penalty_rate: 1}
//	distance:
//	  - [0, 12]
//	  - [12, 0]
//
// When vehicles is omitted it defaults to a single budget given by
// working_time_budget at the top level.
package problemfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/vrptw/core/model"
)

// ErrUnsupportedFormat is returned for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported problem format")

type document struct {
	model.Problem     `json:",squash"`
	WorkingTimeBudget float64 `json:"working_time_budget"`
}

// Load reads and validates the problem stored at path. The format follows the
// extension: .json, .yaml or .yml.
func Load(path string) (*model.Problem, error) {
	parser, err := parserFor(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("read problem %s: %w", path, err)
	}
	return decode(k)
}

// Parse decodes and validates a problem document in the given format
// ("json" or "yaml").
func Parse(data []byte, format string) (*model.Problem, error) {
	parser, err := parserFor("." + strings.TrimPrefix(format, "."))
	if err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(rawBytes(data), parser); err != nil {
		return nil, fmt.Errorf("parse problem: %w", err)
	}
	return decode(k)
}

func parserFor(ext string) (koanf.Parser, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func decode(k *koanf.Koanf) (*model.Problem, error) {
	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode problem: %w", err)
	}
	p := doc.Problem
	if len(p.Vehicles) == 0 && k.Exists("working_time_budget") {
		p.Vehicles = []model.Vehicle{{WorkingTimeBudget: doc.WorkingTimeBudget}}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// rawBytes is a koanf provider over an in-memory document.
type rawBytes []byte

func (b rawBytes) ReadBytes() ([]byte, error) { return b, nil }

func (b rawBytes) Read() (map[string]any, error) {
	return nil, errors.New("problemfile: raw bytes need a parser")
}
