// Package config parses and validates the declarative benchmark
// configuration. All misconfiguration is caught here or during
// expansion, before any run starts.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/anomalab/anomalab-go/internal/metric"
	"gopkg.in/yaml.v3"
)

// ValidationError reports one invalid configuration field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// Config is the declarative description of one benchmark batch.
type Config struct {
	Datasets    []DatasetSelector `yaml:"datasets"`
	Algorithms  []AlgorithmConfig `yaml:"algorithms"`
	Metrics     []string          `yaml:"metrics"`
	Resume      bool              `yaml:"resume"`
	Parallelism int               `yaml:"parallelism"`
	Seed        int64             `yaml:"seed"`
}

// DatasetSelector picks datasets either by exact id or by exact-match
// metadata predicates over the catalog.
type DatasetSelector struct {
	ID    string            `yaml:"id,omitempty"`
	Match map[string]string `yaml:"match,omitempty"`
}

// AlgorithmConfig names an algorithm and its parameter grid. Each
// parameter maps to a scalar or a list of values; the cross-product of
// all lists is expanded into one run spec per grid point.
type AlgorithmConfig struct {
	ID     string               `yaml:"id"`
	Params map[string]ParamGrid `yaml:"params,omitempty"`
}

// ParamGrid is a scalar or a list of numeric parameter values.
type ParamGrid struct {
	Values []float64
}

func (g *ParamGrid) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&g.Values)
	}
	var single float64
	if err := value.Decode(&single); err != nil {
		return err
	}
	g.Values = []float64{single}
	return nil
}

func (g ParamGrid) MarshalYAML() (any, error) {
	if len(g.Values) == 1 {
		return g.Values[0], nil
	}
	return g.Values, nil
}

// Load reads and validates a configuration file.
func Load(path string) (Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(blob)
}

// Parse decodes and validates a configuration document. Defaults are
// applied before validation: parallelism 1, resume off.
func Parse(blob []byte) (Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(blob)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, &ValidationError{Field: "document", Msg: err.Error()}
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = 1
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Datasets) == 0 {
		return &ValidationError{Field: "datasets", Msg: "at least one dataset selector is required"}
	}
	for i, sel := range c.Datasets {
		hasID := strings.TrimSpace(sel.ID) != ""
		hasMatch := len(sel.Match) > 0
		if hasID == hasMatch {
			return &ValidationError{
				Field: fmt.Sprintf("datasets[%d]", i),
				Msg:   "exactly one of id or match is required",
			}
		}
	}
	if len(c.Algorithms) == 0 {
		return &ValidationError{Field: "algorithms", Msg: "at least one algorithm is required"}
	}
	for i, alg := range c.Algorithms {
		if strings.TrimSpace(alg.ID) == "" {
			return &ValidationError{Field: fmt.Sprintf("algorithms[%d].id", i), Msg: "algorithm id is required"}
		}
		for name, grid := range alg.Params {
			if len(grid.Values) == 0 {
				return &ValidationError{
					Field: fmt.Sprintf("algorithms[%d].params.%s", i, name),
					Msg:   "parameter grid is empty",
				}
			}
		}
	}
	if len(c.Metrics) == 0 {
		return &ValidationError{Field: "metrics", Msg: "at least one metric is required"}
	}
	for i, id := range c.Metrics {
		if err := metric.Validate(id); err != nil {
			return &ValidationError{Field: fmt.Sprintf("metrics[%d]", i), Msg: err.Error()}
		}
	}
	if c.Parallelism < 1 {
		return &ValidationError{Field: "parallelism", Msg: "must be at least 1"}
	}
	return nil
}
