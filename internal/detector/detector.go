// Package detector normalizes anomaly detection algorithms behind one
// capability contract: fit on a series, then score every timestep. The
// registry validates parameters before any fitting work begins so a
// misconfigured batch fails at instantiation, not mid-run.
package detector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// InvalidParameterError reports a parameter the algorithm does not
// declare, or a value outside its declared domain.
type InvalidParameterError struct {
	AlgorithmID string
	Name        string
	Reason      string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q for algorithm %q: %s", e.Name, e.AlgorithmID, e.Reason)
}

// RuntimeError classifies a failure inside fit or score. It carries a
// message, never a stack.
type RuntimeError struct {
	AlgorithmID string
	Op          string
	Msg         string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("algorithm %q %s failed: %s", e.AlgorithmID, e.Op, e.Msg)
}

// Detector is the capability every algorithm family implements. Score
// returns one real-valued anomaly score per input timestep; higher
// means more anomalous.
type Detector interface {
	Fit(ctx context.Context, series [][]float64) error
	Score(ctx context.Context, series [][]float64) ([]float64, error)
}

// ParamSpec declares one parameter of an algorithm family: its valid
// range, whether it must be a whole number, and the value used when the
// run spec leaves it out.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Integer bool
	Default float64
}

type family struct {
	params []ParamSpec
	build  func(params map[string]float64) Detector
}

// Registry maps algorithm ids to detector factories.
type Registry struct {
	families map[string]family
}

// NewRegistry returns a registry with the builtin algorithm families.
func NewRegistry() *Registry {
	r := &Registry{families: make(map[string]family)}
	registerBuiltins(r)
	return r
}

func (r *Registry) Register(id string, params []ParamSpec, build func(map[string]float64) Detector) error {
	if id == "" {
		return errors.New("algorithm id is required")
	}
	if build == nil {
		return errors.New("algorithm factory is required")
	}
	if _, ok := r.families[id]; ok {
		return fmt.Errorf("algorithm %q already registered", id)
	}
	r.families[id] = family{params: params, build: build}
	return nil
}

// Known reports whether the algorithm id is registered.
func (r *Registry) Known(id string) bool {
	_, ok := r.families[id]
	return ok
}

// IDs returns the registered algorithm ids in lexical order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.families))
	for id := range r.families {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ValidateParams checks the parameter set against the algorithm's
// declared parameters without building a detector.
func (r *Registry) ValidateParams(id string, params map[string]float64) error {
	fam, ok := r.families[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, id)
	}
	declared := make(map[string]ParamSpec, len(fam.params))
	for _, spec := range fam.params {
		declared[spec.Name] = spec
	}
	for name, value := range params {
		spec, ok := declared[name]
		if !ok {
			return &InvalidParameterError{AlgorithmID: id, Name: name, Reason: "not declared by algorithm"}
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return &InvalidParameterError{AlgorithmID: id, Name: name, Reason: "value must be finite"}
		}
		if value < spec.Min || value > spec.Max {
			return &InvalidParameterError{
				AlgorithmID: id,
				Name:        name,
				Reason:      fmt.Sprintf("value %v outside [%v, %v]", value, spec.Min, spec.Max),
			}
		}
		if spec.Integer && value != math.Trunc(value) {
			return &InvalidParameterError{AlgorithmID: id, Name: name, Reason: fmt.Sprintf("value %v must be a whole number", value)}
		}
	}
	return nil
}

// Instantiate validates the parameter set, fills declared defaults for
// omitted parameters, and builds a detector.
func (r *Registry) Instantiate(id string, params map[string]float64) (Detector, error) {
	if err := r.ValidateParams(id, params); err != nil {
		return nil, err
	}
	fam := r.families[id]
	resolved := make(map[string]float64, len(fam.params))
	for _, spec := range fam.params {
		resolved[spec.Name] = spec.Default
	}
	for name, value := range params {
		resolved[name] = value
	}
	return fam.build(resolved), nil
}

func registerBuiltins(r *Registry) {
	// Registration of builtins cannot collide; errors here would be
	// programming mistakes.
	_ = r.Register("zscore", []ParamSpec{
		{Name: "window", Min: 0, Max: 1 << 20, Integer: true, Default: 0},
	}, func(params map[string]float64) Detector {
		return newZScoreDetector(int(params["window"]))
	})
	_ = r.Register("iqr", []ParamSpec{
		{Name: "k", Min: 0, Max: 100, Default: 1.5},
	}, func(params map[string]float64) Detector {
		return newIQRDetector(params["k"])
	})
	_ = r.Register("moving_average", []ParamSpec{
		{Name: "window", Min: 1, Max: 1 << 20, Integer: true, Default: 16},
	}, func(params map[string]float64) Detector {
		return newMovingAverageDetector(int(params["window"]))
	})
}
