package features

import (
	"fmt"
	"math"
	"strings"
)

// Violation describes one attribute whose value is outside its expected range.
type Violation struct {
	Attribute Attribute `json:"attribute"`
	Value     float64   `json:"value"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s=%g", v.Attribute, v.Value)
}

// RangeError reports attributes of a record that fall outside their expected
// ranges. Vectorize accepts such records unchanged; RangeError exists so that
// ingestion layers can decide what to do with them.
type RangeError struct {
	Violations []Violation
}

func (e *RangeError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "feature values out of range: " + strings.Join(parts, ", ")
}

// unitRange reports whether attr is expected to lie in [0,1] upstream.
func unitRange(attr Attribute) bool {
	return attr != Loudness && attr != Tempo
}

// Validate checks a record against the ranges Vectorize assumes.
//
// Unit-range attributes must lie in [0,1]. Every present value must be finite,
// and tempo must not be negative. Missing attributes are never violations.
// It returns nil or a *RangeError.
func Validate(r Record) error {
	var violations []Violation
	for _, attr := range Attributes() {
		v, ok := r[attr.String()]
		if !ok {
			continue
		}
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
		case unitRange(attr) && (v < 0 || v > 1):
		case attr == Tempo && v < 0:
		default:
			continue
		}
		violations = append(violations, Violation{Attribute: attr, Value: v})
	}
	if len(violations) == 0 {
		return nil
	}
	return &RangeError{Violations: violations}
}
