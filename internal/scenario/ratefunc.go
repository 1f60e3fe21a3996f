// README: rate_function registry (§4.9/§6). A named-shape registry covers
// the common cases without evaluating any code; ParseExpression backs the
// "expression" shape for scenarios that need a one-off curve. Both paths
// return a generators.RateFunc, never a closure over host-language eval —
// per §7's "scenario files must be treatable as untrusted input".
package scenario

import (
	"encoding/json"
	"fmt"

	"deliverysim/internal/generators"
)

type namedRate struct {
	Shape string `json:"shape"`

	// constant
	Rate float64 `json:"rate"`

	// linear: rate(t) = slope*t + intercept
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`

	// parabolic: rate(t) = a*t^2 + b*t + c
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`

	// piecewise: ordered, non-overlapping [from,to) segments; the last
	// segment's "to" is treated as +inf.
	Segments []piecewiseSegment `json:"segments"`

	// expression: a free-variable-t arithmetic formula (see expr.go).
	Expression string `json:"expression"`
}

type piecewiseSegment struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
	Rate float64 `json:"rate"`
}

// ParseRateFunction decodes a rate_function document into a callable
// generators.RateFunc. Unrecognised shapes are a validation error, not a
// silent fallback.
func ParseRateFunction(raw json.RawMessage) (generators.RateFunc, error) {
	var nr namedRate
	if err := json.Unmarshal(raw, &nr); err != nil {
		return nil, fmt.Errorf("malformed rate_function: %w", err)
	}

	switch nr.Shape {
	case "constant":
		if nr.Rate <= 0 {
			return nil, fmt.Errorf("constant rate_function requires rate > 0")
		}
		rate := nr.Rate
		return func(float64) float64 { return rate }, nil

	case "linear":
		slope, intercept := nr.Slope, nr.Intercept
		return func(t float64) float64 {
			v := slope*t + intercept
			if v < 0 {
				return 0
			}
			return v
		}, nil

	case "parabolic":
		a, b, c := nr.A, nr.B, nr.C
		return func(t float64) float64 {
			v := a*t*t + b*t + c
			if v < 0 {
				return 0
			}
			return v
		}, nil

	case "piecewise":
		if len(nr.Segments) == 0 {
			return nil, fmt.Errorf("piecewise rate_function requires at least one segment")
		}
		segments := nr.Segments
		return func(t float64) float64 {
			for i, seg := range segments {
				last := i == len(segments)-1
				if t >= seg.From && (last || t < seg.To) {
					return seg.Rate
				}
			}
			return 0
		}, nil

	case "expression":
		if nr.Expression == "" {
			return nil, fmt.Errorf("expression rate_function requires a non-empty expression")
		}
		expr, err := ParseExpression(nr.Expression)
		if err != nil {
			return nil, fmt.Errorf("expression rate_function: %w", err)
		}
		return func(t float64) float64 { return expr.Eval(t) }, nil

	default:
		return nil, fmt.Errorf("unrecognised rate_function shape %q (want constant, linear, parabolic, piecewise, or expression)", nr.Shape)
	}
}
