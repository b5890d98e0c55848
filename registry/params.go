package registry

import (
	"encoding/json"
	"math"
)

// Params is the parameter bundle handed to a Rule.
//
// Values are whatever the producer decoded them as: Go literals in code,
// float64 from JSON, int from YAML. The typed getters below normalize the
// common numeric kinds and report problems as InvalidArgumentError so rules
// can return them unchanged.
type Params map[string]any

// Has reports whether name is present (even if its value is nil).
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Clone returns a shallow copy of p. A nil Params clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Float returns name as a float64.
func (p Params) Float(name string) (float64, error) {
	raw, ok := p[name]
	if !ok || raw == nil {
		return 0, Invalid(name, "is required")
	}
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, Invalid(name, "must be a finite number")
	}
	return f, nil
}

// Int returns name as an int. Floats are accepted when they carry no fraction
// and fit in an int.
func (p Params) Int(name string) (int, error) {
	raw, ok := p[name]
	if !ok || raw == nil {
		return 0, Invalid(name, "is required")
	}
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) {
		return 0, Invalid(name, "must be an integer")
	}
	// -MinInt is the first float past MaxInt; MaxInt itself rounds up to it.
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, Invalid(name, "is out of range")
	}
	return int(f), nil
}

// String returns name as a string.
func (p Params) String(name string) (string, error) {
	raw, ok := p[name]
	if !ok || raw == nil {
		return "", Invalid(name, "is required")
	}
	s, ok := raw.(string)
	if !ok {
		return "", Invalid(name, "must be a string")
	}
	return s, nil
}

// Bool returns name as a bool.
func (p Params) Bool(name string) (bool, error) {
	raw, ok := p[name]
	if !ok || raw == nil {
		return false, Invalid(name, "is required")
	}
	b, ok := raw.(bool)
	if !ok {
		return false, Invalid(name, "must be a bool")
	}
	return b, nil
}

// NonNegative returns name as a float64 and rejects values below zero.
func (p Params) NonNegative(name string) (float64, error) {
	f, err := p.Float(name)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, Invalid(name, "must be >= 0")
	}
	return f, nil
}

// Positive returns name as a float64 and rejects values <= 0.
func (p Params) Positive(name string) (float64, error) {
	f, err := p.Float(name)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, Invalid(name, "must be > 0")
	}
	return f, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
