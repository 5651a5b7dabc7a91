package solver

import (
	"fmt"

	"github.com/spf13/cast"
)

// Params carries per-call sampling options. Composites read and strip their
// own keys and forward the rest to the child sampler untouched.
type Params map[string]any

// Clone returns a shallow copy so a composite can strip keys without
// mutating the caller's map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Pop removes and returns the raw value for key.
func (p Params) Pop(key string) (any, bool) {
	v, ok := p[key]
	if ok {
		delete(p, key)
	}
	return v, ok
}

// Float64 coerces the value for key to a float64.
func (p Params) Float64(key string) (float64, error) {
	f, err := cast.ToFloat64E(p[key])
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", key, err)
	}
	return f, nil
}

// Int coerces the value for key to an int, with a fallback default.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %w", key, err)
	}
	return n, nil
}

// Bool coerces the value for key to a bool; absent or nil keys are false.
func (p Params) Bool(key string) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return false, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("parameter %q: %w", key, err)
	}
	return b, nil
}

// Strings coerces the value for key to a string slice; absent or nil keys
// yield nil.
func (p Params) Strings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	ss, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", key, err)
	}
	return ss, nil
}
