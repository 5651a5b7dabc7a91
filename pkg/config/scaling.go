package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/annealkit/preprocessing/internal/logging"
	"github.com/annealkit/preprocessing/pkg/composites"
	"github.com/annealkit/preprocessing/pkg/solver"
)

// GlobalDefaultsKey is the reserved profile name holding global defaults.
const GlobalDefaultsKey = "default"

// ScalingDefaults is the declarative form of the scaling composite's options
// for one profile.
type ScalingDefaults struct {
	// Scalar is an explicit scale factor. When set it overrides the ranges.
	Scalar *float64 `yaml:"scalar,omitempty" mapstructure:"scalar"`

	// BiasRange is a one-element (symmetric bound) or two-element ([low,
	// high]) target range for linear biases.
	BiasRange []float64 `yaml:"biasRange,omitempty" mapstructure:"biasRange"`

	// QuadraticRange is an optional separate target range for quadratic
	// biases.
	QuadraticRange []float64 `yaml:"quadraticRange,omitempty" mapstructure:"quadraticRange"`

	// IgnoredVariables lists variables excluded from scaling.
	IgnoredVariables []string `yaml:"ignoredVariables,omitempty" mapstructure:"ignoredVariables"`

	// IgnoredInteractions lists interactions excluded from scaling, two
	// variables per entry.
	IgnoredInteractions [][]string `yaml:"ignoredInteractions,omitempty" mapstructure:"ignoredInteractions"`

	// IgnoreOffset excludes the offset from scaling. Pointer so omitted
	// fields inherit from the global defaults.
	IgnoreOffset *bool `yaml:"ignoreOffset,omitempty" mapstructure:"ignoreOffset"`
}

// ScalingDefaultsData maps profile name to its scaling defaults.
type ScalingDefaultsData map[string]ScalingDefaults

// Validate checks for values that could never produce a usable sample call.
func (c *ScalingDefaults) Validate() error {
	if c.Scalar != nil && *c.Scalar == 0 {
		return fmt.Errorf("scalar must be non-zero")
	}
	if err := validateRange("biasRange", c.BiasRange); err != nil {
		return err
	}
	if err := validateRange("quadraticRange", c.QuadraticRange); err != nil {
		return err
	}
	for _, inter := range c.IgnoredInteractions {
		if len(inter) != 2 {
			return fmt.Errorf("ignoredInteractions entry %v must have exactly two variables", inter)
		}
		if inter[0] == inter[1] {
			return fmt.Errorf("ignoredInteractions entry %v names the same variable twice", inter)
		}
	}
	return nil
}

func validateRange(field string, r []float64) error {
	switch len(r) {
	case 0, 1:
		return nil
	case 2:
		if r[0] > r[1] {
			return fmt.Errorf("%s low %v must not exceed high %v", field, r[0], r[1])
		}
		return nil
	default:
		return fmt.Errorf("%s must have one or two elements, got %d", field, len(r))
	}
}

// LoadScalingDefaults reads a profile file. Invalid profiles are skipped with
// a log entry; a missing or unreadable file is an error.
func LoadScalingDefaults(path string) (ScalingDefaultsData, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading scaling defaults %s: %w", path, err)
	}

	raw := make(map[string]ScalingDefaults)
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("parsing scaling defaults %s: %w", path, err)
	}

	out := make(ScalingDefaultsData, len(raw))
	for name, profile := range raw {
		if err := profile.Validate(); err != nil {
			logging.Log.Info("Invalid scaling profile, skipping",
				"profile", name,
				"error", err.Error())
			continue
		}
		out[name] = profile
	}

	logging.Log.V(logging.DEBUG).Info("Loaded scaling defaults",
		"path", path,
		"profileCount", len(out))

	return out, nil
}

// ProfileConfig returns the effective defaults for a profile, merging the
// profile's values over the global defaults.
func (data ScalingDefaultsData) ProfileConfig(name string) ScalingDefaults {
	defaults := data[GlobalDefaultsKey]
	profile, ok := data[name]
	if !ok {
		return defaults
	}

	result := defaults
	if profile.Scalar != nil {
		result.Scalar = profile.Scalar
	}
	if len(profile.BiasRange) != 0 {
		result.BiasRange = profile.BiasRange
	}
	if len(profile.QuadraticRange) != 0 {
		result.QuadraticRange = profile.QuadraticRange
	}
	if len(profile.IgnoredVariables) != 0 {
		result.IgnoredVariables = profile.IgnoredVariables
	}
	if len(profile.IgnoredInteractions) != 0 {
		result.IgnoredInteractions = profile.IgnoredInteractions
	}
	if profile.IgnoreOffset != nil {
		result.IgnoreOffset = profile.IgnoreOffset
	}
	return result
}

// ApplyTo fills params with the profile's values, leaving keys the caller
// already set untouched.
func (c ScalingDefaults) ApplyTo(params solver.Params) {
	if c.Scalar != nil && !params.Has(composites.ParamScalar) {
		params[composites.ParamScalar] = *c.Scalar
	}
	if len(c.BiasRange) != 0 && !params.Has(composites.ParamBiasRange) {
		params[composites.ParamBiasRange] = c.BiasRange
	}
	if len(c.QuadraticRange) != 0 && !params.Has(composites.ParamQuadraticRange) {
		params[composites.ParamQuadraticRange] = c.QuadraticRange
	}
	if len(c.IgnoredVariables) != 0 && !params.Has(composites.ParamIgnoredVariables) {
		params[composites.ParamIgnoredVariables] = c.IgnoredVariables
	}
	if len(c.IgnoredInteractions) != 0 && !params.Has(composites.ParamIgnoredInteractions) {
		params[composites.ParamIgnoredInteractions] = c.IgnoredInteractions
	}
	if c.IgnoreOffset != nil && !params.Has(composites.ParamIgnoreOffset) {
		params[composites.ParamIgnoreOffset] = *c.IgnoreOffset
	}
}
