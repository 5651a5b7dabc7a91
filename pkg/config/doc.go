// Package config provides declarative defaults for the preprocessing
// composites.
//
// Scaling defaults are loaded from a YAML file keyed by profile name. The
// reserved "default" profile supplies global defaults; named profiles
// override individual fields:
//
//	default:
//	  biasRange: [-1, 1]
//	conservative:
//	  scalar: 0.5
//	  ignoreOffset: true
//
// Profiles bridge into per-call sampler params via ApplyTo, which only fills
// keys the caller has not set explicitly.
//
// All values are validated on load; invalid profiles are skipped with a log
// entry rather than failing the whole file.
package config
