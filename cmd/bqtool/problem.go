package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/annealkit/preprocessing/pkg/core"
)

// problemFile is the on-disk YAML form of a binary quadratic model.
//
//	vartype: spin
//	linear:
//	  a: -4.0
//	  b: -4.0
//	quadratic:
//	  - {u: a, v: b, bias: 3.2}
//	offset: 0.0
type problemFile struct {
	Vartype   string             `yaml:"vartype"`
	Linear    map[string]float64 `yaml:"linear"`
	Quadratic []quadraticEntry   `yaml:"quadratic"`
	Offset    float64            `yaml:"offset"`
}

type quadraticEntry struct {
	U    string  `yaml:"u"`
	V    string  `yaml:"v"`
	Bias float64 `yaml:"bias"`
}

func loadProblem(path string) (*core.BQM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem file: %w", err)
	}

	var pf problemFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing problem file %s: %w", path, err)
	}

	var vartype core.Vartype
	switch pf.Vartype {
	case "", "spin", "SPIN":
		vartype = core.Spin
	case "binary", "BINARY":
		vartype = core.Binary
	default:
		return nil, fmt.Errorf("unknown vartype %q (want spin or binary)", pf.Vartype)
	}

	bqm := core.NewBQM(vartype)
	for v, bias := range pf.Linear {
		bqm.AddVariable(v, bias)
	}
	for _, q := range pf.Quadratic {
		if err := bqm.AddQuadratic(q.U, q.V, q.Bias); err != nil {
			return nil, err
		}
	}
	bqm.SetOffset(pf.Offset)
	return bqm, nil
}
