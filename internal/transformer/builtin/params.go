package builtin

import (
	"fmt"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/transformer"
)

// Params are the dataset params that configure transforms.
type Params struct {
	Normalize bool              `mapstructure:"normalize"`
	Rename    map[string]string `mapstructure:"rename"`
	Columns   []string          `mapstructure:"columns"`
	Require   []string          `mapstructure:"require"`
}

// FromParams builds the chain a dataset asks for: normalize, rename, project,
// then require. An empty chain is returned when nothing is configured.
func FromParams(o config.Options) (transformer.Chain, error) {
	var p Params
	if err := o.Decode(&p); err != nil {
		return nil, fmt.Errorf("transform params: %w", err)
	}
	var c transformer.Chain
	if p.Normalize {
		c = append(c, Normalize{})
	}
	if len(p.Rename) > 0 {
		c = append(c, Rename{Fields: p.Rename})
	}
	if len(p.Columns) > 0 {
		c = append(c, Project{Columns: p.Columns})
	}
	if len(p.Require) > 0 {
		c = append(c, Require{Fields: p.Require})
	}
	return c, nil
}
