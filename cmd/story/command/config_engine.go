package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/engine"
)

type EngineConfig struct {
	MaxCascadeDepth int     `json:"max_cascade_depth"`
	DecayFactor     float64 `json:"decay_factor"`
	MinWeight       float64 `json:"min_weight"`
	AreaMaxDepth    int     `json:"area_max_depth"`
	GlobalMaxDepth  int     `json:"global_max_depth"`
}

func (c *EngineConfig) validate() error {
	el := errors.NewErrorList()

	if c.MaxCascadeDepth < 0 {
		el.Add(fmt.Errorf("max_cascade_depth must not be negative"))
	}
	if c.DecayFactor < 0 || c.DecayFactor > 1 {
		el.Add(fmt.Errorf("decay_factor must be between 0 and 1"))
	}
	if c.MinWeight < 0 {
		el.Add(fmt.Errorf("min_weight must not be negative"))
	}
	if c.AreaMaxDepth < 0 || c.GlobalMaxDepth < 0 {
		el.Add(fmt.Errorf("propagation depths must not be negative"))
	}

	return el.Err()
}

// buildEngineConfig maps onto the engine's config; zero values fall back to
// the engine's defaults.
func (c *EngineConfig) buildEngineConfig() engine.Config {
	return engine.Config{
		MaxCascadeDepth: c.MaxCascadeDepth,
		DecayFactor:     c.DecayFactor,
		MinWeight:       c.MinWeight,
		AreaMaxDepth:    c.AreaMaxDepth,
		GlobalMaxDepth:  c.GlobalMaxDepth,
	}
}
