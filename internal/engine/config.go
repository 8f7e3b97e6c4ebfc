package engine

// Config tunes cascade control and propagation. Zero values are replaced with
// the defaults below when the engine is constructed.
type Config struct {
	// MaxCascadeDepth bounds chains of event completions within one external
	// call; completions past it are deferred to the next explicit tick.
	MaxCascadeDepth int

	// DecayFactor multiplies the propagation score at every hop.
	DecayFactor float64

	// MinWeight is the score below which propagation stops traversing.
	MinWeight float64

	// AreaMaxDepth and GlobalMaxDepth bound BFS depth per scope.
	AreaMaxDepth   int
	GlobalMaxDepth int
}

const (
	DefaultMaxCascadeDepth = 4
	DefaultDecayFactor     = 0.5
	DefaultMinWeight       = 0.05
	DefaultAreaMaxDepth    = 3
	DefaultGlobalMaxDepth  = 6
)

func (c Config) withDefaults() Config {
	if c.MaxCascadeDepth <= 0 {
		c.MaxCascadeDepth = DefaultMaxCascadeDepth
	}
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		c.DecayFactor = DefaultDecayFactor
	}
	if c.MinWeight <= 0 {
		c.MinWeight = DefaultMinWeight
	}
	if c.AreaMaxDepth <= 0 {
		c.AreaMaxDepth = DefaultAreaMaxDepth
	}
	if c.GlobalMaxDepth <= 0 {
		c.GlobalMaxDepth = DefaultGlobalMaxDepth
	}
	return c
}
