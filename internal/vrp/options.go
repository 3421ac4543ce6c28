package vrp

import (
	"fmt"
	"time"
)

const (
	DefaultTimeBudget    = 10 * time.Second
	DefaultPenaltyFactor = 0.1
	DefaultMaxEscapes    = 1000
)

// Options tunes the search engine.
type Options struct {
	// TimeBudget bounds the whole Solve call, construction included.
	TimeBudget time.Duration

	// PenaltyFactor scales lambda relative to the average arc cost of the
	// first local optimum.
	PenaltyFactor float64

	// MaxEscapes caps the number of penalty updates. Zero runs a single
	// descent; a negative value keeps escaping until the time budget or the
	// context ends the search.
	MaxEscapes int
}

func DefaultOptions() Options {
	return Options{
		TimeBudget:    DefaultTimeBudget,
		PenaltyFactor: DefaultPenaltyFactor,
		MaxEscapes:    DefaultMaxEscapes,
	}
}

func (o Options) Validate() error {
	if o.TimeBudget <= 0 {
		return fmt.Errorf("time budget must be > 0 (got %s)", o.TimeBudget)
	}
	if o.PenaltyFactor < 0 {
		return fmt.Errorf("penalty factor must be >= 0 (got %g)", o.PenaltyFactor)
	}
	return nil
}
