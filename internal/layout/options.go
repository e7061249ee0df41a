package layout

import "math/rand/v2"

// SeedMode selects how initial positions are produced
type SeedMode int

const (
	// SeedCircle places nodes on a degree-ordered circle around the center
	SeedCircle SeedMode = iota
	// SeedKeep starts from the caller's positions, clamped into bounds
	SeedKeep
)

// Step is reported to an Observer after every completed iteration
type Step struct {
	Iteration   int
	Temperature float64
}

// Observer receives simulation progress. It runs on the simulating goroutine.
type Observer func(Step)

type options struct {
	rng       *rand.Rand
	workers   int
	observer  Observer
	seedMode  SeedMode
	minWeight float64
}

// Option configures a run
type Option func(*options)

// WithRand injects the generator used for initial jitter
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithSeed is shorthand for WithRand over a PCG source seeded with seed
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithWorkers spreads the repulsion pass over n goroutines
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithObserver registers a progress callback
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// WithSeedMode selects the initial placement strategy
func WithSeedMode(m SeedMode) Option {
	return func(o *options) {
		o.seedMode = m
	}
}

// WithMinWeight makes Arrange ignore edges lighter than w
func WithMinWeight(w float64) Option {
	return func(o *options) {
		o.minWeight = w
	}
}

func buildOptions(opts []Option) options {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(0, 0))
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}
