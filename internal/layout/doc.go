// Package layout implements the force-directed layout engine used to arrange
// blocks on a canvas.
//
// A run takes an immutable snapshot of nodes and edges, seeds an initial
// placement, and iterates a physical simulation until the temperature falls
// below a floor or the iteration budget is exhausted.
//
// # Forces
//
// Each iteration applies, in order:
//
//   - Repulsion between every pair of nodes (inverse square on an effective
//     distance that accounts for node sizes, with a bonus while boxes overlap)
//   - Spring attraction along every edge toward an ideal link distance
//   - Gravity toward the center, weighted by 1 + 0.3*degree so hubs settle
//     in the middle
//
// Velocities are damped, capped by the current temperature, integrated into
// positions, and positions are clamped into size-adaptive bounds.
//
// # Profiles
//
// Two named profiles exist: LocalProfile for a single space and GlobalProfile
// for the whole multi-space graph. Any constant can be overridden with a
// ProfileOverride.
//
// # Determinism
//
// Initial jitter is the only random input. It is drawn from the generator
// supplied with WithRand or WithSeed; without either a fixed seed is used.
// The repulsion pass may be spread across goroutines with WithWorkers and
// produces identical output for any worker count.
//
// # Driver
//
// Arrange wraps the simulator for callers holding a Snapshot: it filters
// rejected and invalid edges, defaults missing sizes, rounds output to one
// decimal and reports the most connected node.
package layout
