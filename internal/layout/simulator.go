package layout

import (
	"cmp"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// State is the simulator lifecycle position
type State int

const (
	StateIdle State = iota
	StateSeeding
	StateIterating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeding:
		return "seeding"
	case StateIterating:
		return "iterating"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Below this many nodes the repulsion pass stays on one goroutine
const parallelThreshold = 64

// Result is the outcome of one run
type Result struct {
	Nodes            []Node  `json:"nodes"`
	Bounds           Bounds  `json:"bounds"`
	Iterations       int     `json:"iterations"`
	FinalTemperature float64 `json:"final_temperature"`
	// Converged is true when the temperature fell below the floor before the
	// iteration budget ran out.
	Converged bool `json:"converged"`
}

// Empty reports that there was nothing to lay out
func (r Result) Empty() bool {
	return len(r.Nodes) == 0
}

// Simulator runs the force-directed simulation for one profile.
// A Simulator is not safe for concurrent use; create one per run.
type Simulator struct {
	profile Profile
	opts    options
	state   State

	// per-run repulsion accumulators
	fx, fy []float64
}

// NewSimulator creates a simulator for profile p
func NewSimulator(p Profile, opts ...Option) *Simulator {
	return newSimulator(p, buildOptions(opts))
}

func newSimulator(p Profile, o options) *Simulator {
	return &Simulator{profile: p, opts: o}
}

// Profile returns the constants the simulator runs with
func (s *Simulator) Profile() Profile {
	return s.profile
}

// State returns the current lifecycle state
func (s *Simulator) State() State {
	return s.state
}

// Run lays out nodes under edges and returns fresh copies with final
// positions. The inputs are never modified.
func (s *Simulator) Run(nodes []Node, edges []Edge) Result {
	a := newArena(nodes, edges)
	bounds := DeriveBounds(a.nodes, s.profile)

	if len(a.nodes) == 0 {
		s.state = StateDone
		return Result{Bounds: bounds, FinalTemperature: s.profile.InitialTemperature}
	}

	s.state = StateSeeding
	switch s.opts.seedMode {
	case SeedKeep:
		s.seedKeep(a, bounds)
	default:
		s.seedCircle(a, bounds)
	}

	s.state = StateIterating
	s.fx = make([]float64, len(a.nodes))
	s.fy = make([]float64, len(a.nodes))

	p := s.profile
	temperature := p.InitialTemperature
	iterations := 0
	for iterations < p.Iterations {
		if temperature < p.MinTemperature {
			break
		}

		s.repulse(a)
		attract(a, p)
		gravitate(a, p, bounds)
		integrate(a, p, bounds, temperature)

		iterations++
		if s.opts.observer != nil {
			s.opts.observer(Step{Iteration: iterations, Temperature: temperature})
		}
		temperature *= p.CoolingFactor
	}

	s.state = StateDone
	return Result{
		Nodes:            a.snapshot(),
		Bounds:           bounds,
		Iterations:       iterations,
		FinalTemperature: temperature,
		Converged:        temperature < p.MinTemperature,
	}
}

// Run is a convenience wrapper around NewSimulator(p, opts...).Run
func Run(nodes []Node, edges []Edge, p Profile, opts ...Option) Result {
	return NewSimulator(p, opts...).Run(nodes, edges)
}

// seedCircle puts high-degree nodes on a tighter ring. Angle jitter is drawn
// before radius jitter for every node.
func (s *Simulator) seedCircle(a *arena, b Bounds) {
	order := make([]int, len(a.nodes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return cmp.Compare(a.nodes[y].Degree, a.nodes[x].Degree)
	})

	n := float64(len(a.nodes))
	maxDeg := float64(max(1, a.maxDegree()))
	rng := s.opts.rng

	for rank, idx := range order {
		node := &a.nodes[idx]
		angle := 2*math.Pi*float64(rank)/n + uniform(rng.Float64(), -0.3, 0.3)
		radius := b.Spread * 0.3 * (1 - float64(node.Degree)/maxDeg*0.5)
		radius += uniform(rng.Float64(), -50, 50)
		node.X, node.Y = b.clamp(b.CenterX+radius*math.Cos(angle), b.CenterY+radius*math.Sin(angle))
	}
}

func (s *Simulator) seedKeep(a *arena, b Bounds) {
	for i := range a.nodes {
		node := &a.nodes[i]
		if !finite(node.X) || !finite(node.Y) {
			node.X, node.Y = b.CenterX, b.CenterY
		}
		node.X, node.Y = b.clamp(node.X, node.Y)
	}
}

func uniform(u, lo, hi float64) float64 {
	return lo + (hi-lo)*u
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// repulse accumulates pairwise repulsion row by row. Every row sums its
// columns in index order, so splitting rows across goroutines never changes
// the result.
func (s *Simulator) repulse(a *arena) {
	n := len(a.nodes)
	workers := s.opts.workers
	if workers <= 1 || n < parallelThreshold {
		repulseRows(a.nodes, s.profile, s.fx, s.fy, 0, n)
	} else {
		chunk := (n + workers - 1) / workers
		var g errgroup.Group
		for lo := 0; lo < n; lo += chunk {
			hi := min(lo+chunk, n)
			g.Go(func() error {
				repulseRows(a.nodes, s.profile, s.fx, s.fy, lo, hi)
				return nil
			})
		}
		_ = g.Wait()
	}

	for i := range a.nodes {
		a.nodes[i].VX += s.fx[i]
		a.nodes[i].VY += s.fy[i]
	}
}

func repulseRows(nodes []Node, p Profile, fx, fy []float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		ni := &nodes[i]
		var sx, sy float64
		for j := range nodes {
			if j == i {
				continue
			}
			nj := &nodes[j]
			dx := nj.X - ni.X
			dy := nj.Y - ni.Y
			if dx == 0 && dy == 0 {
				// coincident centers separate along x by index order
				if j > i {
					dx = 1
				} else {
					dx = -1
				}
			}

			dist := math.Max(math.Sqrt(dx*dx+dy*dy), 1)
			ux, uy := dx/dist, dy/dist

			sepX := (ni.W+nj.W)/2 + p.OverlapPadding
			sepY := (ni.H+nj.H)/2 + p.OverlapPadding
			minSep := math.Sqrt(sepX*ux*sepX*ux + sepY*uy*sepY*uy)

			eff := math.Max(dist-minSep, p.RepulsionMinDistance)
			force := p.RepulsionStrength / (eff * eff)
			if dist < minSep {
				force += p.RepulsionStrength * (1 - dist/minSep) * 2
			}

			sx -= ux * force
			sy -= uy * force
		}
		fx[i], fy[i] = sx, sy
	}
}

// attract pulls linked nodes toward the ideal link distance. A negative
// displacement pushes them apart.
func attract(a *arena, p Profile) {
	for _, e := range a.edges {
		src, dst := &a.nodes[e[0]], &a.nodes[e[1]]
		dx := dst.X - src.X
		dy := dst.Y - src.Y
		dist := math.Max(math.Sqrt(dx*dx+dy*dy), 1)

		force := p.AttractionStrength * (dist - p.IdealLinkDistance)
		fx := dx / dist * force
		fy := dy / dist * force

		src.VX += fx
		src.VY += fy
		dst.VX -= fx
		dst.VY -= fy
	}
}

func gravitate(a *arena, p Profile, b Bounds) {
	for i := range a.nodes {
		node := &a.nodes[i]
		weight := 1 + float64(node.Degree)*0.3
		node.VX += (b.CenterX - node.X) * p.GravityStrength * weight
		node.VY += (b.CenterY - node.Y) * p.GravityStrength * weight
	}
}

func integrate(a *arena, p Profile, b Bounds, temperature float64) {
	for i := range a.nodes {
		node := &a.nodes[i]
		node.VX *= p.VelocityDamping
		node.VY *= p.VelocityDamping

		speed := math.Sqrt(node.VX*node.VX + node.VY*node.VY)
		if speed > temperature {
			node.VX = node.VX / speed * temperature
			node.VY = node.VY / speed * temperature
		}

		node.X, node.Y = b.clamp(node.X+node.VX, node.Y+node.VY)
	}
}
