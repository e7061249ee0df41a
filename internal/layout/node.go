package layout

import "math"

// Node is one laid-out entity. Position and velocity are mutated through
// a run; size and degree are fixed once the run starts.
type Node struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"-"`
	VY     float64 `json:"-"`
	W      float64 `json:"width"`
	H      float64 `json:"height"`
	Degree int     `json:"degree"`
}

// Edge links two nodes for its attractive pull only
type Edge struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// arena is the run-owned mutable node storage. Edges are resolved to
// indices so the hot loops never touch a map.
type arena struct {
	nodes []Node
	edges [][2]int
}

// newArena copies nodes, drops edges that are dangling or self-referencing,
// and derives degrees from what remains.
// Duplicate ids are a caller contract violation; the last one wins for edge
// resolution.
func newArena(nodes []Node, edges []Edge) *arena {
	a := &arena{nodes: make([]Node, len(nodes))}
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		n.VX, n.VY, n.Degree = 0, 0, 0
		if !(n.W > 0) || math.IsInf(n.W, 0) {
			n.W = DefaultWidth
		}
		if !(n.H > 0) || math.IsInf(n.H, 0) {
			n.H = DefaultHeight
		}
		a.nodes[i] = n
		index[n.ID] = i
	}

	for _, e := range edges {
		s, ok := index[e.SourceID]
		if !ok {
			continue
		}
		t, ok := index[e.TargetID]
		if !ok || s == t {
			continue
		}
		a.edges = append(a.edges, [2]int{s, t})
		a.nodes[s].Degree++
		a.nodes[t].Degree++
	}
	return a
}

func (a *arena) maxDegree() int {
	best := 0
	for i := range a.nodes {
		best = max(best, a.nodes[i].Degree)
	}
	return best
}

func (a *arena) snapshot() []Node {
	out := make([]Node, len(a.nodes))
	copy(out, a.nodes)
	return out
}
