package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSnapshot marks a caller-side contract violation
var ErrInvalidSnapshot = errors.New("invalid layout snapshot")

// SnapshotNode is a caller-supplied node with its current position and size.
// A zero size means unknown and is replaced by the default block size.
type SnapshotNode struct {
	ID      string  `json:"id" yaml:"id"`
	SpaceID string  `json:"space_id,omitempty" yaml:"space_id,omitempty"`
	Label   string  `json:"label,omitempty" yaml:"label,omitempty"`
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Width   float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height  float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// SpaceCount returns the number of distinct spaces among the nodes. Nodes
// without a space count as one shared space.
func (s *Snapshot) SpaceCount() int {
	spaces := make(map[string]struct{}, len(s.Nodes))
	for _, n := range s.Nodes {
		spaces[n.SpaceID] = struct{}{}
	}
	return len(spaces)
}

// SnapshotEdge is a caller-supplied link. Weight zero means unweighted.
type SnapshotEdge struct {
	SourceID string  `json:"source_id" yaml:"source_id"`
	TargetID string  `json:"target_id" yaml:"target_id"`
	Weight   float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Rejected bool    `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// Snapshot is the frozen input of one layout run
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes" yaml:"nodes"`
	Edges []SnapshotEdge `json:"edges" yaml:"edges"`
}

// Validate rejects duplicate ids, non-finite geometry and negative sizes.
// Dangling edges are legal.
func (s *Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has no id", ErrInvalidSnapshot, i)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidSnapshot, n.ID)
		}
		seen[n.ID] = struct{}{}

		if !finite(n.X) || !finite(n.Y) {
			return fmt.Errorf("%w: node %q has a non-finite position", ErrInvalidSnapshot, n.ID)
		}
		if !finite(n.Width) || !finite(n.Height) {
			return fmt.Errorf("%w: node %q has a non-finite size", ErrInvalidSnapshot, n.ID)
		}
		if n.Width < 0 || n.Height < 0 {
			return fmt.Errorf("%w: node %q has a negative size", ErrInvalidSnapshot, n.ID)
		}
	}
	return nil
}

// Position is one rounded output coordinate
type Position struct {
	ID string  `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

// Central identifies the most connected node of a run
type Central struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Degree int    `json:"degree" yaml:"degree"`
}

// Report is what Arrange hands back to callers
type Report struct {
	Profile    string     `json:"profile" yaml:"profile"`
	Positions  []Position `json:"positions" yaml:"positions"`
	NodeCount  int        `json:"node_count" yaml:"node_count"`
	EdgeCount  int        `json:"edge_count" yaml:"edge_count"`
	Central    *Central   `json:"central,omitempty" yaml:"central,omitempty"`
	Iterations int        `json:"iterations" yaml:"iterations"`
	Converged  bool       `json:"converged" yaml:"converged"`
	Bounds     Bounds     `json:"bounds" yaml:"bounds"`
}

// Empty reports that the snapshot held no nodes
func (r *Report) Empty() bool {
	return r.NodeCount == 0
}

// Summary renders a short human-readable account of the run
func (r *Report) Summary() string {
	if r.Empty() {
		return "Space is empty, nothing to rearrange."
	}
	return r.render(fmt.Sprintf("%d blocks rearranged (force-directed).", r.NodeCount))
}

// GlobalSummary is Summary for a whole-graph run spanning spaces
func (r *Report) GlobalSummary(spaces int) string {
	if r.Empty() {
		return "No blocks, nothing to position."
	}
	return r.render(fmt.Sprintf("%d blocks positioned in the global graph (%d spaces).", r.NodeCount, spaces))
}

func (r *Report) render(head string) string {
	var b strings.Builder
	b.WriteString(head)
	if r.Central != nil && r.Central.Degree > 0 {
		fmt.Fprintf(&b, "\n  Central block: %q (%d connections)", r.Central.Label, r.Central.Degree)
	}
	fmt.Fprintf(&b, "\n  %d links processed.", r.EdgeCount)
	return b.String()
}

// Arrange lays out a snapshot under profile p.
//
// Rejected edges, edges with a negative or non-finite weight, and edges
// below the WithMinWeight floor are filtered out before the run. EdgeCount
// is the number of edges submitted to the simulator after that filter;
// dangling edges among them are still counted but exert no force.
func Arrange(snap Snapshot, p Profile, opts ...Option) *Report {
	o := buildOptions(opts)

	nodes := make([]Node, len(snap.Nodes))
	labels := make(map[string]string, len(snap.Nodes))
	for i, sn := range snap.Nodes {
		nodes[i] = Node{ID: sn.ID, X: sn.X, Y: sn.Y, W: sn.Width, H: sn.Height}
		labels[sn.ID] = sn.Label
	}

	edges := make([]Edge, 0, len(snap.Edges))
	for _, se := range snap.Edges {
		if !keepEdge(se, o.minWeight) {
			continue
		}
		edges = append(edges, Edge{SourceID: se.SourceID, TargetID: se.TargetID})
	}

	report := &Report{
		Profile:   p.Name,
		NodeCount: len(nodes),
		EdgeCount: len(edges),
	}

	res := newSimulator(p, o).Run(nodes, edges)
	report.Iterations = res.Iterations
	report.Converged = res.Converged
	report.Bounds = res.Bounds
	if res.Empty() {
		report.Positions = []Position{}
		return report
	}

	report.Positions = make([]Position, len(res.Nodes))
	var central *Node
	for i := range res.Nodes {
		n := &res.Nodes[i]
		report.Positions[i] = Position{ID: n.ID, X: round1(n.X), Y: round1(n.Y)}
		if central == nil || n.Degree > central.Degree {
			central = n
		}
	}

	label := labels[central.ID]
	if label == "" {
		label = central.ID
	}
	report.Central = &Central{ID: central.ID, Label: label, Degree: central.Degree}
	return report
}

func keepEdge(e SnapshotEdge, minWeight float64) bool {
	if e.Rejected {
		return false
	}
	w := e.Weight
	if w == 0 {
		w = 1
	}
	if !finite(w) || w < 0 {
		return false
	}
	return minWeight <= 0 || w >= minWeight
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
