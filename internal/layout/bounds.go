package layout

import "math"

// Bounds is the spatial frame of one run, derived from node count and size
type Bounds struct {
	MinX    float64 `json:"min_x" yaml:"min_x"`
	MinY    float64 `json:"min_y" yaml:"min_y"`
	MaxX    float64 `json:"max_x" yaml:"max_x"`
	MaxY    float64 `json:"max_y" yaml:"max_y"`
	CenterX float64 `json:"center_x" yaml:"center_x"`
	CenterY float64 `json:"center_y" yaml:"center_y"`
	Spread  float64 `json:"spread" yaml:"spread"`
}

// DeriveBounds scales the frame with sqrt(n) times the average footprint so
// five nodes and five hundred nodes look equally dense.
func DeriveBounds(nodes []Node, p Profile) Bounds {
	n := len(nodes)
	b := Bounds{MinX: p.MinX, MinY: p.MinY}
	if n == 0 {
		b.CenterX, b.CenterY = 100, 100
		b.MaxX, b.MaxY = 400, 400
		return b
	}

	var sumW, sumH float64
	for i := range nodes {
		sumW += nodes[i].W
		sumH += nodes[i].H
	}
	avg := (sumW/float64(n) + sumH/float64(n)) / 2

	b.Spread = math.Sqrt(float64(n)) * (avg + p.OverlapPadding) * 1.8
	b.CenterX = b.Spread/2 + 100
	b.CenterY = b.Spread/2 + 100
	b.MaxX = b.Spread + 400
	b.MaxY = b.Spread + 400
	return b
}

// Contains reports whether (x, y) lies inside the frame
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func (b Bounds) clamp(x, y float64) (float64, float64) {
	return math.Max(b.MinX, math.Min(b.MaxX, x)), math.Max(b.MinY, math.Min(b.MaxY, y))
}
