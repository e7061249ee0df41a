package domain

import "slices"

// GlobalGraph is the derived cross-space view
type GlobalGraph struct {
	Spaces []Space       `json:"spaces"`
	Blocks []GlobalBlock `json:"blocks"`
	Links  []GlobalLink  `json:"links"`
}

// GlobalBlock is a block placed at its global coordinates
type GlobalBlock struct {
	Block
	GX float64 `json:"gx"`
	GY float64 `json:"gy"`
}

// GlobalLink is a link annotated with the spaces of its endpoints
type GlobalLink struct {
	Link
	SourceSpaceID string `json:"source_space_id"`
	TargetSpaceID string `json:"target_space_id"`
	InterSpace    bool   `json:"inter_space"`
}

// NewGlobalGraph creates an empty graph with initialized collections
func NewGlobalGraph() *GlobalGraph {
	return &GlobalGraph{
		Spaces: make([]Space, 0),
		Blocks: make([]GlobalBlock, 0),
		Links:  make([]GlobalLink, 0),
	}
}

// GraphFilter narrows the global view. Empty fields match everything.
type GraphFilter struct {
	SpaceIDs       []string     `json:"space_ids,omitempty"`
	LinkTypes      []LinkType   `json:"link_types,omitempty"`
	Validations    []Validation `json:"validations,omitempty"`
	Colors         []Color      `json:"colors,omitempty"`
	Shapes         []Shape      `json:"shapes,omitempty"`
	MinWeight      float64      `json:"min_weight,omitempty"`
	InterSpaceOnly bool         `json:"inter_space_only,omitempty"`
}

// MatchBlock reports whether b passes the space, color and shape filters
func (f GraphFilter) MatchBlock(b *Block) bool {
	if len(f.SpaceIDs) > 0 && !slices.Contains(f.SpaceIDs, b.SpaceID) {
		return false
	}
	if len(f.Colors) > 0 && !slices.Contains(f.Colors, b.Color) {
		return false
	}
	if len(f.Shapes) > 0 && !slices.Contains(f.Shapes, b.Shape) {
		return false
	}
	return true
}

// MatchLink reports whether l passes the link-level filters
func (f GraphFilter) MatchLink(l *GlobalLink) bool {
	if len(f.LinkTypes) > 0 && !slices.Contains(f.LinkTypes, l.Type) {
		return false
	}
	if len(f.Validations) > 0 && !slices.Contains(f.Validations, l.Validation) {
		return false
	}
	if l.Weight < f.MinWeight {
		return false
	}
	if f.InterSpaceOnly && !l.InterSpace {
		return false
	}
	return true
}
