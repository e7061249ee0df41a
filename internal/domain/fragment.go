package domain

// Fragment is one space with its blocks and links, for import/export
type Fragment struct {
	Space  *Space  `json:"space,omitempty" yaml:"space,omitempty"`
	Blocks []Block `json:"blocks" yaml:"blocks"`
	Links  []Link  `json:"links" yaml:"links"`
}

// NewFragment creates an empty fragment
func NewFragment() *Fragment {
	return &Fragment{
		Blocks: make([]Block, 0),
		Links:  make([]Link, 0),
	}
}

// AddBlock adds a block to the fragment
func (f *Fragment) AddBlock(block Block) {
	f.Blocks = append(f.Blocks, block)
}

// AddLink adds a link to the fragment
func (f *Fragment) AddLink(link Link) {
	f.Links = append(f.Links, link)
}

// BlockIDs returns the ids of the fragment's blocks
func (f *Fragment) BlockIDs() map[string]bool {
	ids := make(map[string]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		ids[b.ID] = true
	}
	return ids
}
