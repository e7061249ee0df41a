package domain

import "time"

// Shape is the outline a block is drawn with
type Shape string

const (
	ShapeCloud       Shape = "cloud"
	ShapeRoundedRect Shape = "rounded-rect"
	ShapeSquare      Shape = "square"
	ShapeOval        Shape = "oval"
	ShapeCircle      Shape = "circle"
)

// Valid reports whether s is a known shape
func (s Shape) Valid() bool {
	switch s {
	case ShapeCloud, ShapeRoundedRect, ShapeSquare, ShapeOval, ShapeCircle:
		return true
	}
	return false
}

// Color is a palette entry shared by blocks and spaces
type Color string

const (
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorBlue   Color = "blue"
	ColorViolet Color = "violet"
	ColorMauve  Color = "mauve"
)

// Valid reports whether c is in the palette
func (c Color) Valid() bool {
	switch c {
	case ColorGreen, ColorOrange, ColorYellow, ColorBlue, ColorViolet, ColorMauve:
		return true
	}
	return false
}

// Default block footprint
const (
	DefaultBlockWidth  = 200.0
	DefaultBlockHeight = 120.0
)

// Block is one card on a canvas
type Block struct {
	ID      string `json:"id" yaml:"id"`
	SpaceID string `json:"space_id" yaml:"space_id"`

	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	// Global graph coordinates; nil until the first global layout
	XGlobal *float64 `json:"x_global,omitempty" yaml:"x_global,omitempty"`
	YGlobal *float64 `json:"y_global,omitempty" yaml:"y_global,omitempty"`

	Shape  Shape   `json:"shape" yaml:"shape"`
	Color  Color   `json:"color" yaml:"color"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`

	Contents []Content `json:"contents,omitempty" yaml:"contents,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewBlock creates a block with default shape, color and size
func NewBlock(id, spaceID string, x, y float64) *Block {
	now := time.Now().UTC()
	b := &Block{
		ID:        id,
		SpaceID:   spaceID,
		X:         x,
		Y:         y,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.ApplyDefaults()
	return b
}

// ApplyDefaults fills zero-valued presentation fields
func (b *Block) ApplyDefaults() {
	if b.Shape == "" {
		b.Shape = ShapeRoundedRect
	}
	if b.Color == "" {
		b.Color = ColorGreen
	}
	if b.Width <= 0 {
		b.Width = DefaultBlockWidth
	}
	if b.Height <= 0 {
		b.Height = DefaultBlockHeight
	}
}

// GlobalPosition returns the block's global coordinates, falling back to its
// local ones before it was ever laid out globally.
func (b *Block) GlobalPosition() (float64, float64) {
	x, y := b.X, b.Y
	if b.XGlobal != nil {
		x = *b.XGlobal
	}
	if b.YGlobal != nil {
		y = *b.YGlobal
	}
	return x, y
}

// DisplayName is the title, or the id when untitled
func (b *Block) DisplayName() string {
	if b.Title != "" {
		return b.Title
	}
	return b.ID
}
