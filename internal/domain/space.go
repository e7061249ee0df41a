package domain

import "time"

// Space is a themed canvas holding blocks
type Space struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Theme     string    `json:"theme,omitempty" yaml:"theme,omitempty"`
	Color     Color     `json:"color" yaml:"color"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewSpace creates a space with the default identity color
func NewSpace(id, name string) *Space {
	now := time.Now().UTC()
	return &Space{
		ID:        id,
		Name:      name,
		Color:     ColorGreen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
