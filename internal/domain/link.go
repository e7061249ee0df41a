package domain

import "time"

// LinkType describes the relation a link expresses
type LinkType string

const (
	LinkSimple   LinkType = "simple"
	LinkLogical  LinkType = "logical"
	LinkTension  LinkType = "tension"
	LinkAnchored LinkType = "anchored"
)

// Valid reports whether t is a known link type
func (t LinkType) Valid() bool {
	switch t {
	case LinkSimple, LinkLogical, LinkTension, LinkAnchored:
		return true
	}
	return false
}

// Validation is the review status of a link
type Validation string

const (
	ValidationPending   Validation = "pending"
	ValidationValidated Validation = "validated"
	ValidationRejected  Validation = "rejected"
)

// Valid reports whether v is a known status
func (v Validation) Valid() bool {
	switch v {
	case ValidationPending, ValidationValidated, ValidationRejected:
		return true
	}
	return false
}

// DefaultLinkWeight is used for links created without a weight
const DefaultLinkWeight = 1.0

// Link connects two blocks, possibly in different spaces.
// SpaceID records where the link was drawn.
type Link struct {
	ID         string     `json:"id" yaml:"id"`
	SpaceID    string     `json:"space_id,omitempty" yaml:"space_id,omitempty"`
	SourceID   string     `json:"source_id" yaml:"source_id"`
	TargetID   string     `json:"target_id" yaml:"target_id"`
	Type       LinkType   `json:"type" yaml:"type"`
	Weight     float64    `json:"weight" yaml:"weight"`
	Validation Validation `json:"validation" yaml:"validation"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
}

// NewLink creates a validated simple link of default weight
func NewLink(id, sourceID, targetID string) *Link {
	l := &Link{
		ID:        id,
		SourceID:  sourceID,
		TargetID:  targetID,
		CreatedAt: time.Now().UTC(),
	}
	l.ApplyDefaults()
	return l
}

// ApplyDefaults fills zero-valued fields
func (l *Link) ApplyDefaults() {
	if l.Type == "" {
		l.Type = LinkSimple
	}
	if l.Weight == 0 {
		l.Weight = DefaultLinkWeight
	}
	if l.Validation == "" {
		l.Validation = ValidationValidated
	}
}

// Rejected reports whether the link was rejected during review
func (l *Link) Rejected() bool {
	return l.Validation == ValidationRejected
}

// Touches reports whether the link has blockID as an endpoint
func (l *Link) Touches(blockID string) bool {
	return l.SourceID == blockID || l.TargetID == blockID
}
