package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Profile names
const (
	ProfileLocal  = "local"
	ProfileGlobal = "global"
)

// Default block footprint used when a node has no usable size
const (
	DefaultWidth  = 200.0
	DefaultHeight = 120.0
)

// ErrUnknownProfile is returned by ProfileFor for an unrecognised name
var ErrUnknownProfile = errors.New("unknown layout profile")

// Profile is the bundle of physical constants governing one run
type Profile struct {
	Name string `json:"name" yaml:"name"`

	RepulsionStrength    float64 `json:"repulsion_strength" yaml:"repulsion_strength"`
	RepulsionMinDistance float64 `json:"repulsion_min_distance" yaml:"repulsion_min_distance"`

	AttractionStrength float64 `json:"attraction_strength" yaml:"attraction_strength"`
	IdealLinkDistance  float64 `json:"ideal_link_distance" yaml:"ideal_link_distance"`

	OverlapPadding float64 `json:"overlap_padding" yaml:"overlap_padding"`

	GravityStrength float64 `json:"gravity_strength" yaml:"gravity_strength"`

	Iterations         int     `json:"iterations" yaml:"iterations"`
	InitialTemperature float64 `json:"initial_temperature" yaml:"initial_temperature"`
	CoolingFactor      float64 `json:"cooling_factor" yaml:"cooling_factor"`
	MinTemperature     float64 `json:"min_temperature" yaml:"min_temperature"`
	VelocityDamping    float64 `json:"velocity_damping" yaml:"velocity_damping"`

	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
}

func baseProfile() Profile {
	return Profile{
		RepulsionMinDistance: 80,
		AttractionStrength:   0.005,
		CoolingFactor:        0.97,
		MinTemperature:       0.5,
		VelocityDamping:      0.85,
		MinX:                 50,
		MinY:                 50,
	}
}

// LocalProfile returns the preset for laying out a single space
func LocalProfile() Profile {
	p := baseProfile()
	p.Name = ProfileLocal
	p.RepulsionStrength = 25000
	p.IdealLinkDistance = 450
	p.OverlapPadding = 40
	p.GravityStrength = 0.012
	p.Iterations = 350
	p.InitialTemperature = 250
	return p
}

// GlobalProfile returns the preset for laying out the whole graph.
// It spreads nodes further apart and pulls them in more gently.
func GlobalProfile() Profile {
	p := baseProfile()
	p.Name = ProfileGlobal
	p.RepulsionStrength = 35000
	p.IdealLinkDistance = 550
	p.OverlapPadding = 50
	p.GravityStrength = 0.008
	p.Iterations = 400
	p.InitialTemperature = 300
	return p
}

// ProfileFor returns the named preset
func ProfileFor(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileLocal, "":
		return LocalProfile(), nil
	case ProfileGlobal:
		return GlobalProfile(), nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

// Validate reports constants that would make the simulation meaningless.
// Every constant must be finite.
func (p Profile) Validate() error {
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"repulsion_strength", p.RepulsionStrength},
		{"repulsion_min_distance", p.RepulsionMinDistance},
		{"attraction_strength", p.AttractionStrength},
		{"ideal_link_distance", p.IdealLinkDistance},
		{"overlap_padding", p.OverlapPadding},
		{"gravity_strength", p.GravityStrength},
		{"initial_temperature", p.InitialTemperature},
		{"cooling_factor", p.CoolingFactor},
		{"min_temperature", p.MinTemperature},
		{"velocity_damping", p.VelocityDamping},
		{"min_x", p.MinX},
		{"min_y", p.MinY},
	} {
		if !finite(c.value) {
			return fmt.Errorf("%s must be finite, got %g", c.name, c.value)
		}
	}

	switch {
	case p.Iterations <= 0:
		return fmt.Errorf("iterations must be positive, got %d", p.Iterations)
	case p.InitialTemperature <= 0:
		return fmt.Errorf("initial_temperature must be positive, got %g", p.InitialTemperature)
	case p.MinTemperature < 0:
		return fmt.Errorf("min_temperature must not be negative, got %g", p.MinTemperature)
	case p.CoolingFactor <= 0 || p.CoolingFactor >= 1:
		return fmt.Errorf("cooling_factor must be in (0, 1), got %g", p.CoolingFactor)
	case p.VelocityDamping <= 0 || p.VelocityDamping >= 1:
		return fmt.Errorf("velocity_damping must be in (0, 1), got %g", p.VelocityDamping)
	case p.RepulsionStrength < 0, p.AttractionStrength < 0, p.GravityStrength < 0:
		return errors.New("force strengths must not be negative")
	case p.RepulsionMinDistance <= 0:
		return fmt.Errorf("repulsion_min_distance must be positive, got %g", p.RepulsionMinDistance)
	case p.IdealLinkDistance < 0, p.OverlapPadding < 0:
		return errors.New("distances must not be negative")
	}
	return nil
}

// ProfileOverride replaces any subset of a profile's constants.
// Nil fields keep the base value.
type ProfileOverride struct {
	RepulsionStrength    *float64 `json:"repulsion_strength,omitempty" yaml:"repulsion_strength,omitempty"`
	RepulsionMinDistance *float64 `json:"repulsion_min_distance,omitempty" yaml:"repulsion_min_distance,omitempty"`
	AttractionStrength   *float64 `json:"attraction_strength,omitempty" yaml:"attraction_strength,omitempty"`
	IdealLinkDistance    *float64 `json:"ideal_link_distance,omitempty" yaml:"ideal_link_distance,omitempty"`
	OverlapPadding       *float64 `json:"overlap_padding,omitempty" yaml:"overlap_padding,omitempty"`
	GravityStrength      *float64 `json:"gravity_strength,omitempty" yaml:"gravity_strength,omitempty"`
	Iterations           *int     `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	InitialTemperature   *float64 `json:"initial_temperature,omitempty" yaml:"initial_temperature,omitempty"`
	CoolingFactor        *float64 `json:"cooling_factor,omitempty" yaml:"cooling_factor,omitempty"`
	MinTemperature       *float64 `json:"min_temperature,omitempty" yaml:"min_temperature,omitempty"`
	VelocityDamping      *float64 `json:"velocity_damping,omitempty" yaml:"velocity_damping,omitempty"`
	MinX                 *float64 `json:"min_x,omitempty" yaml:"min_x,omitempty"`
	MinY                 *float64 `json:"min_y,omitempty" yaml:"min_y,omitempty"`
}

// IsZero reports whether the override changes nothing
func (o *ProfileOverride) IsZero() bool {
	return o == nil || *o == ProfileOverride{}
}

// Apply returns p with the override's non-nil fields substituted
func (o *ProfileOverride) Apply(p Profile) Profile {
	if o == nil {
		return p
	}
	setFloat(&p.RepulsionStrength, o.RepulsionStrength)
	setFloat(&p.RepulsionMinDistance, o.RepulsionMinDistance)
	setFloat(&p.AttractionStrength, o.AttractionStrength)
	setFloat(&p.IdealLinkDistance, o.IdealLinkDistance)
	setFloat(&p.OverlapPadding, o.OverlapPadding)
	setFloat(&p.GravityStrength, o.GravityStrength)
	if o.Iterations != nil {
		p.Iterations = *o.Iterations
	}
	setFloat(&p.InitialTemperature, o.InitialTemperature)
	setFloat(&p.CoolingFactor, o.CoolingFactor)
	setFloat(&p.MinTemperature, o.MinTemperature)
	setFloat(&p.VelocityDamping, o.VelocityDamping)
	setFloat(&p.MinX, o.MinX)
	setFloat(&p.MinY, o.MinY)
	return p
}

// Merge layers other on top of o. Fields set in other win.
func (o *ProfileOverride) Merge(other *ProfileOverride) *ProfileOverride {
	var out ProfileOverride
	if o != nil {
		out = *o
	}
	if other == nil {
		return &out
	}
	mergeFloat(&out.RepulsionStrength, other.RepulsionStrength)
	mergeFloat(&out.RepulsionMinDistance, other.RepulsionMinDistance)
	mergeFloat(&out.AttractionStrength, other.AttractionStrength)
	mergeFloat(&out.IdealLinkDistance, other.IdealLinkDistance)
	mergeFloat(&out.OverlapPadding, other.OverlapPadding)
	mergeFloat(&out.GravityStrength, other.GravityStrength)
	if other.Iterations != nil {
		out.Iterations = other.Iterations
	}
	mergeFloat(&out.InitialTemperature, other.InitialTemperature)
	mergeFloat(&out.CoolingFactor, other.CoolingFactor)
	mergeFloat(&out.MinTemperature, other.MinTemperature)
	mergeFloat(&out.VelocityDamping, other.VelocityDamping)
	mergeFloat(&out.MinX, other.MinX)
	mergeFloat(&out.MinY, other.MinY)
	return &out
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func mergeFloat(dst **float64, v *float64) {
	if v != nil {
		*dst = v
	}
}
