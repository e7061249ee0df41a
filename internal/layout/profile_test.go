package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetProfiles(t *testing.T) {
	tests := []struct {
		name       string
		profile    Profile
		repulsion  float64
		ideal      float64
		gravity    float64
		iterations int
		initTemp   float64
		padding    float64
	}{
		{"local", LocalProfile(), 25000, 450, 0.012, 350, 250, 40},
		{"global", GlobalProfile(), 35000, 550, 0.008, 400, 300, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			assert.Equal(t, tt.name, p.Name)
			assert.Equal(t, tt.repulsion, p.RepulsionStrength)
			assert.Equal(t, tt.ideal, p.IdealLinkDistance)
			assert.Equal(t, tt.gravity, p.GravityStrength)
			assert.Equal(t, tt.iterations, p.Iterations)
			assert.Equal(t, tt.initTemp, p.InitialTemperature)
			assert.Equal(t, tt.padding, p.OverlapPadding)

			// shared constants
			assert.Equal(t, 80.0, p.RepulsionMinDistance)
			assert.Equal(t, 0.005, p.AttractionStrength)
			assert.Equal(t, 0.97, p.CoolingFactor)
			assert.Equal(t, 0.5, p.MinTemperature)
			assert.Equal(t, 0.85, p.VelocityDamping)
			assert.Equal(t, 50.0, p.MinX)
			assert.Equal(t, 50.0, p.MinY)

			assert.NoError(t, p.Validate())
		})
	}
}

func TestProfileFor(t *testing.T) {
	p, err := ProfileFor("GLOBAL")
	require.NoError(t, err)
	assert.Equal(t, GlobalProfile(), p)

	p, err = ProfileFor("")
	require.NoError(t, err)
	assert.Equal(t, LocalProfile(), p)

	_, err = ProfileFor("radial")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"zero iterations", func(p *Profile) { p.Iterations = 0 }},
		{"zero temperature", func(p *Profile) { p.InitialTemperature = 0 }},
		{"negative floor", func(p *Profile) { p.MinTemperature = -1 }},
		{"cooling above one", func(p *Profile) { p.CoolingFactor = 1.2 }},
		{"zero damping", func(p *Profile) { p.VelocityDamping = 0 }},
		{"negative gravity", func(p *Profile) { p.GravityStrength = -0.1 }},
		{"zero min distance", func(p *Profile) { p.RepulsionMinDistance = 0 }},
		{"negative padding", func(p *Profile) { p.OverlapPadding = -5 }},
		{"cooling of one", func(p *Profile) { p.CoolingFactor = 1 }},
		{"damping of one", func(p *Profile) { p.VelocityDamping = 1 }},
		{"NaN gravity", func(p *Profile) { p.GravityStrength = math.NaN() }},
		{"infinite repulsion", func(p *Profile) { p.RepulsionStrength = math.Inf(1) }},
		{"infinite link distance", func(p *Profile) { p.IdealLinkDistance = math.Inf(1) }},
		{"NaN min x", func(p *Profile) { p.MinX = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := LocalProfile()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestProfileOverrideApply(t *testing.T) {
	iterations := 10
	gravity := 0.5
	o := &ProfileOverride{Iterations: &iterations, GravityStrength: &gravity}

	p := o.Apply(LocalProfile())
	assert.Equal(t, 10, p.Iterations)
	assert.Equal(t, 0.5, p.GravityStrength)
	assert.Equal(t, 25000.0, p.RepulsionStrength, "unset fields keep the base value")
	assert.Equal(t, ProfileLocal, p.Name)

	var nilOverride *ProfileOverride
	assert.Equal(t, GlobalProfile(), nilOverride.Apply(GlobalProfile()))
	assert.True(t, nilOverride.IsZero())
	assert.True(t, (&ProfileOverride{}).IsZero())
	assert.False(t, o.IsZero())
}

func TestProfileOverrideMerge(t *testing.T) {
	a, b := 1.0, 2.0
	iterations := 99
	base := &ProfileOverride{RepulsionStrength: &a, Iterations: &iterations}
	top := &ProfileOverride{RepulsionStrength: &b}

	merged := base.Merge(top)
	require.NotNil(t, merged.RepulsionStrength)
	assert.Equal(t, 2.0, *merged.RepulsionStrength)
	require.NotNil(t, merged.Iterations)
	assert.Equal(t, 99, *merged.Iterations)

	// receivers are not mutated
	assert.Equal(t, 1.0, *base.RepulsionStrength)

	var nilBase *ProfileOverride
	assert.Equal(t, top.RepulsionStrength, nilBase.Merge(top).RepulsionStrength)
	assert.True(t, nilBase.Merge(nil).IsZero())
}
