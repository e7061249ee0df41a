package domain

import "testing"

func TestNewBlock(t *testing.T) {
	t.Run("creates block with defaults", func(t *testing.T) {
		b := NewBlock("b1", "s1", 10, 20)

		if b.Shape != ShapeRoundedRect {
			t.Errorf("expected shape %s, got %s", ShapeRoundedRect, b.Shape)
		}
		if b.Color != ColorGreen {
			t.Errorf("expected color %s, got %s", ColorGreen, b.Color)
		}
		if b.Width != DefaultBlockWidth || b.Height != DefaultBlockHeight {
			t.Errorf("expected %vx%v, got %vx%v", DefaultBlockWidth, DefaultBlockHeight, b.Width, b.Height)
		}
		if b.XGlobal != nil || b.YGlobal != nil {
			t.Error("expected no global coordinates")
		}
		if b.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("display name falls back to id", func(t *testing.T) {
		b := NewBlock("b1", "s1", 0, 0)
		if b.DisplayName() != "b1" {
			t.Errorf("expected b1, got %s", b.DisplayName())
		}
		b.Title = "Reading list"
		if b.DisplayName() != "Reading list" {
			t.Errorf("expected title, got %s", b.DisplayName())
		}
	})
}

func TestEnumValidity(t *testing.T) {
	if !ShapeCircle.Valid() || Shape("hexagon").Valid() {
		t.Error("shape validity is wrong")
	}
	if !ColorMauve.Valid() || Color("red").Valid() {
		t.Error("color validity is wrong")
	}
	if !ContentVideoRef.Valid() || ContentType("audio").Valid() {
		t.Error("content type validity is wrong")
	}
	if !LinkAnchored.Valid() || LinkType("causal").Valid() {
		t.Error("link type validity is wrong")
	}
	if !ValidationPending.Valid() || Validation("maybe").Valid() {
		t.Error("validation validity is wrong")
	}
}

func TestNewLink(t *testing.T) {
	l := NewLink("l1", "a", "b")

	if l.Type != LinkSimple {
		t.Errorf("expected type %s, got %s", LinkSimple, l.Type)
	}
	if l.Weight != DefaultLinkWeight {
		t.Errorf("expected weight %v, got %v", DefaultLinkWeight, l.Weight)
	}
	if l.Validation != ValidationValidated {
		t.Errorf("expected validation %s, got %s", ValidationValidated, l.Validation)
	}
	if l.Rejected() {
		t.Error("new link should not be rejected")
	}
	if !l.Touches("a") || !l.Touches("b") || l.Touches("c") {
		t.Error("Touches reports wrong endpoints")
	}

	l.Validation = ValidationRejected
	if !l.Rejected() {
		t.Error("expected rejected link")
	}
}
