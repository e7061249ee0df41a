package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"atelier/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// seedSpace creates a space with the given blocks laid out on a row
func seedSpace(t *testing.T, repo *Repository, spaceID string, blockIDs ...string) {
	t.Helper()
	ctx := context.Background()
	assertNoError(t, repo.CreateSpace(ctx, domain.NewSpace(spaceID, "Space "+spaceID)))
	for i, id := range blockIDs {
		b := domain.NewBlock(id, spaceID, float64(i*300), 100)
		b.Title = "Block " + id
		assertNoError(t, repo.CreateBlock(ctx, b))
	}
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertErrorIs fails the test if err does not wrap target
func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error wrapping %v, got %v", target, err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid string", sql.NullString{String: "test", Valid: true}, "test"},
		{"invalid string", sql.NullString{String: "test", Valid: false}, ""},
		{"empty valid string", sql.NullString{String: "", Valid: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestFloatPtrRoundTrip(t *testing.T) {
	if floatPtrToNull(nil).Valid {
		t.Error("nil pointer should map to invalid NullFloat64")
	}
	if nullToFloatPtr(sql.NullFloat64{}) != nil {
		t.Error("invalid NullFloat64 should map to nil")
	}

	v := 12.5
	got := nullToFloatPtr(floatPtrToNull(&v))
	if got == nil || *got != 12.5 {
		t.Errorf("expected 12.5, got %v", got)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC)
	assertEqual(t, now, parseTime(formatTime(now)))

	if !parseTime("not a time").IsZero() {
		t.Error("unparseable time should yield zero value")
	}
}

func TestMarshalToNull(t *testing.T) {
	empty, err := marshalToNull(map[string]any{})
	assertNoError(t, err)
	if empty.Valid {
		t.Error("empty map should not be stored")
	}

	full, err := marshalToNull(map[string]any{"page": 3})
	assertNoError(t, err)
	assertEqual(t, `{"page":3}`, full.String)
}

// ============================================================================
// Space Tests
// ============================================================================

func TestSpaceCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	space := domain.NewSpace("s1", "Thesis")
	space.Theme = "history of cartography"
	assertNoError(t, repo.CreateSpace(ctx, space))

	got, err := repo.GetSpace(ctx, "s1")
	assertNoError(t, err)
	assertEqual(t, "Thesis", got.Name)
	assertEqual(t, "history of cartography", got.Theme)
	assertEqual(t, domain.ColorGreen, got.Color)

	t.Run("duplicate create conflicts", func(t *testing.T) {
		assertErrorIs(t, repo.CreateSpace(ctx, domain.NewSpace("s1", "Again")), domain.ErrConflict)
	})

	t.Run("update", func(t *testing.T) {
		got.Name = "Thesis v2"
		got.Color = domain.ColorViolet
		assertNoError(t, repo.UpdateSpace(ctx, got))

		again, err := repo.GetSpace(ctx, "s1")
		assertNoError(t, err)
		assertEqual(t, "Thesis v2", again.Name)
		assertEqual(t, domain.ColorViolet, again.Color)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		assertNoError(t, repo.CreateSpace(ctx, domain.NewSpace("s0", "Archive")))
		spaces, err := repo.ListSpaces(ctx)
		assertNoError(t, err)
		assertEqual(t, 2, len(spaces))
		assertEqual(t, "Archive", spaces[0].Name)
	})

	t.Run("missing space", func(t *testing.T) {
		_, err := repo.GetSpace(ctx, "nope")
		assertErrorIs(t, err, domain.ErrNotFound)
		assertErrorIs(t, repo.UpdateSpace(ctx, domain.NewSpace("nope", "x")), domain.ErrNotFound)
		assertErrorIs(t, repo.DeleteSpace(ctx, "nope"), domain.ErrNotFound)
	})
}

func TestDeleteSpaceCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSpace(t, repo, "s1", "a", "b")
	assertNoError(t, repo.CreateLink(ctx, domain.NewLink("l1", "a", "b")))

	assertNoError(t, repo.DeleteSpace(ctx, "s1"))

	_, err := repo.GetBlock(ctx, "a")
	assertErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetLink(ctx, "l1")
	assertErrorIs(t, err, domain.ErrNotFound)
}

// ============================================================================
// Block Tests
// ============================================================================

func TestBlockCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSpace(t, repo, "s1")

	block := domain.NewBlock("b1", "s1", 10, 20)
	block.Title = "Sources"
	block.Shape = domain.ShapeCloud
	block.Contents = []domain.Content{
		{ID: "c1", Type: domain.ContentNote, Body: "check the atlas", Order: 0},
		{ID: "c2", Type: domain.ContentURL, Body: "https://example.org", Order: 1, Metadata: map[string]any{"title": "Example"}},
	}
	assertNoError(t, repo.CreateBlock(ctx, block))

	got, err := repo.GetBlock(ctx, "b1")
	assertNoError(t, err)
	assertEqual(t, "Sources", got.Title)
	assertEqual(t, domain.ShapeCloud, got.Shape)
	assertEqual(t, 200.0, got.Width)
	assertEqual(t, 2, len(got.Contents))
	assertEqual(t, "c1", got.Contents[0].ID)
	assertEqual(t, "Example", got.Contents[1].Metadata["title"])

	t.Run("update keeps global coordinates", func(t *testing.T) {
		assertNoError(t, repo.SavePositions(ctx, domain.ScopeGlobal, []domain.BlockPosition{{BlockID: "b1", X: 900, Y: 800}}))

		got.X, got.Y = 55, 66
		got.Color = domain.ColorOrange
		assertNoError(t, repo.UpdateBlock(ctx, got))

		again, err := repo.GetBlock(ctx, "b1")
		assertNoError(t, err)
		assertEqual(t, 55.0, again.X)
		assertEqual(t, domain.ColorOrange, again.Color)
		if again.XGlobal == nil || *again.XGlobal != 900 {
			t.Errorf("expected x_global 900, got %v", again.XGlobal)
		}
	})

	t.Run("block in unknown space is invalid", func(t *testing.T) {
		assertErrorIs(t, repo.CreateBlock(ctx, domain.NewBlock("b2", "ghost", 0, 0)), domain.ErrInvalid)
	})

	t.Run("contents", func(t *testing.T) {
		content := &domain.Content{ID: "c3", BlockID: "b1", Type: domain.ContentQuote, Body: "here be dragons"}
		assertNoError(t, repo.AddContent(ctx, content))
		assertEqual(t, 2, content.Order)

		assertNoError(t, repo.DeleteContent(ctx, "b1", "c1"))
		assertErrorIs(t, repo.DeleteContent(ctx, "b1", "c1"), domain.ErrNotFound)

		again, err := repo.GetBlock(ctx, "b1")
		assertNoError(t, err)
		assertEqual(t, 2, len(again.Contents))
		assertEqual(t, "c2", again.Contents[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		assertNoError(t, repo.DeleteBlock(ctx, "b1"))
		_, err := repo.GetBlock(ctx, "b1")
		assertErrorIs(t, err, domain.ErrNotFound)
		assertErrorIs(t, repo.DeleteBlock(ctx, "b1"), domain.ErrNotFound)
	})
}

func TestListBlocks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSpace(t, repo, "s1", "a", "b")
	seedSpace(t, repo, "s2", "c")
	assertNoError(t, repo.AddContent(ctx, &domain.Content{ID: "c1", BlockID: "b", Type: domain.ContentText, Body: "x"}))

	blocks, err := repo.ListBlocks(ctx, "s1")
	assertNoError(t, err)
	assertEqual(t, 2, len(blocks))
	for _, b := range blocks {
		if b.SpaceID != "s1" {
			t.Errorf("block %s belongs to %s", b.ID, b.SpaceID)
		}
		if b.ID == "b" && len(b.Contents) != 1 {
			t.Errorf("expected block b to carry its content, got %d", len(b.Contents))
		}
	}

	all, err := repo.ListAllBlocks(ctx)
	assertNoError(t, err)
	assertEqual(t, 3, len(all))
}

// ============================================================================
// Link Tests
// ============================================================================

func TestLinkCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSpace(t, repo, "s1", "a", "b")

	link := domain.NewLink("l1", "a", "b")
	link.SpaceID = "s1"
	link.Type = domain.LinkLogical
	assertNoError(t, repo.CreateLink(ctx, link))

	got, err := repo.GetLink(ctx, "l1")
	assertNoError(t, err)
	assertEqual(t, domain.LinkLogical, got.Type)
	assertEqual(t, 1.0, got.Weight)
	assertEqual(t, domain.ValidationValidated, got.Validation)
	assertEqual(t, "s1", got.SpaceID)

	got.Validation = domain.ValidationRejected
	got.Weight = 0.3
	assertNoError(t, repo.UpdateLink(ctx, got))

	again, err := repo.GetLink(ctx, "l1")
	assertNoError(t, err)
	assertEqual(t, domain.ValidationRejected, again.Validation)
	assertEqual(t, 0.3, again.Weight)

	assertErrorIs(t, repo.CreateLink(ctx, domain.NewLink("l2", "a", "ghost")), domain.ErrInvalid)

	assertNoError(t, repo.DeleteLink(ctx, "l1"))
	_, err = repo.GetLink(ctx, "l1")
	assertErrorIs(t, err, domain.ErrNotFound)
	assertErrorIs(t, repo.UpdateLink(ctx, got), domain.ErrNotFound)
}

func TestListLinks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSpace(t, repo, "s1", "a", "b")
	seedSpace(t, repo, "s2", "c", "d")

	assertNoError(t, repo.CreateLink(ctx, domain.NewLink("intra", "a", "b")))
	assertNoError(t, repo.CreateLink(ctx, domain.NewLink("bridge", "b", "c")))
	assertNoError(t, repo.CreateLink(ctx, domain.NewLink("other", "c", "d")))
	rejected := domain.NewLink("rejected", "a", "d")
	rejected.Validation = domain.ValidationRejected
	assertNoError(t, repo.CreateLink(ctx, rejected))

	t.Run("space links include bridges", func(t *testing.T) {
		links, err := repo.ListLinks(ctx, "s1")
		assertNoError(t, err)
		ids := map[string]bool{}
		for _, l := range links {
			ids[l.ID] = true
		}
		assertEqual(t, map[string]bool{"intra": true, "bridge": true, "rejected": true}, ids)
	})

	t.Run("active links skip rejected", func(t *testing.T) {
		links, err := repo.ListActiveLinks(ctx)
		assertNoError(t, err)
		assertEqual(t, 3, len(links))
		for _, l := range links {
			if l.Rejected() {
				t.Errorf("rejected link %s returned", l.ID)
			}
		}
	})
}

// ============================================================================
// Position Tests
// ============================================================================

func TestSavePositions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSpace(t, repo, "s1", "a", "b")

	local := []domain.BlockPosition{{BlockID: "a", X: 111.1, Y: 222.2}, {BlockID: "b", X: 333.3, Y: 444.4}}
	assertNoError(t, repo.SavePositions(ctx, domain.ScopeLocal, local))

	a, err := repo.GetBlock(ctx, "a")
	assertNoError(t, err)
	assertEqual(t, 111.1, a.X)
	assertEqual(t, 222.2, a.Y)
	if a.XGlobal != nil {
		t.Error("local save must not touch global coordinates")
	}

	assertNoError(t, repo.SavePositions(ctx, domain.ScopeGlobal, []domain.BlockPosition{{BlockID: "a", X: 5, Y: 6}}))
	a, err = repo.GetBlock(ctx, "a")
	assertNoError(t, err)
	assertEqual(t, 111.1, a.X)
	if a.XGlobal == nil || *a.XGlobal != 5 || *a.YGlobal != 6 {
		t.Errorf("expected global (5, 6), got (%v, %v)", a.XGlobal, a.YGlobal)
	}

	assertErrorIs(t, repo.SavePositions(ctx, domain.Scope("radial"), local), domain.ErrInvalid)
}

// ============================================================================
// Global Graph Tests
// ============================================================================

func TestGlobalGraph(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedSpace(t, repo, "s1", "a", "b")
	seedSpace(t, repo, "s2", "c")

	assertNoError(t, repo.CreateLink(ctx, domain.NewLink("intra", "a", "b")))
	bridge := domain.NewLink("bridge", "b", "c")
	bridge.Type = domain.LinkTension
	bridge.Weight = 0.4
	assertNoError(t, repo.CreateLink(ctx, bridge))

	t.Run("unfiltered", func(t *testing.T) {
		graph, err := repo.GlobalGraph(ctx, domain.GraphFilter{})
		assertNoError(t, err)
		assertEqual(t, 2, len(graph.Spaces))
		assertEqual(t, 3, len(graph.Blocks))
		assertEqual(t, 2, len(graph.Links))

		for _, l := range graph.Links {
			assertEqual(t, l.ID == "bridge", l.InterSpace)
		}
		// never laid out globally, so global falls back to local
		for _, b := range graph.Blocks {
			assertEqual(t, b.X, b.GX)
		}
	})

	t.Run("inter-space only", func(t *testing.T) {
		graph, err := repo.GlobalGraph(ctx, domain.GraphFilter{InterSpaceOnly: true})
		assertNoError(t, err)
		assertEqual(t, 1, len(graph.Links))
		assertEqual(t, "bridge", graph.Links[0].ID)
	})

	t.Run("space filter drops dangling links", func(t *testing.T) {
		graph, err := repo.GlobalGraph(ctx, domain.GraphFilter{SpaceIDs: []string{"s1"}})
		assertNoError(t, err)
		assertEqual(t, 1, len(graph.Spaces))
		assertEqual(t, 2, len(graph.Blocks))
		assertEqual(t, 1, len(graph.Links))
		assertEqual(t, "intra", graph.Links[0].ID)
	})

	t.Run("weight floor", func(t *testing.T) {
		graph, err := repo.GlobalGraph(ctx, domain.GraphFilter{MinWeight: 0.5})
		assertNoError(t, err)
		assertEqual(t, 1, len(graph.Links))
		assertEqual(t, "intra", graph.Links[0].ID)
	})
}

// ============================================================================
// Import / Export Tests
// ============================================================================

func TestFragmentRoundTrip(t *testing.T) {
	src := newTestRepo(t)
	ctx := context.Background()
	seedSpace(t, src, "s1", "a", "b")
	assertNoError(t, src.AddContent(ctx, &domain.Content{ID: "c1", BlockID: "a", Type: domain.ContentNote, Body: "n"}))
	assertNoError(t, src.CreateLink(ctx, domain.NewLink("l1", "a", "b")))

	fragment, err := src.ExportFragment(ctx, "s1")
	assertNoError(t, err)
	assertEqual(t, "s1", fragment.Space.ID)
	assertEqual(t, 2, len(fragment.Blocks))
	assertEqual(t, 1, len(fragment.Links))

	dst := newTestRepo(t)
	assertNoError(t, dst.ImportFragment(ctx, fragment))

	a, err := dst.GetBlock(ctx, "a")
	assertNoError(t, err)
	assertEqual(t, "Block a", a.Title)
	assertEqual(t, 1, len(a.Contents))

	// importing again replaces instead of duplicating
	assertNoError(t, dst.ImportFragment(ctx, fragment))
	a, err = dst.GetBlock(ctx, "a")
	assertNoError(t, err)
	assertEqual(t, 1, len(a.Contents))

	_, err = src.ExportFragment(ctx, "missing")
	assertErrorIs(t, err, domain.ErrNotFound)
}
