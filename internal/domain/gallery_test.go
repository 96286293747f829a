package domain

import (
	"errors"
	"testing"
)

func assertGalleryInvariants(t *testing.T, g *Gallery) {
	t.Helper()
	primaries := 0
	for i, img := range g.Images() {
		if img.DisplayOrder != i {
			t.Fatalf("entry %d has display order %d", i, img.DisplayOrder)
		}
		if img.IsPrimary {
			primaries++
		}
	}
	if g.Len() > 0 && primaries != 1 {
		t.Fatalf("gallery of %d entries has %d primaries", g.Len(), primaries)
	}
	if g.Len() == 0 && primaries != 0 {
		t.Fatalf("empty gallery reports %d primaries", primaries)
	}
}

func urls(g *Gallery) []string {
	var out []string
	for _, img := range g.Images() {
		out = append(out, img.URL)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGalleryAddFirstIsPrimary(t *testing.T) {
	g := NewGallery(nil, 3)
	if err := g.Add("https://cdn/a.webp"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g.Add("https://cdn/b.webp"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	imgs := g.Images()
	if !imgs[0].IsPrimary || imgs[1].IsPrimary {
		t.Fatalf("only the first image should be primary: %+v", imgs)
	}
	if imgs[0].Persisted() || imgs[1].Persisted() {
		t.Fatal("added images must be pending")
	}
	assertGalleryInvariants(t, g)
}

func TestGalleryCapacityBoundary(t *testing.T) {
	g := NewGallery(nil, 3)
	for _, u := range []string{"a", "b", "c"} {
		if err := g.Add(u); err != nil {
			t.Fatalf("Add(%s): %v", u, err)
		}
	}

	err := g.Add("d")
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if capErr.Max != 3 {
		t.Errorf("Max = %d, want 3", capErr.Max)
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Error("CapacityError should also match ValidationError")
	}
	if g.Len() != 3 {
		t.Errorf("length changed to %d", g.Len())
	}
}

func TestGalleryAddRejectsBlankURL(t *testing.T) {
	g := NewGallery(nil, 3)
	var valErr *ValidationError
	if err := g.Add("   "); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if g.Len() != 0 {
		t.Fatal("blank url must not be added")
	}
}

func TestGalleryRemoveRepairsPrimary(t *testing.T) {
	g := NewGallery([]GalleryImage{
		{ID: 1, URL: "A", DisplayOrder: 0, IsPrimary: true},
		{ID: 2, URL: "B", DisplayOrder: 1},
		{ID: 3, URL: "C", DisplayOrder: 2},
	}, 3)

	if err := g.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	imgs := g.Images()
	if !equalStrings(urls(g), []string{"B", "C"}) {
		t.Fatalf("urls = %v", urls(g))
	}
	if !imgs[0].IsPrimary || imgs[1].IsPrimary {
		t.Fatalf("B should be primary: %+v", imgs)
	}
	if imgs[0].DisplayOrder != 0 || imgs[1].DisplayOrder != 1 {
		t.Fatalf("orders = %d,%d", imgs[0].DisplayOrder, imgs[1].DisplayOrder)
	}
}

func TestGalleryRemoveNonPrimaryKeepsPrimary(t *testing.T) {
	g := NewGallery([]GalleryImage{
		{ID: 1, URL: "A", DisplayOrder: 0},
		{ID: 2, URL: "B", DisplayOrder: 1, IsPrimary: true},
		{ID: 3, URL: "C", DisplayOrder: 2},
	}, 3)

	if err := g.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	idx, ok := g.Primary()
	if !ok || g.Images()[idx].URL != "B" {
		t.Fatalf("B should stay primary, got index %d", idx)
	}
	assertGalleryInvariants(t, g)
}

func TestGalleryRemoveLastLeavesNoPrimary(t *testing.T) {
	g := NewGallery(nil, 3)
	_ = g.Add("A")
	if err := g.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := g.Primary(); ok {
		t.Fatal("empty gallery must have no primary")
	}
}

func TestGalleryOutOfRange(t *testing.T) {
	g := NewGallery(nil, 3)
	_ = g.Add("A")
	ops := map[string]func(int) error{
		"Remove":     g.Remove,
		"SetPrimary": g.SetPrimary,
		"MoveUp":     g.MoveUp,
		"MoveDown":   g.MoveDown,
	}
	for name, op := range ops {
		for _, idx := range []int{-1, 1} {
			var valErr *ValidationError
			if err := op(idx); !errors.As(err, &valErr) {
				t.Errorf("%s(%d): expected ValidationError, got %v", name, idx, err)
			}
		}
	}
	if g.Len() != 1 {
		t.Fatal("out of range calls must not change the gallery")
	}
}

func TestGallerySetPrimaryIsTotal(t *testing.T) {
	g := NewGallery(nil, 3)
	_ = g.Add("A")
	_ = g.Add("B")
	_ = g.Add("C")

	if err := g.SetPrimary(2); err != nil {
		t.Fatalf("SetPrimary: %v", err)
	}
	if idx, _ := g.Primary(); idx != 2 {
		t.Fatalf("primary index = %d, want 2", idx)
	}
	assertGalleryInvariants(t, g)
}

func TestGalleryMoves(t *testing.T) {
	tests := []struct {
		name string
		op   func(g *Gallery) error
		want []string
	}{
		{"move up top is no-op", func(g *Gallery) error { return g.MoveUp(0) }, []string{"A", "B", "C"}},
		{"move down bottom is no-op", func(g *Gallery) error { return g.MoveDown(2) }, []string{"A", "B", "C"}},
		{"move up middle", func(g *Gallery) error { return g.MoveUp(1) }, []string{"B", "A", "C"}},
		{"move down first", func(g *Gallery) error { return g.MoveDown(0) }, []string{"B", "A", "C"}},
		{"move down middle", func(g *Gallery) error { return g.MoveDown(1) }, []string{"A", "C", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGallery(nil, 3)
			for _, u := range []string{"A", "B", "C"} {
				_ = g.Add(u)
			}
			if err := tt.op(g); err != nil {
				t.Fatalf("op: %v", err)
			}
			if got := urls(g); !equalStrings(got, tt.want) {
				t.Errorf("urls = %v, want %v", got, tt.want)
			}
			assertGalleryInvariants(t, g)
			// Primary follows the image, not the slot.
			idx, _ := g.Primary()
			if g.Images()[idx].URL != "A" {
				t.Errorf("primary moved off A to %s", g.Images()[idx].URL)
			}
		})
	}
}

func TestGalleryInvariantsUnderOperationSequence(t *testing.T) {
	g := NewGallery(nil, 3)
	steps := []func() error{
		func() error { return g.Add("A") },
		func() error { return g.Add("B") },
		func() error { return g.SetPrimary(1) },
		func() error { return g.Add("C") },
		func() error { return g.MoveUp(2) },
		func() error { return g.Remove(2) },
		func() error { return g.MoveDown(0) },
		func() error { return g.Remove(1) },
		func() error { return g.Add("D") },
		func() error { return g.SetPrimary(0) },
		func() error { return g.Remove(0) },
		func() error { return g.Remove(0) },
		func() error { return g.Add("E") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertGalleryInvariants(t, g)
	}
}

func TestNewGalleryNormalizesLegacyRows(t *testing.T) {
	g := NewGallery([]GalleryImage{
		{ID: 7, URL: "C", DisplayOrder: 9},
		{ID: 5, URL: "A", DisplayOrder: 1, IsPrimary: true},
		{ID: 6, URL: "B", DisplayOrder: 4, IsPrimary: true},
	}, 0)

	if g.Max() != DefaultMaxGalleryImages {
		t.Errorf("Max = %d, want default", g.Max())
	}
	if got := urls(g); !equalStrings(got, []string{"A", "B", "C"}) {
		t.Fatalf("urls = %v", got)
	}
	assertGalleryInvariants(t, g)
	if idx, _ := g.Primary(); idx != 0 {
		t.Errorf("first primary should win, got %d", idx)
	}

	none := NewGallery([]GalleryImage{{ID: 1, URL: "X", DisplayOrder: 0}}, 3)
	if idx, ok := none.Primary(); !ok || idx != 0 {
		t.Error("gallery without primary should promote index 0")
	}
}

func TestGalleryImagesIsACopy(t *testing.T) {
	g := NewGallery(nil, 3)
	_ = g.Add("A")
	imgs := g.Images()
	imgs[0].URL = "mutated"
	if g.Images()[0].URL != "A" {
		t.Fatal("Images must not expose internal state")
	}
}
