package normalize

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPlanRewritesNonConformingNames(t *testing.T) {
	names := []string{"Castle Build.PNG", "redstone-Elevator.jpg", "IMG 0042.jpeg"}

	mappings, err := Plan(names)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if len(mappings) != len(names) {
		t.Fatalf("expected %d mappings, got %d", len(names), len(mappings))
	}

	for _, m := range mappings {
		if !IsCanonical(m.Canonical) {
			t.Errorf("canonical name %q does not match the canonical pattern", m.Canonical)
		}
	}
}

func TestPlanIdempotence(t *testing.T) {
	names := []string{"Castle Build.PNG", "nether_fortress.jpg", "0009_spawn_area.png"}

	first, err := Plan(names)
	if err != nil {
		t.Fatalf("first Plan failed: %v", err)
	}

	canonical := make([]string, len(first))
	for i, m := range first {
		canonical[i] = m.Canonical
	}

	second, err := Plan(canonical)
	if err != nil {
		t.Fatalf("second Plan failed: %v", err)
	}

	for _, m := range second {
		if m.Renamed() {
			t.Errorf("second pass renamed %q -> %q, expected no-op", m.Original, m.Canonical)
		}
	}

	got := make([]string, len(second))
	for i, m := range second {
		got[i] = m.Canonical
	}
	if !reflect.DeepEqual(got, canonical) {
		t.Errorf("second pass changed order or names:\n got %v\nwant %v", got, canonical)
	}
}

func TestPlanUniqueness(t *testing.T) {
	// Deliberate duplicates across case variants all slug to the same stem.
	names := []string{"Castle.PNG", "castle.png", "CASTLE.Png", "ca stle.png"}

	mappings, err := Plan(names)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	seen := make(map[string]string)
	for _, m := range mappings {
		if prev, dup := seen[m.Canonical]; dup {
			t.Errorf("canonical collision: %q and %q both map to %q", prev, m.Original, m.Canonical)
		}
		seen[m.Canonical] = m.Original
	}
	if len(seen) != len(names) {
		t.Errorf("expected %d distinct canonical names, got %d", len(names), len(seen))
	}
}

func TestPlanDeterministic(t *testing.T) {
	names := []string{"b.png", "A.jpg", "castle build.png", "0002_keep.gif"}
	shuffled := []string{"0002_keep.gif", "castle build.png", "A.jpg", "b.png"}

	first, err := Plan(names)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	second, err := Plan(shuffled)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Plan is sensitive to input ordering:\n first %v\nsecond %v", first, second)
	}
}

func TestPlanReservesExistingSequenceNumbers(t *testing.T) {
	names := []string{"0001_spawn.png", "new arrival.jpg"}

	mappings, err := Plan(names)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	for _, m := range mappings {
		switch m.Original {
		case "0001_spawn.png":
			if m.Renamed() {
				t.Errorf("canonical name was rewritten to %q", m.Canonical)
			}
		case "new arrival.jpg":
			if m.Canonical != "0002_new_arrival.jpg" {
				t.Errorf("expected new arrival.jpg -> 0002_new_arrival.jpg, got %q", m.Canonical)
			}
		}
	}
}

func TestPlanNoImages(t *testing.T) {
	tests := []struct {
		name  string
		input []string
	}{
		{"Empty input", nil},
		{"Only unrecognized extensions", []string{"notes.txt", "video.mp4", "archive.zip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Plan(tt.input); err != ErrNoImages {
				t.Errorf("Plan(%v) error = %v, want ErrNoImages", tt.input, err)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		stem     string
		expected string
	}{
		{"Lowercases", "CastleBuild", "castlebuild"},
		{"Spaces to underscores", "castle build 2024", "castle_build_2024"},
		{"Strips legacy prefix", "minecraft_castle", "castle"},
		{"Strips doubled legacy prefix", "minecraft_minecraft_castle", "castle"},
		{"Strips mc prefix", "mc_spawn", "spawn"},
		{"Strips leading sequence key", "0042_old_name", "old_name"},
		{"Collapses illegal runs", "nether!!fortress??tour", "nether_fortress_tour"},
		{"Trims separators", "_edge_case_", "edge_case"},
		{"Empty stem falls back", "!!!", "image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.stem); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.stem, got, tt.expected)
			}
		})
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()

	files := []string{"Castle Build.PNG", "0003_keep.jpg"}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("creating fixture: %v", err)
		}
	}

	mappings, err := Plan(files)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if err := Apply(dir, mappings); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for _, m := range mappings {
		if _, err := os.Stat(filepath.Join(dir, m.Canonical)); err != nil {
			t.Errorf("expected %s to exist after Apply: %v", m.Canonical, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "Castle Build.PNG")); !os.IsNotExist(err) {
		t.Errorf("original non-canonical file still present after Apply")
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.png", "b.TXT", "c.JPG"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("creating fixture: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatalf("creating fixture dir: %v", err)
	}

	names, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	want := []string{"a.png", "c.JPG"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListImages = %v, want %v", names, want)
	}

	if _, err := ListImages(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
