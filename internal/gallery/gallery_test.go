package gallery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"mc-gallery/internal/normalize"
)

func testRecord(canonical string) ImageRecord {
	return ImageRecord{
		OriginalName:  canonical,
		CanonicalName: canonical,
		Tags:          []string{},
		SourceRef:     "images/" + canonical,
	}
}

func TestAssembleOrdersByCanonicalName(t *testing.T) {
	mappings := []normalize.Mapping{
		{Original: "b.png", Canonical: "0002_b.png"},
		{Original: "a.png", Canonical: "0001_a.png"},
		{Original: "c.png", Canonical: "0003_c.png"},
	}
	records := map[string]ImageRecord{
		"0003_c.png": testRecord("0003_c.png"),
		"0001_a.png": testRecord("0001_a.png"),
		"0002_b.png": testRecord("0002_b.png"),
	}

	m, err := Assemble(mappings, records, time.Now())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if m.Count != 3 {
		t.Errorf("Count = %d, want 3", m.Count)
	}
	got := make([]string, len(m.Images))
	for i, r := range m.Images {
		got[i] = r.CanonicalName
	}
	want := []string{"0001_a.png", "0002_b.png", "0003_c.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("manifest order = %v, want %v", got, want)
	}
}

func TestAssembleMissingRecordIsStructural(t *testing.T) {
	mappings := []normalize.Mapping{
		{Original: "a.png", Canonical: "0001_a.png"},
		{Original: "b.png", Canonical: "0002_b.png"},
	}
	records := map[string]ImageRecord{
		"0001_a.png": testRecord("0001_a.png"),
	}

	_, err := Assemble(mappings, records, time.Now())
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("Assemble error = %v, want StructuralError", err)
	}
	if structural.CanonicalName != "0002_b.png" {
		t.Errorf("StructuralError names %q, want 0002_b.png", structural.CanonicalName)
	}
}

func TestAssembleSurplusRecordIsStructural(t *testing.T) {
	mappings := []normalize.Mapping{
		{Original: "a.png", Canonical: "0001_a.png"},
	}
	records := map[string]ImageRecord{
		"0001_a.png": testRecord("0001_a.png"),
		"0099_x.png": testRecord("0099_x.png"),
		"0098_y.png": testRecord("0098_y.png"),
	}

	_, err := Assemble(mappings, records, time.Now())
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("Assemble error = %v, want StructuralError", err)
	}
}

func TestAssembleMissingThumbnailIsNotStructural(t *testing.T) {
	mappings := []normalize.Mapping{
		{Original: "a.png", Canonical: "0001_a.png"},
	}
	rec := testRecord("0001_a.png")
	rec.ThumbnailRef = "" // thumbnail generation failed for this one
	records := map[string]ImageRecord{"0001_a.png": rec}

	if _, err := Assemble(mappings, records, time.Now()); err != nil {
		t.Errorf("Assemble with missing thumbnail failed: %v", err)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		pageSize  int
		wantPages []int // expected records per page
	}{
		{
			name:      "45 records at 20 per page",
			n:         45,
			pageSize:  20,
			wantPages: []int{20, 20, 5},
		},
		{
			name:      "Exact multiple",
			n:         40,
			pageSize:  20,
			wantPages: []int{20, 20},
		},
		{
			name:      "Single short page",
			n:         7,
			pageSize:  20,
			wantPages: []int{7},
		},
		{
			name:      "Page size one",
			n:         3,
			pageSize:  1,
			wantPages: []int{1, 1, 1},
		},
		{
			name:      "Non-positive page size uses default",
			n:         25,
			pageSize:  0,
			wantPages: []int{20, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{Count: tt.n}
			for i := 0; i < tt.n; i++ {
				m.Images = append(m.Images, testRecord(fmt.Sprintf("%04d_img.png", i+1)))
			}

			pages := Paginate(m, tt.pageSize)
			if len(pages) != len(tt.wantPages) {
				t.Fatalf("got %d pages, want %d", len(pages), len(tt.wantPages))
			}

			seen := make(map[string]int)
			for i, page := range pages {
				if page.Index != i+1 {
					t.Errorf("page %d has Index %d", i, page.Index)
				}
				if page.TotalPages != len(tt.wantPages) {
					t.Errorf("page %d has TotalPages %d, want %d", page.Index, page.TotalPages, len(tt.wantPages))
				}
				if len(page.Records) != tt.wantPages[i] {
					t.Errorf("page %d has %d records, want %d", page.Index, len(page.Records), tt.wantPages[i])
				}
				for _, r := range page.Records {
					seen[r.CanonicalName]++
				}
			}

			// Union of all pages equals the manifest, each record exactly once.
			if len(seen) != tt.n {
				t.Errorf("pages cover %d distinct records, want %d", len(seen), tt.n)
			}
			for name, count := range seen {
				if count != 1 {
					t.Errorf("record %s appears %d times across pages", name, count)
				}
			}
		})
	}
}

func TestPageFilename(t *testing.T) {
	tests := []struct {
		index    int
		expected string
	}{
		{1, "index.html"},
		{2, "index2.html"},
		{10, "index10.html"},
	}

	for _, tt := range tests {
		p := Page{Index: tt.index}
		if got := p.Filename(); got != tt.expected {
			t.Errorf("Page{Index: %d}.Filename() = %q, want %q", tt.index, got, tt.expected)
		}
	}
}

func TestManifestSaveDeterministic(t *testing.T) {
	dir := t.TempDir()

	build := func() *Manifest {
		rec := testRecord("0001_castle_build.png")
		rec.Tags = []string{"build", "castle"}
		rec.ThumbnailRef = "thumbnails/0001_castle_build.webp"
		return &Manifest{
			GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Count:       1,
			Images:      []ImageRecord{rec},
		}
	}

	pathA := filepath.Join(dir, "a.json")
	pathB := filepath.Join(dir, "b.json")
	if err := build().Save(pathA); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := build().Save(pathB); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	a, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("identical manifests serialized to different bytes")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFilename)

	rec := testRecord("0001_nether_event.png")
	rec.Tags = []string{"event", "nether"}
	m := &Manifest{
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Count:       1,
		Images:      []ImageRecord{rec},
	}

	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, m)
	}
}

func TestParseTakenAt(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"0001_castle_build_2024_01_15.png", "2024-01-15"},
		{"0002_spawn_area.png", ""},
		{"2024_01_15_dawn.png", "2024-01-15"},
		{"0001_event_1999_12_31.png", ""},
	}

	for _, tt := range tests {
		if got := ParseTakenAt(tt.name); got != tt.expected {
			t.Errorf("ParseTakenAt(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}
