package thumbcache

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := Open(context.Background(), filepath.Join(t.TempDir(), "thumbs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := idx.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return idx
}

func TestLookupMiss(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	name, err := idx.Lookup(ctx, "0001_castle.png", "abc123")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if name != "" {
		t.Errorf("Lookup on empty index = %q, want empty", name)
	}
}

func TestRecordAndLookup(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	if err := idx.Record(ctx, "0001_castle.png", "abc123", "0001_castle.webp"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	name, err := idx.Lookup(ctx, "0001_castle.png", "abc123")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if name != "0001_castle.webp" {
		t.Errorf("Lookup = %q, want %q", name, "0001_castle.webp")
	}
}

func TestLookupHashMismatch(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	if err := idx.Record(ctx, "0001_castle.png", "abc123", "0001_castle.webp"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	// Content changed since last run: the cached thumbnail must not be
	// reused.
	name, err := idx.Lookup(ctx, "0001_castle.png", "different")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if name != "" {
		t.Errorf("Lookup with stale hash = %q, want empty", name)
	}
}

func TestRecordReplaces(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	if err := idx.Record(ctx, "0001_castle.png", "old", "0001_castle.webp"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := idx.Record(ctx, "0001_castle.png", "new", "0001_castle.webp"); err != nil {
		t.Fatalf("second Record failed: %v", err)
	}

	name, err := idx.Lookup(ctx, "0001_castle.png", "new")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if name != "0001_castle.webp" {
		t.Errorf("Lookup after replace = %q, want %q", name, "0001_castle.webp")
	}
}

func TestPrune(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	entries := map[string]string{
		"0001_castle.png": "h1",
		"0002_spawn.png":  "h2",
		"0003_gone.png":   "h3",
	}
	for name, hash := range entries {
		if err := idx.Record(ctx, name, hash, name+".webp"); err != nil {
			t.Fatalf("Record(%s) failed: %v", name, err)
		}
	}

	pruned, err := idx.Prune(ctx, map[string]bool{
		"0001_castle.png": true,
		"0002_spawn.png":  true,
	})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("Prune removed %d entries, want 1", pruned)
	}

	name, err := idx.Lookup(ctx, "0003_gone.png", "h3")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if name != "" {
		t.Errorf("pruned entry still present: %q", name)
	}

	name, err = idx.Lookup(ctx, "0001_castle.png", "h1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if name == "" {
		t.Error("kept entry was pruned")
	}
}
