package cache

import (
	"path/filepath"
	"testing"
)

func TestNeedsRegenerationTracksContent(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))
	content := []byte("<p>{{x}}</p>")

	if !c.NeedsRegeneration("app.html", content) {
		t.Fatalf("unseen file must need regeneration")
	}
	c.UpdateHash("app.html", content)
	if c.NeedsRegeneration("app.html", content) {
		t.Fatalf("unchanged content must not need regeneration")
	}
	if !c.NeedsRegeneration("app.html", []byte("<p>{{y}}</p>")) {
		t.Fatalf("changed content must need regeneration")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	c := New(path)
	c.UpdateHash("a.html", []byte("one"))
	c.UpdateHash("b.html", []byte("two"))
	if err := c.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.NeedsRegeneration("a.html", []byte("one")) {
		t.Errorf("a.html hash lost across save/load")
	}
	if !loaded.NeedsRegeneration("a.html", []byte("changed")) {
		t.Errorf("changed content must still regenerate after load")
	}
}

func TestLoadMissingFileIsEmptyCache(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing cache file must not error: %v", err)
	}
	if len(c.Hashes) != 0 {
		t.Errorf("expected empty cache")
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache.json"))
	c.UpdateHash("a.html", []byte("one"))
	c.Remove("a.html")
	if !c.NeedsRegeneration("a.html", []byte("one")) {
		t.Errorf("removed entry must regenerate")
	}
	c.UpdateHash("a.html", []byte("one"))
	c.Clear()
	if len(c.Hashes) != 0 {
		t.Errorf("Clear must drop all entries")
	}
}
