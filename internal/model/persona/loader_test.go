package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "b_second.yaml", `
id: second
name: Second
learning_style: cautious
traits:
  confidence_bias: 0.4
  participation_threshold: 0.3
`)
	writeProfile(t, dir, "a_first.yaml", `
id: first
name: First
learning_style: eager
description: Always ready.
traits:
  confidence_bias: 0.9
  participation_threshold: 0.8
strengths:
  - quick recall
voice_id: voice_first
`)

	personas, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir returned error: %v", err)
	}

	if len(personas) != 2 {
		t.Fatalf("expected 2 personas, got %d", len(personas))
	}
	// File name order is the canonical roster order.
	if personas[0].ID != "first" || personas[1].ID != "second" {
		t.Errorf("unexpected order: %s, %s", personas[0].ID, personas[1].ID)
	}
	if personas[0].Traits.ConfidenceBias != 0.9 {
		t.Errorf("unexpected confidence bias: %v", personas[0].Traits.ConfidenceBias)
	}
	if personas[0].VoiceID != "voice_first" {
		t.Errorf("unexpected voice id: %q", personas[0].VoiceID)
	}
}

func TestLoadDirRejectsMissingID(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "broken.yaml", "name: Nameless\n")

	if _, err := LoadDir(dir); err == nil {
		t.Fatal("expected error for profile without id")
	}
}

func TestLoadDirRejectsEmptyDir(t *testing.T) {
	if _, err := LoadDir(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without profiles")
	}
}

func TestSeedRoster(t *testing.T) {
	seed := Seed()
	if len(seed) == 0 {
		t.Fatal("seed roster must not be empty")
	}

	seen := make(map[string]bool, len(seed))
	for _, p := range seed {
		if p.ID == "" || p.Name == "" {
			t.Errorf("seed persona missing id or name: %+v", p)
		}
		if seen[p.ID] {
			t.Errorf("duplicate persona id %q", p.ID)
		}
		seen[p.ID] = true
		if p.VoiceID == "" {
			t.Errorf("seed persona %s missing voice", p.ID)
		}
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore([]Persona{{ID: "alpha", Name: "Alpha"}})

	list := store.List()
	list[0].Name = "Mutated"

	again := store.List()
	if again[0].Name != "Alpha" {
		t.Error("mutating a listed roster must not affect the store")
	}

	if _, ok := store.FindByID("alpha"); !ok {
		t.Error("expected to find alpha")
	}
	if _, ok := store.FindByID("missing"); ok {
		t.Error("unexpected hit for missing id")
	}
}
