package recognize

import (
	"testing"

	"github.com/balasai14/multi-face-reg/internal/database"
)

func indexedIdentity(key, name string, value float32) database.Identity {
	descriptor := make([]float32, 128)
	for i := range descriptor {
		descriptor[i] = value
	}
	return database.Identity{IdentityKey: key, DisplayName: name, Descriptor: descriptor}
}

func TestIdentify_Empty(t *testing.T) {
	idx := NewIndex(0.6)

	candidates, err := idx.Identify(make([]float32, 128), 5)
	if err != nil {
		t.Fatalf("Identify error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates from empty index, got %d", len(candidates))
	}
}

func TestIdentify_NearestFirst(t *testing.T) {
	idx := NewIndex(10.0) // wide threshold so ordering is observable

	if err := idx.Rebuild([]database.Identity{
		indexedIdentity("R100", "Alice", 0.10),
		indexedIdentity("R200", "Bob", 0.20),
		indexedIdentity("R300", "Carol", 0.50),
	}); err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}
	if idx.Size() != 3 {
		t.Fatalf("expected 3 indexed identities, got %d", idx.Size())
	}

	query := indexedIdentity("", "", 0.11).Descriptor
	candidates, err := idx.Identify(query, 3)
	if err != nil {
		t.Fatalf("Identify error: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("expected candidates")
	}
	if candidates[0].IdentityKey != "R100" {
		t.Errorf("expected nearest candidate R100, got %s", candidates[0].IdentityKey)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Distance < candidates[i-1].Distance {
			t.Error("candidates are not ordered by distance")
		}
	}
}

func TestIdentify_ThresholdFilters(t *testing.T) {
	idx := NewIndex(0.6)

	if err := idx.Rebuild([]database.Identity{
		indexedIdentity("R100", "Alice", 0.1),
		indexedIdentity("R900", "Far", 0.9),
	}); err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}

	query := indexedIdentity("", "", 0.1).Descriptor
	candidates, err := idx.Identify(query, 5)
	if err != nil {
		t.Fatalf("Identify error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected only the near identity, got %d candidates", len(candidates))
	}
	if candidates[0].IdentityKey != "R100" {
		t.Errorf("expected R100, got %s", candidates[0].IdentityKey)
	}
	if candidates[0].Distance != 0 {
		t.Errorf("expected zero distance for identical descriptor, got %f", candidates[0].Distance)
	}
}

func TestAdd_Incremental(t *testing.T) {
	idx := NewIndex(0.6)

	identity := indexedIdentity("R100", "Alice", 0.1)
	if err := idx.Add(&identity); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("expected size 1, got %d", idx.Size())
	}

	candidates, err := idx.Identify(identity.Descriptor, 1)
	if err != nil {
		t.Fatalf("Identify error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].IdentityKey != "R100" {
		t.Errorf("expected to find R100, got %+v", candidates)
	}

	empty := database.Identity{IdentityKey: "R000"}
	if err := idx.Add(&empty); err == nil {
		t.Error("expected error adding identity without descriptor")
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jan Novák", "jan novak"},
		{"jan-novak", "jan novak"},
		{"  Jiří  ", "jiri"},
		{"ALICE", "alice"},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearchByName(t *testing.T) {
	idx := NewIndex(0.6)
	if err := idx.Rebuild([]database.Identity{
		indexedIdentity("R100", "Jan Novák", 0.1),
		indexedIdentity("R200", "Alice Brown", 0.2),
	}); err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}

	matches := idx.SearchByName("jan-novak")
	if len(matches) != 1 || matches[0].IdentityKey != "R100" {
		t.Errorf("expected R100 for diacritics-insensitive search, got %+v", matches)
	}

	if matches := idx.SearchByName(""); matches != nil {
		t.Errorf("expected nil for empty query, got %+v", matches)
	}
}
