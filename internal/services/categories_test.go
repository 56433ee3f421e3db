package services

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestCategoryMirrorSeedRows(t *testing.T) {
	m := NewCategoryMirror(zerolog.Nop(), nil)

	for _, name := range []string{"work", "personal", "other"} {
		id, ok := m.IDForName(name)
		if !ok {
			t.Fatalf("IDForName(%q) not found in seed rows", name)
		}

		back, ok := m.NameForID(id)
		if !ok {
			t.Fatalf("NameForID(%d) not found in seed rows", id)
		}
		if back != name {
			t.Fatalf("round trip %q -> %d -> %q", name, id, back)
		}
	}
}

func TestCategoryMirrorUnknown(t *testing.T) {
	m := NewCategoryMirror(zerolog.Nop(), nil)

	if _, ok := m.IDForName("errands"); ok {
		t.Error("IDForName accepted an unknown category name")
	}
}
