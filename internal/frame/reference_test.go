package frame

import "testing"

func TestStoreSaveAndGet(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get(0); ok {
		t.Fatal("empty slot should report not-present")
	}
	rf := &ReferenceFrame{Width: 4, Height: 4}
	s.Save(2, rf)
	got, ok := s.Get(2)
	if !ok || got != rf {
		t.Fatal("expected slot 2 to return the saved frame")
	}
	if _, ok := s.Get(0); ok {
		t.Fatal("slot 0 should remain empty")
	}
}

func TestStoreSaveLFIndependentOfSaved(t *testing.T) {
	s := NewStore()
	rf := &ReferenceFrame{Width: 2, Height: 2}
	s.SaveLF(1, rf)
	if _, ok := s.Get(1); ok {
		t.Fatal("LF slot and saved-reference slot must be independent")
	}
	got, ok := s.GetLF(1)
	if !ok || got != rf {
		t.Fatal("expected LF slot 1 to return the saved frame")
	}
}

func TestExtraChannelNameFallback(t *testing.T) {
	if extraChannelName(0) != "A" {
		t.Fatalf("got %q, want A", extraChannelName(0))
	}
	if extraChannelName(99) != "EC" {
		t.Fatalf("got %q, want EC fallback", extraChannelName(99))
	}
}
