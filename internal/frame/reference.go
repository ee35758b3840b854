package frame

import "github.com/jxl-go/jxl/internal/render"

// ReferenceFrame is one saved full-resolution frame buffer plus the LF
// (downsampled) triplet a later frame can reference (spec §3
// "save_as_reference slot ∈ [0,3]", §4.3 "Maintains up-to-4 saved
// reference frames and up-to-4 LF-downsampled frames").
type ReferenceFrame struct {
	Buffer *render.FrameBuffer
	Width  int
	Height int
}

// Store holds the decoder's 4 saved-reference slots and 4 LF-frame
// slots across frame boundaries, with single-writer semantics: each
// slot is either empty or owned by exactly the frame that last saved
// it (spec §4.3's reference-frame lifecycle).
type Store struct {
	Saved   [4]*ReferenceFrame
	LFFrame [4]*ReferenceFrame
}

// NewStore builds an empty reference-frame store.
func NewStore() *Store {
	return &Store{}
}

// Save records buf into the given save_as_reference slot.
func (s *Store) Save(slot int, rf *ReferenceFrame) {
	s.Saved[slot] = rf
}

// SaveLF records buf into the given lf_level slot.
func (s *Store) SaveLF(slot int, rf *ReferenceFrame) {
	s.LFFrame[slot] = rf
}

// Get returns the frame saved in slot, and whether one is present
// (spec's UnsavedReference failure: referencing an empty slot).
func (s *Store) Get(slot int) (*ReferenceFrame, bool) {
	rf := s.Saved[slot]
	return rf, rf != nil
}

// GetLF returns the LF-downsampled frame saved in slot.
func (s *Store) GetLF(slot int) (*ReferenceFrame, bool) {
	rf := s.LFFrame[slot]
	return rf, rf != nil
}
