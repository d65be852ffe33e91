package tray

import (
	"launchtray/model"
)

const (
	// MaxHotbar is the hotbar capacity.
	MaxHotbar = 5

	rowSize     = 4
	maxRows     = 4
	rowHeightPx = 96
	listPadPx   = 10
)

// State is the authoritative ordered collection of visible entries plus the
// projection currently handed to the renderer. It is not safe for concurrent
// use; Tray serializes access.
type State struct {
	entries  []model.AppEntry
	filtered []model.AppEntry
	// isFiltered distinguishes an empty filter result from no filter.
	isFiltered bool
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}

// Append merges one batch. Hidden entries are dropped, the rest keep their
// batch order after everything appended before.
func (s *State) Append(entries []model.AppEntry) {
	s.entries = append(s.entries, model.Visible(entries)...)
}

// ReplaceFiltered sets the projection without touching the collection.
func (s *State) ReplaceFiltered(view []model.AppEntry) {
	s.filtered = append([]model.AppEntry(nil), view...)
	s.isFiltered = true
}

// ClearFilter drops the projection so View returns the whole collection.
func (s *State) ClearFilter() {
	s.filtered = nil
	s.isFiltered = false
}

// Filtered reports whether a projection is active.
func (s *State) Filtered() bool {
	return s.isFiltered
}

// View returns the projection, or the whole collection when unfiltered.
func (s *State) View() []model.AppEntry {
	if s.isFiltered {
		return append([]model.AppEntry(nil), s.filtered...)
	}
	return s.Entries()
}

// Entries returns a copy of the collection.
func (s *State) Entries() []model.AppEntry {
	return append([]model.AppEntry(nil), s.entries...)
}

// Len returns the collection size.
func (s *State) Len() int {
	return len(s.entries)
}

// Lookup returns the first entry with id.
func (s *State) Lookup(id string) (model.AppEntry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.AppEntry{}, false
}

// Hide removes every entry with id from the collection and the projection.
// It reports whether anything was removed.
func (s *State) Hide(id string) bool {
	n := len(s.entries)
	s.entries = without(s.entries, id)
	s.filtered = without(s.filtered, id)
	return len(s.entries) != n
}

// Rows is the number of list rows to size for: ceil(n/4), capped at 4.
func (s *State) Rows() int {
	return min((len(s.entries)+rowSize-1)/rowSize, maxRows)
}

// ListHeight is the list container height in pixels.
func (s *State) ListHeight() int {
	return s.Rows()*rowHeightPx + listPadPx
}

func without(entries []model.AppEntry, id string) []model.AppEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
