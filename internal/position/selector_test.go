package position

import (
	"errors"
	"testing"
)

func addrs(list ...string) []Snapshot {
	out := make([]Snapshot, len(list))
	for i, a := range list {
		out[i] = Snapshot{ID: int64(i + 1), PositionAddress: a}
	}
	return out
}

func TestSelectorDefaultsToFirst(t *testing.T) {
	var s Selector
	s.Update(addrs("pos2", "pos1", "pos2"))

	if s.Selected() != "pos2" {
		t.Errorf("Selected = %q, want %q", s.Selected(), "pos2")
	}
	if s.Manual() {
		t.Error("Manual = true, want false")
	}
}

func TestSelectorKeepsPresentSelection(t *testing.T) {
	var s Selector
	s.Update(addrs("pos1", "pos2"))
	if err := s.Select("pos2"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	s.Update(addrs("pos3", "pos2", "pos1"))

	if s.Selected() != "pos2" {
		t.Errorf("Selected = %q, want %q", s.Selected(), "pos2")
	}
	if !s.Manual() {
		t.Error("manual selection lost across refresh")
	}
}

func TestSelectorFallsBackWhenRemoved(t *testing.T) {
	var s Selector
	s.Update(addrs("pos1", "pos2"))
	if err := s.Select("pos2"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	s.Update(addrs("pos3", "pos1"))

	if s.Selected() != "pos3" {
		t.Errorf("Selected = %q, want %q", s.Selected(), "pos3")
	}
	if s.Manual() {
		t.Error("Manual = true after fallback, want false")
	}
}

func TestSelectorEmptySet(t *testing.T) {
	var s Selector
	s.Update(addrs("pos1"))
	s.Update(nil)

	if s.Selected() != "" {
		t.Errorf("Selected = %q, want empty", s.Selected())
	}
	if len(s.Positions()) != 0 {
		t.Errorf("Positions = %v, want empty", s.Positions())
	}
}

func TestSelectorRejectsUnknown(t *testing.T) {
	var s Selector
	if err := s.Select("pos1"); !errors.Is(err, ErrUnknownPosition) {
		t.Errorf("Select on empty set: err = %v, want ErrUnknownPosition", err)
	}

	s.Update(addrs("pos1"))
	if err := s.Select("nope"); !errors.Is(err, ErrUnknownPosition) {
		t.Errorf("Select unknown: err = %v, want ErrUnknownPosition", err)
	}
	if s.Selected() != "pos1" {
		t.Errorf("Selected = %q, want %q", s.Selected(), "pos1")
	}
}

func TestSelectorPositionsIsCopy(t *testing.T) {
	var s Selector
	s.Update(addrs("pos1", "pos2"))

	p := s.Positions()
	p[0] = "mutated"

	if s.Positions()[0] != "pos1" {
		t.Error("Positions returned internal slice")
	}
}
