package position

import "errors"

// ErrUnknownPosition is returned when selecting an address that is not in
// the current position set.
var ErrUnknownPosition = errors.New("unknown position address")

// Selector tracks which position is selected and keeps the choice
// consistent with the live position set. The zero value is ready to use.
type Selector struct {
	positions []string
	selected  string
	manual    bool
}

// Update rebuilds the position set from snaps. A selection that is still
// present is kept; otherwise the first address is selected.
func (s *Selector) Update(snaps []Snapshot) {
	s.positions = Addresses(snaps)
	if s.selected != "" && contains(s.positions, s.selected) {
		return
	}
	s.manual = false
	if len(s.positions) == 0 {
		s.selected = ""
		return
	}
	s.selected = s.positions[0]
}

// Select makes addr the selected position. It fails if addr is not in the
// current set.
func (s *Selector) Select(addr string) error {
	if !contains(s.positions, addr) {
		return ErrUnknownPosition
	}
	s.selected = addr
	s.manual = true
	return nil
}

// Selected returns the selected address, or "" when the set is empty.
func (s *Selector) Selected() string { return s.selected }

// Manual reports whether the current selection was made explicitly.
func (s *Selector) Manual() bool { return s.manual }

// Positions returns a copy of the current position set.
func (s *Selector) Positions() []string {
	out := make([]string, len(s.positions))
	copy(out, s.positions)
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
