package dashboard

import (
	"slices"
	"time"

	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

// State is everything a presentation surface needs to draw the view.
type State struct {
	Status          Status                   `json:"state"`
	Loading         bool                     `json:"loading"`
	Error           *string                  `json:"error"`
	Positions       []string                 `json:"positions"`
	Selected        *string                  `json:"selected"`
	Pinned          bool                     `json:"pinned"`
	NoData          bool                     `json:"no_data"`
	Series          []position.Point         `json:"series"`
	Latest          *position.Point          `json:"latest"`
	Skipped         []position.SkippedRecord `json:"skipped"`
	RefreshedAt     *time.Time               `json:"refreshed_at"`
	RefreshInterval string                   `json:"refresh_interval"`
}

// State derives the presentation state from the held collection. Safe for
// concurrent use.
func (v *View) State() State {
	return v.state("")
}

// StateFor derives the presentation state as if addr were selected, leaving
// the view's own selection untouched. It returns ErrUnknownPosition when
// addr is not in the current position set.
func (v *View) StateFor(addr string) (State, error) {
	st := v.state(addr)
	if st.Selected == nil || *st.Selected != addr {
		return State{}, position.ErrUnknownPosition
	}
	return st, nil
}

// state builds the State. A non-empty override replaces the selection when
// it names a known position.
func (v *View) state(override string) State {
	v.mu.RLock()
	snaps := v.snaps
	status := v.status
	errMsg := v.errMsg
	positions := v.selector.Positions()
	selected := v.selector.Selected()
	pinned := v.selector.Manual()
	refreshedAt := v.refreshedAt
	v.mu.RUnlock()

	if override != "" {
		if !slices.Contains(positions, override) {
			selected = ""
		} else if override != selected {
			selected, pinned = override, true
		}
	}

	st := State{
		Status:          status,
		Loading:         status == StatusLoading,
		Positions:       positions,
		NoData:          len(positions) == 0,
		Series:          []position.Point{},
		Skipped:         []position.SkippedRecord{},
		RefreshInterval: v.interval.String(),
	}
	if errMsg != "" {
		st.Error = &errMsg
	}
	if !refreshedAt.IsZero() {
		st.RefreshedAt = &refreshedAt
	}
	if selected == "" {
		return st
	}

	st.Selected = &selected
	st.Pinned = pinned
	series := position.Derive(snaps, selected)
	st.Series = series.Points
	st.Skipped = series.Skipped
	if latest, ok := series.Latest(); ok {
		st.Latest = &latest
	}
	return st
}
