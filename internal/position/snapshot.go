package position

import "time"

// Snapshot is one stored observation of a Whirlpool position. Numeric
// fields stay as decimal text until derivation so no precision is lost on
// the wire.
type Snapshot struct {
	ID              int64     `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	PositionAddress string    `json:"position_address"`
	WhirlpoolPrice  string    `json:"whirlpool_price"`
	TokenAAmount    string    `json:"token_a_amount"`
	TokenBAmount    string    `json:"token_b_amount"`
	TokenAFees      string    `json:"token_a_fees"`
	TokenBFees      string    `json:"token_b_fees"`
}

// Addresses returns the distinct position addresses in order of first
// appearance.
func Addresses(snaps []Snapshot) []string {
	seen := make(map[string]struct{})
	addrs := make([]string, 0)
	for _, s := range snaps {
		if _, ok := seen[s.PositionAddress]; ok {
			continue
		}
		seen[s.PositionAddress] = struct{}{}
		addrs = append(addrs, s.PositionAddress)
	}
	return addrs
}

// Filter returns the snapshots belonging to addr, keeping their relative order.
func Filter(snaps []Snapshot, addr string) []Snapshot {
	out := make([]Snapshot, 0)
	for _, s := range snaps {
		if s.PositionAddress == addr {
			out = append(out, s)
		}
	}
	return out
}
