package model

import "strings"

// Round identifies a phase in the fixed game progression. The sequence is
// not contiguous (5.5 is the accusation phase), so rounds are an enumerated
// ordinal type with a lookup-table successor, never an arithmetic increment.
type Round string

const (
	RoundPending    Round = "pending" // lobby, game not started
	Round1          Round = "1"       // general introduction
	Round2          Round = "2"
	Round3          Round = "3"
	Round4          Round = "4"
	Round5          Round = "5"
	RoundAccusation Round = "5.5"
	RoundFinal      Round = "6" // final statements
	RoundEnd        Round = "7" // terminal
)

// roundOrder is the canonical progression. Successor lookups and ordering
// comparisons all go through this table.
var roundOrder = []Round{
	RoundPending,
	Round1,
	Round2,
	Round3,
	Round4,
	Round5,
	RoundAccusation,
	RoundFinal,
	RoundEnd,
}

// Rounds returns the full ordered progression.
func Rounds() []Round {
	out := make([]Round, len(roundOrder))
	copy(out, roundOrder)
	return out
}

// Valid reports whether r is one of the enumerated rounds.
func (r Round) Valid() bool {
	return r.Index() >= 0
}

// Index returns r's position in the progression, or -1 for unknown values.
func (r Round) Index() int {
	for i, round := range roundOrder {
		if round == r {
			return i
		}
	}
	return -1
}

// Next returns the successor round. ok is false at the terminal round and
// for values outside the progression.
func (r Round) Next() (Round, bool) {
	i := r.Index()
	if i < 0 || i >= len(roundOrder)-1 {
		return r, false
	}
	return roundOrder[i+1], true
}

// Terminal reports whether r is the end phase.
func (r Round) Terminal() bool {
	return r == RoundEnd
}

// Reached reports whether a session at round r has reached round other.
func (r Round) Reached(other Round) bool {
	i, j := r.Index(), other.Index()
	return i >= 0 && j >= 0 && j <= i
}

func (r Round) String() string {
	return string(r)
}

// Key returns the round's Mongo field name. A dot in an update path means
// nesting to MongoDB, so "5.5" must never appear as a document key; it is
// stored as "5_5" instead.
func (r Round) Key() string {
	return strings.ReplaceAll(string(r), ".", "_")
}

// RoundFromKey is the inverse of Key for enumerated rounds.
func RoundFromKey(key string) Round {
	for _, r := range roundOrder {
		if r.Key() == key {
			return r
		}
	}
	return Round(key)
}

// MarshalKey makes Round-keyed maps persist under the dot-free field names.
func (r Round) MarshalKey() (string, error) {
	return r.Key(), nil
}

// UnmarshalKey decodes a stored field name back into the round.
func (r *Round) UnmarshalKey(key string) error {
	*r = RoundFromKey(key)
	return nil
}
