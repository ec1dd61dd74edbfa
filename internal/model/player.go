package model

import "time"

// Readiness is a single per-round ready flag with its set time.
type Readiness struct {
	Ready   bool      `json:"ready" bson:"ready"`
	ReadyAt time.Time `json:"readyAt" bson:"readyAt"`
}

// PlayerAccusation is one accusation as recorded on the accusing player.
type PlayerAccusation struct {
	Round            Round     `json:"round" bson:"round"`
	AccusedCharacter string    `json:"accusedCharacter" bson:"accusedCharacter"`
	Timestamp        time.Time `json:"timestamp" bson:"timestamp"`
}

// Player represents one participant's membership in a session. Virtual
// players are host-controlled stand-ins and carry the explicit IsVirtual
// flag; they are otherwise regular player records.
type Player struct {
	ID            string              `json:"id" bson:"playerId"`
	SessionCode   string              `json:"sessionCode" bson:"sessionCode"`
	DisplayName   string              `json:"displayName" bson:"displayName"`
	IsHost        bool                `json:"isHost" bson:"isHost"`
	IsVirtual     bool                `json:"isVirtual" bson:"isVirtual"`
	CharacterName string              `json:"characterName,omitempty" bson:"characterName,omitempty"`
	Readiness     map[Round]Readiness `json:"readiness" bson:"readiness"`
	Accusations   []PlayerAccusation  `json:"accusations" bson:"accusations"`
	JoinedAt      time.Time           `json:"joinedAt" bson:"joinedAt"`
}

// ReadyFor reports whether the player has marked ready for the given round.
func (p *Player) ReadyFor(r Round) bool {
	return p.Readiness[r].Ready
}

// AccusedFor reports whether the player has recorded at least one
// accusation for the given round.
func (p *Player) AccusedFor(r Round) bool {
	for _, a := range p.Accusations {
		if a.Round == r {
			return true
		}
	}
	return false
}
