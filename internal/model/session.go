package model

import "time"

type SessionStatus string

const (
	SessionLobby      SessionStatus = "LOBBY"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionDeleted    SessionStatus = "DELETED"
)

// Accusation is one entry in the session-level aggregate list.
type Accusation struct {
	Round            Round     `json:"round" bson:"round"`
	AccuserID        string    `json:"accuserId" bson:"accuserId"`
	AccuserCharacter string    `json:"accuserCharacter" bson:"accuserCharacter"`
	AccusedCharacter string    `json:"accusedCharacter" bson:"accusedCharacter"`
	Timestamp        time.Time `json:"timestamp" bson:"timestamp"`
}

// Session is one game instance, identified by a short join code.
type Session struct {
	Code        string        `json:"code" bson:"code"`
	ScriptID    string        `json:"scriptId" bson:"scriptId"`
	Status      SessionStatus `json:"status" bson:"status"`
	Round       Round         `json:"round" bson:"round"`
	HostID      string        `json:"hostId" bson:"hostId"`
	MinPlayers  int           `json:"minPlayers" bson:"minPlayers"`
	MaxPlayers  int           `json:"maxPlayers" bson:"maxPlayers"`
	Accusations []Accusation  `json:"accusations" bson:"accusations"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	StartedAt   *time.Time    `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt     *time.Time    `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// SessionMeta is the cached subset of session state kept in Redis for
// join-time lookups and code uniqueness checks.
type SessionMeta struct {
	ScriptID   string        `json:"scriptId"`
	HostID     string        `json:"hostId"`
	Status     SessionStatus `json:"status"`
	Round      Round         `json:"round"`
	MinPlayers int           `json:"minPlayers"`
	MaxPlayers int           `json:"maxPlayers"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// SessionSnapshot is the full state delivered to subscribers after every
// mutating operation. Always the complete picture, never a diff.
type SessionSnapshot struct {
	Session *Session  `json:"session"`
	Players []*Player `json:"players"`
}

// AccusationStatus summarizes accusation-round progress for display.
type AccusationStatus struct {
	AccusedCount int `json:"accusedCount"`
	Total        int `json:"total"`
}
