package model

import "github.com/golang-jwt/jwt/v5"

// HostClaims are JWT claims scoping a host to the session they created.
type HostClaims struct {
	SessionCode string `json:"sessionCode"`
	HostID      string `json:"hostId"`
	jwt.RegisteredClaims
}

// PlayerClaims are JWT claims for session-scoped player tokens.
type PlayerClaims struct {
	SessionCode string `json:"sessionCode"`
	PlayerID    string `json:"playerId"`
	jwt.RegisteredClaims
}
