// Package game implements the round state machine: legal transitions,
// readiness aggregation, and accusation tallying. Everything here is pure
// computation over the session/player models; persistence and broadcasting
// belong to the service layer.
package game

import (
	"strings"

	"whodunnit/internal/model"
)

// Start validates the lobby-to-round-1 transition: the session must still
// be in the lobby and meet the script's minimum player count.
func Start(s *model.Session, players []*model.Player) error {
	switch s.Status {
	case model.SessionLobby:
	case model.SessionDeleted:
		return ErrSessionNotFound
	default:
		return ErrSessionAlreadyStarted
	}
	if len(players) < s.MinPlayers {
		return ErrBelowMinPlayers
	}
	return nil
}

// Advance validates the host-driven transition out of the session's current
// round and returns the round to move to. Guards are recomputed from the
// supplied state on every call; a failed guard rejects the whole advance.
func Advance(s *model.Session, players []*model.Player) (model.Round, error) {
	if s.Status == model.SessionDeleted {
		return s.Round, ErrSessionNotFound
	}
	if s.Status != model.SessionInProgress {
		if s.Status == model.SessionCompleted || s.Round.Terminal() {
			return s.Round, ErrSessionEnded
		}
		return s.Round, ErrSessionNotStarted
	}

	next, ok := s.Round.Next()
	if !ok {
		return s.Round, ErrSessionEnded
	}

	if s.Round == model.RoundAccusation {
		// Virtual stand-ins hold no credentials and cannot accuse, so
		// only real players gate this round. At least one is required.
		accusers := 0
		for _, p := range players {
			if p.IsVirtual {
				continue
			}
			if !p.AccusedFor(model.RoundAccusation) {
				return s.Round, ErrAccusationsPending
			}
			accusers++
		}
		if accusers == 0 {
			return s.Round, ErrAccusationsPending
		}
		return next, nil
	}

	if !AllReadyForRound(players, s.Round) {
		return s.Round, ErrNotAllReady
	}
	return next, nil
}

// AllReadyForRound reports whether every joined player, virtual and real
// alike, has marked ready for the given round.
func AllReadyForRound(players []*model.Player, r model.Round) bool {
	for _, p := range players {
		if !p.ReadyFor(r) {
			return false
		}
	}
	return len(players) > 0
}

// ValidateAccusation rejects empty accusation targets. Whether the accused
// name exists in the script is a display-layer concern.
func ValidateAccusation(accusedCharacter string) error {
	if strings.TrimSpace(accusedCharacter) == "" {
		return ErrEmptyAccusation
	}
	return nil
}

// ValidateReadinessRound rejects readiness writes for rounds the session
// has not reached, keeping the per-player readiness maps closed over
// reachable rounds.
func ValidateReadinessRound(s *model.Session, r model.Round) error {
	if !r.Valid() || r == model.RoundPending {
		return ErrInvalidRound
	}
	if !s.Round.Reached(r) {
		return ErrRoundNotReached
	}
	return nil
}

// AccusationStatus counts how many players have submitted at least one
// accusation for the accusation round. Virtual stand-ins do not accuse and
// are left out of both counts.
func AccusationStatus(players []*model.Player) model.AccusationStatus {
	var status model.AccusationStatus
	for _, p := range players {
		if p.IsVirtual {
			continue
		}
		status.Total++
		if p.AccusedFor(model.RoundAccusation) {
			status.AccusedCount++
		}
	}
	return status
}

// VoteTotals maps each accused character to the identities of their
// accusers, aggregated over accusation-round entries only. A player
// appears once per accused character no matter how often they repeat
// the same accusation.
func VoteTotals(s *model.Session) map[string][]string {
	totals := make(map[string][]string)
	for _, a := range s.Accusations {
		if a.Round != model.RoundAccusation {
			continue
		}
		if containsString(totals[a.AccusedCharacter], a.AccuserID) {
			continue
		}
		totals[a.AccusedCharacter] = append(totals[a.AccusedCharacter], a.AccuserID)
	}
	return totals
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
