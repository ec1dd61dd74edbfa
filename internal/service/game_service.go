package service

import (
	"context"
	"log"
	"time"

	"whodunnit/internal/cache"
	"whodunnit/internal/game"
	"whodunnit/internal/model"
	"whodunnit/internal/repository"
)

// GameService drives round progression: start, advance, readiness, and
// accusations. Transition legality is computed by the game package; this
// service re-reads state immediately before applying a transition and
// persists the outcome.
type GameService struct {
	sessionRepo  repository.SessionRepo
	playerRepo   repository.PlayerRepo
	sessionCache cache.SessionCache
	broadcaster  Broadcaster
}

// NewGameService creates a new game service.
func NewGameService(
	sessionRepo repository.SessionRepo,
	playerRepo repository.PlayerRepo,
	sessionCache cache.SessionCache,
) *GameService {
	return &GameService{
		sessionRepo:  sessionRepo,
		playerRepo:   playerRepo,
		sessionCache: sessionCache,
	}
}

// SetBroadcaster sets the broadcaster for client notifications.
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StartGame moves a lobby session into round 1 once the minimum player
// count is met. Fails with a capacity error otherwise; never a silent
// no-op.
func (s *GameService) StartGame(ctx context.Context, code string) (*model.SessionSnapshot, error) {
	session, players, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := game.Start(session, players); err != nil {
		return nil, err
	}

	return s.applyTransition(ctx, session, model.Round1, model.SessionInProgress)
}

// AdvanceRound moves the session to the next round in the canonical
// sequence, provided the current round's guard holds. The guard is
// recomputed from freshly read state; a failed guard changes nothing.
func (s *GameService) AdvanceRound(ctx context.Context, code string) (*model.SessionSnapshot, error) {
	session, players, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}

	next, err := game.Advance(session, players)
	if err != nil {
		return nil, err
	}

	status := model.SessionInProgress
	if next.Terminal() {
		status = model.SessionCompleted
	}
	return s.applyTransition(ctx, session, next, status)
}

// applyTransition bumps the round marker and resets every joined player's
// readiness for the new round. The session update is a single atomic
// document write; the per-player reset is one batch update over the
// players collection issued right after it.
func (s *GameService) applyTransition(ctx context.Context, session *model.Session, next model.Round, status model.SessionStatus) (*model.SessionSnapshot, error) {
	now := time.Now()
	if err := s.sessionRepo.SetRound(ctx, session.Code, next, status, now); err != nil {
		return nil, err
	}
	if err := s.playerRepo.ResetReadiness(ctx, session.Code, next, now); err != nil {
		return nil, err
	}
	if err := s.sessionCache.SetRound(ctx, session.Code, next, status); err != nil {
		log.Printf("session %s: cache round update failed: %v", session.Code, err)
	}

	snapshot, err := s.snapshot(ctx, session.Code)
	if err != nil {
		return nil, err
	}
	s.broadcastSnapshot(session.Code, snapshot)
	return snapshot, nil
}

// SetReady writes one player's readiness entry for a round the session has
// reached. Legal at any time, including host overrides on behalf of any
// player; never triggers a transition by itself.
func (s *GameService) SetReady(ctx context.Context, code, playerID string, round model.Round, ready bool) error {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if session.Status == model.SessionDeleted {
		return game.ErrSessionNotFound
	}
	if err := game.ValidateReadinessRound(session, round); err != nil {
		return err
	}
	if _, err := s.playerRepo.Get(ctx, code, playerID); err != nil {
		return err
	}

	readiness := model.Readiness{Ready: ready, ReadyAt: time.Now()}
	if err := s.playerRepo.SetReadiness(ctx, code, playerID, round, readiness); err != nil {
		return err
	}

	s.refreshSnapshot(ctx, code)
	return nil
}

// SubmitAccusation appends one accusation to the player's own record and
// the session aggregate, tagged with the session's current round. Multiple
// accusations per player are allowed; an empty target is rejected.
func (s *GameService) SubmitAccusation(ctx context.Context, code, playerID, accusedCharacter string) error {
	if err := game.ValidateAccusation(accusedCharacter); err != nil {
		return err
	}

	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if session.Status == model.SessionDeleted {
		return game.ErrSessionNotFound
	}

	player, err := s.playerRepo.Get(ctx, code, playerID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := s.playerRepo.AppendAccusation(ctx, code, playerID, model.PlayerAccusation{
		Round:            session.Round,
		AccusedCharacter: accusedCharacter,
		Timestamp:        now,
	}); err != nil {
		return err
	}
	if err := s.sessionRepo.AppendAccusation(ctx, code, model.Accusation{
		Round:            session.Round,
		AccuserID:        playerID,
		AccuserCharacter: player.CharacterName,
		AccusedCharacter: accusedCharacter,
		Timestamp:        now,
	}); err != nil {
		return err
	}

	s.refreshSnapshot(ctx, code)
	return nil
}

// AllReady reports whether every joined player is ready for the round.
func (s *GameService) AllReady(ctx context.Context, code string, round model.Round) (bool, error) {
	players, err := s.playerRepo.ListBySession(ctx, code)
	if err != nil {
		return false, err
	}
	return game.AllReadyForRound(players, round), nil
}

// AccusationStatus reports accusation-round progress.
func (s *GameService) AccusationStatus(ctx context.Context, code string) (model.AccusationStatus, error) {
	players, err := s.playerRepo.ListBySession(ctx, code)
	if err != nil {
		return model.AccusationStatus{}, err
	}
	return game.AccusationStatus(players), nil
}

// VoteTotals maps accused characters to their accusers for the accusation
// round.
func (s *GameService) VoteTotals(ctx context.Context, code string) (map[string][]string, error) {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return game.VoteTotals(session), nil
}

func (s *GameService) load(ctx context.Context, code string) (*model.Session, []*model.Player, error) {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	players, err := s.playerRepo.ListBySession(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	return session, players, nil
}

func (s *GameService) snapshot(ctx context.Context, code string) (*model.SessionSnapshot, error) {
	session, players, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return &model.SessionSnapshot{Session: session, Players: players}, nil
}

func (s *GameService) broadcastSnapshot(code string, snapshot *model.SessionSnapshot) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToSession(code, "session_update", snapshot)
}

func (s *GameService) refreshSnapshot(ctx context.Context, code string) {
	if s.broadcaster == nil {
		return
	}
	snapshot, err := s.snapshot(ctx, code)
	if err != nil {
		log.Printf("session %s: snapshot for broadcast failed: %v", code, err)
		return
	}
	s.broadcastSnapshot(code, snapshot)
}
