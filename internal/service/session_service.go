package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"whodunnit/internal/cache"
	"whodunnit/internal/catalog"
	"whodunnit/internal/game"
	"whodunnit/internal/model"
	"whodunnit/internal/repository"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeAttempts = 10

	// Largest multiple of the alphabet size below 256. Random bytes at or
	// above it are discarded so the modulo draw stays uniform.
	codeDrawLimit = 256 - 256%len(codeAlphabet)
)

// SessionService orchestrates session lifecycle: creation, joining,
// character assignment, and virtual stand-ins. Round progression lives in
// GameService.
type SessionService struct {
	sessionRepo  repository.SessionRepo
	playerRepo   repository.PlayerRepo
	sessionCache cache.SessionCache
	catalog      *catalog.Catalog
	broadcaster  Broadcaster
}

// NewSessionService creates a new session service.
func NewSessionService(
	sessionRepo repository.SessionRepo,
	playerRepo repository.PlayerRepo,
	sessionCache cache.SessionCache,
	cat *catalog.Catalog,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		playerRepo:   playerRepo,
		sessionCache: sessionCache,
		catalog:      cat,
	}
}

// SetBroadcaster sets the broadcaster for client notifications.
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateSession creates a session for the given script and auto-joins the
// host as the first player. The host identity is caller-supplied (devices
// pick their own); a fresh one is generated when empty.
func (s *SessionService) CreateSession(ctx context.Context, hostID, hostName, scriptID string) (*model.Session, *model.Player, error) {
	script, err := s.catalog.Script(scriptID)
	if err != nil {
		return nil, nil, err
	}

	code, err := s.generateSessionCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	if hostID == "" {
		hostID = "h_" + uuid.New().String()[:8]
	}
	session := &model.Session{
		Code:        code,
		ScriptID:    scriptID,
		Status:      model.SessionLobby,
		Round:       model.RoundPending,
		HostID:      hostID,
		MinPlayers:  script.MinPlayers,
		MaxPlayers:  script.MaxPlayers,
		Accusations: []model.Accusation{},
		CreatedAt:   now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	host := &model.Player{
		ID:          hostID,
		SessionCode: code,
		DisplayName: hostName,
		IsHost:      true,
		Readiness:   map[model.Round]model.Readiness{},
		Accusations: []model.PlayerAccusation{},
		JoinedAt:    now,
	}
	if err := s.playerRepo.Create(ctx, host); err != nil {
		return nil, nil, err
	}

	meta := &model.SessionMeta{
		ScriptID:   scriptID,
		HostID:     hostID,
		Status:     model.SessionLobby,
		Round:      model.RoundPending,
		MinPlayers: script.MinPlayers,
		MaxPlayers: script.MaxPlayers,
		CreatedAt:  now,
	}
	if err := s.sessionCache.SetMeta(ctx, code, meta); err != nil {
		// Cache misses fall back to the store; creation already succeeded.
		log.Printf("session %s: cache meta failed: %v", code, err)
	}

	return session, host, nil
}

// JoinSession adds a player to a lobby session. Joining is idempotent: an
// identity that already belongs to the session gets the current state back
// instead of an error, regardless of session phase.
func (s *SessionService) JoinSession(ctx context.Context, code, playerID, name string) (*model.SessionSnapshot, *model.Player, error) {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if session.Status == model.SessionDeleted {
		return nil, nil, game.ErrSessionNotFound
	}

	players, err := s.playerRepo.ListBySession(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	if playerID != "" {
		for _, p := range players {
			if p.ID == playerID {
				return &model.SessionSnapshot{Session: session, Players: players}, p, nil
			}
		}
	}

	if session.Status != model.SessionLobby {
		return nil, nil, game.ErrSessionAlreadyStarted
	}
	if len(players) >= session.MaxPlayers {
		return nil, nil, game.ErrSessionFull
	}

	if playerID == "" {
		playerID = "p_" + uuid.New().String()[:8]
	}
	player := &model.Player{
		ID:          playerID,
		SessionCode: code,
		DisplayName: name,
		Readiness:   map[model.Round]model.Readiness{},
		Accusations: []model.PlayerAccusation{},
		JoinedAt:    time.Now(),
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, nil, err
	}

	snapshot := &model.SessionSnapshot{Session: session, Players: append(players, player)}
	s.broadcastSnapshot(code, snapshot)
	return snapshot, player, nil
}

// AssignCharacter gives a joined player a character. A virtual stand-in
// holding that character is displaced (hard-deleted) first; a real player
// holding it blocks the assignment.
func (s *SessionService) AssignCharacter(ctx context.Context, code, playerID, characterName string) error {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}

	if _, err := s.catalog.CharacterByName(session.ScriptID, characterName); err != nil {
		return err
	}

	player, err := s.playerRepo.Get(ctx, code, playerID)
	if err != nil {
		return err
	}

	holder, err := s.playerRepo.GetByCharacter(ctx, code, characterName)
	switch {
	case err == nil && holder.ID == player.ID:
		return nil // already assigned
	case err == nil && holder.IsVirtual:
		if err := s.playerRepo.Delete(ctx, code, holder.ID); err != nil {
			return err
		}
	case err == nil:
		return game.ErrCharacterTaken
	case !errors.Is(err, game.ErrPlayerNotFound):
		return err
	}

	player.CharacterName = characterName
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return err
	}

	s.refreshSnapshot(ctx, code)
	return nil
}

// AddVirtualPlayer creates a host-controlled stand-in occupying a character
// slot. Host privilege is enforced at the transport layer.
func (s *SessionService) AddVirtualPlayer(ctx context.Context, code, characterName string) (*model.Player, error) {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if _, err := s.catalog.CharacterByName(session.ScriptID, characterName); err != nil {
		return nil, err
	}
	if _, err := s.playerRepo.GetByCharacter(ctx, code, characterName); err == nil {
		return nil, game.ErrCharacterTaken
	} else if !errors.Is(err, game.ErrPlayerNotFound) {
		return nil, err
	}

	players, err := s.playerRepo.ListBySession(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(players) >= session.MaxPlayers {
		return nil, game.ErrSessionFull
	}

	now := time.Now()
	player := &model.Player{
		ID:            "p_" + uuid.New().String()[:8],
		SessionCode:   code,
		DisplayName:   characterName,
		IsVirtual:     true,
		CharacterName: characterName,
		Readiness:     map[model.Round]model.Readiness{},
		Accusations:   []model.PlayerAccusation{},
		JoinedAt:      now,
	}
	// A stand-in added mid-game still gates the current round.
	if session.Round != model.RoundPending {
		player.Readiness[session.Round] = model.Readiness{Ready: false, ReadyAt: now}
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}

	s.refreshSnapshot(ctx, code)
	return player, nil
}

// RemoveVirtualPlayer hard-deletes a virtual stand-in.
func (s *SessionService) RemoveVirtualPlayer(ctx context.Context, code, playerID string) error {
	player, err := s.playerRepo.Get(ctx, code, playerID)
	if err != nil {
		return err
	}
	if !player.IsVirtual {
		return game.ErrNotVirtualPlayer
	}

	if err := s.playerRepo.Delete(ctx, code, playerID); err != nil {
		return err
	}

	s.refreshSnapshot(ctx, code)
	return nil
}

// LeaveSession removes a player's membership record.
func (s *SessionService) LeaveSession(ctx context.Context, code, playerID string) error {
	if _, err := s.playerRepo.Get(ctx, code, playerID); err != nil {
		return err
	}
	if err := s.playerRepo.Delete(ctx, code, playerID); err != nil {
		return err
	}

	s.refreshSnapshot(ctx, code)
	return nil
}

// DeleteSession soft-deletes a session. The record is flagged, never
// erased.
func (s *SessionService) DeleteSession(ctx context.Context, code string) error {
	if _, err := s.sessionRepo.GetByCode(ctx, code); err != nil {
		return err
	}
	if err := s.sessionRepo.SetStatus(ctx, code, model.SessionDeleted); err != nil {
		return err
	}
	if err := s.sessionCache.Delete(ctx, code); err != nil {
		log.Printf("session %s: cache delete failed: %v", code, err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(code, "session_deleted", map[string]string{"code": code})
	}
	return nil
}

// Snapshot returns the session plus all its players.
func (s *SessionService) Snapshot(ctx context.Context, code string) (*model.SessionSnapshot, error) {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionDeleted {
		return nil, game.ErrSessionNotFound
	}
	players, err := s.playerRepo.ListBySession(ctx, code)
	if err != nil {
		return nil, err
	}
	return &model.SessionSnapshot{Session: session, Players: players}, nil
}

// generateSessionCode draws 6-char codes from the uppercase-alphanumeric
// alphabet, retrying on collision up to a fixed attempt cap. Uniqueness is
// probed against the cache first and the store as the authority.
func (s *SessionService) generateSessionCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < codeAttempts; attempts++ {
		code := make([]byte, 0, codeLength)
		for len(code) < codeLength {
			b := make([]byte, codeLength-len(code))
			if _, err := rand.Read(b); err != nil {
				return "", err
			}
			for _, v := range b {
				if int(v) >= codeDrawLimit {
					continue
				}
				code = append(code, codeAlphabet[int(v)%len(codeAlphabet)])
			}
		}
		codeStr := string(code)

		if cached, err := s.sessionCache.Exists(ctx, codeStr); err == nil && cached {
			continue
		}
		exists, err := s.sessionRepo.Exists(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", game.ErrCodeGeneration
}

func (s *SessionService) broadcastSnapshot(code string, snapshot *model.SessionSnapshot) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToSession(code, "session_update", snapshot)
}

func (s *SessionService) refreshSnapshot(ctx context.Context, code string) {
	if s.broadcaster == nil {
		return
	}
	snapshot, err := s.Snapshot(ctx, code)
	if err != nil {
		log.Printf("session %s: snapshot for broadcast failed: %v", code, err)
		return
	}
	s.broadcastSnapshot(code, snapshot)
}
