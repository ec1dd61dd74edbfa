package service

import (
	"context"
	"sync"
	"time"

	"whodunnit/internal/game"
	"whodunnit/internal/model"
)

// In-memory doubles for the store interfaces, mirroring the per-document
// update semantics of the Mongo repositories.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session

	// forceCollisions makes Exists report a collision for that many calls,
	// regardless of stored sessions.
	forceCollisions int
	existsCalls     int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.Code] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByCode(_ context.Context, code string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[code]
	if !ok {
		return nil, game.ErrSessionNotFound
	}
	copied := *session
	copied.Accusations = append([]model.Accusation(nil), session.Accusations...)
	return &copied, nil
}

func (r *fakeSessionRepo) Exists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existsCalls++
	if r.forceCollisions > 0 {
		r.forceCollisions--
		return true, nil
	}
	_, ok := r.sessions[code]
	return ok, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.Code] = &copied
	return nil
}

func (r *fakeSessionRepo) SetRound(_ context.Context, code string, round model.Round, status model.SessionStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[code]
	if !ok {
		return game.ErrSessionNotFound
	}
	session.Round = round
	session.Status = status
	if round == model.Round1 {
		session.StartedAt = &at
	}
	if round.Terminal() {
		session.EndedAt = &at
	}
	return nil
}

func (r *fakeSessionRepo) SetStatus(_ context.Context, code string, status model.SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[code]
	if !ok {
		return game.ErrSessionNotFound
	}
	session.Status = status
	return nil
}

func (r *fakeSessionRepo) AppendAccusation(_ context.Context, code string, accusation model.Accusation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[code]
	if !ok {
		return game.ErrSessionNotFound
	}
	session.Accusations = append(session.Accusations, accusation)
	return nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string][]*model.Player // sessionCode -> join order
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[string][]*model.Player)}
}

func (r *fakePlayerRepo) find(code, playerID string) *model.Player {
	for _, p := range r.players[code] {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func copyPlayer(p *model.Player) *model.Player {
	copied := *p
	copied.Readiness = make(map[model.Round]model.Readiness, len(p.Readiness))
	for k, v := range p.Readiness {
		copied.Readiness[k] = v
	}
	copied.Accusations = append([]model.PlayerAccusation(nil), p.Accusations...)
	return &copied
}

func (r *fakePlayerRepo) Create(_ context.Context, player *model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[player.SessionCode] = append(r.players[player.SessionCode], copyPlayer(player))
	return nil
}

func (r *fakePlayerRepo) Get(_ context.Context, code, playerID string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(code, playerID)
	if p == nil {
		return nil, game.ErrPlayerNotFound
	}
	return copyPlayer(p), nil
}

func (r *fakePlayerRepo) GetByCharacter(_ context.Context, code, characterName string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players[code] {
		if p.CharacterName == characterName {
			return copyPlayer(p), nil
		}
	}
	return nil, game.ErrPlayerNotFound
}

func (r *fakePlayerRepo) ListBySession(_ context.Context, code string) ([]*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Player, 0, len(r.players[code]))
	for _, p := range r.players[code] {
		out = append(out, copyPlayer(p))
	}
	return out, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, player *model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.players[player.SessionCode] {
		if p.ID == player.ID {
			r.players[player.SessionCode][i] = copyPlayer(player)
			return nil
		}
	}
	return game.ErrPlayerNotFound
}

func (r *fakePlayerRepo) Delete(_ context.Context, code, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.players[code]
	for i, p := range list {
		if p.ID == playerID {
			r.players[code] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakePlayerRepo) SetReadiness(_ context.Context, code, playerID string, round model.Round, readiness model.Readiness) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(code, playerID)
	if p == nil {
		return game.ErrPlayerNotFound
	}
	p.Readiness[round] = readiness
	return nil
}

func (r *fakePlayerRepo) ResetReadiness(_ context.Context, code string, round model.Round, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players[code] {
		p.Readiness[round] = model.Readiness{Ready: false, ReadyAt: at}
	}
	return nil
}

func (r *fakePlayerRepo) AppendAccusation(_ context.Context, code, playerID string, accusation model.PlayerAccusation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(code, playerID)
	if p == nil {
		return game.ErrPlayerNotFound
	}
	p.Accusations = append(p.Accusations, accusation)
	return nil
}

type fakeSessionCache struct {
	mu    sync.Mutex
	metas map[string]*model.SessionMeta
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{metas: make(map[string]*model.SessionMeta)}
}

func (c *fakeSessionCache) SetMeta(_ context.Context, code string, meta *model.SessionMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *meta
	c.metas[code] = &copied
	return nil
}

func (c *fakeSessionCache) GetMeta(_ context.Context, code string) (*model.SessionMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	meta, ok := c.metas[code]
	if !ok {
		return nil, nil
	}
	copied := *meta
	return &copied, nil
}

func (c *fakeSessionCache) SetStatus(_ context.Context, code string, status model.SessionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if meta, ok := c.metas[code]; ok {
		meta.Status = status
	}
	return nil
}

func (c *fakeSessionCache) SetRound(_ context.Context, code string, round model.Round, status model.SessionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if meta, ok := c.metas[code]; ok {
		meta.Round = round
		meta.Status = status
	}
	return nil
}

func (c *fakeSessionCache) Exists(_ context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.metas[code]
	return ok, nil
}

func (c *fakeSessionCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.metas, code)
	return nil
}

type recordedMessage struct {
	SessionCode string
	MsgType     string
	Payload     interface{}
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []recordedMessage
}

func (b *fakeBroadcaster) record(code, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, recordedMessage{code, msgType, payload})
}

func (b *fakeBroadcaster) BroadcastToHost(code, msgType string, payload interface{}) {
	b.record(code, msgType, payload)
}

func (b *fakeBroadcaster) BroadcastToPlayer(code, _, msgType string, payload interface{}) {
	b.record(code, msgType, payload)
}

func (b *fakeBroadcaster) BroadcastToSession(code, msgType string, payload interface{}) {
	b.record(code, msgType, payload)
}

type fakeScriptRepo struct {
	scripts []*model.Script
}

func (r *fakeScriptRepo) List(_ context.Context) ([]*model.Script, error) {
	return r.scripts, nil
}

func (r *fakeScriptRepo) GetByID(_ context.Context, scriptID string) (*model.Script, error) {
	for _, s := range r.scripts {
		if s.ScriptID == scriptID {
			return s, nil
		}
	}
	return nil, game.ErrScriptNotFound
}
