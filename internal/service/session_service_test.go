package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"whodunnit/internal/catalog"
	"whodunnit/internal/game"
	"whodunnit/internal/model"
)

func testScript() *model.Script {
	return &model.Script{
		ScriptID:       "blackwood-manor",
		Title:          "Murder at Blackwood Manor",
		MinPlayers:     2,
		MaxPlayers:     4,
		NumberOfRounds: 6,
		RoundInstructions: map[model.Round]string{
			model.Round1:          "Introduce yourselves.",
			model.RoundAccusation: "Point your finger.",
		},
		Characters: []model.Character{
			{Name: "Colonel Mustard", IsMurderer: true, Rounds: map[model.Round]string{model.Round1: "You arrived late."}},
			{Name: "Miss Scarlett", Rounds: map[model.Round]string{model.Round1: "You arrived first."}},
			{Name: "Professor Plum"},
			{Name: "Mrs. Peacock"},
		},
	}
}

type fixture struct {
	sessions *fakeSessionRepo
	players  *fakePlayerRepo
	cache    *fakeSessionCache
	bus      *fakeBroadcaster

	sessionSvc *SessionService
	gameSvc    *GameService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.Load(context.Background(), &fakeScriptRepo{scripts: []*model.Script{testScript()}})
	require.NoError(t, err)

	f := &fixture{
		sessions: newFakeSessionRepo(),
		players:  newFakePlayerRepo(),
		cache:    newFakeSessionCache(),
		bus:      &fakeBroadcaster{},
	}
	f.sessionSvc = NewSessionService(f.sessions, f.players, f.cache, cat)
	f.sessionSvc.SetBroadcaster(f.bus)
	f.gameSvc = NewGameService(f.sessions, f.players, f.cache)
	f.gameSvc.SetBroadcaster(f.bus)
	return f
}

func (f *fixture) create(t *testing.T) (*model.Session, *model.Player) {
	t.Helper()
	session, host, err := f.sessionSvc.CreateSession(context.Background(), "h_host", "Alice", "blackwood-manor")
	require.NoError(t, err)
	return session, host
}

func Test_GenerateSessionCode_Format(t *testing.T) {
	f := newFixture(t)
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)

	for i := 0; i < 1000; i++ {
		code, err := f.sessionSvc.generateSessionCode(context.Background())
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
	}
}

func Test_GenerateSessionCode_Draws_Uniformly(t *testing.T) {
	// The draw limit must be a whole multiple of the alphabet so rejection
	// sampling leaves no modulo bias toward the low characters.
	require.Zero(t, codeDrawLimit%len(codeAlphabet))
	require.LessOrEqual(t, codeDrawLimit, 256)

	f := newFixture(t)
	seen := make(map[byte]int)
	for i := 0; i < 2000; i++ {
		code, err := f.sessionSvc.generateSessionCode(context.Background())
		require.NoError(t, err)
		for j := 0; j < len(code); j++ {
			seen[code[j]]++
		}
	}
	for i := 0; i < len(codeAlphabet); i++ {
		require.Positive(t, seen[codeAlphabet[i]], "character %c never drawn", codeAlphabet[i])
	}
}

func Test_GenerateSessionCode_Retries_On_Collision(t *testing.T) {
	f := newFixture(t)
	f.sessions.forceCollisions = 3

	code, err := f.sessionSvc.generateSessionCode(context.Background())
	require.NoError(t, err)
	require.Len(t, code, 6)
	require.Equal(t, 4, f.sessions.existsCalls)
}

func Test_GenerateSessionCode_Gives_Up_After_Attempt_Cap(t *testing.T) {
	f := newFixture(t)
	f.sessions.forceCollisions = codeAttempts

	_, err := f.sessionSvc.generateSessionCode(context.Background())
	require.ErrorIs(t, err, game.ErrCodeGeneration)
	require.Equal(t, codeAttempts, f.sessions.existsCalls)
}

func Test_CreateSession_AutoJoins_Host(t *testing.T) {
	f := newFixture(t)
	session, host := f.create(t)

	require.Equal(t, model.SessionLobby, session.Status)
	require.Equal(t, model.RoundPending, session.Round)
	require.Equal(t, "h_host", session.HostID)
	require.Equal(t, 2, session.MinPlayers)
	require.Equal(t, 4, session.MaxPlayers)

	require.Equal(t, "h_host", host.ID)
	require.True(t, host.IsHost)
	require.Equal(t, "Alice", host.DisplayName)

	players, err := f.players.ListBySession(context.Background(), session.Code)
	require.NoError(t, err)
	require.Len(t, players, 1)

	meta, err := f.cache.GetMeta(context.Background(), session.Code)
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.Equal(t, model.SessionLobby, meta.Status)
}

func Test_CreateSession_Generates_Host_Identity_When_Empty(t *testing.T) {
	f := newFixture(t)

	session, host, err := f.sessionSvc.CreateSession(context.Background(), "", "Alice", "blackwood-manor")
	require.NoError(t, err)
	require.NotEmpty(t, host.ID)
	require.Equal(t, host.ID, session.HostID)
}

func Test_CreateSession_Unknown_Script(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.sessionSvc.CreateSession(context.Background(), "h_host", "Alice", "nope")
	require.ErrorIs(t, err, game.ErrScriptNotFound)
}

func Test_JoinSession_Rejoin_Is_Idempotent(t *testing.T) {
	f := newFixture(t)
	session, _ := f.create(t)

	_, player, err := f.sessionSvc.JoinSession(context.Background(), session.Code, "p_bob", "Bob")
	require.NoError(t, err)
	require.Equal(t, "p_bob", player.ID)

	// Second join with the same identity returns state, adds nothing.
	snapshot, again, err := f.sessionSvc.JoinSession(context.Background(), session.Code, "p_bob", "Bob")
	require.NoError(t, err)
	require.Equal(t, "p_bob", again.ID)
	require.Len(t, snapshot.Players, 2)

	// Rejoin keeps working after the game starts.
	_, err = f.gameSvc.StartGame(context.Background(), session.Code)
	require.NoError(t, err)
	_, again, err = f.sessionSvc.JoinSession(context.Background(), session.Code, "p_bob", "Bob")
	require.NoError(t, err)
	require.Equal(t, "p_bob", again.ID)
}

func Test_JoinSession_Rejects_When_Full(t *testing.T) {
	f := newFixture(t)
	session, _ := f.create(t)

	for _, id := range []string{"p_1", "p_2", "p_3"} {
		_, _, err := f.sessionSvc.JoinSession(context.Background(), session.Code, id, id)
		require.NoError(t, err)
	}

	_, _, err := f.sessionSvc.JoinSession(context.Background(), session.Code, "p_4", "p_4")
	require.ErrorIs(t, err, game.ErrSessionFull)
	require.ErrorIs(t, err, game.ErrCapacity)
}

func Test_JoinSession_Rejects_New_Players_After_Start(t *testing.T) {
	f := newFixture(t)
	session, _ := f.create(t)
	_, _, err := f.sessionSvc.JoinSession(context.Background(), session.Code, "p_bob", "Bob")
	require.NoError(t, err)
	_, err = f.gameSvc.StartGame(context.Background(), session.Code)
	require.NoError(t, err)

	_, _, err = f.sessionSvc.JoinSession(context.Background(), session.Code, "p_late", "Late")
	require.ErrorIs(t, err, game.ErrSessionAlreadyStarted)
}

func Test_JoinSession_Unknown_Code(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.sessionSvc.JoinSession(context.Background(), "ZZZZZZ", "p_bob", "Bob")
	require.ErrorIs(t, err, game.ErrSessionNotFound)
}

func Test_AssignCharacter_Displaces_Virtual_Holder(t *testing.T) {
	f := newFixture(t)
	session, _ := f.create(t)

	virtual, err := f.sessionSvc.AddVirtualPlayer(context.Background(), session.Code, "Miss Scarlett")
	require.NoError(t, err)
	require.True(t, virtual.IsVirtual)

	_, bob, err := f.sessionSvc.JoinSession(context.Background(), session.Code, "p_bob", "Bob")
	require.NoError(t, err)

	err = f.sessionSvc.AssignCharacter(context.Background(), session.Code, bob.ID, "Miss Scarlett")
	require.NoError(t, err)

	// The stand-in is gone; the real player holds the character.
	_, err = f.players.Get(context.Background(), session.Code, virtual.ID)
	require.ErrorIs(t, err, game.ErrPlayerNotFound)

	holder, err := f.players.GetByCharacter(context.Background(), session.Code, "Miss Scarlett")
	require.NoError(t, err)
	require.Equal(t, bob.ID, holder.ID)
	require.False(t, holder.IsVirtual)
}

func Test_AssignCharacter_Blocked_By_Real_Holder(t *testing.T) {
	f := newFixture(t)
	session, host := f.create(t)
	_, bob, err := f.sessionSvc.JoinSession(context.Background(), session.Code, "p_bob", "Bob")
	require.NoError(t, err)

	require.NoError(t, f.sessionSvc.AssignCharacter(context.Background(), session.Code, host.ID, "Colonel Mustard"))

	err = f.sessionSvc.AssignCharacter(context.Background(), session.Code, bob.ID, "Colonel Mustard")
	require.ErrorIs(t, err, game.ErrCharacterTaken)

	// Re-assigning a player their own character is a no-op, not a conflict.
	require.NoError(t, f.sessionSvc.AssignCharacter(context.Background(), session.Code, host.ID, "Colonel Mustard"))
}

func Test_AssignCharacter_Unknown_Character(t *testing.T) {
	f := newFixture(t)
	session, host := f.create(t)

	err := f.sessionSvc.AssignCharacter(context.Background(), session.Code, host.ID, "Colonel Custard")
	require.ErrorIs(t, err, game.ErrCharacterNotFound)
}

func Test_AddVirtualPlayer_MidGame_Gates_Current_Round(t *testing.T) {
	f := newFixture(t)
	session, _ := f.create(t)
	_, _, err := f.sessionSvc.JoinSession(context.Background(), session.Code, "p_bob", "Bob")
	require.NoError(t, err)
	_, err = f.gameSvc.StartGame(context.Background(), session.Code)
	require.NoError(t, err)

	virtual, err := f.sessionSvc.AddVirtualPlayer(context.Background(), session.Code, "Mrs. Peacock")
	require.NoError(t, err)

	stored, err := f.players.Get(context.Background(), session.Code, virtual.ID)
	require.NoError(t, err)
	entry, ok := stored.Readiness[model.Round1]
	require.True(t, ok)
	require.False(t, entry.Ready)
}

func Test_RemoveVirtualPlayer_Rejects_Real_Players(t *testing.T) {
	f := newFixture(t)
	session, host := f.create(t)

	err := f.sessionSvc.RemoveVirtualPlayer(context.Background(), session.Code, host.ID)
	require.ErrorIs(t, err, game.ErrNotVirtualPlayer)

	virtual, err := f.sessionSvc.AddVirtualPlayer(context.Background(), session.Code, "Professor Plum")
	require.NoError(t, err)
	require.NoError(t, f.sessionSvc.RemoveVirtualPlayer(context.Background(), session.Code, virtual.ID))
}

func Test_DeleteSession_Is_Soft(t *testing.T) {
	f := newFixture(t)
	session, _ := f.create(t)

	require.NoError(t, f.sessionSvc.DeleteSession(context.Background(), session.Code))

	// The document survives with the deleted flag; the API treats it as gone.
	stored, err := f.sessions.GetByCode(context.Background(), session.Code)
	require.NoError(t, err)
	require.Equal(t, model.SessionDeleted, stored.Status)

	_, err = f.sessionSvc.Snapshot(context.Background(), session.Code)
	require.ErrorIs(t, err, game.ErrSessionNotFound)

	_, _, err = f.sessionSvc.JoinSession(context.Background(), session.Code, "p_new", "New")
	require.ErrorIs(t, err, game.ErrSessionNotFound)

	last := f.bus.messages[len(f.bus.messages)-1]
	require.Equal(t, "session_deleted", last.MsgType)
}
