package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"whodunnit/internal/game"
	"whodunnit/internal/model"
)

type stubScriptRepo struct {
	scripts []*model.Script
	err     error
}

func (r *stubScriptRepo) List(_ context.Context) ([]*model.Script, error) {
	return r.scripts, r.err
}

func (r *stubScriptRepo) GetByID(_ context.Context, scriptID string) (*model.Script, error) {
	for _, s := range r.scripts {
		if s.ScriptID == scriptID {
			return s, nil
		}
	}
	return nil, game.ErrScriptNotFound
}

func wellFormed() *model.Script {
	return &model.Script{
		ScriptID:       "blackwood-manor",
		Title:          "Murder at Blackwood Manor",
		MinPlayers:     2,
		MaxPlayers:     6,
		NumberOfRounds: 6,
		RoundInstructions: map[model.Round]string{
			model.Round1:          "Introduce yourselves.",
			model.RoundAccusation: "Point your finger.",
		},
		Characters: []model.Character{
			{Name: "Colonel Mustard", IsMurderer: true, Rounds: map[model.Round]string{
				model.Round1: "You arrived late.",
			}},
			{Name: "Miss Scarlett"},
		},
	}
}

func load(t *testing.T, scripts ...*model.Script) *Catalog {
	t.Helper()
	c, err := Load(context.Background(), &stubScriptRepo{scripts: scripts})
	require.NoError(t, err)
	return c
}

func Test_Load_Skips_Malformed_Scripts(t *testing.T) {
	noID := wellFormed()
	noID.ScriptID = ""

	noTitle := wellFormed()
	noTitle.ScriptID = "no-title"
	noTitle.Title = ""

	badBounds := wellFormed()
	badBounds.ScriptID = "bad-bounds"
	badBounds.MaxPlayers = 1 // below MinPlayers

	noCharacters := wellFormed()
	noCharacters.ScriptID = "no-characters"
	noCharacters.Characters = nil

	unnamed := wellFormed()
	unnamed.ScriptID = "unnamed-character"
	unnamed.Characters = []model.Character{{Name: ""}}

	c := load(t, noID, noTitle, badBounds, noCharacters, unnamed, wellFormed())

	scripts := c.Scripts()
	require.Len(t, scripts, 1)
	require.Equal(t, "blackwood-manor", scripts[0].ScriptID)
}

func Test_Load_Skips_Duplicate_Ids(t *testing.T) {
	first := wellFormed()
	second := wellFormed()
	second.Title = "Impostor Manor"

	c := load(t, first, second)

	require.Len(t, c.Scripts(), 1)
	s, err := c.Script("blackwood-manor")
	require.NoError(t, err)
	require.Equal(t, "Murder at Blackwood Manor", s.Title)
}

func Test_Script_Lookup(t *testing.T) {
	c := load(t, wellFormed())

	s, err := c.Script("blackwood-manor")
	require.NoError(t, err)
	require.Equal(t, 2, s.MinPlayers)

	_, err = c.Script("nope")
	require.ErrorIs(t, err, game.ErrScriptNotFound)
	require.ErrorIs(t, err, game.ErrNotFound)
}

func Test_Character_Lookups(t *testing.T) {
	c := load(t, wellFormed())

	roster, err := c.Characters("blackwood-manor")
	require.NoError(t, err)
	require.Len(t, roster, 2)

	ch, err := c.CharacterByName("blackwood-manor", "Colonel Mustard")
	require.NoError(t, err)
	require.True(t, ch.IsMurderer)

	_, err = c.CharacterByName("blackwood-manor", "Colonel Custard")
	require.ErrorIs(t, err, game.ErrCharacterNotFound)

	_, err = c.CharacterByName("nope", "Colonel Mustard")
	require.ErrorIs(t, err, game.ErrScriptNotFound)
}

func Test_MurdererCharacters_Supports_Multiple(t *testing.T) {
	script := wellFormed()
	script.Characters = append(script.Characters, model.Character{Name: "Mrs. Peacock", IsMurderer: true})
	c := load(t, script)

	murderers, err := c.MurdererCharacters("blackwood-manor")
	require.NoError(t, err)
	require.Len(t, murderers, 2)
	require.Equal(t, "Colonel Mustard", murderers[0].Name)
	require.Equal(t, "Mrs. Peacock", murderers[1].Name)
}

func Test_CharacterScript_Per_Round(t *testing.T) {
	c := load(t, wellFormed())

	text, err := c.CharacterScript("blackwood-manor", "Colonel Mustard", model.Round1)
	require.NoError(t, err)
	require.Equal(t, "You arrived late.", text)

	_, err = c.CharacterScript("blackwood-manor", "Colonel Mustard", model.Round2)
	require.ErrorIs(t, err, game.ErrNotFound)
}

func Test_RoundInstructions(t *testing.T) {
	c := load(t, wellFormed())

	text, err := c.RoundInstructions("blackwood-manor", model.RoundAccusation)
	require.NoError(t, err)
	require.Equal(t, "Point your finger.", text)

	_, err = c.RoundInstructions("blackwood-manor", model.Round3)
	require.ErrorIs(t, err, game.ErrNotFound)
}
