// Package catalog holds the immutable script definitions loaded once at
// startup. All lookups are pure reads over that in-memory data.
package catalog

import (
	"context"
	"log"

	"whodunnit/internal/game"
	"whodunnit/internal/model"
	"whodunnit/internal/repository"
)

// Catalog exposes lookup operations over the loaded scripts.
type Catalog struct {
	scripts map[string]*model.Script
	order   []string
}

// Load reads every script from the store and indexes the well-formed ones.
// Malformed entries are logged and skipped; they are simply absent from
// subsequent lookups.
func Load(ctx context.Context, repo repository.ScriptRepo) (*Catalog, error) {
	scripts, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	c := &Catalog{scripts: make(map[string]*model.Script)}
	for _, s := range scripts {
		if s == nil {
			log.Printf("catalog: skipping nil script entry")
			continue
		}
		if reason := validate(s); reason != "" {
			log.Printf("catalog: skipping script %q: %s", s.ScriptID, reason)
			continue
		}
		if _, dup := c.scripts[s.ScriptID]; dup {
			log.Printf("catalog: skipping script %q: duplicate id", s.ScriptID)
			continue
		}
		c.scripts[s.ScriptID] = s
		c.order = append(c.order, s.ScriptID)
	}

	log.Printf("catalog: loaded %d script(s)", len(c.order))
	return c, nil
}

func validate(s *model.Script) string {
	switch {
	case s == nil:
		return "nil entry"
	case s.ScriptID == "":
		return "missing scriptId"
	case s.Title == "":
		return "missing title"
	case s.MinPlayers < 1:
		return "minPlayers below 1"
	case s.MaxPlayers < s.MinPlayers:
		return "maxPlayers below minPlayers"
	case len(s.Characters) == 0:
		return "no characters"
	}
	for _, ch := range s.Characters {
		if ch.Name == "" {
			return "character with empty name"
		}
	}
	return ""
}

// Scripts returns all loaded scripts in load order.
func (c *Catalog) Scripts() []*model.Script {
	out := make([]*model.Script, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.scripts[id])
	}
	return out
}

// Script returns the script with the given id.
func (c *Catalog) Script(scriptID string) (*model.Script, error) {
	s, ok := c.scripts[scriptID]
	if !ok {
		return nil, game.ErrScriptNotFound
	}
	return s, nil
}

// Characters returns the script's roster in script order.
func (c *Catalog) Characters(scriptID string) ([]model.Character, error) {
	s, err := c.Script(scriptID)
	if err != nil {
		return nil, err
	}
	return s.Characters, nil
}

// CharacterByName returns a single character from the script's roster.
func (c *Catalog) CharacterByName(scriptID, name string) (*model.Character, error) {
	s, err := c.Script(scriptID)
	if err != nil {
		return nil, err
	}
	ch := s.CharacterByName(name)
	if ch == nil {
		return nil, game.ErrCharacterNotFound
	}
	return ch, nil
}

// MurdererCharacters returns every character flagged as a murderer. Scripts
// may designate more than one.
func (c *Catalog) MurdererCharacters(scriptID string) ([]model.Character, error) {
	s, err := c.Script(scriptID)
	if err != nil {
		return nil, err
	}
	var murderers []model.Character
	for _, ch := range s.Characters {
		if ch.IsMurderer {
			murderers = append(murderers, ch)
		}
	}
	return murderers, nil
}

// CharacterScript returns the character's text block for one round.
func (c *Catalog) CharacterScript(scriptID, name string, round model.Round) (string, error) {
	ch, err := c.CharacterByName(scriptID, name)
	if err != nil {
		return "", err
	}
	text, ok := ch.Rounds[round]
	if !ok {
		return "", game.ErrNotFound
	}
	return text, nil
}

// RoundInstructions returns the display text shown to all players for one
// round.
func (c *Catalog) RoundInstructions(scriptID string, round model.Round) (string, error) {
	s, err := c.Script(scriptID)
	if err != nil {
		return "", err
	}
	text, ok := s.RoundInstructions[round]
	if !ok {
		return "", game.ErrNotFound
	}
	return text, nil
}
