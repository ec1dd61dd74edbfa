package model

// Character is one role in a script, with its per-round text blocks.
type Character struct {
	Name       string           `json:"name" bson:"name"`
	IsMurderer bool             `json:"isMurderer" bson:"isMurderer"`
	Rounds     map[Round]string `json:"rounds" bson:"rounds"`
}

// Script is the static content bundle defining one playable mystery:
// character roster, round text, and flow configuration. Read-only at
// runtime; loaded once into the catalog at startup.
type Script struct {
	ScriptID          string           `json:"scriptId" bson:"scriptId"`
	Title             string           `json:"title" bson:"title"`
	MinPlayers        int              `json:"minPlayers" bson:"minPlayers"`
	MaxPlayers        int              `json:"maxPlayers" bson:"maxPlayers"`
	NumberOfRounds    int              `json:"numberOfRounds" bson:"numberOfRounds"`
	RoundInstructions map[Round]string `json:"roundInstructions" bson:"roundInstructions"`
	Characters        []Character      `json:"characters" bson:"characters"`
}

// CharacterByName returns the named character, or nil if absent.
func (s *Script) CharacterByName(name string) *Character {
	for i := range s.Characters {
		if s.Characters[i].Name == name {
			return &s.Characters[i]
		}
	}
	return nil
}
