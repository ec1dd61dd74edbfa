package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"whodunnit/internal/catalog"
	"whodunnit/internal/model"
)

// ScriptHandler handles read-only script catalog endpoints.
type ScriptHandler struct {
	catalog *catalog.Catalog
}

// NewScriptHandler creates a new script handler.
func NewScriptHandler(cat *catalog.Catalog) *ScriptHandler {
	return &ScriptHandler{catalog: cat}
}

// List handles GET /v1/scripts.
func (h *ScriptHandler) List(w http.ResponseWriter, r *http.Request) {
	scripts := h.catalog.Scripts()

	// Roster and text stay behind the per-script endpoints.
	summaries := make([]map[string]interface{}, 0, len(scripts))
	for _, s := range scripts {
		summaries = append(summaries, map[string]interface{}{
			"scriptId":       s.ScriptID,
			"title":          s.Title,
			"minPlayers":     s.MinPlayers,
			"maxPlayers":     s.MaxPlayers,
			"numberOfRounds": s.NumberOfRounds,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"scripts": summaries})
}

// Get handles GET /v1/scripts/{scriptId}.
func (h *ScriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	script, err := h.catalog.Script(mux.Vars(r)["scriptId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, script)
}

// Characters handles GET /v1/scripts/{scriptId}/characters.
func (h *ScriptHandler) Characters(w http.ResponseWriter, r *http.Request) {
	characters, err := h.catalog.Characters(mux.Vars(r)["scriptId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"characters": characters})
}

// RoundInstructions handles GET /v1/scripts/{scriptId}/rounds/{round}.
func (h *ScriptHandler) RoundInstructions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	round := model.Round(vars["round"])

	instructions, err := h.catalog.RoundInstructions(vars["scriptId"], round)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"round":        round.String(),
		"instructions": instructions,
	})
}

// CharacterScript handles GET /v1/scripts/{scriptId}/characters/{name}/rounds/{round}.
func (h *ScriptHandler) CharacterScript(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	round := model.Round(vars["round"])

	text, err := h.catalog.CharacterScript(vars["scriptId"], vars["name"], round)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"character": vars["name"],
		"round":     round.String(),
		"text":      text,
	})
}
