package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"whodunnit/internal/model"
	"whodunnit/internal/service"
	"whodunnit/internal/transport/rest/middleware"
)

// GameHandler handles round progression endpoints.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

func sessionScoped(r *http.Request) (string, bool) {
	code := mux.Vars(r)["code"]
	return code, middleware.GetSessionCode(r.Context()) == code
}

// Start handles POST /v1/sessions/{code}/start (host only).
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	code, ok := sessionScoped(r)
	if !ok {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	snapshot, err := h.gameSvc.StartGame(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// Advance handles POST /v1/sessions/{code}/advance (host only).
func (h *GameHandler) Advance(w http.ResponseWriter, r *http.Request) {
	code, ok := sessionScoped(r)
	if !ok {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	snapshot, err := h.gameSvc.AdvanceRound(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// ReadyRequest is the request body for a readiness write. The host may set
// PlayerID to force any player's flag; players may only set their own.
type ReadyRequest struct {
	Round    model.Round `json:"round"`
	Ready    bool        `json:"ready"`
	PlayerID string      `json:"playerId,omitempty"`
}

// Ready handles POST /v1/sessions/{code}/ready.
func (h *GameHandler) Ready(w http.ResponseWriter, r *http.Request) {
	code, ok := sessionScoped(r)
	if !ok {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	var req ReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playerID := middleware.GetPlayerID(r.Context())
	if playerID == "" {
		// Host token: override any player's readiness.
		playerID = req.PlayerID
	} else if req.PlayerID != "" && req.PlayerID != playerID {
		writeError(w, http.StatusForbidden, "players can only set their own readiness")
		return
	}
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	if err := h.gameSvc.SetReady(r.Context(), code, playerID, req.Round, req.Ready); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"round": req.Round,
		"ready": req.Ready,
	})
}

// AccuseRequest is the request body for submitting an accusation.
type AccuseRequest struct {
	AccusedCharacter string `json:"accusedCharacter"`
}

// Accuse handles POST /v1/sessions/{code}/accusations.
func (h *GameHandler) Accuse(w http.ResponseWriter, r *http.Request) {
	code, ok := sessionScoped(r)
	if !ok {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}
	playerID := middleware.GetPlayerID(r.Context())

	var req AccuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.SubmitAccusation(r.Context(), code, playerID, req.AccusedCharacter); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"accusedCharacter": req.AccusedCharacter})
}

// Accusations handles GET /v1/sessions/{code}/accusations.
func (h *GameHandler) Accusations(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	status, err := h.gameSvc.AccusationStatus(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	totals, err := h.gameSvc.VoteTotals(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"voteTotals": totals,
	})
}
