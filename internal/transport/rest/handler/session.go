package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"whodunnit/internal/model"
	"whodunnit/internal/service"
	"whodunnit/internal/transport/rest/middleware"
)

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	sessionSvc *service.SessionService
	authSvc    *service.AuthService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessionSvc *service.SessionService, authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		authSvc:    authSvc,
	}
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	ScriptID string `json:"scriptId"`
	HostID   string `json:"hostId,omitempty"`
	HostName string `json:"hostName"`
}

// CreateSessionResponse is returned after a session is created.
type CreateSessionResponse struct {
	Code   string         `json:"code"`
	HostID string         `json:"hostId"`
	Token  string         `json:"token"`
	Host   *model.Player  `json:"host"`
	State  *model.Session `json:"session"`
}

// Create handles POST /v1/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HostName == "" {
		writeError(w, http.StatusBadRequest, "hostName is required")
		return
	}

	session, host, err := h.sessionSvc.CreateSession(r.Context(), req.HostID, req.HostName, req.ScriptID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.authSvc.IssueHostToken(session.Code, host.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		Code:   session.Code,
		HostID: host.ID,
		Token:  token,
		Host:   host,
		State:  session,
	})
}

// Get handles GET /v1/sessions/{code}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	snapshot, err := h.sessionSvc.Snapshot(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// JoinRequest is the request body for joining a session.
type JoinRequest struct {
	Name     string `json:"name"`
	PlayerID string `json:"playerId,omitempty"`
}

// JoinResponse is returned when a player joins a session.
type JoinResponse struct {
	PlayerID string                 `json:"playerId"`
	Token    string                 `json:"token"`
	Snapshot *model.SessionSnapshot `json:"snapshot"`
}

// Join handles POST /v1/sessions/{code}/join.
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" && req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	snapshot, player, err := h.sessionSvc.JoinSession(r.Context(), code, req.PlayerID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.authSvc.IssuePlayerToken(code, player.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, JoinResponse{
		PlayerID: player.ID,
		Token:    token,
		Snapshot: snapshot,
	})
}

// AssignCharacterRequest is the request body for choosing a character.
type AssignCharacterRequest struct {
	CharacterName string `json:"characterName"`
}

// AssignCharacter handles PUT /v1/sessions/{code}/character.
func (h *SessionHandler) AssignCharacter(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())
	if middleware.GetSessionCode(r.Context()) != code {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	var req AssignCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessionSvc.AssignCharacter(r.Context(), code, playerID, req.CharacterName); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"characterName": req.CharacterName})
}

// AddVirtualPlayerRequest is the request body for adding a stand-in.
type AddVirtualPlayerRequest struct {
	CharacterName string `json:"characterName"`
}

// AddVirtualPlayer handles POST /v1/sessions/{code}/virtual-players.
func (h *SessionHandler) AddVirtualPlayer(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if middleware.GetSessionCode(r.Context()) != code {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	var req AddVirtualPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player, err := h.sessionSvc.AddVirtualPlayer(r.Context(), code, req.CharacterName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, player)
}

// RemoveVirtualPlayer handles DELETE /v1/sessions/{code}/virtual-players/{playerId}.
func (h *SessionHandler) RemoveVirtualPlayer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]
	if middleware.GetSessionCode(r.Context()) != code {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	if err := h.sessionSvc.RemoveVirtualPlayer(r.Context(), code, vars["playerId"]); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"removed": vars["playerId"]})
}

// Leave handles DELETE /v1/sessions/{code}/players/{playerId}.
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := vars["code"]
	playerID := vars["playerId"]

	// Players remove only themselves.
	if middleware.GetSessionCode(r.Context()) != code || middleware.GetPlayerID(r.Context()) != playerID {
		writeError(w, http.StatusForbidden, "token not valid for this player")
		return
	}

	if err := h.sessionSvc.LeaveSession(r.Context(), code, playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"left": playerID})
}

// Delete handles DELETE /v1/sessions/{code} (soft delete).
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if middleware.GetSessionCode(r.Context()) != code {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	if err := h.sessionSvc.DeleteSession(r.Context(), code); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.SessionDeleted)})
}
