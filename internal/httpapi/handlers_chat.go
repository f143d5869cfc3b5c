package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vigneshgurumohan/agents-store/internal/chat"
	"github.com/vigneshgurumohan/agents-store/internal/otel"
	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// handleChat serves POST /api/chat: one unified chat turn in explore or
// create mode.
func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, http.StatusBadRequest, "query required")
		return
	}
	resp := a.Chat.Handle(r.Context(), req)
	mode := req.Mode
	if mode != chat.ModeCreate {
		mode = chat.ModeExplore
	}
	otel.RecordChatTurn(r.Context(), mode, resp.FallbackMode)
	writeJSON(w, resp)
}

// handleChatClear serves POST /api/chat/clear: drops the session from
// memory and deletes its chat history rows.
func (a *App) handleChatClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.SessionID == "" {
		writeJSONError(w, http.StatusBadRequest, "session_id required")
		return
	}
	if err := a.Chat.Clear(r.Context(), body.SessionID); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "session_id": body.SessionID})
}

// handleChatHistory serves GET /api/chat/history/{session}.
func (a *App) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sessionID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/chat/history/"), "/")
	if sessionID == "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	records, err := a.Chat.History(r.Context(), sessionID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"session_id": sessionID, "history": records})
}

// handleRequirements serves GET /api/requirements.
func (a *App) handleRequirements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rows, err := a.Store.ListRequirements(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, store.FillNAAll(rows))
}

// handleRequirementByID serves /api/requirements/{id} and
// /api/requirements/{id}/document. POST on the document path starts
// background generation; GET reports status, or streams the .docx
// with ?download=1 once ready.
func (a *App) handleRequirementByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/requirements/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "document" {
		a.handleRequirementDocument(w, r, id)
		return
	}
	if len(parts) != 1 {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req, err := a.Store.GetRequirement(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "requirement not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, store.FillNA(*req))
}

func (a *App) handleRequirementDocument(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		if _, err := a.Store.GetRequirement(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "requirement not found")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		a.Docs.Enqueue(id)
		writeJSONStatus(w, http.StatusAccepted, a.Docs.Status(id))
	case http.MethodGet:
		st := a.Docs.Status(id)
		if st.Status == "ready" && r.URL.Query().Get("download") == "1" {
			w.Header().Set("Content-Type",
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", id+".docx"))
			http.ServeFile(w, r, st.Path)
			return
		}
		writeJSON(w, st)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
