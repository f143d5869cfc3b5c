package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vigneshgurumohan/agents-store/internal/otel"
	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// handleISVs serves GET (list) and POST (create) on /api/isvs.
func (a *App) handleISVs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := a.Store.ListISVs(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, store.FillNAAll(rows))
	case http.MethodPost:
		var v models.ISV
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(v.ISVName) == "" {
			writeJSONError(w, http.StatusBadRequest, "isv_name required")
			return
		}
		id, err := a.Store.NextID(r.Context(), "isv_details")
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		v.ISVID = id
		v.CreatedAt = store.Now()
		v.UpdatedAt = v.CreatedAt
		if err := a.Store.CreateISV(r.Context(), v); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSONStatus(w, http.StatusCreated, v)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleISVByID serves /api/isvs/{id} (GET, PATCH) and /api/isvs/{id}/agents.
func (a *App) handleISVByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/isvs/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "agents" {
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		agents, err := a.Store.AgentsByISV(r.Context(), id)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, store.FillNAAll(agents))
		return
	}
	if len(parts) != 1 {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		v, err := a.Store.GetISV(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "isv not found")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, store.FillNA(*v))
	case http.MethodPatch:
		a.patchRecord(w, r, "isv_id", func(cols map[string]string) error {
			return a.Store.UpdateISV(r.Context(), id, cols)
		})
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleResellers serves GET and POST on /api/resellers.
func (a *App) handleResellers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := a.Store.ListResellers(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, store.FillNAAll(rows))
	case http.MethodPost:
		var v models.Reseller
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(v.ResellerName) == "" {
			writeJSONError(w, http.StatusBadRequest, "reseller_name required")
			return
		}
		id, err := a.Store.NextID(r.Context(), "reseller_details")
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		v.ResellerID = id
		v.CreatedAt = store.Now()
		v.UpdatedAt = v.CreatedAt
		if err := a.Store.CreateReseller(r.Context(), v); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSONStatus(w, http.StatusCreated, v)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleResellerByID serves PATCH /api/resellers/{id}.
func (a *App) handleResellerByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/resellers/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPatch {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	a.patchRecord(w, r, "reseller_id", func(cols map[string]string) error {
		return a.Store.UpdateReseller(r.Context(), id, cols)
	})
}

// handleClients serves GET and POST on /api/clients.
func (a *App) handleClients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := a.Store.ListClients(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, store.FillNAAll(rows))
	case http.MethodPost:
		var v models.Client
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(v.ClientName) == "" {
			writeJSONError(w, http.StatusBadRequest, "client_name required")
			return
		}
		id, err := a.Store.NextID(r.Context(), "client_details")
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		v.ClientID = id
		v.CreatedAt = store.Now()
		v.UpdatedAt = v.CreatedAt
		if err := a.Store.CreateClient(r.Context(), v); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSONStatus(w, http.StatusCreated, v)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleClientByID serves PATCH /api/clients/{id}.
func (a *App) handleClientByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/clients/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPatch {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	a.patchRecord(w, r, "client_id", func(cols map[string]string) error {
		return a.Store.UpdateClient(r.Context(), id, cols)
	})
}

// patchRecord decodes a column map, strips the id column, stamps
// updated_at, and applies the update through fn.
func (a *App) patchRecord(w http.ResponseWriter, r *http.Request, idCol string, fn func(map[string]string) error) {
	var cols map[string]string
	if err := json.NewDecoder(r.Body).Decode(&cols); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	delete(cols, idCol)
	if len(cols) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no columns to update")
		return
	}
	cols["updated_at"] = store.Now()
	if err := fn(cols); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// handleLogin serves POST /api/auth/login.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := a.Store.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	user := store.FillNA(*u)
	user.Password = ""
	writeJSON(w, models.LoginResult{OK: true, User: &user})
}

// handleRegister serves POST /api/auth/register.
func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var u models.AuthUser
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(u.Email) == "" || u.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if existing, err := a.Store.GetUserByEmail(r.Context(), u.Email); err == nil && existing != nil {
		writeJSONError(w, http.StatusConflict, "email already registered")
		return
	}
	id, err := a.Store.NextID(r.Context(), "auth")
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	u.AuthID = id
	if u.IsActive == "" {
		u.IsActive = "yes"
	}
	u.CreatedAt = store.Now()
	if err := a.Store.CreateUser(r.Context(), u); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	u.Password = ""
	writeJSONStatus(w, http.StatusCreated, u)
}

// handleUserByEmail serves GET /api/auth/users/{email}.
func (a *App) handleUserByEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	email := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/auth/users/"), "/")
	if email == "" {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	u, err := a.Store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	user := store.FillNA(*u)
	user.Password = ""
	writeJSON(w, user)
}

// handleEnquiries serves GET (list) and POST (create) on /api/enquiries.
// New enquiries fan out to the SSE hub and any configured webhook
// capabilities.
func (a *App) handleEnquiries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := a.Store.ListEnquiries(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, store.FillNAAll(rows))
	case http.MethodPost:
		var e models.Enquiry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(e.AgentID) == "" || strings.TrimSpace(e.Email) == "" {
			writeJSONError(w, http.StatusBadRequest, "agent_id and email required")
			return
		}
		id, err := a.Store.CreateEnquiry(r.Context(), e)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		e.EnquiryID = id
		otel.RecordEnquiry(r.Context())
		a.Hub.Publish(Event{Type: EventEnquiryCreated, EnquiryID: id, AgentID: e.AgentID})
		a.notifyAll(fmt.Sprintf("New enquiry %s for agent %s from %s (%s)", id, e.AgentID, e.Name, e.Email))
		writeJSONStatus(w, http.StatusCreated, map[string]any{"enquiry_id": id, "status": models.EnquiryStatusNew})
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// notifyAll sends a message to every registered webhook capability.
// Delivery is best effort and never blocks the request.
func (a *App) notifyAll(message string) {
	if a.Capabilities == nil {
		return
	}
	for _, name := range []string{"slack", "teams"} {
		c := a.Capabilities.Get(name)
		if c == nil {
			continue
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.Notify(ctx, message); err != nil {
				slog.Warn("capability notify failed", "capability", c.Name(), "err", err)
			}
		}()
	}
}
