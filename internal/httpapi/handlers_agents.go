package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// handleAgents serves GET (list) and POST (create) on /api/agents.
func (a *App) handleAgents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		agents, err := a.Store.ListAgents(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, store.FillNAAll(agents))
	case http.MethodPost:
		var ag models.Agent
		if err := json.NewDecoder(r.Body).Decode(&ag); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(ag.AgentName) == "" {
			writeJSONError(w, http.StatusBadRequest, "agent_name required")
			return
		}
		id, err := a.Store.NextID(r.Context(), "agents")
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		ag.AgentID = id
		if ag.AdminApproved == "" {
			ag.AdminApproved = "no"
		}
		ag.CreatedAt = store.Now()
		ag.UpdatedAt = ag.CreatedAt
		if err := a.Store.CreateAgent(r.Context(), ag); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		a.Hub.Publish(Event{Type: EventAgentCreated, AgentID: id})
		writeJSONStatus(w, http.StatusCreated, ag)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleAgentByID serves /api/agents/{id}: GET returns the full detail
// join, PATCH applies a column-level update.
func (a *App) handleAgentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/agents/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		detail, err := a.agentDetail(r, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "agent not found")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, detail)
	case http.MethodPatch:
		var cols map[string]string
		if err := json.NewDecoder(r.Body).Decode(&cols); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		delete(cols, "agent_id")
		if len(cols) == 0 {
			writeJSONError(w, http.StatusBadRequest, "no columns to update")
			return
		}
		cols["updated_at"] = store.Now()
		if err := a.Store.UpdateAgent(r.Context(), id, cols); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSONError(w, http.StatusNotFound, "agent not found")
				return
			}
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.Hub.Publish(Event{Type: EventAgentUpdated, AgentID: id})
		writeJSON(w, map[string]any{"ok": true})
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// agentDetail assembles the agent page join in memory: agent plus
// capabilities, deployments (annotated with capability names), demo
// assets, documentation, and the publishing ISV.
func (a *App) agentDetail(r *http.Request, agentID string) (*models.AgentDetail, error) {
	ctx := r.Context()
	ag, err := a.Store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	caps, err := a.Store.CapabilitiesByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	capName := make(map[string]string, len(caps))
	capIDs := make(map[string]bool, len(caps))
	for _, c := range caps {
		capName[c.ByCapabilityID] = c.ByCapability
		capIDs[c.ByCapabilityID] = true
	}

	all, err := a.Store.ListDeployments(ctx)
	if err != nil {
		return nil, err
	}
	var deployments []models.Deployment
	for _, d := range all {
		if !capIDs[d.ByCapabilityID] {
			continue
		}
		d = store.FillNA(d)
		d.CapabilityName = capName[d.ByCapabilityID]
		deployments = append(deployments, d)
	}

	assets, err := a.Store.DemoAssetsByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	docs, err := a.Store.DocsByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	detail := &models.AgentDetail{
		Agent:         store.FillNA(*ag),
		Capabilities:  store.FillNAAll(caps),
		Deployments:   deployments,
		DemoAssets:    store.FillNAAll(assets),
		Documentation: store.FillNAAll(docs),
	}
	if ag.ISVID != "" {
		if isv, err := a.Store.GetISV(ctx, ag.ISVID); err == nil {
			v := store.FillNA(*isv)
			detail.ISVInfo = &v
		}
	}
	return detail, nil
}

// handleCapabilities serves GET /api/capabilities: distinct capability
// id/name pairs across the whole catalog, in first-seen order.
func (a *App) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rows, err := a.Store.ListCapabilities(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	seen := make(map[string]bool, len(rows))
	out := make([]models.Capability, 0, len(rows))
	for _, c := range rows {
		if c.ByCapabilityID == "" || seen[c.ByCapabilityID] {
			continue
		}
		seen[c.ByCapabilityID] = true
		out = append(out, models.Capability{ByCapabilityID: c.ByCapabilityID, ByCapability: c.ByCapability})
	}
	writeJSON(w, out)
}
