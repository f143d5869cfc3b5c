// Package client provides a Go SDK for the Agents Store HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// Client calls the Agents Store HTTP API. It is safe for concurrent use.
type Client struct {
	BaseURL    string       // e.g. "http://localhost:8080"
	APIKey     string       // optional; set for X-API-Key
	HTTPClient *http.Client // optional; nil uses http.DefaultClient
}

// New returns a client for the given base URL (e.g. "http://localhost:8080").
// APIKey is optional; when set, requests carry an X-API-Key header.
func New(baseURL, apiKey string) *Client {
	return &Client{BaseURL: baseURL, APIKey: apiKey}
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(b)
	}
	u := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	return c.client().Do(req)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error != "" {
			return fmt.Errorf("api %s %s: %s", method, path, errBody.Error)
		}
		return fmt.Errorf("api %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Health returns the /api/health report.
func (c *Client) Health(ctx context.Context) (*models.Health, error) {
	var out models.Health
	err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &out)
	return &out, err
}

// ListAgents returns the full catalog (approved and pending).
func (c *Client) ListAgents(ctx context.Context) ([]models.Agent, error) {
	var out []models.Agent
	err := c.doJSON(ctx, http.MethodGet, "/api/agents", nil, &out)
	return out, err
}

// CreateAgent registers a new agent and returns it with the assigned agent_id.
func (c *Client) CreateAgent(ctx context.Context, a models.Agent) (*models.Agent, error) {
	var out models.Agent
	err := c.doJSON(ctx, http.MethodPost, "/api/agents", a, &out)
	return &out, err
}

// UpdateAgent patches the given columns on an agent.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, cols map[string]string) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/agents/"+url.PathEscape(agentID), cols, nil)
}

// AgentDetail returns the agent page join for one agent.
func (c *Client) AgentDetail(ctx context.Context, agentID string) (*models.AgentDetail, error) {
	var out models.AgentDetail
	err := c.doJSON(ctx, http.MethodGet, "/api/agents/"+url.PathEscape(agentID), nil, &out)
	return &out, err
}

// Capabilities returns the distinct capability names across the catalog.
func (c *Client) Capabilities(ctx context.Context) ([]models.Capability, error) {
	var out []models.Capability
	err := c.doJSON(ctx, http.MethodGet, "/api/capabilities", nil, &out)
	return out, err
}

// ListISVs returns all ISVs.
func (c *Client) ListISVs(ctx context.Context) ([]models.ISV, error) {
	var out []models.ISV
	err := c.doJSON(ctx, http.MethodGet, "/api/isvs", nil, &out)
	return out, err
}

// CreateISV registers an ISV and returns it with the assigned isv_id.
func (c *Client) CreateISV(ctx context.Context, v models.ISV) (*models.ISV, error) {
	var out models.ISV
	err := c.doJSON(ctx, http.MethodPost, "/api/isvs", v, &out)
	return &out, err
}

// GetISV returns one ISV by ID.
func (c *Client) GetISV(ctx context.Context, isvID string) (*models.ISV, error) {
	var out models.ISV
	err := c.doJSON(ctx, http.MethodGet, "/api/isvs/"+url.PathEscape(isvID), nil, &out)
	return &out, err
}

// UpdateISV patches the given columns on an ISV.
func (c *Client) UpdateISV(ctx context.Context, isvID string, cols map[string]string) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/isvs/"+url.PathEscape(isvID), cols, nil)
}

// AgentsByISV returns the agents published by one ISV.
func (c *Client) AgentsByISV(ctx context.Context, isvID string) ([]models.Agent, error) {
	var out []models.Agent
	err := c.doJSON(ctx, http.MethodGet, "/api/isvs/"+url.PathEscape(isvID)+"/agents", nil, &out)
	return out, err
}

// ListResellers returns all resellers.
func (c *Client) ListResellers(ctx context.Context) ([]models.Reseller, error) {
	var out []models.Reseller
	err := c.doJSON(ctx, http.MethodGet, "/api/resellers", nil, &out)
	return out, err
}

// CreateReseller registers a reseller and returns it with the assigned reseller_id.
func (c *Client) CreateReseller(ctx context.Context, v models.Reseller) (*models.Reseller, error) {
	var out models.Reseller
	err := c.doJSON(ctx, http.MethodPost, "/api/resellers", v, &out)
	return &out, err
}

// GetReseller returns one reseller by ID.
func (c *Client) GetReseller(ctx context.Context, resellerID string) (*models.Reseller, error) {
	var out models.Reseller
	err := c.doJSON(ctx, http.MethodGet, "/api/resellers/"+url.PathEscape(resellerID), nil, &out)
	return &out, err
}

// UpdateReseller patches the given columns on a reseller.
func (c *Client) UpdateReseller(ctx context.Context, resellerID string, cols map[string]string) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/resellers/"+url.PathEscape(resellerID), cols, nil)
}

// ListClients returns all clients.
func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	err := c.doJSON(ctx, http.MethodGet, "/api/clients", nil, &out)
	return out, err
}

// CreateClient registers a client org and returns it with the assigned client_id.
func (c *Client) CreateClient(ctx context.Context, v models.Client) (*models.Client, error) {
	var out models.Client
	err := c.doJSON(ctx, http.MethodPost, "/api/clients", v, &out)
	return &out, err
}

// GetClient returns one client org by ID.
func (c *Client) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	var out models.Client
	err := c.doJSON(ctx, http.MethodGet, "/api/clients/"+url.PathEscape(clientID), nil, &out)
	return &out, err
}

// UpdateClient patches the given columns on a client org.
func (c *Client) UpdateClient(ctx context.Context, clientID string, cols map[string]string) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/clients/"+url.PathEscape(clientID), cols, nil)
}

// Login checks credentials and returns the user record (password blanked).
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out models.LoginResult
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &out)
	return &out, err
}

// Register creates a user account and returns it with the assigned user_id.
func (c *Client) Register(ctx context.Context, u models.AuthUser) (*models.AuthUser, error) {
	var out models.AuthUser
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", u, &out)
	return &out, err
}

// UserByEmail returns the user record for an email address.
func (c *Client) UserByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	var out models.AuthUser
	err := c.doJSON(ctx, http.MethodGet, "/api/auth/users/"+url.PathEscape(email), nil, &out)
	return &out, err
}

// ListEnquiries returns all enquiries.
func (c *Client) ListEnquiries(ctx context.Context) ([]models.Enquiry, error) {
	var out []models.Enquiry
	err := c.doJSON(ctx, http.MethodGet, "/api/enquiries", nil, &out)
	return out, err
}

// CreateEnquiry files an enquiry and returns the assigned enquiry_id.
func (c *Client) CreateEnquiry(ctx context.Context, e models.Enquiry) (enquiryID string, err error) {
	var out struct {
		EnquiryID string `json:"enquiry_id"`
	}
	err = c.doJSON(ctx, http.MethodPost, "/api/enquiries", e, &out)
	return out.EnquiryID, err
}

// Chat sends one chat turn (explore or create mode).
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	var out models.ChatResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &out)
	return &out, err
}

// ClearChat resets a chat session's history and create-mode state.
func (c *Client) ClearChat(ctx context.Context, sessionID string) error {
	body := map[string]string{"session_id": sessionID}
	return c.doJSON(ctx, http.MethodPost, "/api/chat/clear", body, nil)
}

// ChatHistory returns the stored transcript for a session.
func (c *Client) ChatHistory(ctx context.Context, sessionID string) ([]models.ChatRecord, error) {
	var out struct {
		History []models.ChatRecord `json:"history"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/chat/history/"+url.PathEscape(sessionID), nil, &out)
	return out.History, err
}

// ListRequirements returns all saved agent requirements.
func (c *Client) ListRequirements(ctx context.Context) ([]models.AgentRequirement, error) {
	var out []models.AgentRequirement
	err := c.doJSON(ctx, http.MethodGet, "/api/requirements", nil, &out)
	return out, err
}

// GetRequirement returns one requirement by ID.
func (c *Client) GetRequirement(ctx context.Context, reqID string) (*models.AgentRequirement, error) {
	var out models.AgentRequirement
	err := c.doJSON(ctx, http.MethodGet, "/api/requirements/"+url.PathEscape(reqID), nil, &out)
	return &out, err
}

// GenerateDocument queues BRD generation for a requirement.
func (c *Client) GenerateDocument(ctx context.Context, reqID string) (*models.DocumentStatus, error) {
	var out models.DocumentStatus
	err := c.doJSON(ctx, http.MethodPost, "/api/requirements/"+url.PathEscape(reqID)+"/document", nil, &out)
	return &out, err
}

// DocumentStatus reports BRD generation progress for a requirement.
func (c *Client) DocumentStatus(ctx context.Context, reqID string) (*models.DocumentStatus, error) {
	var out models.DocumentStatus
	err := c.doJSON(ctx, http.MethodGet, "/api/requirements/"+url.PathEscape(reqID)+"/document", nil, &out)
	return &out, err
}

// DownloadDocument fetches the generated .docx for a requirement. The
// caller must close the returned reader.
func (c *Client) DownloadDocument(ctx context.Context, reqID string) (io.ReadCloser, error) {
	path := "/api/requirements/" + url.PathEscape(reqID) + "/document?download=1"
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("api GET %s: status %d", path, resp.StatusCode)
	}
	return resp.Body, nil
}

// SignUpload returns a presigned download URL for an object key.
func (c *Client) SignUpload(ctx context.Context, key string) (signedURL string, err error) {
	var out struct {
		URL string `json:"url"`
	}
	err = c.doJSON(ctx, http.MethodGet, "/api/uploads/sign?key="+url.QueryEscape(key), nil, &out)
	return out.URL, err
}

// DeleteUpload removes an uploaded object by its public URL.
func (c *Client) DeleteUpload(ctx context.Context, fileURL string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/uploads?url="+url.QueryEscape(fileURL), nil, nil)
}
