package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// newTestApp builds an app over a fresh CSV store with the LLM and
// object store unconfigured, so chat and uploads exercise their
// fallback paths.
func newTestApp(t *testing.T, opts ServerOptions) (*App, *httptest.Server) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("S3_BUCKET", "")
	if opts.Home == "" {
		opts.Home = t.TempDir()
	}
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	app, err := NewApp(opts)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	ts := httptest.NewServer(app.Server.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = app.Store.Close() })
	return app, ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, v any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

// TestHandlers_catalog exercises the agent catalog routes over the
// seeded demo data.
func TestHandlers_catalog(t *testing.T) {
	_, ts := newTestApp(t, ServerOptions{})

	var agents []models.Agent
	if code := getJSON(t, ts.URL+"/api/agents", &agents); code != http.StatusOK {
		t.Fatalf("GET /api/agents: %d", code)
	}
	if len(agents) != 2 {
		t.Fatalf("seeded agents: got %d, want 2", len(agents))
	}

	// Missing values come back as "na", never empty.
	for _, a := range agents {
		if a.ImageURL == "" {
			t.Errorf("agent %s: empty image_url leaked through", a.AgentID)
		}
	}

	var created models.Agent
	code := postJSON(t, ts.URL+"/api/agents",
		`{"agent_name":"Invoice Copilot","description":"Automates AP","isv_id":"isv_001","tags":"finance"}`, &created)
	if code != http.StatusCreated {
		t.Fatalf("POST /api/agents: %d", code)
	}
	if created.AgentID != "agent_003" {
		t.Errorf("allocated id: got %q, want agent_003", created.AgentID)
	}
	if created.AdminApproved != "no" {
		t.Errorf("default admin_approved: got %q", created.AdminApproved)
	}
	if created.CreatedAt == "" || created.UpdatedAt == "" {
		t.Error("expected timestamps on create")
	}

	if code := postJSON(t, ts.URL+"/api/agents", `{"agent_name":""}`, nil); code != http.StatusBadRequest {
		t.Errorf("POST empty name: %d", code)
	}

	// PATCH one column then verify through the detail join.
	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/api/agents/agent_003",
		strings.NewReader(`{"admin_approved":"yes"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PATCH agent: %d", resp.StatusCode)
	}

	var detail models.AgentDetail
	if code := getJSON(t, ts.URL+"/api/agents/agent_001", &detail); code != http.StatusOK {
		t.Fatalf("GET detail: %d", code)
	}
	if detail.Agent.AgentName != "Spend Analyzer" {
		t.Errorf("detail agent: %q", detail.Agent.AgentName)
	}
	if len(detail.Capabilities) == 0 {
		t.Error("detail: no capabilities")
	}
	for _, d := range detail.Deployments {
		if d.CapabilityName == "" {
			t.Errorf("deployment %s: capability_name not annotated", d.ByCapabilityID)
		}
	}
	if detail.ISVInfo == nil || detail.ISVInfo.ISVName != "Acme Intelligence" {
		t.Errorf("detail isv_info: %+v", detail.ISVInfo)
	}

	if code := getJSON(t, ts.URL+"/api/agents/agent_999", nil); code != http.StatusNotFound {
		t.Errorf("GET missing agent: %d", code)
	}

	var caps []models.Capability
	if code := getJSON(t, ts.URL+"/api/capabilities", &caps); code != http.StatusOK {
		t.Fatalf("GET /api/capabilities: %d", code)
	}
	seen := map[string]bool{}
	for _, c := range caps {
		if seen[c.ByCapabilityID] {
			t.Errorf("duplicate capability %s", c.ByCapabilityID)
		}
		seen[c.ByCapabilityID] = true
	}
}

// TestHandlers_directory exercises ISVs, resellers, clients, auth, and
// enquiries.
func TestHandlers_directory(t *testing.T) {
	_, ts := newTestApp(t, ServerOptions{})

	var isvs []models.ISV
	if code := getJSON(t, ts.URL+"/api/isvs", &isvs); code != http.StatusOK || len(isvs) != 1 {
		t.Fatalf("GET /api/isvs: code=%d len=%d", code, len(isvs))
	}
	var isv models.ISV
	if code := getJSON(t, ts.URL+"/api/isvs/isv_001", &isv); code != http.StatusOK {
		t.Fatalf("GET isv: %d", code)
	}
	var isvAgents []models.Agent
	if code := getJSON(t, ts.URL+"/api/isvs/isv_001/agents", &isvAgents); code != http.StatusOK || len(isvAgents) != 2 {
		t.Fatalf("GET isv agents: code=%d len=%d", code, len(isvAgents))
	}

	var reseller models.Reseller
	code := postJSON(t, ts.URL+"/api/resellers", `{"reseller_name":"North Channel","regions":"EMEA"}`, &reseller)
	if code != http.StatusCreated || reseller.ResellerID != "reseller_001" {
		t.Fatalf("POST reseller: code=%d id=%q", code, reseller.ResellerID)
	}

	var client models.Client
	code = postJSON(t, ts.URL+"/api/clients", `{"client_name":"Globex","industry":"retail"}`, &client)
	if code != http.StatusCreated || client.ClientID != "client_001" {
		t.Fatalf("POST client: code=%d id=%q", code, client.ClientID)
	}

	// Register, duplicate register, login wrong and right.
	var user models.AuthUser
	code = postJSON(t, ts.URL+"/api/auth/register", `{"email":"buyer@example.com","password":"hunter2","role":"client"}`, &user)
	if code != http.StatusCreated {
		t.Fatalf("register: %d", code)
	}
	if user.Password != "" {
		t.Error("register response leaked password")
	}
	if code = postJSON(t, ts.URL+"/api/auth/register", `{"email":"buyer@example.com","password":"x"}`, nil); code != http.StatusConflict {
		t.Errorf("duplicate register: %d", code)
	}
	if code = postJSON(t, ts.URL+"/api/auth/login", `{"email":"buyer@example.com","password":"wrong"}`, nil); code != http.StatusUnauthorized {
		t.Errorf("bad login: %d", code)
	}
	var login models.LoginResult
	if code = postJSON(t, ts.URL+"/api/auth/login", `{"email":"buyer@example.com","password":"hunter2"}`, &login); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
	if !login.OK || login.User == nil || login.User.Password != "" {
		t.Errorf("login result: %+v", login)
	}

	var fetched models.AuthUser
	if code = getJSON(t, ts.URL+"/api/auth/users/buyer@example.com", &fetched); code != http.StatusOK {
		t.Fatalf("GET user: %d", code)
	}
	if fetched.Password != "" {
		t.Error("user lookup leaked password")
	}

	var enquiry map[string]any
	code = postJSON(t, ts.URL+"/api/enquiries",
		`{"agent_id":"agent_001","name":"Pat","email":"pat@globex.com","message":"pricing?"}`, &enquiry)
	if code != http.StatusCreated {
		t.Fatalf("POST enquiry: %d", code)
	}
	if enquiry["enquiry_id"] != "enquiry_001" || enquiry["status"] != models.EnquiryStatusNew {
		t.Errorf("enquiry response: %v", enquiry)
	}
	var enquiries []models.Enquiry
	if code = getJSON(t, ts.URL+"/api/enquiries", &enquiries); code != http.StatusOK || len(enquiries) != 1 {
		t.Fatalf("GET enquiries: code=%d len=%d", code, len(enquiries))
	}
}

// TestHandlers_chatFallback drives explore and create modes with no
// LLM configured.
func TestHandlers_chatFallback(t *testing.T) {
	_, ts := newTestApp(t, ServerOptions{})

	var resp models.ChatResponse
	code := postJSON(t, ts.URL+"/api/chat", `{"query":"I need help with finance and spend analysis"}`, &resp)
	if code != http.StatusOK {
		t.Fatalf("POST /api/chat: %d", code)
	}
	if !resp.FallbackMode {
		t.Error("expected fallback_mode with no LLM configured")
	}
	if resp.SessionID == "" {
		t.Error("expected a minted session_id")
	}
	found := false
	for _, name := range resp.FilteredAgents {
		if name == "Spend Analyzer" {
			found = true
		}
	}
	if !found {
		t.Errorf("filtered_agents: %v", resp.FilteredAgents)
	}

	// Create mode asks staged questions and counts them.
	var create models.ChatResponse
	code = postJSON(t, ts.URL+"/api/chat", `{"query":"I want to build an agent","mode":"create"}`, &create)
	if code != http.StatusOK {
		t.Fatalf("POST create chat: %d", code)
	}
	if create.QuestionCount == nil || *create.QuestionCount != 1 {
		t.Errorf("question_count: %v", create.QuestionCount)
	}

	if code = postJSON(t, ts.URL+"/api/chat", `{"query":""}`, nil); code != http.StatusBadRequest {
		t.Errorf("empty query: %d", code)
	}

	var history struct {
		SessionID string              `json:"session_id"`
		History   []models.ChatRecord `json:"history"`
	}
	if code = getJSON(t, ts.URL+"/api/chat/history/"+resp.SessionID, &history); code != http.StatusOK {
		t.Fatalf("GET history: %d", code)
	}
	if len(history.History) != 1 {
		t.Errorf("history length: %d", len(history.History))
	}

	if code = postJSON(t, ts.URL+"/api/chat/clear", `{"session_id":"`+resp.SessionID+`"}`, nil); code != http.StatusOK {
		t.Fatalf("POST clear: %d", code)
	}
	if code = getJSON(t, ts.URL+"/api/chat/history/"+resp.SessionID, &history); code != http.StatusOK {
		t.Fatalf("GET history after clear: %d", code)
	}
	if len(history.History) != 0 {
		t.Errorf("history after clear: %d records", len(history.History))
	}
}

// TestHandlers_uploadsDisabled verifies upload routes degrade cleanly
// when no bucket is configured.
func TestHandlers_uploadsDisabled(t *testing.T) {
	_, ts := newTestApp(t, ServerOptions{})

	var buf bytes.Buffer
	resp, err := http.Post(ts.URL+"/api/uploads/demo_assets", "multipart/form-data; boundary=x", &buf)
	if err != nil {
		t.Fatalf("POST upload: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("upload with no bucket: %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/uploads/nosuchfolder", "multipart/form-data; boundary=x", &buf)
	if err != nil {
		t.Fatalf("POST upload: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("upload to unknown folder: %d", resp.StatusCode)
	}

	if code := getJSON(t, ts.URL+"/api/uploads/sign?key=demos/x/1.png", nil); code != http.StatusServiceUnavailable {
		t.Errorf("sign with no bucket: %d", code)
	}
}

// TestAPIKeyMiddleware checks enforcement and the health/metrics
// exemptions.
func TestAPIKeyMiddleware(t *testing.T) {
	_, ts := newTestApp(t, ServerOptions{APIKey: "sekrit"})

	resp, err := http.Get(ts.URL + "/api/agents")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key: %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/agents", nil)
	req.Header.Set("X-API-Key", "sekrit")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with header: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("header key: %d", resp.StatusCode)
	}

	if code := getJSON(t, ts.URL+"/api/agents?api_key=sekrit", nil); code != http.StatusOK {
		t.Errorf("query key: %d", code)
	}
	if code := getJSON(t, ts.URL+"/api/health", nil); code != http.StatusOK {
		t.Errorf("health exempt: %d", code)
	}
	if code := getJSON(t, ts.URL+"/metrics", nil); code != http.StatusOK {
		t.Errorf("metrics exempt: %d", code)
	}
}

// TestPages serves the embedded frontend with name substitution.
func TestPages(t *testing.T) {
	_, ts := newTestApp(t, ServerOptions{})

	resp, err := http.Get(ts.URL + "/agents")
	if err != nil {
		t.Fatalf("GET /agents: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Agents Store") {
		t.Errorf("marketplace page: code=%d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/agent/Spend%20Analyzer")
	if err != nil {
		t.Fatalf("GET /agent: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), "Spend Analyzer") {
		t.Error("agent page missing substituted name")
	}

	resp, err = http.Get(ts.URL + "/agent/" + "%3Cscript%3E")
	if err != nil {
		t.Fatalf("GET /agent escaped: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), "&lt;script&gt;") {
		t.Error("agent page did not escape the name")
	}
}
