package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

func TestNew(t *testing.T) {
	c := New("http://localhost:8080", "")
	if c.BaseURL != "http://localhost:8080" || c.APIKey != "" {
		t.Errorf("New: %+v", c)
	}
	c2 := New("http://localhost:8080", "secret")
	if c2.APIKey != "secret" {
		t.Errorf("New with key: %+v", c2)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","data_source":"csv"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx := context.Background()
	h, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "healthy" || h.DataSource != "csv" {
		t.Errorf("Health: %+v", h)
	}
}

func TestHealth_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"store down"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected error from 503")
	}
	if !strings.Contains(err.Error(), "store down") {
		t.Errorf("error should carry server message: %v", err)
	}
}

func TestClient_setsAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "mykey")
	_, _ = c.Health(context.Background())
	if gotKey != "mykey" {
		t.Errorf("X-API-Key: got %q", gotKey)
	}
}

func TestAgents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/agents":
			w.Write([]byte(`[{"agent_id":"agent_001","agent_name":"Spend Analyzer"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/agents":
			var a models.Agent
			if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
				t.Errorf("decode: %v", err)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type: %s", r.Header.Get("Content-Type"))
			}
			a.AgentID = "agent_003"
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(a)
		case r.Method == http.MethodGet && r.URL.Path == "/api/agents/agent_001":
			w.Write([]byte(`{"agent":{"agent_id":"agent_001"},"capabilities":[{"capability_name":"invoice parsing"}]}`))
		case r.Method == http.MethodPatch && r.URL.Path == "/api/agents/agent_001":
			var cols map[string]string
			json.NewDecoder(r.Body).Decode(&cols)
			if cols["admin_approved"] != "yes" {
				t.Errorf("patch cols: %v", cols)
			}
			w.Write([]byte(`{"ok":true}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx := context.Background()

	agents, err := c.ListAgents(ctx)
	if err != nil || len(agents) != 1 || agents[0].AgentName != "Spend Analyzer" {
		t.Fatalf("ListAgents: %v %v", agents, err)
	}

	created, err := c.CreateAgent(ctx, models.Agent{AgentName: "Contract Reviewer"})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	if created.AgentID != "agent_003" || created.AgentName != "Contract Reviewer" {
		t.Errorf("CreateAgent: %+v", created)
	}

	detail, err := c.AgentDetail(ctx, "agent_001")
	if err != nil {
		t.Fatalf("AgentDetail: %v", err)
	}
	if detail.Agent.AgentID != "agent_001" || len(detail.Capabilities) != 1 {
		t.Errorf("AgentDetail: %+v", detail)
	}

	if err := c.UpdateAgent(ctx, "agent_001", map[string]string{"admin_approved": "yes"}); err != nil {
		t.Fatalf("UpdateAgent: %v", err)
	}
}

func TestDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/isvs/isv_001/agents":
			w.Write([]byte(`[{"agent_id":"agent_001"},{"agent_id":"agent_002"}]`))
		case "/api/isvs/isv_001":
			w.Write([]byte(`{"isv_id":"isv_001","isv_name":"Acme Intelligence"}`))
		case "/api/resellers":
			w.Write([]byte(`[{"reseller_id":"reseller_001"}]`))
		case "/api/clients/client_001":
			w.Write([]byte(`{"client_id":"client_001","client_name":"Globex"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx := context.Background()

	v, err := c.GetISV(ctx, "isv_001")
	if err != nil || v.ISVName != "Acme Intelligence" {
		t.Fatalf("GetISV: %+v %v", v, err)
	}
	agents, err := c.AgentsByISV(ctx, "isv_001")
	if err != nil || len(agents) != 2 {
		t.Fatalf("AgentsByISV: %v %v", agents, err)
	}
	rs, err := c.ListResellers(ctx)
	if err != nil || len(rs) != 1 {
		t.Fatalf("ListResellers: %v %v", rs, err)
	}
	cl, err := c.GetClient(ctx, "client_001")
	if err != nil || cl.ClientName != "Globex" {
		t.Fatalf("GetClient: %+v %v", cl, err)
	}
}

func TestAuthAndEnquiries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "pass123" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid credentials"}`))
				return
			}
			w.Write([]byte(`{"ok":true,"user":{"email":"ana@example.com"}}`))
		case "/api/auth/users/ana@example.com":
			w.Write([]byte(`{"email":"ana@example.com","role":"client"}`))
		case "/api/enquiries":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"enquiry_id":"enquiry_001","status":"new"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx := context.Background()

	res, err := c.Login(ctx, "ana@example.com", "pass123")
	if err != nil || !res.OK || res.User.Email != "ana@example.com" {
		t.Fatalf("Login: %+v %v", res, err)
	}
	if _, err := c.Login(ctx, "ana@example.com", "wrong"); err == nil {
		t.Fatal("Login with bad password should fail")
	}

	u, err := c.UserByEmail(ctx, "ana@example.com")
	if err != nil || u.Role != "client" {
		t.Fatalf("UserByEmail: %+v %v", u, err)
	}

	id, err := c.CreateEnquiry(ctx, models.Enquiry{AgentID: "agent_001", Email: "ana@example.com"})
	if err != nil || id != "enquiry_001" {
		t.Fatalf("CreateEnquiry: %q %v", id, err)
	}
}

func TestChatAndRequirements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/chat":
			var req models.ChatRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Query != "agents for finance" {
				t.Errorf("chat query: %q", req.Query)
			}
			w.Write([]byte(`{"response":"Found these.","session_id":"sess1","filtered_agents":["Spend Analyzer"]}`))
		case "/api/chat/clear":
			w.Write([]byte(`{"ok":true,"session_id":"sess1"}`))
		case "/api/chat/history/sess1":
			w.Write([]byte(`{"session_id":"sess1","history":[{"user_message":"agents for finance"}]}`))
		case "/api/requirements/req_001/document":
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusAccepted)
			}
			w.Write([]byte(`{"requirement_id":"req_001","status":"pending"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx := context.Background()

	resp, err := c.Chat(ctx, models.ChatRequest{Query: "agents for finance", SessionID: "sess1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.SessionID != "sess1" || len(resp.FilteredAgents) != 1 {
		t.Errorf("Chat: %+v", resp)
	}

	hist, err := c.ChatHistory(ctx, "sess1")
	if err != nil || len(hist) != 1 {
		t.Fatalf("ChatHistory: %v %v", hist, err)
	}
	if err := c.ClearChat(ctx, "sess1"); err != nil {
		t.Fatalf("ClearChat: %v", err)
	}

	st, err := c.GenerateDocument(ctx, "req_001")
	if err != nil || st.Status != "pending" {
		t.Fatalf("GenerateDocument: %+v %v", st, err)
	}
	st, err = c.DocumentStatus(ctx, "req_001")
	if err != nil || st.RequirementID != "req_001" {
		t.Fatalf("DocumentStatus: %+v %v", st, err)
	}
}

func TestDownloadDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("download") != "1" {
			t.Errorf("missing download=1: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Write([]byte("PK\x03\x04docx-bytes"))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	rc, err := c.DownloadDocument(context.Background(), "req_001")
	if err != nil {
		t.Fatalf("DownloadDocument: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if !strings.HasPrefix(string(b), "PK") {
		t.Errorf("document bytes: %q", b)
	}
}

func TestUploads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/uploads/sign":
			if r.URL.Query().Get("key") != "demos/u/video.mp4" {
				t.Errorf("sign key: %q", r.URL.Query().Get("key"))
			}
			w.Write([]byte(`{"url":"https://s3.example.com/signed","expires_in":3600}`))
		case "/api/uploads":
			if r.Method != http.MethodDelete {
				t.Errorf("method: %s", r.Method)
			}
			w.Write([]byte(`{"ok":true,"key":"demos/u/video.mp4"}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ctx := context.Background()

	signed, err := c.SignUpload(ctx, "demos/u/video.mp4")
	if err != nil || signed != "https://s3.example.com/signed" {
		t.Fatalf("SignUpload: %q %v", signed, err)
	}
	if err := c.DeleteUpload(ctx, "https://bucket.s3.example.com/demos/u/video.mp4"); err != nil {
		t.Fatalf("DeleteUpload: %v", err)
	}
}
