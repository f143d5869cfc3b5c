package csvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

func openSeeded(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.SeedDemo(context.Background()); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	return s
}

func TestOpen_requiresDir(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestHealth(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	h := s.Health(context.Background())
	if h.Status != "degraded" || len(h.MissingFiles) != len(store.Tables) {
		t.Errorf("fresh dir: %+v", h)
	}

	if err := s.SeedDemo(context.Background()); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	h = s.Health(context.Background())
	if h.Status != "healthy" || len(h.MissingFiles) != 0 {
		t.Errorf("seeded: %+v", h)
	}
}

func TestSeedDemo_idempotent(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	agents, err := s.ListAgents(ctx)
	if err != nil || len(agents) != 2 {
		t.Fatalf("ListAgents: %v %v", agents, err)
	}
	if err := s.SeedDemo(ctx); err != nil {
		t.Fatalf("second SeedDemo: %v", err)
	}
	agents, _ = s.ListAgents(ctx)
	if len(agents) != 2 {
		t.Errorf("reseed duplicated rows: %d agents", len(agents))
	}
}

func TestAgentCRUD(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	id, err := s.NextID(ctx, "agents")
	if err != nil || id != "agent_003" {
		t.Fatalf("NextID: %q %v", id, err)
	}
	err = s.CreateAgent(ctx, models.Agent{AgentID: id, AgentName: "Contract Reviewer", ISVID: "isv_001", AdminApproved: "no"})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}

	got, err := s.GetAgent(ctx, "agent_003")
	if err != nil || got.AgentName != "Contract Reviewer" {
		t.Fatalf("GetAgent: %+v %v", got, err)
	}

	if err := s.UpdateAgent(ctx, "agent_003", map[string]string{"admin_approved": "yes"}); err != nil {
		t.Fatalf("UpdateAgent: %v", err)
	}
	got, _ = s.GetAgent(ctx, "agent_003")
	if got.AdminApproved != "yes" || got.AgentName != "Contract Reviewer" {
		t.Errorf("patch touched other columns: %+v", got)
	}

	if err := s.UpdateAgent(ctx, "agent_999", map[string]string{"tags": "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}
	if _, err := s.GetAgent(ctx, "agent_999"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get missing: %v", err)
	}

	byISV, err := s.AgentsByISV(ctx, "isv_001")
	if err != nil || len(byISV) != 3 {
		t.Errorf("AgentsByISV: %d %v", len(byISV), err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	if err := s.SeedDemo(ctx); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	if err := s.CreateISV(ctx, models.ISV{ISVID: "isv_002", ISVName: "Globex AI"}); err != nil {
		t.Fatalf("CreateISV: %v", err)
	}
	s.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	v, err := s2.GetISV(ctx, "isv_002")
	if err != nil || v.ISVName != "Globex AI" {
		t.Fatalf("GetISV after reopen: %+v %v", v, err)
	}
}

func TestAuthenticate(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	u, err := s.Authenticate(ctx, "admin@example.com", "admin123")
	if err != nil || u.Role != "admin" {
		t.Fatalf("Authenticate: %+v %v", u, err)
	}
	if _, err := s.Authenticate(ctx, "admin@example.com", "wrong"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Errorf("bad password: %v", err)
	}
	if _, err := s.Authenticate(ctx, "ghost@example.com", "admin123"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}

	err = s.CreateUser(ctx, models.AuthUser{AuthID: "auth_002", Email: "off@example.com", Password: "p", IsActive: "no"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.Authenticate(ctx, "off@example.com", "p"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Errorf("inactive account: %v", err)
	}
}

func TestEnquiries(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	id, err := s.CreateEnquiry(ctx, models.Enquiry{AgentID: "agent_001", Email: "buyer@example.com"})
	if err != nil || id != "enquiry_001" {
		t.Fatalf("CreateEnquiry: %q %v", id, err)
	}
	id2, _ := s.CreateEnquiry(ctx, models.Enquiry{AgentID: "agent_002", Email: "buyer@example.com"})
	if id2 != "enquiry_002" {
		t.Errorf("second id: %q", id2)
	}

	rows, err := s.ListEnquiries(ctx)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListEnquiries: %d %v", len(rows), err)
	}
	if rows[0].Status != models.EnquiryStatusNew || rows[0].CreatedAt == "" {
		t.Errorf("defaults: %+v", rows[0])
	}
}

func TestRequirements(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	id, err := s.CreateRequirement(ctx, models.AgentRequirement{SessionID: "sess1", AgentName: "Contract Reviewer"})
	if err != nil || id != "req_001" {
		t.Fatalf("CreateRequirement: %q %v", id, err)
	}
	r, err := s.GetRequirement(ctx, "req_001")
	if err != nil {
		t.Fatalf("GetRequirement: %v", err)
	}
	if r.Status != models.RequirementStatusDiscovered || r.UpdatedAt == "" {
		t.Errorf("defaults: %+v", r)
	}

	if err := s.UpdateRequirement(ctx, "req_001", map[string]string{"status": "document_generated"}); err != nil {
		t.Fatalf("UpdateRequirement: %v", err)
	}
	r, _ = s.GetRequirement(ctx, "req_001")
	if r.Status != "document_generated" {
		t.Errorf("status: %q", r.Status)
	}
}

func TestChatHistory(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	for _, q := range []string{"hi", "agents for finance"} {
		err := s.AppendChatRecord(ctx, models.ChatRecord{SessionID: "sess1", Mode: "explore", UserMessage: q})
		if err != nil {
			t.Fatalf("AppendChatRecord: %v", err)
		}
	}
	_ = s.AppendChatRecord(ctx, models.ChatRecord{SessionID: "sess2", Mode: "create", UserMessage: "build one"})

	recs, err := s.ChatRecordsBySession(ctx, "sess1")
	if err != nil || len(recs) != 2 {
		t.Fatalf("ChatRecordsBySession: %d %v", len(recs), err)
	}
	if recs[0].UserMessage != "hi" || recs[0].Status != models.ChatStatusActive {
		t.Errorf("record order/defaults: %+v", recs[0])
	}

	if err := s.DeleteChatSession(ctx, "sess1"); err != nil {
		t.Fatalf("DeleteChatSession: %v", err)
	}
	recs, _ = s.ChatRecordsBySession(ctx, "sess1")
	if len(recs) != 0 {
		t.Errorf("session survived delete: %d", len(recs))
	}
	recs, _ = s.ChatRecordsBySession(ctx, "sess2")
	if len(recs) != 1 {
		t.Errorf("other session lost: %d", len(recs))
	}
}

func TestRead_toleratesExtraColumns(t *testing.T) {
	dir := t.TempDir()
	csv := "client_id,client_name,legacy_tier,industry\nclient_001,Globex,gold,manufacturing\n"
	if err := os.WriteFile(filepath.Join(dir, "client_details.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	rows, err := s.ListClients(context.Background())
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListClients: %v %v", rows, err)
	}
	if rows[0].ClientName != "Globex" || rows[0].Industry != "manufacturing" {
		t.Errorf("decoded: %+v", rows[0])
	}

	// A rewrite emits the canonical header: known columns survive,
	// columns outside the schema do not.
	if err := s.UpdateClient(context.Background(), "client_001", map[string]string{"industry": "energy"}); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "client_details.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "legacy_tier") {
		t.Error("rewrite should emit the canonical header only")
	}
	rows, err = s.ListClients(context.Background())
	if err != nil || len(rows) != 1 || rows[0].Industry != "energy" || rows[0].ClientName != "Globex" {
		t.Fatalf("after rewrite: %+v %v", rows, err)
	}
}
