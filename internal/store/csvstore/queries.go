package csvstore

import (
	"context"

	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// Agents

func (s *Store) ListAgents(ctx context.Context) ([]models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[models.Agent](s, "agents")
}

func (s *Store) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return firstLocked[models.Agent](s, "agents", "agent_id", agentID)
}

func (s *Store) CreateAgent(ctx context.Context, a models.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "agents", []models.Agent{a})
}

func (s *Store) UpdateAgent(ctx context.Context, agentID string, cols map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := updateLocked[models.Agent](s, "agents", "agent_id", agentID, cols)
	return err
}

func (s *Store) AgentsByISV(ctx context.Context, isvID string) ([]models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterLocked[models.Agent](s, "agents", "isv_id", isvID)
}

// Capabilities and deployments

func (s *Store) ListCapabilities(ctx context.Context) ([]models.CapabilityMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[models.CapabilityMapping](s, "capabilities_mapping")
}

func (s *Store) CapabilitiesByAgent(ctx context.Context, agentID string) ([]models.CapabilityMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterLocked[models.CapabilityMapping](s, "capabilities_mapping", "agent_id", agentID)
}

func (s *Store) CreateCapabilities(ctx context.Context, rows []models.CapabilityMapping) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "capabilities_mapping", rows)
}

func (s *Store) ListDeployments(ctx context.Context) ([]models.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[models.Deployment](s, "deployments")
}

func (s *Store) CreateDeployments(ctx context.Context, rows []models.Deployment) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "deployments", rows)
}

func (s *Store) UpdateDeployment(ctx context.Context, byCapabilityID string, cols map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := updateLocked[models.Deployment](s, "deployments", "by_capability_id", byCapabilityID, cols)
	return err
}

// Demo assets and docs

func (s *Store) DemoAssetsByAgent(ctx context.Context, agentID string) ([]models.DemoAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterLocked[models.DemoAsset](s, "demo_assets", "agent_id", agentID)
}

func (s *Store) CreateDemoAssets(ctx context.Context, rows []models.DemoAsset) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "demo_assets", rows)
}

func (s *Store) UpdateDemoAsset(ctx context.Context, demoAssetID string, cols map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := updateLocked[models.DemoAsset](s, "demo_assets", "demo_asset_id", demoAssetID, cols)
	return err
}

func (s *Store) DocsByAgent(ctx context.Context, agentID string) ([]models.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterLocked[models.Doc](s, "docs", "agent_id", agentID)
}

func (s *Store) CreateDoc(ctx context.Context, d models.Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "docs", []models.Doc{d})
}

func (s *Store) UpdateDocs(ctx context.Context, agentID string, cols map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := updateLocked[models.Doc](s, "docs", "agent_id", agentID, cols)
	return err
}

// ISVs, resellers, clients

func (s *Store) ListISVs(ctx context.Context) ([]models.ISV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[models.ISV](s, "isv_details")
}

func (s *Store) GetISV(ctx context.Context, isvID string) (*models.ISV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return firstLocked[models.ISV](s, "isv_details", "isv_id", isvID)
}

func (s *Store) CreateISV(ctx context.Context, v models.ISV) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "isv_details", []models.ISV{v})
}

func (s *Store) UpdateISV(ctx context.Context, isvID string, cols map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := updateLocked[models.ISV](s, "isv_details", "isv_id", isvID, cols)
	return err
}

func (s *Store) ListResellers(ctx context.Context) ([]models.Reseller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[models.Reseller](s, "reseller_details")
}

func (s *Store) CreateReseller(ctx context.Context, r models.Reseller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "reseller_details", []models.Reseller{r})
}

func (s *Store) UpdateReseller(ctx context.Context, resellerID string, cols map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := updateLocked[models.Reseller](s, "reseller_details", "reseller_id", resellerID, cols)
	return err
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[models.Client](s, "client_details")
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "client_details", []models.Client{c})
}

func (s *Store) UpdateClient(ctx context.Context, clientID string, cols map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := updateLocked[models.Client](s, "client_details", "client_id", clientID, cols)
	return err
}

// Auth

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return firstLocked[models.AuthUser](s, "auth", "email", email)
}

func (s *Store) CreateUser(ctx context.Context, u models.AuthUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendLocked(s, "auth", []models.AuthUser{u})
}

// Authenticate compares the stored password verbatim and requires an
// active account. All failures collapse to ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.AuthUser, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, store.ErrInvalidCredentials
	}
	if u.Password != password || u.IsActive != "yes" {
		return nil, store.ErrInvalidCredentials
	}
	return u, nil
}

// Enquiries

func (s *Store) ListEnquiries(ctx context.Context) ([]models.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[models.Enquiry](s, "enquiries")
}

func (s *Store) CreateEnquiry(ctx context.Context, e models.Enquiry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.nextIDLocked("enquiries")
	if err != nil {
		return "", err
	}
	e.EnquiryID = id
	if e.Status == "" {
		e.Status = models.EnquiryStatusNew
	}
	if e.CreatedAt == "" {
		e.CreatedAt = store.Now()
	}
	return id, appendLocked(s, "enquiries", []models.Enquiry{e})
}

// Agent requirements

func (s *Store) ListRequirements(ctx context.Context) ([]models.AgentRequirement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readLocked[models.AgentRequirement](s, "agent_requirements")
}

func (s *Store) GetRequirement(ctx context.Context, requirementID string) (*models.AgentRequirement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return firstLocked[models.AgentRequirement](s, "agent_requirements", "requirement_id", requirementID)
}

func (s *Store) CreateRequirement(ctx context.Context, r models.AgentRequirement) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.nextIDLocked("agent_requirements")
	if err != nil {
		return "", err
	}
	r.RequirementID = id
	if r.Status == "" {
		r.Status = models.RequirementStatusDiscovered
	}
	now := store.Now()
	if r.CreatedAt == "" {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return id, appendLocked(s, "agent_requirements", []models.AgentRequirement{r})
}

func (s *Store) UpdateRequirement(ctx context.Context, requirementID string, cols map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := updateLocked[models.AgentRequirement](s, "agent_requirements", "requirement_id", requirementID, cols)
	return err
}

// Chat history

func (s *Store) ChatRecordsBySession(ctx context.Context, sessionID string) ([]models.ChatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterLocked[models.ChatRecord](s, "chat_history", "session_id", sessionID)
}

func (s *Store) AppendChatRecord(ctx context.Context, rec models.ChatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := store.Now()
	if rec.Status == "" {
		rec.Status = models.ChatStatusActive
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	return appendLocked(s, "chat_history", []models.ChatRecord{rec})
}

func (s *Store) DeleteChatSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteLocked[models.ChatRecord](s, "chat_history", "session_id", sessionID)
}
