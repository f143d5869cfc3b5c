package store

import (
	"context"
	"errors"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface for the marketplace tables.
// Implementations: *csvstore.Store (CSV files) and *postgres.Store (PostgreSQL).
//
// Update methods take a column->value map and patch only the named
// columns; unknown columns are rejected. List methods return rows in
// storage order.
type Store interface {
	// Agents
	ListAgents(ctx context.Context) ([]models.Agent, error)
	GetAgent(ctx context.Context, agentID string) (*models.Agent, error)
	CreateAgent(ctx context.Context, a models.Agent) error
	UpdateAgent(ctx context.Context, agentID string, cols map[string]string) error
	AgentsByISV(ctx context.Context, isvID string) ([]models.Agent, error)

	// Capabilities and deployments
	ListCapabilities(ctx context.Context) ([]models.CapabilityMapping, error)
	CapabilitiesByAgent(ctx context.Context, agentID string) ([]models.CapabilityMapping, error)
	CreateCapabilities(ctx context.Context, rows []models.CapabilityMapping) error
	ListDeployments(ctx context.Context) ([]models.Deployment, error)
	CreateDeployments(ctx context.Context, rows []models.Deployment) error
	UpdateDeployment(ctx context.Context, byCapabilityID string, cols map[string]string) error

	// Demo assets and docs
	DemoAssetsByAgent(ctx context.Context, agentID string) ([]models.DemoAsset, error)
	CreateDemoAssets(ctx context.Context, rows []models.DemoAsset) error
	UpdateDemoAsset(ctx context.Context, demoAssetID string, cols map[string]string) error
	DocsByAgent(ctx context.Context, agentID string) ([]models.Doc, error)
	CreateDoc(ctx context.Context, d models.Doc) error
	UpdateDocs(ctx context.Context, agentID string, cols map[string]string) error

	// ISVs, resellers, clients
	ListISVs(ctx context.Context) ([]models.ISV, error)
	GetISV(ctx context.Context, isvID string) (*models.ISV, error)
	CreateISV(ctx context.Context, v models.ISV) error
	UpdateISV(ctx context.Context, isvID string, cols map[string]string) error
	ListResellers(ctx context.Context) ([]models.Reseller, error)
	CreateReseller(ctx context.Context, r models.Reseller) error
	UpdateReseller(ctx context.Context, resellerID string, cols map[string]string) error
	ListClients(ctx context.Context) ([]models.Client, error)
	CreateClient(ctx context.Context, c models.Client) error
	UpdateClient(ctx context.Context, clientID string, cols map[string]string) error

	// Auth
	GetUserByEmail(ctx context.Context, email string) (*models.AuthUser, error)
	CreateUser(ctx context.Context, u models.AuthUser) error
	Authenticate(ctx context.Context, email, password string) (*models.AuthUser, error)

	// Enquiries
	ListEnquiries(ctx context.Context) ([]models.Enquiry, error)
	CreateEnquiry(ctx context.Context, e models.Enquiry) (string, error)

	// Agent requirements
	ListRequirements(ctx context.Context) ([]models.AgentRequirement, error)
	GetRequirement(ctx context.Context, requirementID string) (*models.AgentRequirement, error)
	CreateRequirement(ctx context.Context, r models.AgentRequirement) (string, error)
	UpdateRequirement(ctx context.Context, requirementID string, cols map[string]string) error

	// Chat history
	ChatRecordsBySession(ctx context.Context, sessionID string) ([]models.ChatRecord, error)
	AppendChatRecord(ctx context.Context, rec models.ChatRecord) error
	DeleteChatSession(ctx context.Context, sessionID string) error

	// NextID allocates the next sequential id for the table's prefix,
	// e.g. "agent" -> agent_001, agent_002.
	NextID(ctx context.Context, table string) (string, error)

	// Lifecycle
	Health(ctx context.Context) models.Health
	SeedDemo(ctx context.Context) error
	Close() error
}
