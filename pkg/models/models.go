// Package models provides shared types for the marketplace HTTP API and external tools.
// These types mirror the API JSON and are stable for use by pkg/client and other consumers.
package models

// Record statuses stamped by the store on create.
const (
	EnquiryStatusNew            = "new"
	RequirementStatusDiscovered = "discovered"
	ChatStatusActive            = "active"
)

// NA is the placeholder returned for missing tabular values.
const NA = "na"

// Agent is a catalog entry published by an ISV.
type Agent struct {
	AgentID       string `json:"agent_id" csv:"agent_id"`
	AgentName     string `json:"agent_name" csv:"agent_name"`
	Description   string `json:"description" csv:"description"`
	ByPersona     string `json:"by_persona" csv:"by_persona"`
	ByValue       string `json:"by_value" csv:"by_value"`
	Features      string `json:"features" csv:"features"`
	Tags          string `json:"tags" csv:"tags"`
	ISVID         string `json:"isv_id" csv:"isv_id"`
	AdminApproved string `json:"admin_approved" csv:"admin_approved"`
	ImageURL      string `json:"image_url" csv:"image_url"`
	CreatedAt     string `json:"created_at" csv:"created_at"`
	UpdatedAt     string `json:"updated_at" csv:"updated_at"`
}

// ISV is an independent software vendor that publishes agents.
type ISV struct {
	ISVID        string `json:"isv_id" csv:"isv_id"`
	ISVName      string `json:"isv_name" csv:"isv_name"`
	Description  string `json:"description" csv:"description"`
	Website      string `json:"website" csv:"website"`
	ContactEmail string `json:"contact_email" csv:"contact_email"`
	LogoURL      string `json:"logo_url" csv:"logo_url"`
	MouURL       string `json:"mou_url" csv:"mou_url"`
	CreatedAt    string `json:"created_at" csv:"created_at"`
	UpdatedAt    string `json:"updated_at" csv:"updated_at"`
}

// Reseller distributes agents to clients.
type Reseller struct {
	ResellerID   string `json:"reseller_id" csv:"reseller_id"`
	ResellerName string `json:"reseller_name" csv:"reseller_name"`
	Description  string `json:"description" csv:"description"`
	Website      string `json:"website" csv:"website"`
	ContactEmail string `json:"contact_email" csv:"contact_email"`
	Regions      string `json:"regions" csv:"regions"`
	CreatedAt    string `json:"created_at" csv:"created_at"`
	UpdatedAt    string `json:"updated_at" csv:"updated_at"`
}

// Client is an end customer organization.
type Client struct {
	ClientID     string `json:"client_id" csv:"client_id"`
	ClientName   string `json:"client_name" csv:"client_name"`
	Industry     string `json:"industry" csv:"industry"`
	ContactEmail string `json:"contact_email" csv:"contact_email"`
	CreatedAt    string `json:"created_at" csv:"created_at"`
	UpdatedAt    string `json:"updated_at" csv:"updated_at"`
}

// CapabilityMapping links an agent to one of its capabilities.
type CapabilityMapping struct {
	AgentID        string `json:"agent_id" csv:"agent_id"`
	ByCapabilityID string `json:"by_capability_id" csv:"by_capability_id"`
	ByCapability   string `json:"by_capability" csv:"by_capability"`
}

// Deployment is a deployed service backing a capability. CapabilityName
// is filled in by the agent-detail join and never stored.
type Deployment struct {
	ByCapabilityID string `json:"by_capability_id" csv:"by_capability_id"`
	DeploymentName string `json:"deployment_name" csv:"deployment_name"`
	DeploymentURL  string `json:"deployment_url" csv:"deployment_url"`
	Environment    string `json:"environment" csv:"environment"`
	Notes          string `json:"notes" csv:"notes"`
	CapabilityName string `json:"capability_name,omitempty" csv:"-"`
}

// DemoAsset is a demo video, image, or document attached to an agent.
type DemoAsset struct {
	DemoAssetID string `json:"demo_asset_id" csv:"demo_asset_id"`
	AgentID     string `json:"agent_id" csv:"agent_id"`
	AssetType   string `json:"asset_type" csv:"asset_type"`
	AssetURL    string `json:"asset_url" csv:"asset_url"`
	Title       string `json:"title" csv:"title"`
	Description string `json:"description" csv:"description"`
}

// Doc is a documentation entry for an agent.
type Doc struct {
	AgentID     string `json:"agent_id" csv:"agent_id"`
	DocType     string `json:"doc_type" csv:"doc_type"`
	DocURL      string `json:"doc_url" csv:"doc_url"`
	Title       string `json:"title" csv:"title"`
	Description string `json:"description" csv:"description"`
}

// AuthUser is a login row. Passwords travel exactly as stored; the
// password field is dropped from API responses.
type AuthUser struct {
	AuthID    string `json:"auth_id" csv:"auth_id"`
	Email     string `json:"email" csv:"email"`
	Password  string `json:"password,omitempty" csv:"password"`
	Role      string `json:"role" csv:"role"`
	EntityID  string `json:"entity_id" csv:"entity_id"`
	IsActive  string `json:"is_active" csv:"is_active"`
	CreatedAt string `json:"created_at" csv:"created_at"`
}

// Enquiry is a buyer question about an agent.
type Enquiry struct {
	EnquiryID string `json:"enquiry_id" csv:"enquiry_id"`
	AgentID   string `json:"agent_id" csv:"agent_id"`
	Name      string `json:"name" csv:"name"`
	Email     string `json:"email" csv:"email"`
	Company   string `json:"company" csv:"company"`
	Message   string `json:"message" csv:"message"`
	Status    string `json:"status" csv:"status"`
	CreatedAt string `json:"created_at" csv:"created_at"`
}

// AgentRequirement is the outcome of a create-mode chat discovery.
type AgentRequirement struct {
	RequirementID      string `json:"requirement_id" csv:"requirement_id"`
	SessionID          string `json:"session_id" csv:"session_id"`
	AgentName          string `json:"agent_name" csv:"agent_name"`
	ApplicablePersona  string `json:"applicable_persona" csv:"applicable_persona"`
	ApplicableIndustry string `json:"applicable_industry" csv:"applicable_industry"`
	ProblemStatement   string `json:"problem_statement" csv:"problem_statement"`
	UserJourneys       string `json:"user_journeys" csv:"user_journeys"`
	WowFactor          string `json:"wow_factor" csv:"wow_factor"`
	ExpectedOutput     string `json:"expected_output" csv:"expected_output"`
	Status             string `json:"status" csv:"status"`
	CreatedAt          string `json:"created_at" csv:"created_at"`
	UpdatedAt          string `json:"updated_at" csv:"updated_at"`
}

// ChatRecord is one persisted chat exchange within a session.
type ChatRecord struct {
	SessionID         string `json:"session_id" csv:"session_id"`
	Mode              string `json:"mode" csv:"mode"`
	UserMessage       string `json:"user_message" csv:"user_message"`
	AssistantResponse string `json:"assistant_response" csv:"assistant_response"`
	Status            string `json:"status" csv:"status"`
	CreatedAt         string `json:"created_at" csv:"created_at"`
	UpdatedAt         string `json:"updated_at" csv:"updated_at"`
}

// Capability is a distinct capability id/name pair for the catalog filter.
type Capability struct {
	ByCapabilityID string `json:"by_capability_id"`
	ByCapability   string `json:"by_capability"`
}

// AgentDetail is the agent page join: the agent plus everything that
// hangs off it, assembled in memory per request.
type AgentDetail struct {
	Agent         Agent               `json:"agent"`
	Capabilities  []CapabilityMapping `json:"capabilities"`
	Deployments   []Deployment        `json:"deployments"`
	DemoAssets    []DemoAsset         `json:"demo_assets"`
	Documentation []Doc               `json:"documentation"`
	ISVInfo       *ISV                `json:"isv_info,omitempty"`
}

// Health reports data-source health for /api/health.
type Health struct {
	Status       string   `json:"status"` // healthy, degraded, unhealthy
	DataSource   string   `json:"data_source"`
	MissingFiles []string `json:"missing_files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// GatheredInfo holds the seven requirement fields the create-mode
// assistant accumulates across turns.
type GatheredInfo struct {
	AgentName          string `json:"agent_name"`
	ApplicablePersona  string `json:"applicable_persona"`
	ApplicableIndustry string `json:"applicable_industry"`
	ProblemStatement   string `json:"problem_statement"`
	UserJourneys       string `json:"user_journeys"`
	WowFactor          string `json:"wow_factor"`
	ExpectedOutput     string `json:"expected_output"`
}

// Empty reports whether no field has been gathered yet.
func (g GatheredInfo) Empty() bool {
	return g == GatheredInfo{}
}

// CreateMetadata is the structured block the create-mode assistant
// appends after its conversational text.
type CreateMetadata struct {
	QuestionCount int          `json:"question_count"`
	LetsBuild     bool         `json:"lets_build"`
	GatheredInfo  GatheredInfo `json:"gathered_info"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Query     string `json:"query"`
	Mode      string `json:"mode,omitempty"` // "explore" (default) or "create"
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the unified chat reply. Explore mode fills
// FilteredAgents; create mode fills the metadata fields.
type ChatResponse struct {
	Response          string        `json:"response"`
	SessionID         string        `json:"session_id"`
	Timestamp         string        `json:"timestamp"`
	FilteredAgents    []string      `json:"filtered_agents,omitempty"`
	QuestionCount     *int          `json:"question_count,omitempty"`
	LetsBuild         *bool         `json:"lets_build,omitempty"`
	GatheredInfo      *GatheredInfo `json:"gathered_info,omitempty"`
	RequirementsSaved *bool         `json:"requirements_saved,omitempty"`
	FallbackMode      bool          `json:"fallback_mode,omitempty"`
	Error             string        `json:"error,omitempty"`
}

// DocumentStatus reports BRD generation progress for a requirement.
type DocumentStatus struct {
	RequirementID string `json:"requirement_id"`
	Status        string `json:"status"` // pending, generating, ready
	Path          string `json:"path,omitempty"`
}

// UploadResult is returned by POST /api/uploads/{folder}.
type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Filename string `json:"filename"`
}

// LoginResult is returned by POST /api/auth/login.
type LoginResult struct {
	OK   bool      `json:"ok"`
	User *AuthUser `json:"user,omitempty"`
}
