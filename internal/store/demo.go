package store

import "github.com/vigneshgurumohan/agents-store/pkg/models"

// DemoFixture is the starter dataset used by SeedDemo on an empty
// store: one ISV with two approved agents wired to capabilities,
// deployments, a demo asset, docs, and an admin login.
type DemoFixture struct {
	Agents       []models.Agent
	ISVs         []models.ISV
	Capabilities []models.CapabilityMapping
	Deployments  []models.Deployment
	DemoAssets   []models.DemoAsset
	Docs         []models.Doc
	Users        []models.AuthUser
}

// Demo returns the starter dataset. Timestamps are stamped at call time.
func Demo() DemoFixture {
	now := Now()
	return DemoFixture{
		ISVs: []models.ISV{{
			ISVID:        "isv_001",
			ISVName:      "Acme Intelligence",
			Description:  "Builds finance and analytics agents",
			Website:      "https://acme.example.com",
			ContactEmail: "hello@acme.example.com",
			CreatedAt:    now,
			UpdatedAt:    now,
		}},
		Agents: []models.Agent{
			{
				AgentID:       "agent_001",
				AgentName:     "Spend Analyzer",
				Description:   "Analyzes card spend and surfaces savings opportunities",
				ByPersona:     "finance manager",
				ByValue:       "reduce spend leakage",
				Features:      "spend categorization; anomaly alerts; monthly digest",
				Tags:          "finance, analytics",
				ISVID:         "isv_001",
				AdminApproved: "yes",
				CreatedAt:     now,
				UpdatedAt:     now,
			},
			{
				AgentID:       "agent_002",
				AgentName:     "Campaign Writer",
				Description:   "Drafts and schedules marketing campaign content",
				ByPersona:     "marketing lead",
				ByValue:       "ship campaigns faster",
				Features:      "content drafts; tone presets; channel scheduling",
				Tags:          "content, automation",
				ISVID:         "isv_001",
				AdminApproved: "yes",
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		},
		Capabilities: []models.CapabilityMapping{
			{AgentID: "agent_001", ByCapabilityID: "cap_001", ByCapability: "Spend categorization"},
			{AgentID: "agent_001", ByCapabilityID: "cap_002", ByCapability: "Anomaly detection"},
			{AgentID: "agent_002", ByCapabilityID: "cap_003", ByCapability: "Content drafting"},
		},
		Deployments: []models.Deployment{
			{ByCapabilityID: "cap_001", DeploymentName: "spend-categorizer", DeploymentURL: "https://api.acme.example.com/categorize", Environment: "prod"},
			{ByCapabilityID: "cap_003", DeploymentName: "draft-service", DeploymentURL: "https://api.acme.example.com/draft", Environment: "prod"},
		},
		DemoAssets: []models.DemoAsset{
			{DemoAssetID: "asset_001", AgentID: "agent_001", AssetType: "video", AssetURL: "https://cdn.example.com/demos/spend.mp4", Title: "Spend Analyzer walkthrough"},
		},
		Docs: []models.Doc{
			{AgentID: "agent_001", DocType: "integration", DocURL: "https://docs.acme.example.com/spend", Title: "Integration guide"},
		},
		Users: []models.AuthUser{{
			AuthID:    "auth_001",
			Email:     "admin@example.com",
			Password:  "admin123",
			Role:      "admin",
			EntityID:  "isv_001",
			IsActive:  "yes",
			CreatedAt: now,
		}},
	}
}
