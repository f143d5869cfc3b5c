package postgres

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// queryAll scans every result row into T by matching result column
// names against the codec, so SELECT * stays in sync with the structs.
func queryAll[T any](ctx context.Context, s *Store, sql string, args ...any) ([]T, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	fds := rows.FieldDescriptions()
	header := make([]string, len(fds))
	for i, fd := range fds {
		header[i] = fd.Name
	}
	var out []T
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			if v != nil {
				rec[i] = fmt.Sprint(v)
			}
		}
		out = append(out, store.Decode[T](header, rec))
	}
	return out, rows.Err()
}

func first[T any](ctx context.Context, s *Store, sql string, args ...any) (*T, error) {
	rows, err := queryAll[T](ctx, s, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

func insertAll[T any](ctx context.Context, s *Store, table string, rowsIn []T) error {
	cols := store.Columns[T]()
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	sql := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")"
	for _, r := range rowsIn {
		rec := store.Encode(r)
		args := make([]any, len(rec))
		for i, v := range rec {
			args[i] = v
		}
		if _, err := s.Pool.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}
	return nil
}

// updateWhere patches cols on rows matching keyCol=keyVal. Column
// names are validated against the codec before entering the SQL text.
func updateWhere[T any](ctx context.Context, s *Store, table, keyCol, keyVal string, cols map[string]string) error {
	valid := make(map[string]bool)
	for _, c := range store.Columns[T]() {
		valid[c] = true
	}
	names := make([]string, 0, len(cols))
	for c := range cols {
		if !valid[c] {
			return fmt.Errorf("postgres: unknown column %q", c)
		}
		names = append(names, c)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	set := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, c := range names {
		set[i] = c + " = $" + strconv.Itoa(i+1)
		args = append(args, cols[c])
	}
	args = append(args, keyVal)
	sql := "UPDATE " + table + " SET " + strings.Join(set, ", ") +
		" WHERE " + keyCol + " = $" + strconv.Itoa(len(names)+1)
	ct, err := s.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Agents

func (s *Store) ListAgents(ctx context.Context) ([]models.Agent, error) {
	return queryAll[models.Agent](ctx, s, `SELECT * FROM agents ORDER BY agent_id`)
}

func (s *Store) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	return first[models.Agent](ctx, s, `SELECT * FROM agents WHERE agent_id = $1`, agentID)
}

func (s *Store) CreateAgent(ctx context.Context, a models.Agent) error {
	return insertAll(ctx, s, "agents", []models.Agent{a})
}

func (s *Store) UpdateAgent(ctx context.Context, agentID string, cols map[string]string) error {
	return updateWhere[models.Agent](ctx, s, "agents", "agent_id", agentID, cols)
}

func (s *Store) AgentsByISV(ctx context.Context, isvID string) ([]models.Agent, error) {
	return queryAll[models.Agent](ctx, s, `SELECT * FROM agents WHERE isv_id = $1 ORDER BY agent_id`, isvID)
}

// Capabilities and deployments

func (s *Store) ListCapabilities(ctx context.Context) ([]models.CapabilityMapping, error) {
	return queryAll[models.CapabilityMapping](ctx, s, `SELECT * FROM capabilities_mapping`)
}

func (s *Store) CapabilitiesByAgent(ctx context.Context, agentID string) ([]models.CapabilityMapping, error) {
	return queryAll[models.CapabilityMapping](ctx, s, `SELECT * FROM capabilities_mapping WHERE agent_id = $1`, agentID)
}

func (s *Store) CreateCapabilities(ctx context.Context, rows []models.CapabilityMapping) error {
	return insertAll(ctx, s, "capabilities_mapping", rows)
}

func (s *Store) ListDeployments(ctx context.Context) ([]models.Deployment, error) {
	return queryAll[models.Deployment](ctx, s, `SELECT * FROM deployments`)
}

func (s *Store) CreateDeployments(ctx context.Context, rows []models.Deployment) error {
	return insertAll(ctx, s, "deployments", rows)
}

func (s *Store) UpdateDeployment(ctx context.Context, byCapabilityID string, cols map[string]string) error {
	return updateWhere[models.Deployment](ctx, s, "deployments", "by_capability_id", byCapabilityID, cols)
}

// Demo assets and docs

func (s *Store) DemoAssetsByAgent(ctx context.Context, agentID string) ([]models.DemoAsset, error) {
	return queryAll[models.DemoAsset](ctx, s, `SELECT * FROM demo_assets WHERE agent_id = $1`, agentID)
}

func (s *Store) CreateDemoAssets(ctx context.Context, rows []models.DemoAsset) error {
	return insertAll(ctx, s, "demo_assets", rows)
}

func (s *Store) UpdateDemoAsset(ctx context.Context, demoAssetID string, cols map[string]string) error {
	return updateWhere[models.DemoAsset](ctx, s, "demo_assets", "demo_asset_id", demoAssetID, cols)
}

func (s *Store) DocsByAgent(ctx context.Context, agentID string) ([]models.Doc, error) {
	return queryAll[models.Doc](ctx, s, `SELECT * FROM docs WHERE agent_id = $1`, agentID)
}

func (s *Store) CreateDoc(ctx context.Context, d models.Doc) error {
	return insertAll(ctx, s, "docs", []models.Doc{d})
}

func (s *Store) UpdateDocs(ctx context.Context, agentID string, cols map[string]string) error {
	return updateWhere[models.Doc](ctx, s, "docs", "agent_id", agentID, cols)
}

// ISVs, resellers, clients

func (s *Store) ListISVs(ctx context.Context) ([]models.ISV, error) {
	return queryAll[models.ISV](ctx, s, `SELECT * FROM isv_details ORDER BY isv_id`)
}

func (s *Store) GetISV(ctx context.Context, isvID string) (*models.ISV, error) {
	return first[models.ISV](ctx, s, `SELECT * FROM isv_details WHERE isv_id = $1`, isvID)
}

func (s *Store) CreateISV(ctx context.Context, v models.ISV) error {
	return insertAll(ctx, s, "isv_details", []models.ISV{v})
}

func (s *Store) UpdateISV(ctx context.Context, isvID string, cols map[string]string) error {
	return updateWhere[models.ISV](ctx, s, "isv_details", "isv_id", isvID, cols)
}

func (s *Store) ListResellers(ctx context.Context) ([]models.Reseller, error) {
	return queryAll[models.Reseller](ctx, s, `SELECT * FROM reseller_details ORDER BY reseller_id`)
}

func (s *Store) CreateReseller(ctx context.Context, r models.Reseller) error {
	return insertAll(ctx, s, "reseller_details", []models.Reseller{r})
}

func (s *Store) UpdateReseller(ctx context.Context, resellerID string, cols map[string]string) error {
	return updateWhere[models.Reseller](ctx, s, "reseller_details", "reseller_id", resellerID, cols)
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	return queryAll[models.Client](ctx, s, `SELECT * FROM client_details ORDER BY client_id`)
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) error {
	return insertAll(ctx, s, "client_details", []models.Client{c})
}

func (s *Store) UpdateClient(ctx context.Context, clientID string, cols map[string]string) error {
	return updateWhere[models.Client](ctx, s, "client_details", "client_id", clientID, cols)
}

// Auth

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	return first[models.AuthUser](ctx, s, `SELECT * FROM auth WHERE email = $1`, email)
}

func (s *Store) CreateUser(ctx context.Context, u models.AuthUser) error {
	return insertAll(ctx, s, "auth", []models.AuthUser{u})
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
	return queryAll[models.Enquiry](ctx, s, `SELECT * FROM enquiries ORDER BY enquiry_id`)
}

func (s *Store) CreateEnquiry(ctx context.Context, e models.Enquiry) (string, error) {
	id, err := s.NextID(ctx, "enquiries")
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
	return id, insertAll(ctx, s, "enquiries", []models.Enquiry{e})
}

// Agent requirements

func (s *Store) ListRequirements(ctx context.Context) ([]models.AgentRequirement, error) {
	return queryAll[models.AgentRequirement](ctx, s, `SELECT * FROM agent_requirements ORDER BY requirement_id`)
}

func (s *Store) GetRequirement(ctx context.Context, requirementID string) (*models.AgentRequirement, error) {
	return first[models.AgentRequirement](ctx, s, `SELECT * FROM agent_requirements WHERE requirement_id = $1`, requirementID)
}

func (s *Store) CreateRequirement(ctx context.Context, r models.AgentRequirement) (string, error) {
	id, err := s.NextID(ctx, "agent_requirements")
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
	return id, insertAll(ctx, s, "agent_requirements", []models.AgentRequirement{r})
}

func (s *Store) UpdateRequirement(ctx context.Context, requirementID string, cols map[string]string) error {
	return updateWhere[models.AgentRequirement](ctx, s, "agent_requirements", "requirement_id", requirementID, cols)
}

// Chat history

func (s *Store) ChatRecordsBySession(ctx context.Context, sessionID string) ([]models.ChatRecord, error) {
	return queryAll[models.ChatRecord](ctx, s, `SELECT * FROM chat_history WHERE session_id = $1 ORDER BY created_at`, sessionID)
}

func (s *Store) AppendChatRecord(ctx context.Context, rec models.ChatRecord) error {
	now := store.Now()
	if rec.Status == "" {
		rec.Status = models.ChatStatusActive
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	return insertAll(ctx, s, "chat_history", []models.ChatRecord{rec})
}

func (s *Store) DeleteChatSession(ctx context.Context, sessionID string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM chat_history WHERE session_id = $1`, sessionID)
	return err
}

// SeedDemo inserts the starter dataset when the agents table is empty.
func (s *Store) SeedDemo(ctx context.Context) error {
	var n int
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM agents`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	d := store.Demo()
	if err := insertAll(ctx, s, "agents", d.Agents); err != nil {
		return err
	}
	if err := insertAll(ctx, s, "isv_details", d.ISVs); err != nil {
		return err
	}
	if err := insertAll(ctx, s, "capabilities_mapping", d.Capabilities); err != nil {
		return err
	}
	if err := insertAll(ctx, s, "deployments", d.Deployments); err != nil {
		return err
	}
	if err := insertAll(ctx, s, "demo_assets", d.DemoAssets); err != nil {
		return err
	}
	if err := insertAll(ctx, s, "docs", d.Docs); err != nil {
		return err
	}
	return insertAll(ctx, s, "auth", d.Users)
}
