package csvstore

import (
	"context"

	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// SeedDemo writes the starter dataset when the agents table is empty,
// and materializes every table file so health reports clean.
func (s *Store) SeedDemo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents, err := readLocked[models.Agent](s, "agents")
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		d := store.Demo()
		if err := writeLocked(s, "agents", d.Agents); err != nil {
			return err
		}
		if err := writeLocked(s, "isv_details", d.ISVs); err != nil {
			return err
		}
		if err := writeLocked(s, "capabilities_mapping", d.Capabilities); err != nil {
			return err
		}
		if err := writeLocked(s, "deployments", d.Deployments); err != nil {
			return err
		}
		if err := writeLocked(s, "demo_assets", d.DemoAssets); err != nil {
			return err
		}
		if err := writeLocked(s, "docs", d.Docs); err != nil {
			return err
		}
		if err := writeLocked(s, "auth", d.Users); err != nil {
			return err
		}
	}

	// Touch the remaining tables so a fresh directory passes health.
	if err := touchLocked[models.Reseller](s, "reseller_details"); err != nil {
		return err
	}
	if err := touchLocked[models.Client](s, "client_details"); err != nil {
		return err
	}
	if err := touchLocked[models.Enquiry](s, "enquiries"); err != nil {
		return err
	}
	if err := touchLocked[models.AgentRequirement](s, "agent_requirements"); err != nil {
		return err
	}
	return touchLocked[models.ChatRecord](s, "chat_history")
}

// touchLocked writes a header-only file if the table does not exist yet.
func touchLocked[T any](s *Store, table string) error {
	recs, err := s.rawLocked(table)
	if err != nil {
		return err
	}
	if len(recs) > 0 {
		return nil
	}
	return writeLocked(s, table, []T{})
}
