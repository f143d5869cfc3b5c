// Package docgen turns saved agent requirements into Business
// Requirements Documents (.docx) in the background.
package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vigneshgurumohan/agents-store/internal/llm"
	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// RequirementStatusDocumented is stamped on the requirement once its
// document is on disk.
const RequirementStatusDocumented = "document_generated"

// Generator owns the documents directory and a small worker pool. A
// document is complete only when its .ready sentinel exists; readers
// never see half-written files because writes go through a temp file
// and the sentinel lands last.
type Generator struct {
	store store.Store
	llm   *llm.Client
	dir   string
	jobs  chan string

	mu       sync.Mutex
	inflight map[string]bool

	// OnReady fires after the sentinel is written; the server publishes
	// an SSE event from it.
	OnReady func(requirementID, path string)
}

// New builds a Generator writing into dir. client may be unconfigured;
// sections then render from the gathered requirement text alone.
func New(st store.Store, dir string, client *llm.Client) *Generator {
	return &Generator{
		store:    st,
		llm:      client,
		dir:      dir,
		jobs:     make(chan string, 16),
		inflight: make(map[string]bool),
	}
}

// Run processes jobs until ctx is cancelled. Two workers are plenty;
// generation is milliseconds of templating per document.
func (g *Generator) Run(ctx context.Context) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		slog.Error("docgen dir create failed", "dir", g.dir, "err", err)
		return
	}
	const workers = 2
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-g.jobs:
					g.generate(ctx, id)
				}
			}
		}()
	}
	wg.Wait()
}

// Enqueue schedules generation for a requirement. Returns false when
// the queue is full or the id is already in flight.
func (g *Generator) Enqueue(requirementID string) bool {
	g.mu.Lock()
	if g.inflight[requirementID] {
		g.mu.Unlock()
		return false
	}
	g.inflight[requirementID] = true
	g.mu.Unlock()

	select {
	case g.jobs <- requirementID:
		return true
	default:
		g.mu.Lock()
		delete(g.inflight, requirementID)
		g.mu.Unlock()
		slog.Warn("docgen queue full, dropping job", "requirement_id", requirementID)
		return false
	}
}

// DocumentPath returns where the document for id lives once ready.
func (g *Generator) DocumentPath(requirementID string) string {
	return filepath.Join(g.dir, requirementID+".docx")
}

func (g *Generator) sentinelPath(requirementID string) string {
	return filepath.Join(g.dir, requirementID+".ready")
}

// Status reports pending, generating, or ready for a requirement.
func (g *Generator) Status(requirementID string) models.DocumentStatus {
	st := models.DocumentStatus{RequirementID: requirementID, Status: "pending"}
	if _, err := os.Stat(g.sentinelPath(requirementID)); err == nil {
		st.Status = "ready"
		st.Path = g.DocumentPath(requirementID)
		return st
	}
	g.mu.Lock()
	busy := g.inflight[requirementID]
	g.mu.Unlock()
	if busy {
		st.Status = "generating"
	}
	return st
}

func (g *Generator) generate(ctx context.Context, requirementID string) {
	defer func() {
		g.mu.Lock()
		delete(g.inflight, requirementID)
		g.mu.Unlock()
	}()

	req, err := g.store.GetRequirement(ctx, requirementID)
	if err != nil {
		slog.Error("docgen load requirement failed", "requirement_id", requirementID, "err", err)
		return
	}

	out := g.DocumentPath(requirementID)
	tmp := out + ".tmp"
	if err := WriteBRD(tmp, *req, g.compose(ctx, *req)); err != nil {
		slog.Error("docgen write failed", "requirement_id", requirementID, "err", err)
		_ = os.Remove(tmp)
		return
	}
	if err := os.Rename(tmp, out); err != nil {
		slog.Error("docgen rename failed", "requirement_id", requirementID, "err", err)
		return
	}
	if err := os.WriteFile(g.sentinelPath(requirementID), []byte(store.Now()+"\n"), 0o644); err != nil {
		slog.Error("docgen sentinel write failed", "requirement_id", requirementID, "err", err)
		return
	}

	if err := g.store.UpdateRequirement(ctx, requirementID, map[string]string{
		"status":     RequirementStatusDocumented,
		"updated_at": store.Now(),
	}); err != nil {
		slog.Warn("docgen status update failed", "requirement_id", requirementID, "err", err)
	}
	slog.Info("document generated", "requirement_id", requirementID, "path", out)
	if g.OnReady != nil {
		g.OnReady(requirementID, out)
	}
}

const draftSystemPrompt = "You are a business analyst drafting one section of a " +
	"Business Requirements Document for a proposed AI agent. Write two or three " +
	"concise paragraphs of plain prose for the requested section only. No headings, " +
	"no markdown, no preamble."

// compose drafts each section with the LLM, falling back to the
// templated body when the client is unconfigured or a call fails. A
// section failure never blocks the rest of the document.
func (g *Generator) compose(ctx context.Context, req models.AgentRequirement) []Section {
	sections := BaseSections(req)
	if g.llm == nil || !g.llm.Available() {
		return sections
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return sections
	}
	for i, s := range sections {
		text, err := g.llm.Chat(ctx, []llm.Message{
			{Role: "system", Content: draftSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Section: %s\n\nRequirement:\n%s", s.Title, payload)},
		})
		if err != nil {
			slog.Warn("docgen section draft failed, using gathered text",
				"requirement_id", req.RequirementID, "section", s.Title, "err", err)
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			sections[i].Body = t
		}
	}
	return sections
}
