package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vigneshgurumohan/agents-store/internal/llm"
	"github.com/vigneshgurumohan/agents-store/internal/store"
	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// Modes accepted by Handle. Anything else defaults to explore.
const (
	ModeExplore = "explore"
	ModeCreate  = "create"
)

// Service routes chat requests to explore or create handling, keeps
// per-session memory, and persists every exchange.
type Service struct {
	store    store.Store
	llm      *llm.Client
	sessions *Sessions

	// OnRequirementSaved fires after a create-mode requirement lands in
	// the store; the server wires document generation and SSE to it.
	OnRequirementSaved func(requirementID string)
}

// NewService builds a chat service. client may be unconfigured; both
// modes then run in fallback.
func NewService(st store.Store, client *llm.Client) *Service {
	return &Service{store: st, llm: client, sessions: NewSessions()}
}

// Sessions exposes the session table (used by handlers and tests).
func (s *Service) Sessions() *Sessions { return s.sessions }

// Handle processes one chat turn.
func (s *Service) Handle(ctx context.Context, req models.ChatRequest) models.ChatResponse {
	mode := req.Mode
	if mode != ModeCreate {
		mode = ModeExplore
	}
	sess := s.sessions.GetOrCreate(req.SessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	var resp models.ChatResponse
	if mode == ModeCreate {
		resp = s.create(ctx, sess, req.Query)
	} else {
		resp = s.explore(ctx, sess, req.Query)
	}
	resp.SessionID = sess.ID
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)

	sess.Remember(req.Query, resp.Response)
	if err := s.store.AppendChatRecord(ctx, models.ChatRecord{
		SessionID:         sess.ID,
		Mode:              mode,
		UserMessage:       req.Query,
		AssistantResponse: resp.Response,
	}); err != nil {
		slog.Warn("chat history write failed", "session", sess.ID, "err", err)
	}
	return resp
}

// Clear drops the in-memory session and its persisted history.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	s.sessions.Delete(sessionID)
	return s.store.DeleteChatSession(ctx, sessionID)
}

// History returns the persisted exchanges for a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]models.ChatRecord, error) {
	return s.store.ChatRecordsBySession(ctx, sessionID)
}

// approvedAgents returns only agents an admin has published.
func (s *Service) approvedAgents(ctx context.Context) ([]models.Agent, error) {
	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	out := agents[:0:0]
	for _, a := range agents {
		if a.AdminApproved == "yes" {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) explore(ctx context.Context, sess *Session, query string) models.ChatResponse {
	agents, err := s.approvedAgents(ctx)
	if err != nil {
		return models.ChatResponse{Response: "The catalog is unavailable right now. Please try again shortly.", Error: err.Error()}
	}
	if !s.llm.Available() {
		return exploreFallback(query, agents)
	}

	messages := []llm.Message{{Role: "system", Content: fmt.Sprintf(exploreSystemPrompt, catalogContext(agents))}}
	for _, t := range sess.Turns {
		messages = append(messages,
			llm.Message{Role: "user", Content: t.User},
			llm.Message{Role: "assistant", Content: t.Assistant})
	}
	messages = append(messages, llm.Message{Role: "user", Content: query})

	raw, err := s.llm.Chat(ctx, messages)
	if err != nil {
		slog.Warn("explore chat failed, using keyword fallback", "session", sess.ID, "err", err)
		return exploreFallback(query, agents)
	}

	clean, block, ok := SplitTrailingJSON(raw)
	filtered := filteredFromBlock(block, ok)
	if filtered == nil {
		filtered = namesMentioned(clean, agents)
	}
	return models.ChatResponse{Response: clean, FilteredAgents: filtered}
}

func exploreFallback(query string, agents []models.Agent) models.ChatResponse {
	matched := KeywordFilter(query, agents)
	names := make([]string, 0, len(matched))
	for _, a := range matched {
		names = append(names, a.AgentName)
	}
	text := "Here are agents that may fit what you described: " + strings.Join(names, ", ") + "."
	if len(names) == 0 {
		text = "No agents match that yet, but new ones are added regularly."
	}
	return models.ChatResponse{Response: text, FilteredAgents: names, FallbackMode: true}
}

func filteredFromBlock(block string, ok bool) []string {
	if !ok {
		return nil
	}
	var meta struct {
		FilteredAgents []string `json:"filtered_agents"`
	}
	if err := json.Unmarshal([]byte(block), &meta); err != nil || meta.FilteredAgents == nil {
		return nil
	}
	return meta.FilteredAgents
}

// namesMentioned is the last-resort filter: agents the reply names.
func namesMentioned(text string, agents []models.Agent) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, a := range agents {
		if a.AgentName != "" && strings.Contains(lower, strings.ToLower(a.AgentName)) {
			out = append(out, a.AgentName)
		}
	}
	return out
}

func (s *Service) create(ctx context.Context, sess *Session, query string) models.ChatResponse {
	if !s.llm.Available() {
		return s.createFallback(ctx, sess, query)
	}

	asked := sess.QuestionsAsked()
	messages := []llm.Message{{
		Role:    "system",
		Content: fmt.Sprintf(createSystemPrompt, gatheredContext(sess.Gathered), asked),
	}}
	for _, t := range sess.Turns {
		messages = append(messages,
			llm.Message{Role: "user", Content: t.User},
			llm.Message{Role: "assistant", Content: t.Assistant})
	}
	messages = append(messages, llm.Message{Role: "user", Content: query})

	raw, err := s.llm.Chat(ctx, messages)
	if err != nil {
		slog.Warn("create chat failed, using scripted fallback", "session", sess.ID, "err", err)
		return s.createFallback(ctx, sess, query)
	}

	clean := raw
	meta := models.CreateMetadata{QuestionCount: asked + 1}
	if text, block, ok := SplitTrailingJSON(raw); ok {
		if parsed, err := ParseCreateMetadata(block); err == nil {
			clean, meta = text, parsed
		} else {
			clean = text
			meta.GatheredInfo = ExtractMarkdownInfo(text)
		}
	} else {
		meta.GatheredInfo = ExtractMarkdownInfo(raw)
	}

	MergeGathered(&sess.Gathered, meta.GatheredInfo)

	resp := models.ChatResponse{Response: clean}
	s.finishCreate(ctx, sess, meta.QuestionCount, meta.LetsBuild, &resp)
	return resp
}

// createFallback runs the scripted questionnaire when no model is
// reachable: the previous answer fills the first empty field, then the
// next question goes out.
func (s *Service) createFallback(ctx context.Context, sess *Session, query string) models.ChatResponse {
	asked := sess.QuestionsAsked()
	if asked > 0 && strings.TrimSpace(query) != "" {
		for _, q := range fallbackQuestions {
			f := gatheredField(&sess.Gathered, q.field)
			if f != nil && *f == "" {
				*f = strings.TrimSpace(query)
				break
			}
		}
	}

	resp := models.ChatResponse{FallbackMode: true}
	for _, q := range fallbackQuestions {
		if f := gatheredField(&sess.Gathered, q.field); f != nil && *f == "" {
			resp.Response = q.question
			s.finishCreate(ctx, sess, asked+1, false, &resp)
			return resp
		}
	}

	resp.Response = fmt.Sprintf(
		"Great, that covers everything for %q. I am saving the requirement and drafting the document now.",
		sess.Gathered.AgentName)
	s.finishCreate(ctx, sess, asked, true, &resp)
	return resp
}

// finishCreate fills the create-mode response fields and persists the
// requirement once the conversation commits to building.
func (s *Service) finishCreate(ctx context.Context, sess *Session, qc int, letsBuild bool, resp *models.ChatResponse) {
	gi := sess.Gathered
	resp.QuestionCount = &qc
	resp.LetsBuild = &letsBuild
	resp.GatheredInfo = &gi

	if !letsBuild || sess.Saved || sess.Gathered.Empty() {
		return
	}
	id, err := s.store.CreateRequirement(ctx, models.AgentRequirement{
		SessionID:          sess.ID,
		AgentName:          gi.AgentName,
		ApplicablePersona:  gi.ApplicablePersona,
		ApplicableIndustry: gi.ApplicableIndustry,
		ProblemStatement:   gi.ProblemStatement,
		UserJourneys:       gi.UserJourneys,
		WowFactor:          gi.WowFactor,
		ExpectedOutput:     gi.ExpectedOutput,
	})
	if err != nil {
		slog.Error("requirement save failed", "session", sess.ID, "err", err)
		resp.Error = "requirement could not be saved"
		return
	}
	sess.Saved = true
	saved := true
	resp.RequirementsSaved = &saved
	slog.Info("requirement saved", "session", sess.ID, "requirement_id", id)
	if s.OnRequirementSaved != nil {
		s.OnRequirementSaved(id)
	}
}
