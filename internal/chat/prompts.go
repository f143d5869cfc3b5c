package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

const exploreSystemPrompt = `You are the marketplace assistant for a catalog of AI agents.
Help the user find agents that fit their need. Be concise and concrete,
and only recommend agents from the catalog below.

Catalog:
%s

After your reply, append a single JSON object on its own line of the form
{"filtered_agents": ["Agent Name", ...]} listing the catalog agents your
reply recommends. Use [] when nothing fits.`

const createSystemPrompt = `You are a discovery assistant helping the user define a new AI agent.
Gather these fields through conversation, one or two questions at a time:
agent_name, applicable_persona, applicable_industry, problem_statement,
user_journeys, wow_factor, expected_output.

Already gathered:
%s

Questions asked so far: %d.

When every field is gathered, summarize and ask the user to confirm
building. After your reply, append a single JSON object on its own line:
{"question_count": <total questions asked>, "lets_build": <true once the
user confirms>, "gathered_info": {"agent_name": "...", "applicable_persona": "...",
"applicable_industry": "...", "problem_statement": "...", "user_journeys": "...",
"wow_factor": "...", "expected_output": "..."}}`

// catalogContext renders the approved agents for the explore prompt.
func catalogContext(agents []models.Agent) string {
	if len(agents) == 0 {
		return "(no agents published yet)"
	}
	var b strings.Builder
	for _, a := range agents {
		fmt.Fprintf(&b, "- %s: %s (persona: %s; value: %s; tags: %s)\n",
			a.AgentName, a.Description, a.ByPersona, a.ByValue, a.Tags)
	}
	return strings.TrimRight(b.String(), "\n")
}

func gatheredContext(g models.GatheredInfo) string {
	b, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Scripted questions for the no-LLM create fallback, in gathering order.
var fallbackQuestions = []struct {
	field    string
	question string
}{
	{"agent_name", "What would you like to call this agent?"},
	{"applicable_persona", "Who is the primary user of this agent (role or persona)?"},
	{"applicable_industry", "Which industry is it for?"},
	{"problem_statement", "What problem should it solve? Describe the pain point."},
	{"user_journeys", "Walk me through how a user would interact with it, step by step."},
	{"wow_factor", "What makes this agent stand out from existing tools?"},
	{"expected_output", "What should the agent produce or deliver as its output?"},
}

func gatheredField(g *models.GatheredInfo, name string) *string {
	switch name {
	case "agent_name":
		return &g.AgentName
	case "applicable_persona":
		return &g.ApplicablePersona
	case "applicable_industry":
		return &g.ApplicableIndustry
	case "problem_statement":
		return &g.ProblemStatement
	case "user_journeys":
		return &g.UserJourneys
	case "wow_factor":
		return &g.WowFactor
	case "expected_output":
		return &g.ExpectedOutput
	}
	return nil
}
