package chat

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

// SplitTrailingJSON separates conversational text from a structured
// JSON object appended at the end of a model reply. It tries each '{'
// from the tail until the remainder parses, so braces inside the prose
// do not confuse it.
func SplitTrailingJSON(text string) (clean, rawJSON string, ok bool) {
	trimmed := strings.TrimRight(text, " \t\r\n")
	if !strings.HasSuffix(trimmed, "}") {
		return text, "", false
	}
	for i := len(trimmed) - 1; i >= 0; i-- {
		if trimmed[i] != '{' {
			continue
		}
		candidate := trimmed[i:]
		if json.Valid([]byte(candidate)) {
			return strings.TrimSpace(trimmed[:i]), candidate, true
		}
	}
	return text, "", false
}

// ParseCreateMetadata decodes the structured block of a create-mode
// reply. Unknown fields are ignored; a malformed block is an error and
// callers fall through to the markdown extractor.
func ParseCreateMetadata(raw string) (models.CreateMetadata, error) {
	var m models.CreateMetadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return models.CreateMetadata{}, err
	}
	return m, nil
}

// Markdown field labels, matched case-insensitively at line starts.
var markdownFields = []struct {
	re  *regexp.Regexp
	set func(*models.GatheredInfo, string)
}{
	{regexp.MustCompile(`(?im)^\s*\*\*Agent Name:?\*\*:?\s*(.+)$`), func(g *models.GatheredInfo, v string) { g.AgentName = v }},
	{regexp.MustCompile(`(?im)^\s*\*\*(?:Applicable )?Persona:?\*\*:?\s*(.+)$`), func(g *models.GatheredInfo, v string) { g.ApplicablePersona = v }},
	{regexp.MustCompile(`(?im)^\s*\*\*(?:Applicable )?Industry:?\*\*:?\s*(.+)$`), func(g *models.GatheredInfo, v string) { g.ApplicableIndustry = v }},
	{regexp.MustCompile(`(?im)^\s*\*\*Problem Statement:?\*\*:?\s*(.+)$`), func(g *models.GatheredInfo, v string) { g.ProblemStatement = v }},
	{regexp.MustCompile(`(?im)^\s*\*\*User Journeys?:?\*\*:?\s*(.+)$`), func(g *models.GatheredInfo, v string) { g.UserJourneys = v }},
	{regexp.MustCompile(`(?im)^\s*\*\*Wow Factor:?\*\*:?\s*(.+)$`), func(g *models.GatheredInfo, v string) { g.WowFactor = v }},
	{regexp.MustCompile(`(?im)^\s*\*\*Expected Output:?\*\*:?\s*(.+)$`), func(g *models.GatheredInfo, v string) { g.ExpectedOutput = v }},
}

// ExtractMarkdownInfo pulls **Field:** value lines out of a reply that
// did not carry a parsable JSON block.
func ExtractMarkdownInfo(text string) models.GatheredInfo {
	var g models.GatheredInfo
	for _, f := range markdownFields {
		if m := f.re.FindStringSubmatch(text); m != nil {
			f.set(&g, strings.TrimSpace(m[1]))
		}
	}
	return g
}

// MergeGathered overlays non-empty fields of src onto dst.
func MergeGathered(dst *models.GatheredInfo, src models.GatheredInfo) {
	if src.AgentName != "" {
		dst.AgentName = src.AgentName
	}
	if src.ApplicablePersona != "" {
		dst.ApplicablePersona = src.ApplicablePersona
	}
	if src.ApplicableIndustry != "" {
		dst.ApplicableIndustry = src.ApplicableIndustry
	}
	if src.ProblemStatement != "" {
		dst.ProblemStatement = src.ProblemStatement
	}
	if src.UserJourneys != "" {
		dst.UserJourneys = src.UserJourneys
	}
	if src.WowFactor != "" {
		dst.WowFactor = src.WowFactor
	}
	if src.ExpectedOutput != "" {
		dst.ExpectedOutput = src.ExpectedOutput
	}
}

// Keyword categories for the no-LLM explore fallback.
var fallbackCategories = []struct {
	name     string
	keywords []string
}{
	{"finance", []string{"finance", "financial", "spend", "payment", "invoice", "budget", "expense"}},
	{"analytics", []string{"analytics", "analysis", "insight", "report", "dashboard", "data"}},
	{"customer", []string{"customer", "support", "service", "helpdesk", "ticket"}},
	{"content", []string{"content", "marketing", "campaign", "copy", "write", "draft"}},
	{"automation", []string{"automation", "automate", "workflow", "schedule", "pipeline"}},
}

// KeywordFilter matches the query against keyword categories and
// returns the agents tagged with any matched category. With no
// category hit, every agent comes back.
func KeywordFilter(query string, agents []models.Agent) []models.Agent {
	q := strings.ToLower(query)
	var matched []string
	for _, c := range fallbackCategories {
		for _, kw := range c.keywords {
			if strings.Contains(q, kw) {
				matched = append(matched, c.name)
				break
			}
		}
	}
	if len(matched) == 0 {
		return agents
	}
	var out []models.Agent
	for _, a := range agents {
		hay := strings.ToLower(a.Tags + " " + a.Description + " " + a.AgentName)
		for _, cat := range matched {
			if strings.Contains(hay, cat) {
				out = append(out, a)
				break
			}
		}
	}
	if len(out) == 0 {
		return agents
	}
	return out
}
