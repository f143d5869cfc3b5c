package chat

import (
	"testing"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

func TestSplitTrailingJSON(t *testing.T) {
	clean, block, ok := SplitTrailingJSON("Here you go.\n{\"filtered_agents\": [\"Spend Analyzer\"]}")
	if !ok || clean != "Here you go." {
		t.Fatalf("split: %q %q %v", clean, block, ok)
	}
	if block != `{"filtered_agents": ["Spend Analyzer"]}` {
		t.Errorf("block: %q", block)
	}

	// Braces inside the prose must not confuse the scan.
	clean, block, ok = SplitTrailingJSON(`Use {placeholders} freely. {"lets_build": true}`)
	if !ok || clean != "Use {placeholders} freely." || block != `{"lets_build": true}` {
		t.Errorf("prose braces: %q %q %v", clean, block, ok)
	}

	if _, _, ok := SplitTrailingJSON("no structured block here"); ok {
		t.Error("plain text should not split")
	}
	if _, _, ok := SplitTrailingJSON("trailing brace but not json }"); ok {
		t.Error("invalid json should not split")
	}
}

func TestParseCreateMetadata(t *testing.T) {
	m, err := ParseCreateMetadata(`{"question_count": 4, "lets_build": true, "gathered_info": {"agent_name": "Contract Reviewer"}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.QuestionCount != 4 || !m.LetsBuild || m.GatheredInfo.AgentName != "Contract Reviewer" {
		t.Errorf("metadata: %+v", m)
	}
	if _, err := ParseCreateMetadata("{broken"); err == nil {
		t.Error("malformed block should error")
	}
}

func TestExtractMarkdownInfo(t *testing.T) {
	text := `Great, here is what I have so far:
**Agent Name:** Contract Reviewer
**Persona**: legal counsel
**Applicable Industry:** legal services
**Problem Statement:** contract review is slow
`
	g := ExtractMarkdownInfo(text)
	if g.AgentName != "Contract Reviewer" || g.ApplicablePersona != "legal counsel" {
		t.Errorf("extract: %+v", g)
	}
	if g.ApplicableIndustry != "legal services" || g.ProblemStatement != "contract review is slow" {
		t.Errorf("extract: %+v", g)
	}
	if g.WowFactor != "" {
		t.Errorf("unexpected field: %+v", g)
	}
}

func TestMergeGathered(t *testing.T) {
	dst := models.GatheredInfo{AgentName: "Contract Reviewer", WowFactor: "inline redlines"}
	MergeGathered(&dst, models.GatheredInfo{ApplicablePersona: "legal counsel", WowFactor: ""})
	if dst.AgentName != "Contract Reviewer" || dst.ApplicablePersona != "legal counsel" {
		t.Errorf("merge: %+v", dst)
	}
	if dst.WowFactor != "inline redlines" {
		t.Error("empty src field overwrote dst")
	}
}

func TestKeywordFilter(t *testing.T) {
	agents := []models.Agent{
		{AgentName: "Spend Analyzer", Tags: "finance, analytics"},
		{AgentName: "Campaign Writer", Tags: "content, automation"},
	}

	out := KeywordFilter("something for invoice processing", agents)
	if len(out) != 1 || out[0].AgentName != "Spend Analyzer" {
		t.Errorf("finance query: %+v", out)
	}

	out = KeywordFilter("help me draft marketing copy", agents)
	if len(out) != 1 || out[0].AgentName != "Campaign Writer" {
		t.Errorf("content query: %+v", out)
	}

	// No category hit returns the whole catalog.
	out = KeywordFilter("zzz", agents)
	if len(out) != 2 {
		t.Errorf("no hit: %+v", out)
	}
}
