package store

import (
	"testing"

	"github.com/vigneshgurumohan/agents-store/pkg/models"
)

func TestColumns(t *testing.T) {
	cols := Columns[models.Enquiry]()
	want := []string{"enquiry_id", "agent_id", "name", "email", "company", "message", "status", "created_at"}
	if len(cols) != len(want) {
		t.Fatalf("Columns: got %v", cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("Columns[%d]: got %q want %q", i, cols[i], want[i])
		}
	}
}

func TestEncodeDecode_roundtrip(t *testing.T) {
	in := models.Agent{
		AgentID:       "agent_007",
		AgentName:     "Churn Predictor",
		ISVID:         "isv_002",
		AdminApproved: "no",
	}
	rec := Encode(in)
	out := Decode[models.Agent](Columns[models.Agent](), rec)
	if out != in {
		t.Errorf("roundtrip: got %+v want %+v", out, in)
	}
}

func TestDecode_toleratesExtraAndMissingColumns(t *testing.T) {
	header := []string{"agent_id", "legacy_score", "agent_name"}
	out := Decode[models.Agent](header, []string{"agent_001", "42", "Spend Analyzer"})
	if out.AgentID != "agent_001" || out.AgentName != "Spend Analyzer" {
		t.Errorf("extra column: %+v", out)
	}

	// Short record: trailing columns stay zero.
	out = Decode[models.Agent](header, []string{"agent_002"})
	if out.AgentID != "agent_002" || out.AgentName != "" {
		t.Errorf("short record: %+v", out)
	}
}

func TestField(t *testing.T) {
	a := models.Agent{AgentName: "Spend Analyzer"}
	if v, ok := Field(a, "agent_name"); !ok || v != "Spend Analyzer" {
		t.Errorf("Field: %q %v", v, ok)
	}
	if _, ok := Field(a, "no_such_column"); ok {
		t.Error("Field should miss unknown columns")
	}
}

func TestApply(t *testing.T) {
	a := models.Agent{AgentID: "agent_001"}
	if err := Apply(&a, map[string]string{"admin_approved": "yes", "tags": "finance"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if a.AdminApproved != "yes" || a.Tags != "finance" {
		t.Errorf("Apply: %+v", a)
	}
	if err := Apply(&a, map[string]string{"bogus": "x"}); err == nil {
		t.Error("Apply should reject unknown columns")
	}
}

func TestFillNA(t *testing.T) {
	a := FillNA(models.Agent{AgentID: "agent_001", AgentName: "Spend Analyzer"})
	if a.AgentID != "agent_001" || a.AgentName != "Spend Analyzer" {
		t.Errorf("FillNA changed set fields: %+v", a)
	}
	if a.Description != "na" || a.ImageURL != "na" {
		t.Errorf("FillNA left empties: %+v", a)
	}

	rows := FillNAAll([]models.ISV{{ISVID: "isv_001"}, {ISVID: "isv_002", Website: "https://x"}})
	if rows[0].ISVName != "na" || rows[1].Website != "https://x" {
		t.Errorf("FillNAAll: %+v", rows)
	}
}
