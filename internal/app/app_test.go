package app

import (
	"os"
	"path/filepath"
	"testing"

	"storyscore/internal/domain"
	"storyscore/internal/history"
)

func TestLoadHistoryEmptyDirMeansFirstRun(t *testing.T) {
	idx, err := loadHistory("", "HU")
	if err != nil {
		t.Fatalf("loadHistory: %v", err)
	}
	if idx.Len() != 0 {
		t.Fatalf("first run index Len = %d, want 0", idx.Len())
	}
	if prev := idx.FindMatch(domain.Record{Group: "g", Identity: "HU-1"}, history.DefaultMatchPolicy()); prev != nil {
		t.Fatal("first run must not match anything")
	}
}

func TestLoadHistoryReadsScoredCSVs(t *testing.T) {
	dir := t.TempDir()
	content := "ID,Title,Description,SCORE TOTAL (0-100),LEVEL,functional,tech_layers,ux_ui,integrations,regulatory,criteria,TECH LAYERS,SUMMARY,GAP functional,GAP tech_layers,GAP ux_ui,GAP integrations,GAP regulatory,GAP criteria\n" +
		"HU-007,Refund flow,As a user I request a refund,72.5,Acceptable,8/10,7/10,6/10,7/10,5/10,8/10,UI,Solid,Complete,g2,g3,g4,g5,g6\n"
	if err := os.WriteFile(filepath.Join(dir, "payments.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-CSV files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	idx, err := loadHistory(dir, "HU")
	if err != nil {
		t.Fatalf("loadHistory: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}
	prev := idx.FindMatch(domain.Record{Group: "payments", Identity: "7"}, history.DefaultMatchPolicy())
	if prev == nil {
		t.Fatal("expected identity match")
	}
	if prev.TotalScore != 72.5 {
		t.Errorf("TotalScore = %v", prev.TotalScore)
	}
}

func TestFmtETA(t *testing.T) {
	if got := fmtETA(0); got != "unknown" {
		t.Errorf("fmtETA(0) = %q", got)
	}
	if got := fmtETA(90); got != "1m30s" {
		t.Errorf("fmtETA(90) = %q", got)
	}
}
