package batch

import (
	"os"
	"path/filepath"
	"testing"

	"storyscore/internal/tabular"
)

func writeGroup(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFromTableSkipsPlaceholderRows(t *testing.T) {
	tbl := tabular.Table{
		Name:    "onboarding",
		Headers: []string{"ID", "Title", "Description", "Owner"},
		Rows: [][]string{
			{"Example", "How to fill this in", "sample text", ""},
			{"HU-001", "Sign up", "As a user I sign up", "Ana"},
			{"", "orphan row", "", ""},
			{"HU-002", "Verify email", "As a user I verify", "Luis"},
		},
		DataRow: 2,
	}

	records := FromTable(tbl)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Identity != "HU-001" || records[0].Position != 3 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Position != 5 {
		t.Fatalf("expected position 5 for HU-002, got %d", records[1].Position)
	}
	if records[0].Fields["Owner"] != "Ana" {
		t.Fatalf("expected extra column in Fields, got %v", records[0].Fields)
	}
	if _, ok := records[0].Fields["Title"]; ok {
		t.Fatal("title must not be duplicated into Fields")
	}
}

func TestLoadDirGroupsAndLimit(t *testing.T) {
	dir := t.TempDir()
	writeGroup(t, dir, "alpha.csv", "ID,Title,Description\n1,a,da\n2,b,db\n")
	writeGroup(t, dir, "beta.csv", "ID,Title,Description\n1,c,dc\n")

	records, err := Load(dir, "", 0, 200)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Group != "alpha" || records[2].Group != "beta" {
		t.Fatalf("unexpected group order: %s %s", records[0].Group, records[2].Group)
	}

	limited, err := Load(dir, "", 2, 200)
	if err != nil {
		t.Fatalf("Load limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(limited))
	}

	only, err := Load(dir, "beta", 0, 200)
	if err != nil {
		t.Fatalf("Load beta: %v", err)
	}
	if len(only) != 1 || only[0].Group != "beta" {
		t.Fatalf("unexpected beta records: %+v", only)
	}
}

func TestLoadEnforcesPerRunCap(t *testing.T) {
	dir := t.TempDir()
	writeGroup(t, dir, "alpha.csv", "ID,Title,Description\n1,a,da\n2,b,db\n3,c,dc\n")

	if _, err := Load(dir, "", 0, 2); err == nil {
		t.Fatal("expected per-run cap error")
	}
}

func TestLoadUnknownGroup(t *testing.T) {
	dir := t.TempDir()
	writeGroup(t, dir, "alpha.csv", "ID,Title,Description\n1,a,da\n")

	if _, err := Load(dir, "missing", 0, 200); err == nil {
		t.Fatal("expected error for unknown group")
	}
}
