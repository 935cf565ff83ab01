package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "obs.csv", "participant,duration\nP01, 12.5\nP02,\n")
	tab, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if diff := cmp.Diff([]string{"participant", "duration"}, tab.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tab.Rows))
	}

	v, missing, err := tab.Float(0, "duration")
	if err != nil || missing {
		t.Fatalf("Float(0) = %v missing=%v err=%v", v, missing, err)
	}
	if v != 12.5 {
		t.Errorf("Float(0) = %v, want 12.5", v)
	}

	_, missing, err = tab.Float(1, "duration")
	if err != nil {
		t.Fatalf("Float(1): %v", err)
	}
	if !missing {
		t.Error("empty cell should report missing")
	}
}

func TestReadCSV_BadNumber(t *testing.T) {
	path := writeFile(t, "obs.csv", "participant,duration\nP01,abc\n")
	tab, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if _, _, err := tab.Float(0, "duration"); err == nil {
		t.Error("expected error for non-numeric cell")
	}
}

func TestColumn_Missing(t *testing.T) {
	path := writeFile(t, "obs.csv", "a,b\n1,2\n")
	tab, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if _, err := tab.Column("c"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestWriteCSV_Deterministic(t *testing.T) {
	dir := t.TempDir()
	header := []string{"x", "y"}
	rows := [][]string{{"1", "a"}, {"2", "b"}}

	p1 := filepath.Join(dir, "one.csv")
	p2 := filepath.Join(dir, "two.csv")
	if err := WriteCSV(p1, header, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if err := WriteCSV(p2, header, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	b1, _ := os.ReadFile(p1)
	b2, _ := os.ReadFile(p2)
	if string(b1) != string(b2) {
		t.Error("identical input produced different bytes")
	}
	want := "x,y\n1,a\n2,b\n"
	if string(b1) != want {
		t.Errorf("output = %q, want %q", string(b1), want)
	}
}

func TestWriteCSV_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "out.csv")
	if err := WriteCSV(path, []string{"a"}, [][]string{{"1"}}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}
