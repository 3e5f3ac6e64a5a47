package agreements

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const jsonTable = `[
  {"Id": 10, "SndrInstitutionName": "City College", "SndrSubjectCode": "MATH", "SndrCourseNumber": "101",
   "SndrCourseTitle": "College Algebra", "SndrCourseCredits": 3,
   "RcvrInstitutionName": "State University", "RcvrDetail": "MATH 110 (3)"},
  {"Id": "11", "SndrSubjectCode": "ENGL", "SndrCourseNumber": "101", "SndrCourseCredits": "4.5",
   "RcvrInstitutionName": "State University", "RcvrDetail": "ENGL 100", "Condition": "Minimum grade C"},
  {"Id": {"nested": true}, "SndrSubjectCode": "BAD", "SndrCourseNumber": "000"}
]`

const yamlTable = `
- Id: 1
  SndrSubjectCode: HIST
  SndrCourseNumber: 210
  RcvrInstitutionName: Tech Institute
  RcvrDetail: HI 2100
- Id: 2
  SndrSubjectCode: ART
  SndrCourseNumber: "100"
  RcvrInstitutionName: Tech Institute
`

func TestParseJSON(t *testing.T) {
	table, err := Parse([]byte(jsonTable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if table.Skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", table.Skipped)
	}

	first := table.Rows[0]
	if first.ID != 10 || first.SndrCourseTitle != "College Algebra" || first.SndrCourseCredits != 3 {
		t.Fatalf("unexpected first row: %+v", first)
	}

	second := table.Rows[1]
	if second.ID != 11 || second.SndrCourseCredits != 4.5 || !second.HasCondition() {
		t.Fatalf("unexpected second row: %+v", second)
	}
}

func TestParseYAML(t *testing.T) {
	table, err := Parse([]byte(yamlTable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if table.Rows[0].Key() != "HIST 210" {
		t.Fatalf("expected numeric course number to be decoded as text, got %q", table.Rows[0].Key())
	}
}

func TestParseRejectsNonSequence(t *testing.T) {
	if _, err := Parse([]byte(`{"Id": 1}`)); err == nil {
		t.Fatal("expected error for non-array document")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agreements.json")
	if err := os.WriteFile(path, []byte(jsonTable), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Source != path {
		t.Fatalf("expected source %q, got %q", path, table.Source)
	}

	if _, err := LoadFile(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

const csvTable = `Id,SndrInstitutionName,SndrSubjectCode,SndrCourseNumber,SndrCourseTitle,SndrCourseCredits,RcvrInstitutionName,RcvrDetail,Condition
1,City College,MATH,101,Calculus I,4,State U,MATH 110,
2,City College,ENGL,2XX,,,State U,ENGL elective,grade C or better
x,City College,BIOL,100,,,State U,BIO 1,
`

func TestLoadFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agreements.CSV")
	if err := os.WriteFile(path, []byte(csvTable), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 2 || table.Skipped != 1 {
		t.Fatalf("expected 2 rows and 1 skipped, got %d and %d", table.Len(), table.Skipped)
	}

	first := table.Rows[0]
	if first.ID != 1 || first.SndrCourseCredits != 4 || first.RcvrDetail != "MATH 110" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if !table.Rows[1].HasCondition() || table.Rows[1].SndrCourseCredits != 0 {
		t.Fatalf("unexpected second row: %+v", table.Rows[1])
	}
}

func TestLoaderStates(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	loader := NewLoader(zap.New(core))

	if _, err := loader.Table(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if loader.Status().State != StateLoading {
		t.Fatalf("expected loading state, got %s", loader.Status().State)
	}

	status := loader.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if status.State != StateFailed || status.Err == nil {
		t.Fatalf("expected failed state, got %+v", status)
	}

	// Later calls must not override the first outcome.
	loader.Set(Loaded(NewTable(nil)))
	if loader.Status().State != StateFailed {
		t.Fatalf("expected state to stay failed, got %s", loader.Status().State)
	}

	if _, err := loader.Table(); err == nil {
		t.Fatal("expected load error from Table")
	}

	if got := observed.FilterMessage("agreements table failed to load").Len(); got != 1 {
		t.Fatalf("expected one failure log entry, got %d", got)
	}
}

func TestLoaderWait(t *testing.T) {
	loader := NewLoader(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	go loader.Set(Loaded(NewTable(sampleRows())))

	status, err := loader.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != StateLoaded || status.Table.Len() != len(sampleRows()) {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestLoaderSetNilTable(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	loader := NewLoader(zap.New(core))

	loader.Set(Loaded(nil))

	table, err := loader.Table()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table == nil || table.Len() != 0 {
		t.Fatalf("expected an empty table, got %+v", table)
	}
	if got := len(table.Match(nil)); got != 0 {
		t.Fatalf("expected no matches, got %d", got)
	}
	if got := observed.FilterMessage("agreements table loaded").Len(); got != 1 {
		t.Fatalf("expected one loaded log entry, got %d", got)
	}
}
