package annotations

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleTSV = "segment_id\tsource\thypothesis\treference\tlang\terror_type\tseverity\terror_start\terror_end\n" +
	"0\tHello\tHola\tHola\tes\tno_error\tneutral\t\t\n" +
	"1\tGoodbye\tAdios amigo\tAdiós\tes\taccuracy/mistranslation\tmajor\t0\t5\n"

func TestReadSample(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleTSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	start, end := 0, 5
	want := []Row{
		{SegmentID: 0, Source: "Hello", Hypothesis: "Hola", Reference: "Hola",
			Lang: "es", ErrorType: "no_error", Severity: "neutral"},
		{SegmentID: 1, Source: "Goodbye", Hypothesis: "Adios amigo", Reference: "Adiós",
			Lang: "es", ErrorType: "accuracy/mistranslation", Severity: "major",
			ErrorStart: &start, ErrorEnd: &end},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if !rows[0].IsNoError() {
		t.Errorf("sentinel row not recognized as no_error")
	}
	if rows[1].IsNoError() {
		t.Errorf("real error row recognized as no_error")
	}
}

func TestReadColumnOrderFree(t *testing.T) {
	shuffled := "severity\tlang\tsegment_id\thypothesis\tsource\treference\terror_type\n" +
		"minor\tth\t7\thyp\tsrc\tref\tfluency/grammar\n"
	rows, err := Read(strings.NewReader(shuffled))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.SegmentID != 7 || r.Lang != "th" || r.Severity != "minor" || r.ErrorType != "fluency/grammar" {
		t.Errorf("unexpected row: %+v", r)
	}
}

func TestReadMissingColumn(t *testing.T) {
	noSeverity := "segment_id\tsource\thypothesis\treference\tlang\terror_type\n" +
		"0\ta\tb\tc\tes\tno_error\n"
	_, err := Read(strings.NewReader(noSeverity))
	if err == nil {
		t.Fatal("expected error for missing severity column")
	}
	if !strings.Contains(err.Error(), "severity") {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestReadEmptyFile(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestReadBadSegmentID(t *testing.T) {
	bad := "segment_id\tsource\thypothesis\treference\tlang\terror_type\tseverity\n" +
		"abc\ta\tb\tc\tes\tno_error\tneutral\n"
	if _, err := Read(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for non-numeric segment_id")
	}
}

func TestReadBadOffset(t *testing.T) {
	bad := "segment_id\tsource\thypothesis\treference\tlang\terror_type\tseverity\terror_start\terror_end\n" +
		"0\ta\tb\tc\tes\taccuracy/omission\tmajor\tzero\t4\n"
	if _, err := Read(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for non-numeric error_start")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	esTSV := "segment_id\tsource\thypothesis\treference\tlang\terror_type\tseverity\n" +
		"0\ts\th\tr\tes\tno_error\tneutral\n"
	thTSV := "segment_id\tsource\thypothesis\treference\tlang\terror_type\tseverity\n" +
		"0\ts\th\tr\tth\tfluency/spelling\tminor\n"
	writeFile(t, filepath.Join(dir, "th.tsv"), thTSV)
	writeFile(t, filepath.Join(dir, "es.tsv"), esTSV)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me")

	rows, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Files are read in sorted name order.
	if rows[0].Lang != "es" || rows[1].Lang != "th" {
		t.Errorf("rows out of order: %s, %s", rows[0].Lang, rows[1].Lang)
	}

	if got := Langs(rows); !cmp.Equal(got, []string{"es", "th"}) {
		t.Errorf("Langs = %v", got)
	}
}

func TestLoadDirEmpty(t *testing.T) {
	if _, err := LoadDir(t.TempDir()); err == nil {
		t.Fatal("expected error for directory with no .tsv files")
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
