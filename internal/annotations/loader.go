package annotations

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/monitoring"
)

// requiredColumns are the columns every annotation file must carry.
// error_start and error_end are optional.
var requiredColumns = []string{
	"segment_id", "source", "hypothesis", "reference", "lang",
	"error_type", "severity",
}

// LoadDir reads every .tsv file under dir into a single row table. The file
// basename (minus extension) is expected to match the lang column but is not
// enforced; the lang column is authoritative. Files are read in sorted name
// order so repeated runs see identical row order.
func LoadDir(dir string) ([]Row, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read annotations dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".tsv" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no .tsv annotation files in %s", dir)
	}

	var rows []Row
	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		fileRows, err := Read(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		rows = append(rows, fileRows...)
	}

	validateLangTags(rows)
	return rows, nil
}

// Read parses one tab-separated annotation file. The first record is the
// header; column order is free as long as the required columns are present.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty annotation file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var rows []Row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		segID, err := strconv.Atoi(field("segment_id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad segment_id %q", line, field("segment_id"))
		}

		row := Row{
			SegmentID:  segID,
			Source:     field("source"),
			Hypothesis: field("hypothesis"),
			Reference:  field("reference"),
			Lang:       field("lang"),
			ErrorType:  field("error_type"),
			Severity:   field("severity"),
		}

		if row.ErrorStart, err = optionalInt(field("error_start")); err != nil {
			return nil, fmt.Errorf("line %d: bad error_start: %w", line, err)
		}
		if row.ErrorEnd, err = optionalInt(field("error_end")); err != nil {
			return nil, fmt.Errorf("line %d: bad error_end: %w", line, err)
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// validateLangTags checks lang codes against BCP-47. Annotation batches
// sometimes arrive with ad-hoc codes; those only cost a warning because the
// tier lookup already has an "unknown" bucket for them.
func validateLangTags(rows []Row) {
	seen := map[string]bool{}
	for _, r := range rows {
		if seen[r.Lang] {
			continue
		}
		seen[r.Lang] = true
		if _, err := language.Parse(r.Lang); err != nil {
			monitoring.Logf("WARNING: language code %q is not valid BCP-47: %v", r.Lang, err)
		}
	}
}

// Langs returns the distinct language codes present in rows, sorted.
func Langs(rows []Row) []string {
	seen := map[string]bool{}
	var langs []string
	for _, r := range rows {
		if !seen[r.Lang] {
			seen[r.Lang] = true
			langs = append(langs, r.Lang)
		}
	}
	sort.Strings(langs)
	return langs
}
