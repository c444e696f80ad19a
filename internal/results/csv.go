// Package results persists benchmark output: CSV artifacts for diffing and a
// SQLite database keeping a history of runs.
package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/analysis"
)

// Column orders are part of the output contract: downstream diffs rely on
// byte-identical exports for identical inputs.
var (
	correlationHeader = []string{
		"lang", "resource_tier", "metric", "n",
		"pearson_r", "pearson_p", "spearman_r", "spearman_p",
	}
	tierSummaryHeader = []string{"metric", "resource_tier", "pearson_r", "spearman_r"}
)

// CSVWriter wraps csv.Writer with methods for the two result tables.
type CSVWriter struct {
	Correlations *csv.Writer
	Summary      *csv.Writer
}

// NewCSVWriter creates a CSVWriter over the given destinations.
func NewCSVWriter(correlations, summary io.Writer) *CSVWriter {
	return &CSVWriter{
		Correlations: csv.NewWriter(correlations),
		Summary:      csv.NewWriter(summary),
	}
}

// WriteHeaders writes the header row to both tables.
func (c *CSVWriter) WriteHeaders() {
	c.Correlations.Write(correlationHeader)
	c.Summary.Write(tierSummaryHeader)
}

// WriteCorrelation writes one per-(language, metric) row. Undefined
// statistics become empty cells, never zeros.
func (c *CSVWriter) WriteCorrelation(r analysis.Record) {
	c.Correlations.Write([]string{
		r.Lang,
		r.ResourceTier,
		r.Metric,
		strconv.Itoa(r.N),
		formatStat(r.PearsonR),
		formatStat(r.PearsonP),
		formatStat(r.SpearmanR),
		formatStat(r.SpearmanP),
	})
}

// WriteTierSummary writes one per-(metric, tier) row.
func (c *CSVWriter) WriteTierSummary(s analysis.TierSummary) {
	c.Summary.Write([]string{
		s.Metric,
		s.ResourceTier,
		formatStat(s.PearsonR),
		formatStat(s.SpearmanR),
	})
}

// Flush flushes both writers and reports the first write error.
func (c *CSVWriter) Flush() error {
	c.Correlations.Flush()
	c.Summary.Flush()
	if err := c.Correlations.Error(); err != nil {
		return fmt.Errorf("write correlations: %w", err)
	}
	if err := c.Summary.Error(); err != nil {
		return fmt.Errorf("write tier summary: %w", err)
	}
	return nil
}

func formatStat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}

// ExportCSV writes correlations.csv and tier_summary.csv under outputDir,
// creating the directory if needed.
func ExportCSV(outputDir string, records []analysis.Record, summary []analysis.TierSummary) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	corrFile, err := os.Create(filepath.Join(outputDir, "correlations.csv"))
	if err != nil {
		return fmt.Errorf("create correlations.csv: %w", err)
	}
	defer corrFile.Close()

	sumFile, err := os.Create(filepath.Join(outputDir, "tier_summary.csv"))
	if err != nil {
		return fmt.Errorf("create tier_summary.csv: %w", err)
	}
	defer sumFile.Close()

	w := NewCSVWriter(corrFile, sumFile)
	w.WriteHeaders()
	for _, r := range records {
		w.WriteCorrelation(r)
	}
	for _, s := range summary {
		w.WriteTierSummary(s)
	}
	return w.Flush()
}
