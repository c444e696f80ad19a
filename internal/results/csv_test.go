package results

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/analysis"
)

func fptr(v float64) *float64 { return &v }

func TestCSVWriter_RoundsAndOrdersColumns(t *testing.T) {
	var corr, sum bytes.Buffer
	w := NewCSVWriter(&corr, &sum)
	w.WriteHeaders()
	w.WriteCorrelation(analysis.Record{
		Lang: "es", ResourceTier: "high", Metric: "bleu", N: 120,
		PearsonR: fptr(0.81234567), PearsonP: fptr(0.0001),
		SpearmanR: fptr(0.79), SpearmanP: fptr(0.0002),
	})
	w.WriteTierSummary(analysis.TierSummary{
		Metric: "bleu", ResourceTier: "high",
		PearsonR: fptr(0.75), SpearmanR: fptr(0.7),
	})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	wantCorr := "lang,resource_tier,metric,n,pearson_r,pearson_p,spearman_r,spearman_p\n" +
		"es,high,bleu,120,0.812346,0.000100,0.790000,0.000200\n"
	if diff := cmp.Diff(wantCorr, corr.String()); diff != "" {
		t.Errorf("correlations csv mismatch (-want +got):\n%s", diff)
	}

	wantSum := "metric,resource_tier,pearson_r,spearman_r\n" +
		"bleu,high,0.750000,0.700000\n"
	if diff := cmp.Diff(wantSum, sum.String()); diff != "" {
		t.Errorf("tier summary csv mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVWriter_UndefinedStatsBecomeEmptyCells(t *testing.T) {
	var corr, sum bytes.Buffer
	w := NewCSVWriter(&corr, &sum)
	w.WriteHeaders()
	w.WriteCorrelation(analysis.Record{
		Lang: "mh", ResourceTier: "low", Metric: "chrf", N: 2,
	})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want := "lang,resource_tier,metric,n,pearson_r,pearson_p,spearman_r,spearman_p\n" +
		"mh,low,chrf,2,,,,\n"
	if diff := cmp.Diff(want, corr.String()); diff != "" {
		t.Errorf("undefined stats must export as empty cells (-want +got):\n%s", diff)
	}
}

func TestExportCSV_WritesBothFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	records := []analysis.Record{
		{Lang: "es", ResourceTier: "high", Metric: "bleu", N: 5,
			PearsonR: fptr(0.9), PearsonP: fptr(0.03),
			SpearmanR: fptr(0.9), SpearmanP: fptr(0.03)},
	}
	summary := []analysis.TierSummary{
		{Metric: "bleu", ResourceTier: "high", PearsonR: fptr(0.9), SpearmanR: fptr(0.9)},
	}
	if err := ExportCSV(dir, records, summary); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	for _, name := range []string{"correlations.csv", "tier_summary.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
