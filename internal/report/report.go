// Package report renders correlation results as charts: an HTML page with
// per-tier bar charts, and optional per-language scatter plots of metric
// score against human quality score.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/analysis"
)

// tierOrder presents tiers from most to least resourced; unknown last.
var tierOrder = []string{"high", "medium", "low", analysis.TierUnknown}

// WriteHTML renders the tier summary as grouped bar charts (one for Pearson,
// one for Spearman) into an HTML file at path.
func WriteHTML(path string, summary []analysis.TierSummary) error {
	tiers := presentTiers(summary)
	metrics := presentMetrics(summary)

	page := components.NewPage()
	page.AddCharts(
		tierBar("Mean Pearson r by resource tier", tiers, metrics, summary, pearsonOf),
		tierBar("Mean Spearman ρ by resource tier", tiers, metrics, summary, spearmanOf),
	)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func pearsonOf(s analysis.TierSummary) *float64  { return s.PearsonR }
func spearmanOf(s analysis.TierSummary) *float64 { return s.SpearmanR }

func tierBar(title string, tiers, metrics []string, summary []analysis.TierSummary, value func(analysis.TierSummary) *float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(tiers)

	byKey := make(map[string]analysis.TierSummary, len(summary))
	for _, s := range summary {
		byKey[s.Metric+"/"+s.ResourceTier] = s
	}

	for _, metric := range metrics {
		data := make([]opts.BarData, len(tiers))
		for i, tier := range tiers {
			if s, ok := byKey[metric+"/"+tier]; ok {
				if v := value(s); v != nil {
					data[i] = opts.BarData{Value: *v}
					continue
				}
			}
			// Missing or undefined means a gap, not a zero bar.
			data[i] = opts.BarData{Value: nil}
		}
		bar.AddSeries(metric, data)
	}
	return bar
}

func presentTiers(summary []analysis.TierSummary) []string {
	seen := map[string]bool{}
	for _, s := range summary {
		seen[s.ResourceTier] = true
	}
	var tiers []string
	for _, t := range tierOrder {
		if seen[t] {
			tiers = append(tiers, t)
			delete(seen, t)
		}
	}
	// Any custom tier names after the canonical ones, sorted.
	var rest []string
	for t := range seen {
		rest = append(rest, t)
	}
	sort.Strings(rest)
	return append(tiers, rest...)
}

func presentMetrics(summary []analysis.TierSummary) []string {
	seen := map[string]bool{}
	var metrics []string
	for _, s := range summary {
		if !seen[s.Metric] {
			seen[s.Metric] = true
			metrics = append(metrics, s.Metric)
		}
	}
	sort.Strings(metrics)
	return metrics
}
