// Package analysis computes tier-aware correlation statistics between human
// MQM quality scores and automatic metric scores. Pearson and Spearman
// coefficients come from gonum; p-values use the exact t-transform.
package analysis

import (
	"math"
	"sort"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/mqm"
)

// minSamples is the smallest group size for which correlation coefficients
// are reported. Below this they are statistically meaningless and the record
// carries only n.
const minSamples = 3

// Table is the joined segment-level input: segment scores carrying the human
// quality column, plus one score column per computed metric, aligned by row.
type Table struct {
	Segments []mqm.SegmentScore
	// Metrics maps a metric name to its per-segment scores; each slice must
	// be len(Segments) long and row-aligned with Segments.
	Metrics map[string][]float64
}

// AddMetric appends a metric score column to the table.
func (t *Table) AddMetric(name string, scores []float64) {
	if t.Metrics == nil {
		t.Metrics = make(map[string][]float64)
	}
	t.Metrics[name] = scores
}

// Record is one per-(language, metric) correlation result. The four
// statistics are nil when the language group has fewer than minSamples
// observations, or when a coefficient is undefined (constant input).
type Record struct {
	Lang         string
	ResourceTier string
	Metric       string
	N            int
	PearsonR     *float64
	PearsonP     *float64
	SpearmanR    *float64
	SpearmanP    *float64
}

// Run computes one Record per (language in the table, requested metric with a
// column present). Metrics without a column are skipped silently: a partial
// run that never computed an expensive metric is not an analysis failure.
// Output is sorted by metric, then resource tier, then language.
func Run(tbl Table, metricNames []string, tiers TierMap) []Record {
	if tiers == nil {
		tiers = DefaultResourceTiers()
	}
	tierOf := tiers.langIndex()

	// Partition row indices by language, preserving row order inside each
	// group so human and metric vectors stay aligned.
	byLang := make(map[string][]int)
	var langs []string
	for i, s := range tbl.Segments {
		if _, ok := byLang[s.Lang]; !ok {
			langs = append(langs, s.Lang)
		}
		byLang[s.Lang] = append(byLang[s.Lang], i)
	}
	sort.Strings(langs)

	var records []Record
	for _, lang := range langs {
		rows := byLang[lang]
		human := make([]float64, len(rows))
		for i, r := range rows {
			human[i] = tbl.Segments[r].QualityScore
		}

		tier, ok := tierOf[lang]
		if !ok {
			tier = TierUnknown
		}

		for _, metric := range metricNames {
			col, ok := tbl.Metrics[metric]
			if !ok {
				continue
			}
			vals := make([]float64, len(rows))
			for i, r := range rows {
				vals[i] = col[r]
			}
			rec := correlate(human, vals, metric, lang)
			rec.ResourceTier = tier
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Metric != records[j].Metric {
			return records[i].Metric < records[j].Metric
		}
		if records[i].ResourceTier != records[j].ResourceTier {
			return records[i].ResourceTier < records[j].ResourceTier
		}
		return records[i].Lang < records[j].Lang
	})
	return records
}

// correlate computes both correlation families for one metric against the
// human scores. Groups below minSamples get an n-only record.
func correlate(human, metric []float64, metricName, lang string) Record {
	rec := Record{Lang: lang, Metric: metricName, N: len(human)}
	if len(human) < minSamples {
		return rec
	}

	pr, pp := pearson(human, metric)
	sr, sp := spearman(human, metric)

	// A constant vector leaves the coefficient undefined; report it the
	// same way as a too-small sample rather than inventing a number.
	if !math.IsNaN(pr) {
		rec.PearsonR, rec.PearsonP = &pr, &pp
	}
	if !math.IsNaN(sr) {
		rec.SpearmanR, rec.SpearmanP = &sr, &sp
	}
	return rec
}
