package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/analysis"
)

// WriteScatterPlots saves one PNG per (metric, language) pair showing metric
// score against human quality score. Heavy on files for large runs, so it is
// off by default in the settings.
func WriteScatterPlots(dir string, tbl analysis.Table, metricNames []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plots dir: %w", err)
	}

	byLang := make(map[string][]int)
	var langs []string
	for i, s := range tbl.Segments {
		if _, ok := byLang[s.Lang]; !ok {
			langs = append(langs, s.Lang)
		}
		byLang[s.Lang] = append(byLang[s.Lang], i)
	}
	sort.Strings(langs)

	for _, metric := range metricNames {
		col, ok := tbl.Metrics[metric]
		if !ok {
			continue
		}
		for _, lang := range langs {
			rows := byLang[lang]
			pts := make(plotter.XYs, 0, len(rows))
			for _, r := range rows {
				pts = append(pts, plotter.XY{X: tbl.Segments[r].QualityScore, Y: col[r]})
			}

			p := plot.New()
			p.Title.Text = fmt.Sprintf("%s vs human quality (%s)", metric, lang)
			p.X.Label.Text = "human quality score"
			p.Y.Label.Text = metric
			p.X.Min, p.X.Max = 0, 1

			scatter, err := plotter.NewScatter(pts)
			if err != nil {
				return fmt.Errorf("scatter %s/%s: %w", metric, lang, err)
			}
			scatter.Radius = vg.Points(2)
			p.Add(scatter)

			file := filepath.Join(dir, fmt.Sprintf("scatter_%s_%s.png", metric, lang))
			if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
				return fmt.Errorf("save %s: %w", file, err)
			}
		}
	}
	return nil
}
