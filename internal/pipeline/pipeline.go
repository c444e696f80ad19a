// Package pipeline orchestrates a full benchmark run: load annotations,
// convert them to segment scores, run the configured metrics, correlate
// against the human scores, and persist the results.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/analysis"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/annotations"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/config"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/metrics"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/monitoring"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/mqm"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/report"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/results"
)

// Result carries the two output tables of a run.
type Result struct {
	Correlations []analysis.Record
	TierSummary  []analysis.TierSummary
	Segments     int
	RunID        string // empty when database persistence is disabled
}

// Run executes the whole pipeline under cfg. Converter and configuration
// errors abort the run with no partial output written; a metric whose
// scoring service fails is logged and skipped so the analysis still covers
// the metrics that did complete.
func Run(ctx context.Context, cfg config.Config) (*Result, error) {
	scorers, err := buildScorers(cfg)
	if err != nil {
		return nil, err
	}

	monitoring.Logf("Loading annotations from %s", cfg.Data.AnnotationsDir)
	rows, err := annotations.LoadDir(cfg.Data.AnnotationsDir)
	if err != nil {
		return nil, err
	}
	langs := annotations.Langs(rows)
	monitoring.Logf("Loaded %d annotation rows across %d languages", len(rows), len(langs))

	monitoring.Logf("Converting span-level annotations to segment scores")
	segments, err := mqm.Convert(rows)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("%d segments", len(segments))

	tbl := analysis.Table{Segments: segments}
	var metricNames []string
	for _, scorer := range scorers {
		monitoring.Logf("Computing %s", scorer.Name())
		col, err := scoreByLanguage(ctx, scorer, segments)
		if err != nil {
			monitoring.Logf("WARNING: %s failed, skipping its column: %v", scorer.Name(), err)
			continue
		}
		tbl.AddMetric(scorer.Name(), col)
		metricNames = append(metricNames, scorer.Name())
	}

	tiers, err := config.LoadTiers(cfg.Data.TiersFile)
	if err != nil {
		return nil, err
	}

	monitoring.Logf("Running correlation analysis")
	records := analysis.Run(tbl, metricNames, tiers)
	summary := analysis.SummarizeByTier(records)

	if err := results.ExportCSV(cfg.Data.OutputDir, records, summary); err != nil {
		return nil, err
	}
	monitoring.Logf("Results saved to %s", cfg.Data.OutputDir)

	res := &Result{Correlations: records, TierSummary: summary, Segments: len(segments)}

	if cfg.Database.Enabled {
		store, err := results.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		runID, err := store.SaveRun(cfg.Data.AnnotationsDir, len(segments), records, summary)
		if err != nil {
			return nil, err
		}
		res.RunID = runID
		monitoring.Logf("Run %s recorded in %s", runID, cfg.Database.Path)
	}

	if cfg.Report.HTML {
		path := filepath.Join(cfg.Data.OutputDir, "report.html")
		if err := report.WriteHTML(path, summary); err != nil {
			return nil, err
		}
	}
	if cfg.Report.Plots {
		dir := filepath.Join(cfg.Data.OutputDir, "plots")
		if err := report.WriteScatterPlots(dir, tbl, metricNames); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// buildScorers turns the metric selection into Scorer instances, in the
// configured run order with GEMBA last. Construction failures are
// configuration errors and abort before any work is done.
func buildScorers(cfg config.Config) ([]metrics.Scorer, error) {
	var scorers []metrics.Scorer
	for _, name := range cfg.Metrics.Run {
		switch name {
		case "bleu":
			scorers = append(scorers, metrics.NewBLEU())
		case "chrf":
			scorers = append(scorers, metrics.NewChrF())
		case "bertscore":
			s, err := metrics.NewRemote(remoteOpts(name, cfg.Metrics.BERTScore))
			if err != nil {
				return nil, err
			}
			scorers = append(scorers, s)
		case "comet":
			s, err := metrics.NewRemote(remoteOpts(name, cfg.Metrics.Comet))
			if err != nil {
				return nil, err
			}
			scorers = append(scorers, s)
		case "xcomet":
			s, err := metrics.NewRemote(remoteOpts(name, cfg.Metrics.XComet))
			if err != nil {
				return nil, err
			}
			scorers = append(scorers, s)
		default:
			return nil, fmt.Errorf("unknown metric %q", name)
		}
	}
	if cfg.Metrics.RunGemba {
		g, err := metrics.NewGemba(cfg.Metrics.Gemba.Model, cfg.Metrics.Gemba.Endpoint)
		if err != nil {
			return nil, err
		}
		scorers = append(scorers, g)
	}
	return scorers, nil
}

func remoteOpts(name string, mc config.ModelConfig) metrics.RemoteOptions {
	return metrics.RemoteOptions{
		Name:      name,
		Model:     mc.Model,
		Endpoint:  mc.Endpoint,
		BatchSize: mc.BatchSize,
	}
}

// scoreByLanguage invokes the scorer once per language group (wrappers take
// a single language code) and scatters the scores back into a row-aligned
// column.
func scoreByLanguage(ctx context.Context, scorer metrics.Scorer, segments []mqm.SegmentScore) ([]float64, error) {
	byLang := make(map[string][]int)
	var langs []string
	for i, s := range segments {
		if _, ok := byLang[s.Lang]; !ok {
			langs = append(langs, s.Lang)
		}
		byLang[s.Lang] = append(byLang[s.Lang], i)
	}
	sort.Strings(langs)

	col := make([]float64, len(segments))
	for _, lang := range langs {
		idx := byLang[lang]
		sources := make([]string, len(idx))
		hyps := make([]string, len(idx))
		refs := make([]string, len(idx))
		for i, r := range idx {
			sources[i] = segments[r].Source
			hyps[i] = segments[r].Hypothesis
			refs[i] = segments[r].Reference
		}
		scores, err := scorer.Score(ctx, sources, hyps, refs, lang)
		if err != nil {
			return nil, fmt.Errorf("%s (%s): %w", scorer.Name(), lang, err)
		}
		if len(scores) != len(idx) {
			return nil, fmt.Errorf("%s (%s): got %d scores for %d segments",
				scorer.Name(), lang, len(scores), len(idx))
		}
		for i, r := range idx {
			col[r] = scores[i]
		}
	}
	return col, nil
}
