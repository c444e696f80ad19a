// mqmbench runs the multilingual metric benchmark: it loads span-level MQM
// annotations, converts them to segment quality scores, computes the
// configured automatic metrics, and reports how well each metric correlates
// with the human judgments per language and per resource tier.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/analysis"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/config"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/monitoring"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/pipeline"
)

func main() {
	settingsPath := flag.String("settings", "settings.toml", "Path to the TOML settings file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	monitoring.Verbose = *verbose

	cfg, err := config.Load(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mqmbench: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mqmbench: %v\n", err)
		os.Exit(1)
	}

	printTierSummary(res.TierSummary)
	printCorrelations(res.Correlations)
}

func printTierSummary(summary []analysis.TierSummary) {
	fmt.Println("Correlation by resource tier (mean over languages):")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tTIER\tPEARSON\tSPEARMAN")
	for _, s := range summary {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Metric, s.ResourceTier,
			formatStat(s.PearsonR), formatStat(s.SpearmanR))
	}
	w.Flush()
	fmt.Println()
}

func printCorrelations(records []analysis.Record) {
	fmt.Println("Correlation by language:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tLANG\tTIER\tN\tPEARSON\tP\tSPEARMAN\tP")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.Metric, r.Lang, r.ResourceTier, r.N,
			formatStat(r.PearsonR), formatStat(r.PearsonP),
			formatStat(r.SpearmanR), formatStat(r.SpearmanP))
	}
	w.Flush()
}

// formatStat renders an optional statistic; correlations that could not be
// computed (too few samples, constant scores) show as a dash.
func formatStat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}
