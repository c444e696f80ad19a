package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/config"
)

const tsvHeader = "segment_id\tsource\thypothesis\treference\tlang\terror_type\tseverity\n"

func writeAnnotations(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(tsvHeader+body), 0o644)
		require.NoError(t, err)
	}
}

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Data.AnnotationsDir = t.TempDir()
	cfg.Data.OutputDir = t.TempDir()
	cfg.Database.Enabled = false
	cfg.Report.HTML = false
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Database.Enabled = true
	cfg.Database.Path = filepath.Join(t.TempDir(), "bench.db")
	cfg.Report.HTML = true

	// Four segments per language so correlations have enough samples.
	writeAnnotations(t, cfg.Data.AnnotationsDir, map[string]string{
		"es.tsv": "0\tgood morning\tbuenos días\tbuenos días\tes\tno_error\tneutral\n" +
			"1\tsee you\thasta luego pronto\thasta luego\tes\tfluency/grammar\tminor\n" +
			"2\tthank you\tgracias ahí\tgracias\tes\taccuracy/addition\tmajor\n" +
			"3\tplease\tpor nada favor\tpor favor\tes\taccuracy/mistranslation\tmajor\n" +
			"3\tplease\tpor nada favor\tpor favor\tes\tfluency/spelling\tminor\n",
		"th.tsv": "0\thello\tสวัสดี\tสวัสดี\tth\tno_error\tneutral\n" +
			"1\tcat\tแมว a\tแมว\tth\tfluency/punctuation\tminor\n" +
			"2\tdog\tb c\tหมา\tth\taccuracy/mistranslation\tmajor\n" +
			"3\tbird\td e f\tนก\tth\taccuracy/omission\tmajor\n",
	})

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 8, res.Segments)
	assert.NotEmpty(t, res.RunID)

	// Two metrics x two languages.
	assert.Len(t, res.Correlations, 4)
	for _, rec := range res.Correlations {
		assert.Equal(t, 4, rec.N)
	}
	assert.NotEmpty(t, res.TierSummary)

	for _, name := range []string{"correlations.csv", "tier_summary.csv", "report.html"} {
		_, err := os.Stat(filepath.Join(cfg.Data.OutputDir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(cfg.Database.Path)
	assert.NoError(t, err)
}

func TestRunFailingMetricIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := baseConfig(t)
	cfg.Metrics.Run = []string{"bleu", "comet"}
	cfg.Metrics.Comet.Endpoint = srv.URL

	writeAnnotations(t, cfg.Data.AnnotationsDir, map[string]string{
		"es.tsv": "0\ta\tw x\tw x\tes\tno_error\tneutral\n" +
			"1\tb\tx y\tx z\tes\tfluency/grammar\tminor\n" +
			"2\tc\ty z\ty\tes\taccuracy/omission\tmajor\n",
	})

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	// Only the BLEU column survives; the comet failure degrades, not aborts.
	require.Len(t, res.Correlations, 1)
	assert.Equal(t, "bleu", res.Correlations[0].Metric)
}

func TestRunRemoteMetric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Hypotheses []string `json:"hypotheses"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		scores := make([]float64, len(req.Hypotheses))
		for i, h := range req.Hypotheses {
			scores[i] = 1.0 / float64(1+len(h))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"scores": scores})
	}))
	defer srv.Close()

	cfg := baseConfig(t)
	cfg.Metrics.Run = []string{"comet"}
	cfg.Metrics.Comet.Endpoint = srv.URL

	writeAnnotations(t, cfg.Data.AnnotationsDir, map[string]string{
		"es.tsv": "0\ta\tuno\tuno\tes\tno_error\tneutral\n" +
			"1\tb\tdos dos\tdos\tes\tfluency/grammar\tminor\n" +
			"2\tc\ttres tres tres\ttres\tes\taccuracy/addition\tmajor\n",
	})

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, res.Correlations, 1)
	assert.Equal(t, "comet", res.Correlations[0].Metric)
	assert.Equal(t, 3, res.Correlations[0].N)
}

func TestRunUnknownSeverityAborts(t *testing.T) {
	cfg := baseConfig(t)
	writeAnnotations(t, cfg.Data.AnnotationsDir, map[string]string{
		"es.tsv": "0\ta\tb\tc\tes\taccuracy/mistranslation\tcritical\n",
	})

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown severity")

	// No partial output on converter failure.
	entries, readErr := os.ReadDir(cfg.Data.OutputDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunMissingAnnotationsDir(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Data.AnnotationsDir = filepath.Join(t.TempDir(), "absent")
	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
}

func TestBuildScorersOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Run = []string{"chrf", "bleu"}
	cfg.Metrics.RunGemba = true
	cfg.Metrics.Gemba.Model = "gpt-4o"

	scorers, err := buildScorers(cfg)
	require.NoError(t, err)
	var names []string
	for _, s := range scorers {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"chrf", "bleu", "gemba"}, names)
}

func TestBuildScorersGembaNeedsModel(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Run = nil
	cfg.Metrics.RunGemba = true

	_, err := buildScorers(cfg)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "model"))
}
