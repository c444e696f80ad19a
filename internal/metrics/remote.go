package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/monitoring"
)

// Remote scores translation triples against a model server speaking JSON
// over HTTP (COMET, xCOMET, BERTScore). The server owns the model weights
// and GPU placement; this client only batches and joins. Servers return
// scores already in [0, 1] higher-is-better.
type Remote struct {
	name      string
	model     string
	endpoint  string
	batchSize int
	client    *http.Client
}

// RemoteOptions configures a Remote scorer.
type RemoteOptions struct {
	Name      string // column name, e.g. "comet"
	Model     string // model identifier sent to the server
	Endpoint  string // base URL of the scoring server
	BatchSize int
}

// NewRemote builds a Remote scorer. The model identifier is mandatory: a
// scoring server cannot pick one on our behalf.
func NewRemote(opts RemoteOptions) (*Remote, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("%s: model identifier is required", opts.Name)
	}
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("%s: scoring endpoint is required", opts.Name)
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 16
	}
	return &Remote{
		name:      opts.Name,
		model:     opts.Model,
		endpoint:  opts.Endpoint,
		batchSize: batch,
		client:    &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

func (r *Remote) Name() string { return r.name }

type scoreRequest struct {
	Model      string   `json:"model"`
	Lang       string   `json:"lang,omitempty"`
	Sources    []string `json:"sources"`
	Hypotheses []string `json:"hypotheses"`
	References []string `json:"references"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
	Error  string    `json:"error,omitempty"`
}

// Score sends the triples to the model server in batches and concatenates
// the per-batch scores in input order.
func (r *Remote) Score(ctx context.Context, sources, hypotheses, references []string, lang string) ([]float64, error) {
	scores := make([]float64, 0, len(hypotheses))
	for start := 0; start < len(hypotheses); start += r.batchSize {
		end := start + r.batchSize
		if end > len(hypotheses) {
			end = len(hypotheses)
		}
		batch, err := r.scoreBatch(ctx, scoreRequest{
			Model:      r.model,
			Lang:       lang,
			Sources:    sources[start:end],
			Hypotheses: hypotheses[start:end],
			References: references[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("%s batch %d-%d: %w", r.name, start, end, err)
		}
		scores = append(scores, batch...)
		monitoring.Debugf("%s: scored %d/%d segments", r.name, end, len(hypotheses))
	}
	return scores, nil
}

func (r *Remote) scoreBatch(ctx context.Context, reqBody scoreRequest) ([]float64, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/score", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring server returned %d: %s", resp.StatusCode, body)
	}

	var out scoreResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("scoring server: %s", out.Error)
	}
	if len(out.Scores) != len(reqBody.Hypotheses) {
		return nil, fmt.Errorf("scoring server returned %d scores for %d inputs",
			len(out.Scores), len(reqBody.Hypotheses))
	}
	return out.Scores, nil
}
