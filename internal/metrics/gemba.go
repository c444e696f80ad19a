package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/monitoring"
	"github.com/imthomp/multilingual-mqm-benchmark/internal/mqm"
)

// gembaPrompt asks the judge model to list MQM-style errors for one
// translation. The NO ERRORS sentinel and the severity/category line format
// follow GEMBA-MQM (Kocmi & Federmann 2023).
const gembaPrompt = `You are evaluating a machine translation into %s.

Source: %s
Translation: %s

List any translation errors in the format:
ERROR: [severity: major|minor] [category: mistranslation|omission|grammar|register|other] [text: ...]

If there are no errors, write: NO ERRORS`

var gembaSeverityRe = regexp.MustCompile(`(?i)severity:\s*(major|minor)`)

// Gemba scores translations with an LLM judge behind an OpenAI-compatible
// chat endpoint. The judge's native output is an MQM error penalty (0 =
// perfect, higher = worse); Score converts it to quality = 1/(1+penalty) so
// the column correlates in the same direction as every other metric.
type Gemba struct {
	model    string
	endpoint string
	client   *http.Client
}

// NewGemba builds the GEMBA scorer. A missing model name is a configuration
// error: there is no sensible default judge.
func NewGemba(model, endpoint string) (*Gemba, error) {
	if model == "" {
		return nil, fmt.Errorf("gemba: model identifier is required (set metrics.gemba.model)")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("gemba: chat endpoint is required")
	}
	return &Gemba{
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func (g *Gemba) Name() string { return "gemba" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Score prompts the judge once per segment. References are unused — GEMBA is
// reference-free.
func (g *Gemba) Score(ctx context.Context, sources, hypotheses, _ []string, lang string) ([]float64, error) {
	if lang == "" {
		lang = "the target language"
	}
	scores := make([]float64, len(hypotheses))
	for i := range hypotheses {
		text, err := g.complete(ctx, fmt.Sprintf(gembaPrompt, lang, sources[i], hypotheses[i]))
		if err != nil {
			return nil, fmt.Errorf("gemba segment %d: %w", i, err)
		}
		scores[i] = 1.0 / (1.0 + parsePenalty(text))
		if (i+1)%50 == 0 {
			monitoring.Debugf("gemba: judged %d/%d segments", i+1, len(hypotheses))
		}
	}
	return scores, nil
}

func (g *Gemba) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:     g.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 256,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, body)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat endpoint returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// parsePenalty turns the judge's error listing into an MQM penalty using the
// shared severity weighting table. Severities outside the prompt's closed
// major|minor set cannot occur (the regexp only matches those two).
func parsePenalty(text string) float64 {
	if strings.Contains(strings.ToUpper(text), "NO ERRORS") {
		return 0
	}
	penalty := 0.0
	for _, m := range gembaSeverityRe.FindAllStringSubmatch(text, -1) {
		if w, err := mqm.Weight(strings.ToLower(m[1])); err == nil {
			penalty += w
		}
	}
	return penalty
}
