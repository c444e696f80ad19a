package metrics

import (
	"context"
	"math"
	"strings"
)

// bleuMaxOrder is the standard BLEU-4 n-gram ceiling.
const bleuMaxOrder = 4

// BLEU computes sentence-level BLEU-4 with add-1 smoothed n-gram precisions
// and the usual brevity penalty. Scores are already in [0, 1].
type BLEU struct{}

// NewBLEU returns the BLEU scorer.
func NewBLEU() *BLEU { return &BLEU{} }

func (b *BLEU) Name() string { return "bleu" }

// Score computes BLEU per hypothesis/reference pair; sources are unused but
// kept for the uniform wrapper interface.
func (b *BLEU) Score(_ context.Context, _, hypotheses, references []string, _ string) ([]float64, error) {
	scores := make([]float64, len(hypotheses))
	for i := range hypotheses {
		scores[i] = sentenceBLEU(hypotheses[i], references[i])
	}
	return scores, nil
}

func sentenceBLEU(hypothesis, reference string) float64 {
	hyp := strings.Fields(hypothesis)
	ref := strings.Fields(reference)
	if len(hyp) == 0 {
		return 0
	}

	logSum := 0.0
	for n := 1; n <= bleuMaxOrder; n++ {
		matches, total := clippedMatches(hyp, ref, n)
		var p float64
		if n == 1 {
			if total == 0 || matches == 0 {
				return 0
			}
			p = float64(matches) / float64(total)
		} else {
			// Add-1 smoothing on higher orders keeps single-sentence
			// scores finite when a 3- or 4-gram never matches.
			p = float64(matches+1) / float64(total+1)
		}
		logSum += math.Log(p)
	}
	precision := math.Exp(logSum / bleuMaxOrder)

	bp := 1.0
	if len(hyp) < len(ref) {
		bp = math.Exp(1 - float64(len(ref))/float64(len(hyp)))
	}
	return bp * precision
}

// clippedMatches counts hypothesis n-grams that also occur in the reference,
// clipped to the reference count per n-gram.
func clippedMatches(hyp, ref []string, n int) (matches, total int) {
	if len(hyp) < n {
		return 0, 0
	}
	refCounts := make(map[string]int)
	for i := 0; i+n <= len(ref); i++ {
		refCounts[strings.Join(ref[i:i+n], " ")]++
	}
	for i := 0; i+n <= len(hyp); i++ {
		total++
		gram := strings.Join(hyp[i:i+n], " ")
		if refCounts[gram] > 0 {
			refCounts[gram]--
			matches++
		}
	}
	return matches, total
}
