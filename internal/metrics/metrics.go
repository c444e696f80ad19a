// Package metrics wraps the automatic MT quality metrics evaluated against
// human MQM scores. Every wrapper returns one score per (source, hypothesis,
// reference) triple, in input order, on a [0, 1] higher-is-better scale —
// wrappers whose native scale is reversed or [0, 100] normalize before
// returning.
package metrics

import "context"

// Scorer scores a batch of translation triples. Implementations must return
// exactly len(hypotheses) scores in the same order, or an error.
type Scorer interface {
	Name() string
	Score(ctx context.Context, sources, hypotheses, references []string, lang string) ([]float64, error)
}
