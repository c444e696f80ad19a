package metrics

import (
	"context"
	"strings"
)

// ChrF++ parameters: character n-grams up to order 6, word n-grams up to
// order 2, recall weighted by beta = 2.
const (
	chrfCharOrder = 6
	chrfWordOrder = 2
	chrfBeta      = 2.0
)

// ChrF computes sentence-level ChrF++: a character n-gram F-score augmented
// with word n-grams, normalized to [0, 1].
type ChrF struct{}

// NewChrF returns the ChrF++ scorer.
func NewChrF() *ChrF { return &ChrF{} }

func (c *ChrF) Name() string { return "chrf" }

func (c *ChrF) Score(_ context.Context, _, hypotheses, references []string, _ string) ([]float64, error) {
	scores := make([]float64, len(hypotheses))
	for i := range hypotheses {
		scores[i] = sentenceChrF(hypotheses[i], references[i])
	}
	return scores, nil
}

func sentenceChrF(hypothesis, reference string) float64 {
	var precSum, recSum float64
	orders := 0

	// Character n-grams over whitespace-stripped text.
	hypChars := []rune(strings.Join(strings.Fields(hypothesis), ""))
	refChars := []rune(strings.Join(strings.Fields(reference), ""))
	for n := 1; n <= chrfCharOrder; n++ {
		p, r, ok := ngramPR(charGrams(hypChars, n), charGrams(refChars, n))
		if !ok {
			continue
		}
		precSum += p
		recSum += r
		orders++
	}

	// Word n-grams (the "++" part).
	hypWords := strings.Fields(hypothesis)
	refWords := strings.Fields(reference)
	for n := 1; n <= chrfWordOrder; n++ {
		p, r, ok := ngramPR(wordGrams(hypWords, n), wordGrams(refWords, n))
		if !ok {
			continue
		}
		precSum += p
		recSum += r
		orders++
	}

	if orders == 0 {
		return 0
	}
	prec := precSum / float64(orders)
	rec := recSum / float64(orders)
	if prec == 0 && rec == 0 {
		return 0
	}
	b2 := chrfBeta * chrfBeta
	return (1 + b2) * prec * rec / (b2*prec + rec)
}

// ngramPR computes precision and recall of hyp n-gram counts against ref
// counts. ok is false when both sides are empty for this order, which keeps
// short sentences from being judged on orders they cannot contain.
func ngramPR(hyp, ref map[string]int) (prec, rec float64, ok bool) {
	hypTotal, refTotal := 0, 0
	for _, c := range hyp {
		hypTotal += c
	}
	for _, c := range ref {
		refTotal += c
	}
	if hypTotal == 0 && refTotal == 0 {
		return 0, 0, false
	}

	overlap := 0
	for gram, c := range hyp {
		if rc, present := ref[gram]; present {
			if rc < c {
				overlap += rc
			} else {
				overlap += c
			}
		}
	}
	if hypTotal > 0 {
		prec = float64(overlap) / float64(hypTotal)
	}
	if refTotal > 0 {
		rec = float64(overlap) / float64(refTotal)
	}
	return prec, rec, true
}

func charGrams(chars []rune, n int) map[string]int {
	grams := make(map[string]int)
	for i := 0; i+n <= len(chars); i++ {
		grams[string(chars[i:i+n])]++
	}
	return grams
}

func wordGrams(words []string, n int) map[string]int {
	grams := make(map[string]int)
	for i := 0; i+n <= len(words); i++ {
		grams[strings.Join(words[i:i+n], " ")]++
	}
	return grams
}
