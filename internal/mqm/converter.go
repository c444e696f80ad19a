package mqm

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/imthomp/multilingual-mqm-benchmark/internal/annotations"
)

// SegmentScore is the per-segment result of collapsing a segment's error
// annotations into a single evaluable quality number.
type SegmentScore struct {
	SegmentID  int
	Source     string
	Hypothesis string
	Reference  string
	Lang       string

	NumErrors      int
	MajorErrors    int
	MinorErrors    int
	AccuracyErrors int
	FluencyErrors  int

	// ErrorPenalty is the sum of severity weights over all real errors.
	ErrorPenalty float64
	// NormalizedScore is -ErrorPenalty scaled by hypothesis length; always
	// <= 0, with 0 for the error-free case.
	NormalizedScore float64
	// QualityScore is exp(NormalizedScore): bounded to (0, 1], exactly 1.0
	// when there are no errors, strictly decreasing as penalty grows.
	QualityScore float64
}

// Convert collapses annotation rows into one SegmentScore per distinct
// (lang, segment_id) group. Output is sorted by lang then segment id so
// repeated runs over the same data are byte-identical.
//
// Returns an error on the first unrecognized severity label; no partial
// output is produced in that case.
func Convert(rows []annotations.Row) ([]SegmentScore, error) {
	groups := make(map[annotations.Key][]annotations.Row)
	var order []annotations.Key
	for _, r := range rows {
		k := r.GroupKey()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].Lang != order[j].Lang {
			return order[i].Lang < order[j].Lang
		}
		return order[i].SegmentID < order[j].SegmentID
	})

	scores := make([]SegmentScore, 0, len(order))
	for _, k := range order {
		s, err := scoreSegment(groups[k])
		if err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", k.SegmentID, k.Lang, err)
		}
		scores = append(scores, s)
	}
	return scores, nil
}

// scoreSegment aggregates one segment's rows. The group is never empty: every
// segment present in the input contributes at least one row, sentinel or not.
func scoreSegment(group []annotations.Row) (SegmentScore, error) {
	first := group[0]
	s := SegmentScore{
		SegmentID:  first.SegmentID,
		Source:     first.Source,
		Hypothesis: first.Hypothesis,
		Reference:  first.Reference,
		Lang:       first.Lang,
	}

	for _, r := range group {
		if r.IsNoError() {
			continue
		}
		w, err := Weight(r.Severity)
		if err != nil {
			return SegmentScore{}, err
		}
		s.NumErrors++
		s.ErrorPenalty += w
		switch r.Severity {
		case SeverityMajor:
			s.MajorErrors++
		case SeverityMinor:
			s.MinorErrors++
		}
		if accuracyErrors[r.ErrorType] {
			s.AccuracyErrors++
		} else if fluencyErrors[r.ErrorType] {
			s.FluencyErrors++
		}
	}

	// Length normalization: a fixed penalty hurts a longer hypothesis less
	// per character. Floor of 1 keeps empty hypotheses finite.
	length := utf8.RuneCountInString(s.Hypothesis)
	if length < 1 {
		length = 1
	}
	s.NormalizedScore = -s.ErrorPenalty / float64(length)
	s.QualityScore = math.Exp(s.NormalizedScore)
	return s, nil
}
