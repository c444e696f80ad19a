package analysis

import "sort"

// TierUnknown is the bucket for languages missing from the tier map. An
// unmapped locale is never an error; it just lands here.
const TierUnknown = "unknown"

// TierMap groups language codes by resource availability. Each code should
// appear in at most one tier.
type TierMap map[string][]string

// DefaultResourceTiers covers the 12 benchmark languages.
func DefaultResourceTiers() TierMap {
	return TierMap{
		"high":   {"es", "pt"},
		"medium": {"th", "hr", "tl", "hy"},
		"low":    {"ht", "lo", "mh", "nv", "gil", "to"},
	}
}

// langIndex inverts the tier map for per-language lookup.
func (m TierMap) langIndex() map[string]string {
	idx := make(map[string]string)
	for tier, langs := range m {
		for _, lang := range langs {
			idx[lang] = tier
		}
	}
	return idx
}

// TierSummary is one per-(metric, tier) aggregate of the correlation table.
type TierSummary struct {
	Metric       string
	ResourceTier string

	// Unweighted means over the per-language values that are defined; nil
	// when no language in the group had a defined coefficient.
	PearsonR  *float64
	SpearmanR *float64
}

// SummarizeByTier aggregates per-language correlation records into per-tier
// mean correlations. Records with undefined coefficients (n < 3 groups) stay
// out of the averaging denominator rather than counting as zero.
func SummarizeByTier(records []Record) []TierSummary {
	type key struct{ metric, tier string }
	type acc struct {
		pearsonSum, spearmanSum float64
		pearsonN, spearmanN     int
	}

	groups := make(map[key]*acc)
	var order []key
	for _, r := range records {
		k := key{r.Metric, r.ResourceTier}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
			order = append(order, k)
		}
		if r.PearsonR != nil {
			a.pearsonSum += *r.PearsonR
			a.pearsonN++
		}
		if r.SpearmanR != nil {
			a.spearmanSum += *r.SpearmanR
			a.spearmanN++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].metric != order[j].metric {
			return order[i].metric < order[j].metric
		}
		return order[i].tier < order[j].tier
	})

	out := make([]TierSummary, 0, len(order))
	for _, k := range order {
		a := groups[k]
		s := TierSummary{Metric: k.metric, ResourceTier: k.tier}
		if a.pearsonN > 0 {
			v := a.pearsonSum / float64(a.pearsonN)
			s.PearsonR = &v
		}
		if a.spearmanN > 0 {
			v := a.spearmanSum / float64(a.spearmanN)
			s.SpearmanR = &v
		}
		out = append(out, s)
	}
	return out
}
