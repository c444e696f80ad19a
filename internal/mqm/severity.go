// Package mqm converts span-level MQM error annotations into per-segment
// quality scores. The weighting follows the standard MQM scheme: each error
// carries a penalty by severity, the penalties sum per segment, and the sum
// is normalized into a bounded quality score.
package mqm

import "fmt"

// Severity labels accepted in annotation rows.
const (
	SeverityMajor   = "major"
	SeverityMinor   = "minor"
	SeverityNeutral = "neutral" // sentinel for the no-error row
)

// severityWeights is the fixed severity → penalty table. Values match the
// GEMBA-MQM penalty scheme (Kocmi & Federmann 2023).
var severityWeights = map[string]float64{
	SeverityMajor:   5.0,
	SeverityMinor:   1.0,
	SeverityNeutral: 0.0,
}

// Weight returns the penalty weight for a severity label. An unrecognized
// label is a data integrity error: silently treating it as zero would skew
// every correlation downstream, so it must surface immediately.
func Weight(severity string) (float64, error) {
	w, ok := severityWeights[severity]
	if !ok {
		return 0, fmt.Errorf("unknown severity %q", severity)
	}
	return w, nil
}

// MQM error categories grouped into accuracy vs fluency, used for the
// per-segment category counts.
var (
	accuracyErrors = map[string]bool{
		"mistranslation": true,
		"omission":       true,
		"addition":       true,
		"untranslated":   true,
	}
	fluencyErrors = map[string]bool{
		"grammar":     true,
		"spelling":    true,
		"punctuation": true,
		"register":    true,
		"style":       true,
	}
)
