// Package annotations loads span-level MQM annotation files into the row
// format consumed by the converter. One file per language, tab-separated,
// with a header row.
package annotations

// Sentinel values marking a segment reported without any errors. Such a
// segment appears as exactly one row with ErrorType NoError and Severity
// SeverityNeutral.
const (
	NoError         = "no_error"
	SeverityNeutral = "neutral"
)

// Row is a single reported error instance, or the no-error sentinel row.
// SegmentID is only unique within a language batch; rows sharing the same
// (Lang, SegmentID) describe the same segment.
type Row struct {
	SegmentID  int
	Source     string
	Hypothesis string
	Reference  string
	Lang       string
	ErrorType  string
	Severity   string

	// Character offsets into Hypothesis. Optional; nil when the annotator
	// did not mark a span (always nil for sentinel rows).
	ErrorStart *int
	ErrorEnd   *int
}

// IsNoError reports whether the row is the no-error sentinel.
func (r Row) IsNoError() bool {
	return r.ErrorType == NoError
}

// Key identifies the segment a row belongs to.
type Key struct {
	Lang      string
	SegmentID int
}

// GroupKey returns the segment identity of the row.
func (r Row) GroupKey() Key {
	return Key{Lang: r.Lang, SegmentID: r.SegmentID}
}
