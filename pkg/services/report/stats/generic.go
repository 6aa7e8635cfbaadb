package stats

import (
	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
)

func init() {
	register("generic_stats", genericStats)
}

// genericStats produces the baseline block every entity gets: the record
// count, value counts for a handful of countable columns, and one
// first/last range for the first date column that has data.
func genericStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{
		"record_count": f.Len(),
	}
	if f.Len() == 0 {
		return out, nil
	}

	picked := 0
	for _, col := range categoricalCandidates(f, p) {
		if picked >= MaxGenericCategorical {
			break
		}
		if !countable(f, col) {
			continue
		}
		if c := f.ValueCounts(col, p.topN()); len(c) > 0 {
			out["counts_"+Key(col)] = c
			picked++
		}
	}

	for _, col := range dateCandidates(f, p) {
		if first, last, ok := f.TimeRange(col); ok {
			out["range_"+Key(col)] = domain.DateRange{
				First: first.Format("2006-01-02T15:04:05"),
				Last:  last.Format("2006-01-02T15:04:05"),
			}
			break
		}
	}
	return out, nil
}

// countable decides whether a column gets a generic value-count block.
// Booleans always count, integers only inside the cardinality window (ids
// with many distinct values are noise), strings at any cardinality above
// one (top-N limits the output).
func countable(f *frame.Frame, col string) bool {
	n := f.NUnique(col)
	switch f.Kind(col) {
	case frame.KindBool:
		return true
	case frame.KindNumeric:
		return n > 1 && n <= MaxCategoricalCardinality
	case frame.KindString:
		return n > 1
	}
	return false
}

// categoricalCandidates prefers hinted categorical columns, then falls back
// to the remaining columns of the frame.
func categoricalCandidates(f *frame.Frame, p Params) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, col := range p.Hints.CategoricalColumns {
		if f.HasColumn(col) {
			out = append(out, col)
			seen[col] = struct{}{}
		}
	}
	for _, col := range f.Columns() {
		if _, dup := seen[col]; dup {
			continue
		}
		out = append(out, col)
	}
	return out
}

// dateCandidates lists hinted date columns first, then datetime-typed
// frame columns the hints missed.
func dateCandidates(f *frame.Frame, p Params) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, col := range p.Hints.DateColumns {
		if f.HasColumn(col) {
			out = append(out, col)
			seen[col] = struct{}{}
		}
	}
	for _, col := range f.Columns() {
		if _, dup := seen[col]; dup {
			continue
		}
		if f.Kind(col) == frame.KindTime {
			out = append(out, col)
		}
	}
	return out
}
