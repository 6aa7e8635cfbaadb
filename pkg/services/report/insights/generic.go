package insights

import (
	"fmt"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
)

func init() {
	register("generic_insights", genericInsights)
}

// entityCountKeys are stat keys that already summarize record volume; when
// one is present the generic record summary would just repeat it.
var entityCountKeys = []string{
	"user_count", "form_count", "submission_count", "record_summary", "volume",
}

func genericInsights(f *frame.Frame, st map[string]any, _ Params) (map[string]string, error) {
	out := make(map[string]string)
	if f.Len() == 0 {
		return out, nil
	}

	duplicate := false
	for _, key := range entityCountKeys {
		if _, ok := st[key]; ok {
			duplicate = true
			break
		}
	}
	if !duplicate {
		out["record_summary"] = fmt.Sprintf("The dataset contains %d records.", f.Len())
	}

	if blocks := countStats(st); len(blocks) > 0 {
		best := blocks[0]
		if insight, ok := dominantCategory(best.column, best.counts); ok {
			out["top_category"] = insight
		} else {
			out["category_analysis_note"] = fmt.Sprintf(
				"No single dominant category found in %s.", best.column)
		}
	}

	for _, v := range st {
		if r, ok := v.(domain.DateRange); ok {
			out["date_coverage"] = fmt.Sprintf("Data spans from %s to %s.", r.First, r.Last)
			break
		}
	}
	return out, nil
}

// dominantCategory requires a strict leader with more than one occurrence.
func dominantCategory(column string, counts domain.Counts) (string, bool) {
	if len(counts) == 0 || counts[0].Count <= 1 {
		return "", false
	}
	if len(counts) > 1 && counts[0].Count <= counts[1].Count {
		return "", false
	}
	return fmt.Sprintf("Most common %s: '%s' (%d occurrences).",
		column, counts[0].Value, counts[0].Count), true
}
