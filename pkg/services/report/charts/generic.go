package charts

import (
	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/services/report/render"
	"github.com/de-tools/form-atlas/pkg/services/report/stats"
)

func init() {
	register("generic_charts", genericCharts)
}

// genericCharts renders requested charts first, then fills the remaining
// budget with auto-detected candidates. Failed renders are skipped; a
// single bad column never aborts the block.
func genericCharts(f *frame.Frame, _ map[string]any, p Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if f.Len() == 0 {
		return out, nil
	}

	budget := MaxGenericCharts
	add := func(col, typ, other string) {
		if budget <= 0 {
			return
		}
		key := typ + "_" + stats.Key(col)
		if _, dup := out[key]; dup {
			return
		}
		if img := renderCandidate(f, col, typ, other, p); img != nil {
			out[key] = img
			budget--
		}
	}

	for _, req := range p.Requested {
		add(req.Column, req.Type, req.GroupBy)
	}
	for _, cand := range f.DetectChartColumns(p.Hints) {
		if budget <= 0 {
			break
		}
		add(cand.Column, cand.Type, cand.Other)
	}
	return out, nil
}

func renderCandidate(f *frame.Frame, col, typ, other string, p Params) []byte {
	switch typ {
	case "bar":
		counts := f.ValueCounts(col, p.topN())
		if len(counts) < 2 {
			return nil
		}
		img, err := render.Bar("Breakdown by "+col, counts)
		if err != nil {
			return nil
		}
		return img
	case "pie":
		counts := f.ValueCounts(col, render.MaxPieSlices)
		if len(counts) < 2 {
			return nil
		}
		img, err := render.Pie("Share by "+col, counts)
		if err != nil {
			return nil
		}
		return img
	case "time_series", "line":
		daily := f.DailyCounts(col)
		img, err := render.Line("Records over time ("+col+")", daily)
		if err != nil {
			return nil
		}
		return img
	case "histogram":
		img, err := render.Histogram("Distribution of "+col, f.Floats(col), 10)
		if err != nil {
			return nil
		}
		return img
	case "scatter":
		if other == "" {
			return nil
		}
		img, err := render.Scatter(col+" vs "+other, f.Floats(col), f.Floats(other), col, other)
		if err != nil {
			return nil
		}
		return img
	default:
		return nil
	}
}
