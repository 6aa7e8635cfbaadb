package charts

import (
	"fmt"
	"time"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/services/report/render"
)

// Cross-entity alignment strategies.
const (
	AlignIndex    = "index"
	AlignCategory = "category"
	AlignTime     = "time"
)

// crossTopN caps category axes on cross-entity charts.
const crossTopN = 10

// crossHeatmapCap is the category count above which a same-entity heatmap
// falls back to its top categories.
const crossHeatmapCap = 12

// CrossKey names the chart produced for a cross-entity request. Columns
// are part of the key so two charts over the same entity pair do not
// overwrite each other.
func CrossKey(req domain.CrossChartRequest) string {
	return fmt.Sprintf("cross_%s_%s_%s_%s_%s",
		req.Type, req.XEntity, req.XColumn, req.YEntity, req.YColumn)
}

// Cross renders a chart relating columns of two entities. It always
// returns an image: any failure (unknown entity, missing column, empty
// data, unsupported type) yields the deterministic placeholder instead of
// an error so one bad request never breaks the surrounding report.
func Cross(frames map[string]*frame.Frame, req domain.CrossChartRequest) []byte {
	title := fmt.Sprintf("%s.%s vs %s.%s", req.XEntity, req.XColumn, req.YEntity, req.YColumn)

	xf, ok := frames[req.XEntity]
	if !ok {
		return render.ErrorImage(title, "entity not included in report: "+req.XEntity)
	}
	yf, ok := frames[req.YEntity]
	if !ok {
		return render.ErrorImage(title, "entity not included in report: "+req.YEntity)
	}
	if xf.Len() == 0 || yf.Len() == 0 {
		return render.ErrorImage(title, "no data available")
	}
	if !xf.HasColumn(req.XColumn) {
		return render.ErrorImage(title, "column not found: "+req.XColumn)
	}
	if !yf.HasColumn(req.YColumn) {
		return render.ErrorImage(title, "column not found: "+req.YColumn)
	}

	switch req.Type {
	case "scatter":
		return crossScatter(title, xf, yf, req)
	case "bar":
		return crossBar(title, xf, yf, req)
	case "line":
		return crossLine(title, xf, yf, req)
	case "pie":
		return crossPie(title, xf, yf, req)
	case "heatmap":
		return crossHeatmap(title, xf, yf, req)
	default:
		return render.ErrorImage(title, "unsupported chart type: "+req.Type)
	}
}

// scatterSideBySideMax caps each series when unequal lengths force the
// side-by-side distribution fallback.
const scatterSideBySideMax = 10

// crossScatter dispatches on the requested alignment: time plots daily
// counts over a shared date axis, category pairs shared category counts,
// and index (the default) pairs rows positionally.
func crossScatter(title string, xf, yf *frame.Frame, req domain.CrossChartRequest) []byte {
	switch req.Alignment {
	case AlignTime:
		if img := scatterOverTime(title, xf, yf, req); img != nil {
			return img
		}
		// columns are not timestamps, same fallback as index alignment
		return scatterByIndex(title, xf, yf, req)
	case AlignCategory:
		return scatterByCategory(title, xf, yf, req)
	default:
		return scatterByIndex(title, xf, yf, req)
	}
}

// scatterOverTime plots both columns' daily counts as dots on one date
// axis. Returns nil when either column yields no timestamps so the caller
// can fall back.
func scatterOverTime(title string, xf, yf *frame.Frame, req domain.CrossChartRequest) []byte {
	xd := xf.DailyCounts(req.XColumn)
	yd := yf.DailyCounts(req.YColumn)
	if len(xd) == 0 || len(yd) == 0 {
		return nil
	}
	img, err := render.TimeScatter(title, xd, yd,
		req.XEntity+"."+req.XColumn, req.YEntity+"."+req.YColumn)
	if err != nil {
		return render.ErrorImage(title, err.Error())
	}
	return img
}

// scatterByCategory pairs the count of each shared category across both
// breakdowns. Without shared categories it falls back to the two top-10
// distributions side by side.
func scatterByCategory(title string, xf, yf *frame.Frame, req domain.CrossChartRequest) []byte {
	xc := xf.ValueCounts(req.XColumn, 0)
	yc := yf.ValueCounts(req.YColumn, 0)

	var xs, ys []float64
	for _, p := range xc {
		if n := yc.Get(p.Value); n > 0 {
			xs = append(xs, float64(p.Count))
			ys = append(ys, float64(n))
		}
	}
	if len(xs) == 0 {
		left := countValues(xc, scatterSideBySideMax)
		right := countValues(yc, scatterSideBySideMax)
		img, err := render.MultiScatter(title+" (no shared categories)", left, right,
			req.XEntity+"."+req.XColumn, req.YEntity+"."+req.YColumn,
			"Category Index", "Count")
		if err != nil {
			return render.ErrorImage(title, err.Error())
		}
		return img
	}
	img, err := render.Scatter(title+" (shared categories)", xs, ys,
		req.XEntity+"."+req.XColumn, req.YEntity+"."+req.YColumn)
	if err != nil {
		return render.ErrorImage(title, err.Error())
	}
	return img
}

// scatterByIndex pairs rows positionally. Unequal series lengths mean the
// rows do not correspond, so each column's first values are plotted side by
// side over their indexes instead of being silently truncated.
func scatterByIndex(title string, xf, yf *frame.Frame, req domain.CrossChartRequest) []byte {
	xs := xf.Floats(req.XColumn)
	ys := yf.Floats(req.YColumn)
	if len(xs) != len(ys) {
		if len(xs) > scatterSideBySideMax {
			xs = xs[:scatterSideBySideMax]
		}
		if len(ys) > scatterSideBySideMax {
			ys = ys[:scatterSideBySideMax]
		}
		img, err := render.MultiScatter(title, xs, ys,
			req.XEntity+"."+req.XColumn, req.YEntity+"."+req.YColumn,
			"Index", "Value")
		if err != nil {
			return render.ErrorImage(title, err.Error())
		}
		return img
	}
	img, err := render.Scatter(title, xs, ys,
		req.XEntity+"."+req.XColumn, req.YEntity+"."+req.YColumn)
	if err != nil {
		return render.ErrorImage(title, err.Error())
	}
	return img
}

func countValues(counts domain.Counts, max int) []float64 {
	if len(counts) > max {
		counts = counts[:max]
	}
	out := make([]float64, len(counts))
	for i, p := range counts {
		out[i] = float64(p.Count)
	}
	return out
}

// crossBar compares category counts side by side. Category alignment uses
// the intersection of both breakdowns and falls back to the top categories
// of the union when the intersection is empty.
func crossBar(title string, xf, yf *frame.Frame, req domain.CrossChartRequest) []byte {
	xc := xf.ValueCounts(req.XColumn, crossTopN)
	yc := yf.ValueCounts(req.YColumn, crossTopN)
	if len(xc) == 0 && len(yc) == 0 {
		return render.ErrorImage(title, "no categories to compare")
	}

	var categories []string
	annotated := title
	if req.Alignment == AlignCategory {
		for _, p := range xc {
			if yc.Get(p.Value) > 0 {
				categories = append(categories, p.Value)
			}
		}
		if len(categories) == 0 {
			categories = unionCategories(xc, yc)
			annotated = title + " (no shared categories, showing top)"
		} else {
			annotated = title + " (shared categories)"
		}
	} else {
		categories = unionCategories(xc, yc)
	}

	left := make([]float64, len(categories))
	right := make([]float64, len(categories))
	for i, cat := range categories {
		left[i] = float64(xc.Get(cat))
		right[i] = float64(yc.Get(cat))
	}
	img, err := render.GroupedBar(annotated, categories, left, right,
		req.XEntity+"."+req.XColumn, req.YEntity+"."+req.YColumn)
	if err != nil {
		return render.ErrorImage(title, err.Error())
	}
	return img
}

// crossLine overlays daily counts of both entities on a shared, zero-filled
// day index spanning the union of their ranges.
func crossLine(title string, xf, yf *frame.Frame, req domain.CrossChartRequest) []byte {
	xd := xf.DailyCounts(req.XColumn)
	yd := yf.DailyCounts(req.YColumn)
	if len(xd) == 0 && len(yd) == 0 {
		return render.ErrorImage(title, "no timestamps to compare")
	}

	start, end := sharedRange(xd, yd)
	var index []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index = append(index, d)
	}
	img, err := render.MultiLine(title, index,
		reindex(xd, index), reindex(yd, index),
		req.XEntity+"."+req.XColumn, req.YEntity+"."+req.YColumn)
	if err != nil {
		return render.ErrorImage(title, err.Error())
	}
	return img
}

func crossPie(title string, xf, yf *frame.Frame, req domain.CrossChartRequest) []byte {
	img, err := render.DoublePie(title,
		req.XEntity+"."+req.XColumn, xf.ValueCounts(req.XColumn, render.MaxPieSlices),
		req.YEntity+"."+req.YColumn, yf.ValueCounts(req.YColumn, render.MaxPieSlices))
	if err != nil {
		return render.ErrorImage(title, err.Error())
	}
	return img
}

// crossHeatmap crosstabs co-occurrence when both columns live on the same
// entity. Across entities, where no row-level pairing exists, it renders
// the normalized outer product of the two frequency vectors.
func crossHeatmap(title string, xf, yf *frame.Frame, req domain.CrossChartRequest) []byte {
	if req.XEntity == req.YEntity {
		return sameEntityHeatmap(title, xf, req)
	}

	xc := xf.ValueCounts(req.XColumn, crossTopN)
	yc := yf.ValueCounts(req.YColumn, crossTopN)
	if len(xc) == 0 || len(yc) == 0 {
		return render.ErrorImage(title, "no categories to relate")
	}
	xSum, ySum := float64(xc.Sum()), float64(yc.Sum())
	values := make([][]float64, len(xc))
	for i, xp := range xc {
		values[i] = make([]float64, len(yc))
		for j, yp := range yc {
			values[i][j] = float64(xp.Count) * float64(yp.Count) / (xSum * ySum)
		}
	}
	img, err := render.Heatmap(title+" (frequency product)", xc.Keys(), yc.Keys(), values)
	if err != nil {
		return render.ErrorImage(title, err.Error())
	}
	return img
}

func sameEntityHeatmap(title string, f *frame.Frame, req domain.CrossChartRequest) []byte {
	topN := 0
	if f.NUnique(req.XColumn) > crossHeatmapCap || f.NUnique(req.YColumn) > crossHeatmapCap {
		topN = crossTopN
	}
	xc := f.ValueCounts(req.XColumn, topN)
	yc := f.ValueCounts(req.YColumn, topN)
	if len(xc) == 0 || len(yc) == 0 {
		return render.ErrorImage(title, "no categories to relate")
	}
	xIdx := indexOf(xc.Keys())
	yIdx := indexOf(yc.Keys())

	values := make([][]float64, len(xc))
	for i := range values {
		values[i] = make([]float64, len(yc))
	}
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		xi, ok := xIdx[frame.CellKey(row[req.XColumn])]
		if !ok {
			continue
		}
		yi, ok := yIdx[frame.CellKey(row[req.YColumn])]
		if !ok {
			continue
		}
		values[xi][yi]++
	}
	img, err := render.Heatmap(title, xc.Keys(), yc.Keys(), values)
	if err != nil {
		return render.ErrorImage(title, err.Error())
	}
	return img
}

func unionCategories(xc, yc domain.Counts) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(v string) {
		if _, dup := seen[v]; !dup && len(out) < crossTopN {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, p := range xc {
		add(p.Value)
	}
	for _, p := range yc {
		add(p.Value)
	}
	return out
}

func sharedRange(xd, yd []frame.TimeCount) (time.Time, time.Time) {
	all := append(append([]frame.TimeCount{}, xd...), yd...)
	start, end := all[0].Bucket, all[0].Bucket
	for _, b := range all[1:] {
		if b.Bucket.Before(start) {
			start = b.Bucket
		}
		if b.Bucket.After(end) {
			end = b.Bucket
		}
	}
	return start, end
}

func reindex(buckets []frame.TimeCount, index []time.Time) []float64 {
	byDay := make(map[time.Time]int, len(buckets))
	for _, b := range buckets {
		byDay[b.Bucket] = b.Count
	}
	out := make([]float64, len(index))
	for i, d := range index {
		out[i] = float64(byDay[d])
	}
	return out
}

func indexOf(keys []string) map[string]int {
	out := make(map[string]int, len(keys))
	for i, k := range keys {
		out[k] = i
	}
	return out
}
