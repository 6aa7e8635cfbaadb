// Package render turns prepared series into PNG images. Bars, pies,
// heatmaps and the error placeholder are drawn directly with gg so value
// labels, slice explosion and cell shading stay under our control; line,
// scatter and histogram charts go through go-chart.
package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/fogleman/gg"
)

const (
	// Width and Height are the default chart dimensions in pixels.
	Width  = 800
	Height = 450

	// MaxPieSlices caps pie charts; anything busier renders as a bar.
	MaxPieSlices = 8
	// PieExplodeThreshold is the slice count above which the smallest
	// slice is pulled out of the pie.
	PieExplodeThreshold = 3
	// PieLegendThreshold is the slice count above which labels move to an
	// external legend.
	PieLegendThreshold = 6
)

type rgb struct{ r, g, b float64 }

var palette = []rgb{
	{0.26, 0.45, 0.77},
	{0.93, 0.49, 0.19},
	{0.23, 0.66, 0.29},
	{0.84, 0.15, 0.16},
	{0.58, 0.40, 0.74},
	{0.55, 0.34, 0.29},
	{0.89, 0.47, 0.76},
	{0.50, 0.50, 0.50},
	{0.74, 0.74, 0.13},
	{0.09, 0.75, 0.81},
}

func setColor(dc *gg.Context, i int) {
	c := palette[i%len(palette)]
	dc.SetRGB(c.r, c.g, c.b)
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func newCanvas(title string) *gg.Context {
	dc := gg.NewContext(Width, Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(title, Width/2, 20, 0.5, 0.5)
	return dc
}

// ErrorImage renders the deterministic placeholder shown when a chart
// cannot be produced. It never fails: callers always get an image.
func ErrorImage(title, msg string) []byte {
	dc := gg.NewContext(Width, Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0.8, 0.1, 0.1)
	dc.DrawStringAnchored("Chart unavailable: "+title, Width/2, Height/2-14, 0.5, 0.5)
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawStringAnchored(msg, Width/2, Height/2+14, 0.5, 0.5)
	out, err := encode(dc)
	if err != nil {
		return nil
	}
	return out
}

// Bar renders an ordered category breakdown with a numeric label above
// each bar. Zero-valued bars keep their slot but carry no label.
func Bar(title string, counts domain.Counts) ([]byte, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("bar %q: no data", title)
	}
	dc := newCanvas(title)
	drawBars(dc, counts.Keys(), toFloats(counts), 0, 60, Width-40)
	return encode(dc)
}

// GroupedBar renders two aligned series side by side per category, used by
// cross-entity comparisons. Both series must match the category count.
func GroupedBar(title string, categories []string, left, right []float64, leftLabel, rightLabel string) ([]byte, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("grouped bar %q: no data", title)
	}
	dc := newCanvas(title)

	maxVal := 1.0
	for i := range categories {
		maxVal = math.Max(maxVal, math.Max(left[i], right[i]))
	}
	const top, bottom = 60.0, 60.0
	plotH := float64(Height) - top - bottom
	slot := (float64(Width) - 80) / float64(len(categories))
	barW := slot * 0.35

	for i, cat := range categories {
		x := 40 + float64(i)*slot
		for j, v := range []float64{left[i], right[i]} {
			bx := x + slot*0.1 + float64(j)*barW
			h := v / maxVal * plotH
			setColor(dc, j)
			dc.DrawRectangle(bx, top+plotH-h, barW, h)
			dc.Fill()
			if v > 0 {
				dc.SetRGB(0.1, 0.1, 0.1)
				dc.DrawStringAnchored(trimFloat(v), bx+barW/2, top+plotH-h-10, 0.5, 0.5)
			}
		}
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(truncate(cat, 14), x+slot/2, float64(Height)-bottom+16, 0.5, 0.5)
	}

	for j, name := range []string{leftLabel, rightLabel} {
		setColor(dc, j)
		dc.DrawRectangle(40+float64(j)*160, 34, 12, 12)
		dc.Fill()
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawStringAnchored(truncate(name, 20), 58+float64(j)*160, 40, 0, 0.5)
	}
	return encode(dc)
}

func drawBars(dc *gg.Context, labels []string, values []float64, _ int, top, plotW float64) {
	maxVal := 1.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	const bottom = 60.0
	plotH := float64(Height) - top - bottom
	slot := plotW / float64(len(values))
	barW := slot * 0.6

	for i, v := range values {
		x := 20 + float64(i)*slot + slot*0.2
		h := v / maxVal * plotH
		setColor(dc, i)
		dc.DrawRectangle(x, top+plotH-h, barW, h)
		dc.Fill()
		dc.SetRGB(0.1, 0.1, 0.1)
		if v > 0 {
			dc.DrawStringAnchored(trimFloat(v), x+barW/2, top+plotH-h-10, 0.5, 0.5)
		}
		dc.DrawStringAnchored(truncate(labels[i], 14), x+barW/2, float64(Height)-bottom+16, 0.5, 0.5)
	}
}

// Pie renders counts as a pie. Above PieExplodeThreshold slices the
// smallest slice is offset from the center; above PieLegendThreshold the
// labels move into a side legend.
func Pie(title string, counts domain.Counts) ([]byte, error) {
	counts = counts.Top(MaxPieSlices)
	total := counts.Sum()
	if total == 0 {
		return nil, fmt.Errorf("pie %q: no data", title)
	}
	dc := newCanvas(title)
	drawPie(dc, counts, float64(Width)/2, float64(Height)/2+10, 140, len(counts) > PieLegendThreshold, float64(Width)-170)
	return encode(dc)
}

// DoublePie renders two pies side by side for cross-entity comparison.
// Labels stay inline up to five slices per pie, then shift to legends.
func DoublePie(title string, leftTitle string, left domain.Counts, rightTitle string, right domain.Counts) ([]byte, error) {
	left = left.Top(MaxPieSlices)
	right = right.Top(MaxPieSlices)
	if left.Sum() == 0 && right.Sum() == 0 {
		return nil, fmt.Errorf("double pie %q: no data", title)
	}
	dc := newCanvas(title)
	legend := len(left) > 5 || len(right) > 5
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(truncate(leftTitle, 30), float64(Width)/4, 44, 0.5, 0.5)
	dc.DrawStringAnchored(truncate(rightTitle, 30), 3*float64(Width)/4, 44, 0.5, 0.5)
	if left.Sum() > 0 {
		drawPie(dc, left, float64(Width)/4, float64(Height)/2+20, 110, legend, 16)
	}
	if right.Sum() > 0 {
		drawPie(dc, right, 3*float64(Width)/4, float64(Height)/2+20, 110, legend, float64(Width)-150)
	}
	return encode(dc)
}

func drawPie(dc *gg.Context, counts domain.Counts, cx, cy, r float64, legend bool, legendX float64) {
	total := float64(counts.Sum())
	smallest := 0
	for i, p := range counts {
		if p.Count < counts[smallest].Count {
			smallest = i
		}
	}
	angle := -math.Pi / 2
	for i, p := range counts {
		frac := float64(p.Count) / total
		next := angle + frac*2*math.Pi
		ecx, ecy := cx, cy
		if len(counts) > PieExplodeThreshold && i == smallest {
			mid := (angle + next) / 2
			ecx += 12 * math.Cos(mid)
			ecy += 12 * math.Sin(mid)
		}
		setColor(dc, i)
		dc.MoveTo(ecx, ecy)
		dc.DrawArc(ecx, ecy, r, angle, next)
		dc.ClosePath()
		dc.Fill()

		if !legend {
			mid := (angle + next) / 2
			lx := ecx + (r+24)*math.Cos(mid)
			ly := ecy + (r+24)*math.Sin(mid)
			dc.SetRGB(0.1, 0.1, 0.1)
			dc.DrawStringAnchored(fmt.Sprintf("%s (%d)", truncate(p.Value, 18), p.Count), lx, ly, 0.5, 0.5)
		}
		angle = next
	}
	if legend {
		for i, p := range counts {
			y := 70 + float64(i)*20
			setColor(dc, i)
			dc.DrawRectangle(legendX, y, 12, 12)
			dc.Fill()
			dc.SetRGB(0.1, 0.1, 0.1)
			dc.DrawStringAnchored(fmt.Sprintf("%s (%d)", truncate(p.Value, 16), p.Count), legendX+18, y+6, 0, 0.5)
		}
	}
}

// Heatmap shades a matrix of values, darker for larger. Row and column
// labels are drawn along the edges.
func Heatmap(title string, rowLabels, colLabels []string, values [][]float64) ([]byte, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, fmt.Errorf("heatmap %q: no data", title)
	}
	dc := newCanvas(title)

	maxVal := 0.0
	for _, row := range values {
		for _, v := range row {
			maxVal = math.Max(maxVal, v)
		}
	}
	const left, top, bottom = 110.0, 60.0, 40.0
	plotW := float64(Width) - left - 30
	plotH := float64(Height) - top - bottom
	cellW := plotW / float64(len(values[0]))
	cellH := plotH / float64(len(values))

	for ri, row := range values {
		for ci, v := range row {
			intensity := 0.0
			if maxVal > 0 {
				intensity = v / maxVal
			}
			dc.SetRGB(1-intensity*0.74, 1-intensity*0.55, 1-intensity*0.23)
			dc.DrawRectangle(left+float64(ci)*cellW, top+float64(ri)*cellH, cellW, cellH)
			dc.Fill()
		}
	}
	dc.SetRGB(0.1, 0.1, 0.1)
	for ri, label := range rowLabels {
		dc.DrawStringAnchored(truncate(label, 14), left-8, top+(float64(ri)+0.5)*cellH, 1, 0.5)
	}
	step := 1
	if len(colLabels) > 16 {
		step = len(colLabels) / 12
	}
	for ci := 0; ci < len(colLabels); ci += step {
		dc.DrawStringAnchored(truncate(colLabels[ci], 10), left+(float64(ci)+0.5)*cellW, float64(Height)-bottom+14, 0.5, 0.5)
	}
	return encode(dc)
}

func toFloats(counts domain.Counts) []float64 {
	out := make([]float64, len(counts))
	for i, p := range counts {
		out[i] = float64(p.Count)
	}
	return out
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
