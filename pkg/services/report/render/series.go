package render

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var seriesColors = []drawing.Color{
	{R: 66, G: 114, B: 196, A: 255},
	{R: 237, G: 125, B: 49, A: 255},
	{R: 112, G: 173, B: 71, A: 255},
}

// Line renders daily counts as a time series with a rolling-mean overlay.
// The smoothing window is min(7, number of buckets).
func Line(title string, buckets []frame.TimeCount) ([]byte, error) {
	if len(buckets) < 2 {
		return nil, fmt.Errorf("line %q: need at least two buckets", title)
	}
	xs := make([]time.Time, len(buckets))
	ys := make([]float64, len(buckets))
	for i, b := range buckets {
		xs[i] = b.Bucket
		ys[i] = float64(b.Count)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  Width,
		Height: Height,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "count",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: seriesColors[0], StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "trend",
				XValues: xs,
				YValues: RollingMean(ys, minInt(7, len(ys))),
				Style: chart.Style{
					StrokeColor:     seriesColors[1],
					StrokeWidth:     2,
					StrokeDashArray: []float64{4, 3},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderChart(graph)
}

// MultiLine renders two pre-aligned daily series over a shared time index.
func MultiLine(title string, xs []time.Time, left, right []float64, leftLabel, rightLabel string) ([]byte, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("multi line %q: need at least two buckets", title)
	}
	window := minInt(7, len(xs))
	graph := chart.Chart{
		Title:  title,
		Width:  Width,
		Height: Height,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    leftLabel,
				XValues: xs,
				YValues: RollingMean(left, window),
				Style:   chart.Style{StrokeColor: seriesColors[0], StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    rightLabel,
				XValues: xs,
				YValues: RollingMean(right, window),
				Style:   chart.Style{StrokeColor: seriesColors[1], StrokeWidth: 2},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderChart(graph)
}

// Scatter renders paired numeric columns as dots.
func Scatter(title string, xs, ys []float64, xLabel, yLabel string) ([]byte, error) {
	n := minInt(len(xs), len(ys))
	if n == 0 {
		return nil, fmt.Errorf("scatter %q: no data", title)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  Width,
		Height: Height,
		XAxis:  chart.XAxis{Name: xLabel},
		YAxis:  chart.YAxis{Name: yLabel},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs[:n],
				YValues: ys[:n],
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
					DotColor:    seriesColors[0],
				},
			},
		},
	}
	return renderChart(graph)
}

// MultiScatter renders two dot series over a shared positional index, used
// when the series are distributions rather than paired observations.
func MultiScatter(title string, left, right []float64, leftLabel, rightLabel, xLabel, yLabel string) ([]byte, error) {
	if len(left)+len(right) < 2 {
		return nil, fmt.Errorf("multi scatter %q: no data", title)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  Width,
		Height: Height,
		XAxis:  chart.XAxis{Name: xLabel},
		YAxis:  chart.YAxis{Name: yLabel},
		Series: []chart.Series{
			dotSeries(leftLabel, indexValues(len(left)), left, seriesColors[0]),
			dotSeries(rightLabel, indexValues(len(right)), right, seriesColors[1]),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderChart(graph)
}

// TimeScatter renders two daily-count series as dots on a shared date axis.
func TimeScatter(title string, left, right []frame.TimeCount, leftLabel, rightLabel string) ([]byte, error) {
	if len(left)+len(right) < 2 {
		return nil, fmt.Errorf("time scatter %q: no data", title)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  Width,
		Height: Height,
		YAxis:  chart.YAxis{Name: "Count"},
		Series: []chart.Series{
			timeDotSeries(leftLabel, left, seriesColors[0]),
			timeDotSeries(rightLabel, right, seriesColors[1]),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderChart(graph)
}

func dotSeries(name string, xs, ys []float64, color drawing.Color) chart.Series {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    color,
		},
	}
}

func timeDotSeries(name string, buckets []frame.TimeCount, color drawing.Color) chart.Series {
	xs := make([]time.Time, len(buckets))
	ys := make([]float64, len(buckets))
	for i, b := range buckets {
		xs[i] = b.Bucket
		ys[i] = float64(b.Count)
	}
	return chart.TimeSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    color,
		},
	}
}

func indexValues(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// Histogram bins numeric values and renders the bins as bars.
func Histogram(title string, values []float64, bins int) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("histogram %q: no data", title)
	}
	if bins <= 0 {
		bins = 10
	}
	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if min == max {
		return nil, fmt.Errorf("histogram %q: constant values", title)
	}
	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	bars := make([]chart.Value, bins)
	for i, c := range counts {
		bars[i] = chart.Value{
			Value: float64(c),
			Label: trimFloat(min + (float64(i)+0.5)*width),
		}
	}
	graph := chart.BarChart{
		Title:    title,
		Width:    Width,
		Height:   Height,
		BarWidth: maxInt(10, (Width-120)/bins-10),
		Bars:     bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", title, err)
	}
	return buf.Bytes(), nil
}

// RollingMean smooths a series with a trailing window.
func RollingMean(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := minInt(i+1, window)
		out[i] = sum / float64(n)
	}
	return out
}

func renderChart(graph chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", graph.Title, err)
	}
	return buf.Bytes(), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
