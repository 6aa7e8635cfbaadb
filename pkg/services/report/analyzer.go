package report

import (
	"context"
	"fmt"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/services/report/charts"
	"github.com/de-tools/form-atlas/pkg/services/report/insights"
	"github.com/de-tools/form-atlas/pkg/services/report/stats"
	"github.com/rs/zerolog"
)

// Input is one entity's fetched data handed to the analyzer. Err carries a
// fetch failure; such entities skip analysis but stay in the report.
// QuestionTypes is the question text to question type lookup for entities
// with dynamic answer columns.
type Input struct {
	Entity        string
	SheetName     string
	Columns       []string
	Records       []domain.Record
	Params        domain.EntityParams
	QuestionTypes map[string]string
	Err           string
}

type stage int

const (
	stageNew stage = iota
	stageStats
	stageCharts
	stageInsights
	stageDone
	stageFailed
)

// analysisBuilder accumulates the public analysis while the working frame
// stays private. Build returns only the public fields.
type analysisBuilder struct {
	stage    stage
	stats    map[string]any
	charts   map[string][]byte
	insights map[string]string
}

func newAnalysisBuilder() *analysisBuilder {
	return &analysisBuilder{
		stage:    stageNew,
		stats:    make(map[string]any),
		charts:   make(map[string][]byte),
		insights: make(map[string]string),
	}
}

func (b *analysisBuilder) Build() domain.Analysis {
	return domain.Analysis{
		SummaryStats: b.stats,
		Charts:       b.charts,
		Insights:     b.insights,
	}
}

// Analyzer runs the per-entity pipeline (stats, charts, insights) and the
// cross-entity chart pass. Failures are isolated: a broken generator
// leaves a marker, a broken entity an error result, and the rest of the
// report is unaffected.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Run analyzes every input and returns the processed report. Frames are
// retained only for the cross-entity pass and discarded before returning.
func (a *Analyzer) Run(ctx context.Context, inputs []Input) domain.ProcessedReport {
	processed := make(domain.ProcessedReport, len(inputs))
	frames := make(map[string]*frame.Frame, len(inputs))

	for _, in := range inputs {
		if in.Err != "" {
			processed[in.Entity] = domain.EntityResult{
				SheetName: in.SheetName,
				Err:       in.Err,
				Analysis: domain.Analysis{
					Insights: map[string]string{insights.StatusKey: insights.StatusError},
				},
			}
			continue
		}

		f := frame.New(in.Columns, in.Records)
		frames[in.Entity] = f
		analysis, failure := a.analyzeEntity(ctx, in, f)
		processed[in.Entity] = domain.EntityResult{
			SheetName: in.SheetName,
			Columns:   in.Columns,
			Records:   in.Records,
			Analysis:  analysis,
			Err:       failure,
		}
	}

	a.crossCharts(ctx, inputs, frames, processed)
	return processed
}

func (a *Analyzer) analyzeEntity(
	ctx context.Context,
	in Input,
	f *frame.Frame,
) (analysis domain.Analysis, failure string) {
	entity, params := in.Entity, in.Params
	logger := zerolog.Ctx(ctx).With().Str("entity", entity).Logger()
	b := newAnalysisBuilder()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("entity analysis panicked")
			b.stage = stageFailed
			b.insights[insights.StatusKey] = insights.StatusError
			analysis = b.Build()
			failure = fmt.Sprintf("analysis failed: %v", r)
		}
	}()

	cfg, ok := Config(entity)
	if !ok {
		return b.Build(), fmt.Sprintf("unknown entity type: %s", entity)
	}

	b.stage = stageStats
	statsParams := stats.Params{
		Hints:         cfg.Hints,
		Columns:       params.Columns,
		TopN:          params.TopN,
		QuestionTypes: in.QuestionTypes,
	}
	for _, name := range cfg.StatsGenerators {
		fn, ok := stats.Lookup(name)
		if !ok {
			logger.Warn().Str("generator", name).Msg("unknown stats generator, skipping")
			continue
		}
		out, err := runStats(fn, f, statsParams)
		if err != nil {
			logger.Warn().Err(err).Str("generator", name).Msg("stats generator failed")
			b.stats[name+"_error"] = err.Error()
			continue
		}
		for k, v := range out {
			b.stats[k] = v
		}
	}

	b.stage = stageCharts
	chartParams := charts.Params{Hints: cfg.Hints, Requested: params.Charts, TopN: params.TopN}
	for _, name := range cfg.ChartGenerators {
		fn, ok := charts.Lookup(name)
		if !ok {
			logger.Warn().Str("generator", name).Msg("unknown chart generator, skipping")
			continue
		}
		out, err := runCharts(fn, f, b.stats, chartParams)
		if err != nil {
			logger.Warn().Err(err).Str("generator", name).Msg("chart generator failed")
			b.stats[name+"_error"] = err.Error()
			continue
		}
		for k, v := range out {
			b.charts[k] = v
		}
	}

	b.stage = stageInsights
	insightParams := insights.Params{Hints: cfg.Hints}
	for _, name := range cfg.InsightGenerators {
		fn, ok := insights.Lookup(name)
		if !ok {
			logger.Warn().Str("generator", name).Msg("unknown insight generator, skipping")
			continue
		}
		out, err := runInsights(fn, f, b.stats, insightParams)
		if err != nil {
			logger.Warn().Err(err).Str("generator", name).Msg("insight generator failed")
			b.insights[name+"_error"] = err.Error()
			continue
		}
		for k, v := range out {
			b.insights[k] = v
		}
	}
	if f.Len() == 0 {
		b.insights[insights.StatusKey] = insights.StatusNoData
	}

	b.stage = stageDone
	return b.Build(), ""
}

// crossCharts renders requested cross-entity charts and attaches each to
// the entity that asked for it.
func (a *Analyzer) crossCharts(
	ctx context.Context,
	inputs []Input,
	frames map[string]*frame.Frame,
	processed domain.ProcessedReport,
) {
	logger := zerolog.Ctx(ctx)
	for _, in := range inputs {
		if len(in.Params.CrossCharts) == 0 {
			continue
		}
		result, ok := processed[in.Entity]
		if !ok || result.Err != "" {
			continue
		}
		for _, req := range in.Params.CrossCharts {
			img := charts.Cross(frames, req)
			if img == nil {
				logger.Warn().Str("entity", in.Entity).Str("type", req.Type).
					Msg("cross-entity chart produced no image")
				continue
			}
			if result.Analysis.Charts == nil {
				result.Analysis.Charts = make(map[string][]byte)
			}
			result.Analysis.Charts[charts.CrossKey(req)] = img
		}
		processed[in.Entity] = result
	}
}

func runStats(fn stats.Func, f *frame.Frame, p stats.Params) (out map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(f, p)
}

func runCharts(fn charts.Func, f *frame.Frame, st map[string]any, p charts.Params) (out map[string][]byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(f, st, p)
}

func runInsights(fn insights.Func, f *frame.Frame, st map[string]any, p insights.Params) (out map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(f, st, p)
}
