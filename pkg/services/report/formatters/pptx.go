package formatters

import (
	"context"
	"fmt"

	"github.com/de-tools/form-atlas/pkg/export/ooxml"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
	"github.com/rs/zerolog"
)

func init() {
	register("pptx", func() Formatter { return &pptxFormatter{} })
}

const (
	pptxMaxTableCols    = 5
	pptxTableRows       = 10
	pptxCellMaxLen      = 50
	pptxMaxConclusions  = 3
	pptxMaxBulletsSlide = 8
)

// pptxTableColumns are preferred for the data slide, in priority order.
var pptxTableColumns = []string{"id", "name", "title", "submitted_by", "created_at", "status"}

// pptxFormatter builds a deck from the primary entity, the first one that
// produced data without an error.
type pptxFormatter struct{}

func (p *pptxFormatter) Format(ctx context.Context, report domain.ProcessedReport, opts Options) (Output, error) {
	data, err := p.render(report, opts)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("pptx generation failed, emitting error document")
		data, err = p.renderError(opts, err)
		if err != nil {
			data = []byte("Failed to generate PPTX report.")
		}
	}
	return Output{
		Data: data,
		Ext:  "pptx",
		MIME: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}, nil
}

func (p *pptxFormatter) render(report domain.ProcessedReport, opts Options) ([]byte, error) {
	pres := ooxml.NewPresentation()

	entity, res, ok := firstValidEntity(report)
	if !ok {
		slide := pres.AddSlide()
		slide.Title(titleOrDefault(opts))
		slide.Subtitle("Report generation failed")
		slide.Text(allErrors(report), ooxml.Inches(0.5), ooxml.Inches(2.5),
			ooxml.SlideWidth-ooxml.Inches(1.0), ooxml.Inches(2.0))
		return p.assemble(pres)
	}

	title := pres.AddSlide()
	title.Title(titleOrDefault(opts))
	title.Subtitle("Generated: " + generatedAt(opts).Format("2006-01-02 15:04:05"))
	title.Text(sheetTitle(entity, res), ooxml.Inches(0.5), ooxml.Inches(2.6),
		ooxml.SlideWidth-ooxml.Inches(1.0), ooxml.Inches(0.8))

	if stats := scalarStats(res.Analysis.SummaryStats); len(stats) > 0 {
		slide := pres.AddSlide()
		slide.Title("Summary Statistics")
		lines := make([]string, 0, len(stats))
		for _, s := range stats {
			if len(lines) == pptxMaxBulletsSlide {
				break
			}
			lines = append(lines, fmt.Sprintf("%s: %s", schema.DisplayName(s.key), s.value))
		}
		slide.Bullets(lines, ooxml.Inches(0.8), ooxml.Inches(1.8),
			ooxml.SlideWidth-ooxml.Inches(1.6), ooxml.Inches(4.5))
	}

	for _, key := range sortedChartKeys(res.Analysis.Charts) {
		slide := pres.AddSlide()
		slide.Title(schema.DisplayName(key))
		slide.Image(res.Analysis.Charts[key],
			ooxml.Inches(1.6), ooxml.Inches(1.5), ooxml.Inches(10.0), ooxml.Inches(5.6))
	}

	p.tableSlide(pres, res)

	insights := insightLines(res.Analysis.Insights, true)
	if len(insights) > 0 {
		slide := pres.AddSlide()
		slide.Title("Key Insights")
		if len(insights) > pptxMaxBulletsSlide {
			insights = insights[:pptxMaxBulletsSlide]
		}
		slide.Bullets(insights, ooxml.Inches(0.8), ooxml.Inches(1.8),
			ooxml.SlideWidth-ooxml.Inches(1.6), ooxml.Inches(4.5))
	}

	conclusion := pres.AddSlide()
	conclusion.Title("Conclusion")
	lines := insights
	if len(lines) > pptxMaxConclusions {
		lines = lines[:pptxMaxConclusions]
	}
	lines = append(append([]string(nil), lines...), "This concludes the automated analysis.")
	conclusion.Bullets(lines, ooxml.Inches(0.8), ooxml.Inches(1.8),
		ooxml.SlideWidth-ooxml.Inches(1.6), ooxml.Inches(3.5))

	return p.assemble(pres)
}

func (p *pptxFormatter) tableSlide(pres *ooxml.Presentation, res domain.EntityResult) {
	available := make(map[string]bool, len(res.Columns))
	for _, col := range res.Columns {
		available[col] = true
	}
	var cols []string
	for _, col := range pptxTableColumns {
		if available[col] {
			cols = append(cols, col)
		}
	}
	for _, col := range res.Columns {
		if len(cols) == pptxMaxTableCols {
			break
		}
		if !contains(cols, col) {
			cols = append(cols, col)
		}
	}
	if len(cols) > pptxMaxTableCols {
		cols = cols[:pptxMaxTableCols]
	}
	if len(cols) == 0 || len(res.Records) == 0 {
		return
	}

	records := sortRecordsByID(res.Records)
	if len(records) > pptxTableRows {
		records = records[:pptxTableRows]
	}

	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = schema.DisplayName(col)
	}
	rows := make([][]string, len(records))
	for r, rec := range records {
		row := make([]string, len(cols))
		for c, col := range cols {
			row[c] = truncateText(cellString(rec, col), pptxCellMaxLen)
		}
		rows[r] = row
	}

	slide := pres.AddSlide()
	slide.Title("Data Overview")
	slide.Table(headers, rows, ooxml.Inches(0.8), ooxml.Inches(1.6), ooxml.SlideWidth-ooxml.Inches(1.6))
}

func (p *pptxFormatter) assemble(pres *ooxml.Presentation) ([]byte, error) {
	data, err := pres.Bytes()
	if err != nil {
		return nil, fmt.Errorf("assemble presentation: %w", err)
	}
	return data, nil
}

func (p *pptxFormatter) renderError(opts Options, cause error) ([]byte, error) {
	pres := ooxml.NewPresentation()
	slide := pres.AddSlide()
	slide.Title(titleOrDefault(opts))
	slide.Text(fmt.Sprintf("The report could not be generated: %v", cause),
		ooxml.Inches(0.5), ooxml.Inches(2.5),
		ooxml.SlideWidth-ooxml.Inches(1.0), ooxml.Inches(2.0))
	return pres.Bytes()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
