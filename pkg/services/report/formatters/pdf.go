package formatters

import (
	"bytes"
	"context"
	"fmt"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
	"github.com/jung-kurt/gofpdf/v2"
	"github.com/rs/zerolog"
)

func init() {
	register("pdf", func() Formatter { return &pdfFormatter{} })
}

const (
	pdfChartWidthMM  = 152.4
	pdfChartHeightMM = 88.9
	pdfSampleRows    = 10
	pdfMaxTableCols  = 6
	pdfCellMaxLen    = 28
)

type pdfFormatter struct{}

func (p *pdfFormatter) Format(ctx context.Context, report domain.ProcessedReport, opts Options) (Output, error) {
	data, err := p.render(report, opts)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("pdf generation failed, emitting error document")
		data, err = p.renderError(opts, err)
		if err != nil {
			data = []byte("Failed to generate PDF report.")
		}
	}
	return Output{Data: data, Ext: "pdf", MIME: "application/pdf"}, nil
}

func (p *pdfFormatter) render(report domain.ProcessedReport, opts Options) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(titleOrDefault(opts), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(titleOrDefault(opts)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated: "+generatedAt(opts).Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, entity := range sortedEntities(report) {
		res := report[entity]

		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 9, tr(sheetTitle(entity, res)), "", 1, "L", false, 0, "")

		if res.Err != "" {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("Error retrieving data: %s", res.Err)), "", "L", false)
			pdf.Ln(4)
			continue
		}

		if lines := insightLines(res.Analysis.Insights, true); len(lines) > 0 {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(0, 7, "Key Insights", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			for _, line := range lines {
				pdf.MultiCell(0, 5, tr("- "+line), "", "L", false)
			}
			pdf.Ln(2)
		}

		if stats := scalarStats(res.Analysis.SummaryStats); len(stats) > 0 {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(0, 7, "Summary Statistics", "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			for _, s := range stats {
				pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s: %s", schema.DisplayName(s.key), s.value)), "", 1, "L", false, 0, "")
			}
			pdf.Ln(2)
		}

		p.sampleTable(pdf, tr, res)
		p.charts(pdf, res)
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *pdfFormatter) sampleTable(pdf *gofpdf.Fpdf, tr func(string) string, res domain.EntityResult) {
	if len(res.Records) == 0 || len(res.Columns) == 0 {
		return
	}
	cols := res.Columns
	if len(cols) > pdfMaxTableCols {
		cols = cols[:pdfMaxTableCols]
	}
	records := sortRecordsByID(res.Records)
	sample := records
	if len(sample) > pdfSampleRows {
		sample = sample[:pdfSampleRows]
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Data Sample", "", 1, "L", false, 0, "")

	colW := 190.0 / float64(len(cols))
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(217, 226, 243)
	for _, col := range cols {
		pdf.CellFormat(colW, 6, tr(truncateText(schema.DisplayName(col), pdfCellMaxLen)), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, rec := range sample {
		for _, col := range cols {
			pdf.CellFormat(colW, 6, tr(truncateText(cellString(rec, col), pdfCellMaxLen)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Showing %d of %d records", len(sample), len(records)), "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (p *pdfFormatter) charts(pdf *gofpdf.Fpdf, res domain.EntityResult) {
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, key := range sortedChartKeys(res.Analysis.Charts) {
		img := res.Analysis.Charts[key]
		name := fmt.Sprintf("%s_%s_%d", res.SheetName, key, i)
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(img))
		if pdf.Err() {
			pdf.ClearError()
			continue
		}
		_, pageH := pdf.GetPageSize()
		if pdf.GetY()+pdfChartHeightMM > pageH-15 {
			pdf.AddPage()
		}
		pdf.ImageOptions(name, 28, pdf.GetY(), pdfChartWidthMM, pdfChartHeightMM, true, opt, 0, "")
		pdf.Ln(4)
	}
}

func (p *pdfFormatter) renderError(opts Options, cause error) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, titleOrDefault(opts), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("The report could not be generated: %v", cause), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
