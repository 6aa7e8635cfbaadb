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
	register("docx", func() Formatter { return &docxFormatter{} })
}

const (
	docxSampleRows   = 10
	docxMaxTableCols = 6
	docxCellMaxLen   = 50
)

type docxFormatter struct{}

func (d *docxFormatter) Format(ctx context.Context, report domain.ProcessedReport, opts Options) (Output, error) {
	data, err := d.render(report, opts)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("docx generation failed, emitting error document")
		data, err = d.renderError(opts, err)
		if err != nil {
			data = []byte("Failed to generate DOCX report.")
		}
	}
	return Output{
		Data: data,
		Ext:  "docx",
		MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, nil
}

func (d *docxFormatter) render(report domain.ProcessedReport, opts Options) ([]byte, error) {
	doc := ooxml.NewDocWriter()
	doc.Heading(titleOrDefault(opts), 1)
	doc.Paragraph("Generated: " + generatedAt(opts).Format("2006-01-02 15:04:05"))

	for i, entity := range sortedEntities(report) {
		res := report[entity]
		if i > 0 {
			doc.PageBreak()
		}
		doc.Heading(sheetTitle(entity, res), 2)

		if res.Err != "" {
			doc.ItalicParagraph(fmt.Sprintf("Error retrieving data: %s", res.Err))
			continue
		}

		if lines := insightLines(res.Analysis.Insights, true); len(lines) > 0 {
			doc.Heading("Key Insights", 3)
			for _, line := range lines {
				doc.Bullet(line)
			}
		}

		if stats := scalarStats(res.Analysis.SummaryStats); len(stats) > 0 {
			doc.Heading("Summary Statistics", 3)
			for _, s := range stats {
				doc.Paragraph(fmt.Sprintf("%s: %s", schema.DisplayName(s.key), s.value))
			}
		}

		d.sampleTable(doc, res)

		for _, key := range sortedChartKeys(res.Analysis.Charts) {
			doc.Image(res.Analysis.Charts[key], ooxml.Inches(6), ooxml.Inches(3.375))
		}
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("assemble document: %w", err)
	}
	return data, nil
}

func (d *docxFormatter) renderError(opts Options, cause error) ([]byte, error) {
	doc := ooxml.NewDocWriter()
	doc.Heading(titleOrDefault(opts), 1)
	doc.Paragraph(fmt.Sprintf("The report could not be generated: %v", cause))
	return doc.Bytes()
}

func (d *docxFormatter) sampleTable(doc *ooxml.DocWriter, res domain.EntityResult) {
	if len(res.Records) == 0 || len(res.Columns) == 0 {
		return
	}
	cols := res.Columns
	if len(cols) > docxMaxTableCols {
		cols = cols[:docxMaxTableCols]
	}
	records := sortRecordsByID(res.Records)
	sample := records
	if len(sample) > docxSampleRows {
		sample = sample[:docxSampleRows]
	}

	doc.Heading("Data Sample", 3)
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = schema.DisplayName(col)
	}
	rows := make([][]string, len(sample))
	for r, rec := range sample {
		row := make([]string, len(cols))
		for c, col := range cols {
			row[c] = truncateText(cellString(rec, col), docxCellMaxLen)
		}
		rows[r] = row
	}
	doc.Table(headers, rows)
	doc.Paragraph(fmt.Sprintf("Showing %d of %d records", len(sample), len(records)))
}
