package formatters

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func init() {
	register("xlsx", func() Formatter { return &xlsxFormatter{} })
}

const (
	maxSheetNameLen = 31
	minColWidth     = 10
	maxColWidth     = 60
	chartScale      = 0.6
	chartRowSpan    = 16
	headerRow       = 4
)

type xlsxFormatter struct {
	tables int
}

func (x *xlsxFormatter) Format(ctx context.Context, report domain.ProcessedReport, opts Options) (Output, error) {
	logger := zerolog.Ctx(ctx)
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{}
	first := ""
	for _, entity := range sortedEntities(report) {
		res := report[entity]
		name := sheetTitle(entity, res)
		if res.Err != "" {
			name = "ERROR_" + name
		}
		name = uniqueSheetName(name, used)
		if first == "" {
			first = name
		}
		if _, err := f.NewSheet(name); err != nil {
			return Output{}, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if res.Err != "" {
			x.writeErrorSheet(f, name, entity, res.Err)
			continue
		}
		if err := x.writeEntitySheet(ctx, f, name, res, opts); err != nil {
			return Output{}, fmt.Errorf("write sheet %s: %w", name, err)
		}
	}

	if crossCharts := collectCrossCharts(report); len(crossCharts) > 0 {
		name := uniqueSheetName("Cross-Entity Summary", used)
		if _, err := f.NewSheet(name); err != nil {
			return Output{}, fmt.Errorf("create summary sheet: %w", err)
		}
		x.writeCrossSheet(ctx, f, name, crossCharts, opts)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		logger.Warn().Err(err).Msg("could not remove default sheet")
	}
	if first != "" {
		if idx, err := f.GetSheetIndex(first); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Output{}, fmt.Errorf("serialize workbook: %w", err)
	}
	return Output{
		Data: buf.Bytes(),
		Ext:  "xlsx",
		MIME: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

func (x *xlsxFormatter) writeErrorSheet(f *excelize.File, sheet, entity, msg string) {
	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Error retrieving %s", entity))
	_ = f.SetCellValue(sheet, "A2", msg)
	if style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "9C0006"},
	}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", "A1", style)
	}
	_ = f.SetColWidth(sheet, "A", "A", 80)
}

func (x *xlsxFormatter) writeEntitySheet(
	ctx context.Context,
	f *excelize.File,
	sheet string,
	res domain.EntityResult,
	opts Options,
) error {
	logger := zerolog.Ctx(ctx)

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", titleOrDefault(opts), res.SheetName))
	_ = f.SetCellValue(sheet, "A2", "Generated: "+generatedAt(opts).Format("2006-01-02 15:04:05"))
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", "A1", style)
	}

	cols := res.Columns
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, schema.DisplayName(col)); err != nil {
			return err
		}
	}
	if headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E2F3"}},
	}); err == nil && len(cols) > 0 {
		start, _ := excelize.CoordinatesToCellName(1, headerRow)
		end, _ := excelize.CoordinatesToCellName(len(cols), headerRow)
		_ = f.SetCellStyle(sheet, start, end, headerStyle)
	}

	records := sortRecordsByID(res.Records)
	for r, rec := range records {
		for c, col := range cols {
			cell, err := excelize.CoordinatesToCellName(c+1, headerRow+1+r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, schema.FormatValue(rec[col])); err != nil {
				return err
			}
		}
	}

	if len(cols) > 0 && len(records) > 0 {
		start, _ := excelize.CoordinatesToCellName(1, headerRow)
		end, _ := excelize.CoordinatesToCellName(len(cols), headerRow+len(records))
		x.tables++
		if err := f.AddTable(sheet, &excelize.Table{
			Range:     fmt.Sprintf("%s:%s", start, end),
			Name:      fmt.Sprintf("tbl_%d", x.tables),
			StyleName: "TableStyleMedium9",
		}); err != nil {
			logger.Warn().Err(err).Str("sheet", sheet).Msg("could not add table")
		}
	}

	for i, col := range cols {
		width := len(schema.DisplayName(col))
		for _, rec := range records {
			if n := len(cellString(rec, col)); n > width {
				width = n
			}
		}
		if width < minColWidth {
			width = minColWidth
		}
		width += 2
		if width > maxColWidth {
			width = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(sheet, name, name, float64(width))
	}

	row := headerRow + len(records) + 3
	for _, key := range sortedChartKeys(res.Analysis.Charts) {
		img := res.Analysis.Charts[key]
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			continue
		}
		if err := f.AddPictureFromBytes(sheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      img,
			Format:    &excelize.GraphicOptions{ScaleX: chartScale, ScaleY: chartScale},
		}); err != nil {
			logger.Warn().Err(err).Str("chart", key).Msg("could not embed chart")
			continue
		}
		row += chartRowSpan
	}
	return nil
}

func (x *xlsxFormatter) writeCrossSheet(
	ctx context.Context,
	f *excelize.File,
	sheet string,
	charts []crossChart,
	opts Options,
) {
	logger := zerolog.Ctx(ctx)
	_ = f.SetCellValue(sheet, "A1", titleOrDefault(opts)+" - Cross-Entity Summary")
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", "A1", style)
	}

	row := 3
	for _, cc := range charts {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, schema.DisplayName(strings.TrimPrefix(cc.key, "cross_")))
		imgCell, err := excelize.CoordinatesToCellName(1, row+1)
		if err != nil {
			continue
		}
		if err := f.AddPictureFromBytes(sheet, imgCell, &excelize.Picture{
			Extension: ".png",
			File:      cc.image,
			Format:    &excelize.GraphicOptions{ScaleX: chartScale, ScaleY: chartScale},
		}); err != nil {
			logger.Warn().Err(err).Str("chart", cc.key).Msg("could not embed cross chart")
			continue
		}
		row += chartRowSpan + 2
	}
}

type crossChart struct {
	key   string
	image []byte
}

// collectCrossCharts gathers cross-entity charts from every entity in a
// stable order.
func collectCrossCharts(report domain.ProcessedReport) []crossChart {
	var out []crossChart
	for _, entity := range sortedEntities(report) {
		charts := report[entity].Analysis.Charts
		for _, key := range sortedChartKeys(charts) {
			if strings.HasPrefix(key, "cross_") {
				out = append(out, crossChart{key: key, image: charts[key]})
			}
		}
	}
	return out
}

// uniqueSheetName truncates to the worksheet limit and de-duplicates.
func uniqueSheetName(name string, used map[string]bool) string {
	if len(name) > maxSheetNameLen {
		name = name[:maxSheetNameLen]
	}
	if !used[name] {
		used[name] = true
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" %d", i)
		candidate := name
		if len(candidate)+len(suffix) > maxSheetNameLen {
			candidate = candidate[:maxSheetNameLen-len(suffix)]
		}
		candidate += suffix
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
