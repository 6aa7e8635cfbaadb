package formatters

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
)

func init() {
	register("csv", func() Formatter { return &csvFormatter{} })
}

type csvFormatter struct{}

func (c *csvFormatter) Format(_ context.Context, report domain.ProcessedReport, _ Options) (Output, error) {
	entities := sortedEntities(report)
	if len(entities) == 0 {
		return csvOutput(messageCSV("Message", "No data to report.")), nil
	}
	if len(entities) == 1 {
		res := report[entities[0]]
		if res.Err != "" {
			return csvOutput(messageCSV("Error",
				fmt.Sprintf("Error for %s: %s", entities[0], res.Err))), nil
		}
		data, err := c.encode(res)
		if err != nil {
			return Output{}, err
		}
		return csvOutput(data), nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entity := range entities {
		res := report[entity]
		base := fileBaseName(sheetTitle(entity, res))
		if res.Err != "" {
			w, err := zw.Create(base + "_error.txt")
			if err != nil {
				return Output{}, fmt.Errorf("create error entry: %w", err)
			}
			if _, err := fmt.Fprintf(w, "Error retrieving %s: %s\n", entity, res.Err); err != nil {
				return Output{}, err
			}
			continue
		}
		data, err := c.encode(res)
		if err != nil {
			return Output{}, fmt.Errorf("encode %s: %w", entity, err)
		}
		w, err := zw.Create(base + ".csv")
		if err != nil {
			return Output{}, fmt.Errorf("create csv entry: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return Output{}, err
		}
	}
	if err := zw.Close(); err != nil {
		return Output{}, fmt.Errorf("close archive: %w", err)
	}
	return Output{Data: buf.Bytes(), Ext: "zip", MIME: "application/zip"}, nil
}

func (c *csvFormatter) encode(res domain.EntityResult) ([]byte, error) {
	cols := make([]string, 0, len(res.Columns))
	for _, col := range res.Columns {
		if strings.HasPrefix(col, "_") {
			continue
		}
		cols = append(cols, col)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = schema.DisplayName(col)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, rec := range sortRecordsByID(res.Records) {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = cellString(rec, col)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvOutput(data []byte) Output {
	return Output{Data: data, Ext: "csv", MIME: "text/csv"}
}

// messageCSV builds a one-column document carrying a status or error line,
// so the caller still receives a well-formed file.
func messageCSV(header, line string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{header})
	_ = w.Write([]string{line})
	w.Flush()
	return buf.Bytes()
}

// fileBaseName sanitizes a sheet title for use as an archive entry name.
func fileBaseName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
