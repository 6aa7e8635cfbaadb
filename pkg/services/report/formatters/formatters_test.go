package formatters

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/services/report/insights"
	"github.com/de-tools/form-atlas/pkg/services/report/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleOptions() Options {
	return Options{
		Title:       "Site Activity Report",
		GeneratedAt: time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
	}
}

func usersResult() domain.EntityResult {
	chart, _ := render.Bar("Users per role", domain.Counts{
		{Value: "inspector", Count: 5}, {Value: "admin", Count: 2},
	})
	return domain.EntityResult{
		SheetName: "Users",
		Columns:   []string{"id", "username", "role.name"},
		Records: []domain.Record{
			{"id": int64(2), "username": "bob", "role.name": "admin"},
			{"id": int64(10), "username": "carol", "role.name": "inspector"},
			{"id": int64(1), "username": "alice", "role.name": "inspector"},
		},
		Analysis: domain.Analysis{
			SummaryStats: map[string]any{"user_count": 3},
			Charts:       map[string][]byte{"bar_role_name": chart},
			Insights:     map[string]string{"user_summary": "3 user accounts analyzed."},
		},
	}
}

func failedResult() domain.EntityResult {
	return domain.EntityResult{
		SheetName: "Forms",
		Err:       "connection refused",
		Analysis: domain.Analysis{
			Insights: map[string]string{insights.StatusKey: insights.StatusError},
		},
	}
}

func sampleReport() domain.ProcessedReport {
	return domain.ProcessedReport{
		"users": usersResult(),
		"forms": failedResult(),
	}
}

func TestRegistry(t *testing.T) {
	for _, format := range []string{"xlsx", "csv", "pdf", "docx", "pptx"} {
		f, err := New(format)
		require.NoError(t, err, format)
		require.NotNil(t, f)
	}

	_, err := New("odt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx")
}

func TestInsightLines(t *testing.T) {
	values := map[string]string{
		insights.StatusKey: insights.StatusError,
		"volume":           "5 submissions recorded in the reporting period.",
		"busiest_day":      "Most submissions occur on Monday (4).",
	}

	lines := insightLines(values, true)
	require.Len(t, lines, 2)
	assert.Equal(t, "Most submissions occur on Monday (4).", lines[0])
	assert.NotContains(t, lines, insights.StatusError)

	lines = insightLines(values, false)
	assert.Len(t, lines, 3)
}

func TestSortRecordsByID(t *testing.T) {
	t.Run("numeric order beats lexical", func(t *testing.T) {
		sorted := sortRecordsByID([]domain.Record{
			{"id": int64(10)}, {"id": int64(2)}, {"id": int64(1)},
		})
		assert.Equal(t, int64(1), sorted[0]["id"])
		assert.Equal(t, int64(2), sorted[1]["id"])
		assert.Equal(t, int64(10), sorted[2]["id"])
	})

	t.Run("non-numeric ids fall back to lexical", func(t *testing.T) {
		sorted := sortRecordsByID([]domain.Record{
			{"id": "b-2"}, {"id": "a-1"},
		})
		assert.Equal(t, "a-1", sorted[0]["id"])
	})
}

func TestXLSXFormatter(t *testing.T) {
	f, err := New("xlsx")
	require.NoError(t, err)

	out, err := f.Format(context.Background(), sampleReport(), sampleOptions())
	require.NoError(t, err)
	assert.Equal(t, "xlsx", out.Ext)

	wb, err := excelize.OpenReader(bytes.NewReader(out.Data))
	require.NoError(t, err)
	defer wb.Close()

	sheets := wb.GetSheetList()
	assert.Contains(t, sheets, "Users")
	assert.Contains(t, sheets, "ERROR_Forms")
	assert.NotContains(t, sheets, "Sheet1")

	title, err := wb.GetCellValue("Users", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Site Activity Report - Users", title)

	header, err := wb.GetCellValue("Users", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Id", header)

	firstID, err := wb.GetCellValue("Users", "A5")
	require.NoError(t, err)
	assert.Equal(t, "1", firstID)
	lastID, err := wb.GetCellValue("Users", "A7")
	require.NoError(t, err)
	assert.Equal(t, "10", lastID)

	errMsg, err := wb.GetCellValue("ERROR_Forms", "A2")
	require.NoError(t, err)
	assert.Equal(t, "connection refused", errMsg)
}

func TestCSVFormatterSingleEntity(t *testing.T) {
	f, err := New("csv")
	require.NoError(t, err)

	report := domain.ProcessedReport{"users": usersResult()}
	out, err := f.Format(context.Background(), report, sampleOptions())
	require.NoError(t, err)
	assert.Equal(t, "csv", out.Ext)
	assert.Equal(t, "text/csv", out.MIME)

	lines := strings.Split(strings.TrimSpace(string(out.Data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Id,Username,Role Name", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,alice"))
	assert.True(t, strings.HasPrefix(lines[3], "10,carol"))
}

func TestCSVFormatterSingleEntityError(t *testing.T) {
	f, err := New("csv")
	require.NoError(t, err)

	report := domain.ProcessedReport{"forms": failedResult()}
	out, err := f.Format(context.Background(), report, sampleOptions())
	require.NoError(t, err)
	assert.Equal(t, "csv", out.Ext)
	assert.Equal(t, "text/csv", out.MIME)

	lines := strings.Split(strings.TrimSpace(string(out.Data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Error", lines[0])
	assert.Contains(t, lines[1], "Error for forms: connection refused")
}

func TestCSVFormatterMultiEntityZip(t *testing.T) {
	f, err := New("csv")
	require.NoError(t, err)

	out, err := f.Format(context.Background(), sampleReport(), sampleOptions())
	require.NoError(t, err)
	assert.Equal(t, "zip", out.Ext)
	assert.Equal(t, "application/zip", out.MIME)

	zr, err := zip.NewReader(bytes.NewReader(out.Data), int64(len(out.Data)))
	require.NoError(t, err)

	entries := map[string]string{}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[zf.Name] = string(data)
	}

	require.Contains(t, entries, "users.csv")
	require.Contains(t, entries, "forms_error.txt")
	assert.Contains(t, entries["forms_error.txt"], "connection refused")
	assert.Contains(t, entries["users.csv"], "alice")
}

func TestPDFFormatter(t *testing.T) {
	f, err := New("pdf")
	require.NoError(t, err)

	out, err := f.Format(context.Background(), sampleReport(), sampleOptions())
	require.NoError(t, err)
	assert.Equal(t, "pdf", out.Ext)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF")))
	assert.Greater(t, len(out.Data), 1000)
}

func TestPDFErrorDocument(t *testing.T) {
	p := &pdfFormatter{}
	data, err := p.renderError(sampleOptions(), assert.AnError)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestDOCXErrorDocument(t *testing.T) {
	d := &docxFormatter{}
	data, err := d.renderError(sampleOptions(), assert.AnError)
	require.NoError(t, err)

	body := readZipEntry(t, data, "word/document.xml")
	assert.Contains(t, body, "Site Activity Report")
	assert.Contains(t, body, "The report could not be generated")
}

func TestPPTXErrorDocument(t *testing.T) {
	p := &pptxFormatter{}
	data, err := p.renderError(sampleOptions(), assert.AnError)
	require.NoError(t, err)

	slide := readZipEntry(t, data, "ppt/slides/slide1.xml")
	assert.Contains(t, slide, "Site Activity Report")
	assert.Contains(t, slide, "The report could not be generated")
}

func TestDOCXFormatter(t *testing.T) {
	f, err := New("docx")
	require.NoError(t, err)

	out, err := f.Format(context.Background(), sampleReport(), sampleOptions())
	require.NoError(t, err)
	assert.Equal(t, "docx", out.Ext)

	doc := readZipEntry(t, out.Data, "word/document.xml")
	assert.Contains(t, doc, "Site Activity Report")
	assert.Contains(t, doc, "Users")
	assert.Contains(t, doc, "Error retrieving data: connection refused")
	assert.Contains(t, doc, "Showing 3 of 3 records")
}

func TestPPTXFormatter(t *testing.T) {
	f, err := New("pptx")
	require.NoError(t, err)

	t.Run("builds a deck from the primary entity", func(t *testing.T) {
		out, err := f.Format(context.Background(), sampleReport(), sampleOptions())
		require.NoError(t, err)
		assert.Equal(t, "pptx", out.Ext)

		title := readZipEntry(t, out.Data, "ppt/slides/slide1.xml")
		assert.Contains(t, title, "Site Activity Report")
		assert.Contains(t, title, "Users")
	})

	t.Run("all entities failed", func(t *testing.T) {
		report := domain.ProcessedReport{"forms": failedResult()}
		out, err := f.Format(context.Background(), report, sampleOptions())
		require.NoError(t, err)

		slide := readZipEntry(t, out.Data, "ppt/slides/slide1.xml")
		assert.Contains(t, slide, "Report generation failed")
		assert.Contains(t, slide, "connection refused")
	})
}

func readZipEntry(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, zf := range zr.File {
		if zf.Name != name {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		return string(data)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}
