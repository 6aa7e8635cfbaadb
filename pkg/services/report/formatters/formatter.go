// Package formatters turns a processed report into one of the supported
// output documents: xlsx, csv, pdf, docx or pptx.
package formatters

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
	"github.com/de-tools/form-atlas/pkg/services/report/insights"
)

// Options carries the report-level settings shared by all formats.
type Options struct {
	Title       string
	GeneratedAt time.Time
}

// Output is a finished document. Ext and MIME may differ from the
// requested format, e.g. a multi-entity CSV export comes back zipped.
type Output struct {
	Data []byte
	Ext  string
	MIME string
}

// Formatter renders a processed report into one document format.
type Formatter interface {
	Format(ctx context.Context, report domain.ProcessedReport, opts Options) (Output, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]func() Formatter{}
)

func register(format string, factory func() Formatter) {
	mu.Lock()
	defer mu.Unlock()
	registry[format] = factory
}

// New returns a formatter for the named format.
func New(format string) (Formatter, error) {
	mu.RLock()
	defer mu.RUnlock()
	factory, ok := registry[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q, expected one of: %s",
			format, strings.Join(Formats(), ", "))
	}
	return factory(), nil
}

// Formats lists the registered format names in sorted order.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// sortedEntities returns the report's entity names in a stable order.
func sortedEntities(report domain.ProcessedReport) []string {
	out := make([]string, 0, len(report))
	for name := range report {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// firstValidEntity returns the first entity without an error, for formats
// that present a single primary entity.
func firstValidEntity(report domain.ProcessedReport) (string, domain.EntityResult, bool) {
	for _, name := range sortedEntities(report) {
		if res := report[name]; res.Err == "" {
			return name, res, true
		}
	}
	return "", domain.EntityResult{}, false
}

// allErrors joins every entity error into one message.
func allErrors(report domain.ProcessedReport) string {
	var msgs []string
	for _, name := range sortedEntities(report) {
		if res := report[name]; res.Err != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", name, res.Err))
		}
	}
	return strings.Join(msgs, "; ")
}

// sheetTitle returns the display name for an entity section, preferring
// the configured sheet name.
func sheetTitle(entity string, res domain.EntityResult) string {
	if res.SheetName != "" {
		return res.SheetName
	}
	return schema.DisplayName(entity)
}

// cellString renders one record value for output.
func cellString(rec domain.Record, col string) string {
	v, ok := rec[col]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(schema.FormatValue(v))
}

// sortRecordsByID orders records by id, numerically where both ids parse
// and lexically otherwise. The input is not modified.
func sortRecordsByID(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := fmt.Sprint(out[i]["id"]), fmt.Sprint(out[j]["id"])
		fa, errA := strconv.ParseFloat(a, 64)
		fb, errB := strconv.ParseFloat(b, 64)
		if errA == nil && errB == nil {
			return fa < fb
		}
		return a < b
	})
	return out
}

// scalarStats extracts the displayable scalar statistics, sorted by key.
func scalarStats(st map[string]any) []statLine {
	var out []statLine
	for key, v := range st {
		if strings.HasSuffix(key, "_error") {
			continue
		}
		switch val := v.(type) {
		case int, int64, float64:
			out = append(out, statLine{key: key, value: fmt.Sprint(val)})
		case domain.DateRange:
			out = append(out, statLine{key: key, value: fmt.Sprintf("%s to %s", val.First, val.Last)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

type statLine struct {
	key   string
	value string
}

// insightLines returns the entity's insights sorted by key, skipping the
// pipeline status message.
func insightLines(values map[string]string, skipStatus bool) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if skipStatus && k == insights.StatusKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, values[k])
	}
	return out
}

// sortedChartKeys orders a chart map for stable output.
func sortedChartKeys(charts map[string][]byte) []string {
	out := make([]string, 0, len(charts))
	for k := range charts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func titleOrDefault(opts Options) string {
	if opts.Title != "" {
		return opts.Title
	}
	return "Data Analysis Report"
}

func generatedAt(opts Options) time.Time {
	if opts.GeneratedAt.IsZero() {
		return time.Now().UTC()
	}
	return opts.GeneratedAt
}
