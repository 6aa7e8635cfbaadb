package frame

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/form-atlas/pkg/models/domain"
)

// Kind is the inferred type of a column, decided by scanning its values.
type Kind int

const (
	KindEmpty Kind = iota
	KindBool
	KindNumeric
	KindTime
	KindString
)

// Frame is an ordered, column-addressed view over fetched records. Rows are
// flattened records keyed by column path. A Frame is read-only once built.
type Frame struct {
	cols  []string
	rows  []domain.Record
	kinds map[string]Kind
}

// New builds a frame over rows restricted to the given column order.
// Columns absent from cols but present in rows are ignored.
func New(cols []string, rows []domain.Record) *Frame {
	f := &Frame{
		cols:  append([]string(nil), cols...),
		rows:  rows,
		kinds: make(map[string]Kind, len(cols)),
	}
	for _, c := range f.cols {
		f.kinds[c] = f.inferKind(c)
	}
	return f
}

func (f *Frame) Len() int          { return len(f.rows) }
func (f *Frame) Columns() []string { return f.cols }

// HasColumn reports whether the column is part of the frame.
func (f *Frame) HasColumn(col string) bool {
	_, ok := f.kinds[col]
	return ok
}

// Kind returns the inferred kind of a column, KindEmpty when unknown.
func (f *Frame) Kind(col string) Kind {
	return f.kinds[col]
}

// Row returns the i-th record.
func (f *Frame) Row(i int) domain.Record { return f.rows[i] }

// Values returns the raw column values in row order, nils included.
func (f *Frame) Values(col string) []any {
	out := make([]any, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[col]
	}
	return out
}

func (f *Frame) inferKind(col string) Kind {
	kind := KindEmpty
	for _, r := range f.rows {
		v := r[col]
		if v == nil {
			continue
		}
		var k Kind
		switch v.(type) {
		case bool:
			k = KindBool
		case int, int32, int64, float32, float64:
			k = KindNumeric
		case time.Time, *time.Time:
			k = KindTime
		default:
			k = KindString
		}
		if kind == KindEmpty {
			kind = k
		} else if kind != k {
			return KindString
		}
	}
	return kind
}

// NUnique counts distinct non-null values of a column.
func (f *Frame) NUnique(col string) int {
	seen := make(map[string]struct{})
	for _, r := range f.rows {
		v := r[col]
		if isNull(v) {
			continue
		}
		seen[cellKey(v)] = struct{}{}
	}
	return len(seen)
}

// ValueCounts tallies a column's non-null values. The result is ordered by
// descending count with ties broken by first appearance. Missing or
// all-null columns yield an empty result. List-valued cells group as one
// composite category. topN <= 0 means no limit.
func (f *Frame) ValueCounts(col string, topN int) domain.Counts {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range f.rows {
		v, ok := r[col]
		if !ok || isNull(v) {
			continue
		}
		key := cellKey(v)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	firstSeen := make(map[string]int, len(order))
	for i, k := range order {
		firstSeen[k] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})
	if topN > 0 && len(order) > topN {
		order = order[:topN]
	}
	out := make(domain.Counts, 0, len(order))
	for _, k := range order {
		out = append(out, domain.CountPair{Value: k, Count: counts[k]})
	}
	return out
}

// Floats coerces a column's non-null values to float64, skipping values
// that cannot be read as numbers.
func (f *Frame) Floats(col string) []float64 {
	out := make([]float64, 0, len(f.rows))
	for _, r := range f.rows {
		if v, ok := asFloat(r[col]); ok {
			out = append(out, v)
		}
	}
	return out
}

// Times coerces a column's non-null values to timestamps, parsing common
// string layouts, and skips anything unparseable.
func (f *Frame) Times(col string) []time.Time {
	out := make([]time.Time, 0, len(f.rows))
	for _, r := range f.rows {
		if t, ok := asTime(r[col]); ok {
			out = append(out, t)
		}
	}
	return out
}

// TimeRange returns the earliest and latest timestamp in the column.
func (f *Frame) TimeRange(col string) (time.Time, time.Time, bool) {
	times := f.Times(col)
	if len(times) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return min, max, true
}

// DayOrder is the fixed weekday ordering used by every by-day breakdown.
var DayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// CountsByWeekday buckets a time column by weekday, zero-filled in
// Monday..Sunday order.
func (f *Frame) CountsByWeekday(col string) domain.Counts {
	byDay := make(map[string]int, 7)
	for _, t := range f.Times(col) {
		byDay[t.Weekday().String()]++
	}
	out := make(domain.Counts, 0, 7)
	for _, day := range DayOrder {
		out = append(out, domain.CountPair{Value: day, Count: byDay[day]})
	}
	return out
}

// HourWeekdayMatrix buckets a time column into a zero-filled 7x24 activity
// grid indexed [weekday][hour], weekdays in Monday..Sunday order.
func (f *Frame) HourWeekdayMatrix(col string) [7][24]int {
	var grid [7][24]int
	for _, t := range f.Times(col) {
		day := (int(t.Weekday()) + 6) % 7 // Monday first
		grid[day][t.Hour()]++
	}
	return grid
}

// TimeCount is one time bucket and its row count.
type TimeCount struct {
	Bucket time.Time
	Count  int
}

// DailyCounts buckets a time column by calendar day in ascending order.
// Only days with at least one row appear.
func (f *Frame) DailyCounts(col string) []TimeCount {
	return f.bucketCounts(col, func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	})
}

// MonthlyCounts buckets a time column by calendar month in ascending order.
func (f *Frame) MonthlyCounts(col string) []TimeCount {
	return f.bucketCounts(col, func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	})
}

func (f *Frame) bucketCounts(col string, floor func(time.Time) time.Time) []TimeCount {
	byBucket := make(map[time.Time]int)
	for _, t := range f.Times(col) {
		byBucket[floor(t.UTC())]++
	}
	buckets := make([]time.Time, 0, len(byBucket))
	for b := range byBucket {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })
	out := make([]TimeCount, len(buckets))
	for i, b := range buckets {
		out[i] = TimeCount{Bucket: b, Count: byBucket[b]}
	}
	return out
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	if t, ok := v.(*time.Time); ok {
		return t == nil
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// CellKey renders a value the way ValueCounts keys it, so callers can match
// raw cells against count categories.
func CellKey(v any) string { return cellKey(v) }

func cellKey(v any) string {
	switch val := v.(type) {
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = cellKey(item)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		fl, err := strconv.ParseFloat(val, 64)
		return fl, err == nil
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func asTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
