package frame

import (
	"testing"
	"time"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueCounts(t *testing.T) {
	t.Run("orders by descending frequency", func(t *testing.T) {
		f := New([]string{"status"}, []domain.Record{
			{"status": "open"},
			{"status": "closed"},
			{"status": "closed"},
			{"status": "open"},
			{"status": "closed"},
		})
		counts := f.ValueCounts("status", 0)
		require.Len(t, counts, 2)
		assert.Equal(t, domain.CountPair{Value: "closed", Count: 3}, counts[0])
		assert.Equal(t, domain.CountPair{Value: "open", Count: 2}, counts[1])
	})

	t.Run("all-null column is empty", func(t *testing.T) {
		f := New([]string{"status"}, []domain.Record{
			{"status": nil},
			{"status": nil},
		})
		assert.Empty(t, f.ValueCounts("status", 0))
	})

	t.Run("missing column is empty", func(t *testing.T) {
		f := New([]string{"status"}, []domain.Record{{"other": "x"}})
		assert.Empty(t, f.ValueCounts("status", 0))
	})

	t.Run("list cells group as one category", func(t *testing.T) {
		f := New([]string{"tags"}, []domain.Record{
			{"tags": []any{"a", "b"}},
			{"tags": []any{"a", "b"}},
			{"tags": []any{"b"}},
		})
		counts := f.ValueCounts("tags", 0)
		require.Len(t, counts, 2)
		assert.Equal(t, "(a, b)", counts[0].Value)
		assert.Equal(t, 2, counts[0].Count)
	})

	t.Run("top n limit", func(t *testing.T) {
		f := New([]string{"v"}, []domain.Record{
			{"v": "a"}, {"v": "a"}, {"v": "b"}, {"v": "c"},
		})
		counts := f.ValueCounts("v", 2)
		require.Len(t, counts, 2)
		assert.Equal(t, "a", counts[0].Value)
	})

	t.Run("ties keep first appearance order", func(t *testing.T) {
		f := New([]string{"v"}, []domain.Record{
			{"v": "beta"}, {"v": "alpha"},
		})
		counts := f.ValueCounts("v", 0)
		assert.Equal(t, "beta", counts[0].Value)
		assert.Equal(t, "alpha", counts[1].Value)
	})
}

func TestKindInference(t *testing.T) {
	f := New([]string{"id", "name", "ok", "at", "mixed"}, []domain.Record{
		{"id": int64(1), "name": "a", "ok": true, "at": time.Now(), "mixed": int64(1)},
		{"id": int64(2), "name": "b", "ok": false, "at": time.Now(), "mixed": "x"},
	})
	assert.Equal(t, KindNumeric, f.Kind("id"))
	assert.Equal(t, KindString, f.Kind("name"))
	assert.Equal(t, KindBool, f.Kind("ok"))
	assert.Equal(t, KindTime, f.Kind("at"))
	assert.Equal(t, KindString, f.Kind("mixed"))
}

func TestTimeBuckets(t *testing.T) {
	day := func(d int, h int) time.Time {
		return time.Date(2025, 6, d, h, 0, 0, 0, time.UTC)
	}
	f := New([]string{"submitted_at"}, []domain.Record{
		{"submitted_at": day(2, 9)},  // Monday
		{"submitted_at": day(2, 14)}, // Monday
		{"submitted_at": day(4, 9)},  // Wednesday
	})

	t.Run("weekday counts zero-filled monday first", func(t *testing.T) {
		counts := f.CountsByWeekday("submitted_at")
		require.Len(t, counts, 7)
		assert.Equal(t, domain.CountPair{Value: "Monday", Count: 2}, counts[0])
		assert.Equal(t, domain.CountPair{Value: "Sunday", Count: 0}, counts[6])
	})

	t.Run("hour weekday grid", func(t *testing.T) {
		grid := f.HourWeekdayMatrix("submitted_at")
		assert.Equal(t, 1, grid[0][9])
		assert.Equal(t, 1, grid[0][14])
		assert.Equal(t, 1, grid[2][9])
		assert.Equal(t, 0, grid[6][0])
	})

	t.Run("daily buckets ascending", func(t *testing.T) {
		daily := f.DailyCounts("submitted_at")
		require.Len(t, daily, 2)
		assert.Equal(t, 2, daily[0].Count)
		assert.True(t, daily[0].Bucket.Before(daily[1].Bucket))
	})

	t.Run("string timestamps parse", func(t *testing.T) {
		sf := New([]string{"at"}, []domain.Record{
			{"at": "2025-06-02 09:00:00"},
			{"at": "2025-06-03"},
		})
		assert.Len(t, sf.Times("at"), 2)
	})
}

func TestDetectChartColumns(t *testing.T) {
	t.Run("single-valued column never charts", func(t *testing.T) {
		f := New([]string{"status"}, []domain.Record{
			{"status": "ok"}, {"status": "ok"},
		})
		assert.Empty(t, f.DetectChartColumns(Hints{BarCharts: []string{"status"}}))
	})

	t.Run("hints come first", func(t *testing.T) {
		f := New([]string{"role", "env"}, []domain.Record{
			{"role": "a", "env": "x"},
			{"role": "b", "env": "y"},
		})
		cands := f.DetectChartColumns(Hints{BarCharts: []string{"env"}})
		require.NotEmpty(t, cands)
		assert.Equal(t, Candidate{Column: "env", Type: "bar"}, cands[0])
	})

	t.Run("numeric pairs make scatter", func(t *testing.T) {
		rows := make([]domain.Record, 8)
		for i := range rows {
			rows[i] = domain.Record{"x": int64(i), "y": int64(i * 2)}
		}
		cands := New([]string{"x", "y"}, rows).DetectChartColumns(Hints{})
		var scatter bool
		for _, c := range cands {
			if c.Type == "scatter" && c.Other != "" {
				scatter = true
			}
		}
		assert.True(t, scatter)
	})
}
