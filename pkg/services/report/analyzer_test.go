package report

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/services/report/charts"
	"github.com/de-tools/form-atlas/pkg/services/report/insights"
	"github.com/de-tools/form-atlas/pkg/services/report/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyzerFixture struct {
	analyzer *Analyzer
	ctx      context.Context
}

func setupAnalyzerFixture(t *testing.T) *analyzerFixture {
	t.Helper()
	return &analyzerFixture{
		analyzer: NewAnalyzer(),
		ctx:      context.Background(),
	}
}

func userRecords(n int) []domain.Record {
	roles := []string{"inspector", "inspector", "inspector", "admin"}
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{
			"id":         int64(i + 1),
			"email":      "user@example.com",
			"role.name":  roles[i%len(roles)],
			"created_at": time.Date(2025, 6, 1+i%10, 9, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestAnalyzerRun(t *testing.T) {
	fx := setupAnalyzerFixture(t)
	cols := []string{"id", "email", "role.name", "created_at"}

	t.Run("analyzes a healthy entity", func(t *testing.T) {
		out := fx.analyzer.Run(fx.ctx, []Input{{
			Entity:    "users",
			SheetName: "Users",
			Columns:   cols,
			Records:   userRecords(8),
		}})

		res, ok := out["users"]
		require.True(t, ok)
		assert.Empty(t, res.Err)
		assert.Equal(t, "Users", res.SheetName)
		assert.Equal(t, 8, res.Analysis.SummaryStats["user_count"])
		assert.NotEmpty(t, res.Analysis.Insights)
		assert.NotContains(t, res.Analysis.Insights, insights.StatusKey)
	})

	t.Run("empty entity reports no data", func(t *testing.T) {
		out := fx.analyzer.Run(fx.ctx, []Input{{
			Entity:    "users",
			SheetName: "Users",
			Columns:   cols,
		}})

		res := out["users"]
		assert.Empty(t, res.Err)
		assert.Equal(t, insights.StatusNoData, res.Analysis.Insights[insights.StatusKey])
	})

	t.Run("fetch failure is isolated from other entities", func(t *testing.T) {
		out := fx.analyzer.Run(fx.ctx, []Input{
			{Entity: "users", SheetName: "Users", Columns: cols, Records: userRecords(4)},
			{Entity: "forms", SheetName: "Forms", Err: "connection refused"},
		})

		require.Len(t, out, 2)
		assert.Equal(t, "connection refused", out["forms"].Err)
		assert.Equal(t, insights.StatusError, out["forms"].Analysis.Insights[insights.StatusKey])
		assert.Empty(t, out["users"].Err)
		assert.Equal(t, 4, out["users"].Analysis.SummaryStats["user_count"])
	})

	t.Run("unknown entity type fails that entity only", func(t *testing.T) {
		out := fx.analyzer.Run(fx.ctx, []Input{{
			Entity:    "widgets",
			SheetName: "Widgets",
			Columns:   []string{"id"},
			Records:   []domain.Record{{"id": int64(1)}},
		}})

		assert.Contains(t, out["widgets"].Err, "unknown entity type")
	})

	t.Run("cross chart attached under its request key", func(t *testing.T) {
		req := domain.CrossChartRequest{
			Type: "bar", XEntity: "users", XColumn: "role.name",
			YEntity: "users", YColumn: "role.name", Alignment: charts.AlignCategory,
		}
		out := fx.analyzer.Run(fx.ctx, []Input{{
			Entity:  "users",
			Columns: cols,
			Records: userRecords(8),
			Params:  domain.EntityParams{CrossCharts: []domain.CrossChartRequest{req}},
		}})

		img, ok := out["users"].Analysis.Charts[charts.CrossKey(req)]
		require.True(t, ok)
		assert.NotEmpty(t, img)
	})

	t.Run("cross chart against missing entity still yields an image", func(t *testing.T) {
		req := domain.CrossChartRequest{
			Type: "scatter", XEntity: "users", XColumn: "id",
			YEntity: "absent", YColumn: "id", Alignment: charts.AlignIndex,
		}
		out := fx.analyzer.Run(fx.ctx, []Input{{
			Entity:  "users",
			Columns: cols,
			Records: userRecords(4),
			Params:  domain.EntityParams{CrossCharts: []domain.CrossChartRequest{req}},
		}})

		assert.NotEmpty(t, out["users"].Analysis.Charts[charts.CrossKey(req)])
	})
}

func TestGeneratorPanicIsolation(t *testing.T) {
	boomStats := func(*frame.Frame, stats.Params) (map[string]any, error) {
		panic("stats exploded")
	}
	_, err := runStats(boomStats, frame.New(nil, nil), stats.Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stats exploded")

	boomCharts := func(*frame.Frame, map[string]any, charts.Params) (map[string][]byte, error) {
		panic("charts exploded")
	}
	_, err = runCharts(boomCharts, frame.New(nil, nil), nil, charts.Params{})
	require.Error(t, err)

	boomInsights := func(*frame.Frame, map[string]any, insights.Params) (map[string]string, error) {
		panic("insights exploded")
	}
	_, err = runInsights(boomInsights, frame.New(nil, nil), nil, insights.Params{})
	require.Error(t, err)
}
