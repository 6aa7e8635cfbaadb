package charts

import (
	"testing"
	"time"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categorical(t *testing.T, col string, values ...string) *frame.Frame {
	t.Helper()
	rows := make([]domain.Record, len(values))
	for i, v := range values {
		rows[i] = domain.Record{col: v}
	}
	return frame.New([]string{col}, rows)
}

func TestGenericCharts(t *testing.T) {
	fn, ok := Lookup("generic_charts")
	require.True(t, ok)

	t.Run("empty frame renders nothing", func(t *testing.T) {
		out, err := fn(frame.New([]string{"status"}, nil), nil, Params{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("single-valued column renders nothing", func(t *testing.T) {
		f := categorical(t, "status", "ok", "ok", "ok")
		out, err := fn(f, nil, Params{Hints: frame.Hints{BarCharts: []string{"status"}}})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("cap of three generic charts", func(t *testing.T) {
		cols := []string{"c1", "c2", "c3", "c4", "c5"}
		rows := []domain.Record{{}, {}, {}}
		for i, col := range cols {
			rows[0][col] = "a"
			rows[1][col] = "b"
			rows[2][col] = string(rune('c' + i))
		}
		f := frame.New(cols, rows)
		out, err := fn(f, nil, Params{Hints: frame.Hints{BarCharts: cols}})
		require.NoError(t, err)
		assert.Len(t, out, MaxGenericCharts)
	})

	t.Run("requested charts count toward the cap", func(t *testing.T) {
		cols := []string{"c1", "c2", "c3", "c4"}
		rows := []domain.Record{{}, {}}
		for i, col := range cols {
			rows[0][col] = "a"
			rows[1][col] = string(rune('b' + i))
		}
		f := frame.New(cols, rows)
		out, err := fn(f, nil, Params{
			Requested: []domain.ChartRequest{{Type: "pie", Column: "c4"}},
			Hints:     frame.Hints{BarCharts: cols},
		})
		require.NoError(t, err)
		require.Len(t, out, MaxGenericCharts)
		assert.Contains(t, out, "pie_c4")
	})

	t.Run("unknown requested type skipped", func(t *testing.T) {
		f := categorical(t, "status", "a", "b")
		out, err := fn(f, nil, Params{
			Requested: []domain.ChartRequest{{Type: "sunburst", Column: "status"}},
		})
		require.NoError(t, err)
		assert.NotContains(t, out, "sunburst_status")
	})
}

func TestSubmissionCharts(t *testing.T) {
	fn, ok := Lookup("submission_charts")
	require.True(t, ok)

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := make([]domain.Record, 6)
	for i := range rows {
		rows[i] = domain.Record{
			"submitted_at": base.AddDate(0, 0, i),
			"form.title":   []string{"Safety Walk", "Fire Check"}[i%2],
		}
	}
	f := frame.New([]string{"submitted_at", "form.title"}, rows)
	out, err := fn(f, nil, Params{})
	require.NoError(t, err)
	assert.Contains(t, out, "submissions_over_time")
	assert.Contains(t, out, "activity_heatmap")
	assert.Contains(t, out, "submissions_by_form")
}

func TestCross(t *testing.T) {
	users := categorical(t, "role.name", "inspector", "inspector", "admin")
	forms := categorical(t, "creator.username", "blake", "avery", "avery")
	frames := map[string]*frame.Frame{"users": users, "forms": forms}

	req := domain.CrossChartRequest{
		Type: "bar", XEntity: "users", XColumn: "role.name",
		YEntity: "forms", YColumn: "creator.username",
	}

	t.Run("bar with zero padding", func(t *testing.T) {
		img := Cross(frames, req)
		require.NotNil(t, img)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
	})

	t.Run("missing entity yields placeholder not nil", func(t *testing.T) {
		bad := req
		bad.YEntity = "widgets"
		img := Cross(frames, bad)
		require.NotNil(t, img)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
	})

	t.Run("missing column yields placeholder", func(t *testing.T) {
		bad := req
		bad.XColumn = "nope"
		assert.NotNil(t, Cross(frames, bad))
	})

	t.Run("unsupported type yields placeholder", func(t *testing.T) {
		bad := req
		bad.Type = "sunburst"
		assert.NotNil(t, Cross(frames, bad))
	})

	t.Run("same entity heatmap", func(t *testing.T) {
		rows := []domain.Record{
			{"question_type": "number", "question": "Temp"},
			{"question_type": "number", "question": "Pressure"},
			{"question_type": "text", "question": "Notes"},
		}
		f := frame.New([]string{"question_type", "question"}, rows)
		img := Cross(map[string]*frame.Frame{"answers_submitted": f}, domain.CrossChartRequest{
			Type: "heatmap", XEntity: "answers_submitted", XColumn: "question_type",
			YEntity: "answers_submitted", YColumn: "question",
		})
		require.NotNil(t, img)
	})

	t.Run("time aligned line", func(t *testing.T) {
		base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		mk := func(offsets ...int) *frame.Frame {
			rows := make([]domain.Record, len(offsets))
			for i, off := range offsets {
				rows[i] = domain.Record{"created_at": base.AddDate(0, 0, off)}
			}
			return frame.New([]string{"created_at"}, rows)
		}
		fs := map[string]*frame.Frame{"users": mk(0, 1, 1, 4), "attachments": mk(2, 3)}
		img := Cross(fs, domain.CrossChartRequest{
			Type: "line", XEntity: "users", XColumn: "created_at",
			YEntity: "attachments", YColumn: "created_at", Alignment: AlignTime,
		})
		require.NotNil(t, img)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
	})
}

func TestCrossKey(t *testing.T) {
	key := CrossKey(domain.CrossChartRequest{
		Type: "bar", XEntity: "users", XColumn: "role.name",
		YEntity: "forms", YColumn: "creator.username",
	})
	assert.Equal(t, "cross_bar_users_role.name_forms_creator.username", key)

	other := CrossKey(domain.CrossChartRequest{
		Type: "bar", XEntity: "users", XColumn: "environment.name",
		YEntity: "forms", YColumn: "creator.username",
	})
	assert.NotEqual(t, key, other)
}

func TestCrossScatterAlignment(t *testing.T) {
	numeric := func(col string, values ...float64) *frame.Frame {
		rows := make([]domain.Record, len(values))
		for i, v := range values {
			rows[i] = domain.Record{col: v}
		}
		return frame.New([]string{col}, rows)
	}
	isPNG := func(t *testing.T, img []byte) {
		t.Helper()
		require.NotNil(t, img)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
	}

	t.Run("index alignment with unequal lengths plots both distributions", func(t *testing.T) {
		fs := map[string]*frame.Frame{
			"questions":      numeric("order_number", 1, 2, 3, 4, 5),
			"form_questions": numeric("order_number", 2, 4),
		}
		img := Cross(fs, domain.CrossChartRequest{
			Type: "scatter", XEntity: "questions", XColumn: "order_number",
			YEntity: "form_questions", YColumn: "order_number",
		})
		isPNG(t, img)
	})

	t.Run("category alignment pairs shared category counts", func(t *testing.T) {
		users := categorical(t, "role.name", "inspector", "inspector", "admin", "viewer")
		forms := categorical(t, "creator.role", "inspector", "admin", "admin")
		fs := map[string]*frame.Frame{"users": users, "forms": forms}
		img := Cross(fs, domain.CrossChartRequest{
			Type: "scatter", XEntity: "users", XColumn: "role.name",
			YEntity: "forms", YColumn: "creator.role", Alignment: AlignCategory,
		})
		isPNG(t, img)
	})

	t.Run("category alignment without shared categories still renders", func(t *testing.T) {
		users := categorical(t, "role.name", "inspector", "admin", "viewer")
		forms := categorical(t, "creator.username", "avery", "blake", "casey")
		fs := map[string]*frame.Frame{"users": users, "forms": forms}
		img := Cross(fs, domain.CrossChartRequest{
			Type: "scatter", XEntity: "users", XColumn: "role.name",
			YEntity: "forms", YColumn: "creator.username", Alignment: AlignCategory,
		})
		isPNG(t, img)
	})

	t.Run("time alignment plots daily counts over dates", func(t *testing.T) {
		base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		mk := func(offsets ...int) *frame.Frame {
			rows := make([]domain.Record, len(offsets))
			for i, off := range offsets {
				rows[i] = domain.Record{"created_at": base.AddDate(0, 0, off)}
			}
			return frame.New([]string{"created_at"}, rows)
		}
		fs := map[string]*frame.Frame{"users": mk(0, 1, 1, 4), "forms": mk(2, 3)}
		img := Cross(fs, domain.CrossChartRequest{
			Type: "scatter", XEntity: "users", XColumn: "created_at",
			YEntity: "forms", YColumn: "created_at", Alignment: AlignTime,
		})
		isPNG(t, img)
	})

	t.Run("time alignment on non-time columns falls back to index", func(t *testing.T) {
		fs := map[string]*frame.Frame{
			"questions":      numeric("order_number", 1, 2, 3),
			"form_questions": numeric("order_number", 2, 4, 6),
		}
		img := Cross(fs, domain.CrossChartRequest{
			Type: "scatter", XEntity: "questions", XColumn: "order_number",
			YEntity: "form_questions", YColumn: "order_number", Alignment: AlignTime,
		})
		isPNG(t, img)
	})
}
