package charts

import (
	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/services/report/render"
)

func init() {
	register("submission_charts", submissionCharts)
	register("user_charts", userCharts)
	register("role_charts", roleCharts)
	register("form_charts", formCharts)
	register("permission_charts", permissionCharts)
	register("environment_charts", environmentCharts)
	register("answers_submitted_charts", answersSubmittedCharts)
	register("attachment_charts", attachmentCharts)
}

// submissionCharts renders the submission activity set: daily volume,
// the hour-by-weekday heatmap and the per-form breakdown.
func submissionCharts(f *frame.Frame, _ map[string]any, p Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if f.Len() == 0 {
		return out, nil
	}
	timeCol := "submitted_at"
	if !f.HasColumn(timeCol) {
		timeCol = "created_at"
	}

	if img, err := render.Line("Submissions over time", f.DailyCounts(timeCol)); err == nil {
		out["submissions_over_time"] = img
	}
	if grid := f.HourWeekdayMatrix(timeCol); f.HasColumn(timeCol) {
		values := make([][]float64, 7)
		nonZero := false
		for d := range grid {
			values[d] = make([]float64, 24)
			for h, c := range grid[d] {
				values[d][h] = float64(c)
				nonZero = nonZero || c > 0
			}
		}
		if nonZero {
			if img, err := render.Heatmap("Submission activity", frame.DayOrder, hourLabels(), values); err == nil {
				out["activity_heatmap"] = img
			}
		}
	}
	if counts := f.ValueCounts("form.title", p.topN()); len(counts) > 1 {
		if img, err := render.Bar("Submissions by form", counts); err == nil {
			out["submissions_by_form"] = img
		}
	}
	return out, nil
}

func userCharts(f *frame.Frame, _ map[string]any, p Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if counts := f.ValueCounts("role.name", p.topN()); len(counts) > 1 {
		if img, err := render.Bar("Users per role", counts); err == nil {
			out["users_per_role"] = img
		}
	}
	if counts := f.ValueCounts("environment.name", render.MaxPieSlices); len(counts) > 1 {
		if img, err := render.Pie("Users per environment", counts); err == nil {
			out["users_per_environment"] = img
		}
	}
	return out, nil
}

func roleCharts(f *frame.Frame, _ map[string]any, _ Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if counts := f.ValueCounts("is_super_user", 0); len(counts) > 1 {
		if img, err := render.Pie("Super user split", counts); err == nil {
			out["super_user_split"] = img
		}
	}
	return out, nil
}

func formCharts(f *frame.Frame, _ map[string]any, p Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if counts := f.ValueCounts("creator.username", p.topN()); len(counts) > 1 {
		if img, err := render.Bar("Forms by creator", counts); err == nil {
			out["forms_by_creator"] = img
		}
	}
	if counts := f.ValueCounts("is_public", 0); len(counts) > 1 {
		if img, err := render.Pie("Public vs private forms", counts); err == nil {
			out["public_vs_private"] = img
		}
	}
	return out, nil
}

func permissionCharts(f *frame.Frame, _ map[string]any, p Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if counts := f.ValueCounts("action", p.topN()); len(counts) > 1 {
		if img, err := render.Bar("Permissions by action", counts); err == nil {
			out["permissions_by_action"] = img
		}
	}
	if counts := f.ValueCounts("entity", p.topN()); len(counts) > 1 {
		if img, err := render.Bar("Permissions by entity", counts); err == nil {
			out["permissions_by_entity"] = img
		}
	}
	return out, nil
}

func environmentCharts(f *frame.Frame, _ map[string]any, p Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if counts := f.ValueCounts("name", p.topN()); len(counts) > 1 {
		if img, err := render.Bar("Environments", counts); err == nil {
			out["environments"] = img
		}
	}
	return out, nil
}

func answersSubmittedCharts(f *frame.Frame, _ map[string]any, p Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if counts := f.ValueCounts("question_type", p.topN()); len(counts) > 1 {
		if img, err := render.Bar("Answers by question type", counts); err == nil {
			out["answers_by_question_type"] = img
		}
	}
	if counts := f.ValueCounts("form_submission.form.title", render.MaxPieSlices); len(counts) > 1 {
		if img, err := render.Pie("Answers by form", counts); err == nil {
			out["answers_by_form"] = img
		}
	}
	return out, nil
}

func attachmentCharts(f *frame.Frame, _ map[string]any, p Params) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if counts := f.ValueCounts("file_type", render.MaxPieSlices); len(counts) > 1 {
		if img, err := render.Pie("Attachments by type", counts); err == nil {
			out["attachments_by_type"] = img
		}
	}
	if img, err := render.Line("Attachments over time", f.DailyCounts("created_at")); err == nil {
		out["attachments_over_time"] = img
	}
	return out, nil
}

func hourLabels() []string {
	out := make([]string, 24)
	for h := range out {
		out[h] = twoDigits(h)
	}
	return out
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
