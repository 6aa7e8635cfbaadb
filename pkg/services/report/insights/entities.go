package insights

import (
	"fmt"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
)

func init() {
	register("submission_insights", submissionInsights)
	register("user_insights", userInsights)
	register("form_insights", formInsights)
	register("role_insights", roleInsights)
}

func submissionInsights(f *frame.Frame, st map[string]any, _ Params) (map[string]string, error) {
	out := make(map[string]string)
	if f.Len() == 0 {
		return out, nil
	}
	out["volume"] = fmt.Sprintf("%d submissions recorded in the reporting period.", f.Len())

	if byDay, ok := st["submissions_by_day"].(domain.Counts); ok {
		busiest := domain.CountPair{}
		for _, p := range byDay {
			if p.Count > busiest.Count {
				busiest = p
			}
		}
		if busiest.Count > 0 {
			out["busiest_day"] = fmt.Sprintf("Most submissions occur on %s (%d).", busiest.Value, busiest.Count)
		}
	}

	if trend, ok := st["monthly_trend"].(domain.Counts); ok && len(trend) > 1 {
		first, last := trend[0].Count, trend[len(trend)-1].Count
		switch {
		case last > first:
			out["trend"] = "Submission volume is increasing month over month."
		case last < first:
			out["trend"] = "Submission volume is decreasing month over month."
		default:
			out["trend"] = "Submission volume is stable month over month."
		}
	}
	return out, nil
}

// userInsights reports a dominant role when its user count exceeds a third
// of all users.
func userInsights(f *frame.Frame, st map[string]any, _ Params) (map[string]string, error) {
	out := make(map[string]string)
	if f.Len() == 0 {
		return out, nil
	}
	out["user_summary"] = fmt.Sprintf("%d user accounts analyzed.", f.Len())

	if byRole, ok := st["users_per_role"].(domain.Counts); ok && len(byRole) > 0 {
		top := byRole[0]
		if float64(top.Count) > float64(f.Len())/3 {
			out["dominant_role"] = fmt.Sprintf(
				"Role '%s' dominates with %d of %d users.", top.Value, top.Count, f.Len())
		}
	}
	return out, nil
}

func formInsights(f *frame.Frame, st map[string]any, _ Params) (map[string]string, error) {
	out := make(map[string]string)
	if f.Len() == 0 {
		return out, nil
	}
	out["form_summary"] = fmt.Sprintf("%d forms analyzed.", f.Len())

	if split, ok := st["public_vs_private"].(domain.Counts); ok && len(split) > 0 {
		out["visibility"] = fmt.Sprintf("Most forms are marked '%s' (%d of %d).",
			split[0].Value, split[0].Count, f.Len())
	}
	if byCreator, ok := st["forms_by_creator"].(domain.Counts); ok && len(byCreator) > 1 {
		if byCreator[0].Count > byCreator[1].Count {
			out["top_creator"] = fmt.Sprintf("'%s' created the most forms (%d).",
				byCreator[0].Value, byCreator[0].Count)
		}
	}
	return out, nil
}

func roleInsights(f *frame.Frame, st map[string]any, _ Params) (map[string]string, error) {
	out := make(map[string]string)
	if f.Len() == 0 {
		return out, nil
	}
	out["role_summary"] = fmt.Sprintf("%d roles defined.", f.Len())

	if n, ok := st["super_user_count"].(int); ok && n > 0 {
		out["super_users"] = fmt.Sprintf("%d of %d roles grant super user access.", n, f.Len())
	}
	return out, nil
}
