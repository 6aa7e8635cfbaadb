package stats

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
)

func init() {
	register("submission_stats", submissionStats)
	register("user_stats", userStats)
	register("form_stats", formStats)
	register("role_stats", roleStats)
	register("permission_stats", permissionStats)
	register("environment_stats", environmentStats)
	register("question_type_stats", questionTypeStats)
	register("question_stats", questionStats)
	register("answers_submitted_stats", answersSubmittedStats)
	register("attachment_stats", attachmentStats)
	register("role_permission_stats", rolePermissionStats)
	register("form_question_stats", formQuestionStats)
}

// MinTrendRows gates the monthly trend: fewer rows than this, or a single
// bucket, and the trend is omitted.
const MinTrendRows = 5

// categoricalAnswerTypes are the question types whose answers break down as
// value counts.
var categoricalAnswerTypes = map[string]bool{
	"multiple_choices": true,
	"dropdown":         true,
	"user":             true,
	"checkbox":         true,
	"single_choice":    true,
}

// dateAnswerTypes are the question types whose answers carry timestamps.
var dateAnswerTypes = map[string]bool{
	"date":     true,
	"datetime": true,
}

func submissionStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"submission_count": f.Len()}
	if f.Len() == 0 {
		return out, nil
	}

	answerStats(f, p, out)

	if c := f.ValueCounts("form.title", p.topN()); len(c) > 0 {
		out["submissions_by_form"] = c
	}
	if c := f.ValueCounts("submitted_by", p.topN()); len(c) > 0 {
		out["submissions_by_user"] = c
	}

	timeCol := "submitted_at"
	if !f.HasColumn(timeCol) {
		timeCol = "created_at"
	}
	if f.HasColumn(timeCol) {
		out["submissions_by_day"] = f.CountsByWeekday(timeCol)
		if byHour := hourCounts(f, timeCol); len(byHour) > 0 {
			out["submissions_by_hour"] = byHour
		}

		if monthly := f.MonthlyCounts(timeCol); f.Len() > MinTrendRows && len(monthly) > 1 {
			trend := make(domain.Counts, len(monthly))
			for i, m := range monthly {
				trend[i] = domain.CountPair{Value: m.Bucket.Format("2006-01"), Count: m.Count}
			}
			out["monthly_trend"] = trend
		}

		if first, last, ok := f.TimeRange(timeCol); ok {
			days := int(last.Sub(first) / (24 * time.Hour))
			if days < 1 {
				days = 1
			}
			out["average_daily"] = round1(float64(f.Len()) / float64(days))
		}
	}
	return out, nil
}

// answerStats summarizes the dynamic answer columns. Each column is typed
// through the question lookup: categorical question types become value
// counts, date types a first/last range. Unknown types are skipped.
func answerStats(f *frame.Frame, p Params, out map[string]any) {
	prefix := p.Hints.AnswerPrefix
	if prefix == "" {
		return
	}
	for _, col := range f.Columns() {
		if !strings.HasPrefix(col, prefix) {
			continue
		}
		question := strings.TrimPrefix(col, prefix)
		qType := p.QuestionTypes[question]
		switch {
		case categoricalAnswerTypes[qType]:
			if c := f.ValueCounts(col, p.topN()); len(c) > 0 {
				out["counts_"+Key(question)] = c
			}
		case dateAnswerTypes[qType]:
			if first, last, ok := f.TimeRange(col); ok {
				out["range_"+Key(question)] = domain.DateRange{
					First: first.Format("2006-01-02T15:04:05"),
					Last:  last.Format("2006-01-02T15:04:05"),
				}
			}
		}
	}
}

// hourCounts tallies a time column by hour of day, ascending, hours with
// no rows omitted.
func hourCounts(f *frame.Frame, col string) domain.Counts {
	byHour := make(map[int]int, 24)
	for _, t := range f.Times(col) {
		byHour[t.Hour()]++
	}
	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	out := make(domain.Counts, len(hours))
	for i, h := range hours {
		out[i] = domain.CountPair{Value: strconv.Itoa(h), Count: byHour[h]}
	}
	return out
}

func userStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"user_count": f.Len()}
	if c := f.ValueCounts("role.name", p.topN()); len(c) > 0 {
		out["users_per_role"] = c
	}
	if c := f.ValueCounts("environment.name", p.topN()); len(c) > 0 {
		out["users_per_environment"] = c
	}

	if first, last, ok := f.TimeRange("created_at"); ok {
		out["user_creation_range"] = domain.DateRange{
			First: first.Format("2006-01-02T15:04:05"),
			Last:  last.Format("2006-01-02T15:04:05"),
		}
		if monthly := f.MonthlyCounts("created_at"); f.Len() > MinTrendRows && len(monthly) > 0 {
			byMonth := make(domain.Counts, len(monthly))
			for i, m := range monthly {
				byMonth[i] = domain.CountPair{Value: m.Bucket.Format("2006-01"), Count: m.Count}
			}
			out["users_created_by_month"] = byMonth
		}
	}
	return out, nil
}

func formStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"form_count": f.Len()}
	if c := f.ValueCounts("creator.username", p.topN()); len(c) > 0 {
		out["forms_by_creator"] = c
	}
	if c := f.ValueCounts("is_public", 0); len(c) > 0 {
		out["public_vs_private"] = c
	}
	return out, nil
}

func roleStats(f *frame.Frame, _ Params) (map[string]any, error) {
	out := map[string]any{"role_count": f.Len()}
	superUsers := 0
	for _, v := range f.Values("is_super_user") {
		switch val := v.(type) {
		case bool:
			if val {
				superUsers++
			}
		case int64:
			if val != 0 {
				superUsers++
			}
		}
	}
	if f.HasColumn("is_super_user") {
		out["super_user_count"] = superUsers
	}
	return out, nil
}

func permissionStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"permission_count": f.Len()}
	if c := f.ValueCounts("action", p.topN()); len(c) > 0 {
		out["permissions_by_action"] = c
	}
	if c := f.ValueCounts("entity", p.topN()); len(c) > 0 {
		out["permissions_by_entity"] = c
	}
	return out, nil
}

func environmentStats(f *frame.Frame, _ Params) (map[string]any, error) {
	return map[string]any{"environment_count": f.Len()}, nil
}

func questionTypeStats(f *frame.Frame, _ Params) (map[string]any, error) {
	return map[string]any{"question_type_count": f.Len()}, nil
}

func questionStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"question_count": f.Len()}
	if c := f.ValueCounts("question_type.type", p.topN()); len(c) > 0 {
		out["questions_by_type"] = c
	}
	signatures := 0
	for _, v := range f.Values("is_signature") {
		if b, ok := v.(bool); ok && b {
			signatures++
		} else if n, ok := v.(int64); ok && n != 0 {
			signatures++
		}
	}
	if f.HasColumn("is_signature") {
		out["signature_question_count"] = signatures
	}
	return out, nil
}

func answersSubmittedStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"answer_count": f.Len()}
	if c := f.ValueCounts("question_type", p.topN()); len(c) > 0 {
		out["answers_by_question_type"] = c
	}
	if c := f.ValueCounts("question", p.topN()); len(c) > 0 {
		out["answers_by_question"] = c
	}
	return out, nil
}

func attachmentStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"attachment_count": f.Len()}
	if c := f.ValueCounts("file_type", p.topN()); len(c) > 0 {
		out["attachments_by_type"] = c
	}
	signatures := 0
	for _, v := range f.Values("is_signature") {
		if b, ok := v.(bool); ok && b {
			signatures++
		} else if n, ok := v.(int64); ok && n != 0 {
			signatures++
		}
	}
	if f.HasColumn("is_signature") {
		out["signature_count"] = signatures
	}
	return out, nil
}

func rolePermissionStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"role_permission_count": f.Len()}
	if c := f.ValueCounts("role.name", p.topN()); len(c) > 0 {
		out["permissions_per_role"] = c
	}
	return out, nil
}

func formQuestionStats(f *frame.Frame, p Params) (map[string]any, error) {
	out := map[string]any{"form_question_count": f.Len()}
	if c := f.ValueCounts("form.title", p.topN()); len(c) > 0 {
		out["questions_per_form"] = c
	}
	return out, nil
}
