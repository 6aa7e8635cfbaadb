package schema

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// AnswersPrefix marks dynamic answer columns attached to submissions.
const AnswersPrefix = "answers."

// ResolveNested resolves a dotted column path against a record graph.
// A nil intermediate relation short-circuits to nil. One level of list
// indexing is supported ("answers_submitted[0].answer"). Unknown segments
// and type mismatches resolve to nil rather than an error so a single bad
// path never aborts a report.
func ResolveNested(entity string, rec map[string]any, path string) any {
	if rec == nil || path == "" {
		return nil
	}
	// Flattened records key cells by the full dotted path.
	if v, ok := rec[path]; ok {
		return FormatValue(v)
	}

	ent, ok := Lookup(entity)
	if !ok {
		return nil
	}
	cur := any(rec)
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		name, idx, hasIdx := splitIndex(seg)
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		last := i == len(segments)-1

		if rel, ok := ent.Relationship(name); ok {
			val, present := m[name]
			if !present || val == nil {
				return nil
			}
			if rel.List {
				items := asSlice(val)
				if hasIdx {
					if idx < 0 || idx >= len(items) {
						return nil
					}
					cur = items[idx]
				} else if last {
					return val
				} else {
					return nil
				}
			} else {
				cur = val
			}
			target, ok := Lookup(rel.Target)
			if !ok {
				return nil
			}
			ent = target
			if last {
				return cur
			}
			continue
		}

		if _, ok := ent.FieldKind(name); ok && last {
			return FormatValue(m[name])
		}
		// Dynamic answer columns and ad-hoc keys pass through on the leaf.
		if last {
			if v, present := m[name]; present {
				return FormatValue(v)
			}
		}
		return nil
	}
	return nil
}

func splitIndex(seg string) (string, int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 || !strings.HasSuffix(seg, "]") {
		return seg, 0, false
	}
	n, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil {
		return seg, 0, false
	}
	return seg[:open], n, true
}

func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []map[string]any:
		out := make([]any, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

// FormatValue normalizes a cell value for display: timestamps become
// "2006-01-02 15:04:05" strings and booleans become Yes/No.
func FormatValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case *time.Time:
		if val == nil {
			return nil
		}
		return FormatValue(*val)
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	default:
		return v
	}
}

// DisplayName turns a column path into a table header. Dynamic answer
// columns keep the question text verbatim.
func DisplayName(col string) string {
	if strings.HasPrefix(col, AnswersPrefix) {
		return strings.TrimPrefix(col, AnswersPrefix)
	}
	parts := strings.FieldsFunc(col, func(r rune) bool {
		return r == '.' || r == '_'
	})
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
