package frame

// MaxUniqueGenericChart caps the cardinality a column may have and still be
// charted generically.
const MaxUniqueGenericChart = 15

// MaxPieCategories caps pie slices; busier columns fall back to bars.
const MaxPieCategories = 8

// Hints carries the per-entity analysis configuration used to steer column
// detection before heuristics run.
type Hints struct {
	DateColumns        []string
	CategoricalColumns []string
	NumericalColumns   []string
	TextColumns        []string
	BarCharts          []string
	PieCharts          []string
	TimeSeries         []string
	AnswerPrefix       string
}

// Candidate is one detected charting opportunity. Other names the paired
// column for scatter candidates.
type Candidate struct {
	Column string
	Type   string
	Other  string
}

// DetectChartColumns proposes chart candidates for the frame. Hinted
// columns are considered first, then type and cardinality heuristics.
// Columns with fewer than two distinct values never chart.
func (f *Frame) DetectChartColumns(h Hints) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})
	add := func(col, typ, other string) {
		key := typ + ":" + col + ":" + other
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, Candidate{Column: col, Type: typ, Other: other})
	}

	for _, col := range h.BarCharts {
		if n := f.NUnique(col); f.HasColumn(col) && n > 1 && n <= MaxUniqueGenericChart {
			add(col, "bar", "")
		}
	}
	for _, col := range h.PieCharts {
		if n := f.NUnique(col); f.HasColumn(col) && n > 1 && n <= MaxPieCategories {
			add(col, "pie", "")
		}
	}
	for _, col := range h.TimeSeries {
		if f.HasColumn(col) && len(f.Times(col)) > 1 {
			add(col, "time_series", "")
		}
	}

	numeric := make([]string, 0)
	for _, col := range f.cols {
		if f.Kind(col) == KindNumeric && f.NUnique(col) > 1 {
			numeric = append(numeric, col)
		}
	}

	for _, col := range f.cols {
		n := f.NUnique(col)
		if n <= 1 {
			continue
		}
		switch f.Kind(col) {
		case KindTime:
			add(col, "time_series", "")
		case KindBool, KindString:
			if n <= MaxUniqueGenericChart {
				add(col, "bar", "")
			}
			if n <= MaxPieCategories {
				add(col, "pie", "")
			}
		case KindNumeric:
			add(col, "histogram", "")
			for _, other := range numeric {
				if other != col && f.NUnique(other) > 5 {
					add(col, "scatter", other)
					break
				}
			}
		}
	}
	return out
}
