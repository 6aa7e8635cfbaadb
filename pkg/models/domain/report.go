package domain

// Record is a single fetched row. Keys are column paths as requested
// ("id", "role.name", "answers.Temperature"); relation values fetched as a
// graph may hold nested Records or slices of them.
type Record = map[string]any

// Filter narrows fetched rows. Op is one of eq, neq, gt, gte, lt, lte,
// like, in, between, isnull, notnull.
type Filter struct {
	Column string
	Op     string
	Value  any
}

// Sort orders fetched rows by a column path.
type Sort struct {
	Column string
	Desc   bool
}

// ChartRequest asks for a specific chart of one entity's data.
type ChartRequest struct {
	Type    string
	Column  string
	GroupBy string
}

// CrossChartRequest asks for a chart relating columns from two entities.
type CrossChartRequest struct {
	Type      string
	XEntity   string
	XColumn   string
	YEntity   string
	YColumn   string
	Alignment string
}

// EntityParams carries the per-entity options of a report request.
type EntityParams struct {
	Columns      []string
	Filters      []Filter
	SortBy       []Sort
	SheetName    string
	TableOptions map[string]any
	Charts       []ChartRequest
	CrossCharts  []CrossChartRequest
	TopN         int
}

// ReportRequest describes one report generation run. Entities may contain
// the single value "all" to select every configured entity type.
type ReportRequest struct {
	Title    string
	Format   string
	Entities []string
	Params   map[string]EntityParams
}

// Analysis is the public result of analyzing one entity's records.
type Analysis struct {
	SummaryStats map[string]any
	Charts       map[string][]byte
	Insights     map[string]string
}

// EntityResult bundles everything a formatter needs for one entity.
// Err is set when fetching or analysis failed; the rest may be partial.
type EntityResult struct {
	SheetName string
	Columns   []string
	Records   []Record
	Analysis  Analysis
	Err       string
}

// ProcessedReport maps entity type to its result.
type ProcessedReport map[string]EntityResult
