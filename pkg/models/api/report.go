package api

// GenerateReportRequest is the request body for report generation.
type GenerateReportRequest struct {
	Title    string                  `json:"title"`
	Format   string                  `json:"format"`
	Entities []string                `json:"entities"`
	Params   map[string]EntityParams `json:"params"`
}

// EntityParams customizes one entity's section of the report.
type EntityParams struct {
	Columns     []string            `json:"columns"`
	Filters     []Filter            `json:"filters"`
	SortBy      []Sort              `json:"sort_by"`
	SheetName   string              `json:"sheet_name"`
	Charts      []ChartRequest      `json:"charts"`
	CrossCharts []CrossChartRequest `json:"cross_charts"`
	TopN        int                 `json:"top_n"`
}

type Filter struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  any    `json:"value"`
}

type Sort struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

type ChartRequest struct {
	Type    string `json:"type"`
	Column  string `json:"column"`
	GroupBy string `json:"group_by"`
}

type CrossChartRequest struct {
	Type      string `json:"type"`
	XEntity   string `json:"x_entity"`
	XColumn   string `json:"x_column"`
	YEntity   string `json:"y_entity"`
	YColumn   string `json:"y_column"`
	Alignment string `json:"alignment"`
}

// EntityInfo describes one reportable entity type.
type EntityInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"display_name"`
	DefaultColumns   []string `json:"default_columns"`
	AvailableColumns []string `json:"available_columns"`
}

// EntitySchema exposes the typed schema behind an entity for clients
// building column selections.
type EntitySchema struct {
	Name          string            `json:"name"`
	Table         string            `json:"table"`
	Fields        map[string]string `json:"fields"`
	Relationships []RelationshipDef `json:"relationships"`
}

type RelationshipDef struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	List   bool   `json:"list"`
}
