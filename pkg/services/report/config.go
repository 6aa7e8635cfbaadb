package report

import (
	"sort"
	"strings"

	"github.com/de-tools/form-atlas/pkg/frame"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
)

const (
	// DefaultReportTitle is used when a request does not name the report.
	DefaultReportTitle = "Data Analysis Report"
	// MaxSheetNameLen is the XLSX limit on worksheet names.
	MaxSheetNameLen = 31
)

// SupportedFormats lists every output format the formatter registry serves.
var SupportedFormats = []string{"xlsx", "csv", "pdf", "docx", "pptx"}

// EntityConfig drives fetching, analysis and formatting for one entity type.
type EntityConfig struct {
	DefaultColumns    []string
	AvailableColumns  []string
	HiddenColumns     []string
	Hints             frame.Hints
	DefaultSort       []domain.Sort
	StatsGenerators   []string
	ChartGenerators   []string
	InsightGenerators []string
}

var entityConfigs = map[string]EntityConfig{
	"users": {
		DefaultColumns: []string{
			"id", "username", "first_name", "last_name", "email",
			"contact_number", "role.name", "environment.name", "created_at",
		},
		AvailableColumns: []string{
			"id", "username", "first_name", "last_name", "email",
			"contact_number", "role_id", "environment_id",
			"role.name", "role.description", "role.is_super_user",
			"environment.name", "environment.description",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		HiddenColumns: []string{"password_hash"},
		Hints: frame.Hints{
			DateColumns: []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{
				"role.name", "environment.name", "is_deleted",
				"username", "email", "first_name", "last_name",
			},
			NumericalColumns: []string{"id", "role_id", "environment_id"},
			BarCharts:        []string{"role.name", "environment.name", "is_deleted"},
			PieCharts:        []string{"role.name", "environment.name", "is_deleted"},
			TimeSeries:       []string{"created_at", "updated_at"},
		},
		DefaultSort:       []domain.Sort{{Column: "username"}},
		StatsGenerators:   []string{"user_stats", "generic_stats"},
		ChartGenerators:   []string{"user_charts", "generic_charts"},
		InsightGenerators: []string{"user_insights", "generic_insights"},
	},
	"roles": {
		DefaultColumns: []string{"id", "name", "description", "is_super_user", "created_at"},
		AvailableColumns: []string{
			"id", "name", "description", "is_super_user",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns:        []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{"is_super_user", "name", "description", "is_deleted"},
			NumericalColumns:   []string{"id"},
			BarCharts:          []string{"is_super_user", "name"},
			PieCharts:          []string{"is_super_user", "name"},
		},
		DefaultSort:       []domain.Sort{{Column: "name"}},
		StatsGenerators:   []string{"role_stats", "generic_stats"},
		ChartGenerators:   []string{"role_charts", "generic_charts"},
		InsightGenerators: []string{"role_insights", "generic_insights"},
	},
	"permissions": {
		DefaultColumns: []string{"id", "name", "action", "entity", "description"},
		AvailableColumns: []string{
			"id", "name", "action", "entity", "description",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns:        []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{"name", "action", "entity", "description", "is_deleted"},
			NumericalColumns:   []string{"id"},
			BarCharts:          []string{"action", "entity"},
			PieCharts:          []string{"action", "entity"},
		},
		DefaultSort:       []domain.Sort{{Column: "name"}},
		StatsGenerators:   []string{"permission_stats", "generic_stats"},
		ChartGenerators:   []string{"permission_charts", "generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"role_permissions": {
		DefaultColumns: []string{
			"id", "role_id", "permission_id", "role.name",
			"permission.name", "permission.action", "permission.entity",
		},
		AvailableColumns: []string{
			"id", "role_id", "permission_id",
			"role.name", "role.description", "role.is_super_user",
			"permission.name", "permission.action", "permission.entity", "permission.description",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns: []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{
				"role.name", "permission.name", "permission.action",
				"permission.entity", "is_deleted",
			},
			NumericalColumns: []string{"id", "role_id", "permission_id"},
			BarCharts:        []string{"role.name", "permission.action", "permission.entity"},
			PieCharts:        []string{"role.name", "permission.action", "permission.entity"},
		},
		DefaultSort:       []domain.Sort{{Column: "role_id"}, {Column: "permission_id"}},
		StatsGenerators:   []string{"role_permission_stats", "generic_stats"},
		ChartGenerators:   []string{"generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"environments": {
		DefaultColumns: []string{"id", "name", "description", "created_at"},
		AvailableColumns: []string{
			"id", "name", "description",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns:        []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{"name", "description", "is_deleted"},
			NumericalColumns:   []string{"id"},
			BarCharts:          []string{"name"},
			PieCharts:          []string{"name"},
		},
		DefaultSort:       []domain.Sort{{Column: "name"}},
		StatsGenerators:   []string{"environment_stats", "generic_stats"},
		ChartGenerators:   []string{"environment_charts", "generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"question_types": {
		DefaultColumns: []string{"id", "type", "created_at"},
		AvailableColumns: []string{
			"id", "type", "created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns:        []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{"type", "is_deleted"},
			NumericalColumns:   []string{"id"},
			BarCharts:          []string{"type"},
			PieCharts:          []string{"type"},
		},
		DefaultSort:       []domain.Sort{{Column: "type"}},
		StatsGenerators:   []string{"question_type_stats", "generic_stats"},
		ChartGenerators:   []string{"generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"questions": {
		DefaultColumns: []string{
			"id", "text", "question_type.type", "is_signature", "remarks", "created_at",
		},
		AvailableColumns: []string{
			"id", "text", "question_type_id", "is_signature", "remarks",
			"question_type.type",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns:        []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{"question_type.type", "is_signature", "is_deleted"},
			NumericalColumns:   []string{"id", "question_type_id"},
			TextColumns:        []string{"text", "remarks"},
			BarCharts:          []string{"question_type.type", "is_signature"},
			PieCharts:          []string{"question_type.type", "is_signature"},
		},
		DefaultSort:       []domain.Sort{{Column: "text"}},
		StatsGenerators:   []string{"question_stats", "generic_stats"},
		ChartGenerators:   []string{"generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"answers": {
		DefaultColumns: []string{"id", "value", "remarks", "created_at"},
		AvailableColumns: []string{
			"id", "value", "remarks",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns:        []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{"is_deleted"},
			NumericalColumns:   []string{"id"},
			TextColumns:        []string{"value", "remarks"},
		},
		DefaultSort:       []domain.Sort{{Column: "value"}},
		StatsGenerators:   []string{"generic_stats"},
		ChartGenerators:   []string{"generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"forms": {
		DefaultColumns: []string{
			"id", "title", "description", "creator.username",
			"creator.environment.name", "is_public", "attachments_required", "created_at",
		},
		AvailableColumns: []string{
			"id", "title", "description", "user_id", "is_public", "attachments_required",
			"creator.username", "creator.email", "creator.first_name", "creator.last_name",
			"creator.environment.name", "creator.environment.description",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns: []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{
				"creator.username", "creator.environment.name",
				"is_public", "is_deleted", "title", "attachments_required",
			},
			NumericalColumns: []string{"id", "user_id"},
			TextColumns:      []string{"title", "description"},
			BarCharts: []string{
				"creator.username", "is_public", "creator.environment.name", "attachments_required",
			},
			PieCharts: []string{"is_public", "creator.environment.name", "attachments_required"},
		},
		DefaultSort:       []domain.Sort{{Column: "title"}},
		StatsGenerators:   []string{"form_stats", "generic_stats"},
		ChartGenerators:   []string{"form_charts", "generic_charts"},
		InsightGenerators: []string{"form_insights", "generic_insights"},
	},
	"form_questions": {
		DefaultColumns: []string{
			"id", "form_id", "question_id", "order_number",
			"form.title", "question.text", "question.question_type.type",
		},
		AvailableColumns: []string{
			"id", "form_id", "question_id", "order_number",
			"form.title", "form.description", "form.is_public",
			"question.text", "question.is_signature", "question.question_type.type",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns: []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{
				"form.title", "question.text", "question.question_type.type",
				"question.is_signature", "is_deleted",
			},
			NumericalColumns: []string{"id", "form_id", "question_id", "order_number"},
			BarCharts:        []string{"form.title", "question.question_type.type", "order_number"},
			PieCharts:        []string{"question.question_type.type"},
		},
		DefaultSort:       []domain.Sort{{Column: "form_id"}, {Column: "order_number"}},
		StatsGenerators:   []string{"form_question_stats", "generic_stats"},
		ChartGenerators:   []string{"generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"form_answers": {
		DefaultColumns: []string{
			"id", "form_question_id", "answer_id",
			"form_question.question.text", "answer.value", "remarks",
		},
		AvailableColumns: []string{
			"id", "form_question_id", "answer_id", "remarks",
			"form_question.form.title", "form_question.form.description",
			"form_question.question.text", "form_question.question.question_type.type",
			"form_question.order_number", "answer.value", "answer.remarks",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns: []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{
				"form_question.question.text",
				"form_question.question.question_type.type",
				"answer.value", "is_deleted",
			},
			NumericalColumns: []string{"id", "form_question_id", "answer_id"},
			TextColumns:      []string{"remarks", "answer.value", "answer.remarks"},
			BarCharts: []string{
				"form_question.form.title", "form_question.question.question_type.type",
			},
			PieCharts: []string{"form_question.question.question_type.type"},
		},
		DefaultSort:       []domain.Sort{{Column: "form_question_id"}},
		StatsGenerators:   []string{"generic_stats"},
		ChartGenerators:   []string{"generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"form_assignments": {
		DefaultColumns: []string{
			"id", "form_id", "form.title", "entity_name", "entity_id",
			"assigned_entity_identifier", "created_at",
		},
		AvailableColumns: []string{
			"id", "form_id", "entity_name", "entity_id",
			"form.title", "form.description", "form.is_public", "form.creator.username",
			"created_at", "updated_at", "is_deleted", "deleted_at",
			"assigned_entity_identifier",
		},
		Hints: frame.Hints{
			DateColumns: []string{"created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{
				"entity_name", "form.title", "is_deleted", "assigned_entity_identifier",
			},
			NumericalColumns: []string{"id", "form_id", "entity_id"},
			BarCharts:        []string{"entity_name", "form.title", "assigned_entity_identifier"},
			PieCharts:        []string{"entity_name"},
		},
		DefaultSort:       []domain.Sort{{Column: "form_id"}, {Column: "entity_name"}},
		StatsGenerators:   []string{"generic_stats"},
		ChartGenerators:   []string{"generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"form_submissions": {
		DefaultColumns: []string{
			"id", "form_id", "form.title", "submitted_by", "submitted_at", "created_at",
		},
		AvailableColumns: []string{
			"id", "form_id", "submitted_by", "submitted_at",
			"form.title", "form.description", "form.is_public",
			"form.creator.username", "form.creator.email",
			"form.creator.environment.name",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns: []string{"submitted_at", "created_at", "updated_at", "deleted_at"},
			CategoricalColumns: []string{
				"submitted_by", "form.title", "form.creator.username",
				"form.creator.environment.name", "is_deleted",
			},
			NumericalColumns: []string{"id", "form_id"},
			AnswerPrefix:     schema.AnswersPrefix,
			BarCharts:        []string{"submitted_by", "form.title", "form.creator.environment.name"},
			PieCharts:        []string{"form.title", "submitted_by", "form.creator.environment.name"},
			TimeSeries:       []string{"submitted_at", "created_at"},
		},
		DefaultSort:       []domain.Sort{{Column: "submitted_at", Desc: true}},
		StatsGenerators:   []string{"submission_stats", "generic_stats"},
		ChartGenerators:   []string{"submission_charts", "generic_charts"},
		InsightGenerators: []string{"submission_insights", "generic_insights"},
	},
	"answers_submitted": {
		DefaultColumns: []string{
			"id", "form_submission_id", "form_submission.form.title",
			"question", "question_type", "answer", "created_at",
		},
		AvailableColumns: []string{
			"id", "question", "question_type", "answer", "form_submission_id",
			"column", "row", "cell_content",
			"form_submission.submitted_by", "form_submission.submitted_at",
			"form_submission.form.title", "form_submission.form.description",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns: []string{"created_at", "updated_at", "deleted_at", "form_submission.submitted_at"},
			CategoricalColumns: []string{
				"question", "question_type", "form_submission.form.title",
				"form_submission.submitted_by", "is_deleted",
			},
			NumericalColumns: []string{"id", "form_submission_id", "column", "row"},
			TextColumns:      []string{"answer", "cell_content"},
			BarCharts: []string{
				"question_type", "form_submission.form.title", "form_submission.submitted_by",
			},
			PieCharts: []string{"question_type", "form_submission.form.title"},
		},
		DefaultSort:       []domain.Sort{{Column: "created_at", Desc: true}},
		StatsGenerators:   []string{"answers_submitted_stats", "generic_stats"},
		ChartGenerators:   []string{"answers_submitted_charts", "generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"attachments": {
		DefaultColumns: []string{
			"id", "form_submission_id", "form_submission.form.title",
			"file_path", "file_type", "is_signature", "signature_author", "created_at",
		},
		AvailableColumns: []string{
			"id", "form_submission_id", "file_type", "file_path",
			"is_signature", "signature_position", "signature_author",
			"form_submission.submitted_by", "form_submission.submitted_at",
			"form_submission.form.title", "form_submission.form.description",
			"created_at", "updated_at", "is_deleted", "deleted_at",
		},
		Hints: frame.Hints{
			DateColumns: []string{"created_at", "updated_at", "deleted_at", "form_submission.submitted_at"},
			CategoricalColumns: []string{
				"file_type", "is_signature", "signature_author",
				"form_submission.form.title", "form_submission.submitted_by", "is_deleted",
			},
			NumericalColumns: []string{"id", "form_submission_id"},
			TextColumns:      []string{"file_path", "signature_position"},
			BarCharts:        []string{"file_type", "is_signature", "form_submission.form.title"},
			PieCharts:        []string{"file_type", "is_signature", "form_submission.form.title"},
			TimeSeries:       []string{"created_at", "form_submission.submitted_at"},
		},
		DefaultSort:       []domain.Sort{{Column: "created_at", Desc: true}},
		StatsGenerators:   []string{"attachment_stats", "generic_stats"},
		ChartGenerators:   []string{"attachment_charts", "generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
	"token_blocklist": {
		DefaultColumns:   []string{"id", "jti", "created_at"},
		AvailableColumns: []string{"id", "jti", "created_at"},
		Hints: frame.Hints{
			DateColumns:      []string{"created_at"},
			NumericalColumns: []string{"id"},
			TextColumns:      []string{"jti"},
			TimeSeries:       []string{"created_at"},
		},
		DefaultSort:       []domain.Sort{{Column: "created_at", Desc: true}},
		StatsGenerators:   []string{"generic_stats"},
		ChartGenerators:   []string{"generic_charts"},
		InsightGenerators: []string{"generic_insights"},
	},
}

// Config returns the configuration for an entity type.
func Config(entity string) (EntityConfig, bool) {
	cfg, ok := entityConfigs[entity]
	return cfg, ok
}

// ConfiguredEntities lists all configured entity types in sorted order.
func ConfiguredEntities() []string {
	out := make([]string, 0, len(entityConfigs))
	for name := range entityConfigs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SanitizeColumns keeps requested columns that are available for the entity.
// Dynamic answer columns always pass. An empty request falls back to the
// entity's defaults.
func SanitizeColumns(cfg EntityConfig, requested []string) []string {
	if len(requested) == 0 {
		return append([]string(nil), cfg.DefaultColumns...)
	}
	available := make(map[string]struct{}, len(cfg.AvailableColumns))
	for _, c := range cfg.AvailableColumns {
		available[c] = struct{}{}
	}
	hidden := make(map[string]struct{}, len(cfg.HiddenColumns))
	for _, c := range cfg.HiddenColumns {
		hidden[c] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, c := range requested {
		if _, bad := hidden[c]; bad {
			continue
		}
		if strings.HasPrefix(c, schema.AnswersPrefix) {
			out = append(out, c)
			continue
		}
		if _, ok := available[c]; ok {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), cfg.DefaultColumns...)
	}
	return out
}
