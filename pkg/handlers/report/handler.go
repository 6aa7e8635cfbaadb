package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/de-tools/form-atlas/pkg/models/api"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
	reportsvc "github.com/de-tools/form-atlas/pkg/services/report"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Generator produces a finished report document for a request.
type Generator interface {
	Generate(ctx context.Context, req domain.ReportRequest) (domain.Document, error)
}

type Handler struct {
	generator Generator
}

func NewHandler(generator Generator) *Handler {
	return &Handler{generator: generator}
}

// GenerateReport streams the rendered document back as an attachment.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Format == "" {
		http.Error(w, "format is required", http.StatusBadRequest)
		return
	}

	doc, err := h.generator.Generate(ctx, toDomainRequest(req))
	if err != nil {
		logger.Error().Err(err).Str("format", req.Format).Msg("report generation failed")
		if strings.Contains(err.Error(), "unsupported format") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "report generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", doc.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("X-Report-Id", doc.ID.String())
	if _, err := w.Write(doc.Data); err != nil {
		logger.Error().Err(err).Msg("failed to write report body")
	}
}

// ListEntities returns every reportable entity type with its columns.
func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	response := make([]api.EntityInfo, 0)
	for _, name := range reportsvc.ConfiguredEntities() {
		cfg, ok := reportsvc.Config(name)
		if !ok {
			continue
		}
		response = append(response, api.EntityInfo{
			Name:             name,
			DisplayName:      schema.DisplayName(name),
			DefaultColumns:   cfg.DefaultColumns,
			AvailableColumns: cfg.AvailableColumns,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("failed to encode entities")
	}
}

// GetEntitySchema exposes the typed schema behind one entity.
func (h *Handler) GetEntitySchema(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	name := chi.URLParam(r, "entity")

	ent, ok := schema.Lookup(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown entity type: %s", name), http.StatusNotFound)
		return
	}

	fields := make(map[string]string, len(ent.Fields))
	for field, kind := range ent.Fields {
		fields[field] = kind.String()
	}
	rels := make([]api.RelationshipDef, 0, len(ent.Relationships))
	for _, rel := range ent.Relationships {
		rels = append(rels, api.RelationshipDef{Name: rel.Name, Target: rel.Target, List: rel.List})
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].Name < rels[j].Name })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(api.EntitySchema{
		Name:          ent.Name,
		Table:         ent.Table,
		Fields:        fields,
		Relationships: rels,
	}); err != nil {
		logger.Error().Err(err).Str("entity", name).Msg("failed to encode entity schema")
	}
}

func toDomainRequest(req api.GenerateReportRequest) domain.ReportRequest {
	out := domain.ReportRequest{
		Title:    req.Title,
		Format:   req.Format,
		Entities: req.Entities,
	}
	if len(req.Params) > 0 {
		out.Params = make(map[string]domain.EntityParams, len(req.Params))
		for entity, p := range req.Params {
			out.Params[entity] = toDomainParams(p)
		}
	}
	return out
}

func toDomainParams(p api.EntityParams) domain.EntityParams {
	out := domain.EntityParams{
		Columns:   p.Columns,
		SheetName: p.SheetName,
		TopN:      p.TopN,
	}
	for _, f := range p.Filters {
		out.Filters = append(out.Filters, domain.Filter{Column: f.Column, Op: f.Op, Value: f.Value})
	}
	for _, s := range p.SortBy {
		out.SortBy = append(out.SortBy, domain.Sort{Column: s.Column, Desc: s.Desc})
	}
	for _, c := range p.Charts {
		out.Charts = append(out.Charts, domain.ChartRequest{Type: c.Type, Column: c.Column, GroupBy: c.GroupBy})
	}
	for _, c := range p.CrossCharts {
		out.CrossCharts = append(out.CrossCharts, domain.CrossChartRequest{
			Type:    c.Type,
			XEntity: c.XEntity, XColumn: c.XColumn,
			YEntity: c.YEntity, YColumn: c.YColumn,
			Alignment: c.Alignment,
		})
	}
	return out
}
