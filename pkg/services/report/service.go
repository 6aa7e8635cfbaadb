package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
	"github.com/de-tools/form-atlas/pkg/services/report/formatters"
	"github.com/de-tools/form-atlas/pkg/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AllEntities in a request expands to every configured entity type.
const AllEntities = "all"

// Service generates finished report documents from stored form data.
type Service struct {
	fetcher  store.Fetcher
	analyzer *Analyzer
	now      func() time.Time
}

func NewService(fetcher store.Fetcher) *Service {
	return &Service{
		fetcher:  fetcher,
		analyzer: NewAnalyzer(),
		now:      time.Now,
	}
}

// Generate runs the full pipeline for one request: fetch each entity,
// analyze, and render in the requested format. Per-entity failures are
// reported inside the document; only request-level problems (such as an
// unsupported format) fail the call.
func (s *Service) Generate(ctx context.Context, req domain.ReportRequest) (domain.Document, error) {
	formatter, err := formatters.New(req.Format)
	if err != nil {
		return domain.Document{}, err
	}

	entities := s.resolveEntities(req.Entities)
	if len(entities) == 0 {
		return domain.Document{}, fmt.Errorf("no entities requested")
	}

	logger := zerolog.Ctx(ctx)
	inputs := make([]Input, 0, len(entities))
	for _, entity := range entities {
		inputs = append(inputs, s.fetchEntity(ctx, logger, entity, req.Params[entity]))
	}

	processed := s.analyzer.Run(ctx, inputs)

	title := req.Title
	if title == "" {
		title = DefaultReportTitle
	}
	generated := s.now().UTC()
	out, err := formatter.Format(ctx, processed, formatters.Options{
		Title:       title,
		GeneratedAt: generated,
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("format report: %w", err)
	}

	return domain.Document{
		ID:       uuid.New(),
		Filename: fmt.Sprintf("%s_%s.%s", safeFilename(title), generated.Format("20060102_150405"), out.Ext),
		MIME:     out.MIME,
		Data:     out.Data,
	}, nil
}

func (s *Service) resolveEntities(requested []string) []string {
	if len(requested) == 0 {
		return ConfiguredEntities()
	}
	for _, e := range requested {
		if strings.EqualFold(e, AllEntities) {
			return ConfiguredEntities()
		}
	}
	return requested
}

func (s *Service) fetchEntity(
	ctx context.Context,
	logger *zerolog.Logger,
	entity string,
	params domain.EntityParams,
) Input {
	sheet := params.SheetName
	if sheet == "" {
		sheet = schema.DisplayName(entity)
	}
	if len(sheet) > MaxSheetNameLen {
		sheet = sheet[:MaxSheetNameLen]
	}
	in := Input{Entity: entity, SheetName: sheet, Params: params}

	cfg, ok := Config(entity)
	if !ok {
		in.Err = fmt.Sprintf("unknown entity type: %s", entity)
		return in
	}

	fetchParams := params
	fetchParams.Columns = SanitizeColumns(cfg, params.Columns)
	if len(fetchParams.SortBy) == 0 {
		fetchParams.SortBy = cfg.DefaultSort
	}

	records, columns, err := s.fetcher.FetchEntityData(ctx, entity, fetchParams)
	if err != nil {
		logger.Error().Err(err).Str("entity", entity).Msg("fetch failed")
		in.Err = err.Error()
		return in
	}
	in.Columns = columns
	in.Records = records

	if cfg.Hints.AnswerPrefix != "" {
		types, err := s.fetcher.QuestionTypes(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("entity", entity).Msg("question type lookup failed")
		} else {
			in.QuestionTypes = types
		}
	}
	return in
}

// safeFilename keeps letters, digits, hyphens and underscores, mapping
// everything else to underscores.
func safeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "report"
	}
	return b.String()
}
