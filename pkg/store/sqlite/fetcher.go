package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
	"github.com/de-tools/form-atlas/pkg/store"
	"github.com/de-tools/form-atlas/pkg/store/query"
	"github.com/rs/zerolog"
)

type fetcher struct {
	db *sql.DB
}

// NewFetcher returns a store.Fetcher reading from the sqlite database.
func NewFetcher(db *sql.DB) (store.Fetcher, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &fetcher{db: db}, nil
}

// FetchEntityData runs one SELECT per entity, joining relationships as the
// requested column paths demand. Dynamic answer columns ("answers.<question>")
// are attached in a second pass keyed by submission id. Columns that do not
// resolve are dropped with a warning rather than failing the report.
func (f *fetcher) FetchEntityData(
	ctx context.Context,
	entity string,
	params domain.EntityParams,
) ([]domain.Record, []string, error) {
	logger := zerolog.Ctx(ctx)

	b, err := query.NewBuilder(entity)
	if err != nil {
		return nil, nil, err
	}

	var answerCols []string
	idSelected := false
	for _, col := range params.Columns {
		if strings.HasPrefix(col, schema.AnswersPrefix) {
			answerCols = append(answerCols, col)
			continue
		}
		if !b.Select(col) {
			logger.Warn().Str("entity", entity).Str("column", col).Msg("column not resolvable, skipping")
			continue
		}
		if col == "id" {
			idSelected = true
		}
	}
	if len(answerCols) > 0 && !idSelected {
		b.Select("id")
	}

	for _, filter := range params.Filters {
		if strings.HasPrefix(filter.Column, schema.AnswersPrefix) {
			continue
		}
		if err := b.Where(filter); err != nil {
			return nil, nil, fmt.Errorf("apply filter: %w", err)
		}
	}
	for _, s := range params.SortBy {
		b.OrderBy(s)
	}

	sqlStr, args := b.SQL()
	rows, err := f.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", entity, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s rows: %w", entity, err)
	}

	cols := b.SelectedPaths()
	if len(answerCols) > 0 {
		if err := f.attachAnswers(ctx, records, answerCols); err != nil {
			return nil, nil, fmt.Errorf("attach answers: %w", err)
		}
		cols = append(cols, answerCols...)
	}
	return records, cols, nil
}

// QuestionTypes returns the question text to question type mapping across
// all submitted answers.
func (f *fetcher) QuestionTypes(ctx context.Context) (map[string]string, error) {
	rows, err := f.db.QueryContext(ctx,
		`SELECT DISTINCT question, question_type FROM answers_submitted WHERE question IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("query question types: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var question string
		var qType sql.NullString
		if err := rows.Scan(&question, &qType); err != nil {
			return nil, err
		}
		if qType.Valid {
			out[question] = qType.String
		}
	}
	return out, rows.Err()
}

// attachAnswers pivots answers_submitted rows into per-submission answer
// columns keyed by question text.
func (f *fetcher) attachAnswers(ctx context.Context, records []domain.Record, answerCols []string) error {
	if len(records) == 0 {
		return nil
	}
	byID := make(map[int64]domain.Record, len(records))
	ids := make([]any, 0, len(records))
	for _, rec := range records {
		id, ok := rec["id"].(int64)
		if !ok {
			continue
		}
		byID[id] = rec
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	questions := make([]any, 0, len(answerCols))
	for _, col := range answerCols {
		questions = append(questions, strings.TrimPrefix(col, schema.AnswersPrefix))
	}

	sqlStr := fmt.Sprintf(
		`SELECT form_submission_id, question, answer FROM answers_submitted`+
			` WHERE form_submission_id IN (%s) AND question IN (%s)`,
		marks(len(ids)), marks(len(questions)))
	args := append(append([]any{}, ids...), questions...)

	rows, err := f.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var submissionID int64
		var question string
		var answer sql.NullString
		if err := rows.Scan(&submissionID, &question, &answer); err != nil {
			return err
		}
		rec, ok := byID[submissionID]
		if !ok {
			continue
		}
		if answer.Valid {
			rec[schema.AnswersPrefix+question] = answer.String
		}
	}
	return rows.Err()
}

func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	records := make([]domain.Record, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(domain.Record, len(cols))
		for i, col := range cols {
			if raw, ok := values[i].([]byte); ok {
				rec[col] = string(raw)
				continue
			}
			rec[col] = values[i]
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func marks(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
