package store

import (
	"context"

	"github.com/de-tools/form-atlas/pkg/models/domain"
)

// Fetcher loads entity records for report generation. Implementations
// return flattened records keyed by the requested column paths, plus the
// effective column order (requested columns that actually resolved).
// QuestionTypes maps known question text to its question type, used to
// decide how dynamic answer columns are summarized.
type Fetcher interface {
	FetchEntityData(ctx context.Context, entity string, params domain.EntityParams) ([]domain.Record, []string, error)
	QuestionTypes(ctx context.Context) (map[string]string, error)
}
