package report

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	records map[string][]domain.Record
	columns map[string][]string
	errs    map[string]error
	calls   map[string]domain.EntityParams
	qtypes  map[string]string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		records: map[string][]domain.Record{},
		columns: map[string][]string{},
		errs:    map[string]error{},
		calls:   map[string]domain.EntityParams{},
	}
}

func (f *fakeFetcher) FetchEntityData(
	_ context.Context,
	entity string,
	params domain.EntityParams,
) ([]domain.Record, []string, error) {
	f.calls[entity] = params
	if err := f.errs[entity]; err != nil {
		return nil, nil, err
	}
	return f.records[entity], f.columns[entity], nil
}

func (f *fakeFetcher) QuestionTypes(_ context.Context) (map[string]string, error) {
	return f.qtypes, nil
}

type serviceFixture struct {
	fetcher *fakeFetcher
	service *Service
	ctx     context.Context
}

func setupServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	fetcher := newFakeFetcher()
	svc := NewService(fetcher)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	}
	return &serviceFixture{fetcher: fetcher, service: svc, ctx: context.Background()}
}

func (fx *serviceFixture) seedUsers() {
	fx.fetcher.columns["users"] = []string{"id", "username", "role.name"}
	fx.fetcher.records["users"] = []domain.Record{
		{"id": int64(1), "username": "alice", "role.name": "inspector"},
		{"id": int64(2), "username": "bob", "role.name": "admin"},
	}
}

func TestServiceGenerate(t *testing.T) {
	t.Run("csv document for a single entity", func(t *testing.T) {
		fx := setupServiceFixture(t)
		fx.seedUsers()

		doc, err := fx.service.Generate(fx.ctx, domain.ReportRequest{
			Title:    "User Audit",
			Format:   "csv",
			Entities: []string{"users"},
		})
		require.NoError(t, err)

		assert.Equal(t, "User_Audit_20250615_103000.csv", doc.Filename)
		assert.Equal(t, "text/csv", doc.MIME)
		assert.NotEqual(t, doc.ID.String(), "00000000-0000-0000-0000-000000000000")
		assert.Contains(t, string(doc.Data), "alice")

		params := fx.fetcher.calls["users"]
		cfg, _ := Config("users")
		assert.Equal(t, cfg.DefaultColumns, params.Columns)
		assert.Equal(t, cfg.DefaultSort, params.SortBy)
	})

	t.Run("unsupported format fails the request", func(t *testing.T) {
		fx := setupServiceFixture(t)

		_, err := fx.service.Generate(fx.ctx, domain.ReportRequest{
			Format:   "odt",
			Entities: []string{"users"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "xlsx")
	})

	t.Run("requested columns are sanitized", func(t *testing.T) {
		fx := setupServiceFixture(t)
		fx.seedUsers()

		_, err := fx.service.Generate(fx.ctx, domain.ReportRequest{
			Format:   "csv",
			Entities: []string{"users"},
			Params: map[string]domain.EntityParams{
				"users": {Columns: []string{"username", "password_hash", "bogus"}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"username"}, fx.fetcher.calls["users"].Columns)
	})

	t.Run("all expands to every configured entity", func(t *testing.T) {
		fx := setupServiceFixture(t)

		doc, err := fx.service.Generate(fx.ctx, domain.ReportRequest{
			Format:   "csv",
			Entities: []string{"all"},
		})
		require.NoError(t, err)
		assert.Equal(t, "application/zip", doc.MIME)
		assert.Len(t, fx.fetcher.calls, len(ConfiguredEntities()))
	})

	t.Run("fetch failure lands in the document, not the error", func(t *testing.T) {
		fx := setupServiceFixture(t)
		fx.seedUsers()
		fx.fetcher.errs["forms"] = errors.New("connection refused")

		doc, err := fx.service.Generate(fx.ctx, domain.ReportRequest{
			Format:   "docx",
			Entities: []string{"users", "forms"},
		})
		require.NoError(t, err)

		body := readDocBody(t, doc.Data)
		assert.Contains(t, body, "connection refused")
		assert.Contains(t, body, "alice")
	})

	t.Run("unknown entity type reported inside the document", func(t *testing.T) {
		fx := setupServiceFixture(t)

		doc, err := fx.service.Generate(fx.ctx, domain.ReportRequest{
			Format:   "docx",
			Entities: []string{"widgets"},
		})
		require.NoError(t, err)
		assert.Contains(t, readDocBody(t, doc.Data), "unknown entity type: widgets")
	})

	t.Run("default title when none given", func(t *testing.T) {
		fx := setupServiceFixture(t)
		fx.seedUsers()

		doc, err := fx.service.Generate(fx.ctx, domain.ReportRequest{
			Format:   "csv",
			Entities: []string{"users"},
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(doc.Filename, "Data_Analysis_Report_"))
	})
}

func readDocBody(t *testing.T, pkg []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, zf := range zr.File {
		if zf.Name != "word/document.xml" {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		return string(data)
	}
	t.Fatal("document body not found")
	return ""
}
