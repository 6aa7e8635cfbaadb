package report

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/de-tools/form-atlas/pkg/models/api"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.ReportRequest) (domain.Document, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Document), args.Error(1)
}

func newTestRouter(gen Generator) *chi.Mux {
	h := NewHandler(gen)
	router := chi.NewRouter()
	router.Post("/api/reports/generate", h.GenerateReport)
	router.Get("/api/reports/entities", h.ListEntities)
	router.Get("/api/reports/entities/{entity}/schema", h.GetEntitySchema)
	return router
}

func TestGenerateReport(t *testing.T) {
	t.Run("streams the document as an attachment", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req domain.ReportRequest) bool {
			return req.Format == "csv" && len(req.Entities) == 1 && req.Entities[0] == "users"
		})).Return(domain.Document{
			ID:       uuid.New(),
			Filename: "report_20250615.csv",
			MIME:     "text/csv",
			Data:     []byte("Id,Username\n1,alice\n"),
		}, nil)

		body, _ := json.Marshal(api.GenerateReportRequest{
			Format:   "csv",
			Entities: []string{"users"},
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", bytes.NewReader(body))
		newTestRouter(gen).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "report_20250615.csv")
		assert.Contains(t, rec.Body.String(), "alice")
		gen.AssertExpectations(t)
	})

	t.Run("rejects a body that is not JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", bytes.NewReader([]byte("{not json")))
		newTestRouter(new(mockGenerator)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing format", func(t *testing.T) {
		body, _ := json.Marshal(api.GenerateReportRequest{Entities: []string{"users"}})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", bytes.NewReader(body))
		newTestRouter(new(mockGenerator)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps unsupported format to bad request", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, mock.Anything).
			Return(domain.Document{}, assert.AnError)

		body, _ := json.Marshal(api.GenerateReportRequest{Format: "pdf", Entities: []string{"users"}})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", bytes.NewReader(body))
		newTestRouter(gen).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestListEntities(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/entities", nil)
	newTestRouter(new(mockGenerator)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var entities []api.EntityInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entities))
	require.NotEmpty(t, entities)

	byName := map[string]api.EntityInfo{}
	for _, e := range entities {
		byName[e.Name] = e
	}
	users, ok := byName["users"]
	require.True(t, ok)
	assert.Equal(t, "Users", users.DisplayName)
	assert.Contains(t, users.DefaultColumns, "role.name")
	assert.NotContains(t, users.AvailableColumns, "password_hash")
}

func TestGetEntitySchema(t *testing.T) {
	t.Run("known entity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/reports/entities/users/schema", nil)
		newTestRouter(new(mockGenerator)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var s api.EntitySchema
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
		assert.Equal(t, "users", s.Name)
		assert.Equal(t, "time", s.Fields["created_at"])

		var relNames []string
		for _, rel := range s.Relationships {
			relNames = append(relNames, rel.Name)
		}
		assert.Contains(t, relNames, "role")
	})

	t.Run("unknown entity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/reports/entities/widgets/schema", nil)
		newTestRouter(new(mockGenerator)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
