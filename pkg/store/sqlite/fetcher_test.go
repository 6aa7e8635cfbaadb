package sqlite

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db      *sql.DB
	fetcher store.Fetcher
}

func setupFixture(t *testing.T) *fixture {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	fetcher, err := NewFetcher(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{db: db, fetcher: fetcher}
}

func TestFetcher_SQLShape(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fetcher, err := NewFetcher(db)
	require.NoError(t, err)

	t.Run("joins once per relationship path", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT t0."id" AS "id", t1."name" AS "role.name" FROM users t0 ` +
				`LEFT JOIN roles t1 ON t0."role_id" = t1."id" ` +
				`WHERE t1."name" = ? ORDER BY t1."name" ASC`)).
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows([]string{"id", "role.name"}).
				AddRow(int64(1), "admin"))

		records, cols, err := fetcher.FetchEntityData(context.Background(), "users", domain.EntityParams{
			Columns: []string{"id", "role.name"},
			Filters: []domain.Filter{{Column: "role.name", Op: "eq", Value: "admin"}},
			SortBy:  []domain.Sort{{Column: "role.name"}},
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, []string{"id", "role.name"}, cols)
		assert.Equal(t, "admin", records[0]["role.name"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unresolvable column dropped from query", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT t0."id" AS "id" FROM users t0`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, cols, err := fetcher.FetchEntityData(context.Background(), "users", domain.EntityParams{
			Columns: []string{"id", "nonexistent.path"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, cols)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFetcher_Integration(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	seed := []string{
		`INSERT INTO environments (id, name) VALUES (1, 'plant-a')`,
		`INSERT INTO roles (id, name, is_super_user) VALUES (1, 'inspector', 0), (2, 'admin', 1)`,
		`INSERT INTO users (id, username, role_id, environment_id, created_at)
		 VALUES (1, 'avery', 1, 1, '2025-01-02 10:00:00'),
		        (2, 'blake', 2, 1, '2025-01-03 11:00:00')`,
		`INSERT INTO forms (id, title, user_id) VALUES (1, 'Safety Walk', 2)`,
		`INSERT INTO form_submissions (id, form_id, submitted_by, submitted_at)
		 VALUES (10, 1, 'avery', '2025-02-01 09:15:00')`,
		`INSERT INTO answers_submitted (id, question, question_type, answer, form_submission_id)
		 VALUES (100, 'Temperature', 'number', '21', 10)`,
	}
	for _, q := range seed {
		_, err := f.db.Exec(q)
		require.NoError(t, err)
	}

	t.Run("fetch users with relation columns", func(t *testing.T) {
		records, cols, err := f.fetcher.FetchEntityData(ctx, "users", domain.EntityParams{
			Columns: []string{"id", "username", "role.name", "environment.name"},
			SortBy:  []domain.Sort{{Column: "username"}},
		})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, []string{"id", "username", "role.name", "environment.name"}, cols)
		assert.Equal(t, "inspector", records[0]["role.name"])
		assert.Equal(t, "plant-a", records[0]["environment.name"])
	})

	t.Run("fetch submissions with answer columns", func(t *testing.T) {
		records, cols, err := f.fetcher.FetchEntityData(ctx, "form_submissions", domain.EntityParams{
			Columns: []string{"id", "form.title", "answers.Temperature"},
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Contains(t, cols, "answers.Temperature")
		assert.Equal(t, "Safety Walk", records[0]["form.title"])
		assert.Equal(t, "21", records[0]["answers.Temperature"])
	})

	t.Run("question types resolved from submitted answers", func(t *testing.T) {
		types, err := f.fetcher.QuestionTypes(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Temperature": "number"}, types)
	})

	t.Run("filter narrows rows", func(t *testing.T) {
		records, _, err := f.fetcher.FetchEntityData(ctx, "users", domain.EntityParams{
			Columns: []string{"id", "username"},
			Filters: []domain.Filter{{Column: "role.name", Op: "eq", Value: "admin"}},
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "blake", records[0]["username"])
	})
}
