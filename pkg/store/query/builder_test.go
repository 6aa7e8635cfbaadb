package query

import (
	"testing"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Run("unknown entity", func(t *testing.T) {
		_, err := NewBuilder("widgets")
		assert.Error(t, err)
	})

	t.Run("plain columns", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.True(t, b.Select("id"))
		require.True(t, b.Select("username"))
		sql, args := b.SQL()
		assert.Equal(t, `SELECT t0."id" AS "id", t0."username" AS "username" FROM users t0`, sql)
		assert.Empty(t, args)
	})

	t.Run("join alias reused across select filter and sort", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.True(t, b.Select("role.name"))
		require.NoError(t, b.Where(domain.Filter{Column: "role.name", Op: "eq", Value: "admin"}))
		b.OrderBy(domain.Sort{Column: "role.name"})
		sql, args := b.SQL()
		assert.Equal(t,
			`SELECT t1."name" AS "role.name" FROM users t0 `+
				`LEFT JOIN roles t1 ON t0."role_id" = t1."id" `+
				`WHERE t1."name" = ? ORDER BY t1."name" ASC`, sql)
		assert.Equal(t, []any{"admin"}, args)
	})

	t.Run("multi-hop path", func(t *testing.T) {
		b, err := NewBuilder("forms")
		require.NoError(t, err)
		require.True(t, b.Select("creator.environment.name"))
		sql, _ := b.SQL()
		assert.Contains(t, sql, "LEFT JOIN users t1 ON t0.\"user_id\" = t1.\"id\"")
		assert.Contains(t, sql, "LEFT JOIN environments t2 ON t1.\"environment_id\" = t2.\"id\"")
	})

	t.Run("unknown column leaves query untouched", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.True(t, b.Select("id"))
		assert.False(t, b.Select("role.salary"))
		assert.False(t, b.Select("manager.name"))
		sql, _ := b.SQL()
		assert.Equal(t, `SELECT t0."id" AS "id" FROM users t0`, sql)
	})

	t.Run("list relationship does not join", func(t *testing.T) {
		b, err := NewBuilder("form_submissions")
		require.NoError(t, err)
		assert.False(t, b.Select("answers_submitted.answer"))
	})

	t.Run("filter operators", func(t *testing.T) {
		b, err := NewBuilder("form_submissions")
		require.NoError(t, err)
		require.NoError(t, b.Where(domain.Filter{Column: "submitted_at", Op: "between", Value: []any{"2025-01-01", "2025-02-01"}}))
		require.NoError(t, b.Where(domain.Filter{Column: "submitted_by", Op: "in", Value: []any{"a", "b"}}))
		require.NoError(t, b.Where(domain.Filter{Column: "form_id", Op: "isnull"}))
		sql, args := b.SQL()
		assert.Contains(t, sql, `t0."submitted_at" BETWEEN ? AND ?`)
		assert.Contains(t, sql, `t0."submitted_by" IN (?,?)`)
		assert.Contains(t, sql, `t0."form_id" IS NULL`)
		assert.Len(t, args, 4)

		err = b.Where(domain.Filter{Column: "form_id", Op: "matches", Value: 1})
		assert.Error(t, err)
	})

	t.Run("limit", func(t *testing.T) {
		b, err := NewBuilder("roles")
		require.NoError(t, err)
		b.Limit(10)
		sql, _ := b.SQL()
		assert.Contains(t, sql, "LIMIT 10")
	})
}
