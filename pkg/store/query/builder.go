package query

import (
	"fmt"
	"strings"

	"github.com/de-tools/form-atlas/pkg/models/domain"
	"github.com/de-tools/form-atlas/pkg/schema"
)

const rootAlias = "t0"

// Builder assembles a single SELECT over an entity and its relationships.
// Each distinct relationship path gets exactly one LEFT JOIN and one alias,
// cached so selects, filters and sorts on the same path share it.
type Builder struct {
	root       *schema.Entity
	selects    []string
	selectPath []string
	joins      []string
	aliases    map[string]string
	wheres     []string
	args       []any
	orders     []string
	limit      int
	aliasSeq   int
}

// NewBuilder starts a query for one entity type.
func NewBuilder(entity string) (*Builder, error) {
	ent, ok := schema.Lookup(entity)
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", entity)
	}
	return &Builder{
		root:    ent,
		aliases: map[string]string{"": rootAlias},
	}, nil
}

// ResolveColumn resolves a dotted column path to a SQL expression, adding
// any joins the path needs. Unknown relationships or attributes leave the
// builder untouched and report false.
func (b *Builder) ResolveColumn(path string) (string, bool) {
	segments := strings.Split(path, ".")
	ent := b.root
	prefix := ""
	alias := rootAlias

	type pendingJoin struct {
		prefix string
		clause string
		alias  string
	}
	var pending []pendingJoin

	for i, seg := range segments {
		last := i == len(segments)-1
		if last {
			if _, ok := ent.FieldKind(seg); !ok {
				return "", false
			}
			for _, p := range pending {
				b.aliases[p.prefix] = p.alias
				b.joins = append(b.joins, p.clause)
			}
			return fmt.Sprintf("%s.%q", alias, seg), true
		}

		rel, ok := ent.Relationship(seg)
		if !ok || rel.List {
			return "", false
		}
		parentAlias := alias
		if prefix == "" {
			prefix = seg
		} else {
			prefix = prefix + "." + seg
		}
		if cached, ok := b.aliases[prefix]; ok {
			alias = cached
		} else {
			found := false
			for _, p := range pending {
				if p.prefix == prefix {
					alias = p.alias
					found = true
					break
				}
			}
			if !found {
				target, ok := schema.Lookup(rel.Target)
				if !ok {
					return "", false
				}
				b.aliasSeq++
				alias = fmt.Sprintf("t%d", b.aliasSeq)
				pending = append(pending, pendingJoin{
					prefix: prefix,
					alias:  alias,
					clause: fmt.Sprintf("LEFT JOIN %s %s ON %s.%q = %s.%q",
						target.Table, alias, parentAlias, rel.LocalKey, alias, rel.ForeignKey),
				})
			}
		}
		target, ok := schema.Lookup(rel.Target)
		if !ok {
			return "", false
		}
		ent = target
	}
	return "", false
}

// Select adds a column to the projection, aliased by its dotted path.
// Unresolvable columns are skipped and reported false.
func (b *Builder) Select(path string) bool {
	expr, ok := b.ResolveColumn(path)
	if !ok {
		return false
	}
	b.selects = append(b.selects, fmt.Sprintf("%s AS %q", expr, path))
	b.selectPath = append(b.selectPath, path)
	return true
}

// SelectedPaths returns the projection's dotted paths in order.
func (b *Builder) SelectedPaths() []string {
	return b.selectPath
}

// Where appends a filter. Unresolvable columns are ignored; unsupported
// operators are an error.
func (b *Builder) Where(f domain.Filter) error {
	expr, ok := b.ResolveColumn(f.Column)
	if !ok {
		return nil
	}
	switch f.Op {
	case "", "eq":
		b.wheres = append(b.wheres, expr+" = ?")
		b.args = append(b.args, f.Value)
	case "neq":
		b.wheres = append(b.wheres, expr+" != ?")
		b.args = append(b.args, f.Value)
	case "gt":
		b.wheres = append(b.wheres, expr+" > ?")
		b.args = append(b.args, f.Value)
	case "gte":
		b.wheres = append(b.wheres, expr+" >= ?")
		b.args = append(b.args, f.Value)
	case "lt":
		b.wheres = append(b.wheres, expr+" < ?")
		b.args = append(b.args, f.Value)
	case "lte":
		b.wheres = append(b.wheres, expr+" <= ?")
		b.args = append(b.args, f.Value)
	case "like":
		b.wheres = append(b.wheres, expr+" LIKE ?")
		b.args = append(b.args, f.Value)
	case "in":
		values, ok := f.Value.([]any)
		if !ok || len(values) == 0 {
			return fmt.Errorf("filter %q: in requires a non-empty list", f.Column)
		}
		marks := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
		b.wheres = append(b.wheres, fmt.Sprintf("%s IN (%s)", expr, marks))
		b.args = append(b.args, values...)
	case "between":
		bounds, ok := f.Value.([]any)
		if !ok || len(bounds) != 2 {
			return fmt.Errorf("filter %q: between requires two bounds", f.Column)
		}
		b.wheres = append(b.wheres, expr+" BETWEEN ? AND ?")
		b.args = append(b.args, bounds[0], bounds[1])
	case "isnull":
		b.wheres = append(b.wheres, expr+" IS NULL")
	case "notnull":
		b.wheres = append(b.wheres, expr+" IS NOT NULL")
	default:
		return fmt.Errorf("filter %q: unsupported operator %q", f.Column, f.Op)
	}
	return nil
}

// OrderBy appends a sort; unresolvable columns are ignored.
func (b *Builder) OrderBy(s domain.Sort) {
	expr, ok := b.ResolveColumn(s.Column)
	if !ok {
		return
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	b.orders = append(b.orders, expr+" "+dir)
}

// Limit caps the row count; zero means no limit.
func (b *Builder) Limit(n int) {
	b.limit = n
}

// SQL renders the query and its arguments.
func (b *Builder) SQL() (string, []any) {
	cols := "*"
	if len(b.selects) > 0 {
		cols = strings.Join(b.selects, ", ")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s %s", cols, b.root.Table, rootAlias)
	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	if len(b.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.wheres, " AND "))
	}
	if len(b.orders) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orders, ", "))
	}
	if b.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", b.limit)
	}
	return sb.String(), b.args
}
