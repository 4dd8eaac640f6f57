package store

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultPageSize is applied when the caller does not ask for a size.
	DefaultPageSize = 10
	// MaxPageSize caps caller-supplied page sizes.
	MaxPageSize = 300
)

// ListParams narrows a collection: exact-match filters, free-text search,
// single-key ordering ("name" ascending, "-name" descending) and page-based
// pagination. Filter, search and ordering keys are validated against the
// entity's allow-list; unknown keys are a ValidationError.
type ListParams struct {
	Filters  map[string]string
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// Normalized returns the params with pagination clamped and the default
// descending-by-id ordering applied.
func (p ListParams) Normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Ordering == "" {
		p.Ordering = "-id"
	}
	return p
}

// listSpec declares the queryable surface of one collection. Filter values
// are fmt templates holding a single positional-arg placeholder ($%d);
// comparisons are textual, matching the exact-match contract for every
// filterable field regardless of column type.
type listSpec struct {
	filters map[string]string
	search  []string
	order   map[string]string
}

// listQuery is the assembled narrowing: WHERE clause with args, ORDER BY
// expression and LIMIT/OFFSET values.
type listQuery struct {
	where  string
	args   []any
	order  string
	limit  int
	offset int
}

// tail renders the ORDER BY / LIMIT / OFFSET suffix for the page query.
func (q listQuery) tail() string {
	return fmt.Sprintf(" ORDER BY %s LIMIT %d OFFSET %d", q.order, q.limit, q.offset)
}

// build validates params against the spec and assembles the SQL pieces.
// Filters and search combine with AND; filters apply in key order so the
// generated SQL is deterministic.
func (sp listSpec) build(p ListParams) (listQuery, error) {
	p = p.Normalized()

	q := listQuery{
		where:  "WHERE 1=1",
		limit:  p.PageSize,
		offset: (p.Page - 1) * p.PageSize,
	}

	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	argIdx := 1
	for _, key := range keys {
		tmpl, ok := sp.filters[key]
		if !ok {
			return listQuery{}, &ValidationError{Field: key, Message: "unknown filter field"}
		}
		q.where += " AND " + fmt.Sprintf(tmpl, argIdx)
		q.args = append(q.args, p.Filters[key])
		argIdx++
	}

	if p.Search != "" {
		if len(sp.search) == 0 {
			return listQuery{}, &ValidationError{Field: "search", Message: "search not supported"}
		}
		conds := make([]string, len(sp.search))
		for i, col := range sp.search {
			conds[i] = fmt.Sprintf("%s ILIKE $%d", col, argIdx)
		}
		q.where += " AND (" + strings.Join(conds, " OR ") + ")"
		q.args = append(q.args, "%"+p.Search+"%")
		argIdx++
	}

	key := p.Ordering
	dir := "ASC"
	if strings.HasPrefix(key, "-") {
		key = key[1:]
		dir = "DESC"
	}
	expr, ok := sp.order[key]
	if !ok {
		return listQuery{}, &ValidationError{Field: "ordering", Message: fmt.Sprintf("cannot order by %q", key)}
	}
	q.order = expr + " " + dir

	return q, nil
}
