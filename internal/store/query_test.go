package store

import (
	"errors"
	"testing"
)

func TestNormalizedDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   ListParams
		want ListParams
	}{
		{
			name: "zero params",
			in:   ListParams{},
			want: ListParams{Page: 1, PageSize: DefaultPageSize, Ordering: "-id"},
		},
		{
			name: "negative page",
			in:   ListParams{Page: -3, PageSize: 20},
			want: ListParams{Page: 1, PageSize: 20, Ordering: "-id"},
		},
		{
			name: "oversized page size is capped",
			in:   ListParams{Page: 2, PageSize: 1000},
			want: ListParams{Page: 2, PageSize: MaxPageSize, Ordering: "-id"},
		},
		{
			name: "explicit ordering kept",
			in:   ListParams{Page: 1, PageSize: 5, Ordering: "name"},
			want: ListParams{Page: 1, PageSize: 5, Ordering: "name"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalized()
			if got.Page != tc.want.Page || got.PageSize != tc.want.PageSize || got.Ordering != tc.want.Ordering {
				t.Fatalf("Normalized() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBuildDeterministicFilters(t *testing.T) {
	spec := listSpec{
		filters: map[string]string{
			"id":   "t.id::text = $%d",
			"name": "t.name = $%d",
		},
		search: []string{"t.name"},
		order:  map[string]string{"id": "t.id", "name": "t.name"},
	}

	q, err := spec.build(ListParams{
		Filters: map[string]string{"name": "rock", "id": "7"},
		Search:  "ro",
		Page:    2,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	wantWhere := "WHERE 1=1 AND t.id::text = $1 AND t.name = $2 AND (t.name ILIKE $3)"
	if q.where != wantWhere {
		t.Fatalf("where = %q, want %q", q.where, wantWhere)
	}
	if len(q.args) != 3 || q.args[0] != "7" || q.args[1] != "rock" || q.args[2] != "%ro%" {
		t.Fatalf("unexpected args: %#v", q.args)
	}
	if got := q.tail(); got != " ORDER BY t.id DESC LIMIT 10 OFFSET 10" {
		t.Fatalf("tail = %q", got)
	}
}

func TestBuildRejectsUnknownFilter(t *testing.T) {
	spec := listSpec{
		filters: map[string]string{"id": "id::text = $%d"},
		order:   map[string]string{"id": "id"},
	}

	_, err := spec.build(ListParams{Filters: map[string]string{"rating": "5"}})

	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "rating" {
		t.Fatalf("expected ValidationError on rating, got %v", err)
	}
}

func TestBuildRejectsUnknownOrdering(t *testing.T) {
	spec := listSpec{
		filters: map[string]string{},
		order:   map[string]string{"id": "id"},
	}

	_, err := spec.build(ListParams{Ordering: "-secret"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "ordering" {
		t.Fatalf("expected ValidationError on ordering, got %v", err)
	}
}

func TestBuildRejectsSearchWhenUnsupported(t *testing.T) {
	spec := listSpec{
		filters: map[string]string{},
		order:   map[string]string{"id": "id"},
	}

	_, err := spec.build(ListParams{Search: "foo"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "search" {
		t.Fatalf("expected ValidationError on search, got %v", err)
	}
}

func TestBuildDescendingOrder(t *testing.T) {
	spec := listSpec{
		filters: map[string]string{},
		order:   map[string]string{"created_at": "t.created_at"},
	}

	q, err := spec.build(ListParams{Ordering: "-created_at"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if q.order != "t.created_at DESC" {
		t.Fatalf("order = %q", q.order)
	}
}
