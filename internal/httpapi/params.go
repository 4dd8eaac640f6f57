package httpapi

import (
	"net/http"
	"strconv"

	"github.com/Niracler/song/internal/store"
)

// Query parameters reserved for transport concerns; everything else is
// treated as an exact-match filter key for the store's allow-list.
var reservedParams = map[string]struct{}{
	"p":         {},
	"page_size": {},
	"search":    {},
	"ordering":  {},
}

// parseListParams maps the request query onto store.ListParams. The page
// param is `p` and the size param is `page_size`; non-numeric values fall
// back to defaults.
func parseListParams(r *http.Request) store.ListParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("p"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	filters := make(map[string]string)
	for key, values := range q {
		if _, ok := reservedParams[key]; ok {
			continue
		}
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	return store.ListParams{
		Filters:  filters,
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
		Page:     page,
		PageSize: pageSize,
	}
}

// pathID extracts the `{id}` path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
