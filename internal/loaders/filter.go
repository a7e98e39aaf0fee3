package loaders

import (
	"strings"

	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/classifier"
	"github.com/payfisc/payfisc-admin/internal/resource"
)

// Filter keeps the items whose text contains term, ignoring case and accents.
// An empty term keeps everything.
func Filter[T any](items []T, term string, text func(T) string) []T {
	term = strings.TrimSpace(classifier.Fold(term))
	if term == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.Contains(classifier.Fold(text(it)), term) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate returns one page of items. page starts at 1; a limit of 0 uses
// the default page size. Out of range pages are empty, never nil.
func Paginate[T any](items []T, page, limit int) ([]T, apiclient.Pagination) {
	if limit <= 0 {
		limit = resource.DefaultLimit
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	pg := apiclient.Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
	if page > pg.TotalPages {
		return make([]T, 0), pg
	}
	start := (page - 1) * limit
	end := min(start+limit, total)
	return items[start:end], pg
}
