package handlers

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

type pageParams struct {
	page  int
	limit int
}

func (p pageParams) offset() int {
	return (p.page - 1) * p.limit
}

func paginationParams(r *http.Request) pageParams {
	params := pageParams{page: 1, limit: defaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.page = page
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > maxPageSize {
				limit = maxPageSize
			}
			params.limit = limit
		}
	}
	return params
}

// pageEnvelope is the paginated response shape: total row count, absolute-path
// links to the adjacent pages, and the page of results.
type pageEnvelope struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

func newPageEnvelope(r *http.Request, total int64, params pageParams, results any) pageEnvelope {
	envelope := pageEnvelope{Count: total, Results: results}

	if int64(params.offset()+params.limit) < total {
		envelope.Next = pageLink(r, params.page+1)
	}
	if params.page > 1 {
		envelope.Previous = pageLink(r, params.page-1)
	}
	return envelope
}

func pageLink(r *http.Request, page int) *string {
	link := *r.URL
	query := link.Query()
	query.Set("page", strconv.Itoa(page))
	link.RawQuery = query.Encode()
	value := link.String()
	return &value
}
