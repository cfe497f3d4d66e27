// AngelaMos | 2026
// pagination.go

package core

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func PageFromRequest(r *http.Request) PageParams {
	p := PageParams{
		Page:     QueryInt(r, "page", 1),
		PageSize: QueryInt(r, "page_size", DefaultPageSize),
	}
	p.Normalize()
	return p
}

func QueryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
