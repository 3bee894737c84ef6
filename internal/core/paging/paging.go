// Package paging holds the page/limit pagination shared by list endpoints.
package paging

import (
	"fmt"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Request is a 1-based page request
type Request struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Info describes the page returned to clients
type Info struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Normalize applies defaults and caps the limit at MaxLimit
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

// Offset is the number of rows to skip
func (r Request) Offset() int {
	n := r.Normalize()
	return (n.Page - 1) * n.Limit
}

// NewInfo builds Info for a normalized request and a total row count
func NewInfo(r Request, total int) Info {
	n := r.Normalize()
	pages := 0
	if total > 0 {
		pages = (total + n.Limit - 1) / n.Limit
	}
	return Info{Total: total, Page: n.Page, Limit: n.Limit, Pages: pages}
}

// Slice returns the window of items selected by r
func Slice[T any](items []T, r Request) []T {
	n := r.Normalize()
	start := n.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + n.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Parse reads page and limit query values. Empty values fall back to defaults.
func Parse(page, limit string) (Request, error) {
	var r Request
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return r, fmt.Errorf("page must be a positive integer")
		}
		r.Page = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return r, fmt.Errorf("limit must be a positive integer")
		}
		if n > MaxLimit {
			return r, fmt.Errorf("limit must not exceed %d", MaxLimit)
		}
		r.Limit = n
	}
	return r.Normalize(), nil
}
