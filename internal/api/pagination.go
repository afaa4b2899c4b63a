package api

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

type pageRequest struct {
	Limit  int
	Offset int
}

// pagination is returned alongside every paged list.
type pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

func newPagination(paging pageRequest, total int64) pagination {
	return pagination{
		Total:   total,
		Limit:   paging.Limit,
		Offset:  paging.Offset,
		HasMore: int64(paging.Offset+paging.Limit) < total,
	}
}

func parsePaging(r *http.Request) (pageRequest, error) {
	limit, err := parseLimit(r, defaultLimit)
	if err != nil {
		return pageRequest{}, err
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return pageRequest{}, errInvalidOffset
		}
		offset = n
	}
	return pageRequest{Limit: limit, Offset: offset}, nil
}

// parseLimit reads ?limit, clamping to maxLimit.
func parseLimit(r *http.Request, fallback int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errInvalidLimit
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}

var (
	errInvalidLimit  = &parseError{msg: "invalid limit"}
	errInvalidOffset = &parseError{msg: "invalid offset"}
)

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }
