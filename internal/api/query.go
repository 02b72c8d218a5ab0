package api

import (
	"net/url"
	"strconv"
	"strings"
)

type ListParams struct {
	Limit  int
	Offset int
	Class  string // empty = every class
	Desc   bool   // newest first
}

func parseListParams(q url.Values) ListParams {
	// limit
	limit := 50
	lv := q.Get("_limit")
	if lv == "" {
		lv = q.Get("limit")
	}
	if lv != "" {
		if n, err := strconv.Atoi(lv); err == nil && n >= 0 && n <= 1000 {
			limit = n
		}
	}

	// offset
	offset := 0
	ov := q.Get("_offset")
	if ov == "" {
		ov = q.Get("offset")
	}
	if ov != "" {
		if n, err := strconv.Atoi(ov); err == nil && n >= 0 {
			offset = n
		}
	}

	// sort: only creation order, "-id" reverses it
	sv := strings.TrimSpace(q.Get("_sort"))
	if sv == "" {
		sv = strings.TrimSpace(q.Get("sort"))
	}

	return ListParams{
		Limit:  limit,
		Offset: offset,
		Class:  strings.TrimSpace(q.Get("class")),
		Desc:   sv == "-id",
	}
}
