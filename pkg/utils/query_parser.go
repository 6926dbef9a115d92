package utils

import (
	"net/url"
	"strings"

	"equiptrack/pkg/types"
)

// ParseFilterFromQuery turns ?search=&sort[field]=dir&filter[field]=value
// query parameters into a types.Filter.
func ParseFilterFromQuery(values url.Values) types.Filter {
	limit, offset, page := ParsePaginationParams(values)

	filter := types.Filter{
		Search:         strings.TrimSpace(values.Get("search")),
		Sort:           map[string]string{},
		Filter:         map[string]interface{}{},
		Limit:          limit,
		Offset:         offset,
		Page:           page,
		WithPagination: values.Get("withPagination") != "false",
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			field := key[len("sort[") : len(key)-1]
			filter.Sort[field] = vals[0]
		}
		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			field := key[len("filter[") : len(key)-1]
			filter.Filter[field] = vals[0]
		}
	}

	return filter
}
