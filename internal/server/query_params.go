package server

import (
	"strconv"
	"strings"

	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
)

// parseSearchRequest reads the search query parameters. An absent pageSize
// defaults to 10; explicit out-of-range values are passed through for the
// service to clamp. Anything other than sort=name orders by creation time,
// and anything other than order=asc is descending.
func parseSearchRequest(get func(string) string) orgdomain.SearchRequest {
	req := orgdomain.SearchRequest{
		Query:    strings.TrimSpace(get("query")),
		Sort:     orgdomain.SortByCreatedAt,
		Order:    orgdomain.OrderDesc,
		Page:     1,
		PageSize: 10,
	}

	if strings.TrimSpace(get("sort")) == orgdomain.SortByName {
		req.Sort = orgdomain.SortByName
	}
	if strings.EqualFold(strings.TrimSpace(get("order")), orgdomain.OrderAsc) {
		req.Order = orgdomain.OrderAsc
	}

	if page, err := strconv.Atoi(strings.TrimSpace(get("page"))); err == nil {
		req.Page = page
	}
	if pageSize, err := strconv.Atoi(strings.TrimSpace(get("pageSize"))); err == nil {
		req.PageSize = pageSize
	}

	return req
}

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
