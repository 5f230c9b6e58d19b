package util

import (
	"strconv"
)

// MustParseUint converts a path/query id to uint, returning 0 when it does
// not parse.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParsePage reads page/limit query values with sane defaults.
func ParsePage(pageStr, limitStr string) (page, limit int) {
	page, _ = strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(limitStr)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
