package textutil

import (
	"strconv"
	"strings"
)

// ParseYear extracts the integer year from values such as "2010", " 2010 ",
// "2010.0", or OMDb ranges like "2005–2010". The leading run of digits wins.
func ParseYear(value string) (int, bool) {
	value = strings.TrimSpace(value)
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0, false
	}
	return year, true
}
