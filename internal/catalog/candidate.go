package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"moviemeta/internal/textutil"
)

// Candidate is a normalized title awaiting classification.
type Candidate struct {
	Title string `json:"title"`
	Year  string `json:"year,omitempty"`
}

// Keys names the object fields that hold the title and year.
type Keys struct {
	Title string
	Year  string
}

// DefaultKeys returns the "title"/"year" key mapping.
func DefaultKeys() Keys {
	return Keys{Title: "title", Year: "year"}
}

// HasYear reports whether the candidate carries a year filter.
func (c Candidate) HasYear() bool {
	return strings.TrimSpace(c.Year) != ""
}

// Key returns the identity of the candidate: the folded title, plus the
// integer year when one is present.
func (c Candidate) Key() string {
	title := textutil.FoldTitle(c.Title)
	if !c.HasYear() {
		return title
	}
	if year, ok := textutil.ParseYear(c.Year); ok {
		return title + "|" + strconv.Itoa(year)
	}
	return title + "|" + strings.TrimSpace(c.Year)
}

// Matches reports whether a record with the given title and year represents
// this candidate. Titles compare case-insensitively; the year only matters
// when the candidate has one.
func (c Candidate) Matches(title, year string) bool {
	if !textutil.SameTitle(c.Title, title) {
		return false
	}
	if !c.HasYear() {
		return true
	}
	want, okWant := textutil.ParseYear(c.Year)
	got, okGot := textutil.ParseYear(year)
	if okWant && okGot {
		return want == got
	}
	return strings.TrimSpace(c.Year) == strings.TrimSpace(year)
}

func (c Candidate) String() string {
	if c.HasYear() {
		return fmt.Sprintf("%s (%s)", c.Title, strings.TrimSpace(c.Year))
	}
	return c.Title
}

// Normalize converts one raw source entry into a Candidate. Strings become
// bare titles; maps are read through keys.
func Normalize(item any, keys Keys) Candidate {
	switch v := item.(type) {
	case nil:
		return Candidate{}
	case string:
		return Candidate{Title: v}
	case Candidate:
		return v
	case map[string]any:
		return Candidate{Title: scalarString(v[keys.Title]), Year: scalarString(v[keys.Year])}
	case map[string]string:
		return Candidate{Title: v[keys.Title], Year: v[keys.Year]}
	default:
		return Candidate{Title: scalarString(v)}
	}
}

// NormalizeAll normalizes every entry in order.
func NormalizeAll(items []any, keys Keys) []Candidate {
	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		out = append(out, Normalize(item, keys))
	}
	return out
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
