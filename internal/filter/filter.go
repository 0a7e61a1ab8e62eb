// Package filter derives filtered and sorted views of campaigns and tasks.
//
// Every function here is a pure projection: inputs are never mutated and the
// same input always yields the same output order.
package filter

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

type Sort string

const (
	SortNone     Sort = ""
	SortNewest   Sort = "newest"
	SortOldest   Sort = "oldest"
	SortName     Sort = "name"
	SortSize     Sort = "size"
	SortPriority Sort = "priority"
	SortDue      Sort = "due"
)

func ParseSort(s string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "default":
		return SortNone, nil
	case "newest", "recent":
		return SortNewest, nil
	case "oldest":
		return SortOldest, nil
	case "name", "title":
		return SortName, nil
	case "size", "tasks":
		return SortSize, nil
	case "priority":
		return SortPriority, nil
	case "due", "date":
		return SortDue, nil
	default:
		return SortNone, fmt.Errorf("invalid sort: %q (expected newest|oldest|name|size|priority|due)", s)
	}
}

// textMatcher matches a query against fields by case-folded substring containment.
type textMatcher struct {
	folder cases.Caser
	query  string
}

func newTextMatcher(query string) *textMatcher {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	m := &textMatcher{folder: cases.Fold()}
	m.query = m.folder.String(query)
	return m
}

func (m *textMatcher) match(fields ...string) bool {
	if m == nil {
		return true
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(m.folder.String(f), m.query) {
			return true
		}
	}
	return false
}

func contains[T comparable](set []T, v T) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}

// afterOrEqual reports whether t is present and not before bound.
func afterOrEqual(t *time.Time, bound time.Time) bool {
	return t != nil && !t.Before(bound)
}

// beforeOrEqual reports whether t is present and not after bound.
func beforeOrEqual(t *time.Time, bound time.Time) bool {
	return t != nil && !t.After(bound)
}
