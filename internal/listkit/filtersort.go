// Package listkit implements the reusable list-resource building blocks used by
// the console: page-local filtering and sorting, pagination state, view
// preference persistence and the load/mutate/reload controller.
package listkit

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// SortOrder selects the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterState is the user's current search and sort selection for a list view.
type FilterState struct {
	SearchQuery string
	SortField   string
	SortOrder   SortOrder
}

// Field describes how one named record field is read for searching and
// sorting. Exactly one of the accessors is set.
type Field[T any] struct {
	Name       string
	Searchable bool

	String func(T) string
	Number func(T) float64
	Time   func(T) time.Time
}

// StringField declares a string-typed field.
func StringField[T any](name string, get func(T) string, searchable bool) Field[T] {
	return Field[T]{Name: name, String: get, Searchable: searchable}
}

// NumberField declares a numeric field.
func NumberField[T any](name string, get func(T) float64) Field[T] {
	return Field[T]{Name: name, Number: get}
}

// TimeField declares a date-like field sorted chronologically.
func TimeField[T any](name string, get func(T) time.Time) Field[T] {
	return Field[T]{Name: name, Time: get}
}

// Schema declares the searchable and sortable fields of a record type.
type Schema[T any] struct {
	fields map[string]Field[T]
	search []Field[T]
}

// NewSchema builds a schema from field declarations.
func NewSchema[T any](fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{fields: make(map[string]Field[T], len(fields))}
	for _, f := range fields {
		s.fields[f.Name] = f
		if f.Searchable && f.String != nil {
			s.search = append(s.search, f)
		}
	}
	return s
}

// Sortable reports whether name is a declared field.
func (s *Schema[T]) Sortable(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Result is the output of Apply: the ordered, filtered page plus counts.
type Result[T any] struct {
	Items       []T
	ResultCount int
	TotalCount  int
}

// Apply filters and sorts one page of records. It is a pure function: the
// input slice is never modified and identical inputs yield identical output.
// Filtering retains records where at least one searchable field contains the
// query as a case-insensitive substring. Sorting is stable; ties keep their
// original order.
func Apply[T any](records []T, fs FilterState, schema *Schema[T]) Result[T] {
	res := Result[T]{TotalCount: len(records)}

	retained := records
	if query := strings.TrimSpace(fs.SearchQuery); query != "" && schema != nil {
		folded := cases.Fold().String(query)
		retained = make([]T, 0, len(records))
		for _, rec := range records {
			if matchesQuery(rec, folded, schema) {
				retained = append(retained, rec)
			}
		}
	} else {
		retained = append([]T(nil), records...)
	}

	if schema != nil && fs.SortField != "" {
		if field, ok := schema.fields[fs.SortField]; ok {
			less := comparator(field)
			sort.SliceStable(retained, func(i, j int) bool {
				if fs.SortOrder == SortDesc {
					return less(retained[j], retained[i])
				}
				return less(retained[i], retained[j])
			})
		}
	}

	res.Items = retained
	res.ResultCount = len(retained)
	return res
}

func matchesQuery[T any](rec T, foldedQuery string, schema *Schema[T]) bool {
	for _, f := range schema.search {
		if strings.Contains(cases.Fold().String(f.String(rec)), foldedQuery) {
			return true
		}
	}
	return false
}

func comparator[T any](f Field[T]) func(a, b T) bool {
	switch {
	case f.Number != nil:
		return func(a, b T) bool { return f.Number(a) < f.Number(b) }
	case f.Time != nil:
		return func(a, b T) bool { return f.Time(a).Before(f.Time(b)) }
	case f.String != nil:
		return func(a, b T) bool {
			return cases.Fold().String(f.String(a)) < cases.Fold().String(f.String(b))
		}
	default:
		return func(a, b T) bool { return false }
	}
}
