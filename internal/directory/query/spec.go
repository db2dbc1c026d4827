// Package query derives the visible companies from the full collection.
//
// Filtering follows a single policy: every populated criterion is a
// constraint that must hold, and an empty criterion matches everything.
// A blank search with one selected industry therefore returns exactly the
// companies of that industry.
package query

import (
	"slices"

	"github.com/gartstein/directory/internal/directory/models"
)

// Spec is the immutable description of what a session wants to see.
type Spec struct {
	SearchTerm    string               `json:"searchTerm"`
	Industries    []string             `json:"industries"`
	Companies     []string             `json:"companies"`
	SortField     models.SortField     `json:"sortField"`
	SortDirection models.SortDirection `json:"sortDirection"`
}

// DefaultSpec shows everything sorted by name ascending.
func DefaultSpec() Spec {
	return Spec{SortField: models.SortByName, SortDirection: models.Asc}
}

// Normalize fills missing sort settings with the defaults and drops
// duplicate set members.
func (s Spec) Normalize() Spec {
	if s.SortField == "" {
		s.SortField = models.SortByName
	}
	if s.SortDirection == "" {
		s.SortDirection = models.Asc
	}
	s.Industries = uniqueSorted(s.Industries)
	s.Companies = uniqueSorted(s.Companies)
	return s
}

// Equal compares two specs, treating the selections as sets.
func (s Spec) Equal(o Spec) bool {
	a, b := s.Normalize(), o.Normalize()
	return a.SearchTerm == b.SearchTerm &&
		a.SortField == b.SortField &&
		a.SortDirection == b.SortDirection &&
		slices.Equal(a.Industries, b.Industries) &&
		slices.Equal(a.Companies, b.Companies)
}

// ToggleSort mimics a column header click: the active field flips its
// direction, any other field becomes active in ascending order.
func (s Spec) ToggleSort(field models.SortField) Spec {
	if s.SortField == field {
		s.SortDirection = s.SortDirection.Flip()
		return s
	}
	s.SortField = field
	s.SortDirection = models.Asc
	return s
}

// Active reports whether any filter criterion is populated.
func (s Spec) Active() bool {
	return s.SearchTerm != "" || len(s.Industries) > 0 || len(s.Companies) > 0
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
