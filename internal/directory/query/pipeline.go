package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gartstein/directory/internal/directory/models"
)

// Apply filters then sorts. The input slice is never modified.
func Apply(all []models.Company, spec Spec) []models.Company {
	spec = spec.Normalize()
	return Sort(Filter(all, spec), spec.SortField, spec.SortDirection)
}

// Filter returns the companies matching every populated criterion, in
// their original order.
func Filter(all []models.Company, spec Spec) []models.Company {
	m := newMatcher(spec)
	out := make([]models.Company, 0, len(all))
	for _, c := range all {
		if m.matches(c) {
			out = append(out, c)
		}
	}
	return out
}

type matcher struct {
	term       string
	industries map[string]struct{}
	companies  map[string]struct{}
}

func newMatcher(spec Spec) matcher {
	return matcher{
		term:       strings.ToLower(spec.SearchTerm),
		industries: toSet(spec.Industries),
		companies:  toSet(spec.Companies),
	}
}

func (m matcher) matches(c models.Company) bool {
	if m.term != "" && !strings.Contains(strings.ToLower(c.Name), m.term) {
		return false
	}
	if len(m.industries) > 0 {
		if _, ok := m.industries[c.Industry]; !ok {
			return false
		}
	}
	if len(m.companies) > 0 {
		if _, ok := m.companies[c.Name]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Sort returns a new slice ordered by field. The sort is stable: companies
// with equal keys keep their relative input order in both directions.
func Sort(items []models.Company, field models.SortField, dir models.SortDirection) []models.Company {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.Company) int {
		c := Compare(a, b, field)
		if dir == models.Desc {
			return -c
		}
		return c
	})
	return out
}

// Compare orders two companies by field: text case-insensitively, numbers
// numerically. Unknown fields compare equal.
func Compare(a, b models.Company, field models.SortField) int {
	switch field {
	case models.SortByID:
		return cmp.Compare(a.ID, b.ID)
	case models.SortByName:
		return compareText(a.Name, b.Name)
	case models.SortByIndustry:
		return compareText(a.Industry, b.Industry)
	case models.SortByLocation:
		return compareText(a.Location, b.Location)
	case models.SortByEmployees:
		return cmp.Compare(a.Employees, b.Employees)
	case models.SortByRevenue:
		return cmp.Compare(a.Revenue, b.Revenue)
	case models.SortByFounded:
		return cmp.Compare(a.Founded, b.Founded)
	default:
		return 0
	}
}

func compareText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// CompanyNames returns the sorted, de-duplicated names used to populate
// the company selector.
func CompanyNames(all []models.Company) []string {
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Name
	}
	if out := uniqueSorted(names); out != nil {
		return out
	}
	return []string{}
}
