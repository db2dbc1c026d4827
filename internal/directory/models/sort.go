package models

import "fmt"

// SortField names the company attribute used for ordering.
type SortField string

const (
	SortByID        SortField = "id"
	SortByName      SortField = "name"
	SortByIndustry  SortField = "industry"
	SortByLocation  SortField = "location"
	SortByEmployees SortField = "employees"
	SortByRevenue   SortField = "revenue"
	SortByFounded   SortField = "founded"
)

// SortFields lists every sortable field in column order.
var SortFields = []SortField{
	SortByID, SortByName, SortByIndustry, SortByLocation,
	SortByEmployees, SortByRevenue, SortByFounded,
}

// ParseSortField validates s against the known fields.
func ParseSortField(s string) (SortField, error) {
	for _, f := range SortFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// SortDirection is either ascending or descending.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// ParseSortDirection validates s.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case Asc, Desc:
		return SortDirection(s), nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == Asc {
		return Desc
	}
	return Asc
}
