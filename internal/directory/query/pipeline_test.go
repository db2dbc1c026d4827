package query

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/gartstein/directory/internal/directory/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() []models.Company {
	return []models.Company{
		{ID: 1, Name: "Acme", Industry: "Technology", Location: "Austin, Texas", Employees: 10, Revenue: 1000, Founded: 2000},
		{ID: 2, Name: "beta Foods", Industry: "Food", Location: "Lyon, France", Employees: 250, Revenue: 500, Founded: 1950},
		{ID: 3, Name: "Cobalt Energy", Industry: "Energy", Location: "oslo, Norway", Employees: 75, Revenue: 900, Founded: 1987},
		{ID: 4, Name: "Acme Labs", Industry: "Technology", Location: "Boston, Massachusetts", Employees: 40, Revenue: 100, Founded: 2015},
		{ID: 5, Name: "Delta Finance", Industry: "Finance", Location: "Zurich, Switzerland", Employees: 75, Revenue: 900, Founded: 1899},
	}
}

func ids(cs []models.Company) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []int64
	}{
		{name: "no filters match everything", spec: Spec{}, want: []int64{1, 2, 3, 4, 5}},
		{name: "search is case-insensitive substring", spec: Spec{SearchTerm: "ACM"}, want: []int64{1, 4}},
		{name: "search matches lowercase names", spec: Spec{SearchTerm: "Beta"}, want: []int64{2}},
		{name: "industry only", spec: Spec{Industries: []string{"Technology"}}, want: []int64{1, 4}},
		{name: "industry set", spec: Spec{Industries: []string{"Energy", "Finance"}}, want: []int64{3, 5}},
		{name: "industry is exact", spec: Spec{Industries: []string{"technology"}}, want: []int64{}},
		{name: "company names", spec: Spec{Companies: []string{"Acme", "Delta Finance"}}, want: []int64{1, 5}},
		{
			name: "all criteria must hold",
			spec: Spec{SearchTerm: "acme", Industries: []string{"Technology"}, Companies: []string{"Acme Labs"}},
			want: []int64{4},
		},
		{
			name: "criteria are not ORed",
			spec: Spec{SearchTerm: "cobalt", Industries: []string{"Technology"}},
			want: []int64{},
		},
		{name: "empty result", spec: Spec{SearchTerm: "zzz"}, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(fixture(), tt.spec)))
		})
	}
}

func TestFilter_ScenarioSearchAcm(t *testing.T) {
	all := []models.Company{{ID: 1, Name: "Acme", Industry: "Tech", Employees: 10, Revenue: 1000, Founded: 2000}}
	got := Filter(all, Spec{SearchTerm: "acm"})
	assert.Equal(t, all, got)
}

// Every company is in the result iff it satisfies each populated criterion.
func TestFilter_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"Acme", "Acme Labs", "Beta", "Gamma", "delta"}
	industries := []string{"Technology", "Finance", "Energy"}

	for round := 0; round < 200; round++ {
		all := make([]models.Company, 12)
		for i := range all {
			all[i] = models.Company{
				ID:       int64(i + 1),
				Name:     names[rng.Intn(len(names))],
				Industry: industries[rng.Intn(len(industries))],
			}
		}
		spec := Spec{}
		if rng.Intn(2) == 0 {
			spec.SearchTerm = []string{"a", "ACME", "ta", "x"}[rng.Intn(4)]
		}
		if rng.Intn(2) == 0 {
			spec.Industries = []string{industries[rng.Intn(len(industries))]}
		}
		if rng.Intn(2) == 0 {
			spec.Companies = []string{names[rng.Intn(len(names))], names[rng.Intn(len(names))]}
		}

		got := Filter(all, spec)
		for _, c := range all {
			want := (spec.SearchTerm == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(spec.SearchTerm))) &&
				(len(spec.Industries) == 0 || slices.Contains(spec.Industries, c.Industry)) &&
				(len(spec.Companies) == 0 || slices.Contains(spec.Companies, c.Name))
			assert.Equal(t, want, slices.ContainsFunc(got, func(g models.Company) bool { return g.ID == c.ID }),
				"round %d company %d spec %+v", round, c.ID, spec)
		}
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		field models.SortField
		dir   models.SortDirection
		want  []int64
	}{
		{name: "name asc ignores case", field: models.SortByName, dir: models.Asc, want: []int64{1, 4, 2, 3, 5}},
		{name: "name desc", field: models.SortByName, dir: models.Desc, want: []int64{5, 3, 2, 4, 1}},
		{name: "location ignores case", field: models.SortByLocation, dir: models.Asc, want: []int64{1, 4, 2, 3, 5}},
		{name: "employees numeric", field: models.SortByEmployees, dir: models.Asc, want: []int64{1, 4, 3, 5, 2}},
		{name: "founded desc", field: models.SortByFounded, dir: models.Desc, want: []int64{4, 1, 3, 2, 5}},
		{name: "id desc", field: models.SortByID, dir: models.Desc, want: []int64{5, 4, 3, 2, 1}},
		{name: "industry asc stable ties", field: models.SortByIndustry, dir: models.Asc, want: []int64{3, 5, 2, 1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(fixture(), tt.field, tt.dir)))
		})
	}
}

func TestSort_ScenarioRevenueDesc(t *testing.T) {
	in := []models.Company{{ID: 1, Revenue: 500}, {ID: 2, Revenue: 100}, {ID: 3, Revenue: 900}}
	got := Sort(in, models.SortByRevenue, models.Desc)

	revenues := []int64{got[0].Revenue, got[1].Revenue, got[2].Revenue}
	assert.Equal(t, []int64{900, 500, 100}, revenues)
}

func TestSort_AdjacentPairsAndReversal(t *testing.T) {
	for _, field := range models.SortFields {
		asc := Sort(fixture(), field, models.Asc)
		desc := Sort(fixture(), field, models.Desc)
		for i := 1; i < len(asc); i++ {
			assert.LessOrEqual(t, Compare(asc[i-1], asc[i], field), 0, "field %s asc", field)
			assert.GreaterOrEqual(t, Compare(desc[i-1], desc[i], field), 0, "field %s desc", field)
		}
		if field == models.SortByID || field == models.SortByName {
			reversed := slices.Clone(desc)
			slices.Reverse(reversed)
			assert.Equal(t, ids(asc), ids(reversed), "field %s has distinct keys", field)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	all := fixture()
	before := slices.Clone(all)

	got := Apply(all, Spec{SortField: models.SortByRevenue, SortDirection: models.Desc})
	require.Len(t, got, len(all))
	assert.Equal(t, before, all)
}

func TestApply_DefaultsSortToNameAsc(t *testing.T) {
	got := Apply(fixture(), Spec{Industries: []string{"Technology"}})
	assert.Equal(t, []int64{1, 4}, ids(got))
}

func TestSpec_ToggleSort(t *testing.T) {
	s := DefaultSpec()

	s = s.ToggleSort(models.SortByName)
	assert.Equal(t, models.Desc, s.SortDirection)

	s = s.ToggleSort(models.SortByRevenue)
	assert.Equal(t, models.SortByRevenue, s.SortField)
	assert.Equal(t, models.Asc, s.SortDirection)
}

func TestSpec_Equal(t *testing.T) {
	a := Spec{Industries: []string{"b", "a"}, Companies: []string{"x"}}
	b := Spec{Industries: []string{"a", "b", "a"}, Companies: []string{"x"}, SortField: models.SortByName, SortDirection: models.Asc}
	assert.True(t, a.Equal(b))

	b.SearchTerm = "q"
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(a.Normalize().ToggleSort(models.SortByName)))
}

func TestCompanyNames(t *testing.T) {
	all := append(fixture(), models.Company{ID: 9, Name: "Acme"})
	assert.Equal(t, []string{"Acme", "Acme Labs", "Cobalt Energy", "Delta Finance", "beta Foods"}, CompanyNames(all))
	assert.Equal(t, []string{}, CompanyNames(nil))
}
