package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/gartstein/directory/internal/directory/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() models.CompanyInput {
	return models.CompanyInput{
		Name:      "Acme",
		Industry:  "Technology",
		Location:  "Austin, Texas",
		Employees: 1,
		Revenue:   0,
		Founded:   1800,
		Website:   "https://acme.example",
	}
}

func freezeYear(t *testing.T, year int) {
	old := now
	now = func() time.Time { return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = old })
}

func TestValidate_valid(t *testing.T) {
	require.NoError(t, Validate(validInput()))

	in := validInput()
	in.Website = ""
	assert.NoError(t, Validate(in), "website is optional")
}

func TestValidate_fieldErrors(t *testing.T) {
	freezeYear(t, 2026)

	tests := []struct {
		name   string
		mutate func(*models.CompanyInput)
		field  string
		msg    string
	}{
		{"missing name", func(in *models.CompanyInput) { in.Name = "" }, "name", "This field is required"},
		{"missing industry", func(in *models.CompanyInput) { in.Industry = "" }, "industry", "This field is required"},
		{"missing location", func(in *models.CompanyInput) { in.Location = "" }, "location", "This field is required"},
		{"no employees", func(in *models.CompanyInput) { in.Employees = 0 }, "employees", "Must be greater than or equal to 1"},
		{"negative revenue", func(in *models.CompanyInput) { in.Revenue = -1 }, "revenue", "Must be greater than or equal to 0"},
		{"too old", func(in *models.CompanyInput) { in.Founded = 1799 }, "founded", "Must be greater than or equal to 1800"},
		{"future year", func(in *models.CompanyInput) { in.Founded = 2027 }, "founded", "Must not be in the future"},
		{"bad url", func(in *models.CompanyInput) { in.Website = "not a url" }, "website", "Must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := Validate(in)
			require.Error(t, err)
			assert.Equal(t, tt.msg, FormatValidationErrors(err)[tt.field])
		})
	}
}

func TestValidate_currentYearAllowed(t *testing.T) {
	freezeYear(t, 2026)
	in := validInput()
	in.Founded = 2026
	assert.NoError(t, Validate(in))
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	m := FormatValidationErrors(errors.New("boom"))
	assert.Empty(t, m)
}
