// Package models defines the core domain models for the company directory.
// It includes definitions for Company, CompanyInput, CompanyForm and the sort enumerations.
package models

import (
	"strings"
	"time"
)

// Company defines the domain model for a company entity.
type Company struct {
	// ID is the unique identifier assigned by the store.
	ID int64 `json:"id"`
	// Name is the company’s name.
	Name string `json:"name"`
	// Industry is one of the known industries (open-ended in practice).
	Industry string `json:"industry"`
	// Location is the formatted "city, state, country" text.
	Location string `json:"location"`
	// Employees is the number of employees in the company.
	Employees int `json:"employees"`
	// Revenue is the annual revenue in whole USD.
	Revenue int64 `json:"revenue"`
	// Founded is the year the company was founded.
	Founded int `json:"founded"`
	// Website is an optional URL.
	Website string `json:"website,omitempty"`
	// Description provides details about the company.
	Description string `json:"description,omitempty"`
}

// CompanyInput is a validated record lacking an id, ready for the store.
type CompanyInput struct {
	Name        string `json:"name" validate:"required"`
	Industry    string `json:"industry" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Employees   int    `json:"employees" validate:"gte=1"`
	Revenue     int64  `json:"revenue" validate:"gte=0"`
	Founded     int    `json:"founded" validate:"gte=1800,notfuture"`
	Website     string `json:"website" validate:"omitempty,url"`
	Description string `json:"description"`
}

// WithID attaches an id to the input, producing a storable Company.
func (in CompanyInput) WithID(id int64) Company {
	return Company{
		ID:          id,
		Name:        in.Name,
		Industry:    in.Industry,
		Location:    in.Location,
		Employees:   in.Employees,
		Revenue:     in.Revenue,
		Founded:     in.Founded,
		Website:     in.Website,
		Description: in.Description,
	}
}

// DefaultCountry is preselected on a blank form.
const DefaultCountry = "United States"

// CompanyForm is the editable state of an add or edit session.
// City and State, when present, take precedence over Location.
type CompanyForm struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Employees   int    `json:"employees"`
	Revenue     int64  `json:"revenue"`
	Founded     int    `json:"founded"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

// BlankForm returns the defaults shown when adding a company.
func BlankForm(now time.Time) CompanyForm {
	return CompanyForm{
		Country:   DefaultCountry,
		Employees: 1,
		Revenue:   0,
		Founded:   now.Year(),
	}
}

// FormFrom copies an existing company into a form. The result never aliases c.
func FormFrom(c Company) CompanyForm {
	return CompanyForm{
		Name:        c.Name,
		Industry:    c.Industry,
		Location:    c.Location,
		Employees:   c.Employees,
		Revenue:     c.Revenue,
		Founded:     c.Founded,
		Website:     c.Website,
		Description: c.Description,
	}
}

// Input converts the form to a CompanyInput, composing the location when
// city or state were entered.
func (f CompanyForm) Input() CompanyInput {
	location := strings.TrimSpace(f.Location)
	if strings.TrimSpace(f.City) != "" || strings.TrimSpace(f.State) != "" {
		location = ComposeLocation(f.City, f.State, f.Country)
	}
	return CompanyInput{
		Name:        strings.TrimSpace(f.Name),
		Industry:    strings.TrimSpace(f.Industry),
		Location:    location,
		Employees:   f.Employees,
		Revenue:     f.Revenue,
		Founded:     f.Founded,
		Website:     strings.TrimSpace(f.Website),
		Description: f.Description,
	}
}

// ComposeLocation joins the non-empty parts with ", ".
func ComposeLocation(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
