// Package models contains the row types of the SQLite-backed store,
// configured to work using GORM as the ORM.
package models

import (
	domain "github.com/gartstein/directory/internal/directory/models"
)

// Company represents a company row. Seq preserves insertion order, since
// company ids are assigned by the directory and need not be monotonic in
// seed data.
type Company struct {
	Seq         uint   `gorm:"primaryKey;autoIncrement"`
	CompanyID   int64  `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Industry    string `gorm:"index"`
	Location    string
	Employees   int   `gorm:"check:employees >= 1"`
	Revenue     int64 `gorm:"check:revenue >= 0"`
	Founded     int
	Website     string
	Description string `gorm:"size:3000"`
}

// TableName pins the table name.
func (Company) TableName() string {
	return "companies"
}

// FromDomain converts a domain company to a row. Seq is left for the database.
func FromDomain(c domain.Company) Company {
	return Company{
		CompanyID:   c.ID,
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

// ToDomain converts the row back to the domain model.
func (c Company) ToDomain() domain.Company {
	return domain.Company{
		ID:          c.CompanyID,
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
