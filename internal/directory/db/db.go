// Package db implements the Entity Store on an SQLite database through GORM.
// The default DSN is a private in-memory database, so the store lives exactly
// as long as the process.
package db

import (
	"context"
	"errors"
	"fmt"

	rows "github.com/gartstein/directory/internal/directory/db/models"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultDSN opens an in-memory database.
const DefaultDSN = "file::memory:"

var updatedColumns = []string{
	"name", "industry", "location", "employees", "revenue", "founded", "website", "description",
}

type Repository struct {
	db *gorm.DB
}

type Config struct {
	DSN string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = DefaultDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *gorm.DB) (*Repository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// every connection to an in-memory database sees its own empty schema
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&rows.Company{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

// Add assigns max(id)+1 inside a transaction and inserts the row.
func (r *Repository) Add(ctx context.Context, in models.CompanyInput) (models.Company, error) {
	var created models.Company
	err := r.WithTransaction(ctx, func(repo *Repository) error {
		var highest int64
		if err := repo.db.WithContext(ctx).Model(&rows.Company{}).
			Select("COALESCE(MAX(company_id), 0)").
			Scan(&highest).Error; err != nil {
			return err
		}

		created = in.WithID(highest + 1)
		row := rows.FromDomain(created)
		return repo.db.WithContext(ctx).Create(&row).Error
	})
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	return created, nil
}

// Update overwrites every column of the matching row. Zero values are
// written too, so revenue 0 is not skipped.
func (r *Repository) Update(ctx context.Context, c models.Company) (bool, error) {
	row := rows.FromDomain(c)
	result := r.db.WithContext(ctx).Model(&rows.Company{}).
		Where("company_id = ?", c.ID).
		Select(updatedColumns).
		Updates(&row)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update company: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Remove(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&rows.Company{}, "company_id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete company: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (models.Company, bool, error) {
	var row rows.Company
	result := r.db.WithContext(ctx).First(&row, "company_id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return models.Company{}, false, nil
		}
		return models.Company{}, false, result.Error
	}
	return row.ToDomain(), true, nil
}

// List returns all companies in insertion order.
func (r *Repository) List(ctx context.Context) ([]models.Company, error) {
	var found []rows.Company
	if err := r.db.WithContext(ctx).Order("seq").Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	out := make([]models.Company, len(found))
	for i, row := range found {
		out[i] = row.ToDomain()
	}
	return out, nil
}

// Replace swaps the whole table for the given snapshot.
func (r *Repository) Replace(ctx context.Context, companies []models.Company) error {
	companies = store.Dedupe(companies)
	return r.WithTransaction(ctx, func(repo *Repository) error {
		if err := repo.db.WithContext(ctx).Where("1 = 1").Delete(&rows.Company{}).Error; err != nil {
			return fmt.Errorf("failed to clear companies: %w", err)
		}
		if len(companies) == 0 {
			return nil
		}
		batch := make([]rows.Company, len(companies))
		for i, c := range companies {
			batch[i] = rows.FromDomain(c)
		}
		if err := repo.db.WithContext(ctx).Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert seed: %w", err)
		}
		return nil
	})
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
