// Package store holds the in-memory Entity Store: the authoritative
// collection of companies for the lifetime of the process.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/gartstein/directory/internal/directory/models"
)

// Memory keeps companies in insertion order behind a RWMutex.
// Readers always receive copies.
type Memory struct {
	mu        sync.RWMutex
	companies []models.Company
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{}
}

// Add assigns max(id)+1 (1 when empty) and appends.
func (m *Memory) Add(_ context.Context, in models.CompanyInput) (models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	company := in.WithID(nextID(m.companies))
	m.companies = append(m.companies, company)
	return company, nil
}

// Update replaces the company with the same id in place.
// It reports false and leaves the collection untouched when no id matches.
func (m *Memory) Update(_ context.Context, c models.Company) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(c.ID)
	if i < 0 {
		return false, nil
	}
	m.companies[i] = c
	return true, nil
}

// Remove deletes the company with the given id; absent ids are a no-op.
func (m *Memory) Remove(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return false, nil
	}
	m.companies = slices.Delete(m.companies, i, i+1)
	return true, nil
}

// Get returns a copy of the company with the given id.
func (m *Memory) Get(_ context.Context, id int64) (models.Company, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return models.Company{}, false, nil
	}
	return m.companies[i], true, nil
}

// List returns a snapshot in insertion order.
func (m *Memory) List(_ context.Context) ([]models.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.companies), nil
}

// Replace installs a seed snapshot. Later duplicates of an id are dropped.
func (m *Memory) Replace(_ context.Context, companies []models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.companies = Dedupe(companies)
	return nil
}

func (m *Memory) indexOf(id int64) int {
	return slices.IndexFunc(m.companies, func(c models.Company) bool { return c.ID == id })
}

func nextID(companies []models.Company) int64 {
	var highest int64
	for _, c := range companies {
		if c.ID > highest {
			highest = c.ID
		}
	}
	return highest + 1
}

// Dedupe keeps the first occurrence of every id, preserving order.
func Dedupe(companies []models.Company) []models.Company {
	seen := make(map[int64]struct{}, len(companies))
	out := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
