package controller

import (
	"context"
	"fmt"
	"time"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/models"
)

// FormMode tells whether a form is open and what it targets.
type FormMode string

const (
	FormIdle    FormMode = "idle"
	FormAdding  FormMode = "adding"
	FormEditing FormMode = "editing"
)

// Outcome describes a store call made by the coordinator.
type Outcome struct {
	Op      events.EventType
	Company models.Company
	// Found is false when an update or remove matched no stored id.
	Found bool
}

// Coordinator holds the edit and delete state of one session. It touches
// the store only on Submit and ConfirmDelete.
type Coordinator struct {
	form     *models.CompanyForm
	existing *models.Company
	pending  *int64
}

func (c *Coordinator) Mode() FormMode {
	switch {
	case c.form == nil:
		return FormIdle
	case c.existing == nil:
		return FormAdding
	default:
		return FormEditing
	}
}

// Form returns a copy of the open form.
func (c *Coordinator) Form() (models.CompanyForm, bool) {
	if c.form == nil {
		return models.CompanyForm{}, false
	}
	return *c.form, true
}

// Target is the id being edited, if any.
func (c *Coordinator) Target() (int64, bool) {
	if c.existing == nil {
		return 0, false
	}
	return c.existing.ID, true
}

func (c *Coordinator) PendingDelete() (int64, bool) {
	if c.pending == nil {
		return 0, false
	}
	return *c.pending, true
}

// OpenAdd replaces any open form with blank defaults.
func (c *Coordinator) OpenAdd(now time.Time) models.CompanyForm {
	form := models.BlankForm(now)
	c.form = &form
	c.existing = nil
	return form
}

// OpenEdit loads the stored record into a form. The form is a copy; the
// stored record is untouched until Submit.
func (c *Coordinator) OpenEdit(ctx context.Context, repo Repository, id int64) (models.CompanyForm, error) {
	company, ok, err := repo.Get(ctx, id)
	if err != nil {
		return models.CompanyForm{}, fmt.Errorf("failed to load company: %w", err)
	}
	if !ok {
		return models.CompanyForm{}, fmt.Errorf("%w: company %d", e.ErrNotFound, id)
	}
	form := models.FormFrom(company)
	c.form = &form
	c.existing = &company
	return form, nil
}

// Submit commits the validated input as an add or an update, depending on
// how the form was opened, and closes the form. A failed store call leaves
// the form open.
func (c *Coordinator) Submit(ctx context.Context, repo Repository, in models.CompanyInput) (Outcome, error) {
	if c.form == nil {
		return Outcome{}, e.ErrNotComposing
	}

	var out Outcome
	if c.existing == nil {
		created, err := repo.Add(ctx, in)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to add company: %w", err)
		}
		out = Outcome{Op: events.CompanyCreated, Company: created, Found: true}
	} else {
		updated := in.WithID(c.existing.ID)
		found, err := repo.Update(ctx, updated)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to update company: %w", err)
		}
		out = Outcome{Op: events.CompanyUpdated, Company: updated, Found: found}
	}

	c.Cancel()
	return out, nil
}

// Cancel discards the open form without a store call.
func (c *Coordinator) Cancel() {
	c.form = nil
	c.existing = nil
}

// RequestDelete arms a delete for id. Nothing is removed until confirmed.
func (c *Coordinator) RequestDelete(id int64) {
	c.pending = &id
}

// ConfirmDelete removes the pending id. Removing an id that is already
// gone is a no-op reported through Outcome.Found.
func (c *Coordinator) ConfirmDelete(ctx context.Context, repo Repository) (Outcome, error) {
	if c.pending == nil {
		return Outcome{}, e.ErrNoPendingDelete
	}
	id := *c.pending

	company, _, err := repo.Get(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load company: %w", err)
	}
	found, err := repo.Remove(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to remove company: %w", err)
	}
	company.ID = id

	c.pending = nil
	return Outcome{Op: events.CompanyDeleted, Company: company, Found: found}, nil
}

func (c *Coordinator) CancelDelete() {
	c.pending = nil
}
