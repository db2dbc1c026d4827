package controller

import (
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/pagination"
	"github.com/gartstein/directory/internal/directory/query"
	"github.com/google/uuid"
)

// Row is a company as displayed, with its revenue in compact USD.
type Row struct {
	models.Company
	RevenueDisplay string `json:"revenueDisplay"`
}

// FormView is the session's edit state.
type FormView struct {
	Mode   FormMode            `json:"mode"`
	Target int64               `json:"target,omitempty"`
	Values *models.CompanyForm `json:"values,omitempty"`
}

// View is everything a client needs to render a session: the query, the
// current page of rows with totals, and the coordinator state.
type View struct {
	SessionID     uuid.UUID              `json:"sessionId"`
	Query         query.Spec             `json:"query"`
	Filtered      bool                   `json:"filtered"`
	Page          pagination.Window[Row] `json:"page"`
	Form          FormView               `json:"form"`
	PendingDelete *int64                 `json:"pendingDelete,omitempty"`
}

func newView(id uuid.UUID, sess *session, w pagination.Window[models.Company]) *View {
	rows := make([]Row, len(w.Items))
	for i, c := range w.Items {
		rows[i] = Row{Company: c, RevenueDisplay: models.FormatUSD(c.Revenue)}
	}

	v := &View{
		SessionID: id,
		Query:     sess.spec,
		Filtered:  sess.spec.Active(),
		Page: pagination.Window[Row]{
			Items:      rows,
			Page:       w.Page,
			PageSize:   w.PageSize,
			TotalItems: w.TotalItems,
			TotalPages: w.TotalPages,
		},
		Form: FormView{Mode: sess.coord.Mode()},
	}
	if form, ok := sess.coord.Form(); ok {
		v.Form.Values = &form
	}
	if target, ok := sess.coord.Target(); ok {
		v.Form.Target = target
	}
	if pending, ok := sess.coord.PendingDelete(); ok {
		v.PendingDelete = &pending
	}
	return v
}
