package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gartstein/directory/internal/directory/controller"
	"github.com/gartstein/directory/internal/directory/export"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/query"
	"github.com/gartstein/directory/internal/directory/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DirectoryController defines the business logic interface that the HTTP
// handlers invoke.
type DirectoryController interface {
	Loaded() bool
	Industries() ([]string, error)
	CompanyNames(ctx context.Context) ([]string, error)

	OpenSession() uuid.UUID
	CloseSession(id uuid.UUID) error
	View(ctx context.Context, id uuid.UUID) (*controller.View, error)
	SetQuery(ctx context.Context, id uuid.UUID, spec query.Spec) (*controller.View, error)
	ToggleSort(ctx context.Context, id uuid.UUID, field models.SortField) (*controller.View, error)
	SetPage(ctx context.Context, id uuid.UUID, page int) (*controller.View, error)

	OpenAdd(ctx context.Context, id uuid.UUID) (*controller.View, error)
	OpenEdit(ctx context.Context, id uuid.UUID, companyID int64) (*controller.View, error)
	Submit(ctx context.Context, id uuid.UUID, in models.CompanyInput) (*controller.View, error)
	Cancel(ctx context.Context, id uuid.UUID) (*controller.View, error)
	RequestDelete(ctx context.Context, id uuid.UUID, companyID int64) (*controller.View, error)
	ConfirmDelete(ctx context.Context, id uuid.UUID) (*controller.View, error)
	CancelDelete(ctx context.Context, id uuid.UUID) (*controller.View, error)

	DisplayedPage(ctx context.Context, id uuid.UUID) ([]models.Company, error)
}

// DirectoryHandler serves the directory HTTP API.
type DirectoryHandler struct {
	service DirectoryController
	logger  *zap.Logger
	now     func() time.Time
}

func NewDirectoryHandler(service DirectoryController, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
		logger:  logger.Named("directory_handler"),
		now:     time.Now,
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Loaded bool   `json:"loaded"`
}

func (h *DirectoryHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Loaded: h.service.Loaded()})
}

func (h *DirectoryHandler) Industries(w http.ResponseWriter, _ *http.Request) {
	industries, err := h.service.Industries()
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, industries)
}

func (h *DirectoryHandler) CompanyNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.CompanyNames(r.Context())
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

type sessionResponse struct {
	ID uuid.UUID `json:"id"`
}

func (h *DirectoryHandler) OpenSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, sessionResponse{ID: h.service.OpenSession()})
}

func (h *DirectoryHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.CloseSession(sid); err != nil {
		h.mapServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DirectoryHandler) View(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.View(ctx, sid)
	})
}

func (h *DirectoryHandler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var spec query.Spec
	if err := decodeJSON(r, &spec, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.SetQuery(ctx, sid, spec)
	})
}

func (h *DirectoryHandler) ToggleSort(w http.ResponseWriter, r *http.Request) {
	field := models.SortField(chi.URLParam(r, "field"))
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.ToggleSort(ctx, sid, field)
	})
}

type pageRequest struct {
	Page int `json:"page"`
}

func (h *DirectoryHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.SetPage(ctx, sid, req.Page)
	})
}

type openFormRequest struct {
	ID *int64 `json:"id"`
}

// OpenForm opens a blank form, or a copy of a stored company when the
// body names an id.
func (h *DirectoryHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	var req openFormRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		if req.ID == nil {
			return h.service.OpenAdd(ctx, sid)
		}
		return h.service.OpenEdit(ctx, sid, *req.ID)
	})
}

// SubmitForm validates the form and commits it. Invalid forms never reach
// the service.
func (h *DirectoryHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var form models.CompanyForm
	if err := decodeJSON(r, &form, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := form.Input()
	if err := validation.Validate(in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: validation.FormatValidationErrors(err),
		})
		return
	}
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.Submit(ctx, sid, in)
	})
}

func (h *DirectoryHandler) CancelForm(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.Cancel(ctx, sid)
	})
}

func (h *DirectoryHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.RequestDelete(ctx, sid, id)
	})
}

func (h *DirectoryHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.ConfirmDelete(ctx, sid)
	})
}

func (h *DirectoryHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sid uuid.UUID) (*controller.View, error) {
		return h.service.CancelDelete(ctx, sid)
	})
}

func (h *DirectoryHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	companies, ok := h.displayedPage(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", h.attachment("csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.CSV(companies)))
}

func (h *DirectoryHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	companies, ok := h.displayedPage(w, r)
	if !ok {
		return
	}
	data, err := export.XLSX(companies)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", h.attachment("xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *DirectoryHandler) displayedPage(w http.ResponseWriter, r *http.Request) ([]models.Company, bool) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	companies, err := h.service.DisplayedPage(r.Context(), sid)
	if err != nil {
		h.mapServiceError(w, err)
		return nil, false
	}
	return companies, true
}

func (h *DirectoryHandler) attachment(ext string) string {
	name := fmt.Sprintf("companies-%s.%s", h.now().UTC().Format("20060102T150405Z"), ext)
	return fmt.Sprintf("attachment; filename=%q", name)
}

// withSession resolves the session id and writes the resulting view.
func (h *DirectoryHandler) withSession(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, sid uuid.UUID) (*controller.View, error),
) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := fn(r.Context(), sid)
	if err != nil {
		h.mapServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
