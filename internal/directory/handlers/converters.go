package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string            `json:"error"`
	Loading bool              `json:"loading,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// mapServiceError translates service errors into HTTP responses.
func (h *DirectoryHandler) mapServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, e.ErrLoading):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Loading: true})
	case errors.Is(err, e.ErrNotFound), errors.Is(err, e.ErrNoSession):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, e.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, e.ErrNotComposing), errors.Is(err, e.ErrNoPendingDelete):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		return uuid.Nil, errors.New("invalid session ID")
	}
	return id, nil
}

func companyID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, errors.New("invalid company ID")
	}
	return id, nil
}
