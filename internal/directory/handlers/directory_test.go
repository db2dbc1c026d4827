package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gartstein/directory/internal/directory/controller"
	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func seedCompanies() []models.Company {
	return []models.Company{
		{ID: 1, Name: "Acme", Industry: "Technology", Location: "Austin, Texas", Employees: 10, Revenue: 1000, Founded: 2000},
		{ID: 3, Name: "Globex", Industry: "Finance", Location: "New York", Employees: 50, Revenue: 2_500_000, Founded: 1990},
		{ID: 5, Name: `Say "Hi"`, Industry: "Food", Location: "Chicago", Employees: 3, Revenue: 0, Founded: 2015},
	}
}

type testAPI struct {
	t       *testing.T
	server  *httptest.Server
	service *controller.DirectoryService
}

func newTestAPI(t *testing.T, loaded bool, cfg RouterConfig) *testAPI {
	t.Helper()
	logger := zaptest.NewLogger(t)
	service := controller.NewDirectoryService(store.NewMemory(), events.Discard{}, logger)
	if loaded {
		require.NoError(t, service.Load(context.Background(), seedCompanies(), []string{"Technology", "Finance", "Food"}))
	}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "directory_companies 3\n")
	})
	router := NewRouter(cfg, NewDirectoryHandler(service, logger), metrics, logger)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testAPI{t: t, server: server, service: service}
}

func (a *testAPI) do(method, path string, body any) *http.Response {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testAPI) session() string {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/v1/sessions", nil)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	var s sessionResponse
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&s))
	return "/v1/sessions/" + s.ID.String()
}

func decodeView(t *testing.T, resp *http.Response) controller.View {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v controller.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var er errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&er))
	return er
}

func names(v controller.View) []string {
	out := make([]string, len(v.Page.Items))
	for i, r := range v.Page.Items {
		out[i] = r.Name
	}
	return out
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, false, RouterConfig{})

	resp := api.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.False(t, h.Loaded)
}

func TestMetricsMounted(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{})

	resp := api.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "directory_companies")
}

func TestLoadingReports503(t *testing.T) {
	api := newTestAPI(t, false, RouterConfig{})
	path := api.session()

	for _, p := range []string{path + "/view", "/v1/industries", "/v1/company-names"} {
		resp := api.do(http.MethodGet, p, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, p)
		assert.True(t, decodeError(t, resp).Loading, p)
	}
}

func TestVocabulary(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{})

	var industries []string
	resp := api.do(http.MethodGet, "/v1/industries", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&industries))
	assert.Equal(t, []string{"Technology", "Finance", "Food"}, industries)

	var companyNames []string
	resp = api.do(http.MethodGet, "/v1/company-names", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&companyNames))
	assert.Equal(t, []string{"Acme", "Globex", `Say "Hi"`}, companyNames)
}

func TestSessionQueryFlow(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{})
	path := api.session()

	v := decodeView(t, api.do(http.MethodGet, path+"/view", nil))
	assert.Equal(t, []string{"Acme", "Globex", `Say "Hi"`}, names(v))
	assert.Equal(t, "$2.5M", v.Page.Items[1].RevenueDisplay)

	v = decodeView(t, api.do(http.MethodPut, path+"/query", map[string]any{"searchTerm": "GLO"}))
	assert.Equal(t, []string{"Globex"}, names(v))

	v = decodeView(t, api.do(http.MethodPut, path+"/query", map[string]any{"industries": []string{"Food", "Technology"}}))
	assert.Equal(t, []string{"Acme", `Say "Hi"`}, names(v))

	v = decodeView(t, api.do(http.MethodPost, path+"/sort/employees", nil))
	assert.Equal(t, []string{`Say "Hi"`, "Acme"}, names(v))
	v = decodeView(t, api.do(http.MethodPost, path+"/sort/employees", nil))
	assert.Equal(t, []string{"Acme", `Say "Hi"`}, names(v))
	assert.Equal(t, models.Desc, v.Query.SortDirection)

	v = decodeView(t, api.do(http.MethodPut, path+"/page", map[string]int{"page": 4}))
	assert.Empty(t, v.Page.Items)
	assert.Equal(t, 4, v.Page.Page)

	resp := api.do(http.MethodPut, path+"/page", map[string]int{"page": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = api.do(http.MethodPost, path+"/sort/color", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = api.do(http.MethodPut, path+"/query", `{"searchTerm": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFormFlow(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{})
	path := api.session()

	resp := api.do(http.MethodPut, path+"/form", models.CompanyForm{
		Name: "Initech", Industry: "Technology", Location: "Austin", Employees: 5, Founded: 2001,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "submit without an open form")

	v := decodeView(t, api.do(http.MethodPost, path+"/form", nil))
	assert.Equal(t, controller.FormAdding, v.Form.Mode)
	require.NotNil(t, v.Form.Values)
	assert.Equal(t, 1, v.Form.Values.Employees)
	assert.Equal(t, models.DefaultCountry, v.Form.Values.Country)

	resp = api.do(http.MethodPut, path+"/form", models.CompanyForm{Employees: 0, Founded: 1700})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	fields := decodeError(t, resp).Fields
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "employees")
	assert.Contains(t, fields, "founded")

	v = decodeView(t, api.do(http.MethodPut, path+"/form", models.CompanyForm{
		Name: "Initech", Industry: "Technology", City: "Austin", State: "Texas", Country: "United States",
		Employees: 5, Revenue: 1200, Founded: 2001,
	}))
	assert.Equal(t, controller.FormIdle, v.Form.Mode)
	assert.Equal(t, 4, v.Page.TotalItems)
	assert.Equal(t, "Initech", v.Page.Items[2].Name)
	assert.Equal(t, int64(6), v.Page.Items[2].ID)
	assert.Equal(t, "Austin, Texas, United States", v.Page.Items[2].Location)

	v = decodeView(t, api.do(http.MethodPost, path+"/form", map[string]int64{"id": 3}))
	assert.Equal(t, controller.FormEditing, v.Form.Mode)
	assert.Equal(t, int64(3), v.Form.Target)
	assert.Equal(t, "Globex", v.Form.Values.Name)

	v = decodeView(t, api.do(http.MethodDelete, path+"/form", nil))
	assert.Equal(t, controller.FormIdle, v.Form.Mode)

	resp = api.do(http.MethodPost, path+"/form", map[string]int64{"id": 99})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletionFlow(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{})
	path := api.session()

	v := decodeView(t, api.do(http.MethodPost, path+"/deletion/3", nil))
	require.NotNil(t, v.PendingDelete)
	assert.Equal(t, int64(3), *v.PendingDelete)
	assert.Equal(t, 3, v.Page.TotalItems)

	v = decodeView(t, api.do(http.MethodDelete, path+"/deletion", nil))
	assert.Nil(t, v.PendingDelete)
	assert.Equal(t, 3, v.Page.TotalItems)

	resp := api.do(http.MethodPut, path+"/deletion", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	decodeView(t, api.do(http.MethodPost, path+"/deletion/3", nil))
	v = decodeView(t, api.do(http.MethodPut, path+"/deletion", nil))
	assert.Equal(t, []string{"Acme", `Say "Hi"`}, names(v))

	decodeView(t, api.do(http.MethodPost, path+"/deletion/3", nil))
	v = decodeView(t, api.do(http.MethodPut, path+"/deletion", nil))
	assert.Equal(t, 2, v.Page.TotalItems, "deleting again is a no-op")

	resp = api.do(http.MethodPost, path+"/deletion/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExport(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{})
	path := api.session()
	decodeView(t, api.do(http.MethodPut, path+"/query", map[string]any{"sortField": "id", "sortDirection": "desc"}))

	resp := api.do(http.MethodGet, path+"/export.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ID,Company,Industry,Location,Employees,Revenue,Founded\n"+
		`"5","Say ""Hi""","Food","Chicago","3","0","2015"`+"\n"+
		`"3","Globex","Finance","New York","50","2500000","1990"`+"\n"+
		`"1","Acme","Technology","Austin, Texas","10","1000","2000"`, string(body))

	resp = api.do(http.MethodGet, path+"/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx is a zip archive")
}

func TestSessionErrors(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{})

	resp := api.do(http.MethodGet, "/v1/sessions/not-a-uuid/view", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(http.MethodGet, "/v1/sessions/00000000-0000-0000-0000-000000000001/view", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	path := api.session()
	resp = api.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = api.do(http.MethodGet, path+"/view", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = api.do(http.MethodGet, path+"/export.csv", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{CORSOrigins: []string{"https://app.example.com"}})

	req, err := http.NewRequest(http.MethodOptions, api.server.URL+"/v1/industries", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	api := newTestAPI(t, true, RouterConfig{RateLimit: 2})

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = api.do(http.MethodGet, "/healthz", nil).StatusCode
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestMapServiceError(t *testing.T) {
	h := NewDirectoryHandler(nil, zaptest.NewLogger(t))

	tests := []struct {
		err    error
		status int
	}{
		{e.ErrLoading, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: company 4", e.ErrNotFound), http.StatusNotFound},
		{e.ErrNoSession, http.StatusNotFound},
		{fmt.Errorf("%w: page", e.ErrInvalidInput), http.StatusUnprocessableEntity},
		{e.ErrNotComposing, http.StatusConflict},
		{e.ErrNoPendingDelete, http.StatusConflict},
		{errors.New("database error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.mapServiceError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	h.mapServiceError(rec, errors.New("secret detail"))
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestAttachmentName(t *testing.T) {
	h := NewDirectoryHandler(nil, zaptest.NewLogger(t))
	h.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC) }

	assert.Equal(t, `attachment; filename="companies-20250203T040506Z.csv"`, h.attachment("csv"))
}
