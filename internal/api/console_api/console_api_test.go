package console_api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/CourierDesk/internal/integrations/backend/fake"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/projection"
	"github.com/BearBump/CourierDesk/internal/services/customers"
	"github.com/BearBump/CourierDesk/internal/services/dashboard"
	"github.com/BearBump/CourierDesk/internal/services/fleet"
	"github.com/BearBump/CourierDesk/internal/services/reports"
	"github.com/BearBump/CourierDesk/internal/services/session"
	"github.com/BearBump/CourierDesk/internal/services/shipments"
	"github.com/BearBump/CourierDesk/internal/services/transitions"
)

type memJournal struct {
	mu   sync.Mutex
	recs []models.TransitionRecord
}

func (j *memJournal) AppendTransition(ctx context.Context, rec models.TransitionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recs = append(j.recs, rec)
	return nil
}

func (j *memJournal) ListTransitions(ctx context.Context, shipmentID string, limit, offset int) ([]models.TransitionRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := []models.TransitionRecord{}
	for _, r := range j.recs {
		if r.ShipmentID == shipmentID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memStore struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *memStore) GetValue(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memStore) SetValue(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memStore) DeleteValue(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

type env struct {
	srv     *httptest.Server
	backend *fake.Backend
	journal *memJournal
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	fb := fake.New()
	p := projection.NewProjector(25000, "$")

	fl := fleet.New(fb, nil, 0)
	ws := shipments.New(fb, fl, p)
	require.NoError(t, ws.Reload(ctx))
	j := &memJournal{}
	tc := transitions.New(fb, ws).WithJournal(j).WithFleet(fl)

	cs := customers.New(fb)
	require.NoError(t, cs.Reload(ctx))
	ds := dashboard.New(fb, p)
	require.NoError(t, ds.Refresh(ctx))

	api := New(ws, tc, fl).
		WithJournal(j).
		WithCustomers(cs).
		WithDashboard(ds).
		WithReports(reports.New(fb)).
		WithSession(session.New(fb, &memStore{m: map[string]string{}}))

	r := chi.NewRouter()
	api.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &env{srv: srv, backend: fb, journal: j}
}

func (e *env) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestStatuses(t *testing.T) {
	e := newEnv(t)
	var tabs []tabInfo
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/statuses", nil, &tabs))
	require.Len(t, tabs, 8)
	require.Equal(t, models.TabBooked, tabs[0].Tab)
	require.Equal(t, models.PageBooked, tabs[0].Page)
	require.Equal(t, "Booked", tabs[0].Statuses[0].Display.Label)
}

func TestListShipments(t *testing.T) {
	e := newEnv(t)

	var v shipments.View
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/shipments?tab=booked&size=2", nil, &v))
	require.Equal(t, models.TabBooked, v.Tab)
	require.Equal(t, 3, v.Total)
	require.Equal(t, 2, v.TotalPages)
	require.Len(t, v.Rows, 2)
	require.Equal(t, 3, v.Counts[models.TabIssue])

	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/shipments?tab=BOOKED&page=99&size=2", nil, &v))
	require.Equal(t, 2, v.Page)
	require.Len(t, v.Rows, 1)

	var errBody errorBody
	require.Equal(t, http.StatusUnprocessableEntity, e.do(t, http.MethodGet, "/api/shipments?tab=nope", nil, &errBody))
}

func TestListShipments_BranchByName(t *testing.T) {
	e := newEnv(t)
	var all, byCode, byID shipments.View
	e.do(t, http.MethodGet, "/api/shipments?tab=BOOKED", nil, &all)
	e.do(t, http.MethodGet, "/api/shipments?tab=BOOKED&branch=cen", nil, &byCode)
	e.do(t, http.MethodGet, "/api/shipments?tab=BOOKED&branch=B1", nil, &byID)

	require.Equal(t, byID.Total, byCode.Total)
	for _, s := range byCode.Rows {
		require.Equal(t, "B1", s.BranchID)
	}
	require.LessOrEqual(t, byCode.Total, all.Total)
}

func TestGetShipment_NotFound(t *testing.T) {
	e := newEnv(t)
	var s models.ShipmentView
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/shipments/S001", nil, &s))
	require.Equal(t, models.StatusBooked, s.Status)
	require.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/shipments/NOPE", nil, nil))
}

func TestTransitionFlow(t *testing.T) {
	e := newEnv(t)

	var acts actionsResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/shipments/S001/actions", nil, &acts))
	require.Equal(t, []transitions.Action{transitions.ActionConfirmBranch}, acts.Actions)

	var errBody errorBody
	code := e.do(t, http.MethodPost, "/api/shipments/S001/transitions", transitionRequest{
		Action: transitions.ActionConfirmBranch,
		Draft:  transitions.Draft{BranchID: "B1"},
	}, &errBody)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, "Please select a vehicle", errBody.Error)
	require.Zero(t, e.backend.StatusUpdates)

	// B1 держит truck_2t=0, поэтому V3 (2.0t Truck) недоступен
	code = e.do(t, http.MethodPost, "/api/shipments/S001/transitions", transitionRequest{
		Action: transitions.ActionConfirmBranch,
		Draft:  transitions.Draft{BranchID: "B1", VehicleID: "V3"},
	}, &errBody)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, "Selected vehicle is not available at this branch", errBody.Error)
	require.Zero(t, e.backend.StatusUpdates)

	var res transitions.Result
	code = e.do(t, http.MethodPost, "/api/shipments/S001/transitions", transitionRequest{
		Action: transitions.ActionConfirmBranch,
		Draft:  transitions.Draft{BranchID: "B1", VehicleID: "V1"},
	}, &res)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, models.StatusBranchAssigned, res.To)
	require.Equal(t, models.TabAssignBranch, res.Next.Tab)
	require.Equal(t, models.StatusBranchAssigned, res.Shipment.Status)
	require.Equal(t, 1, e.backend.StatusUpdates)

	var v shipments.View
	e.do(t, http.MethodGet, "/api/shipments?tab=BOOKED", nil, &v)
	require.Equal(t, 2, v.Total)

	var recs []models.TransitionRecord
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/shipments/S001/transitions", nil, &recs))
	require.Len(t, recs, 1)
	require.Equal(t, "CONFIRM_BRANCH", recs[0].Action)
}

func TestTransition_Unavailable(t *testing.T) {
	e := newEnv(t)
	var errBody errorBody
	code := e.do(t, http.MethodPost, "/api/shipments/S001/transitions", transitionRequest{Action: transitions.ActionClose}, &errBody)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Zero(t, e.backend.StatusUpdates)
}

func TestTransition_BadBody(t *testing.T) {
	e := newEnv(t)
	resp, err := http.Post(e.srv.URL+"/api/shipments/S001/transitions", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestBranches(t *testing.T) {
	e := newEnv(t)

	var branches []branchResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/branches", nil, &branches))
	require.Len(t, branches, 2)
	require.NotEmpty(t, branches[0].Inventory)

	var vs []models.Vehicle
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/branches/B1/vehicles", nil, &vs))
	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	require.ElementsMatch(t, []string{"V1", "V2", "V4"}, ids)

	require.Equal(t, http.StatusUnprocessableEntity, e.do(t, http.MethodGet, "/api/branches/NOPE/vehicles", nil, nil))
}

func TestUpdateBranch(t *testing.T) {
	e := newEnv(t)

	var b branchResponse
	patch := map[string]any{"vehicles": map[string]any{"motorbike": 2, "truck_2t": 1, "van": 1}}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/branches/B1", patch, &b))
	require.Equal(t, "B1", b.ID)
	require.Equal(t, 1, b.Vehicles["truck_2t"])

	// 2.0t Truck теперь доступен для назначения
	var vs []models.Vehicle
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/branches/B1/vehicles", nil, &vs))
	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	require.ElementsMatch(t, []string{"V1", "V2", "V3", "V4"}, ids)

	var errBody errorBody
	bad := map[string]any{"vehicles": map[string]any{"hovercraft": 1}}
	require.Equal(t, http.StatusUnprocessableEntity, e.do(t, http.MethodPut, "/api/branches/B1", bad, &errBody))
	require.Equal(t, http.StatusConflict, e.do(t, http.MethodPut, "/api/branches/NOPE", map[string]any{"name": "x"}, &errBody))
	require.Equal(t, "Branch not found", errBody.Error)
}

func TestCustomers(t *testing.T) {
	e := newEnv(t)

	var v customers.View
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/customers?query=alice", nil, &v))
	require.Equal(t, 1, v.Total)
	require.Equal(t, models.CustomerActive, v.Rows[0].Status)

	var c models.Customer
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/customers/C1/toggle-status", nil, &c))
	require.Equal(t, models.CustomerBlocked, c.Status)

	e.do(t, http.MethodGet, "/api/customers?status=Blocked", nil, &v)
	require.Equal(t, 2, v.Total)
}

func TestDashboardAndReports(t *testing.T) {
	e := newEnv(t)

	var snap dashboard.Snapshot
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/dashboard", nil, &snap))
	require.Equal(t, 24, snap.TotalShipments)
	require.Len(t, snap.StatusChart.Labels, 8)

	var rep reports.Report
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/reports?type=branches", nil, &rep))
	require.Equal(t, "Shipments per branch", rep.Title)
	require.Equal(t, []string{"label", "shipments"}, rep.Columns)
	require.Equal(t, "24", rep.Totals[1])

	require.Equal(t, http.StatusUnprocessableEntity, e.do(t, http.MethodGet, "/api/reports?from=bad", nil, nil))

	resp, err := http.Get(e.srv.URL + "/api/reports.pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	require.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAuth(t *testing.T) {
	e := newEnv(t)

	var errBody errorBody
	code := e.do(t, http.MethodPost, "/api/auth/login", loginRequest{Email: "ops@example.com", Password: "wrong"}, &errBody)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, session.UnauthorizedMessage, errBody.Error)

	var remembered rememberedEmailResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/auth/remembered-email", nil, &remembered))
	require.Empty(t, remembered.Email)

	var s session.Session
	code = e.do(t, http.MethodPost, "/api/auth/login", loginRequest{Email: "ops@example.com", Password: "demo", Remember: true}, &s)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "fake-token", s.Token)

	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/auth/remembered-email", nil, &remembered))
	require.Equal(t, "ops@example.com", remembered.Email)

	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, "/api/auth/logout", nil, nil))

	code = e.do(t, http.MethodPost, "/api/auth/register", session.Registration{Name: "Ops", Email: "bad", Password: "secret1"}, &errBody)
	require.Equal(t, http.StatusUnprocessableEntity, code)

	code = e.do(t, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "ops@example.com"}, nil)
	require.Equal(t, http.StatusAccepted, code)
}

func TestNotWiredAndReload(t *testing.T) {
	fb := fake.New()
	p := projection.NewProjector(25000, "$")
	fl := fleet.New(fb, nil, 0)
	ws := shipments.New(fb, fl, p)

	triggered := 0
	api := New(ws, transitions.New(fb, ws), fl).WithReload(func() { triggered++ })
	r := chi.NewRouter()
	api.Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "customers not wired")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/shipments/reload", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, triggered)
}
