package console_api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/BearBump/CourierDesk/internal/services/customers"
	"github.com/BearBump/CourierDesk/internal/services/dashboard"
	"github.com/BearBump/CourierDesk/internal/services/fleet"
	"github.com/BearBump/CourierDesk/internal/services/reports"
	"github.com/BearBump/CourierDesk/internal/services/session"
	"github.com/BearBump/CourierDesk/internal/services/shipments"
	"github.com/BearBump/CourierDesk/internal/services/transitions"
	"github.com/BearBump/CourierDesk/internal/shipstatus"
	"github.com/BearBump/CourierDesk/internal/viewfilter"
)

type JournalReader interface {
	ListTransitions(ctx context.Context, shipmentID string, limit, offset int) ([]models.TransitionRecord, error)
}

// ConsoleAPI is the JSON surface of the console. Shipments, transitions and
// fleet are required; the rest answer 503 until wired.
type ConsoleAPI struct {
	workspace   *shipments.Workspace
	transitions *transitions.Controller
	fleet       *fleet.Service

	journal   JournalReader
	customers *customers.Service
	dashboard *dashboard.Service
	reports   *reports.Service
	session   *session.Service
	reload    func()
}

func New(ws *shipments.Workspace, tc *transitions.Controller, fl *fleet.Service) *ConsoleAPI {
	return &ConsoleAPI{workspace: ws, transitions: tc, fleet: fl}
}

func (a *ConsoleAPI) WithJournal(j JournalReader) *ConsoleAPI        { a.journal = j; return a }
func (a *ConsoleAPI) WithCustomers(c *customers.Service) *ConsoleAPI { a.customers = c; return a }
func (a *ConsoleAPI) WithDashboard(d *dashboard.Service) *ConsoleAPI { a.dashboard = d; return a }
func (a *ConsoleAPI) WithReports(r *reports.Service) *ConsoleAPI     { a.reports = r; return a }
func (a *ConsoleAPI) WithSession(s *session.Service) *ConsoleAPI     { a.session = s; return a }

// WithReload sets what POST /api/shipments/reload triggers.
func (a *ConsoleAPI) WithReload(fn func()) *ConsoleAPI {
	a.reload = fn
	return a
}

func (a *ConsoleAPI) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/statuses", a.listStatuses)

		r.Get("/shipments", a.listShipments)
		r.Post("/shipments/reload", a.reloadShipments)
		r.Get("/shipments/{id}", a.getShipment)
		r.Get("/shipments/{id}/actions", a.listActions)
		r.Post("/shipments/{id}/transitions", a.executeTransition)
		r.Get("/shipments/{id}/transitions", a.listTransitions)

		r.Get("/branches", a.listBranches)
		r.Put("/branches/{id}", a.updateBranch)
		r.Get("/branches/{id}/vehicles", a.listBranchVehicles)

		r.Get("/customers", a.listCustomers)
		r.Post("/customers/{id}/toggle-status", a.toggleCustomer)

		r.Get("/dashboard", a.getDashboard)
		r.Get("/reports", a.getReport)
		r.Get("/reports.pdf", a.getReportPDF)

		r.Get("/auth/remembered-email", a.rememberedEmail)
		r.Post("/auth/login", a.login)
		r.Post("/auth/logout", a.logout)
		r.Post("/auth/register", a.register)
		r.Post("/auth/forgot-password", a.forgotPassword)
	})
}

type tabInfo struct {
	Tab      models.Tab   `json:"tab"`
	Page     models.Page  `json:"page"`
	Statuses []statusInfo `json:"statuses"`
}

type statusInfo struct {
	Status  models.Status      `json:"status"`
	Display shipstatus.Display `json:"display"`
}

func (a *ConsoleAPI) listStatuses(w http.ResponseWriter, r *http.Request) {
	tabs := shipstatus.Tabs()
	out := make([]tabInfo, 0, len(tabs))
	for _, tab := range tabs {
		page, _ := shipstatus.PageOf(tab)
		ti := tabInfo{Tab: tab, Page: page}
		for _, st := range shipstatus.TabStatuses(tab) {
			ti.Statuses = append(ti.Statuses, statusInfo{Status: st, Display: shipstatus.DisplayOf(st)})
		}
		out = append(out, ti)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *ConsoleAPI) listShipments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab := models.Tab(strings.ToUpper(q.Get("tab")))
	if tab == "" {
		tab = models.TabBooked
	}
	if !slices.Contains(shipstatus.Tabs(), tab) {
		writeError(w, apperr.Validationf("unknown tab %q", tab))
		return
	}

	f := viewfilter.Filters{
		Query:       q.Get("query"),
		ServiceType: q.Get("service"),
	}
	if sel := q.Get("branch"); sel != "" {
		f.BranchID = sel
		if branches, err := a.fleet.Branches(r.Context()); err == nil {
			if id, ok := viewfilter.BranchIDFor(branches, sel); ok {
				f.BranchID = id
			}
		}
	}

	writeJSON(w, http.StatusOK, a.workspace.View(tab, f, intParam(q.Get("page"), 1), intParam(q.Get("size"), 0)))
}

func (a *ConsoleAPI) reloadShipments(w http.ResponseWriter, r *http.Request) {
	if a.reload != nil {
		a.reload()
		writeJSON(w, http.StatusAccepted, map[string]bool{"triggered": true})
		return
	}
	if err := a.workspace.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.workspace.Stats())
}

func (a *ConsoleAPI) getShipment(w http.ResponseWriter, r *http.Request) {
	s, ok := a.workspace.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Shipment not found"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type actionsResponse struct {
	Status  models.Status        `json:"status"`
	Actions []transitions.Action `json:"actions"`
}

// listActions reads the draft flags from the query string:
// callStatus, driverReady, proofChecked.
func (a *ConsoleAPI) listActions(w http.ResponseWriter, r *http.Request) {
	s, ok := a.workspace.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Shipment not found"})
		return
	}
	q := r.URL.Query()
	d := transitions.Draft{
		CallStatus:   transitions.CallStatus(q.Get("callStatus")),
		DriverReady:  boolParam(q.Get("driverReady")),
		ProofChecked: boolParam(q.Get("proofChecked")),
	}
	writeJSON(w, http.StatusOK, actionsResponse{Status: s.Status, Actions: transitions.Available(s.Status, d)})
}

type transitionRequest struct {
	Action transitions.Action `json:"action"`
	Draft  transitions.Draft  `json:"draft"`
}

func (a *ConsoleAPI) executeTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := a.transitions.Execute(r.Context(), chi.URLParam(r, "id"), req.Action, req.Draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *ConsoleAPI) listTransitions(w http.ResponseWriter, r *http.Request) {
	if a.journal == nil {
		notWired(w, "journal")
		return
	}
	q := r.URL.Query()
	recs, err := a.journal.ListTransitions(r.Context(), chi.URLParam(r, "id"), intParam(q.Get("limit"), 50), intParam(q.Get("offset"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type branchResponse struct {
	models.Branch
	Inventory []fleet.Inventory `json:"inventory"`
}

func (a *ConsoleAPI) listBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := a.fleet.Branches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]branchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, branchResponse{Branch: b, Inventory: fleet.BranchInventory(b)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *ConsoleAPI) updateBranch(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	b, err := a.fleet.UpdateBranch(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branchResponse{Branch: b, Inventory: fleet.BranchInventory(b)})
}

func (a *ConsoleAPI) listBranchVehicles(w http.ResponseWriter, r *http.Request) {
	vs, err := a.fleet.Available(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

func (a *ConsoleAPI) listCustomers(w http.ResponseWriter, r *http.Request) {
	if a.customers == nil {
		notWired(w, "customers")
		return
	}
	q := r.URL.Query()
	if boolParam(q.Get("reload")) {
		// ошибка уже лежит во view
		_ = a.customers.Reload(r.Context())
	}
	f := customers.Filter{Query: q.Get("query"), Status: models.CustomerStatus(q.Get("status"))}
	writeJSON(w, http.StatusOK, a.customers.List(f, intParam(q.Get("page"), 1), intParam(q.Get("size"), 0)))
}

func (a *ConsoleAPI) toggleCustomer(w http.ResponseWriter, r *http.Request) {
	if a.customers == nil {
		notWired(w, "customers")
		return
	}
	c, err := a.customers.ToggleStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *ConsoleAPI) getDashboard(w http.ResponseWriter, r *http.Request) {
	if a.dashboard == nil {
		notWired(w, "dashboard")
		return
	}
	writeJSON(w, http.StatusOK, a.dashboard.Snapshot())
}

func reportParams(r *http.Request) reports.Params {
	q := r.URL.Query()
	return reports.Params{Type: q.Get("type"), From: q.Get("from"), To: q.Get("to")}
}

func (a *ConsoleAPI) getReport(w http.ResponseWriter, r *http.Request) {
	if a.reports == nil {
		notWired(w, "reports")
		return
	}
	rep, err := a.reports.Fetch(r.Context(), reportParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *ConsoleAPI) getReportPDF(w http.ResponseWriter, r *http.Request) {
	if a.reports == nil {
		notWired(w, "reports")
		return
	}
	rep, err := a.reports.Fetch(r.Context(), reportParams(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	if err := reports.WritePDF(w, rep); err != nil {
		slog.Error("write report pdf", "error", err.Error())
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (a *ConsoleAPI) login(w http.ResponseWriter, r *http.Request) {
	if a.session == nil {
		notWired(w, "session")
		return
	}
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := a.session.Login(r.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type rememberedEmailResponse struct {
	Email string `json:"email"`
}

// rememberedEmail prefills the login form.
func (a *ConsoleAPI) rememberedEmail(w http.ResponseWriter, r *http.Request) {
	if a.session == nil {
		notWired(w, "session")
		return
	}
	email, err := a.session.RememberedEmail(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rememberedEmailResponse{Email: email})
}

func (a *ConsoleAPI) logout(w http.ResponseWriter, r *http.Request) {
	if a.session == nil {
		notWired(w, "session")
		return
	}
	if err := a.session.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *ConsoleAPI) register(w http.ResponseWriter, r *http.Request) {
	if a.session == nil {
		notWired(w, "session")
		return
	}
	var req session.Registration
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := a.session.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *ConsoleAPI) forgotPassword(w http.ResponseWriter, r *http.Request) {
	if a.session == nil {
		notWired(w, "session")
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.session.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"sent": true})
}

func intParam(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func boolParam(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
