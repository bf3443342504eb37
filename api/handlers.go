/*
handlers.go - HTTP API handlers for the vacation engine

PURPOSE:
  Exposes the vacation lifecycle engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                         List all employees
    POST   /api/employees                         Create/update employee
    GET    /api/employees/{id}                    Get employee details
    GET    /api/employees/{id}/balances           List balances
    GET    /api/employees/{id}/bookings           List bookings
    POST   /api/employees/{id}/bookings           Book a vacation

  Periods:
    GET    /api/periods/eligible                  Employees with missing periods
    POST   /api/periods/materialize               Create missing balances

  Balances:
    GET    /api/balances/{id}                     Get a balance
    POST   /api/balances/{id}/sell                Sell days for pay
    POST   /api/balances/{id}/entitlement         Adjust entitled days
    GET    /api/balances/{id}/cashout-quote       Value a prospective sale

  Bookings:
    GET    /api/bookings/{id}                     Get a booking
    POST   /api/bookings/{id}/cancel              Cancel and restore days

  Collective:
    GET    /api/collective                        List collective actions
    POST   /api/collective                        Schedule collective vacation
    DELETE /api/collective/{id}                   Cascade-cancel

  Reports:
    GET    /api/reports/balances                  Enriched balance report
    GET    /api/reports/expiring                  Expiry-risk buckets
    GET    /api/reports/totals                    Org-wide summary

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate period, version race, double cancel)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - seed.go: Demo dataset loader
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ondahr/vacation-engine/store/sqlite"
	"github.com/ondahr/vacation-engine/vacation"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Generator *vacation.Generator
	Ledger    *vacation.Ledger
	Scheduler *vacation.Scheduler
	Reporter  *vacation.Reporter
	Log       *logrus.Logger
}

// NewHandler wires the engine components around the given store.
func NewHandler(store *sqlite.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Store:     store,
		Generator: vacation.NewGenerator(store, store),
		Ledger:    vacation.NewLedger(store),
		Scheduler: vacation.NewScheduler(store, store),
		Reporter:  vacation.NewReporter(store, store),
		Log:       log,
	}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeError(w, "failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee record.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	e := vacation.Employee{
		ID:           vacation.EmployeeID(req.ID),
		Name:         req.Name,
		Code:         req.Code,
		Active:       true,
		UnitID:       req.UnitID,
		DepartmentID: req.DepartmentID,
	}
	if req.Active != nil {
		e.Active = *req.Active
	}
	if req.HireDate != "" {
		d, err := vacation.ParseDate(req.HireDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid hire_date, expected YYYY-MM-DD", err)
			return
		}
		e.HireDate = &d
	}
	if req.MonthlySalary != "" {
		salary, err := decimal.NewFromString(req.MonthlySalary)
		if err != nil || salary.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid monthly_salary", err)
			return
		}
		e.MonthlySalary = salary
	}

	if err := h.Store.SaveEmployee(r.Context(), e); err != nil {
		h.writeError(w, "failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))

	e, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeError(w, "failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*e))
}

// ListEmployeeBalances returns an employee's balances ordered by period.
// GET /api/employees/{id}/balances
func (h *Handler) ListEmployeeBalances(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	ctx := r.Context()

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.writeError(w, "failed to get employee", err)
		return
	}

	balances, err := h.Store.ListBalancesByEmployee(ctx, id)
	if err != nil {
		h.writeError(w, "failed to list balances", err)
		return
	}

	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, toBalanceDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEmployeeBookings returns an employee's bookings.
// GET /api/employees/{id}/bookings
func (h *Handler) ListEmployeeBookings(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))
	ctx := r.Context()

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		h.writeError(w, "failed to get employee", err)
		return
	}

	bookings, err := h.Store.ListBookingsByEmployee(ctx, id)
	if err != nil {
		h.writeError(w, "failed to list bookings", err)
		return
	}

	today := vacation.Today()
	dtos := make([]BookingDTO, 0, len(bookings))
	for _, bk := range bookings {
		dtos = append(dtos, toBookingDTO(bk, today))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// BookVacation schedules an individual vacation against a balance.
// POST /api/employees/{id}/bookings
func (h *Handler) BookVacation(w http.ResponseWriter, r *http.Request) {
	id := vacation.EmployeeID(chi.URLParam(r, "id"))

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	start, err := vacation.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD", err)
		return
	}
	end, err := vacation.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD", err)
		return
	}

	bk, err := h.Scheduler.BookVacation(r.Context(), id,
		vacation.BalanceID(req.BalanceID), start, end,
		vacation.BookingOptions{CashOutDays: req.CashOutDays})
	if err != nil {
		h.writeError(w, "failed to book vacation", err)
		return
	}

	bookingsCreated.WithLabelValues(string(vacation.KindIndividual)).Inc()
	if req.CashOutDays > 0 {
		daysSold.Add(float64(req.CashOutDays))
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(*bk, vacation.Today()))
}

// =============================================================================
// PERIOD GENERATION ENDPOINTS
// =============================================================================

// ListEligible returns active employees with unmaterialized periods.
// GET /api/periods/eligible
func (h *Handler) ListEligible(w http.ResponseWriter, r *http.Request) {
	eligible, err := h.Generator.ListEligible(r.Context())
	if err != nil {
		h.writeError(w, "failed to list eligible employees", err)
		return
	}

	dtos := make([]EligibleEmployeeDTO, 0, len(eligible))
	for _, el := range eligible {
		dto := EligibleEmployeeDTO{
			EmployeeID:     string(el.Employee.ID),
			EmployeeName:   el.Employee.Name,
			MissingPeriods: make([]PeriodDTO, 0, len(el.MissingPeriods)),
		}
		for _, p := range el.MissingPeriods {
			dto.MissingPeriods = append(dto.MissingPeriods, PeriodDTO{
				Start: p.Start.String(),
				End:   p.End.String(),
			})
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MaterializePeriods creates balances for elapsed acquisition windows.
// An empty employee list sweeps every eligible active employee.
// POST /api/periods/materialize
func (h *Handler) MaterializePeriods(w http.ResponseWriter, r *http.Request) {
	var req MaterializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	ctx := r.Context()

	ids := make([]vacation.EmployeeID, 0, len(req.EmployeeIDs))
	for _, id := range req.EmployeeIDs {
		ids = append(ids, vacation.EmployeeID(id))
	}
	if len(ids) == 0 {
		eligible, err := h.Generator.ListEligible(ctx)
		if err != nil {
			h.writeError(w, "failed to list eligible employees", err)
			return
		}
		for _, el := range eligible {
			ids = append(ids, el.Employee.ID)
		}
	}

	created, err := h.Generator.MaterializePeriods(ctx, ids)
	if err != nil {
		h.writeError(w, "failed to materialize periods", err)
		return
	}

	periodsMaterialized.Add(float64(created))
	h.Log.WithFields(logrus.Fields{
		"employees": len(ids),
		"created":   created,
	}).Info("materialized acquisition periods")
	writeJSON(w, http.StatusOK, MaterializeResponse{Created: created})
}

// =============================================================================
// BALANCE ENDPOINTS
// =============================================================================

// GetBalance returns a single balance.
// GET /api/balances/{id}
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := vacation.BalanceID(chi.URLParam(r, "id"))

	b, err := h.Store.GetBalance(r.Context(), id)
	if err != nil {
		h.writeError(w, "failed to get balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// SellDays converts unused days into pay on a balance.
// POST /api/balances/{id}/sell
func (h *Handler) SellDays(w http.ResponseWriter, r *http.Request) {
	id := vacation.BalanceID(chi.URLParam(r, "id"))

	var req SellDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	b, err := h.Ledger.SellDays(r.Context(), id, req.Days)
	if err != nil {
		h.writeError(w, "failed to sell days", err)
		return
	}

	daysSold.Add(float64(req.Days))
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// AdjustEntitlement sets a balance's entitled days, e.g. after an
// unjustified-absence review reduces the statutory entitlement.
// POST /api/balances/{id}/entitlement
func (h *Handler) AdjustEntitlement(w http.ResponseWriter, r *http.Request) {
	id := vacation.BalanceID(chi.URLParam(r, "id"))

	var req AdjustEntitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	b, err := h.Ledger.AdjustEntitlement(r.Context(), id, req.DaysEntitled)
	if err != nil {
		h.writeError(w, "failed to adjust entitlement", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// CashOutQuote values a prospective day sale using the balance owner's
// salary. Query param: days (1..10).
// GET /api/balances/{id}/cashout-quote?days=N
func (h *Handler) CashOutQuote(w http.ResponseWriter, r *http.Request) {
	id := vacation.BalanceID(chi.URLParam(r, "id"))
	ctx := r.Context()

	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid days query parameter", err)
		return
	}

	b, err := h.Store.GetBalance(ctx, id)
	if err != nil {
		h.writeError(w, "failed to get balance", err)
		return
	}
	e, err := h.Store.GetEmployee(ctx, b.EmployeeID)
	if err != nil {
		h.writeError(w, "failed to get employee", err)
		return
	}

	quote, err := vacation.QuoteCashOut(e.MonthlySalary, days)
	if err != nil {
		h.writeError(w, "failed to quote cash-out", err)
		return
	}

	writeJSON(w, http.StatusOK, CashOutQuoteDTO{
		Days:                quote.Days,
		DailyRate:           quote.DailyRate.String(),
		Base:                quote.Base.String(),
		ConstitutionalThird: quote.ConstitutionalThird.String(),
		Total:               quote.Total.String(),
	})
}

// =============================================================================
// BOOKING ENDPOINTS
// =============================================================================

// GetBooking returns a single booking with its derived status.
// GET /api/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := vacation.BookingID(chi.URLParam(r, "id"))

	bk, err := h.Store.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, "failed to get booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(*bk, vacation.Today()))
}

// CancelBooking cancels a booking and restores the consumed days.
// POST /api/bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := vacation.BookingID(chi.URLParam(r, "id"))

	bk, err := h.Scheduler.CancelVacation(r.Context(), id)
	if err != nil {
		h.writeError(w, "failed to cancel booking", err)
		return
	}

	bookingsCancelled.Inc()
	writeJSON(w, http.StatusOK, toBookingDTO(*bk, vacation.Today()))
}

// =============================================================================
// COLLECTIVE VACATION ENDPOINTS
// =============================================================================

// ListCollectives returns all collective vacation actions.
// GET /api/collective
func (h *Handler) ListCollectives(w http.ResponseWriter, r *http.Request) {
	collectives, err := h.Store.ListCollectives(r.Context())
	if err != nil {
		h.writeError(w, "failed to list collective vacations", err)
		return
	}

	dtos := make([]CollectiveDTO, 0, len(collectives))
	for _, cv := range collectives {
		dtos = append(dtos, toCollectiveDTO(cv))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// BookCollective fans a shared date range out over a scope of employees.
// Partial success: employees without a bookable balance are skipped and
// reported, never dropped silently.
// POST /api/collective
func (h *Handler) BookCollective(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required", nil)
		return
	}

	start, err := vacation.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD", err)
		return
	}
	end, err := vacation.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD", err)
		return
	}

	scope := vacation.ScopeFilter{UnitID: req.UnitID, DepartmentID: req.DepartmentID}
	result, err := h.Scheduler.BookCollective(r.Context(), req.Title, start, end, scope)
	if err != nil {
		h.writeError(w, "failed to book collective vacation", err)
		return
	}

	bookingsCreated.WithLabelValues(string(vacation.KindCollective)).
		Add(float64(result.BookedCount))
	h.Log.WithFields(logrus.Fields{
		"collective_id": result.CollectiveID,
		"booked":        result.BookedCount,
		"skipped":       len(result.SkippedEmployeeIDs),
	}).Info("collective vacation scheduled")

	dto := CollectiveResultDTO{
		CollectiveID:       string(result.CollectiveID),
		BookedCount:        result.BookedCount,
		BookingIDs:         make([]string, 0, len(result.BookingIDs)),
		SkippedEmployeeIDs: make([]string, 0, len(result.SkippedEmployeeIDs)),
	}
	for _, id := range result.BookingIDs {
		dto.BookingIDs = append(dto.BookingIDs, string(id))
	}
	for _, id := range result.SkippedEmployeeIDs {
		dto.SkippedEmployeeIDs = append(dto.SkippedEmployeeIDs, string(id))
	}
	writeJSON(w, http.StatusCreated, dto)
}

// CancelCollective cascade-cancels a collective action's bookings.
// Completed bookings are left untouched and counted separately.
// DELETE /api/collective/{id}
func (h *Handler) CancelCollective(w http.ResponseWriter, r *http.Request) {
	id := vacation.CollectiveID(chi.URLParam(r, "id"))

	result, err := h.Scheduler.CancelCollective(r.Context(), id)
	if err != nil {
		h.writeError(w, "failed to cancel collective vacation", err)
		return
	}

	bookingsCancelled.Add(float64(result.CancelledCount))
	writeJSON(w, http.StatusOK, CollectiveCancelDTO{
		CancelledCount: result.CancelledCount,
		CompletedKept:  result.CompletedKept,
	})
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// BalanceReport returns every balance enriched with employee identity
// and expiry-risk classification.
// GET /api/reports/balances
func (h *Handler) BalanceReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Reporter.BalanceReport(r.Context())
	if err != nil {
		h.writeError(w, "failed to build balance report", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceRowDTOs(rows))
}

// ExpiringBalances returns at-risk balances bucketed by urgency.
// GET /api/reports/expiring
func (h *Handler) ExpiringBalances(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reporter.ExpiringBalances(r.Context())
	if err != nil {
		h.writeError(w, "failed to build expiry report", err)
		return
	}
	writeJSON(w, http.StatusOK, ExpiryReportDTO{
		Urgent:  toBalanceRowDTOs(report.Urgent),
		Warning: toBalanceRowDTOs(report.Warning),
		Overdue: toBalanceRowDTOs(report.Overdue),
	})
}

// OrgTotals returns the org-wide dashboard summary.
// GET /api/reports/totals
func (h *Handler) OrgTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Reporter.OrgTotals(r.Context())
	if err != nil {
		h.writeError(w, "failed to build totals", err)
		return
	}
	writeJSON(w, http.StatusOK, TotalsDTO{
		Balances:           totals.Balances,
		TotalDaysRemaining: totals.TotalDaysRemaining,
		TotalDaysTaken:     totals.TotalDaysTaken,
		TotalDaysSold:      totals.TotalDaysSold,
		ExpiringSoon:       totals.ExpiringSoon,
		BookingsScheduled:  totals.BookingsScheduled,
		BookingsInProgress: totals.BookingsInProgress,
		BookingsCompleted:  totals.BookingsCompleted,
		BookingsCancelled:  totals.BookingsCancelled,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	switch {
	case vacation.IsValidation(err):
		writeError(w, http.StatusBadRequest, message, err)
	case vacation.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case vacation.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
