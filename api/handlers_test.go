package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ondahr/vacation-engine/api"
	"github.com/ondahr/vacation-engine/store/sqlite"
	"github.com/ondahr/vacation-engine/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestAPI(t *testing.T) (http.Handler, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	return api.NewRouter(api.NewHandler(store, log)), store
}

// doJSON performs a request against the router and decodes the response
// body into out (when non-nil).
func doJSON(t *testing.T, router http.Handler, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out),
			"body: %s", rec.Body.String())
	}
	return rec.Code
}

// createEmployee registers an employee hired the given number of years
// (plus two months) ago, so acquisition windows exist relative to the
// real clock the handlers run on.
func createEmployee(t *testing.T, router http.Handler, id string, yearsEmployed int) {
	t.Helper()
	hire := vacation.Today().AddYears(-yearsEmployed).AddMonths(-2)
	code := doJSON(t, router, http.MethodPost, "/api/employees", map[string]any{
		"id":             id,
		"name":           "Employee " + id,
		"hire_date":      hire.String(),
		"monthly_salary": "6000",
	}, nil)
	require.Equal(t, http.StatusCreated, code)
}

// materializeAndPickBalance generates periods for the employee and
// returns the ID of their most recent (bookable) balance.
func materializeAndPickBalance(t *testing.T, router http.Handler, employeeID string) string {
	t.Helper()

	code := doJSON(t, router, http.MethodPost, "/api/periods/materialize",
		map[string]any{"employee_ids": []string{employeeID}}, nil)
	require.Equal(t, http.StatusOK, code)

	var balances []api.BalanceDTO
	code = doJSON(t, router, http.MethodGet, "/api/employees/"+employeeID+"/balances", nil, &balances)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, balances)
	return balances[len(balances)-1].ID
}

// futureRange returns a start/end pair beginning in thirty days.
func futureRange(days int) (string, string) {
	start := vacation.Today().AddDays(30)
	return start.String(), start.AddDays(days - 1).String()
}

// =============================================================================
// EMPLOYEE ENDPOINT TESTS
// =============================================================================

func TestAPI_CreateAndGetEmployee(t *testing.T) {
	router, _ := newTestAPI(t)

	createEmployee(t, router, "emp-1", 1)

	var got api.EmployeeDTO
	code := doJSON(t, router, http.MethodGet, "/api/employees/emp-1", nil, &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "emp-1", got.ID)
	assert.Equal(t, "6000", got.MonthlySalary)
	assert.True(t, got.Active)
}

func TestAPI_GetEmployee_NotFound(t *testing.T) {
	router, _ := newTestAPI(t)

	code := doJSON(t, router, http.MethodGet, "/api/employees/nobody", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAPI_CreateEmployee_Validation(t *testing.T) {
	router, _ := newTestAPI(t)

	code := doJSON(t, router, http.MethodPost, "/api/employees",
		map[string]any{"name": "No ID"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = doJSON(t, router, http.MethodPost, "/api/employees",
		map[string]any{"id": "e1", "name": "Bad date", "hire_date": "01/02/2023"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// =============================================================================
// PERIOD GENERATION ENDPOINT TESTS
// =============================================================================

func TestAPI_MaterializePeriods(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 2)

	var eligible []api.EligibleEmployeeDTO
	code := doJSON(t, router, http.MethodGet, "/api/periods/eligible", nil, &eligible)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, eligible, 1)
	assert.Len(t, eligible[0].MissingPeriods, 2)

	var resp api.MaterializeResponse
	code = doJSON(t, router, http.MethodPost, "/api/periods/materialize",
		map[string]any{"employee_ids": []string{"emp-1"}}, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, resp.Created)

	// Second run is a no-op.
	code = doJSON(t, router, http.MethodPost, "/api/periods/materialize",
		map[string]any{"employee_ids": []string{"emp-1"}}, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, resp.Created)
}

func TestAPI_MaterializePeriods_EmptyListSweepsEligible(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	createEmployee(t, router, "emp-2", 1)

	var resp api.MaterializeResponse
	code := doJSON(t, router, http.MethodPost, "/api/periods/materialize",
		map[string]any{}, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, resp.Created)
}

// =============================================================================
// BOOKING ENDPOINT TESTS
// =============================================================================

func TestAPI_BookAndCancelVacation(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	balanceID := materializeAndPickBalance(t, router, "emp-1")
	start, end := futureRange(14)

	var booking api.BookingDTO
	code := doJSON(t, router, http.MethodPost, "/api/employees/emp-1/bookings",
		map[string]any{"balance_id": balanceID, "start_date": start, "end_date": end},
		&booking)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 14, booking.Days)
	assert.Equal(t, "scheduled", booking.Status)

	var balance api.BalanceDTO
	code = doJSON(t, router, http.MethodGet, "/api/balances/"+balanceID, nil, &balance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 16, balance.DaysRemaining)

	// Cancel restores the days.
	var cancelled api.BookingDTO
	code = doJSON(t, router, http.MethodPost, "/api/bookings/"+booking.ID+"/cancel", nil, &cancelled)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cancelled", cancelled.Status)

	code = doJSON(t, router, http.MethodGet, "/api/balances/"+balanceID, nil, &balance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 30, balance.DaysRemaining)

	// Double cancel is a validation error.
	code = doJSON(t, router, http.MethodPost, "/api/bookings/"+booking.ID+"/cancel", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_BookVacation_Overdraw(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	balanceID := materializeAndPickBalance(t, router, "emp-1")

	start := vacation.Today().AddDays(30)
	code := doJSON(t, router, http.MethodPost, "/api/employees/emp-1/bookings",
		map[string]any{
			"balance_id": balanceID,
			"start_date": start.String(),
			"end_date":   start.AddDays(30).String(), // 31 days > 30 entitled
		}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_BookVacation_UnknownBalance(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	start, end := futureRange(5)

	code := doJSON(t, router, http.MethodPost, "/api/employees/emp-1/bookings",
		map[string]any{"balance_id": "ghost", "start_date": start, "end_date": end}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// =============================================================================
// LEDGER ENDPOINT TESTS
// =============================================================================

func TestAPI_SellDays_AndCapConflict(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	balanceID := materializeAndPickBalance(t, router, "emp-1")

	var balance api.BalanceDTO
	code := doJSON(t, router, http.MethodPost, "/api/balances/"+balanceID+"/sell",
		map[string]any{"days": 8}, &balance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 8, balance.DaysSold)
	assert.Equal(t, 22, balance.DaysRemaining)

	// 8 + 5 breaches the annual cap of 10.
	code = doJSON(t, router, http.MethodPost, "/api/balances/"+balanceID+"/sell",
		map[string]any{"days": 5}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_AdjustEntitlement(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	balanceID := materializeAndPickBalance(t, router, "emp-1")

	var balance api.BalanceDTO
	code := doJSON(t, router, http.MethodPost, "/api/balances/"+balanceID+"/entitlement",
		map[string]any{"days_entitled": 24}, &balance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 24, balance.DaysEntitled)
	assert.Equal(t, 24, balance.DaysRemaining)
}

func TestAPI_CashOutQuote(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	balanceID := materializeAndPickBalance(t, router, "emp-1")

	var quote api.CashOutQuoteDTO
	code := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/balances/%s/cashout-quote?days=10", balanceID), nil, &quote)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, 10, quote.Days)
	assert.Equal(t, "200", quote.DailyRate)
	assert.Equal(t, "2666.67", quote.Total)
}

// =============================================================================
// COLLECTIVE ENDPOINT TESTS
// =============================================================================

func TestAPI_CollectiveLifecycle(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	createEmployee(t, router, "emp-2", 1)
	materializeAndPickBalance(t, router, "emp-1")
	materializeAndPickBalance(t, router, "emp-2")
	start, end := futureRange(10)

	var result api.CollectiveResultDTO
	code := doJSON(t, router, http.MethodPost, "/api/collective",
		map[string]any{"title": "Year-end shutdown", "start_date": start, "end_date": end},
		&result)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 2, result.BookedCount)
	assert.Empty(t, result.SkippedEmployeeIDs)

	var collectives []api.CollectiveDTO
	code = doJSON(t, router, http.MethodGet, "/api/collective", nil, &collectives)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, collectives, 1)

	var cancel api.CollectiveCancelDTO
	code = doJSON(t, router, http.MethodDelete, "/api/collective/"+result.CollectiveID, nil, &cancel)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, cancel.CancelledCount)

	code = doJSON(t, router, http.MethodGet, "/api/collective", nil, &collectives)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, collectives)
}

// =============================================================================
// REPORT ENDPOINT TESTS
// =============================================================================

func TestAPI_Reports(t *testing.T) {
	router, _ := newTestAPI(t)
	createEmployee(t, router, "emp-1", 1)
	balanceID := materializeAndPickBalance(t, router, "emp-1")

	code := doJSON(t, router, http.MethodPost, "/api/balances/"+balanceID+"/sell",
		map[string]any{"days": 5}, nil)
	require.Equal(t, http.StatusOK, code)

	var rows []api.BalanceRowDTO
	code = doJSON(t, router, http.MethodGet, "/api/reports/balances", nil, &rows)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, rows, 1)
	assert.Equal(t, "Employee emp-1", rows[0].EmployeeName)

	var totals api.TotalsDTO
	code = doJSON(t, router, http.MethodGet, "/api/reports/totals", nil, &totals)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, totals.Balances)
	assert.Equal(t, 25, totals.TotalDaysRemaining)
	assert.Equal(t, 5, totals.TotalDaysSold)
}

func TestAPI_Health(t *testing.T) {
	router, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
