/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES:
  All dates cross the wire as "YYYY-MM-DD" strings. Money values are
  decimal strings to avoid float drift in payroll-adjacent numbers.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/ondahr/vacation-engine/vacation"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code,omitempty"`
	HireDate      string `json:"hire_date,omitempty"`
	Active        bool   `json:"active"`
	UnitID        string `json:"unit_id,omitempty"`
	DepartmentID  string `json:"department_id,omitempty"`
	MonthlySalary string `json:"monthly_salary"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	HireDate      string `json:"hire_date"`
	Active        *bool  `json:"active"`
	UnitID        string `json:"unit_id"`
	DepartmentID  string `json:"department_id"`
	MonthlySalary string `json:"monthly_salary"`
}

// =============================================================================
// BALANCES
// =============================================================================

// BalanceDTO represents an acquisition-period balance.
type BalanceDTO struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	DaysEntitled   int    `json:"days_entitled"`
	DaysTaken      int    `json:"days_taken"`
	DaysSold       int    `json:"days_sold"`
	DaysRemaining  int    `json:"days_remaining"`
	ExpirationDate string `json:"expiration_date"`
	Status         string `json:"status"`
	Version        int    `json:"version"`
}

// BalanceRowDTO is a balance enriched for reporting.
type BalanceRowDTO struct {
	BalanceDTO
	EmployeeName        string `json:"employee_name"`
	EmployeeCode        string `json:"employee_code,omitempty"`
	DaysUntilExpiration int    `json:"days_until_expiration"`
	Alert               string `json:"alert"`
}

// SellDaysRequest converts unused days into pay on a balance.
type SellDaysRequest struct {
	Days int `json:"days"`
}

// AdjustEntitlementRequest changes a balance's entitled days.
type AdjustEntitlementRequest struct {
	DaysEntitled int `json:"days_entitled"`
}

// CashOutQuoteDTO values a prospective day sale.
type CashOutQuoteDTO struct {
	Days                int    `json:"days"`
	DailyRate           string `json:"daily_rate"`
	Base                string `json:"base"`
	ConstitutionalThird string `json:"constitutional_third"`
	Total               string `json:"total"`
}

// =============================================================================
// PERIOD GENERATION
// =============================================================================

// EligibleEmployeeDTO lists an employee's unmaterialized periods.
type EligibleEmployeeDTO struct {
	EmployeeID     string      `json:"employee_id"`
	EmployeeName   string      `json:"employee_name"`
	MissingPeriods []PeriodDTO `json:"missing_periods"`
}

// PeriodDTO is an acquisition window.
type PeriodDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MaterializeRequest triggers period generation for a set of employees.
// An empty list means every eligible active employee.
type MaterializeRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

// MaterializeResponse reports how many balances were created.
type MaterializeResponse struct {
	Created int `json:"created"`
}

// =============================================================================
// BOOKINGS
// =============================================================================

// BookingDTO represents a vacation booking. Status is derived from the
// booking's dates at response time.
type BookingDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	BalanceID    string `json:"balance_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Days         int    `json:"days"`
	Kind         string `json:"kind"`
	CashOutDays  int    `json:"cash_out_days,omitempty"`
	CollectiveID string `json:"collective_id,omitempty"`
	Status       string `json:"status"`
	CancelledAt  string `json:"cancelled_at,omitempty"`
}

// CreateBookingRequest schedules an individual vacation.
type CreateBookingRequest struct {
	BalanceID   string `json:"balance_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CashOutDays int    `json:"cash_out_days"`
}

// =============================================================================
// COLLECTIVE VACATIONS
// =============================================================================

// CollectiveDTO represents a collective vacation action.
type CollectiveDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Days         int    `json:"days"`
	UnitID       string `json:"unit_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
}

// CreateCollectiveRequest schedules a collective vacation over a scope.
type CreateCollectiveRequest struct {
	Title        string `json:"title"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	UnitID       string `json:"unit_id"`
	DepartmentID string `json:"department_id"`
}

// CollectiveResultDTO reports the fan-out outcome, including the
// employees skipped for lack of bookable balance.
type CollectiveResultDTO struct {
	CollectiveID       string   `json:"collective_id"`
	BookedCount        int      `json:"booked_count"`
	BookingIDs         []string `json:"booking_ids"`
	SkippedEmployeeIDs []string `json:"skipped_employee_ids"`
}

// CollectiveCancelDTO reports a cascading cancellation.
type CollectiveCancelDTO struct {
	CancelledCount int `json:"cancelled_count"`
	CompletedKept  int `json:"completed_kept"`
}

// =============================================================================
// REPORTS
// =============================================================================

// ExpiryReportDTO buckets at-risk balances by urgency.
type ExpiryReportDTO struct {
	Urgent  []BalanceRowDTO `json:"urgent"`
	Warning []BalanceRowDTO `json:"warning"`
	Overdue []BalanceRowDTO `json:"overdue"`
}

// TotalsDTO is the org-wide dashboard summary.
type TotalsDTO struct {
	Balances           int `json:"balances"`
	TotalDaysRemaining int `json:"total_days_remaining"`
	TotalDaysTaken     int `json:"total_days_taken"`
	TotalDaysSold      int `json:"total_days_sold"`
	ExpiringSoon       int `json:"expiring_soon"`
	BookingsScheduled  int `json:"bookings_scheduled"`
	BookingsInProgress int `json:"bookings_in_progress"`
	BookingsCompleted  int `json:"bookings_completed"`
	BookingsCancelled  int `json:"bookings_cancelled"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toEmployeeDTO(e vacation.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		Code:          e.Code,
		Active:        e.Active,
		UnitID:        e.UnitID,
		DepartmentID:  e.DepartmentID,
		MonthlySalary: e.MonthlySalary.String(),
	}
	if e.HireDate != nil {
		dto.HireDate = e.HireDate.String()
	}
	return dto
}

func toBalanceDTO(b vacation.Balance) BalanceDTO {
	return BalanceDTO{
		ID:             string(b.ID),
		EmployeeID:     string(b.EmployeeID),
		PeriodStart:    b.PeriodStart.String(),
		PeriodEnd:      b.PeriodEnd.String(),
		DaysEntitled:   b.DaysEntitled,
		DaysTaken:      b.DaysTaken,
		DaysSold:       b.DaysSold,
		DaysRemaining:  b.DaysRemaining,
		ExpirationDate: b.ExpirationDate.String(),
		Status:         string(b.Status),
		Version:        b.Version,
	}
}

func toBalanceRowDTO(row vacation.BalanceRow) BalanceRowDTO {
	return BalanceRowDTO{
		BalanceDTO:          toBalanceDTO(row.Balance),
		EmployeeName:        row.EmployeeName,
		EmployeeCode:        row.EmployeeCode,
		DaysUntilExpiration: row.DaysUntilExpiration,
		Alert:               string(row.Alert),
	}
}

func toBalanceRowDTOs(rows []vacation.BalanceRow) []BalanceRowDTO {
	dtos := make([]BalanceRowDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toBalanceRowDTO(row))
	}
	return dtos
}

func toBookingDTO(bk vacation.Booking, today vacation.Date) BookingDTO {
	dto := BookingDTO{
		ID:           string(bk.ID),
		EmployeeID:   string(bk.EmployeeID),
		BalanceID:    string(bk.BalanceID),
		StartDate:    bk.StartDate.String(),
		EndDate:      bk.EndDate.String(),
		Days:         bk.Days,
		Kind:         string(bk.Kind),
		CashOutDays:  bk.CashOutDays,
		CollectiveID: string(bk.CollectiveID),
		Status:       string(bk.StatusAt(today)),
	}
	if bk.CancelledAt != nil {
		dto.CancelledAt = bk.CancelledAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toCollectiveDTO(cv vacation.CollectiveVacation) CollectiveDTO {
	return CollectiveDTO{
		ID:           string(cv.ID),
		Title:        cv.Title,
		StartDate:    cv.StartDate.String(),
		EndDate:      cv.EndDate.String(),
		Days:         cv.Days,
		UnitID:       cv.Scope.UnitID,
		DepartmentID: cv.Scope.DepartmentID,
	}
}
