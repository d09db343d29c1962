package payrollhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"retailops/internal/domain/audit"
	"retailops/internal/domain/auth"
	"retailops/internal/domain/payroll"
	"retailops/internal/transport/http/api"
	"retailops/internal/transport/http/middleware"
	"retailops/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *payroll.Service, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Post("/attendance", h.handleMarkAttendance)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/attendance/{employeeID}", h.handleMonthAttendance)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/attendance/{employeeID}/summary", h.handleAttendanceSummary)

		r.With(middleware.RequirePermission(auth.PermPayrollGenerate, h.Perms)).Post("/salaries/generate", h.handleGenerateSalary)
		r.With(middleware.RequirePermission(auth.PermPayrollGenerate, h.Perms)).Post("/salaries/bulk-generate", h.handleBulkGenerate)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/salaries", h.handleListSalaries)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/salaries/{salaryID}", h.handleGetSalary)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/employees/{employeeID}/salaries", h.handleEmployeeSalaries)

		r.With(middleware.RequirePermission(auth.PermPayrollPay, h.Perms)).Post("/salaries/{salaryID}/payment", h.handleRecordPayment)
		r.With(middleware.RequirePermission(auth.PermPayrollPay, h.Perms)).Post("/salaries/{salaryID}/hold", h.handleHoldSalary)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/salaries/{salaryID}/payslip", h.handleDownloadPayslip)
	})
}

type attendanceRequest struct {
	EmployeeID   string  `json:"employeeId"`
	Date         string  `json:"attendanceDate"`
	Status       string  `json:"status"`
	WorkingHours float64 `json:"workingHours"`
}

func (h *Handler) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("status", payload.Status, "is required")
	v.Enum("status", payload.Status, payroll.AttendanceStatuses, "must be a valid attendance status")
	date, _ := v.Date("attendanceDate", payload.Date)
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Service.MarkAttendance(r.Context(), payroll.AttendanceRecord{
		EmployeeID:   payload.EmployeeID,
		Date:         date,
		Status:       payload.Status,
		WorkingHours: payload.WorkingHours,
	})
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleMonthAttendance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	month, year, ok := parsePeriod(w, r, reqID)
	if !ok {
		return
	}

	records, err := h.Service.MonthAttendance(r.Context(), employeeID, month, year)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"records": records}, reqID)
}

func (h *Handler) handleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	month, year, ok := parsePeriod(w, r, reqID)
	if !ok {
		return
	}

	summary, err := h.Service.AttendanceSummary(r.Context(), employeeID, month, year)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	api.Success(w, summary, reqID)
}

type generateRequest struct {
	EmployeeID  string              `json:"employeeId"`
	Month       int                 `json:"month"`
	Year        int                 `json:"year"`
	Adjustments payroll.Adjustments `json:"adjustments"`
}

func (h *Handler) handleGenerateSalary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Range("month", payload.Month, 1, 12, "must be between 1 and 12")
	v.Range("year", payload.Year, 2000, 2100, "must be a plausible year")
	if v.Reject(w, reqID) {
		return
	}

	rec, err := h.Service.GenerateSalary(r.Context(), payload.EmployeeID, payload.Month, payload.Year, payload.Adjustments)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	h.recordAudit(r, user.UserID, "payroll.salary.generate", "salary_record", rec.ID, nil, rec)

	api.Created(w, rec, reqID)
}

type bulkGenerateRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (h *Handler) handleBulkGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload bulkGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Range("month", payload.Month, 1, 12, "must be between 1 and 12")
	v.Range("year", payload.Year, 2000, 2100, "must be a plausible year")
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.BulkGenerate(r.Context(), payload.Month, payload.Year)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	h.recordAudit(r, user.UserID, "payroll.salary.bulk_generate", "salary_record", "", payload, result)

	api.Success(w, result, reqID)
}

func (h *Handler) handleListSalaries(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	month, year, ok := parsePeriod(w, r, reqID)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 100)

	records, total, err := h.Service.Salaries(r.Context(), month, year, page.Limit, page.Offset)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"salaries": records, "total": total}, reqID)
}

func (h *Handler) handleGetSalary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	rec, err := h.Service.Salary(r.Context(), chi.URLParam(r, "salaryID"))
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleEmployeeSalaries(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 24, 100)

	records, err := h.Service.EmployeeSalaries(r.Context(), chi.URLParam(r, "employeeID"), page.Limit)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"salaries": records}, reqID)
}

type paymentRequest struct {
	PaymentMode          string `json:"paymentMode"`
	TransactionReference string `json:"transactionReference"`
	Notes                string `json:"notes"`
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	salaryID := chi.URLParam(r, "salaryID")

	var payload paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	rec, err := h.Service.RecordPayment(r.Context(), salaryID, payload.PaymentMode, payload.TransactionReference, payload.Notes)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	h.recordAudit(r, user.UserID, "payroll.salary.pay", "salary_record", salaryID, nil, rec)

	api.Success(w, rec, reqID)
}

type holdRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) handleHoldSalary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	salaryID := chi.URLParam(r, "salaryID")

	var payload holdRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	rec, err := h.Service.HoldSalary(r.Context(), salaryID, payload.Notes)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	h.recordAudit(r, user.UserID, "payroll.salary.hold", "salary_record", salaryID, nil, rec)

	api.Success(w, rec, reqID)
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	salaryID := chi.URLParam(r, "salaryID")

	path, err := h.Service.GeneratePayslipPDF(r.Context(), salaryID)
	if err != nil {
		writePayrollError(w, err, reqID)
		return
	}
	data, err := h.Service.ReadPayslip(path)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_read_failed", "failed to read payslip", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="payslip-`+filepath.Base(salaryID)+`.pdf"`)
	_, _ = w.Write(data)
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	_ = h.Audit.Record(r.Context(), actorID, action, entityType, entityID,
		middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after)
}

func parsePeriod(w http.ResponseWriter, r *http.Request, reqID string) (int, int, bool) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month must be between 1 and 12", reqID)
		return 0, 0, false
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "year must be a plausible year", reqID)
		return 0, 0, false
	}
	return month, year, true
}

func writePayrollError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, payroll.ErrSalaryExists):
		api.Fail(w, http.StatusConflict, "salary_exists", "salary already generated for this employee and period", reqID)
	case errors.Is(err, payroll.ErrSalaryNotFound):
		api.Fail(w, http.StatusNotFound, "salary_not_found", "salary record not found", reqID)
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, payroll.ErrNotPending):
		api.Fail(w, http.StatusConflict, "not_pending", "salary is not pending payment", reqID)
	case errors.Is(err, payroll.ErrInactiveEmployee):
		api.Fail(w, http.StatusUnprocessableEntity, "inactive_employee", "employee is not active", reqID)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "invalid_period", "invalid month or year", reqID)
	case errors.Is(err, payroll.ErrUnknownSalaryType):
		api.Fail(w, http.StatusUnprocessableEntity, "unknown_salary_type", "employee has an unknown salary type", reqID)
	case errors.Is(err, payroll.ErrInvalidAttendance):
		api.Fail(w, http.StatusBadRequest, "invalid_attendance", "invalid attendance record", reqID)
	case errors.Is(err, payroll.ErrPayslipUnavailable):
		api.Fail(w, http.StatusConflict, "payslip_unavailable", "payslip can only be generated for paid salaries", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "payroll_error", "payroll operation failed", reqID)
	}
}
