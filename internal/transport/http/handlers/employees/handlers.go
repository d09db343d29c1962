package employeeshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"retailops/internal/domain/audit"
	"retailops/internal/domain/auth"
	"retailops/internal/domain/employees"
	"retailops/internal/domain/payroll"
	"retailops/internal/transport/http/api"
	"retailops/internal/transport/http/middleware"
	"retailops/internal/transport/http/shared"
)

type Handler struct {
	Store *employees.Store
	Audit *audit.Service
	Perms middleware.PermissionStore
}

func NewHandler(store *employees.Store, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Delete("/{employeeID}", h.handleDeactivate)
	})
}

type employeeRequest struct {
	UserID      string  `json:"userId"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Designation string  `json:"designation"`
	SalaryType  string  `json:"salaryType"`
	BaseSalary  float64 `json:"baseSalary"`
	JoiningDate string  `json:"joiningDate"`
	Status      string  `json:"status"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	list, total, err := h.Store.List(r.Context(), r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, map[string]any{"employees": list, "total": total}, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	emp, ok := h.decodeEmployee(w, r, reqID)
	if !ok {
		return
	}
	if emp.Status == "" {
		emp.Status = "active"
	}

	created, err := h.Store.Create(r.Context(), emp)
	if err != nil {
		writeEmployeesError(w, err, reqID)
		return
	}
	h.recordAudit(r, user.UserID, "employees.create", created.ID, nil, created)

	api.Created(w, created, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	emp, err := h.Store.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeEmployeesError(w, err, reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	before, err := h.Store.Get(r.Context(), employeeID)
	if err != nil {
		writeEmployeesError(w, err, reqID)
		return
	}

	emp, ok := h.decodeEmployee(w, r, reqID)
	if !ok {
		return
	}
	emp.ID = employeeID
	if emp.Status == "" {
		emp.Status = before.Status
	}

	updated, err := h.Store.Update(r.Context(), emp)
	if err != nil {
		writeEmployeesError(w, err, reqID)
		return
	}
	h.recordAudit(r, user.UserID, "employees.update", employeeID, before, updated)

	api.Success(w, updated, reqID)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.Store.Deactivate(r.Context(), employeeID); err != nil {
		writeEmployeesError(w, err, reqID)
		return
	}
	h.recordAudit(r, user.UserID, "employees.deactivate", employeeID, nil, nil)

	api.Success(w, map[string]string{"id": employeeID, "status": "inactive"}, reqID)
}

func (h *Handler) decodeEmployee(w http.ResponseWriter, r *http.Request, reqID string) (employees.Employee, bool) {
	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return employees.Employee{}, false
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.Required("email", payload.Email, "is required")
	v.Enum("salaryType", payload.SalaryType, payroll.SalaryTypes, "must be Monthly, Daily or Hourly")
	v.Required("salaryType", payload.SalaryType, "is required")
	v.NonNegative("baseSalary", payload.BaseSalary, "must not be negative")

	emp := employees.Employee{
		UserID:      payload.UserID,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       payload.Email,
		Phone:       payload.Phone,
		Designation: payload.Designation,
		SalaryType:  payload.SalaryType,
		BaseSalary:  payload.BaseSalary,
		Status:      payload.Status,
	}
	if payload.JoiningDate != "" {
		if date, ok := v.Date("joiningDate", payload.JoiningDate); ok {
			emp.JoiningDate = &date
		}
	}
	if v.Reject(w, reqID) {
		return employees.Employee{}, false
	}
	return emp, true
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	_ = h.Audit.Record(r.Context(), actorID, action, "employee", entityID,
		middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after)
}

func writeEmployeesError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, employees.ErrDuplicateEmail):
		api.Fail(w, http.StatusConflict, "duplicate_email", "an employee with this email already exists", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "employees_error", "employee operation failed", reqID)
	}
}
