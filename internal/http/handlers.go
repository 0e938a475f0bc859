package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rentledger/internal/core"
	"rentledger/internal/services"
	"rentledger/internal/storage"
)

// ── Auth ──────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, failMsg("Invalid username or password."))
			return
		}
		writeStoreError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, failMsg("Invalid username or password."))
		return
	}

	session := SessionUser{ID: user.ID, Username: user.Username, Role: user.Role}
	if err := s.sessions.issue(w, session); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "user": session})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.clear(w)
	writeJSON(w, okResponse())
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessions.userFromRequest(r)
	if err != nil {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, user)
}

// ── Users ─────────────────────────────────────────────────────

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, users)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, failMsg("Username and password are required."))
		return
	}
	if req.Role == "" {
		req.Role = "manager"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	if _, err := s.store.CreateUser(r.Context(), req.Username, string(hash), req.Role); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeJSON(w, failMsg("Username already exists."))
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, failMsg("Invalid id."))
		return
	}
	if user, ok := sessionUserFrom(r.Context()); ok && user.ID == id {
		writeJSON(w, failMsg("Cannot delete yourself."))
		return
	}
	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

// ── Settings ──────────────────────────────────────────────────

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if !decodeJSON(w, r, &values) {
		return
	}
	if err := s.store.SetSettings(r.Context(), values); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

// ── Properties ────────────────────────────────────────────────

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.store.ListProperties(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, props)
}

type propertyRequest struct {
	Name        string     `json:"name"`
	Label       string     `json:"label"`
	Address     string     `json:"address"`
	BaseRent    core.Money `json:"base_rent"`
	TenantID    int64      `json:"tenant_id"`
	TenantName  string     `json:"tenant_name"`
	TenantEmail string     `json:"tenant_email"`
	TenantPhone string     `json:"tenant_phone"`
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Label == "" {
		req.Label = req.Name
	}

	prop := core.Property{
		Name:     req.Name,
		Label:    req.Label,
		Address:  req.Address,
		BaseRent: req.BaseRent,
	}
	tenant := core.Tenant{
		Name:  req.TenantName,
		Email: req.TenantEmail,
		Phone: req.TenantPhone,
	}
	if err := prop.Validate(); err != nil {
		writeJSON(w, failMsg("Property name is required."))
		return
	}
	if err := tenant.Validate(); err != nil {
		writeJSON(w, failMsg("Tenant name and email are required."))
		return
	}

	propID, _, err := s.store.CreateProperty(r.Context(), prop, tenant)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "id": propID})
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, failMsg("Invalid id."))
		return
	}
	var req propertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prop := core.Property{
		ID:       id,
		Name:     req.Name,
		Label:    req.Label,
		Address:  req.Address,
		BaseRent: req.BaseRent,
	}
	var tenant *core.Tenant
	if req.TenantID > 0 {
		tenant = &core.Tenant{
			ID:    req.TenantID,
			Name:  req.TenantName,
			Email: req.TenantEmail,
			Phone: req.TenantPhone,
		}
	}

	if err := s.store.UpdateProperty(r.Context(), prop, tenant); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, failMsg("Property not found."))
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, failMsg("Invalid id."))
		return
	}
	if err := s.store.DeleteProperty(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

// ── Payments ──────────────────────────────────────────────────

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := queryInt64(r, "property_id")
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, failMsg("property_id is required."))
		return
	}
	payments, err := s.store.ListPayments(r.Context(), propertyID, queryYear(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if payments == nil {
		payments = []core.Payment{}
	}
	writeJSON(w, payments)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req services.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.payments.Record(r.Context(), req); err != nil {
		if errors.Is(err, core.ErrInvalidMonth) {
			writeJSON(w, failMsg("Invalid month."))
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

// ── Expenses ──────────────────────────────────────────────────

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := queryInt64(r, "property_id")
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, failMsg("property_id is required."))
		return
	}
	expenses, err := s.store.ListExpenses(r.Context(), propertyID, queryYear(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, expenses)
}

type expenseRequest struct {
	PropertyID  int64      `json:"property_id"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense := core.Expense{
		PropertyID:  req.PropertyID,
		Month:       req.Month,
		Year:        req.Year,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		ExpenseDate: time.Now().Format("2006-01-02"),
	}
	if err := expense.Validate(); err != nil {
		writeJSON(w, failMsg(validationMessage(err)))
		return
	}

	if _, err := s.store.AddExpense(r.Context(), expense); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, failMsg("Invalid id."))
		return
	}
	if err := s.store.DeleteExpense(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

// ── Reports ───────────────────────────────────────────────────

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.reports.Dashboard(r.Context(), queryYear(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, dash)
}

func (s *Server) handleTaxReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.TaxReport(r.Context(), queryYear(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// ── Leases ────────────────────────────────────────────────────

func (s *Server) handleListLeases(w http.ResponseWriter, r *http.Request) {
	leases, err := s.store.ListTenantLeases(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if leases == nil {
		leases = []core.TenantLease{}
	}
	writeJSON(w, leases)
}

type leaseRequest struct {
	TenantID   int64      `json:"tenant_id"`
	PropertyID int64      `json:"property_id"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	RentAmount core.Money `json:"rent_amount"`
	Notes      string     `json:"notes"`
}

func (s *Server) handleCreateLease(w http.ResponseWriter, r *http.Request) {
	var req leaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lease := core.Lease{
		TenantID:   req.TenantID,
		PropertyID: req.PropertyID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		RentAmount: req.RentAmount,
		Notes:      req.Notes,
	}
	if err := lease.Validate(); err != nil {
		writeJSON(w, failMsg("Start and end dates are required."))
		return
	}

	if _, err := s.store.CreateLease(r.Context(), lease); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, okResponse())
}

// handleLeaseAlerts reports active leases ending inside the next 60 days.
func (s *Server) handleLeaseAlerts(w http.ResponseWriter, r *http.Request) {
	today := time.Now()
	alerts, err := s.store.LeaseAlerts(r.Context(),
		today.Format("2006-01-02"),
		today.AddDate(0, 0, 60).Format("2006-01-02"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []core.LeaseAlert{}
	}
	writeJSON(w, alerts)
}

// ── Receipts & email log ──────────────────────────────────────

type emailReceiptRequest struct {
	PropertyID int64 `json:"property_id"`
	TenantID   int64 `json:"tenant_id"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
}

func (s *Server) handleEmailReceipt(w http.ResponseWriter, r *http.Request) {
	var req emailReceiptRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := s.receipts.EmailReceipt(r.Context(), req.PropertyID, req.TenantID, req.Month, req.Year)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeJSON(w, failMsg("Property or tenant not found."))
		case errors.Is(err, core.ErrInvalidMonth):
			writeJSON(w, failMsg("Invalid month."))
		default:
			writeStoreError(w, r, err)
		}
		return
	}

	writeJSON(w, map[string]any{
		"ok":       true,
		"gmailUrl": receipt.GmailURL,
		"msg":      fmt.Sprintf("Receipt ready for %s", receipt.To),
	})
}

func (s *Server) handleEmailLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListEmailLog(r.Context(), 200)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.EmailLogEntry{}
	}
	writeJSON(w, entries)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidMonth):
		return "Invalid month."
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required."
	default:
		return err.Error()
	}
}
