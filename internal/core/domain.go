package core

import (
	"errors"
	"strings"
)

type (
	// Property is a rental unit with one current tenant slot.
	Property struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Label    string `json:"label"`
		Address  string `json:"address"`
		BaseRent Money  `json:"base_rent"`
	}

	Tenant struct {
		ID         int64  `json:"id"`
		PropertyID int64  `json:"property_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Active     bool   `json:"active"`
	}

	// PropertySummary is the display view of a property with its current
	// tenant denormalized. The current tenant is computed, not stored: the
	// first active tenant row by id wins, and the tenant fields stay null
	// when the property is vacant.
	PropertySummary struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Label       string  `json:"label"`
		Address     string  `json:"address"`
		BaseRent    Money   `json:"base_rent"`
		TenantID    *int64  `json:"tenant_id"`
		TenantName  *string `json:"tenant_name"`
		TenantEmail *string `json:"tenant_email"`
		TenantPhone *string `json:"tenant_phone"`
	}

	// Payment is the single rent row for a property/month/year. PaidDate is
	// nil until something was received.
	Payment struct {
		ID           int64   `json:"id"`
		PropertyID   int64   `json:"property_id"`
		TenantID     int64   `json:"tenant_id"`
		Month        int     `json:"month"`
		Year         int     `json:"year"`
		RentDue      Money   `json:"rent_due"`
		RentReceived Money   `json:"rent_received"`
		LateFee      Money   `json:"late_fee"`
		Notes        string  `json:"notes"`
		PaidDate     *string `json:"paid_date"`
	}

	Expense struct {
		ID          int64  `json:"id"`
		PropertyID  int64  `json:"property_id"`
		Month       int    `json:"month"`
		Year        int    `json:"year"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		ExpenseDate string `json:"expense_date"`
	}

	Lease struct {
		ID         int64  `json:"id"`
		TenantID   int64  `json:"tenant_id"`
		PropertyID int64  `json:"property_id"`
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
		RentAmount Money  `json:"rent_amount"`
		Notes      string `json:"notes"`
		Active     bool   `json:"active"`
	}

	// TenantLease is the joined occupancy view: each active tenant with its
	// property and active lease, if any.
	TenantLease struct {
		TenantID   int64   `json:"id"`
		Name       string  `json:"name"`
		Email      string  `json:"email"`
		Phone      string  `json:"phone"`
		PropertyID int64   `json:"property_id"`
		PropLabel  string  `json:"prop_label"`
		Address    string  `json:"address"`
		LeaseID    *int64  `json:"lease_id"`
		StartDate  *string `json:"start_date"`
		EndDate    *string `json:"end_date"`
		RentAmount *Money  `json:"rent_amount"`
		Notes      *string `json:"notes"`
	}

	// LeaseAlert flags an active lease expiring inside the alert window.
	LeaseAlert struct {
		TenantName string `json:"tenant_name"`
		PropLabel  string `json:"prop_label"`
		EndDate    string `json:"end_date"`
		StartDate  string `json:"start_date"`
	}

	User struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		Role         string `json:"role"`
		PasswordHash string `json:"-"`
	}

	// EmailLogEntry is an append-only audit record of a rendered receipt.
	EmailLogEntry struct {
		ID         int64  `json:"id"`
		Type       string `json:"type"`
		PropertyID int64  `json:"property_id"`
		TenantID   int64  `json:"tenant_id"`
		ToEmail    string `json:"to_email"`
		Month      int    `json:"month"`
		Year       int    `json:"year"`
		Amount     Money  `json:"amount"`
		SentAt     string `json:"sent_at"`
		// Annotations resolved at read time; em dash placeholder when the
		// referenced row no longer exists.
		PropLabel  string `json:"prop_label"`
		TenantName string `json:"ten_name"`
	}

	// Settings is the free-form key/value configuration map.
	Settings map[string]string

	// CategoryTotal is an expense sum grouped by category.
	CategoryTotal struct {
		Category string `json:"category"`
		Total    Money  `json:"total"`
	}
)

// Landlord keys in the settings table.
const (
	SettingLandlordName    = "ll_name"
	SettingLandlordEmail   = "ll_email"
	SettingLandlordPhone   = "ll_phone"
	SettingLandlordAddress = "ll_addr"
)

var (
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyEmail     = errors.New("empty email")
	ErrEmptyCategory  = errors.New("empty category")
	ErrEmptyUsername  = errors.New("empty username")
	ErrEmptyDateRange = errors.New("empty lease date range")
)

// MonthNames indexes English month names by month-1.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ValidMonth reports whether m is a calendar month.
func ValidMonth(m int) bool { return m >= 1 && m <= 12 }

func (p Property) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Tenant) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}

// Validate checks the identifying tuple only. Amounts are deliberately not
// range-checked: negative corrections are recorded as-is and flow into every
// aggregate.
func (p Payment) Validate() error {
	if !ValidMonth(p.Month) {
		return ErrInvalidMonth
	}
	return nil
}

func (e Expense) Validate() error {
	if !ValidMonth(e.Month) {
		return ErrInvalidMonth
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (l Lease) Validate() error {
	if strings.TrimSpace(l.StartDate) == "" || strings.TrimSpace(l.EndDate) == "" {
		return ErrEmptyDateRange
	}
	return nil
}

// Landlord extracts the landlord contact block used on receipts.
func (s Settings) Landlord() LandlordInfo {
	return LandlordInfo{
		Name:    s[SettingLandlordName],
		Email:   s[SettingLandlordEmail],
		Phone:   s[SettingLandlordPhone],
		Address: s[SettingLandlordAddress],
	}
}
