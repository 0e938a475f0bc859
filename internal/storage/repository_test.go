package storage

import (
	"context"
	"path/filepath"
	"testing"

	"rentledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "rentledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateProperty(t *testing.T, repo *SQLiteRepository, name string, baseRentCents int64) (int64, int64) {
	t.Helper()
	pid, tid, err := repo.CreateProperty(context.Background(),
		core.Property{Name: name, Label: name, Address: "1 Main St", BaseRent: core.Money{Cents: baseRentCents}},
		core.Tenant{Name: "Tenant of " + name, Email: "t@example.com", Phone: "555"})
	if err != nil {
		t.Fatalf("create property %q: %v", name, err)
	}
	return pid, tid
}

func TestBootstrapSeedsAdminAndSettings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Bootstrap(ctx, "admin", "hash"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	u, err := repo.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if u.Role != "admin" || u.PasswordHash != "hash" {
		t.Fatalf("admin = %+v", u)
	}

	// A second bootstrap must not duplicate anything.
	if err := repo.Bootstrap(ctx, "admin", "other"); err != nil {
		t.Fatalf("re-bootstrap: %v", err)
	}
	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}

	settings, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings[core.SettingLandlordName] == "" {
		t.Fatalf("expected seeded landlord name, got %v", settings)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, "pat", "h1", "manager"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := repo.CreateUser(ctx, "pat", "h2", "manager"); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestSettingsUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SetSettings(ctx, map[string]string{"ll_name": "Acme", "ll_phone": "555"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetSettings(ctx, map[string]string{"ll_name": "Acme Rentals"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	s, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s["ll_name"] != "Acme Rentals" || s["ll_phone"] != "555" {
		t.Fatalf("settings = %v", s)
	}
}

func TestListPropertiesCurrentTenantPicksLowestID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pid, firstTenant := mustCreateProperty(t, repo, "Oak", 120000)
	// A second active tenant for the same property: display logic must keep
	// picking the first by id.
	if _, err := repo.db.ExecContext(ctx,
		`INSERT INTO tenants (property_id, name, email, phone, active) VALUES (?, 'Second', 's@example.com', '', 1)`, pid); err != nil {
		t.Fatalf("insert second tenant: %v", err)
	}

	props, err := repo.ListProperties(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(props) != 1 {
		t.Fatalf("expected 1 property, got %d", len(props))
	}
	if props[0].TenantID == nil || *props[0].TenantID != firstTenant {
		t.Fatalf("current tenant = %v, want %d", props[0].TenantID, firstTenant)
	}
}

func TestListPropertiesNameOrderAndVacancy(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, tidB := mustCreateProperty(t, repo, "Birch", 90000)
	mustCreateProperty(t, repo, "Aspen", 80000)

	// Deactivate Birch's tenant: the property must list with nil tenant fields.
	if _, err := repo.db.ExecContext(ctx, `UPDATE tenants SET active = 0 WHERE id = ?`, tidB); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	props, err := repo.ListProperties(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(props) != 2 || props[0].Name != "Aspen" || props[1].Name != "Birch" {
		t.Fatalf("unexpected order: %+v", props)
	}
	if props[1].TenantID != nil {
		t.Fatalf("vacant property should have nil tenant, got %v", *props[1].TenantID)
	}
}

func TestUpsertPaymentKeepsSingleRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	pid, tid := mustCreateProperty(t, repo, "Oak", 120000)

	paid := "2024-03-01"
	first := core.Payment{
		PropertyID: pid, TenantID: tid, Month: 3, Year: 2024,
		RentDue: core.Money{Cents: 120000}, RentReceived: core.Money{Cents: 60000},
		Notes: "first half", PaidDate: &paid,
	}
	if err := repo.UpsertPayment(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := first
	second.RentReceived = core.Money{Cents: 120000}
	second.Notes = "settled"
	if err := repo.UpsertPayment(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	payments, err := repo.ListPayments(ctx, pid, 2024)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected exactly one payment row, got %d", len(payments))
	}
	got := payments[0]
	if got.RentReceived.Cents != 120000 || got.Notes != "settled" {
		t.Fatalf("latest values not kept: %+v", got)
	}
}

func TestUpsertPaymentClearedPaidDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	pid, tid := mustCreateProperty(t, repo, "Oak", 120000)

	paid := "2024-03-01"
	p := core.Payment{PropertyID: pid, TenantID: tid, Month: 3, Year: 2024,
		RentDue: core.Money{Cents: 120000}, RentReceived: core.Money{Cents: 120000}, PaidDate: &paid}
	if err := repo.UpsertPayment(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	p.RentReceived = core.Money{}
	p.PaidDate = nil
	if err := repo.UpsertPayment(ctx, p); err != nil {
		t.Fatalf("clearing upsert: %v", err)
	}

	got, err := repo.GetPayment(ctx, pid, 3, 2024)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if got.PaidDate != nil {
		t.Fatalf("paid_date should be cleared, got %v", *got.PaidDate)
	}
}

func TestDeletePropertyCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	pid, tid := mustCreateProperty(t, repo, "Oak", 120000)

	if err := repo.UpsertPayment(ctx, core.Payment{PropertyID: pid, TenantID: tid, Month: 1, Year: 2024}); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if _, err := repo.AddExpense(ctx, core.Expense{PropertyID: pid, Month: 1, Year: 2024,
		Amount: core.Money{Cents: 5000}, Category: "Repairs", ExpenseDate: "2024-01-05"}); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if _, err := repo.CreateLease(ctx, core.Lease{TenantID: tid, PropertyID: pid,
		StartDate: "2024-01-01", EndDate: "2024-12-31", RentAmount: core.Money{Cents: 120000}}); err != nil {
		t.Fatalf("lease: %v", err)
	}
	if _, err := repo.AppendEmailLog(ctx, core.EmailLogEntry{Type: "receipt", PropertyID: pid,
		TenantID: tid, ToEmail: "t@example.com", Month: 1, Year: 2024}); err != nil {
		t.Fatalf("email log: %v", err)
	}

	if err := repo.DeleteProperty(ctx, pid); err != nil {
		t.Fatalf("delete property: %v", err)
	}

	if pays, _ := repo.ListPayments(ctx, pid, 2024); len(pays) != 0 {
		t.Fatalf("payments survived deletion: %+v", pays)
	}
	if exps, _ := repo.ListExpenses(ctx, pid, 2024); len(exps) != 0 {
		t.Fatalf("expenses survived deletion: %+v", exps)
	}
	if _, err := repo.GetTenant(ctx, tid); err != ErrNotFound {
		t.Fatalf("tenant should be gone, got %v", err)
	}

	// Leases and email log rows are deliberately not cascaded.
	var leaseCount int
	if err := repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leases WHERE property_id = ?`, pid).Scan(&leaseCount); err != nil {
		t.Fatalf("count leases: %v", err)
	}
	if leaseCount != 1 {
		t.Fatalf("lease count = %d, want 1", leaseCount)
	}
	log, err := repo.ListEmailLog(ctx, 10)
	if err != nil {
		t.Fatalf("list email log: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("email log count = %d, want 1", len(log))
	}
	if log[0].PropLabel != "—" || log[0].TenantName != "—" {
		t.Fatalf("orphaned log should show placeholders: %+v", log[0])
	}
}

func TestCreateLeaseDeactivatesPrior(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	pid, tid := mustCreateProperty(t, repo, "Oak", 120000)

	lease := core.Lease{TenantID: tid, PropertyID: pid,
		StartDate: "2023-01-01", EndDate: "2023-12-31", RentAmount: core.Money{Cents: 110000}}
	if _, err := repo.CreateLease(ctx, lease); err != nil {
		t.Fatalf("first lease: %v", err)
	}
	lease.StartDate, lease.EndDate = "2024-01-01", "2024-12-31"
	lease.RentAmount = core.Money{Cents: 120000}
	newID, err := repo.CreateLease(ctx, lease)
	if err != nil {
		t.Fatalf("second lease: %v", err)
	}

	leases, err := repo.ListTenantLeases(ctx)
	if err != nil {
		t.Fatalf("list leases: %v", err)
	}
	if len(leases) != 1 {
		t.Fatalf("expected one occupancy row, got %d", len(leases))
	}
	got := leases[0]
	if got.LeaseID == nil || *got.LeaseID != newID {
		t.Fatalf("active lease = %v, want %d", got.LeaseID, newID)
	}
	if got.StartDate == nil || *got.StartDate != "2024-01-01" {
		t.Fatalf("active lease dates = %+v", got)
	}
}

func TestLeaseAlertsWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	pid, tid := mustCreateProperty(t, repo, "Oak", 120000)

	if _, err := repo.CreateLease(ctx, core.Lease{TenantID: tid, PropertyID: pid,
		StartDate: "2024-01-01", EndDate: "2024-04-15", RentAmount: core.Money{Cents: 120000}}); err != nil {
		t.Fatalf("lease: %v", err)
	}

	alerts, err := repo.LeaseAlerts(ctx, "2024-03-01", "2024-04-30")
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].EndDate != "2024-04-15" {
		t.Fatalf("alerts = %+v", alerts)
	}

	alerts, err = repo.LeaseAlerts(ctx, "2024-05-01", "2024-06-30")
	if err != nil {
		t.Fatalf("alerts outside window: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}

func TestExpenseAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	pidA, _ := mustCreateProperty(t, repo, "Aspen", 80000)
	pidB, _ := mustCreateProperty(t, repo, "Birch", 90000)

	add := func(pid int64, month int, cents int64, category string) {
		t.Helper()
		if _, err := repo.AddExpense(ctx, core.Expense{PropertyID: pid, Month: month, Year: 2024,
			Amount: core.Money{Cents: cents}, Category: category, ExpenseDate: "2024-01-01"}); err != nil {
			t.Fatalf("add expense: %v", err)
		}
	}
	add(pidA, 1, 10000, "Repairs")
	add(pidA, 2, 5000, "Repairs")
	add(pidA, 3, 2000, "Insurance")
	add(pidB, 1, 30000, "Taxes")

	sum, err := repo.SumExpenses(ctx, pidA, 2024)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum.Cents != 17000 {
		t.Fatalf("sum = %d, want 17000", sum.Cents)
	}

	byCat, err := repo.ExpensesByCategory(ctx, pidA, 2024)
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(byCat) != 2 || byCat[0].Category != "Insurance" || byCat[1].Total.Cents != 15000 {
		t.Fatalf("by category = %+v", byCat)
	}

	all, err := repo.AllExpenseCategories(ctx, 2024)
	if err != nil {
		t.Fatalf("all categories: %v", err)
	}
	if len(all) != 3 || all[0].Category != "Taxes" || all[0].Total.Cents != 30000 {
		t.Fatalf("all categories = %+v", all)
	}
}
