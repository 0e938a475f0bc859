package services

import (
	"context"
	"fmt"

	"rentledger/internal/core"
	"rentledger/internal/storage"
)

// fakeStore backs service tests with in-memory state. Per-method function
// hooks override the default behavior where a test needs an error path.
type fakeStore struct {
	properties []core.PropertySummary
	tenants    map[int64]core.Tenant
	payments   map[int64][]core.Payment // keyed by property id
	expenseSum map[int64]core.Money
	byCategory map[int64][]core.CategoryTotal
	allCats    []core.CategoryTotal
	settings   core.Settings
	emailLog   []core.EmailLogEntry

	upserted []core.Payment

	getPaymentErr error
	getTenantErr  error
	appendLogErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants:    map[int64]core.Tenant{},
		payments:   map[int64][]core.Payment{},
		expenseSum: map[int64]core.Money{},
		byCategory: map[int64][]core.CategoryTotal{},
		settings:   core.Settings{},
	}
}

var _ Store = (*fakeStore)(nil)

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return core.User{}, storage.ErrNotFound
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]core.User, error) { return nil, nil }

func (f *fakeStore) CreateUser(ctx context.Context, username, passwordHash, role string) (int64, error) {
	return 0, nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id int64) error { return nil }

func (f *fakeStore) GetSettings(ctx context.Context) (core.Settings, error) {
	return f.settings, nil
}

func (f *fakeStore) SetSettings(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		f.settings[k] = v
	}
	return nil
}

func (f *fakeStore) ListProperties(ctx context.Context) ([]core.PropertySummary, error) {
	return f.properties, nil
}

func (f *fakeStore) GetProperty(ctx context.Context, id int64) (core.Property, error) {
	for _, p := range f.properties {
		if p.ID == id {
			return core.Property{ID: p.ID, Name: p.Name, Label: p.Label, Address: p.Address, BaseRent: p.BaseRent}, nil
		}
	}
	return core.Property{}, storage.ErrNotFound
}

func (f *fakeStore) CreateProperty(ctx context.Context, prop core.Property, tenant core.Tenant) (int64, int64, error) {
	return 0, 0, fmt.Errorf("not implemented")
}

func (f *fakeStore) UpdateProperty(ctx context.Context, prop core.Property, tenant *core.Tenant) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeStore) DeleteProperty(ctx context.Context, id int64) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeStore) GetTenant(ctx context.Context, id int64) (core.Tenant, error) {
	if f.getTenantErr != nil {
		return core.Tenant{}, f.getTenantErr
	}
	t, ok := f.tenants[id]
	if !ok {
		return core.Tenant{}, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListTenantLeases(ctx context.Context) ([]core.TenantLease, error) {
	return nil, nil
}

func (f *fakeStore) CreateLease(ctx context.Context, lease core.Lease) (int64, error) {
	return 0, nil
}

func (f *fakeStore) LeaseAlerts(ctx context.Context, today, until string) ([]core.LeaseAlert, error) {
	return nil, nil
}

func (f *fakeStore) ListPayments(ctx context.Context, propertyID int64, year int) ([]core.Payment, error) {
	var out []core.Payment
	for _, p := range f.payments[propertyID] {
		if p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPayment(ctx context.Context, propertyID int64, month, year int) (core.Payment, error) {
	if f.getPaymentErr != nil {
		return core.Payment{}, f.getPaymentErr
	}
	for _, p := range f.payments[propertyID] {
		if p.Month == month && p.Year == year {
			return p, nil
		}
	}
	return core.Payment{}, storage.ErrNotFound
}

func (f *fakeStore) UpsertPayment(ctx context.Context, p core.Payment) error {
	f.upserted = append(f.upserted, p)
	return nil
}

func (f *fakeStore) ListExpenses(ctx context.Context, propertyID int64, year int) ([]core.Expense, error) {
	return nil, nil
}

func (f *fakeStore) AddExpense(ctx context.Context, e core.Expense) (int64, error) { return 0, nil }

func (f *fakeStore) DeleteExpense(ctx context.Context, id int64) error { return nil }

func (f *fakeStore) SumExpenses(ctx context.Context, propertyID int64, year int) (core.Money, error) {
	return f.expenseSum[propertyID], nil
}

func (f *fakeStore) ExpensesByCategory(ctx context.Context, propertyID int64, year int) ([]core.CategoryTotal, error) {
	return f.byCategory[propertyID], nil
}

func (f *fakeStore) AllExpenseCategories(ctx context.Context, year int) ([]core.CategoryTotal, error) {
	return f.allCats, nil
}

func (f *fakeStore) AppendEmailLog(ctx context.Context, e core.EmailLogEntry) (int64, error) {
	if f.appendLogErr != nil {
		return 0, f.appendLogErr
	}
	e.ID = int64(len(f.emailLog) + 1)
	f.emailLog = append(f.emailLog, e)
	return e.ID, nil
}

func (f *fakeStore) ListEmailLog(ctx context.Context, limit int) ([]core.EmailLogEntry, error) {
	return f.emailLog, nil
}
