// Package services orchestrates the store, the reconciliation core and the
// outbound event bus into the operations the HTTP layer exposes.
package services

import (
	"context"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/storage"
)

// Store is the persistence port. *storage.SQLiteRepository is the production
// implementation; tests plug in fakes.
type Store interface {
	// Users
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	CreateUser(ctx context.Context, username, passwordHash, role string) (int64, error)
	DeleteUser(ctx context.Context, id int64) error

	// Settings
	GetSettings(ctx context.Context) (core.Settings, error)
	SetSettings(ctx context.Context, values map[string]string) error

	// Registry
	ListProperties(ctx context.Context) ([]core.PropertySummary, error)
	GetProperty(ctx context.Context, id int64) (core.Property, error)
	CreateProperty(ctx context.Context, prop core.Property, tenant core.Tenant) (int64, int64, error)
	UpdateProperty(ctx context.Context, prop core.Property, tenant *core.Tenant) error
	DeleteProperty(ctx context.Context, id int64) error
	GetTenant(ctx context.Context, id int64) (core.Tenant, error)

	// Leases
	ListTenantLeases(ctx context.Context) ([]core.TenantLease, error)
	CreateLease(ctx context.Context, lease core.Lease) (int64, error)
	LeaseAlerts(ctx context.Context, today, until string) ([]core.LeaseAlert, error)

	// Ledgers
	ListPayments(ctx context.Context, propertyID int64, year int) ([]core.Payment, error)
	GetPayment(ctx context.Context, propertyID int64, month, year int) (core.Payment, error)
	UpsertPayment(ctx context.Context, p core.Payment) error
	ListExpenses(ctx context.Context, propertyID int64, year int) ([]core.Expense, error)
	AddExpense(ctx context.Context, e core.Expense) (int64, error)
	DeleteExpense(ctx context.Context, id int64) error
	SumExpenses(ctx context.Context, propertyID int64, year int) (core.Money, error)
	ExpensesByCategory(ctx context.Context, propertyID int64, year int) ([]core.CategoryTotal, error)
	AllExpenseCategories(ctx context.Context, year int) ([]core.CategoryTotal, error)

	// Email log
	AppendEmailLog(ctx context.Context, e core.EmailLogEntry) (int64, error)
	ListEmailLog(ctx context.Context, limit int) ([]core.EmailLogEntry, error)
}

var _ Store = (*storage.SQLiteRepository)(nil)

// ReceiptPublisher is the outbound event port for rendered receipts.
type ReceiptPublisher interface {
	PublishReceiptLogged(ctx context.Context, msg *amqp.ReceiptLoggedMessage) error
}
