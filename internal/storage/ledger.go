package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"rentledger/internal/core"
)

// --- Payments ---

func (r *SQLiteRepository) ListPayments(ctx context.Context, propertyID int64, year int) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, property_id, tenant_id, month, year,
		       rent_due_cents, rent_received_cents, late_fee_cents, notes, paid_date
		FROM payments
		WHERE property_id = ? AND year = ?
		ORDER BY month`, propertyID, year)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		var p core.Payment
		if err := rows.Scan(&p.ID, &p.PropertyID, &p.TenantID, &p.Month, &p.Year,
			&p.RentDue.Cents, &p.RentReceived.Cents, &p.LateFee.Cents, &p.Notes, &p.PaidDate); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, propertyID int64, month, year int) (core.Payment, error) {
	var p core.Payment
	err := r.db.QueryRowContext(ctx, `
		SELECT id, property_id, tenant_id, month, year,
		       rent_due_cents, rent_received_cents, late_fee_cents, notes, paid_date
		FROM payments
		WHERE property_id = ? AND month = ? AND year = ?`, propertyID, month, year).
		Scan(&p.ID, &p.PropertyID, &p.TenantID, &p.Month, &p.Year,
			&p.RentDue.Cents, &p.RentReceived.Cents, &p.LateFee.Cents, &p.Notes, &p.PaidDate)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, ErrNotFound
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment %d/%d/%d: %w", propertyID, month, year, err)
	}
	return p, nil
}

// UpsertPayment writes the single rent row for (property, month, year)
// atomically. On conflict the received/late/notes/paid_date/due fields are
// replaced; the original tenant_id is kept, matching the historical behavior
// where a re-recorded payment does not reassign the payer.
func (r *SQLiteRepository) UpsertPayment(ctx context.Context, p core.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (property_id, tenant_id, month, year,
		                      rent_due_cents, rent_received_cents, late_fee_cents, notes, paid_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id, month, year) DO UPDATE SET
			rent_received_cents = excluded.rent_received_cents,
			late_fee_cents      = excluded.late_fee_cents,
			notes               = excluded.notes,
			paid_date           = excluded.paid_date,
			rent_due_cents      = excluded.rent_due_cents`,
		p.PropertyID, p.TenantID, p.Month, p.Year,
		p.RentDue.Cents, p.RentReceived.Cents, p.LateFee.Cents, p.Notes, p.PaidDate)
	if err != nil {
		return fmt.Errorf("upsert payment %d/%d/%d: %w", p.PropertyID, p.Month, p.Year, err)
	}
	slog.InfoContext(ctx, "Payment recorded",
		"property_id", p.PropertyID,
		"month", p.Month,
		"year", p.Year,
		"received_cents", p.RentReceived.Cents)
	return nil
}

// --- Expenses ---

func (r *SQLiteRepository) ListExpenses(ctx context.Context, propertyID int64, year int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, property_id, month, year, amount_cents, category, description, expense_date
		FROM expenses
		WHERE property_id = ? AND year = ?
		ORDER BY month, id`, propertyID, year)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.Month, &e.Year,
			&e.Amount.Cents, &e.Category, &e.Description, &e.ExpenseDate); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (property_id, month, year, amount_cents, category, description, expense_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.PropertyID, e.Month, e.Year, e.Amount.Cents, e.Category, e.Description, e.ExpenseDate)
	if err != nil {
		return 0, fmt.Errorf("add expense: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

// SumExpenses totals a property's expenses for one year.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, propertyID int64, year int) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		WHERE property_id = ? AND year = ?`, propertyID, year).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// ExpensesByCategory groups one property's expenses for the year.
func (r *SQLiteRepository) ExpensesByCategory(ctx context.Context, propertyID int64, year int) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) FROM expenses
		WHERE property_id = ? AND year = ?
		GROUP BY category
		ORDER BY category`, propertyID, year)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	return scanCategoryTotals(rows)
}

// AllExpenseCategories groups the whole portfolio's expenses for the year,
// largest first. This is deliberately an independent query, not a fold over
// the per-property groups.
func (r *SQLiteRepository) AllExpenseCategories(ctx context.Context, year int) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) AS total FROM expenses
		WHERE year = ?
		GROUP BY category
		ORDER BY total DESC`, year)
	if err != nil {
		return nil, fmt.Errorf("all expense categories: %w", err)
	}
	return scanCategoryTotals(rows)
}

func scanCategoryTotals(rows *sql.Rows) ([]core.CategoryTotal, error) {
	defer rows.Close()
	var totals []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// --- Email log ---

func (r *SQLiteRepository) AppendEmailLog(ctx context.Context, e core.EmailLogEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO email_log (type, property_id, tenant_id, to_email, month, year, amount_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Type, e.PropertyID, e.TenantID, e.ToEmail, e.Month, e.Year, e.Amount.Cents)
	if err != nil {
		return 0, fmt.Errorf("append email log: %w", err)
	}
	return res.LastInsertId()
}

// ListEmailLog returns the latest entries, annotated with the property label
// and tenant name when those rows still exist. Entries survive property
// deletion, so the annotations degrade to a placeholder.
func (r *SQLiteRepository) ListEmailLog(ctx context.Context, limit int) ([]core.EmailLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.type, e.property_id, e.tenant_id, e.to_email,
		       e.month, e.year, e.amount_cents, e.sent_at,
		       COALESCE(p.label, '—'), COALESCE(t.name, '—')
		FROM email_log e
		LEFT JOIN properties p ON p.id = e.property_id
		LEFT JOIN tenants t ON t.id = e.tenant_id
		ORDER BY e.sent_at DESC, e.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list email log: %w", err)
	}
	defer rows.Close()

	var entries []core.EmailLogEntry
	for rows.Next() {
		var e core.EmailLogEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.PropertyID, &e.TenantID, &e.ToEmail,
			&e.Month, &e.Year, &e.Amount.Cents, &e.SentAt, &e.PropLabel, &e.TenantName); err != nil {
			return nil, fmt.Errorf("scan email log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
