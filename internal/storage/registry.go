package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"rentledger/internal/core"
)

// ListProperties returns every property in name order with its current tenant
// denormalized. Ties between multiple active tenants resolve to the lowest
// tenant id; a vacant property keeps nil tenant fields.
func (r *SQLiteRepository) ListProperties(ctx context.Context) ([]core.PropertySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.label, p.address, p.base_rent_cents,
		       t.id, t.name, t.email, t.phone
		FROM properties p
		LEFT JOIN tenants t ON t.id = (
			SELECT id FROM tenants
			WHERE property_id = p.id AND active = 1
			ORDER BY id LIMIT 1)
		ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var props []core.PropertySummary
	for rows.Next() {
		var p core.PropertySummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Label, &p.Address, &p.BaseRent.Cents,
			&p.TenantID, &p.TenantName, &p.TenantEmail, &p.TenantPhone); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

func (r *SQLiteRepository) GetProperty(ctx context.Context, id int64) (core.Property, error) {
	var p core.Property
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, label, address, base_rent_cents FROM properties WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Label, &p.Address, &p.BaseRent.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Property{}, ErrNotFound
	}
	if err != nil {
		return core.Property{}, fmt.Errorf("get property %d: %w", id, err)
	}
	return p, nil
}

// CreateProperty inserts a property together with its initial active tenant.
// A property never starts vacant.
func (r *SQLiteRepository) CreateProperty(ctx context.Context, prop core.Property, tenant core.Tenant) (propertyID, tenantID int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin create property tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO properties (name, label, address, base_rent_cents) VALUES (?, ?, ?, ?)`,
		prop.Name, prop.Label, prop.Address, prop.BaseRent.Cents)
	if err != nil {
		return 0, 0, fmt.Errorf("insert property: %w", err)
	}
	propertyID, err = res.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("property id: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO tenants (property_id, name, email, phone, active) VALUES (?, ?, ?, ?, 1)`,
		propertyID, tenant.Name, tenant.Email, tenant.Phone)
	if err != nil {
		return 0, 0, fmt.Errorf("insert tenant: %w", err)
	}
	tenantID, err = res.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("tenant id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit create property: %w", err)
	}
	slog.InfoContext(ctx, "Property created", "property_id", propertyID, "tenant_id", tenantID, "name", prop.Name)
	return propertyID, tenantID, nil
}

// UpdateProperty updates the property row and, when tenant is non-nil, the
// tenant contact details in the same transaction.
func (r *SQLiteRepository) UpdateProperty(ctx context.Context, prop core.Property, tenant *core.Tenant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update property tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE properties SET name = ?, label = ?, address = ?, base_rent_cents = ? WHERE id = ?`,
		prop.Name, prop.Label, prop.Address, prop.BaseRent.Cents, prop.ID); err != nil {
		return fmt.Errorf("update property %d: %w", prop.ID, err)
	}

	if tenant != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tenants SET name = ?, email = ?, phone = ? WHERE id = ?`,
			tenant.Name, tenant.Email, tenant.Phone, tenant.ID); err != nil {
			return fmt.Errorf("update tenant %d: %w", tenant.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteProperty removes a property with its payments, expenses and tenants.
// Leases and email log rows referencing the property are left behind; see the
// data-retention note in DESIGN.md before changing that.
func (r *SQLiteRepository) DeleteProperty(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete property tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"payments", "expenses", "tenants"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE property_id = ?`, id); err != nil {
			return fmt.Errorf("delete %s for property %d: %w", table, id, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete property %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete property: %w", err)
	}
	slog.InfoContext(ctx, "Property deleted", "property_id", id)
	return nil
}

func (r *SQLiteRepository) GetTenant(ctx context.Context, id int64) (core.Tenant, error) {
	var t core.Tenant
	err := r.db.QueryRowContext(ctx,
		`SELECT id, property_id, name, email, phone, active FROM tenants WHERE id = ?`, id).
		Scan(&t.ID, &t.PropertyID, &t.Name, &t.Email, &t.Phone, &t.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Tenant{}, ErrNotFound
	}
	if err != nil {
		return core.Tenant{}, fmt.Errorf("get tenant %d: %w", id, err)
	}
	return t, nil
}

// --- Leases ---

// ListTenantLeases returns every active tenant joined with its property and
// active lease, soonest-expiring first.
func (r *SQLiteRepository) ListTenantLeases(ctx context.Context) ([]core.TenantLease, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.email, t.phone, t.property_id, p.label, p.address,
		       l.id, l.start_date, l.end_date, l.rent_amount_cents, l.notes
		FROM tenants t
		JOIN properties p ON p.id = t.property_id
		LEFT JOIN leases l ON l.tenant_id = t.id AND l.active = 1
		WHERE t.active = 1
		ORDER BY l.end_date ASC, p.label ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenant leases: %w", err)
	}
	defer rows.Close()

	var leases []core.TenantLease
	for rows.Next() {
		var tl core.TenantLease
		var rentCents *int64
		if err := rows.Scan(&tl.TenantID, &tl.Name, &tl.Email, &tl.Phone, &tl.PropertyID,
			&tl.PropLabel, &tl.Address,
			&tl.LeaseID, &tl.StartDate, &tl.EndDate, &rentCents, &tl.Notes); err != nil {
			return nil, fmt.Errorf("scan tenant lease: %w", err)
		}
		if rentCents != nil {
			tl.RentAmount = &core.Money{Cents: *rentCents}
		}
		leases = append(leases, tl)
	}
	return leases, rows.Err()
}

// CreateLease deactivates the tenant's previous leases and inserts the new
// active one as a single transaction, so the one-active-lease invariant holds
// even under concurrent callers.
func (r *SQLiteRepository) CreateLease(ctx context.Context, lease core.Lease) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create lease tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE leases SET active = 0 WHERE tenant_id = ?`, lease.TenantID); err != nil {
		return 0, fmt.Errorf("deactivate leases for tenant %d: %w", lease.TenantID, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO leases (tenant_id, property_id, start_date, end_date, rent_amount_cents, notes, active)
		 VALUES (?, ?, ?, ?, ?, ?, 1)`,
		lease.TenantID, lease.PropertyID, lease.StartDate, lease.EndDate,
		lease.RentAmount.Cents, lease.Notes)
	if err != nil {
		return 0, fmt.Errorf("insert lease: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("lease id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create lease: %w", err)
	}
	slog.InfoContext(ctx, "Lease created", "lease_id", id, "tenant_id", lease.TenantID, "property_id", lease.PropertyID)
	return id, nil
}

// LeaseAlerts lists active leases ending within [today, until], soonest first.
// Both bounds are YYYY-MM-DD strings, which compare correctly as text.
func (r *SQLiteRepository) LeaseAlerts(ctx context.Context, today, until string) ([]core.LeaseAlert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.name, p.label, l.end_date, l.start_date
		FROM leases l
		JOIN tenants t ON t.id = l.tenant_id
		JOIN properties p ON p.id = l.property_id
		WHERE l.active = 1 AND l.end_date <= ? AND l.end_date >= ?
		ORDER BY l.end_date ASC`, until, today)
	if err != nil {
		return nil, fmt.Errorf("lease alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.LeaseAlert
	for rows.Next() {
		var a core.LeaseAlert
		if err := rows.Scan(&a.TenantName, &a.PropLabel, &a.EndDate, &a.StartDate); err != nil {
			return nil, fmt.Errorf("scan lease alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
