package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/storage"
)

// ReceiptService renders rent receipts, records them in the email log and
// hands the event to the bus. It never sends mail; the returned compose link
// is the delivery mechanism.
type ReceiptService struct {
	store     Store
	publisher ReceiptPublisher
	now       func() time.Time
}

// NewReceiptService wires the service. publisher may be nil; receipts then
// stay local-only.
func NewReceiptService(store Store, publisher ReceiptPublisher) *ReceiptService {
	return &ReceiptService{store: store, publisher: publisher, now: time.Now}
}

// EmailReceipt renders the receipt for one property/tenant/period. Missing
// property or tenant aborts with storage.ErrNotFound before anything is
// logged; a missing payment row falls back to base rent due and nothing
// received.
func (s *ReceiptService) EmailReceipt(ctx context.Context, propertyID, tenantID int64, month, year int) (core.Receipt, error) {
	if !core.ValidMonth(month) {
		return core.Receipt{}, core.ErrInvalidMonth
	}

	prop, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return core.Receipt{}, fmt.Errorf("property %d: %w", propertyID, err)
	}
	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return core.Receipt{}, fmt.Errorf("tenant %d: %w", tenantID, err)
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return core.Receipt{}, fmt.Errorf("settings: %w", err)
	}

	var payment *core.Payment
	p, err := s.store.GetPayment(ctx, propertyID, month, year)
	switch {
	case err == nil:
		payment = &p
	case errors.Is(err, storage.ErrNotFound):
		// No row for the period; the receipt shows the projected due.
	default:
		return core.Receipt{}, fmt.Errorf("payment %d/%d/%d: %w", propertyID, month, year, err)
	}

	receipt := core.FormatReceipt(prop, tenant, payment, month, year, settings.Landlord(), s.now())

	logID, err := s.store.AppendEmailLog(ctx, core.EmailLogEntry{
		Type:       "receipt",
		PropertyID: propertyID,
		TenantID:   tenantID,
		ToEmail:    tenant.Email,
		Month:      month,
		Year:       year,
		Amount:     receipt.Total,
	})
	if err != nil {
		return core.Receipt{}, fmt.Errorf("log receipt: %w", err)
	}

	if s.publisher != nil {
		msg := amqp.NewReceiptLoggedMessage(logID, propertyID, tenantID, tenant.Email, month, year, receipt.Total.Cents, receipt.Number)
		if err := s.publisher.PublishReceiptLogged(ctx, msg); err != nil {
			// The receipt is rendered and logged; losing the event is not
			// worth failing the request over.
			slog.ErrorContext(ctx, "Failed to publish receipt event",
				"email_log_id", logID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Receipt rendered",
		"property_id", propertyID,
		"tenant_id", tenantID,
		"month", month,
		"year", year,
		"receipt", receipt.Number)
	return receipt, nil
}
