package services

import (
	"context"
	"fmt"
	"time"

	"rentledger/internal/core"
)

// PaymentService owns the rent-payment upsert rule.
type PaymentService struct {
	store Store
	now   func() time.Time
}

func NewPaymentService(store Store) *PaymentService {
	return &PaymentService{store: store, now: time.Now}
}

// RecordPaymentRequest carries one rent row to upsert. The tenant id is taken
// as supplied and not re-derived from the property's current tenant.
type RecordPaymentRequest struct {
	PropertyID   int64      `json:"property_id"`
	TenantID     int64      `json:"tenant_id"`
	Month        int        `json:"month"`
	Year         int        `json:"year"`
	RentDue      core.Money `json:"rent_due"`
	RentReceived core.Money `json:"rent_received"`
	LateFee      core.Money `json:"late_fee"`
	Notes        string     `json:"notes"`
}

// Record upserts the payment row for (property, month, year). The paid date
// is stamped with today when anything was received, and cleared otherwise.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) error {
	payment := core.Payment{
		PropertyID:   req.PropertyID,
		TenantID:     req.TenantID,
		Month:        req.Month,
		Year:         req.Year,
		RentDue:      req.RentDue,
		RentReceived: req.RentReceived,
		LateFee:      req.LateFee,
		Notes:        req.Notes,
	}
	if err := payment.Validate(); err != nil {
		return err
	}
	if req.RentReceived.Cents > 0 {
		paid := s.now().Format("2006-01-02")
		payment.PaidDate = &paid
	}
	if err := s.store.UpsertPayment(ctx, payment); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}
