package amqp

import (
	"encoding/json"
	"time"
)

// ReceiptLoggedMessage announces that a rent receipt was rendered and written
// to the email log. Consumers get enough to act without a database round
// trip; the email log id links back for anything else.
type ReceiptLoggedMessage struct {
	EmailLogID  int64     `json:"email_log_id"`
	PropertyID  int64     `json:"property_id"`
	TenantID    int64     `json:"tenant_id"`
	ToEmail     string    `json:"to_email"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	AmountCents int64     `json:"amount_cents"`
	ReceiptNo   string    `json:"receipt_no"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewReceiptLoggedMessage(emailLogID, propertyID, tenantID int64, toEmail string, month, year int, amountCents int64, receiptNo string) *ReceiptLoggedMessage {
	return &ReceiptLoggedMessage{
		EmailLogID:  emailLogID,
		PropertyID:  propertyID,
		TenantID:    tenantID,
		ToEmail:     toEmail,
		Month:       month,
		Year:        year,
		AmountCents: amountCents,
		ReceiptNo:   receiptNo,
		Timestamp:   time.Now(),
	}
}

func (m *ReceiptLoggedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReceiptLoggedMessageFromJSON(data []byte) (*ReceiptLoggedMessage, error) {
	var msg ReceiptLoggedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
