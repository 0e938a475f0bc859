package core

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LandlordInfo is the contact block printed at the bottom of a receipt.
type LandlordInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Receipt is a rendered rent receipt: the plain-text body, a subject line and
// a Gmail compose deep link. Nothing is ever sent from here; whatever opens
// the link does the sending.
type Receipt struct {
	Number   string
	Subject  string
	Body     string
	GmailURL string
	To       string
	Total    Money
}

// ReceiptNumber builds the deterministic human-readable identifier:
// alphanumeric-only uppercased property name, dash, 3-letter month
// abbreviation, dash, year. "Oak St #2", March 2024 -> "OAKST2-MAR-2024".
func ReceiptNumber(propertyName string, month, year int) string {
	var b strings.Builder
	for _, r := range propertyName {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	abbr := strings.ToUpper(MonthNames[month-1][:3])
	return strings.ToUpper(b.String()) + "-" + abbr + "-" + strconv.Itoa(year)
}

const receiptRule = "================================================"

// FormatReceipt renders the fixed-layout receipt for one property, tenant and
// period. When pay is nil the property's base rent is shown as due with
// nothing received. The line order and $X.XX formatting are relied on by
// existing consumers of the text; change them only with care.
func FormatReceipt(prop Property, tenant Tenant, pay *Payment, month, year int, landlord LandlordInfo, now time.Time) Receipt {
	due, received, late := prop.BaseRent, Money{}, Money{}
	if pay != nil {
		due, received, late = pay.RentDue, pay.RentReceived, pay.LateFee
	}
	total := received.Add(late)

	var status string
	switch {
	case received.Cents >= due.Cents && due.Cents > 0:
		status = "PAID IN FULL"
	case received.Cents > 0 && received.Cents < due.Cents:
		status = "PARTIAL - Balance: " + due.Sub(received).String()
	default:
		status = "BALANCE DUE: " + due.String()
	}

	monthName := MonthNames[month-1]
	period := monthName + " " + strconv.Itoa(year)
	number := ReceiptNumber(prop.Name, month, year)
	address := prop.Address
	if address == "" {
		address = "N/A"
	}

	lines := []string{
		"Hi " + tenant.Name + ",",
		"",
		"Your rent receipt for " + period + ":",
		"",
		receiptRule,
		"            PROPERTY MANAGEMENT",
		"           OFFICIAL RENT RECEIPT",
		receiptRule,
		"  Property  : " + prop.Label,
		"  Address   : " + address,
		"  Tenant    : " + tenant.Name,
		"  Period    : " + period,
		"  Receipt # : " + number,
		"  Date      : " + now.Format("January 2, 2006"),
		"",
		"  Rent Due        : " + due.String(),
		"  Rent Received   : " + received.String(),
	}
	if late.Cents > 0 {
		lines = append(lines, "  Late Fee        : "+late.String())
	}
	lines = append(lines,
		"  .............................................",
		"  TOTAL RECEIVED  : "+total.String(),
		"",
		"  >> STATUS: "+status,
		"",
		receiptRule,
		"Thank you for your payment!",
		"",
		landlord.Name,
		landlord.Phone,
		landlord.Email,
		receiptRule,
	)
	body := strings.Join(lines, "\n")

	subject := "Rent Receipt - " + prop.Label + " - " + period
	gmailURL := "https://mail.google.com/mail/?view=cm" +
		"&to=" + url.QueryEscape(tenant.Email) +
		"&su=" + url.QueryEscape(subject) +
		"&body=" + url.QueryEscape(body)

	return Receipt{
		Number:   number,
		Subject:  subject,
		Body:     body,
		GmailURL: gmailURL,
		To:       tenant.Email,
		Total:    total,
	}
}
