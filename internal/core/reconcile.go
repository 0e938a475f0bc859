package core

// PaymentStatus classifies a month of the ledger.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partial"
	StatusUnpaid  PaymentStatus = "unpaid"
)

// MonthSummary is one entry of the reconciled 12-month ledger.
type MonthSummary struct {
	Month    int           `json:"month"`
	Due      Money         `json:"due"`
	Received Money         `json:"recv"`
	LateFee  Money         `json:"late"`
	Status   PaymentStatus `json:"status"`
}

// AnnualLedger is the reconciled year for one property: a complete month
// sequence plus its totals.
type AnnualLedger struct {
	Months        []MonthSummary
	TotalDue      Money
	TotalReceived Money
	TotalLate     Money
	PaidMonths    int
}

// StatusOf derives the collection status for a month. A month with nothing
// received is "unpaid" even when nothing was due; callers wanting a
// nothing-owed-means-paid rule must change this in one place.
func StatusOf(due, received Money) PaymentStatus {
	switch {
	case received.Cents >= due.Cents && received.Cents > 0:
		return StatusPaid
	case received.Cents > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// Reconcile merges the sparse recorded payments of one property/year into a
// complete 12-entry ledger. Months without a payment row project the
// property's base rent as the amount due, so a base-rent change retroactively
// moves the displayed due for every never-recorded month.
func Reconcile(baseRent Money, payments []Payment) AnnualLedger {
	byMonth := make(map[int]Payment, len(payments))
	for _, p := range payments {
		byMonth[p.Month] = p
	}

	ledger := AnnualLedger{Months: make([]MonthSummary, 0, 12)}
	for m := 1; m <= 12; m++ {
		due, received, late := baseRent, Money{}, Money{}
		if p, ok := byMonth[m]; ok {
			due, received, late = p.RentDue, p.RentReceived, p.LateFee
		}
		ms := MonthSummary{
			Month:    m,
			Due:      due,
			Received: received,
			LateFee:  late,
			Status:   StatusOf(due, received),
		}
		ledger.Months = append(ledger.Months, ms)

		ledger.TotalDue = ledger.TotalDue.Add(ms.Due)
		ledger.TotalReceived = ledger.TotalReceived.Add(ms.Received)
		ledger.TotalLate = ledger.TotalLate.Add(ms.LateFee)
		if ms.Status == StatusPaid {
			ledger.PaidMonths++
		}
	}
	return ledger
}

// Net computes the property's net for the year: everything collected, minus
// the given expense total.
func (l AnnualLedger) Net(expenses Money) Money {
	return l.TotalReceived.Add(l.TotalLate).Sub(expenses)
}
