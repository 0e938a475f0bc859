package core

import "testing"

func TestReconcileEmptyYearProjectsBaseRent(t *testing.T) {
	base := Money{Cents: 120000}
	ledger := Reconcile(base, nil)

	if len(ledger.Months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(ledger.Months))
	}
	for i, m := range ledger.Months {
		if m.Month != i+1 {
			t.Fatalf("month %d has number %d", i, m.Month)
		}
		if m.Due != base {
			t.Fatalf("month %d due = %v, want base rent %v", m.Month, m.Due, base)
		}
		if m.Received.Cents != 0 || m.LateFee.Cents != 0 {
			t.Fatalf("month %d expected zero received/late", m.Month)
		}
		if m.Status != StatusUnpaid {
			t.Fatalf("month %d status = %q, want unpaid", m.Month, m.Status)
		}
	}
	if ledger.TotalDue.Cents != 12*120000 {
		t.Fatalf("total due = %d", ledger.TotalDue.Cents)
	}
	if ledger.PaidMonths != 0 {
		t.Fatalf("paid months = %d, want 0", ledger.PaidMonths)
	}
}

func TestReconcileMergesRecordedPayments(t *testing.T) {
	base := Money{Cents: 100000}
	payments := []Payment{
		{Month: 1, Year: 2024, RentDue: Money{Cents: 100000}, RentReceived: Money{Cents: 100000}},
		{Month: 2, Year: 2024, RentDue: Money{Cents: 100000}, RentReceived: Money{Cents: 40000}, LateFee: Money{Cents: 5000}},
		// Recorded due overrides the base-rent projection.
		{Month: 3, Year: 2024, RentDue: Money{Cents: 90000}, RentReceived: Money{Cents: 95000}},
	}
	ledger := Reconcile(base, payments)

	jan, feb, mar, apr := ledger.Months[0], ledger.Months[1], ledger.Months[2], ledger.Months[3]
	if jan.Status != StatusPaid {
		t.Fatalf("jan status = %q", jan.Status)
	}
	if feb.Status != StatusPartial {
		t.Fatalf("feb status = %q", feb.Status)
	}
	if mar.Status != StatusPaid || mar.Due.Cents != 90000 {
		t.Fatalf("mar = %+v", mar)
	}
	if apr.Status != StatusUnpaid || apr.Due != base {
		t.Fatalf("apr = %+v", apr)
	}

	if ledger.TotalDue.Cents != 100000+100000+90000+9*100000 {
		t.Fatalf("total due = %d", ledger.TotalDue.Cents)
	}
	if ledger.TotalReceived.Cents != 100000+40000+95000 {
		t.Fatalf("total received = %d", ledger.TotalReceived.Cents)
	}
	if ledger.TotalLate.Cents != 5000 {
		t.Fatalf("total late = %d", ledger.TotalLate.Cents)
	}
	if ledger.PaidMonths != 2 {
		t.Fatalf("paid months = %d, want 2", ledger.PaidMonths)
	}

	net := ledger.Net(Money{Cents: 30000})
	if net.Cents != 100000+40000+95000+5000-30000 {
		t.Fatalf("net = %d", net.Cents)
	}
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		due, recv int64
		want      PaymentStatus
	}{
		{100000, 100000, StatusPaid},
		{100000, 150000, StatusPaid},
		{100000, 50000, StatusPartial},
		{100000, 0, StatusUnpaid},
		// Nothing owed and nothing received still reads unpaid.
		{0, 0, StatusUnpaid},
		{0, 1, StatusPaid},
		{100000, -5000, StatusUnpaid},
	}
	for _, tc := range cases {
		got := StatusOf(Money{Cents: tc.due}, Money{Cents: tc.recv})
		if got != tc.want {
			t.Fatalf("StatusOf(due=%d, recv=%d) = %q, want %q", tc.due, tc.recv, got, tc.want)
		}
	}
}
