package services

import (
	"context"
	"fmt"

	"rentledger/internal/core"
)

// ReportService builds the dashboard and tax views over the reconciliation
// core. It never mutates the store.
type ReportService struct {
	store Store
}

func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

type (
	// PropertyReport is one property's reconciled year on the dashboard.
	PropertyReport struct {
		ID         int64               `json:"id"`
		Label      string              `json:"label"`
		BaseRent   core.Money          `json:"base_rent"`
		TenantName *string             `json:"tenant_name"`
		Months     []core.MonthSummary `json:"months"`
		TotalDue   core.Money          `json:"tDue"`
		TotalRecv  core.Money          `json:"tRecv"`
		TotalLate  core.Money          `json:"tLate"`
		TotalExp   core.Money          `json:"tExp"`
		Net        core.Money          `json:"net"`
		PaidMonths int                 `json:"paid"`
	}

	// MonthlyCollection is the portfolio-wide fold for one month.
	MonthlyCollection struct {
		Month     int        `json:"month"`
		Collected core.Money `json:"collected"`
		Due       core.Money `json:"due"`
	}

	Dashboard struct {
		Properties []PropertyReport    `json:"properties"`
		Monthly    []MonthlyCollection `json:"monthly"`
		Year       int                 `json:"year"`
	}

	// PropertyTaxReport sums only recorded payment rows; unlike the
	// dashboard it never projects base rent for missing months.
	PropertyTaxReport struct {
		ID          int64                `json:"id"`
		Label       string               `json:"label"`
		Address     string               `json:"address"`
		TenantName  *string              `json:"tenant_name"`
		TotalRecv   core.Money           `json:"totalRecv"`
		TotalLate   core.Money           `json:"totalLate"`
		GrossIncome core.Money           `json:"grossIncome"`
		Expenses    []core.CategoryTotal `json:"expenses"`
		TotalExp    core.Money           `json:"totalExp"`
		NetIncome   core.Money           `json:"netIncome"`
	}

	TaxReport struct {
		Year          int                  `json:"year"`
		Properties    []PropertyTaxReport  `json:"properties"`
		GrandIncome   core.Money           `json:"grandIncome"`
		GrandExp      core.Money           `json:"grandExp"`
		GrandNet      core.Money           `json:"grandNet"`
		AllCategories []core.CategoryTotal `json:"allCategories"`
	}
)

// Dashboard reconciles every property for the year and folds the results into
// the portfolio monthly series. The fold runs over the per-property ledgers
// already in hand; no extra queries per month.
func (s *ReportService) Dashboard(ctx context.Context, year int) (Dashboard, error) {
	props, err := s.store.ListProperties(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load properties: %w", err)
	}

	dash := Dashboard{
		Properties: make([]PropertyReport, 0, len(props)),
		Year:       year,
	}
	for _, prop := range props {
		payments, err := s.store.ListPayments(ctx, prop.ID, year)
		if err != nil {
			return Dashboard{}, fmt.Errorf("payments for property %d: %w", prop.ID, err)
		}
		expenses, err := s.store.SumExpenses(ctx, prop.ID, year)
		if err != nil {
			return Dashboard{}, fmt.Errorf("expenses for property %d: %w", prop.ID, err)
		}

		ledger := core.Reconcile(prop.BaseRent, payments)
		dash.Properties = append(dash.Properties, PropertyReport{
			ID:         prop.ID,
			Label:      prop.Label,
			BaseRent:   prop.BaseRent,
			TenantName: prop.TenantName,
			Months:     ledger.Months,
			TotalDue:   ledger.TotalDue,
			TotalRecv:  ledger.TotalReceived,
			TotalLate:  ledger.TotalLate,
			TotalExp:   expenses,
			Net:        ledger.Net(expenses),
			PaidMonths: ledger.PaidMonths,
		})
	}

	dash.Monthly = make([]MonthlyCollection, 0, 12)
	for m := 1; m <= 12; m++ {
		mc := MonthlyCollection{Month: m}
		for _, pr := range dash.Properties {
			entry := pr.Months[m-1]
			mc.Collected = mc.Collected.Add(entry.Received)
			mc.Due = mc.Due.Add(entry.Due)
		}
		dash.Monthly = append(dash.Monthly, mc)
	}
	return dash, nil
}

// TaxReport sums cash actually received per property, groups expenses by
// category, and adds portfolio grand totals. The category list at the bottom
// is an independent portfolio-wide group-by, not a merge of the per-property
// lists.
func (s *ReportService) TaxReport(ctx context.Context, year int) (TaxReport, error) {
	props, err := s.store.ListProperties(ctx)
	if err != nil {
		return TaxReport{}, fmt.Errorf("load properties: %w", err)
	}

	report := TaxReport{
		Year:       year,
		Properties: make([]PropertyTaxReport, 0, len(props)),
	}
	for _, prop := range props {
		payments, err := s.store.ListPayments(ctx, prop.ID, year)
		if err != nil {
			return TaxReport{}, fmt.Errorf("payments for property %d: %w", prop.ID, err)
		}
		var recv, late core.Money
		for _, p := range payments {
			recv = recv.Add(p.RentReceived)
			late = late.Add(p.LateFee)
		}

		byCategory, err := s.store.ExpensesByCategory(ctx, prop.ID, year)
		if err != nil {
			return TaxReport{}, fmt.Errorf("expense categories for property %d: %w", prop.ID, err)
		}
		var totalExp core.Money
		for _, ct := range byCategory {
			totalExp = totalExp.Add(ct.Total)
		}

		gross := recv.Add(late)
		report.Properties = append(report.Properties, PropertyTaxReport{
			ID:          prop.ID,
			Label:       prop.Label,
			Address:     prop.Address,
			TenantName:  prop.TenantName,
			TotalRecv:   recv,
			TotalLate:   late,
			GrossIncome: gross,
			Expenses:    byCategory,
			TotalExp:    totalExp,
			NetIncome:   gross.Sub(totalExp),
		})

		report.GrandIncome = report.GrandIncome.Add(gross)
		report.GrandExp = report.GrandExp.Add(totalExp)
	}
	report.GrandNet = report.GrandIncome.Sub(report.GrandExp)

	allCats, err := s.store.AllExpenseCategories(ctx, year)
	if err != nil {
		return TaxReport{}, fmt.Errorf("portfolio expense categories: %w", err)
	}
	report.AllCategories = allCats
	return report, nil
}
