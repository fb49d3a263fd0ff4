package kpi

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"invoiceapi/internal/model"
)

// MonthTotal is one calendar-month bucket of invoiced vs paid activity.
// The two sides are bucketed independently: InvoicedTotal by issue month,
// PaidTotal by payment month, so they may reference different invoices.
type MonthTotal struct {
	Month         string          `json:"month"` // YYYY-MM
	InvoicedTotal decimal.Decimal `json:"invoiced_total"`
	PaidTotal     decimal.Decimal `json:"paid_total"`
}

// MonthlyTotals buckets amounts by calendar month, ascending. A month with
// activity on only one side still appears, with the other side zero.
func MonthlyTotals(invoices []model.Invoice) []MonthTotal {
	invoiced := map[string]decimal.Decimal{}
	paid := map[string]decimal.Decimal{}

	for _, inv := range invoices {
		if inv.IssuedAt.IsZero() {
			continue
		}
		im := monthKey(inv.IssuedAt)
		invoiced[im] = invoiced[im].Add(inv.Amount)
		if inv.Paid() {
			pm := monthKey(*inv.PaidAt)
			paid[pm] = paid[pm].Add(inv.PaidAmount)
		}
	}

	months := make([]string, 0, len(invoiced)+len(paid))
	seen := map[string]bool{}
	for m := range invoiced {
		months = append(months, m)
		seen[m] = true
	}
	for m := range paid {
		if !seen[m] {
			months = append(months, m)
		}
	}
	sort.Strings(months)

	out := make([]MonthTotal, 0, len(months))
	for _, m := range months {
		out = append(out, MonthTotal{
			Month:         m,
			InvoicedTotal: invoiced[m],
			PaidTotal:     paid[m],
		})
	}
	return out
}

// PeriodTotal is one issue-date bucket for the weekly and annual series.
// Both sides group by issue date: PaidTotal sums payments received against
// invoices issued in the period, whenever those payments landed.
type PeriodTotal struct {
	Period       string          `json:"period"`
	InvoiceTotal decimal.Decimal `json:"invoice_total"`
	PaidTotal    decimal.Decimal `json:"paid_total"`
	InvoiceCount int             `json:"invoice_count"`
}

// WeeklyTotals buckets invoices by the ISO week of their issue date.
func WeeklyTotals(invoices []model.Invoice) []PeriodTotal {
	return periodTotals(invoices, func(t time.Time) string {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-%02d", year, week)
	})
}

// AnnualTotals buckets invoices by the year of their issue date.
func AnnualTotals(invoices []model.Invoice) []PeriodTotal {
	return periodTotals(invoices, func(t time.Time) string {
		return fmt.Sprintf("%04d", t.Year())
	})
}

func periodTotals(invoices []model.Invoice, key func(time.Time) string) []PeriodTotal {
	buckets := map[string]*PeriodTotal{}
	for _, inv := range invoices {
		if inv.IssuedAt.IsZero() {
			continue
		}
		k := key(inv.IssuedAt)
		b, ok := buckets[k]
		if !ok {
			b = &PeriodTotal{Period: k}
			buckets[k] = b
		}
		b.InvoiceTotal = b.InvoiceTotal.Add(inv.Amount)
		if inv.Paid() {
			b.PaidTotal = b.PaidTotal.Add(inv.PaidAmount)
		}
		b.InvoiceCount++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]PeriodTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out
}

// RevenuePoint is one step of the cumulative paid-amount series.
type RevenuePoint struct {
	Date           time.Time       `json:"date"`
	CumulativePaid decimal.Decimal `json:"cumulative_paid"`
}

// RevenueOverTime returns the running sum of paid amounts, one point per
// invoice, ordered by issue date. Unpaid invoices contribute zero but still
// produce a point, matching the invoice table row-for-row.
func RevenueOverTime(invoices []model.Invoice) []RevenuePoint {
	ordered := make([]model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.IssuedAt.IsZero() {
			continue
		}
		ordered = append(ordered, inv)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].IssuedAt.Before(ordered[j].IssuedAt)
	})

	out := make([]RevenuePoint, 0, len(ordered))
	running := decimal.Zero
	for _, inv := range ordered {
		if inv.Paid() {
			running = running.Add(inv.PaidAmount)
		}
		out = append(out, RevenuePoint{Date: inv.IssuedAt, CumulativePaid: running})
	}
	return out
}

// SeasonStat aggregates issuance activity per calendar month across years.
type SeasonStat struct {
	Month           int             `json:"month"` // 1-12
	AvgInvoiceValue decimal.Decimal `json:"avg_invoice_value"`
	InvoiceCount    int             `json:"invoice_count"`
}

// Seasonality returns, for each calendar month with any activity, the
// average invoice value and invoice count across all years in the input.
func Seasonality(invoices []model.Invoice) []SeasonStat {
	sums := map[int]decimal.Decimal{}
	counts := map[int]int{}
	for _, inv := range invoices {
		if inv.IssuedAt.IsZero() {
			continue
		}
		m := int(inv.IssuedAt.Month())
		sums[m] = sums[m].Add(inv.Amount)
		counts[m]++
	}

	out := make([]SeasonStat, 0, len(sums))
	for m := 1; m <= 12; m++ {
		n, ok := counts[m]
		if !ok {
			continue
		}
		out = append(out, SeasonStat{
			Month:           m,
			AvgInvoiceValue: sums[m].Div(decimal.NewFromInt(int64(n))).Round(2),
			InvoiceCount:    n,
		})
	}
	return out
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
