// Package kpi computes derived fields and aggregate summaries over a
// company's invoice collection. All operations are pure functions of their
// input: no shared state, no clock, no I/O. Callers may run them concurrently
// on disjoint inputs without coordination.
package kpi

import (
	"fmt"
	"math"
	"time"

	"invoiceapi/internal/model"
)

// DefaultLateThresholdDays is the fallback lateness threshold in days.
// It is applied per call through Options, never as hidden package state.
const DefaultLateThresholdDays = 30

// Options configure a single annotation pass.
type Options struct {
	// LateThresholdDays is the number of days-to-pay above which a paid
	// invoice counts as late. Zero or negative falls back to
	// DefaultLateThresholdDays.
	LateThresholdDays int

	// AsOf, when non-zero, enables overdue judgement for unpaid invoices:
	// an unpaid invoice is overdue when AsOf - IssuedAt exceeds the
	// threshold. The engine has no notion of "now" on its own.
	AsOf time.Time
}

func (o Options) threshold() int {
	if o.LateThresholdDays <= 0 {
		return DefaultLateThresholdDays
	}
	return o.LateThresholdDays
}

// Annotated pairs an invoice with its computed per-record fields.
type Annotated struct {
	model.Invoice

	// DaysToPay is nil while the invoice is unpaid.
	DaysToPay *int `json:"days_to_pay"`

	// IsLate is true when DaysToPay exceeds the threshold. Unpaid invoices
	// are never late, regardless of elapsed time.
	IsLate bool `json:"is_late"`

	// IsOverdue is true only for unpaid invoices judged against an explicit
	// Options.AsOf date. Without AsOf it stays false.
	IsOverdue bool `json:"is_overdue"`
}

// RecordError identifies a structurally invalid input record. Any such
// record aborts the whole batch; filtering bad rows is the caller's call.
type RecordError struct {
	Index     int
	Reference string
	Field     string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invoice %d (%s): missing or invalid %s", e.Index, e.Reference, e.Field)
}

// Annotate computes days-to-pay and lateness flags for each invoice,
// preserving input order. Input records are never mutated.
//
// A missing issue date is a structural error and fails the whole call.
// A paid date before the issue date is not: the negative days-to-pay is
// passed through as-is, since rejecting bad rows is an ingestion concern.
func Annotate(invoices []model.Invoice, opts Options) ([]Annotated, error) {
	threshold := opts.threshold()

	out := make([]Annotated, 0, len(invoices))
	for i, inv := range invoices {
		if inv.IssuedAt.IsZero() {
			return nil, &RecordError{Index: i, Reference: inv.Reference, Field: "issued_at"}
		}

		a := Annotated{Invoice: inv}
		if inv.Paid() {
			days := wholeDays(inv.IssuedAt, *inv.PaidAt)
			a.DaysToPay = &days
			a.IsLate = days > threshold
		} else if !opts.AsOf.IsZero() {
			a.IsOverdue = wholeDays(inv.IssuedAt, opts.AsOf) > threshold
		}
		out = append(out, a)
	}
	return out, nil
}

// Summary holds the scalar KPIs for one annotated invoice collection.
type Summary struct {
	// AverageDaysToPay is nil when no invoice has a defined days-to-pay,
	// never zero: an empty average would be a misleading KPI.
	AverageDaysToPay *float64 `json:"average_days_to_pay"`
	MinDaysToPay     *int     `json:"min_days_to_pay"`
	MaxDaysToPay     *int     `json:"max_days_to_pay"`

	// LateInvoices preserves the input's relative order.
	LateInvoices []Annotated `json:"late_invoices"`

	// LateOverAverage lists references of invoices whose days-to-pay exceeds
	// the collection's own average days-to-pay.
	LateOverAverage []string `json:"late_invoices_over_average"`

	LateCount    int `json:"late_count"`
	OverdueCount int `json:"overdue_count"`
	TotalCount   int `json:"total_count"`
}

// Summarize reduces an annotated collection to scalar KPIs. It is a total
// function: empty input yields nil averages and zero counts, not an error.
func Summarize(annotated []Annotated) Summary {
	s := Summary{
		LateInvoices:    []Annotated{},
		LateOverAverage: []string{},
		TotalCount:      len(annotated),
	}

	var sum, paid int
	for _, a := range annotated {
		if a.IsLate {
			s.LateInvoices = append(s.LateInvoices, a)
			s.LateCount++
		}
		if a.IsOverdue {
			s.OverdueCount++
		}
		if a.DaysToPay == nil {
			continue
		}
		d := *a.DaysToPay
		sum += d
		paid++
		if s.MinDaysToPay == nil || d < *s.MinDaysToPay {
			v := d
			s.MinDaysToPay = &v
		}
		if s.MaxDaysToPay == nil || d > *s.MaxDaysToPay {
			v := d
			s.MaxDaysToPay = &v
		}
	}

	if paid == 0 {
		return s
	}

	avg := math.Round(float64(sum)/float64(paid)*100) / 100
	s.AverageDaysToPay = &avg

	for _, a := range annotated {
		if a.DaysToPay != nil && float64(*a.DaysToPay) > avg {
			s.LateOverAverage = append(s.LateOverAverage, a.Reference)
		}
	}
	return s
}

// wholeDays returns the number of whole calendar days between two instants,
// ignoring the time-of-day component.
func wholeDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
