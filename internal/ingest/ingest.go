// Package ingest parses and cleans raw invoice CSV files before they reach
// the database or the KPI engine. Rows it cannot repair are flagged in the
// report and skipped; the parse itself only fails on structural problems
// (unreadable CSV, missing required columns).
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invoiceapi/internal/model"
)

// referencePattern is the canonical invoice reference format: YYYY-N...
var referencePattern = regexp.MustCompile(`^\d{4}-\d+$`)

// Required CSV columns, matched case-insensitively after trimming.
const (
	colClient     = "client name"
	colReference  = "invoice reference"
	colIssued     = "date invoiced"
	colAmount     = "invoice amount"
	colPaidAmount = "paid amount"
	colPaid       = "date paid"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
}

var ErrEmptyFile = errors.New("csv file is empty")

// Issue records one flagged row.
type Issue struct {
	Line      int    `json:"line"`
	Reference string `json:"reference,omitempty"`
	Check     string `json:"check"`
	Detail    string `json:"detail,omitempty"`
}

// Checks reported for flagged rows.
const (
	CheckBadReference = "bad_reference"
	CheckBadDate      = "bad_date"
	CheckBadAmount    = "bad_amount"
	CheckNegativeDays = "negative_days"
	CheckPaidClipped  = "paid_clipped"
)

// Report summarizes what the cleaner fixed, flagged, or dropped.
type Report struct {
	TotalRows   int            `json:"total_rows"`
	Accepted    int            `json:"accepted"`
	Skipped     int            `json:"skipped"`
	CheckCounts map[string]int `json:"check_counts"`
	Issues      []Issue        `json:"issues"`
}

func (r *Report) flag(skip bool, is Issue) {
	r.CheckCounts[is.Check]++
	r.Issues = append(r.Issues, is)
	if skip {
		r.Skipped++
	}
}

// Parse reads invoice rows from r, normalizing references, parsing dates and
// amounts, and clipping paid amounts that exceed the invoiced amount. Rows
// with an unfixable reference, date, amount, or a payment dated before
// issuance are flagged and excluded from the returned slice.
func Parse(r io.Reader) ([]model.Invoice, *Report, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{CheckCounts: map[string]int{}, Issues: []Issue{}}
	var invoices []model.Invoice
	now := time.Now().UTC()

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", line, err)
		}
		report.TotalRows++

		ref := normalizeReference(record[cols[colReference]])
		if !referencePattern.MatchString(ref) {
			report.flag(true, Issue{Line: line, Reference: ref, Check: CheckBadReference})
			continue
		}

		issued, err := parseDate(record[cols[colIssued]])
		if err != nil {
			report.flag(true, Issue{Line: line, Reference: ref, Check: CheckBadDate, Detail: "date invoiced"})
			continue
		}
		if issued.IsZero() {
			report.flag(true, Issue{Line: line, Reference: ref, Check: CheckBadDate, Detail: "date invoiced missing"})
			continue
		}

		amount, err := parseAmount(record[cols[colAmount]])
		if err != nil || amount.IsNegative() {
			report.flag(true, Issue{Line: line, Reference: ref, Check: CheckBadAmount, Detail: "invoice amount"})
			continue
		}

		paidAmount, err := parseAmount(record[cols[colPaidAmount]])
		if err != nil {
			report.flag(true, Issue{Line: line, Reference: ref, Check: CheckBadAmount, Detail: "paid amount"})
			continue
		}

		var paidAt *time.Time
		if raw := strings.TrimSpace(record[cols[colPaid]]); raw != "" {
			pd, err := parseDate(raw)
			if err != nil {
				report.flag(true, Issue{Line: line, Reference: ref, Check: CheckBadDate, Detail: "date paid"})
				continue
			}
			if !pd.IsZero() {
				if pd.Before(issued) {
					report.flag(true, Issue{Line: line, Reference: ref, Check: CheckNegativeDays})
					continue
				}
				paidAt = &pd
			}
		}

		if paidAmount.GreaterThan(amount) {
			report.flag(false, Issue{Line: line, Reference: ref, Check: CheckPaidClipped,
				Detail: fmt.Sprintf("paid %s clipped to %s", paidAmount, amount)})
			paidAmount = amount
		}

		invoices = append(invoices, model.Invoice{
			ID:         uuid.NewString(),
			Reference:  ref,
			Company:    normalizeCompany(record[cols[colClient]]),
			IssuedAt:   issued,
			Amount:     amount,
			PaidAt:     paidAt,
			PaidAmount: paidAmount,
			CreatedAt:  now,
		})
	}

	report.Accepted = len(invoices)
	return invoices, report, nil
}

func mapColumns(header []string) (map[string]int, error) {
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colClient, colReference, colIssued, colAmount, colPaidAmount, colPaid} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

// normalizeReference uppercases the reference, strips inner spaces, and
// replaces slashes with dashes, e.g. "2024/17" -> "2024-17".
func normalizeReference(ref string) string {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	ref = strings.ReplaceAll(ref, " ", "")
	return strings.ReplaceAll(ref, "/", "-")
}

// normalizeCompany maps a raw client identifier to the canonical
// "company_<id>" form used across the API.
func normalizeCompany(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "company_") {
		return raw
	}
	return "company_" + raw
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
