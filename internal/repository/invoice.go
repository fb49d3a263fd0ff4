package repository

import (
	"context"

	"invoiceapi/internal/model"
)

// InvoiceRepository defines data access for invoices using SQL queries only.
// No business logic here, strictly persistence operations. KPI computation
// happens in memory, so reads return full company collections rather than
// pre-aggregated rows.
type InvoiceRepository interface {
	// ListCompanies returns the distinct company identifiers present in the
	// invoices table, sorted ascending.
	ListCompanies(ctx context.Context) ([]string, error)

	// ListByCompany returns every invoice for the company ordered by issue
	// date ascending. An unknown company yields an empty slice, not an error.
	ListByCompany(ctx context.Context, company string) ([]model.Invoice, error)

	// BulkInsert stores a batch of invoices in a single transaction.
	// Rows conflicting on (company, reference) are skipped. Returns the
	// number of rows actually inserted.
	BulkInsert(ctx context.Context, invoices []model.Invoice) (int, error)
}
