package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"invoiceapi/internal/model"
	"invoiceapi/internal/repository"
)

// InvoicePostgres is a PostgreSQL implementation of repository.InvoiceRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type InvoicePostgres struct {
	db *sql.DB
}

// NewInvoicePostgres creates a new InvoicePostgres repository.
func NewInvoicePostgres(db *sql.DB) *InvoicePostgres {
	return &InvoicePostgres{db: db}
}

var _ repository.InvoiceRepository = (*InvoicePostgres)(nil)

// ListCompanies returns distinct company identifiers in ascending order.
func (r *InvoicePostgres) ListCompanies(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT company FROM invoices ORDER BY company ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return companies, nil
}

// ListByCompany fetches all invoices for a company ordered by issue date.
func (r *InvoicePostgres) ListByCompany(ctx context.Context, company string) ([]model.Invoice, error) {
	const q = `
		SELECT id, reference, company, issued_at, amount, paid_at, paid_amount, created_at
		FROM invoices
		WHERE company = $1
		ORDER BY issued_at ASC, reference ASC
	`
	rows, err := r.db.QueryContext(ctx, q, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]model.Invoice, 0)
	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.Reference,
			&inv.Company,
			&inv.IssuedAt,
			&inv.Amount,
			&inv.PaidAt,
			&inv.PaidAmount,
			&inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

// BulkInsert stores invoices in one transaction, skipping duplicates on
// (company, reference). Returns the number of rows actually inserted.
func (r *InvoicePostgres) BulkInsert(ctx context.Context, invoices []model.Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO invoices (id, reference, company, issued_at, amount, paid_at, paid_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company, reference) DO NOTHING
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, inv := range invoices {
		res, err := stmt.ExecContext(ctx,
			inv.ID,
			inv.Reference,
			inv.Company,
			inv.IssuedAt,
			inv.Amount,
			inv.PaidAt,
			inv.PaidAmount,
			inv.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert invoice %s: %w", inv.Reference, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
