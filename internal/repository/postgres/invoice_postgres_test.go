package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoiceapi/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicePostgres_ListCompanies(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewInvoicePostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"company"}).
			AddRow("company_1").
			AddRow("company_2")

		mock.ExpectQuery("SELECT DISTINCT company FROM invoices").
			WillReturnRows(rows)

		companies, err := repo.ListCompanies(ctx)

		assert.NoError(t, err)
		assert.Equal(t, []string{"company_1", "company_2"}, companies)
	})

	t.Run("empty table", func(t *testing.T) {
		mock.ExpectQuery("SELECT DISTINCT company FROM invoices").
			WillReturnRows(sqlmock.NewRows([]string{"company"}))

		companies, err := repo.ListCompanies(ctx)

		assert.NoError(t, err)
		assert.Empty(t, companies)
		assert.NotNil(t, companies)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT DISTINCT company FROM invoices").
			WillReturnError(errors.New("db down"))

		_, err := repo.ListCompanies(ctx)
		assert.Error(t, err)
	})
}

func TestInvoicePostgres_ListByCompany(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewInvoicePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		issued := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		paid := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "reference", "company", "issued_at", "amount", "paid_at", "paid_amount", "created_at"}).
			AddRow("id-1", "2024-1", "company_1", issued, "100.50", paid, "100.50", time.Now()).
			AddRow("id-2", "2024-2", "company_1", issued, "50", nil, "0", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM invoices WHERE company = ?").
			WithArgs("company_1").
			WillReturnRows(rows)

		invoices, err := repo.ListByCompany(ctx, "company_1")

		require.NoError(t, err)
		require.Len(t, invoices, 2)
		assert.Equal(t, "2024-1", invoices[0].Reference)
		assert.True(t, invoices[0].Amount.Equal(decimal.RequireFromString("100.50")))
		require.NotNil(t, invoices[0].PaidAt)
		assert.Nil(t, invoices[1].PaidAt)
	})

	t.Run("unknown company yields empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM invoices WHERE company = ?").
			WithArgs("company_99").
			WillReturnRows(sqlmock.NewRows([]string{"id", "reference", "company", "issued_at", "amount", "paid_at", "paid_amount", "created_at"}))

		invoices, err := repo.ListByCompany(ctx, "company_99")

		assert.NoError(t, err)
		assert.Empty(t, invoices)
		assert.NotNil(t, invoices)
	})
}

func TestInvoicePostgres_BulkInsert(t *testing.T) {
	ctx := context.Background()

	issued := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	invoices := []model.Invoice{
		{
			ID:         "id-1",
			Reference:  "2024-1",
			Company:    "company_1",
			IssuedAt:   issued,
			Amount:     decimal.NewFromInt(100),
			PaidAmount: decimal.Zero,
			CreatedAt:  issued,
		},
		{
			ID:         "id-2",
			Reference:  "2024-2",
			Company:    "company_1",
			IssuedAt:   issued,
			Amount:     decimal.NewFromInt(50),
			PaidAmount: decimal.Zero,
			CreatedAt:  issued,
		},
	}

	t.Run("inserts all rows in one tx", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewInvoicePostgres(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO invoices")
		mock.ExpectExec("INSERT INTO invoices").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO invoices").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		n, err := repo.BulkInsert(ctx, invoices)

		assert.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate rows are not counted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewInvoicePostgres(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO invoices")
		mock.ExpectExec("INSERT INTO invoices").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO invoices").
			WillReturnResult(sqlmock.NewResult(0, 0)) // conflict, skipped
		mock.ExpectCommit()

		n, err := repo.BulkInsert(ctx, invoices)

		assert.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("exec error rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewInvoicePostgres(db)

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO invoices")
		mock.ExpectExec("INSERT INTO invoices").
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		_, err = repo.BulkInsert(ctx, invoices)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert invoice 2024-1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewInvoicePostgres(db)

		n, err := repo.BulkInsert(ctx, nil)
		assert.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}
