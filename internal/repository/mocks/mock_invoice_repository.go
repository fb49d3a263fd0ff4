package mocks

import (
	"context"

	"invoiceapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) ListCompanies(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) ListByCompany(ctx context.Context, company string) ([]model.Invoice, error) {
	args := m.Called(ctx, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) BulkInsert(ctx context.Context, invoices []model.Invoice) (int, error) {
	args := m.Called(ctx, invoices)
	return args.Int(0), args.Error(1)
}
