package mocks

import (
	"context"
	"io"

	"invoiceapi/internal/kpi"
	"invoiceapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Companies(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceService) Invoices(ctx context.Context, company string) ([]kpi.Annotated, error) {
	args := m.Called(ctx, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kpi.Annotated), args.Error(1)
}

func (m *MockInvoiceService) Metrics(ctx context.Context, company string, params service.MetricsParams) (*service.MetricsResult, error) {
	args := m.Called(ctx, company, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MetricsResult), args.Error(1)
}

func (m *MockInvoiceService) ImportCSV(ctx context.Context, r io.Reader, originalFilename string) (*service.ImportResult, error) {
	args := m.Called(ctx, r, originalFilename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

func (m *MockInvoiceService) ArchiveDownloadURL(ctx context.Context, importID string) (string, error) {
	args := m.Called(ctx, importID)
	return args.String(0), args.Error(1)
}
