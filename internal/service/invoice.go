package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"invoiceapi/internal/ingest"
	"invoiceapi/internal/kpi"
	"invoiceapi/internal/model"
	"invoiceapi/internal/repository"
	"invoiceapi/internal/storage"
)

var (
	ErrCompanyRequired  = errors.New("company is required")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrReaderNil        = errors.New("reader is nil")
	ErrInvalidCSV       = errors.New("invalid csv")
	ErrImportIDRequired = errors.New("import id is required")
	ErrImportNotFound   = errors.New("import not found")
)

// archiveURLExpiry bounds how long a presigned archive download link stays valid.
const archiveURLExpiry = 15 * time.Minute

// MetricsParams carry the per-request knobs for KPI computation.
type MetricsParams struct {
	// LateThresholdDays overrides the configured default when positive.
	LateThresholdDays int
	// AsOf, when non-zero, enables overdue judgement for unpaid invoices.
	AsOf time.Time
}

// MetricsResult is the full KPI payload for one company.
type MetricsResult struct {
	Company string `json:"company"`

	kpi.Summary

	MonthlyTotals   []kpi.MonthTotal   `json:"monthly_totals"`
	WeeklyTotals    []kpi.PeriodTotal  `json:"weekly_totals"`
	AnnualTotals    []kpi.PeriodTotal  `json:"annual_totals"`
	RevenueOverTime []kpi.RevenuePoint `json:"revenue_over_time"`
	Seasonality     []kpi.SeasonStat   `json:"seasonality"`

	// LateDefinition states which lateness rule produced LateInvoices.
	LateDefinition string `json:"late_definition"`
}

// ImportResult reports the outcome of one CSV import.
type ImportResult struct {
	ObjectKey string         `json:"object_key"`
	Inserted  int            `json:"inserted"`
	Report    *ingest.Report `json:"report"`
}

// InvoiceService defines the use cases for serving invoice data and KPIs.
type InvoiceService interface {
	// Companies returns the sorted list of known company identifiers.
	Companies(ctx context.Context) ([]string, error)

	// Invoices returns a company's annotated invoice table ordered by issue
	// date, using the configured default lateness threshold.
	Invoices(ctx context.Context, company string) ([]kpi.Annotated, error)

	// Metrics computes the full KPI payload for a company.
	Metrics(ctx context.Context, company string, params MetricsParams) (*MetricsResult, error)

	// ImportCSV archives the raw file to object storage, parses and cleans
	// it, and bulk-inserts the accepted rows. The archived object is removed
	// again if parsing or the DB insert fails.
	ImportCSV(ctx context.Context, r io.Reader, originalFilename string) (*ImportResult, error)

	// ArchiveDownloadURL returns a time-limited URL for the archived CSV of
	// a previous import, so the raw source can be audited or replayed.
	ArchiveDownloadURL(ctx context.Context, importID string) (string, error)
}

// invoiceService is a concrete implementation of InvoiceService.
type invoiceService struct {
	store            storage.Storage
	repo             repository.InvoiceRepository
	defaultThreshold int
}

// NewInvoiceService constructs a new InvoiceService. defaultLateThresholdDays
// comes from configuration; zero or negative falls back to the engine default.
func NewInvoiceService(store storage.Storage, repo repository.InvoiceRepository, defaultLateThresholdDays int) InvoiceService {
	if defaultLateThresholdDays <= 0 {
		defaultLateThresholdDays = kpi.DefaultLateThresholdDays
	}
	return &invoiceService{store: store, repo: repo, defaultThreshold: defaultLateThresholdDays}
}

func (s *invoiceService) Companies(ctx context.Context) ([]string, error) {
	return s.repo.ListCompanies(ctx)
}

func (s *invoiceService) Invoices(ctx context.Context, company string) ([]kpi.Annotated, error) {
	invoices, err := s.load(ctx, company)
	if err != nil {
		return nil, err
	}
	return kpi.Annotate(invoices, kpi.Options{LateThresholdDays: s.defaultThreshold})
}

func (s *invoiceService) Metrics(ctx context.Context, company string, params MetricsParams) (*MetricsResult, error) {
	invoices, err := s.load(ctx, company)
	if err != nil {
		return nil, err
	}

	threshold := params.LateThresholdDays
	if threshold <= 0 {
		threshold = s.defaultThreshold
	}

	annotated, err := kpi.Annotate(invoices, kpi.Options{
		LateThresholdDays: threshold,
		AsOf:              params.AsOf,
	})
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	return &MetricsResult{
		Company:         company,
		Summary:         kpi.Summarize(annotated),
		MonthlyTotals:   kpi.MonthlyTotals(invoices),
		WeeklyTotals:    kpi.WeeklyTotals(invoices),
		AnnualTotals:    kpi.AnnualTotals(invoices),
		RevenueOverTime: kpi.RevenueOverTime(invoices),
		Seasonality:     kpi.Seasonality(invoices),
		LateDefinition:  fmt.Sprintf("> %d days to pay", threshold),
	}, nil
}

// load fetches a company's invoices, mapping an empty result to
// ErrCompanyNotFound: companies only exist through their invoice rows.
func (s *invoiceService) load(ctx context.Context, company string) ([]model.Invoice, error) {
	if company == "" {
		return nil, ErrCompanyRequired
	}
	invoices, err := s.repo.ListByCompany(ctx, company)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ErrCompanyNotFound
	}
	return invoices, nil
}

func (s *invoiceService) ImportCSV(ctx context.Context, r io.Reader, originalFilename string) (*ImportResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	// Buffer the file: it is both archived verbatim and parsed.
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	key := "imports/" + uuid.NewString() + ".csv"
	_, err = s.store.Put(ctx, key, bytes.NewReader(raw), storage.PutObjectOptions{
		Size:        int64(len(raw)),
		ContentType: "text/csv",
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("archive to storage: %w", err)
	}

	invoices, report, err := ingest.Parse(bytes.NewReader(raw))
	if err != nil {
		// Rollback: don't keep archives of files we rejected outright.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("%w: %v; rollback delete failed: %v", ErrInvalidCSV, err, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	inserted, err := s.repo.BulkInsert(ctx, invoices)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	return &ImportResult{
		ObjectKey: key,
		Inserted:  inserted,
		Report:    report,
	}, nil
}

func (s *invoiceService) ArchiveDownloadURL(ctx context.Context, importID string) (string, error) {
	if importID == "" {
		return "", ErrImportIDRequired
	}
	key := "imports/" + importID + ".csv"

	// Stat the object first so a missing archive maps to a clean not-found
	// instead of a presigned URL that 404s later.
	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		return "", ErrImportNotFound
	}
	rc.Close()

	return s.store.PresignGet(ctx, key, archiveURLExpiry)
}
