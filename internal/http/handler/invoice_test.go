package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoiceapi/internal/ingest"
	"invoiceapi/internal/kpi"
	"invoiceapi/internal/service"
	serviceMocks "invoiceapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListCompanies(t *testing.T) {
	mockSvc := new(serviceMocks.MockInvoiceService)
	app := fiber.New()
	app.Get("/companies", ListCompanies(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Companies", mock.Anything).
			Return([]string{"company_1", "company_2"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/companies", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var companies []string
		json.NewDecoder(resp.Body).Decode(&companies)
		assert.Equal(t, []string{"company_1", "company_2"}, companies)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Companies", mock.Anything).
			Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/companies", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListCompanyInvoices(t *testing.T) {
	mockSvc := new(serviceMocks.MockInvoiceService)
	app := fiber.New()
	app.Get("/companies/:name/invoices", ListCompanyInvoices(mockSvc))

	t.Run("success", func(t *testing.T) {
		days := 36
		mockSvc.On("Invoices", mock.Anything, "company_1").
			Return([]kpi.Annotated{{DaysToPay: &days, IsLate: true}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/companies/company_1/invoices", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 1)
		assert.Equal(t, float64(36), result[0]["days_to_pay"])
		assert.Equal(t, true, result[0]["is_late"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("company not found", func(t *testing.T) {
		mockSvc.On("Invoices", mock.Anything, "company_99").
			Return(nil, service.ErrCompanyNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/companies/company_99/invoices", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "COMPANY_NOT_FOUND", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestCompanyMetrics(t *testing.T) {
	mockSvc := new(serviceMocks.MockInvoiceService)
	app := fiber.New()
	app.Get("/companies/:name/metrics", CompanyMetrics(mockSvc))

	t.Run("success with defaults", func(t *testing.T) {
		avg := 36.0
		mockSvc.On("Metrics", mock.Anything, "company_1", service.MetricsParams{}).
			Return(&service.MetricsResult{
				Company:        "company_1",
				Summary:        kpi.Summary{AverageDaysToPay: &avg, LateCount: 1, TotalCount: 2},
				LateDefinition: "> 30 days to pay",
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/companies/company_1/metrics", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "company_1", body["company"])
		assert.Equal(t, 36.0, body["average_days_to_pay"])
		assert.Equal(t, "> 30 days to pay", body["late_definition"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("passes threshold and as_of through", func(t *testing.T) {
		wantParams := service.MetricsParams{
			LateThresholdDays: 45,
			AsOf:              time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}
		mockSvc.On("Metrics", mock.Anything, "company_1", wantParams).
			Return(&service.MetricsResult{Company: "company_1"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/companies/company_1/metrics?late_threshold=45&as_of=2024-06-01", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/companies/company_1/metrics?late_threshold=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_THRESHOLD", body.Error.Code)
	})

	t.Run("invalid as_of", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/companies/company_1/metrics?as_of=June", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_AS_OF", body.Error.Code)
	})

	t.Run("company not found", func(t *testing.T) {
		mockSvc.On("Metrics", mock.Anything, "company_99", service.MetricsParams{}).
			Return(nil, service.ErrCompanyNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/companies/company_99/metrics", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func newMultipartRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/imports", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImportInvoices(t *testing.T) {
	mockSvc := new(serviceMocks.MockInvoiceService)
	app := fiber.New()
	app.Post("/imports", ImportInvoices(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("ImportCSV", mock.Anything, mock.Anything, "invoices.csv").
			Return(&service.ImportResult{
				ObjectKey: "imports/uuid.csv",
				Inserted:  2,
				Report:    &ingest.Report{TotalRows: 2, Accepted: 2, CheckCounts: map[string]int{}},
			}, nil).Once()

		req := newMultipartRequest(t, "file", "invoices.csv", "csv-content")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var res service.ImportResult
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, 2, res.Inserted)
		assert.Equal(t, "imports/uuid.csv", res.ObjectKey)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/imports", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "FILE_REQUIRED", body.Error.Code)
	})

	t.Run("invalid csv", func(t *testing.T) {
		mockSvc.On("ImportCSV", mock.Anything, mock.Anything, "broken.csv").
			Return(nil, service.ErrInvalidCSV).Once()

		req := newMultipartRequest(t, "file", "broken.csv", "not a csv")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_CSV", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("ImportCSV", mock.Anything, mock.Anything, "invoices.csv").
			Return(nil, errors.New("db fail")).Once()

		req := newMultipartRequest(t, "file", "invoices.csv", "csv-content")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadImportArchive(t *testing.T) {
	mockSvc := new(serviceMocks.MockInvoiceService)
	app := fiber.New()
	app.Get("/imports/:id/archive", DownloadImportArchive(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("ArchiveDownloadURL", mock.Anything, "abc-123").
			Return("https://minio.local/imports/abc-123.csv?sig=x", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/imports/abc-123/archive", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "https://minio.local/imports/abc-123.csv?sig=x", body["url"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("ArchiveDownloadURL", mock.Anything, "missing").
			Return("", service.ErrImportNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/imports/missing/archive", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "IMPORT_NOT_FOUND", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("presign error", func(t *testing.T) {
		mockSvc.On("ArchiveDownloadURL", mock.Anything, "abc-123").
			Return("", errors.New("presign fail")).Once()

		req := httptest.NewRequest(http.MethodGet, "/imports/abc-123/archive", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}
