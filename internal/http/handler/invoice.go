package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"invoiceapi/internal/service"
)

// HealthCheck reports readiness: healthy only when the database answers a ping.
//
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint that always returns 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListCompanies returns every company identifier known to the system.
//
// @Summary List companies
// @Produce json
// @Success 200 {array} string
// @Router /companies [get]
func ListCompanies(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companies, err := svc.Companies(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(companies)
	}
}

// ListCompanyInvoices returns a company's annotated invoice table.
//
// @Summary List a company's invoices with days-to-pay annotations
// @Produce json
// @Param name path string true "Company identifier"
// @Success 200 {array} kpi.Annotated
// @Failure 404 {object} errorPayload
// @Router /companies/{name}/invoices [get]
func ListCompanyInvoices(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		annotated, err := svc.Invoices(c.UserContext(), name)
		if err != nil {
			if errors.Is(err, service.ErrCompanyNotFound) {
				return writeError(c, fiber.StatusNotFound, "COMPANY_NOT_FOUND", "company not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(annotated)
	}
}

// CompanyMetrics returns the full KPI payload for a company.
//
// Query parameters:
//   - late_threshold: days-to-pay above which a paid invoice is late
//   - as_of: YYYY-MM-DD reference date enabling overdue judgement of unpaid invoices
//
// @Summary Company KPI metrics
// @Produce json
// @Param name path string true "Company identifier"
// @Param late_threshold query int false "Lateness threshold in days"
// @Param as_of query string false "Reference date (YYYY-MM-DD) for overdue flagging"
// @Success 200 {object} service.MetricsResult
// @Failure 404 {object} errorPayload
// @Router /companies/{name}/metrics [get]
func CompanyMetrics(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")

		var params service.MetricsParams
		if raw := c.Query("late_threshold"); raw != "" {
			threshold, err := strconv.Atoi(raw)
			if err != nil || threshold < 0 {
				return writeError(c, fiber.StatusBadRequest, "INVALID_THRESHOLD", "invalid late_threshold")
			}
			params.LateThresholdDays = threshold
		}
		if raw := c.Query("as_of"); raw != "" {
			asOf, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_AS_OF", "invalid as_of date, expected YYYY-MM-DD")
			}
			params.AsOf = asOf
		}

		res, err := svc.Metrics(c.UserContext(), name, params)
		if err != nil {
			if errors.Is(err, service.ErrCompanyNotFound) {
				return writeError(c, fiber.StatusNotFound, "COMPANY_NOT_FOUND", "company not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// ImportInvoices ingests a CSV file (multipart/form-data, field name: file).
//
// @Summary Import invoices from CSV
// @Accept mpfd
// @Produce json
// @Param file formData file true "Invoice CSV"
// @Success 201 {object} service.ImportResult
// @Failure 400 {object} errorPayload
// @Router /imports [post]
func ImportInvoices(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.ImportCSV(c.UserContext(), f, fh.Filename)
		if err != nil {
			if errors.Is(err, service.ErrReaderNil) {
				return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
			}
			if errors.Is(err, service.ErrInvalidCSV) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_CSV", "csv could not be parsed")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// DownloadImportArchive returns a time-limited URL for the archived CSV of a
// previous import.
//
// @Summary Presigned download URL for an import's archived CSV
// @Produce json
// @Param id path string true "Import identifier"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /imports/{id}/archive [get]
func DownloadImportArchive(svc service.InvoiceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		url, err := svc.ArchiveDownloadURL(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrImportNotFound) {
				return writeError(c, fiber.StatusNotFound, "IMPORT_NOT_FOUND", "import not found")
			}
			if errors.Is(err, service.ErrImportIDRequired) {
				return writeError(c, fiber.StatusBadRequest, "IMPORT_ID_REQUIRED", "import id is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"url": url})
	}
}
