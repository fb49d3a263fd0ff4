package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"invoiceapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; all business logic lives in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.InvoiceService) {
	// Readiness probe: checks DB connectivity only
	app.Get("/health", HealthCheck(db))

	// Simple liveness probe
	app.Get("/healthz", LivenessProbe())

	app.Get("/companies", ListCompanies(svc))
	app.Get("/companies/:name/invoices", ListCompanyInvoices(svc))
	app.Get("/companies/:name/metrics", CompanyMetrics(svc))

	// CSV ingestion (multipart/form-data, field name: file)
	app.Post("/imports", ImportInvoices(svc))
	app.Get("/imports/:id/archive", DownloadImportArchive(svc))
}
