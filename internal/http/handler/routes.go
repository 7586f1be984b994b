package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sheetdash/docs"
	"sheetdash/internal/http/middleware"
	"sheetdash/internal/model"
	"sheetdash/internal/service"
)

// Deps carries the collaborators the routes dispatch to.
type Deps struct {
	DB             *sql.DB
	Gatherer       prometheus.Gatherer
	MaxUploadBytes int64

	Uploads   service.UploadService
	Insights  service.InsightService
	Dashboard service.DashboardService
	Accounts  service.AccountService
	Admin     service.AdminService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	app.Post("/accounts", RegisterAccount(d.Accounts))

	identity := middleware.Identity()

	me := app.Group("/me", identity)
	me.Get("", GetMe(d.Accounts))
	me.Patch("", UpdateMe(d.Accounts))
	me.Delete("", DeleteMe(d.Accounts))

	uploads := app.Group("/uploads", identity)
	uploads.Post("", UploadSpreadsheet(d.Uploads, d.MaxUploadBytes))
	uploads.Get("", ListUploads(d.Uploads))
	uploads.Get("/:id", GetUpload(d.Uploads))
	uploads.Get("/:id/download", DownloadUpload(d.Uploads))
	uploads.Get("/:id/download-url", DownloadURL(d.Uploads))
	uploads.Get("/:id/export", ExportUpload(d.Uploads))
	uploads.Get("/:id/insight", GetInsight(d.Insights))
	uploads.Delete("/:id", DeleteUpload(d.Uploads))

	dash := app.Group("/dashboard", identity)
	dash.Get("/summary", DashboardSummary(d.Dashboard))
	dash.Get("/recent", DashboardRecent(d.Dashboard))
	dash.Get("/chart", DashboardChart(d.Dashboard))
	dash.Get("/trends", DashboardTrends(d.Dashboard))

	admin := app.Group("/admin", identity, middleware.RequireRole(model.RoleAdmin))
	admin.Get("/stats", AdminStats(d.Admin))
	admin.Get("/accounts", ListAccounts(d.Admin))
	admin.Get("/accounts/:id", GetAccount(d.Admin))
	admin.Delete("/accounts/:id", DeleteAccount(d.Admin))
	admin.Delete("/accounts/:id/uploads/:uploadId", DeleteAccountUpload(d.Admin))

	super := app.Group("/superadmin", identity, middleware.RequireRole(model.RoleSuperadmin))
	super.Get("/stats", SystemStats(d.Admin))
	super.Get("/admins", ListAdmins(d.Admin))
	super.Post("/accounts/:id/promote", PromoteAccount(d.Admin))
	super.Post("/accounts/:id/demote", DemoteAccount(d.Admin))
}
