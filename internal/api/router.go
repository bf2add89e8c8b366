package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appliancehub/console-api/internal/api/handler"
	"github.com/appliancehub/console-api/internal/api/middleware"
	"github.com/appliancehub/console-api/internal/core/ports"
	"github.com/appliancehub/console-api/internal/core/service"
)

// Deps carries everything the router needs. Construction happens in
// main; the router only wires.
type Deps struct {
	JWTSecret  string
	Mongo      *mongo.Database
	Redis      *redis.Client
	Backend    ports.Backend
	Admin      ports.AuthSession
	Technician ports.AuthSession
	Issuer     *service.TokenIssuer
	Reports    *service.ReportService
	Audit      ports.AuditRecorder
	Log        zerolog.Logger
}

// adminResources are the backend collections the admin console manages
// through the passthrough proxy.
var adminResources = []string{
	"products",
	"categories",
	"customers",
	"orders",
	"payments",
	"technicians",
	"feedback",
}

// technicianResources are the collections exposed to the technician
// console.
var technicianResources = []string{
	"service-requests",
	"timeslots",
	"resources",
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("console"))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis, d.Backend)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Per-console wiring: each console gets its own auth surface and
	// guarded resource group, bound to its own session. ---
	registerConsole(e, "admin", d.Admin, d)
	registerConsole(e, "technician", d.Technician, d)

	return e
}

func registerConsole(e *echo.Echo, name string, session ports.AuthSession, d Deps) {
	authHandler := handler.NewAuthHandler(session, d.Issuer)
	resourceHandler := handler.NewResourceHandler(d.Backend, session)

	base := e.Group("/api/" + name)

	// Auth routes are unguarded; the session endpoint must be readable
	// while anonymous so the console can render the login screen.
	base.POST("/auth/login", authHandler.Login)
	base.POST("/auth/logout", authHandler.Logout)
	base.GET("/auth/session", authHandler.Session)
	base.DELETE("/auth/session/error", authHandler.ClearError)

	guarded := base.Group("", middleware.Guard(d.JWTSecret, session))

	resources := technicianResources
	if name == "admin" {
		resources = adminResources

		reportHandler := handler.NewReportHandler(d.Reports, session)
		guarded.GET("/dashboard", reportHandler.Dashboard)
		guarded.GET("/reports/customers", reportHandler.Customers)
		guarded.GET("/reports/revenue", reportHandler.MonthlyRevenue)
		guarded.GET("/orders/search", reportHandler.SearchOrders)

		auditHandler := handler.NewAuditHandler(d.Audit)
		guarded.GET("/audit", auditHandler.List)
	}

	for _, r := range resources {
		guarded.GET("/"+r, resourceHandler.Collection(r))
		guarded.POST("/"+r, resourceHandler.Collection(r))
		guarded.GET("/"+r+"/:id", resourceHandler.Item(r))
		guarded.PUT("/"+r+"/:id", resourceHandler.Item(r))
		guarded.DELETE("/"+r+"/:id", resourceHandler.Item(r))
	}
}
