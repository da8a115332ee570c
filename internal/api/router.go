package api

import (
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/galacash/gateway/internal/api/handler"
	"github.com/galacash/gateway/internal/api/middleware"
	"github.com/galacash/gateway/internal/core/domain"
)

// uploadFormOverhead allows for multipart boundaries and the text fields
// sent alongside a file.
const uploadFormOverhead = 1 << 20

// Sessions is what the router needs from the session registry.
type Sessions interface {
	handler.Sessions
	middleware.SessionLookup
}

// Deps carries everything the routes are built from.
type Deps struct {
	Sessions    Sessions
	Tokens      handler.TokenIssuer
	Events      handler.EventServer
	Checks      map[string]handler.Check
	JWTSecret   string
	CORSOrigins []string
	UploadLimit int64
	// SecureCookies marks the token cookie Secure (production, behind TLS).
	SecureCookies bool
	// Registerer receives the HTTP server metrics. Defaults to the global
	// Prometheus registry.
	Registerer prometheus.Registerer
	// Swagger mounts the API docs UI under /swagger.
	Swagger bool
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "galacash",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	if d.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.Tokens, d.SecureCookies, d.Log)
	dashboardHandler := handler.NewDashboardHandler()
	transactionHandler := handler.NewTransactionHandler()
	cashBillHandler := handler.NewCashBillHandler(d.UploadLimit)
	fundApplicationHandler := handler.NewFundApplicationHandler(d.UploadLimit)
	bendaharaHandler := handler.NewBendaharaHandler(d.UploadLimit)
	userHandler := handler.NewUserHandler(d.Sessions, d.UploadLimit, d.Log)
	eventsHandler := handler.NewEventsHandler(d.Events)

	uploadLimit := d.UploadLimit
	if uploadLimit <= 0 {
		uploadLimit = handler.DefaultUploadLimit
	}
	// Rejects oversize uploads before echo parses the multipart body.
	uploadBody := echomiddleware.BodyLimit(strconv.FormatInt(uploadLimit+uploadFormOverhead, 10) + "B")

	v1 := e.Group("/v1")
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("", middleware.Auth(d.JWTSecret, d.Sessions))

	// --- Auth ---
	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/ws", eventsHandler.Subscribe)

	// --- Student views ---
	authed.GET("/dashboard", dashboardHandler.Summary)

	authed.GET("/transactions", transactionHandler.List)
	authed.GET("/transactions/grouped", transactionHandler.Grouped)
	authed.GET("/transactions/export", transactionHandler.Export)
	authed.GET("/transactions/:id", transactionHandler.Get)

	authed.GET("/cash-bills", cashBillHandler.List)
	authed.GET("/cash-bills/summary", cashBillHandler.Summary)
	authed.GET("/cash-bills/:id", cashBillHandler.Get)
	authed.POST("/cash-bills/:id/pay", cashBillHandler.Pay, uploadBody)
	authed.POST("/cash-bills/:id/cancel", cashBillHandler.CancelPayment)

	authed.GET("/fund-applications", fundApplicationHandler.List)
	authed.POST("/fund-applications", fundApplicationHandler.Create, uploadBody)
	authed.GET("/fund-applications/:id", fundApplicationHandler.Get)

	// --- Profile ---
	authed.GET("/user/profile", userHandler.Profile)
	authed.PUT("/user/profile", userHandler.UpdateProfile)
	authed.PUT("/user/password", userHandler.ChangePassword)
	authed.POST("/user/avatar", userHandler.UploadAvatar, uploadBody)

	// --- Treasurer ---
	b := authed.Group("/bendahara", middleware.RBAC(domain.RoleBendahara))
	b.GET("/dashboard", bendaharaHandler.Dashboard)
	b.GET("/fund-applications", bendaharaHandler.FundApplications)
	b.POST("/fund-applications/:id/approve", bendaharaHandler.ApproveFundApplication)
	b.POST("/fund-applications/:id/reject", bendaharaHandler.RejectFundApplication)
	b.GET("/cash-bills", bendaharaHandler.CashBills)
	b.POST("/cash-bills/:id/confirm", bendaharaHandler.ConfirmPayment)
	b.POST("/cash-bills/:id/reject", bendaharaHandler.RejectPayment)
	b.GET("/students", bendaharaHandler.Students)
	b.GET("/rekap-kas", bendaharaHandler.RekapKas)
	b.GET("/rekap-kas/export", bendaharaHandler.ExportRekapKas)
	b.POST("/transactions", bendaharaHandler.CreateTransaction, uploadBody)

	return e
}
