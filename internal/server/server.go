package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/emldov7/evMonde--sub000/internal/di"
	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/pkg/config"
	"github.com/emldov7/evMonde--sub000/pkg/middleware"
	"github.com/emldov7/evMonde--sub000/pkg/response"
)

// Server wraps the HTTP server and its router
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	audit      *middleware.AuditLogger
}

// New assembles the router and returns a ready-to-start server
func New(cfg *config.Config, c *di.Container) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	audit := middleware.NewAuditLogger(middleware.DefaultAuditConfig(c.DB.Pool()))

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(ctx *gin.Context) {
		if err := c.DB.Ping(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, response.Error(response.ErrCodeServiceUnavailable, "database unreachable"))
			return
		}
		ctx.JSON(http.StatusOK, response.Success(map[string]string{
			"status":  "ok",
			"version": cfg.App.Version,
		}))
	})

	// Ticket QR images and uploaded event images
	router.Static("/qr", filepath.Join(cfg.Upload.Dir, "qr"))
	router.Static("/uploads", cfg.Upload.Dir)

	registerPublicRoutes(router, cfg, c)
	registerProtectedRoutes(router, cfg, c, audit)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		cfg:   cfg,
		audit: audit,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and flushes the audit log
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if auditErr := s.audit.Close(); auditErr != nil && err == nil {
		err = auditErr
	}
	return err
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func registerPublicRoutes(router *gin.Engine, cfg *config.Config, c *di.Container) {
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimiter(middleware.DefaultRateLimitConfig()))
	auth.POST("/register", c.AuthHandler.Register)
	auth.POST("/login", c.AuthHandler.Login)

	market := v1.Group("/marketplace")
	market.GET("/events", c.MarketplaceHandler.ListEvents)
	market.GET("/events/:id", c.MarketplaceHandler.GetEvent)
	market.GET("/categories", c.MarketplaceHandler.ListCategories)
	market.GET("/tags", c.MarketplaceHandler.ListTags)

	v1.POST("/registrations/events/:id/register/guest", c.RegistrationHandler.RegisterGuest)
	v1.POST("/registrations/events/:id/register/guest/payment", c.RegistrationHandler.GuestCheckout)
	v1.POST("/registrations/confirm-payment", c.RegistrationHandler.ConfirmPayment)
	v1.POST("/registrations/verify-qr", c.RegistrationHandler.VerifyQR)
}

func registerProtectedRoutes(router *gin.Engine, cfg *config.Config, c *di.Container, audit *middleware.AuditLogger) {
	table := middleware.NewPolicyTable([]middleware.RoutePolicy{
		{PathPrefix: "/api/v1/superadmin", Roles: []string{domain.RoleAdmin}},
		{PathPrefix: "/api/v1/marketplace/my-balance", Roles: []string{domain.RoleOrganizer, domain.RoleAdmin}},
		{PathPrefix: "/api/v1/marketplace/my-payouts", Roles: []string{domain.RoleOrganizer, domain.RoleAdmin}},
		{PathPrefix: "/api/v1/marketplace/payouts/request", Roles: []string{domain.RoleOrganizer, domain.RoleAdmin}},
		{PathPrefix: "/api/v1/marketplace/payouts", Roles: []string{domain.RoleAdmin}},
		{PathPrefix: "/api/v1/marketplace/commission", Roles: []string{domain.RoleAdmin}},
		{PathPrefix: "/api/v1/registrations/organizer/verify-qr", Roles: []string{domain.RoleOrganizer, domain.RoleAdmin}},
		{PathPrefix: "/api/v1/events/my", Roles: []string{domain.RoleOrganizer, domain.RoleAdmin}},
		{PathPrefix: "/api/v1/upload", Roles: []string{domain.RoleOrganizer, domain.RoleAdmin}},
		{PathPrefix: "/api/v1/registrations", Roles: nil},
		{PathPrefix: "/api/v1/auth", Roles: nil},
		{PathPrefix: "/api/v1/events", Roles: nil},
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(&middleware.AuthConfig{Secret: cfg.JWT.Secret}))
	v1.Use(middleware.Guard(table))

	auth := v1.Group("/auth")
	auth.GET("/me", c.AuthHandler.Me)
	auth.PUT("/profile", c.AuthHandler.UpdateProfile)
	auth.POST("/change-password", c.AuthHandler.ChangePassword)

	organize := middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)

	events := v1.Group("/events")
	events.POST("", organize, c.EventHandler.Create)
	events.GET("/my/events", c.EventHandler.MyEvents)
	events.GET("/my/events/:id", c.EventHandler.Get)
	events.PUT("/:id", organize, c.EventHandler.Update)
	events.DELETE("/:id", organize, c.EventHandler.Delete)
	events.POST("/:id/publish", organize, c.EventHandler.Publish)
	events.POST("/:id/cancel", organize, c.EventHandler.Cancel)

	events.GET("/:id/reminders", organize, c.EventHandler.ListReminders)
	events.POST("/:id/reminders", organize, c.EventHandler.CreateReminder)
	events.PUT("/:id/reminders", organize, c.EventHandler.SaveReminders)
	events.PUT("/:id/reminders/:reminderId", organize, c.EventHandler.UpdateReminder)
	events.DELETE("/:id/reminders/:reminderId", organize, c.EventHandler.DeleteReminder)

	registrations := v1.Group("/registrations")
	registrations.POST("/events/:id/register", c.RegistrationHandler.Register)
	registrations.POST("/events/:id/register/payment", c.RegistrationHandler.Checkout)
	registrations.GET("/events/:id/registrations", organize, c.RegistrationHandler.EventRegistrations)
	registrations.GET("/my", c.RegistrationHandler.MyRegistrations)
	registrations.DELETE("/:id", c.RegistrationHandler.Cancel)
	registrations.POST("/organizer/verify-qr", c.RegistrationHandler.VerifyQR)

	market := v1.Group("/marketplace")
	market.GET("/my-balance", c.MarketplaceHandler.Balance)
	market.GET("/my-payouts", c.MarketplaceHandler.MyPayouts)
	market.POST("/payouts/request", c.MarketplaceHandler.RequestPayout)

	marketAdmin := market.Group("")
	marketAdmin.Use(middleware.AuditMiddleware(audit))
	marketAdmin.GET("/payouts", c.MarketplaceHandler.ListPayouts)
	marketAdmin.PUT("/payouts/:id", c.MarketplaceHandler.ProcessPayout)
	marketAdmin.GET("/commission/settings", c.MarketplaceHandler.CommissionSettings)
	marketAdmin.PUT("/commission/settings", c.MarketplaceHandler.UpdateCommissionSettings)

	upload := v1.Group("/upload")
	upload.POST("/image", c.UploadHandler.Upload)
	upload.DELETE("/image", c.UploadHandler.Delete)

	admin := v1.Group("/superadmin")
	admin.Use(middleware.AuditMiddleware(audit))
	admin.GET("/users", c.SuperadminHandler.ListUsers)
	admin.GET("/users/:id", c.SuperadminHandler.GetUser)
	admin.POST("/users/:id/suspend", c.SuperadminHandler.SuspendUser)
	admin.POST("/users/:id/unsuspend", c.SuperadminHandler.UnsuspendUser)
	admin.DELETE("/users/:id", c.SuperadminHandler.DeleteUser)
	admin.POST("/users/:id/promote", c.SuperadminHandler.PromoteUser)

	admin.GET("/events", c.SuperadminHandler.ListEvents)
	admin.POST("/events/:id/feature", c.SuperadminHandler.FeatureEvent)
	admin.POST("/events/:id/unfeature", c.SuperadminHandler.UnfeatureEvent)
	admin.POST("/events/:id/flag", c.SuperadminHandler.FlagEvent)
	admin.POST("/events/:id/unflag", c.SuperadminHandler.UnflagEvent)
	admin.PUT("/events/:id/notes", c.SuperadminHandler.SetAdminNotes)
	admin.DELETE("/events/:id", c.SuperadminHandler.DeleteEvent)

	admin.GET("/stats", c.SuperadminHandler.Stats)
	admin.GET("/stats/top-organizers", c.SuperadminHandler.TopOrganizers)
	admin.GET("/stats/top-events", c.SuperadminHandler.TopEvents)
}
