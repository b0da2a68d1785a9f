package app

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"courier/internal/domain"
	"courier/internal/handler"
	"courier/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler    *handler.AuthHandler
	OrderHandler   *handler.OrderHandler
	JobHandler     *handler.JobHandler
	DriverHandler  *handler.DriverHandler
	Tokens         middleware.TokenVerifier
	Authorizer     middleware.Authorizer
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	Logger         *slog.Logger
	CookieName     string
	AllowedOrigins []string
}

// authSurface is one of the per-identity auth route groups.
type authSurface struct {
	path     string
	register domain.Role
	login    []domain.Role
}

var authSurfaces = []authSurface{
	{path: "/customer", register: domain.RoleCustomer, login: []domain.Role{domain.RoleCustomer}},
	{path: "/driver", register: domain.RoleDriver, login: []domain.Role{domain.RoleDriver}},
	{path: "/user", register: domain.RoleCustomer},
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Global middleware.
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authenticate := middleware.Authenticate(deps.Tokens, deps.CookieName)
	session := []gin.HandlerFunc{authenticate, middleware.RequireSession()}
	idempotent := middleware.Idempotency(deps.RedisClient, deps.Logger)

	for _, s := range authSurfaces {
		g := router.Group(s.path)
		g.POST("/registration", deps.AuthHandler.Register(s.register))
		g.POST("/login", deps.AuthHandler.Login(s.login...))
		g.POST("/send-otp", deps.AuthHandler.SendOTP)
		g.POST("/verify-otp", deps.AuthHandler.VerifyOTP)
		g.POST("/reset-password", authenticate, deps.AuthHandler.ResetPassword)
		g.GET("/logout", authenticate, deps.AuthHandler.Logout)
	}
	router.POST("/login", deps.AuthHandler.Login())

	status := router.Group("", append(session, middleware.RequireRole(deps.Authorizer))...)
	{
		status.POST("/update-status", deps.AuthHandler.UpdateStatus)
		status.GET("/get-status", deps.AuthHandler.GetStatus)
	}

	customer := router.Group("/customer", append(session, middleware.RequireRole(deps.Authorizer, domain.RoleCustomer))...)
	{
		customer.GET("/profile", deps.OrderHandler.Profile)

		orders := customer.Group("/orders")
		orders.POST("", idempotent, deps.OrderHandler.BookOrder)
		orders.GET("", deps.OrderHandler.History)
		orders.POST("/:id/pay", idempotent, deps.OrderHandler.Pay)
		orders.GET("/:id/tracking", deps.OrderHandler.Tracking)
		orders.GET("/:id/proof", deps.OrderHandler.Proof)
		orders.POST("/:id/cancel", deps.OrderHandler.Cancel)
	}

	driver := router.Group("/driver", append(session, middleware.RequireRole(deps.Authorizer, domain.RoleDriver))...)
	{
		driver.GET("/profile", deps.DriverHandler.Profile)
		driver.POST("/status", deps.DriverHandler.SetAvailability)
		driver.GET("/earnings", deps.DriverHandler.Earnings)

		jobs := driver.Group("/jobs")
		jobs.GET("/available", deps.JobHandler.Available)
		jobs.POST("/:id/action", deps.JobHandler.Action)
		jobs.POST("/:id/pickup", deps.JobHandler.Pickup)
		jobs.POST("/:id/complete", deps.JobHandler.Complete)
	}

	admin := router.Group("/admin", append(session, middleware.RequireRole(deps.Authorizer, domain.RoleAdmin, domain.RoleSuperAdmin))...)
	{
		admin.POST("/drivers/:id/verify", deps.DriverHandler.Verify)
	}

	router.NoRoute(middleware.NotFound)
	router.NoMethod(middleware.MethodNotAllowed)

	return router
}
