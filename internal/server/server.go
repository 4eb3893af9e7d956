package server

import (
	"context"
	"net/http"

	"clubsub/internal/auth"
	"clubsub/internal/club"
	"clubsub/internal/config"
	"clubsub/internal/discount"
	"clubsub/internal/email"
	"clubsub/internal/enrollment"
	"clubsub/internal/plan"
	"clubsub/internal/user"
	"clubsub/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	clubHandler := club.NewHandler(db)
	planHandler := plan.NewHandler(db)
	enrollmentHandler := enrollment.NewHandler(db, emailService)
	walletHandler := wallet.NewHandler(db)
	discountHandler := discount.NewHandler(db)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/clubs", clubHandler.ListClubs)
		protected.GET("/clubs/:clubID", clubHandler.GetClub)
		protected.GET("/clubs/:clubID/plans", planHandler.ListPlans)

		protected.POST("/plans/:planID/enroll", enrollmentHandler.Enroll)
		protected.GET("/enrollments", enrollmentHandler.ListMine)
		protected.POST("/enrollments/:enrollmentID/freeze", enrollmentHandler.Freeze)
		protected.POST("/enrollments/:enrollmentID/unfreeze", enrollmentHandler.Unfreeze)
		protected.POST("/enrollments/:enrollmentID/renew", enrollmentHandler.Renew)

		protected.GET("/wallet", walletHandler.GetWallet)
		protected.POST("/wallet/topup", walletHandler.TopUp)
		protected.GET("/wallet/transactions", walletHandler.GetTransactions)
	}

	adminMiddleware := auth.RequireRole(auth.RoleOwner, auth.RoleAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/clubs", clubHandler.CreateClub)
		admin.POST("/clubs/:clubID/suspend", clubHandler.SuspendClub)
		admin.POST("/clubs/:clubID/plans/period", planHandler.CreatePeriodPlan)
		admin.POST("/clubs/:clubID/plans/slot", planHandler.CreateSlotPlan)
		admin.GET("/clubs/:clubID/enrollments", enrollmentHandler.ListByClub)
		admin.GET("/clubs/:clubID/checkin", enrollmentHandler.CheckIn)
		admin.POST("/clubs/:clubID/discounts", discountHandler.CreateDiscount)
		admin.GET("/clubs/:clubID/discounts", discountHandler.ListDiscounts)
	}

	router.GET("/health", Health)
	router.GET("/test-email", TestEmail(emailService))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
