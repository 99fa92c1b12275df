package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/cavos-labs/forma-api/internal/auth"
	"github.com/cavos-labs/forma-api/internal/billing"
	"github.com/cavos-labs/forma-api/internal/config"
	"github.com/cavos-labs/forma-api/internal/currency"
	"github.com/cavos-labs/forma-api/internal/gym"
	"github.com/cavos-labs/forma-api/internal/membership"
	"github.com/cavos-labs/forma-api/internal/notification"
	"github.com/cavos-labs/forma-api/internal/payment"
	"github.com/cavos-labs/forma-api/internal/storage"
	"github.com/cavos-labs/forma-api/internal/sweep"
	"github.com/cavos-labs/forma-api/internal/user"
	"github.com/cavos-labs/forma-api/internal/workout"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *notification.EmailService
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, emailService *notification.EmailService, proofs *storage.ProofStore) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	gymRepo := gym.NewRepository(db)
	membershipRepo := membership.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	workoutRepo := workout.NewRepository(db)

	whatsapp := notification.NewWhatsAppSender(
		cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, cfg.TwilioContentSID,
	)

	registration := membership.NewService(userRepo, membershipRepo, gymRepo, emailService, cfg.UploadBaseURL)

	userHandler := user.NewHandlerWithStore(userRepo)
	gymHandler := gym.NewHandlerWithStore(gymRepo, cfg.JWTSecret, emailService, cfg.ResetBaseURL)
	membershipHandler := membership.NewHandler(membershipRepo, registration, emailService, whatsapp, cfg.UploadBaseURL)
	paymentHandler := payment.NewHandlerWithStores(paymentRepo, membershipRepo, whatsapp, nil)
	uploadHandler := payment.NewUploadHandler(paymentRepo, membershipRepo, proofs)
	workoutHandler := workout.NewHandler(workoutRepo)
	currencyHandler := currency.NewHandler(currency.NewService())
	billingHandler := billing.NewHandler(gymRepo, billing.NewStripeClient(cfg.StripeSecretKey), cfg.StripeWebhookSecret)
	sweepHandler := sweep.NewHandler(sweep.NewJob(membershipRepo, notificationRepo))

	// Dashboard session endpoints use a cookie, everything else the API key.
	authGroup := router.Group("/auth")
	authGroup.Use(RateLimitMiddleware(5, 10))
	{
		authGroup.POST("/signup", gymHandler.Signup)
		authGroup.POST("/signin", gymHandler.Signin)
		authGroup.POST("/signout", gymHandler.Signout)
		authGroup.POST("/forgot-password", gymHandler.ForgotPassword)
		authGroup.POST("/reset-password", gymHandler.ResetPassword)
	}

	session := router.Group("/auth")
	session.Use(auth.SessionMiddleware(cfg.JWTSecret))
	{
		session.GET("/status", gymHandler.Status)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(auth.APIKeyMiddleware(cfg.APIKey))
	{
		apiGroup.POST("/memberships", membershipHandler.Register)
		apiGroup.GET("/memberships", membershipHandler.List)
		apiGroup.GET("/memberships/:id", membershipHandler.Get)
		apiGroup.POST("/send-payment-link", membershipHandler.SendPaymentLink)

		apiGroup.GET("/users", userHandler.List)
		apiGroup.POST("/users", userHandler.Create)
		apiGroup.GET("/users/:id", userHandler.Get)
		apiGroup.PUT("/users/:id", userHandler.Update)

		apiGroup.GET("/payments", paymentHandler.List)
		apiGroup.PUT("/payments", paymentHandler.UpdateStatus)
		apiGroup.POST("/upload-payment", uploadHandler.Upload)

		apiGroup.GET("/gyms/:id", gymHandler.Get)
		apiGroup.POST("/gyms/:id/activate", gymHandler.Activate)

		apiGroup.GET("/daily-workouts", workoutHandler.List)
		apiGroup.POST("/daily-workouts", workoutHandler.Upsert)
		apiGroup.PUT("/daily-workouts", workoutHandler.Update)
		apiGroup.DELETE("/daily-workouts", workoutHandler.Delete)

		apiGroup.GET("/test-email", TestEmail(emailService))
	}

	cron := router.Group("/cron")
	cron.Use(auth.CronMiddleware(cfg.CronSecret))
	{
		cron.POST("/check-expired-memberships", sweepHandler.CheckExpired)
	}

	router.POST("/webhooks/stripe", billingHandler.Webhook)
	router.GET("/currency", currencyHandler.GetPrices)
	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Handler() *gin.Engine {
	return s.router
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

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-API-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
