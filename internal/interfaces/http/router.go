// Package http wires the gin engine: repositories, use cases, handlers and
// routes for the payment API.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	paymentUsecases "payflow/internal/application/payment/usecases"
	"payflow/internal/infrastructure/config"
	"payflow/internal/infrastructure/gateway"
	"payflow/internal/infrastructure/repository"
	"payflow/internal/interfaces/http/handlers"
	"payflow/internal/interfaces/http/middleware"
	"payflow/internal/shared/db"
	"payflow/internal/shared/logger"
)

type Router struct {
	engine         *gin.Engine
	paymentHandler *handlers.PaymentHandler
	logger         logger.Interface
}

// NewRouter builds the HTTP surface. paymentDB holds the business tables,
// outboxDB the payment log; the two may be the same connection.
func NewRouter(paymentDB, outboxDB *gorm.DB, cfg *config.Config, log logger.Interface) *Router {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	paymentRepo := repository.NewPaymentRepository(paymentDB)
	subscriptionRepo := repository.NewSubscriptionRepository(paymentDB)
	apiRequestRepo := repository.NewAPIRequestRepository(paymentDB)
	providerRepo := repository.NewProviderRepository(paymentDB)
	outboxRepo := repository.NewOutboxRepository(outboxDB)

	txManager := db.NewTransactionManager(paymentDB)
	providerClient := gateway.NewProviderClient(
		cfg.Provider.BaseURL,
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second,
	)

	createPaymentUC := paymentUsecases.NewCreatePaymentUseCase(
		txManager, paymentRepo, subscriptionRepo, apiRequestRepo,
		providerRepo, outboxRepo, providerClient, log,
	)
	resolveWebhookUC := paymentUsecases.NewResolveWebhookUseCase(paymentRepo, outboxRepo, log)
	paymentTimelineUC := paymentUsecases.NewPaymentTimelineUseCase(paymentRepo, outboxRepo)

	paymentHandler := handlers.NewPaymentHandler(
		createPaymentUC, resolveWebhookUC, paymentTimelineUC, log,
	)

	return &Router{
		engine:         engine,
		paymentHandler: paymentHandler,
		logger:         log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.engine.Group("/api/v1")
	{
		payments := v1.Group("/payments")
		{
			payments.POST("", r.paymentHandler.CreatePayment)
			payments.POST("/webhook", r.paymentHandler.HandleWebhook)
			payments.GET("/:id/logs", r.paymentHandler.GetTimeline)
		}
	}
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
