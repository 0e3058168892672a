package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/auth"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/config"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/conversations"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/db"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/handlers"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/middleware"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/observability"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/payments"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/rabbitmq"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/repositories"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/telemetry"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/ws"
)

const serviceName = "nippy-backend"

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s reason=%q", rabbitmq.PublisherMode(auditPublisher), rabbitmq.PublisherNoopReason(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit.logs", serviceName, cfg.Environment)

	if eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err != nil {
		log.Printf("domain event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)

	userRepo := repositories.NewUserRepo(database)
	jobRepo := repositories.NewJobRepo(database)
	proposalRepo := repositories.NewProposalRepo(database)
	serviceRepo := repositories.NewServiceRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	paymentRepo := repositories.NewPaymentRepo(database)

	hub := ws.NewHub()

	conversationSvc := conversations.NewService(conversationRepo, messageRepo)
	conversationSvc.SetNotifier(hub)
	paymentSvc := payments.NewService(paymentRepo)

	authHandler := handlers.NewAuthHandler(userRepo, tokens)
	userHandler := handlers.NewUserHandler(userRepo)
	jobHandler := handlers.NewJobHandler(jobRepo, proposalRepo)
	serviceHandler := handlers.NewServiceHandler(serviceRepo)
	conversationHandler := handlers.NewConversationHandler(conversationSvc)
	paymentHandler := handlers.NewPaymentHandler(paymentSvc)
	wsHandler := ws.NewWebSocketHandler(hub, conversationSvc, tokens)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authRequired := middleware.AuthMiddleware(tokens)
	clientOnly := middleware.RequireRole(models.RoleClient)
	freelancerOnly := middleware.RequireRole(models.RoleFreelancer)

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.GET("/auth/me", authRequired, authHandler.Me)

	router.GET("/users/:user_id", userHandler.GetProfile)
	router.PUT("/users/me", authRequired, userHandler.UpdateProfile)
	router.GET("/freelancers", userHandler.ListFreelancers)

	router.POST("/jobs", authRequired, clientOnly, jobHandler.CreateJob)
	router.GET("/jobs", jobHandler.ListJobs)
	router.GET("/jobs/:job_id", jobHandler.GetJob)
	router.PATCH("/jobs/:job_id/status", authRequired, jobHandler.UpdateJobStatus)
	router.DELETE("/jobs/:job_id", authRequired, jobHandler.DeleteJob)
	router.POST("/jobs/:job_id/proposals", authRequired, freelancerOnly, jobHandler.SubmitProposal)
	router.GET("/jobs/:job_id/proposals", authRequired, jobHandler.ListProposals)
	router.PATCH("/proposals/:proposal_id", authRequired, jobHandler.UpdateProposalStatus)

	router.POST("/services", authRequired, freelancerOnly, serviceHandler.CreateService)
	router.GET("/services", serviceHandler.ListServices)
	router.GET("/services/:service_id", serviceHandler.GetService)

	router.POST("/conversations", authRequired, conversationHandler.StartConversation)
	router.GET("/conversations", authRequired, conversationHandler.ListConversations)
	router.GET("/conversations/:conversation_id", authRequired, conversationHandler.GetConversation)
	router.DELETE("/conversations/:conversation_id", authRequired, conversationHandler.DeleteConversation)
	router.POST("/conversations/:conversation_id/messages", authRequired, conversationHandler.SendMessage)
	router.GET("/conversations/:conversation_id/messages", authRequired, conversationHandler.GetMessages)
	router.POST("/conversations/:conversation_id/read", authRequired, conversationHandler.MarkRead)
	router.PATCH("/conversations/:conversation_id/status", authRequired, conversationHandler.UpdateStatus)
	router.POST("/conversations/:conversation_id/hire", authRequired, conversationHandler.Hire)
	router.POST("/conversations/:conversation_id/complete", authRequired, conversationHandler.Complete)
	router.POST("/conversations/:conversation_id/revisions", authRequired, conversationHandler.RequestRevisions)
	router.POST("/conversations/:conversation_id/approve", authRequired, conversationHandler.Approve)

	router.POST("/payments", authRequired, paymentHandler.CreatePayment)
	router.GET("/payments", authRequired, paymentHandler.ListPayments)
	router.GET("/payments/stats", authRequired, paymentHandler.PaymentStats)
	router.GET("/payments/:payment_id", authRequired, paymentHandler.GetPayment)
	router.POST("/payments/:payment_id/process", authRequired, paymentHandler.ProcessPayment)
	router.POST("/payments/:payment_id/refund", authRequired, paymentHandler.RefundPayment)

	router.GET("/ws/conversations/:conversation_id", wsHandler.Handle)

	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.DebugRoutes)

	log.Printf("listening on :%s environment=%s", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
