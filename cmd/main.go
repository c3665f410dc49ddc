package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/grcworks/requirement-gathering-backend/config"
	"github.com/grcworks/requirement-gathering-backend/database"
	"github.com/grcworks/requirement-gathering-backend/internal/assignment"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/internal/domain"
	"github.com/grcworks/requirement-gathering-backend/internal/notification"
	"github.com/grcworks/requirement-gathering-backend/internal/progress"
	"github.com/grcworks/requirement-gathering-backend/internal/question"
	"github.com/grcworks/requirement-gathering-backend/internal/reports"
	"github.com/grcworks/requirement-gathering-backend/internal/response"
	"github.com/grcworks/requirement-gathering-backend/internal/storage"
	"github.com/grcworks/requirement-gathering-backend/internal/tenant"
	"github.com/grcworks/requirement-gathering-backend/routes"
	"github.com/grcworks/requirement-gathering-backend/utils"
)

// @title Requirement Gathering API
// @version 1.0
// @description Multi-tenant requirement gathering backend for identity-governance questionnaires.
// @BasePath /api/v1
func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	if err := utils.InitRedis(cfg); err != nil {
		log.Fatalf("❌ Redis init failed: %v", err)
	}

	utils.InitializeKafka(cfg)

	if err := utils.InitFirebase(); err != nil {
		log.Printf("ℹ️ Push notifications disabled: %v", err)
	}

	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&tenant.Tenant{},
		&auth.User{},
		&domain.Domain{},
		&question.Question{},
		&assignment.TenantQuestion{},
		&response.Response{},
		&response.Attachment{},
		&notification.InAppNotification{},
		&notification.NotificationLog{},
		&notification.DeviceToken{},
		&auditlog.AuditLog{},
	); err != nil {
		log.Fatalf("❌ DB AutoMigrate failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	if err := auth.SeedAdminUser(db); err != nil {
		log.Fatalf("❌ Failed to seed admin user: %v", err)
	}

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("❌ Storage init failed: %v", err)
	}

	// Repositories and services.
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))

	notificationSvc := notification.NewService(notification.NewRepository(db))
	notification.StartKafkaConsumer(context.Background(), cfg, notificationSvc)

	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, cfg)

	tenantRepo := tenant.NewRepository(db)
	tenantSvc := tenant.NewService(tenantRepo, store)

	domainRepo := domain.NewRepository(db)
	domainSvc := domain.NewService(domainRepo)

	questionRepo := question.NewRepository(db)
	questionSvc := question.NewService(questionRepo, domainRepo)

	assignmentSvc := assignment.NewService(
		assignment.NewRepository(db), tenantRepo, questionRepo, store, auditSvc, notificationSvc)

	responseSvc := response.NewService(
		response.NewRepository(db), assignmentSvc, store, auditSvc, notificationSvc)

	progressSvc := progress.NewService(progress.NewRepository(db), tenantRepo)
	reportsSvc := reports.NewService(progressSvc, tenantRepo)

	// HTTP wiring.
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	origins := []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	if cfg.FrontendURL != "" {
		origins = append(origins, cfg.FrontendURL)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, cfg, routes.Handlers{
		AuthSvc:      authSvc,
		Auth:         auth.NewHandler(authSvc, auditSvc),
		Tenant:       tenant.NewHandler(tenantSvc, authSvc, auditSvc),
		Domain:       domain.NewHandler(domainSvc),
		Question:     question.NewHandler(questionSvc, auditSvc),
		Assignment:   assignment.NewHandler(assignmentSvc),
		Response:     response.NewHandler(responseSvc),
		Progress:     progress.NewHandler(progressSvc),
		Notification: notification.NewHandler(notificationSvc),
		AuditLog:     auditlog.NewHandler(auditSvc),
		Reports:      reports.NewHandler(reportsSvc),
	})

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Println("Server stopped")
}
