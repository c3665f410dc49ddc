package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/grcworks/requirement-gathering-backend/config"
	_ "github.com/grcworks/requirement-gathering-backend/docs"
	"github.com/grcworks/requirement-gathering-backend/internal/assignment"
	"github.com/grcworks/requirement-gathering-backend/internal/auditlog"
	"github.com/grcworks/requirement-gathering-backend/internal/auth"
	"github.com/grcworks/requirement-gathering-backend/internal/domain"
	"github.com/grcworks/requirement-gathering-backend/internal/notification"
	"github.com/grcworks/requirement-gathering-backend/internal/progress"
	"github.com/grcworks/requirement-gathering-backend/internal/question"
	"github.com/grcworks/requirement-gathering-backend/internal/reports"
	"github.com/grcworks/requirement-gathering-backend/internal/response"
	"github.com/grcworks/requirement-gathering-backend/internal/tenant"
	"github.com/grcworks/requirement-gathering-backend/middleware"
)

// Handlers bundles every feature handler for route registration.
type Handlers struct {
	AuthSvc      auth.Service
	Auth         *auth.Handler
	Tenant       *tenant.Handler
	Domain       *domain.Handler
	Question     *question.Handler
	Assignment   *assignment.Handler
	Response     *response.Handler
	Progress     *progress.Handler
	Notification *notification.Handler
	AuditLog     *auditlog.Handler
	Reports      *reports.Handler
}

// Setup registers the full API surface under /api/v1.
func Setup(router *gin.Engine, cfg *config.Config, h Handlers) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimiter(), middleware.AuditMiddleware())

	// Public auth endpoints.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.POST("/reset-password", h.Auth.ResetPassword)
	}

	// Everything below carries a bearer principal.
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg, h.AuthSvc))
	{
		protected.GET("/auth/me", h.Auth.Me)

		protected.GET("/domains", h.Domain.ListDomains)
		protected.GET("/questions", h.Question.ListQuestions)
		protected.GET("/questions/:id", h.Question.GetQuestion)

		// Tenant-scoped reads: admins and consultants pass, customers only
		// for their own tenant.
		tenantScoped := protected.Group("/tenant/:tenantId")
		tenantScoped.Use(middleware.RequireTenantAccess())
		{
			tenantScoped.GET("/questions", h.Assignment.ListForTenant)
			tenantScoped.PUT("/questions/:id/status", h.Assignment.SetStatus)
			tenantScoped.GET("/dashboard", h.Progress.Dashboard)
		}

		// Thread access is decided per assignment inside the service.
		protected.GET("/tenant-questions/:id/responses", h.Response.List)
		protected.POST("/tenant-questions/:id/responses", h.Response.Post)
		protected.PUT("/responses/:id", h.Response.Update)
		protected.DELETE("/responses/:id", h.Response.Delete)
		protected.POST("/responses/:id/attachments", h.Response.Attach)
		protected.GET("/attachments/:id", h.Response.Download)

		protected.GET("/notifications", h.Notification.List)
		protected.PUT("/notifications/:id/read", h.Notification.MarkRead)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllRead)
		protected.POST("/notifications/devices", h.Notification.RegisterDevice)
		protected.DELETE("/notifications/devices/:token", h.Notification.UnregisterDevice)

		// Assignment management is open to consultants as well.
		assigning := protected.Group("/admin")
		assigning.Use(middleware.RBACMiddleware(auth.RoleAdmin, auth.RoleConsultant))
		{
			assigning.POST("/tenant-questions", h.Assignment.Assign)
			assigning.DELETE("/tenant-questions/:id", h.Assignment.Unassign)
			assigning.POST("/tenants/:id/assign-defaults", h.Assignment.AssignDefaults)
		}

		// Everything else under /admin is admin-only.
		admin := protected.Group("/admin")
		admin.Use(middleware.RBACMiddleware(auth.RoleAdmin))
		{
			admin.POST("/domains", h.Domain.CreateDomain)
			admin.PUT("/domains/:id", h.Domain.UpdateDomain)
			admin.DELETE("/domains/:id", h.Domain.DeleteDomain)

			admin.POST("/questions", h.Question.CreateQuestion)
			admin.PUT("/questions/:id", h.Question.UpdateQuestion)
			admin.DELETE("/questions/:id", h.Question.DeleteQuestion)
			admin.POST("/questions/bulk", h.Question.BulkImport)
			admin.POST("/questions/import", h.Question.ImportWorkbook)

			admin.POST("/tenants", h.Tenant.CreateTenant)
			admin.GET("/tenants", h.Tenant.ListTenants)
			admin.GET("/tenants/:id", h.Tenant.GetTenant)
			admin.PUT("/tenants/:id", h.Tenant.UpdateTenant)
			admin.DELETE("/tenants/:id", h.Tenant.DeleteTenant)
			admin.GET("/tenants/:id/users", h.Tenant.ListTenantUsers)

			admin.POST("/users", h.Auth.CreateUser)
			admin.GET("/users", h.Auth.ListUsers)
			admin.PUT("/users/:id/status", h.Auth.UpdateUserStatus)

			admin.GET("/audit-logs", h.AuditLog.ListLogs)
			admin.GET("/reports/tenant-progress", h.Reports.TenantProgress)
		}
	}
}
