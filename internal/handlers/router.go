package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/config"
	"github.com/Chodo25/FaradayCoins/internal/events"
	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

// HandlerManager owns all HTTP handlers and route registration
type HandlerManager struct {
	authMiddleware *CasdoorAuthMiddleware
	accessGate     *AccessGate

	authHandler   *AuthHandler
	userHandler   *UserHandler
	coinHandler   *CoinHandler
	courseHandler *CourseHandler
	rewardHandler *RewardHandler
	reportHandler *ReportHandler
	adminHandler  *AdminHandler
	pageHandler   *PageHandler
}

// NewHandlerManager creates all handlers and auth plumbing
func NewHandlerManager(
	serviceManager services.ServiceManager,
	identity IdentityClient,
	subscriber events.EventSubscriber,
	userRepo repositories.UserRepository,
	cfg *config.Config,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authMiddleware: NewCasdoorAuthMiddleware(identity, userRepo),
		accessGate:     NewAccessGate(identity, userRepo, cfg.Session.CookieName, logger),

		authHandler:   NewAuthHandler(identity, serviceManager.Provisioning(), cfg.Session, cfg.BaseURL, logger),
		userHandler:   NewUserHandler(serviceManager.User(), serviceManager.Provisioning(), logger),
		coinHandler:   NewCoinHandler(serviceManager.Coin(), subscriber, logger),
		courseHandler: NewCourseHandler(serviceManager.Course(), logger),
		rewardHandler: NewRewardHandler(serviceManager.Reward(), logger),
		reportHandler: NewReportHandler(serviceManager.Report(), serviceManager.Export(), logger),
		adminHandler:  NewAdminHandler(serviceManager.Provisioning(), serviceManager.Settings(), logger),
		pageHandler:   NewPageHandler(serviceManager.Coin(), serviceManager.Reward(), serviceManager.Report(), logger),
	}
}

// SetupRoutes registers every route on the router
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "faraday-coins",
		})
	})

	// Login flow
	router.GET("/login", hm.authHandler.LoginPage)
	router.GET("/admin/login", hm.authHandler.AdminLoginPage)
	router.GET("/auth/callback", hm.authHandler.Callback)
	router.GET("/logout", hm.authHandler.Logout)

	// Gated page groups
	dashboard := router.Group("/dashboard")
	dashboard.Use(hm.accessGate.DashboardGate())
	{
		dashboard.GET("", hm.pageHandler.Dashboard)
	}

	admin := router.Group("/admin")
	admin.Use(hm.accessGate.AdminGate())
	{
		admin.GET("", hm.pageHandler.AdminHome)
	}

	// Bootstrap and maintenance endpoints
	adminAPI := router.Group("/api/admin")
	{
		adminAPI.GET("/setup-admin", hm.adminHandler.SetupAdmin)
		adminAPI.GET("/update-teacher", hm.adminHandler.UpdateTeacher)
		adminAPI.POST("/create-user", hm.adminHandler.CreateUser)
		adminAPI.GET("/update-email-settings", hm.adminHandler.GetEmailSettings)
		adminAPI.POST("/update-email-settings", hm.adminHandler.UpdateEmailSettings)
	}

	// Bearer-token API
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		staff := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin)

		// Users
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.Me)
			users.GET("", staff, hm.userHandler.List)
			users.POST("", staff, hm.userHandler.Create)
			users.GET("/reconcile", staff, hm.userHandler.Reconcile)
			users.GET("/:id", staff, hm.userHandler.Get)
			users.PUT("/:id/role", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.UpdateRole)
			users.PUT("/:id/course", staff, hm.userHandler.UpdateCourse)
			users.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.Delete)
		}

		// Coins
		coins := v1.Group("/coins")
		{
			coins.POST("/grant", staff, hm.coinHandler.Grant)
			coins.POST("/deduct", staff, hm.coinHandler.Deduct)
			coins.GET("/me", hm.coinHandler.MyBalance)
			coins.GET("/me/history", hm.coinHandler.MyHistory)
			coins.GET("/me/stream", hm.coinHandler.Stream)
			coins.GET("/:user_id", staff, hm.coinHandler.Balance)
			coins.GET("/:user_id/history", staff, hm.coinHandler.History)
		}

		// Courses
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.List)
			courses.GET("/:id", hm.courseHandler.Get)
			courses.POST("", staff, hm.courseHandler.Create)
			courses.PUT("/:id", staff, hm.courseHandler.Update)
			courses.DELETE("/:id", staff, hm.courseHandler.Delete)
		}

		// Rewards and redemptions
		rewards := v1.Group("/rewards")
		{
			rewards.GET("", hm.rewardHandler.List)
			rewards.POST("", staff, hm.rewardHandler.Create)
			rewards.PUT("/:id", staff, hm.rewardHandler.Update)
			rewards.DELETE("/:id", staff, hm.rewardHandler.Delete)
			rewards.POST("/redeem", hm.rewardHandler.Redeem)
		}

		redemptions := v1.Group("/redemptions")
		{
			redemptions.GET("/me", hm.rewardHandler.MyRedemptions)
			redemptions.GET("", staff, hm.rewardHandler.ListRedemptions)
			redemptions.POST("/:id/approve", staff, hm.rewardHandler.Approve)
			redemptions.POST("/:id/reject", staff, hm.rewardHandler.Reject)
		}

		// Settings
		settings := v1.Group("/settings")
		settings.Use(staff)
		{
			settings.GET("/email", hm.adminHandler.EmailSettings)
			settings.PUT("/email", hm.adminHandler.SetEmailSettings)
		}

		// Reports
		reports := v1.Group("/reports")
		reports.Use(staff)
		{
			reports.GET("/top-students", hm.reportHandler.TopStudents)
			reports.GET("/coin-distribution", hm.reportHandler.CoinDistribution)
			reports.GET("/transactions-over-time", hm.reportHandler.TransactionsOverTime)
			reports.GET("/redemption-summary", hm.reportHandler.RedemptionSummary)
			reports.GET("/student-activity", hm.reportHandler.StudentActivity)
			reports.GET("/export", hm.reportHandler.Export)
		}
	}
}
