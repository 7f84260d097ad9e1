package router

import (
	"time"

	"budgetly/api"
	"budgetly/config"
	_ "budgetly/docs"
	"budgetly/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := api.NewAuthHandler(cfg)
	categoryHandler := api.NewCategoryHandler()
	transactionHandler := api.NewTransactionHandler()
	budgetHandler := api.NewBudgetHandler(cfg)
	healthHandler := api.NewHealthHandler(cfg)
	recurringHandler := api.NewRecurringHandler()
	goalHandler := api.NewGoalHandler()
	settingsHandler := api.NewSettingsHandler(cfg)
	exportHandler := api.NewExportHandler(cfg)
	aiModelHandler := api.NewAIModelHandler(cfg)
	aiInsightHandler := api.NewAIInsightHandler(cfg)
	aiChatHandler := api.NewAIChatHandler(cfg)
	adminHandler := api.NewAdminHandler(cfg)

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)

			// 密码重置
			auth.POST("/password/request-reset", authHandler.RequestPasswordReset)
			auth.POST("/password/verify-code", authHandler.VerifyResetCode)
			auth.POST("/password/reset", authHandler.ResetPassword)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.List)
				transactions.GET("/summary", transactionHandler.Summary)
				transactions.GET("/:id", transactionHandler.Get)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			// 预算与健康评分
			authorized.GET("/budget", budgetHandler.Get)
			authorized.PUT("/budget", budgetHandler.Replace)
			authorized.POST("/budget/rollover", budgetHandler.Rollover)
			authorized.GET("/health-score", healthHandler.GetScore)

			recurring := authorized.Group("/recurring-payments")
			{
				recurring.GET("", recurringHandler.List)
				recurring.POST("", recurringHandler.Create)
				recurring.PUT("/:id", recurringHandler.Update)
				recurring.POST("/:id/advance", recurringHandler.Advance)
				recurring.DELETE("/:id", recurringHandler.Delete)
			}

			goals := authorized.Group("/goals")
			{
				goals.GET("", goalHandler.List)
				goals.POST("", goalHandler.Create)
				goals.PUT("/:id", goalHandler.Update)
				goals.POST("/:id/contribute", goalHandler.Contribute)
				goals.DELETE("/:id", goalHandler.Delete)
			}

			authorized.GET("/settings", settingsHandler.Get)
			authorized.PUT("/settings", settingsHandler.Update)

			// 导出相关
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
				export.GET("/pdf", exportHandler.ExportPDF)
			}

			authorized.GET("/ai-models", aiModelHandler.List)

			// AI 接口按用户限流
			ai := authorized.Group("/ai")
			ai.Use(middleware.AIRateLimit(10, time.Minute))
			{
				ai.POST("/budget/generate", aiInsightHandler.GenerateBudget)
				ai.POST("/health-report", aiInsightHandler.HealthReport)
				ai.POST("/cycle-review", aiInsightHandler.CycleReview)
				ai.POST("/goals/:id/forecast", aiInsightHandler.GoalForecast)
				ai.POST("/recurring-scan", aiInsightHandler.RecurringScan)
				ai.GET("/reports", aiInsightHandler.ListReports)
				ai.DELETE("/reports/:id", aiInsightHandler.DeleteReport)

				ai.POST("/chat", aiChatHandler.ChatStream)
				ai.GET("/chat/history", aiChatHandler.History)
				ai.DELETE("/chat/history/:id", aiChatHandler.DeleteMessage)
			}

			// 管理员接口
			admin := authorized.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.POST("/ai-models", aiModelHandler.Create)
				admin.PUT("/ai-models/reorder", aiModelHandler.Reorder)
				admin.PUT("/ai-models/:id", aiModelHandler.Update)
				admin.POST("/ai-models/:id/test", aiModelHandler.Test)
				admin.DELETE("/ai-models/:id", aiModelHandler.Delete)

				admin.GET("/email-config", adminHandler.GetEmailConfig)
				admin.POST("/test-email", adminHandler.SendTestEmail)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
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
