package app

import (
	"algo_prep_backend/docs"
	"algo_prep_backend/internal/config"
	"algo_prep_backend/internal/middleware"

	"algo_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 题库路由:可选认证,游客可浏览,登录用户附带进度与权益
	a.registerCatalogRoutes(router, c)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerProgressRoutes(authGroup, c)
		a.registerBillingRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 计费公共接口:套餐列表与 Stripe 回调
		public.GET("/billing/plans", c.billing.GetPlans)
		public.POST("/billing/webhook", c.billing.Webhook)
	}
}

func (a *App) registerCatalogRoutes(router *gin.Engine, c *controllers) {
	catalog := router.Group("/api/problems")
	catalog.Use(middleware.TryAuthMiddleware(a.Config))
	{
		catalog.GET("", c.problem.ListProblems)
		catalog.GET("/:slug", c.problem.GetProblem)
	}
}

func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)
	group.POST("/auth/refresh", c.auth.RefreshToken)
	group.PUT("/user/profile", c.user.UpdateProfile)
	group.POST("/user/avatar/upload", c.user.UploadAvatar)
}

func (a *App) registerProgressRoutes(group *gin.RouterGroup, c *controllers) {
	group.PUT("/problems/:slug/progress", c.problem.UpdateProgress)
	group.GET("/progress/stats", c.progress.GetStats)
}

func (a *App) registerBillingRoutes(group *gin.RouterGroup, c *controllers) {
	group.POST("/billing/checkout", c.billing.CreateCheckout)
	group.POST("/billing/portal", c.billing.CreatePortal)
}
