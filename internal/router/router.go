package router

import (
	"github.com/gin-gonic/gin"

	"etsy_insights_v1/internal/controller"
	"etsy_insights_v1/internal/middleware"
	"etsy_insights_v1/internal/model"
)

// Controllers 控制器集合
type Controllers struct {
	User *controller.UserController
	Etsy *controller.EtsyController
}

// SetupRouter 注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	{
		// auth 认证组 (公开)
		auth := api.Group("/auth")
		{
			// POST /api/auth/register
			auth.POST("/register", ctls.User.Register)
			// POST /api/auth/login
			auth.POST("/login", ctls.User.Login)
			// POST /api/auth/refresh
			auth.POST("/refresh", ctls.User.RefreshToken)
			// POST /api/auth/password-reset
			auth.POST("/password-reset", ctls.User.RequestPasswordReset)
			// POST /api/auth/password-reset/confirm
			auth.POST("/password-reset/confirm", ctls.User.ConfirmPasswordReset)
		}

		// auth 认证组 (需登录)
		authed := api.Group("/auth", middleware.JWTAuth())
		{
			// GET /api/auth/profile
			authed.GET("/profile", ctls.User.GetProfile)
			// PUT /api/auth/password
			authed.PUT("/password", ctls.User.ChangePassword)
		}

		// etsy 分析组 (需登录)
		etsyGroup := api.Group("/etsy", middleware.JWTAuth())
		{
			// POST /api/etsy/shop
			etsyGroup.POST("/shop", ctls.Etsy.AnalyzeShop)
			// POST /api/etsy/shops/bulk
			etsyGroup.POST("/shops/bulk", ctls.Etsy.BulkAnalyze)
			// GET /api/etsy/keyword-research?keyword=
			etsyGroup.GET("/keyword-research", ctls.Etsy.KeywordResearch)
			// GET /api/etsy/listing?id=
			etsyGroup.GET("/listing", ctls.Etsy.GetListing)
			// GET /api/etsy/tags?keyword=
			etsyGroup.GET("/tags", ctls.Etsy.TagSuggestions)
		}

		// users 管理组 (仅管理员)
		users := api.Group("/users", middleware.JWTAuth(), middleware.RequireRole(model.UserRoleAdmin))
		{
			users.GET("", ctls.User.ListUsers)
			users.POST("", ctls.User.CreateUser)
			users.GET("/:id", ctls.User.GetUser)
			users.PUT("/:id", ctls.User.UpdateUser)
			users.DELETE("/:id", ctls.User.DeleteUser)
		}
	}

	return r
}
