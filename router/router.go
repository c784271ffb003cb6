package router

import (
	"net/http"
	"time"

	"catering/api"
	"catering/cache"
	"catering/config"
	_ "catering/docs"
	"catering/middleware"
	"catering/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Deps collaborators built at startup; any of them may be nil
type Deps struct {
	Store   service.ObjectStore
	Janitor *service.ImageJanitor
	Cache   cache.Cache
	Email   *service.EmailService
	Log     *zap.Logger
}

// SetupRouter wires handlers and middleware
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())
	r.Use(CORSMiddleware())

	share := api.NewShareCache(deps.Cache)
	menuHandler := api.NewMenuHandler(share, deps.Janitor, deps.Email, cfg.Server.BaseURL)
	shareHandler := api.NewShareHandler(share)
	categoryHandler := api.NewCategoryHandler(share, deps.Janitor)
	menuItemHandler := api.NewMenuItemHandler(share, deps.Janitor, deps.Store, api.UploadLimits{
		MaxBytes:  cfg.Storage.MaxImageSize(),
		KeyPrefix: cfg.Storage.KeyPrefix,
	})
	tagHandler := api.NewTagHandler()

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a := r.Group("/api")
	a.GET("/health", api.Health)

	// public share links, the token is the credential
	shared := a.Group("/menus/share")
	shared.Use(middleware.ShareRateLimit(cfg.Server.ShareRateLimit, cfg.Server.ShareRateBurst, 10*time.Minute))
	{
		shared.GET("/:token", shareHandler.Get)
		shared.POST("/:token/order", shareHandler.Order)
	}

	a.GET("/tags", tagHandler.List)
	a.GET("/tags/:id", tagHandler.Get)

	authorized := a.Group("")
	authorized.Use(middleware.JWTAuth())
	{
		menus := authorized.Group("/menus")
		{
			menus.GET("", menuHandler.List)
			menus.POST("", menuHandler.Create)
			menus.GET("/:id", menuHandler.Get)
			menus.PUT("/:id", menuHandler.Update)
			menus.DELETE("/:id", menuHandler.Delete)
			menus.POST("/:id/share-token", menuHandler.RotateShareToken)
			menus.POST("/:id/share-email", menuHandler.ShareByEmail)
			menus.GET("/:id/export", menuHandler.Export)
		}

		categories := authorized.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.PUT("/reorder", categoryHandler.Reorder)
			categories.GET("/:id", categoryHandler.Get)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		items := authorized.Group("/menu-items")
		{
			items.GET("", menuItemHandler.List)
			items.POST("", menuItemHandler.Create)
			items.PUT("/reorder", menuItemHandler.Reorder)
			items.GET("/:id", menuItemHandler.Get)
			items.PUT("/:id", menuItemHandler.Update)
			items.DELETE("/:id", menuItemHandler.Delete)
			items.POST("/:id/upload-image", menuItemHandler.UploadImage)
		}

		authorized.POST("/tags", tagHandler.Create)
		authorized.PUT("/tags/:id", tagHandler.Update)
		authorized.DELETE("/tags/:id", tagHandler.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		api.NotFound(c, "Route not found")
	})

	return r
}

// CORSMiddleware allows browser clients on other origins
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
