package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/config"
	"inkwell/controllers"
	"inkwell/middleware"
	"inkwell/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	// Uploaded images are served straight from disk.
	r.Static("/uploads", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	subscriptionController := controllers.NewSubscriptionController(db)
	notificationController := controllers.NewNotificationController(db)
	aiController := controllers.NewAIController()
	uploadController := controllers.NewUploadController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/google", authController.GoogleRedirect)
	authGroup.GET("/google/callback", authController.GoogleCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	postsGroup := api.Group("/posts")
	// Static segments are registered before the :id parameter so that
	// /posts/public never matches as a post ID.
	postsGroup.GET("/public", postController.ListPublicPosts)
	postsGroup.GET("/public/:id", postController.GetPublicPost)
	postsGroup.Use(middleware.AuthRequired())
	postsGroup.GET("", postController.ListMyPosts)
	postsGroup.POST("", postController.CreatePost)
	postsGroup.GET("/:id", postController.GetMyPost)
	postsGroup.PUT("/:id", postController.UpdatePost)
	postsGroup.DELETE("/:id", postController.DeletePost)

	subsGroup := api.Group("/subscriptions")
	subsGroup.GET("/count/:authorId", subscriptionController.Count)
	subsGroup.Use(middleware.AuthRequired())
	subsGroup.POST("/subscribe/:authorId", subscriptionController.Subscribe)
	subsGroup.POST("/unsubscribe/:authorId", subscriptionController.Unsubscribe)
	subsGroup.GET("/status/:authorId", subscriptionController.Status)
	subsGroup.GET("/my-subscriptions", subscriptionController.MySubscriptions)
	subsGroup.GET("/subscribers", subscriptionController.Subscribers)

	notifGroup := api.Group("/notifications")
	notifGroup.Use(middleware.AuthRequired())
	notifGroup.GET("", notificationController.List)
	notifGroup.GET("/unread-count", notificationController.UnreadCount)
	notifGroup.PATCH("/mark-all-read", notificationController.MarkAllRead)
	notifGroup.PATCH("/:id/read", notificationController.MarkRead)
	notifGroup.DELETE("/clear-read", notificationController.ClearRead)
	notifGroup.DELETE("/:id", notificationController.Delete)

	aiGroup := api.Group("/ai")
	aiGroup.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	aiGroup.POST("/ideas", aiController.Ideas)
	aiGroup.POST("/title", aiController.Title)
	aiGroup.POST("/expand", aiController.Expand)
	aiGroup.POST("/grammar", aiController.Grammar)
	aiGroup.POST("/keywords", aiController.Keywords)
	aiGroup.POST("/summarize", aiController.Summarize)

	api.POST("/upload", middleware.AuthRequired(), uploadController.Image)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
