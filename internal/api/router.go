package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/palmto/trajgen-backend-go/internal/config"
	"github.com/palmto/trajgen-backend-go/internal/handler"
	"github.com/palmto/trajgen-backend-go/internal/middleware"
)

// Handlers bundles the route handlers wired by SetupRouter
type Handlers struct {
	Pipeline *handler.PipelineHandler
	Progress *handler.ProgressHandler
	Matching *handler.MatchingHandler
	Files    *handler.FileHandler
	Admin    *handler.AdminHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Trajectory Generation API is running",
		})
	})

	// Submission endpoints get a rate limit so background workers stay bounded
	submitLimiter := middleware.NewRateLimiter(10, time.Minute)

	// API 路由组
	api := r.Group("/api/v1")
	{
		trajectory := api.Group("/trajectory")
		{
			trajectory.POST("/generate/ngrams", submitLimiter.Middleware(), h.Pipeline.BuildNgrams)
			trajectory.POST("/generate", submitLimiter.Middleware(), h.Pipeline.Generate)
			trajectory.POST("/stats-from-cache", h.Pipeline.StatsFromCache)
			trajectory.GET("/progress", h.Progress.Stream)
			trajectory.POST("/match", h.Matching.Match)
			trajectory.GET("/3d", h.Files.Trajectory3D)
			trajectory.GET("/download/:filename", h.Files.Download)
		}

		admin := api.Group("/admin", middleware.Auth(cfg.JWTSecret))
		{
			admin.GET("/configs", h.Admin.ListConfigs)
			admin.GET("/configs/:id", h.Admin.GetConfig)
		}
	}

	return r
}
