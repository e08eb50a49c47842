package main

import (
	"log"

	"github.com/palmto/trajgen-backend-go/internal/api"
	"github.com/palmto/trajgen-backend-go/internal/cache"
	"github.com/palmto/trajgen-backend-go/internal/config"
	"github.com/palmto/trajgen-backend-go/internal/database"
	"github.com/palmto/trajgen-backend-go/internal/handler"
	"github.com/palmto/trajgen-backend-go/internal/jobs"
	"github.com/palmto/trajgen-backend-go/internal/repository"
	"github.com/palmto/trajgen-backend-go/internal/service"
	"github.com/palmto/trajgen-backend-go/internal/storage"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	// 初始化媒体目录
	media, err := storage.NewMedia(cfg.MediaRoot)
	if err != nil {
		log.Fatal("Failed to initialize media storage:", err)
	}

	cacheStore := cache.NewStore(media.CachePath())
	jobStore := jobs.NewStore(cfg.JobTTL)

	configRepo := repository.NewConfigRepository(db)
	generatedRepo := repository.NewGeneratedRepository(db)

	pipelineService := service.NewPipelineService(media, cacheStore, jobStore, configRepo, generatedRepo)
	matchingService := service.NewMatchingService(media, cfg.OSRMBaseURL, cfg.MatchTimeout)

	// 初始化路由
	router := api.SetupRouter(cfg, api.Handlers{
		Pipeline: handler.NewPipelineHandler(pipelineService),
		Progress: handler.NewProgressHandler(jobStore),
		Matching: handler.NewMatchingHandler(matchingService),
		Files:    handler.NewFileHandler(media),
		Admin:    handler.NewAdminHandler(configRepo, generatedRepo),
	})

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
