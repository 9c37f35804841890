// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/file-mill/internal/config"
	"github.com/yourusername/file-mill/internal/jobs"
	"github.com/yourusername/file-mill/internal/process"
	"github.com/yourusername/file-mill/internal/telemetry"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（Recovery は JSON を返すカスタム版）
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(process.RecoveryHandler()))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// ジョブ基盤の組み立て
	registry := jobs.NewRegistry()
	controller, err := jobs.NewController(registry, process.SummaryRenderer{}, cfg.Policy(), log.Default())
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}
	service, err := process.NewService(registry, controller)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	// ルーティングの設定
	setupRoutes(router, cfg, service)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes はAPIエンドポイントの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, service *process.Service) {
	opts := process.HandlerOptions{
		MaxUploadBytes:      cfg.MaxUploadBytes,
		ExpectedProcessing:  cfg.Policy().ExpectedProcessing(),
		DefaultHistoryLimit: cfg.HistoryLimit,
	}

	router.GET("/health", process.HealthHandler())
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	router.POST("/upload", process.UploadHandler(service, opts))
	router.GET("/status/:id", process.StatusHandler(service, opts))
	router.GET("/result/:id", process.ResultHandler(service))
	router.GET("/history", process.HistoryHandler(service, opts))
	router.GET("/download/:name", process.DownloadHandler())
	router.DELETE("/jobs", process.ClearHandler(service))

	router.NoRoute(process.NotFoundHandler())
}
