// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourusername/file-mill/internal/jobs"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// アップロード制限
	MaxUploadBytes int64 // 1リクエストあたりの合計サイズ上限（バイト）

	// ジョブシミュレーション設定
	AdmissionDelayMs int // 受付から実行開始までの待ち時間（ミリ秒）
	MinProcessingSec int // 処理時間の下限（秒）
	MaxProcessingSec int // 処理時間の上限（秒）
	FailurePercent   int // 失敗確率（0〜100）

	// 履歴設定
	HistoryLimit int // /history の limit 省略時の既定値
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 50*1024*1024), // 50MiB

		AdmissionDelayMs: getEnvAsInt("ADMISSION_DELAY_MS", 500),
		MinProcessingSec: getEnvAsInt("MIN_PROCESSING_SEC", 5),
		MaxProcessingSec: getEnvAsInt("MAX_PROCESSING_SEC", 10),
		FailurePercent:   getEnvAsInt("FAILURE_PERCENT", 10),

		HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 50),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.AdmissionDelayMs < 0 {
		return fmt.Errorf("ADMISSION_DELAY_MS must not be negative")
	}
	if c.MinProcessingSec < 0 || c.MaxProcessingSec < c.MinProcessingSec {
		return fmt.Errorf("processing bounds are invalid: min=%d max=%d", c.MinProcessingSec, c.MaxProcessingSec)
	}
	if c.FailurePercent < 0 || c.FailurePercent > 100 {
		return fmt.Errorf("FAILURE_PERCENT must be between 0 and 100")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	return nil
}

// Policy はジョブライフサイクルのシミュレーション方針へ変換します。
func (c *Config) Policy() jobs.Policy {
	return jobs.Policy{
		AdmissionDelay: time.Duration(c.AdmissionDelayMs) * time.Millisecond,
		MinProcessing:  time.Duration(c.MinProcessingSec) * time.Second,
		MaxProcessing:  time.Duration(c.MaxProcessingSec) * time.Second,
		FailureRate:    float64(c.FailurePercent) / 100,
	}
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
