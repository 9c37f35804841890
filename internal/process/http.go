package process

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/file-mill/internal/jobs"
	"github.com/yourusername/file-mill/internal/telemetry"
)

// JobService はジョブの投入と参照を提供するサービスが実装します。
type JobService interface {
	Submit(files []jobs.FileInfo, flags []string) (jobs.Record, error)
	Find(jobID string) (jobs.Record, bool)
	Snapshot() []jobs.Record
	Reset() int
}

// HandlerOptions はアップロード受付と表示のための設定です。
type HandlerOptions struct {
	MaxUploadBytes      int64         // 1リクエストの合計サイズ上限
	ExpectedProcessing  time.Duration // 進捗見積もりに使う想定処理時間
	DefaultHistoryLimit int           // /history の limit 省略時の既定値
}

// HealthHandler は GET /health のハンドラーを返します。
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "file-mill-api",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// UploadHandler は POST /upload のハンドラーを返します。
// ファイルが1件もない場合はジョブを作成せず 400 を返します。
func UploadHandler(svc JobService, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			telemetry.UploadsRejected.Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "multipart/form-data でファイルを送信してください。",
			})
			return
		}
		defer form.RemoveAll()

		headers := form.File["files[]"]
		if len(headers) == 0 {
			headers = form.File["files"]
		}
		if len(headers) == 0 {
			telemetry.UploadsRejected.Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "アップロードされたファイルが見つかりません。",
			})
			return
		}

		if opts.MaxUploadBytes > 0 {
			var total int64
			for _, header := range headers {
				total += header.Size
			}
			if total > opts.MaxUploadBytes {
				telemetry.UploadsRejected.Inc()
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{
					"code":    "LIMIT_EXCEEDED",
					"message": "アップロードの合計サイズが上限を超えています。",
				})
				return
			}
		}

		flags, err := parseFlags(c)
		if err != nil {
			telemetry.UploadsRejected.Inc()
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": err.Error(),
			})
			return
		}
		if flags == nil {
			flags = []string{}
		}

		files := make([]jobs.FileInfo, 0, len(headers))
		for _, header := range headers {
			info, err := buildFileInfo(header)
			if err != nil {
				respondWithError(c, err)
				return
			}
			files = append(files, info)
		}

		record, err := svc.Submit(files, flags)
		if err != nil {
			respondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"job_id":    record.JobID,
			"message":   "ジョブを受け付けました。状態は /status/" + record.JobID + " で確認できます。",
			"fileCount": len(files),
			"flags":     flags,
		})
	}
}

// StatusHandler は GET /status/:id のハンドラーを返します。
func StatusHandler(svc JobService, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := strings.TrimSpace(c.Param("id"))
		record, ok := svc.Find(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "JOB_NOT_FOUND",
				"message": "指定されたジョブは存在しません。",
			})
			return
		}
		c.JSON(http.StatusOK, jobs.ProjectStatus(record, time.Now().UTC(), opts.ExpectedProcessing))
	}
}

// ResultHandler は GET /result/:id のハンドラーを返します。
// ジョブが done に達していない場合は現在の状態を添えて 400 を返します。
func ResultHandler(svc JobService) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := strings.TrimSpace(c.Param("id"))
		record, ok := svc.Find(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "JOB_NOT_FOUND",
				"message": "指定されたジョブは存在しません。",
			})
			return
		}
		if record.Status != jobs.StatusSucceeded {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "JOB_NOT_COMPLETED",
				"message": "ジョブはまだ完了していません。",
				"status":  record.Status,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"job_id":       record.JobID,
			"status":       record.Status,
			"result":       record.Result,
			"completed_at": record.CompletedAt,
		})
	}
}

// HistoryHandler は GET /history のハンドラーを返します。
// limit/offset が不正な場合は既定値（limit=50, offset=0）へ戻します。
func HistoryHandler(svc JobService, opts HandlerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseQueryInt(c, "limit", opts.DefaultHistoryLimit)
		offset := parseQueryInt(c, "offset", 0)
		if limit < 0 {
			limit = opts.DefaultHistoryLimit
		}
		if offset < 0 {
			offset = 0
		}

		page, total := jobs.ProjectHistory(svc.Snapshot(), limit, offset)
		c.JSON(http.StatusOK, gin.H{
			"jobs":   page,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}
}

// ClearHandler は DELETE /jobs のハンドラーを返します。
func ClearHandler(svc JobService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cleared := svc.Reset()
		c.JSON(http.StatusOK, gin.H{
			"message": "すべてのジョブを削除しました。",
			"cleared": cleared,
		})
	}
}

// NotFoundHandler は未定義ルートへの 404 共通レスポンスを返します。
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "指定されたパスは存在しません。",
		})
	}
}

// RecoveryHandler は panic 発生時の 500 共通レスポンスを返します。
// 内部の詳細はレスポンスに含めません。
func RecoveryHandler() gin.RecoveryFunc {
	return func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "サーバー内部でエラーが発生しました。",
		})
	}
}

// parseFlags は flags フィールド（JSON配列文字列）または flags[] の繰り返しから
// フラグ一覧を取り出します。
func parseFlags(c *gin.Context) ([]string, error) {
	raw := strings.TrimSpace(c.PostForm("flags"))
	if raw != "" {
		var flags []string
		if err := json.Unmarshal([]byte(raw), &flags); err != nil {
			return nil, errors.New("flags は JSON 形式の文字列配列で指定してください。例: [\"grayscale\",\"compress\"]")
		}
		return flags, nil
	}

	if values := c.PostFormArray("flags[]"); len(values) > 0 {
		flags := make([]string, 0, len(values))
		for _, v := range values {
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				return nil, errors.New("flags[] に空の値が含まれています。")
			}
			flags = append(flags, trimmed)
		}
		return flags, nil
	}

	return nil, nil
}

func parseQueryInt(c *gin.Context, key string, defaultValue int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		status := http.StatusInternalServerError
		switch apiErr.Code {
		case "INVALID_INPUT":
			status = http.StatusBadRequest
		case "LIMIT_EXCEEDED":
			status = http.StatusRequestEntityTooLarge
		case "JOB_NOT_FOUND":
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "サーバー内部でエラーが発生しました。",
	})
}
