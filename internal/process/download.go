package process

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// DownloadHandler は GET /download/:name のハンドラーを返します。
// 成果物の実体は保持していないため、要求された名前から内容を合成して返します。
func DownloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := path.Base(strings.TrimSpace(c.Param("name")))
		if name == "" || name == "." || name == "/" {
			name = "processed_file"
		}

		body := synthesizeArtifact(name, time.Now().UTC())
		contentType := mimetype.Detect(body).String()

		encodedName := url.PathEscape(name)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", name, encodedName))
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, contentType, body)
	}
}

func synthesizeArtifact(name string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("file-mill processed artifact\n")
	b.WriteString("============================\n")
	fmt.Fprintf(&b, "name: %s\n", name)
	fmt.Fprintf(&b, "generated_at: %s\n", now.Format(time.RFC3339))
	b.WriteString("\nこのファイルは処理結果のプレースホルダーです。\n")
	return []byte(b.String())
}
