package process

import (
	"fmt"
	"time"

	"github.com/yourusername/file-mill/internal/jobs"
)

// OutputFile は擬似処理で生成された成果物ファイルの情報です。
type OutputFile struct {
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	MediaType    string `json:"media_type"`
	Size         int64  `json:"size"`
}

// ResultPayload は完了ジョブの成果物ペイロードです。
// クライアントからは不透明なデータとして扱われます。
type ResultPayload struct {
	Message      string       `json:"message"`
	OutputFiles  []OutputFile `json:"output_files"`
	AppliedFlags []string     `json:"applied_flags"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

// SummaryRenderer はフラグとファイル一覧から成果サマリーを生成する
// 既定の Renderer 実装です。実処理を行う実装に差し替え可能です。
type SummaryRenderer struct{}

// Render は jobs.Renderer を実装します。
func (SummaryRenderer) Render(flags []string, files []jobs.FileInfo) (any, error) {
	outputs := make([]OutputFile, len(files))
	for i, f := range files {
		outputs[i] = OutputFile{
			Name:         "processed_" + f.Name,
			OriginalName: f.Name,
			MediaType:    f.MediaType,
			Size:         f.Size,
		}
	}
	applied := flags
	if applied == nil {
		applied = []string{}
	}
	return &ResultPayload{
		Message:      fmt.Sprintf("%d件のファイルを処理しました。", len(files)),
		OutputFiles:  outputs,
		AppliedFlags: applied,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}
