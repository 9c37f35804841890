package jobs

import "time"

// Status はジョブの実行状態を表します。
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "done"
	StatusFailed    Status = "error"
)

// Terminal は終端状態（done/error）かどうかを返します。
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// FileInfo はアップロードされた入力ファイルのメタデータを表します。
// ジョブ作成後は変更されません。
type FileInfo struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

// ErrorInfo はジョブ失敗時のエラー情報を保持します。
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Record はジョブの現在状態を表します。
// Status と依存フィールド（StartedAt/CompletedAt/Result/Error）は
// Registry.Mutate の中で同時に更新されます。
type Record struct {
	JobID       string     `json:"job_id"`
	Status      Status     `json:"status"`
	Files       []FileInfo `json:"files"`
	Flags       []string   `json:"flags"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Result      any        `json:"result,omitempty"`
	Error       *ErrorInfo `json:"error,omitempty"`
}
