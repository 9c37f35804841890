package jobs

import (
	"sort"
	"time"
)

// StatusView はクライアントへ返すジョブ状態のスナップショットです。
type StatusView struct {
	JobID       string     `json:"job_id"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	Files       []FileInfo `json:"files"`
	Flags       []string   `json:"flags"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	Error       *ErrorInfo `json:"error,omitempty"`
}

// HistoryEntry は履歴一覧用の縮約されたジョブ情報です。
// ファイル一覧・成果物などの重いフィールドは含みません。
type HistoryEntry struct {
	JobID       string     `json:"job_id"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FileCount   int        `json:"file_count"`
	Flags       []string   `json:"flags"`
}

// 進捗はターミナル遷移前に 100% と誤認させないため 95% で頭打ちにします。
const progressCap = 95

// ProjectStatus はレコードから現在時刻基準の StatusView を導出します。
// レコードは変更しません。進捗は running 中のみ含まれ、
// min(floor(100 * 経過時間 / expected), 95) で見積もります。
func ProjectStatus(record Record, now time.Time, expected time.Duration) StatusView {
	view := StatusView{
		JobID:       record.JobID,
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
		Files:       record.Files,
		Flags:       record.Flags,
		StartedAt:   record.StartedAt,
		CompletedAt: record.CompletedAt,
		Error:       record.Error,
	}
	if record.Status == StatusRunning && record.StartedAt != nil && expected > 0 {
		percent := estimateProgress(now.Sub(*record.StartedAt), expected)
		view.Progress = &percent
	}
	return view
}

func estimateProgress(elapsed, expected time.Duration) int {
	if elapsed < 0 {
		return 0
	}
	percent := int(100 * elapsed / expected)
	if percent > progressCap {
		return progressCap
	}
	return percent
}

// ProjectHistory は作成日時の降順（同時刻は登録順）で並べたページと
// 全件数を返します。offset が範囲外の場合は空ページを返します。
func ProjectHistory(records []Record, limit, offset int) ([]HistoryEntry, int) {
	total := len(records)

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(sorted) {
		return []HistoryEntry{}, total
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}

	page := make([]HistoryEntry, 0, end-offset)
	for _, record := range sorted[offset:end] {
		page = append(page, HistoryEntry{
			JobID:       record.JobID,
			Status:      record.Status,
			CreatedAt:   record.CreatedAt,
			CompletedAt: record.CompletedAt,
			FileCount:   len(record.Files),
			Flags:       record.Flags,
		})
	}
	return page, total
}
