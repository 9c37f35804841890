package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry はジョブ状態をプロセス内に保持する唯一の置き場です。
// すべての読み書きはアトミックなアクセサを経由します。
type Registry struct {
	mu    sync.RWMutex
	jobs  map[string]*Record
	order []string
}

// NewRegistry は Registry を作成します。
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Record),
	}
}

// Create は新しいジョブを pending 状態で登録し、レコードのコピーを返します。
// ジョブIDは UUID v4 で生成します。
func (r *Registry) Create(files []FileInfo, flags []string) Record {
	record := &Record{
		JobID:     uuid.NewString(),
		Status:    StatusPending,
		Files:     files,
		Flags:     flags,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.jobs[record.JobID] = record
	r.order = append(r.order, record.JobID)
	r.mu.Unlock()

	return *record
}

// Get はジョブ情報のコピーを取得します。存在しない場合は false を返します。
func (r *Registry) Get(jobID string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.jobs[jobID]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// Mutate は1レコードをアトミックに read-modify-write します。
// ジョブが存在しない場合（clear 後など）は何もせず false を返します。
func (r *Registry) Mutate(jobID string, mutate func(*Record)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.jobs[jobID]
	if !ok {
		return false
	}
	mutate(record)
	return true
}

// List は全ジョブのスナップショット（コピー）を登録順で返します。
// 返り値は以後の更新と競合しません。
func (r *Registry) List() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		if record, ok := r.jobs[id]; ok {
			snapshot = append(snapshot, *record)
		}
	}
	return snapshot
}

// Clear は全ジョブをアトミックに削除し、削除件数を返します。
// 実行中のライフサイクルタスクは次の Mutate で不在を検知して中断します。
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cleared := len(r.jobs)
	r.jobs = make(map[string]*Record)
	r.order = nil
	return cleared
}

// Len は登録されているジョブ数を返します。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
