package jobs

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/file-mill/internal/telemetry"
)

// Renderer は完了したジョブの成果物ペイロードを生成します。
// 実処理を行う実装に差し替えても状態遷移のロジックには影響しません。
type Renderer interface {
	Render(flags []string, files []FileInfo) (any, error)
}

// Policy は処理時間と失敗率のシミュレーション方針です。
// テストでは決定的な値に差し替えます。
type Policy struct {
	AdmissionDelay time.Duration // 受付から実行開始までの固定待ち時間
	MinProcessing  time.Duration // 処理時間の下限
	MaxProcessing  time.Duration // 処理時間の上限
	FailureRate    float64       // 失敗確率（0.0〜1.0）
}

// DefaultPolicy は既定のシミュレーション方針を返します。
func DefaultPolicy() Policy {
	return Policy{
		AdmissionDelay: 500 * time.Millisecond,
		MinProcessing:  5 * time.Second,
		MaxProcessing:  10 * time.Second,
		FailureRate:    0.1,
	}
}

// ExpectedProcessing は進捗見積もりに使う想定処理時間（上下限の中間値）を返します。
func (p Policy) ExpectedProcessing() time.Duration {
	return (p.MinProcessing + p.MaxProcessing) / 2
}

// 失敗時にクライアントへ返す固定メッセージ。
const failureMessage = "シミュレーションによる処理失敗です。再度アップロードしてください。"

// Controller はジョブを pending → running → done/error へ非同期に進めます。
// ジョブごとに独立したゴルーチンを1つ起動し、各遷移は Registry.Mutate で
// アトミックに書き込みます。
type Controller struct {
	registry *Registry
	renderer Renderer
	policy   Policy
	logger   *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewController は Controller を初期化します。
func NewController(registry *Registry, renderer Renderer, policy Policy, logger *log.Logger) (*Controller, error) {
	if registry == nil {
		return nil, errors.New("registry is nil")
	}
	if renderer == nil {
		return nil, errors.New("renderer is nil")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		registry: registry,
		renderer: renderer,
		policy:   policy,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Launch はジョブIDに対するライフサイクルタスクをバックグラウンドで開始します。
func (c *Controller) Launch(jobID string) {
	telemetry.JobsInflight.Inc()
	go c.run(jobID)
}

// run はライフサイクルを一度だけ実行します。
// どの時点でもジョブが消えていたら（clear 後）黙って中断します。
func (c *Controller) run(jobID string) {
	defer telemetry.JobsInflight.Dec()

	time.Sleep(c.policy.AdmissionDelay)

	startedAt := time.Now().UTC()
	started := false
	if !c.registry.Mutate(jobID, func(record *Record) {
		if record.Status != StatusPending {
			return
		}
		record.Status = StatusRunning
		record.StartedAt = &startedAt
		started = true
	}) {
		return
	}
	if !started {
		// pending 以外からは開始しない（前方遷移のみ）
		return
	}

	time.Sleep(c.sampleDuration())

	if c.sampleFailure() {
		c.settleFailure(jobID, &ErrorInfo{
			Code:    "PROCESSING_FAILED",
			Message: failureMessage,
		})
		return
	}

	record, ok := c.registry.Get(jobID)
	if !ok {
		return
	}
	payload, err := c.renderer.Render(record.Flags, record.Files)
	if err != nil {
		c.logger.Printf("failed to render result job=%s: %v", jobID, err)
		c.settleFailure(jobID, &ErrorInfo{
			Code:    "RESULT_RENDER_FAILED",
			Message: "成果物の生成に失敗しました。",
		})
		return
	}

	completedAt := time.Now().UTC()
	if c.registry.Mutate(jobID, func(record *Record) {
		if record.Status != StatusRunning {
			return
		}
		record.Status = StatusSucceeded
		record.Result = payload
		record.CompletedAt = &completedAt
	}) {
		telemetry.JobsCompleted.Inc()
	}
}

func (c *Controller) settleFailure(jobID string, errInfo *ErrorInfo) {
	completedAt := time.Now().UTC()
	if c.registry.Mutate(jobID, func(record *Record) {
		if record.Status != StatusRunning {
			return
		}
		record.Status = StatusFailed
		record.Error = errInfo
		record.CompletedAt = &completedAt
	}) {
		telemetry.JobsFailed.Inc()
	}
}

// sampleDuration は [MinProcessing, MaxProcessing] から一様に処理時間を引きます。
func (c *Controller) sampleDuration() time.Duration {
	min := c.policy.MinProcessing
	max := c.policy.MaxProcessing
	if max <= min {
		return min
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return min + time.Duration(c.rng.Int63n(int64(max-min)+1))
}

func (c *Controller) sampleFailure() bool {
	if c.policy.FailureRate <= 0 {
		return false
	}
	if c.policy.FailureRate >= 1 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64() < c.policy.FailureRate
}
