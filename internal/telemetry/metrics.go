// Package telemetry はジョブ処理のメトリクスを Prometheus 形式で公開します。
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	UploadsReceived = prometheus.NewCounter(prometheus.CounterOpts{Name: "uploads_received_total", Help: "Accepted upload requests"})
	UploadsRejected = prometheus.NewCounter(prometheus.CounterOpts{Name: "uploads_rejected_total", Help: "Upload requests rejected by validation"})
	JobsCompleted   = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobs_completed_total", Help: "Jobs finished in done state"})
	JobsFailed      = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobs_failed_total", Help: "Jobs finished in error state"})
	JobsInflight    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "jobs_inflight", Help: "Lifecycle tasks currently running"})
)

// Handler は /metrics 用のHTTPハンドラーを返します。登録は一度だけ行います。
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			UploadsReceived,
			UploadsRejected,
			JobsCompleted,
			JobsFailed,
			JobsInflight,
		)
	})
	return promhttp.Handler()
}
