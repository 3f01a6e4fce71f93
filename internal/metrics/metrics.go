// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ストアクライアントとサービス層から利用する。
type MetricsCollector interface {
	RecordStoreRequest(collection, method string, statusCode int)
	RecordStoreLatency(duration time.Duration)
	RecordScrumCreated()
	RecordOrphanScrum()
	RecordTaskStatusUpdated()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	storeRequests     *prometheus.CounterVec
	storeLatency      prometheus.Histogram
	scrumsCreated     prometheus.Counter
	orphanScrums      prometheus.Counter
	taskStatusUpdates prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agiletrack_store_requests_total",
			Help: "リソースストアへのリクエスト数（コレクション・メソッド・ステータス別）",
		}, []string{"collection", "method", "status_code"}),
		storeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agiletrack_store_latency_seconds",
			Help:    "リソースストアへのリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		scrumsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agiletrack_scrums_created_total",
			Help: "初回タスクとともに作成されたスクラムの合計数",
		}),
		orphanScrums: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agiletrack_orphan_scrums_total",
			Help: "初回タスクの作成に失敗しタスクなしで残ったスクラムの合計数",
		}),
		taskStatusUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agiletrack_task_status_updates_total",
			Help: "成功したタスクステータス更新の合計数",
		}),
	}

	reg.MustRegister(
		c.storeRequests,
		c.storeLatency,
		c.scrumsCreated,
		c.orphanScrums,
		c.taskStatusUpdates,
	)

	return c
}

// RecordStoreRequest はストアへのリクエスト1件を記録する。
func (c *Collector) RecordStoreRequest(collection, method string, statusCode int) {
	c.storeRequests.WithLabelValues(collection, method, strconv.Itoa(statusCode)).Inc()
}

// RecordStoreLatency はストアリクエストのレイテンシを記録する。
func (c *Collector) RecordStoreLatency(duration time.Duration) {
	c.storeLatency.Observe(duration.Seconds())
}

// RecordScrumCreated はスクラム複合作成の成功を記録する。
func (c *Collector) RecordScrumCreated() {
	c.scrumsCreated.Inc()
}

// RecordOrphanScrum は孤児スクラムの発生を記録する。
func (c *Collector) RecordOrphanScrum() {
	c.orphanScrums.Inc()
}

// RecordTaskStatusUpdated はタスクステータス更新の成功を記録する。
func (c *Collector) RecordTaskStatusUpdated() {
	c.taskStatusUpdates.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
