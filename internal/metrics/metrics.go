// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// HTTPミドルウェアと集計エンジンから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordRecordsQuery(duration time.Duration, scanned, matched int, err error)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	recordsQueries  *prometheus.CounterVec
	recordsDuration prometheus.Histogram
	recordsScanned  prometheus.Histogram
	recordsMatched  prometheus.Histogram
}

// sessionBuckets はユーザーあたりのセッション件数の分布用。
var sessionBuckets = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studytrack_http_requests_total",
			Help: "ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studytrack_http_request_duration_seconds",
			Help:    "ルート別のHTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		recordsQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studytrack_records_queries_total",
			Help: "学習記録集計の実行回数",
		}, []string{"outcome"}),
		recordsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "studytrack_records_query_duration_seconds",
			Help:    "学習記録集計のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		recordsScanned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "studytrack_records_sessions_scanned",
			Help:    "集計1回あたりに読み込んだセッション数",
			Buckets: sessionBuckets,
		}),
		recordsMatched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "studytrack_records_sessions_matched",
			Help:    "集計1回あたりにフィルタに一致したセッション数",
			Buckets: sessionBuckets,
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.recordsQueries,
		c.recordsDuration,
		c.recordsScanned,
		c.recordsMatched,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエスト1件を記録する。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecordsQuery は集計1回分の結果を記録する。
// 失敗時は件数を記録しない。
func (c *Collector) RecordRecordsQuery(duration time.Duration, scanned, matched int, err error) {
	c.recordsDuration.Observe(duration.Seconds())
	if err != nil {
		c.recordsQueries.WithLabelValues("error").Inc()
		return
	}
	c.recordsQueries.WithLabelValues("ok").Inc()
	c.recordsScanned.Observe(float64(scanned))
	c.recordsMatched.Observe(float64(matched))
}

// statusRecorder はレスポンスのステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware はリクエスト数と処理時間を記録するミドルウェアを返す。
// ラベルにはURLパスではなくchiのルートパターンを使い、IDによるカーディナリティ増加を防ぐ。
// どのルートにも一致しなかった場合は "unmatched" とする。
func Middleware(c MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			c.RecordHTTPRequest(r.Method, route, rec.statusCode, time.Since(start))
		})
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
