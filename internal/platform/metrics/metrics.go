package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shift_registry"

// Collector はアプリケーションのメトリクスをまとめます。
type Collector struct {
	registry *prometheus.Registry

	ShiftsAccepted  *prometheus.CounterVec
	ShiftsRejected  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New は専用レジストリ上に Collector を生成します。
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		ShiftsAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shifts_accepted_total",
				Help:      "Number of shift records stored, by work concept.",
			},
			[]string{"concept"},
		),
		ShiftsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shifts_rejected_total",
				Help:      "Number of shift registrations rejected, by violated rule.",
			},
			[]string{"rule"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Accepted は登録済みの勤務記録を区分ごとに数えます。
func (c *Collector) Accepted(conceptName string) {
	c.ShiftsAccepted.WithLabelValues(conceptName).Inc()
}

// Rejected は却下された登録を違反ルールごとに数えます。
func (c *Collector) Rejected(rule string) {
	c.ShiftsRejected.WithLabelValues(rule).Inc()
}

// Registry は収集対象のレジストリを返します。
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler は /metrics 用のハンドラーを返します。
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
