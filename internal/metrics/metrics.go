// Package metrics 暴露 HTTP 请求和评分结果的 Prometheus 指标
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合, 每个实例使用独立的 Registry
type Metrics struct {
	registry     *prometheus.Registry
	summaryVec   *prometheus.SummaryVec
	counterVec   *prometheus.CounterVec
	matchScore   *prometheus.HistogramVec
	scoreErrors  *prometheus.CounterVec
	skillsCounts *prometheus.HistogramVec
}

// New 创建指标集合
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		summaryVec: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.95: 0.005,
					0.99: 0.001,
				},
			},
			[]string{"method", "path", "status_code"},
		),
		counterVec: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		matchScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ats_match_score",
				Help:    "Distribution of resume/job match scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{"strategy"},
		),
		scoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ats_score_errors_total",
				Help: "Scoring requests that failed, by error kind",
			},
			[]string{"kind"},
		),
		skillsCounts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ats_skills_count",
				Help:    "Number of matched and missing skills per scoring request",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
			[]string{"list"},
		),
	}
}

// Middleware 记录每个请求的耗时和次数
func (m *Metrics) Middleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()

		c.Next(ctx)

		method := string(c.Method())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(c.Response.StatusCode())

		m.summaryVec.WithLabelValues(method, path, statusCode).Observe(time.Since(start).Seconds())
		m.counterVec.WithLabelValues(method, path, statusCode).Inc()
	}
}

// ObserveScore 记录一次成功评分
func (m *Metrics) ObserveScore(strategy string, score float64, matched, missing int) {
	m.matchScore.WithLabelValues(strategy).Observe(score)
	m.skillsCounts.WithLabelValues("matched").Observe(float64(matched))
	m.skillsCounts.WithLabelValues("missing").Observe(float64(missing))
}

// ObserveError 记录一次失败评分, kind 为错误类别
func (m *Metrics) ObserveError(kind string) {
	m.scoreErrors.WithLabelValues(kind).Inc()
}

// Handler 以 Prometheus 文本格式输出指标
func (m *Metrics) Handler() app.HandlerFunc {
	return adaptor.HertzHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry 返回底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
