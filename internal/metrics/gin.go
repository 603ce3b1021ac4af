package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpLabels = []string{"method", "route", "code"}

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumaker",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "按路由统计的请求耗时（秒）。",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		httpLabels,
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumaker",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "按路由与状态码统计的请求数。",
		},
		httpLabels,
	)

	httpResponseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumaker",
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "响应体大小，预览与编辑器页面通常最大。",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"route"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resumaker",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "正在处理的请求数。",
		},
	)
)

// GinMiddleware 采集每个请求的耗时、状态码与响应大小。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 指标端点本身不计入
		if strings.HasSuffix(c.Request.URL.Path, "/metrics") {
			c.Next()
			return
		}

		httpInFlight.Inc()
		start := time.Now()
		c.Next()
		httpInFlight.Dec()

		route := routeLabel(c)
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		if size := c.Writer.Size(); size > 0 {
			httpResponseBytes.WithLabelValues(route).Observe(float64(size))
		}
	}
}

// routeLabel 使用路由模板而不是原始路径，未匹配的请求归为一类。
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// Handler 暴露默认注册表中的全部指标。
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
